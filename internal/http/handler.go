package http

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/outfitterhq/contracts-service/internal/http/middleware"
	"github.com/outfitterhq/contracts-service/internal/model"
	"github.com/outfitterhq/contracts-service/internal/pricing"
	"github.com/outfitterhq/contracts-service/internal/service"
)

type PDFGenerator interface {
	Generate(doc model.ContractDocument) ([]byte, error)
}

type ReportGenerator interface {
	Generate(report model.ContractsReport) ([]byte, error)
}

type Handler struct {
	contracts *service.ContractService
	pdf       PDFGenerator
	excel     ReportGenerator
	log       zerolog.Logger
}

func NewHandler(contracts *service.ContractService, pdf PDFGenerator, excel ReportGenerator, log zerolog.Logger) *Handler {
	return &Handler{contracts: contracts, pdf: pdf, excel: excel, log: log}
}

func (h *Handler) Register(router *gin.Engine, authMiddleware gin.HandlerFunc) {
	protected := router.Group("/")
	protected.Use(authMiddleware)

	protected.GET("/contracts", h.listContracts)
	protected.POST("/contracts/:id/submit", h.submitContract)
	protected.POST("/contracts/:id/sign", h.signContract)
	protected.POST("/contracts/:id/approve", h.approveContract)
	protected.POST("/contracts/:id/return", h.returnContract)
	protected.POST("/contracts/:id/send-for-signature", h.sendForSignature)
	protected.GET("/contracts/:id/pdf", h.contractPDF)
	protected.POST("/contracts/repair", h.repairContracts)
	protected.POST("/contracts/export", h.exportContracts)

	protected.POST("/hunts/:id/complete-booking", h.completeBooking)
	protected.PATCH("/hunts/:id/tag-status", h.updateTagStatus)
}

func (h *Handler) listContracts(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	views, err := h.contracts.GetContractsForClient(c.Request.Context(), principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"contracts": views})
}

type quantitiesRequest struct {
	ExtraDays       int `json:"extra_days"`
	ExtraNonHunters int `json:"extra_non_hunters"`
	ExtraSpotters   int `json:"extra_spotters"`
	RifleRental     int `json:"rifle_rental"`
}

func (q quantitiesRequest) toQuantities() pricing.Quantities {
	return pricing.Quantities{
		ExtraDays:       q.ExtraDays,
		ExtraNonHunters: q.ExtraNonHunters,
		ExtraSpotters:   q.ExtraSpotters,
		RifleRental:     q.RifleRental,
	}
}

type submitContractRequest struct {
	quantitiesRequest
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date"`
	Acknowledged bool   `json:"acknowledged"`
}

func (h *Handler) submitContract(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	contractID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contract id"})
		return
	}

	var req submitContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := service.SubmitCompletionInput{
		Quantities:   req.toQuantities(),
		Acknowledged: req.Acknowledged,
	}
	if req.StartDate != "" {
		start, err := parseDate(req.StartDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start_date"})
			return
		}
		input.StartDate = &start
	}
	if req.EndDate != "" {
		end, err := parseDate(req.EndDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end_date"})
			return
		}
		input.EndDate = &end
	}

	contract, err := h.contracts.SubmitCompletion(c.Request.Context(), principal, contractID, input)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"contract": contract})
}

type completeBookingRequest struct {
	quantitiesRequest
	PricingItemID string `json:"pricing_item_id" binding:"required"`
	StartDate     string `json:"start_date" binding:"required"`
	EndDate       string `json:"end_date" binding:"required"`
}

func (h *Handler) completeBooking(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	huntID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid hunt id"})
		return
	}

	var req completeBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pricingItemID, err := uuid.Parse(strings.TrimSpace(req.PricingItemID))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid pricing_item_id"})
		return
	}
	start, err := parseDate(req.StartDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start_date"})
		return
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end_date"})
		return
	}

	result, err := h.contracts.CompleteBooking(c.Request.Context(), principal, huntID, service.CompleteBookingInput{
		PricingItemID: pricingItemID,
		StartDate:     start,
		EndDate:       end,
		Quantities:    req.toQuantities(),
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"hunt": result.Hunt, "contract": result.Contract})
}

type signContractRequest struct {
	Role string `json:"role" binding:"required"`
}

func (h *Handler) signContract(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	contractID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contract id"})
		return
	}

	var req signContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	role := service.SignerRole(strings.ToLower(strings.TrimSpace(req.Role)))
	contract, err := h.contracts.Sign(c.Request.Context(), principal, contractID, role)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"contract": contract})
}

func (h *Handler) approveContract(c *gin.Context) {
	h.adminTransition(c, h.contracts.Approve)
}

func (h *Handler) sendForSignature(c *gin.Context) {
	h.adminTransition(c, h.contracts.SendForSignature)
}

func (h *Handler) adminTransition(c *gin.Context, transition func(ctx context.Context, principal model.Principal, id uuid.UUID) (*model.HuntContract, error)) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	contractID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contract id"})
		return
	}

	contract, err := transition(c.Request.Context(), principal, contractID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"contract": contract})
}

type returnContractRequest struct {
	Reason string `json:"reason"`
}

func (h *Handler) returnContract(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	contractID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contract id"})
		return
	}

	var req returnContractRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	contract, err := h.contracts.ReturnForCompletion(c.Request.Context(), principal, contractID, req.Reason)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"contract": contract, "reason": req.Reason})
}

type tagStatusRequest struct {
	TagStatus string `json:"tag_status" binding:"required"`
}

func (h *Handler) updateTagStatus(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	huntID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid hunt id"})
		return
	}

	var req tagStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	status, ok := model.ParseTagStatus(strings.ToLower(strings.TrimSpace(req.TagStatus)))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid tag_status"})
		return
	}

	hunt, contract, err := h.contracts.UpdateTagStatus(c.Request.Context(), principal, huntID, status)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"hunt": hunt, "contract": contract})
}

func (h *Handler) repairContracts(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	report, err := h.contracts.RepairContracts(c.Request.Context(), principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *Handler) contractPDF(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	contractID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contract id"})
		return
	}

	doc, err := h.contracts.GetContractDocument(c.Request.Context(), principal, contractID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	content, err := h.pdf.Generate(*doc)
	if err != nil {
		h.handleError(c, err)
		return
	}

	fileName := "contract-" + doc.Contract.ID.String() + ".pdf"
	c.Header("Content-Disposition", "attachment; filename=\""+fileName+"\"")
	c.Data(http.StatusOK, "application/pdf", content)
}

func (h *Handler) exportContracts(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	report, err := h.contracts.BuildContractsReport(c.Request.Context(), principal)
	if err != nil {
		h.handleError(c, err)
		return
	}

	content, err := h.excel.Generate(*report)
	if err != nil {
		h.handleError(c, err)
		return
	}

	fileName := "contracts-" + report.GeneratedAt.Format("20060102") + ".xlsx"
	c.Header("Content-Disposition", "attachment; filename=\""+fileName+"\"")
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", content)
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		h.log.Error().Err(err).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, service.ErrInvalidInput
	}
	layouts := []string{
		time.RFC3339,
		"2006-01-02",
		"2006-01-02T15:04:05",
	}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, service.ErrInvalidInput
}
