package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/outfitterhq/contracts-service/internal/model"
	"github.com/outfitterhq/contracts-service/internal/pricing"
)

type HuntSummary struct {
	ID        uuid.UUID       `json:"id"`
	Title     string          `json:"title"`
	Species   string          `json:"species"`
	Unit      string          `json:"unit"`
	Weapon    string          `json:"weapon"`
	StartAt   *time.Time      `json:"start_at,omitempty"`
	EndAt     *time.Time      `json:"end_at,omitempty"`
	HuntCode  *string         `json:"hunt_code,omitempty"`
	TagStatus model.TagStatus `json:"tag_status"`
}

// ContractView is what a client sees: the contract with a freshly
// re-derived bill, the derived booking flag, the hunt summary, and the
// current add-on rate snapshot.
type ContractView struct {
	Contract             model.HuntContract `json:"contract"`
	NeedsCompleteBooking bool               `json:"needs_complete_booking"`
	Hunt                 *HuntSummary       `json:"hunt,omitempty"`
	AddOnRates           pricing.AddOnRates `json:"add_on_rates"`
	SuggestedPlanID      *uuid.UUID         `json:"suggested_plan_id,omitempty"`
}

// GetContractsForClient lists the authenticated client's contracts. The bill
// content and total in each view are re-derived from the current catalog;
// the stored rows are not touched.
func (s *ContractService) GetContractsForClient(ctx context.Context, principal model.Principal) ([]ContractView, error) {
	email := principal.NormalizedEmail()
	if email == "" {
		return nil, ErrPermissionDenied
	}

	contracts, err := s.contracts.ListByClientEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	catalogs := map[uuid.UUID][]model.PricingItem{}
	views := make([]ContractView, 0, len(contracts))
	for i := range contracts {
		contract := contracts[i]

		catalog, ok := catalogs[contract.OutfitterID]
		if !ok {
			catalog, err = s.pricing.ListByOutfitter(ctx, contract.OutfitterID)
			if err != nil {
				return nil, err
			}
			catalogs[contract.OutfitterID] = catalog
		}

		var hunt *model.Hunt
		if contract.HuntID != nil {
			hunt, err = s.hunts.GetByID(ctx, *contract.HuntID)
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, err
			}
		}

		materialize(&contract, catalog)

		view := ContractView{
			Contract:             contract,
			NeedsCompleteBooking: contract.NeedsCompleteBooking(),
			AddOnRates:           pricing.ResolveAddOnRates(catalog),
		}
		if hunt != nil {
			view.Hunt = &HuntSummary{
				ID:        hunt.ID,
				Title:     hunt.Title,
				Species:   hunt.Species,
				Unit:      hunt.Unit,
				Weapon:    hunt.Weapon,
				StartAt:   hunt.StartAt,
				EndAt:     hunt.EndAt,
				HuntCode:  hunt.HuntCode,
				TagStatus: hunt.TagStatus,
			}
			if view.NeedsCompleteBooking {
				if plan := pricing.MatchGuideFeePlan(catalog, hunt.Species, hunt.Weapon); plan != nil {
					view.SuggestedPlanID = &plan.ID
				}
			}
		}
		views = append(views, view)
	}
	return views, nil
}

// GetContractDocument assembles the render-ready document for the PDF
// download. Admins of the owning outfitter and the contract's client may
// fetch it.
func (s *ContractService) GetContractDocument(ctx context.Context, principal model.Principal, contractID uuid.UUID) (*model.ContractDocument, error) {
	var contract *model.HuntContract
	var err error
	if principal.IsAdmin() {
		contract, err = s.getAdminContract(ctx, principal, contractID)
	} else {
		contract, err = s.getOwnedContract(ctx, principal, contractID)
	}
	if err != nil {
		return nil, err
	}

	catalog, err := s.pricing.ListByOutfitter(ctx, contract.OutfitterID)
	if err != nil {
		return nil, err
	}

	var hunt *model.Hunt
	if contract.HuntID != nil {
		hunt, err = s.hunts.GetByID(ctx, *contract.HuntID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	bill := materialize(contract, catalog)
	lines := make([]model.BillLine, 0, len(bill.LineItems))
	for _, item := range bill.LineItems {
		lines = append(lines, model.BillLine{
			Label:       item.Label,
			Quantity:    item.Quantity,
			RateCents:   item.RateCents,
			AmountCents: item.AmountCents,
		})
	}

	return &model.ContractDocument{
		Contract: *contract,
		Hunt:     hunt,
		Lines:    lines,
	}, nil
}

var reportStatusOrder = []model.ContractStatus{
	model.ContractStatusDraft,
	model.ContractStatusPendingClientCompletion,
	model.ContractStatusPendingAdminReview,
	model.ContractStatusReadyForSignature,
	model.ContractStatusSentToDocusign,
	model.ContractStatusClientSigned,
	model.ContractStatusAdminSigned,
	model.ContractStatusFullyExecuted,
}

// BuildContractsReport groups the outfitter's contracts by lifecycle status
// for the workbook export.
func (s *ContractService) BuildContractsReport(ctx context.Context, principal model.Principal) (*model.ContractsReport, error) {
	if !principal.IsAdmin() {
		return nil, ErrPermissionDenied
	}

	contracts, err := s.contracts.ListByOutfitter(ctx, principal.OutfitterID, nil)
	if err != nil {
		return nil, err
	}

	byStatus := map[model.ContractStatus][]model.HuntContract{}
	var totalCents int64
	for _, contract := range contracts {
		byStatus[contract.Status] = append(byStatus[contract.Status], contract)
		totalCents += contract.TotalCents
	}

	report := &model.ContractsReport{
		OutfitterID:    principal.OutfitterID,
		GeneratedAt:    time.Now().UTC(),
		TotalContracts: len(contracts),
		TotalCents:     totalCents,
	}
	for _, status := range reportStatusOrder {
		group := byStatus[status]
		if len(group) == 0 {
			continue
		}
		report.Groups = append(report.Groups, model.StatusGroup{Status: status, Contracts: group})
	}
	return report, nil
}
