package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/outfitterhq/contracts-service/internal/config"
	"github.com/outfitterhq/contracts-service/internal/model"
	"github.com/outfitterhq/contracts-service/internal/pricing"
)

type ContractStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.HuntContract, error)
	GetByHuntID(ctx context.Context, huntID uuid.UUID) (*model.HuntContract, error)
	ListByClientEmail(ctx context.Context, email string) ([]model.HuntContract, error)
	ListByOutfitter(ctx context.Context, outfitterID uuid.UUID, status *model.ContractStatus) ([]model.HuntContract, error)
	Create(ctx context.Context, contract model.HuntContract) (*model.HuntContract, error)
	Save(ctx context.Context, contract *model.HuntContract) error
}

type HuntStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Hunt, error)
	UpdateTagStatus(ctx context.Context, id uuid.UUID, status model.TagStatus) error
	SaveBooking(ctx context.Context, id uuid.UUID, pricingItemID uuid.UUID, startAt, endAt time.Time) error
}

type PricingStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.PricingItem, error)
	ListByOutfitter(ctx context.Context, outfitterID uuid.UUID) ([]model.PricingItem, error)
}

type SeasonStore interface {
	GetWindow(ctx context.Context, huntCode string) (*model.SeasonWindow, error)
}

type ContractService struct {
	contracts     ContractStore
	hunts         HuntStore
	pricing       PricingStore
	seasons       SeasonStore
	seasonTimeout time.Duration
	log           zerolog.Logger
}

func NewContractService(
	contracts ContractStore,
	hunts HuntStore,
	pricingStore PricingStore,
	seasons SeasonStore,
	cfg *config.Config,
	log zerolog.Logger,
) *ContractService {
	timeout := cfg.Seasons.LookupTimeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &ContractService{
		contracts:     contracts,
		hunts:         hunts,
		pricing:       pricingStore,
		seasons:       seasons,
		seasonTimeout: timeout,
		log:           log,
	}
}

// UpdateTagStatus records a draw result or tag purchase on a hunt. Moving
// into drawn/confirmed auto-creates the hunt's contract.
func (s *ContractService) UpdateTagStatus(ctx context.Context, principal model.Principal, huntID uuid.UUID, status model.TagStatus) (*model.Hunt, *model.HuntContract, error) {
	if !principal.IsAdmin() {
		return nil, nil, ErrPermissionDenied
	}

	hunt, err := s.hunts.GetByID(ctx, huntID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, fmt.Errorf("%w: hunt %s", ErrNotFound, huntID)
		}
		return nil, nil, err
	}
	if hunt.OutfitterID != principal.OutfitterID {
		return nil, nil, ErrPermissionDenied
	}

	if err := s.hunts.UpdateTagStatus(ctx, huntID, status); err != nil {
		return nil, nil, err
	}
	hunt.TagStatus = status

	var contract *model.HuntContract
	if status.TriggersContract() {
		contract, _, err = s.EnsureContractForHunt(ctx, hunt)
		if err != nil {
			return nil, nil, err
		}
	}
	return hunt, contract, nil
}

// EnsureContractForHunt creates the hunt's contract if none exists yet. The
// existence check plus the unique index on hunt_id keep retries and
// concurrent draw-result events from producing duplicates.
func (s *ContractService) EnsureContractForHunt(ctx context.Context, hunt *model.Hunt) (*model.HuntContract, bool, error) {
	existing, err := s.contracts.GetByHuntID(ctx, hunt.ID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	if hunt.ClientEmail == nil || strings.TrimSpace(*hunt.ClientEmail) == "" {
		return nil, false, fmt.Errorf("%w: hunt %s has no client email", ErrInvalidInput, hunt.ID)
	}

	huntID := hunt.ID
	contract := model.HuntContract{
		OutfitterID:   hunt.OutfitterID,
		HuntID:        &huntID,
		ClientEmail:   strings.ToLower(strings.TrimSpace(*hunt.ClientEmail)),
		Status:        model.ContractStatusPendingClientCompletion,
		Content:       contractPreamble(hunt),
		PricingItemID: hunt.PricingItemID,
	}

	catalog, err := s.pricing.ListByOutfitter(ctx, hunt.OutfitterID)
	if err != nil {
		return nil, false, err
	}
	materialize(&contract, catalog)

	created, err := s.contracts.Create(ctx, contract)
	if err != nil {
		// Lost a race against a concurrent create; the unique index on
		// hunt_id rejected ours, so the winner's row is the contract.
		if strings.Contains(strings.ToLower(err.Error()), "duplicate") {
			existing, getErr := s.contracts.GetByHuntID(ctx, hunt.ID)
			if getErr == nil {
				return existing, false, nil
			}
		}
		return nil, false, err
	}

	s.log.Info().
		Str("contract_id", created.ID.String()).
		Str("hunt_id", hunt.ID.String()).
		Msg("contract auto-created")
	return created, true, nil
}

func contractPreamble(hunt *model.Hunt) string {
	var b strings.Builder
	b.WriteString("HUNT CONTRACT\n\n")
	b.WriteString(fmt.Sprintf("Hunt: %s\n", hunt.Title))
	if hunt.Species != "" {
		line := hunt.Species
		if hunt.Unit != "" {
			line += ", Unit " + hunt.Unit
		}
		if hunt.Weapon != "" {
			line += ", " + hunt.Weapon
		}
		b.WriteString(line + "\n")
	}
	if hunt.HuntCode != nil && *hunt.HuntCode != "" {
		b.WriteString(fmt.Sprintf("Hunt Code: %s\n", *hunt.HuntCode))
	}
	b.WriteString("\nThis agreement covers guided hunt services for the hunt described above.\n")
	b.WriteString("Final dates and pricing are confirmed upon booking completion.")
	return b.String()
}

type SubmitCompletionInput struct {
	Quantities   pricing.Quantities
	StartDate    *time.Time
	EndDate      *time.Time
	Acknowledged bool
}

// SubmitCompletion is the client's hand-off to admin review. It validates
// the acknowledgment, resolves and window-checks the hunt dates, then
// recomputes and persists the bill.
func (s *ContractService) SubmitCompletion(ctx context.Context, principal model.Principal, contractID uuid.UUID, input SubmitCompletionInput) (*model.HuntContract, error) {
	contract, err := s.getOwnedContract(ctx, principal, contractID)
	if err != nil {
		return nil, err
	}

	if contract.Status != model.ContractStatusPendingClientCompletion {
		return nil, fmt.Errorf("%w: contract is %s, completion can only be submitted while %s",
			ErrConflict, contract.Status, model.ContractStatusPendingClientCompletion)
	}
	if !input.Acknowledged {
		return nil, fmt.Errorf("%w: acknowledgment is required", ErrInvalidInput)
	}

	var hunt *model.Hunt
	if contract.HuntID != nil {
		hunt, err = s.hunts.GetByID(ctx, *contract.HuntID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	start, end, err := resolveHuntDates(input.StartDate, input.EndDate, contract, hunt)
	if err != nil {
		return nil, err
	}
	if err := s.validateSeasonWindow(ctx, hunt, start, end); err != nil {
		return nil, err
	}

	contract.Completion = model.CompletionPayload{
		ExtraDays:       input.Quantities.ExtraDays,
		ExtraNonHunters: input.Quantities.ExtraNonHunters,
		ExtraSpotters:   input.Quantities.ExtraSpotters,
		RifleRental:     input.Quantities.RifleRental,
		StartDate:       &start,
		EndDate:         &end,
		Acknowledged:    true,
	}
	now := time.Now().UTC()
	contract.ClientCompletedAt = &now
	contract.Status = model.ContractStatusPendingAdminReview

	catalog, err := s.pricing.ListByOutfitter(ctx, contract.OutfitterID)
	if err != nil {
		return nil, err
	}
	materialize(contract, catalog)

	if err := s.contracts.Save(ctx, contract); err != nil {
		return nil, err
	}
	return contract, nil
}

// Approve moves a reviewed contract to ready_for_signature. A contract that
// still needs booking completion cannot move toward signature.
func (s *ContractService) Approve(ctx context.Context, principal model.Principal, contractID uuid.UUID) (*model.HuntContract, error) {
	contract, err := s.getAdminContract(ctx, principal, contractID)
	if err != nil {
		return nil, err
	}
	if contract.Status != model.ContractStatusPendingAdminReview {
		return nil, fmt.Errorf("%w: contract is %s, approval requires %s",
			ErrConflict, contract.Status, model.ContractStatusPendingAdminReview)
	}
	if contract.NeedsCompleteBooking() {
		return nil, fmt.Errorf("%w: contract still needs booking completion", ErrConflict)
	}

	contract.Status = model.ContractStatusReadyForSignature
	if err := s.contracts.Save(ctx, contract); err != nil {
		return nil, err
	}
	return contract, nil
}

// ReturnForCompletion sends a contract under review back to the client. The
// reason is surfaced to the caller and logged, not stored on the row.
func (s *ContractService) ReturnForCompletion(ctx context.Context, principal model.Principal, contractID uuid.UUID, reason string) (*model.HuntContract, error) {
	contract, err := s.getAdminContract(ctx, principal, contractID)
	if err != nil {
		return nil, err
	}
	if contract.Status != model.ContractStatusPendingAdminReview {
		return nil, fmt.Errorf("%w: contract is %s, only %s contracts can be returned",
			ErrConflict, contract.Status, model.ContractStatusPendingAdminReview)
	}

	contract.Status = model.ContractStatusPendingClientCompletion
	if err := s.contracts.Save(ctx, contract); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("contract_id", contract.ID.String()).
		Str("reason", reason).
		Msg("contract returned for completion")
	return contract, nil
}

// SendForSignature hands the contract to the signature channel.
func (s *ContractService) SendForSignature(ctx context.Context, principal model.Principal, contractID uuid.UUID) (*model.HuntContract, error) {
	contract, err := s.getAdminContract(ctx, principal, contractID)
	if err != nil {
		return nil, err
	}
	if contract.Status != model.ContractStatusReadyForSignature {
		return nil, fmt.Errorf("%w: contract is %s, signature handoff requires %s",
			ErrConflict, contract.Status, model.ContractStatusReadyForSignature)
	}

	contract.Status = model.ContractStatusSentToDocusign
	if err := s.contracts.Save(ctx, contract); err != nil {
		return nil, err
	}
	return contract, nil
}

type SignerRole string

const (
	SignerClient SignerRole = "client"
	SignerAdmin  SignerRole = "admin"
)

// Sign records one party's signature. The contract is fully executed exactly
// when both signature timestamps exist; the status is kept in lockstep with
// that pair so the two can never disagree.
func (s *ContractService) Sign(ctx context.Context, principal model.Principal, contractID uuid.UUID, role SignerRole) (*model.HuntContract, error) {
	var contract *model.HuntContract
	var err error

	switch role {
	case SignerClient:
		contract, err = s.getOwnedContract(ctx, principal, contractID)
	case SignerAdmin:
		contract, err = s.getAdminContract(ctx, principal, contractID)
	default:
		return nil, fmt.Errorf("%w: unknown signer role %q", ErrInvalidInput, role)
	}
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	switch role {
	case SignerClient:
		switch contract.Status {
		case model.ContractStatusSentToDocusign, model.ContractStatusAdminSigned:
			contract.ClientSignedAt = &now
		default:
			return nil, fmt.Errorf("%w: contract is %s, client signing requires %s or %s",
				ErrConflict, contract.Status, model.ContractStatusSentToDocusign, model.ContractStatusAdminSigned)
		}
	case SignerAdmin:
		switch contract.Status {
		case model.ContractStatusSentToDocusign, model.ContractStatusClientSigned:
			contract.AdminSignedAt = &now
		default:
			return nil, fmt.Errorf("%w: contract is %s, admin signing requires %s or %s",
				ErrConflict, contract.Status, model.ContractStatusSentToDocusign, model.ContractStatusClientSigned)
		}
	}

	switch {
	case contract.ClientSignedAt != nil && contract.AdminSignedAt != nil:
		contract.Status = model.ContractStatusFullyExecuted
	case contract.ClientSignedAt != nil:
		contract.Status = model.ContractStatusClientSigned
	case contract.AdminSignedAt != nil:
		contract.Status = model.ContractStatusAdminSigned
	}

	if err := s.contracts.Save(ctx, contract); err != nil {
		return nil, err
	}
	return contract, nil
}

func (s *ContractService) getOwnedContract(ctx context.Context, principal model.Principal, contractID uuid.UUID) (*model.HuntContract, error) {
	contract, err := s.contracts.GetByID(ctx, contractID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: contract %s", ErrNotFound, contractID)
		}
		return nil, err
	}
	if !contract.OwnedBy(principal.Email) {
		return nil, fmt.Errorf("%w: contract belongs to another client", ErrPermissionDenied)
	}
	return contract, nil
}

func (s *ContractService) getAdminContract(ctx context.Context, principal model.Principal, contractID uuid.UUID) (*model.HuntContract, error) {
	if !principal.IsAdmin() {
		return nil, ErrPermissionDenied
	}
	contract, err := s.contracts.GetByID(ctx, contractID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: contract %s", ErrNotFound, contractID)
		}
		return nil, err
	}
	if contract.OutfitterID != principal.OutfitterID {
		return nil, ErrPermissionDenied
	}
	return contract, nil
}

// resolveHuntDates picks the client-submitted dates first, then previously
// stored completion dates, then the hunt record. Day boundaries are
// normalized to UTC.
func resolveHuntDates(start, end *time.Time, contract *model.HuntContract, hunt *model.Hunt) (time.Time, time.Time, error) {
	if start == nil {
		start = contract.Completion.StartDate
	}
	if end == nil {
		end = contract.Completion.EndDate
	}
	if hunt != nil {
		if start == nil {
			start = hunt.StartAt
		}
		if end == nil {
			end = hunt.EndAt
		}
	}
	if start == nil || end == nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: hunt start and end dates could not be resolved", ErrInvalidInput)
	}

	s := startOfDay(*start)
	e := endOfDay(*end)
	if s.After(e) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: start date %s is after end date %s",
			ErrInvalidInput, s.Format("2006-01-02"), e.Format("2006-01-02"))
	}
	return s, e, nil
}

// validateSeasonWindow checks the range against the hunt's window when one
// is resolvable. An unknown window skips validation rather than failing.
func (s *ContractService) validateSeasonWindow(ctx context.Context, hunt *model.Hunt, start, end time.Time) error {
	window := s.resolveSeasonWindow(ctx, hunt)
	if window == nil {
		return nil
	}

	windowStart := startOfDay(window.StartAt)
	windowEnd := endOfDay(window.EndAt)
	if start.Before(windowStart) || end.After(windowEnd) {
		return fmt.Errorf("%w: dates %s..%s are outside the season window %s..%s",
			ErrInvalidInput,
			start.Format("2006-01-02"), end.Format("2006-01-02"),
			windowStart.Format("2006-01-02"), windowEnd.Format("2006-01-02"))
	}
	return nil
}

func (s *ContractService) resolveSeasonWindow(ctx context.Context, hunt *model.Hunt) *model.SeasonWindow {
	if hunt == nil {
		return nil
	}
	if hunt.WindowStart != nil && hunt.WindowEnd != nil {
		return &model.SeasonWindow{StartAt: *hunt.WindowStart, EndAt: *hunt.WindowEnd}
	}
	if hunt.HuntCode == nil || strings.TrimSpace(*hunt.HuntCode) == "" {
		return nil
	}

	lookupCtx, cancel := context.WithTimeout(ctx, s.seasonTimeout)
	defer cancel()

	window, err := s.seasons.GetWindow(lookupCtx, *hunt.HuntCode)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.log.Warn().Err(err).Str("hunt_code", *hunt.HuntCode).Msg("season window lookup failed, skipping window validation")
		}
		return nil
	}
	return window
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func endOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 23, 59, 59, 0, time.UTC)
}

// inclusiveDays counts calendar days covered by the range, both ends
// included.
func inclusiveDays(start, end time.Time) int {
	return int(startOfDay(end).Sub(startOfDay(start)).Hours()/24) + 1
}
