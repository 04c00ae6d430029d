package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/outfitterhq/contracts-service/internal/model"
	"github.com/outfitterhq/contracts-service/internal/pricing"
)

type CompleteBookingInput struct {
	PricingItemID uuid.UUID
	StartDate     time.Time
	EndDate       time.Time
	Quantities    pricing.Quantities
}

type CompleteBookingResult struct {
	Hunt     *model.Hunt
	Contract *model.HuntContract
}

// CompleteBooking records the client's chosen guide-fee plan, add-on
// quantities, and hunt dates, then rewrites the contract's bill. The hunt
// stays within its season window and the date span must match the plan's
// included days plus any extra days.
func (s *ContractService) CompleteBooking(ctx context.Context, principal model.Principal, huntID uuid.UUID, input CompleteBookingInput) (*CompleteBookingResult, error) {
	hunt, err := s.hunts.GetByID(ctx, huntID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: hunt %s", ErrNotFound, huntID)
		}
		return nil, err
	}

	if err := s.authorizeHuntAccess(principal, hunt); err != nil {
		return nil, err
	}

	item, err := s.pricing.GetByID(ctx, input.PricingItemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: pricing item %s", ErrNotFound, input.PricingItemID)
		}
		return nil, err
	}
	if item.OutfitterID != hunt.OutfitterID {
		return nil, fmt.Errorf("%w: pricing item %s", ErrNotFound, input.PricingItemID)
	}
	if !item.IsGuideFee() {
		return nil, fmt.Errorf("%w: pricing item %q is not a guide-fee plan", ErrInvalidInput, item.Title)
	}

	start := startOfDay(input.StartDate)
	end := endOfDay(input.EndDate)
	if start.After(end) {
		return nil, fmt.Errorf("%w: start date %s is after end date %s",
			ErrInvalidInput, start.Format("2006-01-02"), end.Format("2006-01-02"))
	}

	quantities := input.Quantities
	if quantities.ExtraDays < 0 {
		quantities.ExtraDays = 0
	}
	if item.IncludedDays != nil {
		required := *item.IncludedDays + quantities.ExtraDays
		actual := inclusiveDays(start, end)
		if actual != required {
			return nil, fmt.Errorf("%w: selected dates span %d days but plan %q with %d extra days requires exactly %d",
				ErrInvalidInput, actual, item.Title, quantities.ExtraDays, required)
		}
	}

	if err := s.validateSeasonWindow(ctx, hunt, start, end); err != nil {
		return nil, err
	}

	if err := s.hunts.SaveBooking(ctx, hunt.ID, item.ID, start, end); err != nil {
		return nil, err
	}
	hunt.PricingItemID = &item.ID
	hunt.StartAt = &start
	hunt.EndAt = &end

	contract, err := s.contracts.GetByHuntID(ctx, hunt.ID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		contract, _, err = s.EnsureContractForHunt(ctx, hunt)
		if err != nil {
			return nil, err
		}
	}

	contract.PricingItemID = &item.ID
	acknowledged := contract.Completion.Acknowledged
	contract.Completion = model.CompletionPayload{
		ExtraDays:       quantities.ExtraDays,
		ExtraNonHunters: clampNonNegative(quantities.ExtraNonHunters),
		ExtraSpotters:   clampNonNegative(quantities.ExtraSpotters),
		RifleRental:     clampNonNegative(quantities.RifleRental),
		StartDate:       &start,
		EndDate:         &end,
		Acknowledged:    acknowledged,
	}

	catalog, err := s.pricing.ListByOutfitter(ctx, hunt.OutfitterID)
	if err != nil {
		return nil, err
	}
	materialize(contract, catalog)

	if err := s.contracts.Save(ctx, contract); err != nil {
		return nil, err
	}

	return &CompleteBookingResult{Hunt: hunt, Contract: contract}, nil
}

func (s *ContractService) authorizeHuntAccess(principal model.Principal, hunt *model.Hunt) error {
	if principal.IsAdmin() {
		if hunt.OutfitterID != principal.OutfitterID {
			return ErrPermissionDenied
		}
		return nil
	}
	if hunt.ClientEmail == nil {
		return ErrPermissionDenied
	}
	if !equalFoldTrimmed(*hunt.ClientEmail, principal.Email) {
		return fmt.Errorf("%w: hunt belongs to another client", ErrPermissionDenied)
	}
	return nil
}

func clampNonNegative(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
