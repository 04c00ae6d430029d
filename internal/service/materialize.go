package service

import (
	"context"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/outfitterhq/contracts-service/internal/model"
	"github.com/outfitterhq/contracts-service/internal/pricing"
)

// billHeadingRe finds the BILL heading line, tolerating surrounding
// whitespace. The separator line above it is stripped separately so older
// content variants (with or without dashes or a leading blank line) all
// split the same way.
var (
	billHeadingRe   = regexp.MustCompile(`(?mi)^[ \t]*bill[ \t]*\r?$`)
	separatorLineRe = regexp.MustCompile(`(?m)^[ \t]*-{3,}[ \t]*$`)
)

// SplitBillSection returns the prose preamble of a contract body, cutting
// everything from the BILL section (separator included) to end-of-text.
// Reports whether a BILL section was found.
func SplitBillSection(content string) (string, bool) {
	loc := billHeadingRe.FindStringIndex(content)
	if loc == nil {
		return strings.TrimRight(content, " \t\r\n"), false
	}

	preamble := strings.TrimRight(content[:loc[0]], " \t\r\n")
	if lastSep := trailingSeparatorIndex(preamble); lastSep >= 0 {
		preamble = strings.TrimRight(preamble[:lastSep], " \t\r\n")
	}
	return preamble, true
}

// trailingSeparatorIndex finds a dashes line only when it is the last thing
// before the BILL heading; separators elsewhere in the prose are kept.
func trailingSeparatorIndex(text string) int {
	matches := separatorLineRe.FindAllStringIndex(text, -1)
	if len(matches) == 0 {
		return -1
	}
	last := matches[len(matches)-1]
	if strings.TrimRight(text[last[1]:], " \t\r\n") != "" {
		return -1
	}
	return last[0]
}

func renderContent(preamble, billText string) string {
	if preamble == "" {
		return billText
	}
	return preamble + "\n\n" + billText
}

// materialize recomputes the contract's bill from its completion payload and
// the outfitter's current catalog, rewriting the stored content and totals.
// Running it twice with the same inputs is a no-op.
func materialize(contract *model.HuntContract, catalog []model.PricingItem) pricing.Bill {
	guideFeeCents := int64(0)
	guideFeeTitle := "Guide Fee"
	if contract.PricingItemID != nil {
		for i := range catalog {
			if catalog[i].ID == *contract.PricingItemID {
				guideFeeCents = catalog[i].Amount * 100
				guideFeeTitle = catalog[i].Title
				break
			}
		}
	}

	rates := pricing.ResolveAddOnRates(catalog)
	bill := pricing.ComputeBill(guideFeeCents, guideFeeTitle, rates, pricing.Quantities{
		ExtraDays:       contract.Completion.ExtraDays,
		ExtraNonHunters: contract.Completion.ExtraNonHunters,
		ExtraSpotters:   contract.Completion.ExtraSpotters,
		RifleRental:     contract.Completion.RifleRental,
	})

	preamble, _ := SplitBillSection(contract.Content)
	contract.Content = renderContent(preamble, bill.Text)
	contract.GuideFeeCents = bill.GuideFeeCents
	contract.AddOnsCents = bill.AddOnsCents
	contract.TotalCents = bill.TotalCents
	return bill
}

type RepairFailure struct {
	ContractID uuid.UUID `json:"contract_id"`
	Error      string    `json:"error"`
}

type RepairReport struct {
	Processed int             `json:"processed"`
	Updated   int             `json:"updated"`
	Failures  []RepairFailure `json:"failures"`
}

// RepairContracts re-materializes every contract of the caller's outfitter.
// Each contract is processed independently: a failure is logged and
// reported, never aborting the rest of the batch.
func (s *ContractService) RepairContracts(ctx context.Context, principal model.Principal) (*RepairReport, error) {
	if !principal.IsAdmin() {
		return nil, ErrPermissionDenied
	}

	contracts, err := s.contracts.ListByOutfitter(ctx, principal.OutfitterID, nil)
	if err != nil {
		return nil, err
	}

	catalog, err := s.pricing.ListByOutfitter(ctx, principal.OutfitterID)
	if err != nil {
		return nil, err
	}

	report := &RepairReport{}
	for i := range contracts {
		contract := contracts[i]
		report.Processed++

		before := contract.Content
		beforeTotal := contract.TotalCents
		materialize(&contract, catalog)
		if contract.Content == before && contract.TotalCents == beforeTotal {
			continue
		}

		if err := s.contracts.Save(ctx, &contract); err != nil {
			s.log.Error().Err(err).
				Str("contract_id", contract.ID.String()).
				Msg("repair pass failed for contract")
			report.Failures = append(report.Failures, RepairFailure{
				ContractID: contract.ID,
				Error:      err.Error(),
			})
			continue
		}
		report.Updated++
	}
	return report, nil
}

func equalFoldTrimmed(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
