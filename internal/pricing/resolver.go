package pricing

import (
	"strings"

	"github.com/outfitterhq/contracts-service/internal/model"
)

// Default per-unit add-on rates, in whole currency units, used when the
// outfitter has not configured a matching catalog item. A missing catalog
// entry never fails a bill computation.
const (
	DefaultExtraDayRate    int64 = 100
	DefaultNonHunterRate   int64 = 75
	DefaultSpotterRate     int64 = 50
	DefaultRifleRentalRate int64 = 500
)

// AddOnRates is the resolved per-unit rate snapshot for one outfitter, in
// minor currency units.
type AddOnRates struct {
	ExtraDayCents    int64 `json:"extra_day_cents"`
	NonHunterCents   int64 `json:"non_hunter_cents"`
	SpotterCents     int64 `json:"spotter_cents"`
	RifleRentalCents int64 `json:"rifle_rental_cents"`
}

// ResolveAddOnRates resolves all four add-on rates from an outfitter's
// catalog. This is the single place the matching precedence lives; call
// sites must never reimplement it.
func ResolveAddOnRates(items []model.PricingItem) AddOnRates {
	return AddOnRates{
		ExtraDayCents:    ResolveAddOnRate(items, model.AddOnTypeExtraDays),
		NonHunterCents:   ResolveAddOnRate(items, model.AddOnTypeNonHunter),
		SpotterCents:     ResolveAddOnRate(items, model.AddOnTypeSpotter),
		RifleRentalCents: ResolveAddOnRate(items, model.AddOnTypeRifleRental),
	}
}

// ResolveAddOnRate returns the per-unit rate in minor units for one add-on
// type. Precedence: an item carrying the explicit add-on type tag wins;
// otherwise add-on-category items are matched by title; otherwise the
// documented default applies.
func ResolveAddOnRate(items []model.PricingItem, addOnType model.AddOnType) int64 {
	if item := findAddOnItem(items, addOnType); item != nil {
		return item.Amount * 100
	}
	return defaultRate(addOnType) * 100
}

func findAddOnItem(items []model.PricingItem, addOnType model.AddOnType) *model.PricingItem {
	for i := range items {
		if items[i].AddOnType != nil && *items[i].AddOnType == addOnType {
			return &items[i]
		}
	}
	for i := range items {
		item := &items[i]
		// Guide-fee plans are never add-on candidates: a "5-Day Hunt"
		// line item must not match as an extra day.
		if item.Category != model.PricingCategoryAddOns || item.AddOnType != nil {
			continue
		}
		if titleMatchesAddOn(item.Title, addOnType) {
			return item
		}
	}
	return nil
}

func titleMatchesAddOn(title string, addOnType model.AddOnType) bool {
	t := strings.ToLower(title)
	switch addOnType {
	case model.AddOnTypeExtraDays:
		if strings.Contains(t, "non") {
			return false
		}
		return strings.Contains(t, "additional day") ||
			strings.Contains(t, "extra day") ||
			strings.Contains(t, "day")
	case model.AddOnTypeNonHunter:
		return strings.Contains(t, "non") && strings.Contains(t, "hunter")
	case model.AddOnTypeSpotter:
		return strings.Contains(t, "spotter")
	case model.AddOnTypeRifleRental:
		return strings.Contains(t, "rifle") && strings.Contains(t, "rent")
	default:
		return false
	}
}

func defaultRate(addOnType model.AddOnType) int64 {
	switch addOnType {
	case model.AddOnTypeExtraDays:
		return DefaultExtraDayRate
	case model.AddOnTypeNonHunter:
		return DefaultNonHunterRate
	case model.AddOnTypeSpotter:
		return DefaultSpotterRate
	case model.AddOnTypeRifleRental:
		return DefaultRifleRentalRate
	default:
		return 0
	}
}

// MatchGuideFeePlan finds the first guide-fee catalog item whose title
// mentions both the hunt's species and weapon, used to suggest a plan for
// contracts that still need booking. Returns nil when nothing matches.
func MatchGuideFeePlan(items []model.PricingItem, species, weapon string) *model.PricingItem {
	species = strings.ToLower(strings.TrimSpace(species))
	weapon = strings.ToLower(strings.TrimSpace(weapon))
	for i := range items {
		item := &items[i]
		if !item.IsGuideFee() {
			continue
		}
		t := strings.ToLower(item.Title)
		if species != "" && !strings.Contains(t, species) {
			continue
		}
		if weapon != "" && !strings.Contains(t, weapon) {
			continue
		}
		return item
	}
	return nil
}
