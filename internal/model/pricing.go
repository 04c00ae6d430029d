package model

import (
	"time"

	"github.com/google/uuid"
)

type PricingCategory string

const (
	PricingCategoryGuideFees PricingCategory = "guide fees"
	PricingCategoryAddOns    PricingCategory = "add-ons"
)

// AddOnType is the machine-readable tag an outfitter can put on an add-on
// catalog item. Untagged items fall back to title matching.
type AddOnType string

const (
	AddOnTypeExtraDays   AddOnType = "extra_days"
	AddOnTypeNonHunter   AddOnType = "non_hunter"
	AddOnTypeSpotter     AddOnType = "spotter"
	AddOnTypeRifleRental AddOnType = "rifle_rental"
)

// PricingItem is an outfitter-scoped catalog row. Amount is in whole
// currency units as entered by the outfitter.
type PricingItem struct {
	ID           uuid.UUID       `json:"id"`
	OutfitterID  uuid.UUID       `json:"outfitter_id"`
	Title        string          `json:"title"`
	Category     PricingCategory `json:"category"`
	AddOnType    *AddOnType      `json:"add_on_type,omitempty"`
	Amount       int64           `json:"amount"`
	IncludedDays *int            `json:"included_days,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

func (p *PricingItem) IsGuideFee() bool {
	return p.Category == PricingCategoryGuideFees
}
