package model

import (
	"time"

	"github.com/google/uuid"
)

type TagStatus string

const (
	TagStatusPending      TagStatus = "pending"
	TagStatusApplied      TagStatus = "applied"
	TagStatusDrawn        TagStatus = "drawn"
	TagStatusUnsuccessful TagStatus = "unsuccessful"
	TagStatusConfirmed    TagStatus = "confirmed"
)

// TriggersContract reports whether a tag status means the client holds a
// tag and a contract should exist for the hunt.
func (s TagStatus) TriggersContract() bool {
	return s == TagStatusDrawn || s == TagStatusConfirmed
}

func ParseTagStatus(raw string) (TagStatus, bool) {
	switch TagStatus(raw) {
	case TagStatusPending, TagStatusApplied, TagStatusDrawn, TagStatusUnsuccessful, TagStatusConfirmed:
		return TagStatus(raw), true
	default:
		return "", false
	}
}

type Hunt struct {
	ID               uuid.UUID  `json:"id"`
	OutfitterID      uuid.UUID  `json:"outfitter_id"`
	Title            string     `json:"title"`
	Species          string     `json:"species"`
	Unit             string     `json:"unit"`
	Weapon           string     `json:"weapon"`
	StartAt          *time.Time `json:"start_at,omitempty"`
	EndAt            *time.Time `json:"end_at,omitempty"`
	HuntCode         *string    `json:"hunt_code,omitempty"`
	WindowStart      *time.Time `json:"window_start,omitempty"`
	WindowEnd        *time.Time `json:"window_end,omitempty"`
	PrivateLandTagID *uuid.UUID `json:"private_land_tag_id,omitempty"`
	ClientEmail      *string    `json:"client_email,omitempty"`
	TagStatus        TagStatus  `json:"tag_status"`
	PricingItemID    *uuid.UUID `json:"pricing_item_id,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}
