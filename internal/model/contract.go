package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type ContractStatus string

const (
	ContractStatusDraft                   ContractStatus = "draft"
	ContractStatusPendingClientCompletion ContractStatus = "pending_client_completion"
	ContractStatusPendingAdminReview      ContractStatus = "pending_admin_review"
	ContractStatusReadyForSignature       ContractStatus = "ready_for_signature"
	ContractStatusSentToDocusign          ContractStatus = "sent_to_docusign"
	ContractStatusClientSigned            ContractStatus = "client_signed"
	ContractStatusAdminSigned             ContractStatus = "admin_signed"
	ContractStatusFullyExecuted           ContractStatus = "fully_executed"
)

// CompletionPayload is the structured data a client submits when completing
// a contract: add-on quantities, chosen dates, and the acknowledgment flag.
// Stored as JSONB on the contract row.
type CompletionPayload struct {
	ExtraDays       int        `json:"extra_days"`
	ExtraNonHunters int        `json:"extra_non_hunters"`
	ExtraSpotters   int        `json:"extra_spotters"`
	RifleRental     int        `json:"rifle_rental"`
	StartDate       *time.Time `json:"start_date,omitempty"`
	EndDate         *time.Time `json:"end_date,omitempty"`
	Acknowledged    bool       `json:"acknowledged"`
}

type HuntContract struct {
	ID                uuid.UUID         `json:"id"`
	OutfitterID       uuid.UUID         `json:"outfitter_id"`
	HuntID            *uuid.UUID        `json:"hunt_id,omitempty"`
	ClientEmail       string            `json:"client_email"`
	Status            ContractStatus    `json:"status"`
	Content           string            `json:"content"`
	PricingItemID     *uuid.UUID        `json:"pricing_item_id,omitempty"`
	GuideFeeCents     int64             `json:"guide_fee_cents"`
	AddOnsCents       int64             `json:"add_ons_cents"`
	TotalCents        int64             `json:"total_cents"`
	Completion        CompletionPayload `json:"completion"`
	ClientCompletedAt *time.Time        `json:"client_completed_at,omitempty"`
	ClientSignedAt    *time.Time        `json:"client_signed_at,omitempty"`
	AdminSignedAt     *time.Time        `json:"admin_signed_at,omitempty"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

// NeedsCompleteBooking is derived, never stored: the contract cannot move
// toward signature until a guide-fee plan is chosen and both hunt dates are
// set.
func (c *HuntContract) NeedsCompleteBooking() bool {
	if c.PricingItemID == nil {
		return true
	}
	return c.Completion.StartDate == nil || c.Completion.EndDate == nil
}

// OwnedBy matches the authenticated caller against the contract's client,
// ignoring case and surrounding whitespace.
func (c *HuntContract) OwnedBy(email string) bool {
	return strings.EqualFold(strings.TrimSpace(c.ClientEmail), strings.TrimSpace(email))
}
