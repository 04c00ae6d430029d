package pricing

import (
	"fmt"
	"strings"
)

// Quantities are the client-chosen add-on counts. Negative values are
// clamped to zero before any math happens.
type Quantities struct {
	ExtraDays       int `json:"extra_days"`
	ExtraNonHunters int `json:"extra_non_hunters"`
	ExtraSpotters   int `json:"extra_spotters"`
	RifleRental     int `json:"rifle_rental"`
}

func (q Quantities) clamped() Quantities {
	return Quantities{
		ExtraDays:       clampQty(q.ExtraDays),
		ExtraNonHunters: clampQty(q.ExtraNonHunters),
		ExtraSpotters:   clampQty(q.ExtraSpotters),
		RifleRental:     clampQty(q.RifleRental),
	}
}

func clampQty(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

type LineItem struct {
	Label       string `json:"label"`
	Quantity    int    `json:"quantity"`
	RateCents   int64  `json:"rate_cents"`
	AmountCents int64  `json:"amount_cents"`
}

// Bill is the structured breakdown plus the canonical BILL text block. The
// same inputs always produce a byte-identical Text, which is what makes the
// materializer's repair pass idempotent.
type Bill struct {
	LineItems     []LineItem `json:"line_items"`
	GuideFeeCents int64      `json:"guide_fee_cents"`
	AddOnsCents   int64      `json:"add_ons_cents"`
	TotalCents    int64      `json:"total_cents"`
	Text          string     `json:"text"`
}

const billSeparator = "----------------------------------------"

type addOnLine struct {
	label string
	unit  string
	qty   int
	rate  int64
}

// ComputeBill is pure: no clock, no store, no randomness. It is invoked at
// submission time and again by every repair pass.
func ComputeBill(guideFeeCents int64, guideFeeTitle string, rates AddOnRates, quantities Quantities) Bill {
	q := quantities.clamped()

	if strings.TrimSpace(guideFeeTitle) == "" {
		guideFeeTitle = "Guide Fee"
	}

	items := []LineItem{{
		Label:       guideFeeTitle,
		Quantity:    1,
		RateCents:   guideFeeCents,
		AmountCents: guideFeeCents,
	}}

	// Fixed order: extra days, non-hunters, spotters, rifle rental.
	addOns := []addOnLine{
		{label: "Extra Days", unit: "day", qty: q.ExtraDays, rate: rates.ExtraDayCents},
		{label: "Non-Hunters", unit: "person", qty: q.ExtraNonHunters, rate: rates.NonHunterCents},
		{label: "Spotters", unit: "spotter", qty: q.ExtraSpotters, rate: rates.SpotterCents},
		{label: "Rifle Rental", unit: "rifle", qty: q.RifleRental, rate: rates.RifleRentalCents},
	}

	var addOnsCents int64
	for _, a := range addOns {
		if a.qty <= 0 {
			continue
		}
		amount := int64(a.qty) * a.rate
		addOnsCents += amount
		items = append(items, LineItem{
			Label:       a.label,
			Quantity:    a.qty,
			RateCents:   a.rate,
			AmountCents: amount,
		})
	}

	total := guideFeeCents + addOnsCents

	var b strings.Builder
	b.WriteString(billSeparator)
	b.WriteString("\nBILL\n\n")
	b.WriteString(fmt.Sprintf("%s: $%s\n", guideFeeTitle, FormatCents(guideFeeCents)))
	for _, a := range addOns {
		if a.qty <= 0 {
			continue
		}
		b.WriteString(fmt.Sprintf("%s (%d × $%s/%s): $%s\n",
			a.label, a.qty, FormatCents(a.rate), a.unit, FormatCents(int64(a.qty)*a.rate)))
	}
	b.WriteString(fmt.Sprintf("\nTotal: $%s", FormatCents(total)))

	return Bill{
		LineItems:     items,
		GuideFeeCents: guideFeeCents,
		AddOnsCents:   addOnsCents,
		TotalCents:    total,
		Text:          b.String(),
	}
}

// FormatCents renders minor units with exactly two decimal places.
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}
