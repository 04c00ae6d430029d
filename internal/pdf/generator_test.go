package pdf

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/outfitterhq/contracts-service/internal/model"
)

func TestGenerateFullyExecutedContract(t *testing.T) {
	huntID := uuid.New()
	signedAt := time.Date(2025, time.October, 2, 12, 0, 0, 0, time.UTC)
	startAt := time.Date(2025, time.September, 1, 0, 0, 0, 0, time.UTC)
	endAt := time.Date(2025, time.September, 7, 23, 59, 59, 0, time.UTC)

	doc := model.ContractDocument{
		Contract: model.HuntContract{
			ID:             uuid.New(),
			HuntID:         &huntID,
			ClientEmail:    "client@x.com",
			Status:         model.ContractStatusFullyExecuted,
			Content:        "Agreement prose.\n\n----------------------------------------\nBILL\n\n5-Day Elk Hunt: $5000.00\n\nTotal: $5000.00",
			GuideFeeCents:  500000,
			TotalCents:     500000,
			ClientSignedAt: &signedAt,
			AdminSignedAt:  &signedAt,
		},
		Hunt: &model.Hunt{
			ID:      huntID,
			Title:   "September Elk Hunt",
			Species: "Elk",
			Unit:    "23",
			Weapon:  "Rifle",
			StartAt: &startAt,
			EndAt:   &endAt,
		},
		Lines: []model.BillLine{
			{Label: "5-Day Elk Hunt", Quantity: 1, RateCents: 500000, AmountCents: 500000},
		},
	}

	content, err := NewGenerator().Generate(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.HasPrefix(content, []byte("%PDF")) {
		t.Fatal("output is not a PDF")
	}
}

func TestGenerateWithoutHunt(t *testing.T) {
	doc := model.ContractDocument{
		Contract: model.HuntContract{
			ID:          uuid.New(),
			ClientEmail: "client@x.com",
			Status:      model.ContractStatusPendingClientCompletion,
		},
	}

	content, err := NewGenerator().Generate(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(content) == 0 {
		t.Fatal("expected PDF bytes")
	}
}

func TestProsePreambleStripsBillBlock(t *testing.T) {
	content := "Agreement prose.\n\n----------------------------------------\nBILL\n\nGuide Fee: $0.00\n\nTotal: $0.00"
	got := prosePreamble(content)
	if got != "Agreement prose." {
		t.Fatalf("unexpected preamble: %q", got)
	}
}
