package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/outfitterhq/contracts-service/internal/model"
)

func adminPrincipal(outfitterID uuid.UUID) model.Principal {
	return model.Principal{
		UserID:      uuid.New(),
		OutfitterID: outfitterID,
		Email:       "admin@outfitter.test",
		Role:        model.RoleAdmin,
	}
}

func clientPrincipal(email string) model.Principal {
	return model.Principal{
		UserID: uuid.New(),
		Email:  email,
		Role:   model.RoleClient,
	}
}

func (e *testEnv) seedHunt(outfitterID uuid.UUID, clientEmail string) model.Hunt {
	hunt := model.Hunt{
		ID:          uuid.New(),
		OutfitterID: outfitterID,
		Title:       "September Elk Hunt",
		Species:     "Elk",
		Unit:        "23",
		Weapon:      "Rifle",
		ClientEmail: strPtr(clientEmail),
		TagStatus:   model.TagStatusApplied,
	}
	e.hunts.hunts[hunt.ID] = hunt
	return hunt
}

func (e *testEnv) seedGuideFeePlan(outfitterID uuid.UUID, includedDays int, amount int64) model.PricingItem {
	item := model.PricingItem{
		ID:           uuid.New(),
		OutfitterID:  outfitterID,
		Title:        "5-Day Elk Hunt",
		Category:     model.PricingCategoryGuideFees,
		Amount:       amount,
		IncludedDays: &includedDays,
	}
	e.pricing.items = append(e.pricing.items, item)
	return item
}

func TestUpdateTagStatusAutoCreatesContractOnce(t *testing.T) {
	env := newTestEnv()
	outfitterID := uuid.New()
	hunt := env.seedHunt(outfitterID, "client@x.com")
	admin := adminPrincipal(outfitterID)

	_, contract, err := env.service.UpdateTagStatus(context.Background(), admin, hunt.ID, model.TagStatusDrawn)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if contract == nil {
		t.Fatal("expected a contract to be auto-created")
	}
	if contract.Status != model.ContractStatusPendingClientCompletion {
		t.Fatalf("expected pending_client_completion, got %s", contract.Status)
	}
	if !contract.NeedsCompleteBooking() {
		t.Fatal("fresh contract must need booking completion")
	}

	// Repeating the trigger must not create a second contract.
	_, again, err := env.service.UpdateTagStatus(context.Background(), admin, hunt.ID, model.TagStatusConfirmed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if again.ID != contract.ID {
		t.Fatal("expected the same contract on repeat trigger")
	}
	if len(env.contracts.contracts) != 1 {
		t.Fatalf("expected exactly one contract row, got %d", len(env.contracts.contracts))
	}
}

func TestEnsureContractRequiresClientEmail(t *testing.T) {
	env := newTestEnv()
	hunt := env.seedHunt(uuid.New(), "client@x.com")
	hunt.ClientEmail = nil

	_, _, err := env.service.EnsureContractForHunt(context.Background(), &hunt)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func (e *testEnv) seedContract(hunt model.Hunt, status model.ContractStatus) model.HuntContract {
	huntID := hunt.ID
	contract := model.HuntContract{
		ID:          uuid.New(),
		OutfitterID: hunt.OutfitterID,
		HuntID:      &huntID,
		ClientEmail: strings.ToLower(*hunt.ClientEmail),
		Status:      status,
		Content:     "Agreement prose.",
	}
	e.contracts.contracts[contract.ID] = contract
	return contract
}

func TestSubmitCompletionHappyPath(t *testing.T) {
	env := newTestEnv()
	outfitterID := uuid.New()
	hunt := env.seedHunt(outfitterID, "client@x.com")
	hunt.WindowStart = datePtr(2025, time.September, 1)
	hunt.WindowEnd = datePtr(2025, time.September, 20)
	env.hunts.hunts[hunt.ID] = hunt

	plan := env.seedGuideFeePlan(outfitterID, 5, 5000)
	contract := env.seedContract(hunt, model.ContractStatusPendingClientCompletion)
	stored := env.contracts.contracts[contract.ID]
	stored.PricingItemID = &plan.ID
	env.contracts.contracts[contract.ID] = stored

	start := date(2025, time.September, 1)
	end := date(2025, time.September, 7)
	updated, err := env.service.SubmitCompletion(context.Background(), clientPrincipal("client@x.com"), contract.ID, SubmitCompletionInput{
		StartDate:    &start,
		EndDate:      &end,
		Acknowledged: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Status != model.ContractStatusPendingAdminReview {
		t.Fatalf("expected pending_admin_review, got %s", updated.Status)
	}
	if updated.ClientCompletedAt == nil {
		t.Fatal("client_completed_at must be stamped")
	}
	if !strings.Contains(updated.Content, "Total: $5000.00") {
		t.Fatalf("expected recomputed bill in content:\n%s", updated.Content)
	}
	if updated.Completion.StartDate == nil || !updated.Completion.StartDate.Equal(start) {
		t.Fatal("completion payload must carry the submitted start date")
	}
}

func TestSubmitCompletionRejectsDatesOutsideWindow(t *testing.T) {
	env := newTestEnv()
	outfitterID := uuid.New()
	hunt := env.seedHunt(outfitterID, "client@x.com")
	hunt.WindowStart = datePtr(2025, time.September, 1)
	hunt.WindowEnd = datePtr(2025, time.September, 20)
	env.hunts.hunts[hunt.ID] = hunt
	contract := env.seedContract(hunt, model.ContractStatusPendingClientCompletion)

	start := date(2025, time.August, 31)
	end := date(2025, time.September, 7)
	_, err := env.service.SubmitCompletion(context.Background(), clientPrincipal("client@x.com"), contract.ID, SubmitCompletionInput{
		StartDate:    &start,
		EndDate:      &end,
		Acknowledged: true,
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if !strings.Contains(err.Error(), "2025-09-01") {
		t.Fatalf("error must name the season window: %v", err)
	}
}

func TestSubmitCompletionRequiresAcknowledgment(t *testing.T) {
	env := newTestEnv()
	hunt := env.seedHunt(uuid.New(), "client@x.com")
	contract := env.seedContract(hunt, model.ContractStatusPendingClientCompletion)

	start := date(2025, time.September, 1)
	end := date(2025, time.September, 5)
	_, err := env.service.SubmitCompletion(context.Background(), clientPrincipal("client@x.com"), contract.ID, SubmitCompletionInput{
		StartDate: &start,
		EndDate:   &end,
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if !strings.Contains(err.Error(), "acknowledgment") {
		t.Fatalf("error must mention the acknowledgment: %v", err)
	}
}

func TestSubmitCompletionConflictNamesCurrentStatus(t *testing.T) {
	env := newTestEnv()
	hunt := env.seedHunt(uuid.New(), "client@x.com")
	contract := env.seedContract(hunt, model.ContractStatusPendingAdminReview)

	_, err := env.service.SubmitCompletion(context.Background(), clientPrincipal("client@x.com"), contract.ID, SubmitCompletionInput{
		Acknowledged: true,
	})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected conflict error, got %v", err)
	}
	if !strings.Contains(err.Error(), string(model.ContractStatusPendingAdminReview)) {
		t.Fatalf("conflict error must name the current status: %v", err)
	}
}

func TestContractOwnershipIsCaseInsensitive(t *testing.T) {
	env := newTestEnv()
	hunt := env.seedHunt(uuid.New(), "a@x.com")
	contract := env.seedContract(hunt, model.ContractStatusPendingClientCompletion)

	_, err := env.service.SubmitCompletion(context.Background(), clientPrincipal("b@x.com"), contract.ID, SubmitCompletionInput{
		Acknowledged: true,
	})
	if !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ownership rejection, got %v", err)
	}

	_, err = env.service.SubmitCompletion(context.Background(), clientPrincipal("B@X.com"), contract.ID, SubmitCompletionInput{
		Acknowledged: true,
	})
	if !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("ownership must ignore case, got %v", err)
	}

	// The owner with different casing passes ownership (and fails later
	// on unresolved dates instead).
	_, err = env.service.SubmitCompletion(context.Background(), clientPrincipal("A@X.COM"), contract.ID, SubmitCompletionInput{
		Acknowledged: true,
	})
	if errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("matching owner was rejected: %v", err)
	}
}

func TestApproveRequiresCompletedBooking(t *testing.T) {
	env := newTestEnv()
	outfitterID := uuid.New()
	hunt := env.seedHunt(outfitterID, "client@x.com")
	contract := env.seedContract(hunt, model.ContractStatusPendingAdminReview)
	admin := adminPrincipal(outfitterID)

	_, err := env.service.Approve(context.Background(), admin, contract.ID)
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected conflict for incomplete booking, got %v", err)
	}

	plan := env.seedGuideFeePlan(outfitterID, 5, 5000)
	stored := env.contracts.contracts[contract.ID]
	stored.PricingItemID = &plan.ID
	stored.Completion.StartDate = datePtr(2025, time.September, 1)
	stored.Completion.EndDate = datePtr(2025, time.September, 5)
	env.contracts.contracts[contract.ID] = stored

	approved, err := env.service.Approve(context.Background(), admin, contract.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if approved.Status != model.ContractStatusReadyForSignature {
		t.Fatalf("expected ready_for_signature, got %s", approved.Status)
	}
}

func TestReturnForCompletionReopensSubmission(t *testing.T) {
	env := newTestEnv()
	outfitterID := uuid.New()
	hunt := env.seedHunt(outfitterID, "client@x.com")
	hunt.StartAt = datePtr(2025, time.September, 1)
	hunt.EndAt = datePtr(2025, time.September, 5)
	env.hunts.hunts[hunt.ID] = hunt
	contract := env.seedContract(hunt, model.ContractStatusPendingAdminReview)

	returned, err := env.service.ReturnForCompletion(context.Background(), adminPrincipal(outfitterID), contract.ID, "dates look wrong")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if returned.Status != model.ContractStatusPendingClientCompletion {
		t.Fatalf("expected pending_client_completion, got %s", returned.Status)
	}

	_, err = env.service.SubmitCompletion(context.Background(), clientPrincipal("client@x.com"), contract.ID, SubmitCompletionInput{
		Acknowledged: true,
	})
	if err != nil {
		t.Fatalf("resubmission after return must be allowed: %v", err)
	}
}

func TestSendForSignature(t *testing.T) {
	env := newTestEnv()
	outfitterID := uuid.New()
	hunt := env.seedHunt(outfitterID, "client@x.com")
	contract := env.seedContract(hunt, model.ContractStatusReadyForSignature)
	admin := adminPrincipal(outfitterID)

	sent, err := env.service.SendForSignature(context.Background(), admin, contract.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sent.Status != model.ContractStatusSentToDocusign {
		t.Fatalf("expected sent_to_docusign, got %s", sent.Status)
	}

	_, err = env.service.SendForSignature(context.Background(), admin, contract.ID)
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected conflict on repeat handoff, got %v", err)
	}
}

func TestSignatureFlowClientFirst(t *testing.T) {
	env := newTestEnv()
	outfitterID := uuid.New()
	hunt := env.seedHunt(outfitterID, "client@x.com")
	contract := env.seedContract(hunt, model.ContractStatusSentToDocusign)

	signed, err := env.service.Sign(context.Background(), clientPrincipal("client@x.com"), contract.ID, SignerClient)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if signed.Status != model.ContractStatusClientSigned {
		t.Fatalf("expected client_signed, got %s", signed.Status)
	}
	if signed.ClientSignedAt == nil {
		t.Fatal("client_signed_at must be stamped")
	}

	executed, err := env.service.Sign(context.Background(), adminPrincipal(outfitterID), contract.ID, SignerAdmin)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if executed.Status != model.ContractStatusFullyExecuted {
		t.Fatalf("expected fully_executed, got %s", executed.Status)
	}
	if executed.ClientSignedAt == nil || executed.AdminSignedAt == nil {
		t.Fatal("fully executed requires both signature timestamps")
	}
}

func TestSignatureFlowAdminFirst(t *testing.T) {
	env := newTestEnv()
	outfitterID := uuid.New()
	hunt := env.seedHunt(outfitterID, "client@x.com")
	contract := env.seedContract(hunt, model.ContractStatusSentToDocusign)

	signed, err := env.service.Sign(context.Background(), adminPrincipal(outfitterID), contract.ID, SignerAdmin)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if signed.Status != model.ContractStatusAdminSigned {
		t.Fatalf("expected admin_signed, got %s", signed.Status)
	}

	executed, err := env.service.Sign(context.Background(), clientPrincipal("client@x.com"), contract.ID, SignerClient)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if executed.Status != model.ContractStatusFullyExecuted {
		t.Fatalf("expected fully_executed, got %s", executed.Status)
	}
}

func TestSignRejectedBeforeHandoff(t *testing.T) {
	env := newTestEnv()
	hunt := env.seedHunt(uuid.New(), "client@x.com")
	contract := env.seedContract(hunt, model.ContractStatusPendingClientCompletion)

	_, err := env.service.Sign(context.Background(), clientPrincipal("client@x.com"), contract.ID, SignerClient)
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if !strings.Contains(err.Error(), string(model.ContractStatusPendingClientCompletion)) {
		t.Fatalf("conflict error must name the current status: %v", err)
	}
}

func TestRepairContractsContinuesPastFailures(t *testing.T) {
	env := newTestEnv()
	outfitterID := uuid.New()
	huntA := env.seedHunt(outfitterID, "a@x.com")
	huntB := env.seedHunt(outfitterID, "b@x.com")

	staleA := env.seedContract(huntA, model.ContractStatusPendingAdminReview)
	staleB := env.seedContract(huntB, model.ContractStatusPendingAdminReview)
	for _, id := range []uuid.UUID{staleA.ID, staleB.ID} {
		stored := env.contracts.contracts[id]
		stored.TotalCents = 999999
		stored.Completion.ExtraDays = 1
		env.contracts.contracts[id] = stored
	}
	env.contracts.failSave[staleA.ID] = true

	report, err := env.service.RepairContracts(context.Background(), adminPrincipal(outfitterID))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Processed != 2 {
		t.Fatalf("expected 2 processed, got %d", report.Processed)
	}
	if report.Updated != 1 {
		t.Fatalf("expected 1 updated, got %d", report.Updated)
	}
	if len(report.Failures) != 1 || report.Failures[0].ContractID != staleA.ID {
		t.Fatalf("expected the failing contract to be reported, got %+v", report.Failures)
	}

	repaired := env.contracts.contracts[staleB.ID]
	if repaired.TotalCents != 10000 {
		t.Fatalf("expected repaired total 10000, got %d", repaired.TotalCents)
	}
}

func TestGetContractsForClientView(t *testing.T) {
	env := newTestEnv()
	outfitterID := uuid.New()
	hunt := env.seedHunt(outfitterID, "client@x.com")
	hunt.TagStatus = model.TagStatusDrawn
	env.hunts.hunts[hunt.ID] = hunt
	env.seedContract(hunt, model.ContractStatusPendingClientCompletion)

	views, err := env.service.GetContractsForClient(context.Background(), clientPrincipal("CLIENT@x.com"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("expected one contract view, got %d", len(views))
	}

	view := views[0]
	if !view.NeedsCompleteBooking {
		t.Fatal("contract without a plan must need booking")
	}
	if view.Hunt == nil || view.Hunt.TagStatus != model.TagStatusDrawn {
		t.Fatal("view must carry the hunt summary")
	}
	if view.AddOnRates.ExtraDayCents != 10000 {
		t.Fatalf("expected default extra-day rate snapshot, got %d", view.AddOnRates.ExtraDayCents)
	}
	if !strings.Contains(view.Contract.Content, "BILL") {
		t.Fatal("view content must carry a materialized bill")
	}
}
