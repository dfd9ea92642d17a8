package services

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/DIGITALIZART-STUDIO/ghogar-admin/internal/models"
	"github.com/DIGITALIZART-STUDIO/ghogar-admin/internal/reconcile"
)

type stubTxGetter struct {
	tx  models.Transaction
	err error
}

func (s *stubTxGetter) GetTransaction(ctx context.Context, id string) (models.Transaction, error) {
	return s.tx, s.err
}

func draftService(catalog models.QuotaStatus) (*DraftService, *stubCatalogs) {
	catalogs := &stubCatalogs{status: catalog}
	return NewDraftService(nil, &stubTxGetter{}, catalogs), catalogs
}

func TestCreateEmptyDraft(t *testing.T) {
	svc, _ := draftService(submissionCatalog())

	draft, err := svc.Create(context.Background(), "op-1", "res-1", "")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if draft.Status != models.DraftStatusEditing || !draft.IsActive {
		t.Errorf("new draft = %s/active=%t; want editing/active", draft.Status, draft.IsActive)
	}
	if len(draft.SelectedQuotas) != 0 {
		t.Errorf("new draft has selections: %v", draft.SelectedQuotas)
	}
	if draft.CatalogVersion != reconcile.CatalogVersion(submissionCatalog()) {
		t.Error("draft did not capture the catalog version")
	}
}

func TestCreateEditModeDraftPrunesForeignQuotas(t *testing.T) {
	catalogs := &stubCatalogs{status: submissionCatalog()}
	// The edited transaction claims quota "a" plus one that is gone.
	getter := &stubTxGetter{tx: models.Transaction{
		ID:            "tx-5",
		ReservationID: "res-1",
		AmountPaid:    decimal.NewFromInt(100),
		PaymentMethod: models.PaymentMethodCash,
		PaymentIDs:    []string{"a", "gone"},
	}}
	svc := NewDraftService(nil, getter, catalogs)

	draft, err := svc.Create(context.Background(), "op-1", "", "tx-5")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if draft.ReservationID != "res-1" {
		t.Errorf("ReservationID = %s; want res-1 from the transaction", draft.ReservationID)
	}
	if len(draft.SelectedQuotas) != 1 || draft.SelectedQuotas[0] != "a" {
		t.Errorf("SelectedQuotas = %v; want [a]", draft.SelectedQuotas)
	}
	if !draft.AmountPaid.Equal(decimal.NewFromInt(100)) {
		t.Errorf("AmountPaid = %s; want 100", draft.AmountPaid)
	}
}

func TestToggleDoesNotTouchAmount(t *testing.T) {
	svc, _ := draftService(submissionCatalog())

	draft, err := svc.Create(context.Background(), "op-1", "res-1", "")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	draft.AmountPaid = decimal.NewFromInt(777)

	view, err := svc.Toggle(context.Background(), draft, "a")
	if err != nil {
		t.Fatalf("Toggle() error = %v", err)
	}

	if !draft.AmountPaid.Equal(decimal.NewFromInt(777)) {
		t.Errorf("toggle overwrote the entered amount: %s", draft.AmountPaid)
	}
	if !view.SuggestedAmount.Equal(decimal.NewFromInt(100)) {
		t.Errorf("SuggestedAmount = %s; want 100", view.SuggestedAmount)
	}
	if view.Mismatch.Kind != reconcile.MismatchOver {
		t.Errorf("Mismatch.Kind = %s; want over", view.Mismatch.Kind)
	}
}

func TestMatchTotalCopiesSuggestion(t *testing.T) {
	svc, _ := draftService(submissionCatalog())

	draft, err := svc.Create(context.Background(), "op-1", "res-1", "")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := svc.Toggle(context.Background(), draft, "a"); err != nil {
		t.Fatalf("Toggle() error = %v", err)
	}
	if _, err := svc.Toggle(context.Background(), draft, "b"); err != nil {
		t.Fatalf("Toggle() error = %v", err)
	}

	view, err := svc.MatchTotal(context.Background(), draft)
	if err != nil {
		t.Fatalf("MatchTotal() error = %v", err)
	}
	if !draft.AmountPaid.Equal(decimal.NewFromInt(350)) {
		t.Errorf("AmountPaid = %s; want 350", draft.AmountPaid)
	}
	if !view.Mismatch.Exact() {
		t.Errorf("Mismatch = %+v; want exact", view.Mismatch)
	}
	if !view.Progress.Equal(decimal.NewFromInt(100)) {
		t.Errorf("Progress = %s; want 100", view.Progress)
	}
}

func TestToggleRejectsQuotaOutsideCatalog(t *testing.T) {
	svc, _ := draftService(submissionCatalog())

	draft, err := svc.Create(context.Background(), "op-1", "res-1", "")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if _, err := svc.Toggle(context.Background(), draft, "nope"); !errors.Is(err, ErrQuotaNotInCatalog) {
		t.Errorf("Toggle() error = %v; want ErrQuotaNotInCatalog", err)
	}
}

func TestCatalogChangeClearsStaleSelection(t *testing.T) {
	svc, catalogs := draftService(submissionCatalog())

	draft, err := svc.Create(context.Background(), "op-1", "res-1", "")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := svc.Toggle(context.Background(), draft, "a"); err != nil {
		t.Fatalf("Toggle() error = %v", err)
	}

	// The catalog moves under the draft: quota "a" was claimed elsewhere.
	catalogs.status = models.QuotaStatus{
		ReservationID: "res-1",
		PendingQuotas: []models.Quota{
			{ID: "b", AmountDue: decimal.NewFromInt(250), ReservationID: "res-1"},
		},
	}

	view, err := svc.View(context.Background(), draft)
	if err != nil {
		t.Fatalf("View() error = %v", err)
	}
	if len(draft.SelectedQuotas) != 0 {
		t.Errorf("stale selection survived catalog change: %v", draft.SelectedQuotas)
	}
	if !view.Total.IsZero() {
		t.Errorf("Total = %s; want 0 after rebind", view.Total)
	}
	if draft.CatalogVersion != reconcile.CatalogVersion(catalogs.status) {
		t.Error("draft did not adopt the new catalog version")
	}
}
