package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DIGITALIZART-STUDIO/ghogar-admin/internal/models"
	"github.com/DIGITALIZART-STUDIO/ghogar-admin/internal/reconcile"
)

type countingFetcher struct {
	status models.QuotaStatus
	err    error
	calls  int
}

func (f *countingFetcher) GetQuotaStatus(ctx context.Context, reservationID, excludeTransactionID string) (models.QuotaStatus, error) {
	f.calls++
	return f.status, f.err
}

func TestCatalogLoadWithoutCache(t *testing.T) {
	fetcher := &countingFetcher{status: submissionCatalog()}
	svc := NewCatalogService(fetcher, nil, time.Minute)

	catalog, version, err := svc.Load(context.Background(), "res-1", "", false)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(catalog.PendingQuotas) != 2 {
		t.Fatalf("got %d quotas; want 2", len(catalog.PendingQuotas))
	}
	if version != reconcile.CatalogVersion(catalog) {
		t.Error("version does not match the returned catalog")
	}
	if fetcher.calls != 1 {
		t.Errorf("fetch calls = %d; want 1", fetcher.calls)
	}

	// Without a cache every load hits the core API.
	if _, _, err := svc.Load(context.Background(), "res-1", "", false); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if fetcher.calls != 2 {
		t.Errorf("fetch calls = %d; want 2", fetcher.calls)
	}
}

func TestCatalogLoadPropagatesFetchError(t *testing.T) {
	fetchErr := errors.New("core api unreachable")
	fetcher := &countingFetcher{err: fetchErr}
	svc := NewCatalogService(fetcher, nil, time.Minute)

	_, _, err := svc.Load(context.Background(), "res-1", "", false)
	if !errors.Is(err, fetchErr) {
		t.Errorf("Load() error = %v; want %v", err, fetchErr)
	}
}

func TestCatalogKeyScopesReservationAndExclusion(t *testing.T) {
	// Distinct parameters must map to distinct cache entries, so a
	// parameter change is a re-fetch rather than a stale hit.
	keys := map[string]bool{
		catalogKey("res-1", ""):     true,
		catalogKey("res-1", "tx-1"): true,
		catalogKey("res-2", ""):     true,
	}
	if len(keys) != 3 {
		t.Errorf("catalog keys collide: %v", keys)
	}
}
