package services

import (
	"context"
	"fmt"
	"time"

	"github.com/DIGITALIZART-STUDIO/ghogar-admin/internal/models"
	"github.com/DIGITALIZART-STUDIO/ghogar-admin/internal/reconcile"
)

type quotaFetcher interface {
	GetQuotaStatus(ctx context.Context, reservationID, excludeTransactionID string) (models.QuotaStatus, error)
}

// CatalogService loads quota catalogs through the Redis read cache. It is
// read-only; invalidation is driven by the submission path publishing
// mutation events.
type CatalogService struct {
	backend quotaFetcher
	cache   *RedisCache
	ttl     time.Duration
}

// NewCatalogService creates the loader. cache may be nil, in which case
// every load goes straight to the core API.
func NewCatalogService(backend quotaFetcher, cache *RedisCache, ttl time.Duration) *CatalogService {
	return &CatalogService{backend: backend, cache: cache, ttl: ttl}
}

func catalogKey(reservationID, excludeTransactionID string) string {
	return fmt.Sprintf("%s:%s:%s", GroupQuotaStatus, reservationID, excludeTransactionID)
}

// Load returns the catalog for a reservation plus its snapshot version.
// excludeTransactionID makes an edited transaction's own quotas visible as
// available. fresh bypasses the cache (the manual refresh path) and
// repopulates it.
func (s *CatalogService) Load(ctx context.Context, reservationID, excludeTransactionID string, fresh bool) (models.QuotaStatus, string, error) {
	key := catalogKey(reservationID, excludeTransactionID)

	if s.cache == nil || fresh {
		status, err := s.backend.GetQuotaStatus(ctx, reservationID, excludeTransactionID)
		if err != nil {
			return models.QuotaStatus{}, "", err
		}
		if s.cache != nil {
			_ = s.cache.Set(ctx, key, status, s.ttl)
		}
		return status, reconcile.CatalogVersion(status), nil
	}

	status, err := GetOrSet(s.cache, ctx, key, s.ttl, func() (models.QuotaStatus, error) {
		return s.backend.GetQuotaStatus(ctx, reservationID, excludeTransactionID)
	})
	if err != nil {
		return models.QuotaStatus{}, "", err
	}
	return status, reconcile.CatalogVersion(status), nil
}
