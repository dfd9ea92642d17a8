package services

import (
	"context"
	"errors"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/DIGITALIZART-STUDIO/ghogar-admin/internal/logger"
)

// Read-cache group names. A successful transaction mutates quota paid-state,
// which affects reservation-level aggregates, so all of these go stale
// together.
const (
	GroupTransactions = "transactions"
	GroupQuotaStatus  = "quota-status"
	GroupReservations = "reservations"
)

// MutationEvent describes a transaction mutation that read caches must
// react to. A zero ReservationID means the scope is unknown and hooks
// should drop their whole group.
type MutationEvent struct {
	ReservationID string
	TransactionID string
}

// InvalidationHook reacts to a mutation by dropping whatever cached reads
// the group owns.
type InvalidationHook func(ctx context.Context, ev MutationEvent) error

// Invalidator is the explicit contract between the mutation path and each
// read cache: groups register a hook once at startup, mutations publish a
// typed event. No string-keyed broadcast lists.
type Invalidator struct {
	mu    sync.RWMutex
	hooks map[string]InvalidationHook
}

// NewInvalidator creates an empty registry.
func NewInvalidator() *Invalidator {
	return &Invalidator{hooks: make(map[string]InvalidationHook)}
}

// Register adds a hook for a cache group, replacing any existing one.
func (r *Invalidator) Register(group string, hook InvalidationHook) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hooks[group] = hook
}

// Groups returns the registered group names in sorted order.
func (r *Invalidator) Groups() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.hooks))
	for g := range r.hooks {
		out = append(out, g)
	}
	sort.Strings(out)
	return out
}

// Publish runs every registered hook. Hook failures do not stop the
// remaining hooks; the joined error is returned for logging.
func (r *Invalidator) Publish(ctx context.Context, ev MutationEvent) error {
	r.mu.RLock()
	hooks := make(map[string]InvalidationHook, len(r.hooks))
	for g, h := range r.hooks {
		hooks[g] = h
	}
	r.mu.RUnlock()

	var errs []error
	for group, hook := range hooks {
		if err := hook(ctx, ev); err != nil {
			logger.Get().Warn("cache invalidation failed",
				zap.String("group", group), zap.Error(err))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RegisterCacheGroups wires the standard Redis-backed groups. Keys are
// namespaced by group prefix, so a group hook is a prefix delete scoped to
// the event's reservation where possible.
func RegisterCacheGroups(inv *Invalidator, cache *RedisCache) {
	inv.Register(GroupQuotaStatus, func(ctx context.Context, ev MutationEvent) error {
		if ev.ReservationID != "" {
			return cache.DeleteByPrefix(ctx, GroupQuotaStatus+":"+ev.ReservationID)
		}
		return cache.DeleteByPrefix(ctx, GroupQuotaStatus+":")
	})
	inv.Register(GroupTransactions, func(ctx context.Context, ev MutationEvent) error {
		// List, by-id and by-reservation variants all live under one prefix.
		return cache.DeleteByPrefix(ctx, GroupTransactions+":")
	})
	inv.Register(GroupReservations, func(ctx context.Context, ev MutationEvent) error {
		return cache.DeleteByPrefix(ctx, GroupReservations+":")
	})
}
