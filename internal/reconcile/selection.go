// Package reconcile implements the selection and totals arithmetic of the
// payment reconciliation flow. It is pure computation over a quota catalog
// snapshot; fetching and submission live in the services package.
package reconcile

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/DIGITALIZART-STUDIO/ghogar-admin/internal/models"
)

// Selection is the set of quota ids chosen from one catalog snapshot.
// Order does not matter and ids are unique.
type Selection struct {
	ids map[string]struct{}
}

// NewSelection creates a selection, optionally pre-populated (edit mode).
func NewSelection(ids ...string) *Selection {
	s := &Selection{ids: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		s.ids[id] = struct{}{}
	}
	return s
}

// Toggle adds the id if absent and removes it if present. It returns true
// when the id is selected after the call.
func (s *Selection) Toggle(id string) bool {
	if _, ok := s.ids[id]; ok {
		delete(s.ids, id)
		return false
	}
	s.ids[id] = struct{}{}
	return true
}

// Clear empties the selection.
func (s *Selection) Clear() {
	s.ids = make(map[string]struct{})
}

// Has reports whether the id is selected.
func (s *Selection) Has(id string) bool {
	_, ok := s.ids[id]
	return ok
}

// Len returns the number of selected quotas.
func (s *Selection) Len() int {
	return len(s.ids)
}

// IDs returns the selected ids in sorted order.
func (s *Selection) IDs() []string {
	out := make([]string, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Prune drops ids that are not present in the catalog and returns the ids
// it removed. A selection must never reference quotas outside the currently
// loaded catalog.
func (s *Selection) Prune(catalog models.QuotaStatus) []string {
	var removed []string
	for id := range s.ids {
		if _, ok := catalog.Find(id); !ok {
			delete(s.ids, id)
			removed = append(removed, id)
		}
	}
	sort.Strings(removed)
	return removed
}

// ComputeTotal sums amountDue over the quotas in catalog whose id is in the
// selection. An empty selection totals zero.
func ComputeTotal(s *Selection, catalog models.QuotaStatus) decimal.Decimal {
	total := decimal.Zero
	for _, q := range catalog.PendingQuotas {
		if s.Has(q.ID) {
			total = total.Add(q.AmountDue)
		}
	}
	return total
}

// ComputeProgress returns total as a percentage of totalAvailable, or zero
// when totalAvailable is zero.
func ComputeProgress(total, totalAvailable decimal.Decimal) decimal.Decimal {
	if totalAvailable.IsZero() {
		return decimal.Zero
	}
	return total.Div(totalAvailable).Mul(decimal.NewFromInt(100))
}

// MismatchKind classifies a user-entered amount against the selection total
type MismatchKind string

const (
	MismatchExact MismatchKind = "exact"
	MismatchOver  MismatchKind = "over"
	MismatchUnder MismatchKind = "under"
)

// Mismatch describes how the entered amount relates to the computed total.
// Delta is always non-negative.
type Mismatch struct {
	Kind  MismatchKind    `json:"kind"`
	Delta decimal.Decimal `json:"delta"`
}

// Exact reports whether the amounts match exactly.
func (m Mismatch) Exact() bool {
	return m.Kind == MismatchExact
}

func (m Mismatch) String() string {
	switch m.Kind {
	case MismatchOver:
		return fmt.Sprintf("overpaying by %s", m.Delta)
	case MismatchUnder:
		return fmt.Sprintf("underpaying by %s", m.Delta)
	}
	return "exact"
}

// CompareAmount classifies amountPaid against the selection total.
func CompareAmount(amountPaid, total decimal.Decimal) Mismatch {
	switch amountPaid.Cmp(total) {
	case 1:
		return Mismatch{Kind: MismatchOver, Delta: amountPaid.Sub(total)}
	case -1:
		return Mismatch{Kind: MismatchUnder, Delta: total.Sub(amountPaid)}
	}
	return Mismatch{Kind: MismatchExact, Delta: decimal.Zero}
}

// PolicyWarning flags a selection size outside the reservation's policy
// bounds. Advisory only; the core API is the enforcer.
type PolicyWarning struct {
	Message string `json:"message"`
}

// CheckPolicy returns advisory warnings for the selected quota count.
func CheckPolicy(selected int, pc models.PolicyConstraints) []PolicyWarning {
	var warnings []PolicyWarning
	if pc.MinQuotasPerTransaction > 0 && selected > 0 && selected < pc.MinQuotasPerTransaction {
		warnings = append(warnings, PolicyWarning{
			Message: fmt.Sprintf("at least %d quotas must be paid per transaction", pc.MinQuotasPerTransaction),
		})
	}
	if pc.MaxQuotasPerTransaction > 0 && selected > pc.MaxQuotasPerTransaction {
		warnings = append(warnings, PolicyWarning{
			Message: fmt.Sprintf("at most %d quotas may be paid per transaction", pc.MaxQuotasPerTransaction),
		})
	}
	return warnings
}
