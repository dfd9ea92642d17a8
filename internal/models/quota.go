package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Quota is a pending installment of a reservation's payment plan, as
// reported by the core API. It is never persisted locally.
type Quota struct {
	ID              string          `json:"id"`
	AmountDue       decimal.Decimal `json:"amountDue"`
	DueDate         time.Time       `json:"dueDate"`
	Paid            bool            `json:"paid"`
	AmountPaid      decimal.Decimal `json:"amountPaid"`
	RemainingAmount decimal.Decimal `json:"remainingAmount"`
	ReservationID   string          `json:"reservationId"`
	ClientName      string          `json:"clientName"`
	QuotationCode   string          `json:"quotationCode"`
}

// Remaining returns the unpaid balance of the quota. The core API sends
// remainingAmount precomputed; when it is zero-valued but the quota is not
// marked paid, fall back to amountDue - amountPaid.
func (q Quota) Remaining() decimal.Decimal {
	if q.Paid {
		return decimal.Zero
	}
	if !q.RemainingAmount.IsZero() {
		return q.RemainingAmount
	}
	return q.AmountDue.Sub(q.AmountPaid)
}

// PolicyConstraints are per-reservation payment rules owned by the core API.
// They are advisory here; the server is the final enforcer.
type PolicyConstraints struct {
	MinQuotasPerTransaction int    `json:"minQuotasPerTransaction"`
	MaxQuotasPerTransaction int    `json:"maxQuotasPerTransaction"`
	Currency                string `json:"currency"`
}

// QuotaStatus is the quota catalog for one reservation: the pending quotas
// plus the policy constraints that apply to a transaction against them.
type QuotaStatus struct {
	ReservationID string            `json:"reservationId"`
	PendingQuotas []Quota           `json:"pendingQuotas"`
	Constraints   PolicyConstraints `json:"constraints"`
}

// TotalAvailable sums the amount due over every pending quota in the catalog.
func (s QuotaStatus) TotalAvailable() decimal.Decimal {
	total := decimal.Zero
	for _, q := range s.PendingQuotas {
		total = total.Add(q.AmountDue)
	}
	return total
}

// Find returns the quota with the given id, if present.
func (s QuotaStatus) Find(id string) (Quota, bool) {
	for _, q := range s.PendingQuotas {
		if q.ID == id {
			return q, true
		}
	}
	return Quota{}, false
}
