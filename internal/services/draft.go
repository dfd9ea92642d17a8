package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/DIGITALIZART-STUDIO/ghogar-admin/internal/models"
	"github.com/DIGITALIZART-STUDIO/ghogar-admin/internal/reconcile"
)

// ErrQuotaNotInCatalog means a toggle referenced a quota id that the
// current catalog does not list.
var ErrQuotaNotInCatalog = errors.New("quota is not in the loaded catalog")

type transactionGetter interface {
	GetTransaction(ctx context.Context, id string) (models.Transaction, error)
}

// DraftService owns the lifecycle of draft sessions: creation (empty or
// pre-populated from an existing transaction), selection changes, field
// edits and cancellation. One draft per open form.
type DraftService struct {
	db       *gorm.DB
	backend  transactionGetter
	catalogs catalogLoader
}

func NewDraftService(db *gorm.DB, backend transactionGetter, catalogs catalogLoader) *DraftService {
	return &DraftService{db: db, backend: backend, catalogs: catalogs}
}

// Create opens a new draft session. When transactionID is set the draft is
// pre-populated from that transaction and the catalog excludes it, so its
// own quotas remain selectable while editing.
func (s *DraftService) Create(ctx context.Context, ownerUID, reservationID, transactionID string) (*models.DraftSession, error) {
	draft := &models.DraftSession{
		ID:            uuid.NewString(),
		OwnerUID:      ownerUID,
		ReservationID: reservationID,
		TransactionID: transactionID,
		AmountPaid:    decimal.Zero,
		Status:        models.DraftStatusEditing,
		IsActive:      true,
	}

	if transactionID != "" {
		tx, err := s.backend.GetTransaction(ctx, transactionID)
		if err != nil {
			return nil, err
		}
		paymentDate := tx.PaymentDate
		draft.PaymentDate = &paymentDate
		draft.AmountPaid = tx.AmountPaid
		draft.PaymentMethod = tx.PaymentMethod
		draft.ReferenceNumber = tx.ReferenceNumber
		draft.SelectedQuotas = tx.PaymentIDs
		if draft.ReservationID == "" {
			draft.ReservationID = tx.ReservationID
		}
	}

	catalog, version, err := s.catalogs.Load(ctx, draft.ReservationID, transactionID, false)
	if err != nil {
		return nil, err
	}
	draft.CatalogVersion = version

	// No stale ids from a prior catalog may survive.
	selection := reconcile.NewSelection(draft.SelectedQuotas...)
	selection.Prune(catalog)
	draft.SelectedQuotas = selection.IDs()

	if s.db != nil {
		if err := s.db.Create(draft).Error; err != nil {
			return nil, err
		}
	}
	return draft, nil
}

// Get loads an active draft owned by the given operator.
func (s *DraftService) Get(id, ownerUID string) (*models.DraftSession, error) {
	var draft models.DraftSession
	err := s.db.Where("id = ? AND owner_uid = ? AND is_active = ?", id, ownerUID, true).First(&draft).Error
	if err != nil {
		return nil, err
	}
	return &draft, nil
}

// DraftView is a draft together with its catalog and the derived totals the
// form renders.
type DraftView struct {
	Draft           *models.DraftSession      `json:"draft"`
	Catalog         models.QuotaStatus        `json:"catalog"`
	Total           decimal.Decimal           `json:"total"`
	TotalAvailable  decimal.Decimal           `json:"totalAvailable"`
	Progress        decimal.Decimal           `json:"progress"`
	SuggestedAmount decimal.Decimal           `json:"suggestedAmount"`
	Mismatch        reconcile.Mismatch        `json:"mismatch"`
	Warnings        []reconcile.PolicyWarning `json:"warnings,omitempty"`
}

// View loads the draft's catalog and computes totals, progress and the
// amount mismatch indicator. The computed total is surfaced as a
// suggestion; it never overwrites the entered amount.
func (s *DraftService) View(ctx context.Context, draft *models.DraftSession) (DraftView, error) {
	catalog, _, err := s.loadAndRebind(ctx, draft)
	if err != nil {
		return DraftView{}, err
	}

	selection := reconcile.NewSelection(draft.SelectedQuotas...)
	total := reconcile.ComputeTotal(selection, catalog)
	available := catalog.TotalAvailable()

	return DraftView{
		Draft:           draft,
		Catalog:         catalog,
		Total:           total,
		TotalAvailable:  available,
		Progress:        reconcile.ComputeProgress(total, available),
		SuggestedAmount: total,
		Mismatch:        reconcile.CompareAmount(draft.AmountPaid, total),
		Warnings:        reconcile.CheckPolicy(selection.Len(), catalog.Constraints),
	}, nil
}

// loadAndRebind loads the catalog and, when its version moved since the
// draft last saw it, prunes selections that no longer resolve and records
// the new version.
func (s *DraftService) loadAndRebind(ctx context.Context, draft *models.DraftSession) (models.QuotaStatus, string, error) {
	catalog, version, err := s.catalogs.Load(ctx, draft.ReservationID, draft.TransactionID, false)
	if err != nil {
		return models.QuotaStatus{}, "", err
	}
	if version != draft.CatalogVersion {
		selection := reconcile.NewSelection(draft.SelectedQuotas...)
		selection.Prune(catalog)
		draft.SelectedQuotas = selection.IDs()
		draft.CatalogVersion = version
		if s.db != nil {
			s.db.Save(draft)
		}
	}
	return catalog, version, nil
}

// Toggle flips quota membership in the draft's selection. The entered
// amount is left alone; callers use MatchTotal to copy the suggestion in.
func (s *DraftService) Toggle(ctx context.Context, draft *models.DraftSession, quotaID string) (DraftView, error) {
	catalog, _, err := s.loadAndRebind(ctx, draft)
	if err != nil {
		return DraftView{}, err
	}
	if _, ok := catalog.Find(quotaID); !ok {
		return DraftView{}, ErrQuotaNotInCatalog
	}

	selection := reconcile.NewSelection(draft.SelectedQuotas...)
	selection.Toggle(quotaID)
	draft.SelectedQuotas = selection.IDs()
	if s.db != nil {
		if err := s.db.Save(draft).Error; err != nil {
			return DraftView{}, err
		}
	}
	return s.View(ctx, draft)
}

// ClearSelection empties the draft's selection set.
func (s *DraftService) ClearSelection(ctx context.Context, draft *models.DraftSession) (DraftView, error) {
	draft.SelectedQuotas = nil
	if s.db != nil {
		if err := s.db.Save(draft).Error; err != nil {
			return DraftView{}, err
		}
	}
	return s.View(ctx, draft)
}

// MatchTotal sets the entered amount to the current selection total. This
// is the explicit opt-in replacement for the old implicit one-way sync.
func (s *DraftService) MatchTotal(ctx context.Context, draft *models.DraftSession) (DraftView, error) {
	catalog, _, err := s.loadAndRebind(ctx, draft)
	if err != nil {
		return DraftView{}, err
	}
	selection := reconcile.NewSelection(draft.SelectedQuotas...)
	draft.AmountPaid = reconcile.ComputeTotal(selection, catalog)
	if s.db != nil {
		if err := s.db.Save(draft).Error; err != nil {
			return DraftView{}, err
		}
	}
	return s.View(ctx, draft)
}

// DraftPatch carries optional field edits; nil fields are untouched.
type DraftPatch struct {
	PaymentDate     *time.Time            `json:"paymentDate"`
	AmountPaid      *decimal.Decimal      `json:"amountPaid"`
	PaymentMethod   *models.PaymentMethod `json:"paymentMethod"`
	ReferenceNumber *string               `json:"referenceNumber"`
}

// UpdateFields applies a partial edit to the draft.
func (s *DraftService) UpdateFields(ctx context.Context, draft *models.DraftSession, patch DraftPatch) (DraftView, error) {
	if patch.PaymentDate != nil {
		draft.PaymentDate = patch.PaymentDate
	}
	if patch.AmountPaid != nil {
		draft.AmountPaid = *patch.AmountPaid
	}
	if patch.PaymentMethod != nil {
		draft.PaymentMethod = *patch.PaymentMethod
	}
	if patch.ReferenceNumber != nil {
		draft.ReferenceNumber = *patch.ReferenceNumber
	}
	if s.db != nil {
		if err := s.db.Save(draft).Error; err != nil {
			return DraftView{}, err
		}
	}
	return s.View(ctx, draft)
}

// AttachReceipt stores the receipt image with the draft until submission.
func (s *DraftService) AttachReceipt(draft *models.DraftSession, data []byte, filename string) error {
	draft.Receipt = data
	draft.ReceiptFilename = filename
	if s.db != nil {
		return s.db.Save(draft).Error
	}
	return nil
}

// Cancel discards the draft.
func (s *DraftService) Cancel(draft *models.DraftSession) error {
	draft.IsActive = false
	if s.db != nil {
		return s.db.Save(draft).Error
	}
	return nil
}

// SweepStale deactivates editing drafts idle past the TTL and returns how
// many were closed. Run by the worker.
func (s *DraftService) SweepStale(ttl time.Duration) (int64, error) {
	cutoff := time.Now().Add(-ttl)
	res := s.db.Model(&models.DraftSession{}).
		Where("is_active = ? AND status = ? AND updated_at < ?", true, models.DraftStatusEditing, cutoff).
		Update("is_active", false)
	return res.RowsAffected, res.Error
}
