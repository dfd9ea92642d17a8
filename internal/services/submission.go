package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/DIGITALIZART-STUDIO/ghogar-admin/internal/logger"
	"github.com/DIGITALIZART-STUDIO/ghogar-admin/internal/models"
	"github.com/DIGITALIZART-STUDIO/ghogar-admin/internal/reconcile"
)

var (
	// ErrAmountMismatch blocks submission before any mutation call when the
	// entered amount differs from the selection total.
	ErrAmountMismatch = errors.New("amount paid does not match selection total")

	// ErrCatalogStale means the catalog changed between selection time and
	// submit time, typically because another operator claimed a quota.
	ErrCatalogStale = errors.New("quota catalog changed since the draft was loaded")

	// ErrDraftClosed means the draft was already submitted or cancelled.
	ErrDraftClosed = errors.New("draft session is no longer active")
)

// ValidationError is a recoverable field-level failure; the draft is kept
// for correction.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

type transactionSubmitter interface {
	CreateTransaction(ctx context.Context, in models.TransactionInput) (models.Transaction, error)
	UpdateTransaction(ctx context.Context, id string, in models.TransactionInput) (models.Transaction, error)
}

type catalogLoader interface {
	Load(ctx context.Context, reservationID, excludeTransactionID string, fresh bool) (models.QuotaStatus, string, error)
}

// SubmissionService is the gate in front of the core API's transaction
// mutation endpoints. Drafts move Editing -> Validating -> Submitting ->
// Accepted or Rejected; a rejected draft returns to Editing unchanged.
type SubmissionService struct {
	db       *gorm.DB
	backend  transactionSubmitter
	catalogs catalogLoader
	inv      *Invalidator
	validate *validator.Validate
}

// NewSubmissionService wires the gate. db and inv may be nil (the audit
// trail and invalidation are then skipped), which keeps the gate usable in
// degraded setups.
func NewSubmissionService(db *gorm.DB, backend transactionSubmitter, catalogs catalogLoader, inv *Invalidator) *SubmissionService {
	return &SubmissionService{
		db:       db,
		backend:  backend,
		catalogs: catalogs,
		inv:      inv,
		validate: validator.New(),
	}
}

// draftFields is the validator-facing projection of a draft.
type draftFields struct {
	PaymentDate     *time.Time `validate:"required"`
	AmountPaid      float64    `validate:"required,gt=0.01"`
	PaymentMethod   string     `validate:"required,oneof=cash bank_deposit bank_transfer"`
	ReferenceNumber string     `validate:"omitempty,max=100"`
}

// ValidateFields runs the schema-level checks that do not need a catalog.
func (s *SubmissionService) ValidateFields(draft *models.DraftSession) error {
	fields := draftFields{
		PaymentDate:     draft.PaymentDate,
		AmountPaid:      draft.AmountPaid.InexactFloat64(),
		PaymentMethod:   string(draft.PaymentMethod),
		ReferenceNumber: draft.ReferenceNumber,
	}
	err := s.validate.Struct(fields)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		first := verrs[0]
		return ValidationError{Field: first.Field(), Message: validationMessage(first)}
	}
	return err
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gt":
		return "must be greater than " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	case "max":
		return "must be at most " + fe.Param() + " characters"
	}
	return "is invalid"
}

// SubmitResult is what a successful submission leaves behind.
type SubmitResult struct {
	Transaction models.Transaction        `json:"transaction"`
	Warnings    []reconcile.PolicyWarning `json:"warnings,omitempty"`
}

// Submit validates the draft against the given catalog snapshot and, only
// if every client-side rule passes, forwards it to the core API. snapshot
// is the catalog the selection was made against; the amount-match rule is
// checked against it before any network traffic, then the catalog is
// re-fetched fresh to catch concurrent claims before the mutation goes out.
func (s *SubmissionService) Submit(ctx context.Context, draft *models.DraftSession, snapshot models.QuotaStatus) (SubmitResult, error) {
	if !draft.IsActive {
		return SubmitResult{}, ErrDraftClosed
	}

	// Validating
	if err := s.ValidateFields(draft); err != nil {
		return SubmitResult{}, err
	}

	selection := reconcile.NewSelection(draft.SelectedQuotas...)
	total := reconcile.ComputeTotal(selection, snapshot)
	if mismatch := reconcile.CompareAmount(draft.AmountPaid, total); !mismatch.Exact() {
		return SubmitResult{}, fmt.Errorf("%w: %s", ErrAmountMismatch, mismatch)
	}
	warnings := reconcile.CheckPolicy(selection.Len(), snapshot.Constraints)

	// Optimistic concurrency: the snapshot may be stale. Re-fetch fresh and
	// compare versions before mutating anything.
	freshCatalog, freshVersion, err := s.catalogs.Load(ctx, draft.ReservationID, draft.TransactionID, true)
	if err != nil {
		return SubmitResult{}, fmt.Errorf("failed to refresh quota catalog: %w", err)
	}
	if draft.CatalogVersion != "" && freshVersion != draft.CatalogVersion {
		return SubmitResult{}, ErrCatalogStale
	}
	for _, id := range draft.SelectedQuotas {
		if _, ok := freshCatalog.Find(id); !ok {
			return SubmitResult{}, fmt.Errorf("%w: quota %s is no longer pending", ErrCatalogStale, id)
		}
	}

	// Submitting
	s.setStatus(draft, models.DraftStatusSubmitting)

	input := draft.Input()
	var tx models.Transaction
	if draft.TransactionID != "" {
		tx, err = s.backend.UpdateTransaction(ctx, draft.TransactionID, input)
	} else {
		tx, err = s.backend.CreateTransaction(ctx, input)
	}

	s.record(draft, tx, err)

	if err != nil {
		// Rejected: draft retained unchanged for correction.
		s.setStatus(draft, models.DraftStatusEditing)
		return SubmitResult{}, err
	}

	// Accepted: close the session and tell every read cache.
	draft.Status = models.DraftStatusAccepted
	draft.IsActive = false
	draft.SelectedQuotas = nil
	draft.Receipt = nil
	if s.db != nil {
		s.db.Save(draft)
	}

	if s.inv != nil {
		if err := s.inv.Publish(ctx, MutationEvent{
			ReservationID: draft.ReservationID,
			TransactionID: tx.ID,
		}); err != nil {
			logger.Get().Warn("invalidation after submit incomplete", zap.Error(err))
		}
	}

	return SubmitResult{Transaction: tx, Warnings: warnings}, nil
}

func (s *SubmissionService) setStatus(draft *models.DraftSession, status models.DraftStatus) {
	draft.Status = status
	if s.db != nil {
		s.db.Model(draft).Update("status", status)
	}
}

func (s *SubmissionService) record(draft *models.DraftSession, tx models.Transaction, submitErr error) {
	if s.db == nil {
		return
	}
	rec := models.SubmissionRecord{
		DraftSessionID: draft.ID,
		ReservationID:  draft.ReservationID,
		AmountPaid:     draft.AmountPaid,
		QuotaCount:     len(draft.SelectedQuotas),
		Succeeded:      submitErr == nil,
	}
	if submitErr != nil {
		rec.ErrorMessage = submitErr.Error()
	} else {
		rec.TransactionID = tx.ID
	}
	s.db.Create(&rec)
}
