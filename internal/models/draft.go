package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DraftStatus represents the lifecycle state of a transaction draft
type DraftStatus string

const (
	DraftStatusEditing    DraftStatus = "editing"
	DraftStatusSubmitting DraftStatus = "submitting"
	DraftStatusAccepted   DraftStatus = "accepted"
	DraftStatusRejected   DraftStatus = "rejected"
)

// DraftSession is one open reconciliation form. Each form instance owns
// exactly one draft; it is deactivated on cancel or after acceptance.
type DraftSession struct {
	ID        string         `gorm:"type:varchar(36);primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	OwnerUID      string `gorm:"type:varchar(128);index" json:"owner_uid"`
	ReservationID string `gorm:"type:varchar(64);index" json:"reservation_id"`
	// Set in edit mode so the catalog excludes the transaction's own quotas.
	TransactionID string `gorm:"type:varchar(64)" json:"transaction_id,omitempty"`

	PaymentDate     *time.Time      `json:"payment_date"`
	AmountPaid      decimal.Decimal `gorm:"type:decimal(15,2)" json:"amount_paid"`
	PaymentMethod   PaymentMethod   `gorm:"type:varchar(50)" json:"payment_method"`
	ReferenceNumber string          `gorm:"type:varchar(100)" json:"reference_number"`
	SelectedQuotas  []string        `gorm:"serializer:json" json:"selected_quotas"`

	// Snapshot version of the catalog the selection was built against.
	CatalogVersion string `gorm:"type:varchar(64)" json:"catalog_version"`

	Receipt         []byte `gorm:"type:bytea" json:"-"`
	ReceiptFilename string `gorm:"type:varchar(255)" json:"receipt_filename,omitempty"`

	Status   DraftStatus `gorm:"type:varchar(20);default:'editing'" json:"status"`
	IsActive bool        `gorm:"default:true" json:"is_active"`
}

// Input assembles the core API payload from the draft's current fields.
func (d DraftSession) Input() TransactionInput {
	in := TransactionInput{
		AmountPaid:      d.AmountPaid,
		PaymentMethod:   d.PaymentMethod,
		ReferenceNumber: d.ReferenceNumber,
		ReservationID:   d.ReservationID,
		PaymentIDs:      d.SelectedQuotas,
		Receipt:         d.Receipt,
		ReceiptFilename: d.ReceiptFilename,
	}
	if d.PaymentDate != nil {
		in.PaymentDate = *d.PaymentDate
	}
	return in
}

// SubmissionRecord is the local audit trail of every submit attempt that
// reached the core API, successful or not.
type SubmissionRecord struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	DraftSessionID string          `gorm:"type:varchar(36);index" json:"draft_session_id"`
	ReservationID  string          `gorm:"type:varchar(64);index" json:"reservation_id"`
	TransactionID  string          `gorm:"type:varchar(64)" json:"transaction_id,omitempty"`
	AmountPaid     decimal.Decimal `gorm:"type:decimal(15,2)" json:"amount_paid"`
	QuotaCount     int             `json:"quota_count"`
	Succeeded      bool            `json:"succeeded"`
	ErrorMessage   string          `gorm:"type:text" json:"error_message,omitempty"`
}
