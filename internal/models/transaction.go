package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod represents how a transaction was paid
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodBankDeposit  PaymentMethod = "bank_deposit"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
)

// Valid reports whether the method is one of the enumerated values.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodBankDeposit, PaymentMethodBankTransfer:
		return true
	}
	return false
}

// Transaction is a persisted payment transaction as reported by the core
// API. Creation and mutation happen server-side; this type is read-only.
type Transaction struct {
	ID              string          `json:"id"`
	ReservationID   string          `json:"reservationId"`
	PaymentDate     time.Time       `json:"paymentDate"`
	AmountPaid      decimal.Decimal `json:"amountPaid"`
	PaymentMethod   PaymentMethod   `json:"paymentMethod"`
	ReferenceNumber string          `json:"referenceNumber,omitempty"`
	PaymentIDs      []string        `json:"paymentIds,omitempty"`
	ClientName      string          `json:"clientName,omitempty"`
	ReceiptURL      string          `json:"receiptUrl,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// TransactionInput is the payload sent to the core API when creating or
// updating a transaction. It is marshalled as multipart form fields under
// the "dto." prefix, with the receipt attached as "comprobanteFile".
type TransactionInput struct {
	PaymentDate     time.Time       `json:"paymentDate"`
	AmountPaid      decimal.Decimal `json:"amountPaid"`
	PaymentMethod   PaymentMethod   `json:"paymentMethod"`
	ReferenceNumber string          `json:"referenceNumber,omitempty"`
	ReservationID   string          `json:"reservationId,omitempty"`
	PaymentIDs      []string        `json:"paymentIds,omitempty"`

	// Receipt image bytes, optional. Sent as the comprobanteFile part.
	Receipt         []byte `json:"-"`
	ReceiptFilename string `json:"-"`
}
