package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentStatus is the lifecycle status of a payment record.
// A record is created PENDING or CONFIRMED; CONFIRMED, REJECTED and
// CANCELLED are terminal. Only CONFIRMED records count toward an
// invoice's paid amount.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "PENDING"
	PaymentConfirmed PaymentStatus = "CONFIRMED"
	PaymentRejected  PaymentStatus = "REJECTED"
	PaymentCancelled PaymentStatus = "CANCELLED"
)

// IsValid reports whether the status is a known payment status.
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentPending, PaymentConfirmed, PaymentRejected, PaymentCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is defined from this status.
func (s PaymentStatus) IsTerminal() bool {
	return s == PaymentConfirmed || s == PaymentRejected || s == PaymentCancelled
}

func (s PaymentStatus) String() string { return string(s) }

// PaymentMethod is how a payment was made.
type PaymentMethod string

const (
	MethodCash         PaymentMethod = "CASH"
	MethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	MethodEWallet      PaymentMethod = "E_WALLET"
	MethodOther        PaymentMethod = "OTHER"
)

// IsValid reports whether the method is a known payment method.
func (m PaymentMethod) IsValid() bool {
	switch m {
	case MethodCash, MethodBankTransfer, MethodEWallet, MethodOther:
		return true
	}
	return false
}

func (m PaymentMethod) String() string { return string(m) }

// PaymentRecord is one payment attempt or confirmation against an invoice.
type PaymentRecord struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	InvoiceID   uuid.UUID       `gorm:"type:uuid;index" json:"invoice_id"`
	Amount      decimal.Decimal `gorm:"type:numeric(12,2)" json:"amount"`
	Method      PaymentMethod   `json:"method"`
	Status      PaymentStatus   `gorm:"index" json:"status"`
	PaymentDate time.Time       `json:"payment_date"`
	Reference   string          `json:"reference,omitempty"`
	Notes       string          `json:"notes,omitempty"`
	RecordedBy  string          `json:"recorded_by,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
