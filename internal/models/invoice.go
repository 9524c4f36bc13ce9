package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// InvoiceStatus is the lifecycle status of a billing-period invoice.
type InvoiceStatus string

const (
	InvoiceUnpaid    InvoiceStatus = "UNPAID"
	InvoicePaid      InvoiceStatus = "PAID"
	InvoiceCancelled InvoiceStatus = "CANCELLED"
)

// IsValid reports whether the status is one of the known invoice statuses.
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceUnpaid, InvoicePaid, InvoiceCancelled:
		return true
	}
	return false
}

func (s InvoiceStatus) String() string { return string(s) }

// InvoiceSnapshot captures the room terms at invoice creation. The snapshot is
// immutable; later room or contract edits never change an issued invoice.
type InvoiceSnapshot struct {
	RoomNumber   string          `json:"room_number"`
	MonthlyRent  decimal.Decimal `json:"monthly_rent"`
	UtilityUnits int             `json:"utility_units"`
}

// ToJSON marshals the snapshot for the invoice JSON column.
func (s InvoiceSnapshot) ToJSON() (datatypes.JSON, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

// Invoice is one billing period's charge record.
//
// PaidAmount and RemainingBalance are denormalized: they are recomputed
// eagerly on every mutation so read paths never rescan payment records.
// Version backs the optimistic check on aggregate updates.
type Invoice struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	ContractID       uuid.UUID       `gorm:"type:uuid;index" json:"contract_id"`
	CreateDate       time.Time       `json:"create_date"`
	DueDate          time.Time       `gorm:"index" json:"due_date"`
	Status           InvoiceStatus   `gorm:"index" json:"status"`
	SubTotal         decimal.Decimal `gorm:"type:numeric(12,2)" json:"sub_total"`
	PenaltyTotal     decimal.Decimal `gorm:"type:numeric(12,2)" json:"penalty_total"`
	NetAmount        decimal.Decimal `gorm:"type:numeric(12,2)" json:"net_amount"`
	PreviousBalance  decimal.Decimal `gorm:"type:numeric(12,2)" json:"previous_balance"`
	PaidAmount       decimal.Decimal `gorm:"type:numeric(12,2)" json:"paid_amount"`
	RemainingBalance decimal.Decimal `gorm:"type:numeric(12,2)" json:"remaining_balance"`
	PenaltyAppliedAt *time.Time      `json:"penalty_applied_at,omitempty"`
	CancelledAt      *time.Time      `json:"cancelled_at,omitempty"`
	CancelReason     string          `json:"cancel_reason,omitempty"`
	Snapshot         datatypes.JSON  `json:"snapshot"`
	Version          int             `gorm:"not null;default:1" json:"version"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}
