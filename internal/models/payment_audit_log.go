package models

import (
	"time"

	"github.com/google/uuid"
)

// PaymentAuditLog records one action on a payment record: creation, a
// status transition, or deletion. Append-only.
type PaymentAuditLog struct {
	ID              uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	PaymentRecordID uuid.UUID     `gorm:"type:uuid;index" json:"payment_record_id"`
	InvoiceID       uuid.UUID     `gorm:"type:uuid;index" json:"invoice_id"`
	Action          string        `json:"action"`
	PreviousStatus  PaymentStatus `json:"previous_status,omitempty"`
	NewStatus       PaymentStatus `json:"new_status,omitempty"`
	PerformedBy     string        `json:"performed_by,omitempty"`
	Reason          string        `json:"reason,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
}
