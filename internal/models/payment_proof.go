package models

import (
	"time"

	"github.com/google/uuid"
)

// ProofType classifies a payment proof attachment.
type ProofType string

const (
	ProofTransferReceipt ProofType = "TRANSFER_RECEIPT"
	ProofCashReceipt     ProofType = "CASH_RECEIPT"
	ProofScreenshot      ProofType = "SCREENSHOT"
	ProofOther           ProofType = "OTHER"
)

// IsValid reports whether the proof type is known.
func (p ProofType) IsValid() bool {
	switch p {
	case ProofTransferReceipt, ProofCashReceipt, ProofScreenshot, ProofOther:
		return true
	}
	return false
}

func (p ProofType) String() string { return string(p) }

// PaymentProof is an evidentiary attachment owned by exactly one payment
// record. FilePath is the blob storage key; the file itself lives behind
// the proof store. UploadedAt is system-set and immutable.
type PaymentProof struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PaymentRecordID uuid.UUID `gorm:"type:uuid;index" json:"payment_record_id"`
	FileName        string    `json:"file_name"`
	FilePath        string    `json:"file_path"`
	FileSize        int64     `json:"file_size"`
	ContentType     string    `json:"content_type"`
	ProofType       ProofType `json:"proof_type"`
	Description     string    `json:"description,omitempty"`
	UploadedBy      string    `json:"uploaded_by,omitempty"`
	UploadedAt      time.Time `json:"uploaded_at"`
}
