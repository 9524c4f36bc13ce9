package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"rental-billing-backend/internal/apperrors"
	"rental-billing-backend/internal/models"
)

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.PaymentRecord, error) {
	var rec models.PaymentRecord
	if err := r.db.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFoundf("payment record %s not found", id)
		}
		return nil, err
	}
	return &rec, nil
}

func (r *PaymentRepository) ListByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]models.PaymentRecord, error) {
	var recs []models.PaymentRecord
	err := r.db.WithContext(ctx).
		Where("invoice_id = ?", invoiceID).
		Order("payment_date ASC").
		Find(&recs).Error
	return recs, err
}

// SumByStatus totals payment amounts for an invoice in the given status.
// Pass the transaction handle when the sum must be consistent with an
// in-flight aggregate update.
func SumByStatus(tx *gorm.DB, invoiceID uuid.UUID, status models.PaymentStatus) (decimal.Decimal, error) {
	var row struct {
		Total decimal.Decimal
	}
	err := tx.Model(&models.PaymentRecord{}).
		Where("invoice_id = ? AND status = ?", invoiceID, status).
		Select("COALESCE(SUM(amount), 0) AS total").
		Scan(&row).Error
	return row.Total, err
}

func (r *PaymentRepository) SumByStatus(ctx context.Context, invoiceID uuid.UUID, status models.PaymentStatus) (decimal.Decimal, error) {
	return SumByStatus(r.db.WithContext(ctx), invoiceID, status)
}

func (r *PaymentRepository) ListAudit(ctx context.Context, paymentID uuid.UUID) ([]models.PaymentAuditLog, error) {
	var logs []models.PaymentAuditLog
	err := r.db.WithContext(ctx).
		Where("payment_record_id = ?", paymentID).
		Order("created_at ASC").
		Find(&logs).Error
	return logs, err
}
