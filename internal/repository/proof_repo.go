package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"rental-billing-backend/internal/apperrors"
	"rental-billing-backend/internal/models"
)

type ProofRepository struct {
	db *gorm.DB
}

func NewProofRepository(db *gorm.DB) *ProofRepository {
	return &ProofRepository{db: db}
}

func (r *ProofRepository) Create(ctx context.Context, proof *models.PaymentProof) error {
	return r.db.WithContext(ctx).Create(proof).Error
}

func (r *ProofRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.PaymentProof, error) {
	var proof models.PaymentProof
	if err := r.db.WithContext(ctx).First(&proof, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFoundf("payment proof %s not found", id)
		}
		return nil, err
	}
	return &proof, nil
}

// ListByPayment returns the proofs for a payment record, newest upload first.
func (r *ProofRepository) ListByPayment(ctx context.Context, paymentID uuid.UUID) ([]models.PaymentProof, error) {
	var proofs []models.PaymentProof
	err := r.db.WithContext(ctx).
		Where("payment_record_id = ?", paymentID).
		Order("uploaded_at DESC").
		Find(&proofs).Error
	return proofs, err
}

// DeleteByID removes a single proof row.
func (r *ProofRepository) DeleteByID(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.PaymentProof{}, "id = ?", id).Error
}

// DeleteByPayment removes all proof rows for a payment record.
func (r *ProofRepository) DeleteByPayment(ctx context.Context, paymentID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("payment_record_id = ?", paymentID).
		Delete(&models.PaymentProof{}).Error
}
