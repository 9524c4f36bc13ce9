package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"rental-billing-backend/internal/apperrors"
	"rental-billing-backend/internal/models"
)

type InvoiceRepository struct {
	db *gorm.DB
}

func NewInvoiceRepository(db *gorm.DB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

// DB exposes the underlying connection for transactional service code.
func (r *InvoiceRepository) DB() *gorm.DB {
	return r.db
}

func (r *InvoiceRepository) Create(ctx context.Context, inv *models.Invoice) error {
	return r.db.WithContext(ctx).Create(inv).Error
}

func (r *InvoiceRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Invoice, error) {
	var inv models.Invoice
	if err := r.db.WithContext(ctx).First(&inv, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFoundf("invoice %s not found", id)
		}
		return nil, err
	}
	return &inv, nil
}

// List returns invoices, optionally filtered by status and contract.
func (r *InvoiceRepository) List(ctx context.Context, status models.InvoiceStatus, contractID *uuid.UUID) ([]models.Invoice, error) {
	var invoices []models.Invoice
	query := r.db.WithContext(ctx).Model(&models.Invoice{}).Order("create_date DESC")
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if contractID != nil {
		query = query.Where("contract_id = ?", *contractID)
	}
	err := query.Find(&invoices).Error
	return invoices, err
}

// FindOverdueUnpenalized returns ids of UNPAID invoices past due at asOf
// that have not had a penalty applied yet.
func (r *InvoiceRepository) FindOverdueUnpenalized(ctx context.Context, asOf time.Time) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&models.Invoice{}).
		Where("status = ? AND due_date < ? AND penalty_applied_at IS NULL", models.InvoiceUnpaid, asOf).
		Pluck("id", &ids).Error
	return ids, err
}
