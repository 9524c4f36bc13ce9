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

type ContractRepository struct {
	db *gorm.DB
}

func NewContractRepository(db *gorm.DB) *ContractRepository {
	return &ContractRepository{db: db}
}

func (r *ContractRepository) Create(ctx context.Context, c *models.Contract) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *ContractRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Contract, error) {
	var c models.Contract
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFoundf("contract %s not found", id)
		}
		return nil, err
	}
	return &c, nil
}

// HasActiveForRoom reports whether the room has an ACTIVE contract.
func (r *ContractRepository) HasActiveForRoom(ctx context.Context, roomID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Contract{}).
		Where("room_id = ? AND status = ?", roomID, models.ContractActive).
		Count(&count).Error
	return count > 0, err
}

// ExpireBefore flips ACTIVE contracts with an end date before asOf to
// EXPIRED and returns how many were updated.
func (r *ContractRepository) ExpireBefore(ctx context.Context, asOf time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.Contract{}).
		Where("status = ? AND end_date < ?", models.ContractActive, asOf).
		Updates(map[string]interface{}{
			"status":     models.ContractExpired,
			"updated_at": time.Now(),
		})
	return result.RowsAffected, result.Error
}
