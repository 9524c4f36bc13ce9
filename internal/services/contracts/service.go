// Package contracts manages rooms and lease contracts, and answers the
// contract gate checks the billing side depends on.
package contracts

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"rental-billing-backend/internal/apperrors"
	"rental-billing-backend/internal/models"
	"rental-billing-backend/internal/repository"
)

type Service struct {
	contracts *repository.ContractRepository
	rooms     *repository.RoomRepository
	logger    *zap.Logger
}

func NewService(contracts *repository.ContractRepository, rooms *repository.RoomRepository, logger *zap.Logger) *Service {
	return &Service{contracts: contracts, rooms: rooms, logger: logger}
}

type CreateRoomInput struct {
	RoomNumber   string
	MonthlyRent  decimal.Decimal
	UtilityUnits int
	Notes        string
}

func (s *Service) CreateRoom(ctx context.Context, in CreateRoomInput) (*models.Room, error) {
	if in.RoomNumber == "" {
		return nil, apperrors.Validationf("room number is required")
	}
	if in.MonthlyRent.IsNegative() {
		return nil, apperrors.Validationf("monthly rent must not be negative, got %s", in.MonthlyRent)
	}
	room := &models.Room{
		ID:           uuid.New(),
		RoomNumber:   in.RoomNumber,
		MonthlyRent:  in.MonthlyRent,
		UtilityUnits: in.UtilityUnits,
		Notes:        in.Notes,
	}
	if err := s.rooms.Create(ctx, room); err != nil {
		return nil, err
	}
	s.logger.Info("room created", zap.String("room_id", room.ID.String()), zap.String("number", room.RoomNumber))
	return room, nil
}

func (s *Service) GetRoom(ctx context.Context, id uuid.UUID) (*models.Room, error) {
	return s.rooms.GetByID(ctx, id)
}

type CreateContractInput struct {
	RoomID      uuid.UUID
	TenantName  string
	StartDate   time.Time
	EndDate     time.Time
	MonthlyRent decimal.Decimal // zero means the room's rent
}

// CreateContract opens an ACTIVE lease on a room. A room carries at most
// one ACTIVE contract at a time.
func (s *Service) CreateContract(ctx context.Context, in CreateContractInput) (*models.Contract, error) {
	if in.TenantName == "" {
		return nil, apperrors.Validationf("tenant name is required")
	}
	if !in.EndDate.After(in.StartDate) {
		return nil, apperrors.Validationf("contract end date must be after the start date")
	}

	room, err := s.rooms.GetByID(ctx, in.RoomID)
	if err != nil {
		return nil, err
	}
	occupied, err := s.contracts.HasActiveForRoom(ctx, room.ID)
	if err != nil {
		return nil, err
	}
	if occupied {
		return nil, apperrors.Conflictf("room %s already has an active contract", room.RoomNumber)
	}

	rent := in.MonthlyRent
	if rent.IsZero() {
		rent = room.MonthlyRent
	}
	if rent.IsNegative() {
		return nil, apperrors.Validationf("monthly rent must not be negative, got %s", rent)
	}

	contract := &models.Contract{
		ID:          uuid.New(),
		RoomID:      room.ID,
		TenantName:  in.TenantName,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
		MonthlyRent: rent,
		Status:      models.ContractActive,
	}
	if err := s.contracts.Create(ctx, contract); err != nil {
		return nil, err
	}
	s.logger.Info("contract created",
		zap.String("contract_id", contract.ID.String()),
		zap.String("room_id", room.ID.String()),
		zap.String("tenant", contract.TenantName))
	return contract, nil
}

func (s *Service) GetContract(ctx context.Context, id uuid.UUID) (*models.Contract, error) {
	return s.contracts.GetByID(ctx, id)
}

// ContractStatus returns the lifecycle status of one contract.
func (s *Service) ContractStatus(ctx context.Context, contractID uuid.UUID) (models.ContractStatus, error) {
	contract, err := s.contracts.GetByID(ctx, contractID)
	if err != nil {
		return "", err
	}
	return contract.Status, nil
}

// HasActiveContract reports whether the room is currently leased.
func (s *Service) HasActiveContract(ctx context.Context, roomID uuid.UUID) (bool, error) {
	return s.contracts.HasActiveForRoom(ctx, roomID)
}

// ExpireContracts flips every ACTIVE contract whose end date has passed
// to EXPIRED and returns how many changed.
func (s *Service) ExpireContracts(ctx context.Context, asOf time.Time) (int64, error) {
	expired, err := s.contracts.ExpireBefore(ctx, asOf)
	if err != nil {
		return 0, err
	}
	if expired > 0 {
		s.logger.Info("contracts expired", zap.Int64("count", expired), zap.Time("as_of", asOf))
	}
	return expired, nil
}
