package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"rental-billing-backend/internal/apperrors"
	"rental-billing-backend/internal/models"
	"rental-billing-backend/internal/repository"
)

// ProofPurger removes the proofs owned by a payment record. Wired in by
// the proof service so deleting a record cascades to its attachments.
type ProofPurger interface {
	DeleteAllProofs(ctx context.Context, paymentID uuid.UUID) error
}

// Service is the invoice ledger and payment reconciliation engine.
//
// Every mutation of one invoice's aggregates runs under that invoice's
// lock, recomputes the paid sum with an aggregate query inside the same
// transaction as the status update, and persists through a version-checked
// update. A failed version check surfaces as a ConflictError for the
// caller to retry; the service itself never retries.
type Service struct {
	db        *gorm.DB
	invoices  *repository.InvoiceRepository
	payments  *repository.PaymentRepository
	contracts *repository.ContractRepository
	rooms     *repository.RoomRepository
	policy    PenaltyPolicy
	locks     invoiceLocker
	proofs    ProofPurger
	logger    *zap.Logger
}

func NewService(
	invoices *repository.InvoiceRepository,
	payments *repository.PaymentRepository,
	contracts *repository.ContractRepository,
	rooms *repository.RoomRepository,
	policy PenaltyPolicy,
	logger *zap.Logger,
) *Service {
	return &Service{
		db:        invoices.DB(),
		invoices:  invoices,
		payments:  payments,
		contracts: contracts,
		rooms:     rooms,
		policy:    policy,
		logger:    logger,
	}
}

// SetProofPurger wires the proof cascade used by DeletePayment.
func (s *Service) SetProofPurger(p ProofPurger) {
	s.proofs = p
}

type CreateInvoiceInput struct {
	ContractID      uuid.UUID
	SubTotal        decimal.Decimal
	PreviousBalance decimal.Decimal
	DueDate         time.Time
	CreateDate      time.Time // zero means now
}

// CreateInvoice issues a new UNPAID invoice against an ACTIVE contract,
// capturing the room terms as an immutable snapshot.
func (s *Service) CreateInvoice(ctx context.Context, in CreateInvoiceInput) (*models.Invoice, error) {
	if in.SubTotal.IsNegative() {
		return nil, apperrors.Validationf("sub total must not be negative, got %s", in.SubTotal)
	}
	if in.PreviousBalance.IsNegative() {
		return nil, apperrors.Validationf("previous balance must not be negative, got %s", in.PreviousBalance)
	}
	createDate := in.CreateDate
	if createDate.IsZero() {
		createDate = time.Now()
	}
	if !in.DueDate.After(createDate) {
		return nil, apperrors.Validationf("due date must be after the create date")
	}

	contract, err := s.contracts.GetByID(ctx, in.ContractID)
	if err != nil {
		return nil, err
	}
	if contract.Status != models.ContractActive {
		return nil, apperrors.Conflictf("contract %s is %s, invoices require an ACTIVE contract", contract.ID, contract.Status)
	}
	room, err := s.rooms.GetByID(ctx, contract.RoomID)
	if err != nil {
		return nil, err
	}

	snapshot, err := models.InvoiceSnapshot{
		RoomNumber:   room.RoomNumber,
		MonthlyRent:  room.MonthlyRent,
		UtilityUnits: room.UtilityUnits,
	}.ToJSON()
	if err != nil {
		return nil, fmt.Errorf("building invoice snapshot: %w", err)
	}

	inv := &models.Invoice{
		ID:              uuid.New(),
		ContractID:      contract.ID,
		CreateDate:      createDate,
		DueDate:         in.DueDate,
		Status:          models.InvoiceUnpaid,
		SubTotal:        in.SubTotal,
		PenaltyTotal:    decimal.Zero,
		PreviousBalance: in.PreviousBalance,
		PaidAmount:      decimal.Zero,
		Snapshot:        snapshot,
		Version:         1,
	}
	Recompute(inv)

	if err := s.invoices.Create(ctx, inv); err != nil {
		return nil, err
	}
	s.logger.Info("invoice created",
		zap.String("invoice_id", inv.ID.String()),
		zap.String("contract_id", contract.ID.String()),
		zap.String("remaining", inv.RemainingBalance.String()))
	return inv, nil
}

type RecordPaymentInput struct {
	InvoiceID   uuid.UUID
	Amount      decimal.Decimal
	Method      models.PaymentMethod
	Status      models.PaymentStatus // empty means PENDING
	PaymentDate time.Time            // zero means now
	Reference   string
	Notes       string
	RecordedBy  string
}

// RecordPayment creates a payment record against an invoice. A record
// created CONFIRMED is reconciled into the invoice immediately.
func (s *Service) RecordPayment(ctx context.Context, in RecordPaymentInput) (*models.PaymentRecord, error) {
	if !in.Amount.IsPositive() {
		return nil, apperrors.Validationf("payment amount must be positive, got %s", in.Amount)
	}
	if !in.Method.IsValid() {
		return nil, apperrors.Validationf("unknown payment method %q", in.Method)
	}
	status := in.Status
	if status == "" {
		status = models.PaymentPending
	}
	if status != models.PaymentPending && status != models.PaymentConfirmed {
		return nil, apperrors.Validationf("a payment is recorded PENDING or CONFIRMED, got %s", status)
	}

	unlock := s.locks.Lock(in.InvoiceID)
	defer unlock()

	inv, err := s.invoices.GetByID(ctx, in.InvoiceID)
	if err != nil {
		return nil, err
	}
	if inv.Status == models.InvoiceCancelled {
		return nil, apperrors.Conflictf("invoice %s is cancelled and no longer accepts payments", inv.ID)
	}

	paymentDate := in.PaymentDate
	if paymentDate.IsZero() {
		paymentDate = time.Now()
	}
	rec := &models.PaymentRecord{
		ID:          uuid.New(),
		InvoiceID:   inv.ID,
		Amount:      in.Amount,
		Method:      in.Method,
		Status:      status,
		PaymentDate: paymentDate,
		Reference:   in.Reference,
		Notes:       in.Notes,
		RecordedBy:  in.RecordedBy,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(rec).Error; err != nil {
			return err
		}
		if err := tx.Create(&models.PaymentAuditLog{
			ID:              uuid.New(),
			PaymentRecordID: rec.ID,
			InvoiceID:       inv.ID,
			Action:          "recorded",
			NewStatus:       status,
			PerformedBy:     in.RecordedBy,
		}).Error; err != nil {
			return err
		}
		if status == models.PaymentConfirmed {
			return s.reconcile(tx, inv.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("payment recorded",
		zap.String("payment_id", rec.ID.String()),
		zap.String("invoice_id", inv.ID.String()),
		zap.String("amount", rec.Amount.String()),
		zap.String("status", rec.Status.String()))
	return rec, nil
}

// TransitionPaymentStatus moves a payment out of PENDING. Transitions out
// of a terminal status are refused with a ConflictError.
func (s *Service) TransitionPaymentStatus(ctx context.Context, paymentID uuid.UUID, newStatus models.PaymentStatus, performedBy string) (*models.PaymentRecord, error) {
	if !newStatus.IsValid() || newStatus == models.PaymentPending {
		return nil, apperrors.Validationf("cannot transition a payment to %q", newStatus)
	}

	rec, err := s.payments.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(rec.InvoiceID)
	defer unlock()

	// Fresh read under the lock; the record may have been transitioned
	// while we waited.
	rec, err = s.payments.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if rec.Status.IsTerminal() {
		return nil, apperrors.Conflictf("payment %s is already %s", rec.ID, rec.Status)
	}

	inv, err := s.invoices.GetByID(ctx, rec.InvoiceID)
	if err != nil {
		return nil, err
	}
	if newStatus == models.PaymentConfirmed && inv.Status == models.InvoiceCancelled {
		return nil, apperrors.Conflictf("invoice %s is cancelled, payment cannot be confirmed", inv.ID)
	}

	previous := rec.Status
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.PaymentRecord{}).
			Where("id = ? AND status = ?", rec.ID, previous).
			Updates(map[string]interface{}{
				"status":     newStatus,
				"updated_at": time.Now(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return apperrors.Conflictf("payment %s was transitioned concurrently", rec.ID)
		}
		if err := tx.Create(&models.PaymentAuditLog{
			ID:              uuid.New(),
			PaymentRecordID: rec.ID,
			InvoiceID:       inv.ID,
			Action:          "status_changed",
			PreviousStatus:  previous,
			NewStatus:       newStatus,
			PerformedBy:     performedBy,
		}).Error; err != nil {
			return err
		}
		return s.reconcile(tx, inv.ID)
	})
	if err != nil {
		return nil, err
	}

	rec.Status = newStatus
	s.logger.Info("payment status changed",
		zap.String("payment_id", rec.ID.String()),
		zap.String("invoice_id", inv.ID.String()),
		zap.String("from", previous.String()),
		zap.String("to", newStatus.String()))
	return rec, nil
}

// DeletePayment removes a payment record, cascading to its proofs, and
// reconciles the invoice so a deleted CONFIRMED payment no longer counts.
// The proof cascade runs only after the record delete commits: a failed
// delete leaves the record intact with its evidence.
func (s *Service) DeletePayment(ctx context.Context, paymentID uuid.UUID, performedBy string) error {
	rec, err := s.payments.GetByID(ctx, paymentID)
	if err != nil {
		return err
	}

	unlock := s.locks.Lock(rec.InvoiceID)
	defer unlock()

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&models.PaymentAuditLog{
			ID:              uuid.New(),
			PaymentRecordID: rec.ID,
			InvoiceID:       rec.InvoiceID,
			Action:          "deleted",
			PreviousStatus:  rec.Status,
			PerformedBy:     performedBy,
		}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.PaymentRecord{}, "id = ?", rec.ID).Error; err != nil {
			return err
		}
		return s.reconcile(tx, rec.InvoiceID)
	})
	if err != nil {
		return err
	}

	if s.proofs != nil {
		if err := s.proofs.DeleteAllProofs(ctx, rec.ID); err != nil {
			s.logger.Warn("proof cascade failed after payment delete",
				zap.String("payment_id", rec.ID.String()), zap.Error(err))
		}
	}
	return nil
}

// ApplyPenaltyIfOverdue applies the one-time overdue penalty. Idempotent:
// it is a no-op unless the invoice is UNPAID, past due at asOf, and has
// never been penalized.
func (s *Service) ApplyPenaltyIfOverdue(ctx context.Context, invoiceID uuid.UUID, asOf time.Time) (*models.Invoice, error) {
	unlock := s.locks.Lock(invoiceID)
	defer unlock()

	inv, err := s.invoices.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if inv.Status != models.InvoiceUnpaid || inv.PenaltyAppliedAt != nil || !asOf.After(inv.DueDate) {
		return inv, nil
	}

	penalty := s.policy.Penalty(inv)
	if penalty.IsNegative() {
		return nil, apperrors.Validationf("penalty policy produced a negative amount %s", penalty)
	}
	appliedAt := asOf
	inv.PenaltyTotal = penalty
	inv.PenaltyAppliedAt = &appliedAt
	Recompute(inv)

	result := s.db.WithContext(ctx).Model(&models.Invoice{}).
		Where("id = ? AND version = ? AND penalty_applied_at IS NULL", inv.ID, inv.Version).
		Updates(map[string]interface{}{
			"penalty_total":      inv.PenaltyTotal,
			"penalty_applied_at": inv.PenaltyAppliedAt,
			"net_amount":         inv.NetAmount,
			"remaining_balance":  inv.RemainingBalance,
			"status":             inv.Status,
			"version":            inv.Version + 1,
			"updated_at":         time.Now(),
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, apperrors.Conflictf("invoice %s was modified concurrently, penalty not applied", inv.ID)
	}
	inv.Version++

	s.logger.Info("overdue penalty applied",
		zap.String("invoice_id", inv.ID.String()),
		zap.String("penalty", penalty.String()),
		zap.Time("as_of", asOf))
	return inv, nil
}

// ApplyOverduePenalties runs the penalty sweep over every overdue UNPAID
// invoice without a penalty. Individual failures are logged and skipped.
func (s *Service) ApplyOverduePenalties(ctx context.Context, asOf time.Time) (int, error) {
	ids, err := s.invoices.FindOverdueUnpenalized(ctx, asOf)
	if err != nil {
		return 0, err
	}
	applied := 0
	for _, id := range ids {
		inv, err := s.ApplyPenaltyIfOverdue(ctx, id, asOf)
		if err != nil {
			s.logger.Warn("penalty sweep failed for invoice",
				zap.String("invoice_id", id.String()), zap.Error(err))
			continue
		}
		if inv.PenaltyAppliedAt != nil {
			applied++
		}
	}
	return applied, nil
}

// CancelInvoice manually cancels an invoice. Cancellation is terminal;
// recomputation never clears it. Cancelling twice is a no-op.
func (s *Service) CancelInvoice(ctx context.Context, invoiceID uuid.UUID, reason string) (*models.Invoice, error) {
	unlock := s.locks.Lock(invoiceID)
	defer unlock()

	inv, err := s.invoices.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if inv.Status == models.InvoiceCancelled {
		return inv, nil
	}

	now := time.Now()
	result := s.db.WithContext(ctx).Model(&models.Invoice{}).
		Where("id = ? AND version = ?", inv.ID, inv.Version).
		Updates(map[string]interface{}{
			"status":        models.InvoiceCancelled,
			"cancelled_at":  now,
			"cancel_reason": reason,
			"version":       inv.Version + 1,
			"updated_at":    now,
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, apperrors.Conflictf("invoice %s was modified concurrently, retry cancellation", inv.ID)
	}

	inv.Status = models.InvoiceCancelled
	inv.CancelledAt = &now
	inv.CancelReason = reason
	inv.Version++
	s.logger.Info("invoice cancelled", zap.String("invoice_id", inv.ID.String()), zap.String("reason", reason))
	return inv, nil
}

// Balance is the read view of an invoice's money position. PendingAmount
// is reporting-only and never persisted.
type Balance struct {
	InvoiceID        uuid.UUID            `json:"invoice_id"`
	NetAmount        decimal.Decimal      `json:"net_amount"`
	PreviousBalance  decimal.Decimal      `json:"previous_balance"`
	PaidAmount       decimal.Decimal      `json:"paid_amount"`
	PendingAmount    decimal.Decimal      `json:"pending_amount"`
	RemainingBalance decimal.Decimal      `json:"remaining_balance"`
	Status           models.InvoiceStatus `json:"status"`
}

// GetInvoiceBalance returns the denormalized balance fields plus the
// pending sum.
func (s *Service) GetInvoiceBalance(ctx context.Context, invoiceID uuid.UUID) (*Balance, error) {
	inv, err := s.invoices.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	pending, err := s.payments.SumByStatus(ctx, inv.ID, models.PaymentPending)
	if err != nil {
		return nil, err
	}
	return &Balance{
		InvoiceID:        inv.ID,
		NetAmount:        inv.NetAmount,
		PreviousBalance:  inv.PreviousBalance,
		PaidAmount:       inv.PaidAmount,
		PendingAmount:    pending,
		RemainingBalance: inv.RemainingBalance,
		Status:           inv.Status,
	}, nil
}

// IsFullyPaid reports whether confirmed payments cover the invoice charge
// plus the carried balance.
func (s *Service) IsFullyPaid(ctx context.Context, invoiceID uuid.UUID) (bool, error) {
	inv, err := s.invoices.GetByID(ctx, invoiceID)
	if err != nil {
		return false, err
	}
	return inv.PaidAmount.GreaterThanOrEqual(inv.NetAmount.Add(inv.PreviousBalance)), nil
}

// GetInvoice returns one invoice.
func (s *Service) GetInvoice(ctx context.Context, invoiceID uuid.UUID) (*models.Invoice, error) {
	return s.invoices.GetByID(ctx, invoiceID)
}

// GetPayment returns one payment record.
func (s *Service) GetPayment(ctx context.Context, paymentID uuid.UUID) (*models.PaymentRecord, error) {
	return s.payments.GetByID(ctx, paymentID)
}

// ListInvoices returns invoices, optionally filtered by status and contract.
func (s *Service) ListInvoices(ctx context.Context, status models.InvoiceStatus, contractID *uuid.UUID) ([]models.Invoice, error) {
	if status != "" && !status.IsValid() {
		return nil, apperrors.Validationf("unknown invoice status %q", status)
	}
	return s.invoices.List(ctx, status, contractID)
}

// ListPayments returns an invoice's payment records in payment date order.
func (s *Service) ListPayments(ctx context.Context, invoiceID uuid.UUID) ([]models.PaymentRecord, error) {
	if _, err := s.invoices.GetByID(ctx, invoiceID); err != nil {
		return nil, err
	}
	return s.payments.ListByInvoice(ctx, invoiceID)
}

// reconcile recomputes an invoice's aggregates from its payment records.
// It must run inside tx so the CONFIRMED sum and the invoice update are
// atomic; the version check catches a write that raced us anyway.
func (s *Service) reconcile(tx *gorm.DB, invoiceID uuid.UUID) error {
	var inv models.Invoice
	if err := tx.First(&inv, "id = ?", invoiceID).Error; err != nil {
		return err
	}

	paid, err := repository.SumByStatus(tx, invoiceID, models.PaymentConfirmed)
	if err != nil {
		return err
	}
	inv.PaidAmount = paid
	Recompute(&inv)

	result := tx.Model(&models.Invoice{}).
		Where("id = ? AND version = ?", inv.ID, inv.Version).
		Updates(map[string]interface{}{
			"paid_amount":       inv.PaidAmount,
			"net_amount":        inv.NetAmount,
			"remaining_balance": inv.RemainingBalance,
			"status":            inv.Status,
			"version":           inv.Version + 1,
			"updated_at":        time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.Conflictf("invoice %s was modified concurrently, retry the operation", inv.ID)
	}
	return nil
}
