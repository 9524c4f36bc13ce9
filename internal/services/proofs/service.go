// Package proofs manages payment proof attachments: metadata rows in the
// database plus the files themselves behind a blob store.
package proofs

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"rental-billing-backend/internal/apperrors"
	"rental-billing-backend/internal/models"
	"rental-billing-backend/internal/repository"
	"rental-billing-backend/internal/storage"
)

// MaxProofSize caps a single proof upload at 10 MiB.
const MaxProofSize = 10 << 20

type Service struct {
	payments *repository.PaymentRepository
	proofs   *repository.ProofRepository
	store    storage.ProofStore
	logger   *zap.Logger
}

func NewService(
	payments *repository.PaymentRepository,
	proofs *repository.ProofRepository,
	store storage.ProofStore,
	logger *zap.Logger,
) *Service {
	return &Service{
		payments: payments,
		proofs:   proofs,
		store:    store,
		logger:   logger,
	}
}

type Upload struct {
	FileName    string
	Size        int64
	ContentType string
	ProofType   models.ProofType
	Description string
	UploadedBy  string
	Body        io.Reader
}

// AttachProof stores an uploaded file and records it against a payment.
// The blob is written first; if the write fails no metadata row is
// created, so a proof row always points at a stored file.
func (s *Service) AttachProof(ctx context.Context, paymentID uuid.UUID, up Upload) (*models.PaymentProof, error) {
	if up.FileName == "" {
		return nil, apperrors.Validationf("proof file name is required")
	}
	if up.Size <= 0 {
		return nil, apperrors.Validationf("proof file is empty")
	}
	if up.Size > MaxProofSize {
		return nil, apperrors.Validationf("proof file exceeds the %d byte limit", MaxProofSize)
	}
	proofType := up.ProofType
	if proofType == "" {
		proofType = models.ProofOther
	}
	if !proofType.IsValid() {
		return nil, apperrors.Validationf("unknown proof type %q", up.ProofType)
	}

	rec, err := s.payments.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	id := uuid.New()
	key := fmt.Sprintf("proofs/%s/%s%s", rec.ID, id, filepath.Ext(up.FileName))
	if err := s.store.Put(ctx, key, up.Body, up.Size, up.ContentType); err != nil {
		return nil, apperrors.Storagef("storing proof file: %v", err)
	}

	proof := &models.PaymentProof{
		ID:              id,
		PaymentRecordID: rec.ID,
		FileName:        up.FileName,
		FilePath:        key,
		FileSize:        up.Size,
		ContentType:     up.ContentType,
		ProofType:       proofType,
		Description:     up.Description,
		UploadedBy:      up.UploadedBy,
		UploadedAt:      time.Now(),
	}
	if err := s.proofs.Create(ctx, proof); err != nil {
		// Roll the blob back so storage does not accumulate orphans.
		if derr := s.store.Delete(ctx, key); derr != nil {
			s.logger.Warn("orphaned proof blob after failed insert",
				zap.String("key", key), zap.Error(derr))
		}
		return nil, err
	}

	s.logger.Info("proof attached",
		zap.String("proof_id", proof.ID.String()),
		zap.String("payment_id", rec.ID.String()),
		zap.String("key", key),
		zap.Int64("size", up.Size))
	return proof, nil
}

// ListProofs returns a payment's proofs, newest first.
func (s *Service) ListProofs(ctx context.Context, paymentID uuid.UUID) ([]models.PaymentProof, error) {
	if _, err := s.payments.GetByID(ctx, paymentID); err != nil {
		return nil, err
	}
	return s.proofs.ListByPayment(ctx, paymentID)
}

// OpenProof returns the proof metadata and a reader over the stored file.
// The caller closes the reader.
func (s *Service) OpenProof(ctx context.Context, proofID uuid.UUID) (*models.PaymentProof, io.ReadCloser, error) {
	proof, err := s.proofs.GetByID(ctx, proofID)
	if err != nil {
		return nil, nil, err
	}
	body, err := s.store.Open(ctx, proof.FilePath)
	if err != nil {
		return nil, nil, apperrors.Storagef("opening proof file %s: %v", proof.FilePath, err)
	}
	return proof, body, nil
}

// DeleteProof removes one proof row and its file.
func (s *Service) DeleteProof(ctx context.Context, proofID uuid.UUID) error {
	proof, err := s.proofs.GetByID(ctx, proofID)
	if err != nil {
		return err
	}
	if err := s.proofs.DeleteByID(ctx, proof.ID); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, proof.FilePath); err != nil {
		s.logger.Warn("proof row deleted but blob removal failed",
			zap.String("key", proof.FilePath), zap.Error(err))
	}
	return nil
}

// DeleteAllProofs removes every proof owned by a payment record. Rows go
// first; blob removal failures are logged, not fatal, since the rows are
// the source of truth.
func (s *Service) DeleteAllProofs(ctx context.Context, paymentID uuid.UUID) error {
	list, err := s.proofs.ListByPayment(ctx, paymentID)
	if err != nil {
		return err
	}
	if err := s.proofs.DeleteByPayment(ctx, paymentID); err != nil {
		return err
	}
	for _, proof := range list {
		if err := s.store.Delete(ctx, proof.FilePath); err != nil {
			s.logger.Warn("proof blob removal failed",
				zap.String("key", proof.FilePath), zap.Error(err))
		}
	}
	return nil
}
