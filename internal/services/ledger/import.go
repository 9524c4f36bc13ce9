package ledger

import (
	"context"
	"encoding/csv"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"rental-billing-backend/internal/models"
)

// ImportPayments reads a payment CSV and records each row through the
// normal reconciliation path, so validation and balance recomputation
// apply exactly as for API-recorded payments.
//
// Expected columns: invoice_id, amount, method, status, date, reference,
// recorded_by. The first row is treated as a header. Malformed rows are
// skipped and counted, never fatal.
func (s *Service) ImportPayments(ctx context.Context, filename string, r io.Reader) (*models.ImportBatch, error) {
	batch := &models.ImportBatch{
		ID:        uuid.New(),
		Filename:  filename,
		Status:    "processing",
		StartedAt: time.Now(),
	}
	if err := s.db.WithContext(ctx).Create(batch).Error; err != nil {
		return nil, err
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	// Skip header
	_, _ = reader.Read()

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			batch.SkippedCount++
			continue
		}
		if len(record) == 0 || strings.Join(record, "") == "" {
			continue
		}
		batch.TotalRows++

		if len(record) < 5 {
			s.logger.Warn("import: row has too few columns", zap.Int("row", batch.TotalRows))
			batch.SkippedCount++
			continue
		}

		invoiceID, err := uuid.Parse(strings.TrimSpace(record[0]))
		if err != nil {
			s.logger.Warn("import: invalid invoice id", zap.Int("row", batch.TotalRows), zap.String("value", record[0]))
			batch.SkippedCount++
			continue
		}
		amount, err := decimal.NewFromString(strings.TrimSpace(record[1]))
		if err != nil {
			s.logger.Warn("import: invalid amount", zap.Int("row", batch.TotalRows), zap.String("value", record[1]))
			batch.SkippedCount++
			continue
		}
		date, err := time.Parse("2006-01-02", strings.TrimSpace(record[4]))
		if err != nil {
			s.logger.Warn("import: invalid date", zap.Int("row", batch.TotalRows), zap.String("value", record[4]))
			batch.SkippedCount++
			continue
		}

		in := RecordPaymentInput{
			InvoiceID:   invoiceID,
			Amount:      amount,
			Method:      models.PaymentMethod(strings.ToUpper(strings.TrimSpace(record[2]))),
			Status:      models.PaymentStatus(strings.ToUpper(strings.TrimSpace(record[3]))),
			PaymentDate: date,
		}
		if len(record) > 5 {
			in.Reference = strings.TrimSpace(record[5])
		}
		if len(record) > 6 {
			in.RecordedBy = strings.TrimSpace(record[6])
		}

		if _, err := s.RecordPayment(ctx, in); err != nil {
			s.logger.Warn("import: payment rejected", zap.Int("row", batch.TotalRows), zap.Error(err))
			batch.SkippedCount++
			continue
		}
		batch.ImportedCount++
	}

	now := time.Now()
	batch.Status = "completed"
	batch.CompletedAt = &now
	if err := s.db.WithContext(ctx).Save(batch).Error; err != nil {
		return nil, err
	}

	s.logger.Info("payment import completed",
		zap.String("batch_id", batch.ID.String()),
		zap.Int("imported", batch.ImportedCount),
		zap.Int("skipped", batch.SkippedCount))
	return batch, nil
}
