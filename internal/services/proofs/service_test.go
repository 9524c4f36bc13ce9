package proofs

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"rental-billing-backend/internal/apperrors"
	"rental-billing-backend/internal/models"
	"rental-billing-backend/internal/repository"
	"rental-billing-backend/internal/testutil"
)

// fakeStore keeps blobs in a map and can be told to fail.
type fakeStore struct {
	mu      sync.Mutex
	blobs   map[string][]byte
	failPut bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{blobs: map[string][]byte{}}
}

func (f *fakeStore) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	if f.failPut {
		return errors.New("disk full")
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.blobs[key] = data
	return nil
}

func (f *fakeStore) Open(_ context.Context, key string) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.blobs[key]
	if !ok {
		return nil, errors.New("no such blob")
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (f *fakeStore) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.blobs, key)
	return nil
}

func (f *fakeStore) len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.blobs)
}

func newTestService(t *testing.T) (*Service, *fakeStore, *gorm.DB) {
	t.Helper()
	db := testutil.OpenDB(t)
	store := newFakeStore()
	svc := NewService(
		repository.NewPaymentRepository(db),
		repository.NewProofRepository(db),
		store,
		zap.NewNop(),
	)
	return svc, store, db
}

func seedPayment(t *testing.T, db *gorm.DB) *models.PaymentRecord {
	t.Helper()
	rec := &models.PaymentRecord{
		ID:          uuid.New(),
		InvoiceID:   uuid.New(),
		Amount:      decimal.RequireFromString("1000"),
		Method:      models.MethodBankTransfer,
		Status:      models.PaymentPending,
		PaymentDate: time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, db.Create(rec).Error)
	return rec
}

func upload(name, body string) Upload {
	return Upload{
		FileName:    name,
		Size:        int64(len(body)),
		ContentType: "image/png",
		ProofType:   models.ProofTransferReceipt,
		UploadedBy:  "front-desk",
		Body:        strings.NewReader(body),
	}
}

func TestAttachProof(t *testing.T) {
	svc, store, db := newTestService(t)
	rec := seedPayment(t, db)
	ctx := context.Background()

	proof, err := svc.AttachProof(ctx, rec.ID, upload("receipt.png", "png-bytes"))
	require.NoError(t, err)

	assert.Equal(t, rec.ID, proof.PaymentRecordID)
	assert.Equal(t, "receipt.png", proof.FileName)
	assert.Equal(t, models.ProofTransferReceipt, proof.ProofType)
	assert.True(t, strings.HasSuffix(proof.FilePath, ".png"))
	assert.False(t, proof.UploadedAt.IsZero())
	assert.Equal(t, 1, store.len())

	got, body, err := svc.OpenProof(ctx, proof.ID)
	require.NoError(t, err)
	defer body.Close()
	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))
	assert.Equal(t, proof.ID, got.ID)
}

func TestAttachProof_Validation(t *testing.T) {
	svc, _, db := newTestService(t)
	rec := seedPayment(t, db)
	ctx := context.Background()

	_, err := svc.AttachProof(ctx, rec.ID, Upload{Size: 10, Body: strings.NewReader("x")})
	assert.True(t, apperrors.IsValidation(err), "missing file name")

	_, err = svc.AttachProof(ctx, rec.ID, Upload{FileName: "a.png", Size: 0})
	assert.True(t, apperrors.IsValidation(err), "empty file")

	_, err = svc.AttachProof(ctx, rec.ID, Upload{FileName: "a.png", Size: MaxProofSize + 1})
	assert.True(t, apperrors.IsValidation(err), "oversized file")

	up := upload("a.png", "x")
	up.ProofType = models.ProofType("NOTARIZED_SELFIE")
	_, err = svc.AttachProof(ctx, rec.ID, up)
	assert.True(t, apperrors.IsValidation(err), "unknown proof type")

	_, err = svc.AttachProof(ctx, uuid.New(), upload("a.png", "x"))
	assert.True(t, apperrors.IsNotFound(err), "unknown payment")
}

func TestAttachProof_StoreFailureLeavesNoRow(t *testing.T) {
	svc, store, db := newTestService(t)
	rec := seedPayment(t, db)
	store.failPut = true

	_, err := svc.AttachProof(context.Background(), rec.ID, upload("a.png", "x"))
	assert.True(t, apperrors.IsStorage(err))

	list, err := svc.ListProofs(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestListProofs_NewestFirst(t *testing.T) {
	svc, _, db := newTestService(t)
	rec := seedPayment(t, db)
	ctx := context.Background()

	proofs := repository.NewProofRepository(db)
	base := time.Date(2025, 1, 5, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		require.NoError(t, proofs.Create(ctx, &models.PaymentProof{
			ID:              uuid.New(),
			PaymentRecordID: rec.ID,
			FileName:        "p.png",
			FilePath:        uuid.NewString(),
			FileSize:        1,
			ProofType:       models.ProofScreenshot,
			UploadedAt:      base.Add(time.Duration(i) * time.Hour),
		}))
	}

	list, err := svc.ListProofs(ctx, rec.ID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.True(t, list[0].UploadedAt.After(list[1].UploadedAt))
	assert.True(t, list[1].UploadedAt.After(list[2].UploadedAt))

	_, err = svc.ListProofs(ctx, uuid.New())
	assert.True(t, apperrors.IsNotFound(err))
}

func TestDeleteProof(t *testing.T) {
	svc, store, db := newTestService(t)
	rec := seedPayment(t, db)
	ctx := context.Background()

	proof, err := svc.AttachProof(ctx, rec.ID, upload("a.png", "x"))
	require.NoError(t, err)

	require.NoError(t, svc.DeleteProof(ctx, proof.ID))
	assert.Equal(t, 0, store.len())

	_, _, err = svc.OpenProof(ctx, proof.ID)
	assert.True(t, apperrors.IsNotFound(err))

	err = svc.DeleteProof(ctx, proof.ID)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestDeleteAllProofs(t *testing.T) {
	svc, store, db := newTestService(t)
	rec := seedPayment(t, db)
	other := seedPayment(t, db)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := svc.AttachProof(ctx, rec.ID, upload("a.png", "x"))
		require.NoError(t, err)
	}
	kept, err := svc.AttachProof(ctx, other.ID, upload("b.png", "y"))
	require.NoError(t, err)

	require.NoError(t, svc.DeleteAllProofs(ctx, rec.ID))

	list, err := svc.ListProofs(ctx, rec.ID)
	require.NoError(t, err)
	assert.Empty(t, list)

	// The other payment's proof survives.
	assert.Equal(t, 1, store.len())
	_, body, err := svc.OpenProof(ctx, kept.ID)
	require.NoError(t, err)
	body.Close()
}
