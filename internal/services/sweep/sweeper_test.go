package sweep

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"rental-billing-backend/internal/models"
	"rental-billing-backend/internal/repository"
	"rental-billing-backend/internal/services/contracts"
	"rental-billing-backend/internal/services/ledger"
	"rental-billing-backend/internal/testutil"
)

func TestRunOnce(t *testing.T) {
	db := testutil.OpenDB(t)
	logger := zap.NewNop()

	ledgerSvc := ledger.NewService(
		repository.NewInvoiceRepository(db),
		repository.NewPaymentRepository(db),
		repository.NewContractRepository(db),
		repository.NewRoomRepository(db),
		ledger.FlatFee{Fee: decimal.RequireFromString("200")},
		logger,
	)
	contractSvc := contracts.NewService(
		repository.NewContractRepository(db),
		repository.NewRoomRepository(db),
		logger,
	)
	sweeper := New(ledgerSvc, contractSvc, time.Minute, logger)
	ctx := context.Background()

	room, err := contractSvc.CreateRoom(ctx, contracts.CreateRoomInput{
		RoomNumber:  "A-101",
		MonthlyRent: decimal.RequireFromString("5000"),
	})
	require.NoError(t, err)

	start := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)
	contract, err := contractSvc.CreateContract(ctx, contracts.CreateContractInput{
		RoomID:     room.ID,
		TenantName: "Sam Ortiz",
		StartDate:  start,
		EndDate:    end,
	})
	require.NoError(t, err)

	due := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	inv, err := ledgerSvc.CreateInvoice(ctx, ledger.CreateInvoiceInput{
		ContractID: contract.ID,
		SubTotal:   decimal.RequireFromString("5000"),
		DueDate:    due,
		CreateDate: due.AddDate(0, 0, -10),
	})
	require.NoError(t, err)

	sweeper.RunOnce(ctx, time.Date(2025, 2, 15, 0, 0, 0, 0, time.UTC))

	gotContract, err := contractSvc.GetContract(ctx, contract.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ContractExpired, gotContract.Status)

	gotInvoice, err := ledgerSvc.GetInvoice(ctx, inv.ID)
	require.NoError(t, err)
	require.NotNil(t, gotInvoice.PenaltyAppliedAt)
	assert.True(t, gotInvoice.PenaltyTotal.Equal(decimal.RequireFromString("200")))
}
