package ledger

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"rental-billing-backend/internal/config"
	"rental-billing-backend/internal/models"
)

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func TestRecompute_DerivedFields(t *testing.T) {
	tests := []struct {
		name          string
		sub           string
		penalty       string
		previous      string
		paid          string
		wantNet       string
		wantRemaining string
		wantStatus    models.InvoiceStatus
	}{
		{"fresh invoice", "5000", "0", "0", "0", "5000", "5000", models.InvoiceUnpaid},
		{"carried balance", "5000", "0", "1500", "0", "5000", "6500", models.InvoiceUnpaid},
		{"partially paid", "5000", "0", "0", "3000", "5000", "2000", models.InvoiceUnpaid},
		{"fully paid", "5000", "0", "0", "5000", "5000", "0", models.InvoicePaid},
		{"penalized", "5000", "200", "0", "0", "5200", "5200", models.InvoiceUnpaid},
		{"penalized and paid", "5000", "200", "0", "5200", "5200", "0", models.InvoicePaid},
		{"overpaid clamps to zero", "5000", "0", "0", "6000", "5000", "0", models.InvoicePaid},
		{"zero invoice is paid", "0", "0", "0", "0", "0", "0", models.InvoicePaid},
		{"cents", "4999.99", "0.01", "0", "2500", "5000", "2500", models.InvoiceUnpaid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := &models.Invoice{
				Status:          models.InvoiceUnpaid,
				SubTotal:        d(tt.sub),
				PenaltyTotal:    d(tt.penalty),
				PreviousBalance: d(tt.previous),
				PaidAmount:      d(tt.paid),
			}
			Recompute(inv)

			assert.True(t, inv.NetAmount.Equal(d(tt.wantNet)), "net = %s", inv.NetAmount)
			assert.True(t, inv.RemainingBalance.Equal(d(tt.wantRemaining)), "remaining = %s", inv.RemainingBalance)
			assert.Equal(t, tt.wantStatus, inv.Status)

			// Net must always equal sub + penalty, no matter the inputs.
			assert.True(t, inv.NetAmount.Equal(inv.SubTotal.Add(inv.PenaltyTotal)))
		})
	}
}

func TestRecompute_NeverTouchesCancelled(t *testing.T) {
	inv := &models.Invoice{
		Status:          models.InvoiceCancelled,
		SubTotal:        d("5000"),
		PenaltyTotal:    decimal.Zero,
		PreviousBalance: decimal.Zero,
		PaidAmount:      d("5000"),
	}
	Recompute(inv)

	assert.Equal(t, models.InvoiceCancelled, inv.Status)
	assert.True(t, inv.RemainingBalance.IsZero())
}

func TestRecompute_IsIdempotent(t *testing.T) {
	inv := &models.Invoice{
		Status:          models.InvoiceUnpaid,
		SubTotal:        d("5000"),
		PenaltyTotal:    d("200"),
		PreviousBalance: d("300"),
		PaidAmount:      d("1000"),
	}
	Recompute(inv)
	first := *inv
	Recompute(inv)

	assert.True(t, first.NetAmount.Equal(inv.NetAmount))
	assert.True(t, first.RemainingBalance.Equal(inv.RemainingBalance))
	assert.Equal(t, first.Status, inv.Status)
}

func TestFlatFee(t *testing.T) {
	policy := FlatFee{Fee: d("200")}
	inv := &models.Invoice{SubTotal: d("5000")}
	assert.True(t, policy.Penalty(inv).Equal(d("200")))
}

func TestPercentOfSubTotal(t *testing.T) {
	policy := PercentOfSubTotal{Percent: d("5")}
	inv := &models.Invoice{SubTotal: d("5000")}
	assert.True(t, policy.Penalty(inv).Equal(d("250")))

	// Rounded to cents.
	inv = &models.Invoice{SubTotal: d("333.33")}
	assert.True(t, policy.Penalty(inv).Equal(d("16.67")), "got %s", policy.Penalty(inv))
}

func TestPolicyFromConfig(t *testing.T) {
	flat := PolicyFromConfig(config.PenaltyConfig{Mode: "flat", Flat: d("150")})
	assert.IsType(t, FlatFee{}, flat)

	percent := PolicyFromConfig(config.PenaltyConfig{Mode: "percent", Percent: d("2")})
	assert.IsType(t, PercentOfSubTotal{}, percent)
}
