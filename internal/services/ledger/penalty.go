package ledger

import (
	"github.com/shopspring/decimal"

	"rental-billing-backend/internal/config"
	"rental-billing-backend/internal/models"
)

// PenaltyPolicy computes the one-time overdue penalty for an invoice.
// Policy changes never apply retroactively: the policy is read once at
// application time and PenaltyAppliedAt guards re-application.
type PenaltyPolicy interface {
	Penalty(inv *models.Invoice) decimal.Decimal
}

// FlatFee charges a fixed penalty regardless of invoice size.
type FlatFee struct {
	Fee decimal.Decimal
}

func (p FlatFee) Penalty(*models.Invoice) decimal.Decimal {
	return p.Fee
}

// PercentOfSubTotal charges a percentage of the invoice sub-total,
// rounded to cents.
type PercentOfSubTotal struct {
	Percent decimal.Decimal
}

func (p PercentOfSubTotal) Penalty(inv *models.Invoice) decimal.Decimal {
	return inv.SubTotal.Mul(p.Percent).Div(decimal.NewFromInt(100)).Round(2)
}

// PolicyFromConfig builds the configured penalty policy.
func PolicyFromConfig(cfg config.PenaltyConfig) PenaltyPolicy {
	if cfg.Mode == "percent" {
		return PercentOfSubTotal{Percent: cfg.Percent}
	}
	return FlatFee{Fee: cfg.Flat}
}
