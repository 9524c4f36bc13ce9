// Package ledger implements the invoice ledger and the payment
// reconciliation engine on top of it.
package ledger

import (
	"github.com/shopspring/decimal"

	"rental-billing-backend/internal/models"
)

// Recompute derives every dependent invoice field from the independent
// ones. It is the only place balance fields are calculated; every mutation
// path calls it before persisting, so the fields can never drift apart.
//
//	NetAmount        = SubTotal + PenaltyTotal
//	RemainingBalance = max(0, NetAmount + PreviousBalance - PaidAmount)
//	Status           = PAID when nothing remains, UNPAID otherwise
//
// A CANCELLED invoice keeps its status: cancellation is a manual terminal
// override and recomputation never sets or clears it.
func Recompute(inv *models.Invoice) {
	inv.NetAmount = inv.SubTotal.Add(inv.PenaltyTotal)

	remaining := inv.NetAmount.Add(inv.PreviousBalance).Sub(inv.PaidAmount)
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}
	inv.RemainingBalance = remaining

	if inv.Status == models.InvoiceCancelled {
		return
	}
	if remaining.IsZero() {
		inv.Status = models.InvoicePaid
	} else {
		inv.Status = models.InvoiceUnpaid
	}
}
