// Package sweep runs the periodic housekeeping pass: expiring ended
// contracts and applying overdue penalties.
package sweep

import (
	"context"
	"time"

	"go.uber.org/zap"

	"rental-billing-backend/internal/services/contracts"
	"rental-billing-backend/internal/services/ledger"
)

type Sweeper struct {
	ledger    *ledger.Service
	contracts *contracts.Service
	interval  time.Duration
	logger    *zap.Logger
}

func New(ledgerSvc *ledger.Service, contractSvc *contracts.Service, interval time.Duration, logger *zap.Logger) *Sweeper {
	return &Sweeper{
		ledger:    ledgerSvc,
		contracts: contractSvc,
		interval:  interval,
		logger:    logger,
	}
}

// RunOnce executes one sweep at the given instant. Partial failures are
// logged; the pass keeps going so one bad invoice cannot stall the rest.
func (s *Sweeper) RunOnce(ctx context.Context, asOf time.Time) {
	expired, err := s.contracts.ExpireContracts(ctx, asOf)
	if err != nil {
		s.logger.Error("contract expiry sweep failed", zap.Error(err))
	}

	penalized, err := s.ledger.ApplyOverduePenalties(ctx, asOf)
	if err != nil {
		s.logger.Error("penalty sweep failed", zap.Error(err))
	}

	s.logger.Info("sweep completed",
		zap.Time("as_of", asOf),
		zap.Int64("contracts_expired", expired),
		zap.Int("penalties_applied", penalized))
}

// Start launches the sweep loop. It runs once immediately, then on every
// tick until ctx is cancelled.
func (s *Sweeper) Start(ctx context.Context) {
	go func() {
		s.RunOnce(ctx, time.Now())

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				s.logger.Info("sweep loop stopped")
				return
			case now := <-ticker.C:
				s.RunOnce(ctx, now)
			}
		}
	}()
}
