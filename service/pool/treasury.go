package pool

import (
	"context"
	"fmt"
	"time"

	"lotus/core"
	"lotus/internal/lending"
	"lotus/pkg/metrics"

	"github.com/fox-one/pkg/logger"
	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"
)

// mintToTreasury captures rounding dust and the lending fee spread.
// Whenever real debt plus idle balance exceeds real deposits, the
// surplus above the collection floor is minted as deposit tokens to
// the fee collector.
func (s *poolService) mintToTreasury(ctx context.Context, tx *db.DB, reserve *core.Reserve) error {
	surplus := reserve.TotalDebt().Add(reserve.AssetBalance).Sub(reserve.TotalDeposits())
	if !surplus.GreaterThan(reserve.MinimumCollectionAmount) {
		return nil
	}

	scaled, err := s.ledgers.Mint(ctx, tx, core.LedgerDeposit, s.cfg.FeeCollectorID, surplus, reserve.LiquidityIndex, core.RoundDown)
	if err != nil {
		return err
	}
	reserve.TotalScaledDeposits = reserve.TotalScaledDeposits.Add(scaled)

	logger.FromContext(ctx).WithField("surplus", surplus).Debugln("minted to treasury")
	return nil
}

func (s *poolService) ClaimYield(ctx context.Context, now time.Time) (decimal.Decimal, error) {
	log := logger.FromContext(ctx).WithField("event", "claim_yield")
	ctx = logger.WithContext(ctx, log)

	s.mux.Lock()
	defer s.mux.Unlock()

	if s.yield == nil {
		return decimal.Zero, core.ErrNotClaimableProfit
	}

	if err := s.checkRunning(ctx, false); err != nil {
		return decimal.Zero, err
	}

	claimable, err := s.yield.ClaimableYield(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	if !claimable.IsPositive() {
		return decimal.Zero, core.ErrNotClaimableProfit
	}

	var claimed decimal.Decimal
	err = s.db.Tx(func(tx *db.DB) error {
		reserve, err := s.loadReserve(ctx)
		if err != nil {
			return err
		}

		lending.AccrueInterest(reserve, now)

		// claimed yield lands in the idle balance; the treasury sweep
		// credits it to the fee collector as deposit tokens
		reserve.AssetBalance = reserve.AssetBalance.Add(claimable)

		if err := s.mintToTreasury(ctx, tx, reserve); err != nil {
			return err
		}

		if err := s.refreshRate(ctx, reserve, false); err != nil {
			return err
		}

		if err := s.reserves.Update(ctx, tx, reserve); err != nil {
			return err
		}

		// the claim goes last; if the source fails or pays out a
		// different amount the transaction unwinds the accounting
		claimed, err = s.yield.Claim(ctx)
		if err != nil {
			return err
		}
		if !claimed.Equal(claimable) {
			return fmt.Errorf("yield: claimed %s, expected %s", claimed, claimable)
		}

		return nil
	})

	metrics.ObserveOperation("claim_yield", err)
	if err != nil {
		return decimal.Zero, err
	}

	log.WithField("claimed", claimed).Infoln("yield claimed")
	return claimed, nil
}
