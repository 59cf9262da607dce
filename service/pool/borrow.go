package pool

import (
	"context"
	"time"

	"lotus/core"
	"lotus/internal/lending"
	"lotus/pkg/id"
	"lotus/pkg/metrics"

	"github.com/fox-one/pkg/logger"
	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

func (s *poolService) Borrow(ctx context.Context, managerID, onBehalfOf string, amount decimal.Decimal, now time.Time) error {
	log := logger.FromContext(ctx).WithFields(logrus.Fields{
		"event":    "borrow",
		"trace_id": id.GenTraceID(),
		"account":  onBehalfOf,
		"amount":   amount,
	})
	ctx = logger.WithContext(ctx, log)

	s.mux.Lock()
	defer s.mux.Unlock()

	if err := s.checkRunning(ctx, true); err != nil {
		return err
	}

	if managerID != s.cfg.AccountManagerID {
		return core.ErrOperationForbidden
	}
	if onBehalfOf == "" {
		return core.ErrInvalidAccount
	}
	if !amount.IsPositive() {
		return core.ErrInvalidAmount
	}

	tokenBalance, err := s.vault.Balance(ctx)
	if err != nil {
		return err
	}
	if amount.GreaterThan(tokenBalance) {
		return core.ErrInsufficientLiquidity
	}

	err = s.db.Tx(func(tx *db.DB) error {
		reserve, err := s.loadReserve(ctx)
		if err != nil {
			return err
		}

		lending.AccrueInterest(reserve, now)

		if amount.GreaterThan(reserve.AssetBalance) {
			return core.ErrInsufficientLiquidity
		}
		reserve.AssetBalance = reserve.AssetBalance.Sub(amount)

		scaledDebt, err := s.ledgers.ScaledBalance(ctx, core.LedgerDebt, onBehalfOf)
		if err != nil {
			return err
		}

		// borrowers round up so the protocol never under-charges
		scaled, err := s.ledgers.Mint(ctx, tx, core.LedgerDebt, onBehalfOf, amount, reserve.BorrowIndex, core.RoundUp)
		if err != nil {
			return err
		}
		reserve.TotalScaledDebt = reserve.TotalScaledDebt.Add(scaled)

		if err := s.mintToTreasury(ctx, tx, reserve); err != nil {
			return err
		}

		if err := s.refreshRate(ctx, reserve, true); err != nil {
			return err
		}

		// the floor is checked on the post-mint debt; a failure here
		// unwinds the whole transaction
		postDebt := scaledDebt.Add(scaled).Mul(reserve.BorrowIndex)
		if reserve.MinimumOpenBorrow.IsPositive() && postDebt.LessThan(reserve.MinimumOpenBorrow) {
			return core.ErrInvalidMinimumOpenBorrow
		}

		// solvency post-condition on the debt the borrower walks away
		// with; an insolvent outcome unwinds the mint
		if s.solvency != nil {
			if err := s.solvency.CheckSolvency(ctx, onBehalfOf, postDebt); err != nil {
				return err
			}
		}

		if err := s.reserves.Update(ctx, tx, reserve); err != nil {
			return err
		}

		// the payout goes last; the transaction can still unwind the
		// ledger if the vault rejects it
		if err := s.vault.TransferOut(ctx, onBehalfOf, amount); err != nil {
			log.WithError(err).Errorln("vault.TransferOut")
			return err
		}

		return nil
	})

	metrics.ObserveOperation("borrow", err)
	if err != nil {
		return err
	}

	log.Infoln("borrow completed")
	return nil
}

func (s *poolService) Repay(ctx context.Context, from, onBehalfOf string, amount decimal.Decimal, now time.Time) (decimal.Decimal, error) {
	log := logger.FromContext(ctx).WithFields(logrus.Fields{
		"event":    "repay",
		"trace_id": id.GenTraceID(),
		"account":  onBehalfOf,
		"amount":   amount,
	})
	ctx = logger.WithContext(ctx, log)

	s.mux.Lock()
	defer s.mux.Unlock()

	if err := s.checkRunning(ctx, false); err != nil {
		return decimal.Zero, err
	}

	if !amount.IsPositive() {
		return decimal.Zero, core.ErrInvalidAmount
	}

	var payback decimal.Decimal
	err := s.db.Tx(func(tx *db.DB) error {
		reserve, err := s.loadReserve(ctx)
		if err != nil {
			return err
		}

		lending.AccrueInterest(reserve, now)

		scaledDebt, err := s.ledgers.ScaledBalance(ctx, core.LedgerDebt, onBehalfOf)
		if err != nil {
			return err
		}

		debt := scaledDebt.Mul(reserve.BorrowIndex)
		if !debt.IsPositive() {
			return core.ErrInvalidAmount
		}

		isMax := amount.GreaterThanOrEqual(debt)
		payback = amount
		if isMax {
			payback = debt
		}

		reserve.AssetBalance = reserve.AssetBalance.Add(payback)

		// repayments round down so the payer is never over-credited
		burned, err := s.ledgers.Burn(ctx, tx, core.LedgerDebt, onBehalfOf, payback, reserve.BorrowIndex, isMax, core.RoundDown)
		if err != nil {
			return err
		}
		reserve.TotalScaledDebt = reserve.TotalScaledDebt.Sub(burned)

		// leaving dust-debt below the floor would be unpayable
		if !isMax && reserve.MinimumOpenBorrow.IsPositive() {
			remaining := scaledDebt.Sub(burned).Mul(reserve.BorrowIndex)
			if remaining.IsPositive() && remaining.LessThan(reserve.MinimumOpenBorrow) {
				return core.ErrInvalidMinimumOpenBorrow
			}
		}

		if err := s.mintToTreasury(ctx, tx, reserve); err != nil {
			return err
		}

		if err := s.refreshRate(ctx, reserve, false); err != nil {
			return err
		}

		if err := s.reserves.Update(ctx, tx, reserve); err != nil {
			return err
		}

		if err := s.vault.TransferIn(ctx, from, payback); err != nil {
			log.WithError(err).Errorln("vault.TransferIn")
			return err
		}

		return nil
	})

	metrics.ObserveOperation("repay", err)
	if err != nil {
		return decimal.Zero, err
	}

	log.Infoln("repay completed")
	return payback, nil
}
