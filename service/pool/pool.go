package pool

import (
	"context"
	"sync"
	"time"

	"lotus/core"
	"lotus/internal/interestrate"
	"lotus/internal/lending"
	"lotus/pkg/id"
	"lotus/pkg/metrics"

	"github.com/fox-one/pkg/logger"
	"github.com/fox-one/pkg/property"
	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cast"
)

// Config pool service config
type Config struct {
	AssetID          string
	FeeCollectorID   string
	AccountManagerID string
}

type poolService struct {
	// serializes every mutating entry point; the
	// accrue -> mutate -> rate-refresh sequence is not safe
	// under interleaving
	mux sync.Mutex

	db       *db.DB
	cfg      Config
	reserves core.IReserveStore
	ledgers  core.ILedgerService
	property property.Store
	vault    core.IAssetVault
	yield    core.IYieldSource
	solvency core.SolvencyChecker
}

// New new lending pool. yield may be nil when the pool has no
// auto-compounding yield source configured.
func New(
	db *db.DB,
	cfg Config,
	reserveStore core.IReserveStore,
	ledgerSrv core.ILedgerService,
	propertyStore property.Store,
	vault core.IAssetVault,
	yield core.IYieldSource,
) core.ILendingPool {
	return &poolService{
		db:       db,
		cfg:      cfg,
		reserves: reserveStore,
		ledgers:  ledgerSrv,
		property: propertyStore,
		vault:    vault,
		yield:    yield,
	}
}

func (s *poolService) BindSolvencyChecker(checker core.SolvencyChecker) {
	s.solvency = checker
}

// checkRunning rejects mutating calls while paused; deprecation only
// blocks the operations that grow exposure (deposit, borrow, flash loan).
func (s *poolService) checkRunning(ctx context.Context, blockWhenDeprecated bool) error {
	paused, err := s.property.Get(ctx, core.SysPropertyPaused)
	if err != nil {
		return err
	}
	if cast.ToBool(paused.String()) {
		return core.ErrOperationPaused
	}

	if blockWhenDeprecated {
		deprecated, err := s.property.Get(ctx, core.SysPropertyDeprecated)
		if err != nil {
			return err
		}
		if cast.ToBool(deprecated.String()) {
			return core.ErrProtocolDeprecated
		}
	}

	return nil
}

func (s *poolService) loadReserve(ctx context.Context) (*core.Reserve, error) {
	reserve, err := s.reserves.Find(ctx, s.cfg.AssetID)
	if err != nil {
		return nil, err
	}

	if reserve.ID == 0 {
		return nil, core.ErrReserveNotFound
	}

	return reserve, nil
}

// refreshRate recomputes rates from post-mutation utilization and
// optionally applies the pool-health gate for fund-moving actions.
func (s *poolService) refreshRate(ctx context.Context, reserve *core.Reserve, gated bool) error {
	totalDebt := reserve.TotalDebt()

	lending.UpdateInterestRate(reserve, totalDebt)

	if gated {
		utilization := lending.Utilization(reserve.AssetBalance, totalDebt)
		if err := interestrate.FromReserve(reserve).ValidatePool(utilization, reserve.AssetBalance); err != nil {
			return err
		}
	}

	metrics.SetReserveRates(reserve.BorrowRate, reserve.LiquidityRate)
	return nil
}

func (s *poolService) Deposit(ctx context.Context, accountID string, amount decimal.Decimal, now time.Time) (decimal.Decimal, error) {
	log := logger.FromContext(ctx).WithFields(logrus.Fields{
		"event":    "deposit",
		"trace_id": id.GenTraceID(),
		"account":  accountID,
		"amount":   amount,
	})
	ctx = logger.WithContext(ctx, log)

	s.mux.Lock()
	defer s.mux.Unlock()

	if err := s.checkRunning(ctx, true); err != nil {
		return decimal.Zero, err
	}

	if accountID == "" {
		return decimal.Zero, core.ErrInvalidAccount
	}
	if !amount.IsPositive() {
		return decimal.Zero, core.ErrInvalidAmount
	}

	err := s.db.Tx(func(tx *db.DB) error {
		reserve, err := s.loadReserve(ctx)
		if err != nil {
			return err
		}

		if reserve.HasDepositCap() {
			if reserve.TotalDeposits().Add(amount).GreaterThan(reserve.DepositCap) {
				return core.ErrDepositCapExceeded
			}
		}

		if reserve.MaxDepositPerAccount.IsPositive() {
			balance, err := s.ledgers.RealBalance(ctx, core.LedgerDeposit, accountID, reserve.LiquidityIndex)
			if err != nil {
				return err
			}
			if balance.Add(amount).GreaterThan(reserve.MaxDepositPerAccount) {
				return core.ErrMaxDepositPerAccountExceeded
			}
		}

		lending.AccrueInterest(reserve, now)

		reserve.AssetBalance = reserve.AssetBalance.Add(amount)

		// depositors round down, the protocol keeps the dust
		scaled, err := s.ledgers.Mint(ctx, tx, core.LedgerDeposit, accountID, amount, reserve.LiquidityIndex, core.RoundDown)
		if err != nil {
			return err
		}
		reserve.TotalScaledDeposits = reserve.TotalScaledDeposits.Add(scaled)

		if err := s.mintToTreasury(ctx, tx, reserve); err != nil {
			return err
		}

		if err := s.refreshRate(ctx, reserve, false); err != nil {
			return err
		}

		if err := s.reserves.Update(ctx, tx, reserve); err != nil {
			return err
		}

		if err := s.vault.TransferIn(ctx, accountID, amount); err != nil {
			log.WithError(err).Errorln("vault.TransferIn")
			return err
		}

		return nil
	})

	metrics.ObserveOperation("deposit", err)
	if err != nil {
		return decimal.Zero, err
	}

	log.Infoln("deposit completed")
	return amount, nil
}

func (s *poolService) Withdraw(ctx context.Context, accountID string, amount decimal.Decimal, now time.Time) (decimal.Decimal, error) {
	log := logger.FromContext(ctx).WithFields(logrus.Fields{
		"event":    "withdraw",
		"trace_id": id.GenTraceID(),
		"account":  accountID,
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

	var withdrawn decimal.Decimal
	err := s.db.Tx(func(tx *db.DB) error {
		reserve, err := s.loadReserve(ctx)
		if err != nil {
			return err
		}

		lending.AccrueInterest(reserve, now)

		balance, err := s.ledgers.RealBalance(ctx, core.LedgerDeposit, accountID, reserve.LiquidityIndex)
		if err != nil {
			return err
		}
		if !balance.IsPositive() {
			return core.ErrInvalidAmount
		}

		isMax := amount.GreaterThanOrEqual(balance)
		withdrawn = amount
		if isMax {
			withdrawn = balance
		}

		if withdrawn.GreaterThan(reserve.AssetBalance) {
			return core.ErrInsufficientLiquidity
		}

		reserve.AssetBalance = reserve.AssetBalance.Sub(withdrawn)

		// withdrawals round up so the protocol never under-debits
		burned, err := s.ledgers.Burn(ctx, tx, core.LedgerDeposit, accountID, withdrawn, reserve.LiquidityIndex, isMax, core.RoundUp)
		if err != nil {
			return err
		}
		reserve.TotalScaledDeposits = reserve.TotalScaledDeposits.Sub(burned)

		if err := s.mintToTreasury(ctx, tx, reserve); err != nil {
			return err
		}

		if err := s.refreshRate(ctx, reserve, true); err != nil {
			return err
		}

		// solvency post-condition; a failure unwinds the burn
		if s.solvency != nil {
			if err := s.solvency.RequireSolvent(ctx, accountID); err != nil {
				return err
			}
		}

		if err := s.reserves.Update(ctx, tx, reserve); err != nil {
			return err
		}

		// the payout goes last; the transaction can still unwind the
		// ledger if the vault rejects it
		if err := s.vault.TransferOut(ctx, accountID, withdrawn); err != nil {
			log.WithError(err).Errorln("vault.TransferOut")
			return err
		}

		return nil
	})

	metrics.ObserveOperation("withdraw", err)
	if err != nil {
		return decimal.Zero, err
	}

	log.Infoln("withdraw completed")
	return withdrawn, nil
}
