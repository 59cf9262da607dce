package account

import (
	"context"
	"time"

	"lotus/core"
	"lotus/pkg/number"

	"github.com/fox-one/pkg/logger"
	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"
)

type solvencyService struct {
	db           *db.DB
	risk         core.RiskParams
	assetID      string
	reserves     core.IReserveStore
	ledgers      core.ILedgerService
	liquidations core.ILiquidationStore
	prices       core.IPriceProvider
	collateral   core.ICollateralProvider
	strategies   core.IStrategyVault
	pool         core.ILendingPool
}

// New new account solvency service. strategies may be nil when no
// strategy vault is wired; investment value is then zero.
func New(
	db *db.DB,
	risk core.RiskParams,
	assetID string,
	reserveStore core.IReserveStore,
	ledgerSrv core.ILedgerService,
	liquidationStore core.ILiquidationStore,
	priceSrv core.IPriceProvider,
	collateralSrv core.ICollateralProvider,
	strategySrv core.IStrategyVault,
	pool core.ILendingPool,
) core.ISolvencyService {
	return &solvencyService{
		db:           db,
		risk:         risk,
		assetID:      assetID,
		reserves:     reserveStore,
		ledgers:      ledgerSrv,
		liquidations: liquidationStore,
		prices:       priceSrv,
		collateral:   collateralSrv,
		strategies:   strategySrv,
		pool:         pool,
	}
}

func (s *solvencyService) GetAccountHealth(ctx context.Context, accountID string) (*core.AccountHealth, error) {
	if accountID == "" {
		return nil, core.ErrInvalidAccount
	}

	reserve, err := s.reserves.Find(ctx, s.assetID)
	if err != nil {
		return nil, err
	}
	if reserve.ID == 0 {
		return nil, core.ErrReserveNotFound
	}

	debt, err := s.ledgers.RealBalance(ctx, core.LedgerDebt, accountID, reserve.BorrowIndex)
	if err != nil {
		return nil, err
	}

	collateralValue, investmentValue, err := s.equityParts(ctx, accountID)
	if err != nil {
		return nil, err
	}

	health := &core.AccountHealth{
		AccountID:       accountID,
		DebtAmount:      debt,
		CollateralValue: collateralValue,
		InvestmentValue: investmentValue,
	}

	equity := health.Equity()
	if debt.IsPositive() {
		health.IsLiquidatable = equity.IsPositive() &&
			equity.LessThan(debt.Mul(s.risk.CollateralRatio))
		health.HasBadDebt = !equity.IsPositive()
	}

	return health, nil
}

// equityParts values the account's external holdings in loan-asset terms
func (s *solvencyService) equityParts(ctx context.Context, accountID string) (collateralValue, investmentValue decimal.Decimal, err error) {
	collateralBalance, err := s.collateral.CollateralBalance(ctx, accountID)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	collateralValue = decimal.Zero
	if collateralBalance.IsPositive() {
		price, err := s.prices.GetAssetPrice(ctx, s.collateral.CollateralAsset())
		if err != nil {
			return decimal.Zero, decimal.Zero, err
		}
		collateralValue = collateralBalance.Mul(price).Truncate(number.MaxPrecision)
	}

	investmentValue = decimal.Zero
	if s.strategies != nil {
		investmentValue, err = s.strategies.PositionValue(ctx, accountID)
		if err != nil {
			return decimal.Zero, decimal.Zero, err
		}
	}

	return collateralValue, investmentValue, nil
}

// CheckSolvency applies the solvency rules to an explicit debt figure.
// The pool calls this mid-transaction with the post-borrow debt, which
// a committed-state ledger read would not see yet.
func (s *solvencyService) CheckSolvency(ctx context.Context, accountID string, debt decimal.Decimal) error {
	if accountID == "" {
		return core.ErrInvalidAccount
	}

	status, err := s.liquidations.Find(ctx, accountID)
	if err != nil {
		return err
	}
	if status.IsLiquidating {
		return core.ErrAccountBeingLiquidated
	}

	if !debt.IsPositive() {
		return nil
	}

	collateralValue, investmentValue, err := s.equityParts(ctx, accountID)
	if err != nil {
		return err
	}

	if debt.GreaterThan(collateralValue.Mul(s.risk.MaxLTV)) {
		return core.ErrAccountInsolvent
	}

	equity := collateralValue.Add(investmentValue)
	if equity.IsPositive() && equity.LessThan(debt.Mul(s.risk.CollateralRatio)) {
		return core.ErrAccountInsolvent
	}

	return nil
}

// RequireSolvent enforces the solvency post-condition on the current
// ledger state after every withdraw or strategy operation.
func (s *solvencyService) RequireSolvent(ctx context.Context, accountID string) error {
	reserve, err := s.reserves.Find(ctx, s.assetID)
	if err != nil {
		return err
	}
	if reserve.ID == 0 {
		return core.ErrReserveNotFound
	}

	debt, err := s.ledgers.RealBalance(ctx, core.LedgerDebt, accountID, reserve.BorrowIndex)
	if err != nil {
		return err
	}

	return s.CheckSolvency(ctx, accountID, debt)
}

// StartLiquidation records the liquidation start time. Idempotent: an
// account already liquidating keeps its original start time.
func (s *solvencyService) StartLiquidation(ctx context.Context, accountID string, now time.Time) error {
	health, err := s.GetAccountHealth(ctx, accountID)
	if err != nil {
		return err
	}
	if !health.IsLiquidatable {
		return core.ErrAccountHealthy
	}

	status, err := s.liquidations.Find(ctx, accountID)
	if err != nil {
		return err
	}
	if status.IsLiquidating {
		return nil
	}

	status.IsLiquidating = true
	status.LiquidationStartAt = now

	return s.db.Tx(func(tx *db.DB) error {
		if status.ID == 0 {
			return s.liquidations.Save(ctx, tx, status)
		}
		return s.liquidations.Update(ctx, tx, status)
	})
}

// CompleteLiquidation clears the liquidation mark once the account is
// no longer liquidatable. Invoked after a repay reduces debt.
func (s *solvencyService) CompleteLiquidation(ctx context.Context, accountID string) error {
	status, err := s.liquidations.Find(ctx, accountID)
	if err != nil {
		return err
	}
	if !status.IsLiquidating {
		return nil
	}

	health, err := s.GetAccountHealth(ctx, accountID)
	if err != nil {
		return err
	}
	if health.IsLiquidatable {
		return nil
	}

	status.IsLiquidating = false
	status.LiquidationStartAt = time.Time{}

	return s.db.Tx(func(tx *db.DB) error {
		return s.liquidations.Update(ctx, tx, status)
	})
}

// CalculateAvailableCollateralToLiquidate converts debt to collateral
// units at the oracle price inflated by the liquidation bonus, capped
// at the available collateral. When capped, the debt actually covered
// is backed out from the collateral taken.
func (s *solvencyService) CalculateAvailableCollateralToLiquidate(ctx context.Context, debtToCover, collateralBalance decimal.Decimal) (*core.CollateralSeizure, error) {
	price, err := s.prices.GetAssetPrice(ctx, s.collateral.CollateralAsset())
	if err != nil {
		return nil, err
	}
	if !price.IsPositive() {
		return nil, core.ErrPriceRetrievalFailed
	}

	maxCollateral, err := number.DivFloor(debtToCover.Mul(s.risk.LiquidationBonus), price)
	if err != nil {
		return nil, err
	}

	collateralAmount := maxCollateral
	debtAmount := debtToCover
	if maxCollateral.GreaterThan(collateralBalance) {
		collateralAmount = collateralBalance
		debtAmount, err = number.DivFloor(collateralAmount.Mul(price), s.risk.LiquidationBonus)
		if err != nil {
			return nil, err
		}
	}

	covered, err := number.DivFloor(debtAmount, price)
	if err != nil {
		return nil, err
	}

	return &core.CollateralSeizure{
		DebtToLiquidate:  debtAmount,
		CollateralAmount: collateralAmount,
		BonusCollateral:  collateralAmount.Sub(covered),
	}, nil
}

// Liquidate drives the full liquidation path: mark the account, size
// the seizure, repay from the liquidator, and resolve the mark if the
// account recovered.
func (s *solvencyService) Liquidate(ctx context.Context, liquidatorID, accountID string, debtToCover decimal.Decimal, now time.Time) (*core.CollateralSeizure, error) {
	log := logger.FromContext(ctx).WithField("event", "liquidate")
	ctx = logger.WithContext(ctx, log)

	if !debtToCover.IsPositive() {
		return nil, core.ErrInvalidAmount
	}

	if err := s.StartLiquidation(ctx, accountID, now); err != nil {
		return nil, err
	}

	health, err := s.GetAccountHealth(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if debtToCover.GreaterThan(health.DebtAmount) {
		debtToCover = health.DebtAmount
	}

	collateralBalance, err := s.collateral.CollateralBalance(ctx, accountID)
	if err != nil {
		return nil, err
	}

	seizure, err := s.CalculateAvailableCollateralToLiquidate(ctx, debtToCover, collateralBalance)
	if err != nil {
		return nil, err
	}

	if _, err := s.pool.Repay(ctx, liquidatorID, accountID, seizure.DebtToLiquidate, now); err != nil {
		log.WithError(err).Errorln("pool.Repay")
		return nil, err
	}

	if err := s.CompleteLiquidation(ctx, accountID); err != nil {
		return nil, err
	}

	log.WithField("collateral", seizure.CollateralAmount).Infoln("liquidation executed")
	return seizure, nil
}
