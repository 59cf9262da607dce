package ledger

import (
	"context"

	"lotus/core"
	"lotus/pkg/number"

	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"
)

type ledgerService struct {
	store core.ILedgerStore
}

// New new ledger service
func New(store core.ILedgerStore) core.ILedgerService {
	return &ledgerService{store: store}
}

// toScaled converts a real amount to index-independent scaled units.
// Rounding direction decides who bears the dust, so callers pick it
// per operation: deposits mint DOWN and burn UP, debt mints UP and
// burns DOWN. Either way the dust stays with the protocol.
func toScaled(realAmount, index decimal.Decimal, rounding core.Rounding) (decimal.Decimal, error) {
	if rounding == core.RoundUp {
		return number.DivCeil(realAmount, index)
	}

	return number.DivFloor(realAmount, index)
}

func (s *ledgerService) Mint(ctx context.Context, tx *db.DB, kind core.LedgerKind, accountID string, realAmount, index decimal.Decimal, rounding core.Rounding) (decimal.Decimal, error) {
	if accountID == "" {
		return decimal.Zero, core.ErrInvalidAccount
	}

	if !realAmount.IsPositive() {
		return decimal.Zero, core.ErrInvalidAmount
	}

	scaled, err := toScaled(realAmount, index, rounding)
	if err != nil {
		return decimal.Zero, err
	}

	if !scaled.IsPositive() {
		return decimal.Zero, core.ErrInvalidAmount
	}

	balance, err := s.store.FindTx(ctx, tx, kind, accountID)
	if err != nil {
		return decimal.Zero, err
	}

	if balance.ID == 0 {
		balance.Scaled = scaled
		if err := s.store.Save(ctx, tx, balance); err != nil {
			return decimal.Zero, err
		}
		return scaled, nil
	}

	balance.Scaled = balance.Scaled.Add(scaled)
	if err := s.store.Update(ctx, tx, balance); err != nil {
		return decimal.Zero, err
	}

	return scaled, nil
}

func (s *ledgerService) Burn(ctx context.Context, tx *db.DB, kind core.LedgerKind, accountID string, realAmount, index decimal.Decimal, isMax bool, rounding core.Rounding) (decimal.Decimal, error) {
	balance, err := s.store.FindTx(ctx, tx, kind, accountID)
	if err != nil {
		return decimal.Zero, err
	}

	var scaled decimal.Decimal
	if isMax {
		// burn everything so no unpayable dust is left behind
		scaled = balance.Scaled
	} else {
		scaled, err = toScaled(realAmount, index, rounding)
		if err != nil {
			return decimal.Zero, err
		}

		if scaled.GreaterThan(balance.Scaled) {
			scaled = balance.Scaled
		}
	}

	if !scaled.IsPositive() {
		return decimal.Zero, core.ErrInvalidAmount
	}

	balance.Scaled = balance.Scaled.Sub(scaled)
	if err := s.store.Update(ctx, tx, balance); err != nil {
		return decimal.Zero, err
	}

	return scaled, nil
}

func (s *ledgerService) ScaledBalance(ctx context.Context, kind core.LedgerKind, accountID string) (decimal.Decimal, error) {
	balance, err := s.store.Find(ctx, kind, accountID)
	if err != nil {
		return decimal.Zero, err
	}

	return balance.Scaled, nil
}

func (s *ledgerService) RealBalance(ctx context.Context, kind core.LedgerKind, accountID string, index decimal.Decimal) (decimal.Decimal, error) {
	balance, err := s.store.Find(ctx, kind, accountID)
	if err != nil {
		return decimal.Zero, err
	}

	if !balance.Scaled.IsPositive() {
		return decimal.Zero, nil
	}

	return balance.Scaled.Mul(index).Truncate(number.MaxPrecision), nil
}

func (s *ledgerService) RealTotalSupply(ctx context.Context, kind core.LedgerKind, index decimal.Decimal) (decimal.Decimal, error) {
	sum, err := s.store.SumScaled(ctx, kind)
	if err != nil {
		return decimal.Zero, err
	}

	if !sum.IsPositive() {
		return decimal.Zero, nil
	}

	return sum.Mul(index).Truncate(number.MaxPrecision), nil
}
