package core

import (
	"context"
	"time"

	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"
)

// LedgerKind which index scales the ledger
type LedgerKind string

const (
	// LedgerDeposit deposits, scaled by the liquidity index
	LedgerDeposit LedgerKind = "deposit"
	// LedgerDebt debt, scaled by the borrow index
	LedgerDebt LedgerKind = "debt"
)

// Rounding rounding direction converting real amounts to scaled units
type Rounding int

const (
	// RoundDown floor
	RoundDown Rounding = iota
	// RoundUp ceil
	RoundUp
)

// ScaledBalance per account, per ledger. Real balance = Scaled * current index.
// Scaled amounts only change via mint/burn, never rescaled in place.
type ScaledBalance struct {
	ID        uint64          `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	Ledger    LedgerKind      `sql:"size:20;unique_index:ledger_account_idx" json:"ledger"`
	AccountID string          `sql:"size:64;unique_index:ledger_account_idx" json:"account_id"`
	Scaled    decimal.Decimal `sql:"type:decimal(32,16)" json:"scaled"`
	Version   int64           `sql:"default:0" json:"version"`
	CreatedAt time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// ILedgerStore scaled balance store interface. FindTx reads through
// the open transaction so mutations earlier in the same transaction
// are visible; Find reads committed state only.
type ILedgerStore interface {
	Find(ctx context.Context, ledger LedgerKind, accountID string) (*ScaledBalance, error)
	FindTx(ctx context.Context, tx *db.DB, ledger LedgerKind, accountID string) (*ScaledBalance, error)
	Save(ctx context.Context, tx *db.DB, balance *ScaledBalance) error
	Update(ctx context.Context, tx *db.DB, balance *ScaledBalance) error
	SumScaled(ctx context.Context, ledger LedgerKind) (decimal.Decimal, error)
	Accounts(ctx context.Context, ledger LedgerKind) ([]string, error)
}

// ILedgerService index-scaled balance sheet operations
type ILedgerService interface {
	Mint(ctx context.Context, tx *db.DB, ledger LedgerKind, accountID string, realAmount, index decimal.Decimal, rounding Rounding) (decimal.Decimal, error)
	Burn(ctx context.Context, tx *db.DB, ledger LedgerKind, accountID string, realAmount, index decimal.Decimal, isMax bool, rounding Rounding) (decimal.Decimal, error)
	ScaledBalance(ctx context.Context, ledger LedgerKind, accountID string) (decimal.Decimal, error)
	RealBalance(ctx context.Context, ledger LedgerKind, accountID string, index decimal.Decimal) (decimal.Decimal, error)
	RealTotalSupply(ctx context.Context, ledger LedgerKind, index decimal.Decimal) (decimal.Decimal, error)
}
