package core

import (
	"context"
	"time"

	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"
)

// Reserve pool reserve state, one row per pool
type Reserve struct {
	ID      uint64 `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	AssetID string `sql:"size:36;unique_index:asset_idx" json:"asset_id"`
	Symbol  string `sql:"size:20" json:"symbol"`
	// 闲置资金, excludes amounts lent out
	AssetBalance decimal.Decimal `sql:"type:decimal(32,16)" json:"asset_balance"`
	// annualized rates
	BorrowRate    decimal.Decimal `sql:"type:decimal(32,16)" json:"borrow_rate"`
	LiquidityRate decimal.Decimal `sql:"type:decimal(32,16)" json:"liquidity_rate"`
	// monotonic indices, start at 1
	LiquidityIndex decimal.Decimal `sql:"type:decimal(32,16);default:1" json:"liquidity_index"`
	BorrowIndex    decimal.Decimal `sql:"type:decimal(32,16);default:1" json:"borrow_index"`
	LastUpdatedAt  time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"last_updated_at"`

	// denormalized ledger totals in scaled units, maintained in the
	// same transaction as the ledger rows
	TotalScaledDeposits decimal.Decimal `sql:"type:decimal(32,16);default:0" json:"total_scaled_deposits"`
	TotalScaledDebt     decimal.Decimal `sql:"type:decimal(32,16);default:0" json:"total_scaled_debt"`

	// interest-rate curve params
	OptimalUtilization decimal.Decimal `sql:"type:decimal(20,8)" json:"optimal_utilization"`
	BaseRate           decimal.Decimal `sql:"type:decimal(20,8)" json:"base_rate"`
	Slope1             decimal.Decimal `sql:"type:decimal(20,8)" json:"slope1"`
	Slope2             decimal.Decimal `sql:"type:decimal(20,8)" json:"slope2"`
	UtilizationCap     decimal.Decimal `sql:"type:decimal(20,8)" json:"utilization_cap"`
	MinimumPoolBalance decimal.Decimal `sql:"type:decimal(32,16)" json:"minimum_pool_balance"`

	// fees and caps
	LendingFeeRate          decimal.Decimal `sql:"type:decimal(20,8)" json:"lending_fee_rate"`
	FlashLoanFeeRate        decimal.Decimal `sql:"type:decimal(20,8)" json:"flash_loan_fee_rate"`
	DepositCap              decimal.Decimal `sql:"type:decimal(32,16);default:0" json:"deposit_cap"`
	MaxDepositPerAccount    decimal.Decimal `sql:"type:decimal(32,16);default:0" json:"max_deposit_per_account"`
	MinimumOpenBorrow       decimal.Decimal `sql:"type:decimal(32,16);default:0" json:"minimum_open_borrow"`
	MinimumCollectionAmount decimal.Decimal `sql:"type:decimal(32,16);default:0" json:"minimum_collection_amount"`

	Version   int64     `sql:"default:0" json:"version"`
	CreatedAt time.Time `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `sql:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// HasDepositCap zero cap means unlimited
func (r *Reserve) HasDepositCap() bool {
	return r.DepositCap.IsPositive()
}

// TotalDeposits real value of all deposit tokens at the current liquidity index
func (r *Reserve) TotalDeposits() decimal.Decimal {
	if !r.TotalScaledDeposits.IsPositive() {
		return decimal.Zero
	}

	return r.TotalScaledDeposits.Mul(r.LiquidityIndex)
}

// TotalDebt real value of all debt tokens at the current borrow index
func (r *Reserve) TotalDebt() decimal.Decimal {
	if !r.TotalScaledDebt.IsPositive() {
		return decimal.Zero
	}

	return r.TotalScaledDebt.Mul(r.BorrowIndex)
}

// IReserveStore reserve store interface
type IReserveStore interface {
	Save(ctx context.Context, tx *db.DB, reserve *Reserve) error
	Find(ctx context.Context, assetID string) (*Reserve, error)
	All(ctx context.Context) ([]*Reserve, error)
	Update(ctx context.Context, tx *db.DB, reserve *Reserve) error
}
