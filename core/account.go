package core

import (
	"context"
	"time"

	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"
)

// AccountHealth derived account health, computed on demand and never persisted
type AccountHealth struct {
	AccountID       string          `json:"account_id"`
	DebtAmount      decimal.Decimal `json:"debt_amount"`
	CollateralValue decimal.Decimal `json:"collateral_value"`
	InvestmentValue decimal.Decimal `json:"investment_value"`
	IsLiquidatable  bool            `json:"is_liquidatable"`
	HasBadDebt      bool            `json:"has_bad_debt"`
}

// Equity collateral plus strategy positions
func (h *AccountHealth) Equity() decimal.Decimal {
	return h.CollateralValue.Add(h.InvestmentValue)
}

// LiquidationStatus per account liquidation state
type LiquidationStatus struct {
	ID                 uint64    `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	AccountID          string    `sql:"size:64;unique_index:account_idx" json:"account_id"`
	IsLiquidating      bool      `sql:"default:false" json:"is_liquidating"`
	LiquidationStartAt time.Time `json:"liquidation_start_at"`
	Version            int64     `sql:"default:0" json:"version"`
	CreatedAt          time.Time `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt          time.Time `sql:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// CollateralSeizure ephemeral result of a liquidation computation
type CollateralSeizure struct {
	DebtToLiquidate  decimal.Decimal `json:"debt_to_liquidate"`
	CollateralAmount decimal.Decimal `json:"collateral_amount"`
	BonusCollateral  decimal.Decimal `json:"bonus_collateral"`
}

// RiskParams solvency thresholds, governance owned
type RiskParams struct {
	CollateralRatio  decimal.Decimal `json:"collateral_ratio" valid:"required"`
	MaxLTV           decimal.Decimal `json:"max_ltv" valid:"required"`
	LiquidationBonus decimal.Decimal `json:"liquidation_bonus" valid:"required"`
}

// ILiquidationStore liquidation status store interface
type ILiquidationStore interface {
	Find(ctx context.Context, accountID string) (*LiquidationStatus, error)
	Save(ctx context.Context, tx *db.DB, status *LiquidationStatus) error
	Update(ctx context.Context, tx *db.DB, status *LiquidationStatus) error
	AllLiquidating(ctx context.Context) ([]*LiquidationStatus, error)
}

// ISolvencyService account solvency engine
type ISolvencyService interface {
	GetAccountHealth(ctx context.Context, accountID string) (*AccountHealth, error)
	RequireSolvent(ctx context.Context, accountID string) error
	CheckSolvency(ctx context.Context, accountID string, debt decimal.Decimal) error
	StartLiquidation(ctx context.Context, accountID string, now time.Time) error
	CompleteLiquidation(ctx context.Context, accountID string) error
	CalculateAvailableCollateralToLiquidate(ctx context.Context, debtToCover, collateralBalance decimal.Decimal) (*CollateralSeizure, error)
	Liquidate(ctx context.Context, liquidatorID, accountID string, debtToCover decimal.Decimal, now time.Time) (*CollateralSeizure, error)
}
