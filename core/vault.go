package core

import (
	"context"

	"github.com/shopspring/decimal"
)

// IAssetVault moves pool funds. Settlement mechanics live behind this
// interface; the pool only tracks the resulting balances.
type IAssetVault interface {
	TransferIn(ctx context.Context, from string, amount decimal.Decimal) error
	TransferOut(ctx context.Context, to string, amount decimal.Decimal) error
	Balance(ctx context.Context) (decimal.Decimal, error)
}

// FlashLoanRecipient synchronous flash loan callback
type FlashLoanRecipient interface {
	ID() string
	ReceiveFlashLoan(ctx context.Context, initiator, assetID string, amount, fee decimal.Decimal, data FlashLoanData) (bool, FlashLoanData, error)
}

// IRebasingAssetAdapter abstracts an underlying asset whose external
// representation differs in decimals or rebasing mechanics from the
// pool's internal accounting. Only 6 and 18 decimals are accepted.
type IRebasingAssetAdapter interface {
	Wrap(ctx context.Context, amount decimal.Decimal) (decimal.Decimal, error)
	Unwrap(ctx context.Context, amount decimal.Decimal) (decimal.Decimal, error)
	ActualAsset() string
	ActualAssetDecimals() int32
}

// IStrategyVault strategy positions, consumed only to sum
// non-collateral investment value
type IStrategyVault interface {
	PositionValue(ctx context.Context, accountID string) (decimal.Decimal, error)
}

// ICollateralProvider collateral balances held against an account
type ICollateralProvider interface {
	CollateralAsset() string
	CollateralBalance(ctx context.Context, accountID string) (decimal.Decimal, error)
}

// IYieldSource auto-compounding yield capability injected into the
// pool; variants are configuration, not type hierarchy.
type IYieldSource interface {
	ClaimableYield(ctx context.Context) (decimal.Decimal, error)
	Claim(ctx context.Context) (decimal.Decimal, error)
}
