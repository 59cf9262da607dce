package asset

import (
	"context"

	"lotus/core"
	"lotus/pkg/number"

	"github.com/shopspring/decimal"
)

const internalDecimals int32 = 18

type adapter struct {
	assetID  string
	decimals int32
}

// NewAdapter adapter for an underlying asset whose external decimals
// differ from the pool's internal accounting. Only 6 and 18 decimal
// assets are supported.
func NewAdapter(assetID string, decimals int32) (core.IRebasingAssetAdapter, error) {
	if decimals != 6 && decimals != internalDecimals {
		return nil, core.ErrInvalidDecimals
	}

	return &adapter{assetID: assetID, decimals: decimals}, nil
}

func (a *adapter) Wrap(ctx context.Context, amount decimal.Decimal) (decimal.Decimal, error) {
	if amount.IsNegative() {
		return decimal.Zero, core.ErrInvalidAmount
	}

	return number.ScaleDecimals(amount, a.decimals, internalDecimals), nil
}

func (a *adapter) Unwrap(ctx context.Context, amount decimal.Decimal) (decimal.Decimal, error) {
	if amount.IsNegative() {
		return decimal.Zero, core.ErrInvalidAmount
	}

	return number.ScaleDecimals(amount, internalDecimals, a.decimals), nil
}

func (a *adapter) ActualAsset() string {
	return a.assetID
}

func (a *adapter) ActualAssetDecimals() int32 {
	return a.decimals
}
