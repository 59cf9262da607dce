package core

import (
	"context"

	"github.com/shopspring/decimal"
)

// IPriceFeed a single price source, denominated in the pool's loan asset
type IPriceFeed interface {
	GetAssetPrice(ctx context.Context, assetID string) (decimal.Decimal, error)
}

// IPriceProvider price provider with primary/backup fallback.
// A failing primary is caught and the backup attempted before
// surfacing ErrPriceRetrievalFailed.
type IPriceProvider interface {
	GetAssetPrice(ctx context.Context, assetID string) (decimal.Decimal, error)
}
