package oracle

import (
	"context"
	"time"

	"lotus/core"

	"github.com/bluele/gcache"
	"github.com/fox-one/pkg/logger"
	"github.com/shopspring/decimal"
)

const priceExpiry = 30 * time.Second

type priceProvider struct {
	primary core.IPriceFeed
	backup  core.IPriceFeed
	cache   gcache.Cache
}

// New new price provider. A failing primary feed falls back to the
// backup; the error only surfaces once both fail.
func New(primary, backup core.IPriceFeed) core.IPriceProvider {
	return &priceProvider{
		primary: primary,
		backup:  backup,
		cache:   gcache.New(64).LRU().Build(),
	}
}

func (p *priceProvider) GetAssetPrice(ctx context.Context, assetID string) (decimal.Decimal, error) {
	if v, err := p.cache.Get(assetID); err == nil {
		return v.(decimal.Decimal), nil
	}

	price, err := p.primary.GetAssetPrice(ctx, assetID)
	if err != nil && p.backup != nil {
		logger.FromContext(ctx).WithError(err).Infoln("primary price feed failed, trying backup")
		price, err = p.backup.GetAssetPrice(ctx, assetID)
	}

	if err != nil {
		return decimal.Zero, core.ErrPriceRetrievalFailed
	}

	if !price.IsPositive() {
		return decimal.Zero, core.ErrPriceRetrievalFailed
	}

	_ = p.cache.SetWithExpire(assetID, price, priceExpiry)
	return price, nil
}
