package oracle

import (
	"context"
	"fmt"
	"time"

	"lotus/core"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
)

type restFeed struct {
	client *resty.Client
}

// NewRestFeed price feed backed by an HTTP endpoint
func NewRestFeed(endpoint string) core.IPriceFeed {
	client := resty.New().
		SetBaseURL(endpoint).
		SetTimeout(10 * time.Second)

	return &restFeed{client: client}
}

func (f *restFeed) GetAssetPrice(ctx context.Context, assetID string) (decimal.Decimal, error) {
	var body struct {
		Price decimal.Decimal `json:"price"`
	}

	resp, err := f.client.R().
		SetContext(ctx).
		SetQueryParam("asset", assetID).
		SetResult(&body).
		Get("/price")
	if err != nil {
		return decimal.Zero, err
	}

	if resp.IsError() {
		return decimal.Zero, fmt.Errorf("price feed responded %s", resp.Status())
	}

	return body.Price, nil
}
