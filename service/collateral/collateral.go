package collateral

import (
	"context"
	"fmt"
	"time"

	"lotus/core"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
)

type restProvider struct {
	client  *resty.Client
	assetID string
}

// New collateral provider backed by the custody service's HTTP API
func New(endpoint, assetID string) core.ICollateralProvider {
	client := resty.New().
		SetBaseURL(endpoint).
		SetTimeout(10 * time.Second)

	return &restProvider{
		client:  client,
		assetID: assetID,
	}
}

func (p *restProvider) CollateralAsset() string {
	return p.assetID
}

func (p *restProvider) CollateralBalance(ctx context.Context, accountID string) (decimal.Decimal, error) {
	var body struct {
		Balance decimal.Decimal `json:"balance"`
	}

	resp, err := p.client.R().
		SetContext(ctx).
		SetQueryParam("account", accountID).
		SetResult(&body).
		Get("/collateral")
	if err != nil {
		return decimal.Zero, err
	}

	if resp.IsError() {
		return decimal.Zero, fmt.Errorf("collateral provider responded %s", resp.Status())
	}

	return body.Balance, nil
}
