package vault

import (
	"context"

	"lotus/core"
	"lotus/pkg/id"

	"github.com/fox-one/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type vaultService struct {
	transfers core.ITransferStore
	adapter   core.IRebasingAssetAdapter
}

// New custody vault backed by a transfer ledger. Every movement is
// recorded as a transfer row in the asset's external precision; when
// adapter is nil amounts pass through unchanged.
func New(transfers core.ITransferStore, adapter core.IRebasingAssetAdapter) core.IAssetVault {
	return &vaultService{
		transfers: transfers,
		adapter:   adapter,
	}
}

func (s *vaultService) TransferIn(ctx context.Context, from string, amount decimal.Decimal) error {
	return s.record(ctx, from, core.TransferDirectionIn, amount)
}

func (s *vaultService) TransferOut(ctx context.Context, to string, amount decimal.Decimal) error {
	return s.record(ctx, to, core.TransferDirectionOut, amount)
}

func (s *vaultService) Balance(ctx context.Context) (decimal.Decimal, error) {
	sum, err := s.transfers.Sum(ctx)
	if err != nil {
		return decimal.Zero, err
	}

	if s.adapter != nil {
		return s.adapter.Wrap(ctx, sum)
	}

	return sum, nil
}

func (s *vaultService) record(ctx context.Context, accountID string, direction core.TransferDirection, amount decimal.Decimal) error {
	log := logger.FromContext(ctx).WithFields(logrus.Fields{
		"service":   "vault",
		"account":   accountID,
		"direction": direction,
	})

	if !amount.IsPositive() {
		return core.ErrInvalidAmount
	}

	external := amount
	if s.adapter != nil {
		var err error
		if external, err = s.adapter.Unwrap(ctx, amount); err != nil {
			log.WithError(err).Errorln("unwrap amount")
			return err
		}
	}

	transfer := &core.Transfer{
		TraceID:   id.GenTraceID(),
		AccountID: accountID,
		Direction: direction,
		Amount:    external,
	}

	if err := s.transfers.Create(ctx, transfer); err != nil {
		log.WithError(err).Errorln("create transfer")
		return err
	}

	return nil
}
