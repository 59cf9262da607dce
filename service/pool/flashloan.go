package pool

import (
	"context"
	"time"

	"lotus/core"
	"lotus/pkg/id"
	"lotus/pkg/metrics"
	"lotus/pkg/number"

	"github.com/fox-one/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// FlashLoan is a single-call atomic loan: besides the final balance
// check no state persists across it. The recipient callback is a
// required effect, so its failure aborts the loan.
func (s *poolService) FlashLoan(ctx context.Context, initiatorID string, recipient core.FlashLoanRecipient, amount decimal.Decimal, data core.FlashLoanData, now time.Time) error {
	log := logger.FromContext(ctx).WithFields(logrus.Fields{
		"event":     "flashloan",
		"trace_id":  id.GenTraceID(),
		"initiator": initiatorID,
		"amount":    amount,
	})
	ctx = logger.WithContext(ctx, log)

	s.mux.Lock()
	defer s.mux.Unlock()

	if err := s.checkRunning(ctx, true); err != nil {
		return err
	}

	if !amount.IsPositive() {
		return core.ErrInvalidAmount
	}

	err := s.flashLoan(ctx, initiatorID, recipient, amount, data)
	metrics.ObserveOperation("flashloan", err)
	if err != nil {
		return err
	}

	log.Infoln("flash loan completed")
	return nil
}

func (s *poolService) flashLoan(ctx context.Context, initiatorID string, recipient core.FlashLoanRecipient, amount decimal.Decimal, data core.FlashLoanData) error {
	log := logger.FromContext(ctx)

	reserve, err := s.loadReserve(ctx)
	if err != nil {
		return err
	}

	preBalance, err := s.vault.Balance(ctx)
	if err != nil {
		return err
	}
	if amount.GreaterThan(preBalance) {
		return core.ErrInsufficientLiquidity
	}

	expectedFee := number.Ceil(amount.Mul(reserve.FlashLoanFeeRate), number.MaxPrecision)

	if err := s.vault.TransferOut(ctx, recipient.ID(), amount); err != nil {
		log.WithError(err).Errorln("vault.TransferOut")
		return err
	}

	ok, _, err := recipient.ReceiveFlashLoan(ctx, initiatorID, s.cfg.AssetID, amount, expectedFee, data)
	if err != nil || !ok {
		log.WithError(err).Infoln("flash loan recipient failed")
		return core.ErrInvalidFlashLoanRecipientReturn
	}

	postBalance, err := s.vault.Balance(ctx)
	if err != nil {
		return err
	}
	if postBalance.LessThan(preBalance) {
		return core.ErrInvalidPostFlashLoanBalance
	}

	fee := postBalance.Sub(preBalance)
	if fee.LessThan(expectedFee) {
		return core.ErrInsufficientFlashLoanFeeAmount
	}

	if fee.IsPositive() {
		if err := s.vault.TransferOut(ctx, s.cfg.FeeCollectorID, fee); err != nil {
			log.WithError(err).Errorln("vault.TransferOut fee")
			return err
		}
	}

	return nil
}
