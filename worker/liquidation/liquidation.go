package liquidation

import (
	"context"
	"time"

	"lotus/core"
	"lotus/worker"

	"github.com/fox-one/pkg/logger"
	"github.com/robfig/cron/v3"
)

// Worker liquidation scanner. Walks every account with open debt,
// marks the ones that slipped below the collateral ratio and clears
// marks on accounts that recovered.
type Worker struct {
	worker.BaseJob
	ledgers      core.ILedgerStore
	liquidations core.ILiquidationStore
	solvency     core.ISolvencyService
}

// New new liquidation scanner
func New(location string, ledgerStore core.ILedgerStore, liquidationStore core.ILiquidationStore, solvencySrv core.ISolvencyService) *Worker {
	job := Worker{
		ledgers:      ledgerStore,
		liquidations: liquidationStore,
		solvency:     solvencySrv,
	}
	job.Name = "liquidation"

	l, _ := time.LoadLocation(location)
	job.Cron = cron.New(cron.WithLocation(l))
	job.Cron.AddFunc("@every 30s", job.Tick)
	job.OnWork = func(ctx context.Context) error {
		return job.onWork(ctx)
	}

	return &job
}

func (w *Worker) onWork(ctx context.Context) error {
	log := logger.FromContext(ctx).WithField("worker", "liquidation")

	accounts, err := w.ledgers.Accounts(ctx, core.LedgerDebt)
	if err != nil {
		log.WithError(err).Errorln("ledgers.Accounts")
		return err
	}

	now := time.Now()
	for _, account := range accounts {
		health, err := w.solvency.GetAccountHealth(ctx, account)
		if err != nil {
			log.WithError(err).WithField("account", account).Errorln("health check")
			continue
		}

		if health.HasBadDebt {
			log.WithField("account", account).Warnln("bad debt position")
			continue
		}

		if health.IsLiquidatable {
			if err := w.solvency.StartLiquidation(ctx, account, now); err != nil && err != core.ErrAccountHealthy {
				log.WithError(err).WithField("account", account).Errorln("start liquidation")
			}
		}
	}

	// marks left behind after a repay or a collateral top-up
	statuses, err := w.liquidations.AllLiquidating(ctx)
	if err != nil {
		return err
	}

	for _, status := range statuses {
		if err := w.solvency.CompleteLiquidation(ctx, status.AccountID); err != nil {
			log.WithError(err).WithField("account", status.AccountID).Errorln("complete liquidation")
		}
	}

	return nil
}
