package interest

import (
	"context"
	"time"

	"lotus/core"
	"lotus/internal/lending"
	"lotus/pkg/metrics"
	"lotus/worker"

	"github.com/fox-one/pkg/logger"
	"github.com/fox-one/pkg/store/db"
	"github.com/robfig/cron/v3"
)

// Worker interest worker. Folds accrued interest into every reserve on
// a fixed tick so indices stay fresh even when the pool is quiet.
type Worker struct {
	worker.BaseJob
	db       *db.DB
	reserves core.IReserveStore
}

// New new interest worker
func New(location string, database *db.DB, reserveStore core.IReserveStore) *Worker {
	job := Worker{
		db:       database,
		reserves: reserveStore,
	}
	job.Name = "interest"

	l, _ := time.LoadLocation(location)
	job.Cron = cron.New(cron.WithLocation(l))
	job.Cron.AddFunc("@every 10s", job.Tick)
	job.OnWork = func(ctx context.Context) error {
		return job.onWork(ctx)
	}

	return &job
}

func (w *Worker) onWork(ctx context.Context) error {
	log := logger.FromContext(ctx).WithField("worker", "interest")

	reserves, err := w.reserves.All(ctx)
	if err != nil {
		log.WithError(err).Errorln("reserves.All")
		return err
	}

	now := time.Now()
	for _, reserve := range reserves {
		if err := w.accrue(ctx, reserve.AssetID, now); err != nil {
			// a version conflict means a pool operation accrued first;
			// the next tick picks this reserve up again
			if err != db.ErrOptimisticLock {
				log.WithError(err).WithField("asset", reserve.AssetID).Errorln("accrue")
			}
		}
	}

	return nil
}

func (w *Worker) accrue(ctx context.Context, assetID string, now time.Time) error {
	return w.db.Tx(func(tx *db.DB) error {
		reserve, err := w.reserves.Find(ctx, assetID)
		if err != nil {
			return err
		}
		if reserve.ID == 0 {
			return nil
		}

		lending.AccrueInterest(reserve, now)
		lending.UpdateInterestRate(reserve, reserve.TotalDebt())
		metrics.SetReserveRates(reserve.BorrowRate, reserve.LiquidityRate)

		return w.reserves.Update(ctx, tx, reserve)
	})
}
