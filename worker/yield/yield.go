package yield

import (
	"context"
	"time"

	"lotus/core"
	"lotus/worker"

	"github.com/fox-one/pkg/logger"
	"github.com/robfig/cron/v3"
)

// Worker yield worker, sweeps claimable yield from the configured
// source into the pool on a slow tick
type Worker struct {
	worker.BaseJob
	pool core.ILendingPool
}

// New new yield worker
func New(location string, pool core.ILendingPool) *Worker {
	job := Worker{pool: pool}
	job.Name = "yield"

	l, _ := time.LoadLocation(location)
	job.Cron = cron.New(cron.WithLocation(l))
	job.Cron.AddFunc("@every 10m", job.Tick)
	job.OnWork = func(ctx context.Context) error {
		return job.onWork(ctx)
	}

	return &job
}

func (w *Worker) onWork(ctx context.Context) error {
	log := logger.FromContext(ctx).WithField("worker", "yield")

	claimed, err := w.pool.ClaimYield(ctx, time.Now())
	if err != nil {
		if err == core.ErrNotClaimableProfit {
			return nil
		}

		log.WithError(err).Errorln("claim yield")
		return err
	}

	log.WithField("claimed", claimed).Infoln("yield swept")
	return nil
}
