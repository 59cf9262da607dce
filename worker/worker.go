package worker

import (
	"context"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Worker long-running unit supervised by the worker command
type Worker interface {
	Run(ctx context.Context) error
}

type OnWork func(ctx context.Context) error

// BaseJob cron driven worker. Ticks never overlap: a tick that fires
// while the previous one is still working is skipped.
type BaseJob struct {
	Cron      *cron.Cron
	Name      string
	IsRunning bool
	OnWork    OnWork

	ctx context.Context
}

// Tick registered as the cron callback by concrete workers
func (job *BaseJob) Tick() {
	if job.IsRunning {
		return
	}

	job.IsRunning = true
	if err := job.OnWork(job.ctx); err != nil {
		logrus.WithField("worker", job.Name).WithError(err).Errorln("tick failed")
	}
	job.IsRunning = false
}

func (job *BaseJob) Run(ctx context.Context) error {
	job.ctx = ctx
	job.Cron.Start()

	<-ctx.Done()
	<-job.Cron.Stop().Done()

	return ctx.Err()
}
