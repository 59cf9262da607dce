package cmd

import (
	"context"
	"errors"

	"lotus/worker"
	"lotus/worker/interest"
	"lotus/worker/liquidation"
	"lotus/worker/yield"

	"github.com/drone/signal"
	"github.com/fox-one/pkg/logger"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "lotus background workers",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		log := logger.FromContext(ctx)
		ctx = logger.WithContext(ctx, log)
		ctx = signal.WithContext(ctx)

		database := provideDatabase()
		defer database.Close()

		reserveStore := provideReserveStore(database)
		ledgerStore := provideLedgerStore(database)
		liquidationStore := provideLiquidationStore(database)
		transferStore := provideTransferStore(database)
		propertyStore := providePropertyStore(database)

		ledgerSrv := provideLedgerService(ledgerStore)
		vault := provideVault(transferStore)
		pool := providePool(database, reserveStore, ledgerSrv, propertyStore, vault)
		solvency := provideSolvency(database, reserveStore, ledgerSrv, liquidationStore, pool)
		pool.BindSolvencyChecker(solvency)

		workers := []worker.Worker{
			interest.New(cfg.App.Location, database, reserveStore),
			liquidation.New(cfg.App.Location, ledgerStore, liquidationStore, solvency),
			yield.New(cfg.App.Location, pool),
		}

		g, ctx := errgroup.WithContext(ctx)
		for _, w := range workers {
			w := w
			g.Go(func() error {
				return w.Run(ctx)
			})
		}

		if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
			log.WithError(err).Error("workers aborted")
		}
	},
}

func init() {
	rootCmd.AddCommand(workerCmd)
}
