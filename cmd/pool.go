package cmd

import (
	"encoding/json"
	"strings"

	"lotus/core"

	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var initReserveCmd = &cobra.Command{
	Use:     "init-reserve",
	Aliases: []string{"ir"},
	Short:   "create the pool reserve",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		database := provideDatabase()
		defer database.Close()

		reserveStore := provideReserveStore(database)

		reserve, err := reserveStore.Find(ctx, cfg.App.AssetID)
		if err != nil {
			panic(err)
		}
		if reserve.ID > 0 {
			cmd.PrintErrln("reserve already exists")
			return
		}

		reserve = &core.Reserve{
			AssetID:                 cfg.App.AssetID,
			Symbol:                  strings.ToUpper(cfg.App.Symbol),
			LiquidityIndex:          decimal.New(1, 0),
			BorrowIndex:             decimal.New(1, 0),
			OptimalUtilization:      decimalFlag(cmd, "optimal-utilization"),
			BaseRate:                decimalFlag(cmd, "base-rate"),
			Slope1:                  decimalFlag(cmd, "slope1"),
			Slope2:                  decimalFlag(cmd, "slope2"),
			UtilizationCap:          decimalFlag(cmd, "utilization-cap"),
			MinimumPoolBalance:      decimalFlag(cmd, "minimum-pool-balance"),
			LendingFeeRate:          decimalFlag(cmd, "lending-fee-rate"),
			FlashLoanFeeRate:        decimalFlag(cmd, "flash-loan-fee-rate"),
			DepositCap:              decimalFlag(cmd, "deposit-cap"),
			MaxDepositPerAccount:    decimalFlag(cmd, "max-deposit-per-account"),
			MinimumOpenBorrow:       decimalFlag(cmd, "minimum-open-borrow"),
			MinimumCollectionAmount: decimalFlag(cmd, "minimum-collection-amount"),
		}

		if err := database.Tx(func(tx *db.DB) error {
			return reserveStore.Save(ctx, tx, reserve)
		}); err != nil {
			panic(err)
		}

		cmd.Println("reserve created for", reserve.Symbol)
	},
}

var updateReserveCmd = &cobra.Command{
	Use:     "update-reserve",
	Aliases: []string{"ur"},
	Short:   "update pool reserve params",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		database := provideDatabase()
		defer database.Close()

		reserveStore := provideReserveStore(database)

		reserve, err := reserveStore.Find(ctx, cfg.App.AssetID)
		if err != nil {
			panic(err)
		}
		if reserve.ID == 0 {
			cmd.PrintErrln("reserve not found, run init-reserve first")
			return
		}

		set := func(name string, field *decimal.Decimal) {
			if cmd.Flags().Changed(name) {
				*field = decimalFlag(cmd, name)
			}
		}

		set("optimal-utilization", &reserve.OptimalUtilization)
		set("base-rate", &reserve.BaseRate)
		set("slope1", &reserve.Slope1)
		set("slope2", &reserve.Slope2)
		set("utilization-cap", &reserve.UtilizationCap)
		set("minimum-pool-balance", &reserve.MinimumPoolBalance)
		set("lending-fee-rate", &reserve.LendingFeeRate)
		set("flash-loan-fee-rate", &reserve.FlashLoanFeeRate)
		set("deposit-cap", &reserve.DepositCap)
		set("max-deposit-per-account", &reserve.MaxDepositPerAccount)
		set("minimum-open-borrow", &reserve.MinimumOpenBorrow)
		set("minimum-collection-amount", &reserve.MinimumCollectionAmount)

		if err := database.Tx(func(tx *db.DB) error {
			return reserveStore.Update(ctx, tx, reserve)
		}); err != nil {
			panic(err)
		}

		cmd.Println("reserve updated")
	},
}

var listReservesCmd = &cobra.Command{
	Use:     "list-reserves",
	Aliases: []string{"lr"},
	Short:   "list pool reserves",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		database := provideDatabase()
		defer database.Close()

		reserves, err := provideReserveStore(database).All(ctx)
		if err != nil {
			panic(err)
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(reserves); err != nil {
			panic(err)
		}
	},
}

func decimalFlag(cmd *cobra.Command, name string) decimal.Decimal {
	v, _ := cmd.Flags().GetString(name)
	if v == "" {
		return decimal.Zero
	}

	d, err := decimal.NewFromString(v)
	if err != nil {
		panic("invalid " + name + ": " + v)
	}

	return d
}

func reserveFlags(cmd *cobra.Command) {
	cmd.Flags().String("optimal-utilization", "", "kink point of the rate curve")
	cmd.Flags().String("base-rate", "", "borrow rate at zero utilization")
	cmd.Flags().String("slope1", "", "rate slope below the kink")
	cmd.Flags().String("slope2", "", "rate slope above the kink")
	cmd.Flags().String("utilization-cap", "", "max utilization after withdraw or borrow")
	cmd.Flags().String("minimum-pool-balance", "", "idle balance floor after withdraw or borrow")
	cmd.Flags().String("lending-fee-rate", "", "share of borrow interest kept as reserves")
	cmd.Flags().String("flash-loan-fee-rate", "", "flash loan fee rate")
	cmd.Flags().String("deposit-cap", "", "pool-wide deposit cap, 0 for unlimited")
	cmd.Flags().String("max-deposit-per-account", "", "per-account deposit cap, 0 for unlimited")
	cmd.Flags().String("minimum-open-borrow", "", "smallest debt a borrow may leave open")
	cmd.Flags().String("minimum-collection-amount", "", "reserve surplus threshold for treasury collection")
}

func init() {
	rootCmd.AddCommand(initReserveCmd)
	rootCmd.AddCommand(updateReserveCmd)
	rootCmd.AddCommand(listReservesCmd)

	reserveFlags(initReserveCmd)
	reserveFlags(updateReserveCmd)
}
