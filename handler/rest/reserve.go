package rest

import (
	"net/http"

	"lotus/core"
	"lotus/handler/render"
	"lotus/handler/views"
	"lotus/internal/lending"

	"github.com/go-chi/chi"
)

func reserveHandler(assetID string, reserveStore core.IReserveStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		reserve, err := reserveStore.Find(ctx, assetID)
		if err != nil {
			render.OperationError(w, err)
			return
		}
		if reserve.ID == 0 {
			render.OperationError(w, core.ErrReserveNotFound)
			return
		}

		totalDebt := reserve.TotalDebt()
		view := views.Reserve{
			Reserve:       *reserve,
			Utilization:   lending.Utilization(reserve.AssetBalance, totalDebt),
			TotalDeposits: reserve.TotalDeposits(),
			TotalDebt:     totalDebt,
		}

		render.JSON(w, view)
	}
}

func accountHandler(
	assetID string,
	reserveStore core.IReserveStore,
	ledgerSrv core.ILedgerService,
	liquidationStore core.ILiquidationStore,
	solvency core.ISolvencyService,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		accountID := chi.URLParam(r, "account_id")

		health, err := solvency.GetAccountHealth(ctx, accountID)
		if err != nil {
			render.OperationError(w, err)
			return
		}

		reserve, err := reserveStore.Find(ctx, assetID)
		if err != nil {
			render.OperationError(w, err)
			return
		}

		deposit, err := ledgerSrv.RealBalance(ctx, core.LedgerDeposit, accountID, reserve.LiquidityIndex)
		if err != nil {
			render.OperationError(w, err)
			return
		}

		status, err := liquidationStore.Find(ctx, accountID)
		if err != nil {
			render.OperationError(w, err)
			return
		}

		view := views.Account{
			AccountHealth:  *health,
			DepositBalance: deposit,
			IsLiquidating:  status.IsLiquidating,
		}

		render.JSON(w, view)
	}
}
