package rest

import (
	"errors"
	"net/http"

	"lotus/core"
	"lotus/handler/render"

	"github.com/fox-one/pkg/property"
	"github.com/go-chi/chi"
)

// Handle handle rest api request
func Handle(
	assetID string,
	system *core.System,
	pool core.ILendingPool,
	solvency core.ISolvencyService,
	reserveStore core.IReserveStore,
	ledgerSrv core.ILedgerService,
	liquidationStore core.ILiquidationStore,
	transferStore core.ITransferStore,
	propertyStore property.Store,
) http.Handler {
	router := chi.NewRouter()

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		render.NotFoundRequest(w, errors.New("not found"))
	})

	router.Get("/reserve", reserveHandler(assetID, reserveStore))
	router.Get("/accounts/{account_id}", accountHandler(assetID, reserveStore, ledgerSrv, liquidationStore, solvency))
	router.Get("/transfers", transfersHandler(transferStore))

	router.Post("/deposits", depositHandler(pool))
	router.Post("/withdrawals", withdrawHandler(pool))
	router.Post("/borrows", borrowHandler(pool))
	router.Post("/repayments", repayHandler(pool))
	router.Post("/liquidations", liquidateHandler(solvency))
	router.Put("/properties", propertyHandler(system, propertyStore))

	return router
}
