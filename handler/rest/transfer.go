package rest

import (
	"net/http"

	"lotus/core"
	"lotus/handler/param"
	"lotus/handler/render"
)

func transfersHandler(transferStore core.ITransferStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var params struct {
			FromID uint64 `json:"from_id"`
			Limit  int    `json:"limit"`
		}

		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		if params.Limit <= 0 || params.Limit > 500 {
			params.Limit = 100
		}

		transfers, err := transferStore.List(ctx, params.FromID, params.Limit)
		if err != nil {
			render.OperationError(w, err)
			return
		}

		render.JSON(w, render.H{"transfers": transfers})
	}
}
