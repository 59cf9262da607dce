package rest

import (
	"errors"
	"net/http"

	"lotus/core"
	"lotus/handler/param"
	"lotus/handler/render"

	"github.com/fox-one/pkg/property"
)

// propertyHandler flips the pause and deprecation flags; admins only
func propertyHandler(system *core.System, propertyStore property.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var params struct {
			AdminID string `json:"admin_id" valid:"required"`
			Key     string `json:"key" valid:"required"`
			Value   bool   `json:"value"`
		}

		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		if !system.IsAdmin(params.AdminID) {
			render.Error(w, http.StatusForbidden, -1, errors.New("admins only"))
			return
		}

		switch params.Key {
		case core.SysPropertyPaused, core.SysPropertyDeprecated:
		default:
			render.BadRequest(w, errors.New("unknown property key"))
			return
		}

		if err := propertyStore.Save(ctx, params.Key, params.Value); err != nil {
			render.OperationError(w, err)
			return
		}

		render.JSON(w, render.H{params.Key: params.Value})
	}
}
