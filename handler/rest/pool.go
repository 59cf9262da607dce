package rest

import (
	"net/http"
	"time"

	"lotus/core"
	"lotus/handler/param"
	"lotus/handler/render"

	"github.com/shopspring/decimal"
)

func depositHandler(pool core.ILendingPool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params struct {
			AccountID string          `json:"account_id" valid:"required"`
			Amount    decimal.Decimal `json:"amount"`
		}
		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		deposited, err := pool.Deposit(r.Context(), params.AccountID, params.Amount, time.Now())
		if err != nil {
			render.OperationError(w, err)
			return
		}

		render.JSON(w, render.H{"amount": deposited})
	}
}

func withdrawHandler(pool core.ILendingPool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params struct {
			AccountID string          `json:"account_id" valid:"required"`
			Amount    decimal.Decimal `json:"amount"`
			All       bool            `json:"all"`
		}
		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		amount := params.Amount
		if params.All {
			amount = core.MaxAmount
		}

		withdrawn, err := pool.Withdraw(r.Context(), params.AccountID, amount, time.Now())
		if err != nil {
			render.OperationError(w, err)
			return
		}

		render.JSON(w, render.H{"amount": withdrawn})
	}
}

func borrowHandler(pool core.ILendingPool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params struct {
			ManagerID string          `json:"manager_id" valid:"required"`
			AccountID string          `json:"account_id" valid:"required"`
			Amount    decimal.Decimal `json:"amount"`
		}
		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		if err := pool.Borrow(r.Context(), params.ManagerID, params.AccountID, params.Amount, time.Now()); err != nil {
			render.OperationError(w, err)
			return
		}

		render.JSON(w, render.H{"amount": params.Amount})
	}
}

func repayHandler(pool core.ILendingPool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params struct {
			From      string          `json:"from" valid:"required"`
			AccountID string          `json:"account_id" valid:"required"`
			Amount    decimal.Decimal `json:"amount"`
			All       bool            `json:"all"`
		}
		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		amount := params.Amount
		if params.All {
			amount = core.MaxAmount
		}

		paid, err := pool.Repay(r.Context(), params.From, params.AccountID, amount, time.Now())
		if err != nil {
			render.OperationError(w, err)
			return
		}

		render.JSON(w, render.H{"amount": paid})
	}
}

func liquidateHandler(solvency core.ISolvencyService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params struct {
			LiquidatorID string          `json:"liquidator_id" valid:"required"`
			AccountID    string          `json:"account_id" valid:"required"`
			DebtToCover  decimal.Decimal `json:"debt_to_cover"`
		}
		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		seizure, err := solvency.Liquidate(r.Context(), params.LiquidatorID, params.AccountID, params.DebtToCover, time.Now())
		if err != nil {
			render.OperationError(w, err)
			return
		}

		render.JSON(w, seizure)
	}
}
