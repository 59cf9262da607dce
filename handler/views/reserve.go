package views

import (
	"lotus/core"

	"github.com/shopspring/decimal"
)

// Reserve reserve plus its derived figures
type Reserve struct {
	core.Reserve
	Utilization   decimal.Decimal `json:"utilization"`
	TotalDeposits decimal.Decimal `json:"total_deposits"`
	TotalDebt     decimal.Decimal `json:"total_debt"`
}

// Account account health plus ledger balances and liquidation state
type Account struct {
	core.AccountHealth
	DepositBalance decimal.Decimal `json:"deposit_balance"`
	IsLiquidating  bool            `json:"is_liquidating"`
}
