package lending

import (
	"time"

	"lotus/core"
	"lotus/internal/interestrate"
	"lotus/pkg/number"

	"github.com/shopspring/decimal"
)

// SecondsPerYear seconds per year
var SecondsPerYear = decimal.NewFromInt(31536000)

// CompoundedFactor continuous compounding growth over elapsed seconds:
// exp(rate * elapsed / secondsPerYear)
func CompoundedFactor(rate decimal.Decimal, elapsed int64) decimal.Decimal {
	exponent := rate.Mul(decimal.NewFromInt(elapsed)).Div(SecondsPerYear)
	return number.Exp(exponent)
}

// AccrueInterest folds the compounded interest since the last update
// into the two indices and stamps the update time. Accruing only occurs
// on behavior that changes pool state: deposit, withdraw, borrow,
// repay, flash loan, liquidation, or the interest worker tick.
//
// Calling twice with the same timestamp is a no-op on the indices;
// indices never decrease. Growth rounds up so the protocol never
// under-accrues a borrower.
func AccrueInterest(reserve *core.Reserve, now time.Time) {
	if !reserve.LiquidityIndex.IsPositive() {
		reserve.LiquidityIndex = number.One
	}
	if !reserve.BorrowIndex.IsPositive() {
		reserve.BorrowIndex = number.One
	}

	elapsed := now.Unix() - reserve.LastUpdatedAt.Unix()
	if elapsed <= 0 {
		return
	}

	if reserve.LiquidityRate.IsPositive() {
		factor := CompoundedFactor(reserve.LiquidityRate, elapsed)
		reserve.LiquidityIndex = number.Ceil(reserve.LiquidityIndex.Mul(factor), number.MaxPrecision)
	}

	if reserve.BorrowRate.IsPositive() {
		factor := CompoundedFactor(reserve.BorrowRate, elapsed)
		reserve.BorrowIndex = number.Ceil(reserve.BorrowIndex.Mul(factor), number.MaxPrecision)
	}

	// stamped even when rates were zero, so idle time is not
	// re-applied on the next nonzero-rate period
	reserve.LastUpdatedAt = now
}

// Utilization fraction of pooled liquidity currently lent out:
// debt / (idle + debt), zero when there is no debt
func Utilization(idleBalance, totalDebt decimal.Decimal) decimal.Decimal {
	if !totalDebt.IsPositive() {
		return decimal.Zero
	}

	total := idleBalance.Add(totalDebt)
	if !total.IsPositive() {
		return decimal.Zero
	}

	return totalDebt.Div(total).Truncate(number.MaxPrecision)
}

// UpdateInterestRate refreshes the reserve rates from the curve at the
// current utilization. The lending fee is taken off the top of what
// would otherwise accrue to lenders.
func UpdateInterestRate(reserve *core.Reserve, totalDebt decimal.Decimal) {
	utilization := Utilization(reserve.AssetBalance, totalDebt)
	rates := interestrate.FromReserve(reserve).CalculateRate(utilization)

	reserve.BorrowRate = rates.BorrowRate
	reserve.LiquidityRate = rates.LiquidityRateBase.
		Mul(number.One.Sub(reserve.LendingFeeRate)).
		Truncate(number.MaxPrecision)
}
