package interestrate

import (
	"lotus/core"
	"lotus/pkg/number"

	"github.com/shopspring/decimal"
)

var one = decimal.New(1, 0)

// Params kinked interest-rate curve parameters plus the pool-health gate
type Params struct {
	OptimalUtilization decimal.Decimal
	BaseRate           decimal.Decimal
	Slope1             decimal.Decimal
	Slope2             decimal.Decimal
	UtilizationCap     decimal.Decimal
	MinimumPoolBalance decimal.Decimal
}

// FromReserve curve params configured on the reserve
func FromReserve(r *core.Reserve) Params {
	return Params{
		OptimalUtilization: r.OptimalUtilization,
		BaseRate:           r.BaseRate,
		Slope1:             r.Slope1,
		Slope2:             r.Slope2,
		UtilizationCap:     r.UtilizationCap,
		MinimumPoolBalance: r.MinimumPoolBalance,
	}
}

// Rates annualized rates for a utilization point
type Rates struct {
	BorrowRate        decimal.Decimal
	LiquidityRateBase decimal.Decimal
}

// CalculateRate maps utilization to (liquidityRateBase, borrowRate).
// Utilization is clamped to 100%. Below the kink the borrow rate is
// max(baseRate, u*slope1); above it the excess utilization pays slope2.
// Lenders only earn the portion proportional to funds actually lent out.
func (p Params) CalculateRate(utilization decimal.Decimal) Rates {
	if utilization.GreaterThan(one) {
		utilization = one
	}

	var borrowRate decimal.Decimal
	if utilization.LessThan(p.OptimalUtilization) {
		borrowRate = utilization.Mul(p.Slope1)
		if borrowRate.LessThan(p.BaseRate) {
			borrowRate = p.BaseRate
		}
	} else {
		excess := utilization.Sub(p.OptimalUtilization)
		borrowRate = utilization.Mul(p.Slope1).Add(excess.Mul(p.Slope2))
	}
	borrowRate = borrowRate.Truncate(number.MaxPrecision)

	return Rates{
		BorrowRate:        borrowRate,
		LiquidityRateBase: borrowRate.Mul(utilization).Truncate(number.MaxPrecision),
	}
}

// ValidatePool gates actions that move funds. Failure means the action
// is rejected, not transient.
func (p Params) ValidatePool(utilization, idleBalance decimal.Decimal) error {
	if p.UtilizationCap.IsPositive() && utilization.GreaterThan(p.UtilizationCap) {
		return core.ErrUtilizationTooHigh
	}

	if idleBalance.LessThan(p.MinimumPoolBalance) {
		return core.ErrPoolBalanceTooLow
	}

	return nil
}
