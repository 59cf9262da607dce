package interestrate

import (
	"testing"

	"lotus/core"
	"lotus/pkg/number"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testParams() Params {
	return Params{
		OptimalUtilization: number.Decimal("0.8"),
		BaseRate:           number.Decimal("0.02"),
		Slope1:             number.Decimal("0.04"),
		Slope2:             number.Decimal("0.75"),
		UtilizationCap:     number.Decimal("0.95"),
		MinimumPoolBalance: number.Decimal("100"),
	}
}

func TestCalculateRateBelowKink(t *testing.T) {
	rates := testParams().CalculateRate(number.Decimal("0.5"))

	// 0.5*0.04 = 0.02, floored by baseRate 0.02
	assert.Equal(t, "0.02", rates.BorrowRate.String())
	assert.Equal(t, "0.01", rates.LiquidityRateBase.String())
}

func TestCalculateRateAboveKink(t *testing.T) {
	rates := testParams().CalculateRate(number.Decimal("0.9"))

	// 0.9*0.04 + 0.1*0.75
	assert.Equal(t, "0.111", rates.BorrowRate.String())
	assert.Equal(t, "0.0999", rates.LiquidityRateBase.String())
}

func TestCalculateRateClampsUtilization(t *testing.T) {
	p := testParams()
	at1 := p.CalculateRate(number.Decimal("1"))
	over := p.CalculateRate(number.Decimal("1.7"))

	assert.Equal(t, at1.BorrowRate.String(), over.BorrowRate.String())
	assert.Equal(t, at1.LiquidityRateBase.String(), over.LiquidityRateBase.String())
}

func TestRateMonotonicInUtilization(t *testing.T) {
	p := testParams()

	prev := decimal.Zero
	for u := decimal.Zero; u.LessThanOrEqual(number.One); u = u.Add(number.Decimal("0.05")) {
		rates := p.CalculateRate(u)
		require.True(t, rates.LiquidityRateBase.GreaterThanOrEqual(prev),
			"liquidity rate decreased at utilization %s", u)
		prev = rates.LiquidityRateBase
	}
}

func TestValidatePool(t *testing.T) {
	p := testParams()

	assert.Nil(t, p.ValidatePool(number.Decimal("0.9"), number.Decimal("500")))

	err := p.ValidatePool(number.Decimal("0.96"), number.Decimal("500"))
	assert.Equal(t, core.ErrUtilizationTooHigh, err)

	err = p.ValidatePool(number.Decimal("0.5"), number.Decimal("99"))
	assert.Equal(t, core.ErrPoolBalanceTooLow, err)
}
