package number

import (
	"testing"

	"github.com/bmizerany/assert"
	"github.com/shopspring/decimal"
)

func TestCeil(t *testing.T) {
	data := map[string]string{
		"0.10304":     "0.11",
		"0.100000001": "0.11",
		"0.108":       "0.11",
	}

	for k, v := range data {
		t.Run(k, func(t *testing.T) {
			c := Ceil(Decimal(k), 2)
			assert.Equal(t, v, c.String(), "should be ceil")
		})
	}
}

func TestDivByZero(t *testing.T) {
	if _, err := DivFloor(One, decimal.Zero); err != ErrDivisionByZero {
		t.Error("expected division by zero", err)
	}
	if _, err := DivCeil(One, decimal.Zero); err != ErrDivisionByZero {
		t.Error("expected division by zero", err)
	}
}

func TestDivRounding(t *testing.T) {
	a := Decimal("1")
	b := Decimal("3")

	down, err := DivFloor(a, b)
	assert.Equal(t, nil, err)
	up, err := DivCeil(a, b)
	assert.Equal(t, nil, err)

	assert.Equal(t, "0.3333333333333333", down.String())
	assert.Equal(t, "0.3333333333333334", up.String())
}

func TestExp(t *testing.T) {
	assert.Equal(t, "1", Exp(decimal.Zero).String())

	// e^1 within float64 tolerance
	e := Exp(One)
	if e.LessThan(Decimal("2.718281828")) || e.GreaterThan(Decimal("2.71828183")) {
		t.Error("exp(1) out of range:", e)
	}
}

func TestScaleDecimals(t *testing.T) {
	v := Decimal("123.456789123456789")

	assert.Equal(t, "123.456789", ScaleDecimals(v, 18, 6).String())
	assert.Equal(t, v.String(), ScaleDecimals(v, 6, 18).String())
	assert.Equal(t, v.String(), ScaleDecimals(v, 18, 18).String())
}
