package number

import (
	"errors"
	"math"

	"github.com/shopspring/decimal"
)

// MaxPrecision max precision kept by pool arithmetic
const MaxPrecision int32 = 16

// ErrDivisionByZero division by zero
var ErrDivisionByZero = errors.New("division by zero")

var One = decimal.New(1, 0)

func Decimal(v string) decimal.Decimal {
	d, _ := decimal.NewFromString(v)
	return d
}

// Ceil rounds up at the given precision
func Ceil(d decimal.Decimal, precision int32) decimal.Decimal {
	return d.Shift(precision).Ceil().Shift(-precision)
}

// Floor rounds down at the given precision
func Floor(d decimal.Decimal, precision int32) decimal.Decimal {
	return d.Truncate(precision)
}

// DivFloor divides and truncates at MaxPrecision. QuoRem keeps the
// division exact, Div would already have rounded at the 16th place.
func DivFloor(a, b decimal.Decimal) (decimal.Decimal, error) {
	if b.IsZero() {
		return decimal.Zero, ErrDivisionByZero
	}

	q, _ := a.QuoRem(b, MaxPrecision)
	return q, nil
}

// DivCeil divides and rounds up at MaxPrecision
func DivCeil(a, b decimal.Decimal) (decimal.Decimal, error) {
	if b.IsZero() {
		return decimal.Zero, ErrDivisionByZero
	}

	q, r := a.QuoRem(b, MaxPrecision)
	if !r.IsZero() {
		q = q.Add(decimal.New(1, -MaxPrecision))
	}
	return q, nil
}

// Exp natural exponential, used for continuous compounding only
func Exp(d decimal.Decimal) decimal.Decimal {
	f, _ := d.Float64()
	f = math.Exp(f)
	return decimal.NewFromFloat(f).Truncate(MaxPrecision)
}

// ScaleDecimals converts an amount between token decimal scales.
// Widening is lossless, narrowing truncates to the coarser scale.
func ScaleDecimals(value decimal.Decimal, fromDecimals, toDecimals int32) decimal.Decimal {
	if toDecimals < fromDecimals {
		return value.Truncate(toDecimals)
	}

	return value
}
