package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"
)

var (
	operationTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lotus",
		Name:      "pool_operations_total",
		Help:      "pool operations by name and result",
	}, []string{"operation", "result"})

	borrowRate = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "lotus",
		Name:      "reserve_borrow_rate",
		Help:      "current annualized borrow rate",
	})

	liquidityRate = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "lotus",
		Name:      "reserve_liquidity_rate",
		Help:      "current annualized liquidity rate",
	})
)

// ObserveOperation counts a pool operation outcome
func ObserveOperation(operation string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}

	operationTotal.WithLabelValues(operation, result).Inc()
}

// SetReserveRates records the reserve rates after a refresh
func SetReserveRates(borrow, liquidity decimal.Decimal) {
	b, _ := borrow.Float64()
	l, _ := liquidity.Float64()
	borrowRate.Set(b)
	liquidityRate.Set(l)
}
