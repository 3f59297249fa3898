package builtin

import (
	"github.com/darmiel/verdict/internal/catalog"
	"github.com/darmiel/verdict/internal/core"
)

// SampleContext returns a context providing every path the built-in rules read.
func SampleContext() core.Context {
	return core.Context{
		"technical": map[string]any{
			"rsi_14":           30.0,
			"macd_histogram":   0.42,
			"price_vs_sma_200": -0.05,
			"volatility_30d":   0.32,
			"max_drawdown":     -0.2,
		},
		"fundamental": map[string]any{
			"pe_ratio":        15.0,
			"sector_pe_ratio": 20.0,
			"revenue_growth":  0.1,
			"earnings_growth": 0.2,
			"profitable":      true,
		},
		catalog.PathModels: map[string]any{
			catalog.EstimatorLGBM: 0.8,
			catalog.EstimatorRF:   0.6,
			catalog.EstimatorMI:   0.5,
		},
	}
}
