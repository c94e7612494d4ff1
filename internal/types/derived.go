package types

import (
	"github.com/moznion/go-optional"
)

// DerivedRow is a MarketRecord enriched with per-row derived metrics.
// DailyReturn is None for the first row of a series; Volatility is None
// until the trailing window has filled.
type DerivedRow struct {
	MarketRecord

	// DailyReturn is the percentage change of close vs the previous row's close.
	DailyReturn optional.Option[float64]
	// Volatility is the sample standard deviation of close over the trailing
	// window ending at this row.
	Volatility optional.Option[float64]
}
