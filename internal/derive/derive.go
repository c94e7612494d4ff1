// Package derive computes per-row metrics over a normalized series: the
// daily return and the trailing rolling volatility. Both functions require
// the series to be sorted ascending by timestamp and do not re-sort; that
// contract belongs to the caller.
package derive

import (
	"github.com/moznion/go-optional"
	"gonum.org/v1/gonum/stat"

	"github.com/quantex-lab/minbar/internal/types"
	"github.com/quantex-lab/minbar/pkg/errors"
)

// DefaultVolatilityWindow is the trailing window used by the report.
const DefaultVolatilityWindow = 7

// DailyReturns computes the percentage change of close vs the previous
// row's close for every row. The first row has no previous close and is
// None, not zero.
func DailyReturns(series types.MarketSeries) []optional.Option[float64] {
	returns := make([]optional.Option[float64], len(series))

	for i := range series {
		if i == 0 {
			returns[i] = optional.None[float64]()
			continue
		}

		returns[i] = optional.Some((series[i].Close/series[i-1].Close - 1) * 100)
	}

	return returns
}

// Volatility computes the sample standard deviation of close over a
// right-aligned trailing window of exactly `window` consecutive rows ending
// at (and including) the current row. The window spans row indices, not
// elapsed calendar time: gaps in the series do not widen it. Rows before
// the window has filled are None.
func Volatility(series types.MarketSeries, window int) ([]optional.Option[float64], error) {
	if window < 2 {
		return nil, errors.Newf(errors.ErrCodeInvalidParameter,
			"volatility window must be at least 2, got %d", window)
	}

	closes := series.Closes()
	volatility := make([]optional.Option[float64], len(series))

	for i := range series {
		if i < window-1 {
			volatility[i] = optional.None[float64]()
			continue
		}

		volatility[i] = optional.Some(stat.StdDev(closes[i-window+1:i+1], nil))
	}

	return volatility, nil
}

// Enrich combines the series with both derived metrics into DerivedRows.
func Enrich(series types.MarketSeries, window int) ([]types.DerivedRow, error) {
	volatility, err := Volatility(series, window)
	if err != nil {
		return nil, err
	}

	returns := DailyReturns(series)

	rows := make([]types.DerivedRow, len(series))
	for i, record := range series {
		rows[i] = types.DerivedRow{
			MarketRecord: record,
			DailyReturn:  returns[i],
			Volatility:   volatility[i],
		}
	}

	return rows, nil
}
