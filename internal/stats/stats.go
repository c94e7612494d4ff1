// Package stats provides the column-wise reductions the report needs:
// a pairwise-complete Pearson correlation matrix and NaN-ignoring column
// means over a selected numeric column set.
package stats

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/quantex-lab/minbar/internal/types"
	"github.com/quantex-lab/minbar/pkg/errors"
)

// Column names accepted by the reductions. daily_return and volatility may
// be null on individual rows; the OHLCV columns never are.
const (
	ColumnOpen        = "open"
	ColumnHigh        = "high"
	ColumnLow         = "low"
	ColumnClose       = "close"
	ColumnVolume      = "volume"
	ColumnDailyReturn = "daily_return"
	ColumnVolatility  = "volatility"
)

// columnValue extracts a named column from a row. The second return is
// false when the value is null for this row.
func columnValue(row types.DerivedRow, column string) (float64, bool, error) {
	switch column {
	case ColumnOpen:
		return row.Open, true, nil
	case ColumnHigh:
		return row.High, true, nil
	case ColumnLow:
		return row.Low, true, nil
	case ColumnClose:
		return row.Close, true, nil
	case ColumnVolume:
		return row.Volume, true, nil
	case ColumnDailyReturn:
		if row.DailyReturn.IsNone() {
			return 0, false, nil
		}

		return row.DailyReturn.Unwrap(), true, nil
	case ColumnVolatility:
		if row.Volatility.IsNone() {
			return 0, false, nil
		}

		return row.Volatility.Unwrap(), true, nil
	default:
		return 0, false, errors.Newf(errors.ErrCodeUnknownColumn, "unknown column: %q", column)
	}
}

// CorrelationMatrix computes the pairwise Pearson correlation over the named
// columns using pairwise-complete observations: a row missing either column
// of a pair is excluded from that pair only, not from the whole matrix.
// The result is symmetric and indexed by column name. A column with zero
// variance yields NaN entries, including its own diagonal.
func CorrelationMatrix(rows []types.DerivedRow, columns []string) (map[string]map[string]float64, error) {
	matrix := make(map[string]map[string]float64, len(columns))
	for _, column := range columns {
		matrix[column] = make(map[string]float64, len(columns))
	}

	for i, a := range columns {
		for _, b := range columns[i:] {
			r, err := pairCorrelation(rows, a, b)
			if err != nil {
				return nil, err
			}

			matrix[a][b] = r
			matrix[b][a] = r
		}
	}

	return matrix, nil
}

// pairCorrelation collects the pairwise-complete observations for one
// column pair and runs the Pearson kernel over them.
func pairCorrelation(rows []types.DerivedRow, a, b string) (float64, error) {
	xs := make([]float64, 0, len(rows))
	ys := make([]float64, 0, len(rows))

	for _, row := range rows {
		x, okX, err := columnValue(row, a)
		if err != nil {
			return 0, err
		}

		y, okY, err := columnValue(row, b)
		if err != nil {
			return 0, err
		}

		if !okX || !okY || math.IsNaN(x) || math.IsNaN(y) {
			continue
		}

		xs = append(xs, x)
		ys = append(ys, y)
	}

	if len(xs) < 2 {
		return math.NaN(), nil
	}

	return stat.Correlation(xs, ys, nil), nil
}

// ColumnMeans computes the arithmetic mean of each named column, ignoring
// null entries. A column with zero non-null values has no defined mean and
// fails with an empty-column error rather than reporting zero.
func ColumnMeans(rows []types.DerivedRow, columns []string) (map[string]float64, error) {
	means := make(map[string]float64, len(columns))

	for _, column := range columns {
		var (
			sum   float64
			count int
		)

		for _, row := range rows {
			v, ok, err := columnValue(row, column)
			if err != nil {
				return nil, err
			}

			if !ok || math.IsNaN(v) {
				continue
			}

			sum += v
			count++
		}

		if count == 0 {
			return nil, errors.Newf(errors.ErrCodeEmptyColumn, "column %q has no non-null values", column)
		}

		means[column] = sum / float64(count)
	}

	return means, nil
}
