package forecast

import (
	"math"

	"github.com/quantex-lab/minbar/internal/types"
	"github.com/quantex-lab/minbar/pkg/errors"
)

// Evaluate computes the forecast-error metrics over an aligned
// forecast/actual pair. The sequences must have equal length.
//
// MAPE and MPE divide by the actual value; a zero actual propagates NaN
// into the metric rather than being skipped, so a degenerate test partition
// is visible in the report instead of silently averaged away. MPE uses
// (actual - forecast) / actual: positive means the actuals exceed the
// forecast, i.e. the model underestimated.
func Evaluate(forecast, actual []float64) (types.AccuracyReport, error) {
	if len(forecast) != len(actual) {
		return types.AccuracyReport{}, errors.Newf(errors.ErrCodeLengthMismatch,
			"forecast length %d does not match actual length %d", len(forecast), len(actual))
	}

	if len(actual) == 0 {
		return types.AccuracyReport{}, errors.New(errors.ErrCodeLengthMismatch,
			"cannot evaluate empty sequences")
	}

	n := float64(len(actual))

	var sumAbs, sumSq, sumAbsPct, sumPct float64

	for i := range actual {
		err := forecast[i] - actual[i]
		sumAbs += math.Abs(err)
		sumSq += err * err
		sumAbsPct += math.Abs(err) / math.Abs(actual[i])
		sumPct += (actual[i] - forecast[i]) / actual[i]
	}

	return types.AccuracyReport{
		MAE:  sumAbs / n,
		RMSE: math.Sqrt(sumSq / n),
		MAPE: sumAbsPct / n * 100,
		MPE:  sumPct / n * 100,
	}, nil
}

// EvaluateForecast scores a ForecastResult against the closes of the
// testing partition.
func EvaluateForecast(result types.ForecastResult, testing types.MarketSeries) (types.AccuracyReport, error) {
	return Evaluate(result.PointSlice(), testing.Closes())
}
