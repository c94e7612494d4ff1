// Package forecast holds the modelling end of the pipeline: classical
// seasonal decomposition, seasonal-ARIMA order selection and fitting, and
// out-of-sample accuracy scoring.
package forecast

import (
	"math"

	"github.com/quantex-lab/minbar/pkg/errors"
)

// Decomposition is an additive decomposition of an equally-spaced sequence:
// Observed = Trend + Seasonal + Residual at every index where the components
// are defined. Trend and Residual are NaN over the first and last
// half-period, the usual centered moving-average boundary; the boundary is
// reported as NaN, never zero-filled.
type Decomposition struct {
	Observed []float64
	Trend    []float64
	Seasonal []float64
	Residual []float64
	Period   int
}

// Decompose performs classical additive decomposition with the given
// seasonal period. The trend is a centered moving average (2xm MA for even
// periods); the seasonal component is the per-phase mean of the detrended
// series, normalized to sum to zero over one period. At least two full
// periods of input are required.
func Decompose(values []float64, period int) (Decomposition, error) {
	if period < 2 {
		return Decomposition{}, errors.Newf(errors.ErrCodeInvalidParameter,
			"seasonal period must be at least 2, got %d", period)
	}

	if len(values) < 2*period {
		return Decomposition{}, errors.Newf(errors.ErrCodeInsufficientPeriods,
			"decomposition needs at least 2 full periods (%d points), got %d", 2*period, len(values))
	}

	n := len(values)
	observed := make([]float64, n)
	copy(observed, values)

	trend := centeredMovingAverage(observed, period)

	// per-phase means of the detrended series
	phaseSum := make([]float64, period)
	phaseCount := make([]int, period)

	for i := range observed {
		if math.IsNaN(trend[i]) {
			continue
		}

		phase := i % period
		phaseSum[phase] += observed[i] - trend[i]
		phaseCount[phase]++
	}

	phaseMean := make([]float64, period)

	var total float64

	for p := range phaseMean {
		if phaseCount[p] > 0 {
			phaseMean[p] = phaseSum[p] / float64(phaseCount[p])
		}

		total += phaseMean[p]
	}

	// normalize so the seasonal component sums to zero over one period
	offset := total / float64(period)

	seasonal := make([]float64, n)
	for i := range seasonal {
		seasonal[i] = phaseMean[i%period] - offset
	}

	residual := make([]float64, n)
	for i := range residual {
		if math.IsNaN(trend[i]) {
			residual[i] = math.NaN()
			continue
		}

		residual[i] = observed[i] - trend[i] - seasonal[i]
	}

	return Decomposition{
		Observed: observed,
		Trend:    trend,
		Seasonal: seasonal,
		Residual: residual,
		Period:   period,
	}, nil
}

// centeredMovingAverage computes the trend estimate. For an even period m
// the window spans m+1 points with half weight on the two ends; for an odd
// period it is the plain m-point centered average. Indices whose window
// would run off either end are NaN.
func centeredMovingAverage(values []float64, period int) []float64 {
	n := len(values)
	trend := make([]float64, n)

	for i := range trend {
		trend[i] = math.NaN()
	}

	half := period / 2

	if period%2 == 0 {
		for i := half; i < n-half; i++ {
			sum := 0.5*values[i-half] + 0.5*values[i+half]
			for j := i - half + 1; j <= i+half-1; j++ {
				sum += values[j]
			}

			trend[i] = sum / float64(period)
		}

		return trend
	}

	for i := half; i < n-half; i++ {
		var sum float64
		for j := i - half; j <= i+half; j++ {
			sum += values[j]
		}

		trend[i] = sum / float64(period)
	}

	return trend
}
