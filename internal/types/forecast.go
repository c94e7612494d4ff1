package types

// SplitResult is a deterministic chronological partition of a series by row
// count. Training is the prefix, Testing the suffix.
type SplitResult struct {
	Training MarketSeries
	Testing  MarketSeries
}

// ForecastPoint is one forecast step: point estimate plus the 95% prediction
// interval bounds.
type ForecastPoint struct {
	Point float64 `yaml:"point"`
	Lower float64 `yaml:"lower"`
	Upper float64 `yaml:"upper"`
}

// ForecastResult carries the multi-step forecast, aligned 1:1 with the
// testing partition it will be evaluated against.
type ForecastResult struct {
	Points []ForecastPoint `yaml:"points"`
}

// PointSlice extracts the point estimates in step order.
func (f ForecastResult) PointSlice() []float64 {
	points := make([]float64, len(f.Points))
	for i, p := range f.Points {
		points[i] = p.Point
	}

	return points
}

// AccuracyReport holds the forecast-error metrics over the held-out
// partition. MAPE and MPE propagate NaN when the actual value is zero.
type AccuracyReport struct {
	// MAE is the mean absolute error.
	MAE float64 `yaml:"mae"`
	// RMSE is the root mean squared error.
	RMSE float64 `yaml:"rmse"`
	// MAPE is the mean absolute percentage error.
	MAPE float64 `yaml:"mape"`
	// MPE is the mean percentage error. Positive means the actuals exceed the
	// forecast, i.e. the model underestimated.
	MPE float64 `yaml:"mpe"`
}

// Metrics returns the report as a metric-name to value mapping.
func (a AccuracyReport) Metrics() map[string]float64 {
	return map[string]float64{
		"MAE":  a.MAE,
		"RMSE": a.RMSE,
		"MAPE": a.MAPE,
		"MPE":  a.MPE,
	}
}
