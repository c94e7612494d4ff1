// Package pipeline wires the stages into the end-to-end report run:
// normalize, enrich, resample, correlate, split, decompose, fit, forecast,
// evaluate. Every stage is a pure function over its input; the pipeline
// halts at the first error and names the failing stage, producing no
// partial downstream artifacts.
package pipeline

import (
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/quantex-lab/minbar/internal/derive"
	"github.com/quantex-lab/minbar/internal/forecast"
	"github.com/quantex-lab/minbar/internal/loader"
	"github.com/quantex-lab/minbar/internal/logger"
	"github.com/quantex-lab/minbar/internal/normalize"
	"github.com/quantex-lab/minbar/internal/resample"
	"github.com/quantex-lab/minbar/internal/split"
	"github.com/quantex-lab/minbar/internal/stats"
	"github.com/quantex-lab/minbar/internal/types"
	"github.com/quantex-lab/minbar/pkg/errors"
)

// Report is the value object handed to the narrative layer.
type Report struct {
	// RunID identifies this pipeline execution.
	RunID string `yaml:"run_id"`
	// GeneratedAt is when the run finished.
	GeneratedAt time.Time `yaml:"generated_at"`
	Symbol      string    `yaml:"symbol"`
	// Rows is the size of the normalized (and optionally range-filtered) series.
	Rows        int    `yaml:"rows"`
	Granularity string `yaml:"granularity"`
	// Buckets is the number of resampled periods.
	Buckets int `yaml:"buckets"`
	// ColumnMeans and Correlations cover the configured column set.
	ColumnMeans  map[string]float64            `yaml:"column_means"`
	Correlations map[string]map[string]float64 `yaml:"correlations"`
	TrainingRows int                           `yaml:"training_rows"`
	TestingRows  int                           `yaml:"testing_rows"`
	// DecompositionComputed is false when the training partition is shorter
	// than two seasonal periods and the decomposition was skipped.
	DecompositionComputed bool `yaml:"decomposition_computed"`
	// ResidualStdDev summarizes the decomposition residual when computed.
	ResidualStdDev float64 `yaml:"residual_std_dev,omitempty"`
	// ModelOrder is the selected seasonal ARIMA order.
	ModelOrder string  `yaml:"model_order"`
	ModelAIC   float64 `yaml:"model_aic"`
	// Accuracy scores the forecast against the held-out partition.
	Accuracy types.AccuracyReport `yaml:"accuracy"`
}

// Pipeline runs the full report over one raw row table.
type Pipeline struct {
	config Config
	logger *logger.Logger
}

// NewPipeline creates a pipeline with the given configuration.
func NewPipeline(config Config, log *logger.Logger) *Pipeline {
	return &Pipeline{config: config, logger: log}
}

// stageError tags an error with the stage that raised it while preserving
// its code, so the caller sees both the kind and the origin.
func stageError(stage string, err error) error {
	code := errors.GetCode(err)
	if code == errors.ErrCodeUnknown && errors.IsInsufficientDataError(err) {
		code = errors.ErrCodeInsufficientData
	}

	return errors.Wrapf(code, err, "stage %s failed", stage)
}

// Run executes every stage over the raw rows and assembles the report.
func (p *Pipeline) Run(rows []loader.RawRow) (*Report, error) {
	runID := uuid.NewString()
	log := p.logger.With(zap.String("run_id", runID), zap.String("symbol", p.config.Symbol))
	started := time.Now()

	// normalize and establish chronological order once; later stages rely on it
	normalizer := normalize.NewNormalizer(p.config.Symbol)

	series, err := normalizer.Normalize(rows)
	if err != nil {
		return nil, stageError("normalize", err)
	}

	series = series.SortChronological()

	if p.config.StartTime.IsSome() || p.config.EndTime.IsSome() {
		start := p.config.StartTime.TakeOr(time.Time{})
		end := p.config.EndTime.TakeOr(time.Date(9999, 1, 1, 0, 0, 0, 0, time.UTC))
		series = resample.FilterRange(series, start, end)
	}

	log.Info("series normalized", zap.Int("rows", len(series)))

	enriched, err := derive.Enrich(series, p.config.VolatilityWindow)
	if err != nil {
		return nil, stageError("derive", err)
	}

	granularity, err := resample.ParseGranularity(p.config.Granularity)
	if err != nil {
		return nil, stageError("resample", err)
	}

	buckets, err := resample.Resample(series, granularity)
	if err != nil {
		return nil, stageError("resample", err)
	}

	log.Info("series resampled", zap.String("granularity", string(granularity)), zap.Int("buckets", len(buckets)))

	correlations, err := stats.CorrelationMatrix(enriched, p.config.Columns)
	if err != nil {
		return nil, stageError("stats", err)
	}

	means, err := stats.ColumnMeans(enriched, p.config.Columns)
	if err != nil {
		return nil, stageError("stats", err)
	}

	partitions, err := split.Split(series, p.config.TrainFraction)
	if err != nil {
		return nil, stageError("split", err)
	}

	log.Info("series split",
		zap.Int("training", len(partitions.Training)),
		zap.Int("testing", len(partitions.Testing)))

	report := &Report{
		RunID:        runID,
		Symbol:       p.config.Symbol,
		Rows:         len(series),
		Granularity:  string(granularity),
		Buckets:      len(buckets),
		ColumnMeans:  means,
		Correlations: correlations,
		TrainingRows: len(partitions.Training),
		TestingRows:  len(partitions.Testing),
	}

	trainingCloses := partitions.Training.Closes()

	// the decomposition is descriptive; a training window shorter than two
	// seasonal periods skips it with a warning instead of failing the run
	if len(trainingCloses) >= 2*p.config.SeasonalPeriod {
		decomposition, err := forecast.Decompose(trainingCloses, p.config.SeasonalPeriod)
		if err != nil {
			return nil, stageError("decompose", err)
		}

		report.DecompositionComputed = true
		report.ResidualStdDev = residualStdDev(decomposition.Residual)
	} else {
		log.Warn("skipping decomposition: training shorter than two seasonal periods",
			zap.Int("training", len(trainingCloses)),
			zap.Int("seasonal_period", p.config.SeasonalPeriod))
	}

	model, err := forecast.FitAuto(trainingCloses, p.config.SeasonalPeriod)
	if err != nil {
		return nil, stageError("fit", err)
	}

	log.Info("model selected", zap.String("order", model.Order.String()), zap.Float64("aic", model.AIC))

	// horizon must equal the testing length for the evaluation to align
	result, err := model.Forecast(len(partitions.Testing))
	if err != nil {
		return nil, stageError("forecast", err)
	}

	accuracy, err := forecast.EvaluateForecast(result, partitions.Testing)
	if err != nil {
		return nil, stageError("evaluate", err)
	}

	report.ModelOrder = model.Order.String()
	report.ModelAIC = model.AIC
	report.Accuracy = accuracy
	report.GeneratedAt = time.Now()

	log.Info("pipeline finished",
		zap.Duration("elapsed", time.Since(started)),
		zap.Float64("rmse", accuracy.RMSE))

	return report, nil
}

// residualStdDev computes the sample standard deviation of the defined
// residual entries.
func residualStdDev(residual []float64) float64 {
	var (
		sum   float64
		count int
	)

	for _, v := range residual {
		if math.IsNaN(v) {
			continue
		}

		sum += v
		count++
	}

	if count < 2 {
		return 0
	}

	mean := sum / float64(count)

	var squared float64

	for _, v := range residual {
		if math.IsNaN(v) {
			continue
		}

		squared += (v - mean) * (v - mean)
	}

	return math.Sqrt(squared / float64(count-1))
}
