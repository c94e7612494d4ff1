package pipeline

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/stretchr/testify/suite"

	"github.com/quantex-lab/minbar/internal/loader"
	"github.com/quantex-lab/minbar/internal/logger"
	"github.com/quantex-lab/minbar/pkg/errors"
)

type PipelineTestSuite struct {
	suite.Suite
}

func TestPipelineSuite(t *testing.T) {
	suite.Run(t, new(PipelineTestSuite))
}

// syntheticRows builds n minute rows with a daily-period sinusoid on top of
// a constant level, starting on a Monday.
func syntheticRows(n int, period int) []loader.RawRow {
	start := time.Date(2020, 1, 6, 0, 0, 0, 0, time.UTC)

	rows := make([]loader.RawRow, n)
	for i := range rows {
		t := start.Add(time.Duration(i) * time.Minute)
		price := 100 + 2*math.Sin(2*math.Pi*float64(i)/float64(period))

		rows[i] = loader.RawRow{
			UnixTimestamp: fmt.Sprintf("%d", t.Unix()),
			Date:          t.Format("1/2/2006 15:04"),
			Symbol:        "LTCUSD",
			Open:          fmt.Sprintf("%.4f", price),
			High:          fmt.Sprintf("%.4f", price+0.5),
			Low:           fmt.Sprintf("%.4f", price-0.5),
			Close:         fmt.Sprintf("%.4f", price),
			Volume:        "2.0",
		}
	}

	return rows
}

func testConfig() Config {
	config := DefaultConfig()
	config.DataPath = "unused.csv"
	config.SeasonalPeriod = 24
	config.Columns = []string{"close", "volume", "daily_return", "volatility"}

	return config
}

func (suite *PipelineTestSuite) TestRunEndToEnd() {
	pipeline := NewPipeline(testConfig(), logger.NewNopLogger())

	report, err := pipeline.Run(syntheticRows(300, 24))
	suite.NoError(err)
	suite.NotNil(report)

	suite.NotEmpty(report.RunID)
	suite.Equal("LTCUSD", report.Symbol)
	suite.Equal(300, report.Rows)
	suite.Equal(240, report.TrainingRows)
	suite.Equal(60, report.TestingRows)
	suite.True(report.DecompositionComputed)
	suite.NotEmpty(report.ModelOrder)
	suite.False(math.IsNaN(report.Accuracy.RMSE))

	// 300 minutes starting Monday midnight stay within a single week
	suite.Equal("weekly", report.Granularity)
	suite.Equal(1, report.Buckets)

	suite.InDelta(2.0, report.ColumnMeans["volume"], 1e-9)
	suite.InDelta(1.0, report.Correlations["close"]["close"], 1e-9)
}

func (suite *PipelineTestSuite) TestRunHaltsOnNormalizeError() {
	rows := syntheticRows(50, 24)
	rows[10].Close = ""

	pipeline := NewPipeline(testConfig(), logger.NewNopLogger())

	_, err := pipeline.Run(rows)
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeValidation))
	suite.Contains(err.Error(), "stage normalize failed")
}

func (suite *PipelineTestSuite) TestRunHaltsOnSplitError() {
	config := testConfig()
	config.Columns = []string{"close"}
	pipeline := NewPipeline(config, logger.NewNopLogger())

	_, err := pipeline.Run(syntheticRows(1, 24))
	suite.Error(err)
	suite.Contains(err.Error(), "stage split failed")
	suite.True(errors.IsInsufficientDataError(err))
}

func (suite *PipelineTestSuite) TestRunHaltsOnBadGranularity() {
	config := testConfig()
	config.Granularity = "hourly"
	pipeline := NewPipeline(config, logger.NewNopLogger())

	_, err := pipeline.Run(syntheticRows(50, 24))
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidGranularity))
	suite.Contains(err.Error(), "stage resample failed")
}

func (suite *PipelineTestSuite) TestShortTrainingSkipsDecomposition() {
	config := testConfig()
	config.SeasonalPeriod = 500 // two periods exceed the 80-row training slice
	pipeline := NewPipeline(config, logger.NewNopLogger())

	report, err := pipeline.Run(syntheticRows(100, 24))
	suite.NoError(err)
	suite.False(report.DecompositionComputed)
	suite.Len(report.Correlations, 4)
}

func (suite *PipelineTestSuite) TestDateRangeFilter() {
	config := testConfig()
	start := time.Date(2020, 1, 6, 1, 0, 0, 0, time.UTC)
	end := time.Date(2020, 1, 6, 4, 0, 0, 0, time.UTC)
	config.StartTime, config.EndTime = optional.Some(start), optional.Some(end)

	pipeline := NewPipeline(config, logger.NewNopLogger())

	report, err := pipeline.Run(syntheticRows(600, 24))
	suite.NoError(err)
	// inclusive bounds: 60..240 inclusive
	suite.Equal(181, report.Rows)
}
