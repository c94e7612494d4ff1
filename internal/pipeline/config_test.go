package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/quantex-lab/minbar/pkg/errors"
)

type ConfigTestSuite struct {
	suite.Suite
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}

func (suite *ConfigTestSuite) TestDefaultsSurvivepartialYAML() {
	config, err := ParseConfig([]byte("data_path: bars.csv\n"))
	suite.NoError(err)
	suite.Equal("bars.csv", config.DataPath)
	suite.Equal("LTCUSD", config.Symbol)
	suite.Equal(7, config.VolatilityWindow)
	suite.Equal("weekly", config.Granularity)
	suite.Equal(0.8, config.TrainFraction)
	suite.Equal(1440, config.SeasonalPeriod)
	suite.True(config.StartTime.IsNone())
	suite.True(config.EndTime.IsNone())
}

func (suite *ConfigTestSuite) TestFullYAML() {
	yaml := `
data_path: bars.csv
symbol: BTCUSD
volatility_window: 14
granularity: monthly
train_fraction: 0.7
seasonal_period: 24
columns: [close, volume]
start_time: 2020-01-06T00:00:00Z
end_time: 2020-01-20T00:00:00Z
`

	config, err := ParseConfig([]byte(yaml))
	suite.NoError(err)
	suite.Equal("BTCUSD", config.Symbol)
	suite.Equal(14, config.VolatilityWindow)
	suite.Equal(0.7, config.TrainFraction)
	suite.Equal([]string{"close", "volume"}, config.Columns)
	suite.True(config.StartTime.IsSome())
	suite.Equal(time.Date(2020, 1, 6, 0, 0, 0, 0, time.UTC), config.StartTime.Unwrap().UTC())
}

func (suite *ConfigTestSuite) TestMissingDataPath() {
	_, err := ParseConfig([]byte("symbol: LTCUSD\n"))
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))
}

func (suite *ConfigTestSuite) TestWindowTooSmall() {
	_, err := ParseConfig([]byte("data_path: bars.csv\nvolatility_window: 1\n"))
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))
}

func (suite *ConfigTestSuite) TestTrainFractionBounds() {
	_, err := ParseConfig([]byte("data_path: bars.csv\ntrain_fraction: 1.0\n"))
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))
}

func (suite *ConfigTestSuite) TestLoadConfigMissingFile() {
	_, err := LoadConfig("does-not-exist.yaml")
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))
}

func (suite *ConfigTestSuite) TestMalformedYAML() {
	_, err := ParseConfig([]byte("data_path: [unclosed"))
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))
}
