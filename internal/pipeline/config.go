package pipeline

import (
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/moznion/go-optional"
	"gopkg.in/yaml.v3"

	"github.com/quantex-lab/minbar/pkg/errors"
)

// Config drives one end-to-end pipeline run.
type Config struct {
	// DataPath is the input CSV file.
	DataPath string `yaml:"data_path" validate:"required"`
	// Symbol is the instrument every row must carry.
	Symbol string `yaml:"symbol" validate:"required"`
	// VolatilityWindow is the trailing window for the rolling volatility.
	VolatilityWindow int `yaml:"volatility_window" validate:"gte=2"`
	// Granularity selects the resampling mode: none, weekly or monthly.
	Granularity string `yaml:"granularity" validate:"required"`
	// TrainFraction is the share of the series used for training.
	TrainFraction float64 `yaml:"train_fraction" validate:"gt=0,lt=1"`
	// SeasonalPeriod is the number of observations per seasonal cycle;
	// 1440 for minute bars with daily periodicity.
	SeasonalPeriod int `yaml:"seasonal_period" validate:"gte=2"`
	// Columns are the numeric columns fed to the correlation matrix and the
	// column means.
	Columns []string `yaml:"columns" validate:"min=1"`
	// StartTime/EndTime optionally restrict the series to an inclusive
	// trading-day range before any derived stage runs.
	StartTime optional.Option[time.Time] `yaml:"start_time"`
	EndTime   optional.Option[time.Time] `yaml:"end_time"`
}

// UnmarshalYAML implements custom unmarshaling so the optional time bounds
// round-trip through pointer fields.
func (c *Config) UnmarshalYAML(unmarshal func(interface{}) error) error {
	type plainConfig struct {
		DataPath         string     `yaml:"data_path"`
		Symbol           string     `yaml:"symbol"`
		VolatilityWindow int        `yaml:"volatility_window"`
		Granularity      string     `yaml:"granularity"`
		TrainFraction    float64    `yaml:"train_fraction"`
		SeasonalPeriod   int        `yaml:"seasonal_period"`
		Columns          []string   `yaml:"columns"`
		StartTime        *time.Time `yaml:"start_time"`
		EndTime          *time.Time `yaml:"end_time"`
	}

	// seed from the current values so fields absent from the YAML keep
	// their defaults instead of zeroing out
	plain := plainConfig{
		DataPath:         c.DataPath,
		Symbol:           c.Symbol,
		VolatilityWindow: c.VolatilityWindow,
		Granularity:      c.Granularity,
		TrainFraction:    c.TrainFraction,
		SeasonalPeriod:   c.SeasonalPeriod,
		Columns:          c.Columns,
	}
	if err := unmarshal(&plain); err != nil {
		return err
	}

	c.DataPath = plain.DataPath
	c.Symbol = plain.Symbol
	c.VolatilityWindow = plain.VolatilityWindow
	c.Granularity = plain.Granularity
	c.TrainFraction = plain.TrainFraction
	c.SeasonalPeriod = plain.SeasonalPeriod
	c.Columns = plain.Columns

	if plain.StartTime != nil {
		c.StartTime = optional.Some(*plain.StartTime)
	}

	if plain.EndTime != nil {
		c.EndTime = optional.Some(*plain.EndTime)
	}

	return nil
}

// DefaultConfig returns the report defaults for the LTC/USD dataset.
func DefaultConfig() Config {
	return Config{
		Symbol:           "LTCUSD",
		VolatilityWindow: 7,
		Granularity:      "weekly",
		TrainFraction:    0.8,
		SeasonalPeriod:   1440,
		Columns:          []string{"open", "high", "low", "close", "volume", "daily_return", "volatility"},
	}
}

// ParseConfig unmarshals a YAML config on top of the defaults and validates
// the result.
func ParseConfig(data []byte) (Config, error) {
	config := DefaultConfig()

	if err := yaml.Unmarshal(data, &config); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to parse config", err)
	}

	if err := validator.New().Struct(config); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid config", err)
	}

	return config, nil
}

// LoadConfig reads and parses the YAML config at path.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to read config %s", path)
	}

	return ParseConfig(data)
}
