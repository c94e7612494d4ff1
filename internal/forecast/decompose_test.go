package forecast

import (
	"math"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/quantex-lab/minbar/pkg/errors"
)

type DecomposeTestSuite struct {
	suite.Suite
}

func TestDecomposeSuite(t *testing.T) {
	suite.Run(t, new(DecomposeTestSuite))
}

// seasonalSeries builds trend + sinusoidal season over the given period.
func seasonalSeries(n, period int) []float64 {
	values := make([]float64, n)
	for i := range values {
		trend := 100 + 0.05*float64(i)
		season := 3 * math.Sin(2*math.Pi*float64(i)/float64(period))
		values[i] = trend + season
	}

	return values
}

func (suite *DecomposeTestSuite) TestInsufficientPeriods() {
	_, err := Decompose(seasonalSeries(47, 24), 24)
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInsufficientPeriods))

	_, err = Decompose(seasonalSeries(48, 24), 24)
	suite.NoError(err)
}

func (suite *DecomposeTestSuite) TestInvalidPeriod() {
	_, err := Decompose(seasonalSeries(48, 24), 1)
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidParameter))
}

func (suite *DecomposeTestSuite) TestBoundaryIsNaN() {
	period := 24
	d, err := Decompose(seasonalSeries(96, period), period)
	suite.NoError(err)

	half := period / 2
	for i := 0; i < half; i++ {
		suite.True(math.IsNaN(d.Trend[i]), "leading index %d", i)
		suite.True(math.IsNaN(d.Residual[i]), "leading index %d", i)
	}

	for i := len(d.Trend) - half; i < len(d.Trend); i++ {
		suite.True(math.IsNaN(d.Trend[i]), "trailing index %d", i)
	}

	suite.False(math.IsNaN(d.Trend[half]))
}

func (suite *DecomposeTestSuite) TestAdditivity() {
	period := 24
	d, err := Decompose(seasonalSeries(120, period), period)
	suite.NoError(err)

	for i := range d.Observed {
		if math.IsNaN(d.Trend[i]) {
			continue
		}

		reconstructed := d.Trend[i] + d.Seasonal[i] + d.Residual[i]
		suite.InDelta(d.Observed[i], reconstructed, 1e-9, "index %d", i)
	}
}

func (suite *DecomposeTestSuite) TestSeasonalSumsToZeroOverOnePeriod() {
	period := 24
	d, err := Decompose(seasonalSeries(120, period), period)
	suite.NoError(err)

	var sum float64
	for p := 0; p < period; p++ {
		sum += d.Seasonal[p]
	}

	suite.InDelta(0.0, sum, 1e-9)
}

func (suite *DecomposeTestSuite) TestRecoversLinearTrend() {
	period := 24
	d, err := Decompose(seasonalSeries(240, period), period)
	suite.NoError(err)

	// the centered MA over a full period removes the sinusoid exactly up to
	// floating error, leaving the linear trend
	for i := period; i < 240-period; i++ {
		expected := 100 + 0.05*float64(i)
		suite.InDelta(expected, d.Trend[i], 1e-6, "index %d", i)
	}
}

func (suite *DecomposeTestSuite) TestDoesNotMutateInput() {
	values := seasonalSeries(96, 24)
	original := make([]float64, len(values))
	copy(original, values)

	_, err := Decompose(values, 24)
	suite.NoError(err)
	suite.Equal(original, values)
}
