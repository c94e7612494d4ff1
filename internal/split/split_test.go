package split

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/quantex-lab/minbar/internal/types"
	"github.com/quantex-lab/minbar/pkg/errors"
)

type SplitTestSuite struct {
	suite.Suite
}

func TestSplitSuite(t *testing.T) {
	suite.Run(t, new(SplitTestSuite))
}

func series(n int) types.MarketSeries {
	start := time.Date(2020, 1, 6, 0, 0, 0, 0, time.UTC)

	s := make(types.MarketSeries, n)
	for i := range s {
		s[i] = types.MarketRecord{
			Time:  start.Add(time.Duration(i) * time.Minute),
			Close: float64(i),
		}
	}

	return s
}

func (suite *SplitTestSuite) TestEightyTwentySplit() {
	result, err := Split(series(3000), DefaultTrainFraction)
	suite.NoError(err)
	suite.Len(result.Training, 2400)
	suite.Len(result.Testing, 600)
}

func (suite *SplitTestSuite) TestPartitionIsExhaustiveAndOrdered() {
	n := 101
	result, err := Split(series(n), DefaultTrainFraction)
	suite.NoError(err)
	suite.Equal(n, len(result.Training)+len(result.Testing))
	suite.Len(result.Training, 80) // floor(0.8*101)

	// suffix continues exactly where the prefix ends
	suite.Equal(79.0, result.Training[len(result.Training)-1].Close)
	suite.Equal(80.0, result.Testing[0].Close)
}

func (suite *SplitTestSuite) TestFloorArithmetic() {
	for _, n := range []int{2, 5, 7, 9, 10, 499} {
		result, err := Split(series(n), 0.8)
		suite.NoError(err)
		suite.Len(result.Training, int(0.8*float64(n)), "n=%d", n)
	}
}

func (suite *SplitTestSuite) TestDegenerateInput() {
	for _, n := range []int{0, 1} {
		_, err := Split(series(n), DefaultTrainFraction)
		suite.Error(err, "n=%d", n)
		suite.True(errors.IsInsufficientDataError(err))
	}
}

func (suite *SplitTestSuite) TestInvalidFraction() {
	for _, f := range []float64{0, 1, -0.5, 1.5} {
		_, err := Split(series(10), f)
		suite.Error(err, "fraction=%v", f)
		suite.True(errors.HasCode(err, errors.ErrCodeInvalidParameter))
	}
}
