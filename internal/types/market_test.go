package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type MarketTestSuite struct {
	suite.Suite
}

func TestMarketSuite(t *testing.T) {
	suite.Run(t, new(MarketTestSuite))
}

func (suite *MarketTestSuite) TestQuarterOfMonth() {
	expected := map[time.Month]Quarter{
		time.January:   QuarterQ1,
		time.February:  QuarterQ1,
		time.March:     QuarterQ1,
		time.April:     QuarterQ2,
		time.May:       QuarterQ2,
		time.June:      QuarterQ2,
		time.July:      QuarterQ3,
		time.August:    QuarterQ3,
		time.September: QuarterQ3,
		time.October:   QuarterQ4,
		time.November:  QuarterQ4,
		time.December:  QuarterQ4,
	}

	for month, quarter := range expected {
		suite.Equal(quarter, QuarterOfMonth(month), "month %s", month)
	}
}

func (suite *MarketTestSuite) TestSortChronologicalDoesNotMutate() {
	t0 := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	series := MarketSeries{
		{Time: t0.Add(2 * time.Minute), Close: 3},
		{Time: t0, Close: 1},
		{Time: t0.Add(time.Minute), Close: 2},
	}

	sorted := series.SortChronological()

	suite.Equal([]float64{1, 2, 3}, sorted.Closes())
	// original order untouched
	suite.Equal([]float64{3, 1, 2}, series.Closes())
}

func (suite *MarketTestSuite) TestSortChronologicalStable() {
	t0 := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	series := MarketSeries{
		{Time: t0, Close: 1},
		{Time: t0, Close: 2},
	}

	sorted := series.SortChronological()
	suite.Equal([]float64{1, 2}, sorted.Closes())
}
