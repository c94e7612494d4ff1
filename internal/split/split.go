// Package split partitions a chronologically sorted series into training
// and testing sub-series by row position, not by date.
package split

import (
	"math"

	"github.com/quantex-lab/minbar/internal/types"
	"github.com/quantex-lab/minbar/pkg/errors"
)

// DefaultTrainFraction is the share of the series used for training.
const DefaultTrainFraction = 0.8

// Split partitions the series at floor(fraction * len). The split is
// positional on the series as given: re-sorting between normalization and
// splitting changes the result, so callers must sort once, before this
// stage. A series shorter than 2 records cannot be partitioned.
func Split(series types.MarketSeries, fraction float64) (types.SplitResult, error) {
	if fraction <= 0 || fraction >= 1 {
		return types.SplitResult{}, errors.Newf(errors.ErrCodeInvalidParameter,
			"train fraction must be in (0, 1), got %v", fraction)
	}

	if len(series) < 2 {
		return types.SplitResult{}, errors.NewInsufficientDataErrorf(2, len(series), "split",
			"split requires at least 2 records, got %d", len(series))
	}

	trainSize := int(math.Floor(fraction * float64(len(series))))

	return types.SplitResult{
		Training: series[:trainSize],
		Testing:  series[trainSize:],
	}, nil
}
