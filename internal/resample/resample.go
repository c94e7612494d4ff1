// Package resample aggregates a minute-bar series into coarser fixed-width
// calendar buckets using OHLCV-specific reduction rules: first open, max
// high, min low, last close, summed volume.
package resample

import (
	"time"

	"github.com/quantex-lab/minbar/internal/types"
	"github.com/quantex-lab/minbar/pkg/errors"
)

// Granularity is the closed set of supported resampling modes. Anything
// outside this set is rejected at the call boundary; there is no silent
// fallthrough.
type Granularity string

const (
	// GranularityNone performs no aggregation: one bucket per record.
	GranularityNone Granularity = "none"
	// GranularityWeekly buckets by ISO week, Monday 00:00 UTC floor.
	GranularityWeekly Granularity = "weekly"
	// GranularityMonthly buckets by calendar month, first-of-month floor.
	GranularityMonthly Granularity = "monthly"
)

// ParseGranularity validates a user-supplied granularity string.
func ParseGranularity(s string) (Granularity, error) {
	switch Granularity(s) {
	case GranularityNone, GranularityWeekly, GranularityMonthly:
		return Granularity(s), nil
	default:
		return "", errors.Newf(errors.ErrCodeInvalidGranularity, "unsupported granularity: %q", s)
	}
}

// Resample aggregates the series into buckets of the requested granularity.
// The input is defensively sorted (on a copy); buckets are emitted in
// ascending key order and a bucket with zero rows never appears. A bucket
// with exactly one row gets that row's OHLC values from the general rule,
// not from a special case.
func Resample(series types.MarketSeries, granularity Granularity) ([]types.PeriodBucket, error) {
	if _, err := ParseGranularity(string(granularity)); err != nil {
		return nil, err
	}

	sorted := series.SortChronological()
	buckets := make([]types.PeriodBucket, 0)

	// The floor function is monotone in time, so records sharing a bucket key
	// are contiguous in the sorted series and one pass suffices.
	for _, record := range sorted {
		key := bucketFloor(record.TradingDay, granularity)

		if len(buckets) == 0 || !buckets[len(buckets)-1].PeriodStart.Equal(key) {
			buckets = append(buckets, types.PeriodBucket{
				PeriodStart: key,
				Open:        record.Open,
				High:        record.High,
				Low:         record.Low,
				Close:       record.Close,
				Volume:      record.Volume,
				Rows:        1,
			})

			continue
		}

		bucket := &buckets[len(buckets)-1]
		if record.High > bucket.High {
			bucket.High = record.High
		}

		if record.Low < bucket.Low {
			bucket.Low = record.Low
		}

		bucket.Close = record.Close
		bucket.Volume += record.Volume
		bucket.Rows++
	}

	return buckets, nil
}

// FilterRange returns the records whose trading day falls within the
// inclusive [start, end] bounds. Supplied by the dashboard collaborator as
// plain values; the input series is not modified.
func FilterRange(series types.MarketSeries, start, end time.Time) types.MarketSeries {
	filtered := make(types.MarketSeries, 0, len(series))

	for _, record := range series {
		if record.TradingDay.Before(start) || record.TradingDay.After(end) {
			continue
		}

		filtered = append(filtered, record)
	}

	return filtered
}

// bucketFloor maps a trading day to the start of its bucket.
func bucketFloor(t time.Time, granularity Granularity) time.Time {
	switch granularity {
	case GranularityWeekly:
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
		// back up to Monday
		offset := (int(day.Weekday()) + 6) % 7

		return day.AddDate(0, 0, -offset)
	case GranularityMonthly:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	default:
		// GranularityNone: per-record bucket keyed by the record itself.
		return t
	}
}
