package types

import (
	"sort"
	"time"
)

// Quarter is a calendar quarter derived from fixed 3-month blocks.
type Quarter string

const (
	QuarterQ1 Quarter = "Q1"
	QuarterQ2 Quarter = "Q2"
	QuarterQ3 Quarter = "Q3"
	QuarterQ4 Quarter = "Q4"
)

// QuarterOfMonth maps a month to its calendar quarter using fixed blocks:
// {1,2,3} -> Q1, {4,5,6} -> Q2, {7,8,9} -> Q3, {10,11,12} -> Q4.
// The mapping is intentionally independent of any calendar library's
// quarter logic so that fiscal-year conventions can never leak in.
func QuarterOfMonth(month time.Month) Quarter {
	switch {
	case month >= time.January && month <= time.March:
		return QuarterQ1
	case month >= time.April && month <= time.June:
		return QuarterQ2
	case month >= time.July && month <= time.September:
		return QuarterQ3
	default:
		return QuarterQ4
	}
}

// MarketRecord is one normalized minute-bar observation.
type MarketRecord struct {
	// Time is the epoch-derived instant, UTC, no timezone conversion.
	Time time.Time
	// TradingDay is the civil date-time parsed from the human-readable field.
	TradingDay time.Time
	// Symbol is the instrument, fixed for the whole series.
	Symbol string
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
	// Month is derived from TradingDay, 1-12.
	Month time.Month
	// Quarter is derived from Month via QuarterOfMonth.
	Quarter Quarter
}

// MarketSeries is an ordered sequence of records, insertion order =
// chronological order once SortChronological has run. Stages treat a series
// as immutable and return new slices instead of mutating in place.
type MarketSeries []MarketRecord

// SortChronological returns a copy of the series sorted ascending by Time.
// The receiver is left untouched.
func (s MarketSeries) SortChronological() MarketSeries {
	sorted := make(MarketSeries, len(s))
	copy(sorted, s)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Time.Before(sorted[j].Time)
	})

	return sorted
}

// Closes extracts the close prices in series order.
func (s MarketSeries) Closes() []float64 {
	closes := make([]float64, len(s))
	for i, r := range s {
		closes[i] = r.Close
	}

	return closes
}
