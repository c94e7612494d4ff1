package types

import "time"

// PeriodBucket is one resampled period. Computed in a single pass over a
// chronologically sorted series and never mutated afterwards.
type PeriodBucket struct {
	// PeriodStart is the bucket-floor timestamp of the period.
	PeriodStart time.Time
	// Open is the first row's open within the bucket, by timestamp order.
	Open float64
	// High is the maximum high within the bucket.
	High float64
	// Low is the minimum low within the bucket.
	Low float64
	// Close is the last row's close within the bucket, by timestamp order.
	Close float64
	// Volume is the sum of volumes within the bucket.
	Volume float64
	// Rows is the number of records aggregated into the bucket.
	Rows int
}
