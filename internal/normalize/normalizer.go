// Package normalize turns raw string rows into typed, calendar-enriched
// market records. It is a pure transform: input order is preserved and the
// caller is responsible for the final chronological sort before any stage
// that depends on ordering.
package normalize

import (
	"math"
	"strconv"
	"time"

	"github.com/quantex-lab/minbar/internal/loader"
	"github.com/quantex-lab/minbar/internal/types"
	"github.com/quantex-lab/minbar/pkg/errors"
)

// dateLayout is the explicit month/day/year hour:minute format of the Date
// column. Rows that do not match fail with a parse error; nothing is
// silently coerced.
const dateLayout = "1/2/2006 15:04"

// Normalizer parses raw rows into MarketRecords for a single instrument.
type Normalizer struct {
	symbol string
}

// NewNormalizer creates a Normalizer for the given instrument symbol.
// An empty symbol disables the symbol check.
func NewNormalizer(symbol string) *Normalizer {
	return &Normalizer{symbol: symbol}
}

// Normalize converts the raw rows into a new MarketSeries. The first
// malformed or null field aborts the whole normalization; offending rows
// are never dropped.
func (n *Normalizer) Normalize(rows []loader.RawRow) (types.MarketSeries, error) {
	series := make(types.MarketSeries, 0, len(rows))

	for i, row := range rows {
		record, err := n.normalizeRow(i, row)
		if err != nil {
			return nil, err
		}

		series = append(series, record)
	}

	return series, nil
}

func (n *Normalizer) normalizeRow(index int, row loader.RawRow) (types.MarketRecord, error) {
	seconds, err := strconv.ParseInt(row.UnixTimestamp, 10, 64)
	if err != nil {
		return types.MarketRecord{}, errors.Newf(errors.ErrCodeParse,
			"row %d: malformed Unix Timestamp %q", index, row.UnixTimestamp)
	}

	tradingDay, err := time.Parse(dateLayout, row.Date)
	if err != nil {
		return types.MarketRecord{}, errors.Newf(errors.ErrCodeParse,
			"row %d: malformed Date %q, expected %q", index, row.Date, dateLayout)
	}

	if row.Symbol == "" {
		return types.MarketRecord{}, errors.Newf(errors.ErrCodeValidation,
			"row %d: null Symbol", index)
	}

	if n.symbol != "" && row.Symbol != n.symbol {
		return types.MarketRecord{}, errors.Newf(errors.ErrCodeValidation,
			"row %d: symbol %q does not match configured instrument %q", index, row.Symbol, n.symbol)
	}

	open, err := parseField(index, "Open", row.Open)
	if err != nil {
		return types.MarketRecord{}, err
	}

	high, err := parseField(index, "High", row.High)
	if err != nil {
		return types.MarketRecord{}, err
	}

	low, err := parseField(index, "Low", row.Low)
	if err != nil {
		return types.MarketRecord{}, err
	}

	closePrice, err := parseField(index, "Close", row.Close)
	if err != nil {
		return types.MarketRecord{}, err
	}

	volume, err := parseField(index, "Volume", row.Volume)
	if err != nil {
		return types.MarketRecord{}, err
	}

	month := tradingDay.Month()

	return types.MarketRecord{
		Time:       time.Unix(seconds, 0).UTC(),
		TradingDay: tradingDay,
		Symbol:     row.Symbol,
		Open:       open,
		High:       high,
		Low:        low,
		Close:      closePrice,
		Volume:     volume,
		Month:      month,
		Quarter:    types.QuarterOfMonth(month),
	}, nil
}

// parseField parses a required OHLCV field. A null (empty) value, an
// unparseable number, a non-finite value or a negative value is a row-level
// validation error. Cross-field invariants like high >= max(open, close)
// are deliberately not enforced: extreme-but-valid observations must pass
// through untouched.
func parseField(index int, name, value string) (float64, error) {
	if value == "" {
		return 0, errors.Newf(errors.ErrCodeValidation, "row %d: null required field %s", index, name)
	}

	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, errors.Newf(errors.ErrCodeParse, "row %d: malformed %s %q", index, name, value)
	}

	if math.IsNaN(parsed) || math.IsInf(parsed, 0) {
		return 0, errors.Newf(errors.ErrCodeValidation, "row %d: non-finite %s %q", index, name, value)
	}

	if parsed < 0 {
		return 0, errors.Newf(errors.ErrCodeValidation, "row %d: negative %s %v", index, name, parsed)
	}

	return parsed, nil
}
