// Package loader reads the raw row table from a flat CSV file. All fields
// are kept as strings; typed parsing and validation happen in the
// normalizer, so a malformed or empty cell surfaces there with row context
// instead of being coerced at load time.
package loader

import (
	"io"
	"os"

	"github.com/gocarina/gocsv"

	"github.com/quantex-lab/minbar/pkg/errors"
)

// RawRow is one unparsed row of the input table. The csv tags must match
// the input column names exactly; the column order is insensitive.
type RawRow struct {
	UnixTimestamp string `csv:"Unix Timestamp"`
	Date          string `csv:"Date"`
	Symbol        string `csv:"Symbol"`
	Open          string `csv:"Open"`
	High          string `csv:"High"`
	Low           string `csv:"Low"`
	Close         string `csv:"Close"`
	Volume        string `csv:"Volume"`
}

// Load reads all rows from the CSV file at path. A missing header row is an
// error; there is no header-less variant.
func Load(path string) ([]RawRow, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeDataSourceUnavailable, err, "failed to open %s", path)
	}
	defer file.Close()

	return LoadReader(file)
}

// LoadReader reads all rows from r.
func LoadReader(r io.Reader) ([]RawRow, error) {
	var rows []RawRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, errors.Wrap(errors.ErrCodeParse, "failed to unmarshal CSV", err)
	}

	return rows, nil
}
