// Package datasource provides the bulk path for loading the input table:
// the CSV file is exposed to DuckDB as a view and streamed out as raw
// string rows, so a ~500K-row year of minute bars never has to be held by
// the Go CSV reader. All cells come back as VARCHAR; typed parsing stays in
// the normalizer.
package datasource

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/moznion/go-optional"
	"go.uber.org/zap"

	"github.com/quantex-lab/minbar/internal/loader"
	"github.com/quantex-lab/minbar/internal/logger"
	"github.com/quantex-lab/minbar/pkg/errors"
)

const rawColumns = `CAST("Unix Timestamp" AS VARCHAR), CAST("Date" AS VARCHAR), ` +
	`CAST("Symbol" AS VARCHAR), CAST("Open" AS VARCHAR), CAST("High" AS VARCHAR), ` +
	`CAST("Low" AS VARCHAR), CAST("Close" AS VARCHAR), CAST("Volume" AS VARCHAR)`

// DuckDBDataSource reads the raw row table through an in-process DuckDB
// instance.
type DuckDBDataSource struct {
	db     *sql.DB
	logger *logger.Logger
	sq     squirrel.StatementBuilderType
}

// NewDataSource opens a DuckDB database at the given path (":memory:" for
// ephemeral use). This is distinct from Initialize, which binds the input
// CSV file into the database as a view.
func NewDataSource(path string, log *logger.Logger) (*DuckDBDataSource, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDataSourceUnavailable, "failed to open DuckDB", err)
	}

	return &DuckDBDataSource{
		db:     db,
		logger: log,
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}, nil
}

// Initialize creates (or replaces) the market_data view over the CSV file.
// all_varchar keeps every cell a string so no value is coerced before the
// normalizer sees it.
func (d *DuckDBDataSource) Initialize(csvPath string) error {
	d.logger.Debug("initializing DuckDB view", zap.String("path", csvPath))

	if _, err := d.db.Exec(`DROP VIEW IF EXISTS market_data;`); err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to drop existing view", err)
	}

	// CREATE VIEW does not take bind parameters; escape the path inline.
	query := fmt.Sprintf(`
		CREATE VIEW market_data AS
		SELECT * FROM read_csv('%s', header=true, all_varchar=true);
	`, strings.ReplaceAll(csvPath, "'", "''"))

	if _, err := d.db.Exec(query); err != nil {
		return errors.Wrapf(errors.ErrCodeDataSourceUnavailable, err, "failed to create view over %s", csvPath)
	}

	return nil
}

// Count returns the number of rows, optionally restricted to an inclusive
// epoch-time range.
func (d *DuckDBDataSource) Count(start, end optional.Option[time.Time]) (int, error) {
	builder := d.sq.Select("COUNT(*)").From("market_data")
	builder = applyRange(builder, start, end)

	query, args, err := builder.ToSql()
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build count query", err)
	}

	var count int
	if err := d.db.QueryRow(query, args...).Scan(&count); err != nil {
		return 0, errors.Wrap(errors.ErrCodeQueryFailed, "count query failed", err)
	}

	return count, nil
}

// ReadAll streams every row in ascending epoch order, optionally restricted
// to an inclusive time range, and yields it to the caller.
func (d *DuckDBDataSource) ReadAll(start, end optional.Option[time.Time]) func(yield func(loader.RawRow, error) bool) {
	return func(yield func(loader.RawRow, error) bool) {
		builder := d.sq.Select(rawColumns).
			From("market_data").
			OrderBy(`CAST("Unix Timestamp" AS BIGINT) ASC`)
		builder = applyRange(builder, start, end)

		query, args, err := builder.ToSql()
		if err != nil {
			yield(loader.RawRow{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build read query", err))
			return
		}

		rows, err := d.db.Query(query, args...)
		if err != nil {
			yield(loader.RawRow{}, errors.Wrap(errors.ErrCodeQueryFailed, "read query failed", err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			var row loader.RawRow
			if err := rows.Scan(&row.UnixTimestamp, &row.Date, &row.Symbol,
				&row.Open, &row.High, &row.Low, &row.Close, &row.Volume); err != nil {
				yield(loader.RawRow{}, errors.Wrap(errors.ErrCodeQueryFailed, "row scan failed", err))
				return
			}

			if !yield(row, nil) {
				return
			}
		}

		if err := rows.Err(); err != nil {
			yield(loader.RawRow{}, errors.Wrap(errors.ErrCodeQueryFailed, "row iteration failed", err))
		}
	}
}

// ReadRows collects the streamed rows into a slice.
func (d *DuckDBDataSource) ReadRows(start, end optional.Option[time.Time]) ([]loader.RawRow, error) {
	var (
		collected []loader.RawRow
		readErr   error
	)

	d.ReadAll(start, end)(func(row loader.RawRow, err error) bool {
		if err != nil {
			readErr = err
			return false
		}

		collected = append(collected, row)

		return true
	})

	if readErr != nil {
		return nil, readErr
	}

	return collected, nil
}

// Close releases the database handle.
func (d *DuckDBDataSource) Close() error {
	return d.db.Close()
}

func applyRange(builder squirrel.SelectBuilder, start, end optional.Option[time.Time]) squirrel.SelectBuilder {
	if start.IsSome() {
		builder = builder.Where(squirrel.GtOrEq{`CAST("Unix Timestamp" AS BIGINT)`: start.Unwrap().Unix()})
	}

	if end.IsSome() {
		builder = builder.Where(squirrel.LtOrEq{`CAST("Unix Timestamp" AS BIGINT)`: end.Unwrap().Unix()})
	}

	return builder
}
