// Package sqlite loads collision datasets from a SQLite table. The table's
// columns are discovered from the result set, so any subset of the
// collision columns is accepted; values are normalized to the dataset's
// scalar types.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/asaidimu/go-collisions/core/dataset"
	_ "github.com/mattn/go-sqlite3" // SQLite driver
	"go.uber.org/zap"
)

const (
	// DefaultTable is the table read when no table is configured.
	DefaultTable = "collisions"

	crashDateColumn = "crash_date"
	yearColumn      = "year"
)

// LoaderOptions configures how a table is read.
type LoaderOptions struct {
	Table string // Table to read.
	// DeriveYear appends a year column computed from crash_date when the
	// table has a crash date but no year column.
	DeriveYear bool
}

// DefaultLoaderOptions returns the options used when none are supplied.
func DefaultLoaderOptions() *LoaderOptions {
	return &LoaderOptions{
		Table:      DefaultTable,
		DeriveYear: true,
	}
}

// Loader reads a collision table into a dataset.
type Loader struct {
	db      *sql.DB
	logger  *zap.Logger
	options *LoaderOptions
}

// NewLoader creates a Loader over an open database handle.
func NewLoader(db *sql.DB, logger *zap.Logger, options *LoaderOptions) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	if options == nil {
		options = DefaultLoaderOptions()
	}
	if options.Table == "" {
		options.Table = DefaultTable
	}
	return &Loader{db: db, logger: logger, options: options}
}

// Open opens the SQLite database at path and returns a Loader for it along
// with the handle, which the caller must close.
func Open(path string, logger *zap.Logger, options *LoaderOptions) (*Loader, *sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to connect to database %s: %w", path, err)
	}
	return NewLoader(db, logger, options), db, nil
}

// quoteIdentifier quotes a table or column name for use in SQL.
func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// Load reads every row of the configured table.
func (l *Loader) Load(ctx context.Context) (*dataset.Dataset, error) {
	query := fmt.Sprintf("SELECT * FROM %s", quoteIdentifier(l.options.Table))
	l.logger.Debug("Loading collisions", zap.String("sql", query))

	rows, err := l.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to read table %s: %w", l.options.Table, err)
	}
	defer rows.Close()

	columns, records, err := readRows(rows)
	if err != nil {
		return nil, err
	}

	if l.options.DeriveYear && slices.Contains(columns, crashDateColumn) && !slices.Contains(columns, yearColumn) {
		columns = append(columns, yearColumn)
		for _, r := range records {
			r[yearColumn] = deriveYear(r[crashDateColumn])
		}
		l.logger.Debug("Derived year column from crash date")
	}

	l.logger.Info("Loaded collisions",
		zap.String("table", l.options.Table),
		zap.Int("rows", len(records)),
		zap.Strings("columns", columns),
	)
	return dataset.New(columns, records), nil
}

// readRows reads all rows from a *sql.Rows object and converts them into
// records with normalized scalar values.
func readRows(rows *sql.Rows) ([]string, []dataset.Record, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get columns: %w", err)
	}

	var results []dataset.Record
	for rows.Next() {
		values := make([]any, len(columns))
		scanArgs := make([]any, len(columns))
		for i := range values {
			scanArgs[i] = &values[i]
		}

		if err := rows.Scan(scanArgs...); err != nil {
			return nil, nil, fmt.Errorf("failed to scan row: %w", err)
		}

		row := make(dataset.Record, len(columns))
		for i, col := range columns {
			row[col] = normalize(values[i])
		}
		results = append(results, row)
	}

	if err = rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error after scanning rows: %w", err)
	}
	return columns, results, nil
}

// normalize maps driver values onto the dataset scalar types: string,
// int64, float64 or nil.
func normalize(val any) any {
	switch v := val.(type) {
	case nil:
		return nil
	case []byte:
		return string(v)
	case string:
		return v
	case int64:
		return v
	case float64:
		return v
	case bool:
		if v {
			return int64(1)
		}
		return int64(0)
	case time.Time:
		return v.Format(time.RFC3339)
	default:
		return fmt.Sprintf("%v", v)
	}
}

var (
	isoDate = regexp.MustCompile(`^(\d{4})-\d{2}-\d{2}`)
	usDate  = regexp.MustCompile(`^\d{1,2}/\d{1,2}/(\d{4})`)
)

// deriveYear extracts the year of an ISO (2021-07-04...) or US (07/04/2021)
// crash date. Unreadable dates yield nil.
func deriveYear(v any) any {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	s = strings.TrimSpace(s)
	for _, re := range []*regexp.Regexp{isoDate, usDate} {
		if m := re.FindStringSubmatch(s); m != nil {
			y, err := strconv.ParseInt(m[1], 10, 64)
			if err == nil {
				return y
			}
		}
	}
	return nil
}
