// Package dataset provides an immutable, column-probing view over tabular
// collision records. A Dataset is the unit that loaders produce and that the
// filter evaluator narrows; narrowing always yields a new Dataset and never
// touches the rows of the source.
package dataset

import (
	"slices"
)

// Record represents a single row of the dataset, keyed by column name.
// Values are typed scalars: string, int64, float64 or nil for a missing value.
type Record map[string]any

// Dataset is an ordered collection of records sharing an ordered column set.
// Columns are discovered at load time, so callers must probe with HasColumn
// before depending on a column being present.
type Dataset struct {
	columns []string
	index   map[string]struct{}
	records []Record
}

// New creates a Dataset from an ordered column list and its records. The
// column and record slices are copied; the records themselves are shared and
// must be treated as read-only.
func New(columns []string, records []Record) *Dataset {
	index := make(map[string]struct{}, len(columns))
	cols := make([]string, 0, len(columns))
	for _, c := range columns {
		if _, dup := index[c]; dup {
			continue
		}
		index[c] = struct{}{}
		cols = append(cols, c)
	}
	return &Dataset{
		columns: cols,
		index:   index,
		records: slices.Clone(records),
	}
}

// Columns returns a copy of the ordered column names.
func (d *Dataset) Columns() []string {
	return slices.Clone(d.columns)
}

// HasColumn reports whether the dataset carries the named column.
func (d *Dataset) HasColumn(name string) bool {
	_, ok := d.index[name]
	return ok
}

// HasColumns reports whether every named column is present.
func (d *Dataset) HasColumns(names ...string) bool {
	for _, n := range names {
		if !d.HasColumn(n) {
			return false
		}
	}
	return true
}

// Len returns the number of rows.
func (d *Dataset) Len() int {
	return len(d.records)
}

// Records returns the rows in order. The returned slice is a copy, the
// records are not.
func (d *Dataset) Records() []Record {
	return slices.Clone(d.records)
}

// Record returns the i-th row.
func (d *Dataset) Record(i int) Record {
	return d.records[i]
}

// Value returns the value of column name in row i. A record that lacks the
// key yields nil, the same as an explicit null.
func (d *Dataset) Value(i int, name string) any {
	return d.records[i][name]
}

// Column returns all values of the named column in row order, or false when
// the column is absent.
func (d *Dataset) Column(name string) ([]any, bool) {
	if !d.HasColumn(name) {
		return nil, false
	}
	values := make([]any, len(d.records))
	for i, r := range d.records {
		values[i] = r[name]
	}
	return values, true
}

// Select returns a new Dataset holding the rows for which mask is true, in
// their original order and with the original column set. The mask must have
// one entry per row.
func (d *Dataset) Select(mask Mask) *Dataset {
	kept := make([]Record, 0, mask.Count())
	for i, r := range d.records {
		if i < len(mask) && mask[i] {
			kept = append(kept, r)
		}
	}
	return &Dataset{
		columns: d.columns,
		index:   d.index,
		records: kept,
	}
}

// Equals builds a mask of rows whose column value equals value. Integer and
// float values are compared numerically so that an int64 column matches an
// int criterion. The second result is false when the column is absent.
func (d *Dataset) Equals(name string, value any) (Mask, bool) {
	if !d.HasColumn(name) {
		return nil, false
	}
	return d.MaskFunc(func(r Record) bool {
		return equalScalars(r[name], value)
	}), true
}

// MaskFunc evaluates fn against every row and collects the results.
func (d *Dataset) MaskFunc(fn func(Record) bool) Mask {
	m := make(Mask, len(d.records))
	for i, r := range d.records {
		m[i] = fn(r)
	}
	return m
}

func equalScalars(a, b any) bool {
	if a == nil || b == nil {
		return false
	}
	if as, ok := a.(string); ok {
		bs, ok := b.(string)
		return ok && as == bs
	}
	af, aok := ToFloat64(a)
	bf, bok := ToFloat64(b)
	if aok && bok {
		if _, isStr := b.(string); isStr {
			return false
		}
		return af == bf
	}
	return a == b
}
