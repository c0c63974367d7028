package dataset

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
)

// ToFloat64 converts a value of various numeric types to a float64. It
// returns the converted value and whether the conversion was successful.
// Numeric strings are parsed.
func ToFloat64(v any) (float64, bool) {
	switch val := v.(type) {
	case int:
		return float64(val), true
	case int8:
		return float64(val), true
	case int16:
		return float64(val), true
	case int32:
		return float64(val), true
	case int64:
		return float64(val), true
	case uint:
		return float64(val), true
	case uint32:
		return float64(val), true
	case uint64:
		return float64(val), true
	case float32:
		return float64(val), true
	case float64:
		return val, true
	case json.Number:
		f, err := val.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// ToInt64 converts a value to an int64. Floats are truncated toward zero and
// strings must hold a base-10 integer, optionally surrounded by whitespace.
func ToInt64(v any) (int64, error) {
	switch val := v.(type) {
	case int:
		return int64(val), nil
	case int8:
		return int64(val), nil
	case int16:
		return int64(val), nil
	case int32:
		return int64(val), nil
	case int64:
		return val, nil
	case uint:
		return int64(val), nil
	case uint32:
		return int64(val), nil
	case uint64:
		if val > math.MaxInt64 {
			return 0, fmt.Errorf("value %d overflows int64", val)
		}
		return int64(val), nil
	case float32:
		return floatToInt64(float64(val))
	case float64:
		return floatToInt64(val)
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return i, nil
		}
		f, err := val.Float64()
		if err != nil {
			return 0, fmt.Errorf("invalid number %q: %w", val.String(), err)
		}
		return floatToInt64(f)
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(val), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid integer literal %q: %w", val, err)
		}
		return i, nil
	case nil:
		return 0, fmt.Errorf("cannot convert null to integer")
	default:
		return 0, fmt.Errorf("cannot convert %T to integer", v)
	}
}

func floatToInt64(f float64) (int64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("cannot convert %v to integer", f)
	}
	return int64(f), nil
}

// ToString renders a scalar for text matching. Missing values become the
// empty string.
func ToString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return string(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case int:
		return strconv.Itoa(val)
	case float64:
		if math.IsNaN(val) {
			return ""
		}
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// Distinct returns the sorted set of non-empty string renderings found in
// the named columns. Absent columns are ignored.
func (d *Dataset) Distinct(columns ...string) []string {
	seen := make(map[string]struct{})
	for _, c := range columns {
		values, ok := d.Column(c)
		if !ok {
			continue
		}
		for _, v := range values {
			s := strings.TrimSpace(ToString(v))
			if s == "" {
				continue
			}
			seen[s] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	slices.Sort(out)
	return out
}

// DistinctInts returns the ascending set of integer values of a column.
// Values that cannot be read as integers are skipped.
func (d *Dataset) DistinctInts(column string) []int64 {
	values, ok := d.Column(column)
	if !ok {
		return []int64{}
	}
	seen := make(map[int64]struct{})
	for _, v := range values {
		if v == nil {
			continue
		}
		i, err := ToInt64(v)
		if err != nil {
			continue
		}
		seen[i] = struct{}{}
	}
	out := make([]int64, 0, len(seen))
	for i := range seen {
		out = append(out, i)
	}
	slices.Sort(out)
	return out
}
