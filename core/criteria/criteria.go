// Package criteria defines the transient parameter object that carries the
// active constraints of one filter evaluation. Criteria are produced either by
// a caller (dropdown selections, request bodies) or by the query interpreter,
// and are never persisted.
package criteria

import (
	"errors"
	"fmt"
	"strings"

	"github.com/asaidimu/go-collisions/core/dataset"
)

// Key names a recognized criterion.
type Key string

// Recognized criteria keys. Any other key is ignored.
const (
	KeyBorough            Key = "borough"
	KeyYear               Key = "year"
	KeyVehicleType        Key = "vehicle_type"
	KeyContributingFactor Key = "contributing_factor"
	KeyInjuryType         Key = "injury_type"
	KeySearch             Key = "search"
)

// Keys lists the recognized keys in evaluation order.
var Keys = []Key{
	KeyBorough,
	KeyYear,
	KeyVehicleType,
	KeyContributingFactor,
	KeyInjuryType,
	KeySearch,
}

// IsRecognized reports whether k is one of the recognized keys.
func (k Key) IsRecognized() bool {
	for _, known := range Keys {
		if k == known {
			return true
		}
	}
	return false
}

// InjuryType enumerates the injury-severity buckets.
type InjuryType string

const (
	InjuryTypeInjured InjuryType = "Injured"
	InjuryTypeKilled  InjuryType = "Killed"
	InjuryTypeNone    InjuryType = "None"
)

// InjuryTypes lists the enumeration in display order.
var InjuryTypes = []InjuryType{InjuryTypeInjured, InjuryTypeKilled, InjuryTypeNone}

// ErrInvalidYear is returned when the year criterion cannot be read as an integer.
var ErrInvalidYear = errors.New("invalid year criterion")

// Criteria maps recognized keys to their values. A key that is absent or
// holds a falsy value (nil, "", 0, false) does not constrain the evaluation.
type Criteria map[Key]any

// FromMap builds Criteria from a loosely typed mapping such as a decoded JSON
// body, dropping every unrecognized key.
func FromMap(m map[string]any) Criteria {
	c := make(Criteria, len(m))
	for k, v := range m {
		key := Key(k)
		if !key.IsRecognized() {
			continue
		}
		c[key] = v
	}
	return c
}

// Map renders the criteria as a plain string-keyed map, omitting inactive keys.
func (c Criteria) Map() map[string]any {
	out := make(map[string]any, len(c))
	for k, v := range c {
		if IsActive(v) {
			out[string(k)] = v
		}
	}
	return out
}

// IsActive reports whether a criterion value constrains the evaluation.
func IsActive(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case string:
		return val != ""
	case bool:
		return val
	default:
		if f, ok := dataset.ToFloat64(v); ok {
			return f != 0
		}
		return true
	}
}

// Active reports whether key k is present with an active value.
func (c Criteria) Active(k Key) bool {
	v, ok := c[k]
	return ok && IsActive(v)
}

// String returns the value of k when it is an active criterion. Non-string
// values are rendered with their default formatting.
func (c Criteria) String(k Key) (string, bool) {
	if !c.Active(k) {
		return "", false
	}
	if s, ok := c[k].(string); ok {
		return s, true
	}
	return fmt.Sprintf("%v", c[k]), true
}

// Year returns the year criterion coerced to an integer. The second result
// is false when no year constraint is active. A value that cannot be coerced
// yields an error wrapping ErrInvalidYear.
func (c Criteria) Year() (int64, bool, error) {
	if !c.Active(KeyYear) {
		return 0, false, nil
	}
	y, err := dataset.ToInt64(c[KeyYear])
	if err != nil {
		return 0, false, fmt.Errorf("%w: %v", ErrInvalidYear, err)
	}
	return y, true, nil
}

// InjuryType returns the active injury-type criterion.
func (c Criteria) InjuryType() (InjuryType, bool) {
	s, ok := c.String(KeyInjuryType)
	if !ok {
		return "", false
	}
	return InjuryType(s), true
}

// Search returns the trimmed search text when it is non-empty.
func (c Criteria) Search() (string, bool) {
	s, ok := c.String(KeySearch)
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}

// IsEmpty reports whether no criterion is active.
func (c Criteria) IsEmpty() bool {
	for _, k := range Keys {
		if c.Active(k) {
			return false
		}
	}
	return true
}

// Clone returns a shallow copy.
func (c Criteria) Clone() Criteria {
	out := make(Criteria, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// Merge combines explicitly supplied criteria with criteria extracted from
// free text. Active explicit values win; parsed values only fill keys the
// caller left inactive.
func Merge(explicit, parsed Criteria) Criteria {
	out := explicit.Clone()
	for k, v := range parsed {
		if !IsActive(v) || out.Active(k) {
			continue
		}
		out[k] = v
	}
	return out
}
