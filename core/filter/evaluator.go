// Package filter narrows a collision dataset to the rows matching a set of
// criteria. Each recognized criterion is a stage producing a row mask over
// the current dataset; stages are applied in a fixed order and combine
// conjunctively. A stage whose backing columns are absent is skipped.
package filter

import (
	"fmt"
	"strings"

	"github.com/asaidimu/go-collisions/core/criteria"
	"github.com/asaidimu/go-collisions/core/dataset"
	"go.uber.org/zap"
)

// stageFunc computes the mask of rows in ds that satisfy one criterion. The
// boolean result is false when the stage does not apply to ds, in which case
// the mask is ignored.
type stageFunc func(ds *dataset.Dataset, c criteria.Criteria) (dataset.Mask, bool, error)

type stage struct {
	key   criteria.Key
	apply stageFunc
}

// Evaluator applies criteria to datasets. It holds no per-call state and is
// safe for concurrent use.
type Evaluator struct {
	stages []stage
	logger *zap.Logger
}

// NewEvaluator creates a new Evaluator instance.
func NewEvaluator(logger *zap.Logger) *Evaluator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Evaluator{
		stages: []stage{
			{key: criteria.KeyBorough, apply: boroughStage},
			{key: criteria.KeyYear, apply: yearStage},
			{key: criteria.KeyVehicleType, apply: dualColumnStage(criteria.KeyVehicleType, ColumnVehicleType1, ColumnVehicleType2)},
			{key: criteria.KeyContributingFactor, apply: dualColumnStage(criteria.KeyContributingFactor, ColumnContributingFactor1, ColumnContributingFactor2)},
			{key: criteria.KeyInjuryType, apply: injuryStage},
			{key: criteria.KeySearch, apply: searchStage},
		},
		logger: logger,
	}
}

// Evaluate returns a new dataset holding the rows of ds that satisfy every
// active criterion, in their original order. ds is never modified. The only
// failure is a year criterion that cannot be read as an integer, which
// aborts the whole evaluation.
func (e *Evaluator) Evaluate(ds *dataset.Dataset, c criteria.Criteria) (*dataset.Dataset, error) {
	if ds == nil {
		ds = dataset.New(nil, nil)
	}
	current := ds.Select(dataset.NewMask(ds.Len(), true))

	for _, s := range e.stages {
		if !c.Active(s.key) {
			continue
		}
		mask, applied, err := s.apply(current, c)
		if err != nil {
			return nil, fmt.Errorf("%s filter failed: %w", s.key, err)
		}
		if !applied {
			e.logger.Debug("Criterion skipped", zap.String("criterion", string(s.key)))
			continue
		}
		current = current.Select(mask)
		e.logger.Debug("Rows remaining after criterion",
			zap.String("criterion", string(s.key)),
			zap.Int("count", current.Len()),
		)
	}
	return current, nil
}

func boroughStage(ds *dataset.Dataset, c criteria.Criteria) (dataset.Mask, bool, error) {
	borough, _ := c.String(criteria.KeyBorough)
	mask, ok := ds.Equals(ColumnBorough, borough)
	return mask, ok, nil
}

func yearStage(ds *dataset.Dataset, c criteria.Criteria) (dataset.Mask, bool, error) {
	if !ds.HasColumn(ColumnYear) {
		return nil, false, nil
	}
	year, ok, err := c.Year()
	if err != nil || !ok {
		return nil, false, err
	}
	mask, _ := ds.Equals(ColumnYear, year)
	return mask, true, nil
}

// dualColumnStage matches a value recorded in either of two parallel
// columns. The primary column must exist; the secondary is optional.
func dualColumnStage(key criteria.Key, primary, secondary string) stageFunc {
	return func(ds *dataset.Dataset, c criteria.Criteria) (dataset.Mask, bool, error) {
		value, _ := c.String(key)
		mask, ok := ds.Equals(primary, value)
		if !ok {
			return nil, false, nil
		}
		if other, ok := ds.Equals(secondary, value); ok {
			mask = mask.Or(other)
		}
		return mask, true, nil
	}
}

func injuryStage(ds *dataset.Dataset, c criteria.Criteria) (dataset.Mask, bool, error) {
	injury, _ := c.InjuryType()
	switch injury {
	case criteria.InjuryTypeInjured:
		return positiveCount(ds, ColumnPersonsInjured)
	case criteria.InjuryTypeKilled:
		return positiveCount(ds, ColumnPersonsKilled)
	case criteria.InjuryTypeNone:
		if !ds.HasColumns(ColumnPersonsInjured, ColumnPersonsKilled) {
			return nil, false, nil
		}
		return ds.MaskFunc(func(r dataset.Record) bool {
			return countEquals(r[ColumnPersonsInjured], 0) && countEquals(r[ColumnPersonsKilled], 0)
		}), true, nil
	default:
		return nil, false, nil
	}
}

func positiveCount(ds *dataset.Dataset, column string) (dataset.Mask, bool, error) {
	if !ds.HasColumn(column) {
		return nil, false, nil
	}
	return ds.MaskFunc(func(r dataset.Record) bool {
		n, ok := count(r[column])
		return ok && n > 0
	}), true, nil
}

func countEquals(v any, want float64) bool {
	n, ok := count(v)
	return ok && n == want
}

// count reads a numeric count column. Strings are not counts, and missing
// values never satisfy a threshold.
func count(v any) (float64, bool) {
	if _, isString := v.(string); isString || v == nil {
		return 0, false
	}
	return dataset.ToFloat64(v)
}

// searchStage keeps rows where any searchable column contains the search
// text, case-insensitively. With none of the searchable columns present no
// row matches.
func searchStage(ds *dataset.Dataset, c criteria.Criteria) (dataset.Mask, bool, error) {
	term, ok := c.Search()
	if !ok {
		return nil, false, nil
	}
	term = strings.ToLower(term)

	mask := dataset.NewMask(ds.Len(), false)
	for _, column := range SearchColumns {
		if !ds.HasColumn(column) {
			continue
		}
		mask = mask.Or(ds.MaskFunc(func(r dataset.Record) bool {
			return strings.Contains(strings.ToLower(dataset.ToString(r[column])), term)
		}))
	}
	return mask, true, nil
}
