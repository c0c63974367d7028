package filter

import (
	"errors"
	"testing"

	"github.com/asaidimu/go-collisions/core/criteria"
	"github.com/asaidimu/go-collisions/core/dataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var fullColumns = []string{
	ColumnBorough, ColumnYear,
	ColumnVehicleType1, ColumnVehicleType2,
	ColumnContributingFactor1, ColumnContributingFactor2,
	ColumnPersonsInjured, ColumnPersonsKilled,
	ColumnOnStreetName, ColumnCrossStreetName, ColumnOffStreetName,
}

func collisions() *dataset.Dataset {
	return dataset.New(fullColumns, []dataset.Record{
		{
			ColumnBorough: "Brooklyn", ColumnYear: int64(2021),
			ColumnVehicleType1: "Sedan", ColumnVehicleType2: "Bus",
			ColumnContributingFactor1: "Unsafe Speed", ColumnContributingFactor2: nil,
			ColumnPersonsInjured: int64(1), ColumnPersonsKilled: int64(0),
			ColumnOnStreetName: "FLATBUSH AVENUE", ColumnCrossStreetName: nil, ColumnOffStreetName: nil,
		},
		{
			ColumnBorough: "Queens", ColumnYear: int64(2021),
			ColumnVehicleType1: "Taxi", ColumnVehicleType2: nil,
			ColumnContributingFactor1: "Driver Inattention/Distraction", ColumnContributingFactor2: "Unsafe Speed",
			ColumnPersonsInjured: int64(0), ColumnPersonsKilled: int64(1),
			ColumnOnStreetName: nil, ColumnCrossStreetName: "QUEENS BOULEVARD", ColumnOffStreetName: nil,
		},
		{
			ColumnBorough: "Brooklyn", ColumnYear: int64(2022),
			ColumnVehicleType1: "Pick-up Truck", ColumnVehicleType2: "Sedan",
			ColumnContributingFactor1: "Backing Unsafely", ColumnContributingFactor2: "Unspecified",
			ColumnPersonsInjured: int64(0), ColumnPersonsKilled: int64(0),
			ColumnOnStreetName: nil, ColumnCrossStreetName: nil, ColumnOffStreetName: "100 ATLANTIC AVENUE",
		},
	})
}

func boroughsOf(ds *dataset.Dataset) []any {
	values, _ := ds.Column(ColumnBorough)
	return values
}

func TestNewEvaluator(t *testing.T) {
	e := NewEvaluator(nil)
	assert.NotNil(t, e.logger)
	assert.Len(t, e.stages, len(criteria.Keys))

	for i, s := range e.stages {
		assert.Equal(t, criteria.Keys[i], s.key)
	}
}

func TestEvaluator_Evaluate(t *testing.T) {
	e := NewEvaluator(zap.NewNop())
	ds := collisions()

	t.Run("Empty criteria is identity", func(t *testing.T) {
		out, err := e.Evaluate(ds, criteria.Criteria{})
		require.NoError(t, err)
		assert.Equal(t, ds.Records(), out.Records())
		assert.Equal(t, ds.Columns(), out.Columns())
	})

	t.Run("Falsy values do not filter", func(t *testing.T) {
		out, err := e.Evaluate(ds, criteria.Criteria{criteria.KeyBorough: "", criteria.KeyYear: 0, criteria.KeySearch: "  "})
		require.NoError(t, err)
		assert.Equal(t, 3, out.Len())
	})

	t.Run("Borough and injured", func(t *testing.T) {
		out, err := e.Evaluate(ds, criteria.Criteria{criteria.KeyBorough: "Brooklyn", criteria.KeyInjuryType: "Injured"})
		require.NoError(t, err)
		require.Equal(t, 1, out.Len())
		assert.Equal(t, ds.Record(0), out.Record(0))
	})

	t.Run("Borough is case-sensitive", func(t *testing.T) {
		out, err := e.Evaluate(ds, criteria.Criteria{criteria.KeyBorough: "brooklyn"})
		require.NoError(t, err)
		assert.Equal(t, 0, out.Len())
	})

	t.Run("Year as string", func(t *testing.T) {
		out, err := e.Evaluate(ds, criteria.Criteria{criteria.KeyYear: "2021"})
		require.NoError(t, err)
		assert.Equal(t, []any{"Brooklyn", "Queens"}, boroughsOf(out))
	})

	t.Run("Year that is not an integer aborts", func(t *testing.T) {
		out, err := e.Evaluate(ds, criteria.Criteria{criteria.KeyBorough: "Brooklyn", criteria.KeyYear: "recent"})
		require.Error(t, err)
		assert.True(t, errors.Is(err, criteria.ErrInvalidYear))
		assert.Nil(t, out)
	})

	t.Run("Vehicle type matches either column", func(t *testing.T) {
		sedan, err := e.Evaluate(ds, criteria.Criteria{criteria.KeyVehicleType: "Sedan"})
		require.NoError(t, err)
		assert.Equal(t, 2, sedan.Len())

		bus, err := e.Evaluate(ds, criteria.Criteria{criteria.KeyVehicleType: "Bus"})
		require.NoError(t, err)
		require.Equal(t, 1, bus.Len())
		assert.Equal(t, ds.Record(0), bus.Record(0))
	})

	t.Run("Contributing factor matches either column", func(t *testing.T) {
		out, err := e.Evaluate(ds, criteria.Criteria{criteria.KeyContributingFactor: "Unsafe Speed"})
		require.NoError(t, err)
		assert.Equal(t, []any{"Brooklyn", "Queens"}, boroughsOf(out))
	})

	t.Run("Killed", func(t *testing.T) {
		out, err := e.Evaluate(ds, criteria.Criteria{criteria.KeyInjuryType: "Killed"})
		require.NoError(t, err)
		assert.Equal(t, []any{"Queens"}, boroughsOf(out))
	})

	t.Run("No injuries", func(t *testing.T) {
		out, err := e.Evaluate(ds, criteria.Criteria{criteria.KeyInjuryType: "None"})
		require.NoError(t, err)
		require.Equal(t, 1, out.Len())
		assert.Equal(t, ds.Record(2), out.Record(0))
	})

	t.Run("Unknown injury type is ignored", func(t *testing.T) {
		out, err := e.Evaluate(ds, criteria.Criteria{criteria.KeyInjuryType: "Severe"})
		require.NoError(t, err)
		assert.Equal(t, 3, out.Len())
	})

	t.Run("Search across street columns", func(t *testing.T) {
		out, err := e.Evaluate(ds, criteria.Criteria{criteria.KeySearch: " atlantic "})
		require.NoError(t, err)
		require.Equal(t, 1, out.Len())
		assert.Equal(t, ds.Record(2), out.Record(0))
	})

	t.Run("Search narrows after other criteria", func(t *testing.T) {
		out, err := e.Evaluate(ds, criteria.Criteria{criteria.KeyBorough: "Brooklyn", criteria.KeySearch: "SEDAN"})
		require.NoError(t, err)
		assert.Equal(t, 2, out.Len())

		out, err = e.Evaluate(ds, criteria.Criteria{criteria.KeyYear: 2021, criteria.KeySearch: "sedan"})
		require.NoError(t, err)
		assert.Equal(t, 1, out.Len())
	})

	t.Run("Source dataset is untouched", func(t *testing.T) {
		before := ds.Records()
		_, err := e.Evaluate(ds, criteria.Criteria{criteria.KeyBorough: "Queens"})
		require.NoError(t, err)
		assert.Equal(t, before, ds.Records())
		assert.Equal(t, 3, ds.Len())
	})

	t.Run("Nil dataset", func(t *testing.T) {
		out, err := e.Evaluate(nil, criteria.Criteria{criteria.KeyBorough: "Queens"})
		require.NoError(t, err)
		assert.Equal(t, 0, out.Len())
	})
}

func TestEvaluator_Properties(t *testing.T) {
	e := NewEvaluator(nil)
	ds := collisions()

	t.Run("Idempotence", func(t *testing.T) {
		c := criteria.Criteria{criteria.KeyBorough: "Brooklyn", criteria.KeySearch: "avenue"}
		once, err := e.Evaluate(ds, c)
		require.NoError(t, err)
		twice, err := e.Evaluate(once, c)
		require.NoError(t, err)
		assert.Equal(t, once.Records(), twice.Records())
	})

	t.Run("Conjunctive composition", func(t *testing.T) {
		both, err := e.Evaluate(ds, criteria.Criteria{criteria.KeyBorough: "Brooklyn", criteria.KeyYear: 2022})
		require.NoError(t, err)

		first, err := e.Evaluate(ds, criteria.Criteria{criteria.KeyBorough: "Brooklyn"})
		require.NoError(t, err)
		chained, err := e.Evaluate(first, criteria.Criteria{criteria.KeyYear: 2022})
		require.NoError(t, err)

		assert.Equal(t, both.Records(), chained.Records())
	})
}

func TestEvaluator_MissingColumns(t *testing.T) {
	e := NewEvaluator(nil)
	bare := dataset.New([]string{"collision_id", ColumnPersonsInjured}, []dataset.Record{
		{"collision_id": int64(1), ColumnPersonsInjured: int64(0)},
		{"collision_id": int64(2), ColumnPersonsInjured: int64(3)},
	})

	noOps := []criteria.Criteria{
		{criteria.KeyBorough: "Bronx"},
		{criteria.KeyYear: 2020},
		{criteria.KeyYear: "not a year"},
		{criteria.KeyVehicleType: "Sedan"},
		{criteria.KeyContributingFactor: "Unsafe Speed"},
		{criteria.KeyInjuryType: "Killed"},
		{criteria.KeyInjuryType: "None"},
	}

	for _, c := range noOps {
		out, err := e.Evaluate(bare, c)
		require.NoError(t, err)
		assert.Equal(t, bare.Records(), out.Records(), "criteria %v should be a no-op", c)
	}

	t.Run("Injured still applies", func(t *testing.T) {
		out, err := e.Evaluate(bare, criteria.Criteria{criteria.KeyInjuryType: "Injured"})
		require.NoError(t, err)
		assert.Equal(t, 1, out.Len())
	})

	t.Run("Search defaults to no match", func(t *testing.T) {
		out, err := e.Evaluate(bare, criteria.Criteria{criteria.KeySearch: "brooklyn"})
		require.NoError(t, err)
		assert.Equal(t, 0, out.Len())
		assert.Equal(t, bare.Columns(), out.Columns())
	})

	t.Run("Secondary vehicle column absent", func(t *testing.T) {
		single := dataset.New([]string{ColumnVehicleType1}, []dataset.Record{
			{ColumnVehicleType1: "Sedan"},
			{ColumnVehicleType1: "Bus"},
		})
		out, err := e.Evaluate(single, criteria.Criteria{criteria.KeyVehicleType: "Bus"})
		require.NoError(t, err)
		require.Equal(t, 1, out.Len())
		assert.Equal(t, "Bus", out.Value(0, ColumnVehicleType1))
	})
}

func TestOptions(t *testing.T) {
	opts := Options(collisions())

	assert.Equal(t, []string{"Brooklyn", "Queens"}, opts.Boroughs)
	assert.Equal(t, []int64{2021, 2022}, opts.Years)
	assert.Equal(t, []string{"Bus", "Pick-up Truck", "Sedan", "Taxi"}, opts.VehicleTypes)
	assert.Equal(t, []string{"Backing Unsafely", "Driver Inattention/Distraction", "Unsafe Speed", "Unspecified"}, opts.ContributingFactors)
	assert.Equal(t, []criteria.InjuryType{"Injured", "Killed", "None"}, opts.InjuryTypes)

	empty := Options(dataset.New(nil, nil))
	assert.Empty(t, empty.Boroughs)
	assert.Empty(t, empty.Years)
}
