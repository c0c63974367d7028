package dataset

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() *Dataset {
	return New([]string{"borough", "year", "number_of_persons_injured"}, []Record{
		{"borough": "Brooklyn", "year": int64(2021), "number_of_persons_injured": int64(1)},
		{"borough": "Queens", "year": int64(2022), "number_of_persons_injured": int64(0)},
		{"borough": nil, "year": int64(2021), "number_of_persons_injured": int64(2)},
	})
}

func TestNew(t *testing.T) {
	t.Run("Duplicate columns collapse", func(t *testing.T) {
		ds := New([]string{"a", "b", "a"}, nil)
		assert.Equal(t, []string{"a", "b"}, ds.Columns())
		assert.Equal(t, 0, ds.Len())
	})

	t.Run("Column probing", func(t *testing.T) {
		ds := sample()
		assert.True(t, ds.HasColumn("borough"))
		assert.False(t, ds.HasColumn("on_street_name"))
		assert.True(t, ds.HasColumns("borough", "year"))
		assert.False(t, ds.HasColumns("borough", "missing"))
	})
}

func TestDataset_Select(t *testing.T) {
	ds := sample()
	out := ds.Select(Mask{true, false, true})

	require.Equal(t, 2, out.Len())
	assert.Equal(t, "Brooklyn", out.Value(0, "borough"))
	assert.Nil(t, out.Value(1, "borough"))
	assert.Equal(t, ds.Columns(), out.Columns())
	assert.Equal(t, 3, ds.Len(), "source must not be narrowed")
}

func TestDataset_Equals(t *testing.T) {
	ds := sample()

	t.Run("String column", func(t *testing.T) {
		m, ok := ds.Equals("borough", "Brooklyn")
		require.True(t, ok)
		assert.Equal(t, Mask{true, false, false}, m)
	})

	t.Run("Integer column matched by int", func(t *testing.T) {
		m, ok := ds.Equals("year", 2021)
		require.True(t, ok)
		assert.Equal(t, Mask{true, false, true}, m)
	})

	t.Run("Integer column not matched by string", func(t *testing.T) {
		m, ok := ds.Equals("year", "2021")
		require.True(t, ok)
		assert.Equal(t, Mask{false, false, false}, m)
	})

	t.Run("Missing column", func(t *testing.T) {
		m, ok := ds.Equals("vehicle_type_code_1", "Sedan")
		assert.False(t, ok)
		assert.Nil(t, m)
	})
}

func TestMask(t *testing.T) {
	a := Mask{true, false, true, false}
	b := Mask{true, true, false, false}

	assert.Equal(t, Mask{true, true, true, false}, a.Or(b))
	assert.Equal(t, Mask{true, false, false, false}, a.And(b))
	assert.Equal(t, 2, a.Count())
	assert.Equal(t, Mask{false, false}, NewMask(2, false))
	assert.Equal(t, Mask{true, true}, NewMask(2, true))
}

func TestToInt64(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected int64
		wantErr  bool
	}{
		{"int", 2021, 2021, false},
		{"int64", int64(2020), 2020, false},
		{"float64", 2019.0, 2019, false},
		{"float64 truncated", 2019.7, 2019, false},
		{"json number", json.Number("2018"), 2018, false},
		{"string", "2021", 2021, false},
		{"padded string", " 2021 ", 2021, false},
		{"decimal string", "2021.5", 0, true},
		{"word", "last year", 0, true},
		{"nil", nil, 0, true},
		{"bool", true, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToInt64(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestToString(t *testing.T) {
	assert.Equal(t, "", ToString(nil))
	assert.Equal(t, "Sedan", ToString("Sedan"))
	assert.Equal(t, "3", ToString(int64(3)))
	assert.Equal(t, "1.5", ToString(1.5))
	assert.Equal(t, "true", ToString(true))
}

func TestDataset_Distinct(t *testing.T) {
	ds := New([]string{"v1", "v2", "year"}, []Record{
		{"v1": "Sedan", "v2": "Bus", "year": int64(2022)},
		{"v1": "Taxi", "v2": nil, "year": 2021.0},
		{"v1": "Sedan", "v2": "", "year": nil},
	})

	assert.Equal(t, []string{"Bus", "Sedan", "Taxi"}, ds.Distinct("v1", "v2", "missing"))
	assert.Equal(t, []int64{2021, 2022}, ds.DistinctInts("year"))
	assert.Equal(t, []int64{}, ds.DistinctInts("missing"))
}
