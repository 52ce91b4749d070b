package schema

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValuesJSONNonFinite(t *testing.T) {
	in := Values{1.5, math.NaN(), math.Inf(1), math.Inf(-1), 0}

	data, err := json.Marshal(in)
	require.NoError(t, err)
	assert.JSONEq(t, `[1.5, "NaN", "+Inf", "-Inf", 0]`, string(data))

	var out Values
	require.NoError(t, json.Unmarshal(data, &out))
	require.Len(t, out, 5)
	assert.Equal(t, 1.5, out[0])
	assert.True(t, math.IsNaN(out[1]))
	assert.True(t, math.IsInf(out[2], 1))
	assert.True(t, math.IsInf(out[3], -1))
	assert.Equal(t, 0.0, out[4])
}

func TestValuesUnmarshalInvalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"bad string", `["abc"]`},
		{"object element", `[{"a": 1}]`},
		{"not an array", `{"a": 1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out Values
			assert.Error(t, json.Unmarshal([]byte(tt.input), &out))
		})
	}
}

func TestSeriesAccessors(t *testing.T) {
	s := Series{
		Report:  GrowthReport,
		Country: "All",
		Index:   []time.Time{time.Date(2016, 1, 31, 0, 0, 0, 0, time.UTC)},
		Dates:   []string{"31-01-2016"},
		Columns: []Column{
			{Name: "homeowner", Values: Values{10}},
			{Name: "housesitter", Values: Values{20}},
		},
	}

	v, ok := s.Get("housesitter")
	require.True(t, ok)
	assert.Equal(t, Values{20}, v)

	_, ok = s.Get("missing")
	assert.False(t, ok)

	assert.Equal(t, []string{"homeowner", "housesitter"}, s.Names())
	assert.Equal(t, 1, s.Len())

	m := s.Map()
	assert.Equal(t, []string{"31-01-2016"}, m["datestr"])
	assert.Equal(t, Values{10}, m["homeowner"])
}

func TestWindowContains(t *testing.T) {
	w := Window{
		Start: time.Date(2016, 1, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2017, 11, 30, 0, 0, 0, 0, time.UTC),
	}

	tests := []struct {
		name string
		t    time.Time
		want bool
	}{
		{"start day", time.Date(2016, 1, 1, 0, 0, 0, 0, time.UTC), true},
		{"before start", time.Date(2015, 12, 31, 23, 59, 0, 0, time.UTC), false},
		{"end day afternoon", time.Date(2017, 11, 30, 18, 0, 0, 0, time.UTC), true},
		{"after end", time.Date(2017, 12, 1, 0, 0, 0, 0, time.UTC), false},
		{"zero time", time.Time{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, w.Contains(tt.t))
		})
	}
}

func TestRecordFilledFlags(t *testing.T) {
	sid := int64(7)
	assert.True(t, Assignment{SitterID: &sid}.IsAssignmentFilled())
	assert.False(t, Assignment{}.IsAssignmentFilled())

	assert.True(t, Application{OwnerConfirmed: 1, SitterConfirmed: 1}.IsAssignmentFilled())
	assert.False(t, Application{OwnerConfirmed: 1}.IsAssignmentFilled())
}
