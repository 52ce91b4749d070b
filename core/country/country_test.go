package country

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"United Kingdom", "United Kingdom"},
		{"United States", "United States"},
		{"Australia", "Australia"},
		{"Canada", "Canada"},
		{"New Zealand", "New Zealand"},
		{"France", RestOfWorld},
		{"", RestOfWorld},
		{"united kingdom", RestOfWorld},
		{"United Kingdom ", RestOfWorld},
		{"ROW", RestOfWorld},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.input))
		})
	}
}

func TestClassifyRoundTrip(t *testing.T) {
	for _, market := range TopMarkets {
		assert.Equal(t, market, Classify(Classify(market)))
	}
}

func TestParseFilter(t *testing.T) {
	for _, opt := range Options() {
		f, err := ParseFilter(opt)
		require.NoError(t, err, opt)
		assert.Equal(t, opt, f.String())
	}

	f, err := ParseFilter("")
	require.NoError(t, err)
	assert.Equal(t, All, f)

	_, err = ParseFilter("Narnia")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownCountry)

	_, err = ParseFilter("canada")
	assert.ErrorIs(t, err, ErrUnknownCountry)
}

func TestFilterMatches(t *testing.T) {
	tests := []struct {
		name    string
		filter  Filter
		country string
		want    bool
	}{
		{"all keeps market", All, "Canada", true},
		{"all keeps other", All, "Peru", true},
		{"zero value keeps all", Filter(""), "Peru", true},
		{"market match", Filter("Canada"), "Canada", true},
		{"market mismatch", Filter("Canada"), "Australia", false},
		{"row keeps other", Filter(RestOfWorld), "Peru", true},
		{"row drops market", Filter(RestOfWorld), "Canada", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Matches(tt.country))
		})
	}
}

func TestPartitionCoversEveryCountry(t *testing.T) {
	countries := []string{"United Kingdom", "Peru", "Canada", "", "Japan", "New Zealand"}
	for _, c := range countries {
		hits := 0
		for _, opt := range Options()[1:] {
			if Filter(opt).Matches(c) {
				hits++
			}
		}
		assert.Equal(t, 1, hits, "country %q must fall in exactly one category", c)
	}
}

func TestOptionsOrder(t *testing.T) {
	assert.Equal(t, []string{"All", "United Kingdom", "United States", "Australia", "Canada", "New Zealand", "ROW"}, Options())
}
