package contract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReportDate(t *testing.T) {
	want := time.Date(2016, 1, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name      string
		input     string
		expectErr bool
	}{
		{"iso", "2016-01-01", false},
		{"day month name", "01-Jan-2016", false},
		{"slashes", "2016/01/01", false},
		{"padded", "  2016-01-01 ", false},
		{"garbage", "last tuesday", true},
		{"empty", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseReportDate(tt.input)
			if tt.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, want.Equal(got), "got %v", got)
		})
	}
}

func TestParseRecordTime(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		want      time.Time
		expectErr bool
	}{
		{"empty is zero", "", time.Time{}, false},
		{"NaT is zero", "NaT", time.Time{}, false},
		{"date only", "2016-03-01", time.Date(2016, 3, 1, 0, 0, 0, 0, time.UTC), false},
		{"datetime", "2016-03-01 13:45:00", time.Date(2016, 3, 1, 13, 45, 0, 0, time.UTC), false},
		{"fractional", "2016-03-01 13:45:00.250000", time.Date(2016, 3, 1, 13, 45, 0, 250000000, time.UTC), false},
		{"iso t", "2016-03-01T13:45:00", time.Date(2016, 3, 1, 13, 45, 0, 0, time.UTC), false},
		{"rfc3339 offset", "2016-03-01T13:45:00+01:00", time.Date(2016, 3, 1, 12, 45, 0, 0, time.UTC), false},
		{"invalid", "03/01/2016 noon", time.Time{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRecordTime(tt.input)
			if tt.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "want %v got %v", tt.want, got)
		})
	}
}
