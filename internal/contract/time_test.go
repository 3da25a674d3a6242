package contract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, time.March, 3, 10, 0, 0, 0, time.UTC)

func TestParseRelativeTime(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expected    time.Time
		expectError bool
	}{
		{"plural days mixed case", "3 DaYs AgO", fixedNow.Add(-3 * 24 * time.Hour), false},
		{"singular week", "1 Week Ago", fixedNow.Add(-7 * 24 * time.Hour), false},
		{"months use calendar arithmetic", "2 months ago", fixedNow.AddDate(0, -2, 0), false},
		{"minutes", "15 minutes ago", fixedNow.Add(-15 * time.Minute), false},
		{"missing ago", "2 years", time.Time{}, true},
		{"unknown unit", "4 decades ago", time.Time{}, true},
		{"non-numeric value", "one day ago", time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRelativeTime(tt.input, fixedNow)
			if tt.expectError {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.expected.Equal(got), "expected %s, got %s", tt.expected, got)
		})
	}
}

func TestParseLookbackDuration(t *testing.T) {
	const day = 24 * time.Hour

	tests := []struct {
		name      string
		input     string
		want      time.Duration
		expectErr bool
	}{
		{"go syntax minutes", "15m", 15 * time.Minute, false},
		{"go syntax hours", "336h", 14 * day, false},
		{"1 minute", "1 minute", time.Minute, false},
		{"10 minutes", "10 minutes", 10 * time.Minute, false},
		{"1 hour", "1 hour", time.Hour, false},
		{"14 days", "14 days", 14 * day, false},
		{"2 weeks", "2 weeks", 14 * day, false},
		{"1 month approx", "1 month", 30 * day, false},
		{"1 year approx", "1 year", 365 * day, false},
		{"mixed case", "7 DaYs", 7 * day, false},
		{"extra space", " 1  day ", day, false},

		{"zero go duration", "0s", 0, true},
		{"negative go duration", "-5m", 0, true},
		{"zero quantity", "0 days", 0, true},
		{"missing unit", "3", 0, true},
		{"missing value", "days", 0, true},
		{"unknown unit", "3 decades", 0, true},
		{"fractional quantity", "1.5 days", 0, true},
		{"empty string", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLookbackDuration(tt.input)
			if tt.expectErr {
				assert.Error(t, err, "expected an error for input %q", tt.input)
			} else if assert.NoError(t, err, "did not expect an error for input %q", tt.input) {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestFormatAge(t *testing.T) {
	assert.Equal(t, "just now", FormatAge(0.4))
	assert.Equal(t, "12 min ago", FormatAge(12))
	assert.Equal(t, "2.5 h ago", FormatAge(150))
	assert.Equal(t, "3.0 days ago", FormatAge(3*24*60))
}

func FuzzParseRelativeTime(f *testing.F) {
	for _, seed := range []string{"1 year ago", "2 months ago", "3 weeks ago", "4 days ago", "0 hours ago"} {
		f.Add(seed)
	}
	f.Fuzz(func(_ *testing.T, input string) {
		_, _ = ParseRelativeTime(input, time.Now())
	})
}

func FuzzParseLookbackDuration(f *testing.F) {
	for _, seed := range []string{"15m", "14 days", "2 weeks", "0 years", "-1h"} {
		f.Add(seed)
	}
	f.Fuzz(func(t *testing.T, input string) {
		d, err := ParseLookbackDuration(input)
		if err == nil && d <= 0 {
			t.Fatalf("non-positive duration %v accepted for %q", d, input)
		}
	})
}
