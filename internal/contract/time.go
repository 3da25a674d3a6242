package contract

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// relativeTimeRe captures "N [units] ago", e.g. "2 days ago".
var relativeTimeRe = regexp.MustCompile(`^(\d+)\s+(year|month|week|day|hour|minute)s?\s+ago$`)

// lookbackDurationRe captures "N [units]", e.g. "14 days".
var lookbackDurationRe = regexp.MustCompile(`^(\d+)\s+(year|month|week|day|hour|minute)s?$`)

// ParseRelativeTime converts strings like "3 days ago" into a time.Time in the past.
func ParseRelativeTime(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	matches := relativeTimeRe.FindStringSubmatch(s)
	if len(matches) == 0 {
		return time.Time{}, fmt.Errorf("invalid relative time format: %s", s)
	}

	value, _ := strconv.Atoi(matches[1])
	switch matches[2] {
	case "year":
		return now.AddDate(-value, 0, 0), nil
	case "month":
		return now.AddDate(0, -value, 0), nil
	default:
		return now.Add(-unitDuration(matches[2], value)), nil
	}
}

// ParseLookbackDuration converts strings like "14 days" or "15m" into a time.Duration.
// It first tries Go's built-in time.ParseDuration for standard formats, then falls back
// to custom parsing for human-readable formats.
func ParseLookbackDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)

	if duration, err := time.ParseDuration(s); err == nil {
		if duration <= 0 {
			return 0, errors.New("duration must be positive")
		}
		return duration, nil
	}

	s = strings.ToLower(s)
	matches := lookbackDurationRe.FindStringSubmatch(s)
	if len(matches) == 0 {
		return 0, fmt.Errorf("invalid duration format: %s", s)
	}

	value, _ := strconv.Atoi(matches[1])
	total := unitDuration(matches[2], value)
	if total <= 0 {
		return 0, errors.New("duration must be positive")
	}
	return total, nil
}

// unitDuration approximates a month as 30 days and a year as 365 days.
func unitDuration(unit string, value int) time.Duration {
	const day = 24 * time.Hour
	switch unit {
	case "year":
		return time.Duration(value) * 365 * day
	case "month":
		return time.Duration(value) * 30 * day
	case "week":
		return time.Duration(value) * 7 * day
	case "day":
		return time.Duration(value) * day
	case "hour":
		return time.Duration(value) * time.Hour
	default: // minute
		return time.Duration(value) * time.Minute
	}
}

// FormatAge renders a duration in minutes the way health output shows it.
func FormatAge(minutes float64) string {
	switch {
	case minutes < 1:
		return "just now"
	case minutes < 60:
		return fmt.Sprintf("%.0f min ago", minutes)
	case minutes < 48*60:
		return fmt.Sprintf("%.1f h ago", minutes/60)
	default:
		return fmt.Sprintf("%.1f days ago", minutes/(24*60))
	}
}
