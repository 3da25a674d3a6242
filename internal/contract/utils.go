package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/signalvane/signalvane/schema"
)

// Color variables for console output.
var (
	RisingColor  = color.New(color.FgGreen, color.Bold) // RisingColor marks gaining momentum.
	NewColor     = color.New(color.FgCyan, color.Bold)  // NewColor marks first sightings.
	StableColor  = color.New(color.FgYellow)            // StableColor is informational, not bold.
	FallingColor = color.New(color.FgRed)               // FallingColor marks fading narratives.
)

// GetPlainLabel returns the upper-case label for a trend.
// This is the core logic used for CSV, JSON, and table printing.
func GetPlainLabel(t schema.Trend) string {
	return strings.ToUpper(string(t))
}

// GetColorLabel returns a colored trend label for console output (table).
func GetColorLabel(t schema.Trend) string {
	text := GetPlainLabel(t)

	switch t {
	case schema.TrendRising:
		return RisingColor.Sprint(text)
	case schema.TrendNew:
		return NewColor.Sprint(text)
	case schema.TrendFalling:
		return FallingColor.Sprint(text)
	default:
		return StableColor.Sprint(text)
	}
}

// GetTrendArrow returns a compact direction marker for a trend.
func GetTrendArrow(t schema.Trend) string {
	switch t {
	case schema.TrendRising:
		return "↑"
	case schema.TrendFalling:
		return "↓"
	case schema.TrendNew:
		return "*"
	default:
		return "→"
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. An empty path selects os.Stdout.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// GetCacheDBFilePath returns the path to the SQLite DB file for fetch caching.
func GetCacheDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".signalvane_cache.db"
	}
	return filepath.Join(homeDir, ".signalvane_cache.db")
}

// GetArchiveDBFilePath returns the path to the SQLite DB file for the narrative archive.
func GetArchiveDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".signalvane_archive.db"
	}
	return filepath.Join(homeDir, ".signalvane_archive.db")
}

// TruncateText truncates text to a maximum width with an ellipsis suffix.
// Requires maxWidth > 3 so the ellipsis leaves room for content.
func TruncateText(text string, maxWidth int) string {
	runes := []rune(text)
	if len(runes) > maxWidth && maxWidth > 3 {
		return string(runes[:maxWidth-3]) + "..."
	}
	return text
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
