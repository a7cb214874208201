package logger

import (
	"strings"
	"time"
)

// Status reduces an error to the status string used in log lines.
func Status(err error) string {
	if err == nil {
		return "ok"
	}
	return "error"
}

// Took measures elapsed time since start, rounded for logging.
func Took(start time.Time) time.Duration {
	return RoundMS(time.Since(start))
}

// RoundMS rounds a duration to whole milliseconds; negative durations
// collapse to zero.
func RoundMS(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	return d.Round(time.Millisecond)
}

// SummarizeStrings renders at most limit values as a comma-separated
// string. The second result reports whether anything was cut off.
func SummarizeStrings(values []string, limit int) (string, bool) {
	switch {
	case limit <= 0:
		return "", len(values) > 0
	case len(values) > limit:
		return strings.Join(values[:limit], ", "), true
	default:
		return strings.Join(values, ", "), false
	}
}
