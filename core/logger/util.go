package logger

import (
	"strconv"
	"strings"
	"time"
)

// Status is "ok" for a nil error and "error" otherwise.
func Status(err error) string {
	if err == nil {
		return "ok"
	}
	return "error"
}

// Took is the time since start, rounded like every logged duration.
func Took(start time.Time) time.Duration {
	return RoundMS(time.Since(start))
}

// RoundMS rounds d to whole milliseconds; negative values become zero.
func RoundMS(d time.Duration) time.Duration {
	return max(d, 0).Round(time.Millisecond)
}

// Preview joins at most limit values and notes how many were left out,
// e.g. "a, b (+3)".
func Preview(values []string, limit int) string {
	if len(values) == 0 {
		return ""
	}
	limit = max(limit, 0)
	if len(values) <= limit {
		return strings.Join(values, ", ")
	}
	rest := "(+" + strconv.Itoa(len(values)-limit) + ")"
	if limit == 0 {
		return rest
	}
	return strings.Join(values[:limit], ", ") + " " + rest
}
