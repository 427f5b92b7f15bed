package store

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// durationPattern matches age filters like "7d", "2w", "3m", "1y"
var durationPattern = regexp.MustCompile(`^(\d+)([dwmy])$`)

// ParseDuration parses a listing age filter like "7d", "2w", "3m", "1y".
//
// Supported units:
//   - d: days
//   - w: weeks (7 days)
//   - m: months (30 days, approximation)
//   - y: years (365 days, approximation)
func ParseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, fmt.Errorf("duration string is empty")
	}

	matches := durationPattern.FindStringSubmatch(s)
	if matches == nil {
		return 0, fmt.Errorf("invalid duration format: %s (expected <number><unit>, e.g. 7d, 2w, 3m, 1y)", s)
	}

	num, err := strconv.Atoi(matches[1])
	if err != nil || num < 0 {
		return 0, fmt.Errorf("invalid number in duration: %s", matches[1])
	}

	day := 24 * time.Hour
	switch matches[2] {
	case "d":
		return time.Duration(num) * day, nil
	case "w":
		return time.Duration(num) * 7 * day, nil
	case "m":
		return time.Duration(num) * 30 * day, nil
	case "y":
		return time.Duration(num) * 365 * day, nil
	}
	return 0, fmt.Errorf("invalid duration unit: %s (expected d, w, m, or y)", matches[2])
}

// BuildQueryOptions constructs QueryOptions from the listing flags. A
// non-empty since filter keeps only shows published within that
// window, measured back from now against the derived timestamp, so
// shows with unparseable dates drop out of filtered listings.
func BuildQueryOptions(limit int, since string) (QueryOptions, error) {
	opts := QueryOptions{Limit: limit}

	if since != "" {
		duration, err := ParseDuration(since)
		if err != nil {
			return opts, fmt.Errorf("failed to parse --since flag: %w", err)
		}
		sinceUnix := time.Now().Add(-duration).Unix()
		opts.SinceTime = &sinceUnix
	}

	return opts, nil
}
