package model

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// SortColumn names a show attribute a listing can be ordered by.
type SortColumn string

const (
	SortByDate  SortColumn = "date"
	SortBySize  SortColumn = "size"
	SortByTitle SortColumn = "title"
)

// ParseSortColumn validates a user-supplied column name.
func ParseSortColumn(s string) (SortColumn, error) {
	switch SortColumn(s) {
	case SortByDate, SortBySize, SortByTitle:
		return SortColumn(s), nil
	}
	return "", fmt.Errorf("unknown sort column: %s (expected date, size, or title)", s)
}

// CompareShows orders two shows by the given column, ascending. Dates
// compare on the derived Unix timestamp, so shows with unparseable
// dates sort first; sizes compare on enclosure length; titles compare
// case-insensitively.
func CompareShows(a, b Show, col SortColumn) int {
	switch col {
	case SortBySize:
		return cmp.Compare(a.LengthBytes, b.LengthBytes)
	case SortByTitle:
		return strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
	default:
		return cmp.Compare(a.PublishedUnix, b.PublishedUnix)
	}
}

// SortShows sorts the slice in place by column; desc reverses the
// order. The sort is stable, so feed order breaks ties.
func SortShows(shows []Show, col SortColumn, desc bool) {
	slices.SortStableFunc(shows, func(a, b Show) int {
		c := CompareShows(a, b, col)
		if desc {
			return -c
		}
		return c
	})
}
