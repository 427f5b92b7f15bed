// Package model defines the core data structures for clubtwit-cli.
package model

// Default values substituted while parsing when a feed item omits a field.
const (
	DefaultTitle = "No Title"
	DefaultDate  = "No Date"

	// DescriptionParseFailed is stored when an item's description
	// fragment could not be parsed as HTML.
	DescriptionParseFailed = "Could not parse description."
)

// Show represents a single episode parsed from the podcast feed.
// Every field is always populated: parsing substitutes defaults for
// anything the feed omits, so consumers never see a partial record.
type Show struct {
	Title           string `json:"title"`
	Description     string `json:"description"`
	DescriptionHTML string `json:"description_html,omitempty"`
	Link            string `json:"link"`
	PublishedRaw    string `json:"published"`
	PublishedUnix   int64  `json:"published_unix"`
	LengthBytes     int64  `json:"length_bytes"`
}

// Downloadable reports whether the show carries a media enclosure.
func (s Show) Downloadable() bool {
	return s.Link != ""
}

// DownloadState tracks a download session through its lifecycle.
type DownloadState string

const (
	StateIdle       DownloadState = "idle"
	StateInProgress DownloadState = "in_progress"
	StateCompleted  DownloadState = "completed"
	StateCanceled   DownloadState = "canceled"
	StateFailed     DownloadState = "failed"
)

// IsTerminal reports whether the state is final for a session.
func (s DownloadState) IsTerminal() bool {
	switch s {
	case StateCompleted, StateCanceled, StateFailed:
		return true
	}
	return false
}

// CanTransition reports whether moving from s to next is a legal
// lifecycle step. Terminal states admit no further transitions.
func (s DownloadState) CanTransition(next DownloadState) bool {
	switch s {
	case StateIdle:
		return next == StateInProgress
	case StateInProgress:
		return next == StateCompleted || next == StateCanceled || next == StateFailed
	}
	return false
}

// String returns the state name.
func (s DownloadState) String() string {
	return string(s)
}

// Progress is a point-in-time snapshot of a running download.
// TotalBytes is 0 when the server did not report a length.
// ETASeconds is -1 when it cannot be computed.
type Progress struct {
	BytesDownloaded int64   `json:"bytes_downloaded"`
	TotalBytes      int64   `json:"total_bytes"`
	Rate            float64 `json:"rate"`
	ETASeconds      float64 `json:"eta_seconds"`
}

// Percent returns whole-number completion, rounding down, or -1 when
// the total size is unknown.
func (p Progress) Percent() int {
	if p.TotalBytes <= 0 {
		return -1
	}
	return int(p.BytesDownloaded * 100 / p.TotalBytes)
}
