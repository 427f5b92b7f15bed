package model

import "errors"

// Sentinel errors for the failure categories the tool reports. Layers
// wrap these with context via fmt.Errorf so callers can branch with
// errors.Is while still seeing the underlying cause.
var (
	// ErrParse reports feed data in which no feed structure could be located.
	ErrParse = errors.New("feed not parseable")

	// ErrFetch reports a failed feed retrieval.
	ErrFetch = errors.New("feed fetch failed")

	// ErrNoFeedURL reports a refresh attempted without a configured feed URL.
	ErrNoFeedURL = errors.New("no feed URL configured")

	// ErrOutOfRange reports a show index outside the held list.
	ErrOutOfRange = errors.New("show index out of range")

	// ErrDownloadActive reports a download start while another is running.
	ErrDownloadActive = errors.New("a download is already in progress")

	// ErrRefreshActive reports a refresh start while another is running.
	ErrRefreshActive = errors.New("a feed refresh is already in progress")

	// ErrNetwork reports a transport failure during a download.
	ErrNetwork = errors.New("network error")

	// ErrFilesystem reports a failed local file operation.
	ErrFilesystem = errors.New("filesystem error")

	// ErrAlreadyStarted reports Start called twice on one session.
	ErrAlreadyStarted = errors.New("download session already started")

	// ErrNoSelection reports a download start without a selected show.
	ErrNoSelection = errors.New("no show selected")

	// ErrNotDownloadable reports a selected show without an enclosure.
	ErrNotDownloadable = errors.New("show has no downloadable media")
)
