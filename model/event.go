package model

// EventKind discriminates the notifications background workers emit.
type EventKind int

const (
	// EventShowsLoaded carries a freshly parsed show list.
	EventShowsLoaded EventKind = iota
	// EventShowsFailed reports that a feed refresh failed.
	EventShowsFailed
	// EventProgress carries a download progress snapshot.
	EventProgress
	// EventDone reports a download reaching a terminal state.
	EventDone
)

// String returns a short name for logging.
func (k EventKind) String() string {
	switch k {
	case EventShowsLoaded:
		return "shows_loaded"
	case EventShowsFailed:
		return "shows_failed"
	case EventProgress:
		return "progress"
	case EventDone:
		return "done"
	}
	return "unknown"
}

// Event is a single notification from a background worker. Which
// fields are set depends on Kind: Shows and Err accompany the shows
// events, SessionID plus Progress or State accompany the download
// events. Payloads are owned by the receiver once delivered.
type Event struct {
	Kind      EventKind     `json:"kind"`
	SessionID string        `json:"session_id,omitempty"`
	Shows     []Show        `json:"shows,omitempty"`
	Progress  Progress      `json:"progress,omitempty"`
	State     DownloadState `json:"state,omitempty"`
	Err       error         `json:"-"`
}

// Sink receives worker events. Workers call Notify from their own
// goroutines, so implementations must be safe for concurrent use.
// Notify may block; workers pause until the event is accepted.
type Sink interface {
	Notify(Event)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(Event)

// Notify calls f(e).
func (f SinkFunc) Notify(e Event) {
	f(e)
}

// ChannelSink delivers events over a channel so callers can consume
// them with select loops. Notify blocks when the buffer is full, which
// paces workers to the consumer.
type ChannelSink struct {
	ch chan Event
}

// NewChannelSink creates a ChannelSink with the given buffer size.
func NewChannelSink(buffer int) *ChannelSink {
	return &ChannelSink{ch: make(chan Event, buffer)}
}

// Notify enqueues the event, blocking until there is room.
func (c *ChannelSink) Notify(e Event) {
	c.ch <- e
}

// Events returns the receive side of the sink.
func (c *ChannelSink) Events() <-chan Event {
	return c.ch
}
