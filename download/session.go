// Package download implements streaming media downloads with progress
// reporting and cooperative cancellation.
package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/mainmeister/clubtwit-cli/model"
	"golang.org/x/time/rate"
)

// DefaultChunkSize is how many bytes each read requests. Progress is
// reported and cancellation observed once per chunk.
const DefaultChunkSize = 8192

// minElapsed floors the elapsed time used for rate math so the first
// chunk never divides by zero.
const minElapsed = 1e-6

// Options tunes a Session. The zero value (or a nil pointer) selects
// the defaults.
type Options struct {
	// Client issues the GET request. The default client carries no
	// global timeout: a download's lifetime is bounded by its context,
	// not by the clock.
	Client *http.Client

	// ChunkSize is the read size in bytes; 0 means DefaultChunkSize.
	ChunkSize int

	// RateLimit caps throughput in bytes per second; 0 means unlimited.
	RateLimit int64

	// Logger receives debug output; nil discards it.
	Logger *slog.Logger
}

// Session is a single download attempt: one URL streamed to one
// destination file. A session runs at most once and ends in exactly
// one terminal state; start a new session to try again.
//
// Progress and completion are reported through the sink from the
// session's own goroutine. On any terminal state other than completed
// the destination file is removed, so a path either holds a whole
// file or nothing.
type Session struct {
	id        string
	url       string
	dest      string
	sink      model.Sink
	client    *http.Client
	chunkSize int
	limiter   *rate.Limiter
	logger    *slog.Logger

	canceled atomic.Bool
	done     chan struct{}

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
	state   model.DownloadState
	err     error
}

// New creates a session that will stream url into dest. Events go to
// sink; a nil sink discards them. A nil opts selects the defaults.
func New(url, dest string, sink model.Sink, opts *Options) *Session {
	if opts == nil {
		opts = &Options{}
	}
	if sink == nil {
		sink = model.SinkFunc(func(model.Event) {})
	}

	client := opts.Client
	if client == nil {
		client = &http.Client{}
	}
	chunkSize := opts.ChunkSize
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	var limiter *rate.Limiter
	if opts.RateLimit > 0 {
		// Burst must cover a full chunk or WaitN can never succeed.
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), chunkSize)
	}

	return &Session{
		id:        uuid.NewString(),
		url:       url,
		dest:      dest,
		sink:      sink,
		client:    client,
		chunkSize: chunkSize,
		limiter:   limiter,
		logger:    logger,
		done:      make(chan struct{}),
		state:     model.StateIdle,
	}
}

// ID returns the session's identifier, carried on every event it emits.
func (s *Session) ID() string {
	return s.id
}

// State returns the session's current lifecycle state.
func (s *Session) State() model.DownloadState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Err returns the terminal error, if any. It is nil until the session
// finishes and stays nil for completed and canceled sessions.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Done returns a channel closed when the session reaches a terminal
// state.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Start begins streaming on a new goroutine. It may be called once;
// later calls return ErrAlreadyStarted. The context bounds the whole
// transfer, and canceling it behaves like Cancel.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return model.ErrAlreadyStarted
	}
	s.started = true
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.state = model.StateInProgress
	s.mu.Unlock()

	s.logger.Debug("download starting",
		slog.String("session", s.id),
		slog.String("url", s.url),
		slog.String("dest", s.dest))

	go s.run(runCtx)
	return nil
}

// Cancel requests a cooperative stop. It is safe to call at any time,
// from any goroutine, and repeatedly: a session canceled before Start
// terminates immediately without touching the network or the disk,
// and a session canceled mid-transfer stops at the next chunk
// boundary and removes the partial file. Cancel does not wait; watch
// Done or the sink for the terminal event.
func (s *Session) Cancel() {
	s.canceled.Store(true)
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

func (s *Session) run(ctx context.Context) {
	state, err := s.download(ctx)
	s.finish(state, err)
}

// stopRequested reports whether the session was asked to stop, either
// through Cancel or through its context being canceled.
func (s *Session) stopRequested(ctx context.Context) bool {
	return s.canceled.Load() || errors.Is(ctx.Err(), context.Canceled)
}

// download performs the transfer and reports how it ended. Partial
// files are removed on every outcome except completion.
func (s *Session) download(ctx context.Context) (model.DownloadState, error) {
	if s.stopRequested(ctx) {
		return model.StateCanceled, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return model.StateFailed, fmt.Errorf("%w: %w", model.ErrNetwork, err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		if s.stopRequested(ctx) {
			return model.StateCanceled, nil
		}
		return model.StateFailed, fmt.Errorf("%w: %w", model.ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return model.StateFailed, fmt.Errorf("%w: unexpected status %s", model.ErrNetwork, resp.Status)
	}

	// A missing or unknown Content-Length leaves the total at 0.
	var total int64
	if resp.ContentLength > 0 {
		total = resp.ContentLength
	}

	out, err := os.Create(s.dest)
	if err != nil {
		return model.StateFailed, fmt.Errorf("%w: %w", model.ErrFilesystem, err)
	}

	state, err := s.copyBody(ctx, resp.Body, out, total)

	if closeErr := out.Close(); closeErr != nil && state == model.StateCompleted {
		state = model.StateFailed
		err = fmt.Errorf("%w: %w", model.ErrFilesystem, closeErr)
	}
	if state != model.StateCompleted {
		os.Remove(s.dest)
	}
	return state, err
}

// copyBody streams the response body to the file one chunk at a time,
// emitting a progress event per written chunk and checking for
// cancellation at every chunk boundary.
func (s *Session) copyBody(ctx context.Context, body io.Reader, out *os.File, total int64) (model.DownloadState, error) {
	buf := make([]byte, s.chunkSize)
	var written int64
	start := time.Now()

	for {
		if s.stopRequested(ctx) {
			return model.StateCanceled, nil
		}

		n, readErr := body.Read(buf)
		if n > 0 {
			// Observed between receiving a chunk and writing it, so a
			// cancel never grows the file by another chunk.
			if s.stopRequested(ctx) {
				return model.StateCanceled, nil
			}
			if s.limiter != nil {
				if waitErr := s.limiter.WaitN(ctx, n); waitErr != nil {
					if s.stopRequested(ctx) {
						return model.StateCanceled, nil
					}
					return model.StateFailed, fmt.Errorf("%w: %w", model.ErrNetwork, waitErr)
				}
			}
			if _, writeErr := out.Write(buf[:n]); writeErr != nil {
				return model.StateFailed, fmt.Errorf("%w: %w", model.ErrFilesystem, writeErr)
			}
			written += int64(n)
			s.sink.Notify(model.Event{
				Kind:      model.EventProgress,
				SessionID: s.id,
				Progress:  snapshot(written, total, time.Since(start)),
			})
		}

		if readErr == io.EOF {
			return model.StateCompleted, nil
		}
		if readErr != nil {
			if s.stopRequested(ctx) {
				return model.StateCanceled, nil
			}
			return model.StateFailed, fmt.Errorf("%w: %w", model.ErrNetwork, readErr)
		}
	}
}

// snapshot computes the progress numbers for one chunk boundary.
func snapshot(written, total int64, elapsed time.Duration) model.Progress {
	seconds := elapsed.Seconds()
	if seconds < minElapsed {
		seconds = minElapsed
	}

	progress := model.Progress{
		BytesDownloaded: written,
		TotalBytes:      total,
		Rate:            float64(written) / seconds,
		ETASeconds:      -1,
	}
	if total > 0 && progress.Rate > 0 {
		progress.ETASeconds = float64(total-written) / progress.Rate
	}
	return progress
}

// finish records the terminal state, emits the done event, and
// releases Done waiters, in that order.
func (s *Session) finish(state model.DownloadState, err error) {
	s.mu.Lock()
	s.state = state
	s.err = err
	s.mu.Unlock()

	s.logger.Debug("download finished",
		slog.String("session", s.id),
		slog.String("state", state.String()),
		slog.Any("error", err))

	s.sink.Notify(model.Event{
		Kind:      model.EventDone,
		SessionID: s.id,
		State:     state,
		Err:       err,
	})
	close(s.done)
}
