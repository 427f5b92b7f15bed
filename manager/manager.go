// Package manager coordinates the show list and downloads: it holds
// the most recent listing, tracks one selection, and enforces the
// one-download-at-a-time rule.
package manager

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/mainmeister/clubtwit-cli/download"
	"github.com/mainmeister/clubtwit-cli/feed"
	"github.com/mainmeister/clubtwit-cli/model"
)

// Config carries the manager's explicit configuration. Nothing here is
// read from the environment; resolving flags, env vars and config
// files is the caller's concern.
type Config struct {
	// FeedURL is where Refresh fetches the show list from.
	FeedURL string

	// DownloadDir receives media files when StartDownload gets no
	// explicit directory. Empty means the current directory.
	DownloadDir string

	// RateLimit caps download throughput in bytes per second;
	// 0 means unlimited.
	RateLimit int64
}

// Options supplies optional collaborators for a Manager.
type Options struct {
	// Fetcher retrieves feed documents; nil means an HTTP fetcher.
	Fetcher feed.Fetcher

	// Client issues download requests; nil means a client without a
	// global timeout, since downloads outlive any fixed deadline.
	Client *http.Client

	// Logger receives debug output; nil discards it.
	Logger *slog.Logger
}

// Manager owns the show list and the single download slot. All
// methods are safe for concurrent use. Background outcomes (the
// refreshed listing, download progress, terminal states) arrive
// through the sink; methods only return errors the caller caused.
type Manager struct {
	cfg     Config
	sink    model.Sink
	fetcher feed.Fetcher
	client  *http.Client
	logger  *slog.Logger

	mu            sync.Mutex
	shows         []model.Show
	selected      int
	refreshing    bool
	refreshCancel context.CancelFunc
	active        *download.Session

	wg sync.WaitGroup
}

// New creates a Manager. Events go to sink; a nil sink discards them.
// A nil opts selects the defaults.
func New(cfg Config, sink model.Sink, opts *Options) *Manager {
	if opts == nil {
		opts = &Options{}
	}
	if sink == nil {
		sink = model.SinkFunc(func(model.Event) {})
	}

	fetcher := opts.Fetcher
	if fetcher == nil {
		fetcher = feed.NewHTTPFetcher(nil)
	}
	client := opts.Client
	if client == nil {
		client = &http.Client{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Manager{
		cfg:      cfg,
		sink:     sink,
		fetcher:  fetcher,
		client:   client,
		logger:   logger,
		selected: -1,
	}
}

// Refresh fetches and parses the feed on a background goroutine,
// reporting the outcome through the sink as a shows-loaded or
// shows-failed event. A successful refresh replaces the whole show
// list and clears any selection. Only one refresh runs at a time;
// concurrent attempts are rejected, not queued.
func (m *Manager) Refresh(ctx context.Context) error {
	if m.cfg.FeedURL == "" {
		return model.ErrNoFeedURL
	}

	m.mu.Lock()
	if m.refreshing {
		m.mu.Unlock()
		return model.ErrRefreshActive
	}
	m.refreshing = true
	refreshCtx, cancel := context.WithCancel(ctx)
	m.refreshCancel = cancel
	m.mu.Unlock()

	m.wg.Add(1)
	go m.refresh(refreshCtx, cancel)
	return nil
}

func (m *Manager) refresh(ctx context.Context, cancel context.CancelFunc) {
	defer m.wg.Done()
	defer cancel()

	data, err := m.fetcher.Fetch(ctx, m.cfg.FeedURL)
	var shows []model.Show
	if err == nil {
		shows, err = feed.Parse(data)
	}

	m.mu.Lock()
	m.refreshing = false
	m.refreshCancel = nil
	if err == nil {
		m.shows = shows
		m.selected = -1
	}
	m.mu.Unlock()

	if err != nil {
		m.logger.Error("feed refresh failed",
			slog.String("url", m.cfg.FeedURL),
			slog.Any("error", err))
		m.sink.Notify(model.Event{Kind: model.EventShowsFailed, Err: err})
		return
	}

	m.logger.Info("feed refreshed",
		slog.String("url", m.cfg.FeedURL),
		slog.Int("shows", len(shows)))

	// The receiver owns the delivered payload; it must not alias the held list
	m.sink.Notify(model.Event{Kind: model.EventShowsLoaded, Shows: slices.Clone(shows)})
}

// Shows returns a snapshot of the held show list.
func (m *Manager) Shows() []model.Show {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.shows)
}

// RestoreShows replaces the held list without fetching, for callers
// that keep their own cache of a previous fetch. Like Refresh, it
// clears any selection.
func (m *Manager) RestoreShows(shows []model.Show) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shows = slices.Clone(shows)
	m.selected = -1
}

// SelectShow records the show at index i as the download target and
// returns it. The index refers to the held list's order.
func (m *Manager) SelectShow(i int) (model.Show, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i < 0 || i >= len(m.shows) {
		return model.Show{}, fmt.Errorf("%w: %d (have %d shows)", model.ErrOutOfRange, i, len(m.shows))
	}
	m.selected = i
	return m.shows[i], nil
}

// StartDownload begins downloading the selected show's media file into
// destDir (empty means the configured directory, then the current
// one) and returns the new session's ID. It refuses to start when no
// show is selected, when the selection has no enclosure, or while
// another download is running; the running download is never
// disturbed.
func (m *Manager) StartDownload(ctx context.Context, destDir string) (string, error) {
	m.mu.Lock()
	if m.active != nil && !m.active.State().IsTerminal() {
		m.mu.Unlock()
		return "", model.ErrDownloadActive
	}
	if m.selected < 0 || m.selected >= len(m.shows) {
		m.mu.Unlock()
		return "", model.ErrNoSelection
	}
	show := m.shows[m.selected]
	m.mu.Unlock()

	if !show.Downloadable() {
		return "", fmt.Errorf("%w: %s", model.ErrNotDownloadable, show.Title)
	}

	if destDir == "" {
		destDir = m.cfg.DownloadDir
	}
	if destDir == "" {
		destDir = "."
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", fmt.Errorf("%w: %w", model.ErrFilesystem, err)
	}

	dest := filepath.Join(destDir, Filename(show))
	session := download.New(show.Link, dest, m.sink, &download.Options{
		Client:    m.client,
		RateLimit: m.cfg.RateLimit,
		Logger:    m.logger,
	})

	m.mu.Lock()
	// The slot may have been claimed while the directory was prepared
	if m.active != nil && !m.active.State().IsTerminal() {
		m.mu.Unlock()
		return "", model.ErrDownloadActive
	}
	m.active = session
	m.mu.Unlock()

	if err := session.Start(ctx); err != nil {
		m.mu.Lock()
		m.active = nil
		m.mu.Unlock()
		return "", err
	}

	m.logger.Info("download started",
		slog.String("session", session.ID()),
		slog.String("title", show.Title),
		slog.String("dest", dest))
	return session.ID(), nil
}

// CancelDownload requests cancellation of the active download. It is
// a no-op when nothing is running and does not wait; the terminal
// event arrives through the sink.
func (m *Manager) CancelDownload() {
	m.mu.Lock()
	active := m.active
	m.mu.Unlock()
	if active != nil {
		active.Cancel()
	}
}

// DownloadState reports the most recent session's state, or idle
// before the first download.
func (m *Manager) DownloadState() model.DownloadState {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == nil {
		return model.StateIdle
	}
	return m.active.State()
}

// Shutdown cancels any running refresh and download, then waits for
// them to wind down until ctx expires. Workers are asked to stop, not
// killed; the context bound is the safety net.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	refreshCancel := m.refreshCancel
	active := m.active
	m.mu.Unlock()

	if refreshCancel != nil {
		refreshCancel()
	}
	if active != nil {
		active.Cancel()
	}

	refreshDone := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(refreshDone)
	}()

	if active != nil {
		select {
		case <-active.Done():
		case <-ctx.Done():
			return fmt.Errorf("shutdown wait: %w", ctx.Err())
		}
	}

	select {
	case <-refreshDone:
	case <-ctx.Done():
		return fmt.Errorf("shutdown wait: %w", ctx.Err())
	}
	return nil
}
