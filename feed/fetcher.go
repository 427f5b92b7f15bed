package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mainmeister/clubtwit-cli/model"
)

const (
	userAgent    = "clubtwit-cli/0.1 podcast downloader"
	acceptHeader = "application/rss+xml, application/atom+xml, application/xml, text/xml"

	// maxFeedSize caps how much of a feed response gets read.
	maxFeedSize = 10 << 20 // 10 MiB

	fetchTimeout = 30 * time.Second
)

// Fetcher retrieves raw feed documents.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// HTTPFetcher fetches feed documents over HTTP.
type HTTPFetcher struct {
	client *http.Client
}

// NewHTTPFetcher creates an HTTPFetcher. A nil client gets a default
// with a 30 second timeout.
func NewHTTPFetcher(client *http.Client) *HTTPFetcher {
	if client == nil {
		client = &http.Client{Timeout: fetchTimeout}
	}
	return &HTTPFetcher{client: client}
}

// Fetch retrieves the document at url. Transport failures and
// non-200 responses both surface as ErrFetch.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrFetch, err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", acceptHeader)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %s from %s", model.ErrFetch, resp.Status, url)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedSize))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrFetch, err)
	}
	return data, nil
}
