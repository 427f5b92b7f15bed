package store

import (
	"fmt"
	"testing"
	"time"

	"github.com/mainmeister/clubtwit-cli/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testShows(n int) []model.Show {
	shows := make([]model.Show, n)
	base := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)
	for i := range shows {
		published := base.Add(time.Duration(i) * 24 * time.Hour)
		shows[i] = model.Show{
			Title:           fmt.Sprintf("Episode %d", i+1),
			Description:     fmt.Sprintf("Summary of episode %d.", i+1),
			DescriptionHTML: fmt.Sprintf("<p>Summary of episode %d.</p>", i+1),
			Link:            fmt.Sprintf("https://cdn.example.com/ep%d.mp4", i+1),
			PublishedRaw:    published.Format(time.RFC1123Z),
			PublishedUnix:   published.Unix(),
			LengthBytes:     int64((i + 1) * 1000),
		}
	}
	return shows
}

func TestNewStore(t *testing.T) {
	s, err := New(":memory:")
	require.NoError(t, err)
	require.NotNil(t, s)
	defer s.Close()
}

func TestStore_ReplaceAndListShows(t *testing.T) {
	s, err := New(":memory:")
	require.NoError(t, err)
	defer s.Close()

	shows := testShows(3)
	err = s.ReplaceShows("https://example.com/feed", shows)
	require.NoError(t, err)

	got, err := s.Shows(QueryOptions{})
	require.NoError(t, err)
	require.Len(t, got, 3)

	// Feed order survives the round trip, position attached
	for i, cs := range got {
		assert.Equal(t, i, cs.Index)
		assert.Equal(t, shows[i].Title, cs.Title)
		assert.Equal(t, shows[i].Description, cs.Description)
		assert.Equal(t, shows[i].DescriptionHTML, cs.DescriptionHTML)
		assert.Equal(t, shows[i].Link, cs.Link)
		assert.Equal(t, shows[i].PublishedRaw, cs.PublishedRaw)
		assert.Equal(t, shows[i].PublishedUnix, cs.PublishedUnix)
		assert.Equal(t, shows[i].LengthBytes, cs.LengthBytes)
	}
}

func TestStore_ReplaceDropsPreviousListing(t *testing.T) {
	s, err := New(":memory:")
	require.NoError(t, err)
	defer s.Close()

	err = s.ReplaceShows("https://example.com/feed", testShows(5))
	require.NoError(t, err)

	// A smaller second fetch fully replaces the first
	second := testShows(2)
	second[0].Title = "Replacement 1"
	err = s.ReplaceShows("https://example.com/feed", second)
	require.NoError(t, err)

	got, err := s.Shows(QueryOptions{})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Replacement 1", got[0].Title)
}

func TestStore_ReplaceWithEmptyList(t *testing.T) {
	s, err := New(":memory:")
	require.NoError(t, err)
	defer s.Close()

	err = s.ReplaceShows("https://example.com/feed", testShows(3))
	require.NoError(t, err)

	err = s.ReplaceShows("https://example.com/feed", nil)
	require.NoError(t, err)

	got, err := s.Shows(QueryOptions{})
	require.NoError(t, err)
	assert.Empty(t, got)

	// Metadata still records the fetch
	meta, err := s.Meta()
	require.NoError(t, err)
	assert.Zero(t, meta.ShowCount)
}

func TestStore_ShowsLimit(t *testing.T) {
	s, err := New(":memory:")
	require.NoError(t, err)
	defer s.Close()

	err = s.ReplaceShows("https://example.com/feed", testShows(10))
	require.NoError(t, err)

	got, err := s.Shows(QueryOptions{Limit: 4})
	require.NoError(t, err)
	require.Len(t, got, 4)

	// Limit trims the tail, not the head
	assert.Equal(t, 0, got[0].Index)
	assert.Equal(t, 3, got[3].Index)
}

func TestStore_ShowsSinceFilter(t *testing.T) {
	s, err := New(":memory:")
	require.NoError(t, err)
	defer s.Close()

	old := time.Now().Add(-30 * 24 * time.Hour)
	recent := time.Now().Add(-2 * 24 * time.Hour)
	shows := []model.Show{
		{Title: "Old", PublishedRaw: old.Format(time.RFC1123Z), PublishedUnix: old.Unix()},
		{Title: "Recent", PublishedRaw: recent.Format(time.RFC1123Z), PublishedUnix: recent.Unix()},
		{Title: "Undated", PublishedRaw: model.DefaultDate, PublishedUnix: 0},
	}
	err = s.ReplaceShows("https://example.com/feed", shows)
	require.NoError(t, err)

	opts, err := BuildQueryOptions(0, "7d")
	require.NoError(t, err)

	got, err := s.Shows(opts)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Recent", got[0].Title)

	// The original position rides along even when rows are filtered out
	assert.Equal(t, 1, got[0].Index)
}

func TestStore_ShowByPosition(t *testing.T) {
	s, err := New(":memory:")
	require.NoError(t, err)
	defer s.Close()

	err = s.ReplaceShows("https://example.com/feed", testShows(3))
	require.NoError(t, err)

	got, err := s.Show(1)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Index)
	assert.Equal(t, "Episode 2", got.Title)

	_, err = s.Show(99)
	assert.Error(t, err, "Should error for a position outside the cache")
}

func TestStore_Meta(t *testing.T) {
	s, err := New(":memory:")
	require.NoError(t, err)
	defer s.Close()

	// Empty cache has no provenance
	_, err = s.Meta()
	assert.Error(t, err)

	before := time.Now().Add(-2 * time.Second)
	err = s.ReplaceShows("https://example.com/feed", testShows(4))
	require.NoError(t, err)

	meta, err := s.Meta()
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/feed", meta.FeedURL)
	assert.Equal(t, 4, meta.ShowCount)
	assert.True(t, meta.FetchedAt.After(before))
}

func TestStore_PersistsAcrossOpens(t *testing.T) {
	path := t.TempDir() + "/shows.db"

	s, err := New(path)
	require.NoError(t, err)
	err = s.ReplaceShows("https://example.com/feed", testShows(2))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	// A second open sees the same cache
	s2, err := New(path)
	require.NoError(t, err)
	defer s2.Close()

	got, err := s2.Shows(QueryOptions{})
	require.NoError(t, err)
	assert.Len(t, got, 2)
}
