package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShow_Downloadable(t *testing.T) {
	tests := []struct {
		name   string
		show   Show
		expect bool
	}{
		{
			name: "show with enclosure",
			show: Show{
				Title: "Episode 1",
				Link:  "https://example.com/ep1.mp4",
			},
			expect: true,
		},
		{
			name: "show without enclosure",
			show: Show{
				Title: "Episode 2",
				Link:  "",
			},
			expect: false,
		},
		{
			name:   "fully defaulted show",
			show:   Show{Title: DefaultTitle, PublishedRaw: DefaultDate},
			expect: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.show.Downloadable()
			assert.Equal(t, tt.expect, got)
		})
	}
}

func TestDownloadState_IsTerminal(t *testing.T) {
	tests := []struct {
		state  DownloadState
		expect bool
	}{
		{StateIdle, false},
		{StateInProgress, false},
		{StateCompleted, true},
		{StateCanceled, true},
		{StateFailed, true},
	}

	for _, tt := range tests {
		t.Run(tt.state.String(), func(t *testing.T) {
			assert.Equal(t, tt.expect, tt.state.IsTerminal())
		})
	}
}

func TestDownloadState_CanTransition(t *testing.T) {
	tests := []struct {
		name   string
		from   DownloadState
		to     DownloadState
		expect bool
	}{
		{"idle to in_progress", StateIdle, StateInProgress, true},
		{"idle to completed", StateIdle, StateCompleted, false},
		{"in_progress to completed", StateInProgress, StateCompleted, true},
		{"in_progress to canceled", StateInProgress, StateCanceled, true},
		{"in_progress to failed", StateInProgress, StateFailed, true},
		{"in_progress to idle", StateInProgress, StateIdle, false},
		{"completed is final", StateCompleted, StateInProgress, false},
		{"canceled is final", StateCanceled, StateInProgress, false},
		{"failed is final", StateFailed, StateIdle, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, tt.from.CanTransition(tt.to))
		})
	}
}

func TestProgress_Percent(t *testing.T) {
	tests := []struct {
		name     string
		progress Progress
		expect   int
	}{
		{
			name:     "unknown total",
			progress: Progress{BytesDownloaded: 4096, TotalBytes: 0},
			expect:   -1,
		},
		{
			name:     "not started",
			progress: Progress{BytesDownloaded: 0, TotalBytes: 1000},
			expect:   0,
		},
		{
			name:     "halfway",
			progress: Progress{BytesDownloaded: 500, TotalBytes: 1000},
			expect:   50,
		},
		{
			name:     "rounds down",
			progress: Progress{BytesDownloaded: 999, TotalBytes: 1000},
			expect:   99,
		},
		{
			name:     "complete",
			progress: Progress{BytesDownloaded: 1000, TotalBytes: 1000},
			expect:   100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, tt.progress.Percent())
		})
	}
}
