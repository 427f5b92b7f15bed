package main

import (
	"fmt"
	"io"

	"github.com/mainmeister/clubtwit-cli/model"
)

// formatBytes renders a byte count as a short human-readable size.
func formatBytes(n float64) string {
	for _, unit := range []string{"B", "KB", "MB", "GB"} {
		if n < 1024 {
			return fmt.Sprintf("%.1f %s", n, unit)
		}
		n /= 1024
	}
	return fmt.Sprintf("%.1f TB", n)
}

// formatETA renders seconds as h:mm:ss or m:ss, or --:-- when unknown.
func formatETA(seconds float64) string {
	if seconds < 0 {
		return "--:--"
	}

	total := int(seconds + 0.5)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60

	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// renderProgress writes a one-line progress report, overwriting the
// previous line with a carriage return. When the total size is unknown
// there is no percentage or ETA to show.
func renderProgress(w io.Writer, p model.Progress) {
	if p.TotalBytes > 0 {
		fmt.Fprintf(w, "\r%3d%%  %s / %s  %s/s  ETA %s",
			p.Percent(),
			formatBytes(float64(p.BytesDownloaded)),
			formatBytes(float64(p.TotalBytes)),
			formatBytes(p.Rate),
			formatETA(p.ETASeconds))
		return
	}

	fmt.Fprintf(w, "\r%s  %s/s",
		formatBytes(float64(p.BytesDownloaded)),
		formatBytes(p.Rate))
}
