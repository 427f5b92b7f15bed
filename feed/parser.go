// Package feed provides podcast feed fetching and parsing for clubtwit-cli.
package feed

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mainmeister/clubtwit-cli/model"
	"github.com/mmcdole/gofeed"
)

// Parse converts raw feed bytes into show records, one per item, in
// document order. It fails only when no feed structure can be located
// in the data. Individual items never fail: missing or malformed
// fields are replaced with defaults so every returned Show is complete.
func Parse(data []byte) ([]model.Show, error) {
	parsed, err := gofeed.NewParser().Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrParse, err)
	}

	shows := make([]model.Show, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		shows = append(shows, convertItem(item))
	}
	return shows, nil
}

// convertItem maps one feed item to a Show, substituting defaults for
// anything missing.
func convertItem(item *gofeed.Item) model.Show {
	show := model.Show{
		Title:        model.DefaultTitle,
		PublishedRaw: model.DefaultDate,
	}

	if item.Title != "" {
		show.Title = item.Title
	}

	// Keep the literal date string for display; the parsed form only
	// feeds sorting, so an unparseable date degrades to 0, not an error.
	if item.Published != "" {
		show.PublishedRaw = item.Published
	} else if item.Updated != "" {
		show.PublishedRaw = item.Updated
	}
	if item.PublishedParsed != nil {
		show.PublishedUnix = item.PublishedParsed.Unix()
	} else if item.UpdatedParsed != nil {
		show.PublishedUnix = item.UpdatedParsed.Unix()
	}

	show.DescriptionHTML = item.Description
	show.Description = firstParagraph(item.Description)

	if len(item.Enclosures) > 0 && item.Enclosures[0] != nil {
		enclosure := item.Enclosures[0]
		show.Link = enclosure.URL
		if length, err := strconv.ParseInt(enclosure.Length, 10, 64); err == nil && length > 0 {
			show.LengthBytes = length
		}
	}

	return show
}

// firstParagraph extracts the text content of the first <p> element in
// an HTML description fragment. A fragment without a paragraph yields
// "", and a fragment that cannot be parsed yields a fixed placeholder.
func firstParagraph(fragment string) string {
	if fragment == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return model.DescriptionParseFailed
	}

	return strings.TrimSpace(doc.Find("p").First().Text())
}
