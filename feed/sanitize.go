package feed

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// textPolicy strips every tag, leaving only text content.
var textPolicy = bluemonday.StrictPolicy().AddSpaceWhenStrippingTag(true)

// PlainText reduces an HTML description fragment to readable terminal
// text: markup removed, entities decoded, whitespace collapsed.
func PlainText(fragment string) string {
	text := textPolicy.Sanitize(fragment)
	text = html.UnescapeString(text)
	return strings.Join(strings.Fields(text), " ")
}
