package feed

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlainText(t *testing.T) {
	tests := []struct {
		name     string
		fragment string
		expect   string
	}{
		{
			name:     "plain text passes through",
			fragment: "Just text",
			expect:   "Just text",
		},
		{
			name:     "tags stripped",
			fragment: "<p>Hello <b>world</b></p>",
			expect:   "Hello world",
		},
		{
			name:     "paragraphs become spaced text",
			fragment: "<p>One</p><p>Two</p>",
			expect:   "One Two",
		},
		{
			name:     "entities decoded",
			fragment: "<p>Tom &amp; Jerry &lt;3</p>",
			expect:   "Tom & Jerry <3",
		},
		{
			name:     "script content removed",
			fragment: "<p>Safe</p><script>alert('x')</script>",
			expect:   "Safe",
		},
		{
			name:     "links keep their text",
			fragment: `See <a href="https://example.com">the notes</a> online`,
			expect:   "See the notes online",
		},
		{
			name:     "whitespace collapsed",
			fragment: "<p>Spread\n\n   out</p>",
			expect:   "Spread out",
		},
		{
			name:     "empty fragment",
			fragment: "",
			expect:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, PlainText(tt.fragment))
		})
	}
}
