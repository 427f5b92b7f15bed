package manager

import (
	"net/url"
	"path"
	"strings"
	"unicode"

	"github.com/mainmeister/clubtwit-cli/model"
)

// fallbackExt is used when the media URL's path carries no extension.
const fallbackExt = ".mp4"

// Filename derives a filesystem-safe name for a show's media file:
// the title keeps letters, digits, spaces, dots and underscores and
// loses everything else, trailing whitespace is trimmed, and the
// extension comes from the enclosure URL's path. A title with nothing
// left becomes "episode".
func Filename(show model.Show) string {
	var b strings.Builder
	for _, r := range show.Title {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '.' || r == '_' {
			b.WriteRune(r)
		}
	}

	name := strings.TrimRightFunc(b.String(), unicode.IsSpace)
	if name == "" {
		name = "episode"
	}
	return name + extension(show.Link)
}

// extension pulls the file extension from the URL's path component,
// so query strings never leak into the name.
func extension(link string) string {
	u, err := url.Parse(link)
	if err != nil {
		return fallbackExt
	}
	if ext := path.Ext(u.Path); ext != "" {
		return ext
	}
	return fallbackExt
}
