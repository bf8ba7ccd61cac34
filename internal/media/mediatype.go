package media

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// MediaType is the kind of library an item belongs to.
type MediaType int

const (
	MediaTypeNone MediaType = iota
	MediaTypeMovie
	MediaTypeTV
)

func (t MediaType) String() string {
	switch t {
	case MediaTypeMovie:
		return "movie"
	case MediaTypeTV:
		return "tv"
	default:
		return "none"
	}
}

// DisplayName returns the title-cased name shown in listings.
func (t MediaType) DisplayName() string {
	if t == MediaTypeTV {
		return "TV"
	}
	return cases.Title(language.English).String(t.String())
}

// ParseMediaType maps a case-insensitive token to a MediaType.
// "movie" and "movies" map to MediaTypeMovie, "tv" to MediaTypeTV.
// Anything else returns MediaTypeNone and false.
func ParseMediaType(id string) (MediaType, bool) {
	switch strings.ToLower(strings.TrimSpace(id)) {
	case "movie", "movies":
		return MediaTypeMovie, true
	case "tv":
		return MediaTypeTV, true
	default:
		return MediaTypeNone, false
	}
}
