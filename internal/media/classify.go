package media

import (
	"path/filepath"
	"regexp"
	"strings"
)

var (
	// a bare "Trailer" or "Sample" is a feature title, only suffixes count
	trailerSuffixRegex = regexp.MustCompile(`(?i)^.+[-_.]trailers?$`)
	sampleSuffixRegex  = regexp.MustCompile(`(?i)^.+[-_.]sample$`)

	// "Movie-extra", "Movie-extras", "Movie-extra-making of", "Movie-extra-"
	extraSuffixRegex = regexp.MustCompile(`(?i)^.+-extras?(?:-.*)?$`)

	// Season pack bonus discs: "Show.S01.EXTRAS.DVDRip". An episode tag
	// (S01E02) does not qualify, "Show.S03E06.The.Extras" is an episode title.
	seasonExtrasRegex = regexp.MustCompile(`(?i)(?:^|[._\s-])S\d{1,2}[._\s-]+extras?(?:[._\s-]|$)`)
)

// classify decides the MediaFileType of path. Only the path is inspected,
// the file does not need to exist.
func classify(path string) MediaFileType {
	typ := classifyByExtension(path)
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	switch typ {
	case FileTypeVideo:
		return classifyVideo(parentSegments(path), base)
	case FileTypeGraphic:
		return classifyArtwork(base)
	default:
		return typ
	}
}

func classifyVideo(dirs []string, base string) MediaFileType {
	switch {
	case hasSegment(dirs, "extra", "extras"):
		return FileTypeVideoExtra
	case extraSuffixRegex.MatchString(base):
		return FileTypeVideoExtra
	case hasSegment(dirs, "trailer", "trailers") || trailerSuffixRegex.MatchString(base):
		return FileTypeTrailer
	case hasSegment(dirs, "sample", "samples") || sampleSuffixRegex.MatchString(base):
		return FileTypeSample
	case seasonExtrasRegex.MatchString(base):
		return FileTypeVideoExtra
	default:
		return FileTypeVideo
	}
}

// parentSegments returns the directory components of path, outermost first.
func parentSegments(path string) []string {
	dir := filepath.ToSlash(filepath.Dir(path))
	var segments []string
	for _, s := range strings.Split(dir, "/") {
		if s != "" && s != "." {
			segments = append(segments, s)
		}
	}
	return segments
}

func hasSegment(segments []string, names ...string) bool {
	for _, s := range segments {
		for _, n := range names {
			if strings.EqualFold(s, n) {
				return true
			}
		}
	}
	return false
}
