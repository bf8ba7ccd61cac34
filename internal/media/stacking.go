package media

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

var (
	stackingNumberRegex = regexp.MustCompile(`(?i)^(.+?)[ _.-]+((?:cd|dvd|p(?:ar)?t|dis[ck])[ _.-]*([0-9]{1,2}))$`)
	stackingLetterRegex = regexp.MustCompile(`(?i)^(.+?)[ _.-]+((?:cd|dvd|p(?:ar)?t|dis[ck])[ _.-]*([a-d]))$`)
	stackingOfRegex     = regexp.MustCompile(`(?i)^(.+?)[ _.-]+(([0-9])[ _.-]?of[ _.-]?[0-9])$`)
)

// ParseStacking looks for a multi-part marker ("cd1", "part 2", "disc b",
// "1of2") at the end of a filename (the extension is ignored). It returns the
// 1-based part index and the marker as written in the name.
func ParseStacking(filename string) (index int, marker string, ok bool) {
	base := trimExtension(filename)

	if m := stackingNumberRegex.FindStringSubmatch(base); m != nil {
		n, err := strconv.Atoi(m[3])
		if err != nil || n == 0 {
			return 0, "", false
		}
		return n, m[2], true
	}
	if m := stackingLetterRegex.FindStringSubmatch(base); m != nil {
		return int(strings.ToLower(m[3])[0]-'a') + 1, m[2], true
	}
	if m := stackingOfRegex.FindStringSubmatch(base); m != nil {
		n, _ := strconv.Atoi(m[3])
		if n == 0 {
			return 0, "", false
		}
		return n, m[2], true
	}
	return 0, "", false
}

// removeStackingMarker strips marker and the separators in front of it from
// filename, keeping the extension.
func removeStackingMarker(filename, marker string) string {
	if marker == "" {
		return filename
	}
	base := trimExtension(filename)
	ext := filename[len(base):]

	quoted := regexp.QuoteMeta(marker)
	trailing := regexp.MustCompile(`(?i)[ _.-]*` + quoted + `$`)
	if trailing.MatchString(base) {
		return trailing.ReplaceAllString(base, "") + ext
	}

	anywhere := regexp.MustCompile(`(?i)[ _.-]*` + quoted)
	loc := anywhere.FindStringIndex(base)
	if loc == nil {
		return filename
	}
	return base[:loc[0]] + base[loc[1]:] + ext
}

// trimExtension drops a known media extension. Unknown suffixes such as the
// ".cd1" in "Movie.2010.cd1" are part of the name.
func trimExtension(filename string) string {
	ext := filepath.Ext(filename)
	if ext == "" || classifyByExtension(filename) == FileTypeUnknown {
		return filename
	}
	return strings.TrimSuffix(filename, ext)
}
