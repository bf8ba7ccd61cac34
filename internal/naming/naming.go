// Package naming turns release-style folder and file names into clean movie
// titles and years.
package naming

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/Nomadcxx/mediashelf/internal/media"
)

// MovieInfo is the title and year recovered from a name. Year is 0 when the
// name carries none.
type MovieInfo struct {
	Title string
	Year  int
}

var (
	yearRegex      = regexp.MustCompile(`\b(19|20)\d{2}\b`)
	yearParenRegex = regexp.MustCompile(`[(\[]((?:19|20)\d{2})[)\]]`)
	episodeSERegex = regexp.MustCompile(`(?i)\bS(\d{1,2})E(\d{1,3})`)
	episodeXRegex  = regexp.MustCompile(`\b(\d{1,2})x(\d{2})\b`)
	dateEpRegex    = regexp.MustCompile(`\b(19|20)\d{2}[.\-](0[1-9]|1[0-2])[.\-](0[1-9]|[12]\d|3[01])\b`)
	spaceRegex     = regexp.MustCompile(`\s+`)

	releasePatterns []*regexp.Regexp
)

func init() {
	patterns := []string{
		`\b\d{3,4}[pi]\b`,
		`\b(4K|UHD)\b`,
		`\b(HDR10\+?|HDR|DoVi|DV)\b`,
		`\b(DTS-HD|DTS-X|DTS|TrueHD|Atmos|AAC|AC3|DD\+?|DDP|FLAC)\b`,
		`\b(BluRay|Blu-ray|BDRip|BRRip|REMUX|WEB-DL|WEBDL|WEBRip|WEB)\b`,
		`\b(HDTV|DVDRip|DVD|DVD5|DVD9)\b`,
		`\b(AMZN|NF|ATVP|HULU)\b`,
		`\b(x264|x265|HEVC|AVC|XviD|DivX|H\.?264|H\.?265)\b`,
		`\b(PROPER|REPACK|iNTERNAL|LIMITED|EXTENDED|UNRATED|REMASTERED)\b`,
		`\b(DUAL|MULTI|DUB|SUBS)\b`,
		`\b(8bit|10bit|12bit)\b`,
		`\[.*?\]`,
	}
	releasePatterns = make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		releasePatterns = append(releasePatterns, regexp.MustCompile(`(?i)`+p))
	}
}

// ParseMovieName extracts title and year from a movie folder or file name,
// e.g. "The.Matrix.1999.1080p.BluRay.x264-GROUP" or "Alien (1979)". Known
// video extensions are dropped first. Everything after the year is treated
// as release information.
func ParseMovieName(name string) (*MovieInfo, error) {
	base := filepath.Base(name)
	if media.IsVideoExtension(filepath.Ext(base)) {
		base = strings.TrimSuffix(base, filepath.Ext(base))
	}

	// underscores are word characters for \b; treat them like dots
	base = strings.ReplaceAll(base, "_", ".")

	year, at := extractYear(base)
	title := base
	if at > 0 {
		title = base[:at]
	}

	title = cleanTitle(title)
	if title == "" {
		return nil, fmt.Errorf("could not extract movie title from: %s", name)
	}
	return &MovieInfo{Title: title, Year: year}, nil
}

// extractYear returns the release year and the offset it starts at (including
// an opening bracket). A year in brackets wins; otherwise the last bare year
// that does not start the name, so "2012.2009" is the movie 2012 from 2009.
func extractYear(s string) (int, int) {
	if loc := yearParenRegex.FindAllStringSubmatchIndex(s, -1); len(loc) > 0 {
		last := loc[len(loc)-1]
		y, _ := strconv.Atoi(s[last[2]:last[3]])
		return y, last[0]
	}

	locs := yearRegex.FindAllStringIndex(s, -1)
	for i := len(locs) - 1; i >= 0; i-- {
		if locs[i][0] == 0 {
			continue
		}
		y, _ := strconv.Atoi(s[locs[i][0]:locs[i][1]])
		return y, locs[i][0]
	}
	return 0, -1
}

func cleanTitle(s string) string {
	// dots and underscores are word separators in release names; keep
	// abbreviations such as "E.T." only when they are spaced normally
	if !strings.Contains(s, " ") {
		s = strings.NewReplacer(".", " ", "_", " ").Replace(s)
	}
	for _, re := range releasePatterns {
		s = re.ReplaceAllString(s, " ")
	}
	s = spaceRegex.ReplaceAllString(s, " ")
	return strings.Trim(s, " -([")
}

// IsTVEpisodeName reports whether a name carries an episode marker (S01E02,
// 1x02 or an air date).
func IsTVEpisodeName(name string) bool {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	return episodeSERegex.MatchString(base) ||
		episodeXRegex.MatchString(base) ||
		dateEpRegex.MatchString(base)
}

// DetectMediaType guesses whether a file is a movie or a TV episode from its
// name alone.
func DetectMediaType(name string) media.MediaType {
	if IsTVEpisodeName(name) {
		return media.MediaTypeTV
	}
	return media.MediaTypeMovie
}

var leadingArticles = []string{"the ", "a ", "an "}

// SortTitle drops a leading English article ("The Matrix" sorts as "Matrix").
func SortTitle(title string) string {
	lower := strings.ToLower(title)
	for _, a := range leadingArticles {
		if strings.HasPrefix(lower, a) && len(title) > len(a) {
			return strings.TrimSpace(title[len(a):])
		}
	}
	return title
}

// FormatMovieFolder returns the canonical folder name "Title (Year)".
func FormatMovieFolder(title string, year int) string {
	if year > 0 {
		return fmt.Sprintf("%s (%d)", title, year)
	}
	return title
}
