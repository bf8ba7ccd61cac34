package database

import (
	"regexp"
	"strings"
)

var yearSuffixPattern = regexp.MustCompile(`\s*\((\d{4})\)\s*$`)

var titleReplacer = strings.NewReplacer(
	" ", "", ".", "", "-", "", "_", "",
	"'", "", ":", "", "&", "", "*", "",
	",", "", "!", "", "?", "",
	"(", "", ")", "", "[", "", "]", "",
)

// NormalizeTitle reduces a title to a matching key:
// "Alien Collection" -> "aliencollection", "Alien³ (1992)" -> "alien³".
func NormalizeTitle(title string) string {
	title = yearSuffixPattern.ReplaceAllString(title, "")
	return titleReplacer.Replace(strings.ToLower(title))
}
