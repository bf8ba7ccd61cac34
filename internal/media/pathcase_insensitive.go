//go:build windows || darwin

package media

import "strings"

// NTFS and APFS/HFS+ default to case-insensitive lookups.
func pathsEqual(a, b string) bool {
	return strings.EqualFold(a, b)
}
