//go:build !windows && !darwin

package media

func pathsEqual(a, b string) bool {
	return a == b
}
