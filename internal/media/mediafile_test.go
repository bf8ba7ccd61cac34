package media

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSameFile_FollowsFilesystemCase(t *testing.T) {
	dir := t.TempDir()
	lower := filepath.Join(dir, "movie.mkv")
	upper := filepath.Join(dir, "Movie.mkv")
	require.NoError(t, os.WriteFile(lower, []byte("x"), 0644))

	// Whether "Movie.mkv" resolves to the same file depends on the filesystem
	// the test runs on, not on a fixed string comparison.
	info, err := os.Stat(upper)
	caseInsensitive := false
	if err == nil {
		lowerInfo, _ := os.Stat(lower)
		caseInsensitive = os.SameFile(info, lowerInfo)
	}

	mf1 := NewMediaFile(lower)
	mf2 := NewMediaFile(upper)
	assert.Equal(t, caseInsensitive, mf1.SameFile(mf2))
	assert.Equal(t, caseInsensitive, mf2.SameFile(mf1))
	assert.True(t, mf1.SameFile(NewMediaFile(lower)))
}

func TestSameFile_Missing(t *testing.T) {
	a := NewMediaFile("/nonexistent/Alien (1979)/alien.mkv")
	b := NewMediaFile("/nonexistent/Alien (1979)/../Alien (1979)/alien.mkv")
	c := NewMediaFile("/nonexistent/Alien (1979)/aliens.mkv")

	assert.True(t, a.SameFile(b))
	assert.False(t, a.SameFile(c))
	assert.False(t, a.SameFile(nil))
}

func TestNewMediaFile(t *testing.T) {
	mf := NewMediaFile("/movies/Alien (1979)/./Alien (1979).mkv")
	assert.Equal(t, filepath.Clean("/movies/Alien (1979)/Alien (1979).mkv"), mf.Path)
	assert.Equal(t, "Alien (1979).mkv", mf.Filename)
	assert.Equal(t, "Alien (1979)", mf.Basename())
	assert.Equal(t, filepath.Clean("/movies/Alien (1979)"), mf.Dir())

	mf.SetPath("/archive/Alien (1979)/Alien (1979).mkv")
	assert.Equal(t, "Alien (1979).mkv", mf.Filename)
	assert.Equal(t, FileTypeVideo, mf.Type)
}

func TestVideoFormat(t *testing.T) {
	tests := []struct {
		w, h int
		want string
	}{
		{0, 0, ""},
		{720, 480, "480p"},
		{720, 576, "576p"},
		{1280, 536, "720p"},
		{1920, 1080, "1080p"},
		{1920, 800, "1080p"},
		{3840, 1600, "2160p"},
		{7680, 4320, "4320p"},
	}

	for _, tt := range tests {
		mf := &MediaFile{VideoWidth: tt.w, VideoHeight: tt.h}
		assert.Equal(t, tt.want, mf.VideoFormat(), "%dx%d", tt.w, tt.h)
	}
}
