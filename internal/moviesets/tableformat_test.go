package moviesets

import (
	"testing"

	"github.com/Nomadcxx/mediashelf/internal/media"
	"github.com/Nomadcxx/mediashelf/internal/movie"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableFormat_Columns(t *testing.T) {
	f := NewTableFormat()
	keys := make([]string, len(f.Columns))
	for i, c := range f.Columns {
		keys[i] = c.Key
	}
	assert.Equal(t, []string{"title", "movies", "rating", "format", "size", "nfo", "images", "watched"}, keys)

	title, ok := f.Column("title")
	require.True(t, ok)
	assert.True(t, title.Resizable)
	assert.True(t, title.Supports(MovieNode))
	assert.False(t, title.Supports(RootNode))

	_, ok = f.Column("director")
	assert.False(t, ok)
}

func TestTableFormat_MovieRow(t *testing.T) {
	set := movie.NewMovieSet("Alien Collection")
	m := movie.NewMovie("Alien", 1979, "/movies/Alien")
	m.Rating.Value = 8.46
	m.Watched = true

	cd1 := media.NewMediaFile("/movies/Alien/Alien.cd1.mkv")
	cd1.Filesize = 734003200 // 700 MiB
	cd1.VideoWidth, cd1.VideoHeight = 1920, 800
	cd2 := media.NewMediaFile("/movies/Alien/Alien.cd2.mkv")
	cd2.Filesize = 1048576*300 + 512
	trailer := media.NewMediaFile("/movies/Alien/Alien-trailer.mkv")
	trailer.Filesize = 1048576 * 50
	m.AddMediaFile(cd1)
	m.AddMediaFile(cd2)
	m.AddMediaFile(trailer)
	m.AddMediaFile(media.NewMediaFile("/movies/Alien/Alien.nfo"))

	f := NewTableFormat()
	row := f.Row(MovieNodeOf(set, m))
	require.Len(t, row, 8)

	assert.Equal(t, "Alien", row[0].Text)
	assert.True(t, row[1].Blank(), "movie count only applies to sets")
	assert.Equal(t, "8.5", row[2].Text)
	assert.Equal(t, "1080p", row[3].Text)
	assert.Equal(t, "1000 M", row[4].Text)
	assert.Equal(t, Value{Check: true, Set: true}, row[5])
	assert.Equal(t, Value{Check: false, Set: true}, row[6])
	assert.True(t, row[7].Check)
}

func TestTableFormat_EmptyMovie(t *testing.T) {
	set := movie.NewMovieSet("x")
	m := movie.NewMovie("Nothing", 0, "/movies/Nothing")
	row := NewTableFormat().Row(MovieNodeOf(set, m))

	for i, key := range []string{"rating", "format"} {
		assert.True(t, row[i+2].Blank(), key)
	}
	assert.Equal(t, "0 M", row[4].Text, "size is shown even without video files")
	assert.False(t, row[5].Blank())
	assert.False(t, row[5].Check)
}

func TestTableFormat_SetRow(t *testing.T) {
	fx := newFixture()
	row := NewTableFormat().Row(SetNode(fx.alien))

	assert.Equal(t, "Alien Collection", row[0].Text)
	assert.Equal(t, "2", row[1].Text)
	assert.True(t, row[2].Blank())
	assert.True(t, row[3].Blank())
	assert.True(t, row[4].Blank())
	assert.True(t, row[5].Blank(), "nfo has no set extractor")
	assert.Equal(t, Value{Set: true}, row[6])
	assert.Equal(t, Value{Set: true}, row[7], "Aliens is unwatched")

	empty := movie.NewMovieSet("Empty")
	assert.True(t, NewTableFormat().Row(SetNode(empty))[1].Blank())
}

func TestTableFormat_Root(t *testing.T) {
	for _, v := range NewTableFormat().Row(Root) {
		assert.True(t, v.Blank())
	}
}
