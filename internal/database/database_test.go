package database

import (
	"path/filepath"
	"testing"

	"github.com/Nomadcxx/mediashelf/internal/media"
	"github.com/Nomadcxx/mediashelf/internal/movie"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestDB creates a temporary on-disk database.
func setupTestDB(t *testing.T) *MediaDB {
	t.Helper()
	db, err := OpenPath(filepath.Join(t.TempDir(), "nested", "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func setupMemoryDB(t *testing.T) *MediaDB {
	t.Helper()
	db, err := OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleMovie(set *movie.MovieSet) *movie.Movie {
	m := movie.NewMovie("Alien", 1979, "/movies/Alien (1979)")
	m.SortTitle = "Alien 1"
	m.Plot = "In space no one can hear you scream."
	m.Rating = movie.Rating{Value: 8.5, Votes: 950000, Max: 10}
	m.Watched = true
	if set != nil {
		m.SetID = set.ID
	}

	cd1 := media.NewMediaFile("/movies/Alien (1979)/Alien.cd1.mkv")
	cd1.Filesize = 700
	cd1.VideoCodec = "h264"
	cd1.VideoWidth, cd1.VideoHeight = 1920, 1040
	cd1.SetStacking(1)
	cd1.SetStackingMarker("cd1")
	cd1.AudioStreams = []media.AudioStream{
		{Codec: "dts", Channels: "5.1", Language: "eng", Bitrate: 1536000},
		{Codec: "ac3", Channels: "2", Language: "ger"},
	}
	cd2 := media.NewMediaFile("/movies/Alien (1979)/Alien.cd2.mkv")
	cd2.Filesize = 600
	cd2.SetStacking(2)
	cd2.SetStackingMarker("cd2")

	m.AddMediaFile(cd1)
	m.AddMediaFile(cd2)
	m.AddMediaFile(media.NewMediaFile("/movies/Alien (1979)/movie.nfo"))
	return m
}

func TestOpen_Migrations(t *testing.T) {
	for name, db := range map[string]*MediaDB{"file": setupTestDB(t), "memory": setupMemoryDB(t)} {
		t.Run(name, func(t *testing.T) {
			v, err := db.SchemaVersion()
			require.NoError(t, err)
			assert.Equal(t, currentSchemaVersion, v)
		})
	}
}

func TestOpenPath_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "media.db")
	db, err := OpenPath(path)
	require.NoError(t, err)
	require.NoError(t, db.UpsertMovieSet(movie.NewMovieSet("Alien Collection")))
	require.NoError(t, db.Close())

	db, err = OpenPath(path)
	require.NoError(t, err)
	defer db.Close()
	assert.Equal(t, path, db.Path())
	n, err := db.CountMovieSets()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestUpsertMovie_RoundTrip(t *testing.T) {
	db := setupMemoryDB(t)
	set := movie.NewMovieSet("Alien Collection")
	require.NoError(t, db.UpsertMovieSet(set))

	m := sampleMovie(set)
	require.NoError(t, db.UpsertMovie(m))

	got, err := db.GetMovie(m.ID)
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, m.Title, got.Title)
	assert.Equal(t, m.SortTitle, got.SortTitle)
	assert.Equal(t, m.Year, got.Year)
	assert.Equal(t, m.Path, got.Path)
	assert.Equal(t, m.Plot, got.Plot)
	assert.Equal(t, m.Rating, got.Rating)
	assert.True(t, got.Watched)
	assert.Equal(t, set.ID, got.SetID)

	require.Len(t, got.MediaFiles, 3)
	cd1 := got.MediaFiles[0]
	assert.Equal(t, media.FileTypeVideo, cd1.Type)
	assert.Equal(t, "Alien.cd1.mkv", cd1.Filename)
	assert.Equal(t, int64(700), cd1.Filesize)
	assert.Equal(t, "1080p", cd1.VideoFormat())
	assert.True(t, cd1.IsStacked())
	assert.Equal(t, "Alien.mkv", cd1.FilenameWithoutStacking())
	require.Len(t, cd1.AudioStreams, 2)
	assert.Equal(t, 6, cd1.MaxAudioChannels())
	assert.Equal(t, 1536000, cd1.AudioStreams[0].Bitrate)
	assert.Equal(t, media.FileTypeNFO, got.MediaFiles[2].Type)

	// update replaces the file list
	m.Title = "Alien (Director's Cut)"
	m.MediaFiles = m.MediaFiles[:1]
	require.NoError(t, db.UpsertMovie(m))
	got, err = db.GetMovie(m.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alien (Director's Cut)", got.Title)
	assert.Len(t, got.MediaFiles, 1)
}

func TestUpsertMovie_ReplacesSamePath(t *testing.T) {
	db := setupMemoryDB(t)
	first := sampleMovie(nil)
	require.NoError(t, db.UpsertMovie(first))

	second := sampleMovie(nil)
	require.NoError(t, db.UpsertMovie(second))

	n, err := db.CountMovies()
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := db.GetMovieByPath(first.Path)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, second.ID, got.ID)
}

func TestNotFound(t *testing.T) {
	db := setupMemoryDB(t)

	m, err := db.GetMovie("missing")
	assert.NoError(t, err)
	assert.Nil(t, m)

	m, err = db.GetMovieByPath("/nowhere")
	assert.NoError(t, err)
	assert.Nil(t, m)

	s, err := db.GetMovieSet("missing")
	assert.NoError(t, err)
	assert.Nil(t, s)

	assert.NoError(t, db.DeleteMovie("missing"))
}

func TestDeleteMovieSet_DetachesMovies(t *testing.T) {
	db := setupMemoryDB(t)
	set := movie.NewMovieSet("Alien Collection")
	require.NoError(t, db.UpsertMovieSet(set))
	m := sampleMovie(set)
	require.NoError(t, db.UpsertMovie(m))

	found, err := db.GetMovieSetByTitle("alien collection")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, set.ID, found.ID)

	require.NoError(t, db.DeleteMovieSet(set.ID))
	got, err := db.GetMovie(m.ID)
	require.NoError(t, err)
	assert.Empty(t, got.SetID)
}

func TestDeleteMovie_CascadesFiles(t *testing.T) {
	db := setupMemoryDB(t)
	m := sampleMovie(nil)
	require.NoError(t, db.UpsertMovie(m))
	require.NoError(t, db.DeleteMovie(m.ID))

	stats, err := db.GetStats()
	require.NoError(t, err)
	assert.Zero(t, stats.Movies)
	assert.Zero(t, stats.MediaFiles)
}

func TestSaveAndLoadLibrary(t *testing.T) {
	db := setupTestDB(t)

	lib := movie.NewLibrary()
	set := movie.NewMovieSet("Alien Collection")
	set.Poster = "/movies/.sets/Alien Collection/poster.jpg"
	lib.AddMovieSet(set)
	alien := sampleMovie(set)
	lib.AddMovie(alien)
	heat := movie.NewMovie("Heat", 1995, "/movies/Heat (1995)")
	heat.AddMediaFile(media.NewMediaFile("/movies/Heat (1995)/Heat.mkv"))
	lib.AddMovie(heat)

	require.NoError(t, db.SaveLibrary(lib))

	loaded, err := db.LoadLibrary()
	require.NoError(t, err)
	require.Len(t, loaded.Movies(), 2)
	require.Len(t, loaded.MovieSets(), 1)
	loadedSet := loaded.MovieSets()[0]
	assert.Equal(t, set.Poster, loadedSet.Poster)
	assert.Equal(t, 1, loadedSet.MovieCount())
	assert.Equal(t, alien.ID, loadedSet.Movies()[0].ID)

	stats, err := db.GetStats()
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Movies)
	assert.Equal(t, 1, stats.MovieSets)
	assert.Equal(t, 4, stats.MediaFiles)
	assert.Equal(t, 3, stats.FilesByType["VIDEO"])

	// saving again drops what left the library
	lib.RemoveMovie(heat.ID)
	lib.RemoveMovieSet(set.ID)
	require.NoError(t, db.SaveLibrary(lib))

	loaded, err = db.LoadLibrary()
	require.NoError(t, err)
	require.Len(t, loaded.Movies(), 1)
	assert.Empty(t, loaded.MovieSets())
	assert.Empty(t, loaded.Movies()[0].SetID)

	lib.RemoveMovie(alien.ID)
	require.NoError(t, db.SaveLibrary(lib))
	n, err := db.CountMovies()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSearchMovies(t *testing.T) {
	db := setupMemoryDB(t)
	require.NoError(t, db.UpsertMovie(sampleMovie(nil)))
	require.NoError(t, db.UpsertMovie(movie.NewMovie("Heat", 1995, "/movies/Heat")))

	found, err := db.SearchMovies("ALIEN")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Alien", found[0].Title)
	assert.Len(t, found[0].MediaFiles, 3)
}

func TestNormalizeTitle(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Alien Collection", "aliencollection"},
		{"The Matrix (1999)", "thematrix"},
		{"M*A*S*H", "mash"},
		{"Mr. Robot", "mrrobot"},
		{"Star Wars: Episode IV", "starwarsepisodeiv"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeTitle(tt.input))
		})
	}
}
