package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/Nomadcxx/mediashelf/internal/movie"
	"github.com/Nomadcxx/mediashelf/internal/scanner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const alienNFO = `<movie><title>Alien</title><year>1979</year><set><name>Alien Collection</name></set></movie>`

func writeFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLibraryHandler_AddUpdateRemove(t *testing.T) {
	root := t.TempDir()
	lib := movie.NewLibrary()
	changes := 0
	h := NewLibraryHandler(lib, scanner.New(), []string{root}, WithAfterChange(func() { changes++ }))

	video := writeFile(t, root, "Alien (1979)/Alien.mkv", "0123456789")
	writeFile(t, root, "Alien (1979)/movie.nfo", alienNFO)
	writeFile(t, root, ".sets/Alien Collection/poster.jpg", "x")

	require.NoError(t, h.HandleFileEvent(FileEvent{Type: EventCreate, Path: video}))
	require.Len(t, lib.Movies(), 1)
	m := lib.Movies()[0]
	assert.Equal(t, "Alien", m.Title)
	assert.Equal(t, filepath.Join(root, "Alien (1979)"), m.Path)

	set := lib.MovieSetOf(m)
	require.NotNil(t, set)
	assert.Equal(t, "Alien Collection", set.Title)
	assert.NotEmpty(t, set.Poster)
	id := m.ID

	// a trailer in a subfolder updates the same movie
	trailer := writeFile(t, root, "Alien (1979)/trailers/Alien.mkv", "x")
	require.NoError(t, h.HandleFileEvent(FileEvent{Type: EventCreate, Path: trailer}))
	require.Len(t, lib.Movies(), 1)
	assert.Equal(t, id, lib.Movies()[0].ID)
	assert.Len(t, lib.Movies()[0].MediaFiles, 3)

	require.NoError(t, os.RemoveAll(filepath.Join(root, "Alien (1979)")))
	require.NoError(t, h.HandleFileEvent(FileEvent{Type: EventDelete, Path: filepath.Join(root, "Alien (1979)")}))
	assert.Empty(t, lib.Movies())
	assert.Empty(t, lib.MovieSets())
	assert.Equal(t, 3, changes)
}

func TestLibraryHandler_LastVideoRemoved(t *testing.T) {
	root := t.TempDir()
	lib := movie.NewLibrary()
	h := NewLibraryHandler(lib, scanner.New(), []string{root})

	video := writeFile(t, root, "Heat (1995)/Heat.mkv", "x")
	writeFile(t, root, "Heat (1995)/poster.jpg", "x")
	require.NoError(t, h.HandleFileEvent(FileEvent{Type: EventCreate, Path: video}))
	require.Len(t, lib.Movies(), 1)
	assert.Equal(t, "Heat", lib.Movies()[0].Title)
	assert.Equal(t, 1995, lib.Movies()[0].Year)

	require.NoError(t, os.Remove(video))
	require.NoError(t, h.HandleFileEvent(FileEvent{Type: EventDelete, Path: video}))
	assert.Empty(t, lib.Movies())
}

func TestLibraryHandler_OutsideRoots(t *testing.T) {
	root := t.TempDir()
	other := t.TempDir()
	lib := movie.NewLibrary()
	h := NewLibraryHandler(lib, scanner.New(), []string{root})

	video := writeFile(t, other, "Heat (1995)/Heat.mkv", "x")
	require.NoError(t, h.HandleFileEvent(FileEvent{Type: EventCreate, Path: video}))
	assert.Empty(t, lib.Movies())
}

func TestLibraryHandler_Debounce(t *testing.T) {
	root := t.TempDir()
	lib := movie.NewLibrary()
	h := NewLibraryHandler(lib, scanner.New(), []string{root}, WithDebounce(time.Hour))
	defer h.Close()

	cd1 := writeFile(t, root, "Aliens (1986)/Aliens.cd1.avi", "x")
	cd2 := writeFile(t, root, "Aliens (1986)/Aliens.cd2.avi", "x")
	require.NoError(t, h.HandleFileEvent(FileEvent{Type: EventCreate, Path: cd1}))
	require.NoError(t, h.HandleFileEvent(FileEvent{Type: EventCreate, Path: cd2}))

	assert.Equal(t, 1, h.Pending())
	assert.Empty(t, lib.Movies())

	require.NoError(t, h.Flush(context.Background()))
	assert.Zero(t, h.Pending())
	require.Len(t, lib.Movies(), 1)
	assert.True(t, lib.Movies()[0].IsStacked())
}

func TestLibraryHandler_DebounceFires(t *testing.T) {
	root := t.TempDir()
	lib := movie.NewLibrary()
	h := NewLibraryHandler(lib, scanner.New(), []string{root}, WithDebounce(20*time.Millisecond))
	defer h.Close()

	video := writeFile(t, root, "Heat (1995)/Heat.mkv", "x")
	require.NoError(t, h.HandleFileEvent(FileEvent{Type: EventWrite, Path: video}))
	assert.Eventually(t, func() bool { return len(lib.Movies()) == 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestLibraryHandler_ConcurrentRefreshesShareOneSet(t *testing.T) {
	root := t.TempDir()
	lib := movie.NewLibrary()
	var applyMu sync.Mutex
	h := NewLibraryHandler(lib, scanner.New(), []string{root}, WithApplyLock(&applyMu))

	var videos []string
	for i := 1; i <= 8; i++ {
		dir := fmt.Sprintf("Part %d (%d)", i, 2000+i)
		videos = append(videos, writeFile(t, root, dir+"/movie.mkv", "x"))
		writeFile(t, root, dir+"/movie.nfo", fmt.Sprintf(
			`<movie><title>Part %d</title><year>%d</year><set><name>Saga</name></set></movie>`, i, 2000+i))
	}

	var wg sync.WaitGroup
	for _, video := range videos {
		wg.Add(1)
		go func(path string) {
			defer wg.Done()
			assert.NoError(t, h.HandleFileEvent(FileEvent{Type: EventCreate, Path: path}))
		}(video)
	}
	wg.Wait()

	require.Len(t, lib.MovieSets(), 1)
	set := lib.MovieSets()[0]
	assert.Equal(t, "Saga", set.Title)
	assert.Equal(t, 8, set.MovieCount())
	for _, m := range lib.Movies() {
		assert.Equal(t, set.ID, m.SetID, m.Title)
	}
}

func TestLibraryHandler_WaitsForApplyLock(t *testing.T) {
	root := t.TempDir()
	lib := movie.NewLibrary()
	var applyMu sync.Mutex
	h := NewLibraryHandler(lib, scanner.New(), []string{root}, WithApplyLock(&applyMu))
	video := writeFile(t, root, "Heat (1995)/Heat.mkv", "x")

	applyMu.Lock()
	done := make(chan error, 1)
	go func() { done <- h.HandleFileEvent(FileEvent{Type: EventCreate, Path: video}) }()

	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, lib.Movies())
	applyMu.Unlock()

	require.NoError(t, <-done)
	assert.Len(t, lib.Movies(), 1)
}
