package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xkcdfetch/pkg/comic"
	errs "xkcdfetch/pkg/errors"
	"xkcdfetch/pkg/logger"
)

func newTestStore(t *testing.T) (*Store, *logger.TestLogger) {
	t.Helper()
	log := logger.NewTestLogger()
	store, err := NewStore(filepath.Join(t.TempDir(), "work", "xkcd-fetch"), "comic-data.txt", log)
	require.NoError(t, err)
	return store, log
}

func TestNewStoreBootstrapsDirectory(t *testing.T) {
	store, _ := newTestStore(t)

	info, err := os.Stat(store.Dir())
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	data, err := os.ReadFile(store.DataPath())
	require.NoError(t, err)
	assert.Empty(t, data)

	coll, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, coll)
}

func TestNewStoreKeepsExistingData(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "comic-data.txt")
	require.NoError(t, os.WriteFile(path, []byte("3\nIsland (sketch)\n\n\n2006-1-1\n<transcript>\n\n</transcript>\n\n"), 0644))

	store, err := NewStore(dir, "comic-data.txt", logger.NewNopLogger())
	require.NoError(t, err)

	coll, err := store.Load()
	require.NoError(t, err)
	require.Contains(t, coll, 3)
	assert.Equal(t, "Island (sketch)", coll[3].Title)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store, _ := newTestStore(t)
	require.NoError(t, store.SaveImage("barrel_cropped_(1).jpg", []byte("jpeg")))

	coll := comic.Collection{
		1: {
			Number:     1,
			Title:      "Barrel - Part 1",
			ImageName:  "barrel_cropped_(1).jpg",
			TitleText:  "Don't we all.",
			Date:       "2006-1-1",
			Transcript: "[[A boy sits in a barrel.]]\n\nBoy: I wonder where I'll float next?  ",
		},
		2: {Number: 2, Title: "Petit Trees (sketch)", Date: "2006-1-1"},
	}
	require.NoError(t, store.Save(coll))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, coll, loaded)
}

func TestSaveReplacesFileAndLeavesNoTemporaries(t *testing.T) {
	store, _ := newTestStore(t)

	require.NoError(t, store.Save(comic.Collection{5: {Number: 5, Title: "first"}}))
	require.NoError(t, store.Save(comic.Collection{6: {Number: 6, Title: "second"}}))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.NotContains(t, loaded, 5)
	assert.Contains(t, loaded, 6)

	entries, err := os.ReadDir(store.Dir())
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasSuffix(e.Name(), ".tmp"), "leftover %s", e.Name())
	}
}

func TestLoadDiscardsRecordsWithMissingImage(t *testing.T) {
	store, log := newTestStore(t)
	require.NoError(t, store.SaveImage("present.png", []byte("png")))

	require.NoError(t, store.Save(comic.Collection{
		10: {Number: 10, Title: "kept", ImageName: "present.png", Date: "2006-1-1"},
		11: {Number: 11, Title: "gone", ImageName: "missing.png", Date: "2006-1-1"},
		12: {Number: 12, Title: "placeholder", Date: "2006-1-1"},
	}))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, []int{10, 12}, loaded.Numbers())

	dropped := log.GetMessagesByLevel("DEBUG")
	found := false
	for _, m := range dropped {
		if m.Message == "Discarding record with missing image" {
			found = true
			assert.Equal(t, 11, m.Fields["number"])
		}
	}
	assert.True(t, found)
}

func TestLoadCorruptFile(t *testing.T) {
	store, _ := newTestStore(t)
	require.NoError(t, os.WriteFile(store.DataPath(), []byte("12\ntitle\nimage.png\n"), 0644))

	coll, err := store.Load()
	require.Error(t, err)
	assert.Nil(t, coll)
	assert.True(t, errs.Is(err, errs.ErrorTypeParsing))
}

func TestSaveImage(t *testing.T) {
	store, _ := newTestStore(t)

	assert.False(t, store.HasImage("barrel.jpg"))
	require.NoError(t, store.SaveImage("barrel.jpg", []byte("data")))
	assert.True(t, store.HasImage("barrel.jpg"))

	data, err := os.ReadFile(store.ImagePath("barrel.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "data", string(data))
}

func TestSaveImageRejectsUnsafeNames(t *testing.T) {
	store, _ := newTestStore(t)

	for _, name := range []string{"", ".", "..", "../escape.png", "sub/dir.png", `back\slash.png`} {
		assert.Error(t, store.SaveImage(name, []byte("x")), name)
		assert.False(t, store.HasImage(name), name)
	}
}

func TestHasImageIgnoresDirectories(t *testing.T) {
	store, _ := newTestStore(t)
	require.NoError(t, os.Mkdir(store.ImagePath("folder.png"), 0755))
	assert.False(t, store.HasImage("folder.png"))
}
