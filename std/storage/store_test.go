package storage_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/viatext/vtnode/std/storage"
	tu "github.com/viatext/vtnode/std/utils/testutils"
)

func testStoreBasic(t *testing.T, store storage.Store) {
	// get when empty
	_, ok, err := store.Get("sf")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, store.Put("sf", "9"))
	require.NoError(t, store.Put("id", "HckrMn"))

	v, ok, err := store.Get("sf")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "9", v)

	// overwrite
	require.NoError(t, store.Put("sf", "12"))
	v, _, err = store.Get("sf")
	require.NoError(t, err)
	require.Equal(t, "12", v)

	// empty values are distinct from missing ones
	require.NoError(t, store.Put("alias", ""))
	v, ok, err = store.Get("alias")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "", v)
}

func testStoreTxn(t *testing.T, store storage.Store) {
	tx, err := store.Begin()
	require.NoError(t, err)
	require.NoError(t, tx.Put("freq_hz", "868000000"))
	require.NoError(t, tx.Put("cr", "7"))
	require.NoError(t, tx.Commit())

	v, ok, err := store.Get("freq_hz")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "868000000", v)

	tx, err = store.Begin()
	require.NoError(t, err)
	require.NoError(t, tx.Put("cr", "8"))
	require.NoError(t, tx.Rollback())

	v, _, err = store.Get("cr")
	require.NoError(t, err)
	require.Equal(t, "7", v)
}

func TestMemoryStore(t *testing.T) {
	tu.SetT(t)
	store := storage.NewMemoryStore("viatext")
	testStoreBasic(t, store)
	testStoreTxn(t, store)
	require.NoError(t, store.Close())
}

func TestBadgerStore(t *testing.T) {
	tu.SetT(t)
	dir := filepath.Join(t.TempDir(), "badger")

	store := tu.NoErr(storage.NewBadgerStore(dir, "viatext"))
	testStoreBasic(t, store)
	testStoreTxn(t, store)
	require.NoError(t, store.Close())

	// reopen and read back
	store = tu.NoErr(storage.NewBadgerStore(dir, "viatext"))
	v, ok, err := store.Get("freq_hz")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "868000000", v)
	require.NoError(t, store.Close())
}

func TestSqliteStore(t *testing.T) {
	tu.SetT(t)
	path := filepath.Join(t.TempDir(), "prefs.db")

	store := tu.NoErr(storage.NewSqliteStore(path, "viatext"))
	testStoreBasic(t, store)
	testStoreTxn(t, store)
	require.NoError(t, store.Close())

	// a second namespace in the same file is isolated
	other := tu.NoErr(storage.NewSqliteStore(path, "other"))
	_, ok, err := other.Get("sf")
	require.NoError(t, err)
	require.False(t, ok)
	require.NoError(t, other.Close())
}

func TestTomlStore(t *testing.T) {
	tu.SetT(t)
	path := filepath.Join(t.TempDir(), "prefs.toml")

	store := tu.NoErr(storage.NewTomlStore(path, "viatext"))
	testStoreBasic(t, store)
	testStoreTxn(t, store)
	require.NoError(t, store.Close())

	text := string(tu.NoErr(os.ReadFile(path)))
	require.Contains(t, text, "[viatext]")
	require.Contains(t, text, `freq_hz = "868000000"`)

	// reopen picks up the file
	store = tu.NoErr(storage.NewTomlStore(path, "viatext"))
	v, ok, err := store.Get("cr")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "7", v)

	// malformed file fails to open
	require.NoError(t, os.WriteFile(path, []byte("[viatext\n"), 0o644))
	_, err = storage.NewTomlStore(path, "viatext")
	require.Error(t, err)
}

func TestOpen(t *testing.T) {
	store, err := storage.Open(storage.Config{Namespace: "viatext"})
	require.NoError(t, err)
	require.IsType(t, &storage.MemoryStore{}, store)

	_, err = storage.Open(storage.Config{Backend: "flash", Namespace: "viatext"})
	require.Error(t, err)

	_, err = storage.Open(storage.Config{Backend: "memory"})
	require.Error(t, err)

	store, err = storage.Open(storage.Config{
		Backend:   "TOML",
		Path:      filepath.Join(t.TempDir(), "p.toml"),
		Namespace: "viatext",
	})
	require.NoError(t, err)
	require.IsType(t, &storage.TomlStore{}, store)
}
