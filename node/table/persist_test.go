package table_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viatext/vtnode/node/defn"
	"github.com/viatext/vtnode/node/table"
	"github.com/viatext/vtnode/std/storage"
)

// countingStore counts committed transactions of a memory store.
type countingStore struct {
	*storage.MemoryStore
	commits *int
	failPut bool
}

func (s countingStore) Begin() (storage.Store, error) {
	tx, err := s.MemoryStore.Begin()
	if err != nil {
		return nil, err
	}
	return countingStore{MemoryStore: tx.(*storage.MemoryStore), commits: s.commits, failPut: s.failPut}, nil
}

func (s countingStore) Put(key, value string) error {
	if s.failPut {
		return errors.New("flash worn out")
	}
	return s.MemoryStore.Put(key, value)
}

func (s countingStore) Commit() error {
	*s.commits++
	return s.MemoryStore.Commit()
}

func TestPersisterRoundTrip(t *testing.T) {
	mem := storage.NewMemoryStore("viatext")
	open := func() (storage.Store, error) { return mem, nil }

	r := newRegistry()
	p := table.NewPersister(r, open)
	require.True(t, p.Load())
	assert.Equal(t, "HckrMn", r.ID())

	require.NoError(t, r.Write(defn.TagID, []byte("N30")))
	require.NoError(t, r.Write(defn.TagTxPwrDbm, []byte{0xFE}))
	require.True(t, p.Save())

	v, ok, err := mem.Get("tx_pwr")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "-2", v)

	r2 := newRegistry()
	require.True(t, table.NewPersister(r2, open).Load())
	assert.Equal(t, "N30", r2.ID())
	got, _ := r2.Get(defn.TagTxPwrDbm)
	assert.Equal(t, int64(-2), got.Num)
}

func TestPersisterKeepsDefaultsOnBadValues(t *testing.T) {
	mem := storage.NewMemoryStore("viatext")
	require.NoError(t, mem.Put("sf", "42"))     // fails validation
	require.NoError(t, mem.Put("cr", "seven"))  // fails parsing
	require.NoError(t, mem.Put("id", "bad id")) // fails charset
	require.NoError(t, mem.Put("hops", "4"))

	r := newRegistry()
	require.True(t, table.NewPersister(r, func() (storage.Store, error) { return mem, nil }).Load())

	v, _ := r.Get(defn.TagSF)
	assert.Equal(t, table.DefaultSF, v.Num)
	v, _ = r.Get(defn.TagCR)
	assert.Equal(t, table.DefaultCR, v.Num)
	assert.Equal(t, table.DefaultID, r.ID())
	v, _ = r.Get(defn.TagHops)
	assert.Equal(t, int64(4), v.Num)
}

func TestPersisterSkipsUnchanged(t *testing.T) {
	commits := 0
	store := countingStore{MemoryStore: storage.NewMemoryStore("viatext"), commits: &commits}

	r := newRegistry()
	p := table.NewPersister(r, func() (storage.Store, error) { return store, nil })
	require.True(t, p.Load())

	// nothing stored yet, so the first save writes
	require.True(t, p.Save())
	require.Equal(t, 1, commits)
	require.True(t, p.Save())
	require.Equal(t, 1, commits)

	require.NoError(t, r.Write(defn.TagChan, []byte{3}))
	require.True(t, p.Save())
	require.Equal(t, 2, commits)

	// a fully stored state loads as already synced
	p2 := table.NewPersister(newRegistry(), func() (storage.Store, error) { return store, nil })
	require.True(t, p2.Load())
	require.True(t, p2.Save())
	require.Equal(t, 2, commits)
}

func TestPersisterLazyOpen(t *testing.T) {
	opens := 0
	fail := true
	mem := storage.NewMemoryStore("viatext")
	open := func() (storage.Store, error) {
		opens++
		if fail {
			return nil, errors.New("no flash")
		}
		return mem, nil
	}

	r := newRegistry()
	p := table.NewPersister(r, open)
	require.False(t, p.Load())
	assert.Equal(t, "HckrMn", r.ID())
	assert.Equal(t, 1, opens)

	require.NoError(t, r.Write(defn.TagID, []byte("N31")))
	require.False(t, p.Save())
	assert.Equal(t, 2, opens)

	fail = false
	require.True(t, p.Save())
	assert.Equal(t, 3, opens)
	require.True(t, p.Save())
	assert.Equal(t, 3, opens)

	v, ok, _ := mem.Get("id")
	require.True(t, ok)
	assert.Equal(t, "N31", v)
	require.NoError(t, p.Close())
}

func TestPersisterFailedWrite(t *testing.T) {
	commits := 0
	store := countingStore{MemoryStore: storage.NewMemoryStore("viatext"), commits: &commits, failPut: true}

	r := newRegistry()
	p := table.NewPersister(r, func() (storage.Store, error) { return store, nil })
	require.NoError(t, r.Write(defn.TagMode, []byte{1}))
	require.False(t, p.Save())
	assert.Equal(t, 0, commits)

	// in-memory state stays authoritative
	v, _ := r.Get(defn.TagMode)
	assert.Equal(t, int64(1), v.Num)
}

func TestPersisterSeed(t *testing.T) {
	mem := storage.NewMemoryStore("viatext")
	commits := 0
	open := func() (storage.Store, error) { return countingStore{MemoryStore: mem, commits: &commits}, nil }

	r := newRegistry()
	require.NoError(t, r.Write(defn.TagID, []byte("Rnd0x9")))
	p := table.NewPersister(r, open)
	require.True(t, p.Load())
	require.True(t, p.Seed())
	assert.Equal(t, 1, commits)

	v, ok, err := mem.Get("id")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Rnd0x9", v)

	// a complete store is left alone
	r2 := newRegistry()
	p2 := table.NewPersister(r2, open)
	require.True(t, p2.Load())
	assert.Equal(t, "Rnd0x9", r2.ID())
	require.True(t, p2.Seed())
	assert.Equal(t, 1, commits)
}
