package storage

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/BurntSushi/toml"
)

// TomlStore keeps every namespace as a table of one preferences file.
// The whole file is rewritten on each committed change.
type TomlStore struct {
	path string
	ns   string

	file *tomlFile
	tx   map[string]string
}

type tomlFile struct {
	mutex  sync.Mutex
	tables map[string]map[string]string
}

func NewTomlStore(path string, namespace string) (*TomlStore, error) {
	f := &tomlFile{tables: make(map[string]map[string]string)}
	if _, err := toml.DecodeFile(path, &f.tables); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	return &TomlStore{path: path, ns: namespace, file: f}, nil
}

func (s *TomlStore) Get(key string) (string, bool, error) {
	if s.tx != nil {
		panic("Get() called within a write transaction")
	}

	s.file.mutex.Lock()
	defer s.file.mutex.Unlock()
	v, ok := s.file.tables[s.ns][key]
	return v, ok, nil
}

func (s *TomlStore) Put(key string, value string) error {
	if s.tx != nil {
		s.tx[key] = value
		return nil
	}
	return s.flush(map[string]string{key: value})
}

func (s *TomlStore) Begin() (Store, error) {
	if s.tx != nil {
		panic("Begin() called within a write transaction")
	}
	return &TomlStore{
		path: s.path,
		ns:   s.ns,
		file: s.file,
		tx:   make(map[string]string),
	}, nil
}

func (s *TomlStore) Commit() error {
	if s.tx == nil {
		panic("Commit() called without a write transaction")
	}
	err := s.flush(s.tx)
	s.tx = nil
	return err
}

func (s *TomlStore) Rollback() error {
	if s.tx == nil {
		panic("Rollback() called without a write transaction")
	}
	s.tx = nil
	return nil
}

func (s *TomlStore) Close() error {
	return nil
}

// flush merges changes into the table and rewrites the file atomically.
// The in-memory table is only updated once the file is in place.
func (s *TomlStore) flush(changes map[string]string) error {
	s.file.mutex.Lock()
	defer s.file.mutex.Unlock()

	next := make(map[string]map[string]string, len(s.file.tables)+1)
	for ns, table := range s.file.tables {
		next[ns] = table
	}
	table := make(map[string]string, len(next[s.ns])+len(changes))
	for k, v := range next[s.ns] {
		table[k] = v
	}
	for k, v := range changes {
		table[k] = v
	}
	next[s.ns] = table

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".prefs-*.toml")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := toml.NewEncoder(tmp).Encode(next); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return err
	}

	s.file.tables = next
	return nil
}
