package storage

import "sync"

type MemoryStore struct {
	ns string
	// shared between a store and its transactions
	data  map[string]string
	mutex *sync.RWMutex

	// pending writes of an active transaction
	tx map[string]string
}

func NewMemoryStore(namespace string) *MemoryStore {
	return &MemoryStore{
		ns:    namespace,
		data:  make(map[string]string),
		mutex: &sync.RWMutex{},
	}
}

func (s *MemoryStore) Get(key string) (string, bool, error) {
	if s.tx != nil {
		panic("Get() called within a write transaction")
	}

	s.mutex.RLock()
	defer s.mutex.RUnlock()
	v, ok := s.data[s.key(key)]
	return v, ok, nil
}

func (s *MemoryStore) Put(key string, value string) error {
	if s.tx != nil {
		s.tx[s.key(key)] = value
		return nil
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.data[s.key(key)] = value
	return nil
}

func (s *MemoryStore) Begin() (Store, error) {
	if s.tx != nil {
		panic("Begin() called within a write transaction")
	}
	return &MemoryStore{
		ns:    s.ns,
		data:  s.data,
		mutex: s.mutex,
		tx:    make(map[string]string),
	}, nil
}

func (s *MemoryStore) Commit() error {
	if s.tx == nil {
		panic("Commit() called without a write transaction")
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()
	for k, v := range s.tx {
		s.data[k] = v
	}
	s.tx = nil
	return nil
}

func (s *MemoryStore) Rollback() error {
	if s.tx == nil {
		panic("Rollback() called without a write transaction")
	}
	s.tx = nil
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}

func (s *MemoryStore) key(k string) string {
	return s.ns + "/" + k
}
