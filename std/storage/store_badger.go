package storage

import (
	"errors"

	"github.com/dgraph-io/badger/v4"
)

// Store implementation using badger
type BadgerStore struct {
	db *badger.DB
	tx *badger.Txn
	ns string
}

func NewBadgerStore(path string, namespace string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	return &BadgerStore{db: db, ns: namespace}, nil
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}

func (s *BadgerStore) Get(key string) (value string, ok bool, err error) {
	if s.tx != nil {
		panic("Get() called within a write transaction")
	}

	err = s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(s.key(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		} else if err != nil {
			return err
		}
		wire, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		value, ok = string(wire), true
		return nil
	})
	return
}

func (s *BadgerStore) Put(key string, value string) error {
	return s.update(func(txn *badger.Txn) error {
		return txn.Set(s.key(key), []byte(value))
	})
}

func (s *BadgerStore) Begin() (Store, error) {
	if s.tx != nil {
		panic("Begin() called within a write transaction")
	}
	tx := s.db.NewTransaction(true)
	return &BadgerStore{db: s.db, tx: tx, ns: s.ns}, nil
}

func (s *BadgerStore) Commit() error {
	if s.tx == nil {
		panic("Commit() called without a write transaction")
	}
	return s.tx.Commit()
}

func (s *BadgerStore) Rollback() error {
	if s.tx == nil {
		panic("Rollback() called without a write transaction")
	}
	s.tx.Discard()
	return nil
}

func (s *BadgerStore) key(k string) []byte {
	return []byte(s.ns + "/" + k)
}

func (s *BadgerStore) update(f func(tx *badger.Txn) error) error {
	if s.tx != nil {
		return f(s.tx)
	} else {
		return s.db.Update(f)
	}
}
