package storage

import (
	"database/sql"
	"errors"

	_ "github.com/mattn/go-sqlite3"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS prefs (
	namespace TEXT NOT NULL,
	key       TEXT NOT NULL,
	value     TEXT NOT NULL,
	PRIMARY KEY (namespace, key)
)`

// Store implementation using a single sqlite table
type SqliteStore struct {
	db *sql.DB
	tx *sql.Tx
	ns string
}

func NewSqliteStore(path string, namespace string) (*SqliteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, err
	}
	return &SqliteStore{db: db, ns: namespace}, nil
}

func (s *SqliteStore) Get(key string) (string, bool, error) {
	if s.tx != nil {
		panic("Get() called within a write transaction")
	}

	var value string
	row := s.db.QueryRow("SELECT value FROM prefs WHERE namespace=? AND key=?", s.ns, key)
	if err := row.Scan(&value); errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	} else if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (s *SqliteStore) Put(key string, value string) error {
	const query = "INSERT OR REPLACE INTO prefs (namespace, key, value) VALUES (?, ?, ?)"
	var err error
	if s.tx != nil {
		_, err = s.tx.Exec(query, s.ns, key, value)
	} else {
		_, err = s.db.Exec(query, s.ns, key, value)
	}
	return err
}

func (s *SqliteStore) Begin() (Store, error) {
	if s.tx != nil {
		panic("Begin() called within a write transaction")
	}
	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	return &SqliteStore{db: s.db, tx: tx, ns: s.ns}, nil
}

func (s *SqliteStore) Commit() error {
	if s.tx == nil {
		panic("Commit() called without a write transaction")
	}
	return s.tx.Commit()
}

func (s *SqliteStore) Rollback() error {
	if s.tx == nil {
		panic("Rollback() called without a write transaction")
	}
	return s.tx.Rollback()
}

func (s *SqliteStore) Close() error {
	return s.db.Close()
}
