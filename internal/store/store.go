package store

import (
	"database/sql"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const (
	// TimeLayout is the fixed wall-clock format persisted in the activity
	// table: YYYY-MM-DD HH:MM:SS, no timezone.
	TimeLayout = "2006-01-02 15:04:05"
	// DateLayout is the calendar-date prefix of TimeLayout.
	DateLayout = "2006-01-02"
)

// Store is the single source of truth for students, admins, and activity
// records. It holds no mutable state beyond the connection pool; every call
// re-reads committed state.
type Store struct {
	db *sql.DB
}

func dsn(path string) string {
	return path + "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on&_txlock=immediate"
}

// Open connects to an existing database file and ensures the schema is
// current. A missing file is reported as ErrMissingDatabase rather than being
// silently created, so the caller decides whether creation is wanted.
func Open(path string) (*Store, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, ErrMissingDatabase
		}
		return nil, connectionErr("database file is not readable", err)
	}
	return open(path)
}

// Create creates the database file, provisioning the schema and the seed
// admin account. The parent directory is created if needed.
func Create(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, connectionErr("cannot create database directory", err)
		}
	}
	return open(path)
}

func open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", dsn(path))
	if err != nil {
		return nil, connectionErr("cannot open database", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, connectionErr("cannot reach database", err)
	}
	s := &Store{db: db}
	if _, _, err := s.EnsureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the connection pool.
func (s *Store) Close() error { return s.db.Close() }

// Ping verifies database connectivity.
func (s *Store) Ping() error {
	if err := s.db.Ping(); err != nil {
		return connectionErr("cannot reach database", err)
	}
	return nil
}

// Now returns the current local wall-clock time in the persisted format.
func Now() string { return time.Now().Format(TimeLayout) }

// withTx runs fn inside a transaction that is released on every exit path.
// Constraint checks fire inside the same transaction as the write, so the
// check-and-write is indivisible even under a double scan.
func (s *Store) withTx(fn func(tx *sql.Tx) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return connectionErr("cannot begin transaction", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return classify(err)
	}
	if err := tx.Commit(); err != nil {
		return classify(err)
	}
	return nil
}

func validTimestamp(ts string) error {
	if _, err := time.ParseInLocation(TimeLayout, ts, time.Local); err != nil {
		return validationErr("invalid timestamp " + ts + ": must be YYYY-MM-DD HH:MM:SS")
	}
	return nil
}
