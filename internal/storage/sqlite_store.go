package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const (
	sqliteDriver = "sqlite3"

	fingerprintsTable = `
	CREATE TABLE IF NOT EXISTS fingerprints (
		fingerprint TEXT PRIMARY KEY,
		expires_at INTEGER NOT NULL
	);
	`
)

// sqliteStore implements a Store backed by a SQLite table.
type sqliteStore struct {
	db *sql.DB
	*ttlClock
}

// openSQLite initializes a SQLite-backed Store.
func openSQLite(path string, opts Options) (Store, error) {
	if err := ensureDir(path); err != nil {
		return nil, err
	}

	db, err := sql.Open(sqliteDriver, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// sqlite allows a single writer
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(fingerprintsTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("create fingerprints table: %w", err)
	}

	return &sqliteStore{db: db, ttlClock: newTTLClock(opts)}, nil
}

// Close closes the SQLite store.
func (s *sqliteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// SeenRecord reports whether the fingerprint was marked and has not expired.
func (s *sqliteStore) SeenRecord(fingerprint string) (bool, error) {
	if s == nil || s.db == nil {
		return false, nil
	}

	now := s.now()
	if err := s.maybeCleanup(now, s.purgeExpired); err != nil {
		return false, err
	}

	var expiresAt int64
	err := s.db.QueryRow(`SELECT expires_at FROM fingerprints WHERE fingerprint = ?`, fingerprint).Scan(&expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("lookup fingerprint: %w", err)
	}
	if time.Unix(expiresAt, 0).After(now) {
		return true, nil
	}

	if _, err := s.db.Exec(`DELETE FROM fingerprints WHERE fingerprint = ?`, fingerprint); err != nil {
		return false, fmt.Errorf("delete expired fingerprint: %w", err)
	}
	return false, nil
}

// MarkRecord stores the fingerprint with an expiry of now + TTL.
func (s *sqliteStore) MarkRecord(fingerprint string) error {
	if s == nil || s.db == nil {
		return nil
	}

	now := s.now()
	if err := s.maybeCleanup(now, s.purgeExpired); err != nil {
		return err
	}

	_, err := s.db.Exec(`
		INSERT INTO fingerprints (fingerprint, expires_at) VALUES (?, ?)
		ON CONFLICT(fingerprint) DO UPDATE SET expires_at = excluded.expires_at
	`, fingerprint, s.expiry(now).Unix())
	if err != nil {
		return fmt.Errorf("mark fingerprint: %w", err)
	}
	return nil
}

func (s *sqliteStore) purgeExpired(now time.Time) error {
	if _, err := s.db.Exec(`DELETE FROM fingerprints WHERE expires_at <= ?`, now.Unix()); err != nil {
		return fmt.Errorf("purge expired fingerprints: %w", err)
	}
	return nil
}
