package storage

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

const (
	fingerprintBucket = "fingerprints"
	expiryValueBytes  = 8
)

// boltStore implements a Store backed by BoltDB. Each key is a fingerprint and
// each value its big-endian unix expiry.
type boltStore struct {
	db *bolt.DB
	*ttlClock
}

// openBolt initializes a BoltDB-backed Store.
func openBolt(path string, opts Options) (Store, error) {
	if err := ensureDir(path); err != nil {
		return nil, err
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt db: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(fingerprintBucket))
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("init bucket: %w", err)
	}

	return &boltStore{db: db, ttlClock: newTTLClock(opts)}, nil
}

// Close closes the BoltDB store.
func (b *boltStore) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

// SeenRecord reports whether the fingerprint was marked and has not expired.
// Expired entries found on lookup are deleted.
func (b *boltStore) SeenRecord(fingerprint string) (bool, error) {
	if b == nil || b.db == nil {
		return false, nil
	}

	now := b.now()
	if err := b.maybeCleanup(now, b.purgeExpired); err != nil {
		return false, err
	}

	var seen bool
	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket, err := fingerprints(tx)
		if err != nil {
			return err
		}

		key := []byte(fingerprint)
		value := bucket.Get(key)
		if value == nil {
			return nil
		}
		if expiry, ok := decodeExpiry(value); ok && expiry.After(now) {
			seen = true
			return nil
		}
		return bucket.Delete(key)
	})
	return seen, err
}

// MarkRecord stores the fingerprint with an expiry of now + TTL.
func (b *boltStore) MarkRecord(fingerprint string) error {
	if b == nil || b.db == nil {
		return nil
	}

	now := b.now()
	if err := b.maybeCleanup(now, b.purgeExpired); err != nil {
		return err
	}

	return b.db.Update(func(tx *bolt.Tx) error {
		bucket, err := fingerprints(tx)
		if err != nil {
			return err
		}
		return bucket.Put([]byte(fingerprint), encodeExpiry(b.expiry(now)))
	})
}

func (b *boltStore) purgeExpired(now time.Time) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		bucket, err := fingerprints(tx)
		if err != nil {
			return err
		}

		cursor := bucket.Cursor()
		for k, v := cursor.First(); k != nil; k, v = cursor.Next() {
			if expiry, ok := decodeExpiry(v); ok && expiry.After(now) {
				continue
			}
			if err := cursor.Delete(); err != nil {
				return err
			}
		}
		return nil
	})
}

func fingerprints(tx *bolt.Tx) (*bolt.Bucket, error) {
	bucket := tx.Bucket([]byte(fingerprintBucket))
	if bucket == nil {
		return nil, fmt.Errorf("fingerprint bucket missing")
	}
	return bucket, nil
}

func encodeExpiry(t time.Time) []byte {
	buf := make([]byte, expiryValueBytes)
	binary.BigEndian.PutUint64(buf, uint64(t.Unix()))
	return buf
}

// decodeExpiry decodes the expiry time from the stored byte slice.
func decodeExpiry(value []byte) (time.Time, bool) {
	if len(value) != expiryValueBytes {
		return time.Time{}, false
	}
	unix := int64(binary.BigEndian.Uint64(value))
	if unix <= 0 {
		return time.Time{}, false
	}
	return time.Unix(unix, 0), true
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create storage directory: %w", err)
	}
	return nil
}
