package storage

import (
	"path/filepath"
	"testing"
	"time"

	"go.etcd.io/bbolt"
)

// fakeClock lets tests move time forward without sleeping.
type fakeClock struct{ t time.Time }

func (f *fakeClock) Now() time.Time          { return f.t }
func (f *fakeClock) Advance(d time.Duration) { f.t = f.t.Add(d) }

func openTestStores(t *testing.T, opts Options) map[string]Store {
	t.Helper()
	dir := t.TempDir()

	boltDB, err := openBolt(filepath.Join(dir, "fingerprints.db"), opts)
	if err != nil {
		t.Fatalf("openBolt: %v", err)
	}
	sqlite, err := openSQLite(filepath.Join(dir, "fingerprints.sqlite"), opts)
	if err != nil {
		t.Fatalf("openSQLite: %v", err)
	}
	t.Cleanup(func() {
		boltDB.Close()
		sqlite.Close()
	})
	return map[string]Store{"bbolt": boltDB, "sqlite": sqlite}
}

func setClock(s Store, c *fakeClock) {
	switch st := s.(type) {
	case *boltStore:
		st.now = c.Now
		st.lastCleanup.Store(c.Now().Unix())
	case *sqliteStore:
		st.now = c.Now
		st.lastCleanup.Store(c.Now().Unix())
	}
}

func TestStoresMarkAndExpireRecords(t *testing.T) {
	opts := Options{RecordTTL: time.Minute, CleanupInterval: time.Hour}

	for name, store := range openTestStores(t, opts) {
		t.Run(name, func(t *testing.T) {
			clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
			setClock(store, clock)

			seen, err := store.SeenRecord("fp1")
			if err != nil || seen {
				t.Fatalf("expected unseen record, seen=%v err=%v", seen, err)
			}

			if err := store.MarkRecord("fp1"); err != nil {
				t.Fatalf("MarkRecord: %v", err)
			}

			seen, err = store.SeenRecord("fp1")
			if err != nil || !seen {
				t.Fatalf("expected record marked as seen, got seen=%v err=%v", seen, err)
			}

			clock.Advance(2 * time.Minute)
			seen, err = store.SeenRecord("fp1")
			if err != nil {
				t.Fatalf("SeenRecord after expiry: %v", err)
			}
			if seen {
				t.Fatalf("expected entry to expire")
			}
		})
	}
}

func TestStoresPurgeOnCleanupInterval(t *testing.T) {
	opts := Options{RecordTTL: time.Minute, CleanupInterval: 10 * time.Minute}

	for name, store := range openTestStores(t, opts) {
		t.Run(name, func(t *testing.T) {
			clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
			setClock(store, clock)

			for _, fp := range []string{"a", "b", "c"} {
				if err := store.MarkRecord(fp); err != nil {
					t.Fatalf("MarkRecord: %v", err)
				}
			}

			clock.Advance(11 * time.Minute)
			if err := store.MarkRecord("fresh"); err != nil {
				t.Fatalf("MarkRecord: %v", err)
			}

			if n := countFingerprints(t, store); n != 1 {
				t.Fatalf("expected only the fresh fingerprint to survive cleanup, got %d", n)
			}
		})
	}
}

func countFingerprints(t *testing.T, s Store) int {
	t.Helper()
	switch st := s.(type) {
	case *sqliteStore:
		var n int
		if err := st.db.QueryRow(`SELECT COUNT(*) FROM fingerprints`).Scan(&n); err != nil {
			t.Fatalf("count: %v", err)
		}
		return n
	case *boltStore:
		n := 0
		if err := st.db.View(func(tx *bbolt.Tx) error {
			b, err := fingerprints(tx)
			if err != nil {
				return err
			}
			n = b.Stats().KeyN
			return nil
		}); err != nil {
			t.Fatalf("count: %v", err)
		}
		return n
	}
	t.Fatalf("unexpected store %T", s)
	return 0
}

func TestNewStoreSupportsNoop(t *testing.T) {
	store, err := NewStore("none", "", Options{})
	if err != nil {
		t.Fatalf("NewStore none: %v", err)
	}
	if err := store.MarkRecord("x"); err != nil {
		t.Fatalf("noop store MarkRecord: %v", err)
	}
	if seen, _ := store.SeenRecord("x"); seen {
		t.Fatalf("noop store should never report seen")
	}
}

func TestNewStoreValidatesInput(t *testing.T) {
	if _, err := NewStore("bbolt", " ", Options{}); err == nil {
		t.Fatalf("expected error for empty bbolt path")
	}
	if _, err := NewStore("sqlite", "", Options{}); err == nil {
		t.Fatalf("expected error for empty sqlite path")
	}
	if _, err := NewStore("redis", "x", Options{}); err == nil {
		t.Fatalf("expected error for unsupported type")
	}
}

func TestNewStoreOpensSQLite(t *testing.T) {
	store, err := NewStore("SQLite", filepath.Join(t.TempDir(), "nested", "fp.sqlite"), Options{})
	if err != nil {
		t.Fatalf("NewStore sqlite: %v", err)
	}
	defer store.Close()
	if _, ok := store.(*sqliteStore); !ok {
		t.Fatalf("unexpected store %T", store)
	}
}
