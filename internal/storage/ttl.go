package storage

import (
	"sync"
	"sync/atomic"
	"time"
)

// ttlClock holds the retention settings and cleanup cadence shared by the
// on-disk backends.
type ttlClock struct {
	now             func() time.Time
	ttl             time.Duration
	cleanupInterval time.Duration
	cleanupMu       sync.Mutex
	lastCleanup     atomic.Int64
}

func newTTLClock(opts Options) *ttlClock {
	c := &ttlClock{
		now:             time.Now,
		ttl:             opts.RecordTTL,
		cleanupInterval: opts.CleanupInterval,
	}
	c.lastCleanup.Store(c.now().Unix())
	return c
}

func (c *ttlClock) expiry(now time.Time) time.Time {
	return now.Add(c.ttl)
}

// maybeCleanup runs purge at most once per cleanup interval.
func (c *ttlClock) maybeCleanup(now time.Time, purge func(time.Time) error) error {
	if now.Sub(time.Unix(c.lastCleanup.Load(), 0)) < c.cleanupInterval {
		return nil
	}

	c.cleanupMu.Lock()
	defer c.cleanupMu.Unlock()

	if now.Sub(time.Unix(c.lastCleanup.Load(), 0)) < c.cleanupInterval {
		return nil
	}
	if err := purge(now); err != nil {
		return err
	}
	c.lastCleanup.Store(now.Unix())
	return nil
}
