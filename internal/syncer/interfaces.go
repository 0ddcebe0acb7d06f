package syncer

import (
	"context"

	"github.com/samvad-hq/placeholder-sync/pkg/publishers"
)

// EventPublisher publishes fresh records downstream. It returns how many sinks
// accepted the event.
type EventPublisher interface {
	Publish(ctx context.Context, evt publishers.Event) (int, error)
}

// Deduper remembers record fingerprints across passes.
type Deduper interface {
	SeenRecord(fingerprint string) (bool, error)
	MarkRecord(fingerprint string) error
}
