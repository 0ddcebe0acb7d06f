package publishers

import (
	"encoding/json"
	"time"

	"github.com/samvad-hq/placeholder-sync/internal/domain"
)

// Event represents the payload published downstream.
type Event struct {
	ResourceID  string          `json:"resource_id"`
	Kind        string          `json:"kind"`
	Key         string          `json:"key"`
	Fingerprint string          `json:"fingerprint"`
	Payload     json.RawMessage `json:"payload"`
	CollectedAt time.Time       `json:"collected_at"`
}

// NewEvent constructs an Event for the given resource + record.
func NewEvent(resourceID string, rec domain.Record) Event {
	return Event{
		ResourceID:  resourceID,
		Kind:        rec.Kind,
		Key:         rec.Key,
		Fingerprint: rec.Fingerprint,
		Payload:     rec.Payload,
		CollectedAt: time.Now().UTC(),
	}
}

// attributes are attached as message metadata by queue/topic publishers.
func (e Event) attributes() map[string]string {
	return map[string]string{
		"resource_id": e.ResourceID,
		"kind":        e.Kind,
		"key":         e.Key,
	}
}
