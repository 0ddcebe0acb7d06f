package resources

import (
	"context"
	"crypto/sha1" //nolint:gosec // non-cryptographic fingerprint
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/samvad-hq/placeholder-sync/internal/domain"
	"github.com/samvad-hq/placeholder-sync/pkg/netprovider"
)

// Fetcher retrieves the records behind a resource.
type Fetcher interface {
	Kind() string
	Fetch(ctx context.Context, res Resource) ([]domain.Record, error)
}

// FetcherRegistry resolves the fetcher implementation for a resource.
type FetcherRegistry interface {
	FetcherFor(res Resource) (Fetcher, error)
}

// List decodes a JSON array of entities and validates every element.
type List[T domain.Entity] []T

func (l List[T]) Validate() error {
	for i, e := range l {
		if err := e.Validate(); err != nil {
			return fmt.Errorf("item %d: %w", i, err)
		}
	}
	return nil
}

// entityFetcher decodes resources of one kind through the network provider.
type entityFetcher[T domain.Entity] struct {
	kind     string
	provider *netprovider.Provider
}

// NewEntityFetcher returns a Fetcher decoding responses as T (or []T for
// collection resources).
func NewEntityFetcher[T domain.Entity](kind string, provider *netprovider.Provider) Fetcher {
	return &entityFetcher[T]{kind: kind, provider: provider}
}

func (f *entityFetcher[T]) Kind() string { return f.kind }

func (f *entityFetcher[T]) Fetch(ctx context.Context, res Resource) ([]domain.Record, error) {
	var entities []T
	if res.Collection {
		list, err := netprovider.Fetch[List[T]](ctx, f.provider, res.Request())
		if err != nil {
			return nil, fmt.Errorf("fetch %s collection %s: %w", f.kind, res.Path, err)
		}
		entities = *list
	} else {
		one, err := netprovider.Fetch[T](ctx, f.provider, res.Request())
		if err != nil {
			return nil, fmt.Errorf("fetch %s %s: %w", f.kind, res.Path, err)
		}
		entities = []T{*one}
	}

	records := make([]domain.Record, 0, len(entities))
	for _, e := range entities {
		rec, err := newRecord(f.kind, e)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func newRecord(kind string, e domain.Entity) (domain.Record, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return domain.Record{}, fmt.Errorf("encode %s: %w", e.Key(), err)
	}
	return domain.Record{
		Kind:        kind,
		Key:         e.Key(),
		Fingerprint: fingerprint(payload),
		Payload:     payload,
	}, nil
}

func fingerprint(payload []byte) string {
	sum := sha1.Sum(payload)
	return hex.EncodeToString(sum[:])
}

// fetcherRegistry implements FetcherRegistry keyed by resource kind.
type fetcherRegistry struct {
	mu     sync.RWMutex
	byKind map[string]Fetcher
}

// NewFetcherRegistry builds a registry for the provided fetchers.
func NewFetcherRegistry(fetchers ...Fetcher) FetcherRegistry {
	reg := &fetcherRegistry{byKind: make(map[string]Fetcher, len(fetchers))}
	for _, f := range fetchers {
		if f == nil {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(f.Kind()))
		if key == "" {
			continue
		}
		reg.byKind[key] = f
	}
	return reg
}

// FetcherFor selects the fetcher for the resource kind.
func (r *fetcherRegistry) FetcherFor(res Resource) (Fetcher, error) {
	if r == nil {
		return nil, fmt.Errorf("fetcher registry is nil")
	}
	if strings.TrimSpace(res.ID) == "" {
		return nil, fmt.Errorf("resource id is empty")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if f, ok := r.byKind[strings.ToLower(strings.TrimSpace(res.Kind))]; ok {
		return f, nil
	}
	return nil, fmt.Errorf("no fetcher registered for resource %q (kind %q)", res.ID, res.Kind)
}

// DefaultFetcherRegistry wires a fetcher for every known kind.
func DefaultFetcherRegistry(provider *netprovider.Provider) FetcherRegistry {
	if provider == nil {
		provider = netprovider.New()
	}
	return NewFetcherRegistry(
		NewEntityFetcher[domain.User](domain.KindUser, provider),
		NewEntityFetcher[domain.Post](domain.KindPost, provider),
		NewEntityFetcher[domain.Comment](domain.KindComment, provider),
		NewEntityFetcher[domain.Todo](domain.KindTodo, provider),
		NewEntityFetcher[domain.Album](domain.KindAlbum, provider),
	)
}
