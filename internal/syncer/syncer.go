package syncer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/samvad-hq/placeholder-sync/internal/domain"
	"github.com/samvad-hq/placeholder-sync/internal/logger"
	"github.com/samvad-hq/placeholder-sync/pkg/publishers"
	"github.com/samvad-hq/placeholder-sync/pkg/resources"
)

// Service runs sync passes over the configured resources.
type Service struct {
	registry  resources.FetcherRegistry
	publisher EventPublisher
	store     Deduper
	log       logger.Logger
}

// NewService wires a syncer with the fetcher registry, publisher and fingerprint store.
// A nil store disables deduplication.
func NewService(reg resources.FetcherRegistry, pub EventPublisher, log logger.Logger, store Deduper) *Service {
	if log == nil {
		log = &logger.NopLogger{}
	}
	return &Service{
		registry:  reg,
		publisher: pub,
		store:     store,
		log:       log,
	}
}

// Result summarizes a single resource sync.
type Result struct {
	Fetched   int
	Fresh     int
	Published int
}

// Run executes a sync pass for all resources. Per-resource failures are
// joined; a cancelled context ends the pass early without error.
func (s *Service) Run(ctx context.Context, list []resources.Resource) error {
	if s == nil || s.registry == nil {
		return fmt.Errorf("syncer service is not initialized")
	}
	if len(list) == 0 {
		return fmt.Errorf("no resources configured for syncing")
	}

	if errs := s.runAll(ctx, list); len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

func (s *Service) runAll(ctx context.Context, list []resources.Resource) []error {
	var errs []error

	for i, res := range list {
		if ctx.Err() != nil {
			return errs
		}

		result, err := s.Sync(ctx, res)
		if err != nil {
			errs = append(errs, err)
			s.log.ErrorObj("resource sync failed", "resource_error", map[string]any{
				"resource_id": res.ID,
				"error":       err.Error(),
			})
		} else {
			s.log.InfoObj("resource sync completed", "resource_result", map[string]any{
				"resource_id": res.ID,
				"fetched":     result.Fetched,
				"fresh":       result.Fresh,
				"published":   result.Published,
			})
		}

		if i < len(list)-1 && !sleep(ctx, res.RequestDelay()) {
			return errs
		}
	}
	return errs
}

// Sync fetches one resource and publishes the records not seen before.
func (s *Service) Sync(ctx context.Context, res resources.Resource) (Result, error) {
	fetcher, err := s.registry.FetcherFor(res)
	if err != nil {
		return Result{}, fmt.Errorf("resolve fetcher for resource %s: %w", res.ID, err)
	}

	records, err := fetcher.Fetch(ctx, res)
	if err != nil {
		return Result{}, fmt.Errorf("fetch resource %s: %w", res.ID, err)
	}

	fresh := s.filterNewRecords(res, records)
	result := Result{Fetched: len(records), Fresh: len(fresh)}

	var errs []error
	for _, rec := range fresh {
		if ctx.Err() != nil {
			break
		}
		if err := s.publish(ctx, res, rec); err != nil {
			errs = append(errs, err)
			continue
		}
		result.Published++
	}
	return result, errors.Join(errs...)
}

func (s *Service) publish(ctx context.Context, res resources.Resource, rec domain.Record) error {
	if s.publisher == nil {
		return nil
	}

	delivered, err := s.publisher.Publish(ctx, publishers.NewEvent(res.ID, rec))
	if err != nil {
		s.log.WarnObj("record publish incomplete", "publish_error", map[string]any{
			"resource_id": res.ID,
			"key":         rec.Key,
			"delivered":   delivered,
			"error":       err.Error(),
		})
	}
	// A record is marked once at least one sink accepted it.
	if delivered == 0 {
		if err == nil {
			return nil
		}
		return fmt.Errorf("publish %s: %w", rec.Key, err)
	}
	if s.store != nil {
		if markErr := s.store.MarkRecord(rec.Fingerprint); markErr != nil {
			return fmt.Errorf("mark %s: %w", rec.Key, markErr)
		}
	}
	if err != nil {
		return fmt.Errorf("publish %s: %w", rec.Key, err)
	}
	return nil
}

// filterNewRecords drops records whose fingerprint was already published.
// Lookup failures keep the record.
func (s *Service) filterNewRecords(res resources.Resource, records []domain.Record) []domain.Record {
	if s.store == nil {
		return records
	}

	out := make([]domain.Record, 0, len(records))
	for _, rec := range records {
		seen, err := s.store.SeenRecord(rec.Fingerprint)
		if err != nil {
			s.log.WarnObj("fingerprint lookup failed", "dedupe_error", map[string]any{
				"resource_id": res.ID,
				"key":         rec.Key,
				"error":       err.Error(),
			})
		}
		if seen {
			continue
		}
		out = append(out, rec)
	}
	return out
}

// sleep waits for d or until ctx is done; it reports whether the wait completed.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
