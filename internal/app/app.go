package app

import (
	"context"
	"fmt"
	"time"

	"github.com/samvad-hq/placeholder-sync/internal/config"
	"github.com/samvad-hq/placeholder-sync/internal/logger"
	"github.com/samvad-hq/placeholder-sync/internal/storage"
	"github.com/samvad-hq/placeholder-sync/internal/syncer"
	"github.com/samvad-hq/placeholder-sync/pkg/httpclient"
	"github.com/samvad-hq/placeholder-sync/pkg/netprovider"
	"github.com/samvad-hq/placeholder-sync/pkg/publishers"
	"github.com/samvad-hq/placeholder-sync/pkg/resources"
)

// App is the sync runtime. It owns the resource registry, the publisher
// fanout and the fingerprint store, and drives the sync loop.
type App struct {
	cfg          *config.Config
	resourceReg  *resources.Registry
	fanout       *publishers.Fanout
	syncService  *syncer.Service
	syncInterval time.Duration
	log          logger.Logger
	store        storage.Store
}

// New builds the runtime from config files.
func New(ctx context.Context, cfg *config.Config, log logger.Logger) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = &logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	resourceReg, err := resources.LoadRegistry(cfg.ResourcesFile)
	if err != nil {
		return nil, fmt.Errorf("load resources registry: %w", err)
	}
	resourceList := resourceReg.All()
	resourceIDs := make([]string, 0, len(resourceList))
	for _, r := range resourceList {
		resourceIDs = append(resourceIDs, r.ID)
	}
	log.InfoObj("resources registry loaded", "resources_meta", map[string]any{
		"count": len(resourceIDs),
		"ids":   resourceIDs,
	})

	publisherReg, err := publishers.LoadRegistry(cfg.PublishersFile)
	if err != nil {
		return nil, fmt.Errorf("load publishers registry: %w", err)
	}
	enabledPublishers := publisherReg.Enabled()
	if len(enabledPublishers) == 0 {
		return nil, fmt.Errorf("no publishers configured")
	}

	pubClients, err := publishers.BuildAll(ctx, publishers.DefaultRegistry(), enabledPublishers, log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}
	fanout := publishers.NewFanout(pubClients)
	publisherSummaries := make([]map[string]string, 0, len(enabledPublishers))
	for _, pubCfg := range enabledPublishers {
		publisherSummaries = append(publisherSummaries, map[string]string{
			"id":   pubCfg.ID,
			"type": pubCfg.Type,
		})
	}
	log.InfoObj("publishers registry loaded", "publishers_meta", map[string]any{
		"count":      len(publisherSummaries),
		"publishers": publisherSummaries,
	})

	store, err := storage.NewStore(cfg.StorageType, cfg.StoragePath(), storage.Options{
		RecordTTL:       cfg.StorageTTL,
		CleanupInterval: cfg.StorageCleanupInterval,
	})
	if err != nil {
		fanout.Close()
		return nil, fmt.Errorf("init storage: %w", err)
	}
	log.InfoObj("storage initialized", "storage_config", map[string]any{
		"type":                     cfg.StorageType,
		"path":                     cfg.StoragePath(),
		"record_ttl_seconds":       int(cfg.StorageTTL.Seconds()),
		"cleanup_interval_seconds": int(cfg.StorageCleanupInterval.Seconds()),
	})

	provider := netprovider.New(
		netprovider.WithBaseURL(cfg.BaseURL),
		netprovider.WithClient(httpclient.NewRestyClient(cfg.RequestTimeout)),
		netprovider.WithLogger(log),
	)

	return &App{
		cfg:          cfg,
		resourceReg:  resourceReg,
		fanout:       fanout,
		syncService:  syncer.NewService(resources.DefaultFetcherRegistry(provider), fanout, log, store),
		syncInterval: cfg.SyncInterval,
		log:          log,
		store:        store,
	}, nil
}

// Run starts the sync loop until the context is cancelled.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.syncService == nil {
		return fmt.Errorf("app is not initialized")
	}
	defer a.close()

	list := a.resourceReg.All()
	a.log.InfoObj("sync loop starting", "sync_state", map[string]any{
		"resources_count":  len(list),
		"publishers_count": a.fanout.Size(),
		"sync_interval":    a.syncInterval.String(),
		"base_url":         a.cfg.BaseURL,
	})

	if err := a.runOnce(ctx, list); err != nil {
		a.log.ErrorObj("initial sync failed", "error", err)
	}

	ticker := time.NewTicker(a.syncInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			a.log.InfoObj("sync loop exiting", "reason", ctx.Err())
			return nil
		case <-ticker.C:
			if err := a.runOnce(ctx, list); err != nil {
				a.log.ErrorObj("scheduled sync failed", "error", err)
			}
		}
	}
}

// runOnce performs a single sync pass across all resources.
func (a *App) runOnce(ctx context.Context, list []resources.Resource) error {
	start := time.Now()
	a.log.InfoObj("sync started", "sync_meta", map[string]any{
		"resources_count": len(list),
		"started_at":      start.UTC(),
	})
	if err := a.syncService.Run(ctx, list); err != nil {
		return err
	}
	a.log.InfoObj("sync completed", "sync_meta", map[string]any{
		"resources_count": len(list),
		"elapsed_ms":      time.Since(start).Milliseconds(),
	})
	return nil
}

// close releases the store and publisher clients, logging any errors encountered.
func (a *App) close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.ErrorObj("storage close failed", "error", err)
		}
	}
	if err := a.fanout.Close(); err != nil {
		a.log.ErrorObj("publishers close failed", "error", err)
	}
}
