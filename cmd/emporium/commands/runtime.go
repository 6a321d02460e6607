package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/emporiumlabs/emporium/internal/logger"
	"github.com/emporiumlabs/emporium/pkg/bootstrap"
	"github.com/emporiumlabs/emporium/pkg/config"
	"github.com/emporiumlabs/emporium/pkg/store/catalog"
	"github.com/emporiumlabs/emporium/pkg/store/legacy"
)

// bootEnv bundles what the bootstrap sequence runs against: the catalog
// store, the instance-local run journal, and the coordinator wired to both.
// It is shared by 'start' (bootstrap then serve) and 'bootstrap' (one-shot).
type bootEnv struct {
	catalog *catalog.Store
	journal *bootstrap.Journal
	coord   *bootstrap.Coordinator
}

// Close releases the environment in reverse construction order.
func (e *bootEnv) Close() {
	if e.journal != nil {
		if err := e.journal.Close(); err != nil {
			logger.Warn("Failed to close bootstrap journal", "error", err)
		}
	}
	if e.catalog != nil {
		if err := e.catalog.Close(); err != nil {
			logger.Warn("Failed to close catalog store", "error", err)
		}
	}
}

// buildBootEnv connects to the catalog database, opens the bootstrap
// journal and artifact stores, and constructs the coordinator for this
// instance.
func buildBootEnv(ctx context.Context, cfg *config.Config) (*bootEnv, error) {
	store, err := catalog.New(ctx, &cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to catalog database: %w", err)
	}

	journal, err := bootstrap.OpenJournal(cfg.Bootstrap.JournalPath)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to open bootstrap journal: %w", err)
	}

	artifacts, retention, err := config.CreateArtifactStores(ctx, cfg.Bootstrap.Artifact)
	if err != nil {
		_ = journal.Close()
		_ = store.Close()
		return nil, err
	}

	// The coordinator distinguishes "already drained" from "misconfigured"
	// via the ErrNoLegacyDatabase sentinel.
	openLegacy := func() (bootstrap.LegacySource, error) {
		src, err := legacy.Open(&cfg.Legacy)
		if err != nil {
			if errors.Is(err, legacy.ErrDatabaseNotFound) {
				return nil, fmt.Errorf("%w: %v", bootstrap.ErrNoLegacyDatabase, err)
			}
			return nil, err
		}
		return src, nil
	}

	coord, err := bootstrap.New(bootstrap.Config{
		Enabled:      cfg.Bootstrap.Enabled,
		LockTimeout:  cfg.Bootstrap.LockTimeout,
		KeepArtifact: cfg.Bootstrap.Artifact.Keep,
	}, bootstrap.Deps{
		Migrator:   store,
		Target:     store,
		OpenLegacy: openLegacy,
		Artifacts:  artifacts,
		Retention:  retention,
		Recorder:   journal,
		Logger:     logger.With(),
	})
	if err != nil {
		_ = journal.Close()
		_ = store.Close()
		return nil, fmt.Errorf("failed to create bootstrap coordinator: %w", err)
	}

	return &bootEnv{catalog: store, journal: journal, coord: coord}, nil
}
