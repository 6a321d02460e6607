package config

import (
	"context"
	"fmt"

	"github.com/emporiumlabs/emporium/pkg/artifact"
	"github.com/emporiumlabs/emporium/pkg/cache"
)

// CreateCache creates a cache client from configuration.
func CreateCache(cfg cache.Config) (cache.Client, error) {
	switch cfg.Driver {
	case "memory", "":
		return cache.NewMemory(cfg.Prefix, cfg.Memory.MaxBytes.Bytes()), nil
	case "redis":
		return cache.NewRedis(cfg)
	default:
		return nil, fmt.Errorf("unknown cache driver: %q", cfg.Driver)
	}
}

// CreateArtifactStores creates the artifact stores used by bootstrap.
//
// The local store always exists: the export step writes the snapshot there
// and the load step reads it back. The second return value is an optional
// retention store (S3) that receives a copy of the artifact before local
// cleanup; it is nil unless S3 retention is enabled.
func CreateArtifactStores(ctx context.Context, cfg artifact.Config) (*artifact.LocalStore, artifact.Store, error) {
	local, err := artifact.NewLocalStore(cfg.Dir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create local artifact store: %w", err)
	}

	if !cfg.S3.Enabled {
		return local, nil, nil
	}

	retention, err := artifact.NewS3Store(ctx, cfg.S3)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create S3 artifact store: %w", err)
	}

	return local, retention, nil
}
