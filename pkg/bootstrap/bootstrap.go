// Package bootstrap implements the conditional startup sequence that
// moves an instance from the v1 embedded database to the shared
// catalog.
//
// Each instance carries a bootstrap flag. When the flag is false the
// coordinator performs no database operations at all and the instance
// proceeds straight to serving. When the flag is true the coordinator
// runs four steps in strict order: migrate the catalog schema, export
// the legacy database into a snapshot artifact, load the artifact into
// the migrated schema, and remove the instance-local legacy files. Any
// step failing aborts the run, and the caller must not start serving.
//
// Exactly-once semantics do not depend on the flag being unique across
// the fleet: the load step claims a versioned marker row inside the
// same transaction as the imported rows, so a second flagged instance
// (or a crash-restarted one) skips the export and load instead of
// duplicating data. A session advisory lock serializes concurrently
// flagged peers so at most one performs the bulk import.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/emporiumlabs/emporium/pkg/artifact"
	"github.com/emporiumlabs/emporium/pkg/models"
	"github.com/emporiumlabs/emporium/pkg/seed"
)

// ErrNoLegacyDatabase indicates the legacy source does not exist.
// Openers return it (possibly wrapped) so the coordinator can tell a
// drained instance from a misconfigured one.
var ErrNoLegacyDatabase = errors.New("no legacy database")

// SchemaMigrator applies schema migrations to the catalog database.
type SchemaMigrator interface {
	RunMigrations(ctx context.Context) error
	SchemaVersion(ctx context.Context) (version uint, dirty bool, err error)
}

// SnapshotTarget is the catalog side of the data migration: the marker
// check, the transactional import, and the fleet-wide seed lock.
type SnapshotTarget interface {
	SeedApplied(ctx context.Context, version int64) (bool, error)
	ImportSnapshot(ctx context.Context, snap *seed.Snapshot, appliedBy string) (*models.SeedImport, error)
	AcquireSeedLock(ctx context.Context) (release func(), err error)
}

// LegacySource is the v1 database being drained.
type LegacySource interface {
	seed.Source
	Counts(ctx context.Context) (map[string]int64, error)
	FileBacked() bool
	RemoveFiles() error
	Close() error
}

// RunRecorder persists bootstrap results to the instance-local journal.
type RunRecorder interface {
	Append(ctx context.Context, result *Result) error
}

// Config controls a Coordinator.
type Config struct {
	// Enabled is this instance's bootstrap flag.
	Enabled bool

	// SeedVersion is the data migration this binary applies.
	// Zero means seed.CurrentVersion.
	SeedVersion int64

	// LockTimeout bounds the wait for the fleet-wide seed lock, which
	// a peer holds for the duration of its import.
	// Default: 5m
	LockTimeout time.Duration

	// KeepArtifact retains the local snapshot artifact after a
	// successful load instead of removing it during cleanup.
	KeepArtifact bool

	// Instance identifies this process in results and the marker row.
	// Empty means the hostname.
	Instance string
}

// ApplyDefaults fills in missing configuration with default values.
func (c *Config) ApplyDefaults() {
	if c.SeedVersion == 0 {
		c.SeedVersion = seed.CurrentVersion
	}
	if c.LockTimeout == 0 {
		c.LockTimeout = 5 * time.Minute
	}
	if c.Instance == "" {
		host, err := os.Hostname()
		if err != nil {
			host = "unknown"
		}
		c.Instance = host
	}
}

// Deps are the collaborators a Coordinator drives. Every dependency is
// an interface so each step can fail on command in tests.
type Deps struct {
	Migrator SchemaMigrator
	Target   SnapshotTarget

	// OpenLegacy opens the v1 database, returning ErrNoLegacyDatabase
	// (possibly wrapped) when no legacy source exists on this instance.
	OpenLegacy func() (LegacySource, error)

	// Artifacts holds the snapshot between the export and load steps.
	Artifacts artifact.Store

	// Retention receives a copy of every export artifact before local
	// cleanup. Optional.
	Retention artifact.Store

	// Recorder receives the Result of every run. Optional.
	Recorder RunRecorder

	Logger *slog.Logger
}

// Coordinator runs the bootstrap sequence once at process start.
type Coordinator struct {
	config Config
	deps   Deps
	logger *slog.Logger
}

// New creates a Coordinator. Migrator, Target, OpenLegacy, and
// Artifacts are required when the bootstrap flag is enabled; a disabled
// coordinator never touches them.
func New(cfg Config, deps Deps) (*Coordinator, error) {
	cfg.ApplyDefaults()

	if cfg.Enabled {
		switch {
		case deps.Migrator == nil:
			return nil, fmt.Errorf("schema migrator is required")
		case deps.Target == nil:
			return nil, fmt.Errorf("snapshot target is required")
		case deps.OpenLegacy == nil:
			return nil, fmt.Errorf("legacy opener is required")
		case deps.Artifacts == nil:
			return nil, fmt.Errorf("artifact store is required")
		}
	}

	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}

	return &Coordinator{
		config: cfg,
		deps:   deps,
		logger: log.With("component", "bootstrap"),
	}, nil
}
