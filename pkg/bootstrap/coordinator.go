package bootstrap

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/emporiumlabs/emporium/internal/logger"
	"github.com/emporiumlabs/emporium/internal/telemetry"
	"github.com/emporiumlabs/emporium/pkg/models"
	"github.com/emporiumlabs/emporium/pkg/seed"
)

// runState carries values between the steps of a single run.
type runState struct {
	src          LegacySource
	artifactName string
}

// Run executes the bootstrap sequence once and returns its Result.
//
// The Result is non-nil even on failure so callers can journal and
// report it; err is non-nil exactly when the instance must not start
// serving.
func (c *Coordinator) Run(ctx context.Context) (*Result, error) {
	res := &Result{
		RunID:       uuid.NewString(),
		Instance:    c.config.Instance,
		Enabled:     c.config.Enabled,
		SeedVersion: c.config.SeedVersion,
		StartedAt:   time.Now(),
	}

	ctx, span := telemetry.StartSpan(ctx, telemetry.SpanBootstrapRun,
		trace.WithAttributes(
			telemetry.RunID(res.RunID),
			telemetry.Instance(c.config.Instance),
			telemetry.SeedVersion(c.config.SeedVersion)))
	defer span.End()

	log := c.logger.With(slog.String(logger.KeyRunID, res.RunID))
	log.Info("Starting bootstrap run",
		slog.Bool("enabled", c.config.Enabled),
		slog.String(logger.KeyInstanceID, c.config.Instance),
		slog.Int64(logger.KeySeedVersion, c.config.SeedVersion))

	st := &runState{}
	err := c.run(ctx, st, res, log)
	if st.src != nil {
		_ = st.src.Close()
	}

	res.DurationMs = time.Since(res.StartedAt).Milliseconds()
	res.Success = err == nil
	if err != nil {
		res.Error = err.Error()
	}

	c.record(ctx, res, log)

	if err != nil {
		telemetry.RecordError(ctx, err)
		log.Error("Bootstrap failed", logger.Err(err), logger.DurationMs(float64(res.DurationMs)))
		return res, err
	}

	log.Info("Bootstrap complete",
		slog.Uint64(logger.KeySchemaVersion, uint64(res.SchemaVersion)),
		slog.Bool("seed_applied", res.SeedApplied),
		logger.DurationMs(float64(res.DurationMs)))
	return res, nil
}

func (c *Coordinator) run(ctx context.Context, st *runState, res *Result, log *slog.Logger) error {
	if !c.config.Enabled {
		// The disabled path performs no database operations at all; the
		// instance serves with whatever state the fleet already has.
		for _, name := range []StepName{StepMigrate, StepExport, StepLoad, StepCleanup} {
			c.skip(res, name, "bootstrap disabled")
		}
		log.Info("Bootstrap disabled, proceeding to serving without touching the database")
		return nil
	}

	if err := c.migrate(ctx, res, log); err != nil {
		return err
	}

	// Serialize the seed decision across concurrently flagged peers.
	// The lock only bounds waiting; the marker row is what makes the
	// import exactly-once.
	lockStart := time.Now()
	lockCtx, cancel := context.WithTimeout(ctx, c.config.LockTimeout)
	release, err := c.deps.Target.AcquireSeedLock(lockCtx)
	cancel()
	if err != nil {
		return c.fail(ctx, res, StepExport, lockStart, fmt.Errorf("failed to acquire seed lock: %w", err))
	}
	defer release()

	applied, err := c.deps.Target.SeedApplied(ctx, c.config.SeedVersion)
	if err != nil {
		return c.fail(ctx, res, StepExport, lockStart, fmt.Errorf("failed to check seed marker: %w", err))
	}

	if applied {
		res.SeedApplied = true
		reason := fmt.Sprintf("seed v%d already applied", c.config.SeedVersion)
		c.skip(res, StepExport, reason)
		c.skip(res, StepLoad, reason)
		log.Info("Seed already applied, skipping export and load",
			slog.Int64(logger.KeySeedVersion, c.config.SeedVersion))
		return c.cleanup(ctx, st, res, log)
	}

	if err := c.export(ctx, st, res, log); err != nil {
		return err
	}
	if err := c.load(ctx, st, res, log); err != nil {
		return err
	}
	return c.cleanup(ctx, st, res, log)
}

// migrate applies schema migrations and records the resulting version.
func (c *Coordinator) migrate(ctx context.Context, res *Result, log *slog.Logger) error {
	ctx, span := telemetry.StartStepSpan(ctx, string(StepMigrate))
	defer span.End()

	start := time.Now()
	log.Info("Applying schema migrations", logger.Step(string(StepMigrate)))

	if err := c.deps.Migrator.RunMigrations(ctx); err != nil {
		return c.fail(ctx, res, StepMigrate, start, fmt.Errorf("schema migration failed: %w", err))
	}

	version, dirty, err := c.deps.Migrator.SchemaVersion(ctx)
	if err != nil {
		return c.fail(ctx, res, StepMigrate, start, fmt.Errorf("failed to read schema version: %w", err))
	}
	if dirty {
		return c.fail(ctx, res, StepMigrate, start, fmt.Errorf("schema version %d is dirty after migration", version))
	}
	res.SchemaVersion = version
	telemetry.SetAttributes(ctx, telemetry.SchemaVersion(version))

	c.ran(res, StepMigrate, start, fmt.Sprintf("schema at version %d", version))
	log.Info("Schema migrations applied", slog.Uint64(logger.KeySchemaVersion, uint64(version)))
	return nil
}

// export drains the legacy database into a snapshot artifact.
func (c *Coordinator) export(ctx context.Context, st *runState, res *Result, log *slog.Logger) error {
	ctx, span := telemetry.StartStepSpan(ctx, string(StepExport))
	defer span.End()

	start := time.Now()
	log.Info("Exporting legacy database", logger.Step(string(StepExport)))

	src, err := c.deps.OpenLegacy()
	if err != nil {
		if errors.Is(err, ErrNoLegacyDatabase) {
			// A flagged instance without its v1 database is
			// misconfigured, not freshly empty; an empty v1 database is
			// a file with zero rows and exports fine.
			return c.fail(ctx, res, StepExport, start, fmt.Errorf(
				"seed v%d is not applied and no legacy database exists: %w", c.config.SeedVersion, err))
		}
		return c.fail(ctx, res, StepExport, start, fmt.Errorf("failed to open legacy database: %w", err))
	}
	st.src = src

	counts, err := src.Counts(ctx)
	if err != nil {
		return c.fail(ctx, res, StepExport, start, fmt.Errorf("failed to count legacy rows: %w", err))
	}

	snap, err := seed.Build(ctx, src)
	if err != nil {
		return c.fail(ctx, res, StepExport, start, fmt.Errorf("failed to export legacy tables: %w", err))
	}

	// A count drifting between the count pass and the table reads means
	// something was still writing to the legacy database.
	exported := snap.RowCounts()
	for table, want := range counts {
		if got := int64(exported[table]); got != want {
			return c.fail(ctx, res, StepExport, start, fmt.Errorf(
				"legacy table %s changed during export: counted %d rows, exported %d", table, want, got))
		}
	}

	if err := snap.Verify(); err != nil {
		return c.fail(ctx, res, StepExport, start, fmt.Errorf("exported snapshot failed verification: %w", err))
	}

	st.artifactName = seed.Filename(snap.SeedVersion)
	telemetry.SetAttributes(ctx,
		telemetry.Rows(snap.TotalRows()),
		telemetry.Checksum(snap.Checksum))

	var buf bytes.Buffer
	if err := snap.EncodeTo(&buf); err != nil {
		return c.fail(ctx, res, StepExport, start, fmt.Errorf("failed to encode snapshot: %w", err))
	}
	encoded := buf.Bytes()

	if err := c.deps.Artifacts.Put(ctx, st.artifactName, bytes.NewReader(encoded)); err != nil {
		return c.fail(ctx, res, StepExport, start, fmt.Errorf("failed to write snapshot artifact: %w", err))
	}

	detail := fmt.Sprintf("%d rows from %s written to %s",
		snap.TotalRows(), src.Location(), c.deps.Artifacts.URI(st.artifactName))

	if c.deps.Retention != nil {
		if err := c.deps.Retention.Put(ctx, st.artifactName, bytes.NewReader(encoded)); err != nil {
			return c.fail(ctx, res, StepExport, start, fmt.Errorf("failed to retain snapshot artifact: %w", err))
		}
		detail += fmt.Sprintf(", retained at %s", c.deps.Retention.URI(st.artifactName))
	}

	c.ran(res, StepExport, start, detail)
	log.Info("Legacy export complete",
		logger.Rows(snap.TotalRows()),
		slog.String(logger.KeyArtifact, c.deps.Artifacts.URI(st.artifactName)),
		slog.String(logger.KeyChecksum, snap.Checksum))
	return nil
}

// load reads the snapshot artifact back and imports it into the
// catalog.
func (c *Coordinator) load(ctx context.Context, st *runState, res *Result, log *slog.Logger) error {
	ctx, span := telemetry.StartStepSpan(ctx, string(StepLoad))
	defer span.End()

	start := time.Now()
	log.Info("Loading snapshot into catalog",
		logger.Step(string(StepLoad)), slog.String(logger.KeyArtifact, st.artifactName))

	r, err := c.deps.Artifacts.Get(ctx, st.artifactName)
	if err != nil {
		return c.fail(ctx, res, StepLoad, start, fmt.Errorf("failed to open snapshot artifact: %w", err))
	}

	snap, err := seed.DecodeFrom(r)
	closeErr := r.Close()
	if err != nil {
		return c.fail(ctx, res, StepLoad, start, fmt.Errorf("failed to decode snapshot artifact: %w", err))
	}
	if closeErr != nil {
		return c.fail(ctx, res, StepLoad, start, fmt.Errorf("failed to close snapshot artifact: %w", closeErr))
	}

	// The artifact is what actually gets loaded, so the artifact is
	// what must verify, not the in-memory copy the export held.
	if err := snap.Verify(); err != nil {
		return c.fail(ctx, res, StepLoad, start, fmt.Errorf("snapshot artifact failed verification: %w", err))
	}
	if snap.SeedVersion != c.config.SeedVersion {
		return c.fail(ctx, res, StepLoad, start, fmt.Errorf(
			"snapshot artifact is seed v%d, expected v%d", snap.SeedVersion, c.config.SeedVersion))
	}

	imported, err := c.deps.Target.ImportSnapshot(ctx, snap, c.config.Instance)
	if err != nil {
		if errors.Is(err, models.ErrSeedAlreadyApplied) {
			// A peer claimed the marker anyway. The catalog is seeded
			// either way, and zero rows from this snapshot landed.
			res.SeedApplied = true
			c.skip(res, StepLoad, fmt.Sprintf("seed v%d already applied by a peer", snap.SeedVersion))
			log.Warn("Seed was applied by a peer, discarding this instance's snapshot")
			return nil
		}
		return c.fail(ctx, res, StepLoad, start, fmt.Errorf("failed to import snapshot: %w", err))
	}

	res.SeedApplied = true
	telemetry.SetAttributes(ctx, telemetry.Rows(imported.TotalRows()))
	c.ran(res, StepLoad, start, fmt.Sprintf("imported %d rows as seed v%d", imported.TotalRows(), imported.Version))
	log.Info("Snapshot loaded",
		logger.Rows(imported.TotalRows()),
		slog.Int64(logger.KeySeedVersion, imported.Version))
	return nil
}

// cleanup removes the drained legacy database files and, unless
// retention is requested, the local snapshot artifact.
func (c *Coordinator) cleanup(ctx context.Context, st *runState, res *Result, log *slog.Logger) error {
	ctx, span := telemetry.StartStepSpan(ctx, string(StepCleanup))
	defer span.End()

	start := time.Now()
	var details []string

	// On the already-applied path the legacy store was never opened;
	// open it here to learn whether files are still lying around from a
	// run that crashed before its cleanup.
	if st.src == nil {
		src, err := c.deps.OpenLegacy()
		switch {
		case errors.Is(err, ErrNoLegacyDatabase):
			// Already drained and removed.
		case err != nil:
			return c.fail(ctx, res, StepCleanup, start, fmt.Errorf("failed to open legacy database for cleanup: %w", err))
		default:
			st.src = src
		}
	}

	if st.src != nil {
		src := st.src
		location := src.Location()
		if err := src.Close(); err != nil {
			return c.fail(ctx, res, StepCleanup, start, fmt.Errorf("failed to close legacy database: %w", err))
		}
		st.src = nil

		if src.FileBacked() {
			if err := src.RemoveFiles(); err != nil {
				return c.fail(ctx, res, StepCleanup, start, fmt.Errorf("failed to remove legacy database files: %w", err))
			}
			details = append(details, fmt.Sprintf("removed %s", location))
			log.Info("Removed legacy database files", slog.String("location", location))
		} else {
			details = append(details, fmt.Sprintf("%s is not instance-local, left in place", location))
		}
	}

	// Remove the local artifact even when this run skipped the export:
	// a prior run may have crashed between its load and its cleanup.
	name := st.artifactName
	if name == "" {
		name = seed.Filename(c.config.SeedVersion)
	}
	if c.config.KeepArtifact {
		if st.artifactName != "" {
			details = append(details, fmt.Sprintf("kept artifact at %s", c.deps.Artifacts.URI(name)))
		}
	} else {
		if err := c.deps.Artifacts.Remove(ctx, name); err != nil {
			return c.fail(ctx, res, StepCleanup, start, fmt.Errorf("failed to remove snapshot artifact: %w", err))
		}
		if st.artifactName != "" {
			details = append(details, "removed local artifact")
		}
	}

	if len(details) == 0 {
		c.skip(res, StepCleanup, "no legacy database present")
		return nil
	}

	c.ran(res, StepCleanup, start, strings.Join(details, "; "))
	return nil
}

// record appends the result to the instance-local journal.
func (c *Coordinator) record(ctx context.Context, res *Result, log *slog.Logger) {
	if c.deps.Recorder == nil {
		return
	}
	// Journal writes are local history; failing one must not take down
	// a bootstrap whose database work already committed.
	if err := c.deps.Recorder.Append(ctx, res); err != nil {
		log.Warn("Failed to record bootstrap run in journal", logger.Err(err))
	}
}

func (c *Coordinator) ran(res *Result, name StepName, start time.Time, detail string) {
	res.Steps = append(res.Steps, Step{
		Name:       name,
		Status:     StepRan,
		Detail:     detail,
		DurationMs: time.Since(start).Milliseconds(),
	})
}

func (c *Coordinator) skip(res *Result, name StepName, reason string) {
	res.Steps = append(res.Steps, Step{Name: name, Status: StepSkipped, Detail: reason})
}

// fail records the step failure on both the result and the active span.
func (c *Coordinator) fail(ctx context.Context, res *Result, name StepName, start time.Time, err error) error {
	telemetry.RecordError(ctx, err)
	res.Steps = append(res.Steps, Step{
		Name:       name,
		Status:     StepFailed,
		Error:      err.Error(),
		DurationMs: time.Since(start).Milliseconds(),
	})
	return err
}
