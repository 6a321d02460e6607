package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Common attribute keys for traced operations.
// These follow OpenTelemetry semantic conventions where applicable.
// Bootstrap-specific keys use the "bootstrap." prefix.
const (
	// Bootstrap attributes
	AttrRunID    = "bootstrap.run_id"
	AttrStep     = "bootstrap.step"
	AttrInstance = "bootstrap.instance"

	// Seed and schema attributes
	AttrSeedVersion   = "seed.version"
	AttrSchemaVersion = "db.schema_version"
	AttrRows          = "db.rows"

	// Artifact attributes
	AttrArtifact = "artifact.name"
	AttrChecksum = "artifact.checksum"

	// Storage backend attributes
	AttrStoreType = "store.type"
	AttrBucket    = "storage.bucket"
	AttrKey       = "storage.key"
)

// SpanBootstrapRun is the root span for one bootstrap run; the step
// spans nest under it.
const SpanBootstrapRun = "bootstrap.run"

// RunID returns an attribute for the bootstrap run identifier
func RunID(id string) attribute.KeyValue {
	return attribute.String(AttrRunID, id)
}

// Step returns an attribute for the bootstrap step name
func Step(name string) attribute.KeyValue {
	return attribute.String(AttrStep, name)
}

// Instance returns an attribute for the instance identifier
func Instance(name string) attribute.KeyValue {
	return attribute.String(AttrInstance, name)
}

// SeedVersion returns an attribute for the data migration version
func SeedVersion(version int64) attribute.KeyValue {
	return attribute.Int64(AttrSeedVersion, version)
}

// SchemaVersion returns an attribute for the schema migration version
func SchemaVersion(version uint) attribute.KeyValue {
	return attribute.Int64(AttrSchemaVersion, int64(version))
}

// Rows returns an attribute for a row count
func Rows(n int) attribute.KeyValue {
	return attribute.Int(AttrRows, n)
}

// ArtifactName returns an attribute for a snapshot artifact name
func ArtifactName(name string) attribute.KeyValue {
	return attribute.String(AttrArtifact, name)
}

// Checksum returns an attribute for a snapshot checksum
func Checksum(sum string) attribute.KeyValue {
	return attribute.String(AttrChecksum, sum)
}

// StoreType returns an attribute for artifact store type
func StoreType(t string) attribute.KeyValue {
	return attribute.String(AttrStoreType, t)
}

// Bucket returns an attribute for S3 bucket name
func Bucket(name string) attribute.KeyValue {
	return attribute.String(AttrBucket, name)
}

// StorageKey returns an attribute for S3 object key
func StorageKey(key string) attribute.KeyValue {
	return attribute.String(AttrKey, key)
}

// StartStepSpan starts a span for one bootstrap step.
// This is a convenience function that sets common attributes.
func StartStepSpan(ctx context.Context, step string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := []attribute.KeyValue{
		Step(step),
	}
	allAttrs = append(allAttrs, attrs...)

	return StartSpan(ctx, "bootstrap."+step, trace.WithAttributes(allAttrs...))
}

// StartArtifactSpan starts a span for an artifact store operation.
func StartArtifactSpan(ctx context.Context, operation, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := []attribute.KeyValue{
		ArtifactName(name),
	}
	allAttrs = append(allAttrs, attrs...)

	return StartSpan(ctx, "artifact."+operation, trace.WithAttributes(allAttrs...))
}
