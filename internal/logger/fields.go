package logger

import (
	"log/slog"
)

// Standard field keys for structured logging.
// Use these consistently across all log statements so aggregated logs stay
// queryable across the HTTP, bootstrap, and storage layers.
const (
	// ========================================================================
	// Distributed tracing
	// ========================================================================
	KeyTraceID = "trace_id" // OpenTelemetry trace ID for request correlation
	KeySpanID  = "span_id"  // OpenTelemetry span ID for operation tracking

	// ========================================================================
	// HTTP requests
	// ========================================================================
	KeyRequestID = "request_id" // Router-assigned request ID
	KeyMethod    = "method"     // HTTP method
	KeyPath      = "path"       // Request path
	KeyStatus    = "status"     // HTTP response status code
	KeyClientIP  = "client_ip"  // Client IP address
	KeyUsername  = "username"   // Authenticated operator username

	// ========================================================================
	// Bootstrap protocol
	// ========================================================================
	KeyRunID         = "run_id"         // Bootstrap run identifier
	KeyInstanceID    = "instance_id"    // This process's instance identity
	KeyStep          = "step"           // Bootstrap step name: migrate, export, load, cleanup
	KeySeedVersion   = "seed_version"   // Data-migration (seed) version
	KeySchemaVersion = "schema_version" // Schema migration version
	KeyDirty         = "dirty"          // Schema migration dirty flag

	// ========================================================================
	// Stores
	// ========================================================================
	KeyTable    = "table"    // Database table name
	KeyRows     = "rows"     // Row count for an operation
	KeyDatabase = "database" // Database name
	KeyDriver   = "driver"   // Store/cache driver: postgres, sqlite, memory, redis

	// ========================================================================
	// Snapshot artifacts
	// ========================================================================
	KeyArtifact = "artifact" // Artifact name or path
	KeyChecksum = "checksum" // Snapshot checksum
	KeyBucket   = "bucket"   // S3 bucket name
	KeyKey      = "key"      // Object key in S3
	KeySize     = "size"     // Payload size in bytes

	// ========================================================================
	// Operation metadata
	// ========================================================================
	KeyDurationMs = "duration_ms" // Operation duration in milliseconds
	KeyError      = "error"       // Error message
	KeyCacheHit   = "cache_hit"   // Cache hit indicator
)

// ============================================================================
// Field constructors for type safety
// ============================================================================

// TraceID returns a slog.Attr for an OpenTelemetry trace ID
func TraceID(id string) slog.Attr {
	return slog.String(KeyTraceID, id)
}

// SpanID returns a slog.Attr for an OpenTelemetry span ID
func SpanID(id string) slog.Attr {
	return slog.String(KeySpanID, id)
}

// RequestID returns a slog.Attr for the router-assigned request ID
func RequestID(id string) slog.Attr {
	return slog.String(KeyRequestID, id)
}

// Step returns a slog.Attr for a bootstrap step name
func Step(name string) slog.Attr {
	return slog.String(KeyStep, name)
}

// Table returns a slog.Attr for a database table name
func Table(name string) slog.Attr {
	return slog.String(KeyTable, name)
}

// Rows returns a slog.Attr for a row count
func Rows(n int) slog.Attr {
	return slog.Int(KeyRows, n)
}

// Err returns a slog.Attr for an error message.
// Safe to call with nil.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}

// DurationMs returns a slog.Attr for a duration in milliseconds
func DurationMs(ms float64) slog.Attr {
	return slog.Float64(KeyDurationMs, ms)
}
