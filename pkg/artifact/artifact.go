// Package artifact stores the snapshot documents bootstrap produces
// between its export and load steps.
//
// The intermediate artifact is deliberately a real, named object rather
// than an in-memory hand-off: an operator can inspect it when a load
// fails, and with S3 retention enabled a copy survives the instance
// itself.
package artifact

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound indicates the named artifact does not exist in the store.
var ErrNotFound = errors.New("artifact not found")

// Store persists encoded snapshot documents by name.
type Store interface {
	// Put writes the artifact under name, replacing any previous
	// content atomically.
	Put(ctx context.Context, name string, r io.Reader) error

	// Get opens the named artifact for reading. The caller closes the
	// returned reader. Returns ErrNotFound if the artifact does not
	// exist.
	Get(ctx context.Context, name string) (io.ReadCloser, error)

	// Remove deletes the named artifact. Removing an absent artifact
	// is not an error, so cleanup can be retried.
	Remove(ctx context.Context, name string) error

	// URI locates the named artifact for logs and status output.
	URI(name string) string
}
