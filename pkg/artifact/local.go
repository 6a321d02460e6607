package artifact

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// LocalStore keeps artifacts as files in a single directory.
//
// Files are written to a temp sibling, fsynced, and renamed into place,
// so a crash mid-export never leaves a partial artifact under the final
// name. Snapshots carry customer rows, hence the 0600 file mode.
type LocalStore struct {
	dir string
}

// NewLocalStore creates the artifact directory if needed and returns a
// store rooted there.
func NewLocalStore(dir string) (*LocalStore, error) {
	if dir == "" {
		return nil, errors.New("artifact directory is required")
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create artifact directory: %w", err)
	}

	return &LocalStore{dir: dir}, nil
}

func (s *LocalStore) path(name string) string {
	return filepath.Join(s.dir, filepath.Base(name))
}

// Put writes the artifact atomically under name.
func (s *LocalStore) Put(ctx context.Context, name string, r io.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path := s.path(name)
	tmpPath := path + ".tmp"

	f, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create artifact: %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write artifact: %w", err)
	}

	// The artifact is the recovery point between export and load; it
	// must be on disk before the export step reports success.
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to sync artifact: %w", err)
	}

	if err := f.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to close artifact: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to finalize artifact: %w", err)
	}

	return nil
}

// Get opens the named artifact. The caller closes the returned reader.
func (s *LocalStore) Get(ctx context.Context, name string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(s.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, fmt.Errorf("failed to open artifact: %w", err)
	}

	return f, nil
}

// Remove deletes the named artifact. Absent artifacts are not an error.
func (s *LocalStore) Remove(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.Remove(s.path(name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove artifact: %w", err)
	}

	return nil
}

// URI returns a file:// URI for the named artifact.
func (s *LocalStore) URI(name string) string {
	return "file://" + s.path(name)
}

// Dir returns the directory artifacts are stored under.
func (s *LocalStore) Dir() string {
	return s.dir
}

var _ Store = (*LocalStore)(nil)
