package artifact

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLocalStore(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "artifacts")

	store, err := NewLocalStore(dir)
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, dir, store.Dir())
}

func TestNewLocalStore_EmptyDir(t *testing.T) {
	_, err := NewLocalStore("")
	assert.Error(t, err)
}

func TestLocalStore_PutGet(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	err = store.Put(ctx, "seed-v1.json", strings.NewReader(`{"rows":3}`))
	require.NoError(t, err)

	r, err := store.Get(ctx, "seed-v1.json")
	require.NoError(t, err)
	defer r.Close()

	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, `{"rows":3}`, string(data))

	// Snapshots carry customer rows; the file must not be world readable.
	info, err := os.Stat(filepath.Join(store.Dir(), "seed-v1.json"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	// The temp sibling must not survive a successful write.
	_, err = os.Stat(filepath.Join(store.Dir(), "seed-v1.json.tmp"))
	assert.True(t, os.IsNotExist(err))
}

func TestLocalStore_PutReplaces(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "seed-v1.json", strings.NewReader("first")))
	require.NoError(t, store.Put(ctx, "seed-v1.json", strings.NewReader("second")))

	r, err := store.Get(ctx, "seed-v1.json")
	require.NoError(t, err)
	defer r.Close()

	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))
}

func TestLocalStore_GetNotFound(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Get(context.Background(), "seed-v9.json")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalStore_Remove(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "seed-v1.json", strings.NewReader("data")))
	require.NoError(t, store.Remove(ctx, "seed-v1.json"))

	_, err = store.Get(ctx, "seed-v1.json")
	assert.ErrorIs(t, err, ErrNotFound)

	// Removing an absent artifact is part of the contract.
	assert.NoError(t, store.Remove(ctx, "seed-v1.json"))
}

func TestLocalStore_NameCannotEscapeDir(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "../../etc/seed-v1.json", strings.NewReader("data")))

	// The path component is stripped; the file lands inside the store dir.
	_, err = os.Stat(filepath.Join(store.Dir(), "seed-v1.json"))
	assert.NoError(t, err)
}

func TestLocalStore_URI(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	uri := store.URI("seed-v1.json")
	assert.True(t, strings.HasPrefix(uri, "file://"))
	assert.True(t, strings.HasSuffix(uri, "/seed-v1.json"))
}
