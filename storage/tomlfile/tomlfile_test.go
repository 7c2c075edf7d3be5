package tomlfile_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jrsteele09/aquamind/sessions"
	"github.com/jrsteele09/aquamind/storage"
	"github.com/jrsteele09/aquamind/storage/tomlfile"
	"github.com/stretchr/testify/require"
)

func TestStorageRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state", "client.toml")

	s, err := tomlfile.New(path)
	require.NoError(t, err)

	_, err = s.Get(ctx, storage.KeyAuthData)
	require.ErrorIs(t, err, storage.ErrNotFound)

	record := `{"token":"abc","user_id":"u-1","timestamp":"2026-01-02T03:04:05Z"}`
	require.NoError(t, s.Set(ctx, storage.KeyAuthData, record))
	require.NoError(t, s.Set(ctx, storage.KeyCameraPermission, "true"))

	reopened, err := tomlfile.New(path)
	require.NoError(t, err)
	v, err := reopened.Get(ctx, storage.KeyAuthData)
	require.NoError(t, err)
	require.Equal(t, record, v)

	require.NoError(t, reopened.Remove(ctx, storage.KeyCameraPermission))
	require.NoError(t, reopened.Remove(ctx, storage.KeyCameraPermission))
	_, err = reopened.Get(ctx, storage.KeyCameraPermission)
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestStoragePicksUpExternalEdits(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "client.toml")

	s, err := tomlfile.New(path)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, storage.KeySidebarCollapsed, "false"))

	require.NoError(t, os.WriteFile(path, []byte("[entries]\nsidebar_collapsed = \"true\"\n"), 0o600))
	later := time.Now().Add(2 * time.Second)
	require.NoError(t, os.Chtimes(path, later, later))

	v, err := s.Get(ctx, storage.KeySidebarCollapsed)
	require.NoError(t, err)
	require.Equal(t, "true", v)
}

func TestStorageForgetsDeletedFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "client.toml")

	s, err := tomlfile.New(path)
	require.NoError(t, err)
	store := sessions.NewStore(s)
	require.NoError(t, store.Save(ctx, "tok-1", "ana"))
	require.True(t, store.IsAuthenticated(ctx))

	require.NoError(t, os.Remove(path))

	_, ok := store.Read(ctx)
	require.False(t, ok)
	require.False(t, store.IsAuthenticated(ctx))
	_, err = s.Get(ctx, storage.KeyAuthData)
	require.ErrorIs(t, err, storage.ErrNotFound)

	// The next write starts a fresh file.
	require.NoError(t, s.Set(ctx, storage.KeyCameraPermission, "true"))
	v, err := s.Get(ctx, storage.KeyCameraPermission)
	require.NoError(t, err)
	require.Equal(t, "true", v)
	_, err = os.Stat(path)
	require.NoError(t, err)
}

func TestStorageCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "client.toml")
	require.NoError(t, os.WriteFile(path, []byte("entries = [[["), 0o600))

	s, err := tomlfile.New(path)
	require.NoError(t, err)
	_, err = s.Get(context.Background(), storage.KeyAuthData)
	require.Error(t, err)
	require.NotErrorIs(t, err, storage.ErrNotFound)
}
