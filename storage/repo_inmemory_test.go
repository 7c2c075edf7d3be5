package storage_test

import (
	"context"
	"testing"

	"github.com/jrsteele09/aquamind/storage"
	"github.com/stretchr/testify/require"
)

func TestInMemoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := storage.NewInMemory()

	_, err := s.Get(ctx, storage.KeyAuthData)
	require.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, s.Set(ctx, storage.KeyAuthData, `{"token":"t"}`))
	v, err := s.Get(ctx, storage.KeyAuthData)
	require.NoError(t, err)
	require.Equal(t, `{"token":"t"}`, v)

	require.NoError(t, s.Set(ctx, storage.KeyAuthData, "replaced"))
	v, err = s.Get(ctx, storage.KeyAuthData)
	require.NoError(t, err)
	require.Equal(t, "replaced", v)
	require.Equal(t, 1, s.Len())
}

func TestInMemoryRemoveIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := storage.NewInMemory()

	require.NoError(t, s.Set(ctx, storage.KeyCameraPermission, "true"))
	require.NoError(t, s.Remove(ctx, storage.KeyCameraPermission))
	require.NoError(t, s.Remove(ctx, storage.KeyCameraPermission))

	_, err := s.Get(ctx, storage.KeyCameraPermission)
	require.ErrorIs(t, err, storage.ErrNotFound)
}
