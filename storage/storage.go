// Package storage defines the durable key/value capability the session store and the
// resource reclaimer persist through. Business logic never reaches the backing store
// directly; it is handed a Storage.
package storage

import (
	"context"

	apperrors "github.com/jrsteele09/aquamind/internal/errors"
)

// Keys of the persisted client state.
const (
	KeyAuthData         = "auth_data_aquamind"
	KeyCameraPermission = "cameraPermissionGranted"
	KeySidebarCollapsed = "sidebar_collapsed"
)

// ErrNotFound is returned by Get when the key holds no value.
var ErrNotFound = apperrors.ErrNotFound

// Storage is a durable string key/value store.
type Storage interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Remove deletes key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error
}
