package errors_test

import (
	"fmt"
	"testing"

	apperrors "github.com/jrsteele09/aquamind/internal/errors"
	"github.com/stretchr/testify/require"
)

func TestWrapfKeepsChain(t *testing.T) {
	err := apperrors.Wrapf(apperrors.ErrNotFound, "read %s", "auth_data_aquamind")
	require.EqualError(t, err, "read auth_data_aquamind: not found")
	require.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

func TestWrapfNil(t *testing.T) {
	require.NoError(t, apperrors.Wrapf(nil, "ignored"))
}

type statusError struct{ code int }

func (e *statusError) Error() string { return fmt.Sprintf("status %d", e.code) }

func TestAs(t *testing.T) {
	err := fmt.Errorf("outer: %w", &statusError{code: 502})
	var target *statusError
	require.True(t, apperrors.As(err, &target))
	require.Equal(t, 502, target.code)
}
