package errors

import (
	"errors"
	"fmt"
)

// Common error types for the AquaMind client service
var (
	// Storage errors
	ErrNotFound           = errors.New("not found")
	ErrStorageUnavailable = errors.New("storage unavailable")

	// Session errors
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session expired")
	ErrSessionCorrupt  = errors.New("session record corrupt")

	// Request errors
	ErrInvalidRequest = errors.New("invalid request")
	ErrUnauthorized   = errors.New("unauthorized")

	// Remote analytics API errors
	ErrUpstream = errors.New("analytics service error")

	// General errors
	ErrInternal    = errors.New("internal error")
	ErrUnsupported = errors.New("unsupported operation")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
