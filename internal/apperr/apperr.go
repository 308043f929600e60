// Package apperr defines the error taxonomy shared by the registry services.
//
// Every error returned to a transport is either one of these sentinels
// (wrapped with context via %w) or an internal failure.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation covers malformed input: bad filter bounds, missing
	// required fields, out-of-range numbers.
	ErrValidation = errors.New("validation failed")
	// ErrForbidden is a MutationGuard denial.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound means the targeted id or slug does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is a uniqueness or state conflict the caller can retry or resolve.
	ErrConflict = errors.New("conflict")
)

func Validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func Forbidden(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrForbidden, fmt.Sprintf(format, args...))
}

func NotFound(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

func Conflict(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}

// Kind returns the sentinel err wraps, or nil for internal errors.
func Kind(err error) error {
	for _, k := range []error{ErrValidation, ErrForbidden, ErrNotFound, ErrConflict} {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}
