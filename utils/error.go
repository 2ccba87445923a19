package utils

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by the core workflows. The API layer maps these to
// user-facing responses; the core itself never retries.
var (
	// ErrNotFound: referenced practice/plant/benchmark does not exist or is soft-deleted.
	ErrNotFound = errors.New("not found")

	// ErrInvalidState: the operation violates a precondition
	// (not benchmarked, self-copy attempt, unbenchmark-with-copies).
	ErrInvalidState = errors.New("invalid state")

	// ErrConflict: uniqueness violation (duplicate copy by the same plant,
	// duplicate benchmark).
	ErrConflict = errors.New("conflict")

	// ErrIntegrityFailure: an atomic multi-step mutation could not complete.
	// No partial effects are visible.
	ErrIntegrityFailure = errors.New("integrity failure")
)

func NotFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, prepend(ErrNotFound, args)...)
}

func InvalidStatef(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, prepend(ErrInvalidState, args)...)
}

func Conflictf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, prepend(ErrConflict, args)...)
}

func IntegrityFailuref(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, prepend(ErrIntegrityFailure, args)...)
}

func prepend(head any, rest []any) []any {
	out := make([]any, 0, len(rest)+1)
	out = append(out, head)
	out = append(out, rest...)
	return out
}

func IsNotFound(err error) bool         { return errors.Is(err, ErrNotFound) }
func IsInvalidState(err error) bool     { return errors.Is(err, ErrInvalidState) }
func IsConflict(err error) bool         { return errors.Is(err, ErrConflict) }
func IsIntegrityFailure(err error) bool { return errors.Is(err, ErrIntegrityFailure) }
