// Package common defines shared constants and sentinel errors used across
// the reminder service layers. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// ErrStoreUnavailable marks a failure to read from the loan store. It is
	// the only error that aborts a whole reminder cycle.
	ErrStoreUnavailable = errors.New("loan store unavailable")

	// ErrCycleInProgress is returned when a reminder cycle is requested while
	// another one is still running.
	ErrCycleInProgress = errors.New("reminder cycle already in progress")

	// Service-level errors.
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// ErrInvalidToken is returned for malformed or badly signed admin tokens.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// ErrInvalidConfig is returned by config validation.
	ErrInvalidConfig = errors.New("invalid config")
)
