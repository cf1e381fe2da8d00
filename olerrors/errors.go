// Package olerrors defines the closed set of failure kinds produced by the
// Ollama client. Callers classify failures with errors.Is against the
// sentinel roots, or broadly with IsOllamaError.
package olerrors

import (
	"github.com/cockroachdb/errors"
)

var (
	// ErrConnection indicates a network or transport failure, a non-2xx
	// HTTP status other than 404, or an unreachable daemon.
	ErrConnection = errors.New("ollama connection error")

	// ErrModelNotFound indicates the daemon explicitly reported that the
	// named model does not exist (HTTP 404 on a model-scoped endpoint).
	ErrModelNotFound = errors.New("model not found")

	// ErrDownload is reserved for incremental download tracking failures.
	ErrDownload = errors.New("download error")

	// ErrValidation indicates a malformed request, a malformed response
	// body, or a policy violation such as a disallowed model name.
	ErrValidation = errors.New("validation error")
)

// Connection returns a new connection failure with a formatted message.
func Connection(format string, args ...any) error {
	return errors.WithMessagef(ErrConnection, format, args...)
}

// ModelNotFound returns a new model-not-found failure with a formatted message.
func ModelNotFound(format string, args ...any) error {
	return errors.WithMessagef(ErrModelNotFound, format, args...)
}

// Download returns a new download failure with a formatted message.
func Download(format string, args ...any) error {
	return errors.WithMessagef(ErrDownload, format, args...)
}

// Validation returns a new validation failure with a formatted message.
func Validation(format string, args ...any) error {
	return errors.WithMessagef(ErrValidation, format, args...)
}

// WrapConnection marks err as a connection failure, preserving its chain.
func WrapConnection(err error, format string, args ...any) error {
	return errors.Mark(errors.Wrapf(err, format, args...), ErrConnection)
}

// WrapValidation marks err as a validation failure, preserving its chain.
func WrapValidation(err error, format string, args ...any) error {
	return errors.Mark(errors.Wrapf(err, format, args...), ErrValidation)
}

func IsConnection(err error) bool    { return errors.Is(err, ErrConnection) }
func IsModelNotFound(err error) bool { return errors.Is(err, ErrModelNotFound) }
func IsDownload(err error) bool      { return errors.Is(err, ErrDownload) }
func IsValidation(err error) bool    { return errors.Is(err, ErrValidation) }

// IsOllamaError reports whether err belongs to any of the typed failure kinds.
func IsOllamaError(err error) bool {
	return errors.IsAny(err, ErrConnection, ErrModelNotFound, ErrDownload, ErrValidation)
}
