// Package apperr defines the error kinds shared across the converter.
//
// Callers wrap a kind together with the underlying cause, e.g.
//
//	fmt.Errorf("%w: fetch %s: %w", apperr.ErrRemote, id, err)
//
// so that errors.Is matches both the kind and the cause.
package apperr

import "errors"

var (
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput covers bad identifiers and an empty conversion selection.
	ErrInvalidInput = errors.New("invalid input")
	// ErrRemote covers transport failures, non-success responses and payloads
	// that do not match the expected schema.
	ErrRemote            = errors.New("remote error")
	ErrComponentNotFound = errors.New("component not found")

	// ErrGeometry is returned when a shape list yields no usable primitive.
	ErrGeometry        = errors.New("geometry error")
	ErrMalformedRecord = errors.New("malformed record")
	ErrArcGeometry     = errors.New("arc geometry error")

	ErrLibrary            = errors.New("library error")
	ErrDuplicateComponent = errors.New("duplicate component")
)
