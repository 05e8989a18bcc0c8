// Package apperr defines the error taxonomy shared by all use cases.
// Handlers translate these sentinels into transport status codes;
// repositories and use cases wrap them with context via %w.
package apperr

import "errors"

var (
	ErrValidation        = errors.New("validation failed")
	ErrNotFound          = errors.New("not found")
	ErrForbidden         = errors.New("forbidden")
	ErrConflict          = errors.New("conflict")
	ErrInsufficientStock = errors.New("insufficient stock")
)
