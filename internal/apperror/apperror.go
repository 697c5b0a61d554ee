// Package apperror defines the domain errors shared by the service,
// repository and handler layers.
//
// Every error that should reach the client with a specific status wraps one
// of the sentinels below. Handlers check them with errors.Is; anything that
// wraps neither is treated as a store failure.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation error")
)

type AppError struct {
	Err     error  // sentinel
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// Required is shorthand for the "missing field" validation failure.
func Required(field string) *AppError {
	return ValidationFailed(field, fmt.Sprintf("missing `%s` in request body", field))
}
