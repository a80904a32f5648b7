package order

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrValidation = errors.New("validation") // 422
	ErrNotFound   = errors.New("not found")  // 404
	ErrConflict   = errors.New("conflict")   // 409
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError aggregates the first failing rule per field. It wraps
// ErrValidation so callers can match with errors.Is.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }
