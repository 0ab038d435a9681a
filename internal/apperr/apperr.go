// Package apperr defines the error taxonomy shared by the store, the
// orchestrators, and the HTTP boundary.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// NotFoundError marks a missing session, TOC, learning path, topic,
// module, or concept. Never retried.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.ID)
}

func NotFound(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// ValidationError marks bad caller input: selected topic ids absent from
// the TOC, a status outside the allowed enum, an unsupported domain.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func Validation(format string, args ...any) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// GenerationError wraps a generation-backend or decode failure with the
// hierarchy level it occurred at.
type GenerationError struct {
	Level string
	Err   error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("%s generation failed: %v", e.Level, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

func Generation(level string, err error) *GenerationError {
	return &GenerationError{Level: level, Err: err}
}

// ServiceError marks a non-success response from the generation backend.
type ServiceError struct {
	Status int
	Body   string
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("generation service http %d: %s", e.Status, e.Body)
}

func (e *ServiceError) HTTPStatusCode() int {
	if e == nil {
		return 0
	}
	return e.Status
}

// SchemaError marks generated output that does not parse or does not
// match the expected shape.
type SchemaError struct {
	Schema string
	Err    error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema %s: %v", e.Schema, e.Err)
}

func (e *SchemaError) Unwrap() error { return e.Err }

func Schema(schema string, err error) *SchemaError {
	return &SchemaError{Schema: schema, Err: err}
}

// HTTPStatus maps a domain error to the status the boundary should
// return. Unknown errors map to 500.
func HTTPStatus(err error) int {
	var nf *NotFoundError
	if errors.As(err, &nf) {
		return http.StatusNotFound
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return http.StatusBadRequest
	}
	var ge *GenerationError
	if errors.As(err, &ge) {
		return http.StatusInternalServerError
	}
	return http.StatusInternalServerError
}

func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
