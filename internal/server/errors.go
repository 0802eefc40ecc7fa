package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/cv-analyzer/internal/ingestion"
	"github.com/jonathan/cv-analyzer/internal/pipeline"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrUploadTooLarge indicates an upload over the configured limit.
type ErrUploadTooLarge struct {
	Limit int64
}

func (e *ErrUploadTooLarge) Error() string {
	return fmt.Sprintf("upload exceeds %d bytes", e.Limit)
}

// ErrNotFound indicates a missing resource.
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// errHistoryDisabled is returned by history endpoints without a database.
var errHistoryDisabled = errors.New("analysis history is not enabled")

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		validationErr  *ErrValidation
		tooLargeErr    *ErrUploadTooLarge
		notFoundErr    *ErrNotFound
		unsupportedErr *ingestion.UnsupportedTypeError
	)
	switch {
	case errors.As(err, &validationErr), errors.As(err, &tooLargeErr),
		errors.As(err, &unsupportedErr), errors.Is(err, pipeline.ErrEmptyInput):
		return http.StatusBadRequest
	case errors.As(err, &notFoundErr):
		return http.StatusNotFound
	case errors.Is(err, errHistoryDisabled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// extractValidationErrors converts the first validator failure into an ErrValidation.
func extractValidationErrors(err error) *ErrValidation {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
		ve := validationErrors[0]
		return &ErrValidation{Field: ve.Field(), Message: ve.Tag()}
	}
	return &ErrValidation{Field: "request", Message: "invalid request"}
}
