package services

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrInvalidInput marks malformed or missing caller input.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound marks an unknown session or suggestion.
	ErrNotFound = errors.New("not found")
	// ErrOutOfOrder marks a processor result that arrived for a stage the
	// target record has not reached, or for a superseded upload.
	ErrOutOfOrder = errors.New("out of order")
	// ErrUpstream marks a failure in an external collaborator (GitHub, the
	// suggestion model, or a media tool).
	ErrUpstream = errors.New("upstream service error")
	// ErrPersistence marks a session store failure.
	ErrPersistence = errors.New("persistence error")
	// ErrValidation marks a media validation outcome. It is an expected
	// result for a bad upload, not a fault.
	ErrValidation = errors.New("validation error")
)

// Wrap builds an error message that includes stage context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrUpstream
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// HTTPStatus maps a classified error to the status code the HTTP surface
// should return. Unclassified errors are treated as internal faults.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrOutOfOrder):
		return http.StatusConflict
	case errors.Is(err, ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// ErrorLabel returns the classification token for an error, suitable for the
// error field of API responses. Unclassified errors label as internal_error.
func ErrorLabel(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return "validation_failed"
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrOutOfOrder):
		return "conflict"
	case errors.Is(err, ErrUpstream):
		return "upstream_error"
	case errors.Is(err, ErrPersistence):
		return "persistence_error"
	default:
		return "internal_error"
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
