// Package services provides the shared error taxonomy and context helpers
// used across pipeline components.
//
// Errors are classified with sentinel markers (ErrInvalidInput, ErrNotFound,
// ErrOutOfOrder, ErrUpstream, ErrPersistence, ErrValidation) so callers can
// distinguish expected outcomes from genuine faults with errors.Is. Wrap
// attaches stage/operation detail without losing the marker, and HTTPStatus
// maps markers to response codes for the HTTP surface.
package services
