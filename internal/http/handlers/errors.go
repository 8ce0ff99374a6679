// Package handlers defines HTTP-layer error codes used across all API endpoints.
//
// This file centralizes symbolic error code constants that are mapped to HTTP
// responses (via the `fail()` helper in this package). These codes give
// clients a stable, machine-readable taxonomy that supplements the
// human-readable messages: not found, precondition failed, validation failed,
// and internal are distinguishable without parsing message text.
package handlers

const (
	ErrCodeBadRequest   = "bad_request"
	ErrCodeUnauthorized = "unauthorized"
	ErrCodeForbidden    = "forbidden"
	ErrCodeNotFound     = "not_found"
	ErrCodeConflict     = "conflict"
	ErrCodeRateLimited  = "too_many_requests"
	ErrCodeInternal     = "internal_error"

	// Workflow-specific:
	ErrCodePrecondition     = "precondition_failed"
	ErrCodeValidation       = "validation_failed"
	ErrCodeMethodNotAllowed = "method_not_allowed"
)
