// Package handlers provides HTTP handler implementations for the public API.
//
// This file defines the standard response utilities used across all
// endpoints: the structured error envelope, consistent JSON serialization,
// and the mapping from service-level sentinel errors to the HTTP error
// taxonomy. Side-effect failures (audit, notifications) never reach this
// layer; only primary-path outcomes are translated.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/claimsdesk/go-claims-backend/internal/http/middleware"
	"github.com/claimsdesk/go-claims-backend/internal/services"
)

// ErrorResponse is the standard error envelope returned by all endpoints.
//
// Fields:
//   - RequestID: Optional correlation ID, echoed from X-Request-ID header,
//     used to correlate server logs with client-side errors.
//   - Code: A stable, machine-readable string (see errors.go constants).
//   - Message: A human-readable error description, safe for display to users.
type ErrorResponse struct {
	// Correlates server logs and client errors
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	// Stable, machine-readable code (see errors.go constants)
	Code string `json:"code" example:"precondition_failed"`
	// Human-readable message (safe to show to users)
	Message string `json:"message" example:"claim is not pending review"`
}

// fail aborts the request with a structured error and logs server-side errors.
func fail(c *gin.Context, status int, code, msg string) {
	reqID := c.Writer.Header().Get("X-Request-ID")
	resp := ErrorResponse{
		RequestID: reqID,
		Code:      code,
		Message:   msg,
	}

	// Log 5xx (server-side) with request-scoped logger
	if status >= http.StatusInternalServerError {
		lg := middleware.LoggerFrom(c)
		lg.Error().
			Int("status", status).
			Str("code", code).
			Str("message", msg).
			Msg("api error")
	}

	c.AbortWithStatusJSON(status, resp)
}

// Fail is the exported variant of fail().
//
// External packages (e.g., router setup) should call Fail to return
// consistent error envelopes without directly depending on unexported helpers.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

// failFromService translates a service-layer error into the HTTP taxonomy:
// not found (404), precondition failed (409), validation failed (422),
// everything else internal (500).
func failFromService(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrClaimNotFound),
		errors.Is(err, services.ErrRuleNotFound),
		errors.Is(err, services.ErrResourceNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, err.Error())
	case errors.Is(err, services.ErrInvalidState):
		fail(c, http.StatusConflict, ErrCodePrecondition, err.Error())
	case errors.Is(err, services.ErrProductRequired),
		errors.Is(err, services.ErrEmptyReason),
		errors.Is(err, services.ErrTripleRequired),
		errors.Is(err, services.ErrTreatmentOwnerRequired),
		errors.Is(err, services.ErrOutsideClaimsArea),
		errors.Is(err, services.ErrNameRequired),
		errors.Is(err, services.ErrAreaRoleRequired),
		errors.Is(err, services.ErrParentRequired):
		fail(c, http.StatusUnprocessableEntity, ErrCodeValidation, err.Error())
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
	}
}

// ok writes a success JSON response.
func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}

// noContent writes an HTTP 204 No Content response.
func noContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
