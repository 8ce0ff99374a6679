// Package services defines the business logic for claims, routing rules, and
// the catalog resources. This file centralizes common service-level error
// values so that they can be consistently returned by service methods and
// checked by callers.
//
// These errors are intended for internal use by the service layer; translation
// into user-facing messages or HTTP status codes is performed at the
// handler layer, which distinguishes four caller-visible classes:
// not found, precondition failed, validation failed, and internal.
package services

import "errors"

// Not-found errors.
var (
	// ErrClaimNotFound indicates the requested claim does not exist or has
	// been soft-deactivated.
	ErrClaimNotFound = errors.New("claim not found")

	// ErrRuleNotFound indicates the requested routing rule does not exist or
	// has been soft-deactivated.
	ErrRuleNotFound = errors.New("routing rule not found")

	// ErrResourceNotFound indicates a catalog row does not exist or has been
	// soft-deactivated.
	ErrResourceNotFound = errors.New("resource not found")
)

// Precondition errors (client-correctable; the stored state is left
// untouched, never silently corrected).
var (
	// ErrInvalidState is returned when approve or reject is attempted on a
	// claim that is not pending review.
	ErrInvalidState = errors.New("claim is not pending review")
)

// Validation errors.
var (
	// ErrProductRequired is returned when claim intake lacks a product
	// reference.
	ErrProductRequired = errors.New("product reference is required")

	// ErrEmptyReason is returned when a rejection arrives with an empty or
	// whitespace-only reason.
	ErrEmptyReason = errors.New("rejection reason is required")

	// ErrTripleRequired is returned when a routing rule write lacks a
	// complete classification triple.
	ErrTripleRequired = errors.New("classification triple is required")

	// ErrTreatmentOwnerRequired is returned when a routing rule write lacks
	// a treatment owner.
	ErrTreatmentOwnerRequired = errors.New("treatment owner is required")

	// ErrOutsideClaimsArea is returned when a routing rule references a
	// responsible id that is not an active member of the claims area.
	ErrOutsideClaimsArea = errors.New("responsible user is outside the claims area")

	// ErrNameRequired is returned when a catalog write lacks a name.
	ErrNameRequired = errors.New("name is required")

	// ErrAreaRoleRequired is returned when a user write lacks an area or
	// role reference.
	ErrAreaRoleRequired = errors.New("area and role are required")

	// ErrParentRequired is returned when a taxonomy write lacks its parent
	// reference (classification for a class, class for a cause).
	ErrParentRequired = errors.New("parent reference is required")
)
