// Package sla provides the service-level compliance arithmetic for claims.
//
// All operations are pure calendar-day math: inputs are normalized to
// midnight UTC before comparison so time-of-day components never influence
// the result, and no business-day skipping is applied (business-day delay is
// an operator-entered field elsewhere, never computed here).
package sla

import (
	"math"
	"time"
)

// Midnight truncates t to its calendar date in UTC.
func Midnight(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the ceiling of (closed minus deadline) in calendar days.
// Positive means the claim closed late, zero or negative on time or early.
func DaysBetween(closed, deadline time.Time) int {
	diff := Midnight(closed).Sub(Midnight(deadline))
	return int(math.Ceil(diff.Hours() / 24))
}

// IsCompliant reports whether closed is on or before deadline. Closing on the
// deadline date itself counts as compliant.
func IsCompliant(closed, deadline time.Time) bool {
	return !Midnight(closed).After(Midnight(deadline))
}

// Deadline returns the theoretical closing deadline for a claim created at
// created with a routed response time of responseDays calendar days.
func Deadline(created time.Time, responseDays int) time.Time {
	return Midnight(created).AddDate(0, 0, responseDays)
}
