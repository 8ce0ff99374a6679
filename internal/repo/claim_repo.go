// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Claim model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no workflow logic, only CRUD
// persistence and query composition. Transition rules live in
// services.ClaimService.
//
// Error semantics:
//   - When a claim is not found (or soft-deactivated), functions return
//     gorm.ErrRecordNotFound (also exported here as ErrNotFound).
//   - On DB errors the raw gorm error is propagated.
//
// Every read filters on active = true: claims are never hard-deleted, so an
// inactive row must be invisible to all workflow operations.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/claimsdesk/go-claims-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// ClaimFilter narrows ListClaimsPage/CountClaims. Zero values mean
// "no constraint" for that dimension.
type ClaimFilter struct {
	StateID              uint
	ResponsiblePersonID  uint
	ClassificationID     uint
}

func (f ClaimFilter) apply(q *gorm.DB) *gorm.DB {
	if f.StateID != 0 {
		q = q.Where("state_id = ?", f.StateID)
	}
	if f.ResponsiblePersonID != 0 {
		q = q.Where("responsible_person_id = ?", f.ResponsiblePersonID)
	}
	if f.ClassificationID != 0 {
		q = q.Where("classification_id = ?", f.ClassificationID)
	}
	return q
}

// CreateClaim inserts the given claim row. The caller (service layer) is
// responsible for having set state, routing, and deadline fields.
func CreateClaim(ctx context.Context, db *gorm.DB, c *domain.Claim) error {
	c.Active = true
	return db.WithContext(ctx).Create(c).Error
}

// GetClaim fetches a single active claim by id, or ErrNotFound.
func GetClaim(ctx context.Context, db *gorm.DB, id uint) (*domain.Claim, error) {
	var c domain.Claim
	err := db.WithContext(ctx).
		Where("id = ? AND active = ?", id, true).
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// CountClaims returns the number of active claims matching the filter.
func CountClaims(ctx context.Context, db *gorm.DB, f ClaimFilter) (int64, error) {
	var total int64
	err := f.apply(db.WithContext(ctx).Model(&domain.Claim{}).Where("active = ?", true)).
		Count(&total).Error
	return total, err
}

// ListClaimsPage returns a page of active claims matching the filter, newest
// first. The caller computes offset and limit.
func ListClaimsPage(ctx context.Context, db *gorm.DB, f ClaimFilter, offset, limit int) ([]domain.Claim, error) {
	var out []domain.Claim
	err := f.apply(db.WithContext(ctx).Where("active = ?", true)).
		Order("created_at desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// UpdateClaimFields applies a column map to an active claim. Using a map
// (not a struct) lets the service layer write explicit NULLs, which the
// compliance invariant depends on: closed_at, days_difference, and
// is_compliant are cleared or set together.
//
// Returns ErrNotFound when no active row matches.
func UpdateClaimFields(ctx context.Context, db *gorm.DB, id uint, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	res := db.WithContext(ctx).
		Model(&domain.Claim{}).
		Where("id = ? AND active = ?", id, true).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SaveClaim persists the full claim row (replace-style update).
func SaveClaim(ctx context.Context, db *gorm.DB, c *domain.Claim) error {
	return db.WithContext(ctx).Save(c).Error
}

// DeactivateClaim flips the active flag off. The row is retained for audit
// and reporting; it simply disappears from every read path.
func DeactivateClaim(ctx context.Context, db *gorm.DB, id uint) error {
	res := db.WithContext(ctx).
		Model(&domain.Claim{}).
		Where("id = ? AND active = ?", id, true).
		Update("active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
