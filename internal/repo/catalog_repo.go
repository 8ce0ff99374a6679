// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides the uniform CRUD persistence for the
// catalog entities (areas, roles, products, users, classification taxonomy).
//
// The operations are deliberately generic: every catalog type behaves the
// same way (list active, create, patch fields, soft-deactivate), which is why
// they are expressed once over a type parameter instead of per entity.
package repo

import (
	"context"

	"gorm.io/gorm"
)

// ListActive returns all active rows of T ordered by id.
func ListActive[T any](ctx context.Context, db *gorm.DB) ([]T, error) {
	var out []T
	err := db.WithContext(ctx).
		Where("active = ?", true).
		Order("id asc").
		Find(&out).Error
	return out, err
}

// GetActive fetches one active row of T by id, or ErrNotFound.
func GetActive[T any](ctx context.Context, db *gorm.DB, id uint) (*T, error) {
	var row T
	err := db.WithContext(ctx).
		Where("id = ? AND active = ?", id, true).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// CreateRow inserts a catalog row.
func CreateRow[T any](ctx context.Context, db *gorm.DB, row *T) error {
	return db.WithContext(ctx).Create(row).Error
}

// UpdateRow applies the non-zero fields of row to an active row of T,
// ErrNotFound when no row matches. Identity, creation time, and the active
// flag are never touched through this path.
func UpdateRow[T any](ctx context.Context, db *gorm.DB, id uint, row *T) error {
	res := db.WithContext(ctx).
		Model(row).
		Where("id = ? AND active = ?", id, true).
		Omit("id", "created_at", "active").
		Updates(row)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpdateRowFields applies a column map to an active row of T, ErrNotFound
// when no row matches.
func UpdateRowFields[T any](ctx context.Context, db *gorm.DB, id uint, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	var model T
	res := db.WithContext(ctx).
		Model(&model).
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

// DeactivateRow flips the active flag off for one row of T.
func DeactivateRow[T any](ctx context.Context, db *gorm.DB, id uint) error {
	var model T
	res := db.WithContext(ctx).
		Model(&model).
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
