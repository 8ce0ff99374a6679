// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides user lookups shared between the routing
// configuration surface and notification recipient resolution.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/claimsdesk/go-claims-backend/internal/domain"
)

// GetUsersByIDs returns the active users among the given ids. Missing or
// inactive ids are simply absent from the result; the caller decides whether
// that is an error (routing config validation does, notification recipient
// resolution tolerates stale references).
func GetUsersByIDs(ctx context.Context, db *gorm.DB, ids []uint) ([]domain.User, error) {
	if len(ids) == 0 {
		return []domain.User{}, nil
	}
	var out []domain.User
	err := db.WithContext(ctx).
		Where("id IN ? AND active = ?", ids, true).
		Find(&out).Error
	return out, err
}

// GetUser fetches one active user by id, or ErrNotFound.
func GetUser(ctx context.Context, db *gorm.DB, id uint) (*domain.User, error) {
	var u domain.User
	err := db.WithContext(ctx).
		Where("id = ? AND active = ?", id, true).
		First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}
