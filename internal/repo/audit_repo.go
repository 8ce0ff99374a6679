// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the append-only
// audit log.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/claimsdesk/go-claims-backend/internal/domain"
)

// AppendAudit inserts one audit entry for a claim. Entries are append-only;
// no update or delete functions exist for this table.
func AppendAudit(ctx context.Context, db *gorm.DB, claimID uint, actorID *uint, action, note string) (*domain.AuditEntry, error) {
	e := &domain.AuditEntry{
		ClaimID:   claimID,
		ActorID:   actorID,
		Action:    action,
		Note:      note,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(e).Error; err != nil {
		return nil, err
	}
	return e, nil
}

// ListAudit returns the audit trail for a claim in chronological order.
func ListAudit(ctx context.Context, db *gorm.DB, claimID uint) ([]domain.AuditEntry, error) {
	var out []domain.AuditEntry
	err := db.WithContext(ctx).
		Where("claim_id = ?", claimID).
		Order("created_at asc, id asc").
		Find(&out).Error
	return out, err
}
