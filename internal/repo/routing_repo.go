// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for routing rules
// and their first-contact sets.
//
// Resolution semantics (see services.RoutingService for the caller contract):
//   - A nil dimension in FindActiveRule is a wildcard, not "match null":
//     present filters narrow, absent ones do not constrain.
//   - Among matching active rules the lowest id wins. The ORDER BY makes the
//     tie-break for overlapping configuration deterministic on purpose.
//   - "No match" is (nil, nil), never an error: callers leave responsibility
//     unassigned rather than failing their operation.
package repo

import (
	"context"

	"errors"

	"gorm.io/gorm"

	"github.com/claimsdesk/go-claims-backend/internal/domain"
)

// FindActiveRule returns the first active routing rule matching the given
// classification triple, lowest rule id first. Nil arguments are wildcards.
// The first-contact set is preloaded in position order.
func FindActiveRule(ctx context.Context, db *gorm.DB, classificationID, classID, causeID *uint) (*domain.RoutingRule, error) {
	q := db.WithContext(ctx).
		Preload("FirstContacts", func(db *gorm.DB) *gorm.DB {
			return db.Order("position asc, id asc")
		}).
		Where("active = ?", true)
	if classificationID != nil {
		q = q.Where("classification_id = ?", *classificationID)
	}
	if classID != nil {
		q = q.Where("class_id = ?", *classID)
	}
	if causeID != nil {
		q = q.Where("cause_id = ?", *causeID)
	}

	var rule domain.RoutingRule
	err := q.Order("id asc").First(&rule).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rule, nil
}

// GetRule fetches a single active rule by id with its first-contact set, or
// ErrNotFound.
func GetRule(ctx context.Context, db *gorm.DB, id uint) (*domain.RoutingRule, error) {
	var rule domain.RoutingRule
	err := db.WithContext(ctx).
		Preload("FirstContacts", func(db *gorm.DB) *gorm.DB {
			return db.Order("position asc, id asc")
		}).
		Where("id = ? AND active = ?", id, true).
		First(&rule).Error
	if err != nil {
		return nil, err
	}
	return &rule, nil
}

// ListRules returns all active rules ordered by id with first contacts
// preloaded.
func ListRules(ctx context.Context, db *gorm.DB) ([]domain.RoutingRule, error) {
	var out []domain.RoutingRule
	err := db.WithContext(ctx).
		Preload("FirstContacts", func(db *gorm.DB) *gorm.DB {
			return db.Order("position asc, id asc")
		}).
		Where("active = ?", true).
		Order("id asc").
		Find(&out).Error
	return out, err
}

// CreateRule inserts a routing rule together with its first-contact set in a
// single transaction.
func CreateRule(ctx context.Context, db *gorm.DB, rule *domain.RoutingRule, firstContactIDs []uint) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rule.Active = true
		rule.FirstContacts = nil
		if err := tx.Create(rule).Error; err != nil {
			return err
		}
		return insertFirstContacts(tx, rule.ID, firstContactIDs)
	})
}

// UpdateRuleFields applies a column map to an active rule, ErrNotFound when
// no row matches.
func UpdateRuleFields(ctx context.Context, db *gorm.DB, id uint, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	res := db.WithContext(ctx).
		Model(&domain.RoutingRule{}).
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

// ReplaceFirstContacts swaps the entire first-contact set of a rule.
// The delete and reinsert run in one transaction: either the whole new set is
// applied or nothing is, which is the one multi-row atomicity requirement in
// this core.
func ReplaceFirstContacts(ctx context.Context, db *gorm.DB, ruleID uint, userIDs []uint) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&domain.RoutingRule{}).
			Where("id = ? AND active = ?", ruleID, true).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return gorm.ErrRecordNotFound
		}
		if err := tx.Where("routing_rule_id = ?", ruleID).
			Delete(&domain.RoutingFirstContact{}).Error; err != nil {
			return err
		}
		return insertFirstContacts(tx, ruleID, userIDs)
	})
}

// DeactivateRule flips the active flag off; the row is kept for audit.
func DeactivateRule(ctx context.Context, db *gorm.DB, id uint) error {
	res := db.WithContext(ctx).
		Model(&domain.RoutingRule{}).
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

// insertFirstContacts writes the ordered set rows. Caller deduplicates ids;
// the unique index backs that up at the schema level.
func insertFirstContacts(tx *gorm.DB, ruleID uint, userIDs []uint) error {
	for i, uid := range userIDs {
		fc := &domain.RoutingFirstContact{
			RoutingRuleID: ruleID,
			UserID:        uid,
			Position:      i,
		}
		if err := tx.Create(fc).Error; err != nil {
			return err
		}
	}
	return nil
}
