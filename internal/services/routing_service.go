// Package services - RoutingService
//
// This file implements the RoutingService, which owns the routing matrix:
// the configuration mapping a classification triple to the staff responsible
// for a claim and its SLA parameters. The resolver side is consumed by the
// claim state machine; the write side is the admin configuration surface.
//
// Resolution is stateless and side-effect free: matrix entries change far
// less often than claims, so callers may treat results as read-mostly
// cacheable data, but no cache is maintained here.
package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/claimsdesk/go-claims-backend/internal/domain"
	"github.com/claimsdesk/go-claims-backend/internal/repo"
)

// RoutingService resolves routing rules and manages their configuration.
type RoutingService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// ClaimsAreaID designates the organizational unit whose members may be
	// referenced as responsible parties. Zero disables the membership check.
	ClaimsAreaID uint
}

// RuleInput is the payload for creating or updating a routing rule. The
// first-contact list arrives through domain.IDList, so a single id or an
// array on the wire both normalize to an ordered de-duplicated list.
type RuleInput struct {
	ClassificationID     uint          `json:"classification_id"`
	ClassID              uint          `json:"class_id"`
	CauseID              uint          `json:"cause_id"`
	TreatmentOwnerID     uint          `json:"treatment_owner_id"`
	FirstContactIDs      domain.IDList `json:"first_contact_ids"`
	InitialAttentionDays int           `json:"initial_attention_days"`
	ResponseTimeDays     int           `json:"response_time_days"`
	ResponseType         string        `json:"response_type"`
}

// Resolve returns the active routing rule matching the classification triple,
// or (nil, nil) when routing is undetermined. Nil dimensions are wildcards:
// a present filter narrows, an absent one does not constrain. Among
// overlapping active rules the lowest rule id wins.
//
// Callers must treat a nil rule as "leave responsibility unassigned", never
// as a failure of their own operation.
func (s *RoutingService) Resolve(ctx context.Context, classificationID, classID, causeID *uint) (*domain.RoutingRule, error) {
	tr := otel.Tracer("services/RoutingService")
	ctx, span := tr.Start(ctx, "Resolve")
	defer span.End()

	rule, err := repo.FindActiveRule(ctx, s.DB, classificationID, classID, causeID)
	if err != nil {
		return nil, err
	}
	if rule != nil {
		span.SetAttributes(attribute.Int("routing.rule_id", int(rule.ID)))
	}
	return rule, nil
}

// Get returns one active rule by id.
func (s *RoutingService) Get(ctx context.Context, id uint) (*domain.RoutingRule, error) {
	rule, err := repo.GetRule(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRuleNotFound
		}
		return nil, err
	}
	return rule, nil
}

// List returns all active rules.
func (s *RoutingService) List(ctx context.Context) ([]domain.RoutingRule, error) {
	return repo.ListRules(ctx, s.DB)
}

// Create validates and persists a new routing rule with its first-contact
// set. The classification triple and treatment owner are mandatory, and every
// referenced responsible id must be an active member of the claims area.
func (s *RoutingService) Create(ctx context.Context, in RuleInput) (*domain.RoutingRule, error) {
	tr := otel.Tracer("services/RoutingService")
	ctx, span := tr.Start(ctx, "Create", trace.WithAttributes(
		attribute.Int("routing.classification_id", int(in.ClassificationID)),
	))
	defer span.End()

	if in.ClassificationID == 0 || in.ClassID == 0 || in.CauseID == 0 {
		return nil, ErrTripleRequired
	}
	if in.TreatmentOwnerID == 0 {
		return nil, ErrTreatmentOwnerRequired
	}
	if err := s.checkAreaMembership(ctx, in.TreatmentOwnerID, in.FirstContactIDs); err != nil {
		return nil, err
	}

	rule := &domain.RoutingRule{
		ClassificationID:     in.ClassificationID,
		ClassID:              in.ClassID,
		CauseID:              in.CauseID,
		TreatmentOwnerID:     in.TreatmentOwnerID,
		InitialAttentionDays: in.InitialAttentionDays,
		ResponseTimeDays:     in.ResponseTimeDays,
		ResponseType:         in.ResponseType,
	}
	if err := repo.CreateRule(ctx, s.DB, rule, in.FirstContactIDs); err != nil {
		return nil, err
	}
	return repo.GetRule(ctx, s.DB, rule.ID)
}

// Update validates and applies a rule update. The first-contact set, when
// supplied, is swapped transactionally: the whole replacement applies or
// nothing does.
func (s *RoutingService) Update(ctx context.Context, id uint, in RuleInput) (*domain.RoutingRule, error) {
	tr := otel.Tracer("services/RoutingService")
	ctx, span := tr.Start(ctx, "Update", trace.WithAttributes(
		attribute.Int("routing.rule_id", int(id)),
	))
	defer span.End()

	if in.ClassificationID == 0 || in.ClassID == 0 || in.CauseID == 0 {
		return nil, ErrTripleRequired
	}
	if in.TreatmentOwnerID == 0 {
		return nil, ErrTreatmentOwnerRequired
	}
	if err := s.checkAreaMembership(ctx, in.TreatmentOwnerID, in.FirstContactIDs); err != nil {
		return nil, err
	}

	fields := map[string]any{
		"classification_id":      in.ClassificationID,
		"class_id":               in.ClassID,
		"cause_id":               in.CauseID,
		"treatment_owner_id":     in.TreatmentOwnerID,
		"initial_attention_days": in.InitialAttentionDays,
		"response_time_days":     in.ResponseTimeDays,
		"response_type":          in.ResponseType,
	}
	if err := repo.UpdateRuleFields(ctx, s.DB, id, fields); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRuleNotFound
		}
		return nil, err
	}
	if err := repo.ReplaceFirstContacts(ctx, s.DB, id, in.FirstContactIDs); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRuleNotFound
		}
		return nil, err
	}
	return repo.GetRule(ctx, s.DB, id)
}

// Deactivate retires a rule from resolution without deleting it.
func (s *RoutingService) Deactivate(ctx context.Context, id uint) error {
	if err := repo.DeactivateRule(ctx, s.DB, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRuleNotFound
		}
		return err
	}
	return nil
}

// checkAreaMembership verifies that the treatment owner and every first
// contact is an active member of the claims area. The check applies to
// configuration writes only; resolution tolerates stale references for rules
// written before a member moved areas.
func (s *RoutingService) checkAreaMembership(ctx context.Context, ownerID uint, firstContacts []uint) error {
	ids := make([]uint, 0, len(firstContacts)+1)
	ids = append(ids, ownerID)
	ids = append(ids, firstContacts...)

	users, err := repo.GetUsersByIDs(ctx, s.DB, ids)
	if err != nil {
		return err
	}
	byID := make(map[uint]domain.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	for _, id := range ids {
		u, ok := byID[id]
		if !ok {
			return ErrOutsideClaimsArea
		}
		if s.ClaimsAreaID != 0 && u.AreaID != s.ClaimsAreaID {
			return ErrOutsideClaimsArea
		}
	}
	return nil
}
