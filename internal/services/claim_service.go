// Package services - ClaimService
//
// This file implements ClaimService, the claim workflow state machine. It
// owns the lifecycle rules: which partial updates advance a claim, how
// routing hands responsibility between first-contact staff and the treatment
// owner, and when the service-level compliance fields are derived.
//
// Ordering guarantee: within one transition the claim write commits before
// audit append and notification dispatch are attempted. A crash between the
// state write and the side effects can lose at most an audit entry or a
// notification, never the claim state itself. Side-effect failures are
// logged and swallowed; they never fail a committed transition.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/claimsdesk/go-claims-backend/internal/domain"
	"github.com/claimsdesk/go-claims-backend/internal/notify"
	"github.com/claimsdesk/go-claims-backend/internal/repo"
	"github.com/claimsdesk/go-claims-backend/internal/sla"
)

// ClaimService coordinates claim persistence, routing resolution, compliance
// derivation, and transition side effects.
type ClaimService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Routing resolves responsibility from the classification triple.
	Routing *RoutingService
	// Notifier dispatches best-effort transition notifications.
	Notifier notify.Notifier
}

// NewClaimService constructs a ClaimService. A nil notifier is replaced with
// the no-op dispatcher.
func NewClaimService(db *gorm.DB, routing *RoutingService, n notify.Notifier) *ClaimService {
	if n == nil {
		n = notify.Nop{}
	}
	return &ClaimService{DB: db, Routing: routing, Notifier: n}
}

// CreateInput is the intake payload for a new claim.
type CreateInput struct {
	ProductID            uint
	CustomerName         string
	CustomerEmail        string
	Description          string
	ClassificationID     *uint
	ClassID              *uint
	CauseID              *uint
	ResponsibleProcessID *uint
}

// FullUpdateInput is the replace-style payload. State is preserved unless
// StateID is explicitly supplied.
type FullUpdateInput struct {
	ProductID            uint
	CustomerName         string
	CustomerEmail        string
	Description          string
	ClassificationID     *uint
	ClassID              *uint
	CauseID              *uint
	ResponsibleProcessID *uint
	ResponsiblePersonID  *uint
	StateID              *uint
	TheoreticalDeadline  *time.Time
	ClosedAt             *time.Time
	BusinessDaysDelay    *int
	FirstContactNotes    string
	TreatmentProgress    string
	FinalSolution        string
	ClosingNotes         string
}

// sideEffect is one audit/notification pair queued during a transition and
// fired only after the claim write commits.
type sideEffect struct {
	action     string
	note       string
	eventTag   string
	recipients []uint
}

// Create performs claim intake. A product reference is mandatory; the
// classification triple is optional but unlocks auto-routing: when a matrix
// entry matches, the primary first contact is assigned, the claim enters the
// first-contact state, and the theoretical deadline is derived from the
// rule's response time. Unresolved routing leaves responsibility null and
// the claim in the created state; it is never an error.
func (s *ClaimService) Create(ctx context.Context, actorID *uint, in CreateInput) (*domain.Claim, error) {
	tr := otel.Tracer("services/ClaimService")
	ctx, span := tr.Start(ctx, "Create", trace.WithAttributes(
		attribute.Int("claim.product_id", int(in.ProductID)),
	))
	defer span.End()

	if in.ProductID == 0 {
		return nil, ErrProductRequired
	}

	now := time.Now().UTC()
	c := &domain.Claim{
		ProductID:            in.ProductID,
		CustomerName:         in.CustomerName,
		CustomerEmail:        in.CustomerEmail,
		Description:          in.Description,
		ClassificationID:     in.ClassificationID,
		ClassID:              in.ClassID,
		CauseID:              in.CauseID,
		ResponsibleProcessID: in.ResponsibleProcessID,
		StateID:              domain.StateCreated,
		CreatedAt:            now,
	}

	var recipients []uint
	if in.ClassificationID != nil || in.ClassID != nil || in.CauseID != nil {
		rule, err := s.Routing.Resolve(ctx, in.ClassificationID, in.ClassID, in.CauseID)
		if err != nil {
			return nil, err
		}
		if rule != nil {
			if primary, ok := rule.PrimaryFirstContact(); ok {
				c.ResponsiblePersonID = &primary
				c.StateID = domain.StateFirstContact
			}
			if rule.ResponseTimeDays > 0 {
				d := sla.Deadline(now, rule.ResponseTimeDays)
				c.TheoreticalDeadline = &d
			}
			recipients = rule.FirstContactIDs()
		}
	}

	if err := repo.CreateClaim(ctx, s.DB, c); err != nil {
		return nil, err
	}

	s.recordAudit(ctx, c.ID, actorID, domain.AuditActionCreated, "claim registered")
	s.dispatch(ctx, notify.EventClaimCreated, c, recipients, nil)
	return c, nil
}

// Get returns one active claim.
func (s *ClaimService) Get(ctx context.Context, id uint) (*domain.Claim, error) {
	c, err := repo.GetClaim(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClaimNotFound
		}
		return nil, err
	}
	return c, nil
}

// ListPage returns a page of active claims matching the filter and the total
// count. Defaults are applied for invalid page/pageSize.
func (s *ClaimService) ListPage(ctx context.Context, f repo.ClaimFilter, page, pageSize int) ([]domain.Claim, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	total, err := repo.CountClaims(ctx, s.DB, f)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Claim{}, 0, nil
	}
	items, err := repo.ListClaimsPage(ctx, s.DB, f, offset, pageSize)
	return items, total, err
}

// AuditTrail returns the chronological audit log of a claim.
func (s *ClaimService) AuditTrail(ctx context.Context, id uint) ([]domain.AuditEntry, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	return repo.ListAudit(ctx, s.DB, id)
}

// Update applies a partial update expressed as commands and performs the
// implicit transitions they trigger:
//
//   - first-contact notes while in FirstContact advance the claim to
//     Treatment; routing is re-resolved and responsibility hands over to the
//     treatment owner (the overwrite is intentional hand-off semantics);
//   - a final solution while in Treatment advances the claim to
//     PendingReview, leaving responsibility unchanged;
//   - a closing date populates the derived compliance fields against the
//     theoretical deadline in whatever state the claim is in; an explicit
//     null clears closing date and compliance fields together.
//
// Commands are applied in order against the evolving state, so one payload
// carrying both stage fields advances both transitions. The whole field set
// is persisted in a single write; audit entries and notifications fire after
// it commits.
func (s *ClaimService) Update(ctx context.Context, id uint, actorID *uint, cmds []Command) (*domain.Claim, error) {
	tr := otel.Tracer("services/ClaimService")
	ctx, span := tr.Start(ctx, "Update", trace.WithAttributes(
		attribute.Int("claim.id", int(id)),
		attribute.Int("commands", len(cmds)),
	))
	defer span.End()

	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	fields := make(map[string]any)
	var effects []sideEffect

	for _, cmd := range cmds {
		switch v := cmd.(type) {
		case SetFirstContactNotes:
			fields["first_contact_notes"] = v.Notes
			c.FirstContactNotes = v.Notes
			if c.StateID == domain.StateFirstContact {
				c.StateID = domain.StateTreatment
				fields["state_id"] = c.StateID
				rule, rerr := s.Routing.Resolve(ctx, c.ClassificationID, c.ClassID, c.CauseID)
				if rerr != nil {
					return nil, rerr
				}
				if rule != nil {
					owner := rule.TreatmentOwnerID
					c.ResponsiblePersonID = &owner
					fields["responsible_person_id"] = owner
				}
				effects = append(effects, sideEffect{
					action:     domain.AuditActionFirstContact,
					note:       "first contact completed",
					eventTag:   notify.EventFirstContactComplete,
					recipients: responsibleOf(c),
				})
			}

		case SetTreatmentProgress:
			fields["treatment_progress"] = v.Text
			c.TreatmentProgress = v.Text

		case SetFinalSolution:
			fields["final_solution"] = v.Solution
			c.FinalSolution = v.Solution
			if c.StateID == domain.StateTreatment {
				c.StateID = domain.StatePendingReview
				fields["state_id"] = c.StateID
				effects = append(effects, sideEffect{
					action:     domain.AuditActionTreatment,
					note:       "solution submitted for review",
					eventTag:   notify.EventSolutionSubmitted,
					recipients: responsibleOf(c),
				})
			}

		case SetClosingNotes:
			fields["closing_notes"] = v.Notes
			c.ClosingNotes = v.Notes

		case SetClosingDate:
			applyClosingDate(c, fields, v.Date)

		case SetBusinessDaysDelay:
			fields["business_days_delay"] = v.Days
			c.BusinessDaysDelay = v.Days

		case SetFields:
			applyFieldPatch(c, fields, v)
		}
	}

	if err := repo.UpdateClaimFields(ctx, s.DB, id, fields); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClaimNotFound
		}
		return nil, err
	}

	for _, e := range effects {
		s.recordAudit(ctx, id, actorID, e.action, e.note)
		s.dispatch(ctx, e.eventTag, c, e.recipients, nil)
	}
	return s.Get(ctx, id)
}

// UpdateFull replaces the claim's editable fields wholesale. No implicit
// transition fires: the state is preserved unless the payload explicitly
// carries a state id. Compliance fields are recomputed from the submitted
// closing date so a corrected date never keeps stale derived values.
func (s *ClaimService) UpdateFull(ctx context.Context, id uint, in FullUpdateInput) (*domain.Claim, error) {
	tr := otel.Tracer("services/ClaimService")
	ctx, span := tr.Start(ctx, "UpdateFull", trace.WithAttributes(
		attribute.Int("claim.id", int(id)),
	))
	defer span.End()

	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.ProductID == 0 {
		return nil, ErrProductRequired
	}

	c.ProductID = in.ProductID
	c.CustomerName = in.CustomerName
	c.CustomerEmail = in.CustomerEmail
	c.Description = in.Description
	c.ClassificationID = in.ClassificationID
	c.ClassID = in.ClassID
	c.CauseID = in.CauseID
	c.ResponsibleProcessID = in.ResponsibleProcessID
	c.ResponsiblePersonID = in.ResponsiblePersonID
	c.TheoreticalDeadline = in.TheoreticalDeadline
	c.BusinessDaysDelay = in.BusinessDaysDelay
	c.FirstContactNotes = in.FirstContactNotes
	c.TreatmentProgress = in.TreatmentProgress
	c.FinalSolution = in.FinalSolution
	c.ClosingNotes = in.ClosingNotes
	if in.StateID != nil {
		c.StateID = *in.StateID
	}

	c.ClosedAt = in.ClosedAt
	c.DaysDifference = nil
	c.IsCompliant = nil
	if c.ClosedAt != nil && c.TheoreticalDeadline != nil {
		dd := sla.DaysBetween(*c.ClosedAt, *c.TheoreticalDeadline)
		comp := sla.IsCompliant(*c.ClosedAt, *c.TheoreticalDeadline)
		c.DaysDifference = &dd
		c.IsCompliant = &comp
	}

	if err := repo.SaveClaim(ctx, s.DB, c); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Approve closes a claim under review. The claim must currently be pending
// review; anything else is a precondition failure reported to the caller,
// never silently corrected. A missing closing date is set to now, and the
// compliance fields are recomputed.
func (s *ClaimService) Approve(ctx context.Context, id uint, actorID *uint) (*domain.Claim, error) {
	tr := otel.Tracer("services/ClaimService")
	ctx, span := tr.Start(ctx, "Approve", trace.WithAttributes(
		attribute.Int("claim.id", int(id)),
	))
	defer span.End()

	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.StateID != domain.StatePendingReview {
		return nil, ErrInvalidState
	}

	closed := time.Now().UTC()
	if c.Closed() {
		closed = *c.ClosedAt
	}

	fields := map[string]any{"state_id": domain.StateApprovedClosed}
	c.StateID = domain.StateApprovedClosed
	applyClosingDate(c, fields, &closed)

	if err := repo.UpdateClaimFields(ctx, s.DB, id, fields); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClaimNotFound
		}
		return nil, err
	}

	s.recordAudit(ctx, id, actorID, domain.AuditActionApproval, "solution approved, claim closed")
	s.dispatch(ctx, notify.EventClaimApproved, c, responsibleOf(c), nil)
	return s.Get(ctx, id)
}

// Reject sends a claim under review back to treatment. The reason is
// mandatory (whitespace-only counts as empty) and is merged into the closing
// notes without touching unrelated fields. The rejection notification goes to
// the treatment owner resolved from the routing matrix. A claim outside
// pending review is a precondition failure and its stored state is left
// untouched.
func (s *ClaimService) Reject(ctx context.Context, id uint, actorID *uint, reason string) (*domain.Claim, error) {
	tr := otel.Tracer("services/ClaimService")
	ctx, span := tr.Start(ctx, "Reject", trace.WithAttributes(
		attribute.Int("claim.id", int(id)),
	))
	defer span.End()

	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, ErrEmptyReason
	}

	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.StateID != domain.StatePendingReview {
		return nil, ErrInvalidState
	}

	notes := reason
	if c.ClosingNotes != "" {
		notes = c.ClosingNotes + "\n" + reason
	}

	fields := map[string]any{
		"state_id":      domain.StateTreatment,
		"closing_notes": notes,
	}
	c.StateID = domain.StateTreatment
	c.ClosingNotes = notes

	if err := repo.UpdateClaimFields(ctx, s.DB, id, fields); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClaimNotFound
		}
		return nil, err
	}

	s.recordAudit(ctx, id, actorID, domain.AuditActionRejection, reason)

	recipients := responsibleOf(c)
	if rule, rerr := s.Routing.Resolve(ctx, c.ClassificationID, c.ClassID, c.CauseID); rerr == nil && rule != nil {
		recipients = []uint{rule.TreatmentOwnerID}
	}
	s.dispatch(ctx, notify.EventClaimRejected, c, recipients, map[string]any{"reason": reason})

	return s.Get(ctx, id)
}

// Deactivate soft-removes a claim. The row is retained for audit and
// reporting; it disappears from every read path.
func (s *ClaimService) Deactivate(ctx context.Context, id uint) error {
	if err := repo.DeactivateClaim(ctx, s.DB, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrClaimNotFound
		}
		return err
	}
	return nil
}

// applyClosingDate writes the closing date and the derived compliance fields
// into both the in-memory claim and the column map. The three fields move
// together: an explicit nil clears all of them, and recomputation from an
// edited date replaces any stale values. Without a theoretical deadline the
// derived pair stays null; the engine never invents a deadline.
func applyClosingDate(c *domain.Claim, fields map[string]any, date *time.Time) {
	if date == nil {
		fields["closed_at"] = nil
		fields["days_difference"] = nil
		fields["is_compliant"] = nil
		c.ClosedAt, c.DaysDifference, c.IsCompliant = nil, nil, nil
		return
	}
	d := *date
	fields["closed_at"] = d
	c.ClosedAt = &d
	if c.TheoreticalDeadline == nil {
		fields["days_difference"] = nil
		fields["is_compliant"] = nil
		c.DaysDifference, c.IsCompliant = nil, nil
		return
	}
	dd := sla.DaysBetween(d, *c.TheoreticalDeadline)
	comp := sla.IsCompliant(d, *c.TheoreticalDeadline)
	fields["days_difference"] = dd
	fields["is_compliant"] = comp
	c.DaysDifference = &dd
	c.IsCompliant = &comp
}

// applyFieldPatch merges the non-triggering attribute patch.
func applyFieldPatch(c *domain.Claim, fields map[string]any, p SetFields) {
	if p.ProductID != nil {
		fields["product_id"] = *p.ProductID
		c.ProductID = *p.ProductID
	}
	if p.CustomerName != nil {
		fields["customer_name"] = *p.CustomerName
		c.CustomerName = *p.CustomerName
	}
	if p.CustomerEmail != nil {
		fields["customer_email"] = *p.CustomerEmail
		c.CustomerEmail = *p.CustomerEmail
	}
	if p.Description != nil {
		fields["description"] = *p.Description
		c.Description = *p.Description
	}
	if p.ClassificationID != nil {
		fields["classification_id"] = *p.ClassificationID
		c.ClassificationID = p.ClassificationID
	}
	if p.ClassID != nil {
		fields["class_id"] = *p.ClassID
		c.ClassID = p.ClassID
	}
	if p.CauseID != nil {
		fields["cause_id"] = *p.CauseID
		c.CauseID = p.CauseID
	}
	if p.ResponsibleProcessID != nil {
		fields["responsible_process_id"] = *p.ResponsibleProcessID
		c.ResponsibleProcessID = p.ResponsibleProcessID
	}
}

// responsibleOf returns the current responsible person as a recipient list,
// empty when unassigned.
func responsibleOf(c *domain.Claim) []uint {
	if c.ResponsiblePersonID == nil {
		return nil
	}
	return []uint{*c.ResponsiblePersonID}
}

// recordAudit appends an action-log entry. Failures are logged and swallowed:
// the transition has already committed and must not be reported as failed.
func (s *ClaimService) recordAudit(ctx context.Context, claimID uint, actorID *uint, action, note string) {
	if _, err := repo.AppendAudit(ctx, s.DB, claimID, actorID, action, note); err != nil {
		log.Warn().Err(err).
			Uint("claim_id", claimID).
			Str("action", action).
			Msg("audit append failed")
	}
}

// dispatch resolves recipient users and fires the notification. Stale ids
// (users who moved areas or were deactivated after the matrix was written)
// are tolerated: they simply drop out of the recipient list.
func (s *ClaimService) dispatch(ctx context.Context, tag string, c *domain.Claim, userIDs []uint, data map[string]any) {
	var recipients []notify.Recipient
	if len(userIDs) > 0 {
		users, err := repo.GetUsersByIDs(ctx, s.DB, userIDs)
		if err != nil {
			log.Warn().Err(err).Str("event", tag).Msg("recipient lookup failed")
		} else {
			recipients = notify.RecipientsFromUsers(users)
		}
	}
	if data == nil {
		data = map[string]any{}
	}
	data["state"] = domain.StateName(c.StateID)
	data["product_id"] = c.ProductID

	s.Notifier.Notify(ctx, notify.Event{
		Tag:        tag,
		Title:      fmt.Sprintf("%s - claim #%d", notify.DisplayTitle(tag), c.ID),
		ClaimID:    c.ID,
		Recipients: recipients,
		Data:       data,
		OccurredAt: time.Now().UTC(),
	})
}
