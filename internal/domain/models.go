// Package domain defines the persistence models for claims, routing rules,
// audit entries, and the catalog entities that support them. These types are
// mapped with GORM and form the core data layer of the claims backend.
package domain

import "time"

// Claim lifecycle states. The workflow moves strictly forward along
// Created → FirstContact → Treatment → PendingReview → ApprovedClosed,
// with a single backward edge PendingReview → Treatment on rejection.
const (
	StateCreated        uint = 1
	StateFirstContact   uint = 2
	StateTreatment      uint = 3
	StatePendingReview  uint = 4
	StateApprovedClosed uint = 5
)

// StateName maps a state id to its display label. Unknown ids map to "unknown".
func StateName(id uint) string {
	switch id {
	case StateCreated:
		return "created"
	case StateFirstContact:
		return "first contact"
	case StateTreatment:
		return "treatment"
	case StatePendingReview:
		return "pending review"
	case StateApprovedClosed:
		return "approved closed"
	default:
		return "unknown"
	}
}

// Claim is a single customer complaint tracked through the resolution
// workflow. Claims are created by intake, mutated exclusively through the
// ClaimService transition operations, and never hard-deleted: removal flips
// the Active flag.
//
// Fields:
//   - ProductID: the product the complaint is about; mandatory at intake.
//   - ClassificationID / ClassID / CauseID: the taxonomy path used for
//     routing; each may stay null until the claim is classified.
//   - StateID: lifecycle state (see State* constants).
//   - ResponsiblePersonID / ResponsibleProcessID: current ownership.
//   - TheoreticalDeadline: date by which the claim should close to comply
//     with the routed SLA; derived at intake from the routing rule.
//   - ClosedAt / DaysDifference / IsCompliant: either all null or all set
//     together; derived when a closing date arrives.
//   - BusinessDaysDelay: operator-entered delay in business days; never
//     computed by the engine.
type Claim struct {
	ID uint `json:"id" gorm:"primaryKey"`

	ProductID        uint   `json:"product_id" gorm:"not null;index"`
	CustomerName     string `json:"customer_name" gorm:"type:varchar(255)"`
	CustomerEmail    string `json:"customer_email" gorm:"type:varchar(255)"`
	Description      string `json:"description" gorm:"type:text"`

	ClassificationID *uint `json:"classification_id" gorm:"index"`
	ClassID          *uint `json:"class_id"`
	CauseID          *uint `json:"cause_id"`

	StateID              uint  `json:"state_id" gorm:"not null;default:1;index"`
	ResponsiblePersonID  *uint `json:"responsible_person_id" gorm:"index"`
	ResponsibleProcessID *uint `json:"responsible_process_id"`

	TheoreticalDeadline *time.Time `json:"theoretical_deadline"`
	ClosedAt            *time.Time `json:"closed_at"`
	DaysDifference      *int       `json:"days_difference"`
	IsCompliant         *bool      `json:"is_compliant"`
	BusinessDaysDelay   *int       `json:"business_days_delay"`

	FirstContactNotes string `json:"first_contact_notes" gorm:"type:text"`
	TreatmentProgress string `json:"treatment_progress" gorm:"type:text"`
	FinalSolution     string `json:"final_solution" gorm:"type:text"`
	ClosingNotes      string `json:"closing_notes" gorm:"type:text"`

	Active    bool      `json:"active" gorm:"not null;default:true;index"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for Claim.
func (Claim) TableName() string { return "claims" }

// Closed reports whether the claim carries a closing date.
func (c *Claim) Closed() bool { return c.ClosedAt != nil }

// RoutingRule maps a classification triple to the staff responsible for a
// claim and its SLA parameters. Rules are configuration: written by the
// routing admin surface, read-only from the workflow engine's perspective.
//
// The first-contact set is an ordered associative relation; replacing it is
// an all-or-nothing operation (see repo.ReplaceFirstContacts). Among
// overlapping active rules the resolver picks the lowest rule id; this
// tie-break is a documented policy, not a storage accident.
type RoutingRule struct {
	ID uint `json:"id" gorm:"primaryKey"`

	ClassificationID uint `json:"classification_id" gorm:"not null;index:idx_rule_triple,priority:1"`
	ClassID          uint `json:"class_id" gorm:"not null;index:idx_rule_triple,priority:2"`
	CauseID          uint `json:"cause_id" gorm:"not null;index:idx_rule_triple,priority:3"`

	TreatmentOwnerID     uint   `json:"treatment_owner_id" gorm:"not null"`
	InitialAttentionDays int    `json:"initial_attention_days" gorm:"not null;default:0"`
	ResponseTimeDays     int    `json:"response_time_days" gorm:"not null;default:0"`
	ResponseType         string `json:"response_type" gorm:"type:varchar(64)"`

	Active    bool      `json:"active" gorm:"not null;default:true;index"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// FirstContacts is the ordered first-contact set for this rule.
	FirstContacts []RoutingFirstContact `json:"first_contacts" gorm:"foreignKey:RoutingRuleID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for RoutingRule.
func (RoutingRule) TableName() string { return "routing_rules" }

// FirstContactIDs returns the de-duplicated, position-ordered user ids of the
// rule's first-contact set.
func (r *RoutingRule) FirstContactIDs() []uint {
	out := make([]uint, 0, len(r.FirstContacts))
	seen := make(map[uint]struct{}, len(r.FirstContacts))
	for _, fc := range r.FirstContacts {
		if _, dup := seen[fc.UserID]; dup {
			continue
		}
		seen[fc.UserID] = struct{}{}
		out = append(out, fc.UserID)
	}
	return out
}

// PrimaryFirstContact returns the first element of the first-contact set,
// used by code paths that need a single assignee (auto-assignment at intake).
// ok is false when the set is empty.
func (r *RoutingRule) PrimaryFirstContact() (id uint, ok bool) {
	ids := r.FirstContactIDs()
	if len(ids) == 0 {
		return 0, false
	}
	return ids[0], true
}

// RoutingFirstContact is one row of the associative first-contact relation.
// Position preserves the configured ordering.
type RoutingFirstContact struct {
	ID            uint `json:"-" gorm:"primaryKey"`
	RoutingRuleID uint `json:"-" gorm:"not null;uniqueIndex:ux_rule_user,priority:1;index"`
	UserID        uint `json:"user_id" gorm:"not null;uniqueIndex:ux_rule_user,priority:2"`
	Position      int  `json:"position" gorm:"not null;default:0"`
}

// TableName returns the database table name for RoutingFirstContact.
func (RoutingFirstContact) TableName() string { return "routing_first_contacts" }

// Audit action tags recorded per workflow transition.
const (
	AuditActionCreated      = "created"
	AuditActionFirstContact = "first_contact"
	AuditActionTreatment    = "treatment"
	AuditActionApproval     = "approval"
	AuditActionRejection    = "rejection"
)

// AuditEntry is one append-only action-log row for a claim. Entries are never
// updated or deleted; ActorID is null for system-originated actions.
type AuditEntry struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	ClaimID   uint      `json:"claim_id" gorm:"not null;index:idx_audit_claim,priority:1"`
	ActorID   *uint     `json:"actor_id"`
	Action    string    `json:"action" gorm:"type:varchar(32);not null"`
	Note      string    `json:"note" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at" gorm:"index:idx_audit_claim,priority:2"`
}

// TableName returns the database table name for AuditEntry.
func (AuditEntry) TableName() string { return "audit_entries" }
