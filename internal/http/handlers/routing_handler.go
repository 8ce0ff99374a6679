// Routing matrix HTTP handlers.
//
// This is the configuration surface of the routing matrix:
//   - GET    /routing-rules          (list active rules)
//   - GET    /routing-rules/resolve  (dry-run resolution for a triple)
//   - POST   /routing-rules          (create, validated against the claims area)
//   - GET    /routing-rules/{id}
//   - PUT    /routing-rules/{id}     (update; first-contact set replaced atomically)
//   - DELETE /routing-rules/{id}     (soft deactivation)
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/claimsdesk/go-claims-backend/internal/domain"
	"github.com/claimsdesk/go-claims-backend/internal/services"
	"github.com/claimsdesk/go-claims-backend/internal/utils"
)

// RoutingService defines the routing matrix operations consumed by HTTP
// handlers.
type RoutingService interface {
	// Resolve returns the matching active rule or nil when routing is
	// undetermined.
	Resolve(ctx context.Context, classificationID, classID, causeID *uint) (*domain.RoutingRule, error)
	// Get returns one active rule.
	Get(ctx context.Context, id uint) (*domain.RoutingRule, error)
	// List returns all active rules.
	List(ctx context.Context) ([]domain.RoutingRule, error)
	// Create validates and persists a rule with its first-contact set.
	Create(ctx context.Context, in services.RuleInput) (*domain.RoutingRule, error)
	// Update validates and applies a rule update.
	Update(ctx context.Context, id uint, in services.RuleInput) (*domain.RoutingRule, error)
	// Deactivate retires a rule from resolution.
	Deactivate(ctx context.Context, id uint) error
}

// RoutingHandlers groups the routing matrix endpoints.
type RoutingHandlers struct {
	svc RoutingService
}

// NewRoutingHandlers constructs the routing endpoint group.
func NewRoutingHandlers(svc RoutingService) *RoutingHandlers {
	return &RoutingHandlers{svc: svc}
}

// ResolveResponse is the dry-run resolution result.
type ResolveResponse struct {
	// Matched reports whether any active rule satisfied the filters.
	Matched bool `json:"matched"`
	// Rule is the winning rule, absent when unmatched.
	Rule *domain.RoutingRule `json:"rule,omitempty"`
	// PrimaryFirstContact is the auto-assignment candidate, absent when the
	// first-contact set is empty.
	PrimaryFirstContact *uint `json:"primary_first_contact,omitempty"`
}

// ListRules godoc
// @ID          listRoutingRules
// @Summary     List routing rules
// @Tags        Routing
// @Produce     json
// @Success     200  {array}  domain.RoutingRule
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /routing-rules [get]
func (h *RoutingHandlers) ListRules(c *gin.Context) {
	rules, err := h.svc.List(c.Request.Context())
	if err != nil {
		failFromService(c, err)
		return
	}
	ok(c, http.StatusOK, rules)
}

// ResolveRule godoc
// @ID          resolveRoutingRule
// @Summary     Resolve a classification triple
// @Description Dry-run of the routing resolution the workflow engine performs. Absent query dimensions act as wildcards.
// @Tags        Routing
// @Produce     json
// @Param       classification_id  query  int  false "Classification id"
// @Param       class_id           query  int  false "Class id"
// @Param       cause_id           query  int  false "Cause id"
// @Success     200  {object} handlers.ResolveResponse
// @Router      /routing-rules/resolve [get]
func (h *RoutingHandlers) ResolveRule(c *gin.Context) {
	rule, err := h.svc.Resolve(c.Request.Context(),
		queryUintPtr(c, "classification_id"),
		queryUintPtr(c, "class_id"),
		queryUintPtr(c, "cause_id"),
	)
	if err != nil {
		failFromService(c, err)
		return
	}
	resp := ResolveResponse{Matched: rule != nil, Rule: rule}
	if rule != nil {
		if primary, found := rule.PrimaryFirstContact(); found {
			resp.PrimaryFirstContact = &primary
		}
	}
	ok(c, http.StatusOK, resp)
}

// GetRule godoc
// @ID          getRoutingRule
// @Summary     Fetch one routing rule
// @Tags        Routing
// @Produce     json
// @Param       id  path  int  true  "Rule id"
// @Success     200  {object} domain.RoutingRule
// @Failure     404  {object} handlers.ErrorResponse "Not found"
// @Router      /routing-rules/{id} [get]
func (h *RoutingHandlers) GetRule(c *gin.Context) {
	id, okID := pathID(c)
	if !okID {
		return
	}
	rule, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		failFromService(c, err)
		return
	}
	ok(c, http.StatusOK, rule)
}

// CreateRule godoc
// @ID          createRoutingRule
// @Summary     Create a routing rule
// @Description The classification triple and treatment owner are mandatory; all referenced staff must belong to the claims area. first_contact_ids accepts a single id or a list.
// @Tags        Routing
// @Accept      json
// @Produce     json
// @Param       body  body  services.RuleInput  true  "Rule payload"
// @Success     201  {object} domain.RoutingRule
// @Failure     422  {object} handlers.ErrorResponse "Validation failed"
// @Router      /routing-rules [post]
func (h *RoutingHandlers) CreateRule(c *gin.Context) {
	var in services.RuleInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	rule, err := h.svc.Create(c.Request.Context(), in)
	if err != nil {
		failFromService(c, err)
		return
	}
	ok(c, http.StatusCreated, rule)
}

// UpdateRule godoc
// @ID          updateRoutingRule
// @Summary     Update a routing rule
// @Description Replaces the rule configuration. The first-contact set swap is atomic: either the whole new set applies or nothing does.
// @Tags        Routing
// @Accept      json
// @Produce     json
// @Param       id    path  int                 true  "Rule id"
// @Param       body  body  services.RuleInput  true  "Rule payload"
// @Success     200  {object} domain.RoutingRule
// @Failure     404  {object} handlers.ErrorResponse "Not found"
// @Failure     422  {object} handlers.ErrorResponse "Validation failed"
// @Router      /routing-rules/{id} [put]
func (h *RoutingHandlers) UpdateRule(c *gin.Context) {
	id, okID := pathID(c)
	if !okID {
		return
	}
	var in services.RuleInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	rule, err := h.svc.Update(c.Request.Context(), id, in)
	if err != nil {
		failFromService(c, err)
		return
	}
	ok(c, http.StatusOK, rule)
}

// DeleteRule godoc
// @ID          deleteRoutingRule
// @Summary     Deactivate a routing rule
// @Tags        Routing
// @Param       id  path  int  true  "Rule id"
// @Success     204  {string} string "No Content"
// @Failure     404  {object} handlers.ErrorResponse "Not found"
// @Router      /routing-rules/{id} [delete]
func (h *RoutingHandlers) DeleteRule(c *gin.Context) {
	id, okID := pathID(c)
	if !okID {
		return
	}
	if err := h.svc.Deactivate(c.Request.Context(), id); err != nil {
		failFromService(c, err)
		return
	}
	noContent(c)
}

// queryUintPtr parses an optional numeric query parameter into a pointer,
// nil when absent so the resolver treats it as a wildcard.
func queryUintPtr(c *gin.Context, key string) *uint {
	if c.Query(key) == "" {
		return nil
	}
	v := uint(utils.AtoiDefault(c.Query(key), 0))
	return &v
}
