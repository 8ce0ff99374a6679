// Claim HTTP handlers.
//
// This file exposes the REST surface of the claims workflow engine:
//   - POST   /claims              (intake, auto-routing)
//   - GET    /claims              (list, paginated + filtered, ETag support)
//   - GET    /claims/{id}         (fetch)
//   - PATCH  /claims/{id}         (partial update, implicit transitions)
//   - PUT    /claims/{id}         (full replace, state-preserving)
//   - POST   /claims/{id}/approve (explicit close)
//   - POST   /claims/{id}/reject  (explicit send-back with reason)
//   - DELETE /claims/{id}         (soft deactivation)
//   - GET    /claims/{id}/audit   (action log)
//
// Handlers are transport-thin: they validate input, translate JSON key
// presence into workflow commands, call the claim service, and map results
// into HTTP responses.
package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/claimsdesk/go-claims-backend/internal/domain"
	"github.com/claimsdesk/go-claims-backend/internal/http/middleware"
	"github.com/claimsdesk/go-claims-backend/internal/repo"
	"github.com/claimsdesk/go-claims-backend/internal/services"
	"github.com/claimsdesk/go-claims-backend/internal/utils"
)

//
// Service contracts (context-aware)
//

// ClaimService defines the workflow operations consumed by HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type ClaimService interface {
	// Create performs claim intake with optional auto-routing.
	Create(ctx context.Context, actorID *uint, in services.CreateInput) (*domain.Claim, error)
	// Get returns one active claim.
	Get(ctx context.Context, id uint) (*domain.Claim, error)
	// ListPage returns a page of active claims and the total count.
	ListPage(ctx context.Context, f repo.ClaimFilter, page, pageSize int) ([]domain.Claim, int64, error)
	// Update applies a partial update expressed as commands.
	Update(ctx context.Context, id uint, actorID *uint, cmds []services.Command) (*domain.Claim, error)
	// UpdateFull replaces the claim's editable fields without implicit transitions.
	UpdateFull(ctx context.Context, id uint, in services.FullUpdateInput) (*domain.Claim, error)
	// Approve closes a claim pending review.
	Approve(ctx context.Context, id uint, actorID *uint) (*domain.Claim, error)
	// Reject sends a claim pending review back to treatment.
	Reject(ctx context.Context, id uint, actorID *uint, reason string) (*domain.Claim, error)
	// Deactivate soft-removes a claim.
	Deactivate(ctx context.Context, id uint) error
	// AuditTrail returns the chronological action log.
	AuditTrail(ctx context.Context, id uint) ([]domain.AuditEntry, error)
}

// ClaimHandlers groups the claim workflow endpoints.
type ClaimHandlers struct {
	svc     ClaimService
	db      *gorm.DB
	idemTTL time.Duration
}

// NewClaimHandlers constructs the claim endpoint group. db backs the ETag
// statistics on the list endpoint and the idempotency records for approve and
// reject; idemTTL bounds how long a stored Idempotency-Key result can be
// replayed (<= 0 falls back to 24h).
func NewClaimHandlers(svc ClaimService, db *gorm.DB, idemTTL time.Duration) *ClaimHandlers {
	if idemTTL <= 0 {
		idemTTL = 24 * time.Hour
	}
	return &ClaimHandlers{svc: svc, db: db, idemTTL: idemTTL}
}

// actorID extracts the acting staff id from the X-User-ID header. A missing
// or non-numeric header means a system action (nil actor); the audit log
// allows that.
func actorID(c *gin.Context) *uint {
	if c == nil || c.Request == nil {
		return nil
	}
	h := strings.TrimSpace(c.GetHeader("X-User-ID"))
	if h == "" {
		return nil
	}
	n, err := strconv.ParseUint(h, 10, 32)
	if err != nil {
		return nil
	}
	id := uint(n)
	return &id
}

// idempotencyKey returns the key validated by the upstream middleware, or the
// raw header when no validator ran (direct handler mounting in tests).
func idempotencyKey(c *gin.Context) string {
	if k, okKey := middleware.GetIdempotencyKey(c); okKey {
		return k
	}
	return strings.TrimSpace(c.GetHeader(middleware.HeaderIdempotencyKey))
}

// idemActor formats the acting staff id the way idempotency records key it.
func idemActor(c *gin.Context) string {
	if id := actorID(c); id != nil {
		return strconv.FormatUint(uint64(*id), 10)
	}
	return "system"
}

// replayStored serves the recorded outcome of a previously completed mutation
// when the request repeats an Idempotency-Key already on record for this
// actor and claim. Reports whether the response has been written.
func (h *ClaimHandlers) replayStored(c *gin.Context, id uint, key string) bool {
	if key == "" || h.db == nil {
		return false
	}
	ctx := c.Request.Context()
	rec, err := repo.GetIdempotency(ctx, h.db, idemActor(c), strconv.FormatUint(uint64(id), 10), key, time.Now().UTC())
	if err != nil || rec == nil {
		return false
	}
	claim, err := h.svc.Get(ctx, id)
	if err != nil {
		return false
	}
	c.Header("Idempotency-Replayed", "true")
	ok(c, rec.Status, claim)
	return true
}

// recordIdempotency stores the outcome of a completed mutation, best effort.
func (h *ClaimHandlers) recordIdempotency(c *gin.Context, id uint, key string, status int) {
	if key == "" || h.db == nil {
		return
	}
	_, _ = repo.CreateIdempotency(c.Request.Context(), h.db, idemActor(c),
		strconv.FormatUint(uint64(id), 10), key, strconv.FormatUint(uint64(id), 10), status, h.idemTTL)
}

// pathID parses the numeric :id path parameter.
func pathID(c *gin.Context) (uint, bool) {
	n, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || n == 0 {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "id must be a positive integer")
		return 0, false
	}
	return uint(n), true
}

//
// DTOs
//

// CreateClaimRequest is the intake payload. A product reference is mandatory;
// the classification triple is optional but unlocks auto-routing.
type CreateClaimRequest struct {
	ProductID            uint   `json:"product_id" binding:"required" example:"3"`
	CustomerName         string `json:"customer_name" example:"Ada Lovelace"`
	CustomerEmail        string `json:"customer_email" example:"ada@example.com"`
	Description          string `json:"description" example:"Charged twice for the same invoice"`
	ClassificationID     *uint  `json:"classification_id" example:"5"`
	ClassID              *uint  `json:"class_id" example:"12"`
	CauseID              *uint  `json:"cause_id" example:"31"`
	ResponsibleProcessID *uint  `json:"responsible_process_id"`
}

// PatchClaimRequest is the partial update payload. Every field records
// whether its key was present, which is what drives the implicit workflow
// transitions.
type PatchClaimRequest struct {
	FirstContactNotes OptionalString `json:"first_contact_notes"`
	TreatmentProgress OptionalString `json:"treatment_progress"`
	FinalSolution     OptionalString `json:"final_solution"`
	ClosingNotes      OptionalString `json:"closing_notes"`
	ClosedAt          OptionalDate   `json:"closed_at"`
	BusinessDaysDelay OptionalInt    `json:"business_days_delay"`

	ProductID            *uint  `json:"product_id"`
	CustomerName         *string `json:"customer_name"`
	CustomerEmail        *string `json:"customer_email"`
	Description          *string `json:"description"`
	ClassificationID     *uint  `json:"classification_id"`
	ClassID              *uint  `json:"class_id"`
	CauseID              *uint  `json:"cause_id"`
	ResponsibleProcessID *uint  `json:"responsible_process_id"`
}

// commands translates key presence into the ordered command list. Attribute
// patches go first, then the stage fields in workflow order so a payload
// carrying both advances both transitions, then closing data.
func (r *PatchClaimRequest) commands() []services.Command {
	var cmds []services.Command

	if r.ProductID != nil || r.CustomerName != nil || r.CustomerEmail != nil ||
		r.Description != nil || r.ClassificationID != nil || r.ClassID != nil ||
		r.CauseID != nil || r.ResponsibleProcessID != nil {
		cmds = append(cmds, services.SetFields{
			ProductID:            r.ProductID,
			CustomerName:         r.CustomerName,
			CustomerEmail:        r.CustomerEmail,
			Description:          r.Description,
			ClassificationID:     r.ClassificationID,
			ClassID:              r.ClassID,
			CauseID:              r.CauseID,
			ResponsibleProcessID: r.ResponsibleProcessID,
		})
	}
	if r.FirstContactNotes.Set {
		cmds = append(cmds, services.SetFirstContactNotes{Notes: r.FirstContactNotes.Value})
	}
	if r.TreatmentProgress.Set {
		cmds = append(cmds, services.SetTreatmentProgress{Text: r.TreatmentProgress.Value})
	}
	if r.FinalSolution.Set {
		cmds = append(cmds, services.SetFinalSolution{Solution: r.FinalSolution.Value})
	}
	if r.ClosingNotes.Set {
		cmds = append(cmds, services.SetClosingNotes{Notes: r.ClosingNotes.Value})
	}
	if r.ClosedAt.Set {
		cmds = append(cmds, services.SetClosingDate{Date: r.ClosedAt.Value})
	}
	if r.BusinessDaysDelay.Set {
		cmds = append(cmds, services.SetBusinessDaysDelay{Days: r.BusinessDaysDelay.Value})
	}
	return cmds
}

// FullClaimRequest is the replace-style payload for PUT.
type FullClaimRequest struct {
	ProductID            uint    `json:"product_id" binding:"required"`
	CustomerName         string  `json:"customer_name"`
	CustomerEmail        string  `json:"customer_email"`
	Description          string  `json:"description"`
	ClassificationID     *uint   `json:"classification_id"`
	ClassID              *uint   `json:"class_id"`
	CauseID              *uint   `json:"cause_id"`
	ResponsibleProcessID *uint   `json:"responsible_process_id"`
	ResponsiblePersonID  *uint   `json:"responsible_person_id"`
	StateID              *uint   `json:"state_id"`
	TheoreticalDeadline  *string `json:"theoretical_deadline"`
	ClosedAt             *string `json:"closed_at"`
	BusinessDaysDelay    *int    `json:"business_days_delay"`
	FirstContactNotes    string  `json:"first_contact_notes"`
	TreatmentProgress    string  `json:"treatment_progress"`
	FinalSolution        string  `json:"final_solution"`
	ClosingNotes         string  `json:"closing_notes"`
}

// RejectClaimRequest carries the mandatory rejection reason.
type RejectClaimRequest struct {
	Reason string `json:"reason" example:"Solution does not address the root cause"`
}

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// ListClaimsResponse wraps a page of claims and pagination information.
type ListClaimsResponse struct {
	Claims     []domain.Claim `json:"claims"`
	Pagination Pagination     `json:"pagination"`
}

// clampPagination parses and bounds page and page_size query params.
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.ClampInt(utils.AtoiDefault(c.Query("page_size"), defaultPageSize), 1, maxPageSize)
	return
}

// queryUint parses an optional numeric query parameter, zero when absent.
func queryUint(c *gin.Context, key string) uint {
	return uint(utils.AtoiDefault(c.Query(key), 0))
}

//
// Handlers
//

// CreateClaim godoc
// @ID          createClaim
// @Summary     Register a new claim
// @Description Performs claim intake. When the classification triple matches an active routing rule, the primary first contact is assigned and the SLA deadline derived.
// @Tags        Claims
// @Accept      json
// @Produce     json
// @Param       X-User-ID  header  string  false "Acting staff id"
// @Param       body       body    handlers.CreateClaimRequest  true  "Intake payload"
// @Success     201  {object}  domain.Claim
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     422  {object}  handlers.ErrorResponse  "Validation failed"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /claims [post]
func (h *ClaimHandlers) CreateClaim(c *gin.Context) {
	var req CreateClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	claim, err := h.svc.Create(c.Request.Context(), actorID(c), services.CreateInput{
		ProductID:            req.ProductID,
		CustomerName:         strings.TrimSpace(req.CustomerName),
		CustomerEmail:        strings.TrimSpace(req.CustomerEmail),
		Description:          req.Description,
		ClassificationID:     req.ClassificationID,
		ClassID:              req.ClassID,
		CauseID:              req.CauseID,
		ResponsibleProcessID: req.ResponsibleProcessID,
	})
	if err != nil {
		failFromService(c, err)
		return
	}
	ok(c, http.StatusCreated, claim)
}

// ListClaims godoc
// @ID          listClaims
// @Summary     List claims (paginated)
// @Description Returns a page of active claims, filterable by state, responsible person, and classification. Supports weak ETag via If-None-Match.
// @Tags        Claims
// @Produce     json
// @Param       state_id               query  int  false "Filter by state"
// @Param       responsible_person_id  query  int  false "Filter by responsible person"
// @Param       classification_id      query  int  false "Filter by classification"
// @Param       page                   query  int  false "Page number"    minimum(1) default(1)
// @Param       page_size              query  int  false "Items per page" minimum(1) maximum(100) default(20)
// @Success     200  {object} handlers.ListClaimsResponse
// @Success     304  {string} string "Not Modified"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /claims [get]
func (h *ClaimHandlers) ListClaims(c *gin.Context) {
	ctx := c.Request.Context()
	page, pageSize := clampPagination(c)
	filter := repo.ClaimFilter{
		StateID:             queryUint(c, "state_id"),
		ResponsiblePersonID: queryUint(c, "responsible_person_id"),
		ClassificationID:    queryUint(c, "classification_id"),
	}

	// ETag pre-check (best effort).
	if h.db != nil {
		count, maxTS, err := repo.ClaimsStats(ctx, h.db, filter)
		if err == nil {
			var ts int64
			if maxTS != nil {
				ts = maxTS.Unix()
			}
			etag := fmt.Sprintf(`W/"claims:%d:%d:%d:%d:%d"`,
				filter.StateID, filter.ResponsiblePersonID, filter.ClassificationID, count, ts)
			c.Header("ETag", etag)
			if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
				c.Status(http.StatusNotModified)
				return
			}
		}
	}

	items, total, err := h.svc.ListPage(ctx, filter, page, pageSize)
	if err != nil {
		failFromService(c, err)
		return
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	ok(c, http.StatusOK, ListClaimsResponse{
		Claims: items,
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
		},
	})
}

// GetClaim godoc
// @ID          getClaim
// @Summary     Fetch one claim
// @Tags        Claims
// @Produce     json
// @Param       id  path  int  true  "Claim id"
// @Success     200  {object} domain.Claim
// @Failure     404  {object} handlers.ErrorResponse "Not found"
// @Router      /claims/{id} [get]
func (h *ClaimHandlers) GetClaim(c *gin.Context) {
	id, okID := pathID(c)
	if !okID {
		return
	}
	claim, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		failFromService(c, err)
		return
	}
	ok(c, http.StatusOK, claim)
}

// PatchClaim godoc
// @ID          patchClaim
// @Summary     Partially update a claim
// @Description Applies the supplied fields. Supplying first_contact_notes while in first contact advances the claim to treatment and hands it to the treatment owner; supplying final_solution while in treatment advances it to pending review; supplying closed_at derives the compliance fields.
// @Tags        Claims
// @Accept      json
// @Produce     json
// @Param       X-User-ID  header  string  false "Acting staff id"
// @Param       id         path    int     true  "Claim id"
// @Param       body       body    handlers.PatchClaimRequest  true  "Partial payload"
// @Success     200  {object} domain.Claim
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /claims/{id} [patch]
func (h *ClaimHandlers) PatchClaim(c *gin.Context) {
	id, okID := pathID(c)
	if !okID {
		return
	}
	var req PatchClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	claim, err := h.svc.Update(c.Request.Context(), id, actorID(c), req.commands())
	if err != nil {
		failFromService(c, err)
		return
	}
	ok(c, http.StatusOK, claim)
}

// PutClaim godoc
// @ID          putClaim
// @Summary     Replace a claim
// @Description Full replace-style update. No implicit transition fires; the lifecycle state is preserved unless state_id is explicitly included.
// @Tags        Claims
// @Accept      json
// @Produce     json
// @Param       id    path  int  true  "Claim id"
// @Param       body  body  handlers.FullClaimRequest  true  "Full payload"
// @Success     200  {object} domain.Claim
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Not found"
// @Router      /claims/{id} [put]
func (h *ClaimHandlers) PutClaim(c *gin.Context) {
	id, okID := pathID(c)
	if !okID {
		return
	}
	var req FullClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	deadline, err := optionalDate(req.TheoreticalDeadline)
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		return
	}
	closed, err := optionalDate(req.ClosedAt)
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		return
	}

	claim, err := h.svc.UpdateFull(c.Request.Context(), id, services.FullUpdateInput{
		ProductID:            req.ProductID,
		CustomerName:         req.CustomerName,
		CustomerEmail:        req.CustomerEmail,
		Description:          req.Description,
		ClassificationID:     req.ClassificationID,
		ClassID:              req.ClassID,
		CauseID:              req.CauseID,
		ResponsibleProcessID: req.ResponsibleProcessID,
		ResponsiblePersonID:  req.ResponsiblePersonID,
		StateID:              req.StateID,
		TheoreticalDeadline:  deadline,
		ClosedAt:             closed,
		BusinessDaysDelay:    req.BusinessDaysDelay,
		FirstContactNotes:    req.FirstContactNotes,
		TreatmentProgress:    req.TreatmentProgress,
		FinalSolution:        req.FinalSolution,
		ClosingNotes:         req.ClosingNotes,
	})
	if err != nil {
		failFromService(c, err)
		return
	}
	ok(c, http.StatusOK, claim)
}

// ApproveClaim godoc
// @ID          approveClaim
// @Summary     Approve a claim pending review
// @Description Closes the claim. Fails with precondition_failed when the claim is not pending review. Supports idempotency via the Idempotency-Key header (a repeated key replays the recorded outcome).
// @Tags        Claims
// @Produce     json
// @Param       X-User-ID        header  string  false "Acting staff id"
// @Param       Idempotency-Key  header  string  false "Idempotency key for safe retries"
// @Param       id               path    int     true  "Claim id"
// @Success     200  {object} domain.Claim
// @Failure     404  {object} handlers.ErrorResponse "Not found"
// @Failure     409  {object} handlers.ErrorResponse "Precondition failed"
// @Router      /claims/{id}/approve [post]
func (h *ClaimHandlers) ApproveClaim(c *gin.Context) {
	id, okID := pathID(c)
	if !okID {
		return
	}
	key := idempotencyKey(c)
	if h.replayStored(c, id, key) {
		return
	}
	claim, err := h.svc.Approve(c.Request.Context(), id, actorID(c))
	if err != nil {
		failFromService(c, err)
		return
	}
	h.recordIdempotency(c, id, key, http.StatusOK)
	ok(c, http.StatusOK, claim)
}

// RejectClaim godoc
// @ID          rejectClaim
// @Summary     Reject a claim pending review
// @Description Sends the claim back to treatment. The reason is mandatory and is recorded in the audit trail. Supports idempotency via the Idempotency-Key header (a repeated key replays the recorded outcome).
// @Tags        Claims
// @Accept      json
// @Produce     json
// @Param       X-User-ID        header  string  false "Acting staff id"
// @Param       Idempotency-Key  header  string  false "Idempotency key for safe retries"
// @Param       id               path    int     true  "Claim id"
// @Param       body             body    handlers.RejectClaimRequest  true  "Rejection reason"
// @Success     200  {object} domain.Claim
// @Failure     404  {object} handlers.ErrorResponse "Not found"
// @Failure     409  {object} handlers.ErrorResponse "Precondition failed"
// @Failure     422  {object} handlers.ErrorResponse "Validation failed"
// @Router      /claims/{id}/reject [post]
func (h *ClaimHandlers) RejectClaim(c *gin.Context) {
	id, okID := pathID(c)
	if !okID {
		return
	}
	var req RejectClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	key := idempotencyKey(c)
	if h.replayStored(c, id, key) {
		return
	}
	claim, err := h.svc.Reject(c.Request.Context(), id, actorID(c), req.Reason)
	if err != nil {
		failFromService(c, err)
		return
	}
	h.recordIdempotency(c, id, key, http.StatusOK)
	ok(c, http.StatusOK, claim)
}

// DeleteClaim godoc
// @ID          deleteClaim
// @Summary     Deactivate a claim
// @Description Soft removal: the row is retained for audit but disappears from all reads.
// @Tags        Claims
// @Param       id  path  int  true  "Claim id"
// @Success     204  {string} string "No Content"
// @Failure     404  {object} handlers.ErrorResponse "Not found"
// @Router      /claims/{id} [delete]
func (h *ClaimHandlers) DeleteClaim(c *gin.Context) {
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

// ClaimAudit godoc
// @ID          claimAudit
// @Summary     Claim audit trail
// @Tags        Claims
// @Produce     json
// @Param       id  path  int  true  "Claim id"
// @Success     200  {array}  domain.AuditEntry
// @Failure     404  {object} handlers.ErrorResponse "Not found"
// @Router      /claims/{id}/audit [get]
func (h *ClaimHandlers) ClaimAudit(c *gin.Context) {
	id, okID := pathID(c)
	if !okID {
		return
	}
	entries, err := h.svc.AuditTrail(c.Request.Context(), id)
	if err != nil {
		failFromService(c, err)
		return
	}
	ok(c, http.StatusOK, entries)
}

// optionalDate parses a nullable date string pointer.
func optionalDate(s *string) (*time.Time, error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, nil
	}
	t, err := parseDate(*s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
