package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/claimsdesk/go-claims-backend/internal/domain"
	"github.com/claimsdesk/go-claims-backend/internal/repo"
	"github.com/claimsdesk/go-claims-backend/internal/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// stubClaimService lets each test script the workflow operations it touches.
// Unset operations panic so accidental calls surface immediately.
type stubClaimService struct {
	createFn     func(ctx context.Context, actorID *uint, in services.CreateInput) (*domain.Claim, error)
	getFn        func(ctx context.Context, id uint) (*domain.Claim, error)
	listPageFn   func(ctx context.Context, f repo.ClaimFilter, page, pageSize int) ([]domain.Claim, int64, error)
	updateFn     func(ctx context.Context, id uint, actorID *uint, cmds []services.Command) (*domain.Claim, error)
	updateFullFn func(ctx context.Context, id uint, in services.FullUpdateInput) (*domain.Claim, error)
	approveFn    func(ctx context.Context, id uint, actorID *uint) (*domain.Claim, error)
	rejectFn     func(ctx context.Context, id uint, actorID *uint, reason string) (*domain.Claim, error)
	deactivateFn func(ctx context.Context, id uint) error
	auditFn      func(ctx context.Context, id uint) ([]domain.AuditEntry, error)
}

func (s *stubClaimService) Create(ctx context.Context, actorID *uint, in services.CreateInput) (*domain.Claim, error) {
	return s.createFn(ctx, actorID, in)
}
func (s *stubClaimService) Get(ctx context.Context, id uint) (*domain.Claim, error) {
	return s.getFn(ctx, id)
}
func (s *stubClaimService) ListPage(ctx context.Context, f repo.ClaimFilter, page, pageSize int) ([]domain.Claim, int64, error) {
	return s.listPageFn(ctx, f, page, pageSize)
}
func (s *stubClaimService) Update(ctx context.Context, id uint, actorID *uint, cmds []services.Command) (*domain.Claim, error) {
	return s.updateFn(ctx, id, actorID, cmds)
}
func (s *stubClaimService) UpdateFull(ctx context.Context, id uint, in services.FullUpdateInput) (*domain.Claim, error) {
	return s.updateFullFn(ctx, id, in)
}
func (s *stubClaimService) Approve(ctx context.Context, id uint, actorID *uint) (*domain.Claim, error) {
	return s.approveFn(ctx, id, actorID)
}
func (s *stubClaimService) Reject(ctx context.Context, id uint, actorID *uint, reason string) (*domain.Claim, error) {
	return s.rejectFn(ctx, id, actorID, reason)
}
func (s *stubClaimService) Deactivate(ctx context.Context, id uint) error {
	return s.deactivateFn(ctx, id)
}
func (s *stubClaimService) AuditTrail(ctx context.Context, id uint) ([]domain.AuditEntry, error) {
	return s.auditFn(ctx, id)
}

// newClaimRouter mounts the claim endpoints over the given service. db may be
// nil when the test does not exercise the ETag path.
func newClaimRouter(svc ClaimService, db *gorm.DB) *gin.Engine {
	r := gin.New()
	h := NewClaimHandlers(svc, db, time.Hour)
	r.POST("/claims", h.CreateClaim)
	r.GET("/claims", h.ListClaims)
	r.GET("/claims/:id", h.GetClaim)
	r.PATCH("/claims/:id", h.PatchClaim)
	r.PUT("/claims/:id", h.PutClaim)
	r.POST("/claims/:id/approve", h.ApproveClaim)
	r.POST("/claims/:id/reject", h.RejectClaim)
	r.DELETE("/claims/:id", h.DeleteClaim)
	r.GET("/claims/:id/audit", h.ClaimAudit)
	return r
}

func doJSON(t *testing.T, r http.Handler, method, path, body string, hdr map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error envelope: %v (body %s)", err, w.Body.String())
	}
	return resp
}
