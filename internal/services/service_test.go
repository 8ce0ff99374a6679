package services

import (
	"context"
	"strings"
	"sync"
	"testing"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/claimsdesk/go-claims-backend/internal/domain"
	"github.com/claimsdesk/go-claims-backend/internal/notify"
	"github.com/claimsdesk/go-claims-backend/internal/repo"
)

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

// captureNotifier records dispatched events for assertions.
type captureNotifier struct {
	mu     sync.Mutex
	events []notify.Event
}

func (c *captureNotifier) Notify(_ context.Context, ev notify.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, ev)
}

func (c *captureNotifier) all() []notify.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]notify.Event, len(c.events))
	copy(out, c.events)
	return out
}

func (c *captureNotifier) last(t *testing.T) notify.Event {
	t.Helper()
	evs := c.all()
	if len(evs) == 0 {
		t.Fatalf("no events dispatched")
	}
	return evs[len(evs)-1]
}

// newClaimService wires a ClaimService over a fresh database with a capturing
// notifier and no area membership restriction.
func newClaimService(t *testing.T) (*ClaimService, *captureNotifier, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	n := &captureNotifier{}
	routing := &RoutingService{DB: db}
	return NewClaimService(db, routing, n), n, db
}

func seedUser(t *testing.T, db *gorm.DB, id uint, name string, areaID uint) *domain.User {
	t.Helper()
	u := &domain.User{ID: id, Name: name, Email: name + "@example.com", AreaID: areaID, RoleID: 1, Active: true}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("seed user %s: %v", name, err)
	}
	return u
}

func seedRule(t *testing.T, db *gorm.DB, triple [3]uint, owner uint, responseDays int, firstContacts ...uint) *domain.RoutingRule {
	t.Helper()
	rule := &domain.RoutingRule{
		ClassificationID: triple[0],
		ClassID:          triple[1],
		CauseID:          triple[2],
		TreatmentOwnerID: owner,
		ResponseTimeDays: responseDays,
	}
	if err := repo.CreateRule(context.Background(), db, rule, firstContacts); err != nil {
		t.Fatalf("seed rule: %v", err)
	}
	return rule
}

func setClaimState(t *testing.T, db *gorm.DB, id, state uint) {
	t.Helper()
	if err := repo.UpdateClaimFields(context.Background(), db, id, map[string]any{"state_id": state}); err != nil {
		t.Fatalf("set state: %v", err)
	}
}

func uintPtr(v uint) *uint { return &v }
