package repo

import (
	"context"
	"testing"

	"github.com/claimsdesk/go-claims-backend/internal/domain"
)

func TestAppendAudit_AndListInChronologicalOrder(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	actor := uint(4)
	entries := []struct {
		actor  *uint
		action string
		note   string
	}{
		{nil, domain.AuditActionCreated, "claim entered"},
		{&actor, domain.AuditActionFirstContact, "customer called back"},
		{&actor, domain.AuditActionTreatment, "replacement shipped"},
	}
	for _, e := range entries {
		if _, err := AppendAudit(ctx, db, 1, e.actor, e.action, e.note); err != nil {
			t.Fatalf("append %s: %v", e.action, err)
		}
	}
	// A different claim's trail must not leak in.
	if _, err := AppendAudit(ctx, db, 2, nil, domain.AuditActionCreated, ""); err != nil {
		t.Fatalf("append other claim: %v", err)
	}

	got, err := ListAudit(ctx, db, 1)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	for i, e := range entries {
		if got[i].Action != e.action || got[i].Note != e.note {
			t.Fatalf("entry %d = %+v, want (%s, %q)", i, got[i], e.action, e.note)
		}
	}
	if got[0].ActorID != nil {
		t.Fatalf("system entry actor = %v, want nil", got[0].ActorID)
	}
	if got[1].ActorID == nil || *got[1].ActorID != actor {
		t.Fatalf("entry 1 actor = %v, want %d", got[1].ActorID, actor)
	}
}

func TestListAudit_EmptyTrail(t *testing.T) {
	db := newTestDB(t)
	got, err := ListAudit(context.Background(), db, 42)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("len = %d, want 0", len(got))
	}
}
