package domain

import (
	"reflect"
	"testing"
	"time"
)

func TestStateName(t *testing.T) {
	cases := []struct {
		id   uint
		want string
	}{
		{StateCreated, "created"},
		{StateFirstContact, "first contact"},
		{StateTreatment, "treatment"},
		{StatePendingReview, "pending review"},
		{StateApprovedClosed, "approved closed"},
		{0, "unknown"},
		{99, "unknown"},
	}
	for _, tc := range cases {
		if got := StateName(tc.id); got != tc.want {
			t.Errorf("StateName(%d) = %q, want %q", tc.id, got, tc.want)
		}
	}
}

func TestClaim_Closed(t *testing.T) {
	var c Claim
	if c.Closed() {
		t.Fatalf("claim without closing date reported closed")
	}
	now := time.Now()
	c.ClosedAt = &now
	if !c.Closed() {
		t.Fatalf("claim with closing date reported open")
	}
}

func TestRoutingRule_FirstContactIDs_DedupesKeepingPositionOrder(t *testing.T) {
	r := RoutingRule{FirstContacts: []RoutingFirstContact{
		{UserID: 8, Position: 0},
		{UserID: 3, Position: 1},
		{UserID: 8, Position: 2},
		{UserID: 5, Position: 3},
	}}
	got := r.FirstContactIDs()
	if !reflect.DeepEqual(got, []uint{8, 3, 5}) {
		t.Fatalf("got %v, want [8 3 5]", got)
	}
}

func TestRoutingRule_FirstContactIDs_Empty(t *testing.T) {
	var r RoutingRule
	if got := r.FirstContactIDs(); len(got) != 0 {
		t.Fatalf("got %v, want empty", got)
	}
}

func TestRoutingRule_PrimaryFirstContact(t *testing.T) {
	r := RoutingRule{FirstContacts: []RoutingFirstContact{
		{UserID: 12, Position: 0},
		{UserID: 4, Position: 1},
	}}
	id, ok := r.PrimaryFirstContact()
	if !ok || id != 12 {
		t.Fatalf("got (%d, %v), want (12, true)", id, ok)
	}

	var empty RoutingRule
	if _, ok := empty.PrimaryFirstContact(); ok {
		t.Fatalf("empty first-contact set reported a primary contact")
	}
}
