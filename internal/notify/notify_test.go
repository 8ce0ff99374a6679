package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/claimsdesk/go-claims-backend/internal/domain"
)

func TestDisplayTitle(t *testing.T) {
	cases := []struct{ tag, want string }{
		{EventClaimCreated, "Claim Created"},
		{EventFirstContactComplete, "First Contact Complete"},
		{EventSolutionSubmitted, "Solution Submitted"},
		{EventClaimApproved, "Claim Approved"},
		{EventClaimRejected, "Claim Rejected"},
	}
	for _, tc := range cases {
		if got := DisplayTitle(tc.tag); got != tc.want {
			t.Errorf("DisplayTitle(%q) = %q, want %q", tc.tag, got, tc.want)
		}
	}
}

func TestRecipientsFromUsers(t *testing.T) {
	users := []domain.User{
		{ID: 1, Name: "Ada", Email: "ada@example.com"},
		{ID: 2, Name: "Bob", Email: "bob@example.com"},
	}
	got := RecipientsFromUsers(users)
	if len(got) != 2 {
		t.Fatalf("len = %d", len(got))
	}
	if got[0].UserID != 1 || got[0].Name != "Ada" || got[0].Email != "ada@example.com" {
		t.Fatalf("recipient = %+v", got[0])
	}

	if out := RecipientsFromUsers(nil); out == nil || len(out) != 0 {
		t.Fatalf("nil input = %v, want empty non-nil slice", out)
	}
}

func TestWebhookNotifier_PostsEvent(t *testing.T) {
	received := make(chan Event, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %q", ct)
		}
		var ev Event
		if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
			t.Errorf("decode: %v", err)
		}
		received <- ev
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	n := NewWebhookNotifier(srv.URL, 2*time.Second)
	n.Notify(context.Background(), Event{
		Tag:     EventClaimApproved,
		ClaimID: 7,
		Recipients: []Recipient{
			{UserID: 40, Name: "Owner", Email: "owner@example.com"},
		},
		Data: map[string]any{"state": "approved closed"},
	})

	select {
	case ev := <-received:
		if ev.Tag != EventClaimApproved || ev.ClaimID != 7 {
			t.Fatalf("event = %+v", ev)
		}
		if ev.Title != "Claim Approved" {
			t.Fatalf("title = %q, want defaulted display title", ev.Title)
		}
		if ev.OccurredAt.IsZero() {
			t.Fatalf("occurred_at not defaulted")
		}
		if len(ev.Recipients) != 1 || ev.Recipients[0].UserID != 40 {
			t.Fatalf("recipients = %+v", ev.Recipients)
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("webhook not delivered")
	}
}

func TestWebhookNotifier_ReceiverErrorIsSwallowed(t *testing.T) {
	hit := make(chan struct{}, 4)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hit <- struct{}{}
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	n := NewWebhookNotifier(srv.URL, time.Second)
	n.Notify(context.Background(), Event{Tag: EventClaimCreated, ClaimID: 1})

	select {
	case <-hit:
	case <-time.After(3 * time.Second):
		t.Fatalf("webhook never attempted")
	}
}

func TestNop_DropsEvents(t *testing.T) {
	var n Notifier = Nop{}
	n.Notify(context.Background(), Event{Tag: EventClaimCreated, ClaimID: 1})
}
