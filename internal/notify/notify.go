// Package notify implements the outbound notification boundary of the claims
// workflow. The engine fires an event after each committed transition; this
// package resolves it into a webhook POST delivered out of band.
//
// Delivery is strictly best-effort: dispatch runs in its own goroutine with a
// short timeout and bounded retries, and every failure is logged and
// swallowed. A notification error must never surface to the caller of a
// workflow transition, and by the time dispatch starts the claim state is
// already durable.
package notify

import (
	"context"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/claimsdesk/go-claims-backend/internal/domain"
)

// Event tags fired by the workflow engine.
const (
	EventClaimCreated         = "claim_created"
	EventFirstContactComplete = "first_contact_complete"
	EventSolutionSubmitted    = "solution_submitted"
	EventClaimApproved        = "claim_approved"
	EventClaimRejected        = "claim_rejected"
)

// Event is one notification request: what happened, to which claim, and who
// should hear about it.
type Event struct {
	Tag        string         `json:"tag"`
	Title      string         `json:"title"`
	ClaimID    uint           `json:"claim_id"`
	Recipients []Recipient    `json:"recipients"`
	Data       map[string]any `json:"data,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// Recipient is the delivery address of one notified user.
type Recipient struct {
	UserID uint   `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
}

// Notifier dispatches workflow events. Implementations must be non-blocking
// from the caller's perspective and must never return delivery errors into
// the transition path.
type Notifier interface {
	Notify(ctx context.Context, ev Event)
}

// RecipientsFromUsers converts user rows to recipients.
func RecipientsFromUsers(users []domain.User) []Recipient {
	out := make([]Recipient, 0, len(users))
	for _, u := range users {
		out = append(out, Recipient{UserID: u.ID, Name: u.Name, Email: u.Email})
	}
	return out
}

// titleCaser renders event tags as display titles ("first_contact_complete"
// -> "First Contact Complete") for downstream message templates.
var titleCaser = cases.Title(language.English)

// DisplayTitle returns the human-readable form of an event tag.
func DisplayTitle(tag string) string {
	return titleCaser.String(strings.ReplaceAll(tag, "_", " "))
}

// WebhookNotifier posts events as JSON to a configured HTTP endpoint.
type WebhookNotifier struct {
	client *resty.Client
	url    string
}

// NewWebhookNotifier builds a notifier for the given endpoint URL.
// Timeout bounds each delivery attempt; two retries with a short backoff
// cover transient receiver hiccups.
func NewWebhookNotifier(url string, timeout time.Duration) *WebhookNotifier {
	c := resty.New().
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond)
	return &WebhookNotifier{client: c, url: url}
}

// Notify dispatches the event in a detached goroutine. The inbound request
// context is not reused: the HTTP response returns before (or regardless of)
// delivery, so the dispatch gets its own deadline.
func (n *WebhookNotifier) Notify(_ context.Context, ev Event) {
	if ev.Title == "" {
		ev.Title = DisplayTitle(ev.Tag)
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}

	go func(ev Event) {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		resp, err := n.client.R().
			SetContext(ctx).
			SetHeader("Content-Type", "application/json").
			SetBody(ev).
			Post(n.url)

		lg := log.With().
			Str("event", ev.Tag).
			Uint("claim_id", ev.ClaimID).
			Int("recipients", len(ev.Recipients)).
			Logger()
		switch {
		case err != nil:
			lg.Warn().Err(err).Msg("notification dispatch failed")
		case resp.IsError():
			lg.Warn().Int("status", resp.StatusCode()).Msg("notification receiver rejected event")
		default:
			lg.Debug().Msg("notification dispatched")
		}
	}(ev)
}

// Nop is a Notifier that drops every event. Used when no webhook endpoint is
// configured and in tests.
type Nop struct{}

// Notify implements Notifier.
func (Nop) Notify(context.Context, Event) {}
