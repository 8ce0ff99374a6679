// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements idempotency support for unsafe claim operations such
// as approval and rejection. It validates an Idempotency-Key request header,
// optionally performs a caller-supplied lookup to detect previously completed
// requests, and annotates the request context so downstream handlers can
// read the normalized key (GetIdempotencyKey), detect replays (IsReplay),
// and let replayed requests bypass rate limiting.
//
// Persistence is decoupled behind the narrow IdempotencyLookup function type;
// the middleware itself only handles validation and context stashing.
package middleware

import (
	"context"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// HeaderIdempotencyKey is the request header clients use to convey an
// idempotency key for unsafe operations. The value is expected to be stable
// for a given semantic operation so retries can be deduplicated.
const HeaderIdempotencyKey = "Idempotency-Key"

// Context keys used internally to stash idempotency state. Referenced only
// via the accessor helpers below.
const (
	ctxKeyIdemKey    = "idem.key"
	ctxKeyIdemReplay = "idem.replay" // bool: true when a stored replay exists
	ctxKeyRateBypass = "rate.bypass" // bool: true to skip rate limiting
)

// GetIdempotencyKey returns the validated idempotency key stored in the Gin
// context by IdempotencyValidator. The second return value indicates
// presence. Handlers should prefer this over reading the header directly.
func GetIdempotencyKey(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxKeyIdemKey)
	if !ok {
		return "", false
	}
	s, _ := v.(string)
	return s, s != ""
}

// IsReplay reports whether the middleware detected that this request would
// replay a previously completed operation on the same claim.
func IsReplay(c *gin.Context) bool {
	v, ok := c.Get(ctxKeyIdemReplay)
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// IdempotencyOptions configures header validation for IdempotencyValidator.
// TTL enforcement belongs in the lookup function, not here.
type IdempotencyOptions struct {
	// MaxLen caps the accepted key length. Values <= 0 default to 200.
	MaxLen int
	// Pattern restricts allowed characters. If nil, a conservative
	// token pattern is used: ^[A-Za-z0-9._~\-:]+$
	Pattern *regexp.Regexp
}

// IdempotencyLookup answers whether a successful, still-valid result exists
// for (actorID, claimID, key) at the given time. actorID is nil for
// unattributed requests. Implementations typically consult a stored record
// with the previous result and a TTL window.
//
// Return exists=true when the prior result can be replayed; return an error
// only for lookup failures, which must not block normal processing.
type IdempotencyLookup func(ctx context.Context, actorID *uint, claimID uint, key string, now time.Time) (exists bool, err error)

// IdempotencyValidator validates the Idempotency-Key header when present,
// stashes it in the request context, and optionally checks for a prior
// completed request via the supplied lookup.
//
// Behavior:
//   - If the header is absent the middleware is a no-op.
//   - If the header fails validation it responds 400 with a compact body.
//   - If the lookup indicates a replay it sets the replay and rate-bypass
//     flags and proceeds; handlers remain in control of serving the stored
//     result.
//
// The actor is taken from the X-User-ID header and the claim from the :id
// path parameter, matching how the claim endpoints attribute writes.
func IdempotencyValidator(opts IdempotencyOptions, lookup IdempotencyLookup) gin.HandlerFunc {
	maxLen := opts.MaxLen
	if maxLen <= 0 {
		maxLen = 200
	}
	pat := opts.Pattern
	if pat == nil {
		pat = regexp.MustCompile(`^[A-Za-z0-9._~\-:]+$`)
	}

	return func(c *gin.Context) {
		key := c.GetHeader(HeaderIdempotencyKey)
		if key == "" {
			c.Next()
			return
		}
		if len(key) > maxLen || !pat.MatchString(key) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"code":    "bad_idempotency_key",
				"message": "invalid Idempotency-Key",
			})
			return
		}

		c.Set(ctxKeyIdemKey, key)

		if lookup != nil {
			actor := actorIDFromHeader(c)
			claimID := claimIDFromPath(c)
			now := time.Now().UTC()

			if claimID > 0 {
				if exists, _ := lookup(c.Request.Context(), actor, claimID, key, now); exists {
					c.Set(ctxKeyIdemReplay, true)
					c.Set(ctxKeyRateBypass, true)
				}
			}
		}

		c.Next()
	}
}

// actorIDFromHeader parses the numeric X-User-ID header. Requests without a
// valid actor are treated as system-initiated (nil).
func actorIDFromHeader(c *gin.Context) *uint {
	raw := c.GetHeader("X-User-ID")
	if raw == "" {
		return nil
	}
	n, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || n == 0 {
		return nil
	}
	id := uint(n)
	return &id
}

// claimIDFromPath reads the :id route parameter, 0 when absent or malformed.
func claimIDFromPath(c *gin.Context) uint {
	raw := c.Param("id")
	if raw == "" {
		return 0
	}
	n, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0
	}
	return uint(n)
}
