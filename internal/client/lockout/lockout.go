// Package lockout tracks the client-side login lockout countdown.
//
// The backend signals a lockout inside the login rejection's detail message
// ("Account locked. Try again in N minutes."). The timer derives an absolute
// expiry from that signal, persists it so a restart cannot bypass the lock,
// and unlocks itself the moment the expiry passes.
package lockout

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"sync"
	"time"

	"github.com/opscore/cmdcenter/internal/client/state"
)

const (
	// StateKey is the durable record: a single RFC 3339 expiry timestamp.
	StateKey = "lockout_expires_at"

	// safetyBuffer absorbs client/server clock skew and in-flight latency,
	// so the client never unlocks before the server does.
	safetyBuffer = time.Minute

	// TickInterval is the cadence at which a locked console refreshes the
	// displayed countdown.
	TickInterval = time.Second
)

// retryPattern matches the server's lockout signal. The duration contract is
// this embedded phrase; parsing is kept in one place so a structured
// retry-after field can replace it without touching callers.
var retryPattern = regexp.MustCompile(`Try again in (\d+) minutes`)

// ParseRetryAfter extracts the lockout duration from a login rejection
// detail. Returns false when the message carries no usable signal; a
// reported value of zero minutes counts as unusable (already unlocked).
func ParseRetryAfter(detail string) (time.Duration, bool) {
	m := retryPattern.FindStringSubmatch(detail)
	if m == nil {
		return 0, false
	}
	minutes, err := strconv.Atoi(m[1])
	if err != nil || minutes <= 0 {
		return 0, false
	}
	return time.Duration(minutes) * time.Minute, true
}

// Timer is the lockout state machine: UNLOCKED -> LOCKED(expiresAt) ->
// UNLOCKED. The zero expiry means unlocked. All methods are safe for
// concurrent use.
type Timer struct {
	store state.Repository
	now   func() time.Time

	mu        sync.Mutex
	expiresAt time.Time
}

func NewTimer(store state.Repository) *Timer {
	return &Timer{store: store, now: time.Now}
}

// Restore re-enters LOCKED from the durable record, if one exists and is
// still in the future. A stale record is removed. Called once at startup,
// before any login attempt.
func (t *Timer) Restore(ctx context.Context) error {
	raw, err := t.store.Get(ctx, StateKey)
	if err != nil {
		return fmt.Errorf("reading lockout record: %w", err)
	}
	if raw == "" {
		return nil
	}

	expiry, err := time.Parse(time.RFC3339, raw)
	if err != nil || !expiry.After(t.now()) {
		return t.store.Delete(ctx, StateKey)
	}

	t.mu.Lock()
	t.expiresAt = expiry
	t.mu.Unlock()
	return nil
}

// NoteLoginFailure inspects a login rejection detail for the lockout signal.
// When present it enters LOCKED and persists the expiry; returns whether the
// timer is now locked.
func (t *Timer) NoteLoginFailure(ctx context.Context, detail string) bool {
	retryAfter, ok := ParseRetryAfter(detail)
	if !ok {
		return false
	}

	expiry := t.now().Add(retryAfter + safetyBuffer)

	t.mu.Lock()
	t.expiresAt = expiry
	t.mu.Unlock()

	if err := t.store.Set(ctx, StateKey, expiry.UTC().Format(time.RFC3339)); err != nil {
		// The in-memory lock still holds for this process; only the
		// reload-survival guarantee is degraded.
		return true
	}
	return true
}

// Remaining returns the time left on the lock, clearing the lock (and its
// durable record) the instant it has expired. Zero means unlocked.
func (t *Timer) Remaining(ctx context.Context) time.Duration {
	t.mu.Lock()
	if t.expiresAt.IsZero() {
		t.mu.Unlock()
		return 0
	}
	left := t.expiresAt.Sub(t.now())
	if left > 0 {
		t.mu.Unlock()
		return left
	}
	t.expiresAt = time.Time{}
	t.mu.Unlock()

	_ = t.store.Delete(ctx, StateKey)
	return 0
}

// Locked reports whether the lock is currently in force.
func (t *Timer) Locked(ctx context.Context) bool {
	return t.Remaining(ctx) > 0
}

// Run ticks while locked, reporting the remaining time to onTick and calling
// onUnlock exactly once when the countdown reaches zero. Returns when ctx is
// cancelled. Safe to run even while unlocked; it simply waits for a lock to
// appear.
func (t *Timer) Run(ctx context.Context, onTick func(remaining time.Duration), onUnlock func()) {
	ticker := time.NewTicker(TickInterval)
	defer ticker.Stop()

	wasLocked := t.Locked(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			left := t.Remaining(ctx)
			switch {
			case left > 0:
				wasLocked = true
				if onTick != nil {
					onTick(left)
				}
			case wasLocked:
				wasLocked = false
				if onUnlock != nil {
					onUnlock()
				}
			}
		}
	}
}

// FormatRemaining renders a countdown as M:SS for display.
func FormatRemaining(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d.Round(time.Second) / time.Second)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
