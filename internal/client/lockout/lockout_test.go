package lockout

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/opscore/cmdcenter/internal/client/state"
)

func setupStore(t *testing.T) state.Repository {
	t.Helper()
	db, err := state.OpenDatabase(context.Background(), "file:lockouttest?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return state.NewSQLiteRepository(db)
}

// fakeClock is safe to advance while the timer's tick goroutine reads it.
type fakeClock struct {
	mu sync.Mutex
	at time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.at
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.at = c.at.Add(d)
}

func newTestTimer(t *testing.T, at time.Time) (*Timer, *fakeClock, state.Repository) {
	t.Helper()
	store := setupStore(t)
	clock := &fakeClock{at: at}
	timer := NewTimer(store)
	timer.now = clock.Now
	return timer, clock, store
}

func TestParseRetryAfter(t *testing.T) {
	tests := []struct {
		detail string
		want   time.Duration
		ok     bool
	}{
		{"Account locked. Try again in 30 minutes.", 30 * time.Minute, true},
		{"Account locked. Try again in 5 minutes.", 5 * time.Minute, true},
		{"Try again in 1 minutes", time.Minute, true},
		{"Account locked. Try again in 0 minutes.", 0, false},
		{"Incorrect username or password", 0, false},
		{"Incorrect username or password. Warning: Lockout in 2 attempts.", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		got, ok := ParseRetryAfter(tt.detail)
		require.Equal(t, tt.ok, ok, "detail=%q", tt.detail)
		require.Equal(t, tt.want, got, "detail=%q", tt.detail)
	}
}

func TestTimer_LockFromLoginFailure(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	timer, clock, store := newTestTimer(t, base)
	ctx := context.Background()

	locked := timer.NoteLoginFailure(ctx, "Account locked. Try again in 5 minutes.")
	require.True(t, locked)

	// Expiry is N minutes plus the one-minute skew buffer.
	require.Equal(t, 6*time.Minute, timer.Remaining(ctx))

	// The durable record holds the absolute expiry.
	raw, err := store.Get(ctx, StateKey)
	require.NoError(t, err)
	persisted, err := time.Parse(time.RFC3339, raw)
	require.NoError(t, err)
	require.Equal(t, base.Add(6*time.Minute), persisted)

	// Two minutes in, four remain.
	clock.Advance(2 * time.Minute)
	require.Equal(t, 4*time.Minute, timer.Remaining(ctx))
	require.True(t, timer.Locked(ctx))
}

func TestTimer_RestoreSurvivesRestart(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	timer, _, store := newTestTimer(t, base)
	ctx := context.Background()

	require.True(t, timer.NoteLoginFailure(ctx, "Account locked. Try again in 5 minutes."))

	// A fresh timer over the same store is the restarted process.
	restarted := NewTimer(store)
	restarted.now = func() time.Time { return base.Add(2 * time.Minute) }
	require.NoError(t, restarted.Restore(ctx))
	require.Equal(t, 4*time.Minute, restarted.Remaining(ctx))
}

func TestTimer_ExpiryClearsDurableRecord(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	timer, clock, store := newTestTimer(t, base)
	ctx := context.Background()

	require.True(t, timer.NoteLoginFailure(ctx, "Account locked. Try again in 5 minutes."))

	// Past the expiry the lock releases on its own and the record is gone;
	// no further failed login is needed.
	clock.Advance(7 * time.Minute)
	require.False(t, timer.Locked(ctx))

	raw, err := store.Get(ctx, StateKey)
	require.NoError(t, err)
	require.Empty(t, raw)
}

func TestTimer_RestoreDropsStaleRecord(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	timer, _, store := newTestTimer(t, base)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, StateKey, base.Add(-time.Minute).Format(time.RFC3339)))

	require.NoError(t, timer.Restore(ctx))
	require.False(t, timer.Locked(ctx))

	raw, err := store.Get(ctx, StateKey)
	require.NoError(t, err)
	require.Empty(t, raw)
}

func TestTimer_RestoreDropsCorruptRecord(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	timer, _, store := newTestTimer(t, base)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, StateKey, "not-a-timestamp"))
	require.NoError(t, timer.Restore(ctx))
	require.False(t, timer.Locked(ctx))
}

func TestTimer_PlainRejectionDoesNotLock(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	timer, _, store := newTestTimer(t, base)
	ctx := context.Background()

	require.False(t, timer.NoteLoginFailure(ctx, "Incorrect username or password"))
	require.False(t, timer.Locked(ctx))

	raw, err := store.Get(ctx, StateKey)
	require.NoError(t, err)
	require.Empty(t, raw)
}

func TestTimer_RunUnlocksAutomatically(t *testing.T) {
	base := time.Now()
	timer, clock, _ := newTestTimer(t, base)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.True(t, timer.NoteLoginFailure(ctx, "Account locked. Try again in 1 minutes."))

	ticks := make(chan time.Duration, 16)
	unlocked := make(chan struct{})
	go timer.Run(ctx, func(left time.Duration) { ticks <- left }, func() { close(unlocked) })

	select {
	case left := <-ticks:
		require.Greater(t, left, time.Duration(0))
	case <-time.After(3 * time.Second):
		t.Fatal("no tick observed while locked")
	}

	clock.Advance(3 * time.Minute)

	select {
	case <-unlocked:
	case <-time.After(3 * time.Second):
		t.Fatal("timer did not unlock after expiry")
	}
}

func TestFormatRemaining(t *testing.T) {
	require.Equal(t, "4:05", FormatRemaining(4*time.Minute+5*time.Second))
	require.Equal(t, "0:00", FormatRemaining(0))
	require.Equal(t, "0:00", FormatRemaining(-time.Second))
	require.Equal(t, "30:00", FormatRemaining(30*time.Minute))
}
