// Package session owns the process-wide authenticated-user state machine:
// bootstrap, login/logout, periodic liveness verification, and role checks.
// Exactly one Manager exists per running console.
package session

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/opscore/cmdcenter/internal/client/models"
	"github.com/opscore/cmdcenter/internal/logging"
)

// State is the session lifecycle phase. A session starts INITIALIZING,
// resolves exactly once to AUTHENTICATED or ANONYMOUS, and may later fall
// from AUTHENTICATED to ANONYMOUS; it never returns to INITIALIZING.
type State int

const (
	StateInitializing State = iota
	StateAuthenticated
	StateAnonymous
)

func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateAuthenticated:
		return "authenticated"
	case StateAnonymous:
		return "anonymous"
	default:
		return "unknown"
	}
}

// API is the slice of the backend client the session layer needs.
type API interface {
	Login(ctx context.Context, username, password string) error
	Refresh(ctx context.Context) error
	Me(ctx context.Context) (*models.Identity, error)
	Logout(ctx context.Context) error
	ClearCredentials()
}

// Manager is the session state container. All exported methods are safe for
// concurrent use; state is only reachable through accessors.
type Manager struct {
	api API
	log logging.Logger

	mu    sync.RWMutex
	state State
	user  *models.Identity

	// probeInFlight keeps heartbeat probes from piling up when one takes
	// longer than the interval. A skipped probe is acceptable drift.
	probeInFlight atomic.Bool
}

func NewManager(api API, log logging.Logger) *Manager {
	return &Manager{api: api, log: log, state: StateInitializing}
}

// Bootstrap resolves the initial session state: silent refresh, then profile
// fetch. Any failure (no durable credential, expired, network down) lands in
// ANONYMOUS; the two cases are deliberately indistinguishable. Runs once; a
// second call after resolution is a no-op.
func (m *Manager) Bootstrap(ctx context.Context) {
	m.mu.Lock()
	if m.state != StateInitializing {
		m.mu.Unlock()
		return
	}
	m.mu.Unlock()

	if err := m.api.Refresh(ctx); err != nil {
		m.log.Debug(ctx, "silent refresh failed, starting anonymous", "err", err)
		m.setAnonymous()
		return
	}

	user, err := m.api.Me(ctx)
	if err != nil {
		m.log.Debug(ctx, "profile fetch failed, starting anonymous", "err", err)
		m.api.ClearCredentials()
		m.setAnonymous()
		return
	}

	m.mu.Lock()
	m.state = StateAuthenticated
	m.user = user
	m.mu.Unlock()
	m.log.Info(ctx, "session restored", "username", user.Username, "role", string(user.Role))
}

// Login authenticates and, on success, enters AUTHENTICATED. On failure the
// original error is returned unmodified so the login surface can inspect the
// structured detail (including the lockout signal).
func (m *Manager) Login(ctx context.Context, username, password string) error {
	if err := m.api.Login(ctx, username, password); err != nil {
		return err
	}

	user, err := m.api.Me(ctx)
	if err != nil {
		m.api.ClearCredentials()
		return err
	}

	m.mu.Lock()
	m.state = StateAuthenticated
	m.user = user
	m.mu.Unlock()
	m.log.Info(ctx, "login succeeded", "username", user.Username, "role", string(user.Role))
	return nil
}

// Logout ends the session. The server call is best effort; local state is
// cleared unconditionally, so logout never fails from the user's view.
func (m *Manager) Logout(ctx context.Context) {
	if err := m.api.Logout(ctx); err != nil {
		m.log.Debug(ctx, "logout call failed, clearing local session anyway", "err", err)
	}
	m.api.ClearCredentials()
	m.setAnonymous()
	m.log.Info(ctx, "session terminated")
}

// HandleSessionLost drops to ANONYMOUS after the transport reports an
// exhausted refresh. Credentials are already cleared by then.
func (m *Manager) HandleSessionLost() {
	m.setAnonymous()
}

func (m *Manager) setAnonymous() {
	m.mu.Lock()
	m.state = StateAnonymous
	m.user = nil
	m.mu.Unlock()
}

// State returns the current lifecycle phase.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// CurrentUser returns the authenticated identity, or nil.
func (m *Manager) CurrentUser() *models.Identity {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.user
}

// HasRole is the single source of truth for permission checks: true only for
// an authenticated user whose role is at least as privileged as required.
func (m *Manager) HasRole(required models.Role) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state == StateAuthenticated && m.user != nil && m.user.Role.AtLeast(required)
}

// RunHeartbeat probes the profile endpoint on the given interval while
// AUTHENTICATED, so a server-invalidated session (password changed elsewhere)
// is detected between commands. Probe failures are not handled here: an
// expired token flows through the transport's refresh path, which tears the
// session down if refresh is exhausted. Returns when ctx is cancelled.
func (m *Manager) RunHeartbeat(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if m.State() != StateAuthenticated {
				continue
			}
			if !m.probeInFlight.CompareAndSwap(false, true) {
				continue
			}
			if _, err := m.api.Me(ctx); err != nil {
				m.log.Debug(ctx, "heartbeat probe failed", "err", err)
			}
			m.probeInFlight.Store(false)
		}
	}
}
