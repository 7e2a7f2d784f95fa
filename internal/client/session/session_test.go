package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/opscore/cmdcenter/internal/client/models"
	"github.com/opscore/cmdcenter/internal/logging"
)

// fakeAPI implements API with preset outputs and captured inputs.
type fakeAPI struct {
	mu sync.Mutex

	loginErr   error
	refreshErr error
	meUser     *models.Identity
	meErr      error
	logoutErr  error

	loginCalls   []string
	refreshCalls int
	meCalls      int
	logoutCalls  int
	clearCalls   int
}

func (f *fakeAPI) Login(ctx context.Context, username, password string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loginCalls = append(f.loginCalls, username)
	return f.loginErr
}

func (f *fakeAPI) Refresh(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshCalls++
	return f.refreshErr
}

func (f *fakeAPI) Me(ctx context.Context) (*models.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.meCalls++
	return f.meUser, f.meErr
}

func (f *fakeAPI) Logout(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logoutCalls++
	return f.logoutErr
}

func (f *fakeAPI) ClearCredentials() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clearCalls++
}

func (f *fakeAPI) counts() (refresh, me, logout, clear int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.refreshCalls, f.meCalls, f.logoutCalls, f.clearCalls
}

func viewer() *models.Identity {
	return &models.Identity{ID: "u1", Username: "alice", Role: models.RoleViewer}
}

func TestBootstrapRestoresSession(t *testing.T) {
	api := &fakeAPI{meUser: viewer()}
	m := NewManager(api, logging.NewNopLogger())
	require.Equal(t, StateInitializing, m.State())

	m.Bootstrap(context.Background())

	require.Equal(t, StateAuthenticated, m.State())
	require.Equal(t, "alice", m.CurrentUser().Username)
}

func TestBootstrapWithoutCredentialStartsAnonymous(t *testing.T) {
	api := &fakeAPI{refreshErr: errors.New("refresh token missing")}
	m := NewManager(api, logging.NewNopLogger())

	m.Bootstrap(context.Background())

	require.Equal(t, StateAnonymous, m.State())
	require.Nil(t, m.CurrentUser())
	_, me, _, _ := api.counts()
	require.Zero(t, me, "no profile fetch without a refreshed token")
}

func TestBootstrapProfileFailureStartsAnonymous(t *testing.T) {
	api := &fakeAPI{meErr: errors.New("boom")}
	m := NewManager(api, logging.NewNopLogger())

	m.Bootstrap(context.Background())

	require.Equal(t, StateAnonymous, m.State())
	_, _, _, clear := api.counts()
	require.Equal(t, 1, clear)
}

// Both bootstrap failure modes and the explicit-logout path must converge to
// the same observable state: no user, ANONYMOUS.
func TestAnonymousPathsConverge(t *testing.T) {
	viaRefreshFailure := func() *Manager {
		m := NewManager(&fakeAPI{refreshErr: errors.New("expired")}, logging.NewNopLogger())
		m.Bootstrap(context.Background())
		return m
	}
	viaProfileFailure := func() *Manager {
		m := NewManager(&fakeAPI{meErr: errors.New("down")}, logging.NewNopLogger())
		m.Bootstrap(context.Background())
		return m
	}
	viaLogout := func() *Manager {
		api := &fakeAPI{meUser: viewer()}
		m := NewManager(api, logging.NewNopLogger())
		m.Bootstrap(context.Background())
		m.Logout(context.Background())
		return m
	}

	for _, m := range []*Manager{viaRefreshFailure(), viaProfileFailure(), viaLogout()} {
		require.Equal(t, StateAnonymous, m.State())
		require.Nil(t, m.CurrentUser())
		require.False(t, m.HasRole(models.RoleViewer))
	}
}

func TestBootstrapRunsOnce(t *testing.T) {
	api := &fakeAPI{refreshErr: errors.New("expired")}
	m := NewManager(api, logging.NewNopLogger())

	m.Bootstrap(context.Background())
	m.Bootstrap(context.Background())

	refresh, _, _, _ := api.counts()
	require.Equal(t, 1, refresh)
}

func TestLoginPropagatesErrorUnmodified(t *testing.T) {
	want := errors.New("Account locked. Try again in 30 minutes.")
	api := &fakeAPI{refreshErr: errors.New("expired"), loginErr: want}
	m := NewManager(api, logging.NewNopLogger())
	m.Bootstrap(context.Background())

	err := m.Login(context.Background(), "alice", "wrong")

	require.Same(t, want, err)
	require.Equal(t, StateAnonymous, m.State())
}

func TestLoginEntersAuthenticated(t *testing.T) {
	api := &fakeAPI{refreshErr: errors.New("expired"), meUser: viewer()}
	m := NewManager(api, logging.NewNopLogger())
	m.Bootstrap(context.Background())
	require.Equal(t, StateAnonymous, m.State())

	require.NoError(t, m.Login(context.Background(), "alice", "pw"))

	require.Equal(t, StateAuthenticated, m.State())
	require.Equal(t, []string{"alice"}, api.loginCalls)
}

// Logout with a failing server call still clears credentials and lands in
// ANONYMOUS: logout never fails from the user's view.
func TestLogoutSurvivesServerFailure(t *testing.T) {
	api := &fakeAPI{meUser: viewer(), logoutErr: errors.New("network down")}
	m := NewManager(api, logging.NewNopLogger())
	m.Bootstrap(context.Background())
	require.Equal(t, StateAuthenticated, m.State())

	m.Logout(context.Background())

	require.Equal(t, StateAnonymous, m.State())
	require.Nil(t, m.CurrentUser())
	_, _, logout, clear := api.counts()
	require.Equal(t, 1, logout)
	require.Equal(t, 1, clear)
}

func TestHandleSessionLost(t *testing.T) {
	api := &fakeAPI{meUser: viewer()}
	m := NewManager(api, logging.NewNopLogger())
	m.Bootstrap(context.Background())

	m.HandleSessionLost()

	require.Equal(t, StateAnonymous, m.State())
}

func TestHasRole(t *testing.T) {
	api := &fakeAPI{meUser: &models.Identity{Username: "bob", Role: models.RoleEditor}}
	m := NewManager(api, logging.NewNopLogger())
	m.Bootstrap(context.Background())

	require.True(t, m.HasRole(models.RoleViewer))
	require.True(t, m.HasRole(models.RoleEditor))
	require.False(t, m.HasRole(models.RoleSuperadmin))
}

func TestHeartbeatSkipsWhenAnonymous(t *testing.T) {
	api := &fakeAPI{refreshErr: errors.New("expired")}
	m := NewManager(api, logging.NewNopLogger())
	m.Bootstrap(context.Background())
	_, before, _, _ := api.counts()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()
	m.RunHeartbeat(ctx, 10*time.Millisecond)

	_, after, _, _ := api.counts()
	require.Equal(t, before, after)
}

func TestHeartbeatProbesWhileAuthenticated(t *testing.T) {
	api := &fakeAPI{meUser: viewer()}
	m := NewManager(api, logging.NewNopLogger())
	m.Bootstrap(context.Background())
	_, before, _, _ := api.counts()

	ctx, cancel := context.WithTimeout(context.Background(), 80*time.Millisecond)
	defer cancel()
	m.RunHeartbeat(ctx, 10*time.Millisecond)

	_, after, _, _ := api.counts()
	require.Greater(t, after, before)
}
