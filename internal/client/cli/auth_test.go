package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/opscore/cmdcenter/internal/client/api"
	"github.com/opscore/cmdcenter/internal/client/config"
	"github.com/opscore/cmdcenter/internal/client/lockout"
	"github.com/opscore/cmdcenter/internal/client/session"
	"github.com/opscore/cmdcenter/internal/client/state"
	"github.com/opscore/cmdcenter/internal/logging"
)

// newTestApp assembles an App against the given backend with an in-memory
// state database, bypassing NewApp's stdin/file wiring.
func newTestApp(t *testing.T, serverURL string) *App {
	t.Helper()

	db, err := state.OpenDatabase(context.Background(), "file:clitest?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	apiClient, err := api.New(serverURL)
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.LoadDefaults()

	return &App{
		config:  cfg,
		api:     apiClient,
		session: session.NewManager(apiClient, logging.NewNopLogger()),
		lockout: lockout.NewTimer(state.NewSQLiteRepository(db)),
		log:     logging.NewNopLogger(),
		reader:  bufio.NewReader(strings.NewReader("")),
	}
}

func stubInputs(t *testing.T, username, password string) {
	t.Helper()
	origText, origPass := getSimpleText, getPassword
	t.Cleanup(func() { getSimpleText, getPassword = origText, origPass })
	getSimpleText = func(_ *bufio.Reader, _ string, _ io.Writer) (string, error) { return username, nil }
	getPassword = func(_ io.Writer) (string, error) { return password, nil }
}

func TestLogin_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/login":
			json.NewEncoder(w).Encode(map[string]string{"access_token": "tok"})
		case "/auth/me":
			json.NewEncoder(w).Encode(map[string]string{
				"id": "u1", "username": "alice", "role": "EDITOR", "email": "alice@example.com",
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	app := newTestApp(t, srv.URL)
	stubInputs(t, "alice", "pw")

	require.NoError(t, app.Login(context.Background()))
	require.True(t, app.isLoggedIn())
	require.Equal(t, "alice", app.session.CurrentUser().Username)
}

func TestLogin_LockoutDetailArmsTimer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"detail": "Account locked. Try again in 30 minutes."})
	}))
	defer srv.Close()

	app := newTestApp(t, srv.URL)
	stubInputs(t, "alice", "wrong")

	require.NoError(t, app.Login(context.Background()))
	require.False(t, app.isLoggedIn())
	require.True(t, app.lockout.Locked(context.Background()))
	// 30 minutes from the server plus the safety buffer.
	require.Greater(t, app.lockout.Remaining(context.Background()), 30*time.Minute)
}

func TestLogin_RefusedWhileLocked(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"detail": "Account locked. Try again in 5 minutes."})
	}))
	defer srv.Close()

	app := newTestApp(t, srv.URL)
	stubInputs(t, "alice", "wrong")

	require.NoError(t, app.Login(context.Background()))
	require.Equal(t, 1, hits)

	// Second attempt is refused locally, without prompting or calling out.
	prompted := false
	getSimpleText = func(_ *bufio.Reader, _ string, _ io.Writer) (string, error) {
		prompted = true
		return "alice", nil
	}
	require.NoError(t, app.Login(context.Background()))
	require.False(t, prompted)
	require.Equal(t, 1, hits)
}

func TestLogin_PlainRejectionDoesNotLock(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"detail": "Incorrect username or password. Warning: Lockout in 2 attempts."})
	}))
	defer srv.Close()

	app := newTestApp(t, srv.URL)
	stubInputs(t, "alice", "wrong")

	require.NoError(t, app.Login(context.Background()))
	require.False(t, app.lockout.Locked(context.Background()))
}
