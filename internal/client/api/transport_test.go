package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/opscore/cmdcenter/internal/common"
)

// testBackend is a minimal fake of the auth surface: /auth/refresh rotates
// tokens, every other path demands the current one.
type testBackend struct {
	mu           sync.Mutex
	currentToken string
	refreshCalls atomic.Int64
	dataCalls    atomic.Int64
	refreshDelay time.Duration
	refreshFails bool
	rejectData   bool
	loginCalls   atomic.Int64
}

func (b *testBackend) token() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.currentToken
}

func (b *testBackend) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		b.loginCalls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"detail": "Incorrect username or password"})
	})

	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		b.refreshCalls.Add(1)
		if b.refreshDelay > 0 {
			time.Sleep(b.refreshDelay)
		}
		w.Header().Set("Content-Type", "application/json")
		if b.refreshFails {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"detail": "Invalid refresh token"})
			return
		}
		b.mu.Lock()
		b.currentToken = "fresh"
		b.mu.Unlock()
		json.NewEncoder(w).Encode(map[string]string{"access_token": "fresh"})
	})

	mux.HandleFunc("/data", func(w http.ResponseWriter, r *http.Request) {
		b.dataCalls.Add(1)
		if b.rejectData || r.Header.Get("Authorization") != "Bearer "+b.token() {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"detail": "token expired"})
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"ok": "true"})
	})

	return mux
}

func newTestClient(t *testing.T, b *testBackend) *Client {
	t.Helper()
	srv := httptest.NewServer(b.handler())
	t.Cleanup(srv.Close)

	c, err := New(srv.URL)
	require.NoError(t, err)
	return c
}

func TestTransport_SingleFlightRefresh(t *testing.T) {
	b := &testBackend{currentToken: "fresh", refreshDelay: 50 * time.Millisecond}
	c := newTestClient(t, b)
	c.creds.Set("stale")

	const n = 8
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		go func() {
			var out map[string]string
			errs <- c.do(context.Background(), http.MethodGet, "/data", nil, &out)
		}()
	}

	for i := 0; i < n; i++ {
		require.NoError(t, <-errs)
	}

	require.Equal(t, int64(1), b.refreshCalls.Load(),
		"a burst of concurrent 401s must trigger exactly one refresh")
	require.Equal(t, "fresh", c.creds.Get())
}

func TestTransport_NoDoubleRetry(t *testing.T) {
	// The backend keeps rejecting even the rotated token, so the replay's
	// 401 must come back to the caller instead of starting another cycle.
	b := &testBackend{rejectData: true}
	c := newTestClient(t, b)
	c.creds.Set("stale")

	err := c.do(context.Background(), http.MethodGet, "/data", nil, nil)
	require.ErrorIs(t, err, common.ErrUnauthorized)

	require.Equal(t, int64(1), b.refreshCalls.Load())
	require.Equal(t, int64(2), b.dataCalls.Load(), "original attempt plus exactly one replay")
}

func TestTransport_LoginBypassesRefresh(t *testing.T) {
	b := &testBackend{currentToken: "fresh"}
	c := newTestClient(t, b)

	err := c.Login(context.Background(), "ops", "wrong")
	require.Error(t, err)

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	require.Equal(t, "Incorrect username or password", apiErr.Detail)

	require.Equal(t, int64(0), b.refreshCalls.Load(), "login 401s are terminal, never refreshable")
	require.Equal(t, int64(1), b.loginCalls.Load())
}

func TestTransport_RefreshFailureTearsDownSession(t *testing.T) {
	b := &testBackend{currentToken: "other", refreshFails: true}
	c := newTestClient(t, b)
	c.creds.Set("stale")

	var lost atomic.Int64
	c.OnSessionLost(func() { lost.Add(1) })

	err := c.do(context.Background(), http.MethodGet, "/data", nil, nil)
	require.ErrorIs(t, err, common.ErrUnauthorized)

	require.Empty(t, c.creds.Get(), "credentials must be cleared when refresh is exhausted")
	require.Equal(t, int64(1), lost.Load())
	require.Equal(t, int64(1), b.refreshCalls.Load())
}

func TestTransport_ReplayedRequestCarriesBody(t *testing.T) {
	var bodies []string
	var mu sync.Mutex

	mux := http.NewServeMux()
	calls := 0
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"access_token": "fresh"})
	})
	mux.HandleFunc("/items", func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]string
		json.NewDecoder(r.Body).Decode(&payload)
		mu.Lock()
		bodies = append(bodies, payload["name"])
		calls++
		first := calls == 1
		mu.Unlock()
		if first {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusCreated)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c, err := New(srv.URL)
	require.NoError(t, err)
	c.creds.Set("stale")

	body := map[string]string{"name": "payload"}
	require.NoError(t, c.do(context.Background(), http.MethodPost, "/items", body, nil))
	require.Equal(t, []string{"payload", "payload"}, bodies)
}

func TestTransport_AttachesBearerWhenPresent(t *testing.T) {
	var got []string
	var mu sync.Mutex

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		got = append(got, r.Header.Get("Authorization"))
		mu.Unlock()
		json.NewEncoder(w).Encode(map[string]string{})
	}))
	t.Cleanup(srv.Close)

	c, err := New(srv.URL)
	require.NoError(t, err)

	require.NoError(t, c.do(context.Background(), http.MethodGet, "/anon", nil, nil))
	c.creds.Set("tok")
	require.NoError(t, c.do(context.Background(), http.MethodGet, "/authed", nil, nil))

	require.Equal(t, []string{"", "Bearer tok"}, got)
}
