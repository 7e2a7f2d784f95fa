// Package api implements the authenticated HTTP client for the Command Center
// backend. It owns the access-token lifecycle: the in-memory credential
// holder, bearer attachment on every call, and the single-flight
// refresh-and-replay recovery from token expiry. The durable refresh
// credential is an httponly cookie the backend manages; the client only
// carries it in its cookie jar.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/opscore/cmdcenter/internal/client/models"
	"github.com/opscore/cmdcenter/internal/common"
	"github.com/opscore/cmdcenter/internal/logging"
)

const (
	loginPath   = "/auth/login"
	refreshPath = "/auth/refresh"
	mePath      = "/auth/me"
	logoutPath  = "/auth/logout"

	defaultTimeout = 30 * time.Second
)

// Client is a typed client for the admin REST API. All methods attach the
// current access token and recover from token expiry transparently; only
// Login surfaces 401s directly.
type Client struct {
	baseURL string
	httpc   *http.Client // auth transport: bearer + refresh-and-replay
	barec   *http.Client // no auth handling; used for the refresh call itself
	creds   *Credentials
	log     logging.Logger

	mu          sync.Mutex
	sessionLost func()
}

type Option func(*Client)

// WithLogger replaces the default no-op logger.
func WithLogger(log logging.Logger) Option {
	return func(c *Client) { c.log = log }
}

// WithTimeout overrides the per-request timeout on both underlying clients.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpc.Timeout = d
		c.barec.Timeout = d
	}
}

// New builds a Client for the API at baseURL (scheme://host[:port], no
// trailing path). Both underlying HTTP clients share one cookie jar so the
// refresh cookie set at login is sent ambiently on refresh calls.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid server url %q", baseURL)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("cookie jar init: %w", err)
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		creds:   NewCredentials(),
		log:     logging.NewNopLogger(),
	}
	c.barec = &http.Client{Jar: jar, Timeout: defaultTimeout}
	c.httpc = &http.Client{
		Jar:     jar,
		Timeout: defaultTimeout,
		Transport: &authTransport{
			base:    http.DefaultTransport,
			creds:   c.creds,
			refresh: c.refreshToken,
			skipPaths: map[string]struct{}{
				loginPath:   {},
				refreshPath: {},
			},
			onSessionLost: c.notifySessionLost,
		},
	}

	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// OnSessionLost registers fn to run whenever a refresh attempt fails and the
// session is torn down. Must be set before the client is used concurrently.
func (c *Client) OnSessionLost(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessionLost = fn
}

func (c *Client) notifySessionLost() {
	c.mu.Lock()
	fn := c.sessionLost
	c.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// ClearCredentials drops the in-memory access token. The session layer calls
// this on logout.
func (c *Client) ClearCredentials() {
	c.creds.Clear()
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login authenticates with username/password. On success the credential
// holder is rotated and the backend has set the refresh cookie. A 401 is
// returned as *Error with the server's detail message unmodified; it never
// triggers a refresh attempt.
func (c *Client) Login(ctx context.Context, username, password string) error {
	var tok tokenResponse
	if err := c.do(ctx, http.MethodPost, loginPath, loginRequest{Username: username, Password: password}, &tok); err != nil {
		return err
	}
	c.creds.Set(tok.AccessToken)
	c.log.Debug(ctx, "login succeeded", "username", username)
	return nil
}

// Refresh silently mints a new access token from the refresh cookie and
// rotates the credential holder. Used at bootstrap and by the transport's
// recovery path.
func (c *Client) Refresh(ctx context.Context) error {
	_, err := c.refreshToken(ctx)
	return err
}

// refreshToken performs the actual refresh call on the bare client so the
// attempt cannot recurse into the auth transport. The anti-CSRF marker is
// required by the backend on this endpoint.
func (c *Client) refreshToken(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+refreshPath, strings.NewReader("{}"))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(common.RequestedWithHeader, common.RequestedWithValue)

	resp, err := c.barec.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", decodeError(resp)
	}

	var tok tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", fmt.Errorf("decoding refresh response: %w", err)
	}
	c.creds.Set(tok.AccessToken)
	return tok.AccessToken, nil
}

// Me fetches the authenticated admin profile. Doubles as the liveness probe.
func (c *Client) Me(ctx context.Context) (*models.Identity, error) {
	var id models.Identity
	if err := c.do(ctx, http.MethodGet, mePath, nil, &id); err != nil {
		return nil, err
	}
	return &id, nil
}

// Logout invalidates the server-side session. The caller clears local state
// regardless of the outcome.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, logoutPath, nil, nil)
}

// do issues one JSON request through the auth transport and decodes the
// response into out (when non-nil). Non-2xx responses become *Error.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rdr io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		rdr = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		// A failed refresh surfaces through the transport as *Error.
		var apiErr *Error
		if errors.As(err, &apiErr) {
			return apiErr
		}
		return fmt.Errorf("%w: %v", common.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// decodeError turns an error response into *Error, preserving the backend's
// {"detail": ...} message when present.
func decodeError(resp *http.Response) error {
	var payload struct {
		Detail string `json:"detail"`
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err := json.Unmarshal(data, &payload); err != nil || payload.Detail == "" {
		payload.Detail = strings.TrimSpace(string(data))
	}
	return &Error{StatusCode: resp.StatusCode, Detail: payload.Detail}
}
