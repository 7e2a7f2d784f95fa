package api

import (
	"context"
	"io"
	"net/http"

	"golang.org/x/sync/singleflight"

	"github.com/opscore/cmdcenter/internal/common"
)

// refreshFunc mints a new access token using the durable refresh credential.
// On success it must have rotated the Credentials before returning.
type refreshFunc func(ctx context.Context) (string, error)

// authTransport attaches the current access token to every outbound request
// and recovers transparently from access-token expiry.
//
// On a 401 it performs a single-flight refresh: no matter how many requests
// fail concurrently, exactly one refresh call goes out and every waiter
// settles with its outcome. Each failed request is replayed at most once with
// the rotated token; the replay's result is returned verbatim, so a request
// that keeps getting 401s propagates the error instead of looping.
//
// Requests to the login endpoint never engage refresh: their 401s are
// terminal rejections the UI must see unmodified.
type authTransport struct {
	base    http.RoundTripper
	creds   *Credentials
	refresh refreshFunc

	// skipPaths lists request paths whose 401s must pass through untouched
	// (login, and the refresh endpoint itself).
	skipPaths map[string]struct{}

	// onSessionLost fires once per failed refresh flight, after the
	// credentials have been cleared.
	onSessionLost func()

	group singleflight.Group
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	stale := t.creds.Get()

	out := req.Clone(req.Context())
	if stale != "" {
		out.Header.Set(common.AuthorizationHeader, common.BearerPrefix+stale)
	}

	resp, err := t.base.RoundTrip(out)
	if err != nil || resp.StatusCode != http.StatusUnauthorized {
		return resp, err
	}
	if _, skip := t.skipPaths[req.URL.Path]; skip {
		return resp, nil
	}
	if req.Body != nil && req.GetBody == nil {
		// Cannot rewind the body for a replay; surface the 401 as-is.
		return resp, nil
	}

	token, ferr := t.refreshedToken(req.Context(), stale)
	if ferr != nil {
		drain(resp)
		return nil, ferr
	}

	drain(resp)
	return t.replay(req, token)
}

// refreshedToken returns a token newer than stale, refreshing at most once
// system-wide per burst of concurrent failures. Callers that arrive while a
// refresh is in flight block and share its outcome; callers whose stale token
// was already superseded reuse the rotated one without a network call.
func (t *authTransport) refreshedToken(ctx context.Context, stale string) (string, error) {
	v, err, _ := t.group.Do("refresh", func() (any, error) {
		if cur := t.creds.Get(); cur != "" && cur != stale {
			return cur, nil
		}

		// Detached from the triggering request: one cancelled caller must
		// not fail the flight for everyone queued behind it.
		token, err := t.refresh(context.WithoutCancel(ctx))
		if err != nil {
			t.creds.Clear()
			if t.onSessionLost != nil {
				t.onSessionLost()
			}
			return nil, err
		}
		return token, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (t *authTransport) replay(req *http.Request, token string) (*http.Response, error) {
	retry := req.Clone(req.Context())
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, err
		}
		retry.Body = body
	}
	retry.Header.Set(common.AuthorizationHeader, common.BearerPrefix+token)
	return t.base.RoundTrip(retry)
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	_ = resp.Body.Close()
}
