package stubserver

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/opscore/cmdcenter/internal/client/models"
	"github.com/opscore/cmdcenter/internal/common"
)

const (
	accessTokenTTL  = 15 * time.Minute
	refreshTokenTTL = 7 * 24 * time.Hour
)

type tokenClaims struct {
	Role        string `json:"role"`
	Fingerprint string `json:"fpr"`
	TokenType   string `json:"typ"`
	jwt.RegisteredClaims
}

func (s *Server) mintToken(a *account, tokenType string, ttl time.Duration) (string, error) {
	now := s.now()
	claims := tokenClaims{
		Role:        string(a.Role),
		Fingerprint: fingerprint(a.PasswordHash),
		TokenType:   tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   a.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *Server) parseToken(raw, wantType string) (*tokenClaims, error) {
	claims := &tokenClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, common.ErrInvalidToken
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, err
	}
	if claims.TokenType != wantType {
		return nil, common.ErrInvalidToken
	}
	return claims, nil
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "Malformed request body.")
		return
	}

	acct, err := s.accounts.authenticate(req.Username, req.Password)
	if err != nil {
		s.log.Warn(r.Context(), "login rejected", "username", req.Username, "detail", err.Error())
		writeDetail(w, http.StatusUnauthorized, err.Error())
		return
	}
	s.log.Info(r.Context(), "login accepted", "username", acct.Username, "role", string(acct.Role))

	access, err := s.mintToken(acct, "access", accessTokenTTL)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "Token signing failed.")
		return
	}
	refresh, err := s.mintToken(acct, "refresh", refreshTokenTTL)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "Token signing failed.")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     common.RefreshCookieName,
		Value:    refresh,
		Path:     "/auth",
		MaxAge:   int(refreshTokenTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	s.audit(acct.ID, "login", nil)
	writeJSON(w, http.StatusOK, map[string]string{"access_token": access})
}

// handleRefresh mints a fresh access token from the refresh cookie. The
// anti-CSRF marker is mandatory, and a fingerprint minted before a password
// change is rejected so stolen refresh tokens die with the old password.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get(common.RequestedWithHeader) != common.RequestedWithValue {
		writeDetail(w, http.StatusUnauthorized, "Missing request marker.")
		return
	}

	cookie, err := r.Cookie(common.RefreshCookieName)
	if err != nil {
		writeDetail(w, http.StatusUnauthorized, "Refresh token missing.")
		return
	}

	claims, err := s.parseToken(cookie.Value, "refresh")
	if err != nil {
		writeDetail(w, http.StatusUnauthorized, "Refresh token invalid or expired.")
		return
	}

	acct, ok := s.accounts.get(claims.Subject)
	if !ok || !acct.IsActive {
		writeDetail(w, http.StatusUnauthorized, "Account unavailable.")
		return
	}
	if claims.Fingerprint != fingerprint(acct.PasswordHash) {
		writeDetail(w, http.StatusUnauthorized, "Session invalidated.")
		return
	}

	access, err := s.mintToken(acct, "access", accessTokenTTL)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "Token signing failed.")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"access_token": access})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	acct := accountFrom(r.Context())
	writeJSON(w, http.StatusOK, map[string]string{
		"id":       acct.ID,
		"username": acct.Username,
		"email":    acct.Email,
		"role":     string(acct.Role),
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     common.RefreshCookieName,
		Value:    "",
		Path:     "/auth",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	if acct := accountFrom(r.Context()); acct != nil {
		s.audit(acct.ID, "logout", nil)
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type ctxKey int

const accountKey ctxKey = 0

func accountFrom(ctx context.Context) *account {
	a, _ := ctx.Value(accountKey).(*account)
	return a
}

// requireAuth verifies the bearer access token and loads the account into the
// request context.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := strings.CutPrefix(r.Header.Get(common.AuthorizationHeader), common.BearerPrefix)
		if !ok || raw == "" {
			writeDetail(w, http.StatusUnauthorized, "Not authenticated.")
			return
		}
		claims, err := s.parseToken(raw, "access")
		if err != nil {
			writeDetail(w, http.StatusUnauthorized, "Token invalid or expired.")
			return
		}
		acct, ok := s.accounts.get(claims.Subject)
		if !ok || !acct.IsActive {
			writeDetail(w, http.StatusUnauthorized, "Account unavailable.")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), accountKey, acct)))
	})
}

// requireRole gates a subtree on the role hierarchy. 403 carries the same
// structured detail shape as every other rejection.
func (s *Server) requireRole(required models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			acct := accountFrom(r.Context())
			if acct == nil || !acct.Role.AtLeast(required) {
				writeDetail(w, http.StatusForbidden, "Insufficient privileges.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
