// Package stubserver is a self-contained stand-in for the real backend. It
// implements the authentication contract faithfully (lockout policy, refresh
// cookie, fingerprint invalidation) and serves canned domain data, so the
// console client can be exercised end to end without the production API.
package stubserver

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/opscore/cmdcenter/internal/client/models"
	"github.com/opscore/cmdcenter/internal/logging"
)

// Server holds the in-memory backend state. Safe for concurrent use.
type Server struct {
	accounts *accountStore
	domain   *domainStore
	secret   []byte
	log      logging.Logger
	now      func() time.Time
}

type ServerOption func(*Server)

// WithClock overrides the time source, used by tests to drive token expiry
// and the lockout window.
func WithClock(now func() time.Time) ServerOption {
	return func(s *Server) {
		s.now = now
		s.accounts.now = now
	}
}

// WithAccount seeds an additional administrator account.
func WithAccount(username, email, password string, role models.Role) ServerOption {
	return func(s *Server) {
		if _, err := s.accounts.add(username, email, password, role); err != nil {
			panic(err)
		}
	}
}

// New builds a stub backend signing tokens with secret. A default superadmin
// account admin/admin123 is always present.
func New(secret []byte, log logging.Logger, opts ...ServerOption) *Server {
	s := &Server{
		secret: secret,
		log:    log,
		now:    time.Now,
	}
	s.accounts = newAccountStore(time.Now)
	s.domain = newDomainStore()

	if _, err := s.accounts.add("admin", "admin@example.com", "admin123", models.RoleSuperadmin); err != nil {
		panic(err)
	}

	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the HTTP routing table.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", s.handleLogin)
		r.Post("/refresh", s.handleRefresh)
		r.With(s.requireAuth).Get("/me", s.handleMe)
		r.With(s.requireAuth).Post("/logout", s.handleLogout)
	})

	r.Group(func(r chi.Router) {
		r.Use(s.requireAuth)

		// Read surface, any authenticated role.
		r.Get("/ingestion/artifacts", s.handleListArtifacts)
		r.Get("/ingestion/status", s.handleIngestionStatus)
		r.Get("/identity/candidates", s.handleListCandidates)
		r.Get("/registry/colleges", s.handleListRegistry)
		r.Get("/config/dashboard-stats", s.handleDashboardStats)
		r.Get("/config/exams", s.handleListExams)
		r.Get("/admin/triage/seat-policy/pending", s.handleListSeatViolations)
		r.Get("/admin/audit", s.handleListAudit)

		// Mutations, EDITOR and above.
		r.Group(func(r chi.Router) {
			r.Use(s.requireRole(models.RoleEditor))
			r.Post("/ingestion/approve-batch", s.handleApproveBatch)
			r.Post("/ingestion/apply-dirty", s.handleApplyDirty)
			r.Post("/identity/link", s.handleLinkCandidates)
			r.Post("/identity/promote-new", s.handlePromoteNewCollege)
			r.Post("/registry/promote-alias", s.handlePromoteAlias)
			r.Patch("/config/exams/{examCode}/mode", s.handleUpdateExamMode)
			r.Post("/admin/triage/seat-policy/{violationID}/promote", s.handleSeatPromote)
			r.Post("/admin/triage/seat-policy/{violationID}/ignore", s.handleSeatIgnore)
		})

		// Account management, SUPERADMIN only.
		r.Route("/admin/users", func(r chi.Router) {
			r.Use(s.requireRole(models.RoleSuperadmin))
			r.Get("/", s.handleListAdmins)
			r.Post("/", s.handleCreateAdmin)
			r.Patch("/{adminID}", s.handleUpdateAdmin)
			r.Delete("/{adminID}", s.handleDeleteAdmin)
		})
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
