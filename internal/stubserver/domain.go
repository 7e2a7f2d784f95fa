package stubserver

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/opscore/cmdcenter/internal/client/models"
)

// domainStore carries the canned domain data the stub serves. Mutations
// adjust it just enough for the console to observe state changes; no real
// pipeline logic runs here.
type domainStore struct {
	mu          sync.Mutex
	artifacts   []models.Artifact
	candidates  []models.Candidate
	registry    []models.RegistryCollege
	exams       []models.ExamConfig
	violations  []models.SeatPolicyViolation
	auditEvents []models.AuditEvent
	isIngesting bool
}

func newDomainStore() *domainStore {
	return &domainStore{
		artifacts: []models.Artifact{
			{ID: "art-1", PDFPath: "raw/neet_2024_r1.pdf", ExamCode: "NEET", Year: 2024, RoundName: "Round 1", Status: "PENDING_REVIEW", CreatedAt: "2024-07-01T10:00:00Z"},
			{ID: "art-2", PDFPath: "raw/jee_2024_r2.pdf", ExamCode: "JEE", Year: 2024, RoundName: "Round 2", Status: "PENDING_REVIEW", CreatedAt: "2024-07-02T09:30:00Z"},
		},
		candidates: []models.Candidate{
			{CandidateID: 101, RawName: "Govt. Medical College, Pune", SourceDocument: "raw/neet_2024_r1.pdf", ReasonFlagged: "NO_MATCH", Status: "PENDING", IngestionRunID: "run-7"},
			{CandidateID: 102, RawName: "GMC Pune", SourceDocument: "raw/neet_2024_r1.pdf", ReasonFlagged: "AMBIGUOUS", Status: "PENDING", IngestionRunID: "run-7"},
		},
		registry: []models.RegistryCollege{
			{CollegeID: "col-1", CanonicalName: "Government Medical College Pune", StateCode: "MH", Aliases: []string{"GMC Pune"}},
			{CollegeID: "col-2", CanonicalName: "All India Institute of Medical Sciences Delhi", StateCode: "DL", Aliases: nil},
		},
		exams: []models.ExamConfig{
			{ExamCode: "NEET", IsActive: true, IngestionMode: models.IngestionModeBootstrap, LastUpdated: "2024-06-15T00:00:00Z"},
			{ExamCode: "JEE", IsActive: true, IngestionMode: models.IngestionModeContinuous, LastUpdated: "2024-06-20T00:00:00Z"},
		},
		violations: []models.SeatPolicyViolation{
			{ID: "vio-1", ExamCode: "NEET", SeatBucketCode: "GEN-EWS-PwD", ViolationType: "UNKNOWN_BUCKET", SourceYear: 2024, Status: "PENDING", CreatedAt: "2024-07-03T12:00:00Z", RawRow: map[string]any{"seat_type": "GEN-EWS-PwD"}},
		},
	}
}

func (s *Server) audit(adminID, action string, details map[string]any) {
	s.domain.mu.Lock()
	defer s.domain.mu.Unlock()
	s.domain.auditEvents = append(s.domain.auditEvents, models.AuditEvent{
		ID:        uuid.NewString(),
		AdminID:   adminID,
		Action:    action,
		Details:   details,
		CreatedAt: s.now().UTC().Format(time.RFC3339),
	})
}

// --- ingestion ---

func (s *Server) handleListArtifacts(w http.ResponseWriter, r *http.Request) {
	s.domain.mu.Lock()
	defer s.domain.mu.Unlock()
	writeJSON(w, http.StatusOK, s.domain.artifacts)
}

func (s *Server) handleIngestionStatus(w http.ResponseWriter, r *http.Request) {
	s.domain.mu.Lock()
	defer s.domain.mu.Unlock()
	writeJSON(w, http.StatusOK, models.IngestionStatus{IsIngesting: s.domain.isIngesting})
}

func (s *Server) handleApproveBatch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ArtifactIDs []string `json:"artifact_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.ArtifactIDs) == 0 {
		writeDetail(w, http.StatusBadRequest, "artifact_ids required.")
		return
	}

	approved := make(map[string]struct{}, len(req.ArtifactIDs))
	for _, id := range req.ArtifactIDs {
		approved[id] = struct{}{}
	}

	s.domain.mu.Lock()
	for i := range s.domain.artifacts {
		if _, ok := approved[s.domain.artifacts[i].ID]; ok {
			s.domain.artifacts[i].Status = "APPROVED"
		}
	}
	s.domain.mu.Unlock()

	s.audit(accountFrom(r.Context()).ID, "approve_batch", map[string]any{"artifact_ids": req.ArtifactIDs})
	writeJSON(w, http.StatusOK, map[string]int{"approved": len(req.ArtifactIDs)})
}

func (s *Server) handleApplyDirty(w http.ResponseWriter, r *http.Request) {
	s.domain.mu.Lock()
	s.domain.isIngesting = true
	s.domain.mu.Unlock()
	s.audit(accountFrom(r.Context()).ID, "apply_dirty", nil)
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "started"})
}

// --- identity triage ---

func (s *Server) handleListCandidates(w http.ResponseWriter, r *http.Request) {
	s.domain.mu.Lock()
	defer s.domain.mu.Unlock()
	pending := make([]models.Candidate, 0, len(s.domain.candidates))
	for _, c := range s.domain.candidates {
		if c.Status == "PENDING" {
			pending = append(pending, c)
		}
	}
	writeJSON(w, http.StatusOK, pending)
}

func (s *Server) resolveCandidates(ids []int64, status string) int {
	s.domain.mu.Lock()
	defer s.domain.mu.Unlock()
	resolved := 0
	for _, id := range ids {
		for i := range s.domain.candidates {
			if s.domain.candidates[i].CandidateID == id {
				s.domain.candidates[i].Status = status
				resolved++
			}
		}
	}
	return resolved
}

func (s *Server) handleLinkCandidates(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CandidateIDs       []int64 `json:"candidate_ids"`
		TargetRegistryUUID string  `json:"target_registry_uuid"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.CandidateIDs) == 0 || req.TargetRegistryUUID == "" {
		writeDetail(w, http.StatusBadRequest, "candidate_ids and target_registry_uuid required.")
		return
	}
	n := s.resolveCandidates(req.CandidateIDs, "LINKED")
	s.audit(accountFrom(r.Context()).ID, "link_candidates", map[string]any{"target": req.TargetRegistryUUID})
	writeJSON(w, http.StatusOK, map[string]int{"linked": n})
}

func (s *Server) handlePromoteNewCollege(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CandidateIDs []int64 `json:"candidate_ids"`
		OfficialName string  `json:"official_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.CandidateIDs) == 0 || req.OfficialName == "" {
		writeDetail(w, http.StatusBadRequest, "candidate_ids and official_name required.")
		return
	}

	s.resolveCandidates(req.CandidateIDs, "PROMOTED")
	s.domain.mu.Lock()
	s.domain.registry = append(s.domain.registry, models.RegistryCollege{
		CollegeID:     uuid.NewString(),
		CanonicalName: req.OfficialName,
	})
	s.domain.mu.Unlock()

	s.audit(accountFrom(r.Context()).ID, "promote_new_college", map[string]any{"official_name": req.OfficialName})
	writeJSON(w, http.StatusCreated, map[string]string{"status": "created"})
}

// --- registry ---

func (s *Server) handleListRegistry(w http.ResponseWriter, r *http.Request) {
	s.domain.mu.Lock()
	defer s.domain.mu.Unlock()
	writeJSON(w, http.StatusOK, s.domain.registry)
}

func (s *Server) handlePromoteAlias(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CollegeID string `json:"college_id"`
		AliasText string `json:"alias_text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.CollegeID == "" || req.AliasText == "" {
		writeDetail(w, http.StatusBadRequest, "college_id and alias_text required.")
		return
	}

	s.domain.mu.Lock()
	found := false
	for i := range s.domain.registry {
		if s.domain.registry[i].CollegeID == req.CollegeID {
			old := s.domain.registry[i].CanonicalName
			s.domain.registry[i].CanonicalName = req.AliasText
			s.domain.registry[i].Aliases = append(s.domain.registry[i].Aliases, old)
			found = true
			break
		}
	}
	s.domain.mu.Unlock()

	if !found {
		writeDetail(w, http.StatusNotFound, "College not found.")
		return
	}
	s.audit(accountFrom(r.Context()).ID, "promote_alias", map[string]any{"college_id": req.CollegeID})
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// --- configuration ---

func (s *Server) handleDashboardStats(w http.ResponseWriter, r *http.Request) {
	s.domain.mu.Lock()
	defer s.domain.mu.Unlock()

	stats := models.DashboardStats{RegistryTotal: len(s.domain.registry)}
	for _, a := range s.domain.artifacts {
		if a.Status == "PENDING_REVIEW" {
			stats.AirlockPending++
		}
	}
	for _, c := range s.domain.candidates {
		if c.Status == "PENDING" {
			stats.TriagePending++
		}
	}
	for _, v := range s.domain.violations {
		if v.Status == "PENDING" {
			stats.SeatPolicyPending++
		}
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleListExams(w http.ResponseWriter, r *http.Request) {
	s.domain.mu.Lock()
	defer s.domain.mu.Unlock()
	writeJSON(w, http.StatusOK, s.domain.exams)
}

func (s *Server) handleUpdateExamMode(w http.ResponseWriter, r *http.Request) {
	examCode := chi.URLParam(r, "examCode")
	var req struct {
		IngestionMode string `json:"ingestion_mode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "Malformed request body.")
		return
	}
	mode := strings.ToUpper(req.IngestionMode)
	if mode != models.IngestionModeBootstrap && mode != models.IngestionModeContinuous {
		writeDetail(w, http.StatusBadRequest, "ingestion_mode must be BOOTSTRAP or CONTINUOUS.")
		return
	}

	s.domain.mu.Lock()
	found := false
	for i := range s.domain.exams {
		if s.domain.exams[i].ExamCode == examCode {
			s.domain.exams[i].IngestionMode = mode
			s.domain.exams[i].LastUpdated = s.now().UTC().Format(time.RFC3339)
			found = true
			break
		}
	}
	s.domain.mu.Unlock()

	if !found {
		writeDetail(w, http.StatusNotFound, "Exam not found.")
		return
	}
	s.audit(accountFrom(r.Context()).ID, "update_exam_mode", map[string]any{"exam_code": examCode, "mode": mode})
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// --- seat policy ---

func (s *Server) handleListSeatViolations(w http.ResponseWriter, r *http.Request) {
	skip, _ := strconv.Atoi(r.URL.Query().Get("skip"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = 20
	}

	s.domain.mu.Lock()
	defer s.domain.mu.Unlock()
	pending := make([]models.SeatPolicyViolation, 0, len(s.domain.violations))
	for _, v := range s.domain.violations {
		if v.Status == "PENDING" {
			pending = append(pending, v)
		}
	}
	if skip >= len(pending) {
		writeJSON(w, http.StatusOK, []models.SeatPolicyViolation{})
		return
	}
	end := skip + limit
	if end > len(pending) {
		end = len(pending)
	}
	writeJSON(w, http.StatusOK, pending[skip:end])
}

func (s *Server) resolveViolation(w http.ResponseWriter, r *http.Request, status, action string) {
	id := chi.URLParam(r, "violationID")

	s.domain.mu.Lock()
	found := false
	for i := range s.domain.violations {
		if s.domain.violations[i].ID == id {
			s.domain.violations[i].Status = status
			found = true
			break
		}
	}
	s.domain.mu.Unlock()

	if !found {
		writeDetail(w, http.StatusNotFound, "Violation not found.")
		return
	}
	s.audit(accountFrom(r.Context()).ID, action, map[string]any{"violation_id": id})
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSeatPromote(w http.ResponseWriter, r *http.Request) {
	s.resolveViolation(w, r, "PROMOTED", "seat_bucket_promote")
}

func (s *Server) handleSeatIgnore(w http.ResponseWriter, r *http.Request) {
	s.resolveViolation(w, r, "IGNORED", "seat_bucket_ignore")
}

// --- admin accounts ---

func adminView(a *account) models.AdminAccount {
	return models.AdminAccount{
		ID:       a.ID,
		Username: a.Username,
		Email:    a.Email,
		Role:     a.Role,
		IsActive: a.IsActive,
	}
}

func (s *Server) handleListAdmins(w http.ResponseWriter, r *http.Request) {
	accounts := s.accounts.list()
	out := make([]models.AdminAccount, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, adminView(a))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateAdmin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Username == "" || req.Password == "" {
		writeDetail(w, http.StatusBadRequest, "username and password required.")
		return
	}
	role, err := models.ParseRole(req.Role)
	if err != nil {
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	}

	acct, err := s.accounts.add(req.Username, req.Email, req.Password, role)
	if err != nil {
		writeDetail(w, http.StatusConflict, err.Error())
		return
	}
	s.audit(accountFrom(r.Context()).ID, "create_admin", map[string]any{"username": req.Username})
	writeJSON(w, http.StatusCreated, adminView(acct))
}

func (s *Server) handleUpdateAdmin(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "adminID")
	var req struct {
		Role     *string `json:"role"`
		IsActive *bool   `json:"is_active"`
		Password *string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "Malformed request body.")
		return
	}

	var role *models.Role
	if req.Role != nil {
		parsed, err := models.ParseRole(*req.Role)
		if err != nil {
			writeDetail(w, http.StatusBadRequest, err.Error())
			return
		}
		role = &parsed
	}

	acct, ok := s.accounts.update(id, role, req.IsActive)
	if !ok {
		writeDetail(w, http.StatusNotFound, "Account not found.")
		return
	}
	if req.Password != nil {
		if err := s.accounts.setPassword(id, *req.Password); err != nil {
			writeDetail(w, http.StatusInternalServerError, err.Error())
			return
		}
	}

	s.audit(accountFrom(r.Context()).ID, "update_admin", map[string]any{"admin_id": id})
	writeJSON(w, http.StatusOK, adminView(acct))
}

func (s *Server) handleDeleteAdmin(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "adminID")
	if id == accountFrom(r.Context()).ID {
		writeDetail(w, http.StatusBadRequest, "Cannot delete your own account.")
		return
	}
	if !s.accounts.delete(id) {
		writeDetail(w, http.StatusNotFound, "Account not found.")
		return
	}
	s.audit(accountFrom(r.Context()).ID, "delete_admin", map[string]any{"admin_id": id})
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// --- audit ---

func (s *Server) handleListAudit(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = 50
	}

	s.domain.mu.Lock()
	defer s.domain.mu.Unlock()
	events := s.domain.auditEvents
	if len(events) > limit {
		events = events[len(events)-limit:]
	}
	// Newest first.
	out := make([]models.AuditEvent, 0, len(events))
	for i := len(events) - 1; i >= 0; i-- {
		out = append(out, events[i])
	}
	writeJSON(w, http.StatusOK, out)
}
