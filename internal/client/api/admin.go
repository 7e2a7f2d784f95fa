package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/opscore/cmdcenter/internal/client/models"
)

// Admin-domain operations, one method per console action. These are thin
// bindings over the backend contract; all auth concerns are handled by the
// transport underneath.

// --- ingestion (airlock) ---

func (c *Client) ListArtifacts(ctx context.Context) ([]models.Artifact, error) {
	var out []models.Artifact
	err := c.do(ctx, http.MethodGet, "/ingestion/artifacts", nil, &out)
	return out, err
}

func (c *Client) ApproveArtifacts(ctx context.Context, artifactIDs []string) error {
	body := struct {
		ArtifactIDs []string `json:"artifact_ids"`
	}{ArtifactIDs: artifactIDs}
	return c.do(ctx, http.MethodPost, "/ingestion/approve-batch", body, nil)
}

func (c *Client) TriggerDirtyIngestion(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/ingestion/apply-dirty", struct{}{}, nil)
}

func (c *Client) IngestionStatus(ctx context.Context) (*models.IngestionStatus, error) {
	var out models.IngestionStatus
	if err := c.do(ctx, http.MethodGet, "/ingestion/status", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// --- identity triage ---

func (c *Client) ListCandidates(ctx context.Context) ([]models.Candidate, error) {
	var out []models.Candidate
	err := c.do(ctx, http.MethodGet, "/identity/candidates", nil, &out)
	return out, err
}

func (c *Client) LinkCandidates(ctx context.Context, candidateIDs []int64, targetRegistryUUID, userEmail string) error {
	body := struct {
		CandidateIDs       []int64 `json:"candidate_ids"`
		TargetRegistryUUID string  `json:"target_registry_uuid"`
		UserEmail          string  `json:"user_email"`
	}{candidateIDs, targetRegistryUUID, userEmail}
	return c.do(ctx, http.MethodPost, "/identity/link", body, nil)
}

func (c *Client) PromoteNewCollege(ctx context.Context, candidateIDs []int64, officialName, userEmail string) error {
	body := struct {
		CandidateIDs []int64 `json:"candidate_ids"`
		OfficialName string  `json:"official_name"`
		UserEmail    string  `json:"user_email"`
	}{candidateIDs, officialName, userEmail}
	return c.do(ctx, http.MethodPost, "/identity/promote-new", body, nil)
}

// --- registry ---

func (c *Client) ListRegistry(ctx context.Context) ([]models.RegistryCollege, error) {
	var out []models.RegistryCollege
	err := c.do(ctx, http.MethodGet, "/registry/colleges", nil, &out)
	return out, err
}

func (c *Client) PromoteAlias(ctx context.Context, collegeID, aliasText string) error {
	body := struct {
		CollegeID string `json:"college_id"`
		AliasText string `json:"alias_text"`
	}{collegeID, aliasText}
	return c.do(ctx, http.MethodPost, "/registry/promote-alias", body, nil)
}

// --- configuration ---

func (c *Client) DashboardStats(ctx context.Context) (*models.DashboardStats, error) {
	var out models.DashboardStats
	if err := c.do(ctx, http.MethodGet, "/config/dashboard-stats", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListExamConfigs(ctx context.Context) ([]models.ExamConfig, error) {
	var out []models.ExamConfig
	err := c.do(ctx, http.MethodGet, "/config/exams", nil, &out)
	return out, err
}

func (c *Client) UpdateExamMode(ctx context.Context, examCode, mode string) error {
	body := struct {
		IngestionMode string `json:"ingestion_mode"`
	}{IngestionMode: mode}
	return c.do(ctx, http.MethodPatch, "/config/exams/"+url.PathEscape(examCode)+"/mode", body, nil)
}

// --- seat policy ---

func (c *Client) ListSeatViolations(ctx context.Context, skip, limit int) ([]models.SeatPolicyViolation, error) {
	var out []models.SeatPolicyViolation
	path := fmt.Sprintf("/admin/triage/seat-policy/pending?skip=%d&limit=%d", skip, limit)
	err := c.do(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

func (c *Client) PromoteSeatBucket(ctx context.Context, violationID string) error {
	return c.do(ctx, http.MethodPost, "/admin/triage/seat-policy/"+url.PathEscape(violationID)+"/promote", nil, nil)
}

func (c *Client) IgnoreSeatBucket(ctx context.Context, violationID string) error {
	return c.do(ctx, http.MethodPost, "/admin/triage/seat-policy/"+url.PathEscape(violationID)+"/ignore", nil, nil)
}

// --- admin accounts (SUPERADMIN) ---

// AdminCreate is the payload for creating an administrator account.
type AdminCreate struct {
	Username string      `json:"username"`
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Role     models.Role `json:"role"`
}

// AdminUpdate patches an administrator account; nil fields are left alone.
type AdminUpdate struct {
	Role     *models.Role `json:"role,omitempty"`
	IsActive *bool        `json:"is_active,omitempty"`
	Password *string      `json:"password,omitempty"`
}

func (c *Client) ListAdmins(ctx context.Context) ([]models.AdminAccount, error) {
	var out []models.AdminAccount
	err := c.do(ctx, http.MethodGet, "/admin/users", nil, &out)
	return out, err
}

func (c *Client) CreateAdmin(ctx context.Context, in AdminCreate) (*models.AdminAccount, error) {
	var out models.AdminAccount
	if err := c.do(ctx, http.MethodPost, "/admin/users", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateAdmin(ctx context.Context, adminID string, in AdminUpdate) (*models.AdminAccount, error) {
	var out models.AdminAccount
	if err := c.do(ctx, http.MethodPatch, "/admin/users/"+url.PathEscape(adminID), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteAdmin(ctx context.Context, adminID string) error {
	return c.do(ctx, http.MethodDelete, "/admin/users/"+url.PathEscape(adminID), nil, nil)
}

// --- audit trail ---

func (c *Client) ListAuditEvents(ctx context.Context, limit int) ([]models.AuditEvent, error) {
	var out []models.AuditEvent
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/admin/audit?limit=%d", limit), nil, &out)
	return out, err
}
