package models

// Artifact is a source document sitting in the ingestion airlock.
type Artifact struct {
	ID                   string `json:"id"`
	PDFPath              string `json:"pdf_path"`
	ExamCode             string `json:"exam_code"`
	Year                 int    `json:"year"`
	RoundName            string `json:"round_name"`
	RoundNumber          int    `json:"round_number,omitempty"`
	Status               string `json:"status"`
	RequiresReprocessing bool   `json:"requires_reprocessing"`
	CreatedAt            string `json:"created_at"`
	ReviewNotes          string `json:"review_notes,omitempty"`
}

// Candidate is an unresolved institution name flagged during ingestion.
type Candidate struct {
	CandidateID    int64  `json:"candidate_id"`
	RawName        string `json:"raw_name"`
	SourceDocument string `json:"source_document"`
	ReasonFlagged  string `json:"reason_flagged"`
	Status         string `json:"status"`
	IngestionRunID string `json:"ingestion_run_id"`
}

// RegistryCollege is a canonical institution record.
type RegistryCollege struct {
	CollegeID     string   `json:"college_id"`
	CanonicalName string   `json:"canonical_name"`
	StateCode     string   `json:"state_code"`
	Aliases       []string `json:"aliases"`
}

// DashboardStats summarizes pending work across the console's domains.
type DashboardStats struct {
	AirlockPending    int `json:"airlock_pending"`
	TriagePending     int `json:"triage_pending"`
	RegistryTotal     int `json:"registry_total"`
	SeatPolicyPending int `json:"seat_policy_pending"`
}

// Ingestion modes for an exam feed.
const (
	IngestionModeBootstrap  = "BOOTSTRAP"
	IngestionModeContinuous = "CONTINUOUS"
)

// ExamConfig is the per-exam ingestion switchboard entry.
type ExamConfig struct {
	ExamCode      string `json:"exam_code"`
	IsActive      bool   `json:"is_active"`
	IngestionMode string `json:"ingestion_mode"`
	LastUpdated   string `json:"last_updated"`
}

// SeatPolicyViolation is a seat-bucket row that failed policy validation.
type SeatPolicyViolation struct {
	ID             string         `json:"id"`
	ExamCode       string         `json:"exam_code"`
	SeatBucketCode string         `json:"seat_bucket_code"`
	ViolationType  string         `json:"violation_type"`
	SourceYear     int            `json:"source_year"`
	SourceRound    *int           `json:"source_round"`
	SourceFile     string         `json:"source_file,omitempty"`
	RawRow         map[string]any `json:"raw_row"`
	Status         string         `json:"status"`
	CreatedAt      string         `json:"created_at"`
}

// AdminAccount is an administrator record as managed on the users page.
type AdminAccount struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
	IsActive bool   `json:"is_active"`
}

// AuditEvent is one entry of the administrative audit trail.
type AuditEvent struct {
	ID        string         `json:"id"`
	AdminID   string         `json:"admin_id"`
	Action    string         `json:"action"`
	Details   map[string]any `json:"details"`
	CreatedAt string         `json:"created_at"`
}

// IngestionStatus reports whether a pipeline run is currently active.
type IngestionStatus struct {
	IsIngesting bool `json:"is_ingesting"`
}
