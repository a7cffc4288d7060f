package api

import (
	"time"

	"recall/internal/jobs"
	"recall/internal/workflow"
)

// uploadDateFormat renders memory upload times for clients.
const uploadDateFormat = "2006-01-02 15:04"

// UploadResponse acknowledges an accepted upload.
type UploadResponse struct {
	Message   string `json:"message"`
	JobID     string `json:"job_id"`
	Filename  string `json:"filename"`
	StatusURL string `json:"status_url"`
}

// StatusResponse reports job progress.
type StatusResponse struct {
	State     jobs.State `json:"state"`
	Progress  int        `json:"progress"`
	Message   string     `json:"message"`
	MemoryID  string     `json:"memory_id,omitempty"`
	UpdatedAt string     `json:"updated_at,omitempty"`
}

// MemoryView is the client representation of a stored memory.
type MemoryView struct {
	ID                   string   `json:"id"`
	Filename             string   `json:"filename"`
	Transcript           string   `json:"transcript"`
	TranslatedTranscript string   `json:"translated_transcript"`
	DetectedLanguage     string   `json:"detected_language"`
	Summary              string   `json:"summary"`
	Keyframes            []string `json:"keyframes"`
	UploadDate           string   `json:"upload_date"`
	DurationSeconds      float64  `json:"duration"`
	TranscriptDegraded   bool     `json:"transcript_degraded"`
	SummaryDegraded      bool     `json:"summary_degraded"`
	Relevance            *float64 `json:"relevance,omitempty"`
}

// MessageResponse carries a human-readable confirmation.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

// DependencyStatus captures availability of an external dependency.
type DependencyStatus struct {
	Name        string `json:"name"`
	Command     string `json:"command"`
	Description string `json:"description"`
	Optional    bool   `json:"optional"`
	Available   bool   `json:"available"`
	Path        string `json:"path,omitempty"`
	Detail      string `json:"detail,omitempty"`
}

// StageHealth mirrors readiness reporting for pipeline stages.
type StageHealth struct {
	Name   string `json:"name"`
	Ready  bool   `json:"ready"`
	Detail string `json:"detail,omitempty"`
}

// HealthResponse aggregates daemon runtime information.
type HealthResponse struct {
	Status         string             `json:"status"`
	Timestamp      string             `json:"timestamp"`
	PID            int                `json:"pid,omitempty"`
	DatabasePath   string             `json:"database_path,omitempty"`
	IndexAvailable bool               `json:"index_available"`
	Pool           workflow.Stats     `json:"pool"`
	Jobs           map[string]int     `json:"jobs"`
	Stages         []StageHealth      `json:"stages"`
	Dependencies   []DependencyStatus `json:"dependencies"`
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
