package api

import "strings"

// CreateSessionRequest starts a new demo session for a repository. Clients
// may send the address under either key; repo_url wins when both are set.
type CreateSessionRequest struct {
	RepoURL   string `json:"repo_url,omitempty"`
	GitHubURL string `json:"github_url,omitempty"`
}

// RepositoryURL returns whichever repository address the client supplied.
func (r CreateSessionRequest) RepositoryURL() string {
	if url := strings.TrimSpace(r.RepoURL); url != "" {
		return url
	}
	return strings.TrimSpace(r.GitHubURL)
}

// SessionResponse is the transport shape of a session.
type SessionResponse struct {
	ID            string           `json:"session_id"`
	RepositoryURL string           `json:"github_url"`
	ProjectName   string           `json:"project_name,omitempty"`
	Owner         string           `json:"owner,omitempty"`
	Status        string           `json:"status"`
	ErrorMessage  string           `json:"error_message,omitempty"`
	Progress      ProgressView     `json:"progress"`
	Suggestions   []SuggestionView `json:"suggestions,omitempty"`
	Uploads       []UploadView     `json:"uploaded_videos,omitempty"`
	DemoURL       string           `json:"demo_url,omitempty"`
	ThumbnailKey  string           `json:"thumbnail_key,omitempty"`
	Artifacts     []ArtifactView   `json:"final_artifacts,omitempty"`
	CreatedAt     string           `json:"created_at"`
	UpdatedAt     string           `json:"updated_at"`
	ExpiresAt     string           `json:"expires_at"`
}

// ProgressView is the projected completion state reported to clients.
type ProgressView struct {
	Percentage float64 `json:"percentage"`
	Uploaded   int     `json:"uploaded"`
	Total      int     `json:"total"`
	Message    string  `json:"message"`
}

// SuggestionView is one proposed demo video segment.
type SuggestionView struct {
	Sequence        int      `json:"sequence_number"`
	Title           string   `json:"title"`
	Description     string   `json:"description,omitempty"`
	DurationSeconds int      `json:"duration_seconds"`
	NarrationScript string   `json:"narration_script,omitempty"`
	RecordingSteps  []string `json:"what_to_record,omitempty"`
	Highlights      []string `json:"key_highlights,omitempty"`
}

// UploadView reports the processing state of one uploaded recording.
type UploadView struct {
	Sequence   int      `json:"sequence_number"`
	State      string   `json:"status"`
	ObjectKey  string   `json:"object_key"`
	Errors     []string `json:"validation_errors,omitempty"`
	Warnings   []string `json:"validation_warnings,omitempty"`
	UploadedAt string   `json:"uploaded_at"`
}

// ArtifactView is one final per-resolution output.
type ArtifactView struct {
	Resolution string `json:"resolution"`
	ObjectKey  string `json:"object_key"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	SizeBytes  int64  `json:"size_bytes"`
}

// SessionListResponse wraps a collection of sessions.
type SessionListResponse struct {
	Sessions []SessionResponse `json:"sessions"`
}

// HealthResponse reports service liveness.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}

// ErrorResponse is the uniform error envelope. Error carries the
// classification token, Message the human-readable detail.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
