package api

import (
	"sort"
	"time"

	"demoforge/internal/session"
)

const timestampFormat = time.RFC3339

// FromSession maps a session aggregate and its progress projection to the
// transport shape.
func FromSession(s *session.Session, progress session.Progress) SessionResponse {
	resp := SessionResponse{
		ID:            s.ID,
		RepositoryURL: s.RepositoryURL,
		ProjectName:   s.ProjectName,
		Owner:         s.Owner,
		Status:        string(s.Status),
		ErrorMessage:  s.ErrorMessage,
		Progress: ProgressView{
			Percentage: progress.Percentage,
			Uploaded:   progress.Uploaded,
			Total:      progress.Total,
			Message:    progress.Message,
		},
		DemoURL:      s.DemoURL,
		ThumbnailKey: s.ThumbnailKey,
		CreatedAt:    formatTime(s.CreatedAt),
		UpdatedAt:    formatTime(s.UpdatedAt),
		ExpiresAt:    formatTime(s.ExpiresAt),
	}
	for _, suggestion := range s.Suggestions {
		resp.Suggestions = append(resp.Suggestions, SuggestionView{
			Sequence:        suggestion.Sequence,
			Title:           suggestion.Title,
			Description:     suggestion.Description,
			DurationSeconds: suggestion.DurationSeconds,
			NarrationScript: suggestion.NarrationScript,
			RecordingSteps:  suggestion.RecordingSteps,
			Highlights:      suggestion.Highlights,
		})
	}
	resp.Uploads = uploadViews(s)
	for _, artifact := range s.FinalArtifacts {
		resp.Artifacts = append(resp.Artifacts, ArtifactView{
			Resolution: artifact.Resolution,
			ObjectKey:  artifact.ObjectKey,
			Width:      artifact.Width,
			Height:     artifact.Height,
			SizeBytes:  artifact.SizeBytes,
		})
	}
	return resp
}

// uploadViews flattens the upload map into sequence order.
func uploadViews(s *session.Session) []UploadView {
	if len(s.Uploads) == 0 {
		return nil
	}
	views := make([]UploadView, 0, len(s.Uploads))
	for _, record := range s.Uploads {
		if record == nil {
			continue
		}
		view := UploadView{
			Sequence:   record.Sequence,
			State:      string(record.State),
			ObjectKey:  record.ObjectKey,
			UploadedAt: formatTime(record.UploadedAt),
		}
		if record.Validation != nil {
			view.Errors = record.Validation.Errors
			view.Warnings = record.Validation.Warnings
		}
		views = append(views, view)
	}
	sort.Slice(views, func(i, j int) bool { return views[i].Sequence < views[j].Sequence })
	return views
}

// FromSessions maps a list of sessions, projecting progress for each.
func FromSessions(sessions []*session.Session) SessionListResponse {
	resp := SessionListResponse{Sessions: make([]SessionResponse, 0, len(sessions))}
	for _, s := range sessions {
		resp.Sessions = append(resp.Sessions, FromSession(s, session.Project(s)))
	}
	return resp
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timestampFormat)
}
