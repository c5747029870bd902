package api

import (
	"testing"
	"time"

	"demoforge/internal/session"
)

func TestFromSessionMapsFields(t *testing.T) {
	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s := &session.Session{
		ID:            "sess-1",
		RepositoryURL: "https://github.com/acme/widget",
		ProjectName:   "widget",
		Owner:         "acme",
		Status:        session.StatusUploading,
		Suggestions: []session.Suggestion{
			{Sequence: 1, Title: "Tour", DurationSeconds: 45},
			{Sequence: 2, Title: "Internals", DurationSeconds: 60},
		},
		Uploads: map[int]*session.UploadRecord{
			2: {Sequence: 2, ObjectKey: "uploads/sess-1/2", State: session.UploadStateUploaded, UploadedAt: created},
			1: {
				Sequence:   1,
				ObjectKey:  "uploads/sess-1/1",
				State:      session.UploadStateValidationFailed,
				Validation: &session.ValidationResult{Errors: []string{"too short"}},
				UploadedAt: created,
			},
		},
		CreatedAt: created,
		UpdatedAt: created,
		ExpiresAt: created.AddDate(0, 0, 30),
	}

	resp := FromSession(s, session.Project(s))
	if resp.ID != "sess-1" || resp.Status != "uploading" {
		t.Fatalf("unexpected response %+v", resp)
	}
	if len(resp.Suggestions) != 2 || resp.Suggestions[0].Title != "Tour" {
		t.Fatalf("suggestions = %+v", resp.Suggestions)
	}
	if len(resp.Uploads) != 2 || resp.Uploads[0].Sequence != 1 || resp.Uploads[1].Sequence != 2 {
		t.Fatalf("uploads not in sequence order: %+v", resp.Uploads)
	}
	if resp.Uploads[0].Errors[0] != "too short" {
		t.Fatalf("validation errors not mapped: %+v", resp.Uploads[0])
	}
	if resp.CreatedAt != "2025-06-01T12:00:00Z" {
		t.Fatalf("CreatedAt = %q", resp.CreatedAt)
	}
	if resp.Progress.Total != 2 || resp.Progress.Uploaded != 2 {
		t.Fatalf("progress = %+v", resp.Progress)
	}
}

func TestFromSessionsProjectsEach(t *testing.T) {
	list := FromSessions([]*session.Session{
		{ID: "a", Status: session.StatusCompleted},
		{ID: "b", Status: session.StatusInitialized},
	})
	if len(list.Sessions) != 2 {
		t.Fatalf("sessions = %d", len(list.Sessions))
	}
	if list.Sessions[0].Progress.Percentage != 100 {
		t.Fatalf("completed percentage = %v", list.Sessions[0].Progress.Percentage)
	}
	if list.Sessions[1].Progress.Percentage != 0 {
		t.Fatalf("initialized percentage = %v", list.Sessions[1].Progress.Percentage)
	}
}
