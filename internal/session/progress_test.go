package session_test

import (
	"math"
	"testing"

	"demoforge/internal/session"
)

func TestProjectStatusBands(t *testing.T) {
	cases := []struct {
		status session.Status
		want   float64
	}{
		{session.StatusInitialized, 0},
		{session.StatusGeneratingSuggestions, 10},
		{session.StatusSuggestionsReady, 20},
		{session.StatusUploading, 30},
		{session.StatusStitching, 80},
		{session.StatusStitchingFailed, 80},
		{session.StatusStitched, 90},
		{session.StatusOptimizing, 95},
		{session.StatusOptimizationFailed, 90},
		{session.StatusCompleted, 100},
	}
	for _, tc := range cases {
		t.Run(string(tc.status), func(t *testing.T) {
			s := &session.Session{Status: tc.status}
			got := session.Project(s).Percentage
			if got != tc.want {
				t.Fatalf("Project(%s).Percentage = %v, want %v", tc.status, got, tc.want)
			}
		})
	}
}

func TestProjectUploadingFillsWithConvertedFraction(t *testing.T) {
	s := twoSuggestionSession()
	s.Uploads[1] = &session.UploadRecord{Sequence: 1, State: session.UploadStateUploaded}
	s.Uploads[2] = &session.UploadRecord{Sequence: 2, State: session.UploadStateConverted}

	p := session.Project(s)
	// One of two converted fills half the 30-80 band.
	if math.Abs(p.Percentage-55) > 1e-9 {
		t.Fatalf("percentage = %v, want 55", p.Percentage)
	}
	if p.Uploaded != 2 || p.Total != 2 {
		t.Fatalf("uploaded/total = %d/%d, want 2/2", p.Uploaded, p.Total)
	}
	if p.Message != "Uploaded 2 of 2 videos" {
		t.Fatalf("unexpected message %q", p.Message)
	}
}

func TestProjectStitchingFillsWithProcessedFraction(t *testing.T) {
	s := twoSuggestionSession()
	s.Status = session.StatusStitching
	s.StitchProcessed = 1
	s.StitchTotal = 4

	p := session.Project(s)
	if math.Abs(p.Percentage-82.5) > 1e-9 {
		t.Fatalf("percentage = %v, want 82.5", p.Percentage)
	}
}

func TestProjectFailureMessagesIncludeDetail(t *testing.T) {
	s := &session.Session{Status: session.StatusStitchingFailed, ErrorMessage: "ffmpeg exited 1"}
	p := session.Project(s)
	if p.Message != "Stitching failed: ffmpeg exited 1. Retry the stage to resume." {
		t.Fatalf("unexpected message %q", p.Message)
	}
}

func TestProjectIsPure(t *testing.T) {
	s := twoSuggestionSession()
	before := *s
	_ = session.Project(s)
	if s.Status != before.Status || len(s.Uploads) != len(before.Uploads) {
		t.Fatal("Project must never mutate the session")
	}
}
