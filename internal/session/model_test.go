package session_test

import (
	"testing"
	"time"

	"demoforge/internal/session"
)

func twoSuggestionSession() *session.Session {
	return &session.Session{
		ID:     "sess-1",
		Status: session.StatusUploading,
		Suggestions: []session.Suggestion{
			{Sequence: 1, Title: "Introduction"},
			{Sequence: 2, Title: "Deep Dive"},
		},
		Uploads: map[int]*session.UploadRecord{},
	}
}

func TestAllConvertedRequiresEverySuggestion(t *testing.T) {
	s := twoSuggestionSession()
	if s.AllConverted() {
		t.Fatal("no uploads yet, AllConverted should be false")
	}

	s.Uploads[2] = &session.UploadRecord{
		Sequence:   2,
		State:      session.UploadStateConverted,
		Conversion: &session.ConversionResult{ObjectKey: "converted/sess-1/2.mp4"},
	}
	if s.AllConverted() {
		t.Fatal("one of two converted, AllConverted should be false")
	}

	s.Uploads[1] = &session.UploadRecord{Sequence: 1, State: session.UploadStateValidated}
	if s.AllConverted() {
		t.Fatal("validated is not converted")
	}

	s.Uploads[1].State = session.UploadStateConverted
	s.Uploads[1].Conversion = &session.ConversionResult{ObjectKey: "converted/sess-1/1.mp4"}
	if !s.AllConverted() {
		t.Fatal("both converted, AllConverted should be true")
	}
}

func TestAllConvertedFalseWithoutSuggestions(t *testing.T) {
	s := &session.Session{Status: session.StatusUploading}
	if s.AllConverted() {
		t.Fatal("a session without suggestions can never be ready to stitch")
	}
}

func TestConvertedKeysPreserveSuggestionOrder(t *testing.T) {
	s := twoSuggestionSession()
	s.Uploads[2] = &session.UploadRecord{
		Sequence:   2,
		State:      session.UploadStateConverted,
		Conversion: &session.ConversionResult{ObjectKey: "converted/sess-1/2.mp4"},
	}
	s.Uploads[1] = &session.UploadRecord{
		Sequence:   1,
		State:      session.UploadStateConverted,
		Conversion: &session.ConversionResult{ObjectKey: "converted/sess-1/1.mp4"},
	}

	keys := s.ConvertedKeys()
	if len(keys) != 2 || keys[0] != "converted/sess-1/1.mp4" || keys[1] != "converted/sess-1/2.mp4" {
		t.Fatalf("keys out of order: %v", keys)
	}
}

func TestExpired(t *testing.T) {
	now := time.Now().UTC()
	s := &session.Session{ExpiresAt: now.Add(-time.Hour)}
	if !s.Expired(now) {
		t.Fatal("session past expiry should be expired")
	}
	s.ExpiresAt = now.Add(time.Hour)
	if s.Expired(now) {
		t.Fatal("session before expiry should not be expired")
	}
	s.ExpiresAt = time.Time{}
	if s.Expired(now) {
		t.Fatal("zero expiry never expires")
	}
}
