package testsupport

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"demoforge/internal/config"
	"demoforge/internal/session"
	"demoforge/internal/store"
)

// MustOpenStore opens a session store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		st.Close()
	})
	return st
}

// NewSession inserts a fresh session for tests and returns it.
func NewSession(t testing.TB, st *store.Store, repoURL string) *session.Session {
	t.Helper()

	now := time.Now().UTC()
	sess := &session.Session{
		ID:            uuid.NewString(),
		RepositoryURL: repoURL,
		Status:        session.StatusInitialized,
		Uploads:       map[int]*session.UploadRecord{},
		CreatedAt:     now,
		ExpiresAt:     now.Add(30 * 24 * time.Hour),
	}
	if err := st.Create(context.Background(), sess); err != nil {
		t.Fatalf("store.Create: %v", err)
	}
	return sess
}

// SeedSuggestions moves a test session to suggestions_ready with the given
// number of generated suggestions.
func SeedSuggestions(t testing.TB, st *store.Store, id string, count int) *session.Session {
	t.Helper()

	suggestions := make([]session.Suggestion, 0, count)
	for seq := 1; seq <= count; seq++ {
		suggestions = append(suggestions, session.Suggestion{
			Sequence:        seq,
			Title:           "Segment",
			DurationSeconds: 60,
		})
	}
	sess, err := st.Mutate(context.Background(), id, func(s *session.Session) error {
		s.Status = session.StatusSuggestionsReady
		s.Suggestions = suggestions
		return nil
	})
	if err != nil {
		t.Fatalf("seed suggestions: %v", err)
	}
	return sess
}
