package store_test

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"demoforge/internal/services"
	"demoforge/internal/session"
	"demoforge/internal/testsupport"
)

func TestCreateAndGetRoundTrip(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	sess := testsupport.NewSession(t, st, "https://github.com/acme/demo")

	fetched, err := st.Get(ctx, sess.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if fetched.RepositoryURL != "https://github.com/acme/demo" {
		t.Fatalf("unexpected repository url %q", fetched.RepositoryURL)
	}
	if fetched.Status != session.StatusInitialized {
		t.Fatalf("unexpected status %q", fetched.Status)
	}
	if fetched.Uploads == nil {
		t.Fatal("uploads map should be initialized on read")
	}
	if fetched.ExpiresAt.Before(time.Now().Add(29 * 24 * time.Hour)) {
		t.Fatalf("expiry not ~30 days out: %v", fetched.ExpiresAt)
	}
}

func TestGetUnknownSessionIsNotFound(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	_, err := st.Get(context.Background(), "missing")
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMutatePersistsNestedStructures(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	sess := testsupport.NewSession(t, st, "https://github.com/acme/demo")
	testsupport.SeedSuggestions(t, st, sess.ID, 2)

	_, err := st.Mutate(ctx, sess.ID, func(s *session.Session) error {
		s.Status = session.StatusUploading
		s.Uploads[1] = &session.UploadRecord{
			Sequence:  1,
			ObjectKey: "uploads/x/1.webm",
			State:     session.UploadStateUploaded,
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Mutate failed: %v", err)
	}

	fetched, err := st.Get(ctx, sess.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if len(fetched.Suggestions) != 2 {
		t.Fatalf("expected 2 suggestions, got %d", len(fetched.Suggestions))
	}
	record := fetched.Uploads[1]
	if record == nil || record.ObjectKey != "uploads/x/1.webm" || record.State != session.UploadStateUploaded {
		t.Fatalf("unexpected upload record %#v", record)
	}
}

func TestMutateNoopLeavesRowUntouched(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	sess := testsupport.NewSession(t, st, "https://github.com/acme/demo")

	before, err := st.Get(ctx, sess.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if _, err := st.Mutate(ctx, sess.ID, func(s *session.Session) error { return nil }); err != nil {
		t.Fatalf("Mutate failed: %v", err)
	}
	after, err := st.Get(ctx, sess.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !reflect.DeepEqual(before, after) {
		t.Fatalf("no-op mutation rewrote the row: before %+v, after %+v", before, after)
	}
	if !after.UpdatedAt.Equal(before.UpdatedAt) {
		t.Fatalf("updated_at bumped by no-op mutation: %v -> %v", before.UpdatedAt, after.UpdatedAt)
	}
}

func TestMutateUnknownSessionIsNotFound(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	_, err := st.Mutate(context.Background(), "missing", func(s *session.Session) error { return nil })
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMutatePropagatesClassifiedErrors(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	sess := testsupport.NewSession(t, st, "https://github.com/acme/demo")

	marker := services.Wrap(services.ErrOutOfOrder, "advance", "apply result", "stage not reached", nil)
	_, err := st.Mutate(ctx, sess.ID, func(s *session.Session) error {
		s.Status = session.StatusCompleted
		return marker
	})
	if !errors.Is(err, services.ErrOutOfOrder) {
		t.Fatalf("expected ErrOutOfOrder to pass through, got %v", err)
	}

	// The failed mutation must not have been persisted.
	fetched, err := st.Get(ctx, sess.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if fetched.Status != session.StatusInitialized {
		t.Fatalf("mutation leaked despite error: status %q", fetched.Status)
	}
}

func TestMutateSerializesConcurrentWriters(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	sess := testsupport.NewSession(t, st, "https://github.com/acme/demo")
	testsupport.SeedSuggestions(t, st, sess.ID, 8)

	var wg sync.WaitGroup
	for seq := 1; seq <= 8; seq++ {
		wg.Add(1)
		go func(seq int) {
			defer wg.Done()
			_, err := st.Mutate(ctx, sess.ID, func(s *session.Session) error {
				s.Uploads[seq] = &session.UploadRecord{
					Sequence:  seq,
					ObjectKey: "uploads/k",
					State:     session.UploadStateUploaded,
				}
				return nil
			})
			if err != nil {
				t.Errorf("concurrent Mutate(%d) failed: %v", seq, err)
			}
		}(seq)
	}
	wg.Wait()

	fetched, err := st.Get(ctx, sess.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if len(fetched.Uploads) != 8 {
		t.Fatalf("lost updates: %d of 8 records present", len(fetched.Uploads))
	}
}

func TestListFiltersByStatus(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	first := testsupport.NewSession(t, st, "https://github.com/acme/one")
	testsupport.NewSession(t, st, "https://github.com/acme/two")
	if _, err := st.Mutate(ctx, first.ID, func(s *session.Session) error {
		s.Status = session.StatusGeneratingSuggestions
		return nil
	}); err != nil {
		t.Fatalf("Mutate failed: %v", err)
	}

	generating, err := st.List(ctx, session.StatusGeneratingSuggestions)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(generating) != 1 || generating[0].ID != first.ID {
		t.Fatalf("unexpected filtered list: %#v", generating)
	}

	all, err := st.List(ctx)
	if err != nil {
		t.Fatalf("List all failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(all))
	}
}

func TestStatsAndRemove(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	sess := testsupport.NewSession(t, st, "https://github.com/acme/demo")
	testsupport.NewSession(t, st, "https://github.com/acme/other")

	stats, err := st.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats[session.StatusInitialized] != 2 {
		t.Fatalf("unexpected stats %v", stats)
	}

	removed, err := st.Remove(ctx, sess.ID)
	if err != nil || !removed {
		t.Fatalf("Remove = %v, %v", removed, err)
	}
	removed, err = st.Remove(ctx, sess.ID)
	if err != nil || removed {
		t.Fatalf("second Remove = %v, %v", removed, err)
	}
}

func TestExpiredBefore(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	expired := &session.Session{
		ID:            "expired-session",
		RepositoryURL: "https://github.com/acme/old",
		Status:        session.StatusInitialized,
		CreatedAt:     time.Now().UTC().Add(-31 * 24 * time.Hour),
		ExpiresAt:     time.Now().UTC().Add(-time.Hour),
	}
	if err := st.Create(ctx, expired); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	testsupport.NewSession(t, st, "https://github.com/acme/fresh")

	hits, err := st.ExpiredBefore(ctx, time.Now().UTC())
	if err != nil {
		t.Fatalf("ExpiredBefore failed: %v", err)
	}
	if len(hits) != 1 || hits[0].ID != expired.ID {
		t.Fatalf("unexpected expired set: %#v", hits)
	}
}
