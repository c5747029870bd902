package cleanup

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"demoforge/internal/session"
	"demoforge/internal/store"
	"demoforge/internal/testsupport"
)

type recordingDeleter struct {
	store   *store.Store
	deleted []string
	fail    map[string]bool
}

func (d *recordingDeleter) Delete(ctx context.Context, id string) error {
	if d.fail[id] {
		return errors.New("blob removal failed")
	}
	d.deleted = append(d.deleted, id)
	_, err := d.store.Remove(ctx, id)
	return err
}

func seedSession(t *testing.T, st *store.Store, expiresAt time.Time) *session.Session {
	t.Helper()
	sess := &session.Session{
		ID:            uuid.NewString(),
		RepositoryURL: "https://github.com/acme/widget",
		Status:        session.StatusSuggestionsReady,
		Uploads:       map[int]*session.UploadRecord{},
		CreatedAt:     time.Now().UTC(),
		ExpiresAt:     expiresAt,
	}
	if err := st.Create(context.Background(), sess); err != nil {
		t.Fatalf("create session: %v", err)
	}
	return sess
}

func TestSweepRemovesOnlyExpiredSessions(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	now := time.Now().UTC()

	expired := seedSession(t, st, now.Add(-time.Hour))
	live := seedSession(t, st, now.Add(time.Hour))

	deleter := &recordingDeleter{store: st}
	sweeper := New(cfg, st, deleter, nil, WithClock(func() time.Time { return now }))

	if removed := sweeper.Sweep(context.Background()); removed != 1 {
		t.Fatalf("removed = %d, want 1", removed)
	}
	if len(deleter.deleted) != 1 || deleter.deleted[0] != expired.ID {
		t.Fatalf("deleted = %v", deleter.deleted)
	}
	if _, err := st.Get(context.Background(), live.ID); err != nil {
		t.Fatalf("live session should survive: %v", err)
	}
}

func TestSweepContinuesPastFailures(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	now := time.Now().UTC()

	broken := seedSession(t, st, now.Add(-2*time.Hour))
	fine := seedSession(t, st, now.Add(-time.Hour))

	deleter := &recordingDeleter{store: st, fail: map[string]bool{broken.ID: true}}
	sweeper := New(cfg, st, deleter, nil, WithClock(func() time.Time { return now }))

	if removed := sweeper.Sweep(context.Background()); removed != 1 {
		t.Fatalf("removed = %d, want 1", removed)
	}
	if len(deleter.deleted) != 1 || deleter.deleted[0] != fine.ID {
		t.Fatalf("deleted = %v", deleter.deleted)
	}
}

func TestSweepEmptyStoreIsQuiet(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	sweeper := New(cfg, st, &recordingDeleter{store: st}, nil)
	if removed := sweeper.Sweep(context.Background()); removed != 0 {
		t.Fatalf("removed = %d, want 0", removed)
	}
}

func TestStartStopIsIdempotent(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	sweeper := New(cfg, st, &recordingDeleter{store: st}, nil)
	sweeper.Start(context.Background())
	sweeper.Start(context.Background())
	sweeper.Stop()
	sweeper.Stop()
}
