package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"demoforge/internal/services"
	"demoforge/internal/session"
)

// Create inserts a new session row.
func (s *Store) Create(ctx context.Context, sess *session.Session) error {
	ctx = ensureContext(ctx)
	now := time.Now().UTC()
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = now
	}
	sess.UpdatedAt = now

	analysis, suggestions, uploads, artifacts, err := encodeSession(sess)
	if err != nil {
		return services.Wrap(services.ErrPersistence, "store", "create session", "", err)
	}

	_, err = s.execWithRetry(
		ctx,
		`INSERT INTO sessions (`+sessionColumns+`)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sess.ID,
		sess.RepositoryURL,
		sess.ProjectName,
		sess.Owner,
		string(sess.Status),
		sess.ErrorMessage,
		analysis,
		suggestions,
		uploads,
		sess.StitchedKey,
		sess.StitchProcessed,
		sess.StitchTotal,
		artifacts,
		sess.ThumbnailKey,
		sess.DemoURL,
		sess.CreatedAt.Format(time.RFC3339Nano),
		sess.UpdatedAt.Format(time.RFC3339Nano),
		sess.ExpiresAt.Unix(),
	)
	if err != nil {
		return services.Wrap(services.ErrPersistence, "store", "insert session", sess.ID, err)
	}
	return nil
}

// Get fetches a session by id.
func (s *Store) Get(ctx context.Context, id string) (*session.Session, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id)
	sess, err := scanSession(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, services.Wrap(services.ErrNotFound, "store", "get session", id, nil)
		}
		return nil, services.Wrap(services.ErrPersistence, "store", "get session", id, err)
	}
	return sess, nil
}

// List returns sessions, optionally filtered by status, newest first.
func (s *Store) List(ctx context.Context, statuses ...session.Status) ([]*session.Session, error) {
	ctx = ensureContext(ctx)
	query := `SELECT ` + sessionColumns + ` FROM sessions`
	args := make([]any, 0, len(statuses))
	if len(statuses) > 0 {
		query += ` WHERE status IN (` + makePlaceholders(len(statuses)) + `)`
		for _, status := range statuses {
			args = append(args, string(status))
		}
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, services.Wrap(services.ErrPersistence, "store", "list sessions", "", err)
	}
	defer rows.Close()

	var sessions []*session.Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, services.Wrap(services.ErrPersistence, "store", "scan session", "", err)
		}
		sessions = append(sessions, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, services.Wrap(services.ErrPersistence, "store", "iterate sessions", "", err)
	}
	return sessions, nil
}

// Mutate runs a read-modify-write cycle on one session inside a single
// transaction. The mutator sees the current row and edits it in place; the
// updated aggregate is persisted before the transaction commits. Concurrent
// mutations of the same session serialize on the database, which makes
// check-then-act decisions (such as the all-converted stitch gate) atomic
// with the write that triggers them.
func (s *Store) Mutate(ctx context.Context, id string, fn func(*session.Session) error) (*session.Session, error) {
	ctx = ensureContext(ctx)
	var result *session.Session

	err := retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback() }()

		row := tx.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id)
		sess, err := scanSession(row)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return services.Wrap(services.ErrNotFound, "store", "mutate session", id, nil)
			}
			return err
		}

		before, err := imageOf(sess)
		if err != nil {
			return err
		}

		if err := fn(sess); err != nil {
			return err
		}

		after, err := imageOf(sess)
		if err != nil {
			return err
		}
		if after == before {
			// The mutator left the row as it found it. Skipping the write
			// keeps the stored session, updated_at included, byte-identical,
			// so duplicate result deliveries are true no-ops.
			result = sess
			return nil
		}

		sess.UpdatedAt = time.Now().UTC()
		if _, err := tx.ExecContext(
			ctx,
			`UPDATE sessions SET
                repository_url = ?, project_name = ?, owner = ?, status = ?,
                error_message = ?, analysis_json = ?, suggestions_json = ?,
                uploads_json = ?, stitched_key = ?, stitch_processed = ?,
                stitch_total = ?, final_artifacts_json = ?, thumbnail_key = ?,
                demo_url = ?, updated_at = ?
             WHERE id = ?`,
			sess.RepositoryURL,
			sess.ProjectName,
			sess.Owner,
			string(sess.Status),
			sess.ErrorMessage,
			after.analysis,
			after.suggestions,
			after.uploads,
			sess.StitchedKey,
			sess.StitchProcessed,
			sess.StitchTotal,
			after.artifacts,
			sess.ThumbnailKey,
			sess.DemoURL,
			sess.UpdatedAt.Format(time.RFC3339Nano),
			sess.ID,
		); err != nil {
			return err
		}

		if err := tx.Commit(); err != nil {
			return err
		}
		result = sess
		return nil
	})
	if err != nil {
		if errors.Is(err, services.ErrNotFound) || errors.Is(err, services.ErrInvalidInput) ||
			errors.Is(err, services.ErrOutOfOrder) || errors.Is(err, services.ErrValidation) {
			return nil, err
		}
		return nil, services.Wrap(services.ErrPersistence, "store", "mutate session", id, err)
	}
	return result, nil
}

// Remove deletes a session row. It reports whether a row was removed.
func (s *Store) Remove(ctx context.Context, id string) (bool, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return false, services.Wrap(services.ErrPersistence, "store", "remove session", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, services.Wrap(services.ErrPersistence, "store", "remove session", id, err)
	}
	return affected > 0, nil
}

// Stats returns session counts keyed by status.
func (s *Store) Stats(ctx context.Context) (map[session.Status]int, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM sessions GROUP BY status`)
	if err != nil {
		return nil, services.Wrap(services.ErrPersistence, "store", "session stats", "", err)
	}
	defer rows.Close()

	stats := make(map[session.Status]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, services.Wrap(services.ErrPersistence, "store", "scan stats", "", err)
		}
		if parsed, ok := session.ParseStatus(status); ok {
			stats[parsed] = count
		}
	}
	if err := rows.Err(); err != nil {
		return nil, services.Wrap(services.ErrPersistence, "store", "iterate stats", "", err)
	}
	return stats, nil
}

// ExpiredBefore returns sessions whose expiry timestamp has passed.
func (s *Store) ExpiredBefore(ctx context.Context, cutoff time.Time) ([]*session.Session, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE expires_at < ? ORDER BY expires_at ASC`,
		cutoff.UTC().Unix(),
	)
	if err != nil {
		return nil, services.Wrap(services.ErrPersistence, "store", "expired sessions", "", err)
	}
	defer rows.Close()

	var sessions []*session.Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, services.Wrap(services.ErrPersistence, "store", "scan session", "", err)
		}
		sessions = append(sessions, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, services.Wrap(services.ErrPersistence, "store", "iterate expired", "", err)
	}
	return sessions, nil
}

// Health reports a quick readiness probe for the session database.
func (s *Store) Health(ctx context.Context) error {
	ctx = ensureContext(ctx)
	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions`).Scan(&total); err != nil {
		return services.Wrap(services.ErrPersistence, "store", "health check", "", err)
	}
	return nil
}
