package store

import (
	"context"
	"fmt"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS sessions (
    id TEXT PRIMARY KEY,
    repository_url TEXT NOT NULL,
    project_name TEXT NOT NULL DEFAULT '',
    owner TEXT NOT NULL DEFAULT '',
    status TEXT NOT NULL,
    error_message TEXT NOT NULL DEFAULT '',
    analysis_json TEXT,
    suggestions_json TEXT,
    uploads_json TEXT,
    stitched_key TEXT NOT NULL DEFAULT '',
    stitch_processed INTEGER NOT NULL DEFAULT 0,
    stitch_total INTEGER NOT NULL DEFAULT 0,
    final_artifacts_json TEXT,
    thumbnail_key TEXT NOT NULL DEFAULT '',
    demo_url TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL,
    expires_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_sessions_status ON sessions(status);
CREATE INDEX IF NOT EXISTS idx_sessions_expires_at ON sessions(expires_at);
`

func (s *Store) initSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}
