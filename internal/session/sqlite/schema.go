package sqlite

import (
	"context"
)

func (s *Store) initSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS view_sessions (
			session_id TEXT PRIMARY KEY,
			state_json TEXT NOT NULL,
			updated_at_unix INTEGER NOT NULL,
			expires_at_unix INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_view_sessions_expires_at ON view_sessions(expires_at_unix);`,
	}

	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
