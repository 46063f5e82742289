package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"trivia-quiz/internal/quiz"
	"trivia-quiz/internal/session"
)

var _ session.Store = (*Store)(nil)

func (s *Store) Save(ctx context.Context, id string, state quiz.State, ttl time.Duration) error {
	if id == "" {
		return errors.New("session id is required")
	}

	stateJSON, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode session state: %w", err)
	}

	now := s.now().UTC()
	_, err = s.db.ExecContext(
		ctx,
		`INSERT INTO view_sessions (session_id, state_json, updated_at_unix, expires_at_unix)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(session_id) DO UPDATE SET
			state_json = excluded.state_json,
			updated_at_unix = excluded.updated_at_unix,
			expires_at_unix = excluded.expires_at_unix`,
		id,
		string(stateJSON),
		now.UnixNano(),
		now.Add(ttl).UnixNano(),
	)
	return err
}

func (s *Store) Load(ctx context.Context, id string) (quiz.State, error) {
	var (
		stateJSON string
		expiresAt int64
	)
	err := s.db.QueryRowContext(
		ctx,
		`SELECT state_json, expires_at_unix FROM view_sessions WHERE session_id = ?`,
		id,
	).Scan(&stateJSON, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return quiz.State{}, session.ErrSessionNotFound
	}
	if err != nil {
		return quiz.State{}, err
	}
	if s.now().UTC().UnixNano() >= expiresAt {
		return quiz.State{}, session.ErrSessionNotFound
	}

	var state quiz.State
	if err := json.Unmarshal([]byte(stateJSON), &state); err != nil {
		return quiz.State{}, fmt.Errorf("decode session state: %w", err)
	}
	return state, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM view_sessions WHERE session_id = ?`, id)
	return err
}

func (s *Store) DeleteExpired(ctx context.Context) (int, error) {
	result, err := s.db.ExecContext(
		ctx,
		`DELETE FROM view_sessions WHERE expires_at_unix <= ?`,
		s.now().UTC().UnixNano(),
	)
	if err != nil {
		return 0, err
	}
	removed, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(removed), nil
}
