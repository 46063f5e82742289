package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"trivia-quiz/internal/quiz"
	"trivia-quiz/internal/session"
)

const defaultPrefix = "trivia-quiz:session:"

var _ session.Store = (*Store)(nil)

// Store keeps view sessions in Redis. Expiry is left to Redis key TTLs.
type Store struct {
	client *redis.Client
	prefix string
}

func NewStore(client *redis.Client, prefix string) *Store {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &Store{client: client, prefix: prefix}
}

func (s *Store) Save(ctx context.Context, id string, state quiz.State, ttl time.Duration) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode session state: %w", err)
	}
	return s.client.Set(ctx, s.key(id), payload, ttl).Err()
}

func (s *Store) Load(ctx context.Context, id string) (quiz.State, error) {
	payload, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return quiz.State{}, session.ErrSessionNotFound
	}
	if err != nil {
		return quiz.State{}, err
	}

	var state quiz.State
	if err := json.Unmarshal(payload, &state); err != nil {
		return quiz.State{}, fmt.Errorf("decode session state: %w", err)
	}
	return state, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, s.key(id)).Err()
}

// DeleteExpired is a no-op; Redis drops expired keys itself.
func (s *Store) DeleteExpired(context.Context) (int, error) {
	return 0, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) key(id string) string {
	return s.prefix + id
}
