package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"trivia-quiz/internal/quiz"
)

// ErrSessionNotFound is returned when a view session is unknown or expired.
var ErrSessionNotFound = errors.New("quiz session not found")

// Store keeps view state between requests. Entries expire ttl after the
// last Save.
type Store interface {
	Save(ctx context.Context, id string, state quiz.State, ttl time.Duration) error
	Load(ctx context.Context, id string) (quiz.State, error)
	Delete(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context) (int, error)
	Close() error
}

type memoryEntry struct {
	state     quiz.State
	expiresAt time.Time
}

// MemoryStore is an in-process Store.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (s *MemoryStore) Save(_ context.Context, id string, state quiz.State, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[id] = memoryEntry{state: state, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *MemoryStore) Load(_ context.Context, id string) (quiz.State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.entries[id]
	if !ok || !s.now().Before(entry.expiresAt) {
		return quiz.State{}, ErrSessionNotFound
	}
	return entry.state, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
	return nil
}

func (s *MemoryStore) DeleteExpired(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	removed := 0
	for id, entry := range s.entries {
		if !now.Before(entry.expiresAt) {
			delete(s.entries, id)
			removed++
		}
	}
	return removed, nil
}

func (s *MemoryStore) Close() error {
	return nil
}
