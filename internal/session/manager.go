package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"trivia-quiz/internal/quiz"
)

const (
	DefaultTTL     = 30 * time.Minute
	persistTimeout = 5 * time.Second
)

// ControllerFactory builds a controller with the application's fetcher and
// settings plus the given per-session options.
type ControllerFactory func(opts ...quiz.ControllerOption) *quiz.Controller

type entry struct {
	controller *quiz.Controller
	lastSeen   time.Time
	savedAt    time.Time
}

// Manager maps session IDs to mounted quiz controllers. Live controllers
// are kept in memory and every state change is written to the Store, so a
// session evicted from memory (or lost in a restart) is restored on demand.
type Manager struct {
	store   Store
	factory ControllerFactory
	ttl     time.Duration
	logger  *zap.Logger
	baseCtx context.Context
	now     func() time.Time

	mu      sync.Mutex
	live    map[string]*entry
	restore singleflight.Group
}

// NewManager creates a manager. baseCtx bounds every question load; it is
// usually the server lifetime context.
func NewManager(baseCtx context.Context, store Store, factory ControllerFactory, ttl time.Duration, logger *zap.Logger) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		store:   store,
		factory: factory,
		ttl:     ttl,
		logger:  logger,
		baseCtx: baseCtx,
		now:     time.Now,
		live:    make(map[string]*entry),
	}
}

// Create starts a new view session and mounts its controller.
func (m *Manager) Create(ctx context.Context) (string, *quiz.Controller, error) {
	id := uuid.NewString()
	state := quiz.NewState()
	if err := m.store.Save(ctx, id, state, m.ttl); err != nil {
		return "", nil, fmt.Errorf("save new session: %w", err)
	}

	controller := m.newController(id, state)
	now := m.now()
	m.mu.Lock()
	m.live[id] = &entry{controller: controller, lastSeen: now, savedAt: now}
	m.mu.Unlock()

	controller.Mount(m.baseCtx)
	m.logger.Info("session created", zap.String("session_id", id))
	return id, controller, nil
}

// Get returns the controller for id, restoring it from the store when it
// is not live. Concurrent restores of one ID share a single store read.
func (m *Manager) Get(ctx context.Context, id string) (*quiz.Controller, error) {
	if id == "" {
		return nil, ErrSessionNotFound
	}

	m.mu.Lock()
	e, ok := m.live[id]
	var refresh bool
	if ok {
		now := m.now()
		e.lastSeen = now
		refresh = now.Sub(e.savedAt) > m.ttl/2
	}
	m.mu.Unlock()

	if ok {
		if refresh {
			e.controller.Notify()
		}
		return e.controller, nil
	}

	value, err, _ := m.restore.Do(id, func() (interface{}, error) {
		return m.restoreSession(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	return value.(*quiz.Controller), nil
}

func (m *Manager) restoreSession(ctx context.Context, id string) (*quiz.Controller, error) {
	m.mu.Lock()
	if e, ok := m.live[id]; ok {
		m.mu.Unlock()
		return e.controller, nil
	}
	m.mu.Unlock()

	state, err := m.store.Load(ctx, id)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}

	controller := m.newController(id, state)
	now := m.now()
	m.mu.Lock()
	m.live[id] = &entry{controller: controller, lastSeen: now, savedAt: now}
	m.mu.Unlock()

	controller.Mount(m.baseCtx)
	m.logger.Info("session restored",
		zap.String("session_id", id),
		zap.String("phase", string(state.Phase())),
	)
	return controller, nil
}

// Delete unmounts the session and removes it from the store.
func (m *Manager) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	e, ok := m.live[id]
	delete(m.live, id)
	m.mu.Unlock()

	if ok {
		e.controller.Unmount()
	} else if _, err := m.store.Load(ctx, id); err != nil {
		return err
	}
	return m.store.Delete(ctx, id)
}

// Live reports how many sessions are mounted in memory.
func (m *Manager) Live() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.live)
}

// Sweep unmounts sessions idle for longer than the TTL and purges expired
// entries from the store. Answers and open subscriptions count as
// activity; an idle session with subscribers has its stored copy renewed
// instead.
func (m *Manager) Sweep(ctx context.Context) {
	now := m.now()

	m.mu.Lock()
	candidates := make(map[string]*entry)
	for id, e := range m.live {
		if now.Sub(e.lastSeen) >= m.ttl {
			candidates[id] = e
		}
	}
	m.mu.Unlock()

	var idle []*quiz.Controller
	kept := 0
	for id, e := range candidates {
		if e.controller.Subscribers() > 0 {
			e.controller.Notify()
			kept++
			continue
		}

		m.mu.Lock()
		current, ok := m.live[id]
		evict := ok && current == e && now.Sub(e.lastSeen) >= m.ttl
		if evict {
			delete(m.live, id)
		}
		m.mu.Unlock()

		if evict {
			idle = append(idle, e.controller)
		}
	}

	for _, controller := range idle {
		controller.Unmount()
	}

	removed, err := m.store.DeleteExpired(ctx)
	if err != nil {
		m.logger.Warn("failed to purge expired sessions", zap.Error(err))
	}
	if len(idle) > 0 || removed > 0 || kept > 0 {
		m.logger.Debug("session sweep",
			zap.Int("evicted", len(idle)),
			zap.Int("kept_subscribed", kept),
			zap.Int("purged", removed),
		)
	}
}

// Run sweeps every interval until ctx is done.
func (m *Manager) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			m.Sweep(ctx)
		}
	}
}

// Shutdown unmounts every live session. Stored state is kept.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	live := m.live
	m.live = make(map[string]*entry)
	m.mu.Unlock()

	for _, e := range live {
		e.controller.Unmount()
	}
}

func (m *Manager) newController(id string, initial quiz.State) *quiz.Controller {
	var controller *quiz.Controller
	controller = m.factory(
		quiz.WithInitialState(initial),
		quiz.WithOnChange(func(state quiz.State) {
			m.persist(id, controller, state)
		}),
	)
	return controller
}

// persist saves state for the session while controller is still the live
// one for id, and marks the session as active. Changes from a controller
// that was deleted or evicted are dropped, so they cannot bring a session
// back. It runs under the controller lock, which Delete waits on through
// Unmount before removing the stored copy.
func (m *Manager) persist(id string, controller *quiz.Controller, state quiz.State) {
	m.mu.Lock()
	e, ok := m.live[id]
	live := ok && e.controller == controller
	m.mu.Unlock()
	if !live {
		m.logger.Debug("dropping change of inactive session", zap.String("session_id", id))
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(m.baseCtx), persistTimeout)
	defer cancel()

	if err := m.store.Save(ctx, id, state, m.ttl); err != nil {
		m.logger.Error("failed to save session",
			zap.String("session_id", id),
			zap.Error(err),
		)
		return
	}

	m.mu.Lock()
	if e, ok := m.live[id]; ok && e.controller == controller {
		now := m.now()
		e.savedAt = now
		e.lastSeen = now
	}
	m.mu.Unlock()
}
