package quiz

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"trivia-quiz/internal/opentdb"
)

const defaultQuestionCount = 10

type QuestionsFetcher func(ctx context.Context, amount int) ([]opentdb.RawQuestion, error)

// Controller owns the state of one mounted quiz view. It runs the one-shot
// question load and serializes every transition.
type Controller struct {
	fetcher  QuestionsFetcher
	amount   int
	shuffler *Shuffler
	logger   *zap.Logger
	onChange func(State)

	mu          sync.Mutex
	state       State
	mounted     bool
	parent      context.Context
	cancelLoad  context.CancelFunc
	generation  uint64
	subscribers map[chan State]struct{}
}

type ControllerOption func(*Controller)

func WithAmount(amount int) ControllerOption {
	return func(c *Controller) {
		if amount > 0 {
			c.amount = amount
		}
	}
}

func WithShuffler(shuffler *Shuffler) ControllerOption {
	return func(c *Controller) {
		if shuffler != nil {
			c.shuffler = shuffler
		}
	}
}

func WithLogger(logger *zap.Logger) ControllerOption {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithInitialState seeds the controller, e.g. when restoring a stored view.
func WithInitialState(state State) ControllerOption {
	return func(c *Controller) {
		c.state = state
	}
}

// WithOnChange registers a hook called with every new state. It runs while
// the controller lock is held and must not call back into the controller.
func WithOnChange(fn func(State)) ControllerOption {
	return func(c *Controller) {
		c.onChange = fn
	}
}

func NewController(fetcher QuestionsFetcher, opts ...ControllerOption) *Controller {
	c := &Controller{
		fetcher:     fetcher,
		amount:      defaultQuestionCount,
		logger:      zap.NewNop(),
		state:       NewState(),
		subscribers: make(map[chan State]struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.shuffler == nil {
		c.shuffler = newTimeSeededShuffler()
	}
	return c
}

// Mount activates the view. If the state is still loading, the question
// load starts in the background under ctx. Mounting twice is a no-op.
func (c *Controller) Mount(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.mounted {
		return
	}
	c.mounted = true
	c.parent = ctx
	if c.state.Phase() == PhaseLoading {
		c.startLoadLocked()
	}
}

// Unmount cancels any in-flight load and closes all subscriptions. A load
// result that arrives afterwards is discarded.
func (c *Controller) Unmount() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.mounted {
		return
	}
	c.mounted = false
	if c.cancelLoad != nil {
		c.cancelLoad()
		c.cancelLoad = nil
	}
	for ch := range c.subscribers {
		delete(c.subscribers, ch)
		close(ch)
	}
}

func (c *Controller) Mounted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mounted
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Select answers the current question with the option at index.
func (c *Controller) Select(index int) (State, error) {
	return c.apply(func(s State) (State, error) {
		return s.SelectOption(index)
	})
}

// Answer is Select guarded by the ID of the question the caller saw.
func (c *Controller) Answer(questionID string, index int) (State, error) {
	return c.apply(func(s State) (State, error) {
		current, ok := s.Current()
		if !ok {
			return s, ErrNotInProgress
		}
		if questionID != "" && current.QuestionID != questionID {
			return s, ErrStaleQuestion
		}
		return s.SelectOption(index)
	})
}

func (c *Controller) Reset() (State, error) {
	return c.apply(func(s State) (State, error) {
		return s.Reset()
	})
}

// Retry restarts the load after a failure.
func (c *Controller) Retry() (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	next, err := c.state.Retry()
	if err != nil {
		return c.state, err
	}
	c.setLocked(next)
	if c.mounted {
		c.startLoadLocked()
	}
	return c.state, nil
}

// Subscribe returns a channel receiving the current state and every later
// change. Slow readers only see the latest state. The cancel func must be
// called to release the subscription.
func (c *Controller) Subscribe() (<-chan State, func()) {
	ch := make(chan State, 1)

	c.mu.Lock()
	ch <- c.state
	if c.mounted {
		c.subscribers[ch] = struct{}{}
	} else {
		close(ch)
	}
	c.mu.Unlock()

	cancel := func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if _, ok := c.subscribers[ch]; ok {
			delete(c.subscribers, ch)
			close(ch)
		}
	}
	return ch, cancel
}

// Subscribers reports how many subscriptions are open.
func (c *Controller) Subscribers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.subscribers)
}

// Notify runs the OnChange hook with the current state without changing it.
func (c *Controller) Notify() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.onChange != nil {
		c.onChange(c.state)
	}
}

func (c *Controller) apply(transition func(State) (State, error)) (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	next, err := transition(c.state)
	if err != nil {
		return c.state, err
	}
	c.setLocked(next)
	return c.state, nil
}

func (c *Controller) startLoadLocked() {
	if c.cancelLoad != nil {
		c.cancelLoad()
	}

	parent := c.parent
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	c.cancelLoad = cancel
	c.generation++
	generation := c.generation

	go func() {
		defer cancel()
		questions, err := c.load(ctx)
		c.finishLoad(generation, questions, err)
	}()
}

func (c *Controller) load(ctx context.Context) ([]Question, error) {
	if c.fetcher == nil {
		return nil, &LoadError{Err: errors.New("question fetcher is not configured")}
	}

	rawQuestions, err := c.fetcher(ctx, c.amount)
	if err != nil {
		return nil, &LoadError{Err: err}
	}
	return BuildQuestions(rawQuestions, c.shuffler), nil
}

func (c *Controller) finishLoad(generation uint64, questions []Question, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.mounted || generation != c.generation {
		c.logger.Debug("discarding question load for inactive view",
			zap.Uint64("generation", generation),
			zap.Bool("mounted", c.mounted),
		)
		return
	}
	c.cancelLoad = nil

	var (
		next  State
		apply error
	)
	if err != nil {
		c.logger.Error("failed to fetch questions", zap.Error(err))
		next, apply = c.state.Fail(err)
	} else {
		c.logger.Info("questions loaded", zap.Int("count", len(questions)))
		next, apply = c.state.Load(questions)
	}
	if apply != nil {
		c.logger.Warn("load result rejected by state", zap.Error(apply))
		return
	}
	c.setLocked(next)
}

func (c *Controller) setLocked(next State) {
	next.Revision = c.state.Revision + 1
	c.state = next
	if c.onChange != nil {
		c.onChange(next)
	}
	for ch := range c.subscribers {
		select {
		case ch <- next:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- next
		}
	}
}
