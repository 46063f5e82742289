package userclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"trivia-quiz/internal/quiz"
	"trivia-quiz/internal/view"
)

var _ view.Driver = (*Remote)(nil)

type streamMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Remote drives a quiz view hosted by a quiz service. Actions go through
// the JSON API; state pushed over the session websocket keeps the local
// mirror current.
type Remote struct {
	client    *HTTPClient
	ctx       context.Context
	sessionID string
	logger    *zap.Logger
	conn      *websocket.Conn
	done      chan struct{}

	mu          sync.Mutex
	state       quiz.State
	closed      bool
	subscribers map[chan quiz.State]struct{}
}

// Dial creates a session on the service and attaches to its state stream.
// ctx bounds every later request.
func Dial(ctx context.Context, client *HTTPClient, dialer *websocket.Dialer, logger *zap.Logger) (*Remote, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}

	snapshot, err := client.CreateSession(ctx)
	if err != nil {
		return nil, err
	}

	streamURL, err := client.streamURL(snapshot.SessionID)
	if err != nil {
		return nil, err
	}
	conn, _, err := dialer.DialContext(ctx, streamURL, nil)
	if err != nil {
		_ = client.DeleteSession(ctx, snapshot.SessionID)
		return nil, err
	}

	r := &Remote{
		client:      client,
		ctx:         ctx,
		sessionID:   snapshot.SessionID,
		logger:      logger,
		conn:        conn,
		done:        make(chan struct{}),
		state:       snapshot.State,
		subscribers: make(map[chan quiz.State]struct{}),
	}
	go r.readLoop()

	logger.Info("remote session attached", zap.String("session_id", r.sessionID))
	return r, nil
}

func (r *Remote) SessionID() string {
	return r.sessionID
}

func (r *Remote) State() quiz.State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Select answers the question currently shown by the mirror. The service
// rejects it if another client moved the quiz on in the meantime.
func (r *Remote) Select(option int) (quiz.State, error) {
	questionID := ""
	if question, ok := r.State().Current(); ok {
		questionID = question.QuestionID
	}
	return r.apply(r.client.Answer(r.ctx, r.sessionID, questionID, option))
}

func (r *Remote) Reset() (quiz.State, error) {
	return r.apply(r.client.Reset(r.ctx, r.sessionID))
}

func (r *Remote) Retry() (quiz.State, error) {
	return r.apply(r.client.Retry(r.ctx, r.sessionID))
}

// Subscribe mirrors quiz.Controller.Subscribe: the current state first,
// then every pushed change, closed when the stream ends.
func (r *Remote) Subscribe() (<-chan quiz.State, func()) {
	ch := make(chan quiz.State, 1)

	r.mu.Lock()
	ch <- r.state
	if r.closed {
		close(ch)
	} else {
		r.subscribers[ch] = struct{}{}
	}
	r.mu.Unlock()

	cancel := func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if _, ok := r.subscribers[ch]; ok {
			delete(r.subscribers, ch)
			close(ch)
		}
	}
	return ch, cancel
}

// Close detaches from the stream and deletes the remote session.
func (r *Remote) Close() error {
	_ = r.conn.Close()
	<-r.done
	return r.client.DeleteSession(context.WithoutCancel(r.ctx), r.sessionID)
}

// apply records the outcome of an action. A conflict means the mirror fell
// behind the service, so it is reloaded before the error is returned.
func (r *Remote) apply(snapshot Snapshot, err error) (quiz.State, error) {
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusConflict {
			r.resync()
		}
		return r.State(), err
	}
	r.set(snapshot.State)
	return r.State(), nil
}

func (r *Remote) resync() {
	snapshot, err := r.client.GetSession(r.ctx, r.sessionID)
	if err != nil {
		r.logger.Debug("failed to resync remote session", zap.String("session_id", r.sessionID), zap.Error(err))
		return
	}
	r.set(snapshot.State)
}

func (r *Remote) readLoop() {
	defer close(r.done)
	defer r.shutdown()

	for {
		var msg streamMessage
		if err := r.conn.ReadJSON(&msg); err != nil {
			r.logger.Debug("remote stream closed", zap.String("session_id", r.sessionID), zap.Error(err))
			return
		}

		switch msg.Type {
		case "state":
			var snapshot Snapshot
			if err := json.Unmarshal(msg.Payload, &snapshot); err != nil {
				r.logger.Warn("invalid state message", zap.Error(err))
				continue
			}
			r.set(snapshot.State)
		case "error":
			r.logger.Debug("remote stream error", zap.ByteString("payload", msg.Payload))
		}
	}
}

func (r *Remote) set(state quiz.State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed || state.Revision < r.state.Revision {
		return
	}

	r.state = state
	for ch := range r.subscribers {
		select {
		case ch <- state:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- state
		}
	}
}

func (r *Remote) shutdown() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	for ch := range r.subscribers {
		delete(r.subscribers, ch)
		close(ch)
	}
}
