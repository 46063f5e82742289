package httpapi

import (
	"encoding/json"

	"trivia-quiz/internal/quiz"
	"trivia-quiz/internal/view"
)

// sessionResponse carries the full state, correct flags included. Clients
// render from screen and use state to keep their own mirror.
type sessionResponse struct {
	SessionID string      `json:"session_id"`
	Phase     quiz.Phase  `json:"phase"`
	State     quiz.State  `json:"state"`
	Screen    view.Screen `json:"screen"`
}

type answerRequest struct {
	QuestionID string `json:"question_id"`
	Option     *int   `json:"option"`
}

type healthResponse struct {
	Status       string `json:"status"`
	LiveSessions int    `json:"live_sessions"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type outboundMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

func toSessionResponse(id string, state quiz.State) sessionResponse {
	return sessionResponse{
		SessionID: id,
		Phase:     state.Phase(),
		State:     state,
		Screen:    view.Build(state),
	}
}
