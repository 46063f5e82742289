package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"trivia-quiz/internal/quiz"
	"trivia-quiz/internal/session"
)

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "session not found"})
	case errors.Is(err, quiz.ErrOptionOutOfRange):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, quiz.ErrStaleQuestion),
		errors.Is(err, quiz.ErrNotInProgress),
		errors.Is(err, quiz.ErrNotCompleted),
		errors.Is(err, quiz.ErrNotLoadFailed),
		errors.Is(err, quiz.ErrAlreadyLoaded):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "request failed"})
	}
}

func sessionIDParam(r *http.Request) string {
	return strings.TrimSpace(r.PathValue("id"))
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}
