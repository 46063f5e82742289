package httpapi

import (
	"net/http"

	"go.uber.org/zap"

	"trivia-quiz/internal/session"
)

func NewRouter(sessions *session.Manager, logger *zap.Logger) http.Handler {
	api := NewAPI(sessions, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", api.HandleHealth)

	mux.HandleFunc("GET /{$}", api.HandlePage)
	mux.HandleFunc("POST /answer", api.HandlePageAnswer)
	mux.HandleFunc("POST /reset", api.HandlePageReset)
	mux.HandleFunc("POST /retry", api.HandlePageRetry)

	mux.HandleFunc("POST /api/sessions", api.HandleCreateSession)
	mux.HandleFunc("GET /api/sessions/{id}", api.HandleGetSession)
	mux.HandleFunc("DELETE /api/sessions/{id}", api.HandleDeleteSession)
	mux.HandleFunc("POST /api/sessions/{id}/answers", api.HandleAnswer)
	mux.HandleFunc("POST /api/sessions/{id}/reset", api.HandleReset)
	mux.HandleFunc("POST /api/sessions/{id}/retry", api.HandleRetry)
	mux.HandleFunc("GET /api/sessions/{id}/ws", api.HandleWS)

	return logRequests(api.logger, mux)
}
