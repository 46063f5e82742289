package httpapi

import (
	"html/template"
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"trivia-quiz/internal/session"
)

type API struct {
	sessions *session.Manager
	logger   *zap.Logger
	page     *template.Template
	upgrader websocket.Upgrader
}

func NewAPI(sessions *session.Manager, logger *zap.Logger) *API {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &API{
		sessions: sessions,
		logger:   logger,
		page:     template.Must(template.New("page").Parse(pageTemplate)),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}
