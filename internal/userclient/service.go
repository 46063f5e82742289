package userclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	defaultServer      = "http://127.0.0.1:8080"
	defaultHTTPTimeout = 5 * time.Second
)

type Config struct {
	ServerURL   string
	HTTPTimeout time.Duration
	Logger      *zap.Logger
}

// Connect opens a remote quiz view on the configured service.
func Connect(ctx context.Context, cfg Config) (*Remote, error) {
	serverURL := strings.TrimSpace(cfg.ServerURL)
	if serverURL == "" {
		serverURL = defaultServer
	}
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}

	client := NewHTTPClient(serverURL, &http.Client{Timeout: timeout})
	dialer := &websocket.Dialer{HandshakeTimeout: timeout}

	remote, err := Dial(ctx, client, dialer, cfg.Logger)
	if err != nil {
		return nil, describeClientError(err, serverURL)
	}
	return remote, nil
}

func describeClientError(err error, serverURL string) error {
	if errors.Is(err, ErrServiceUnavailable) {
		return fmt.Errorf("quiz service unavailable at %s: %w", serverURL, err)
	}
	return err
}
