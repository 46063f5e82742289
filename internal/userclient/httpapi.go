package userclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"trivia-quiz/internal/quiz"
	"trivia-quiz/internal/view"
)

var ErrServiceUnavailable = errors.New("quiz service unavailable")

type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if strings.TrimSpace(e.Message) == "" {
		return fmt.Sprintf("request failed with status %d", e.StatusCode)
	}
	return e.Message
}

type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// Snapshot is one session state as served by the quiz service.
type Snapshot struct {
	SessionID string      `json:"session_id"`
	Phase     quiz.Phase  `json:"phase"`
	State     quiz.State  `json:"state"`
	Screen    view.Screen `json:"screen"`
}

type answerRequest struct {
	QuestionID string `json:"question_id"`
	Option     int    `json:"option"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func NewHTTPClient(baseURL string, httpClient *http.Client) *HTTPClient {
	baseURL = strings.TrimSpace(baseURL)
	baseURL = strings.TrimRight(baseURL, "/")
	if baseURL == "" {
		baseURL = "http://127.0.0.1:8080"
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &HTTPClient{
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

func (c *HTTPClient) CreateSession(ctx context.Context) (Snapshot, error) {
	var payload Snapshot
	if err := c.doJSON(ctx, http.MethodPost, "/api/sessions", nil, &payload); err != nil {
		return Snapshot{}, err
	}
	return payload, nil
}

func (c *HTTPClient) GetSession(ctx context.Context, sessionID string) (Snapshot, error) {
	var payload Snapshot
	if err := c.doJSON(ctx, http.MethodGet, sessionPath(sessionID, ""), nil, &payload); err != nil {
		return Snapshot{}, err
	}
	return payload, nil
}

func (c *HTTPClient) Answer(ctx context.Context, sessionID, questionID string, option int) (Snapshot, error) {
	request := answerRequest{QuestionID: questionID, Option: option}

	var payload Snapshot
	if err := c.doJSON(ctx, http.MethodPost, sessionPath(sessionID, "/answers"), request, &payload); err != nil {
		return Snapshot{}, err
	}
	return payload, nil
}

func (c *HTTPClient) Reset(ctx context.Context, sessionID string) (Snapshot, error) {
	var payload Snapshot
	if err := c.doJSON(ctx, http.MethodPost, sessionPath(sessionID, "/reset"), nil, &payload); err != nil {
		return Snapshot{}, err
	}
	return payload, nil
}

func (c *HTTPClient) Retry(ctx context.Context, sessionID string) (Snapshot, error) {
	var payload Snapshot
	if err := c.doJSON(ctx, http.MethodPost, sessionPath(sessionID, "/retry"), nil, &payload); err != nil {
		return Snapshot{}, err
	}
	return payload, nil
}

func (c *HTTPClient) DeleteSession(ctx context.Context, sessionID string) error {
	return c.doJSON(ctx, http.MethodDelete, sessionPath(sessionID, ""), nil, nil)
}

// streamURL is the websocket address of a session's state stream.
func (c *HTTPClient) streamURL(sessionID string) (string, error) {
	parsed, err := url.Parse(c.baseURL + sessionPath(sessionID, "/ws"))
	if err != nil {
		return "", err
	}
	switch parsed.Scheme {
	case "https":
		parsed.Scheme = "wss"
	default:
		parsed.Scheme = "ws"
	}
	return parsed.String(), nil
}

func sessionPath(sessionID, suffix string) string {
	return "/api/sessions/" + url.PathEscape(sessionID) + suffix
}

func (c *HTTPClient) doJSON(ctx context.Context, method, path string, requestBody any, responseBody any) error {
	fullURL := c.baseURL + path

	var body io.Reader
	if requestBody != nil {
		encoded, err := json.Marshal(requestBody)
		if err != nil {
			return err
		}
		body = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return err
	}
	if requestBody != nil {
		request.Header.Set("Content-Type", "application/json")
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	defer response.Body.Close()

	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		apiErr := APIError{StatusCode: response.StatusCode}
		var payload errorResponse
		if err := json.NewDecoder(response.Body).Decode(&payload); err == nil && strings.TrimSpace(payload.Error) != "" {
			apiErr.Message = payload.Error
		}
		if apiErr.Message == "" {
			apiErr.Message = response.Status
		}
		return &apiErr
	}

	if responseBody == nil {
		return nil
	}
	return json.NewDecoder(response.Body).Decode(responseBody)
}
