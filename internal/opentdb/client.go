package opentdb

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const (
	DefaultBaseURL = "https://opentdb.com"
	DefaultAmount  = 10
	MaxAmount      = 50

	typeMultiple = "multiple"
)

// RawQuestion mirrors the OpenTriviaDB question payload.
type RawQuestion struct {
	Type             string   `json:"type" yaml:"type"`
	Difficulty       string   `json:"difficulty" yaml:"difficulty"`
	Category         string   `json:"category" yaml:"category"`
	Question         string   `json:"question" yaml:"question"`
	CorrectAnswer    string   `json:"correct_answer" yaml:"correct_answer"`
	IncorrectAnswers []string `json:"incorrect_answers" yaml:"incorrect_answers"`
}

type apiResponse struct {
	ResponseCode int           `json:"response_code" yaml:"response_code"`
	Results      []RawQuestion `json:"results" yaml:"results"`
}

// ResponseCodeError reports a non-zero response_code from the API.
type ResponseCodeError struct {
	Code int
}

func (e *ResponseCodeError) Error() string {
	switch e.Code {
	case 1:
		return "opentdb response_code=1: not enough questions for the query"
	case 2:
		return "opentdb response_code=2: invalid parameter"
	case 3:
		return "opentdb response_code=3: session token not found"
	case 4:
		return "opentdb response_code=4: session token exhausted"
	case 5:
		return "opentdb response_code=5: rate limited"
	default:
		return fmt.Sprintf("opentdb response_code=%d", e.Code)
	}
}

type Client struct {
	httpClient *http.Client
	baseURL    string
}

type Option func(*Client)

func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
		if baseURL != "" {
			c.baseURL = baseURL
		}
	}
}

func NewClient(httpClient *http.Client, opts ...Option) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	client := &Client{
		httpClient: httpClient,
		baseURL:    DefaultBaseURL,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// FetchQuestions requests amount multiple-choice questions. A non-positive
// amount falls back to DefaultAmount.
func (c *Client) FetchQuestions(ctx context.Context, amount int) ([]RawQuestion, error) {
	if amount <= 0 {
		amount = DefaultAmount
	}
	if amount > MaxAmount {
		amount = MaxAmount
	}

	query := url.Values{}
	query.Set("amount", strconv.Itoa(amount))
	query.Set("type", typeMultiple)

	reqURL := c.baseURL + "/api.php?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("opentdb returned status %d", resp.StatusCode)
	}

	var payload apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode opentdb response: %w", err)
	}

	if payload.ResponseCode != 0 {
		return nil, &ResponseCodeError{Code: payload.ResponseCode}
	}

	return payload.Results, nil
}
