// Package client provides API client functionality for the chat host
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"dinotidus/internal/server"
	"dinotidus/pkg/neural"
)

// APIClient represents a client for the chat host REST API
type APIClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

// APIError is returned for non-2xx responses.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server error (%d): %s", e.StatusCode, e.Message)
}

// NewAPIClient creates a client for a host on localhost
func NewAPIClient(port int) *APIClient {
	return New(fmt.Sprintf("http://localhost:%d", port))
}

// New creates a client for baseURL, e.g. http://127.0.0.1:8080
func New(baseURL string) *APIClient {
	return &APIClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// CreateSession opens a new chat session
func (c *APIClient) CreateSession(ctx context.Context) (string, error) {
	var result server.SessionResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/sessions", nil, &result); err != nil {
		return "", err
	}
	return result.SessionID, nil
}

// DeleteSession closes a chat session
func (c *APIClient) DeleteSession(ctx context.Context, sessionID string) error {
	return c.do(ctx, http.MethodDelete, sessionPath(sessionID, ""), nil, nil)
}

// Chat sends one message and returns the agent reply
func (c *APIClient) Chat(ctx context.Context, sessionID, message string) (*server.ChatResponse, error) {
	req := server.ChatRequest{SessionID: sessionID, Message: message}
	var result server.ChatResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/chat", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Train sends one training pair
func (c *APIClient) Train(ctx context.Context, sessionID, question, answer string) (*server.TrainResponse, error) {
	req := server.TrainRequest{SessionID: sessionID, Question: question, Answer: answer}
	var result server.TrainResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/train", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// TrainBatch trains the session on a corpus
func (c *APIClient) TrainBatch(ctx context.Context, sessionID string, pairs []neural.Pair) (*server.TrainResponse, error) {
	req := server.BatchTrainRequest{SessionID: sessionID, Pairs: pairs}
	var result server.TrainResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/train/batch", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Stats returns the session gauges
func (c *APIClient) Stats(ctx context.Context, sessionID string) (*server.StatsResponse, error) {
	var result server.StatsResponse
	if err := c.do(ctx, http.MethodGet, sessionPath(sessionID, "/stats"), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Examples returns the recent training pairs of the session
func (c *APIClient) Examples(ctx context.Context, sessionID string) ([]neural.Pair, error) {
	var result server.ExamplesResponse
	if err := c.do(ctx, http.MethodGet, sessionPath(sessionID, "/examples"), nil, &result); err != nil {
		return nil, err
	}
	return result.Examples, nil
}

// SaveModel downloads the session model snapshot
func (c *APIClient) SaveModel(ctx context.Context, sessionID string) (string, error) {
	var result server.ModelResponse
	if err := c.do(ctx, http.MethodGet, sessionPath(sessionID, "/model"), nil, &result); err != nil {
		return "", err
	}
	return result.Model, nil
}

// LoadModel replaces the session model with a snapshot
func (c *APIClient) LoadModel(ctx context.Context, sessionID, model string) (*server.StatsResponse, error) {
	var result server.StatsResponse
	if err := c.do(ctx, http.MethodPut, sessionPath(sessionID, "/model"), server.ModelRequest{Model: model}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Reset reinitializes the session model
func (c *APIClient) Reset(ctx context.Context, sessionID string) (*server.StatsResponse, error) {
	var result server.StatsResponse
	if err := c.do(ctx, http.MethodPost, sessionPath(sessionID, "/reset"), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetHealth calls the health endpoint
func (c *APIClient) GetHealth(ctx context.Context) (*server.HealthResponse, error) {
	var result server.HealthResponse
	if err := c.do(ctx, http.MethodGet, "/api/v1/health", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetMetrics calls the metrics endpoint
func (c *APIClient) GetMetrics(ctx context.Context) (*server.MetricsResponse, error) {
	var result server.MetricsResponse
	if err := c.do(ctx, http.MethodGet, "/api/v1/metrics", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func sessionPath(sessionID, suffix string) string {
	return "/api/v1/sessions/" + url.PathEscape(sessionID) + suffix
}

// do makes a request to the API and decodes a JSON response into out
func (c *APIClient) do(ctx context.Context, method, endpoint string, data, out interface{}) error {
	var body io.Reader
	if data != nil {
		payload, err := json.Marshal(data)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+endpoint, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if data != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	// Read response body first to provide better error messages
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	// Check for non-2xx status codes
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		if json.Unmarshal(respBody, &errResp) == nil && (errResp.Error != "" || errResp.Message != "") {
			errMsg := errResp.Error
			if errMsg == "" {
				errMsg = errResp.Message
			}
			return &APIError{StatusCode: resp.StatusCode, Message: errMsg}
		}
		// Truncate response for error message (avoid huge HTML dumps)
		return &APIError{StatusCode: resp.StatusCode, Message: preview(respBody, 200)}
	}

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}

	// Check content type to ensure we're getting JSON
	contentType := resp.Header.Get("Content-Type")
	if contentType != "" && !strings.Contains(contentType, "json") {
		return fmt.Errorf("unexpected content type %q (expected JSON): %s", contentType, preview(respBody, 100))
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to decode JSON response: %w (response: %s)", err, preview(respBody, 100))
	}
	return nil
}

func preview(body []byte, limit int) string {
	s := string(body)
	if len(s) > limit {
		s = s[:limit] + "..."
	}
	return s
}
