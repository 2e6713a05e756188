package linkctl

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
)

// APIError is a non-2xx answer from the session API
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("HTTP %d", e.Status)
	}
	return fmt.Sprintf("HTTP %d: %s", e.Status, e.Message)
}

// SignRequest mirrors the POST /api/links/sign body
type SignRequest struct {
	SessionID string `json:"sessionId"`
	UserID    string `json:"userId,omitempty"`
	ExpSec    int    `json:"expSec,omitempty"`
}

// SignResponse is a successful signing answer
type SignResponse struct {
	Token     string `json:"token" yaml:"token"`
	ExpiresIn int64  `json:"expiresIn" yaml:"expires_in"`
}

// Client talks to the session API
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates an API client for baseURL
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// Sign asks the API for a signed link token
func (c *Client) Sign(ctx context.Context, req SignRequest) (*SignResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/links/sign", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	var resp SignResponse
	if err := c.do(httpReq, &resp); err != nil {
		return nil, err
	}
	if resp.Token == "" {
		return nil, fmt.Errorf("sign response carried no token")
	}
	return &resp, nil
}

// GetSession fetches one record through the external route. token may be empty.
func (c *Client) GetSession(ctx context.Context, id, token string) (map[string]interface{}, error) {
	endpoint := c.baseURL + "/api/experiments/external/" + url.PathEscape(id)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	var envelope struct {
		Success bool                   `json:"success"`
		Data    map[string]interface{} `json:"data"`
	}
	if err := c.do(httpReq, &envelope); err != nil {
		return nil, err
	}
	return envelope.Data, nil
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var failure struct {
			Message string `json:"message"`
			Error   string `json:"error"`
		}
		_ = json.Unmarshal(data, &failure)
		msg := failure.Message
		if msg == "" {
			msg = failure.Error
		}
		return &APIError{Status: resp.StatusCode, Message: msg}
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
