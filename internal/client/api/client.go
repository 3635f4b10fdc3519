// Package api wraps HTTP calls to the Personal Board server.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client is the low-level HTTP client shared by the session manager and
// the guidance gateway.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// APIError is returned when the server answers with a non-2xx status. Code
// carries the machine error code from the structured error body; it is the
// only field callers may classify on.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api: %d %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("api: %d: %s", e.Status, e.Message)
}

// ActivateResponse mirrors the 200 body of POST /activate.
type ActivateResponse struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expiresAt"`
	ExpiresIn int64  `json:"expiresIn"`
}

// Activate submits a claim request.
func (c *Client) Activate(ctx context.Context, code, clientID string) (*ActivateResponse, error) {
	var resp ActivateResponse
	if err := c.postJSON(ctx, "/activate", map[string]string{
		"code":     code,
		"clientId": clientID,
	}, "", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Do sends a bearer-authenticated POST and returns the raw status and body.
// The guidance gateway owns retry policy, so no classification happens here.
func (c *Client) Do(ctx context.Context, path string, payload interface{}, token string) (int, []byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(data))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("network error: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("reading response: %w", err)
	}
	return resp.StatusCode, body, nil
}

func (c *Client) postJSON(ctx context.Context, path string, payload interface{}, token string, out interface{}) error {
	status, body, err := c.Do(ctx, path, payload, token)
	if err != nil {
		return err
	}

	if status >= 400 {
		var errResp struct {
			Error            string `json:"error"`
			ErrorDescription string `json:"error_description"`
		}
		if json.Unmarshal(body, &errResp) == nil && errResp.Error != "" {
			return &APIError{Status: status, Code: errResp.Error, Message: errResp.ErrorDescription}
		}
		return &APIError{Status: status, Message: string(body)}
	}

	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}
