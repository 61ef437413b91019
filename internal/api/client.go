package api

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

// Client talks to the tickerdesk trading backend. All operations assume
// JSON over HTTP; async job endpoints answer with the standard Envelope.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewClient creates a backend client for the given base URL. The API key
// may be empty for backends that do not require authentication.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SetHTTPClient overrides the underlying HTTP client (used by tests and
// callers that need custom transports).
func (c *Client) SetHTTPClient(h *http.Client) { c.http = h }

// BaseURL returns the configured backend base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// Envelope is the response shape of async job endpoints:
// { success, error?, task_id?, result? }.
type Envelope struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	TaskID  string          `json:"task_id,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
}

// StatusResponse is the body of GET /tools/task-status/{id}.
type StatusResponse struct {
	Status TaskStatus      `json:"status"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// SubmitTool submits a long-running analysis job via POST /tools/{tool}
// and returns the backend-assigned task identifier.
func (c *Client) SubmitTool(ctx context.Context, tool string, params any) (string, error) {
	var env Envelope
	if err := c.PostJSON(ctx, "/tools/"+url.PathEscape(tool), params, &env); err != nil {
		return "", err
	}
	if !env.Success {
		return "", &APIError{Message: env.Error}
	}
	if env.TaskID == "" {
		return "", fmt.Errorf("backend accepted %s job but returned no task id", tool)
	}
	return env.TaskID, nil
}

// TaskStatus queries the status of an in-flight task.
func (c *Client) TaskStatus(ctx context.Context, taskID string) (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.GetJSON(ctx, "/tools/task-status/"+url.PathEscape(taskID), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UserPlan fetches the subscription tier string for the current user.
func (c *Client) UserPlan(ctx context.Context) (string, error) {
	var resp struct {
		Success bool   `json:"success"`
		Plan    string `json:"plan"`
		Error   string `json:"error,omitempty"`
	}
	if err := c.GetJSON(ctx, "/api/user/plan", &resp); err != nil {
		return "", err
	}
	if !resp.Success {
		return "", &APIError{Message: resp.Error}
	}
	return resp.Plan, nil
}

// GetJSON issues a GET request and decodes the JSON response into out.
func (c *Client) GetJSON(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

// PostJSON issues a POST request with a JSON body and decodes the JSON
// response into out. A nil body sends an empty JSON object.
func (c *Client) PostJSON(ctx context.Context, path string, body, out any) error {
	if body == nil {
		body = struct{}{}
	}
	return c.do(ctx, http.MethodPost, path, body, out)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshalling request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		apiErr := &APIError{Status: resp.StatusCode}
		// Backends report logical failures as {success:false, error:"..."}.
		var env Envelope
		if json.Unmarshal(data, &env) == nil && env.Error != "" {
			apiErr.Message = env.Error
		} else {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding %s %s response: %w", method, path, err)
	}
	return nil
}
