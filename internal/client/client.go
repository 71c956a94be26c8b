// Package client talks to a running blnd over its HTTP API.
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

	"github.com/smazurov/blnd/internal/api/models"
)

// Client is an HTTP client for the blnd attribute API.
type Client struct {
	baseURL    string
	username   string
	password   string
	httpClient *http.Client
}

// New creates a client for baseURL, e.g. "http://localhost:8095".
// Credentials are only sent when username is set.
func New(baseURL, username, password string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		username:   username,
		password:   password,
		httpClient: &http.Client{Timeout: 5 * time.Second},
	}
}

// List reads every attribute.
func (c *Client) List(ctx context.Context) ([]models.AttributeData, error) {
	var out models.AttributeListData
	if err := c.do(ctx, http.MethodGet, "/api/attributes", nil, &out); err != nil {
		return nil, err
	}
	return out.Attributes, nil
}

// Get reads one attribute.
func (c *Client) Get(ctx context.Context, name string) (models.AttributeData, error) {
	var out models.AttributeData
	err := c.do(ctx, http.MethodGet, "/api/attributes/"+url.PathEscape(name), nil, &out)
	return out, err
}

// Set writes value to an attribute and returns the value read back.
func (c *Client) Set(ctx context.Context, name, value string) (models.AttributeWriteData, error) {
	body := map[string]string{"value": value}
	var out models.AttributeWriteData
	err := c.do(ctx, http.MethodPut, "/api/attributes/"+url.PathEscape(name), body, &out)
	return out, err
}

// State reads the engine snapshot.
func (c *Client) State(ctx context.Context) (models.StateData, error) {
	var out models.StateData
	err := c.do(ctx, http.MethodGet, "/api/state", nil, &out)
	return out, err
}

// SetDisplay reports a display edge to the daemon.
func (c *Client) SetDisplay(ctx context.Context, suspended bool) (models.StateData, error) {
	body := map[string]bool{"suspended": suspended}
	var out models.StateData
	err := c.do(ctx, http.MethodPut, "/api/display", body, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	StatusCode int
	Detail     string
}

func (e *StatusError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("server returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("server returned status %d: %s", e.StatusCode, e.Detail)
}

// decodeError reads a huma error model when there is one.
func decodeError(resp *http.Response) error {
	var problem struct {
		Title  string `json:"title"`
		Detail string `json:"detail"`
	}
	statusErr := &StatusError{StatusCode: resp.StatusCode}
	if err := json.NewDecoder(resp.Body).Decode(&problem); err == nil {
		statusErr.Detail = problem.Title
		if problem.Detail != "" {
			statusErr.Detail = problem.Detail
		}
	}
	return statusErr
}
