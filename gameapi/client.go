// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package gameapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/danielhkuo/blossom-site/models"
)

// StatusTimeout bounds the status probe, which is polled by every page view
const StatusTimeout = 3 * time.Second

// maxResponseBytes caps how much of an upstream body is read
const maxResponseBytes = 1 << 20

// Client talks to the game server's REST API
type Client struct {
	baseURL string
	http    *http.Client
}

// Response is an upstream reply. JSON holds the decoded body when it parsed
// as JSON; Text holds the raw body otherwise.
type Response struct {
	Status int
	Body   []byte
	JSON   map[string]any
	Text   string
}

// OK reports whether the upstream accepted the request (200 or 204)
func (r *Response) OK() bool {
	return r.Status == http.StatusOK || r.Status == http.StatusNoContent
}

// Message returns the upstream "message" field, or fallback
func (r *Response) Message(fallback string) string {
	if msg, ok := r.JSON["message"].(string); ok && msg != "" {
		return msg
	}
	return fallback
}

// New creates a client for baseURL, e.g. http://localhost:3000/api
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Do sends body as JSON to path under the base URL. A non-nil error means the
// game server could not be reached; any HTTP status is returned as a Response.
func (c *Client) Do(ctx context.Context, method, path string, body any, headers map[string]string) (*Response, error) {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	out := &Response{Status: resp.StatusCode, Body: raw}
	if len(bytes.TrimSpace(raw)) == 0 {
		out.JSON = map[string]any{}
		return out, nil
	}
	if err := json.Unmarshal(raw, &out.JSON); err != nil {
		out.JSON = nil
		out.Text = string(raw)
	}
	return out, nil
}

// Status fetches the game server status document. Any failure, including a
// non-JSON reply, is returned as an error.
func (c *Client) Status(ctx context.Context) (models.GameStatus, error) {
	ctx, cancel := context.WithTimeout(ctx, StatusTimeout)
	defer cancel()

	var status models.GameStatus

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/status", nil)
	if err != nil {
		return status, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return status, err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&status); err != nil {
		return status, fmt.Errorf("decode status: %w", err)
	}
	return status, nil
}
