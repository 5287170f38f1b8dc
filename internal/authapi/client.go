// Copyright (c) 2026 Signon Team
// Signon - terminal sign-in client for remote identity services
// This source code is licensed under the MIT license found in the LICENSE file.

// Package authapi is the HTTP client for the identity service's sign-in
// endpoint. It speaks the service's JSON wire format and deliberately does
// not interpret failures: any received HTTP response is handed back to the
// caller for classification, and errors are reserved for network problems.
package authapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pverkade/signon/internal/logging"
)

// DefaultTimeout bounds a single sign-in exchange end to end.
const DefaultTimeout = 15 * time.Second

// Client posts credentials to the identity service.
type Client struct {
	baseURL string
	http    *http.Client
}

// New returns a client for the service at baseURL, e.g. "https://id.example.com".
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
	}
}

// NewWithHTTPClient returns a client using the provided *http.Client.
// Tests use this to point at a local server or to shrink timeouts.
func NewWithHTTPClient(baseURL string, hc *http.Client) *Client {
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: hc}
}

// Login submits the credentials and returns the service's reply. The trace
// ID is sent as X-Request-ID so the attempt can be correlated server-side.
// A non-nil error means no usable HTTP response arrived (DNS failure,
// refused connection, timeout); HTTP-level failures come back as a Response.
func (c *Client) Login(ctx context.Context, username, password, traceID string) (*Response, error) {
	body, err := json.Marshal(LoginRequest{Username: username, Password: password})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/login", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if traceID != "" {
		req.Header.Set("X-Request-ID", traceID)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		logging.Debugf("authapi: login request failed after %s: %v", time.Since(start), err)
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		// The connection died mid-body; treat like any other network failure.
		return nil, err
	}
	logging.Debugf("authapi: login returned %d in %s (trace %s)", resp.StatusCode, time.Since(start), traceID)

	out := &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: raw}
	var env Envelope
	if len(raw) > 0 && json.Unmarshal(raw, &env) == nil {
		out.Envelope = &env
	}
	return out, nil
}
