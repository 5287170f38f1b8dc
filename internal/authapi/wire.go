// Copyright (c) 2026 Signon Team
// Signon - terminal sign-in client for remote identity services
// This source code is licensed under the MIT license found in the LICENSE file.

package authapi

import (
	"net/http"
	"strconv"
)

// SuccessMessage is the exact body message the identity service sends on a
// successful sign-in. An HTTP 200 without this marker is not a success.
const SuccessMessage = "logged in successfully"

// LoginRequest is the JSON body for POST {server}/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// FieldIssue is one entry of the error list in a failure envelope.
type FieldIssue struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Envelope mirrors the identity service's response body. The same shape is
// used for success and failure replies; unknown fields are ignored.
type Envelope struct {
	Status  int          `json:"status"`
	Message string       `json:"message"`
	Token   string       `json:"token,omitempty"`
	Errors  []FieldIssue `json:"errors,omitempty"`
}

// Response carries an HTTP reply from the identity service. The client
// returns one for every received response, including 4xx and 5xx; an error
// is reserved for network-level failures where no response arrived.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	// Envelope is the decoded body, or nil when the body was not valid JSON.
	Envelope *Envelope
}

// Success reports whether the reply is an HTTP 200 carrying the exact
// success marker.
func (r *Response) Success() bool {
	return r != nil && r.StatusCode == http.StatusOK &&
		r.Envelope != nil && r.Envelope.Message == SuccessMessage
}

// RetryAfter returns the Retry-After header as whole seconds. ok is false
// when the header is absent, not a number, or negative; zero is valid and
// means the client may retry immediately.
func (r *Response) RetryAfter() (seconds int, ok bool) {
	if r == nil {
		return 0, false
	}
	raw := r.Header.Get("Retry-After")
	if raw == "" {
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
