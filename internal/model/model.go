// Copyright (c) 2026 Signon Team
// Signon - terminal sign-in client for remote identity services
// This source code is licensed under the MIT license found in the LICENSE file.

// Package model holds the shared domain types for Signon. These are plain
// structs with no storage or transport concerns; the session store and the
// auth client keep their own mappings.
package model

import (
	"fmt"
	"time"
)

// Attempt describes a single credential submission. One is created per
// submit and discarded once its outcome has been applied.
type Attempt struct {
	Username  string
	Password  string
	Number    int // 1-based position in the current run of attempts
	TraceID   string
	StartedAt time.Time
}

// String returns a loggable description of the attempt. The password is
// deliberately not part of it.
func (a Attempt) String() string {
	return fmt.Sprintf("attempt #%d for %s (trace %s)", a.Number, a.Username, a.TraceID)
}

// Session is the persisted result of a successful sign-in. The token is
// opaque; Signon never inspects or decodes it.
type Session struct {
	Token      string
	Username   string
	ObtainedAt time.Time
	ExpiresAt  time.Time
}

// Expired reports whether the session has passed its expiry at the given time.
// Sessions without an expiry never expire.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}
