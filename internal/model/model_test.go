// Copyright (c) 2026 Signon Team
// Signon - terminal sign-in client for remote identity services
// This source code is licensed under the MIT license found in the LICENSE file.

package model

import (
	"strings"
	"testing"
	"time"
)

func TestAttemptStringOmitsPassword(t *testing.T) {
	a := Attempt{Username: "vera", Password: "hunter2ab", Number: 2, TraceID: "t-123"}
	got := a.String()
	if strings.Contains(got, "hunter2ab") {
		t.Fatalf("Attempt.String() leaked the password: %q", got)
	}
	if !strings.Contains(got, "vera") || !strings.Contains(got, "#2") {
		t.Errorf("unexpected Attempt.String(): %q", got)
	}
}

func TestSessionExpired(t *testing.T) {
	now := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)

	s := Session{ExpiresAt: now.Add(time.Hour)}
	if s.Expired(now) {
		t.Error("session with future expiry reported expired")
	}
	s.ExpiresAt = now.Add(-time.Minute)
	if !s.Expired(now) {
		t.Error("session past expiry not reported expired")
	}
	s.ExpiresAt = time.Time{}
	if s.Expired(now) {
		t.Error("session without expiry reported expired")
	}
}
