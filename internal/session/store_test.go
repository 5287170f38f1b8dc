// Copyright (c) 2026 Signon Team
// Signon - terminal sign-in client for remote identity services
// This source code is licensed under the MIT license found in the LICENSE file.

package session

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/pverkade/signon/internal/model"
)

func TestSaveAndCurrentRoundTrip(t *testing.T) {
	withTestStore(t, func(s *Store) {
		now := time.Now().UTC().Truncate(time.Second)
		sess := model.Session{
			Token:      "tok-4f2a",
			Username:   "stargazer",
			ObtainedAt: now,
			ExpiresAt:  now.Add(12 * time.Hour),
		}
		if err := SaveSession(sess); err != nil {
			t.Fatalf("SaveSession failed: %v", err)
		}

		got, err := CurrentSession()
		if err != nil {
			t.Fatalf("CurrentSession failed: %v", err)
		}
		if got == nil {
			t.Fatal("expected a session, got nil")
		}
		if got.Username != "stargazer" {
			t.Errorf("username = %q, want %q", got.Username, "stargazer")
		}
		if got.Token != "tok-4f2a" {
			t.Errorf("token = %q, want %q", got.Token, "tok-4f2a")
		}
	})
}

func TestSaveReplacesPreviousSession(t *testing.T) {
	withTestStore(t, func(s *Store) {
		now := time.Now()
		first := model.Session{Token: "tok-1", Username: "alice", ObtainedAt: now.Add(-time.Minute)}
		second := model.Session{Token: "tok-2", Username: "bob", ObtainedAt: now}

		if err := s.Save(first); err != nil {
			t.Fatalf("Save(first) failed: %v", err)
		}
		if err := s.Save(second); err != nil {
			t.Fatalf("Save(second) failed: %v", err)
		}

		got, err := s.Current()
		if err != nil {
			t.Fatalf("Current failed: %v", err)
		}
		if got == nil || got.Username != "bob" {
			t.Fatalf("Current = %+v, want bob's session", got)
		}

		count, err := s.bun.NewSelect().Model((*sessionRow)(nil)).Count(context.Background())
		if err != nil {
			t.Fatalf("count failed: %v", err)
		}
		if count != 1 {
			t.Errorf("stored rows = %d, want 1", count)
		}
	})
}

func TestCurrentDropsExpiredSession(t *testing.T) {
	withTestStore(t, func(s *Store) {
		now := time.Now()
		expired := model.Session{
			Token:      "tok-old",
			Username:   "carol",
			ObtainedAt: now.Add(-2 * time.Hour),
			ExpiresAt:  now.Add(-time.Hour),
		}
		if err := s.Save(expired); err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		got, err := s.Current()
		if err != nil {
			t.Fatalf("Current failed: %v", err)
		}
		if got != nil {
			t.Fatalf("expected nil for expired session, got %+v", got)
		}

		// The expired row must be gone, not just filtered.
		count, err := s.bun.NewSelect().Model((*sessionRow)(nil)).Count(context.Background())
		if err != nil {
			t.Fatalf("count failed: %v", err)
		}
		if count != 0 {
			t.Errorf("stored rows = %d, want 0", count)
		}
	})
}

func TestSessionWithoutExpiryNeverExpires(t *testing.T) {
	withTestStore(t, func(s *Store) {
		sess := model.Session{Token: "tok-forever", Username: "dave", ObtainedAt: time.Now().Add(-24 * time.Hour)}
		if err := s.Save(sess); err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		got, err := s.Current()
		if err != nil {
			t.Fatalf("Current failed: %v", err)
		}
		if got == nil || got.Username != "dave" {
			t.Fatalf("Current = %+v, want dave's session", got)
		}

		n, err := s.PurgeExpired(time.Now())
		if err != nil {
			t.Fatalf("PurgeExpired failed: %v", err)
		}
		if n != 0 {
			t.Errorf("purged %d rows, want 0", n)
		}
	})
}

func TestPurgeExpiredRemovesStaleRows(t *testing.T) {
	withTestStore(t, func(s *Store) {
		now := time.Now()
		stale := model.Session{
			Token:      "tok-stale",
			Username:   "erin",
			ObtainedAt: now.Add(-48 * time.Hour),
			ExpiresAt:  now.Add(-36 * time.Hour),
		}
		if err := s.Save(stale); err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		n, err := s.PurgeExpired(now)
		if err != nil {
			t.Fatalf("PurgeExpired failed: %v", err)
		}
		if n != 1 {
			t.Errorf("purged %d rows, want 1", n)
		}
	})
}

func TestClearSession(t *testing.T) {
	withTestStore(t, func(s *Store) {
		sess := model.Session{Token: "tok-x", Username: "frank", ObtainedAt: time.Now()}
		if err := SaveSession(sess); err != nil {
			t.Fatalf("SaveSession failed: %v", err)
		}
		if err := ClearSession(); err != nil {
			t.Fatalf("ClearSession failed: %v", err)
		}
		got, err := CurrentSession()
		if err != nil {
			t.Fatalf("CurrentSession failed: %v", err)
		}
		if got != nil {
			t.Fatalf("expected nil after clear, got %+v", got)
		}
		// Clearing an empty store is not an error.
		if err := ClearSession(); err != nil {
			t.Fatalf("ClearSession on empty store failed: %v", err)
		}
	})
}

func TestTokenIsSealedAtRest(t *testing.T) {
	withTestStore(t, func(s *Store) {
		sess := model.Session{Token: "plaintext-token-value", Username: "grace", ObtainedAt: time.Now()}
		if err := s.Save(sess); err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		row := new(sessionRow)
		if err := s.bun.NewSelect().Model(row).Limit(1).Scan(context.Background()); err != nil {
			t.Fatalf("raw select failed: %v", err)
		}
		if bytes.Contains(row.Token, []byte("plaintext-token-value")) {
			t.Error("token stored in plaintext")
		}
	})
}

func TestHelpersRequireInitializedStore(t *testing.T) {
	prev := store
	store = nil
	defer func() { store = prev }()

	if IsInitialized() {
		t.Error("IsInitialized = true with nil store")
	}
	if err := SaveSession(model.Session{}); err == nil {
		t.Error("SaveSession should fail without InitDB")
	}
	if _, err := CurrentSession(); err == nil {
		t.Error("CurrentSession should fail without InitDB")
	}
	if err := ClearSession(); err == nil {
		t.Error("ClearSession should fail without InitDB")
	}
}
