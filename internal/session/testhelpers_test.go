// Copyright (c) 2026 Signon Team
// Signon - terminal sign-in client for remote identity services
// This source code is licensed under the MIT license found in the LICENSE file.

package session

import (
	"path/filepath"
	"testing"
)

// withTestStore initializes an in-memory sqlite Store for the duration of
// the provided function and restores the package-level store afterwards.
func withTestStore(t *testing.T, fn func(s *Store)) {
	t.Helper()

	prevStore := store

	dsn := "file:" + t.Name() + "?mode=memory&cache=shared"
	keyFile := filepath.Join(t.TempDir(), "session.key")
	if err := InitDB("sqlite", dsn, keyFile); err != nil {
		t.Fatalf("InitDB failed: %v", err)
	}
	s := store

	defer func() {
		_ = s.Close()
		store = prevStore
	}()

	fn(s)
}
