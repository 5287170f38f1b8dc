// Copyright (c) 2026 Signon Team
// Signon - terminal sign-in client for remote identity services
// This source code is licensed under the MIT license found in the LICENSE file.

// Package state provides a concurrency-safe, in-memory mailbox for
// transient credentials that need to travel between entry points, such as
// CLI flags and the sign-in form. Passwords are held as security.Secret so
// they redact in any output and can be explicitly zeroed after use.
package state

import (
	"sync"

	"github.com/pverkade/signon/internal/security"
)

// CredentialCache is the package-wide mailbox. CLI entry points fill it;
// the sign-in form drains it once and clears it.
var CredentialCache = &credentialMailbox{}

type credentialMailbox struct {
	username string
	password security.Secret
	mu       sync.RWMutex
}

// Set stores the username and a copy of the password, overwriting any
// previous value.
func (c *credentialMailbox) Set(username string, password []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.username = username
	c.password.Zero()
	c.password = security.FromBytes(password)
}

// Get retrieves the username and a copy of the password. The caller is
// responsible for zeroing the returned slice after use.
func (c *credentialMailbox) Get() (string, []byte) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stored := c.password.Bytes()
	if stored == nil {
		return c.username, nil
	}
	passCopy := make([]byte, len(stored))
	copy(passCopy, stored)
	return c.username, passCopy
}

// HasCredentials reports whether a password is waiting in the mailbox.
func (c *credentialMailbox) HasCredentials() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return !c.password.IsZero()
}

// Clear securely wipes the stored password and drops the username.
func (c *credentialMailbox) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.password.Zero()
	c.password = security.Secret{}
	c.username = ""
}
