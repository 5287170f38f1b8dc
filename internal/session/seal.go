// Copyright (c) 2026 Signon Team
// Signon - terminal sign-in client for remote identity services
// This source code is licensed under the MIT license found in the LICENSE file.

package session

import (
	"crypto/rand"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/crypto/nacl/secretbox"
)

// sealer wraps tokens in secretbox before they touch the database. The key
// lives in a per-install file (0600); losing the file invalidates stored
// sessions, which only costs the user a fresh sign-in.
type sealer struct {
	key [32]byte
}

// newSealer loads the key from keyFile, creating a fresh random key when
// the file does not exist yet.
func newSealer(keyFile string) (*sealer, error) {
	s := &sealer{}
	data, err := os.ReadFile(keyFile)
	if err == nil {
		if len(data) != len(s.key) {
			return nil, fmt.Errorf("key file %s has unexpected size %d", keyFile, len(data))
		}
		copy(s.key[:], data)
		return s, nil
	}
	if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read key file: %w", err)
	}

	if _, err := io.ReadFull(rand.Reader, s.key[:]); err != nil {
		return nil, fmt.Errorf("failed to generate sealing key: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(keyFile), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create key directory: %w", err)
	}
	if err := os.WriteFile(keyFile, s.key[:], 0o600); err != nil {
		return nil, fmt.Errorf("failed to write key file: %w", err)
	}
	return s, nil
}

// seal encrypts plain and returns nonce-prefixed ciphertext.
func (s *sealer) seal(plain []byte) ([]byte, error) {
	var nonce [24]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}
	return secretbox.Seal(nonce[:], plain, &nonce, &s.key), nil
}

// open decrypts nonce-prefixed ciphertext produced by seal.
func (s *sealer) open(box []byte) ([]byte, error) {
	var nonce [24]byte
	if len(box) < len(nonce) {
		return nil, fmt.Errorf("sealed token too short")
	}
	copy(nonce[:], box[:len(nonce)])
	plain, ok := secretbox.Open(nil, box[len(nonce):], &nonce, &s.key)
	if !ok {
		return nil, fmt.Errorf("sealed token failed to open")
	}
	return plain, nil
}
