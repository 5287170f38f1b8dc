// Copyright (c) 2026 Signon Team
// Signon - terminal sign-in client for remote identity services
// This source code is licensed under the MIT license found in the LICENSE file.

// Package security provides a small wrapper for in-memory credentials.
// A Secret redacts itself in formatted output and JSON so a password can
// never leak through logging or serialized diagnostics, and can be wiped
// once it has served its purpose.
package security

// Redacted is what a Secret looks like from the outside.
const Redacted = "[SECRET]"

// Secret holds a sensitive byte string.
type Secret struct {
	value []byte
}

// FromString wraps a string in a Secret.
func FromString(s string) Secret {
	return Secret{value: []byte(s)}
}

// FromBytes wraps a copy of b in a Secret, so later changes to the
// caller's slice do not reach the stored value.
func FromBytes(b []byte) Secret {
	if b == nil {
		return Secret{}
	}
	cp := make([]byte, len(b))
	copy(cp, b)
	return Secret{value: cp}
}

// Bytes returns the underlying value. The slice aliases the Secret's
// storage; Zero wipes it.
func (s Secret) Bytes() []byte {
	return s.value
}

// IsZero reports whether the Secret holds nothing.
func (s Secret) IsZero() bool {
	return len(s.value) == 0
}

// Zero overwrites the underlying value in place.
func (s *Secret) Zero() {
	for i := range s.value {
		s.value[i] = 0
	}
}

// String implements fmt.Stringer and always redacts.
func (s Secret) String() string {
	return Redacted
}

// MarshalJSON redacts the value in any serialized form.
func (s Secret) MarshalJSON() ([]byte, error) {
	return []byte(`"` + Redacted + `"`), nil
}
