// Copyright (c) 2026 Signon Team
// Signon - terminal sign-in client for remote identity services
// This source code is licensed under the MIT license found in the LICENSE file.

package flow

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/pverkade/signon/internal/classify"
	"github.com/pverkade/signon/internal/i18n"
)

const (
	usernameMinLen = 3
	usernameMaxLen = 64
	passwordMinLen = 8
)

// ValidationError is a locally rejected input field. It never reaches the
// classifier; the presenter renders it inline at the field.
type ValidationError struct {
	Field   classify.Field
	Message string
}

func (v ValidationError) Error() string { return v.Message }

// ValidateCredentials checks the entered credentials before any request is
// made. An empty result means the attempt may begin.
func ValidateCredentials(username, password string) []ValidationError {
	var issues []ValidationError

	switch n := utf8.RuneCountInString(username); {
	case strings.TrimSpace(username) == "":
		issues = append(issues, ValidationError{classify.FieldUsername, i18n.T("flow.username_required")})
	case n < usernameMinLen || n > usernameMaxLen:
		issues = append(issues, ValidationError{classify.FieldUsername, i18n.T("flow.username_length", usernameMinLen, usernameMaxLen)})
	}

	switch {
	case password == "":
		issues = append(issues, ValidationError{classify.FieldPassword, i18n.T("flow.password_required")})
	case utf8.RuneCountInString(password) < passwordMinLen || !hasLetterAndDigit(password):
		issues = append(issues, ValidationError{classify.FieldPassword, i18n.T("flow.password_weak", passwordMinLen)})
	}

	return issues
}

func hasLetterAndDigit(s string) bool {
	var letter, digit bool
	for _, r := range s {
		switch {
		case unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
			digit = true
		}
		if letter && digit {
			return true
		}
	}
	return false
}
