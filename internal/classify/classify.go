// Copyright (c) 2026 Signon Team
// Signon - terminal sign-in client for remote identity services
// This source code is licensed under the MIT license found in the LICENSE file.

// Package classify turns failed sign-in exchanges into a closed set of
// outcome kinds. Every failure an attempt can produce maps to exactly one
// Outcome; the projection in this package then decides how the form
// presents it. Raw transport errors never travel past this boundary.
package classify

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/pverkade/signon/internal/authapi"
	"github.com/pverkade/signon/internal/i18n"
)

// Kind enumerates the sign-in failure categories. The set is closed: the
// classifier can return nothing outside it.
type Kind string

const (
	KindFieldError         Kind = "field_error"
	KindCredentialsInvalid Kind = "credentials_invalid"
	KindRateLimited        Kind = "rate_limited"
	KindServiceUnavailable Kind = "service_unavailable"
	KindNetworkUnreachable Kind = "network_unreachable"
	KindServerFault        Kind = "server_fault"
	KindUnknown            Kind = "unknown"
)

// Field identifies the form input a field-level outcome attaches to.
type Field string

const (
	FieldNone     Field = ""
	FieldUsername Field = "username"
	FieldPassword Field = "password"
)

// DefaultRetryAfterSeconds is used when a 429 reply carries no usable
// Retry-After header.
const DefaultRetryAfterSeconds = 60

// Markers the identity service uses in 400/401 bodies to single out a field.
const (
	usernameIssueCode        = "FvQ1"
	passwordRequiredMessage  = "Password is required"
	passwordIncorrectMessage = "Password Incorrect"
)

// Outcome is the classified result of a failed attempt. Kind is always set;
// Field only for KindFieldError, RetryAfter only for KindRateLimited, Status
// when an HTTP reply was received, Err for network-level causes.
type Outcome struct {
	Kind       Kind
	Field      Field
	Message    string
	RetryAfter int // seconds
	Status     int // HTTP status, 0 if none arrived
	Err        error
}

// Error makes Outcome usable on error paths (logging, CLI exit messages).
func (o Outcome) Error() string {
	if o.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", o.Kind, o.Message, o.Err)
	}
	return fmt.Sprintf("%s: %s", o.Kind, o.Message)
}

// Unwrap exposes the underlying transport error, when there is one.
func (o Outcome) Unwrap() error { return o.Err }

// Constructors. Using these keeps payload fields consistent with the kind.

// NewFieldError attaches a message to a single form field.
func NewFieldError(field Field, msg string) Outcome {
	return Outcome{Kind: KindFieldError, Field: field, Message: msg}
}

// NewCredentialsInvalid reports a rejected username/password pair. An empty
// msg falls back to the generic localized text.
func NewCredentialsInvalid(msg string) Outcome {
	if msg == "" {
		msg = i18n.T("classify.credentials_invalid")
	}
	return Outcome{Kind: KindCredentialsInvalid, Message: msg}
}

// NewRateLimited reports a server-directed cool-down of the given length.
func NewRateLimited(seconds int) Outcome {
	return Outcome{
		Kind:       KindRateLimited,
		Message:    CountdownMessage(seconds),
		RetryAfter: seconds,
		Status:     http.StatusTooManyRequests,
	}
}

// NewServiceUnavailable reports a 503 from the service.
func NewServiceUnavailable() Outcome {
	return Outcome{
		Kind:    KindServiceUnavailable,
		Message: i18n.T("classify.service_unavailable"),
		Status:  http.StatusServiceUnavailable,
	}
}

// NewNetworkUnreachable reports that no HTTP reply arrived at all.
func NewNetworkUnreachable(cause error, msg string) Outcome {
	return Outcome{Kind: KindNetworkUnreachable, Message: msg, Err: cause}
}

// NewServerFault reports a 5xx other than 503.
func NewServerFault(status int) Outcome {
	return Outcome{
		Kind:    KindServerFault,
		Message: i18n.T("classify.server_fault"),
		Status:  status,
	}
}

// NewUnknown covers replies that fit no other category.
func NewUnknown(msg string) Outcome {
	if msg == "" {
		msg = i18n.T("classify.unknown")
	}
	return Outcome{Kind: KindUnknown, Message: msg}
}

// Classify maps the result of a sign-in exchange to exactly one Outcome.
// It is total: any (resp, err) combination yields a value, and classifying
// the same input twice yields the same outcome. The rule order is part of
// the contract; earlier rules win.
func Classify(resp *authapi.Response, err error) Outcome {
	// 1+2. Network-level failures: nothing usable came back.
	if err != nil {
		if isTimeout(err) {
			return NewNetworkUnreachable(err, i18n.T("classify.timeout"))
		}
		return NewNetworkUnreachable(err, i18n.T("classify.network"))
	}
	if resp == nil {
		return NewUnknown("")
	}
	o := classifyResponse(resp)
	// The reply's status rides along into the attempt journal.
	o.Status = resp.StatusCode
	return o
}

func classifyResponse(resp *authapi.Response) Outcome {
	switch resp.StatusCode {
	// 3. Server-directed rate limit.
	case http.StatusTooManyRequests:
		seconds, ok := resp.RetryAfter()
		if !ok {
			seconds = DefaultRetryAfterSeconds
		}
		return NewRateLimited(seconds)

	// 4. Planned/overload downtime.
	case http.StatusServiceUnavailable:
		return NewServiceUnavailable()

	// 5. Validation replies that may single out a field.
	case http.StatusBadRequest, http.StatusUnauthorized:
		if o, ok := fieldOutcome(resp.Envelope); ok {
			return o
		}
		return NewCredentialsInvalid(envelopeMessage(resp.Envelope))
	}

	// 6. Remaining server-side faults.
	if resp.StatusCode >= http.StatusInternalServerError {
		return NewServerFault(resp.StatusCode)
	}

	// 8. Success detection happens before classification, so a 2xx seen here
	// is missing the success marker.
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return NewUnknown(i18n.T("classify.unexpected_reply"))
	}

	// 7. Everything else counts as a rejected sign-in.
	return NewCredentialsInvalid(envelopeMessage(resp.Envelope))
}

// fieldOutcome inspects a 400/401 envelope for the service's field markers.
// The first entry of the error list decides; later entries are advisory.
func fieldOutcome(env *authapi.Envelope) (Outcome, bool) {
	if env == nil {
		return Outcome{}, false
	}
	if len(env.Errors) > 0 {
		first := env.Errors[0]
		if first.Code == usernameIssueCode {
			msg := first.Message
			if msg == "" {
				msg = i18n.T("classify.check_username")
			}
			return NewFieldError(FieldUsername, msg), true
		}
		if first.Message == passwordRequiredMessage {
			return NewFieldError(FieldPassword, first.Message), true
		}
	}
	if env.Message == passwordIncorrectMessage {
		return NewFieldError(FieldPassword, env.Message), true
	}
	return Outcome{}, false
}

// envelopeMessage returns the service's top-level message, if any.
func envelopeMessage(env *authapi.Envelope) string {
	if env == nil {
		return ""
	}
	return env.Message
}

// isTimeout reports whether err is a deadline or timeout failure.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
