// Copyright (c) 2026 Signon Team
// Signon - terminal sign-in client for remote identity services
// This source code is licensed under the MIT license found in the LICENSE file.

package classify

import "github.com/pverkade/signon/internal/i18n"

// Projection tells the form how to present an outcome: either one input is
// marked invalid with an inline message, or a form-level banner is shown.
// Never both.
type Projection struct {
	Field        Field  // input to mark; FieldNone for banner outcomes
	FieldMessage string // inline message under the field
	Banner       string // form-level message
}

// Project maps an outcome to its presentation. It is pure: same outcome,
// same projection, no side effects.
func Project(o Outcome) Projection {
	switch o.Kind {
	case KindFieldError:
		return Projection{Field: o.Field, FieldMessage: o.Message}
	case KindRateLimited:
		return Projection{Banner: CountdownMessage(o.RetryAfter)}
	default:
		return Projection{Banner: o.Message}
	}
}

// CountdownMessage renders the rate-limit banner for the given number of
// remaining seconds. The form re-renders it each tick while locked.
func CountdownMessage(seconds int) string {
	return i18n.T("classify.rate_limited", seconds)
}
