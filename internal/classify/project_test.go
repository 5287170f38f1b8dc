// Copyright (c) 2026 Signon Team
// Signon - terminal sign-in client for remote identity services
// This source code is licensed under the MIT license found in the LICENSE file.

package classify

import (
	"strings"
	"testing"
)

func TestProject_FieldErrorStaysInline(t *testing.T) {
	p := Project(NewFieldError(FieldUsername, "No such user"))
	if p.Field != FieldUsername || p.FieldMessage != "No such user" {
		t.Fatalf("unexpected projection: %+v", p)
	}
	if p.Banner != "" {
		t.Errorf("field errors must not raise a banner, got %q", p.Banner)
	}
}

func TestProject_BannerOutcomesLeaveFieldsAlone(t *testing.T) {
	outcomes := []Outcome{
		NewCredentialsInvalid("Account suspended"),
		NewServiceUnavailable(),
		NewNetworkUnreachable(nil, "no route"),
		NewServerFault(500),
		NewUnknown(""),
	}
	for _, o := range outcomes {
		p := Project(o)
		if p.Field != FieldNone || p.FieldMessage != "" {
			t.Errorf("%s projected onto a field: %+v", o.Kind, p)
		}
		if p.Banner == "" {
			t.Errorf("%s projected an empty banner", o.Kind)
		}
	}
}

func TestProject_RateLimitedUsesCountdown(t *testing.T) {
	p := Project(NewRateLimited(30))
	if !strings.Contains(p.Banner, "30") {
		t.Fatalf("countdown banner should include the seconds: %q", p.Banner)
	}
	if p.Field != FieldNone {
		t.Errorf("rate limit must not mark a field: %+v", p)
	}
}

func TestProject_IsPure(t *testing.T) {
	o := NewRateLimited(7)
	a, b := Project(o), Project(o)
	if a != b {
		t.Fatalf("same outcome produced different projections: %+v vs %+v", a, b)
	}
}
