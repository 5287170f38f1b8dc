// Copyright (c) 2026 Signon Team
// Signon - terminal sign-in client for remote identity services
// This source code is licensed under the MIT license found in the LICENSE file.

package notify

import "testing"

type sinkCall struct {
	op string
	h  Handle
	n  Notification
}

type recordingSink struct {
	calls []sinkCall
}

func (s *recordingSink) Create(h Handle, n Notification) {
	s.calls = append(s.calls, sinkCall{"create", h, n})
}

func (s *recordingSink) Update(h Handle, n Notification) {
	s.calls = append(s.calls, sinkCall{"update", h, n})
}

func TestNotify_SecondPublishUpdatesInPlace(t *testing.T) {
	sink := &recordingSink{}
	p := NewPublisher(sink)

	h1 := p.Notify(For(SeverityError, "first"))
	h2 := p.Notify(For(SeverityError, "second"))

	if h1 != h2 {
		t.Fatalf("expected the live handle to be reused, got %d then %d", h1, h2)
	}
	if len(sink.calls) != 2 {
		t.Fatalf("expected 2 sink calls, got %d", len(sink.calls))
	}
	if sink.calls[0].op != "create" || sink.calls[1].op != "update" {
		t.Fatalf("expected create then update, got %+v", sink.calls)
	}
	if sink.calls[1].n.Message != "second" {
		t.Errorf("the live notification should reflect the most recent message, got %q", sink.calls[1].n.Message)
	}
}

func TestNotify_AfterDismissalCreatesFresh(t *testing.T) {
	sink := &recordingSink{}
	p := NewPublisher(sink)

	h1 := p.Notify(For(SeverityError, "first"))
	p.Dismissed(h1)
	h2 := p.Notify(For(SeveritySuccess, "second"))

	if h1 == h2 {
		t.Fatalf("expected a fresh handle after dismissal, got %d twice", h1)
	}
	if sink.calls[1].op != "create" {
		t.Fatalf("expected a second create, got %+v", sink.calls[1])
	}
	if _, ok := p.Live(); !ok {
		t.Error("expected a live notification after the second publish")
	}
}

func TestDismissed_StaleHandleIsIgnored(t *testing.T) {
	sink := &recordingSink{}
	p := NewPublisher(sink)

	h1 := p.Notify(For(SeverityError, "first"))
	p.Dismissed(h1)
	h2 := p.Notify(For(SeverityError, "second"))

	// A late dismissal of the old handle must not clear the new message.
	p.Dismissed(h1)
	if live, ok := p.Live(); !ok || live != h2 {
		t.Fatalf("stale dismissal cleared the live notification (live=%d ok=%v)", live, ok)
	}
}

func TestClose_SuppressesFurtherPublishes(t *testing.T) {
	sink := &recordingSink{}
	p := NewPublisher(sink)

	p.Notify(For(SeverityError, "first"))
	p.Close()

	if h := p.Notify(For(SeverityError, "late")); h != 0 {
		t.Fatalf("publish after Close returned handle %d", h)
	}
	if len(sink.calls) != 1 {
		t.Fatalf("sink received calls after Close: %+v", sink.calls)
	}
	if _, ok := p.Live(); ok {
		t.Error("closed publisher still reports a live notification")
	}
}

func TestFor_Stickiness(t *testing.T) {
	if For(SeverityError, "x").Sticky != true {
		t.Error("errors should be sticky")
	}
	if For(SeverityWarning, "x").Sticky != true {
		t.Error("warnings should be sticky")
	}
	if For(SeveritySuccess, "x").Sticky != false {
		t.Error("successes should auto-dismiss")
	}
}
