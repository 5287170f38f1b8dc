// Copyright (c) 2026 Signon Team
// Signon - terminal sign-in client for remote identity services
// This source code is licensed under the MIT license found in the LICENSE file.

// Package notify keeps the sign-in flow down to one visible status message.
// The flow publishes a notification per state change; while one is still
// showing, later publishes update it in place instead of stacking a second
// one. The presentation layer implements Sink and reports dismissals back.
package notify

// Severity drives styling and dismissal behavior in the presentation.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Notification is one user-visible status line.
type Notification struct {
	Message  string
	Severity Severity
	// Sticky notifications stay until explicitly acknowledged; non-sticky
	// ones may be auto-dismissed by the presentation after a short delay.
	Sticky bool
}

// For builds a notification with the conventional stickiness for its
// severity: errors and warnings wait for the user, successes fade out.
func For(sev Severity, msg string) Notification {
	return Notification{Message: msg, Severity: sev, Sticky: sev != SeveritySuccess}
}

// Handle identifies a live notification. The zero Handle means none.
type Handle int

// Sink is the presentation side: it materializes notifications on screen.
// Create is called for a fresh notification, Update when a still-visible
// one is replaced in place.
type Sink interface {
	Create(h Handle, n Notification)
	Update(h Handle, n Notification)
}

// Publisher enforces the one-live-notification rule. It is owned by the
// same goroutine as the submission flow and is not safe for concurrent use.
type Publisher struct {
	sink   Sink
	next   Handle
	live   Handle
	closed bool
}

// NewPublisher returns a publisher over the given sink.
func NewPublisher(sink Sink) *Publisher {
	return &Publisher{sink: sink}
}

// Notify shows n. If a previous notification is still visible it is
// updated in place and keeps its handle; otherwise a fresh one is created.
// After Close, Notify is a no-op returning the zero handle.
func (p *Publisher) Notify(n Notification) Handle {
	if p.closed {
		return 0
	}
	if p.live != 0 {
		p.sink.Update(p.live, n)
		return p.live
	}
	p.next++
	p.live = p.next
	p.sink.Create(p.live, n)
	return p.live
}

// Dismissed records that the presentation removed the notification with the
// given handle. Handles that are no longer live are ignored, so a dismissal
// racing a replacement cannot clear the newer message.
func (p *Publisher) Dismissed(h Handle) {
	if h != 0 && h == p.live {
		p.live = 0
	}
}

// Live returns the current notification handle, if any.
func (p *Publisher) Live() (Handle, bool) {
	return p.live, p.live != 0
}

// Close drops the live notification and suppresses all further publishes.
// Used on teardown so a late-arriving outcome cannot pop a message over
// whatever screen replaced the form.
func (p *Publisher) Close() {
	p.closed = true
	p.live = 0
}
