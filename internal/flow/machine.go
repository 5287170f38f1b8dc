// Copyright (c) 2026 Signon Team
// Signon - terminal sign-in client for remote identity services
// This source code is licensed under the MIT license found in the LICENSE file.

// Package flow drives a sign-in attempt from submission to its final
// outcome. The Machine owns the submission state; the TUI and the CLI both
// run on top of it and never talk to the transport or the session store
// directly.
package flow

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/pverkade/signon/internal/audit"
	"github.com/pverkade/signon/internal/authapi"
	"github.com/pverkade/signon/internal/classify"
	"github.com/pverkade/signon/internal/i18n"
	"github.com/pverkade/signon/internal/logging"
	"github.com/pverkade/signon/internal/model"
	"github.com/pverkade/signon/internal/notify"
)

var (
	// ErrBusy is returned by Begin while an attempt is still in flight or
	// after a completed sign-in.
	ErrBusy = errors.New("a sign-in attempt is already in progress")
	// ErrLocked is returned by Begin while the rate-limit countdown runs.
	ErrLocked = errors.New("sign-in is locked until the countdown ends")
	// ErrClosed is returned by Begin after Close.
	ErrClosed = errors.New("the sign-in flow is closed")
)

// DefaultRedirect is where a completed sign-in lands when neither flag nor
// config name a destination.
const DefaultRedirect = "home"

// failuresBeforeClear is how many consecutive failed attempts it takes
// before the entered credentials are cleared.
const failuresBeforeClear = 3

// Phase is the single field that keeps the submission states mutually
// exclusive.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseSubmitting
	PhaseLocked
	PhaseFailed
	PhaseSucceeded
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseSubmitting:
		return "submitting"
	case PhaseLocked:
		return "locked"
	case PhaseFailed:
		return "failed"
	case PhaseSucceeded:
		return "succeeded"
	default:
		return "unknown"
	}
}

// State is a snapshot of the machine. Remaining is meaningful in
// PhaseLocked, Outcome in PhaseFailed.
type State struct {
	Phase     Phase
	Remaining int
	Outcome   classify.Outcome
}

// Result is what an exchange with the identity service produced: either the
// success marker with its token, or a classified outcome.
type Result struct {
	OK      bool
	Token   string
	Outcome classify.Outcome
}

// Transition is returned by Resolve and carries the new state plus whether
// the presenter must clear the entered credentials.
type Transition struct {
	State            State
	ClearCredentials bool
}

// Authenticator performs the credentials exchange with the identity
// service. *authapi.Client satisfies it.
type Authenticator interface {
	Login(ctx context.Context, username, password, traceID string) (*authapi.Response, error)
}

// TokenStore persists the session obtained from a successful sign-in.
// *session.Store satisfies it.
type TokenStore interface {
	Save(s model.Session) error
}

// Navigator switches the surrounding application to a destination after a
// successful sign-in. replace indicates the sign-in view must not stay on
// the navigation stack.
type Navigator interface {
	Navigate(dest string, replace bool)
}

// Journal records sign-in attempts. *audit.Journal satisfies it.
type Journal interface {
	Record(e audit.Entry) error
}

// Deps are the machine's collaborators. Notifier and Journal may be nil.
type Deps struct {
	Auth     Authenticator
	Tokens   TokenStore
	Nav      Navigator
	Notifier *notify.Publisher
	Journal  Journal
}

// Options tune a Machine.
type Options struct {
	// Redirect is the destination handed to the Navigator after success.
	// Empty means DefaultRedirect.
	Redirect string
	// SessionTTL bounds the stored session's lifetime. Zero stores a
	// session without expiry.
	SessionTTL time.Duration
	// Now is the clock, overridable in tests. Nil means time.Now.
	Now func() time.Time
}

// Machine is the submission state machine. It is owned by a single
// goroutine; only Exchange may run elsewhere (it does not touch state).
type Machine struct {
	deps Deps
	opts Options

	phase     Phase
	remaining int
	outcome   classify.Outcome
	counter   int
	inflight  string
	closed    bool
}

// New returns an idle Machine.
func New(deps Deps, opts Options) *Machine {
	return &Machine{deps: deps, opts: opts}
}

func (m *Machine) now() time.Time {
	if m.opts.Now != nil {
		return m.opts.Now()
	}
	return time.Now()
}

// State returns a snapshot of the current submission state.
func (m *Machine) State() State {
	st := State{Phase: m.phase}
	switch m.phase {
	case PhaseLocked:
		st.Remaining = m.remaining
	case PhaseFailed:
		st.Outcome = m.outcome
	}
	return st
}

// Begin starts a new attempt. It is allowed from Idle and Failed; while
// Submitting or after success it returns ErrBusy, during a lock ErrLocked.
// Rejected submits leave the attempt counter untouched.
func (m *Machine) Begin(username, password string) (model.Attempt, error) {
	if m.closed {
		return model.Attempt{}, ErrClosed
	}
	switch m.phase {
	case PhaseSubmitting, PhaseSucceeded:
		return model.Attempt{}, ErrBusy
	case PhaseLocked:
		return model.Attempt{}, ErrLocked
	}

	m.counter++
	att := model.Attempt{
		Username:  username,
		Password:  password,
		Number:    m.counter,
		TraceID:   uuid.NewString(),
		StartedAt: m.now(),
	}
	m.inflight = att.TraceID
	m.phase = PhaseSubmitting
	logging.Debugf("flow: begin %s", att.String())
	return att, nil
}

// Exchange performs the credentials exchange for att and reduces the reply
// to a Result. It never mutates the machine, so the TUI may run it under a
// command while the owner goroutine keeps rendering.
func (m *Machine) Exchange(ctx context.Context, att model.Attempt) Result {
	resp, err := m.deps.Auth.Login(ctx, att.Username, att.Password, att.TraceID)
	if err == nil && resp != nil && resp.Success() {
		return Result{OK: true, Token: resp.Envelope.Token}
	}
	return Result{Outcome: classify.Classify(resp, err)}
}

// Resolve applies the result of att's exchange. Stale results, meaning the
// machine is closed, no longer submitting, or the attempt was superseded,
// are suppressed and leave the state untouched.
func (m *Machine) Resolve(att model.Attempt, res Result) Transition {
	if m.closed || m.phase != PhaseSubmitting || att.TraceID != m.inflight {
		return Transition{State: m.State()}
	}
	m.inflight = ""

	if res.OK {
		m.counter = 0
		m.phase = PhaseSucceeded
		now := m.now()
		sess := model.Session{
			Token:      res.Token,
			Username:   att.Username,
			ObtainedAt: now,
		}
		if m.opts.SessionTTL > 0 {
			sess.ExpiresAt = now.Add(m.opts.SessionTTL)
		}
		if m.deps.Tokens != nil {
			if err := m.deps.Tokens.Save(sess); err != nil {
				logging.Warnf("flow: failed to persist session: %v", err)
			}
		}
		m.record(att, "success", http.StatusOK)
		m.publish(notify.SeveritySuccess, i18n.T("flow.signed_in", att.Username))
		dest := m.opts.Redirect
		if dest == "" {
			dest = DefaultRedirect
		}
		if m.deps.Nav != nil {
			m.deps.Nav.Navigate(dest, true)
		}
		return Transition{State: m.State()}
	}

	out := res.Outcome
	m.outcome = out
	m.record(att, string(out.Kind), out.Status)

	var tr Transition
	if out.Kind == classify.KindRateLimited {
		m.phase = PhaseLocked
		m.remaining = out.RetryAfter
		m.publish(notify.SeverityWarning, classify.CountdownMessage(m.remaining))
	} else {
		m.phase = PhaseFailed
		m.publish(notify.SeverityError, out.Message)
	}
	if m.counter >= failuresBeforeClear {
		m.counter = 0
		tr.ClearCredentials = true
	}
	tr.State = m.State()
	return tr
}

// Tick advances the rate-limit countdown by one second. Outside PhaseLocked
// it is a no-op, so a dangling timer can never corrupt state. Reaching zero
// returns the machine to Idle; it never re-submits.
func (m *Machine) Tick() State {
	if m.closed || m.phase != PhaseLocked {
		return m.State()
	}
	m.remaining--
	if m.remaining <= 0 {
		m.remaining = 0
		m.phase = PhaseIdle
		m.publish(notify.SeverityWarning, i18n.T("flow.retry_now"))
	} else {
		m.publish(notify.SeverityWarning, classify.CountdownMessage(m.remaining))
	}
	return m.State()
}

// Close tears the machine down. Pending resolves and ticks become no-ops
// and no further notifications are published.
func (m *Machine) Close() {
	if m.closed {
		return
	}
	m.closed = true
	if m.deps.Notifier != nil {
		m.deps.Notifier.Close()
	}
}

// Login is the blocking path used outside the TUI: validate, begin,
// exchange, resolve. On failure the classified outcome is returned as the
// error.
func (m *Machine) Login(ctx context.Context, username, password string) (Transition, error) {
	if issues := ValidateCredentials(username, password); len(issues) > 0 {
		return Transition{State: m.State()}, issues[0]
	}
	att, err := m.Begin(username, password)
	if err != nil {
		return Transition{State: m.State()}, err
	}
	res := m.Exchange(ctx, att)
	tr := m.Resolve(att, res)
	if res.OK {
		return tr, nil
	}
	return tr, res.Outcome
}

func (m *Machine) publish(sev notify.Severity, msg string) {
	if m.deps.Notifier == nil {
		return
	}
	m.deps.Notifier.Notify(notify.For(sev, msg))
}

func (m *Machine) record(att model.Attempt, outcome string, status int) {
	if m.deps.Journal == nil {
		return
	}
	e := audit.Entry{
		Time:     m.now(),
		TraceID:  att.TraceID,
		Username: att.Username,
		Attempt:  att.Number,
		Outcome:  outcome,
		Status:   status,
	}
	if err := m.deps.Journal.Record(e); err != nil {
		logging.Warnf("flow: journal write failed: %v", err)
	}
}
