package tui

import (
	"context"
	"net/http"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pverkade/signon/internal/authapi"
	"github.com/pverkade/signon/internal/classify"
	"github.com/pverkade/signon/internal/flow"
	"github.com/pverkade/signon/internal/i18n"
	"github.com/pverkade/signon/internal/model"
	"github.com/pverkade/signon/internal/notify"
	"github.com/pverkade/signon/internal/state"
)

// authStub returns a canned transport result for every attempt.
type authStub struct {
	resp *authapi.Response
	err  error
}

func (a authStub) Login(ctx context.Context, username, password, traceID string) (*authapi.Response, error) {
	return a.resp, a.err
}

type tokenStub struct{}

func (tokenStub) Save(s model.Session) error { return nil }

func okResponse(token string) *authapi.Response {
	return &authapi.Response{
		StatusCode: http.StatusOK,
		Envelope: &authapi.Envelope{
			Status:  http.StatusOK,
			Message: authapi.SuccessMessage,
			Token:   token,
		},
	}
}

func errResponse(status int, message string) *authapi.Response {
	return &authapi.Response{
		StatusCode: status,
		Envelope:   &authapi.Envelope{Status: status, Message: message},
	}
}

// newTestForm wires a login form to a machine backed by stubs and returns
// the collaborators the assertions need.
func newTestForm(t *testing.T, auth flow.Authenticator) (loginModel, *noticeBoard, *router) {
	t.Helper()
	i18n.Init("en")
	board := &noticeBoard{}
	nav := &router{}
	machine := flow.New(flow.Deps{
		Auth:     auth,
		Tokens:   tokenStub{},
		Nav:      nav,
		Notifier: notify.NewPublisher(board),
	}, flow.Options{Redirect: "home"})
	return newLoginModel(machine), board, nav
}

func fillForm(m *loginModel, username, password string) {
	m.inputs[fieldUsername].SetValue(username)
	m.inputs[fieldPassword].SetValue(password)
	m.focusIndex = len(m.inputs)
}

// submitForm presses enter on the submit button and returns the updated
// model plus the command it produced.
func submitForm(t *testing.T, m loginModel) (loginModel, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return updated.(loginModel), cmd
}

func TestValidationErrorsStayInline(t *testing.T) {
	m, _, nav := newTestForm(t, authStub{resp: okResponse("tok")})
	fillForm(&m, "ab", "short")

	m, cmd := submitForm(t, m)
	if cmd != nil {
		t.Fatal("expected no exchange command for invalid input")
	}
	if m.fieldErrs[fieldUsername] == "" {
		t.Error("expected an inline username error")
	}
	if m.fieldErrs[fieldPassword] == "" {
		t.Error("expected an inline password error")
	}
	if m.machine.State().Phase != flow.PhaseIdle {
		t.Errorf("machine should stay idle, got %v", m.machine.State().Phase)
	}
	if nav.pending {
		t.Error("validation failure must not navigate")
	}
}

func TestSuccessfulSubmitNavigates(t *testing.T) {
	m, board, nav := newTestForm(t, authStub{resp: okResponse("tok_abc")})
	fillForm(&m, "alice", "hunter2pass")

	m, cmd := submitForm(t, m)
	if cmd == nil {
		t.Fatal("expected an exchange command")
	}
	if got := m.machine.State().Phase; got != flow.PhaseSubmitting {
		t.Fatalf("expected submitting phase, got %v", got)
	}

	msg := cmd()
	result, ok := msg.(exchangeResultMsg)
	if !ok {
		t.Fatalf("expected exchangeResultMsg, got %T", msg)
	}
	updated, _ := m.Update(result)
	m = updated.(loginModel)

	if !nav.pending || nav.dest != "home" || !nav.replace {
		t.Fatalf("expected replace navigation to home, got %+v", nav)
	}
	if !board.live || board.current.Severity != notify.SeveritySuccess {
		t.Fatalf("expected a live success notification, got %+v", board)
	}
}

func TestFailedSubmitShowsBanner(t *testing.T) {
	m, board, _ := newTestForm(t, authStub{resp: errResponse(http.StatusUnauthorized, "Login failed")})
	fillForm(&m, "alice", "hunter2pass")

	m, cmd := submitForm(t, m)
	msg := cmd()
	updated, _ := m.Update(msg)
	m = updated.(loginModel)

	if m.banner == "" {
		t.Fatal("expected a banner message")
	}
	if m.fieldErrs[fieldUsername] != "" || m.fieldErrs[fieldPassword] != "" {
		t.Error("banner failures must not mark fields")
	}
	if !board.live || board.current.Severity != notify.SeverityError {
		t.Fatalf("expected a live error notification, got %+v", board)
	}
	if got := m.machine.State().Phase; got != flow.PhaseFailed {
		t.Errorf("expected failed phase, got %v", got)
	}
}

func TestUnknownUsernameMarksField(t *testing.T) {
	resp := &authapi.Response{
		StatusCode: http.StatusBadRequest,
		Envelope: &authapi.Envelope{
			Status: http.StatusBadRequest,
			Errors: []authapi.FieldIssue{{Code: "FvQ1", Message: "No such user"}},
		},
	}
	m, _, _ := newTestForm(t, authStub{resp: resp})
	fillForm(&m, "ghost", "hunter2pass")

	m, cmd := submitForm(t, m)
	updated, _ := m.Update(cmd())
	m = updated.(loginModel)

	if m.fieldErrs[fieldUsername] == "" {
		t.Error("expected the username field to carry the error")
	}
	if m.banner != "" {
		t.Errorf("field errors must not raise a banner, got %q", m.banner)
	}
}

func TestLockoutCountsDownAndReleases(t *testing.T) {
	resp := errResponse(http.StatusTooManyRequests, "Too many attempts")
	resp.Header = http.Header{"Retry-After": []string{"2"}}
	m, _, _ := newTestForm(t, authStub{resp: resp})
	fillForm(&m, "alice", "hunter2pass")

	m, cmd := submitForm(t, m)
	updated, tick := m.Update(cmd())
	m = updated.(loginModel)
	if tick == nil {
		t.Fatal("expected a countdown command")
	}
	if want := classify.CountdownMessage(2); m.banner != want {
		t.Fatalf("banner = %q, want %q", m.banner, want)
	}

	updated, tick = m.Update(countdownTickMsg{})
	m = updated.(loginModel)
	if tick == nil {
		t.Fatal("countdown should keep ticking at 1s remaining")
	}
	if want := classify.CountdownMessage(1); m.banner != want {
		t.Fatalf("banner = %q, want %q", m.banner, want)
	}

	updated, tick = m.Update(countdownTickMsg{})
	m = updated.(loginModel)
	if tick != nil {
		t.Fatal("countdown must stop once the lock releases")
	}
	if m.banner != "" {
		t.Errorf("banner should clear on release, got %q", m.banner)
	}
	if got := m.machine.State().Phase; got != flow.PhaseIdle {
		t.Errorf("expected idle after release, got %v", got)
	}
}

func TestThirdFailureClearsInputs(t *testing.T) {
	m, _, _ := newTestForm(t, authStub{resp: errResponse(http.StatusUnauthorized, "Login failed")})

	for i := 0; i < 3; i++ {
		fillForm(&m, "alice", "hunter2pass")
		var cmd tea.Cmd
		m, cmd = submitForm(t, m)
		updated, _ := m.Update(cmd())
		m = updated.(loginModel)
	}

	if got := m.inputs[fieldUsername].Value(); got != "" {
		t.Errorf("username should be cleared, got %q", got)
	}
	if got := m.inputs[fieldPassword].Value(); got != "" {
		t.Errorf("password should be cleared, got %q", got)
	}
	if m.focusIndex != fieldUsername {
		t.Errorf("focus should return to the username field, got %d", m.focusIndex)
	}
	if m.banner == "" {
		t.Error("the failure message should survive the clear")
	}
}

func TestKeystrokesIgnoredWhileSubmitting(t *testing.T) {
	m, _, _ := newTestForm(t, authStub{resp: okResponse("tok")})
	fillForm(&m, "alice", "hunter2pass")

	m, cmd := submitForm(t, m)
	if cmd == nil {
		t.Fatal("expected an exchange command")
	}

	// The exchange has not resolved yet; typing must not reach the inputs.
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("xyz")})
	m = updated.(loginModel)
	if got := m.inputs[fieldUsername].Value(); got != "alice" {
		t.Errorf("input changed while submitting: %q", got)
	}

	// A second submit while one is in flight is a quiet no-op.
	updated, again := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(loginModel)
	if again != nil {
		t.Error("expected no command for a submit while busy")
	}
}

func TestPrefilledCredentialsAreConsumed(t *testing.T) {
	i18n.Init("en")
	state.CredentialCache.Set("alice", []byte("hunter2pass"))
	t.Cleanup(state.CredentialCache.Clear)

	board := &noticeBoard{}
	machine := flow.New(flow.Deps{
		Auth:     authStub{resp: okResponse("tok")},
		Tokens:   tokenStub{},
		Nav:      &router{},
		Notifier: notify.NewPublisher(board),
	}, flow.Options{})
	m := newLoginModel(machine)

	if got := m.inputs[fieldUsername].Value(); got != "alice" {
		t.Errorf("username not prefilled: %q", got)
	}
	if got := m.inputs[fieldPassword].Value(); got != "hunter2pass" {
		t.Errorf("password not prefilled: %q", got)
	}
	if state.CredentialCache.HasCredentials() {
		t.Error("the cache should be drained after prefill")
	}
}

func TestFocusCyclesThroughButton(t *testing.T) {
	m, _, _ := newTestForm(t, authStub{resp: okResponse("tok")})

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = updated.(loginModel)
	if m.focusIndex != fieldPassword {
		t.Fatalf("after one tab focus = %d, want password", m.focusIndex)
	}

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = updated.(loginModel)
	if m.focusIndex != len(m.inputs) {
		t.Fatalf("after two tabs focus = %d, want the submit button", m.focusIndex)
	}

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = updated.(loginModel)
	if m.focusIndex != fieldUsername {
		t.Fatalf("focus should wrap to username, got %d", m.focusIndex)
	}
}

func TestViewShowsInlineErrorAndBanner(t *testing.T) {
	m, _, _ := newTestForm(t, authStub{resp: okResponse("tok")})
	m.fieldErrs[fieldPassword] = "Password is required"
	m.banner = "Login failed"

	view := m.View()
	if !strings.Contains(view, "Password is required") {
		t.Error("inline error missing from view")
	}
	if !strings.Contains(view, "Login failed") {
		t.Error("banner missing from view")
	}
}
