package tui

import (
	"net/http"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pverkade/signon/internal/flow"
	"github.com/pverkade/signon/internal/i18n"
	"github.com/pverkade/signon/internal/notify"
	"github.com/pverkade/signon/internal/session"
)

// newTestApp builds a root model around a stubbed transport, mirroring
// what initialModel does without touching the network.
func newTestApp(t *testing.T, auth flow.Authenticator) mainModel {
	t.Helper()
	i18n.Init("en")
	m := mainModel{
		state:  loginView,
		board:  &noticeBoard{},
		router: &router{},
		opts:   Options{Redirect: "home"},
	}
	m.publisher = notify.NewPublisher(m.board)
	m.machine = flow.New(flow.Deps{
		Auth:     auth,
		Tokens:   tokenSaver{},
		Nav:      m.router,
		Notifier: m.publisher,
	}, flow.Options{Redirect: "home"})
	m.login = newLoginModel(m.machine)
	return m
}

func initTestSessionStore(t *testing.T) {
	t.Helper()
	dsn := "file:" + t.Name() + "?mode=memory&cache=shared"
	keyFile := filepath.Join(t.TempDir(), "session.key")
	if err := session.InitDB("sqlite", dsn, keyFile); err != nil {
		t.Fatalf("init session store: %v", err)
	}
}

func TestNoticeBoardTracksOneNotification(t *testing.T) {
	b := &noticeBoard{}

	b.Create(1, notify.Notification{Message: "first", Severity: notify.SeverityError, Sticky: true})
	if !b.live || b.current.Message != "first" {
		t.Fatalf("create did not land: %+v", b)
	}

	b.Update(1, notify.Notification{Message: "second", Severity: notify.SeverityWarning, Sticky: true})
	if b.current.Message != "second" {
		t.Errorf("in-place update missed, got %q", b.current.Message)
	}

	b.Update(9, notify.Notification{Message: "stray"})
	if b.current.Message != "second" {
		t.Errorf("update for a stale handle must be ignored, got %q", b.current.Message)
	}

	b.reset()
	if b.live || b.handle != 0 {
		t.Errorf("reset left state behind: %+v", b)
	}
}

func TestSignInSwitchesToHomeView(t *testing.T) {
	initTestSessionStore(t)
	m := newTestApp(t, authStub{resp: okResponse("tok_abc")})
	fillForm(&m.login, "alice", "hunter2pass")

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(mainModel)
	if cmd == nil {
		t.Fatal("expected an exchange command")
	}

	updated, _ = m.Update(cmd())
	m = updated.(mainModel)

	if m.state != homeView {
		t.Fatalf("expected the home view after sign-in, got %v", m.state)
	}
	if !m.board.live || m.board.current.Severity != notify.SeveritySuccess {
		t.Fatalf("expected a live success notification, got %+v", m.board)
	}

	sess, err := session.CurrentSession()
	if err != nil || sess == nil {
		t.Fatalf("expected a stored session, got %v / %v", sess, err)
	}
	if sess.Token != "tok_abc" {
		t.Errorf("stored token = %q", sess.Token)
	}
}

func TestEscAcknowledgesStickyNotification(t *testing.T) {
	m := newTestApp(t, authStub{resp: errResponse(http.StatusUnauthorized, "Login failed")})
	m.publisher.Notify(notify.For(notify.SeverityError, "boom"))
	if !m.board.live {
		t.Fatal("expected a live notification")
	}

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = updated.(mainModel)

	if m.board.live {
		t.Error("esc should dismiss the notification")
	}
	if _, ok := m.publisher.Live(); ok {
		t.Error("the publisher should know the notification is gone")
	}

	// With nothing to acknowledge, esc falls through to the login form.
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = updated.(mainModel)
	if cmd == nil {
		t.Fatal("expected the quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("second esc should quit")
	}
}

func TestNoticeExpiryOnlyDismissesItsOwnHandle(t *testing.T) {
	m := newTestApp(t, authStub{resp: okResponse("tok")})
	h := m.publisher.Notify(notify.Notification{Message: "done", Severity: notify.SeveritySuccess})

	updated, _ := m.Update(noticeExpiredMsg{handle: h + 1})
	m = updated.(mainModel)
	if !m.board.live {
		t.Fatal("a stale expiry must not dismiss the current notification")
	}

	updated, _ = m.Update(noticeExpiredMsg{handle: h})
	m = updated.(mainModel)
	if m.board.live {
		t.Error("expected the notification to fade out")
	}
}

func TestStickyNotificationsDoNotFade(t *testing.T) {
	m := newTestApp(t, authStub{resp: okResponse("tok")})
	h := m.publisher.Notify(notify.For(notify.SeverityError, "boom"))

	updated, _ := m.Update(noticeExpiredMsg{handle: h})
	m = updated.(mainModel)
	if !m.board.live {
		t.Error("sticky notifications must wait for an explicit dismissal")
	}
}

func TestLogoutRebuildsTheFlow(t *testing.T) {
	m := newTestApp(t, authStub{resp: okResponse("tok")})
	m.state = homeView
	old := m.machine
	m.publisher.Notify(notify.For(notify.SeverityError, "stale"))

	updated, _ := m.Update(logoutMsg{})
	m = updated.(mainModel)

	if m.state != loginView {
		t.Fatalf("expected the login view after logout, got %v", m.state)
	}
	if m.machine == old {
		t.Error("logout should build a fresh machine")
	}
	if m.board.live {
		t.Error("logout should clear the notification line")
	}
	if _, err := old.Begin("alice", "hunter2pass"); err != flow.ErrClosed {
		t.Errorf("old machine should be closed, got %v", err)
	}
}

func TestViewRendersNotificationLine(t *testing.T) {
	m := newTestApp(t, authStub{resp: okResponse("tok")})
	m.publisher.Notify(notify.For(notify.SeverityError, "something broke"))

	view := m.View()
	if !strings.Contains(view, "something broke") {
		t.Error("notification text missing from view")
	}
	if !strings.Contains(view, i18n.T("notice.dismiss_hint")) {
		t.Error("sticky notifications should render the dismiss hint")
	}
}

func TestCtrlCClosesTheMachine(t *testing.T) {
	m := newTestApp(t, authStub{resp: okResponse("tok")})

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	m = updated.(mainModel)
	if cmd == nil {
		t.Fatal("expected the quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("ctrl+c should quit")
	}
	if _, err := m.machine.Begin("alice", "hunter2pass"); err != flow.ErrClosed {
		t.Errorf("the machine should be closed on quit, got %v", err)
	}
}
