// Copyright (c) 2026 Signon Team
// Signon - terminal sign-in client for remote identity services
// This source code is licensed under the MIT license found in the LICENSE file.

// package tui provides the terminal user interface for Signon.
// This file, tui.go, is the main entry point for the TUI, containing the
// top-level model that routes between the login form and the home view
// and renders the single shared notification line.
package tui // import "github.com/pverkade/signon/internal/tui"

import (
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pverkade/signon/internal/authapi"
	"github.com/pverkade/signon/internal/flow"
	"github.com/pverkade/signon/internal/i18n"
	"github.com/pverkade/signon/internal/logging"
	"github.com/pverkade/signon/internal/model"
	"github.com/pverkade/signon/internal/notify"
	"github.com/pverkade/signon/internal/session"
)

// viewState represents the different views in the TUI.
type viewState int

const (
	loginView viewState = iota
	homeView
)

// noticeTimeout is how long a non-sticky notification stays on screen.
const noticeTimeout = 4 * time.Second

// noticeExpiredMsg asks the root model to auto-dismiss a faded notification.
type noticeExpiredMsg struct {
	handle notify.Handle
}

// noticeBoard is the screen side of the notification line. The flow
// publishes through a notify.Publisher into this board; the root model
// renders whatever is live. It is a pointer so updates made during a
// sub-view's Resolve survive bubbletea's value copies.
type noticeBoard struct {
	handle  notify.Handle
	current notify.Notification
	live    bool
}

func (b *noticeBoard) Create(h notify.Handle, n notify.Notification) {
	b.handle = h
	b.current = n
	b.live = true
}

func (b *noticeBoard) Update(h notify.Handle, n notify.Notification) {
	if b.live && h == b.handle {
		b.current = n
	}
}

func (b *noticeBoard) reset() {
	b.handle = 0
	b.current = notify.Notification{}
	b.live = false
}

// router records navigation requested by the flow during a Resolve so the
// root model can switch views after the sub-update returns.
type router struct {
	dest    string
	replace bool
	pending bool
}

func (r *router) Navigate(dest string, replace bool) {
	r.dest = dest
	r.replace = replace
	r.pending = true
}

// tokenSaver adapts the session store to the flow's TokenStore interface.
type tokenSaver struct{}

func (tokenSaver) Save(s model.Session) error {
	return session.SaveSession(s)
}

// Options configures the TUI run.
type Options struct {
	ServerURL  string
	Redirect   string
	SessionTTL time.Duration
	Journal    flow.Journal
}

// mainModel is the top-level bubbletea model.
type mainModel struct {
	state      viewState
	login      loginModel
	home       homeModel
	board      *noticeBoard
	router     *router
	publisher  *notify.Publisher
	machine    *flow.Machine
	opts       Options
	seenNotice notify.Handle
	width      int
	height     int
}

func initialModel(opts Options) mainModel {
	m := mainModel{
		state:  loginView,
		board:  &noticeBoard{},
		router: &router{},
		opts:   opts,
	}
	m = m.withFreshFlow()
	m.login = newLoginModel(m.machine)
	return m
}

// withFreshFlow replaces the machine and publisher for a new sign-in
// session. The old machine is closed first so a stray in-flight result
// cannot touch the new one.
func (m mainModel) withFreshFlow() mainModel {
	if m.machine != nil {
		m.machine.Close()
	}
	m.board.reset()
	m.seenNotice = 0
	m.publisher = notify.NewPublisher(m.board)
	m.machine = flow.New(flow.Deps{
		Auth:     authapi.New(m.opts.ServerURL),
		Tokens:   tokenSaver{},
		Nav:      m.router,
		Notifier: m.publisher,
		Journal:  m.opts.Journal,
	}, flow.Options{
		Redirect:   m.opts.Redirect,
		SessionTTL: m.opts.SessionTTL,
	})
	return m
}

func (m mainModel) Init() tea.Cmd {
	return m.login.Init()
}

func (m mainModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.machine.Close()
			return m, tea.Quit
		case "esc":
			// Esc acknowledges a visible notification before anything else.
			if m.board.live {
				m.publisher.Dismissed(m.board.handle)
				m.board.reset()
				return m, nil
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case noticeExpiredMsg:
		if m.board.live && m.board.handle == msg.handle && !m.board.current.Sticky {
			m.publisher.Dismissed(msg.handle)
			m.board.reset()
		}
		return m, nil

	case logoutMsg:
		m = m.withFreshFlow()
		m.state = loginView
		m.login = newLoginModel(m.machine)
		return m, m.login.Init()
	}

	var cmd tea.Cmd
	switch m.state {
	case homeView:
		var newHome tea.Model
		newHome, cmd = m.home.Update(msg)
		m.home = newHome.(homeModel)
	default:
		var newLogin tea.Model
		newLogin, cmd = m.login.Update(msg)
		m.login = newLogin.(loginModel)
	}

	// A resolve inside the sub-update may have requested navigation.
	if m.router.pending {
		m.router.pending = false
		logging.Debugf("tui: navigate to %q (replace=%v)", m.router.dest, m.router.replace)
		m.state = homeView
		m.home = newHomeModel()
	}

	// Schedule auto-dismissal for a freshly created non-sticky notification.
	if m.board.live && m.board.handle != m.seenNotice {
		m.seenNotice = m.board.handle
		if !m.board.current.Sticky {
			cmd = tea.Batch(cmd, noticeTimerCmd(m.board.handle))
		}
	}

	return m, cmd
}

// noticeTimerCmd fades a notification out after the notice timeout.
func noticeTimerCmd(h notify.Handle) tea.Cmd {
	return tea.Tick(noticeTimeout, func(time.Time) tea.Msg {
		return noticeExpiredMsg{handle: h}
	})
}

func (m mainModel) View() string {
	var body string
	switch m.state {
	case homeView:
		body = m.home.View()
	default:
		body = m.login.View()
	}

	if m.board.live {
		line := noticeStyle(m.board.current.Severity).Render(noticeGlyph(m.board.current.Severity) + " " + m.board.current.Message)
		if m.board.current.Sticky {
			line += " " + helpStyle.Render(i18n.T("notice.dismiss_hint"))
		}
		body = lipgloss.JoinVertical(lipgloss.Left, body, "", line)
	}

	out := docStyle.Render(body)
	if m.width > 0 {
		out = lipgloss.NewStyle().MaxWidth(m.width).Render(out)
	}
	return out
}

func noticeStyle(sev notify.Severity) lipgloss.Style {
	switch sev {
	case notify.SeveritySuccess:
		return successStyle
	case notify.SeverityWarning:
		return specialStyle
	default:
		return errorStyle
	}
}

func noticeGlyph(sev notify.Severity) string {
	switch sev {
	case notify.SeveritySuccess:
		return "✓"
	case notify.SeverityWarning:
		return "⚠"
	default:
		return "✗"
	}
}

// Run starts the interactive sign-in interface and blocks until it exits.
func Run(opts Options) {
	p := tea.NewProgram(initialModel(opts))
	if _, err := p.Run(); err != nil {
		logging.Errorf("TUI run error: %v", err)
		os.Exit(1)
	}
}
