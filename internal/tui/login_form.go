package tui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pverkade/signon/internal/classify"
	"github.com/pverkade/signon/internal/flow"
	"github.com/pverkade/signon/internal/i18n"
	"github.com/pverkade/signon/internal/model"
	"github.com/pverkade/signon/internal/state"
)

var (
	focusedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("170"))
	noStyle      = lipgloss.NewStyle()
)

// Field indices within the login form.
const (
	fieldUsername = 0
	fieldPassword = 1
)

// exchangeResultMsg carries the outcome of a credential exchange back
// into the update loop.
type exchangeResultMsg struct {
	att model.Attempt
	res flow.Result
}

// countdownTickMsg fires once per second while a lockout is running.
type countdownTickMsg struct{}

type loginModel struct {
	focusIndex int
	inputs     []textinput.Model
	fieldErrs  [2]string
	banner     string
	spin       spinner.Model
	machine    *flow.Machine
}

func newLoginModel(machine *flow.Machine) loginModel {
	m := loginModel{
		machine: machine,
		inputs:  make([]textinput.Model, 2),
	}
	m.spin = spinner.New()
	m.spin.Spinner = spinner.Dot
	m.spin.Style = focusedStyle

	var t textinput.Model
	for i := range m.inputs {
		t = textinput.New()
		t.Cursor.Style = focusedStyle
		t.CharLimit = 64
		t.Width = 40

		switch i {
		case fieldUsername:
			t.Prompt = i18n.T("login.username_prompt")
			t.Focus()
			t.TextStyle = focusedStyle
		case fieldPassword:
			t.Prompt = i18n.T("login.password_prompt")
			t.EchoMode = textinput.EchoPassword
			t.EchoCharacter = '•'
		}
		m.inputs[i] = t
	}

	// Credentials staged by the CLI (e.g. --username) prefill the form once.
	if user, pass := state.CredentialCache.Get(); user != "" || pass != nil {
		m.inputs[fieldUsername].SetValue(user)
		if pass != nil {
			m.inputs[fieldPassword].SetValue(string(pass))
			for i := range pass {
				pass[i] = 0
			}
		}
		state.CredentialCache.Clear()
	}

	return m
}

func (m loginModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m loginModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case exchangeResultMsg:
		return m.resolveAttempt(msg)

	case countdownTickMsg:
		st := m.machine.Tick()
		if st.Phase == flow.PhaseLocked {
			m.banner = classify.CountdownMessage(st.Remaining)
			return m, countdownCmd()
		}
		m.banner = ""
		return m, nil

	case spinner.TickMsg:
		if m.machine.State().Phase != flow.PhaseSubmitting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.machine.State().Phase == flow.PhaseSubmitting {
			// Keystrokes are ignored while the exchange is in flight.
			return m, nil
		}

		switch msg.String() {
		case "esc":
			return m, tea.Quit

		case "tab", "shift+tab", "enter", "up", "down":
			s := msg.String()

			// Submit when enter is pressed on the button.
			if s == "enter" && m.focusIndex == len(m.inputs) {
				return m.submit()
			}

			// Cycle focus between the inputs and the submit button.
			if s == "up" || s == "shift+tab" {
				m.focusIndex--
			} else {
				m.focusIndex++
			}
			if m.focusIndex > len(m.inputs) {
				m.focusIndex = 0
			} else if m.focusIndex < 0 {
				m.focusIndex = len(m.inputs)
			}

			cmds := make([]tea.Cmd, len(m.inputs))
			for i := 0; i <= len(m.inputs)-1; i++ {
				if i == m.focusIndex {
					cmds[i] = m.inputs[i].Focus()
					m.inputs[i].TextStyle = focusedStyle
					continue
				}
				m.inputs[i].Blur()
				m.inputs[i].TextStyle = noStyle
			}
			return m, tea.Batch(cmds...)
		}
	}

	cmd := m.updateInputs(msg)
	return m, cmd
}

// submit validates the form and, if it is clean, starts an attempt.
func (m loginModel) submit() (tea.Model, tea.Cmd) {
	m.fieldErrs = [2]string{}
	m.banner = ""

	username := strings.TrimSpace(m.inputs[fieldUsername].Value())
	password := m.inputs[fieldPassword].Value()

	if issues := flow.ValidateCredentials(username, password); len(issues) > 0 {
		for _, issue := range issues {
			switch issue.Field {
			case classify.FieldUsername:
				if m.fieldErrs[fieldUsername] == "" {
					m.fieldErrs[fieldUsername] = issue.Message
				}
			case classify.FieldPassword:
				if m.fieldErrs[fieldPassword] == "" {
					m.fieldErrs[fieldPassword] = issue.Message
				}
			}
		}
		return m, nil
	}

	att, err := m.machine.Begin(username, password)
	if err != nil {
		// Busy and locked submits are quiet no-ops.
		return m, nil
	}
	return m, tea.Batch(m.exchangeCmd(att), m.spin.Tick)
}

// exchangeCmd runs the network exchange off the update loop.
func (m loginModel) exchangeCmd(att model.Attempt) tea.Cmd {
	machine := m.machine
	return func() tea.Msg {
		return exchangeResultMsg{att: att, res: machine.Exchange(context.Background(), att)}
	}
}

func (m loginModel) resolveAttempt(msg exchangeResultMsg) (tea.Model, tea.Cmd) {
	tr := m.machine.Resolve(msg.att, msg.res)

	var cmds []tea.Cmd
	if tr.ClearCredentials {
		m.inputs[fieldUsername].SetValue("")
		m.inputs[fieldPassword].SetValue("")
		m.focusIndex = fieldUsername
		cmds = append(cmds, m.inputs[fieldUsername].Focus())
		m.inputs[fieldUsername].TextStyle = focusedStyle
		m.inputs[fieldPassword].Blur()
		m.inputs[fieldPassword].TextStyle = noStyle
	}

	switch tr.State.Phase {
	case flow.PhaseFailed:
		proj := classify.Project(tr.State.Outcome)
		switch proj.Field {
		case classify.FieldUsername:
			m.fieldErrs[fieldUsername] = proj.FieldMessage
		case classify.FieldPassword:
			m.fieldErrs[fieldPassword] = proj.FieldMessage
		default:
			m.banner = proj.Banner
		}
	case flow.PhaseLocked:
		m.banner = classify.CountdownMessage(tr.State.Remaining)
		cmds = append(cmds, countdownCmd())
	}

	return m, tea.Batch(cmds...)
}

// countdownCmd emits one tick per second while the lockout runs.
func countdownCmd() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return countdownTickMsg{}
	})
}

func (m *loginModel) updateInputs(msg tea.Msg) tea.Cmd {
	cmds := make([]tea.Cmd, len(m.inputs))
	for i := range m.inputs {
		m.inputs[i], cmds[i] = m.inputs[i].Update(msg)
	}
	return tea.Batch(cmds...)
}

func (m loginModel) View() string {
	var viewItems []string
	viewItems = append(viewItems, titleStyle.Render("🔐 "+i18n.T("login.title")), "")

	for i := range m.inputs {
		viewItems = append(viewItems, m.inputs[i].View())
		if m.fieldErrs[i] != "" {
			viewItems = append(viewItems, errorStyle.Render("  ✗ "+m.fieldErrs[i]))
		}
	}

	button := formItemStyle.Render("[ " + i18n.T("login.submit") + " ]")
	if m.focusIndex == len(m.inputs) {
		button = formSelectedItemStyle.Render("[ " + i18n.T("login.submit") + " ]")
	}
	if m.machine.State().Phase == flow.PhaseSubmitting {
		button = m.spin.View() + helpStyle.Render(i18n.T("login.submitting"))
	}
	viewItems = append(viewItems, "", button)

	if m.banner != "" {
		style := errorStyle
		if m.machine.State().Phase == flow.PhaseLocked {
			style = specialStyle
		}
		viewItems = append(viewItems, "", style.Render(m.banner))
	}

	viewItems = append(viewItems, "", helpStyle.Render(i18n.T("login.help")))
	return lipgloss.JoinVertical(lipgloss.Left, viewItems...)
}
