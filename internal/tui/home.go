// Copyright (c) 2026 Signon Team
// Signon - terminal sign-in client for remote identity services
// This source code is licensed under the MIT license found in the LICENSE file.

// package tui provides the signed-in home view. It summarizes the stored
// session, offers clipboard access to the token and handles sign-out.
package tui

import (
	"fmt"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pverkade/signon/internal/i18n"
	"github.com/pverkade/signon/internal/model"
	"github.com/pverkade/signon/internal/session"
)

// logoutMsg tells the root model to drop the session and return to the
// login form.
type logoutMsg struct{}

type homeModel struct {
	sess        *model.Session
	err         error
	tokenCopied bool
}

func newHomeModel() homeModel {
	m := homeModel{}
	sess, err := session.CurrentSession()
	if err != nil {
		m.err = err
		return m
	}
	m.sess = sess
	return m
}

func (m homeModel) Init() tea.Cmd {
	return nil
}

func (m homeModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "q", "esc":
			return m, tea.Quit
		case "c":
			if m.sess != nil {
				if err := clipboard.WriteAll(m.sess.Token); err == nil {
					m.tokenCopied = true
				}
			}
			return m, nil
		case "l":
			if err := session.ClearSession(); err != nil {
				m.err = err
				return m, nil
			}
			return m, func() tea.Msg { return logoutMsg{} }
		}
	}
	return m, nil
}

func (m homeModel) View() string {
	var viewItems []string
	viewItems = append(viewItems, titleStyle.Render("🏠 "+i18n.T("home.title")), "")

	if m.err != nil {
		viewItems = append(viewItems, errorStyle.Render("✗ "+m.err.Error()))
		viewItems = append(viewItems, "", helpStyle.Render(i18n.T("home.help")))
		return lipgloss.JoinVertical(lipgloss.Left, viewItems...)
	}
	if m.sess == nil {
		viewItems = append(viewItems, helpStyle.Render(i18n.T("home.no_session")))
		viewItems = append(viewItems, "", helpStyle.Render(i18n.T("home.help")))
		return lipgloss.JoinVertical(lipgloss.Left, viewItems...)
	}

	viewItems = append(viewItems,
		fmt.Sprintf("%s %s", i18n.T("home.username"), valueStyle.Render(m.sess.Username)),
		fmt.Sprintf("%s %s", i18n.T("home.obtained"), m.sess.ObtainedAt.Local().Format("2006-01-02 15:04:05")),
	)
	if m.sess.ExpiresAt.IsZero() {
		viewItems = append(viewItems, fmt.Sprintf("%s %s", i18n.T("home.expires"), i18n.T("home.no_expiry")))
	} else {
		viewItems = append(viewItems, fmt.Sprintf("%s %s", i18n.T("home.expires"), m.sess.ExpiresAt.Local().Format("2006-01-02 15:04:05")))
	}
	viewItems = append(viewItems, fmt.Sprintf("%s %s", i18n.T("home.token"), valueStyle.Render(maskToken(m.sess.Token))))

	if m.tokenCopied {
		viewItems = append(viewItems, "", successStyle.Render("✓ "+i18n.T("home.token_copied")))
	}

	viewItems = append(viewItems, "", helpStyle.Render(i18n.T("home.help")))
	return lipgloss.JoinVertical(lipgloss.Left, viewItems...)
}

// maskToken keeps a short recognizable prefix and hides the rest.
func maskToken(token string) string {
	const prefix = 4
	runes := []rune(token)
	if len(runes) <= prefix*2 {
		return "••••"
	}
	return string(runes[:prefix]) + "…"
}
