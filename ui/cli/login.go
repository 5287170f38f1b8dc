// Copyright (c) 2026 Signon Team
// Signon - terminal sign-in client for remote identity services
// This source code is licensed under the MIT license found in the LICENSE file.

// login.go implements the `signon login` command. The interactive path
// stages credentials for the sign-in screen; with --no-input the whole
// exchange runs on the plain terminal instead.

package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/pverkade/signon/internal/authapi"
	"github.com/pverkade/signon/internal/flow"
	"github.com/pverkade/signon/internal/i18n"
	"github.com/pverkade/signon/internal/logging"
	"github.com/pverkade/signon/internal/model"
	"github.com/pverkade/signon/internal/notify"
	"github.com/pverkade/signon/internal/session"
	"github.com/pverkade/signon/internal/state"
	"github.com/pverkade/signon/internal/tui"
)

var loginUsername string
var loginPasswordStdin bool
var loginNoInput bool

func init() {
	loginCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "Username to sign in with")
	loginCmd.Flags().BoolVar(&loginPasswordStdin, "password-stdin", false, "Read the password from standard input")
	loginCmd.Flags().BoolVar(&loginNoInput, "no-input", false, "Sign in on the plain terminal without the interactive UI")
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to the identity service",
	Long: `Signs in to the configured identity service and stores the resulting
session token. By default this opens the interactive sign-in screen; any
credentials given on the command line prefill the form. With --no-input the
exchange runs directly on the terminal, which suits scripts and remote
shells.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if appConfig.Server.URL == "" {
			return errors.New(i18n.T("cli.error_no_server"))
		}
		if loginNoInput {
			return runHeadlessLogin(cmd)
		}

		// Stage whatever we were given; the form consumes it once.
		if loginUsername != "" || loginPasswordStdin {
			var pass []byte
			if loginPasswordStdin {
				line, err := readLine(os.Stdin)
				if err != nil {
					return fmt.Errorf("reading password from stdin: %w", err)
				}
				pass = []byte(line)
			}
			state.CredentialCache.Set(strings.TrimSpace(loginUsername), pass)
		}

		tui.Run(tuiOptions())
		return nil
	},
}

// consoleNav remembers the destination the flow asked for so the headless
// path can report it.
type consoleNav struct {
	dest string
}

func (n *consoleNav) Navigate(dest string, replace bool) {
	n.dest = dest
}

// consoleSink prints progress notifications on the terminal. Failures are
// not printed here; they travel through the command's returned error.
type consoleSink struct{}

func (consoleSink) Create(h notify.Handle, n notify.Notification) { printNotice(n) }
func (consoleSink) Update(h notify.Handle, n notify.Notification) { printNotice(n) }

func printNotice(n notify.Notification) {
	switch n.Severity {
	case notify.SeveritySuccess:
		fmt.Println("✓ " + n.Message)
	case notify.SeverityWarning:
		logging.Warnf("%s", n.Message)
	}
}

// sessionSaver adapts the session store to the flow's TokenStore interface.
type sessionSaver struct{}

func (sessionSaver) Save(s model.Session) error {
	return session.SaveSession(s)
}

func runHeadlessLogin(cmd *cobra.Command) error {
	username := strings.TrimSpace(loginUsername)
	if username == "" {
		if loginPasswordStdin {
			// Stdin is reserved for the password in this mode.
			return errors.New(i18n.T("cli.error_username_required"))
		}
		fmt.Fprint(os.Stderr, i18n.T("cli.username_prompt"))
		line, err := readLine(os.Stdin)
		if err != nil {
			return fmt.Errorf("reading username: %w", err)
		}
		username = strings.TrimSpace(line)
	}
	if username == "" {
		return errors.New(i18n.T("cli.error_username_required"))
	}

	password, err := readLoginPassword()
	if err != nil {
		return err
	}

	nav := &consoleNav{}
	deps := flow.Deps{
		Auth:     authapi.New(appConfig.Server.URL),
		Tokens:   sessionSaver{},
		Nav:      nav,
		Notifier: notify.NewPublisher(consoleSink{}),
	}
	if journal != nil {
		deps.Journal = journal
	}
	machine := flow.New(deps, flow.Options{
		Redirect:   appConfig.Redirect,
		SessionTTL: appConfig.SessionTTL(),
	})
	defer machine.Close()

	if _, err := machine.Login(cmd.Context(), username, password); err != nil {
		return err
	}
	if nav.dest != "" {
		fmt.Println(i18n.T("cli.next_destination", nav.dest))
	}
	return nil
}

// readLoginPassword picks the password source for the headless path:
// --password-stdin or a piped stdin read a line, a real terminal gets a
// no-echo prompt.
func readLoginPassword() (string, error) {
	fd := int(os.Stdin.Fd())
	if loginPasswordStdin || !term.IsTerminal(fd) {
		line, err := readLine(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("reading password from stdin: %w", err)
		}
		return line, nil
	}

	fmt.Fprint(os.Stderr, i18n.T("cli.password_prompt"))
	raw, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return string(raw), nil
}

// readLine reads one line, tolerating a final line without a newline.
func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
