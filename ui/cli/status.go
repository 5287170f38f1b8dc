// Copyright (c) 2026 Signon Team
// Signon - terminal sign-in client for remote identity services
// This source code is licensed under the MIT license found in the LICENSE file.

// status.go implements `signon status` and `signon logout`, the two
// commands that inspect and clear the stored session.

package cli

import (
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/pverkade/signon/internal/i18n"
	"github.com/pverkade/signon/internal/session"
)

var statusCopy bool

func init() {
	statusCmd.Flags().BoolVar(&statusCopy, "copy", false, "Copy the session token to the clipboard")
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := session.CurrentSession()
		if err != nil {
			return err
		}
		if sess == nil {
			fmt.Println(i18n.T("cli.status_none"))
			return nil
		}

		fmt.Printf("%s %s\n", i18n.T("cli.status_user"), sess.Username)
		fmt.Printf("%s %s\n", i18n.T("cli.status_obtained"), sess.ObtainedAt.Local().Format("2006-01-02 15:04:05"))
		if sess.ExpiresAt.IsZero() {
			fmt.Printf("%s %s\n", i18n.T("cli.status_expires"), i18n.T("cli.status_no_expiry"))
		} else {
			fmt.Printf("%s %s\n", i18n.T("cli.status_expires"), sess.ExpiresAt.Local().Format("2006-01-02 15:04:05"))
		}
		fmt.Printf("%s %s\n", i18n.T("cli.status_token"), maskedToken(sess.Token))

		if statusCopy {
			if err := clipboard.WriteAll(sess.Token); err != nil {
				return fmt.Errorf("copying token to clipboard: %w", err)
			}
			fmt.Println(i18n.T("cli.status_copied"))
		}
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Clear the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := session.ClearSession(); err != nil {
			return err
		}
		fmt.Println(i18n.T("cli.logged_out"))
		return nil
	},
}

// maskedToken keeps a short recognizable prefix of the token and hides
// the rest. The full value is only available via --copy.
func maskedToken(token string) string {
	const prefix = 4
	runes := []rune(token)
	if len(runes) <= prefix*2 {
		return "••••"
	}
	return string(runes[:prefix]) + "…"
}
