// Copyright (c) 2026 Signon Team
// Signon - terminal sign-in client for remote identity services
// This source code is licensed under the MIT license found in the LICENSE file.

// main.go sets up the command-line interface for Signon using the Cobra
// library. It defines the root command, the subcommands (login, status,
// logout, config) and the shared service setup they rely on.

package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pverkade/signon/buildvars"
	"github.com/pverkade/signon/internal/audit"
	"github.com/pverkade/signon/internal/config"
	"github.com/pverkade/signon/internal/i18n"
	"github.com/pverkade/signon/internal/logging"
	"github.com/pverkade/signon/internal/session"
	"github.com/pverkade/signon/internal/tui"
)

var gitCommit = "dev" // set at build time with the short commit SHA
var buildDate = ""    // set at build time (RFC3339)
var cfgFile string
var verbose bool
var showVersionFlag bool

var appConfig config.Config

// journal is the shared sign-in attempt journal. It stays nil when the
// journal is disabled in the configuration.
var journal *audit.Journal

// dataDir returns the per-user directory Signon keeps its state in.
func dataDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return "."
	}
	return filepath.Join(base, "signon")
}

func configDefaults() map[string]any {
	dir := dataDir()
	return map[string]any{
		"server.url":        "",
		"redirect":          "home",
		"language":          "en",
		"database.type":     "sqlite",
		"database.dsn":      filepath.Join(dir, "sessions.db"),
		"session.ttl":       "12h",
		"session.key_file":  filepath.Join(dir, "session.key"),
		"audit.path":        filepath.Join(dir, "attempts.jsonl"),
		"audit.max_size_kb": audit.DefaultMaxSizeKB,
	}
}

// setupDefaultServices loads the configuration and brings up the services
// every command relies on: i18n, logging verbosity, the session store and
// the attempt journal.
func setupDefaultServices(cmd *cobra.Command, args []string) error {
	optionalConfigPath, err := getConfigPathFromCli(cmd)
	if err != nil {
		return err
	}

	defaults := configDefaults()
	appConfig, err = config.LoadConfig[config.Config](cmd, defaults, optionalConfigPath)
	if err != nil && !errors.As(err, &viper.ConfigFileNotFoundError{}) {
		return fmt.Errorf("error loading config: %w", err)
	}

	// Guard against empty values in a hand-edited config file.
	if appConfig.Database.Type == "" {
		appConfig.Database.Type = defaults["database.type"].(string)
	}
	if appConfig.Database.Dsn == "" {
		appConfig.Database.Dsn = defaults["database.dsn"].(string)
	}
	if appConfig.Session.KeyFile == "" {
		appConfig.Session.KeyFile = defaults["session.key_file"].(string)
	}
	if appConfig.Language == "" {
		appConfig.Language = defaults["language"].(string)
	}
	if appConfig.Redirect == "" {
		appConfig.Redirect = defaults["redirect"].(string)
	}
	if appConfig.Audit.MaxSizeKB <= 0 {
		appConfig.Audit.MaxSizeKB = audit.DefaultMaxSizeKB
	}

	i18n.Init(appConfig.Language)
	logging.SetDebug(verbose || appConfig.Debug)

	if appConfig.Session.TTL != "" {
		if _, err := time.ParseDuration(appConfig.Session.TTL); err != nil {
			logging.Warnf("invalid session.ttl %q, stored sessions will not expire", appConfig.Session.TTL)
		}
	}

	// The sqlite default lives under the user config dir; make sure the
	// directory exists before the driver tries to create the file.
	if appConfig.Database.Type == "sqlite" && !strings.Contains(appConfig.Database.Dsn, "memory") {
		_ = os.MkdirAll(filepath.Dir(appConfig.Database.Dsn), 0o700)
	}

	if !session.IsInitialized() {
		if err := session.InitDB(appConfig.Database.Type, appConfig.Database.Dsn, appConfig.Session.KeyFile); err != nil {
			return errors.New(i18n.T("cli.error_init_store", err))
		}
	}

	if appConfig.Audit.Path != "" && journal == nil {
		j, err := audit.Open(appConfig.Audit.Path, appConfig.Audit.MaxSizeKB)
		if err != nil {
			// A broken journal must not block signing in.
			logging.Warnf("attempt journal disabled: %v", err)
		} else {
			journal = j
		}
	}

	return nil
}

// Execute runs the CLI entrypoint. The main packages call this function
// and handle process exit.
func Execute() error {
	defer func() {
		if journal != nil {
			_ = journal.Close()
		}
	}()

	rootCmd := NewRootCmd()
	return rootCmd.Execute()
}

// applyDefaultFlags defines the config-backed flags on a command. Cobra
// panics on duplicate flag definitions and NewRootCmd may run more than
// once in tests, so existing flags are left alone.
func applyDefaultFlags(cmd *cobra.Command) {
	if cmd.Flags().Lookup("server.url") == nil {
		cmd.Flags().String("server.url", "", "Base URL of the identity service")
	}
	if cmd.Flags().Lookup("database.type") == nil {
		cmd.Flags().String("database.type", "sqlite", "Session store type (sqlite, postgres, mysql)")
	}
	if cmd.Flags().Lookup("database.dsn") == nil {
		cmd.Flags().String("database.dsn", "", "Session store connection string (DSN)")
	}
}

func getConfigPathFromCli(cmd *cobra.Command) (*string, error) {
	// Only honor --config when the user explicitly set it.
	if !cmd.Flags().Changed("config") {
		return nil, nil
	}
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("could not read --config flag: %w", err)
	}
	if path == "" {
		return nil, nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file specified via --config flag not found or is not accessible: %w", err)
	}
	return &path, nil
}

// NewRootCmd creates and configures a new root cobra command. It is used
// for the real application as well as fresh instances in tests.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "signon",
		Short: "Signon is a terminal sign-in client for remote identity services.",
		Long: `Signon talks to a remote identity service and manages the resulting
session token on this machine. It validates credentials locally, submits
them once per attempt, explains every failure in plain language and honors
server-directed lockouts with a live countdown.

Running without a subcommand launches the interactive sign-in screen.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if showVersionFlag {
				fmt.Println(compositeVersion())
				os.Exit(0)
			}
			return setupDefaultServices(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// Services are already up from PersistentPreRunE.
			if appConfig.Server.URL == "" {
				return errors.New(i18n.T("cli.error_no_server"))
			}
			tui.Run(tuiOptions())
			return nil
		},
	}

	cmd.Version = compositeVersion()

	cmd.AddCommand(loginCmd)
	cmd.AddCommand(statusCmd)
	cmd.AddCommand(logoutCmd)
	cmd.AddCommand(newConfigCmd())

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose (debug) logging")
	cmd.PersistentFlags().BoolVarP(&showVersionFlag, "version", "V", false, "Print version and exit")
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file")
	cmd.PersistentFlags().String("language", "en", `UI language ("en", "de")`)
	cmd.PersistentFlags().String("redirect", "", "Destination after a successful sign-in")
	applyDefaultFlags(cmd)

	applyDefaultFlags(loginCmd)
	applyDefaultFlags(statusCmd)
	applyDefaultFlags(logoutCmd)

	return cmd
}

// tuiOptions assembles the interactive UI options from the loaded config.
func tuiOptions() tui.Options {
	opts := tui.Options{
		ServerURL:  appConfig.Server.URL,
		Redirect:   appConfig.Redirect,
		SessionTTL: appConfig.SessionTTL(),
	}
	if journal != nil {
		opts.Journal = journal
	}
	return opts
}

// compositeVersion builds the human-readable version string from linker
// variables and, where available, the embedded build info.
func compositeVersion() string {
	v, c, d := resolveBuildVersion(nil)
	out := v
	if c != "" && c != "dev" {
		out += " (" + c + ")"
	}
	if d != "" {
		out += " built: " + d
	}
	return out
}

// resolveBuildVersion merges linker-injected values with the module build
// info so `go install`ed binaries still report something useful.
func resolveBuildVersion(info *debug.BuildInfo) (versionOut, commitOut, dateOut string) {
	resolvedVersion := buildvars.VersionOrDefault("dev")
	resolvedCommit := gitCommit
	resolvedDate := buildDate

	if info == nil {
		info, _ = debug.ReadBuildInfo()
	}
	if info != nil {
		if info.Main.Version != "" && info.Main.Version != "(devel)" {
			resolvedVersion = info.Main.Version
		}
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				if s.Value != "" {
					resolvedCommit = s.Value
				}
			case "vcs.time":
				if s.Value != "" {
					resolvedDate = s.Value
				}
			}
		}
	}
	if len(resolvedCommit) > 12 {
		resolvedCommit = resolvedCommit[:12]
	}
	return resolvedVersion, resolvedCommit, resolvedDate
}
