// Copyright (c) 2026 Signon Team
// Signon - terminal sign-in client for remote identity services
// This source code is licensed under the MIT license found in the LICENSE file.

// configcmd.go implements `signon config init`, which writes a default
// configuration file to the user or system config path.

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pverkade/signon/internal/config"
	"github.com/pverkade/signon/internal/i18n"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the Signon configuration",
		// Config management must work before any service can come up, so
		// this replaces the root setup with a config-only variant.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			optionalConfigPath, err := getConfigPathFromCli(cmd)
			if err != nil {
				return err
			}
			appConfig, err = config.LoadConfig[config.Config](cmd, configDefaults(), optionalConfigPath)
			if err != nil {
				appConfig = defaultConfig()
			}
			lang := appConfig.Language
			if lang == "" {
				lang = "en"
			}
			i18n.Init(lang)
			return nil
		},
	}

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			system, _ := cmd.Flags().GetBool("system")
			c := defaultConfig()
			if err := config.WriteConfigFile(&c, system); err != nil {
				return err
			}
			path, err := config.GetConfigPath(system)
			if err != nil {
				return err
			}
			fmt.Println(i18n.T("cli.config_written", path))
			return nil
		},
	}
	initCmd.Flags().Bool("system", false, "Write the system-wide configuration")
	cmd.AddCommand(initCmd)

	return cmd
}

// defaultConfig materializes the typed defaults used for a fresh config
// file.
func defaultConfig() config.Config {
	var c config.Config
	d := configDefaults()
	c.Server.URL = d["server.url"].(string)
	c.Redirect = d["redirect"].(string)
	c.Language = d["language"].(string)
	c.Database.Type = d["database.type"].(string)
	c.Database.Dsn = d["database.dsn"].(string)
	c.Session.TTL = d["session.ttl"].(string)
	c.Session.KeyFile = d["session.key_file"].(string)
	c.Audit.Path = d["audit.path"].(string)
	c.Audit.MaxSizeKB = d["audit.max_size_kb"].(int)
	return c
}
