/*
 * Copyright (c) 2026 Firefly Software Solutions Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

/*
Command pgmock runs SQL against the in-memory PostgreSQL model.

Usage:

	pgmock exec -c "CREATE TABLE t (id integer); INSERT INTO t VALUES (1);"
	pgmock exec --param email=ann@example.com schema.sql seed.sql
	pgmock shell
	pgmock config

Configuration is read in this order, later sources winning:

	defaults < config file (pgmock.toml) < PGMOCK_* environment < flags
*/
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"pgmock/internal/banner"
	"pgmock/internal/config"
	ferrors "pgmock/internal/errors"
	"pgmock/internal/logging"
	"pgmock/pkg/pgmock"
)

// app holds the parsed persistent flags and the effective configuration
// shared by every subcommand.
type app struct {
	configFile string
	dialect    string
	grammarDir string
	logLevel   string
	logJSON    bool

	cfg *config.Config
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ferrors.FormatError(err))
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "pgmock",
		Short:         "In-memory PostgreSQL test double",
		Long:          `pgmock parses SQL and applies its DDL and DML effects to an in-memory model.`,
		Version:       banner.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configFile, "config", "", "path to a TOML configuration file")
	pf.StringVar(&a.dialect, "dialect", "", "SQL dialect (postgres)")
	pf.StringVar(&a.grammarDir, "grammar-dir", "", "directory with statement grammar YAML files")
	pf.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn or error")
	pf.BoolVar(&a.logJSON, "log-json", false, "write logs as JSON")

	root.AddCommand(newExecCmd(a), newShellCmd(a), newConfigCmd(a))
	return root
}

// setup resolves the effective configuration and configures logging.
func (a *app) setup(cmd *cobra.Command) error {
	mgr := config.NewManager()
	if a.configFile != "" {
		if err := mgr.LoadFromFile(a.configFile); err != nil {
			return err
		}
		mgr.LoadFromEnv()
	} else if err := mgr.Load(); err != nil {
		return err
	}

	cfg := mgr.Get()
	a.applyFlags(cmd.Flags(), cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	logging.Configure(logging.Config{
		Level:    logging.ParseLevel(cfg.LogLevel),
		Output:   os.Stderr,
		JSONMode: cfg.LogJSON,
	})
	a.cfg = cfg
	return nil
}

// applyFlags copies the flags set on the command line over cfg. Flags
// left at their defaults do not override the file or environment.
func (a *app) applyFlags(flags *pflag.FlagSet, cfg *config.Config) {
	if flags.Changed("dialect") {
		cfg.Dialect = a.dialect
	}
	if flags.Changed("grammar-dir") {
		cfg.GrammarDir = a.grammarDir
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = a.logLevel
	}
	if flags.Changed("log-json") {
		cfg.LogJSON = a.logJSON
	}
}

// newDB creates a DB from the effective configuration.
func (a *app) newDB() (*pgmock.DB, error) {
	return pgmock.New(pgmock.Options{
		Dialect:    a.cfg.Dialect,
		GrammarDir: a.cfg.GrammarDir,
	})
}

func newConfigCmd(a *app) *cobra.Command {
	var writePath string

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as TOML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if writePath != "" {
				if err := a.cfg.SaveToFile(writePath); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Configuration written to %s\n", writePath)
				return nil
			}
			doc, err := a.cfg.ToTOML()
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), doc)
			return nil
		},
	}
	cmd.Flags().StringVar(&writePath, "write", "", "write the configuration to this file instead of printing it")
	return cmd
}
