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

package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	ferrors "pgmock/internal/errors"
	"pgmock/pkg/pgmock"
)

func newExecCmd(a *app) *cobra.Command {
	var (
		command string
		params  []string
		stats   bool
	)

	cmd := &cobra.Command{
		Use:   "exec [files...]",
		Short: "Run SQL from files or -c and print the results",
		Long: `Run SQL scripts against a fresh in-memory model. Files run in the
order given, "-" reads standard input, and -c runs last.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if command == "" && len(args) == 0 {
				return ferrors.InvalidConfig("exec", "nothing to run: pass -c or one or more files")
			}
			values, err := parseParams(params)
			if err != nil {
				return err
			}
			scripts, err := readScripts(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			if command != "" {
				scripts = append(scripts, command)
			}

			db, err := a.newDB()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if err := runScripts(db, out, scripts, values); err != nil {
				return err
			}
			if stats {
				return db.WriteMetrics(out)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&command, "command", "c", "", "SQL to run")
	cmd.Flags().StringArrayVar(&params, "param", nil, "parameter as name=value for :name placeholders (repeatable)")
	cmd.Flags().BoolVar(&stats, "stats", false, "print execution metrics after the run")
	return cmd
}

// parseParams turns name=value pairs into a parameter map. Nil means no
// parameters were given.
func parseParams(pairs []string) (map[string]interface{}, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]interface{}, len(pairs))
	for _, p := range pairs {
		name, value, ok := strings.Cut(p, "=")
		if !ok || name == "" {
			return nil, ferrors.InvalidConfig("param", p).WithHint("use --param name=value")
		}
		out[name] = value
	}
	return out, nil
}

func readScripts(stdin io.Reader, paths []string) ([]string, error) {
	scripts := make([]string, 0, len(paths))
	for _, path := range paths {
		var data []byte
		var err error
		if path == "-" {
			data, err = io.ReadAll(stdin)
		} else {
			data, err = os.ReadFile(path)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		scripts = append(scripts, string(data))
	}
	return scripts, nil
}

// runScripts executes each script in turn, printing its records. The
// first failing script stops the run after its partial records print.
func runScripts(db *pgmock.DB, w io.Writer, scripts []string, params map[string]interface{}) error {
	for _, script := range scripts {
		var p interface{}
		if params != nil {
			p = params
		}
		recs, err := db.Execute(script, p)
		printRecords(w, recs)
		if err != nil {
			return err
		}
	}
	return nil
}
