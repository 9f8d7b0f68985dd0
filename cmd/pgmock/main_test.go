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
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"pgmock/internal/config"
	ferrors "pgmock/internal/errors"
	"pgmock/pkg/pgmock"
)

// runCLI executes the root command with args and returns its output.
func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv(config.EnvConfigFile, "")
	t.Setenv("HOME", t.TempDir())
	wd, wdErr := os.Getwd()
	if wdErr != nil {
		t.Fatalf("getwd: %v", wdErr)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestExecCommand(t *testing.T) {
	out, err := runCLI(t, "", "exec", "-c",
		"CREATE TABLE t (id integer); INSERT INTO t VALUES (:id), (2);", "--param", "id=1")
	if err != nil {
		t.Fatalf("exec failed: %v", err)
	}
	if want := "CREATE TABLE OK\nINSERT 2\n"; out != want {
		t.Errorf("Expected %q, got %q", want, out)
	}
}

func TestExecFilesAndStdin(t *testing.T) {
	dir := t.TempDir()
	schema := filepath.Join(dir, "schema.sql")
	if err := os.WriteFile(schema, []byte("CREATE SEQUENCE s;\nCREATE TABLE t (id integer);\n"), 0644); err != nil {
		t.Fatal(err)
	}

	out, err := runCLI(t, "INSERT INTO t VALUES (nextval('s'));", "exec", schema, "-", "--stats")
	if err != nil {
		t.Fatalf("exec failed: %v", err)
	}
	for _, want := range []string{"CREATE SEQUENCE OK", "CREATE TABLE OK", "INSERT 1", "pgmock_statements_total 3"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestExecErrors(t *testing.T) {
	if _, err := runCLI(t, "", "exec"); ferrors.GetCode(err) != ferrors.ErrCodeInvalidConfig {
		t.Errorf("Expected InvalidConfig without input, got %v", err)
	}
	if _, err := runCLI(t, "", "exec", "-c", "SELECT 1", "--param", "novalue"); ferrors.GetCode(err) != ferrors.ErrCodeInvalidConfig {
		t.Errorf("Expected InvalidConfig for a bad param, got %v", err)
	}
	if _, err := runCLI(t, "", "exec", "--dialect", "mysql", "-c", "SELECT 1"); ferrors.GetCode(err) != ferrors.ErrCodeInvalidConfig {
		t.Errorf("Expected InvalidConfig for an unknown dialect, got %v", err)
	}

	out, err := runCLI(t, "", "exec", "-c", "CREATE TABLE t (id integer); DROP TABLE t;")
	if !ferrors.IsUnsupportedStatement(err) {
		t.Errorf("Expected UnsupportedStatement, got %v", err)
	}
	if !strings.Contains(out, "CREATE TABLE OK") {
		t.Errorf("Expected partial records to print, got %q", out)
	}
}

func TestConfigCommand(t *testing.T) {
	out, err := runCLI(t, "", "config", "--log-level", "debug")
	if err != nil {
		t.Fatalf("config failed: %v", err)
	}
	for _, want := range []string{`dialect = "postgres"`, `log_level = "debug"`} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestConfigFileAndEnvPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pgmock.toml")
	if err := os.WriteFile(path, []byte("log_level = \"info\"\nshow_banner = false\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(config.EnvLogJSON, "true")

	out, err := runCLI(t, "", "config", "--config", path)
	if err != nil {
		t.Fatalf("config failed: %v", err)
	}
	for _, want := range []string{`log_level = "info"`, "show_banner = false", "log_json = true"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestParseParams(t *testing.T) {
	got, err := parseParams([]string{"a=1", "b=x=y", "c="})
	if err != nil {
		t.Fatalf("parseParams failed: %v", err)
	}
	want := map[string]interface{}{"a": "1", "b": "x=y", "c": ""}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("params mismatch (-want +got):\n%s", diff)
	}

	if got, err := parseParams(nil); got != nil || err != nil {
		t.Errorf("Expected nil params, got %v (%v)", got, err)
	}
}

func setupTestShell(t *testing.T) (*shell, *bytes.Buffer) {
	t.Helper()
	db, err := pgmock.New(pgmock.Options{})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	var out bytes.Buffer
	return newShell(db, &out), &out
}

func TestShellBuffersUntilSemicolon(t *testing.T) {
	s, out := setupTestShell(t)

	input := strings.Join([]string{
		"CREATE TABLE t (id integer, name text);",
		"INSERT INTO t",
		"  VALUES (1, 'a');",
		`\d t`,
		`\q`,
		"INSERT INTO t VALUES (2, 'b');",
	}, "\n")
	if err := s.runSimple(strings.NewReader(input)); err != nil {
		t.Fatalf("runSimple failed: %v", err)
	}

	rows, _ := s.db.Rows("t")
	if len(rows) != 1 {
		t.Errorf("Expected 1 row (input after \\q ignored), got %d", len(rows))
	}
	for _, want := range []string{"CREATE TABLE OK", "INSERT 1", "(1 rows)", "name"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("Expected output to contain %q, got:\n%s", want, out.String())
		}
	}
}

func TestShellMetaCommands(t *testing.T) {
	s, out := setupTestShell(t)

	input := "CREATE SEQUENCE s START 5;\nCREATE TABLE t (id integer);\n\\d\n\\ds\n\\stats\n\\metrics\n\\d nope\n\\bogus\n"
	if err := s.runSimple(strings.NewReader(input)); err != nil {
		t.Fatalf("runSimple failed: %v", err)
	}

	for _, want := range []string{
		"Sequence", "Table", "statements", "pgmock_transactions_committed_total",
		`Did not find any relation named "nope".`, `Unknown command: \bogus`,
	} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("Expected output to contain %q, got:\n%s", want, out.String())
		}
	}
}

func TestShellReportsErrorsAndContinues(t *testing.T) {
	s, out := setupTestShell(t)

	input := "INSERT INTO missing VALUES (1);\nCREATE TABLE t (id integer)"
	if err := s.runSimple(strings.NewReader(input)); err != nil {
		t.Fatalf("runSimple failed: %v", err)
	}

	if !strings.Contains(out.String(), "missing") {
		t.Errorf("Expected the error to be printed, got:\n%s", out.String())
	}
	if _, ok := s.db.Columns("t"); !ok {
		t.Error("Expected the trailing statement to run at EOF")
	}
}

func TestShellTransactionAcrossLines(t *testing.T) {
	tests := []struct {
		name string
		end  string
		rows int
	}{
		{"rollback", "ROLLBACK;", 0},
		{"commit", "COMMIT;", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, out := setupTestShell(t)

			for _, line := range []string{"CREATE TABLE t (id integer);", "BEGIN;", "INSERT INTO t VALUES (1);"} {
				s.feed(line)
			}
			if got := s.currentPrompt(); got != blockPrompt {
				t.Errorf("Expected prompt %q inside the block, got %q", blockPrompt, got)
			}
			if rows, _ := s.db.Rows("t"); len(rows) != 0 {
				t.Errorf("Expected the block to be held until it ends, got %d rows", len(rows))
			}

			s.feed(tt.end)
			if rows, _ := s.db.Rows("t"); len(rows) != tt.rows {
				t.Errorf("Expected %d rows after %s, got %d", tt.rows, tt.end, len(rows))
			}
			if s.pending() {
				t.Error("Expected nothing buffered after the block ends")
			}
			if got := s.currentPrompt(); got != prompt {
				t.Errorf("Expected prompt %q, got %q", prompt, got)
			}
			if !strings.Contains(out.String(), strings.TrimSuffix(tt.end, ";")) {
				t.Errorf("Expected %s in output, got:\n%s", tt.end, out.String())
			}
		})
	}
}

func TestShellMetaCommandInsideBlock(t *testing.T) {
	s, out := setupTestShell(t)

	input := "CREATE TABLE t (id integer);\nBEGIN;\nINSERT INTO t VALUES (1);\n\\d\nROLLBACK;\n"
	if err := s.runSimple(strings.NewReader(input)); err != nil {
		t.Fatalf("runSimple failed: %v", err)
	}

	if rows, _ := s.db.Rows("t"); len(rows) != 0 {
		t.Errorf("Expected the rollback to discard the insert, got %d rows", len(rows))
	}
	if !strings.Contains(out.String(), "Columns") {
		t.Errorf("Expected \\d to run inside the block, got:\n%s", out.String())
	}
}

func TestShellDiscardBlock(t *testing.T) {
	s, out := setupTestShell(t)

	s.feed("CREATE TABLE t (id integer);")
	s.feed("BEGIN;")
	s.feed("INSERT INTO t VALUES (1);")
	s.feed("INSERT INTO t")
	s.discard()
	if !s.inBlock() {
		t.Error("Expected the first discard to drop only the partial statement")
	}
	s.discard()
	if s.pending() {
		t.Error("Expected the second discard to drop the block")
	}
	if !strings.Contains(out.String(), "Transaction block discarded.") {
		t.Errorf("Expected a discard notice, got:\n%s", out.String())
	}
	if rows, _ := s.db.Rows("t"); len(rows) != 0 {
		t.Errorf("Expected no rows, got %d", len(rows))
	}
}
