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
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"pgmock/internal/banner"
	"pgmock/internal/config"
	ferrors "pgmock/internal/errors"
	"pgmock/internal/logging"
	"pgmock/pkg/pgmock"
)

const (
	prompt             = "pgmock> "
	continuationPrompt = "     -> "
	blockPrompt        = "pgmock*> "
)

// completions are offered on Tab.
var completions = []string{
	"CREATE TABLE", "CREATE SEQUENCE", "ALTER TABLE", "INSERT INTO",
	"SELECT", "BEGIN", "COMMIT", "ROLLBACK",
	`\d`, `\ds`, `\stats`, `\metrics`, `\q`, `\?`,
}

// isTerminal returns true if stdin is a terminal.
func isTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

func newShellCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Start an interactive SQL shell",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.newDB()
			if err != nil {
				return err
			}
			s := newShell(db, cmd.OutOrStdout())

			// If not running in a terminal (piped input), use the simple loop.
			if !isTerminal() {
				return s.runSimple(cmd.InOrStdin())
			}
			if a.cfg.ShowBanner {
				banner.Print(s.out, a.cfg)
			}
			fmt.Fprintf(s.out, "  Type %s to quit, %s for help\n\n", `\q`, `\?`)
			return s.runReadline(a.cfg)
		},
	}
}

// shell buffers input lines until a statement ends with ';' and runs the
// buffer as one script. Statements after a BEGIN are held back until the
// matching COMMIT or ROLLBACK so that the block runs as one group. Lines
// starting with a backslash are meta commands.
type shell struct {
	db  *pgmock.DB
	out io.Writer
	// buf holds the statement being typed.
	buf strings.Builder
	// block holds the complete statements of an open transaction block.
	block  string
	logger *logging.Logger
}

func newShell(db *pgmock.DB, out io.Writer) *shell {
	return &shell{db: db, out: out, logger: logging.NewLogger("shell")}
}

// pending reports whether any input is waiting to run.
func (s *shell) pending() bool {
	return s.buf.Len() > 0 || s.block != ""
}

func (s *shell) inBlock() bool {
	return s.block != ""
}

func (s *shell) currentPrompt() string {
	switch {
	case s.buf.Len() > 0:
		return continuationPrompt
	case s.inBlock():
		return blockPrompt
	}
	return prompt
}

// feed handles one input line. It returns false when the shell should exit.
func (s *shell) feed(line string) bool {
	input := strings.TrimSpace(line)
	if s.buf.Len() == 0 {
		if input == "" {
			return true
		}
		if strings.HasPrefix(input, `\`) {
			return s.meta(input)
		}
	}

	s.buf.WriteString(line)
	s.buf.WriteByte('\n')
	if !strings.HasSuffix(input, ";") {
		return true
	}

	script := s.block + s.buf.String()
	s.buf.Reset()
	if s.db.InTransactionBlock(script) {
		s.block = script
		return true
	}
	s.block = ""
	s.run(script)
	return true
}

// flush runs everything buffered, including an open transaction block,
// which then commits implicitly.
func (s *shell) flush() {
	script := s.block + s.buf.String()
	s.block = ""
	s.buf.Reset()
	s.run(script)
}

// discard drops the statement being typed or, when there is none, the
// open transaction block.
func (s *shell) discard() {
	if s.buf.Len() > 0 {
		s.buf.Reset()
		return
	}
	if s.inBlock() {
		s.block = ""
		fmt.Fprintln(s.out, "Transaction block discarded.")
	}
}

func (s *shell) run(script string) {
	if strings.TrimSpace(script) == "" {
		return
	}
	recs, err := s.db.Execute(script, nil)
	printRecords(s.out, recs)
	if err != nil {
		fmt.Fprintln(s.out, ferrors.FormatError(err))
	}
}

func (s *shell) meta(input string) bool {
	fields := strings.Fields(input)
	switch fields[0] {
	case `\q`, `\quit`:
		return false
	case `\d`:
		if len(fields) > 1 {
			s.describe(fields[1])
		} else {
			s.listTables()
		}
	case `\ds`:
		printSequences(s.out, s.db.Sequences())
	case `\stats`:
		printStats(s.out, s.db.Metrics())
	case `\metrics`:
		if err := s.db.WriteMetrics(s.out); err != nil {
			fmt.Fprintln(s.out, ferrors.FormatError(err))
		}
	case `\?`, `\h`, `\help`:
		s.help()
	default:
		fmt.Fprintf(s.out, "Unknown command: %s (try \\?)\n", fields[0])
	}
	return true
}

func (s *shell) listTables() {
	names := s.db.TableNames()
	if len(names) == 0 {
		fmt.Fprintln(s.out, "No relations found.")
		return
	}
	t := newTable(s.out, []string{"Table", "Columns", "Rows"})
	for _, name := range names {
		cols, _ := s.db.Columns(name)
		rows, _ := s.db.Rows(name)
		t.Append([]string{name, fmt.Sprint(len(cols)), fmt.Sprint(len(rows))})
	}
	t.Render()
}

func (s *shell) describe(table string) {
	cols, ok := s.db.Describe(table)
	if !ok {
		fmt.Fprintf(s.out, "Did not find any relation named %q.\n", table)
		return
	}
	printColumns(s.out, cols)

	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	rows, _ := s.db.Rows(table)
	printRows(s.out, names, rows)
}

func (s *shell) help() {
	fmt.Fprintln(s.out, `SQL statements end with ';' and may span lines. After BEGIN the
prompt changes to pgmock*> and statements are held until COMMIT or
ROLLBACK, then run as one transaction. Ctrl+C discards them.

  \d [table]   list tables, or describe one and show its rows
  \ds          list sequences
  \stats       show execution counters
  \metrics     show execution counters in Prometheus text format
  \q           quit`)
}

// runSimple reads lines from in until EOF or \q. A trailing statement
// without ';' runs at EOF.
func (s *shell) runSimple(in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if !s.feed(scanner.Text()) {
			return nil
		}
	}
	if s.pending() {
		s.flush()
	}
	return scanner.Err()
}

func (s *shell) runReadline(cfg *config.Config) error {
	items := make([]readline.PrefixCompleterInterface, 0, len(completions))
	for _, c := range completions {
		items = append(items, readline.PcItem(c))
	}

	historyFile := ""
	if cfg.HistoryFile != "" {
		historyFile = os.ExpandEnv(cfg.HistoryFile)
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:              prompt,
		HistoryFile:         historyFile,
		AutoComplete:        readline.NewPrefixCompleter(items...),
		InterruptPrompt:     "^C",
		EOFPrompt:           `\q`,
		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	})
	if err != nil {
		// Fall back to the simple loop if readline fails.
		s.logger.Warn("Advanced line editing unavailable", "error", err)
		return s.runSimple(os.Stdin)
	}
	defer rl.Close()

	for {
		rl.SetPrompt(s.currentPrompt())

		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			if s.pending() {
				s.discard()
				continue
			}
			fmt.Fprintln(s.out, `(Use \q to quit or Ctrl+D to exit)`)
			continue
		}
		if err != nil {
			// io.EOF on Ctrl+D.
			return nil
		}
		if !s.feed(line) {
			return nil
		}
	}
}

// filterInput disables Ctrl+Z.
func filterInput(r rune) (rune, bool) {
	if r == readline.CharCtrlZ {
		return r, false
	}
	return r, true
}
