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
Package banner provides the banner shown when the pgmock shell starts.

The ASCII art is embedded from banner.txt with //go:embed, so the binary
needs no files at runtime. Colors use ANSI escape sequences:

	\033[<code>m   e.g. "\033[31mRed Text\033[0m"

Usage:

	banner.Print(os.Stdout, cfg)
*/
package banner

import (
	_ "embed" // Required for the //go:embed directive
	"fmt"
	"io"
	"strings"

	"pgmock/internal/config"
)

//go:embed banner.txt
var banner string

// ANSI escape codes for terminal text formatting.
const (
	AnsiRed    = "\033[31m"
	AnsiGreen  = "\033[32m"
	AnsiYellow = "\033[33m"
	AnsiCyan   = "\033[36m"
	AnsiReset  = "\033[0m"
	AnsiBold   = "\033[1m"
	AnsiDim    = "\033[2m"
)

// Version information for pgmock.
const (
	Version   = "0.4.0"
	Copyright = "(c)2026 Firefly Software Solutions Inc"
	License   = "Licensed under Apache 2.0"
)

// Print writes the logo, the version line and a compact view of the
// settings the shell runs with.
func Print(w io.Writer, cfg *config.Config) {
	fmt.Fprintln(w, AnsiCyan+banner+AnsiReset)
	fmt.Fprintln(w, AnsiCyan+AnsiBold+":: pgmock ::                    (v"+Version+")"+AnsiReset)
	fmt.Fprintln(w, AnsiDim+"  In-memory PostgreSQL test double"+AnsiReset)
	fmt.Fprintln(w)

	if cfg != nil {
		printConfig(w, cfg)
	}

	fmt.Fprintln(w, AnsiGreen+Copyright+AnsiReset)
	fmt.Fprintln(w, AnsiGreen+License+AnsiReset)
	fmt.Fprintln(w)
}

func printConfig(w io.Writer, cfg *config.Config) {
	source := AnsiDim + "defaults + environment" + AnsiReset
	if cfg.ConfigFile != "" {
		source = AnsiYellow + cfg.ConfigFile + AnsiReset
	}
	grammars := AnsiDim + "embedded" + AnsiReset
	if cfg.GrammarDir != "" {
		grammars = cfg.GrammarDir
	}

	printRow(w, fmtKV("Config", source), "")
	printRow(w, fmtKV("Dialect", AnsiGreen+cfg.Dialect+AnsiReset), fmtKV("Grammars", grammars))
	printRow(w, fmtKV("Log", strings.ToLower(cfg.LogLevel)), fmtKV("JSON", fmt.Sprintf("%v", cfg.LogJSON)))
	fmt.Fprintln(w)
}

func fmtKV(key, value string) string {
	return fmt.Sprintf("%s%s:%s %s", AnsiDim, key, AnsiReset, value)
}

func printRow(w io.Writer, col1, col2 string) {
	fmt.Fprintf(w, "  %-40s %s\n", col1, col2)
}
