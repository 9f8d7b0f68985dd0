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

package extract

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	ferrors "pgmock/internal/errors"
)

// Dialect holds the reserved keyword set and the function names the
// extractors evaluate for one SQL grammar variant. Keywords are stored
// upper-cased and compared exactly.
type Dialect struct {
	Name      string
	keywords  map[string]struct{}
	functions map[string]struct{}
}

// NewDialect builds a dialect from keyword and function lists.
func NewDialect(name string, keywords, functions []string) *Dialect {
	d := &Dialect{
		Name:      name,
		keywords:  make(map[string]struct{}, len(keywords)),
		functions: make(map[string]struct{}, len(functions)),
	}
	for _, k := range keywords {
		d.keywords[Upper(k)] = struct{}{}
	}
	for _, f := range functions {
		d.functions[strings.ToLower(f)] = struct{}{}
	}
	return d
}

// Postgres is the dialect the mock emulates.
var Postgres = NewDialect("postgres",
	[]string{
		"ADD", "ALTER", "AS", "BY", "CACHE", "COLUMN", "CONSTRAINT", "CREATE",
		"CYCLE", "DEFAULT", "DROP", "EXISTS", "IF", "INCREMENT", "KEY",
		"MAXVALUE", "MINVALUE", "NO", "NONE", "NOT", "NULL", "ONLY", "OWNED",
		"PRIMARY", "SEQUENCE", "SET", "START", "TABLE", "TEMP", "TEMPORARY",
		"UNIQUE", "UNLOGGED", "WITH",
	},
	[]string{"nextval", "currval"},
)

// LookupDialect returns the dialect registered under name.
func LookupDialect(name string) (*Dialect, error) {
	switch strings.ToLower(name) {
	case "", "postgres", "postgresql":
		return Postgres, nil
	}
	return nil, ferrors.UnknownDialect(name)
}

// IsKeyword reports whether word is reserved. word must already be upper-cased.
func (d *Dialect) IsKeyword(word string) bool {
	_, ok := d.keywords[word]
	return ok
}

// IsFunction reports whether name is a function the extractors evaluate.
func (d *Dialect) IsFunction(name string) bool {
	_, ok := d.functions[strings.ToLower(name)]
	return ok
}

// Upper normalizes a word for keyword comparison.
func Upper(s string) string {
	return cases.Upper(language.Und).String(s)
}
