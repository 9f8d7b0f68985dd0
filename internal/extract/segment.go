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
Package extract pulls structured facts out of individual DDL statements.

Segment Scanner:
================

The scanner cuts the unconsumed tail of a statement into segments. It is
a pure function: the caller threads Segment.Remainder back in to advance.

	Input: "ALTER TABLE ONLY email_email ADD CONSTRAINT email_email_pkey PRIMARY KEY (id);"

	Segments:
	  1. {TOKEN, "ALTER"}
	  2. {TOKEN, "TABLE"}
	  3. {TOKEN, "ONLY"}
	  4. {NAME, "email_email"}
	  5. {TOKEN, "ADD"}
	  6. {TOKEN, "CONSTRAINT"}
	  7. {NAME, "email_email_pkey"}
	  8. {TOKEN, "PRIMARY"}
	  9. {TOKEN, "KEY"}
	 10. {SUBEXPRESSION, "(id)"}

Pattern classes are tried in this order at the first non-delimiter byte:

  - word: letters, digits, '_', '$' and '.'. A word is a TOKEN only if
    its upper-cased text is a keyword of the dialect, otherwise a NAME.
    All-digit words fall through to the number classes.
  - parenthesized sub-expression with balanced parentheses
  - single-quoted literal ('' escapes a quote)
  - integer, then decimal, each with an optional sign

Double-quoted identifiers are NAMEs. Whitespace, ';', ',', '=', ':' and
"--" comments separate segments.

State Graph Walker:
===================

Grammars are YAML trees embedded in the binary (see grammars/). Each node
names an optional keyword phrase, an optional state, a list of options
that may occur any number of times in any order, and a list of next
continuations. Graphs are compiled once into immutable nodes whose states
are typed constants. Walk drives a depth-first, non-backtracking traversal
and hands every visited state to a Handler.

Extractors:
===========

AlterTable and CreateSequence implement Handler for their grammars and
return immutable extraction records.
*/
package extract

import (
	"fmt"
	"strings"
)

// SegmentKind classifies a segment.
type SegmentKind int

const (
	KindToken SegmentKind = iota
	KindName
	KindLiteral
	KindNumber
	KindSubexpression
)

// String returns the kind name used in error messages.
func (k SegmentKind) String() string {
	switch k {
	case KindToken:
		return "TOKEN"
	case KindName:
		return "NAME"
	case KindLiteral:
		return "LITERAL"
	case KindNumber:
		return "NUMBER"
	case KindSubexpression:
		return "SUBEXPRESSION"
	}
	return "UNKNOWN"
}

// Segment is one lexical unit cut from a statement.
type Segment struct {
	Text      string
	Kind      SegmentKind
	Remainder string
}

// Token returns the upper-cased keyword for TOKEN segments and "" otherwise.
func (s Segment) Token() string {
	if s.Kind != KindToken {
		return ""
	}
	return Upper(s.Text)
}

// String renders the segment for logs and errors.
func (s Segment) String() string {
	return fmt.Sprintf("%s(%s)", s.Kind, s.Text)
}

// NextSegment returns the next segment of tail, or false when nothing
// but delimiters remains.
func (d *Dialect) NextSegment(tail string) (Segment, bool) {
	i := skipDelimiters(tail, 0)
	if i >= len(tail) {
		return Segment{}, false
	}

	var (
		seg Segment
		end int
	)
	c := tail[i]
	switch {
	case isWordStart(c):
		end = scanWord(tail, i)
		word := tail[i:end]
		seg = Segment{Text: word, Kind: KindName}
		if !strings.Contains(word, ".") && d.IsKeyword(Upper(word)) {
			seg.Kind = KindToken
		}
	case c == '(':
		end = scanParens(tail, i)
		seg = Segment{Text: tail[i:end], Kind: KindSubexpression}
	case c == '\'':
		var text string
		text, end = scanQuoted(tail, i, '\'')
		seg = Segment{Text: text, Kind: KindLiteral}
	case c == '"':
		var text string
		text, end = scanQuoted(tail, i, '"')
		seg = Segment{Text: text, Kind: KindName}
	case isDigit(c) || ((c == '-' || c == '+') && i+1 < len(tail) && isDigit(tail[i+1])):
		end = scanNumber(tail, i)
		seg = Segment{Text: tail[i:end], Kind: KindNumber}
	default:
		// Stray punctuation such as ')' or '-' carries no meaning for the
		// grammars; drop it and keep scanning.
		return d.NextSegment(tail[i+1:])
	}

	if end < len(tail) && isDelimiter(tail[end]) {
		end++
	}
	seg.Remainder = tail[end:]
	return seg, true
}

func skipDelimiters(s string, i int) int {
	for i < len(s) {
		switch {
		case isDelimiter(s[i]):
			i++
		case s[i] == '-' && i+1 < len(s) && s[i+1] == '-':
			for i < len(s) && s[i] != '\n' {
				i++
			}
		default:
			return i
		}
	}
	return i
}

func isDelimiter(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', ';', ',', '=', ':':
		return true
	}
	return false
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isWordStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c >= 0x80
}

func isWordPart(c byte) bool {
	return isWordStart(c) || isDigit(c) || c == '$' || c == '.'
}

func scanWord(s string, i int) int {
	for i < len(s) && isWordPart(s[i]) {
		i++
	}
	return i
}

// scanParens returns the index just past the parenthesis closing the one
// at i. Quoted text inside is skipped. An unbalanced group runs to the end.
func scanParens(s string, i int) int {
	depth := 0
	for i < len(s) {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i + 1
			}
		case '\'', '"':
			_, i = scanQuoted(s, i, s[i])
			continue
		}
		i++
	}
	return i
}

// scanQuoted reads a quoted run starting at i. A doubled quote is an
// escaped quote. It returns the unquoted text and the index past the
// closing quote.
func scanQuoted(s string, i int, quote byte) (string, int) {
	var b strings.Builder
	i++
	for i < len(s) {
		if s[i] == quote {
			if i+1 < len(s) && s[i+1] == quote {
				b.WriteByte(quote)
				i += 2
				continue
			}
			return b.String(), i + 1
		}
		b.WriteByte(s[i])
		i++
	}
	return b.String(), i
}

func scanNumber(s string, i int) int {
	if s[i] == '-' || s[i] == '+' {
		i++
	}
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	if i+1 < len(s) && s[i] == '.' && isDigit(s[i+1]) {
		i++
		for i < len(s) && isDigit(s[i]) {
			i++
		}
	}
	return i
}
