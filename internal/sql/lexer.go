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
Package sql contains the Lexer component for SQL tokenization.

Lexer Overview:
===============

The Lexer is the first stage of the SQL processing pipeline. It turns a
raw script into a stream of tokens for the statement splitter and the
Parser:

	Input: "INSERT INTO t VALUES ('a', 1);"

	Output Tokens:
	  1. {TokenKeyword, "INSERT"}
	  2. {TokenKeyword, "INTO"}
	  3. {TokenIdent, "t"}
	  4. {TokenKeyword, "VALUES"}
	  5. {TokenLParen, "("}
	  6. {TokenString, "a"}
	  7. {TokenComma, ","}
	  8. {TokenNumber, "1"}
	  9. {TokenRParen, ")"}
	 10. {TokenSemicolon, ";"}
	 11. {TokenEOF, ""}

Every token records the byte offset it starts at, so callers can slice
the original text (the splitter does this to keep statement text intact).

Lexical Rules:
==============

  - Keywords are matched case-insensitively and returned upper-cased.
  - Identifiers hold letters, digits, '_', '$' and '.', and keep their case.
  - "Quoted identifiers" are returned without quotes ("" escapes a quote).
  - 'String literals' are returned without quotes ('' escapes a quote).
    An unterminated literal is returned as TokenIllegal.
  - '::' is a cast, ';' ends a statement.
  - -- line comments and block comments are skipped.
*/
package sql

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// TokenType represents the type of a lexical token.
type TokenType int

// Token type constants.
const (
	TokenEOF       TokenType = iota // End of input
	TokenIdent                      // Identifier (table name, column name)
	TokenString                     // String literal ('hello')
	TokenNumber                     // Numeric literal (123, 1.5, 2e3)
	TokenKeyword                    // SQL keyword (INSERT, TABLE, etc.)
	TokenComma                      // Comma (,)
	TokenLParen                     // Left parenthesis (()
	TokenRParen                     // Right parenthesis ())
	TokenEqual                      // Equals sign (=)
	TokenCast                       // Cast operator (::)
	TokenSemicolon                  // Statement terminator (;)
	TokenOperator                   // Any other punctuation (+, -, *, [, ...)
	TokenIllegal                    // Unterminated literal
)

var tokenNames = map[TokenType]string{
	TokenEOF:       "end of input",
	TokenIdent:     "identifier",
	TokenString:    "string",
	TokenNumber:    "number",
	TokenKeyword:   "keyword",
	TokenComma:     "','",
	TokenLParen:    "'('",
	TokenRParen:    "')'",
	TokenEqual:     "'='",
	TokenCast:      "'::'",
	TokenSemicolon: "';'",
	TokenOperator:  "operator",
	TokenIllegal:   "illegal token",
}

// String returns a readable name for the token type.
func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return "unknown"
}

// Token represents a single lexical unit from the input.
type Token struct {
	Type  TokenType // The category of this token
	Value string    // The literal value (unquoted for strings and quoted identifiers)
	Pos   int       // Byte offset of the token in the input
}

// describe renders the token for error messages.
func (t Token) describe() string {
	switch t.Type {
	case TokenEOF:
		return "end of input"
	case TokenString:
		return "'" + t.Value + "'"
	default:
		return t.Value
	}
}

// keywords are the words the parser branches on. Type names are not
// keywords; they are read as identifiers.
var keywords = map[string]bool{
	"ABORT": true, "ADD": true, "ALTER": true, "AS": true, "BEGIN": true,
	"CHECK": true, "COLUMN": true, "COMMIT": true, "CONSTRAINT": true,
	"CREATE": true, "DEFAULT": true, "DELETE": true, "DROP": true,
	"END": true, "EXISTS": true, "FALSE": true, "FOREIGN": true,
	"FROM": true, "GLOBAL": true, "IF": true, "INSERT": true, "INTO": true,
	"KEY": true, "LOCAL": true, "NOT": true, "NULL": true, "ON": true,
	"ONLY": true, "PRIMARY": true, "REFERENCES": true,
	"ROLLBACK": true, "SELECT": true, "SEQUENCE": true, "SET": true,
	"START": true, "TABLE": true, "TEMP": true, "TEMPORARY": true,
	"TRANSACTION": true, "TRUE": true, "UNIQUE": true, "UNLOGGED": true,
	"UPDATE": true, "VALUES": true, "WHERE": true, "WITH": true, "WORK": true,
}

// IsKeyword reports whether word (any case) is a lexer keyword.
func IsKeyword(word string) bool {
	return keywords[strings.ToUpper(word)]
}

// Lexer transforms an input string into a stream of tokens.
//
// The Lexer is stateful - each call to NextToken() advances
// the position in the input string.
type Lexer struct {
	input string
	pos   int
	upper cases.Caser
}

// NewLexer creates a new Lexer for the given input string.
func NewLexer(input string) *Lexer {
	return &Lexer{input: input, upper: cases.Upper(language.Und)}
}

// NextToken advances the lexer and returns the next token.
func (l *Lexer) NextToken() Token {
	l.skipWhitespaceAndComments()

	if l.pos >= len(l.input) {
		return Token{Type: TokenEOF, Pos: len(l.input)}
	}

	start := l.pos
	ch := l.input[l.pos]

	// Identifier or keyword.
	if isIdentStart(ch) {
		for l.pos < len(l.input) && isIdentPart(l.input[l.pos]) {
			l.pos++
		}
		lit := l.input[start:l.pos]
		upper := l.upper.String(lit)
		if keywords[upper] {
			return Token{Type: TokenKeyword, Value: upper, Pos: start}
		}
		return Token{Type: TokenIdent, Value: lit, Pos: start}
	}

	// Number: digits, optional fraction, optional exponent.
	if isDigit(ch) || (ch == '.' && l.pos+1 < len(l.input) && isDigit(l.input[l.pos+1])) {
		l.consumeDigits()
		if l.pos < len(l.input) && l.input[l.pos] == '.' {
			l.pos++
			l.consumeDigits()
		}
		if l.pos < len(l.input) && (l.input[l.pos] == 'e' || l.input[l.pos] == 'E') {
			save := l.pos
			l.pos++
			if l.pos < len(l.input) && (l.input[l.pos] == '+' || l.input[l.pos] == '-') {
				l.pos++
			}
			if l.pos < len(l.input) && isDigit(l.input[l.pos]) {
				l.consumeDigits()
			} else {
				l.pos = save
			}
		}
		return Token{Type: TokenNumber, Value: l.input[start:l.pos], Pos: start}
	}

	switch ch {
	case '\'':
		value, ok := l.readQuoted('\'')
		if !ok {
			return Token{Type: TokenIllegal, Value: l.input[start:], Pos: start}
		}
		return Token{Type: TokenString, Value: value, Pos: start}
	case '"':
		value, ok := l.readQuoted('"')
		if !ok {
			return Token{Type: TokenIllegal, Value: l.input[start:], Pos: start}
		}
		return Token{Type: TokenIdent, Value: value, Pos: start}
	case ':':
		if l.pos+1 < len(l.input) && l.input[l.pos+1] == ':' {
			l.pos += 2
			return Token{Type: TokenCast, Value: "::", Pos: start}
		}
	}

	l.pos++
	switch ch {
	case ',':
		return Token{Type: TokenComma, Value: ",", Pos: start}
	case '(':
		return Token{Type: TokenLParen, Value: "(", Pos: start}
	case ')':
		return Token{Type: TokenRParen, Value: ")", Pos: start}
	case '=':
		return Token{Type: TokenEqual, Value: "=", Pos: start}
	case ';':
		return Token{Type: TokenSemicolon, Value: ";", Pos: start}
	}
	return Token{Type: TokenOperator, Value: string(ch), Pos: start}
}

// readQuoted consumes a quoted run starting at the opening quote. A
// doubled quote stands for one quote character.
func (l *Lexer) readQuoted(quote byte) (string, bool) {
	l.pos++ // opening quote
	var b strings.Builder
	for l.pos < len(l.input) {
		c := l.input[l.pos]
		if c == quote {
			if l.pos+1 < len(l.input) && l.input[l.pos+1] == quote {
				b.WriteByte(quote)
				l.pos += 2
				continue
			}
			l.pos++
			return b.String(), true
		}
		b.WriteByte(c)
		l.pos++
	}
	return "", false
}

func (l *Lexer) consumeDigits() {
	for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
		l.pos++
	}
}

// skipWhitespaceAndComments advances past whitespace, -- comments and
// block comments.
func (l *Lexer) skipWhitespaceAndComments() {
	for l.pos < len(l.input) {
		switch {
		case unicode.IsSpace(rune(l.input[l.pos])):
			l.pos++
		case strings.HasPrefix(l.input[l.pos:], "--"):
			end := strings.IndexByte(l.input[l.pos:], '\n')
			if end < 0 {
				l.pos = len(l.input)
				return
			}
			l.pos += end + 1
		case strings.HasPrefix(l.input[l.pos:], "/*"):
			end := strings.Index(l.input[l.pos+2:], "*/")
			if end < 0 {
				l.pos = len(l.input)
				return
			}
			l.pos += end + 4
		default:
			return
		}
	}
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isIdentStart(c byte) bool {
	return c == '_' || unicode.IsLetter(rune(c)) || c >= 0x80
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c) || c == '$' || c == '.'
}
