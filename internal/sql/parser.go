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
Package sql contains the Parser component for SQL syntax analysis.

Parser Overview:
================

ParseScript splits a script into statements on top-level semicolons and
parses each one. The Parser is a recursive descent parser with one token
of lookahead, in the same shape for every statement:

  - cur: The current token being processed
  - peek: The next token (lookahead)

Only the statements the executor acts on are parsed into full nodes.
CREATE SEQUENCE and ALTER TABLE keep their text, which the statement
extractors read. Anything else becomes an UnknownStmt.

Grammar (Simplified BNF):
=========================

	statement     := create_table | create_sequence | alter_table
	              | insert | select | begin | commit | rollback

	create_table  := CREATE [TEMP] TABLE [IF NOT EXISTS] ident
	                 ( element (, element)* )
	element       := column_def | table_constraint
	column_def    := ident type { PRIMARY KEY | UNIQUE | NOT NULL | NULL
	                 | DEFAULT expr | CONSTRAINT ident | ... }
	table_constraint := [CONSTRAINT ident] (PRIMARY KEY | UNIQUE) ( ident, ... )

	insert        := INSERT INTO ident [( ident, ... )]
	                 VALUES ( expr, ... ) (, ( expr, ... ))*
	expr          := (string | [-]number | NULL | TRUE | FALSE | DEFAULT
	                 | ident ( expr, ... ) | ( expr )) { :: type }

	begin         := BEGIN [TRANSACTION | WORK] | START TRANSACTION
	commit        := COMMIT [TRANSACTION | WORK] | END
	rollback      := ROLLBACK [TRANSACTION | WORK] | ABORT

Usage Example:
==============

	stmts, err := sql.ParseScript("BEGIN; INSERT INTO t VALUES (1); COMMIT;", "postgres")
	if err != nil {
	    log.Fatal(err)
	}
	// stmts[1] is an *InsertStmt
*/
package sql

import (
	"strings"

	ferrors "pgmock/internal/errors"
	"pgmock/internal/extract"
)

// SplitStatements splits a script on semicolons outside parentheses,
// quotes and comments. Pieces without tokens are dropped.
func SplitStatements(text string) ([]string, error) {
	lexer := NewLexer(text)
	var out []string
	start, depth := 0, 0

	flush := func(end int) {
		piece := strings.TrimSpace(text[start:end])
		if piece != "" && NewLexer(piece).NextToken().Type != TokenEOF {
			out = append(out, piece)
		}
	}

	for {
		tok := lexer.NextToken()
		switch tok.Type {
		case TokenEOF:
			flush(len(text))
			return out, nil
		case TokenIllegal:
			if strings.HasPrefix(tok.Value, `"`) {
				return nil, ferrors.UnclosedString("quoted identifier")
			}
			return nil, ferrors.UnclosedString("string literal")
		case TokenLParen:
			depth++
		case TokenRParen:
			if depth > 0 {
				depth--
			}
		case TokenSemicolon:
			if depth == 0 {
				flush(tok.Pos)
				start = tok.Pos + 1
			}
		}
	}
}

// ParseScript splits text into statements and parses each one.
func ParseScript(text, dialect string) ([]Statement, error) {
	if _, err := extract.LookupDialect(dialect); err != nil {
		return nil, err
	}
	pieces, err := SplitStatements(text)
	if err != nil {
		return nil, err
	}
	stmts := make([]Statement, 0, len(pieces))
	for _, piece := range pieces {
		stmt, err := NewParser(NewLexer(piece)).Parse()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	return stmts, nil
}

// Parser transforms a stream of tokens into an AST.
type Parser struct {
	lexer *Lexer
	cur   Token
	peek  Token
}

// NewParser creates a new Parser instance for the given Lexer.
func NewParser(lexer *Lexer) *Parser {
	p := &Parser{lexer: lexer}
	// Read two tokens to initialize cur and peek.
	p.nextToken()
	p.nextToken()
	return p
}

func (p *Parser) nextToken() {
	p.cur = p.peek
	p.peek = p.lexer.NextToken()
}

// text returns the statement text with a trailing semicolon removed.
func (p *Parser) text() string {
	return strings.TrimSuffix(strings.TrimSpace(p.lexer.input), ";")
}

// original returns the token as written, before keyword upper-casing.
func (p *Parser) original(tok Token) string {
	if tok.Type == TokenKeyword {
		return p.lexer.input[tok.Pos : tok.Pos+len(tok.Value)]
	}
	return tok.Value
}

func (p *Parser) peekKeyword(words ...string) bool {
	if p.peek.Type != TokenKeyword {
		return false
	}
	for _, w := range words {
		if p.peek.Value == w {
			return true
		}
	}
	return false
}

// expectPeek checks if the next token is of the expected type and
// consumes it if so.
func (p *Parser) expectPeek(t TokenType) bool {
	if p.peek.Type == t {
		p.nextToken()
		return true
	}
	return false
}

func (p *Parser) expectKeyword(word string) error {
	if !p.peekKeyword(word) {
		return ferrors.UnexpectedToken(word, p.peek.describe())
	}
	p.nextToken()
	return nil
}

// Parse parses one statement.
func (p *Parser) Parse() (Statement, error) {
	if p.cur.Type == TokenKeyword {
		switch p.cur.Value {
		case "CREATE":
			return p.parseCreate()
		case "ALTER":
			if p.peekKeyword("TABLE") {
				return &AlterTableStmt{Text: p.text()}, nil
			}
		case "INSERT":
			return p.parseInsert()
		case "SELECT":
			return &SelectStmt{Text: p.text()}, nil
		case "BEGIN":
			return &BeginStmt{}, nil
		case "START":
			if p.peekKeyword("TRANSACTION") {
				return &BeginStmt{}, nil
			}
		case "COMMIT", "END":
			return &CommitStmt{}, nil
		case "ROLLBACK", "ABORT":
			// ROLLBACK TO SAVEPOINT is not modeled.
			if p.peek.Type == TokenIdent && strings.EqualFold(p.peek.Value, "to") {
				break
			}
			return &RollbackStmt{}, nil
		}
	}
	return &UnknownStmt{Text: p.text()}, nil
}

// parseCreate dispatches on the object type after CREATE and its
// persistence modifiers.
func (p *Parser) parseCreate() (Statement, error) {
	for p.peekKeyword("GLOBAL", "LOCAL", "TEMP", "TEMPORARY", "UNLOGGED") {
		p.nextToken()
	}
	switch {
	case p.peekKeyword("TABLE"):
		p.nextToken()
		return p.parseCreateTable()
	case p.peekKeyword("SEQUENCE"):
		return &CreateSequenceStmt{Text: p.text()}, nil
	}
	return &UnknownStmt{Text: p.text()}, nil
}

// parseCreateTable parses the rest of CREATE TABLE; cur is TABLE.
func (p *Parser) parseCreateTable() (*CreateTableStmt, error) {
	stmt := &CreateTableStmt{}

	if p.peekKeyword("IF") {
		p.nextToken()
		if err := p.expectKeyword("NOT"); err != nil {
			return nil, err
		}
		if err := p.expectKeyword("EXISTS"); err != nil {
			return nil, err
		}
		stmt.IfNotExists = true
	}

	if !p.expectPeek(TokenIdent) {
		return nil, ferrors.UnexpectedToken("table name", p.peek.describe())
	}
	stmt.TableName = p.cur.Value

	if !p.expectPeek(TokenLParen) {
		return nil, ferrors.UnexpectedToken("(", p.peek.describe())
	}

	for {
		if p.peekKeyword("CONSTRAINT", "PRIMARY", "UNIQUE", "FOREIGN", "CHECK") {
			tc, err := p.parseTableConstraint()
			if err != nil {
				return nil, err
			}
			if tc != nil {
				stmt.Constraints = append(stmt.Constraints, *tc)
			}
		} else if p.peek.Type == TokenIdent || p.peek.Type == TokenKeyword {
			col, err := p.parseColumnDef()
			if err != nil {
				return nil, err
			}
			stmt.Columns = append(stmt.Columns, col)
		} else if p.peek.Type == TokenRParen && len(stmt.Columns) == 0 && len(stmt.Constraints) == 0 {
			// CREATE TABLE t () is valid and has no columns.
			p.nextToken()
			return stmt, nil
		} else {
			return nil, ferrors.UnexpectedToken("column definition", p.peek.describe())
		}

		if p.expectPeek(TokenComma) {
			continue
		}
		if p.expectPeek(TokenRParen) {
			// Storage parameters, INHERITS and the like are ignored.
			return stmt, nil
		}
		return nil, ferrors.UnexpectedToken(", or )", p.peek.describe())
	}
}

func (p *Parser) parseColumnDef() (ColumnDef, error) {
	p.nextToken()
	col := ColumnDef{Name: p.original(p.cur)}

	typ, err := p.parseTypeName()
	if err != nil {
		return col, err
	}
	col.Type = typ

	for {
		switch {
		case p.peek.Type == TokenComma || p.peek.Type == TokenRParen || p.peek.Type == TokenEOF:
			return col, nil
		case p.peekKeyword("PRIMARY"):
			p.nextToken()
			if err := p.expectKeyword("KEY"); err != nil {
				return col, err
			}
			col.Constraints = append(col.Constraints, ConstraintPrimaryKey)
		case p.peekKeyword("UNIQUE"):
			p.nextToken()
			col.Constraints = append(col.Constraints, ConstraintUnique)
		case p.peekKeyword("NOT"):
			p.nextToken()
			if err := p.expectKeyword("NULL"); err != nil {
				return col, err
			}
			col.Constraints = append(col.Constraints, ConstraintNotNull)
		case p.peekKeyword("NULL"):
			p.nextToken()
		case p.peekKeyword("CONSTRAINT"):
			p.nextToken()
			p.nextToken() // constraint name
		case p.peekKeyword("DEFAULT"):
			p.nextToken()
			expr, err := p.parseExpr()
			if err != nil {
				return col, err
			}
			col.Default = expr
		case p.peek.Type == TokenIdent && strings.EqualFold(p.peek.Value, "collate"):
			p.nextToken()
			p.nextToken() // collation name
		default:
			// REFERENCES, CHECK, GENERATED and other clauses carry no
			// state here.
			p.skipElement()
		}
	}
}

// parseTableConstraint parses a table-level constraint. Only PRIMARY KEY
// and UNIQUE are returned; other kinds are skipped and return nil.
func (p *Parser) parseTableConstraint() (*TableConstraint, error) {
	tc := &TableConstraint{}
	if p.peekKeyword("CONSTRAINT") {
		p.nextToken()
		p.nextToken()
		tc.Name = p.original(p.cur)
	}

	switch {
	case p.peekKeyword("PRIMARY"):
		p.nextToken()
		if err := p.expectKeyword("KEY"); err != nil {
			return nil, err
		}
		tc.Kind = ConstraintPrimaryKey
	case p.peekKeyword("UNIQUE"):
		p.nextToken()
		tc.Kind = ConstraintUnique
	default:
		p.skipElement()
		return nil, nil
	}

	cols, err := p.parseIdentList()
	if err != nil {
		return nil, err
	}
	tc.Columns = cols
	p.skipElement()
	return tc, nil
}

// parseIdentList parses ( ident, ... ); peek must be the opening paren.
func (p *Parser) parseIdentList() ([]string, error) {
	if !p.expectPeek(TokenLParen) {
		return nil, ferrors.UnexpectedToken("(", p.peek.describe())
	}
	var names []string
	for {
		if p.peek.Type != TokenIdent && p.peek.Type != TokenKeyword {
			return nil, ferrors.UnexpectedToken("column name", p.peek.describe())
		}
		p.nextToken()
		names = append(names, p.original(p.cur))

		if p.expectPeek(TokenComma) {
			continue
		}
		if p.expectPeek(TokenRParen) {
			return names, nil
		}
		return nil, ferrors.UnexpectedToken(", or )", p.peek.describe())
	}
}

// skipElement consumes tokens up to the next comma or closing paren at
// the current nesting level, leaving that token as peek.
func (p *Parser) skipElement() {
	depth := 0
	for {
		switch p.peek.Type {
		case TokenEOF:
			return
		case TokenComma:
			if depth == 0 {
				return
			}
		case TokenLParen:
			depth++
		case TokenRParen:
			if depth == 0 {
				return
			}
			depth--
		}
		p.nextToken()
	}
}

// typeStopWords end a type name even though they lex as identifiers.
var typeStopWords = map[string]bool{"collate": true, "generated": true}

// parseTypeName reads a possibly multi-word type such as
// "character varying(254)", "double precision" or
// "timestamp with time zone". The result is lower-cased.
func (p *Parser) parseTypeName() (string, error) {
	var words []string
	for {
		switch {
		case p.peek.Type == TokenIdent && !typeStopWords[strings.ToLower(p.peek.Value)]:
			p.nextToken()
			words = append(words, strings.ToLower(p.cur.Value))
		case p.peekKeyword("WITH") && len(words) > 0:
			p.nextToken()
			words = append(words, "with")
		case p.peek.Type == TokenLParen && len(words) > 0:
			p.nextToken()
			args := "("
			for !p.expectPeek(TokenRParen) {
				if p.peek.Type == TokenEOF {
					return "", ferrors.UnexpectedToken(")", "end of input")
				}
				p.nextToken()
				args += p.cur.Value
			}
			words[len(words)-1] += args + ")"
		case p.peek.Type == TokenOperator && p.peek.Value == "[" && len(words) > 0:
			p.nextToken()
			if p.peek.Type == TokenNumber {
				p.nextToken()
			}
			if !(p.peek.Type == TokenOperator && p.peek.Value == "]") {
				return "", ferrors.UnexpectedToken("]", p.peek.describe())
			}
			p.nextToken()
			words[len(words)-1] += "[]"
		default:
			if len(words) == 0 {
				return "", ferrors.UnexpectedToken("type name", p.peek.describe())
			}
			return strings.Join(words, " "), nil
		}
	}
}

// parseInsert parses INSERT INTO; cur is INSERT.
func (p *Parser) parseInsert() (*InsertStmt, error) {
	if err := p.expectKeyword("INTO"); err != nil {
		return nil, err
	}
	if !p.expectPeek(TokenIdent) {
		return nil, ferrors.UnexpectedToken("table name", p.peek.describe())
	}
	stmt := &InsertStmt{TableName: p.cur.Value}

	if p.peek.Type == TokenLParen {
		cols, err := p.parseIdentList()
		if err != nil {
			return nil, err
		}
		stmt.Columns = cols
	}

	if err := p.expectKeyword("VALUES"); err != nil {
		return nil, err
	}

	for {
		if !p.expectPeek(TokenLParen) {
			return nil, ferrors.UnexpectedToken("(", p.peek.describe())
		}
		var row []Expr
		for {
			expr, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			row = append(row, expr)
			if p.expectPeek(TokenComma) {
				continue
			}
			if p.expectPeek(TokenRParen) {
				break
			}
			return nil, ferrors.UnexpectedToken(", or )", p.peek.describe())
		}
		stmt.Rows = append(stmt.Rows, row)

		if !p.expectPeek(TokenComma) {
			break
		}
	}

	if p.peek.Type != TokenEOF && p.peek.Type != TokenSemicolon {
		return nil, ferrors.UnexpectedToken("end of statement", p.peek.describe())
	}
	return stmt, nil
}

// parseExpr parses one value expression starting at peek and leaves its
// last token as cur.
func (p *Parser) parseExpr() (Expr, error) {
	p.nextToken()

	var expr Expr
	switch p.cur.Type {
	case TokenString:
		expr = StringLiteral{Value: p.cur.Value}
	case TokenNumber:
		expr = NumberLiteral{Value: p.cur.Value}
	case TokenOperator:
		if (p.cur.Value == "-" || p.cur.Value == "+") && p.peek.Type == TokenNumber {
			sign := strings.TrimPrefix(p.cur.Value, "+")
			p.nextToken()
			expr = NumberLiteral{Value: sign + p.cur.Value}
		} else {
			return nil, ferrors.UnexpectedToken("value", p.cur.describe())
		}
	case TokenKeyword:
		switch p.cur.Value {
		case "NULL":
			expr = NullLiteral{}
		case "TRUE":
			expr = BoolLiteral{Value: true}
		case "FALSE":
			expr = BoolLiteral{Value: false}
		case "DEFAULT":
			expr = DefaultExpr{}
		default:
			return nil, ferrors.UnexpectedToken("value", p.cur.describe())
		}
	case TokenIdent:
		name := p.cur.Value
		if p.peek.Type != TokenLParen {
			// Niladic SQL functions such as CURRENT_TIMESTAMP.
			expr = FuncCall{Name: strings.ToLower(name)}
			break
		}
		p.nextToken()
		call := FuncCall{Name: strings.ToLower(name)}
		if !p.expectPeek(TokenRParen) {
			for {
				arg, err := p.parseExpr()
				if err != nil {
					return nil, err
				}
				call.Args = append(call.Args, arg)
				if p.expectPeek(TokenComma) {
					continue
				}
				if p.expectPeek(TokenRParen) {
					break
				}
				return nil, ferrors.UnexpectedToken(", or )", p.peek.describe())
			}
		}
		expr = call
	case TokenLParen:
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if !p.expectPeek(TokenRParen) {
			return nil, ferrors.UnexpectedToken(")", p.peek.describe())
		}
		expr = inner
	case TokenIllegal:
		return nil, ferrors.UnclosedString("string literal")
	default:
		return nil, ferrors.UnexpectedToken("value", p.cur.describe())
	}

	for p.expectPeek(TokenCast) {
		typ, err := p.parseTypeName()
		if err != nil {
			return nil, err
		}
		expr = CastExpr{Expr: expr, Type: typ}
	}
	return expr, nil
}
