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
Package sql provides the SQL processing pipeline for pgmock.

Abstract Syntax Tree (AST) Overview:
====================================

The AST is the intermediate representation of a statement after parsing.
The Executor dispatches on Statement.Kind() and type-switches on the
concrete node for details.

AST Node Hierarchy:
===================

	Statement (interface)
	├── CreateTableStmt      columns, types and constraints
	├── InsertStmt           target, column list and value tuples
	├── CreateSequenceStmt   raw text, handed to the sequence extractor
	├── AlterTableStmt       raw text, handed to the ALTER TABLE extractor
	├── SelectStmt           raw text, not evaluated
	├── BeginStmt
	├── CommitStmt
	├── RollbackStmt
	└── UnknownStmt          anything else, rejected at dispatch

	Expr (interface)
	├── StringLiteral, NumberLiteral, BoolLiteral, NullLiteral
	├── DefaultExpr          the DEFAULT keyword in a VALUES tuple
	├── FuncCall             nextval('s'), currval('s'), now()
	└── CastExpr             expr::type (the cast is not applied)

String() on every node is the canonical rendering: keywords upper-cased,
single spaces between tokens, literals re-quoted.
*/
package sql

import (
	"strings"
)

// StatementKind classifies a parsed statement for dispatch.
type StatementKind string

const (
	KindCreateTable    StatementKind = "CREATE TABLE"
	KindCreateSequence StatementKind = "CREATE SEQUENCE"
	KindAlterTable     StatementKind = "ALTER TABLE"
	KindInsert         StatementKind = "INSERT"
	KindSelect         StatementKind = "SELECT"
	KindBegin          StatementKind = "BEGIN"
	KindCommit         StatementKind = "COMMIT"
	KindRollback       StatementKind = "ROLLBACK"
	KindUnknown        StatementKind = "UNKNOWN"
)

// Statement represents a SQL statement node in the AST.
type Statement interface {
	statementNode()
	Kind() StatementKind
	String() string
}

// Constraint kinds carried by CREATE TABLE.
const (
	ConstraintPrimaryKey = "PRIMARY KEY"
	ConstraintUnique     = "UNIQUE"
	ConstraintNotNull    = "NOT NULL"
)

// ColumnDef is one column of CREATE TABLE.
type ColumnDef struct {
	Name        string
	Type        string   // declared type, e.g. "character varying(254)"
	Constraints []string // ConstraintPrimaryKey, ConstraintUnique, ConstraintNotNull
	Default     Expr     // nil when no DEFAULT clause
}

// TableConstraint is a table-level PRIMARY KEY or UNIQUE clause.
type TableConstraint struct {
	Name    string
	Kind    string
	Columns []string
}

// CreateTableStmt represents a CREATE TABLE statement.
//
//	CREATE [TEMP] TABLE [IF NOT EXISTS] <name> (<column> <type> [constraints], ...)
type CreateTableStmt struct {
	TableName   string
	IfNotExists bool
	Columns     []ColumnDef
	Constraints []TableConstraint
}

func (s *CreateTableStmt) statementNode()      {}
func (s *CreateTableStmt) Kind() StatementKind { return KindCreateTable }

func (s *CreateTableStmt) String() string {
	var parts []string
	for _, c := range s.Columns {
		col := quoteIdent(c.Name) + " " + strings.ToUpper(c.Type)
		for _, con := range c.Constraints {
			col += " " + con
		}
		if c.Default != nil {
			col += " DEFAULT " + c.Default.String()
		}
		parts = append(parts, col)
	}
	for _, tc := range s.Constraints {
		clause := tc.Kind + " (" + joinIdents(tc.Columns) + ")"
		if tc.Name != "" {
			clause = "CONSTRAINT " + quoteIdent(tc.Name) + " " + clause
		}
		parts = append(parts, clause)
	}
	head := "CREATE TABLE "
	if s.IfNotExists {
		head += "IF NOT EXISTS "
	}
	return head + quoteIdent(s.TableName) + " (" + strings.Join(parts, ", ") + ")"
}

// InsertStmt represents an INSERT statement.
//
//	INSERT INTO <table> [(<col>, ...)] VALUES (<expr>, ...)[, (...)]
type InsertStmt struct {
	TableName string
	Columns   []string // empty means all columns in table order
	Rows      [][]Expr
}

func (s *InsertStmt) statementNode()      {}
func (s *InsertStmt) Kind() StatementKind { return KindInsert }

func (s *InsertStmt) String() string {
	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(quoteIdent(s.TableName))
	if len(s.Columns) > 0 {
		b.WriteString(" (" + joinIdents(s.Columns) + ")")
	}
	b.WriteString(" VALUES ")
	for i, row := range s.Rows {
		if i > 0 {
			b.WriteString(", ")
		}
		vals := make([]string, len(row))
		for j, e := range row {
			vals[j] = e.String()
		}
		b.WriteString("(" + strings.Join(vals, ", ") + ")")
	}
	return b.String()
}

// CreateSequenceStmt carries the text of a CREATE SEQUENCE statement.
type CreateSequenceStmt struct {
	Text string
}

func (s *CreateSequenceStmt) statementNode()      {}
func (s *CreateSequenceStmt) Kind() StatementKind { return KindCreateSequence }
func (s *CreateSequenceStmt) String() string      { return Canonical(s.Text) }

// AlterTableStmt carries the text of an ALTER TABLE statement.
type AlterTableStmt struct {
	Text string
}

func (s *AlterTableStmt) statementNode()      {}
func (s *AlterTableStmt) Kind() StatementKind { return KindAlterTable }
func (s *AlterTableStmt) String() string      { return Canonical(s.Text) }

// SelectStmt carries the text of a SELECT statement.
type SelectStmt struct {
	Text string
}

func (s *SelectStmt) statementNode()      {}
func (s *SelectStmt) Kind() StatementKind { return KindSelect }
func (s *SelectStmt) String() string      { return Canonical(s.Text) }

// BeginStmt represents BEGIN [TRANSACTION|WORK] or START TRANSACTION.
type BeginStmt struct{}

func (s *BeginStmt) statementNode()      {}
func (s *BeginStmt) Kind() StatementKind { return KindBegin }
func (s *BeginStmt) String() string      { return "BEGIN" }

// CommitStmt represents COMMIT [TRANSACTION|WORK] or END.
type CommitStmt struct{}

func (s *CommitStmt) statementNode()      {}
func (s *CommitStmt) Kind() StatementKind { return KindCommit }
func (s *CommitStmt) String() string      { return "COMMIT" }

// RollbackStmt represents ROLLBACK [TRANSACTION|WORK] or ABORT.
type RollbackStmt struct{}

func (s *RollbackStmt) statementNode()      {}
func (s *RollbackStmt) Kind() StatementKind { return KindRollback }
func (s *RollbackStmt) String() string      { return "ROLLBACK" }

// UnknownStmt is any statement the parser does not model.
type UnknownStmt struct {
	Text string
}

func (s *UnknownStmt) statementNode()      {}
func (s *UnknownStmt) Kind() StatementKind { return KindUnknown }
func (s *UnknownStmt) String() string      { return Canonical(s.Text) }

// Expr is a value expression inside VALUES or DEFAULT.
type Expr interface {
	exprNode()
	String() string
}

// StringLiteral is a single-quoted literal, unquoted.
type StringLiteral struct{ Value string }

// NumberLiteral keeps the number's text, including a leading sign.
type NumberLiteral struct{ Value string }

// BoolLiteral is TRUE or FALSE.
type BoolLiteral struct{ Value bool }

// NullLiteral is NULL.
type NullLiteral struct{}

// DefaultExpr is the DEFAULT keyword used as a value.
type DefaultExpr struct{}

// FuncCall is a function applied to arguments.
type FuncCall struct {
	Name string
	Args []Expr
}

// CastExpr is expr::type.
type CastExpr struct {
	Expr Expr
	Type string
}

func (StringLiteral) exprNode() {}
func (NumberLiteral) exprNode() {}
func (BoolLiteral) exprNode()   {}
func (NullLiteral) exprNode()   {}
func (DefaultExpr) exprNode()   {}
func (FuncCall) exprNode()      {}
func (CastExpr) exprNode()      {}

func (e StringLiteral) String() string { return quoteLiteral(e.Value) }
func (e NumberLiteral) String() string { return e.Value }
func (e NullLiteral) String() string   { return "NULL" }
func (e DefaultExpr) String() string   { return "DEFAULT" }

func (e BoolLiteral) String() string {
	if e.Value {
		return "TRUE"
	}
	return "FALSE"
}

func (e FuncCall) String() string {
	args := make([]string, len(e.Args))
	for i, a := range e.Args {
		args[i] = a.String()
	}
	return strings.ToLower(e.Name) + "(" + strings.Join(args, ", ") + ")"
}

func (e CastExpr) String() string {
	return e.Expr.String() + "::" + strings.ToUpper(e.Type)
}

func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// quoteIdent double-quotes names that would not lex back as one identifier.
func quoteIdent(name string) string {
	if name == "" {
		return `""`
	}
	plain := isIdentStart(name[0]) && !IsKeyword(name)
	for i := 0; plain && i < len(name); i++ {
		plain = isIdentPart(name[i])
	}
	if plain {
		return name
	}
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func joinIdents(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = quoteIdent(n)
	}
	return strings.Join(quoted, ", ")
}

// Canonical renders statement text token by token: keywords upper-cased,
// identifiers and literals preserved, single spaces between tokens.
func Canonical(text string) string {
	lexer := NewLexer(text)
	var b strings.Builder
	prev := Token{Type: TokenEOF}
	for {
		tok := lexer.NextToken()
		if tok.Type == TokenEOF || tok.Type == TokenSemicolon {
			break
		}
		if b.Len() > 0 && needsSpace(prev, tok) {
			b.WriteByte(' ')
		}
		switch tok.Type {
		case TokenString:
			b.WriteString(quoteLiteral(tok.Value))
		case TokenIdent:
			if text[tok.Pos] == '"' {
				b.WriteString(`"` + strings.ReplaceAll(tok.Value, `"`, `""`) + `"`)
			} else {
				b.WriteString(tok.Value)
			}
		default:
			b.WriteString(tok.Value)
		}
		prev = tok
	}
	return b.String()
}

func needsSpace(prev, tok Token) bool {
	switch tok.Type {
	case TokenComma, TokenRParen, TokenCast:
		return false
	case TokenLParen:
		return prev.Type == TokenKeyword || prev.Type == TokenComma
	}
	switch prev.Type {
	case TokenLParen, TokenCast:
		return false
	}
	return true
}
