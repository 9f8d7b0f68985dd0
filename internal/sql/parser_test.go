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

package sql

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	ferrors "pgmock/internal/errors"
	"pgmock/internal/storage"
)

func TestLexerTokens(t *testing.T) {
	input := `insert INTO "My Table" VALUES ('it''s', -2.5e3, x::text); -- done`
	want := []Token{
		{Type: TokenKeyword, Value: "INSERT"},
		{Type: TokenKeyword, Value: "INTO"},
		{Type: TokenIdent, Value: "My Table"},
		{Type: TokenKeyword, Value: "VALUES"},
		{Type: TokenLParen, Value: "("},
		{Type: TokenString, Value: "it's"},
		{Type: TokenComma, Value: ","},
		{Type: TokenOperator, Value: "-"},
		{Type: TokenNumber, Value: "2.5e3"},
		{Type: TokenComma, Value: ","},
		{Type: TokenIdent, Value: "x"},
		{Type: TokenCast, Value: "::"},
		{Type: TokenIdent, Value: "text"},
		{Type: TokenRParen, Value: ")"},
		{Type: TokenSemicolon, Value: ";"},
		{Type: TokenEOF},
	}

	lexer := NewLexer(input)
	var got []Token
	for {
		tok := lexer.NextToken()
		tok.Pos = 0
		got = append(got, tok)
		if tok.Type == TokenEOF {
			break
		}
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("tokens mismatch (-want +got):\n%s", diff)
	}
}

func TestSplitStatements(t *testing.T) {
	script := "INSERT INTO t VALUES ('a;b'); /* x; y */ CREATE TABLE u (c numeric(10,2));\n-- only a comment;\n;;SELECT 1"

	got, err := SplitStatements(script)
	if err != nil {
		t.Fatalf("SplitStatements failed: %v", err)
	}
	want := []string{
		"INSERT INTO t VALUES ('a;b')",
		"/* x; y */ CREATE TABLE u (c numeric(10,2))",
		"SELECT 1",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("statements mismatch (-want +got):\n%s", diff)
	}
}

func TestSplitStatementsUnclosed(t *testing.T) {
	for _, script := range []string{"INSERT INTO t VALUES ('abc", `SELECT "abc`} {
		_, err := SplitStatements(script)
		if ferrors.GetCode(err) != ferrors.ErrCodeUnclosedString {
			t.Errorf("%s: expected UnclosedString, got %v", script, err)
		}
	}
}

func TestParseScriptKinds(t *testing.T) {
	tests := []struct {
		sql  string
		kind StatementKind
	}{
		{"CREATE TABLE t (id integer)", KindCreateTable},
		{"create temp table t (id integer)", KindCreateTable},
		{"CREATE SEQUENCE s START 1", KindCreateSequence},
		{"CREATE UNLOGGED SEQUENCE s", KindCreateSequence},
		{"ALTER TABLE ONLY t ALTER COLUMN id SET DEFAULT 1", KindAlterTable},
		{"INSERT INTO t VALUES (1)", KindInsert},
		{"SELECT 'CREATE TABLE x'", KindSelect},
		{"BEGIN", KindBegin},
		{"begin transaction", KindBegin},
		{"START TRANSACTION", KindBegin},
		{"COMMIT", KindCommit},
		{"END", KindCommit},
		{"ROLLBACK", KindRollback},
		{"ABORT", KindRollback},
		{"ROLLBACK TO SAVEPOINT sp", KindUnknown},
		{"ALTER SEQUENCE s RESTART", KindUnknown},
		{"DROP TABLE t", KindUnknown},
		{"SET statement_timeout = 0", KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.sql, func(t *testing.T) {
			stmts, err := ParseScript(tt.sql, "postgres")
			if err != nil {
				t.Fatalf("ParseScript failed: %v", err)
			}
			if len(stmts) != 1 {
				t.Fatalf("Expected 1 statement, got %d", len(stmts))
			}
			if stmts[0].Kind() != tt.kind {
				t.Errorf("Expected kind %s, got %s", tt.kind, stmts[0].Kind())
			}
		})
	}
}

func TestParseScriptUnknownDialect(t *testing.T) {
	_, err := ParseScript("SELECT 1", "mysql")
	if ferrors.GetCode(err) != ferrors.ErrCodeUnknownDialect {
		t.Errorf("Expected UnknownDialect, got %v", err)
	}
}

func TestParseCreateTable(t *testing.T) {
	sql := `CREATE TABLE IF NOT EXISTS public.email_email (
    id integer NOT NULL,
    address character varying(254) NOT NULL,
    price numeric(10,2) DEFAULT 0,
    created timestamp with time zone DEFAULT now(),
    tags text[],
    "Order" integer,
    CONSTRAINT email_uq UNIQUE (address),
    PRIMARY KEY (id),
    CHECK (price > 0)
);`

	stmts, err := ParseScript(sql, "postgres")
	if err != nil {
		t.Fatalf("ParseScript failed: %v", err)
	}
	got, ok := stmts[0].(*CreateTableStmt)
	if !ok {
		t.Fatalf("Expected *CreateTableStmt, got %T", stmts[0])
	}

	want := &CreateTableStmt{
		TableName:   "public.email_email",
		IfNotExists: true,
		Columns: []ColumnDef{
			{Name: "id", Type: "integer", Constraints: []string{ConstraintNotNull}},
			{Name: "address", Type: "character varying(254)", Constraints: []string{ConstraintNotNull}},
			{Name: "price", Type: "numeric(10,2)", Default: NumberLiteral{Value: "0"}},
			{Name: "created", Type: "timestamp with time zone", Default: FuncCall{Name: "now"}},
			{Name: "tags", Type: "text[]"},
			{Name: "Order", Type: "integer"},
		},
		Constraints: []TableConstraint{
			{Name: "email_uq", Kind: ConstraintUnique, Columns: []string{"address"}},
			{Kind: ConstraintPrimaryKey, Columns: []string{"id"}},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("CREATE TABLE mismatch (-want +got):\n%s", diff)
	}
}

func TestParseCreateTableColumnConstraints(t *testing.T) {
	stmts, err := ParseScript(`create table users (
		id serial primary key,
		email text unique not null references accounts (email) on delete cascade,
		name text COLLATE pg_catalog."default",
		key integer constraint k_nn not null
	)`, "postgres")
	if err != nil {
		t.Fatalf("ParseScript failed: %v", err)
	}
	got := stmts[0].(*CreateTableStmt)

	want := []ColumnDef{
		{Name: "id", Type: "serial", Constraints: []string{ConstraintPrimaryKey}},
		{Name: "email", Type: "text", Constraints: []string{ConstraintUnique, ConstraintNotNull}},
		{Name: "name", Type: "text"},
		{Name: "key", Type: "integer", Constraints: []string{ConstraintNotNull}},
	}
	if diff := cmp.Diff(want, got.Columns); diff != "" {
		t.Errorf("columns mismatch (-want +got):\n%s", diff)
	}
}

func TestParseInsert(t *testing.T) {
	stmts, err := ParseScript(
		"INSERT INTO t (a, b) VALUES ('x''y', -1.5), (DEFAULT, nextval('s'::regclass)), (NULL, TRUE)",
		"postgres")
	if err != nil {
		t.Fatalf("ParseScript failed: %v", err)
	}

	want := &InsertStmt{
		TableName: "t",
		Columns:   []string{"a", "b"},
		Rows: [][]Expr{
			{StringLiteral{Value: "x'y"}, NumberLiteral{Value: "-1.5"}},
			{DefaultExpr{}, FuncCall{Name: "nextval", Args: []Expr{
				CastExpr{Expr: StringLiteral{Value: "s"}, Type: "regclass"},
			}}},
			{NullLiteral{}, BoolLiteral{Value: true}},
		},
	}
	if diff := cmp.Diff(want, stmts[0]); diff != "" {
		t.Errorf("INSERT mismatch (-want +got):\n%s", diff)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		code ferrors.ErrorCode
	}{
		{"insert without INTO", "INSERT t VALUES (1)", ferrors.ErrCodeUnexpectedToken},
		{"insert from select", "INSERT INTO t SELECT 1", ferrors.ErrCodeUnexpectedToken},
		{"insert returning", "INSERT INTO t VALUES (1) RETURNING id", ferrors.ErrCodeUnexpectedToken},
		{"unbalanced tuple", "INSERT INTO t VALUES (1, 2", ferrors.ErrCodeUnexpectedToken},
		{"create table without columns paren", "CREATE TABLE t id integer", ferrors.ErrCodeUnexpectedToken},
		{"column without type", "CREATE TABLE t (id)", ferrors.ErrCodeUnexpectedToken},
		{"IF without NOT EXISTS", "CREATE TABLE IF t (id integer)", ferrors.ErrCodeUnexpectedToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScript(tt.sql, "postgres")
			if ferrors.GetCode(err) != tt.code {
				t.Errorf("Expected code %d, got %v", tt.code, err)
			}
		})
	}
}

func TestStatementStrings(t *testing.T) {
	tests := []struct {
		sql  string
		want string
	}{
		{
			"alter table  only t alter column id set default nextval('s'::regclass)",
			"ALTER TABLE ONLY t ALTER COLUMN id SET DEFAULT nextval('s'::regclass)",
		},
		{
			"insert into t (a) values ('o''k'), (default)",
			"INSERT INTO t (a) VALUES ('o''k'), (DEFAULT)",
		},
		{
			"create table if not exists t (id integer primary key, v text default 'x')",
			"CREATE TABLE IF NOT EXISTS t (id INTEGER PRIMARY KEY, v TEXT DEFAULT 'x')",
		},
		{"begin work", "BEGIN"},
	}

	for _, tt := range tests {
		stmts, err := ParseScript(tt.sql, "postgres")
		if err != nil {
			t.Fatalf("ParseScript(%q) failed: %v", tt.sql, err)
		}
		if got := stmts[0].String(); got != tt.want {
			t.Errorf("Expected %q, got %q", tt.want, got)
		}
	}
}

func TestTypeCategory(t *testing.T) {
	tests := []struct {
		typeName string
		want     storage.Category
	}{
		{"integer", storage.CategoryInteger},
		{"BIGINT", storage.CategoryInteger},
		{"bigserial", storage.CategoryInteger},
		{"numeric(10,2)", storage.CategoryNumeric},
		{"double precision", storage.CategoryNumeric},
		{"pg_catalog.numeric", storage.CategoryNumeric},
		{"boolean", storage.CategoryBoolean},
		{"timestamp(3) with time zone", storage.CategoryTimestamp},
		{"date", storage.CategoryTimestamp},
		{"character varying(254)", storage.CategoryText},
		{"integer[]", storage.CategoryText},
		{"jsonb", storage.CategoryText},
		{"geometry", storage.CategoryText},
	}
	for _, tt := range tests {
		if got := TypeCategory(tt.typeName); got != tt.want {
			t.Errorf("TypeCategory(%q): expected %s, got %s", tt.typeName, tt.want, got)
		}
	}
}

func TestIntegerBounds(t *testing.T) {
	if _, max, ok := IntegerBounds("integer"); !ok || max != 2147483647 {
		t.Errorf("Expected integer max 2147483647, got %d (%v)", max, ok)
	}
	if min, _, ok := IntegerBounds("SMALLINT"); !ok || min != -32768 {
		t.Errorf("Expected smallint min -32768, got %d (%v)", min, ok)
	}
	if _, _, ok := IntegerBounds("bigint"); ok {
		t.Error("Expected bigint to be unbounded")
	}
}
