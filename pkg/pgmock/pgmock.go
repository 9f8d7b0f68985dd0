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
Package pgmock is an in-memory stand-in for a PostgreSQL database in tests.

A DB accepts SQL scripts, applies their DDL and DML effects to an
in-memory model and exposes that model for assertions:

	db, err := pgmock.New(pgmock.Options{})
	if err != nil {
	    t.Fatal(err)
	}
	_, err = db.Execute(`
	    CREATE SEQUENCE users_id_seq;
	    CREATE TABLE users (id integer, email text);
	    ALTER TABLE ONLY users ALTER COLUMN id SET DEFAULT nextval('users_id_seq'::regclass);
	    INSERT INTO users (email) VALUES (:email);
	`, map[string]interface{}{"email": "ann@example.com"})

	rows, _ := db.Rows("users") // [[1 ann@example.com]]

SELECT statements are accepted and return no records. A DB is not safe
for concurrent use. Parsed scripts are cached process-wide, so a schema
script run against many fresh DBs is only parsed once.
*/
package pgmock

import (
	"io"

	"pgmock/internal/cache"
	"pgmock/internal/extract"
	"pgmock/internal/metrics"
	"pgmock/internal/sql"
)

// Record is one result record, such as {"msg": "INSERT 1"}.
type Record = sql.Record

// Constraint is a constraint recorded against one column.
type Constraint = extract.Constraint

// MetricsSnapshot is a point-in-time copy of the execution counters.
type MetricsSnapshot = metrics.Snapshot

// ColumnInfo describes one column of a table.
type ColumnInfo struct {
	Name        string
	Type        string // declared type, e.g. "character varying(254)"
	Default     interface{}
	HasDefault  bool
	Constraints []string // constraint kinds, e.g. "primary_key"
}

// SequenceInfo describes one sequence.
type SequenceInfo struct {
	Name      string
	Start     int64
	Increment int64
	MinValue  *int64
	MaxValue  *int64
	Cycle     bool
	OwnedBy   string
	// Last is the last value handed out, nil before the first nextval.
	Last *int64
}

// Options configures a DB.
type Options struct {
	// Dialect selects the SQL dialect. Empty means "postgres".
	Dialect string

	// GrammarDir overrides the embedded statement grammars with the YAML
	// files found in this directory.
	GrammarDir string

	// DisableParseCache parses every script afresh instead of sharing
	// parsed statements with other DBs.
	DisableParseCache bool
}

// sharedParseCache is used by every DB that does not disable caching.
var sharedParseCache = cache.New[[]sql.Statement](cache.DefaultConfig())

// DB is an in-memory database model driven by SQL.
type DB struct {
	exec *sql.Executor
}

// New creates an empty DB.
func New(opts Options) (*DB, error) {
	d, err := extract.LookupDialect(opts.Dialect)
	if err != nil {
		return nil, err
	}
	grammars, err := extract.LoadGrammars(opts.GrammarDir, d)
	if err != nil {
		return nil, err
	}
	pc := sharedParseCache
	if opts.DisableParseCache {
		pc = cache.New[[]sql.Statement](cache.Config{Enabled: false})
	}
	exec, err := sql.NewExecutor(sql.Options{
		Dialect:    d.Name,
		Grammars:   grammars,
		ParseCache: pc,
	})
	if err != nil {
		return nil, err
	}
	return &DB{exec: exec}, nil
}

// Execute runs a script. params fills :name placeholders and may be nil,
// a map[string]interface{}, or a struct whose fields carry `param` tags.
// On error the records of the steps that completed are returned with it.
func (db *DB) Execute(script string, params interface{}) ([]Record, error) {
	return db.exec.Execute(script, params)
}

// TableNames returns the table names in sorted order.
func (db *DB) TableNames() []string {
	return db.exec.Tables().Names()
}

// Columns returns the column names of a table in declaration order.
func (db *DB) Columns(table string) ([]string, bool) {
	t, ok := db.exec.Table(table)
	if !ok {
		return nil, false
	}
	return t.ColumnNames(), true
}

// Rows returns a copy of a table's rows.
func (db *DB) Rows(table string) ([][]interface{}, bool) {
	t, ok := db.exec.Table(table)
	if !ok {
		return nil, false
	}
	out := make([][]interface{}, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = append([]interface{}(nil), r...)
	}
	return out, true
}

// Describe returns the columns of a table with their declared types,
// defaults and constraints.
func (db *DB) Describe(table string) ([]ColumnInfo, bool) {
	t, ok := db.exec.Table(table)
	if !ok {
		return nil, false
	}
	defaults := db.exec.DefaultValues()
	constraints := db.exec.Constraints()

	out := make([]ColumnInfo, len(t.Columns))
	for i, c := range t.Columns {
		key := table + "." + c.Name
		info := ColumnInfo{Name: c.Name, Type: c.SourceType}
		info.Default, info.HasDefault = defaults[key]
		for _, con := range constraints[key] {
			info.Constraints = append(info.Constraints, con.Kind)
		}
		out[i] = info
	}
	return out, true
}

// Sequences describes every sequence in creation order.
func (db *DB) Sequences() []SequenceInfo {
	reg := db.exec.Sequences()
	var out []SequenceInfo
	for _, name := range reg.Names() {
		seq, _ := reg.Get(name)
		info := SequenceInfo{
			Name:      seq.Name,
			Start:     seq.Start,
			Increment: seq.Increment,
			MinValue:  copyBound(seq.MinValue),
			MaxValue:  copyBound(seq.MaxValue),
			Cycle:     seq.Cycle,
			OwnedBy:   seq.OwnedBy,
		}
		if v, err := seq.CurrentValue(); err == nil {
			info.Last = &v
		}
		out = append(out, info)
	}
	return out
}

func copyBound(p *int64) *int64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// InTransactionBlock reports whether script leaves a BEGIN block open,
// that is, a BEGIN with no later COMMIT or ROLLBACK. A script that does
// not parse is reported as closed so that running it surfaces the error.
func (db *DB) InTransactionBlock(script string) bool {
	stmts, err := sql.ParseScript(script, db.exec.Dialect().Name)
	if err != nil {
		return false
	}
	open := false
	for _, s := range stmts {
		switch s.Kind() {
		case sql.KindBegin:
			open = true
		case sql.KindCommit, sql.KindRollback:
			open = false
		}
	}
	return open
}

// SequenceNames returns sequence names in creation order.
func (db *DB) SequenceNames() []string {
	return db.exec.Sequences().Names()
}

// NextValue advances a sequence, as nextval() would.
func (db *DB) NextValue(sequence string) (int64, error) {
	return db.exec.Sequences().NextValue(sequence)
}

// CurrentValue returns the last value handed out by a sequence.
func (db *DB) CurrentValue(sequence string) (int64, error) {
	return db.exec.Sequences().CurrentValue(sequence)
}

// DefaultValues returns column defaults keyed by "table.column".
func (db *DB) DefaultValues() map[string]interface{} {
	return db.exec.DefaultValues()
}

// Constraints returns recorded constraints keyed by "table.column".
func (db *DB) Constraints() map[string][]Constraint {
	return db.exec.Constraints()
}

// Fingerprint hashes the contents of every table. Two DBs holding the
// same tables and rows have the same fingerprint.
func (db *DB) Fingerprint() (uint64, error) {
	return db.exec.Tables().Fingerprint()
}

// WriteMetrics writes the execution counters in the Prometheus text
// format.
func (db *DB) WriteMetrics(w io.Writer) error {
	_, err := db.exec.Metrics().WriteTo(w)
	return err
}

// Metrics returns a snapshot of the execution counters.
func (db *DB) Metrics() MetricsSnapshot {
	return db.exec.Metrics().Snapshot()
}
