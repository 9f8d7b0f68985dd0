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
Package sql contains the Executor component for statement execution.

Executor Overview:
==================

The Executor is the final stage of the pipeline. Execute takes a script
and runs it against the in-memory model:

	Execute(text, params)
	  │
	  ├─ 1. substitute :name parameters
	  ├─ 2. ParseScript → []Statement
	  ├─ 3. regroup: BEGIN ... COMMIT|ROLLBACK spans become one step,
	  │     every other statement is a step of its own
	  └─ 4. run steps in order, stop at the first error
	         ├─ group:  snapshot tables, dispatch each, restore on error
	         └─ single: dispatch

Dispatch is by statement kind:

	SELECT            → no rows
	CREATE TABLE      → table store, constraints, defaults
	CREATE SEQUENCE   → CreateSequence extractor → sequence registry
	ALTER TABLE       → AlterTable extractor → defaults, constraints
	INSERT            → evaluate, coerce, append
	BEGIN / COMMIT / ROLLBACK → transaction control
	anything else     → UnsupportedStatement

Model State:
============

Besides tables, the executor keeps two maps keyed by "table.column":

  - defaults: the value a column takes when an INSERT omits it. A default
    is evaluated when it is declared, so nextval() runs once at ALTER
    TABLE time, not per row.
  - constraints: PRIMARY KEY, UNIQUE and NOT NULL declarations. They are
    recorded, and INSERT checks that constrained columns still exist. They
    are not enforced against values.

Only tables are covered by a transaction snapshot. Sequence values,
defaults and constraints changed inside a rolled back block stay changed.
*/
package sql

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"pgmock/internal/cache"
	ferrors "pgmock/internal/errors"
	"pgmock/internal/extract"
	"pgmock/internal/logging"
	"pgmock/internal/metrics"
	"pgmock/internal/sequence"
	"pgmock/internal/storage"
)

// Record is one result row.
type Record map[string]interface{}

func message(msg string) []Record {
	return []Record{{"msg": msg}}
}

// Options configures a new Executor.
type Options struct {
	// Dialect selects the keyword set. Empty means postgres.
	Dialect string
	// Grammars overrides the embedded state graphs.
	Grammars *extract.Grammars
	// Metrics receives execution counters. Nil creates a private set.
	Metrics *metrics.Metrics
	// ParseCache holds parsed scripts and may be shared between
	// executors. Nil creates a private cache.
	ParseCache *cache.LRU[[]Statement]
}

// Executor runs SQL scripts against an in-memory model. It is not safe
// for concurrent use.
type Executor struct {
	dialect     *extract.Dialect
	extractor   *extract.Extractor
	store       *storage.Store
	sequences   *sequence.Registry
	defaults    map[string]interface{}
	constraints map[string][]extract.Constraint
	tx          *storage.Transaction
	metrics     *metrics.Metrics
	parsed      *cache.LRU[[]Statement]
	logger      *logging.Logger
}

// NewExecutor creates an executor with an empty model.
func NewExecutor(opts Options) (*Executor, error) {
	d, err := extract.LookupDialect(opts.Dialect)
	if err != nil {
		return nil, err
	}
	x, err := extract.NewExtractor(opts.Grammars, d)
	if err != nil {
		return nil, err
	}
	m := opts.Metrics
	if m == nil {
		m = metrics.New()
	}
	pc := opts.ParseCache
	if pc == nil {
		pc = cache.New[[]Statement](cache.DefaultConfig())
	}
	return &Executor{
		dialect:     d,
		extractor:   x,
		store:       storage.NewStore(),
		sequences:   sequence.NewRegistry(),
		defaults:    make(map[string]interface{}),
		constraints: make(map[string][]extract.Constraint),
		metrics:     m,
		parsed:      pc,
		logger:      logging.NewLogger("executor"),
	}, nil
}

// step is one unit of execution: a single statement or a transaction
// group.
type step struct {
	statements []Statement
	group      bool
	// terminated is false for a group still open at end of input.
	terminated bool
}

// Execute runs every statement of sqlText. params fills :name
// placeholders and may be nil, a map, or a struct with `param` tags.
//
// Execution stops at the first error. The records of the steps that
// completed before it are returned along with the error.
func (e *Executor) Execute(sqlText string, params interface{}) ([]Record, error) {
	ctx := logging.NewExecContext("execute")

	text := sqlText
	if params != nil {
		substituted, err := SubstituteParams(sqlText, params)
		if err != nil {
			e.logger.Warn("Parameter substitution failed, using original text",
				"exec_id", ctx.ID, "error", err)
		} else {
			text = substituted
		}
	}

	stmts, err := e.parse(text)
	if err != nil {
		ctx.LogError(e.logger, err, "stage", "parse")
		return nil, err
	}
	steps, err := e.regroup(stmts)
	if err != nil {
		ctx.LogError(e.logger, err, "stage", "regroup")
		return nil, err
	}

	var out []Record
	for _, st := range steps {
		var recs []Record
		if st.group {
			recs, err = e.executeGroup(st)
		} else {
			recs, err = e.dispatch(st.statements[0])
		}
		if err != nil {
			ctx.LogError(e.logger, err, "statements", len(stmts))
			return out, err
		}
		out = append(out, recs...)
	}

	ctx.LogComplete(e.logger, len(steps), "statements", len(stmts))
	return out, nil
}

// parse returns the statements of text, consulting the parse cache first.
// Scripts that fail to parse are not cached.
func (e *Executor) parse(text string) ([]Statement, error) {
	key := e.dialect.Name + "\x00" + text
	if stmts, ok := e.parsed.Get(key); ok {
		return stmts, nil
	}
	stmts, err := ParseScript(text, e.dialect.Name)
	if err != nil {
		return nil, err
	}
	e.parsed.Set(key, stmts)
	return stmts, nil
}

// regroup collects BEGIN ... COMMIT|ROLLBACK spans into group steps. A
// BEGIN inside an open span is rejected before anything runs.
func (e *Executor) regroup(stmts []Statement) ([]step, error) {
	var steps []step
	var open *step

	for _, s := range stmts {
		switch {
		case s.Kind() == KindBegin:
			if open != nil {
				return nil, ferrors.NestedTransaction()
			}
			open = &step{statements: []Statement{s}, group: true}
		case open != nil:
			open.statements = append(open.statements, s)
			if s.Kind() == KindCommit || s.Kind() == KindRollback {
				open.terminated = true
				steps = append(steps, *open)
				open = nil
			}
		default:
			steps = append(steps, step{statements: []Statement{s}})
		}
	}

	if open != nil {
		e.logger.Warn("Transaction block not terminated, committing at end of input",
			"statements", len(open.statements))
		steps = append(steps, *open)
	}
	return steps, nil
}

// executeGroup runs a transaction group against a snapshot of the tables.
// The first error restores the snapshot and is returned unchanged; a
// failed group contributes no records.
func (e *Executor) executeGroup(st step) ([]Record, error) {
	tx, err := storage.Begin(e.store)
	if err != nil {
		return nil, err
	}
	e.tx = tx
	defer func() {
		if tx.IsActive() {
			tx.Rollback()
		}
		e.tx = nil
	}()

	var out []Record
	for _, s := range st.statements {
		recs, err := e.dispatch(s)
		if err != nil {
			if tx.IsActive() {
				tx.Rollback()
				e.metrics.RecordRollback()
				e.logger.Info("Transaction rolled back", "error", err)
			}
			return nil, err
		}
		out = append(out, recs...)
	}

	if tx.IsActive() {
		if err := tx.Commit(); err != nil {
			return nil, err
		}
		e.metrics.RecordCommit(!st.terminated)
	}
	return out, nil
}

// dispatch routes one statement to its handler by parsed kind.
func (e *Executor) dispatch(s Statement) ([]Record, error) {
	start := time.Now()
	e.logger.Debug("Executing statement", "kind", string(s.Kind()), "sql", s.String())

	recs, err := e.route(s)

	e.metrics.RecordStatement(string(s.Kind()), time.Since(start), err)
	if err != nil {
		e.logger.Debug("Statement failed", "kind", string(s.Kind()), "error", err)
	}
	return recs, err
}

func (e *Executor) route(s Statement) ([]Record, error) {
	switch stmt := s.(type) {
	case *SelectStmt:
		return nil, nil
	case *CreateTableStmt:
		return e.createTable(stmt)
	case *CreateSequenceStmt:
		return e.createSequence(stmt)
	case *AlterTableStmt:
		return e.alterTable(stmt)
	case *InsertStmt:
		return e.insert(stmt)
	case *BeginStmt:
		return message("BEGIN"), nil
	case *CommitStmt:
		if e.tx == nil || !e.tx.IsActive() {
			e.logger.Warn("There is no transaction in progress", "statement", "COMMIT")
			return message("COMMIT"), nil
		}
		if err := e.tx.Commit(); err != nil {
			return nil, err
		}
		e.metrics.RecordCommit(false)
		return message("COMMIT"), nil
	case *RollbackStmt:
		if e.tx == nil || !e.tx.IsActive() {
			e.logger.Warn("There is no transaction in progress", "statement", "ROLLBACK")
			return message("ROLLBACK"), nil
		}
		if err := e.tx.Rollback(); err != nil {
			return nil, err
		}
		e.metrics.RecordRollback()
		return message("ROLLBACK"), nil
	}
	return nil, ferrors.UnsupportedStatement(s.String())
}

// constraintKinds maps CREATE TABLE constraint names to the kinds the
// ALTER TABLE extractor reports.
var constraintKinds = map[string]string{
	ConstraintPrimaryKey: extract.ConstraintPrimaryKey,
	ConstraintUnique:     extract.ConstraintUnique,
	ConstraintNotNull:    extract.ConstraintNotNull,
}

func columnKey(table, column string) string {
	return table + "." + column
}

func (e *Executor) addConstraint(key string, c extract.Constraint) {
	for _, existing := range e.constraints[key] {
		if existing == c {
			return
		}
	}
	e.constraints[key] = append(e.constraints[key], c)
}

func (e *Executor) createTable(s *CreateTableStmt) ([]Record, error) {
	if _, exists := e.store.Get(s.TableName); exists {
		if s.IfNotExists {
			e.logger.Info("Relation already exists, skipping", "table", s.TableName)
			return message("CREATE TABLE OK"), nil
		}
		return nil, ferrors.DuplicateName("table", s.TableName)
	}

	table := &storage.Table{Name: s.TableName}
	seen := make(map[string]bool)
	for _, c := range s.Columns {
		if seen[c.Name] {
			return nil, ferrors.DuplicateName("column", c.Name)
		}
		seen[c.Name] = true
		table.Columns = append(table.Columns, storage.Column{
			Name:       c.Name,
			Type:       TypeCategory(c.Type),
			SourceType: c.Type,
		})
	}
	for _, tc := range s.Constraints {
		for _, col := range tc.Columns {
			if !seen[col] {
				return nil, ferrors.ColumnNotFound(col, s.TableName)
			}
		}
	}

	defaults := make(map[string]interface{})
	for _, c := range s.Columns {
		if c.Default == nil {
			continue
		}
		v, err := e.evaluate(c.Default)
		if err != nil {
			return nil, err
		}
		defaults[columnKey(s.TableName, c.Name)] = v
	}

	if err := e.store.Create(table); err != nil {
		return nil, err
	}
	for k, v := range defaults {
		e.defaults[k] = v
	}
	for _, c := range s.Columns {
		for _, kind := range c.Constraints {
			e.addConstraint(columnKey(s.TableName, c.Name),
				extract.Constraint{Kind: constraintKinds[kind], Value: c.Name})
		}
	}
	for _, tc := range s.Constraints {
		for _, col := range tc.Columns {
			e.addConstraint(columnKey(s.TableName, col),
				extract.Constraint{Kind: constraintKinds[tc.Kind], Value: col})
		}
	}

	e.logger.Info("Created table", "table", s.TableName, "columns", len(table.Columns))
	return message("CREATE TABLE OK"), nil
}

func (e *Executor) createSequence(s *CreateSequenceStmt) ([]Record, error) {
	def, err := e.extractor.CreateSequence(s.Text)
	if err != nil {
		return nil, err
	}
	if e.sequences.Has(def.Name) {
		if def.IfNotExists {
			e.logger.Info("Relation already exists, skipping", "sequence", def.Name)
			return message("CREATE SEQUENCE OK"), nil
		}
		return nil, ferrors.DuplicateName("sequence", def.Name)
	}

	opts := sequence.Options{
		Start:     def.Start,
		Increment: def.Increment,
		MinValue:  def.MinValue,
		MaxValue:  def.MaxValue,
		Cache:     def.Cache,
		Cycle:     def.Cycle,
		OwnedBy:   def.OwnedBy,
	}
	// AS smallint/integer caps the far bound at the type's range.
	if lo, hi, ok := IntegerBounds(def.DataType); ok {
		descending := def.Increment != nil && *def.Increment < 0
		if !descending && opts.MaxValue == nil {
			opts.MaxValue = &hi
		}
		if descending && opts.MinValue == nil {
			opts.MinValue = &lo
		}
	}

	seq, err := sequence.New(def.Name, opts)
	if err != nil {
		return nil, err
	}
	if err := e.sequences.Create(seq); err != nil {
		return nil, err
	}
	e.logger.Info("Created sequence", "sequence", def.Name, "start", seq.Start, "increment", seq.Increment)
	return message("CREATE SEQUENCE OK"), nil
}

func (e *Executor) alterTable(s *AlterTableStmt) ([]Record, error) {
	res, err := e.extractor.AlterTable(s.Text, e.sequences)
	if err != nil {
		return nil, err
	}

	table, ok := e.store.Get(res.TableName)
	if !ok {
		if res.IfExists {
			e.logger.Info("Relation does not exist, skipping", "table", res.TableName)
			return message("ALTER TABLE OK"), nil
		}
		return nil, ferrors.TableNotFound(res.TableName)
	}
	if res.ColumnName != "" && table.ColumnIndex(res.ColumnName) < 0 {
		return nil, ferrors.ColumnNotFound(res.ColumnName, res.TableName)
	}
	for _, c := range res.ConstraintByColumn {
		if table.ColumnIndex(c.Value) < 0 {
			return nil, ferrors.ColumnNotFound(c.Value, res.TableName)
		}
	}

	for k, v := range res.DefaultValueByColumn {
		e.defaults[k] = v
	}
	for _, k := range res.DroppedDefaults {
		delete(e.defaults, k)
	}
	keys := make([]string, 0, len(res.ConstraintByColumn))
	for k := range res.ConstraintByColumn {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		e.addConstraint(k, res.ConstraintByColumn[k])
	}
	return message("ALTER TABLE OK"), nil
}

func (e *Executor) insert(s *InsertStmt) ([]Record, error) {
	table, ok := e.store.Get(s.TableName)
	if !ok {
		return nil, ferrors.TableNotFound(s.TableName)
	}

	cols := s.Columns
	if len(cols) == 0 {
		cols = table.ColumnNames()
	}
	idx := make([]int, len(cols))
	used := make(map[int]bool)
	for i, c := range cols {
		ci := table.ColumnIndex(c)
		if ci < 0 {
			return nil, ferrors.ColumnNotFound(c, s.TableName)
		}
		if used[ci] {
			return nil, ferrors.DuplicateName("column", c).WithDetail("column specified more than once")
		}
		used[ci] = true
		idx[i] = ci
	}

	rows := make([]storage.Row, 0, len(s.Rows))
	for ri, tuple := range s.Rows {
		if len(tuple) != len(cols) {
			return nil, ferrors.InvalidValue("VALUES", fmt.Sprintf("row %d", ri+1)).
				WithDetail(fmt.Sprintf("expected %d values, got %d", len(cols), len(tuple)))
		}

		row := make(storage.Row, len(table.Columns))
		provided := make([]bool, len(table.Columns))
		for j, expr := range tuple {
			ci := idx[j]
			var v interface{}
			if _, isDefault := expr.(DefaultExpr); isDefault {
				v = e.defaults[columnKey(s.TableName, cols[j])]
			} else {
				var err error
				if v, err = e.evaluate(expr); err != nil {
					return nil, err
				}
			}
			cv, err := storage.Coerce(table.Columns[ci].Type, v, cols[j])
			if err != nil {
				return nil, err
			}
			row[ci] = cv
			provided[ci] = true
		}

		for ci, col := range table.Columns {
			if provided[ci] {
				continue
			}
			cv, err := storage.Coerce(col.Type, e.defaults[columnKey(s.TableName, col.Name)], col.Name)
			if err != nil {
				return nil, err
			}
			row[ci] = cv
		}
		rows = append(rows, row)
	}

	if err := e.checkConstraints(table); err != nil {
		return nil, err
	}
	if err := e.store.Append(s.TableName, rows); err != nil {
		return nil, err
	}
	return message(fmt.Sprintf("INSERT %d", len(rows))), nil
}

// checkConstraints verifies that every constrained column of table still
// exists. Values are not checked.
func (e *Executor) checkConstraints(table *storage.Table) error {
	prefix := table.Name + "."
	for key, cons := range e.constraints {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		for _, c := range cons {
			if table.ColumnIndex(c.Value) < 0 {
				return ferrors.ColumnNotFound(c.Value, table.Name).
					WithDetail(fmt.Sprintf("referenced by %s constraint", c.Kind))
			}
		}
	}
	return nil
}

// evaluate computes the Go value of a VALUES or DEFAULT expression.
func (e *Executor) evaluate(expr Expr) (interface{}, error) {
	switch x := expr.(type) {
	case StringLiteral:
		return x.Value, nil
	case NumberLiteral:
		d, err := decimal.NewFromString(x.Value)
		if err != nil {
			return nil, ferrors.InvalidValue("number", x.Value)
		}
		return d, nil
	case BoolLiteral:
		return x.Value, nil
	case NullLiteral:
		return nil, nil
	case CastExpr:
		return e.evaluate(x.Expr)
	case DefaultExpr:
		return nil, ferrors.InvalidValue("DEFAULT", "DEFAULT").
			WithDetail("DEFAULT is only allowed as a whole VALUES item")
	case FuncCall:
		return e.call(x)
	}
	return nil, ferrors.InvalidValue("expression", expr.String())
}

func (e *Executor) call(f FuncCall) (interface{}, error) {
	switch f.Name {
	case "nextval", "currval":
		if len(f.Args) != 1 {
			return nil, ferrors.InvalidValue(f.Name, f.String()).WithDetail("expected one argument")
		}
		arg, err := e.evaluate(f.Args[0])
		if err != nil {
			return nil, err
		}
		name, ok := arg.(string)
		if !ok {
			return nil, ferrors.InvalidValue(f.Name, f.String()).WithDetail("expected a sequence name")
		}
		if f.Name == "currval" {
			return e.sequences.CurrentValue(name)
		}
		return e.sequences.NextValue(name)
	case "now", "current_timestamp", "localtimestamp", "transaction_timestamp", "statement_timestamp", "clock_timestamp":
		return time.Now().UTC(), nil
	case "current_date":
		now := time.Now().UTC()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	return nil, ferrors.InvalidValue("function", f.Name).WithDetail("unsupported function")
}

// Tables returns the table store.
func (e *Executor) Tables() *storage.Store {
	return e.store
}

// Table returns the named table.
func (e *Executor) Table(name string) (*storage.Table, bool) {
	return e.store.Get(name)
}

// Sequences returns the sequence registry.
func (e *Executor) Sequences() *sequence.Registry {
	return e.sequences
}

// DefaultValues returns a copy of the column defaults keyed by
// "table.column".
func (e *Executor) DefaultValues() map[string]interface{} {
	out := make(map[string]interface{}, len(e.defaults))
	for k, v := range e.defaults {
		out[k] = v
	}
	return out
}

// Constraints returns a copy of the recorded constraints keyed by
// "table.column".
func (e *Executor) Constraints() map[string][]extract.Constraint {
	out := make(map[string][]extract.Constraint, len(e.constraints))
	for k, v := range e.constraints {
		out[k] = append([]extract.Constraint(nil), v...)
	}
	return out
}

// ParseCacheStats returns hit and miss counts of the parse cache.
func (e *Executor) ParseCacheStats() cache.Stats {
	return e.parsed.Stats()
}

// Metrics returns the executor's counters.
func (e *Executor) Metrics() *metrics.Metrics {
	return e.metrics
}

// Dialect returns the active dialect.
func (e *Executor) Dialect() *extract.Dialect {
	return e.dialect
}
