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
	"fmt"
	"regexp"
	"strings"

	ferrors "pgmock/internal/errors"
)

var alterTableStates = StateTable{
	"table_if_exists":    StateTableIfExists,
	"table_only":         StateTableOnly,
	"tablename":          StateTableName,
	"alter_column":       StateAlterColumn,
	"column_name":        StateColumnName,
	"default_value":      StateDefaultValue,
	"drop_default":       StateDropDefault,
	"constraint_name":    StateConstraintName,
	"primary_key":        StatePrimaryKey,
	"unique":             StateUnique,
	"constraint_columns": StateConstraintColumns,
}

// Constraint kinds recorded in ConstraintByColumn.
const (
	ConstraintPrimaryKey = "primary_key"
	ConstraintUnique     = "unique"
	ConstraintNotNull    = "not_null"
)

// Constraint describes a constraint on one column.
type Constraint struct {
	Kind  string
	Value string
}

// SequenceSource is the sequence registry capability ALTER TABLE needs to
// resolve nextval/currval defaults at parse time.
type SequenceSource interface {
	NextValue(name string) (int64, error)
	CurrentValue(name string) (int64, error)
}

// AlterTableResult is the extraction record of one ALTER TABLE statement.
// Map keys are "table.column".
type AlterTableResult struct {
	IfExists             bool
	Only                 bool
	TableName            string
	ColumnName           string
	ConstraintName       string
	DefaultValueByColumn map[string]interface{}
	ConstraintByColumn   map[string]Constraint
	DroppedDefaults      []string
}

// AlterTableHooks has one method per ALTER TABLE grammar state.
type AlterTableHooks interface {
	TableIfExists(c *Cursor) error
	TableOnly(c *Cursor) error
	TableName(c *Cursor) error
	AlterColumn(c *Cursor) error
	ColumnName(c *Cursor) error
	DefaultValue(c *Cursor) error
	DropDefault(c *Cursor) error
	ConstraintName(c *Cursor) error
	PrimaryKey(c *Cursor) error
	Unique(c *Cursor) error
	ConstraintColumns(c *Cursor) error
}

type alterTableDispatch struct {
	hooks AlterTableHooks
}

func (d alterTableDispatch) Handle(state State, c *Cursor) error {
	switch state {
	case StateTableIfExists:
		return d.hooks.TableIfExists(c)
	case StateTableOnly:
		return d.hooks.TableOnly(c)
	case StateTableName:
		return d.hooks.TableName(c)
	case StateAlterColumn:
		return d.hooks.AlterColumn(c)
	case StateColumnName:
		return d.hooks.ColumnName(c)
	case StateDefaultValue:
		return d.hooks.DefaultValue(c)
	case StateDropDefault:
		return d.hooks.DropDefault(c)
	case StateConstraintName:
		return d.hooks.ConstraintName(c)
	case StatePrimaryKey:
		return d.hooks.PrimaryKey(c)
	case StateUnique:
		return d.hooks.Unique(c)
	case StateConstraintColumns:
		return d.hooks.ConstraintColumns(c)
	}
	return ferrors.GrammarLoad(AlterTableGrammar, fmt.Sprintf("state %s has no hook", state))
}

// sequenceArg matches the argument of nextval/currval: 'name'[::class].
var sequenceArg = regexp.MustCompile(`^'([\w.$]+)'(?:::(\w+))?$`)

// alterTable accumulates one AlterTableResult.
type alterTable struct {
	dialect   *Dialect
	sequences SequenceSource
	result    AlterTableResult

	constraintKind string
}

func (x *alterTable) key(column string) string {
	return x.result.TableName + "." + column
}

func (x *alterTable) TableIfExists(c *Cursor) error {
	x.result.IfExists = true
	return nil
}

func (x *alterTable) TableOnly(c *Cursor) error {
	x.result.Only = true
	return nil
}

func (x *alterTable) TableName(c *Cursor) error {
	seg := c.Segment()
	if seg.Kind != KindName {
		return ferrors.UnexpectedToken("table name", seg.String())
	}
	x.result.TableName = seg.Text
	return nil
}

// AlterColumn consumes the optional COLUMN noise word.
func (x *alterTable) AlterColumn(c *Cursor) error {
	if next, ok := c.Peek(); ok && next.Token() == "COLUMN" {
		c.Advance()
	}
	return nil
}

func (x *alterTable) ColumnName(c *Cursor) error {
	seg := c.Segment()
	if seg.Kind != KindName {
		return ferrors.UnexpectedToken("column name", seg.String())
	}
	x.result.ColumnName = seg.Text
	return nil
}

// DefaultValue stores the default of the current column. A call to a
// known function is evaluated now and its result stored.
func (x *alterTable) DefaultValue(c *Cursor) error {
	seg := c.Segment()
	key := x.key(x.result.ColumnName)

	if seg.Kind == KindName && x.dialect.IsFunction(seg.Text) {
		args, ok := c.Advance()
		if !ok || args.Kind != KindSubexpression {
			return ferrors.UnexpectedToken("argument list after "+seg.Text, c.describe())
		}
		v, err := x.call(seg.Text, args.Text)
		if err != nil {
			return err
		}
		x.result.DefaultValueByColumn[key] = v
		return nil
	}

	x.result.DefaultValueByColumn[key] = seg.Text
	return nil
}

func (x *alterTable) call(fn, args string) (int64, error) {
	inner := strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(args, "("), ")"))
	m := sequenceArg.FindStringSubmatch(inner)
	if m == nil {
		return 0, ferrors.InvalidValue(fn+" argument", inner)
	}
	if x.sequences == nil {
		return 0, ferrors.SequenceNotFound(m[1])
	}
	if strings.EqualFold(fn, "currval") {
		return x.sequences.CurrentValue(m[1])
	}
	return x.sequences.NextValue(m[1])
}

func (x *alterTable) DropDefault(c *Cursor) error {
	key := x.key(x.result.ColumnName)
	delete(x.result.DefaultValueByColumn, key)
	x.result.DroppedDefaults = append(x.result.DroppedDefaults, key)
	return nil
}

func (x *alterTable) ConstraintName(c *Cursor) error {
	x.result.ConstraintName = c.Segment().Text
	return nil
}

func (x *alterTable) PrimaryKey(c *Cursor) error {
	x.constraintKind = ConstraintPrimaryKey
	return nil
}

func (x *alterTable) Unique(c *Cursor) error {
	x.constraintKind = ConstraintUnique
	return nil
}

// ConstraintColumns records one constraint entry per listed column.
func (x *alterTable) ConstraintColumns(c *Cursor) error {
	seg := c.Segment()
	if seg.Kind != KindSubexpression {
		return ferrors.UnexpectedToken("column list", seg.String())
	}
	for _, col := range SplitList(seg.Text) {
		col = strings.Trim(col, `"`)
		x.result.ConstraintByColumn[x.key(col)] = Constraint{Kind: x.constraintKind, Value: col}
	}
	return nil
}

// SplitList splits "(a, b, c)" into its top-level items.
func SplitList(subexp string) []string {
	inner := strings.TrimSpace(subexp)
	inner = strings.TrimPrefix(inner, "(")
	inner = strings.TrimSuffix(inner, ")")

	var (
		items []string
		depth int
		quote byte
		start int
	)
	for i := 0; i < len(inner); i++ {
		ch := inner[i]
		switch {
		case quote != 0:
			if ch == quote {
				quote = 0
			}
		case ch == '\'' || ch == '"':
			quote = ch
		case ch == '(':
			depth++
		case ch == ')':
			depth--
		case ch == ',' && depth == 0:
			items = append(items, strings.TrimSpace(inner[start:i]))
			start = i + 1
		}
	}
	if last := strings.TrimSpace(inner[start:]); last != "" {
		items = append(items, last)
	}
	return items
}
