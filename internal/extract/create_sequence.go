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

	"github.com/shopspring/decimal"

	ferrors "pgmock/internal/errors"
)

var createSequenceStates = StateTable{
	"temporary":       StateTemporary,
	"unlogged":        StateUnlogged,
	"if_not_exists":   StateIfNotExists,
	"sequence_name":   StateSequenceName,
	"data_type":       StateDataType,
	"start_value":     StateStartValue,
	"increment_value": StateIncrementValue,
	"min_value":       StateMinValue,
	"max_value":       StateMaxValue,
	"no_minvalue":     StateNoMinValue,
	"no_maxvalue":     StateNoMaxValue,
	"cache_value":     StateCacheValue,
	"cycle":           StateCycle,
	"no_cycle":        StateNoCycle,
	"owned_by":        StateOwnedBy,
}

// SequenceDefinition is the extraction record of one CREATE SEQUENCE
// statement. Nil numeric fields were not given (or cleared with NO).
type SequenceDefinition struct {
	Name        string
	Temporary   bool
	Unlogged    bool
	IfNotExists bool
	DataType    string
	Start       *int64
	Increment   *int64
	MinValue    *int64
	MaxValue    *int64
	Cache       *int64
	Cycle       bool
	OwnedBy     string
}

// CreateSequenceHooks has one method per CREATE SEQUENCE grammar state.
type CreateSequenceHooks interface {
	Temporary(c *Cursor) error
	Unlogged(c *Cursor) error
	IfNotExists(c *Cursor) error
	SequenceName(c *Cursor) error
	DataType(c *Cursor) error
	StartValue(c *Cursor) error
	IncrementValue(c *Cursor) error
	MinValue(c *Cursor) error
	MaxValue(c *Cursor) error
	NoMinValue(c *Cursor) error
	NoMaxValue(c *Cursor) error
	CacheValue(c *Cursor) error
	Cycle(c *Cursor) error
	NoCycle(c *Cursor) error
	OwnedBy(c *Cursor) error
}

type createSequenceDispatch struct {
	hooks CreateSequenceHooks
}

func (d createSequenceDispatch) Handle(state State, c *Cursor) error {
	switch state {
	case StateTemporary:
		return d.hooks.Temporary(c)
	case StateUnlogged:
		return d.hooks.Unlogged(c)
	case StateIfNotExists:
		return d.hooks.IfNotExists(c)
	case StateSequenceName:
		return d.hooks.SequenceName(c)
	case StateDataType:
		return d.hooks.DataType(c)
	case StateStartValue:
		return d.hooks.StartValue(c)
	case StateIncrementValue:
		return d.hooks.IncrementValue(c)
	case StateMinValue:
		return d.hooks.MinValue(c)
	case StateMaxValue:
		return d.hooks.MaxValue(c)
	case StateNoMinValue:
		return d.hooks.NoMinValue(c)
	case StateNoMaxValue:
		return d.hooks.NoMaxValue(c)
	case StateCacheValue:
		return d.hooks.CacheValue(c)
	case StateCycle:
		return d.hooks.Cycle(c)
	case StateNoCycle:
		return d.hooks.NoCycle(c)
	case StateOwnedBy:
		return d.hooks.OwnedBy(c)
	}
	return ferrors.GrammarLoad(CreateSequenceGrammar, fmt.Sprintf("state %s has no hook", state))
}

type createSequence struct {
	def SequenceDefinition
}

func (x *createSequence) Temporary(c *Cursor) error {
	x.def.Temporary = true
	return nil
}

func (x *createSequence) Unlogged(c *Cursor) error {
	x.def.Unlogged = true
	return nil
}

func (x *createSequence) IfNotExists(c *Cursor) error {
	x.def.IfNotExists = true
	return nil
}

func (x *createSequence) SequenceName(c *Cursor) error {
	seg := c.Segment()
	if seg.Kind != KindName {
		return ferrors.UnexpectedToken("sequence name", seg.String())
	}
	x.def.Name = seg.Text
	return nil
}

func (x *createSequence) DataType(c *Cursor) error {
	x.def.DataType = c.Segment().Text
	return nil
}

// StartValue reads START [WITH] n.
func (x *createSequence) StartValue(c *Cursor) error {
	if c.Token() == "WITH" {
		c.Advance()
	}
	return readInt(c, "START", &x.def.Start)
}

// IncrementValue reads INCREMENT [BY] n.
func (x *createSequence) IncrementValue(c *Cursor) error {
	if c.Token() == "BY" {
		c.Advance()
	}
	return readInt(c, "INCREMENT", &x.def.Increment)
}

func (x *createSequence) MinValue(c *Cursor) error {
	return readInt(c, "MINVALUE", &x.def.MinValue)
}

func (x *createSequence) MaxValue(c *Cursor) error {
	return readInt(c, "MAXVALUE", &x.def.MaxValue)
}

// NoMinValue clears the bound. A number written after it is ignored.
func (x *createSequence) NoMinValue(c *Cursor) error {
	x.def.MinValue = nil
	skipNumber(c)
	return nil
}

func (x *createSequence) NoMaxValue(c *Cursor) error {
	x.def.MaxValue = nil
	skipNumber(c)
	return nil
}

func (x *createSequence) CacheValue(c *Cursor) error {
	return readInt(c, "CACHE", &x.def.Cache)
}

func (x *createSequence) Cycle(c *Cursor) error {
	x.def.Cycle = true
	return nil
}

func (x *createSequence) NoCycle(c *Cursor) error {
	x.def.Cycle = false
	return nil
}

func (x *createSequence) OwnedBy(c *Cursor) error {
	seg := c.Segment()
	if seg.Token() == "NONE" {
		x.def.OwnedBy = ""
		return nil
	}
	if seg.Kind != KindName {
		return ferrors.UnexpectedToken("column reference", seg.String())
	}
	x.def.OwnedBy = seg.Text
	return nil
}

func skipNumber(c *Cursor) {
	if next, ok := c.Peek(); ok && next.Kind == KindNumber {
		c.Advance()
	}
}

// readInt parses the current NUMBER segment into dst. Decimal notation is
// accepted when the value is integral, as Postgres does.
func readInt(c *Cursor, clause string, dst **int64) error {
	seg := c.Segment()
	if c.Done() || seg.Kind != KindNumber {
		return ferrors.UnexpectedToken("number after "+clause, c.describe())
	}
	d, err := decimal.NewFromString(seg.Text)
	if err != nil {
		return ferrors.InvalidValue(clause, seg.Text).WithCause(err)
	}
	if !d.Equal(d.Truncate(0)) {
		return ferrors.InvalidValue(clause, seg.Text).WithDetail("must be an integer")
	}
	if !d.BigInt().IsInt64() {
		return ferrors.InvalidValue(clause, seg.Text).WithDetail("out of range for bigint")
	}
	v := d.IntPart()
	*dst = &v
	return nil
}
