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
Package sequence models named numeric generators.

A Sequence produces values starting at Start and moving by Increment,
bounded by MinValue and MaxValue (nil bounds are unbounded):

	seq, _ := sequence.New("ids", sequence.Options{Start: ptr(10), MaxValue: ptr(12)})
	seq.NextValue() // 10
	seq.NextValue() // 11
	seq.NextValue() // 12
	seq.NextValue() // OutOfRange, current value stays 12

A rejected candidate never becomes the current value, so raising the
bound afterwards resumes from the last value handed out.
*/
package sequence

import (
	"fmt"
	"math"

	ferrors "pgmock/internal/errors"
)

// Options carries the clauses of CREATE SEQUENCE. Nil fields take the
// Postgres defaults.
type Options struct {
	Start     *int64
	Increment *int64
	MinValue  *int64
	MaxValue  *int64
	Cache     *int64
	Cycle     bool
	OwnedBy   string
}

// Sequence is a named numeric generator.
type Sequence struct {
	Name      string
	Start     int64
	Increment int64
	MinValue  *int64
	MaxValue  *int64
	Cache     *int64
	Cycle     bool
	OwnedBy   string

	current *int64
}

// New validates opts and creates a sequence that has not produced a value.
func New(name string, opts Options) (*Sequence, error) {
	s := &Sequence{
		Name:      name,
		Increment: 1,
		MinValue:  copyPtr(opts.MinValue),
		MaxValue:  copyPtr(opts.MaxValue),
		Cache:     copyPtr(opts.Cache),
		Cycle:     opts.Cycle,
		OwnedBy:   opts.OwnedBy,
	}
	if opts.Increment != nil {
		s.Increment = *opts.Increment
	}
	if s.Increment == 0 {
		return nil, ferrors.InvalidValue("INCREMENT", "0").WithDetail("must not be zero")
	}
	if s.MinValue != nil && s.MaxValue != nil && *s.MinValue > *s.MaxValue {
		return nil, ferrors.InvalidValue("MINVALUE", fmt.Sprint(*s.MinValue)).
			WithDetail(fmt.Sprintf("must be less than MAXVALUE (%d)", *s.MaxValue))
	}
	if s.Cache != nil && *s.Cache < 1 {
		return nil, ferrors.InvalidValue("CACHE", fmt.Sprint(*s.Cache)).WithDetail("must be at least 1")
	}

	switch {
	case opts.Start != nil:
		s.Start = *opts.Start
	case s.Increment > 0 && s.MinValue != nil:
		s.Start = *s.MinValue
	case s.Increment > 0:
		s.Start = 1
	case s.MaxValue != nil:
		s.Start = *s.MaxValue
	default:
		s.Start = -1
	}
	if bound, ok := s.outside(s.Start); ok {
		return nil, ferrors.InvalidValue("START", fmt.Sprint(s.Start)).
			WithDetail("outside the " + bound)
	}
	return s, nil
}

func copyPtr(p *int64) *int64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// outside reports which bound v violates, if any.
func (s *Sequence) outside(v int64) (string, bool) {
	if s.MaxValue != nil && v > *s.MaxValue {
		return "maximum value", true
	}
	if s.MinValue != nil && v < *s.MinValue {
		return "minimum value", true
	}
	return "", false
}

// NextValue produces the next value. The first call returns Start; later
// calls add Increment to the last value produced. A candidate outside the
// bounds fails with OutOfRange unless the sequence cycles and the opposite
// bound is set.
func (s *Sequence) NextValue() (int64, error) {
	candidate := s.Start
	if s.current != nil {
		last := *s.current
		if bound, overflow := s.overflows(last); overflow {
			wrapped, canWrap := s.wrap()
			if !canWrap {
				return 0, ferrors.OutOfRange(s.Name, last, bound)
			}
			s.current = &wrapped
			return wrapped, nil
		}
		candidate = last + s.Increment
	}

	if bound, ok := s.outside(candidate); ok {
		wrapped, canWrap := s.wrap()
		if !canWrap {
			return 0, ferrors.OutOfRange(s.Name, candidate, bound)
		}
		candidate = wrapped
	}

	s.current = &candidate
	return candidate, nil
}

// overflows reports whether adding Increment to last leaves the int64
// range. The range edge acts as the implicit bound of an unbounded side.
func (s *Sequence) overflows(last int64) (string, bool) {
	if s.Increment > 0 && last > math.MaxInt64-s.Increment {
		return "maximum value", true
	}
	if s.Increment < 0 && last < math.MinInt64-s.Increment {
		return "minimum value", true
	}
	return "", false
}

func (s *Sequence) wrap() (int64, bool) {
	if !s.Cycle {
		return 0, false
	}
	if s.Increment > 0 && s.MinValue != nil {
		return *s.MinValue, true
	}
	if s.Increment < 0 && s.MaxValue != nil {
		return *s.MaxValue, true
	}
	return 0, false
}

// CurrentValue returns the last value produced.
func (s *Sequence) CurrentValue() (int64, error) {
	if s.current == nil {
		return 0, ferrors.InvalidValue("currval", s.Name).
			WithDetail("nextval has not been called for this sequence")
	}
	return *s.current, nil
}

// Started reports whether NextValue has succeeded at least once.
func (s *Sequence) Started() bool {
	return s.current != nil
}

// SetMinValue replaces the lower bound. Nil removes it.
func (s *Sequence) SetMinValue(v *int64) {
	s.MinValue = copyPtr(v)
}

// SetMaxValue replaces the upper bound. Nil removes it.
func (s *Sequence) SetMaxValue(v *int64) {
	s.MaxValue = copyPtr(v)
}
