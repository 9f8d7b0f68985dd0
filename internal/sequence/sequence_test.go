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

package sequence

import (
	"math"
	"testing"

	ferrors "pgmock/internal/errors"
)

func ptr(v int64) *int64 { return &v }

func mustNew(t *testing.T, name string, opts Options) *Sequence {
	t.Helper()
	s, err := New(name, opts)
	if err != nil {
		t.Fatalf("New(%s) failed: %v", name, err)
	}
	return s
}

func TestNextValueFirstCallReturnsStart(t *testing.T) {
	s := mustNew(t, "s", Options{Start: ptr(12), Increment: ptr(3)})

	for i, want := range []int64{12, 15, 18} {
		got, err := s.NextValue()
		if err != nil {
			t.Fatalf("call %d failed: %v", i+1, err)
		}
		if got != want {
			t.Errorf("call %d: expected %d, got %d", i+1, want, got)
		}
	}
}

func TestNextValueUpperBound(t *testing.T) {
	s := mustNew(t, "s", Options{Start: ptr(10), Increment: ptr(1), MaxValue: ptr(1000)})

	// Calls 1..991 produce 10..1000.
	for i := 1; i <= 991; i++ {
		got, err := s.NextValue()
		if err != nil {
			t.Fatalf("call %d failed: %v", i, err)
		}
		if want := int64(9 + i); got != want {
			t.Fatalf("call %d: expected %d, got %d", i, want, got)
		}
	}

	_, err := s.NextValue()
	if !ferrors.IsOutOfRange(err) {
		t.Fatalf("Expected OutOfRange on call 992, got %v", err)
	}
	if cur, _ := s.CurrentValue(); cur != 1000 {
		t.Errorf("Expected current value to stay 1000, got %d", cur)
	}
}

func TestRejectedValueIsNotCommitted(t *testing.T) {
	s := mustNew(t, "s", Options{Start: ptr(1), Increment: ptr(5), MaxValue: ptr(8)})

	if v, _ := s.NextValue(); v != 1 {
		t.Fatalf("Expected 1, got %d", v)
	}
	if v, _ := s.NextValue(); v != 6 {
		t.Fatalf("Expected 6, got %d", v)
	}
	if _, err := s.NextValue(); !ferrors.IsOutOfRange(err) {
		t.Fatalf("Expected OutOfRange, got %v", err)
	}
	if _, err := s.NextValue(); !ferrors.IsOutOfRange(err) {
		t.Fatalf("Expected OutOfRange again, got %v", err)
	}

	s.SetMaxValue(nil)
	v, err := s.NextValue()
	if err != nil {
		t.Fatalf("NextValue failed after relaxing bound: %v", err)
	}
	if v != 11 {
		t.Errorf("Expected to resume from 6 and return 11, got %d", v)
	}
}

func TestNextValueLowerBound(t *testing.T) {
	s := mustNew(t, "down", Options{Increment: ptr(-2), MaxValue: ptr(4), MinValue: ptr(1)})

	if s.Start != 4 {
		t.Fatalf("Expected descending start to default to MAXVALUE 4, got %d", s.Start)
	}
	for _, want := range []int64{4, 2} {
		if got, err := s.NextValue(); err != nil || got != want {
			t.Fatalf("Expected %d, got %d (%v)", want, got, err)
		}
	}
	if _, err := s.NextValue(); !ferrors.IsOutOfRange(err) {
		t.Errorf("Expected OutOfRange below MINVALUE, got %v", err)
	}
}

func TestCycleWrapsToOppositeBound(t *testing.T) {
	s := mustNew(t, "c", Options{MinValue: ptr(1), MaxValue: ptr(3), Cycle: true})

	var got []int64
	for i := 0; i < 5; i++ {
		v, err := s.NextValue()
		if err != nil {
			t.Fatalf("NextValue failed: %v", err)
		}
		got = append(got, v)
	}
	want := []int64{1, 2, 3, 1, 2}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Expected %v, got %v", want, got)
			break
		}
	}
}

func TestCycleWithoutOppositeBound(t *testing.T) {
	s := mustNew(t, "c", Options{MaxValue: ptr(2), Cycle: true})
	s.NextValue()
	s.NextValue()
	if _, err := s.NextValue(); !ferrors.IsOutOfRange(err) {
		t.Errorf("Expected OutOfRange without MINVALUE to wrap to, got %v", err)
	}
}

func TestNewDefaultsAndValidation(t *testing.T) {
	s := mustNew(t, "plain", Options{})
	if s.Start != 1 || s.Increment != 1 {
		t.Errorf("Expected start 1 increment 1, got %d %d", s.Start, s.Increment)
	}
	if s.MinValue != nil || s.MaxValue != nil {
		t.Errorf("Expected unbounded sequence")
	}
	if s.Started() {
		t.Errorf("Expected new sequence not to be started")
	}
	if _, err := s.CurrentValue(); err == nil {
		t.Errorf("Expected currval to fail before nextval")
	}

	tests := []struct {
		name string
		opts Options
	}{
		{"zero increment", Options{Increment: ptr(0)}},
		{"min above max", Options{MinValue: ptr(10), MaxValue: ptr(5)}},
		{"start below min", Options{Start: ptr(1), MinValue: ptr(5)}},
		{"start above max", Options{Start: ptr(50), MaxValue: ptr(5)}},
		{"zero cache", Options{Cache: ptr(0)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New("bad", tt.opts); ferrors.GetCode(err) != ferrors.ErrCodeInvalidValue {
				t.Errorf("Expected InvalidValue, got %v", err)
			}
		})
	}
}

func TestNewCopiesBounds(t *testing.T) {
	max := ptr(5)
	s := mustNew(t, "s", Options{MaxValue: max})
	*max = 1
	if *s.MaxValue != 5 {
		t.Errorf("Expected bound to be copied, got %d", *s.MaxValue)
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	first := mustNew(t, "s", Options{Start: ptr(100)})
	if err := r.Create(first); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := r.NextValue("s"); err != nil {
		t.Fatalf("NextValue failed: %v", err)
	}

	dup := mustNew(t, "s", Options{Start: ptr(1)})
	if err := r.Create(dup); !ferrors.IsDuplicateName(err) {
		t.Fatalf("Expected DuplicateName, got %v", err)
	}
	got, _ := r.Get("s")
	if got != first {
		t.Fatal("Expected first registration to stay in place")
	}
	if v, _ := r.CurrentValue("s"); v != 100 {
		t.Errorf("Expected first sequence state to survive, got %d", v)
	}

	if _, err := r.NextValue("missing"); ferrors.GetCode(err) != ferrors.ErrCodeSequenceNotFound {
		t.Errorf("Expected SequenceNotFound, got %v", err)
	}
	if _, err := r.CurrentValue("missing"); ferrors.GetCode(err) != ferrors.ErrCodeSequenceNotFound {
		t.Errorf("Expected SequenceNotFound, got %v", err)
	}

	r.Create(mustNew(t, "a", Options{}))
	names := r.Names()
	if len(names) != 2 || names[0] != "s" || names[1] != "a" {
		t.Errorf("Expected creation order [s a], got %v", names)
	}
	if !r.Has("a") || r.Len() != 2 {
		t.Errorf("Expected registry to hold a, got len %d", r.Len())
	}
}

func TestNextValueInt64Overflow(t *testing.T) {
	tests := []struct {
		name  string
		opts  Options
		first int64
	}{
		{"ascending", Options{Start: ptr(math.MaxInt64)}, math.MaxInt64},
		{"ascending by ten", Options{Start: ptr(math.MaxInt64 - 5), Increment: ptr(10)}, math.MaxInt64 - 5},
		{"descending", Options{Start: ptr(math.MinInt64), Increment: ptr(-1)}, math.MinInt64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := mustNew(t, "big", tt.opts)
			if v, err := s.NextValue(); err != nil || v != tt.first {
				t.Fatalf("Expected %d, got %d (%v)", tt.first, v, err)
			}
			if v, err := s.NextValue(); !ferrors.IsOutOfRange(err) {
				t.Errorf("Expected OutOfRange, got %d (%v)", v, err)
			}
			if v, _ := s.CurrentValue(); v != tt.first {
				t.Errorf("Expected current value to stay %d, got %d", tt.first, v)
			}
		})
	}
}

func TestNextValueOverflowCycles(t *testing.T) {
	s := mustNew(t, "big", Options{Start: ptr(math.MaxInt64), MinValue: ptr(1), Cycle: true})
	s.NextValue()

	v, err := s.NextValue()
	if err != nil {
		t.Fatalf("NextValue failed: %v", err)
	}
	if v != 1 {
		t.Errorf("Expected wrap to 1, got %d", v)
	}
}
