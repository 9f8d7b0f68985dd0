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
	ferrors "pgmock/internal/errors"
)

// Registry holds the sequences of one mock database by name.
type Registry struct {
	byName map[string]*Sequence
	order  []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]*Sequence)}
}

// Create registers seq. A taken name fails with DuplicateName and leaves
// the existing sequence untouched.
func (r *Registry) Create(seq *Sequence) error {
	if _, exists := r.byName[seq.Name]; exists {
		return ferrors.DuplicateName("sequence", seq.Name)
	}
	r.byName[seq.Name] = seq
	r.order = append(r.order, seq.Name)
	return nil
}

// Get returns the sequence registered under name.
func (r *Registry) Get(name string) (*Sequence, bool) {
	seq, ok := r.byName[name]
	return seq, ok
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.byName[name]
	return ok
}

// NextValue advances the named sequence.
func (r *Registry) NextValue(name string) (int64, error) {
	seq, ok := r.byName[name]
	if !ok {
		return 0, ferrors.SequenceNotFound(name)
	}
	return seq.NextValue()
}

// CurrentValue returns the last value of the named sequence.
func (r *Registry) CurrentValue(name string) (int64, error) {
	seq, ok := r.byName[name]
	if !ok {
		return 0, ferrors.SequenceNotFound(name)
	}
	return seq.CurrentValue()
}

// Names returns sequence names in creation order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Len returns the number of registered sequences.
func (r *Registry) Len() int {
	return len(r.order)
}
