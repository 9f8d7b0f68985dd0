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
Package storage provides the in-memory table store of pgmock.

Table Store Overview:
=====================

The Store maps table names to Tables. Each Table keeps its declared
columns and the rows inserted so far:

	┌──────────────────────────────────────────┐
	│                  Store                    │
	│  Tables: map[string]*Table                │
	└──────────────────────────────────────────┘
	          │                    │
	          ▼                    ▼
	┌──────────────────┐  ┌──────────────────┐
	│ users            │  │ email_email      │
	│  id      integer │  │  id      integer │
	│  name    text    │  │  address text    │
	│  rows: [...]     │  │  rows: [...]     │
	└──────────────────┘  └──────────────────┘

Row values are Go values of the column's category: int64, decimal.Decimal,
bool, time.Time, string, or nil for NULL (see values.go).

Snapshots:
==========

A Snapshot is a deep copy of every table. Restore swaps a snapshot back in,
which is how a failed transaction block leaves the store untouched
(see transaction.go).

Usage:
======

	store := storage.NewStore()
	store.Create(&storage.Table{Name: "t", Columns: cols})
	store.Append("t", []storage.Row{{int64(1), "a"}})

	tx, _ := storage.Begin(store)
	store.Append("t", []storage.Row{{int64(2), "b"}})
	tx.Rollback() // t holds one row again
*/
package storage

import (
	"sort"

	ferrors "pgmock/internal/errors"
)

// Column describes one table column.
type Column struct {
	Name string
	Type Category
	// SourceType is the type name as written in CREATE TABLE.
	SourceType string
}

// Row holds one value per column, in column order.
type Row []interface{}

// Table is a named set of columns and the rows inserted into it.
type Table struct {
	Name    string
	Columns []Column
	Rows    []Row
}

// ColumnIndex returns the position of the named column, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// ColumnNames returns the column names in declaration order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Store is the in-memory table store. It is not safe for concurrent use.
type Store struct {
	Tables map[string]*Table
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{Tables: make(map[string]*Table)}
}

// Create adds a table. The name must be free.
func (s *Store) Create(t *Table) error {
	if _, exists := s.Tables[t.Name]; exists {
		return ferrors.DuplicateName("table", t.Name)
	}
	if t.Rows == nil {
		t.Rows = []Row{}
	}
	s.Tables[t.Name] = t
	return nil
}

// Get returns the named table.
func (s *Store) Get(name string) (*Table, bool) {
	t, ok := s.Tables[name]
	return t, ok
}

// Drop removes the named table and reports whether it existed.
func (s *Store) Drop(name string) bool {
	if _, ok := s.Tables[name]; !ok {
		return false
	}
	delete(s.Tables, name)
	return true
}

// Names returns the table names in sorted order.
func (s *Store) Names() []string {
	names := make([]string, 0, len(s.Tables))
	for name := range s.Tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Append adds rows to the named table. Every row must have one value per
// column.
func (s *Store) Append(name string, rows []Row) error {
	t, ok := s.Tables[name]
	if !ok {
		return ferrors.TableNotFound(name)
	}
	for _, r := range rows {
		if len(r) != len(t.Columns) {
			return ferrors.InvalidValue("row", name).
				WithDetail("row has a different number of values than the table has columns")
		}
	}
	t.Rows = append(t.Rows, rows...)
	return nil
}

// Len returns the number of tables.
func (s *Store) Len() int {
	return len(s.Tables)
}
