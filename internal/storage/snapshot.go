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

package storage

import (
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/copystructure"
	"github.com/mitchellh/hashstructure"
	"github.com/shopspring/decimal"
)

// Decimals and times keep their state in unexported fields, which the
// reflective copy would drop. Both are immutable, so the value itself is
// a valid copy.
var copyConfig = copystructure.Config{
	Copiers: map[reflect.Type]copystructure.CopierFunc{
		reflect.TypeOf(decimal.Decimal{}): func(v interface{}) (interface{}, error) {
			return v.(decimal.Decimal), nil
		},
		reflect.TypeOf(time.Time{}): func(v interface{}) (interface{}, error) {
			return v.(time.Time), nil
		},
	},
}

// Snapshot is a deep copy of the store's tables.
type Snapshot struct {
	tables map[string]*Table
}

// Tables returns the number of tables captured.
func (s *Snapshot) Tables() int {
	return len(s.tables)
}

// Snapshot deep-copies every table.
func (s *Store) Snapshot() (*Snapshot, error) {
	copied, err := copyConfig.Copy(s.Tables)
	if err != nil {
		return nil, err
	}
	return &Snapshot{tables: copied.(map[string]*Table)}, nil
}

// Restore replaces the store's tables with the snapshot's. The snapshot
// must not be restored twice.
func (s *Store) Restore(snap *Snapshot) {
	for name := range s.Tables {
		delete(s.Tables, name)
	}
	for name, t := range snap.tables {
		s.Tables[name] = t
	}
	snap.tables = nil
}

// Fingerprint hashes the store's visible content: table names, columns,
// and every row rendered as text. Equal stores hash equally.
func (s *Store) Fingerprint() (uint64, error) {
	return hashstructure.Hash(s.canonical(), nil)
}

func (s *Store) canonical() []string {
	var lines []string
	for _, name := range s.Names() {
		t := s.Tables[name]
		cols := make([]string, len(t.Columns))
		for i, c := range t.Columns {
			cols[i] = c.Name + " " + string(c.Type)
		}
		lines = append(lines, name+"("+strings.Join(cols, ", ")+")")
		for _, r := range t.Rows {
			vals := make([]string, len(r))
			for i, v := range r {
				vals[i] = FormatValue(v)
			}
			lines = append(lines, "  "+strings.Join(vals, "|"))
		}
	}
	return lines
}
