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

// Extractor runs statements through the compiled grammars of a dialect.
// It holds no per-statement state and may be shared.
type Extractor struct {
	grammars *Grammars
	dialect  *Dialect
}

// NewExtractor creates an extractor. A nil grammars selects the embedded
// grammars; a nil dialect selects Postgres.
func NewExtractor(grammars *Grammars, d *Dialect) (*Extractor, error) {
	if d == nil {
		d = Postgres
	}
	if grammars == nil {
		var err error
		if grammars, err = DefaultGrammars(); err != nil {
			return nil, err
		}
	}
	return &Extractor{grammars: grammars, dialect: d}, nil
}

// Dialect returns the dialect the extractor scans with.
func (x *Extractor) Dialect() *Dialect {
	return x.dialect
}

// AlterTable extracts an ALTER TABLE statement. Function defaults such as
// nextval are evaluated against sequences during the walk.
func (x *Extractor) AlterTable(sql string, sequences SequenceSource) (AlterTableResult, error) {
	h := &alterTable{
		dialect:   x.dialect,
		sequences: sequences,
		result: AlterTableResult{
			DefaultValueByColumn: make(map[string]interface{}),
			ConstraintByColumn:   make(map[string]Constraint),
		},
	}
	if err := Walk(x.grammars.AlterTable, x.dialect, sql, alterTableDispatch{hooks: h}); err != nil {
		return AlterTableResult{}, err
	}
	return h.result, nil
}

// CreateSequence extracts a CREATE SEQUENCE statement. It has no side
// effects.
func (x *Extractor) CreateSequence(sql string) (SequenceDefinition, error) {
	h := &createSequence{}
	if err := Walk(x.grammars.CreateSequence, x.dialect, sql, createSequenceDispatch{hooks: h}); err != nil {
		return SequenceDefinition{}, err
	}
	return h.def, nil
}
