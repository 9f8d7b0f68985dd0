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
	"testing"

	"github.com/google/go-cmp/cmp"

	ferrors "pgmock/internal/errors"
)

// fakeSequences hands out deterministic values: each NextValue returns the
// stored value and then adds step.
type fakeSequences struct {
	next  map[string]int64
	step  int64
	last  map[string]int64
	calls int
}

func newFakeSequences(step int64, start map[string]int64) *fakeSequences {
	return &fakeSequences{next: start, step: step, last: map[string]int64{}}
}

func (f *fakeSequences) NextValue(name string) (int64, error) {
	f.calls++
	v, ok := f.next[name]
	if !ok {
		return 0, ferrors.SequenceNotFound(name)
	}
	f.next[name] = v + f.step
	f.last[name] = v
	return v, nil
}

func (f *fakeSequences) CurrentValue(name string) (int64, error) {
	v, ok := f.last[name]
	if !ok {
		return 0, ferrors.SequenceNotFound(name)
	}
	return v, nil
}

func newTestExtractor(t *testing.T) *Extractor {
	t.Helper()
	x, err := NewExtractor(nil, nil)
	if err != nil {
		t.Fatalf("NewExtractor failed: %v", err)
	}
	return x
}

func TestAlterTableNextvalDefault(t *testing.T) {
	x := newTestExtractor(t)
	seqs := newFakeSequences(3, map[string]int64{"email_email_id_seq": 15})

	res, err := x.AlterTable("ALTER TABLE ONLY email_email ALTER COLUMN id SET DEFAULT nextval('email_email_id_seq'::regclass);", seqs)
	if err != nil {
		t.Fatalf("AlterTable failed: %v", err)
	}

	if res.TableName != "email_email" {
		t.Errorf("Expected table 'email_email', got '%s'", res.TableName)
	}
	if res.ColumnName != "id" {
		t.Errorf("Expected column 'id', got '%s'", res.ColumnName)
	}
	if !res.Only || res.IfExists {
		t.Errorf("Expected Only=true IfExists=false, got %v %v", res.Only, res.IfExists)
	}
	if got := res.DefaultValueByColumn["email_email.id"]; got != int64(15) {
		t.Errorf("Expected default 15, got %v (%T)", got, got)
	}
}

func TestAlterTableDefaultIsEvaluatedEachParse(t *testing.T) {
	x := newTestExtractor(t)
	seqs := newFakeSequences(1, map[string]int64{"s": 1})
	sql := "ALTER TABLE t ALTER COLUMN id SET DEFAULT nextval('s')"

	first, err := x.AlterTable(sql, seqs)
	if err != nil {
		t.Fatalf("AlterTable failed: %v", err)
	}
	second, err := x.AlterTable(sql, seqs)
	if err != nil {
		t.Fatalf("AlterTable failed: %v", err)
	}

	if first.DefaultValueByColumn["t.id"] == second.DefaultValueByColumn["t.id"] {
		t.Errorf("Expected two different defaults, got %v twice", first.DefaultValueByColumn["t.id"])
	}
	if seqs.calls != 2 {
		t.Errorf("Expected 2 nextval calls, got %d", seqs.calls)
	}
}

func TestAlterTablePrimaryKey(t *testing.T) {
	x := newTestExtractor(t)

	res, err := x.AlterTable("ALTER TABLE IF EXISTS ONLY email_email ADD CONSTRAINT email_email_pkey PRIMARY KEY (id);", nil)
	if err != nil {
		t.Fatalf("AlterTable failed: %v", err)
	}

	want := map[string]Constraint{
		"email_email.id": {Kind: ConstraintPrimaryKey, Value: "id"},
	}
	if diff := cmp.Diff(want, res.ConstraintByColumn); diff != "" {
		t.Errorf("constraints mismatch (-want +got):\n%s", diff)
	}
	if res.ConstraintName != "email_email_pkey" {
		t.Errorf("Expected constraint name 'email_email_pkey', got '%s'", res.ConstraintName)
	}
	if !res.IfExists || !res.Only {
		t.Errorf("Expected IfExists and Only, got %v %v", res.IfExists, res.Only)
	}
}

func TestAlterTableCases(t *testing.T) {
	x := newTestExtractor(t)

	tests := []struct {
		name        string
		sql         string
		defaults    map[string]interface{}
		constraints map[string]Constraint
		dropped     []string
	}{
		{
			name:        "literal default",
			sql:         "ALTER TABLE ONLY users ALTER COLUMN status SET DEFAULT 'active'::character varying;",
			defaults:    map[string]interface{}{"users.status": "active"},
			constraints: map[string]Constraint{},
		},
		{
			name:        "numeric default without COLUMN",
			sql:         "alter table users alter retries set default 3",
			defaults:    map[string]interface{}{"users.retries": "3"},
			constraints: map[string]Constraint{},
		},
		{
			name:     "composite unique",
			sql:      `ALTER TABLE ONLY public.members ADD CONSTRAINT members_uq UNIQUE (team_id, "user_id");`,
			defaults: map[string]interface{}{},
			constraints: map[string]Constraint{
				"public.members.team_id": {Kind: ConstraintUnique, Value: "team_id"},
				"public.members.user_id": {Kind: ConstraintUnique, Value: "user_id"},
			},
		},
		{
			name:        "drop default",
			sql:         "ALTER TABLE users ALTER COLUMN status DROP DEFAULT",
			defaults:    map[string]interface{}{},
			constraints: map[string]Constraint{},
			dropped:     []string{"users.status"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := x.AlterTable(tt.sql, nil)
			if err != nil {
				t.Fatalf("AlterTable failed: %v", err)
			}
			if diff := cmp.Diff(tt.defaults, res.DefaultValueByColumn); diff != "" {
				t.Errorf("defaults mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.constraints, res.ConstraintByColumn); diff != "" {
				t.Errorf("constraints mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.dropped, res.DroppedDefaults); diff != "" {
				t.Errorf("dropped mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestAlterTableCurrval(t *testing.T) {
	x := newTestExtractor(t)
	seqs := newFakeSequences(1, map[string]int64{"s": 7})
	if _, err := seqs.NextValue("s"); err != nil {
		t.Fatalf("NextValue failed: %v", err)
	}

	res, err := x.AlterTable("ALTER TABLE t ALTER COLUMN id SET DEFAULT currval('s'::regclass)", seqs)
	if err != nil {
		t.Fatalf("AlterTable failed: %v", err)
	}
	if got := res.DefaultValueByColumn["t.id"]; got != int64(7) {
		t.Errorf("Expected currval 7, got %v", got)
	}
	if seqs.next["s"] != 8 {
		t.Errorf("Expected currval not to advance the sequence, next is %d", seqs.next["s"])
	}
}

func TestAlterTableErrors(t *testing.T) {
	x := newTestExtractor(t)
	seqs := newFakeSequences(1, map[string]int64{})

	tests := []struct {
		name string
		sql  string
		code ferrors.ErrorCode
	}{
		{"unknown sequence", "ALTER TABLE t ALTER COLUMN id SET DEFAULT nextval('missing')", ferrors.ErrCodeSequenceNotFound},
		{"bad nextval argument", "ALTER TABLE t ALTER COLUMN id SET DEFAULT nextval(42)", ferrors.ErrCodeInvalidValue},
		{"nextval without arguments", "ALTER TABLE t ALTER COLUMN id SET DEFAULT nextval", ferrors.ErrCodeUnexpectedToken},
		{"keyword as table name", "ALTER TABLE ONLY DEFAULT ADD CONSTRAINT x PRIMARY KEY (id)", ferrors.ErrCodeUnexpectedToken},
		{"primary key without columns", "ALTER TABLE t ADD CONSTRAINT t_pkey PRIMARY KEY id", ferrors.ErrCodeUnexpectedToken},
		{"unknown action", "ALTER TABLE t OWNER TO admin", ferrors.ErrCodeParseStructure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := x.AlterTable(tt.sql, seqs)
			if ferrors.GetCode(err) != tt.code {
				t.Errorf("Expected code %d, got %v", tt.code, err)
			}
		})
	}
}
