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

package metrics

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestRecordStatement(t *testing.T) {
	m := New()
	m.RecordStatement("INSERT", 10*time.Microsecond, nil)
	m.RecordStatement("INSERT", 30*time.Microsecond, nil)
	m.RecordStatement("SELECT", 20*time.Microsecond, errors.New("boom"))

	s := m.Snapshot()
	if s.StatementsTotal != 3 {
		t.Errorf("Expected 3 statements, got %d", s.StatementsTotal)
	}
	if s.StatementsFailed != 1 {
		t.Errorf("Expected 1 failure, got %d", s.StatementsFailed)
	}
	if s.StatementsByKind["INSERT"] != 2 || s.StatementsByKind["SELECT"] != 1 {
		t.Errorf("Unexpected per-kind counts: %v", s.StatementsByKind)
	}
	if s.AverageLatencyMicros != 20 {
		t.Errorf("Expected average latency 20, got %.2f", s.AverageLatencyMicros)
	}
}

func TestAverageLatencyEmpty(t *testing.T) {
	if got := New().AverageLatency(); got != 0 {
		t.Errorf("Expected 0, got %f", got)
	}
}

func TestTransactions(t *testing.T) {
	m := New()
	m.RecordCommit(false)
	m.RecordCommit(true)
	m.RecordRollback()

	s := m.Snapshot()
	if s.TransactionsCommitted != 2 || s.TransactionsImplicit != 1 || s.TransactionsRolledBack != 1 {
		t.Errorf("Unexpected transaction counts: %+v", s)
	}
}

func TestWriteTo(t *testing.T) {
	m := New()
	m.RecordStatement("CREATE TABLE", time.Millisecond, nil)
	m.RecordRollback()

	var buf bytes.Buffer
	n, err := m.WriteTo(&buf)
	if err != nil {
		t.Fatalf("WriteTo failed: %v", err)
	}
	if n != int64(buf.Len()) {
		t.Errorf("Expected byte count %d, got %d", buf.Len(), n)
	}

	out := buf.String()
	for _, want := range []string{
		"pgmock_statements_total 1\n",
		`pgmock_statements_by_kind_total{kind="CREATE TABLE"} 1` + "\n",
		"pgmock_transactions_rolled_back_total 1\n",
		"# TYPE pgmock_statements_total counter\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q, got:\n%s", want, out)
		}
	}
}
