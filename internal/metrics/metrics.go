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
Package metrics provides execution counters for pgmock.

METRIC CATEGORIES:
==================
- Statements: executed (total, by kind), failed
- Statement Latency: running sum and count
- Transactions: committed, rolled back, implicitly committed

EXPOSITION:
===========
WriteTo renders the counters in Prometheus text format. The shell prints
it for \stats.

EXAMPLE METRICS:
================

	pgmock_statements_total 42
	pgmock_statements_by_kind_total{kind="INSERT"} 30
	pgmock_transactions_rolled_back_total 1
*/
package metrics

import (
	"fmt"
	"io"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// Metrics holds the counters of one executor.
type Metrics struct {
	// Statement metrics
	StatementsTotal  atomic.Uint64
	StatementsFailed atomic.Uint64

	// Statement latency metrics (in microseconds)
	LatencySum   atomic.Uint64
	LatencyCount atomic.Uint64

	// Transaction metrics
	TransactionsCommitted  atomic.Uint64
	TransactionsRolledBack atomic.Uint64
	TransactionsImplicit   atomic.Uint64

	// Per-kind statement counts
	byKind sync.Map // kind -> *atomic.Uint64
}

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	StatementsTotal        uint64
	StatementsFailed       uint64
	StatementsByKind       map[string]uint64
	AverageLatencyMicros   float64
	TransactionsCommitted  uint64
	TransactionsRolledBack uint64
	TransactionsImplicit   uint64
}

// New creates a zeroed metrics set.
func New() *Metrics {
	return &Metrics{}
}

func (m *Metrics) kindCounter(kind string) *atomic.Uint64 {
	if c, ok := m.byKind.Load(kind); ok {
		return c.(*atomic.Uint64)
	}
	actual, _ := m.byKind.LoadOrStore(kind, &atomic.Uint64{})
	return actual.(*atomic.Uint64)
}

// RecordStatement records one dispatched statement.
func (m *Metrics) RecordStatement(kind string, latency time.Duration, err error) {
	m.StatementsTotal.Add(1)
	m.LatencySum.Add(uint64(latency.Microseconds()))
	m.LatencyCount.Add(1)
	m.kindCounter(kind).Add(1)
	if err != nil {
		m.StatementsFailed.Add(1)
	}
}

// RecordCommit records a committed transaction block. Implicit marks a
// block that reached end of input without COMMIT.
func (m *Metrics) RecordCommit(implicit bool) {
	m.TransactionsCommitted.Add(1)
	if implicit {
		m.TransactionsImplicit.Add(1)
	}
}

// RecordRollback records a rolled back transaction block.
func (m *Metrics) RecordRollback() {
	m.TransactionsRolledBack.Add(1)
}

// AverageLatency returns the average statement latency in microseconds.
func (m *Metrics) AverageLatency() float64 {
	count := m.LatencyCount.Load()
	if count == 0 {
		return 0
	}
	return float64(m.LatencySum.Load()) / float64(count)
}

// Snapshot copies the current counter values.
func (m *Metrics) Snapshot() Snapshot {
	s := Snapshot{
		StatementsTotal:        m.StatementsTotal.Load(),
		StatementsFailed:       m.StatementsFailed.Load(),
		StatementsByKind:       make(map[string]uint64),
		AverageLatencyMicros:   m.AverageLatency(),
		TransactionsCommitted:  m.TransactionsCommitted.Load(),
		TransactionsRolledBack: m.TransactionsRolledBack.Load(),
		TransactionsImplicit:   m.TransactionsImplicit.Load(),
	}
	m.byKind.Range(func(k, v interface{}) bool {
		s.StatementsByKind[k.(string)] = v.(*atomic.Uint64).Load()
		return true
	})
	return s
}

// WriteTo writes the metrics in Prometheus text format.
func (m *Metrics) WriteTo(w io.Writer) (int64, error) {
	s := m.Snapshot()
	cw := &countingWriter{w: w}

	fmt.Fprintf(cw, "# HELP pgmock_statements_total Total statements executed\n")
	fmt.Fprintf(cw, "# TYPE pgmock_statements_total counter\n")
	fmt.Fprintf(cw, "pgmock_statements_total %d\n", s.StatementsTotal)

	fmt.Fprintf(cw, "# HELP pgmock_statements_by_kind_total Statements by kind\n")
	fmt.Fprintf(cw, "# TYPE pgmock_statements_by_kind_total counter\n")
	kinds := make([]string, 0, len(s.StatementsByKind))
	for k := range s.StatementsByKind {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		fmt.Fprintf(cw, "pgmock_statements_by_kind_total{kind=%q} %d\n", k, s.StatementsByKind[k])
	}

	fmt.Fprintf(cw, "# HELP pgmock_statements_failed_total Failed statements\n")
	fmt.Fprintf(cw, "# TYPE pgmock_statements_failed_total counter\n")
	fmt.Fprintf(cw, "pgmock_statements_failed_total %d\n", s.StatementsFailed)

	fmt.Fprintf(cw, "# HELP pgmock_statement_latency_avg_microseconds Average statement latency\n")
	fmt.Fprintf(cw, "# TYPE pgmock_statement_latency_avg_microseconds gauge\n")
	fmt.Fprintf(cw, "pgmock_statement_latency_avg_microseconds %.2f\n", s.AverageLatencyMicros)

	fmt.Fprintf(cw, "# HELP pgmock_transactions_committed_total Committed transaction blocks\n")
	fmt.Fprintf(cw, "# TYPE pgmock_transactions_committed_total counter\n")
	fmt.Fprintf(cw, "pgmock_transactions_committed_total %d\n", s.TransactionsCommitted)

	fmt.Fprintf(cw, "# HELP pgmock_transactions_implicit_total Blocks committed at end of input\n")
	fmt.Fprintf(cw, "# TYPE pgmock_transactions_implicit_total counter\n")
	fmt.Fprintf(cw, "pgmock_transactions_implicit_total %d\n", s.TransactionsImplicit)

	fmt.Fprintf(cw, "# HELP pgmock_transactions_rolled_back_total Rolled back transaction blocks\n")
	fmt.Fprintf(cw, "# TYPE pgmock_transactions_rolled_back_total counter\n")
	fmt.Fprintf(cw, "pgmock_transactions_rolled_back_total %d\n", s.TransactionsRolledBack)

	return cw.n, cw.err
}

type countingWriter struct {
	w   io.Writer
	n   int64
	err error
}

func (c *countingWriter) Write(p []byte) (int, error) {
	if c.err != nil {
		return 0, c.err
	}
	n, err := c.w.Write(p)
	c.n += int64(n)
	c.err = err
	return n, err
}
