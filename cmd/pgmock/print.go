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

package main

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"

	"pgmock/internal/storage"
	"pgmock/pkg/pgmock"
)

func newTable(w io.Writer, header []string) *tablewriter.Table {
	t := tablewriter.NewWriter(w)
	t.SetHeader(header)
	t.SetAutoFormatHeaders(false)
	t.SetAutoWrapText(false)
	t.SetAlignment(tablewriter.ALIGN_LEFT)
	return t
}

// printRecords prints command tags such as "INSERT 1" on their own line
// and anything else as a table.
func printRecords(w io.Writer, recs []pgmock.Record) {
	if len(recs) == 0 {
		return
	}

	tagsOnly := true
	keySet := make(map[string]bool)
	for _, r := range recs {
		for k := range r {
			keySet[k] = true
			if k != "msg" {
				tagsOnly = false
			}
		}
	}
	if tagsOnly {
		for _, r := range recs {
			fmt.Fprintln(w, storage.FormatValue(r["msg"]))
		}
		return
	}

	keys := make([]string, 0, len(keySet))
	for k := range keySet {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	t := newTable(w, keys)
	for _, r := range recs {
		row := make([]string, len(keys))
		for i, k := range keys {
			row[i] = storage.FormatValue(r[k])
		}
		t.Append(row)
	}
	t.Render()
}

// printRows prints a table's contents with a row count footer.
func printRows(w io.Writer, columns []string, rows [][]interface{}) {
	t := newTable(w, columns)
	for _, r := range rows {
		cells := make([]string, len(r))
		for i, v := range r {
			cells[i] = storage.FormatValue(v)
		}
		t.Append(cells)
	}
	t.Render()
	fmt.Fprintf(w, "(%d rows)\n", len(rows))
}

func printColumns(w io.Writer, cols []pgmock.ColumnInfo) {
	t := newTable(w, []string{"Column", "Type", "Default", "Constraints"})
	for _, c := range cols {
		def := ""
		if c.HasDefault {
			def = storage.FormatValue(c.Default)
		}
		t.Append([]string{c.Name, c.Type, def, strings.Join(c.Constraints, ", ")})
	}
	t.Render()
}

func printSequences(w io.Writer, seqs []pgmock.SequenceInfo) {
	t := newTable(w, []string{"Sequence", "Start", "Increment", "Min", "Max", "Cycle", "Last", "Owned By"})
	for _, s := range seqs {
		t.Append([]string{
			s.Name,
			strconv.FormatInt(s.Start, 10),
			strconv.FormatInt(s.Increment, 10),
			formatBound(s.MinValue),
			formatBound(s.MaxValue),
			strconv.FormatBool(s.Cycle),
			formatBound(s.Last),
			s.OwnedBy,
		})
	}
	t.Render()
}

func formatBound(v *int64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatInt(*v, 10)
}

func printStats(w io.Writer, snap pgmock.MetricsSnapshot) {
	t := newTable(w, []string{"Metric", "Value"})
	t.Append([]string{"statements", strconv.FormatUint(snap.StatementsTotal, 10)})
	t.Append([]string{"failed", strconv.FormatUint(snap.StatementsFailed, 10)})

	kinds := make([]string, 0, len(snap.StatementsByKind))
	for k := range snap.StatementsByKind {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		t.Append([]string{"  " + k, strconv.FormatUint(snap.StatementsByKind[k], 10)})
	}

	t.Append([]string{"avg latency (us)", strconv.FormatFloat(snap.AverageLatencyMicros, 'f', 1, 64)})
	t.Append([]string{"commits", strconv.FormatUint(snap.TransactionsCommitted, 10)})
	t.Append([]string{"  implicit", strconv.FormatUint(snap.TransactionsImplicit, 10)})
	t.Append([]string{"rollbacks", strconv.FormatUint(snap.TransactionsRolledBack, 10)})
	t.Render()
}
