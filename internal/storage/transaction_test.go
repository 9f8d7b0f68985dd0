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
	"testing"

	ferrors "pgmock/internal/errors"
)

func TestTransactionCommit(t *testing.T) {
	store := setupTestStore(t)

	tx, err := Begin(store)
	if err != nil {
		t.Fatalf("Begin failed: %v", err)
	}

	if err := store.Append("users", []Row{{int64(2), "bob"}}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	users, _ := store.Get("users")
	if len(users.Rows) != 2 {
		t.Errorf("Expected 2 rows after commit, got %d", len(users.Rows))
	}
	if tx.State() != TxStateCommitted {
		t.Errorf("Expected committed state, got %s", tx.State())
	}
}

func TestTransactionRollback(t *testing.T) {
	store := setupTestStore(t)
	before, err := store.Fingerprint()
	if err != nil {
		t.Fatalf("Fingerprint failed: %v", err)
	}

	tx, err := Begin(store)
	if err != nil {
		t.Fatalf("Begin failed: %v", err)
	}

	store.Append("users", []Row{{int64(2), "bob"}})
	store.Create(&Table{Name: "extra", Columns: []Column{{Name: "x", Type: CategoryText}}})
	store.Drop("prices")

	if err := tx.Rollback(); err != nil {
		t.Fatalf("Rollback failed: %v", err)
	}

	after, _ := store.Fingerprint()
	if before != after {
		t.Errorf("Expected fingerprint %d after rollback, got %d", before, after)
	}
	if _, ok := store.Get("extra"); ok {
		t.Error("Expected table created in the transaction to be gone")
	}
	if _, ok := store.Get("prices"); !ok {
		t.Error("Expected dropped table to be restored")
	}
	if tx.IsActive() {
		t.Error("Expected transaction to be inactive after rollback")
	}
}

func TestTransactionFinishedTwice(t *testing.T) {
	tests := []struct {
		name   string
		first  func(*Transaction) error
		second func(*Transaction) error
	}{
		{"commit then commit", (*Transaction).Commit, (*Transaction).Commit},
		{"commit then rollback", (*Transaction).Commit, (*Transaction).Rollback},
		{"rollback then commit", (*Transaction).Rollback, (*Transaction).Commit},
		{"rollback then rollback", (*Transaction).Rollback, (*Transaction).Rollback},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx, err := Begin(setupTestStore(t))
			if err != nil {
				t.Fatalf("Begin failed: %v", err)
			}
			if err := tt.first(tx); err != nil {
				t.Fatalf("first call failed: %v", err)
			}
			err = tt.second(tx)
			if ferrors.GetCode(err) != ferrors.ErrCodeTxNotActive {
				t.Errorf("Expected TxNotActive, got %v", err)
			}
		})
	}
}

func TestDeferredRollbackAfterCommit(t *testing.T) {
	store := setupTestStore(t)

	func() {
		tx, err := Begin(store)
		if err != nil {
			t.Fatalf("Begin failed: %v", err)
		}
		defer tx.Rollback()

		store.Append("users", []Row{{int64(2), "bob"}})
		if err := tx.Commit(); err != nil {
			t.Fatalf("Commit failed: %v", err)
		}
	}()

	users, _ := store.Get("users")
	if len(users.Rows) != 2 {
		t.Errorf("Expected deferred rollback to be a no-op after commit, got %d rows", len(users.Rows))
	}
}
