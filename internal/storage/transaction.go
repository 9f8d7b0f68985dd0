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
Transaction Implementation
===========================

Transactions give a BEGIN...COMMIT block all-or-nothing semantics over the
table store.

Transaction Model:
==================

Writes go straight to the store. Begin takes a deep snapshot first, and
Rollback swaps that snapshot back in:

  1. BEGIN: snapshot every table
  2. Statements: mutate the store directly
  3. COMMIT: discard the snapshot
  4. ROLLBACK: restore the snapshot

Only tables are covered. Sequence values handed out inside a block stay
consumed after a rollback, as in PostgreSQL.

Usage:
======

	tx, err := storage.Begin(store)
	if err != nil {
	    return err
	}
	defer tx.Rollback() // no-op once committed
	...
	return tx.Commit()
*/
package storage

import (
	ferrors "pgmock/internal/errors"
)

// TxState represents the current state of a transaction.
type TxState int

const (
	TxStateActive TxState = iota
	TxStateCommitted
	TxStateRolledBack
)

// String returns the state name.
func (s TxState) String() string {
	switch s {
	case TxStateActive:
		return "active"
	case TxStateCommitted:
		return "committed"
	case TxStateRolledBack:
		return "rolled back"
	default:
		return "unknown"
	}
}

// Transaction is a snapshot-backed transaction over one Store.
type Transaction struct {
	store    *Store
	snapshot *Snapshot
	state    TxState
}

// Begin snapshots store and starts a transaction.
func Begin(store *Store) (*Transaction, error) {
	snap, err := store.Snapshot()
	if err != nil {
		return nil, err
	}
	return &Transaction{store: store, snapshot: snap, state: TxStateActive}, nil
}

// Commit keeps the store as it is and releases the snapshot.
func (tx *Transaction) Commit() error {
	if tx.state != TxStateActive {
		return ferrors.TxNotActive("COMMIT")
	}
	tx.snapshot = nil
	tx.state = TxStateCommitted
	return nil
}

// Rollback restores the store to its state at Begin.
func (tx *Transaction) Rollback() error {
	if tx.state != TxStateActive {
		return ferrors.TxNotActive("ROLLBACK")
	}
	tx.store.Restore(tx.snapshot)
	tx.snapshot = nil
	tx.state = TxStateRolledBack
	return nil
}

// IsActive returns true if the transaction can still commit or roll back.
func (tx *Transaction) IsActive() bool {
	return tx.state == TxStateActive
}

// State returns the current transaction state.
func (tx *Transaction) State() TxState {
	return tx.state
}
