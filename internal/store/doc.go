// Package store provides SQLite-backed durable storage for the flag
// dependency graph and its audit trail.
//
// Tables:
//   - flags: one row per flag, UNIQUE(name)
//   - dependencies: directed edges, source depends on target, UNIQUE(source_id, target_id)
//   - audit_log: append-only history, one row per state-changing action
//
// # Transactions
//
// Every read and write goes through a Tx obtained from Store.Update (write)
// or Store.View (read). The engine performs each create or toggle, including
// the cascade, inside a single Update so a failure leaves nothing behind.
//
// The store does not enforce acyclicity. The engine checks for cycles before
// it calls AddEdges.
//
// # Ordering
//
//   - Edges are returned ORDER BY id ASC (insertion order)
//   - Audit history is returned ORDER BY seq DESC (newest first)
//   - Audit seq values come from the engine's logical clock, never from timestamps
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
