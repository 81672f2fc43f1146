// Package engine implements the flag lifecycle engine: flag creation with
// dependency validation, the enable/disable state machine, cascade disablement
// and the read-only query surface.
//
// ARCHITECTURE:
//
// Single Writer:
// Every mutating operation (CreateFlag, ToggleFlag and the cascade it
// triggers) holds the engine's write mutex and runs inside one store
// transaction. Two concurrent creates of the same name therefore cannot both
// pass the duplicate check, and a toggle never observes a half-applied cascade.
// A failure at any step rolls the whole operation back.
//
// Reads (Status, History, ListFlags) skip the mutex and run in a read
// transaction, so they see either the state before or after a mutation.
//
// Operation Flow (create):
// 1. Normalize the name and dependency names (dedup, first occurrence wins)
// 2. Reject duplicates, insert the node (its id is needed by the cycle check)
// 3. Resolve dependencies, reject unknown names
// 4. Run the cycle check once per dependency, before any edge is written
// 5. Insert edges, append the "created" audit record, commit
//
// Operation Flow (toggle):
// - enable: all direct dependencies must be enabled, otherwise every missing
//   dependency is reported
// - disable: always applied and audited, then every enabled transitive
//   dependent is auto-disabled with its own audit record
//
// Traversals (cycle check and cascade) are iterative with an explicit stack
// and visit nodes in the same order a depth-first recursion would.
//
// CRITICAL PATTERNS:
//
// Logical Clock:
// Audit records are stamped with a monotonic seq from the Sequencer. Ordering
// never relies on wall-clock timestamps.
//
// Operation IDs:
// Every audit record written by one CreateFlag or ToggleFlag call, cascade
// included, carries the same operation id.
package engine
