// Package model defines the flag dependency graph types shared by every other
// package: flags, dependency edges, audit records and the closed set of audit
// actions.
//
// model imports nothing internal. Names are normalized here (NormalizeName)
// and audit records are hashed here (AuditHash) so that the store, the engine
// and the CLI agree on identity without depending on each other.
//
// Key constraints:
//   - Flag names are trimmed and NFC-normalized before any lookup or insert
//   - Action is a closed enumeration; unknown strings fail to parse
//   - Audit hashes use canonical JSON (sorted keys, no floats, no nulls)
//   - All JSON tags use snake_case
package model
