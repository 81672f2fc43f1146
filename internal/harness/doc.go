// Package harness runs flag graph scenarios against a fresh engine and
// checks the outcome.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: cascade_chain
//	description: "Disabling a root flag cascades through its dependents"
//	setup:
//	  - create: auth
//	  - create: payments
//	    depends_on: [auth]
//	flow:
//	  - toggle: auth
//	    enable: true
//	  - toggle: payments
//	    enable: true
//	  - toggle: auth
//	    enable: false
//	  - toggle: payments
//	    enable: true
//	    expect:
//	      error: UNSATISFIED_DEPENDENCIES
//	      missing: [auth]
//	assertions:
//	  - type: status
//	    flag: payments
//	    enabled: false
//	  - type: history_actions
//	    flag: payments
//	    actions: [auto-disabled, enabled, created]
//
// Setup steps must succeed. Flow steps succeed unless they carry an expect
// clause naming an error code.
//
// # Assertion Types
//
//   - status: the flag's final enabled state
//   - history_actions: the flag's audit actions, newest first
//   - history_count: the number of audit records for the flag
//   - edges: the flag's direct dependencies, in edge order
//   - flag_absent: no flag with that name exists
//   - chain_valid: the flag's audit hash chain verifies
//
// # Deterministic Testing
//
// Every scenario runs on its own in-memory SQLite store with a step clock
// for timestamps and operation ids "step-1", "step-2", ... (one per create
// or toggle call, setup included). The trace of audit records is therefore
// identical across runs and can be compared against golden files.
package harness
