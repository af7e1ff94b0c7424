// Package harness provides conformance testing for the derivation engine.
//
// Scenarios are YAML files pairing an event log and a fixed evaluation
// instant with expectations about the derived state:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	now: 2025-03-06T09:00:00Z
//	events:
//	  - type: eye_drop_applied
//	    ts: 2025-03-06T08:05:00Z
//	    drop_type: systane
//	expect:
//	  steps:
//	    morning.systane: true
//	  rituals:
//	    morning: false
//	  plants:
//	    ficus: low
//	  glucose: unknown
//	  anchor_kinds: [ritual_step, ritual_step]
//
// # Deterministic Testing
//
// Every scenario folds against a fixed now, so the derived state is fully
// reproducible and the rendered snapshot can be compared against a golden
// file. Golden files live in testdata/golden and are regenerated with:
//
//	go test ./internal/harness -update
package harness
