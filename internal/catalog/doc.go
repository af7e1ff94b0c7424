// Package catalog provides the static domain templates consumed by the
// derivation engine: ritual checklists with step dependency graphs, the
// plant care seed list, action aliases, and the anchor triage policy.
//
// The engine itself is catalog-agnostic. A default catalog is embedded in
// the binary; a user-supplied YAML catalog can replace it after passing
// CUE schema validation (see Validate).
//
// Templates hold no event-derived state. The derivation engine
// re-instantiates fresh working state from them on every fold pass.
package catalog
