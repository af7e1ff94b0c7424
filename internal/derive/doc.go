// Package derive implements the tend derivation engine.
//
// The engine is the heart of tend - it folds the append-only event log and
// the static catalog into a DerivedState snapshot: ritual completion with
// dependency gating, plant watering risk, glucose classification, and
// anchor selection.
//
// ARCHITECTURE:
//
// Pure Fold:
// Derive is a pure function of (events, now). It re-instantiates fresh
// working state from the catalog on every pass and replays the whole log
// in append order. Nothing is incrementally patched; the full re-fold is
// the baseline semantics, chosen for auditability over throughput.
//
// Derivation Flow:
// 1. Seed rituals (all steps uncompleted) and plants from the catalog
// 2. Fold events one at a time, in log order (never sorted by ts)
// 3. Recompute time-relative fields (risk levels, today label) against now
// 4. Select anchors by fixed-precedence triage
//
// CRITICAL PATTERNS:
//
// Determinism:
// Derive(L, T) called twice yields identical output. Catalog slice order
// is the only tie-breaker; no map iteration feeds the result.
//
// Fail-Open Dependencies:
// A dependency id matching neither a sibling step nor a ritual is treated
// as satisfied. Unknown ritual, step, and plant ids fold as no-ops. The
// fold is total over any well-typed event sequence and never fails.
package derive
