// Package event provides the foundational types for the tend event log.
//
// This package contains type definitions and validation only. All other
// internal packages import event; event imports nothing internal. This
// ensures it remains the base layer with no circular dependencies.
//
// Key design constraints:
//   - Events are immutable once appended; the log is append-only
//   - Ordering is log-append order, never timestamp order
//   - All JSON tags use snake_case
//   - Correcting a mistake means appending a compensating event,
//     never rewriting history
package event
