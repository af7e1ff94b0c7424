// Package store provides the persistence collaborators around the event
// sink.
//
// Two stores live here:
//
// StateFile is the source of truth: a single JSON document matching
// AppState, written atomically, with dated backup copies under backups/.
// Backup creation is "read current state, write a copy", never "replay the
// log into a new file".
//
// Archive is a queryable SQLite mirror of the event log (WAL mode, single
// writer). It serves the log and stats commands and is rebuildable from
// the statefile at any time; losing it loses nothing.
//
// Error kinds carry a fixed recovery policy: StorageUnavailable is
// fatal to persistence but not to in-memory operation; LoadFailure is
// recovered by falling back to a fresh empty log, never by partial repair;
// SaveFailure is reported and retried only on the next natural save
// trigger.
package store
