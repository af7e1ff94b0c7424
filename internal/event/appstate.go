package event

import "time"

// CurrentSchemaVersion is the persisted AppState schema version.
//
// Version history:
//  1 - Initial schema
const CurrentSchemaVersion = 1

// Meta holds per-installation metadata.
type Meta struct {
	// UserID is a stable random identifier minted once at first run.
	UserID string `json:"user_id"`

	// Device is an optional human-assigned label for this installation.
	Device string `json:"device,omitempty"`

	// LastBackup is the timestamp of the most recent backup_created event.
	LastBackup *time.Time `json:"last_backup,omitempty"`
}

// AppState is the persisted root: the full ordered event log plus metadata.
//
// AppState is owned exclusively by the event sink. It changes only by
// appending events or stamping LastSaved and backup metadata, never by
// rewriting history.
type AppState struct {
	SchemaVersion int       `json:"schema_version"`
	LastSaved     time.Time `json:"last_saved"`
	Events        []Event   `json:"events"`
	Meta          Meta      `json:"meta"`
}

// NewAppState creates an empty state with the current schema version.
// The caller is responsible for minting Meta.UserID.
func NewAppState() *AppState {
	return &AppState{
		SchemaVersion: CurrentSchemaVersion,
		Events:        []Event{},
	}
}

// Clone returns a copy of the state with its own event slice. Profile
// pointers are copied too, so callers cannot reach back into the original.
func (s *AppState) Clone() *AppState {
	out := *s
	out.Events = make([]Event, len(s.Events))
	copy(out.Events, s.Events)
	for i := range out.Events {
		if p := out.Events[i].Profile; p != nil {
			cp := *p
			out.Events[i].Profile = &cp
		}
	}
	if s.Meta.LastBackup != nil {
		t := *s.Meta.LastBackup
		out.Meta.LastBackup = &t
	}
	return &out
}
