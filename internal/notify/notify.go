// Package notify implements the multi-instance sync side channel.
//
// Peers are told only "state changed at t0" via a marker file in the data
// directory; they reload from persistence rather than receiving a diff.
// This is deliberately not a merge protocol: the statefile stays the
// single source of truth and the marker is fire-and-forget relative to
// the sink.
package notify

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

const markerName = "statechange"

// Broadcaster writes and reads the state-change marker.
type Broadcaster struct {
	path string
}

// NewBroadcaster creates a broadcaster over the given data directory.
func NewBroadcaster(dir string) *Broadcaster {
	return &Broadcaster{path: filepath.Join(dir, markerName)}
}

// Broadcast records that state changed at t. Failures are returned but
// callers treat them as non-fatal: a missed marker only delays a peer's
// reload until its next poll.
func (b *Broadcaster) Broadcast(t time.Time) error {
	return os.WriteFile(b.path, []byte(t.UTC().Format(time.RFC3339Nano)+"\n"), 0o644)
}

// LastChange returns the most recently broadcast instant. The second
// return is false when no peer has broadcast yet.
func (b *Broadcaster) LastChange() (time.Time, bool, error) {
	data, err := os.ReadFile(b.path)
	if os.IsNotExist(err) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	t, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(string(data)))
	if err != nil {
		// A scribbled marker still means "changed"; fall back to mtime.
		info, statErr := os.Stat(b.path)
		if statErr != nil {
			return time.Time{}, false, statErr
		}
		return info.ModTime(), true, nil
	}
	return t, true, nil
}
