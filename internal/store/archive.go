package store

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/tendlog/tend/internal/event"
)

//go:embed schema.sql
var schemaSQL string

// Archive is the SQLite mirror of the event log.
//
// The JSON statefile remains the single source of truth; the archive is a
// derived index kept in sync by subscribing to the sink's raw-event stream
// and rebuildable from the log at any time.
type Archive struct {
	db *sql.DB
}

// OpenArchive creates or opens the archive database at the given path.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode (the archive is rebuildable)
//   - 5-second busy timeout for lock contention
//
// SQLite only supports one writer at a time, so the pool is limited to a
// single connection.
func OpenArchive(path string) (*Archive, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, storageUnavailable(path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, storageUnavailable(path, err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, storageUnavailable(path, fmt.Errorf("apply pragma %q: %w", pragma, err))
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, storageUnavailable(path, fmt.Errorf("apply schema: %w", err))
	}

	return &Archive{db: db}, nil
}

// Close closes the database connection.
func (a *Archive) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

// AppendEvent mirrors one event at the given 1-based log position.
// Uses ON CONFLICT DO NOTHING for idempotency: re-mirroring an already
// archived position is silently ignored, never rewritten.
func (a *Archive) AppendEvent(ctx context.Context, seq int, ev event.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("archive event: %w", err)
	}
	_, err = a.db.ExecContext(ctx, `
		INSERT INTO events (seq, type, ts, payload)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(seq) DO NOTHING
	`, seq, string(ev.Type), ev.TS.UTC().Format(time.RFC3339Nano), string(payload))
	if err != nil {
		return fmt.Errorf("archive event: %w", err)
	}
	return nil
}

// Rebuild replaces the archive contents with the full log, in one
// transaction. Used after a fresh load and by the verify command.
func (a *Archive) Rebuild(ctx context.Context, events []event.Event) error {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("rebuild archive: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM events`); err != nil {
		return fmt.Errorf("rebuild archive: %w", err)
	}
	for i, ev := range events {
		payload, err := json.Marshal(ev)
		if err != nil {
			return fmt.Errorf("rebuild archive: event %d: %w", i+1, err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO events (seq, type, ts, payload) VALUES (?, ?, ?, ?)
		`, i+1, string(ev.Type), ev.TS.UTC().Format(time.RFC3339Nano), string(payload)); err != nil {
			return fmt.Errorf("rebuild archive: event %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("rebuild archive: %w", err)
	}
	return nil
}

// Row is one archived event.
type Row struct {
	Seq   int         `json:"seq"`
	Event event.Event `json:"event"`
}

// Filter narrows Query results. Zero values mean "no constraint".
type Filter struct {
	Type  event.Type
	Since time.Time
	Limit int
}

// Query returns archived events in log order, optionally filtered.
func (a *Archive) Query(ctx context.Context, f Filter) ([]Row, error) {
	q := `SELECT seq, payload FROM events`
	var args []any
	var where []string

	if f.Type != "" {
		where = append(where, `type = ?`)
		args = append(args, string(f.Type))
	}
	if !f.Since.IsZero() {
		where = append(where, `ts >= ?`)
		args = append(args, f.Since.UTC().Format(time.RFC3339Nano))
	}
	for i, cond := range where {
		if i == 0 {
			q += ` WHERE ` + cond
		} else {
			q += ` AND ` + cond
		}
	}
	q += ` ORDER BY seq`
	if f.Limit > 0 {
		q += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	rows, err := a.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query archive: %w", err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var seq int
		var payload string
		if err := rows.Scan(&seq, &payload); err != nil {
			return nil, fmt.Errorf("query archive: %w", err)
		}
		var ev event.Event
		if err := json.Unmarshal([]byte(payload), &ev); err != nil {
			return nil, fmt.Errorf("query archive: seq %d: %w", seq, err)
		}
		out = append(out, Row{Seq: seq, Event: ev})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query archive: %w", err)
	}
	return out, nil
}

// TypeCount is a per-type tally with the first and last timestamps seen.
type TypeCount struct {
	Type  event.Type `json:"type"`
	Count int        `json:"count"`
	First time.Time  `json:"first"`
	Last  time.Time  `json:"last"`
}

// Stats returns per-type event counts ordered by type name.
func (a *Archive) Stats(ctx context.Context) ([]TypeCount, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT type, COUNT(*), MIN(ts), MAX(ts)
		FROM events
		GROUP BY type
		ORDER BY type
	`)
	if err != nil {
		return nil, fmt.Errorf("archive stats: %w", err)
	}
	defer rows.Close()

	var out []TypeCount
	for rows.Next() {
		var tc TypeCount
		var typ, first, last string
		if err := rows.Scan(&typ, &tc.Count, &first, &last); err != nil {
			return nil, fmt.Errorf("archive stats: %w", err)
		}
		tc.Type = event.Type(typ)
		if tc.First, err = time.Parse(time.RFC3339Nano, first); err != nil {
			return nil, fmt.Errorf("archive stats: %w", err)
		}
		if tc.Last, err = time.Parse(time.RFC3339Nano, last); err != nil {
			return nil, fmt.Errorf("archive stats: %w", err)
		}
		out = append(out, tc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("archive stats: %w", err)
	}
	return out, nil
}

// Count returns the number of archived events.
func (a *Archive) Count(ctx context.Context) (int, error) {
	var n int
	if err := a.db.QueryRow(`SELECT COUNT(*) FROM events`).Scan(&n); err != nil {
		return 0, fmt.Errorf("archive count: %w", err)
	}
	return n, nil
}
