package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/tendlog/tend/internal/event"
)

const (
	stateFileName = "tend.json"
	backupsDir    = "backups"
)

// StateFile persists AppState as a single JSON document in a data
// directory. Writes go through a temp file and rename, so a crashed save
// never leaves a truncated statefile behind.
type StateFile struct {
	dir string
	log *slog.Logger
}

// NewStateFile creates the data directory if needed and returns the store.
// Returns a StorageUnavailable error if the directory cannot be provided.
func NewStateFile(dir string, log *slog.Logger) (*StateFile, error) {
	if log == nil {
		log = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, storageUnavailable(dir, err)
	}
	return &StateFile{dir: dir, log: log}, nil
}

// Path returns the statefile location.
func (f *StateFile) Path() string {
	return filepath.Join(f.dir, stateFileName)
}

// Load reads the persisted state. The second return is false when no
// statefile exists yet (first run). A corrupt or unparseable file returns
// a LoadFailure; callers recover by starting a fresh empty log.
func (f *StateFile) Load() (*event.AppState, bool, error) {
	path := f.Path()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, loadFailure(path, err)
	}

	var st event.AppState
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, false, loadFailure(path, err)
	}
	if st.SchemaVersion > event.CurrentSchemaVersion {
		return nil, false, loadFailure(path, fmt.Errorf("schema version %d is newer than supported %d",
			st.SchemaVersion, event.CurrentSchemaVersion))
	}
	return &st, true, nil
}

// Save writes the state atomically. Returns a SaveFailure on any write
// error; the in-memory state is unaffected and the next natural save
// trigger retries.
func (f *StateFile) Save(st *event.AppState) error {
	path := f.Path()
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return saveFailure(path, err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return saveFailure(path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return saveFailure(path, err)
	}

	f.log.Debug("state saved", "path", path, "events", len(st.Events))
	return nil
}

// Backup copies the current state into backups/tend-YYYY-MM-DD.json and
// returns the backup path. Same-day backups overwrite each other.
func (f *StateFile) Backup(st *event.AppState, date time.Time) (string, error) {
	dir := filepath.Join(f.dir, backupsDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", storageUnavailable(dir, err)
	}

	path := filepath.Join(dir, fmt.Sprintf("tend-%s.json", date.Format("2006-01-02")))
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return "", saveFailure(path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", saveFailure(path, err)
	}

	f.log.Info("backup written", "path", path)
	return path, nil
}
