package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendlog/tend/internal/event"
)

var fileTS = time.Date(2025, 3, 6, 8, 0, 0, 0, time.UTC)

func testState() *event.AppState {
	st := event.NewAppState()
	st.Meta.UserID = "u-1"
	st.Events = append(st.Events,
		event.NewAppInit(fileTS),
		event.NewGlucoseMeasured(fileTS.Add(time.Hour), 5.4),
	)
	return st
}

func TestStateFileRoundTrip(t *testing.T) {
	f, err := NewStateFile(t.TempDir(), nil)
	require.NoError(t, err)

	require.NoError(t, f.Save(testState()))

	got, found, err := f.Load()
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, testState(), got)
}

func TestLoadMissingFileIsFirstRun(t *testing.T) {
	f, err := NewStateFile(t.TempDir(), nil)
	require.NoError(t, err)

	st, found, err := f.Load()
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, st)
}

func TestLoadCorruptFile(t *testing.T) {
	dir := t.TempDir()
	f, err := NewStateFile(dir, nil)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(f.Path(), []byte("{not json"), 0o644))

	_, _, err = f.Load()
	require.Error(t, err)
	assert.True(t, IsLoadFailure(err))
}

func TestLoadNewerSchemaRejected(t *testing.T) {
	dir := t.TempDir()
	f, err := NewStateFile(dir, nil)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(f.Path(),
		[]byte(`{"schema_version": 99, "events": []}`), 0o644))

	_, _, err = f.Load()
	require.Error(t, err)
	assert.True(t, IsLoadFailure(err))
}

func TestSaveLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	f, err := NewStateFile(dir, nil)
	require.NoError(t, err)
	require.NoError(t, f.Save(testState()))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "tend.json", entries[0].Name())
}

func TestBackupNamingAndContent(t *testing.T) {
	dir := t.TempDir()
	f, err := NewStateFile(dir, nil)
	require.NoError(t, err)

	st := testState()
	path, err := f.Backup(st, time.Date(2025, 3, 6, 23, 59, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "backups", "tend-2025-03-06.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"user_id": "u-1"`)

	// Same-day backups overwrite, not accumulate.
	_, err = f.Backup(st, time.Date(2025, 3, 6, 23, 59, 30, 0, time.UTC))
	require.NoError(t, err)
	entries, err := os.ReadDir(filepath.Join(dir, "backups"))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestStoreErrorPredicates(t *testing.T) {
	assert.True(t, IsStorageUnavailable(storageUnavailable("/x", os.ErrPermission)))
	assert.True(t, IsLoadFailure(loadFailure("/x", os.ErrInvalid)))
	assert.True(t, IsSaveFailure(saveFailure("/x", os.ErrClosed)))

	assert.False(t, IsLoadFailure(saveFailure("/x", os.ErrClosed)))
	assert.False(t, IsLoadFailure(os.ErrNotExist))
	assert.False(t, IsLoadFailure(nil))
}
