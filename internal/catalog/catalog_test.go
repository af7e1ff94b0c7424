package catalog

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendlog/tend/internal/event"
)

func TestDefaultCatalogParses(t *testing.T) {
	cat := Default()

	require.Len(t, cat.Rituals, 4)
	assert.Equal(t, "morning", cat.Rituals[0].ID)
	assert.Equal(t, "work", cat.Rituals[3].ID)

	require.Len(t, cat.Plants, 4)
	assert.Equal(t, "ficus", cat.Plants[0].ID)
	assert.Equal(t, 7, cat.Plants[0].Profile.MinDays)
	assert.Equal(t, 10, cat.Plants[0].Profile.MaxDays)

	assert.Equal(t, "morning", cat.Anchors.PrimaryRitual)
	assert.Equal(t, "evening", cat.Anchors.SelfCareRitual)
	assert.Equal(t, "work", cat.Anchors.WorkRitual)
}

func TestDefaultCatalogMatchesSchema(t *testing.T) {
	require.NoError(t, Validate("default.yaml", defaultYAML))
}

func TestDefaultProfilesAreValid(t *testing.T) {
	for _, p := range Default().Plants {
		assert.NoErrorf(t, p.Profile.Validate(), "plant %s", p.ID)
	}
}

func TestRitualLookup(t *testing.T) {
	cat := Default()

	r := cat.Ritual("eyes")
	require.NotNil(t, r)
	assert.Equal(t, "Eye care", r.Name)

	assert.Nil(t, cat.Ritual("nope"))
}

func TestAliasTargets(t *testing.T) {
	cat := Default()

	targets := cat.AliasTargets(EyeDropAction(event.DropSystane))
	require.Len(t, targets, 2)
	assert.Contains(t, targets, StepRef{Ritual: "morning", Step: "systane"})
	assert.Contains(t, targets, StepRef{Ritual: "eyes", Step: "systane-am"})

	targets = cat.AliasTargets(MedAction("morning-meds"))
	require.Len(t, targets, 1)
	assert.Equal(t, StepRef{Ritual: "morning", Step: "meds"}, targets[0])

	assert.Nil(t, cat.AliasTargets("med:unlisted"))
}

func TestActionKeys(t *testing.T) {
	assert.Equal(t, "eye_drop:systane", EyeDropAction(event.DropSystane))
	assert.Equal(t, "med:morning-meds", MedAction("morning-meds"))
}

func TestWorkDayActive(t *testing.T) {
	cat := Default()
	assert.True(t, cat.WorkDayActive(time.Monday))
	assert.True(t, cat.WorkDayActive(time.Friday))
	assert.False(t, cat.WorkDayActive(time.Saturday))
	assert.False(t, cat.WorkDayActive(time.Sunday))

	// Empty list means every day.
	open := &Catalog{}
	assert.True(t, open.WorkDayActive(time.Sunday))
}

func TestLoadFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, defaultYAML, 0o644))

	cat, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, Default(), cat)
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
