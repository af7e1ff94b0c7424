package derive

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendlog/tend/internal/catalog"
	"github.com/tendlog/tend/internal/event"
)

var (
	baseTS  = time.Date(2025, 3, 6, 8, 0, 0, 0, time.UTC)  // Thursday
	baseNow = time.Date(2025, 3, 6, 12, 0, 0, 0, time.UTC) // Thursday noon
)

// testCatalog is a small fixed catalog so tests control the dependency
// graph independently of the embedded default.
func testCatalog() *catalog.Catalog {
	return &catalog.Catalog{
		Rituals: []catalog.Ritual{
			{ID: "morning", Name: "Morning", Steps: []catalog.Step{
				{ID: "meds", Name: "Meds"},
				{ID: "drops", Name: "Drops", DependsOn: []string{"meds"}},
				{ID: "breakfast", Name: "Breakfast", DependsOn: []string{"meds", "drops"}},
			}},
			{ID: "evening", Name: "Evening", DependsOn: []string{"morning"}, Steps: []catalog.Step{
				{ID: "teeth", Name: "Teeth"},
			}},
			{ID: "work", Name: "Work", Steps: []catalog.Step{
				{ID: "standup", Name: "Standup"},
				{ID: "review", Name: "Review", DependsOn: []string{"standup"}},
			}},
		},
		Plants: []catalog.Plant{
			{ID: "ficus", Name: "Ficus", Profile: event.PlantProfile{
				MinDays: 7, MaxDays: 10, WinterMultiplier: 1.5, Criticality: 3}},
			{ID: "fern", Name: "Fern", Profile: event.PlantProfile{
				MinDays: 3, MaxDays: 5, WinterMultiplier: 1.2, HumidityMultiplier: 1.5, Criticality: 2}},
		},
		Aliases: []catalog.Alias{
			{Action: "eye_drop:systane", Targets: []catalog.StepRef{
				{Ritual: "morning", Step: "drops"},
			}},
		},
		Anchors: catalog.AnchorPolicy{
			PrimaryRitual:  "morning",
			SelfCareRitual: "evening",
			WorkRitual:     "work",
			WorkDays:       []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"},
		},
	}
}

func TestDeriveEmptyLog(t *testing.T) {
	st := New(testCatalog()).Derive(nil, baseNow)

	for id, rs := range st.Rituals {
		assert.False(t, rs.Completed, "ritual %s should start incomplete", id)
		for _, step := range rs.Steps {
			assert.False(t, step.Completed, "step %s.%s should start incomplete", id, step.ID)
		}
	}
	for id, ps := range st.Plants {
		assert.Equal(t, RiskLow, ps.Risk, "plant %s should start low", id)
		assert.True(t, ps.NextDue.IsZero(), "plant %s has no schedule yet", id)
	}
	assert.Equal(t, GlucoseUnknown, st.Glucose.Status)
	assert.Equal(t, 0, st.OverdueCount)
}

func TestDeriveDeterminism(t *testing.T) {
	d := New(testCatalog())
	events := []event.Event{
		event.NewAppInit(baseTS),
		event.NewRitualStepCompleted(baseTS.Add(5*time.Minute), "morning", "meds"),
		event.NewEyeDropApplied(baseTS.Add(10*time.Minute), event.DropSystane),
		event.NewWateringDone(baseTS.Add(15*time.Minute), "ficus"),
		event.NewGlucoseMeasured(baseTS.Add(20*time.Minute), 5.4),
	}

	first, err := json.Marshal(d.Derive(events, baseNow))
	require.NoError(t, err)
	second, err := json.Marshal(d.Derive(events, baseNow))
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
}

func TestDependencyGating(t *testing.T) {
	d := New(testCatalog())

	// breakfast depends on meds and drops; neither is done.
	st := d.Derive([]event.Event{
		event.NewRitualStepCompleted(baseTS, "morning", "breakfast"),
	}, baseNow)
	assert.False(t, st.Rituals["morning"].Steps[2].Completed, "gated step must stay incomplete")

	// meds done but drops still missing.
	st = d.Derive([]event.Event{
		event.NewRitualStepCompleted(baseTS, "morning", "meds"),
		event.NewRitualStepCompleted(baseTS.Add(time.Minute), "morning", "breakfast"),
	}, baseNow)
	assert.False(t, st.Rituals["morning"].Steps[2].Completed)

	// Full chain in order completes everything.
	st = d.Derive([]event.Event{
		event.NewRitualStepCompleted(baseTS, "morning", "meds"),
		event.NewRitualStepCompleted(baseTS.Add(time.Minute), "morning", "drops"),
		event.NewRitualStepCompleted(baseTS.Add(2*time.Minute), "morning", "breakfast"),
	}, baseNow)
	assert.True(t, st.Rituals["morning"].Completed)
}

func TestGatedStepUnlocksRetroactively(t *testing.T) {
	// The breakfast event sits earlier in the log than its prerequisites.
	// Re-folding must still satisfy it once the prerequisites complete
	// within the same pass.
	st := New(testCatalog()).Derive([]event.Event{
		event.NewRitualStepCompleted(baseTS, "morning", "breakfast"),
		event.NewRitualStepCompleted(baseTS.Add(time.Minute), "morning", "meds"),
		event.NewRitualStepCompleted(baseTS.Add(2*time.Minute), "morning", "drops"),
	}, baseNow)

	assert.True(t, st.Rituals["morning"].step("breakfast").Completed)
	assert.True(t, st.Rituals["morning"].Completed)
}

func TestUnknownDependencyFailOpen(t *testing.T) {
	cat := testCatalog()
	cat.Rituals[0].Steps = append(cat.Rituals[0].Steps, catalog.Step{
		ID: "vitamins", Name: "Vitamins", DependsOn: []string{"no-such-step"},
	})

	st := New(cat).Derive([]event.Event{
		event.NewRitualStepCompleted(baseTS, "morning", "vitamins"),
	}, baseNow)

	assert.True(t, st.Rituals["morning"].step("vitamins").Completed,
		"unknown dependency ids must never block progress")
}

func TestRitualLevelDependency(t *testing.T) {
	d := New(testCatalog())

	// evening depends on morning being fully completed.
	st := d.Derive([]event.Event{
		event.NewRitualStepCompleted(baseTS, "evening", "teeth"),
	}, baseNow)
	assert.False(t, st.Rituals["evening"].step("teeth").Completed)

	st = d.Derive([]event.Event{
		event.NewRitualStepCompleted(baseTS, "morning", "meds"),
		event.NewRitualStepCompleted(baseTS, "morning", "drops"),
		event.NewRitualStepCompleted(baseTS, "morning", "breakfast"),
		event.NewRitualStepCompleted(baseTS, "evening", "teeth"),
	}, baseNow)
	assert.True(t, st.Rituals["evening"].Completed)
}

func TestRitualCompletionIsANDOverSteps(t *testing.T) {
	d := New(testCatalog())

	st := d.Derive([]event.Event{
		event.NewRitualStepCompleted(baseTS, "work", "standup"),
	}, baseNow)
	assert.False(t, st.Rituals["work"].Completed)

	st = d.Derive([]event.Event{
		event.NewRitualStepCompleted(baseTS, "work", "standup"),
		event.NewRitualStepCompleted(baseTS, "work", "review"),
	}, baseNow)
	assert.True(t, st.Rituals["work"].Completed)
}

func TestMonotonicCompletion(t *testing.T) {
	d := New(testCatalog())
	events := []event.Event{
		event.NewRitualStepCompleted(baseTS, "morning", "meds"),
	}
	st := d.Derive(events, baseNow)
	require.True(t, st.Rituals["morning"].step("meds").Completed)

	// No event variant can uncomplete a step; appending more of anything
	// keeps the flag set.
	events = append(events,
		event.NewFocusLost(baseTS.Add(time.Hour)),
		event.NewRitualStepCompleted(baseTS.Add(2*time.Hour), "morning", "meds"),
		event.NewGlucoseMeasured(baseTS.Add(3*time.Hour), 5.0),
	)
	st = d.Derive(events, baseNow)
	assert.True(t, st.Rituals["morning"].step("meds").Completed)
}

func TestAliasFanOutBypassesDependencies(t *testing.T) {
	// morning.drops depends on meds, but the systane alias is a direct
	// multi-write: the physical act already happened.
	st := New(testCatalog()).Derive([]event.Event{
		event.NewEyeDropApplied(baseTS, event.DropSystane),
	}, baseNow)

	assert.True(t, st.Rituals["morning"].step("drops").Completed)
	assert.False(t, st.Rituals["morning"].step("meds").Completed)
}

func TestUnknownIDsAreNoOps(t *testing.T) {
	d := New(testCatalog())
	st := d.Derive([]event.Event{
		event.NewRitualStepCompleted(baseTS, "ghost-ritual", "step"),
		event.NewRitualStepCompleted(baseTS, "morning", "ghost-step"),
		event.NewWateringDone(baseTS, "ghost-plant"),
		event.NewPlantProfileUpdated(baseTS, "ghost-plant", event.PlantProfile{
			MinDays: 1, MaxDays: 2, WinterMultiplier: 1, Criticality: 1}),
		event.NewMedTaken(baseTS, "unaliased-med", ""),
	}, baseNow)

	empty := New(testCatalog()).Derive(nil, baseNow)
	assert.Equal(t, empty.Rituals, st.Rituals)
	assert.Equal(t, empty.Plants, st.Plants)
}

func TestActivityCounters(t *testing.T) {
	d := New(testCatalog())
	st := d.Derive([]event.Event{
		event.NewFocusLost(baseNow.AddDate(0, 0, -1)), // yesterday
		event.NewFocusLost(baseTS),                    // today
		event.NewRitualStepCompleted(baseTS, "work", "standup"),
		event.NewRitualStepCompleted(baseTS, "work", "review"),
	}, baseNow)

	assert.Equal(t, 3, st.DevActivity, "only today's events count")
	assert.Equal(t, 2, st.WorkTasks)
}

func TestLastGlucoseReadingWins(t *testing.T) {
	st := New(testCatalog()).Derive([]event.Event{
		event.NewGlucoseMeasured(baseTS, 3.1),
		event.NewGlucoseMeasured(baseTS.Add(time.Hour), 5.2),
	}, baseNow)

	require.NotNil(t, st.Glucose.Last)
	assert.Equal(t, 5.2, st.Glucose.Last.Value)
	assert.Equal(t, GlucoseOptimal, st.Glucose.Status)
}
