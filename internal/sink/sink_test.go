package sink

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendlog/tend/internal/catalog"
	"github.com/tendlog/tend/internal/derive"
	"github.com/tendlog/tend/internal/event"
	"github.com/tendlog/tend/internal/testutil"
)

var sinkNow = time.Date(2025, 3, 6, 12, 0, 0, 0, time.UTC)

func newTestSink(t *testing.T, st *event.AppState) (*Sink, *testutil.FixedClock) {
	t.Helper()
	clock := testutil.NewFixedClock(sinkNow)
	s := New(st, derive.New(catalog.Default()), WithClock(clock.Now))
	return s, clock
}

func TestFreshStateAutoInit(t *testing.T) {
	s, _ := newTestSink(t, nil)

	st := s.AppState()
	require.Len(t, st.Events, 1)
	assert.Equal(t, event.TypeAppInit, st.Events[0].Type)
	assert.Equal(t, sinkNow, st.Events[0].TS)
	assert.NotEmpty(t, st.Meta.UserID, "fresh state mints a user id")
	assert.Equal(t, event.CurrentSchemaVersion, st.SchemaVersion)
	require.NotNil(t, s.DerivedState())
}

func TestLoadedEmptyLogAlsoGetsInit(t *testing.T) {
	st := event.NewAppState()
	st.Meta.UserID = "u-existing"

	s, _ := newTestSink(t, st)
	got := s.AppState()
	require.Len(t, got.Events, 1)
	assert.Equal(t, event.TypeAppInit, got.Events[0].Type)
	assert.Equal(t, "u-existing", got.Meta.UserID, "existing identity is preserved")
}

func TestLoadedStateDoesNotReInit(t *testing.T) {
	st := event.NewAppState()
	st.Meta.UserID = "u-1"
	st.Events = append(st.Events, event.NewAppInit(sinkNow.Add(-24*time.Hour)))

	s, _ := newTestSink(t, st)
	assert.Len(t, s.AppState().Events, 1)
}

func TestAppendUpdatesDerivedState(t *testing.T) {
	s, _ := newTestSink(t, nil)

	require.NoError(t, s.Append(event.NewRitualStepCompleted(sinkNow, "morning", "meds")))

	d := s.DerivedState()
	assert.True(t, d.Rituals["morning"].Steps[0].Completed)
	assert.Len(t, s.AppState().Events, 2)
}

func TestAppendRejectsInvalidEvent(t *testing.T) {
	s, _ := newTestSink(t, nil)
	before := s.AppState()
	beforeDerived := s.DerivedState()

	var fired bool
	s.SubscribeEvents(func(event.Event) { fired = true })

	err := s.Append(event.Event{Type: "bogus", TS: sinkNow})
	require.Error(t, err)
	assert.True(t, event.IsValidationError(err))

	assert.Equal(t, before, s.AppState(), "log must stay unmodified on rejection")
	assert.Same(t, beforeDerived, s.DerivedState())
	assert.False(t, fired, "no listener fires on rejection")
}

func TestListenerOrdering(t *testing.T) {
	s, _ := newTestSink(t, nil)

	var order []string
	s.SubscribeEvents(func(ev event.Event) { order = append(order, "event-a") })
	s.SubscribeEvents(func(ev event.Event) { order = append(order, "event-b") })
	s.SubscribeState(func(*derive.DerivedState) { order = append(order, "state-a") })
	s.SubscribeState(func(*derive.DerivedState) { order = append(order, "state-b") })

	require.NoError(t, s.Append(event.NewFocusLost(sinkNow)))

	assert.Equal(t, []string{"event-a", "event-b", "state-a", "state-b"}, order,
		"event listeners fire before state listeners, each in subscription order")
}

func TestUnsubscribe(t *testing.T) {
	s, _ := newTestSink(t, nil)

	var calls int
	unsub := s.SubscribeEvents(func(event.Event) { calls++ })

	require.NoError(t, s.Append(event.NewFocusLost(sinkNow)))
	unsub()
	require.NoError(t, s.Append(event.NewFocusLost(sinkNow)))

	assert.Equal(t, 1, calls)
}

func TestUnsubscribeFromWithinListener(t *testing.T) {
	s, _ := newTestSink(t, nil)

	var calls int
	var unsub func()
	unsub = s.SubscribeEvents(func(event.Event) {
		calls++
		unsub()
	})

	require.NoError(t, s.Append(event.NewFocusLost(sinkNow)))
	require.NoError(t, s.Append(event.NewFocusLost(sinkNow)))
	assert.Equal(t, 1, calls, "self-removal takes effect for subsequent appends")
}

func TestStateListenerSeesFreshDerivation(t *testing.T) {
	s, _ := newTestSink(t, nil)

	var seen *derive.DerivedState
	s.SubscribeState(func(d *derive.DerivedState) { seen = d })

	require.NoError(t, s.Append(event.NewGlucoseMeasured(sinkNow, 3.0)))

	require.NotNil(t, seen)
	assert.Equal(t, derive.GlucoseLow, seen.Glucose.Status)
	assert.Same(t, s.DerivedState(), seen)
}

func TestBackupEventStampsMeta(t *testing.T) {
	s, _ := newTestSink(t, nil)
	backupTS := sinkNow.Add(time.Minute)

	require.NoError(t, s.Append(event.NewBackupCreated(backupTS, "/backups/tend-2025-03-06.json")))

	st := s.AppState()
	require.NotNil(t, st.Meta.LastBackup)
	assert.Equal(t, backupTS, *st.Meta.LastBackup)
}

func TestClockAdvancesDerivation(t *testing.T) {
	s, clock := newTestSink(t, nil)

	require.NoError(t, s.Append(event.NewWateringDone(sinkNow, "ficus")))
	assert.Equal(t, derive.RiskLow, s.DerivedState().Plants["ficus"].Risk)

	// Eight days later the same log derives an overdue plant.
	clock.Advance(8 * 24 * time.Hour)
	require.NoError(t, s.Append(event.NewFocusLost(clock.Now())))
	assert.Equal(t, derive.RiskHigh, s.DerivedState().Plants["ficus"].Risk)
}

func TestAppStateReturnsCopy(t *testing.T) {
	s, _ := newTestSink(t, nil)

	st := s.AppState()
	st.Events = append(st.Events, event.NewFocusLost(sinkNow))
	st.Meta.UserID = "tampered"

	fresh := s.AppState()
	assert.Len(t, fresh.Events, 1)
	assert.NotEqual(t, "tampered", fresh.Meta.UserID)
}

func TestDeviceLabelOnFreshState(t *testing.T) {
	clock := testutil.NewFixedClock(sinkNow)
	s := New(nil, derive.New(catalog.Default()), WithClock(clock.Now), WithDevice("laptop"))
	assert.Equal(t, "laptop", s.AppState().Meta.Device)

	// An existing label wins over the option.
	st := event.NewAppState()
	st.Meta.UserID = "u-1"
	st.Meta.Device = "desktop"
	st.Events = append(st.Events, event.NewAppInit(sinkNow))
	s = New(st, derive.New(catalog.Default()), WithClock(clock.Now), WithDevice("laptop"))
	assert.Equal(t, "desktop", s.AppState().Meta.Device)
}
