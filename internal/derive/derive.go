package derive

import (
	"time"

	"golang.org/x/text/language"

	"github.com/tendlog/tend/internal/catalog"
	"github.com/tendlog/tend/internal/event"
)

// Deriver folds event logs against a fixed catalog.
//
// A Deriver is immutable after construction and safe for concurrent use;
// all per-pass working state lives inside Derive.
type Deriver struct {
	cat      *catalog.Catalog
	locale   language.Tag
	seasonal bool
}

// Option configures a Deriver.
type Option func(*Deriver)

// WithLocale sets the locale for the Today label. Defaults to English;
// unsupported tags match to the closest supported locale.
func WithLocale(tag language.Tag) Option {
	return func(d *Deriver) {
		d.locale = tag
	}
}

// WithSeasonalAdjustment folds the profile's winter and humidity
// multipliers into next-due computation. Off by default: the baseline
// scheduler uses only the minimum bound of the base interval.
func WithSeasonalAdjustment() Option {
	return func(d *Deriver) {
		d.seasonal = true
	}
}

// New creates a Deriver over the given catalog.
func New(cat *catalog.Catalog, opts ...Option) *Deriver {
	d := &Deriver{
		cat:    cat,
		locale: language.English,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Derive folds the event log into a DerivedState as of now.
//
// The fold is total: events referencing unknown ritual, step, or plant ids
// are no-ops, and no event sequence can make it fail. Events are folded in
// log order; timestamps never reorder them.
func (d *Deriver) Derive(events []event.Event, now time.Time) *DerivedState {
	st := d.seed(now)

	var gated []stepRef
	for _, ev := range events {
		d.apply(st, ev, now, &gated)
		if sameDay(ev.TS, now) {
			st.DevActivity++
		}
	}
	d.settleGated(st, gated)

	d.finishPlants(st, now)
	d.finishGlucose(st)
	st.WorkTasks = d.workTasks(st)
	st.Anchors = d.selectAnchors(st, now)

	return st
}

// seed instantiates fresh working state from the catalog: every ritual
// step uncompleted, every plant unwatered with its seed profile.
func (d *Deriver) seed(now time.Time) *DerivedState {
	st := &DerivedState{
		Today:   dateLabel(now, d.locale),
		Date:    now.Format("2006-01-02"),
		Rituals: make(map[string]*RitualState, len(d.cat.Rituals)),
		Plants:  make(map[string]*PlantState, len(d.cat.Plants)),
		Anchors: []Anchor{},
		Glucose: GlucoseSummary{Status: GlucoseUnknown},
		AsOf:    now,
	}

	for _, tpl := range d.cat.Rituals {
		rs := &RitualState{ID: tpl.ID, Name: tpl.Name, Steps: make([]StepState, len(tpl.Steps))}
		for i, step := range tpl.Steps {
			rs.Steps[i] = StepState{ID: step.ID, Name: step.Name}
		}
		st.Rituals[tpl.ID] = rs
		st.ritualOrder = append(st.ritualOrder, tpl.ID)
	}

	winter := isWinter(now)
	for _, seed := range d.cat.Plants {
		st.Plants[seed.ID] = &PlantState{
			ID:       seed.ID,
			Name:     seed.Name,
			Profile:  seed.Profile,
			Risk:     RiskLow,
			IsWinter: winter,
		}
		st.plantOrder = append(st.plantOrder, seed.ID)
	}

	return st
}

// stepRef is a gated ritual_step_completed event awaiting its
// prerequisites within the same pass.
type stepRef struct {
	ritual string
	step   string
}

// apply folds a single event into the working state.
func (d *Deriver) apply(st *DerivedState, ev event.Event, now time.Time, gated *[]stepRef) {
	switch ev.Type {
	case event.TypeRitualStepCompleted:
		if !d.completeStep(st, ev.RitualID, ev.StepID) {
			*gated = append(*gated, stepRef{ritual: ev.RitualID, step: ev.StepID})
		}
	case event.TypeEyeDropApplied:
		d.applyAlias(st, catalog.EyeDropAction(ev.Drop))
	case event.TypeMedTaken:
		d.applyAlias(st, catalog.MedAction(ev.MedID))
	case event.TypeWateringDone:
		d.waterPlant(st, ev.PlantID, ev.TS, now)
	case event.TypeGlucoseMeasured:
		st.Glucose.Last = &Reading{Value: ev.Value, TS: ev.TS}
	case event.TypePlantProfileUpdated:
		d.updateProfile(st, ev.PlantID, *ev.Profile, now)
	case event.TypeAppInit, event.TypeFocusLost, event.TypeBackupCreated:
		// Fold no-ops beyond the activity tally.
	}
}

// completeStep handles ritual_step_completed: the step transitions to
// completed only if its dependencies are met at this point in the pass.
// Returns false when the gate is unmet, so the caller can queue the event
// for settleGated. Events naming unknown rituals or steps are plain
// no-ops and report true.
func (d *Deriver) completeStep(st *DerivedState, ritualID, stepID string) bool {
	rs, ok := st.Rituals[ritualID]
	if !ok {
		return true
	}
	step := rs.step(stepID)
	if step == nil || step.Completed {
		return true
	}
	tpl := d.cat.Ritual(ritualID)
	if tpl == nil {
		return true
	}
	if !d.dependenciesMet(st, tpl, stepID) {
		return false
	}
	step.Completed = true
	rs.recompute()
	return true
}

// settleGated re-sweeps gated step events until a fixpoint. A gated event
// is a no-op, not an error: the same event unlocks retroactively within a
// pass once other events in the log populate its prerequisites. Steps
// whose dependencies are never met anywhere in the log stay uncompleted.
func (d *Deriver) settleGated(st *DerivedState, gated []stepRef) {
	for progress := true; progress; {
		progress = false
		remaining := gated[:0]
		for _, ref := range gated {
			if d.completeStep(st, ref.ritual, ref.step) {
				progress = true
				continue
			}
			remaining = append(remaining, ref)
		}
		gated = remaining
	}
}

// dependenciesMet resolves each dependency id first against sibling step
// ids in the same ritual (satisfied iff that step is completed in this
// pass), then against ritual ids (satisfied iff fully completed). An id
// matching neither is trivially satisfied: fail-open, so unknown or legacy
// ids never permanently block progress.
//
// Ritual-level dependencies gate every step of the owning ritual.
func (d *Deriver) dependenciesMet(st *DerivedState, tpl *catalog.Ritual, stepID string) bool {
	for _, dep := range tpl.DependsOn {
		if other, ok := st.Rituals[dep]; ok && !other.Completed {
			return false
		}
	}

	owner := st.Rituals[tpl.ID]
	var deps []string
	for _, s := range tpl.Steps {
		if s.ID == stepID {
			deps = s.DependsOn
			break
		}
	}
	for _, dep := range deps {
		if sibling := owner.step(dep); sibling != nil {
			if !sibling.Completed {
				return false
			}
			continue
		}
		if other, ok := st.Rituals[dep]; ok {
			if !other.Completed {
				return false
			}
			continue
		}
		// Unknown id: trivially satisfied.
	}
	return true
}

// applyAlias fans one physical action out to every catalog target step.
// This is a direct multi-write: target steps complete without dependency
// checking, since the physical act already happened.
func (d *Deriver) applyAlias(st *DerivedState, action string) {
	for _, ref := range d.cat.AliasTargets(action) {
		rs, ok := st.Rituals[ref.Ritual]
		if !ok {
			continue
		}
		step := rs.step(ref.Step)
		if step == nil || step.Completed {
			continue
		}
		step.Completed = true
		rs.recompute()
	}
}

// workTasks counts completed steps of the designated work ritual.
func (d *Deriver) workTasks(st *DerivedState) int {
	rs, ok := st.Rituals[d.cat.Anchors.WorkRitual]
	if !ok {
		return 0
	}
	return rs.CompletedSteps()
}

// sameDay reports whether ts falls on now's calendar day, evaluated in
// now's location.
func sameDay(ts, now time.Time) bool {
	y1, m1, d1 := ts.In(now.Location()).Date()
	y2, m2, d2 := now.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
