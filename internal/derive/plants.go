package derive

import (
	"time"

	"github.com/tendlog/tend/internal/event"
)

// mediumWindow is how close to next-due a plant must be before its risk
// escalates from low to medium.
const mediumWindow = 12 * time.Hour

// waterPlant handles watering_done: stamp last-watered and reschedule.
func (d *Deriver) waterPlant(st *DerivedState, plantID string, ts, now time.Time) {
	ps, ok := st.Plants[plantID]
	if !ok {
		return
	}
	watered := ts
	ps.LastWatered = &watered
	ps.NextDue = watered.Add(d.interval(ps.Profile, now))
}

// updateProfile handles plant_profile_updated: the override applies to all
// subsequent derivation, so an already-watered plant is rescheduled.
func (d *Deriver) updateProfile(st *DerivedState, plantID string, profile event.PlantProfile, now time.Time) {
	ps, ok := st.Plants[plantID]
	if !ok {
		return
	}
	ps.Profile = profile
	if ps.LastWatered != nil {
		ps.NextDue = ps.LastWatered.Add(d.interval(profile, now))
	}
}

// interval computes the watering interval from a profile.
//
// Baseline behavior folds only the minimum bound of the base interval into
// next-due. The winter and humidity multipliers apply only under
// WithSeasonalAdjustment; winter is evaluated against now, not against the
// watering timestamp.
func (d *Deriver) interval(p event.PlantProfile, now time.Time) time.Duration {
	days := float64(p.MinDays)
	if d.seasonal {
		if isWinter(now) && p.WinterMultiplier > 0 {
			days *= p.WinterMultiplier
		}
		if p.HumidityMultiplier > 0 {
			days *= p.HumidityMultiplier
		}
	}
	return time.Duration(days * float64(24*time.Hour))
}

// finishPlants recomputes risk for every plant relative to now. Risk is
// re-evaluated on every pass, not just for the watered plant, since now
// advances independent of events.
func (d *Deriver) finishPlants(st *DerivedState, now time.Time) {
	st.OverdueCount = 0
	for _, id := range st.plantOrder {
		ps := st.Plants[id]
		ps.Risk = riskAt(ps, now)
		if ps.Risk == RiskHigh {
			st.OverdueCount++
		}
	}
}

// riskAt classifies a single plant: high once now is past next-due, medium
// within twelve hours of it, low otherwise. A plant never watered has no
// schedule yet and stays low.
func riskAt(ps *PlantState, now time.Time) RiskLevel {
	if ps.LastWatered == nil || ps.NextDue.IsZero() {
		return RiskLow
	}
	if now.After(ps.NextDue) {
		return RiskHigh
	}
	if ps.NextDue.Sub(now) <= mediumWindow {
		return RiskMedium
	}
	return RiskLow
}

// isWinter reports the heating-season months: November through February.
func isWinter(now time.Time) bool {
	switch now.Month() {
	case time.November, time.December, time.January, time.February:
		return true
	default:
		return false
	}
}
