package derive

import (
	"fmt"
	"time"
)

// selectAnchors ranks pending obligations into the bounded next-actions
// list. This is deliberately simple triage with a fixed precedence order,
// not a scored ranking; the precedence is an observable contract:
//
//  1. glucose anchor if status is low, else the first incomplete step of
//     the primary health ritual
//  2. the first plant at high risk, else the first at medium risk
//  3. the first incomplete step of the self-care ritual
//  4. the work anchor, gated by the catalog's active weekdays
//
// Ties break by catalog iteration order. The result never exceeds
// MaxAnchors entries.
func (d *Deriver) selectAnchors(st *DerivedState, now time.Time) []Anchor {
	anchors := []Anchor{}

	if st.Glucose.Status == GlucoseLow {
		anchors = append(anchors, Anchor{
			Kind:  AnchorGlucose,
			Ref:   "glucose",
			Label: "Glucose is low: take fast carbs and re-measure",
		})
	} else if a, ok := d.ritualStepAnchor(st, d.cat.Anchors.PrimaryRitual); ok {
		anchors = append(anchors, a)
	}

	if a, ok := plantAnchor(st); ok {
		anchors = append(anchors, a)
	}

	if a, ok := d.ritualStepAnchor(st, d.cat.Anchors.SelfCareRitual); ok {
		anchors = append(anchors, a)
	}

	if d.cat.WorkDayActive(now.Weekday()) {
		if a, ok := d.ritualStepAnchor(st, d.cat.Anchors.WorkRitual); ok {
			a.Kind = AnchorWork
			anchors = append(anchors, a)
		}
	}

	if len(anchors) > MaxAnchors {
		anchors = anchors[:MaxAnchors]
	}
	return anchors
}

// ritualStepAnchor surfaces the first incomplete step of a ritual, in
// catalog step order.
func (d *Deriver) ritualStepAnchor(st *DerivedState, ritualID string) (Anchor, bool) {
	rs, ok := st.Rituals[ritualID]
	if !ok {
		return Anchor{}, false
	}
	for i := range rs.Steps {
		if rs.Steps[i].Completed {
			continue
		}
		return Anchor{
			Kind:  AnchorRitualStep,
			Ref:   ritualID + "." + rs.Steps[i].ID,
			Label: fmt.Sprintf("%s: %s", rs.Name, rs.Steps[i].Name),
		}, true
	}
	return Anchor{}, false
}

// plantAnchor surfaces the first high-risk plant, else the first
// medium-risk one, in catalog iteration order.
func plantAnchor(st *DerivedState) (Anchor, bool) {
	for _, want := range []RiskLevel{RiskHigh, RiskMedium} {
		for _, id := range st.plantOrder {
			ps := st.Plants[id]
			if ps.Risk != want {
				continue
			}
			return Anchor{
				Kind:  AnchorPlant,
				Ref:   id,
				Label: fmt.Sprintf("Water %s", ps.Name),
			}, true
		}
	}
	return Anchor{}, false
}
