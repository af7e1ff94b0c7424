package derive

import (
	"fmt"
	"strings"
)

// RenderText produces a deterministic plain-text snapshot of the state.
// Used by the status command and by golden-file conformance tests, so the
// layout must stay byte-stable for a given (events, now) input.
func (s *DerivedState) RenderText() string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s (%s)\n", s.Today, s.Date)
	b.WriteString("\n")

	if s.Glucose.Last == nil {
		fmt.Fprintf(&b, "glucose: none [%s]\n", s.Glucose.Status)
	} else {
		fmt.Fprintf(&b, "glucose: %.1f mmol/L [%s]\n", s.Glucose.Last.Value, s.Glucose.Status)
	}
	b.WriteString("\n")

	if len(s.Anchors) == 0 {
		b.WriteString("anchors: none\n")
	} else {
		fmt.Fprintf(&b, "anchors (%d):\n", len(s.Anchors))
		for i, a := range s.Anchors {
			fmt.Fprintf(&b, "  %d. [%s] %s\n", i+1, a.Kind, a.Label)
		}
	}
	b.WriteString("\n")

	b.WriteString("rituals:\n")
	for _, id := range s.ritualOrder {
		rs := s.Rituals[id]
		fmt.Fprintf(&b, "  %s %s (%s) %d/%d\n",
			mark(rs.Completed), rs.ID, rs.Name, rs.CompletedSteps(), len(rs.Steps))
		for i := range rs.Steps {
			step := rs.Steps[i]
			fmt.Fprintf(&b, "      %s %s: %s\n", mark(step.Completed), step.ID, step.Name)
		}
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "plants (overdue %d):\n", s.OverdueCount)
	for _, id := range s.plantOrder {
		ps := s.Plants[id]
		due := "-"
		if !ps.NextDue.IsZero() {
			due = ps.NextDue.UTC().Format("2006-01-02 15:04")
		}
		fmt.Fprintf(&b, "  [%s] %s (%s) due %s\n", ps.Risk, ps.ID, ps.Name, due)
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "activity: today %d events, work tasks %d\n", s.DevActivity, s.WorkTasks)

	return b.String()
}

func mark(done bool) string {
	if done {
		return "[x]"
	}
	return "[ ]"
}
