package harness

import (
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/text/language"

	"github.com/tendlog/tend/internal/catalog"
	"github.com/tendlog/tend/internal/derive"
)

// Result is the outcome of running a scenario.
type Result struct {
	Scenario string
	Pass     bool
	Errors   []string
}

// Run folds the scenario's events at its fixed instant and evaluates every
// expectation. All failures are collected, never fail-fast.
func Run(sc *Scenario) (*Result, *derive.DerivedState, error) {
	cat := catalog.Default()
	if sc.Catalog != "" {
		loaded, err := catalog.LoadFile(filepath.Join(sc.dir, sc.Catalog))
		if err != nil {
			return nil, nil, fmt.Errorf("scenario %s: %w", sc.Name, err)
		}
		cat = loaded
	}

	opts := []derive.Option{}
	if sc.Locale != "" {
		tag, err := language.Parse(sc.Locale)
		if err != nil {
			return nil, nil, fmt.Errorf("scenario %s: locale: %w", sc.Name, err)
		}
		opts = append(opts, derive.WithLocale(tag))
	}
	if sc.Seasonal {
		opts = append(opts, derive.WithSeasonalAdjustment())
	}

	st := derive.New(cat, opts...).Derive(sc.Events, sc.Now)

	res := &Result{Scenario: sc.Name, Pass: true}
	check(res, sc.Expect, st)
	return res, st, nil
}

func check(res *Result, exp Expect, st *derive.DerivedState) {
	fail := func(format string, args ...any) {
		res.Pass = false
		res.Errors = append(res.Errors, fmt.Sprintf(format, args...))
	}

	for id, want := range exp.Rituals {
		rs, ok := st.Rituals[id]
		if !ok {
			fail("ritual %s: not in derived state", id)
			continue
		}
		if rs.Completed != want {
			fail("ritual %s: completed = %v, want %v", id, rs.Completed, want)
		}
	}

	for ref, want := range exp.Steps {
		ritualID, stepID, ok := strings.Cut(ref, ".")
		if !ok {
			fail("step ref %q: want ritual.step", ref)
			continue
		}
		rs, ok := st.Rituals[ritualID]
		if !ok {
			fail("step %s: ritual not in derived state", ref)
			continue
		}
		found := false
		for i := range rs.Steps {
			if rs.Steps[i].ID == stepID {
				found = true
				if rs.Steps[i].Completed != want {
					fail("step %s: completed = %v, want %v", ref, rs.Steps[i].Completed, want)
				}
				break
			}
		}
		if !found {
			fail("step %s: step not in ritual", ref)
		}
	}

	for id, want := range exp.Plants {
		ps, ok := st.Plants[id]
		if !ok {
			fail("plant %s: not in derived state", id)
			continue
		}
		if string(ps.Risk) != want {
			fail("plant %s: risk = %s, want %s", id, ps.Risk, want)
		}
	}

	if exp.Glucose != "" && string(st.Glucose.Status) != exp.Glucose {
		fail("glucose: status = %s, want %s", st.Glucose.Status, exp.Glucose)
	}

	if exp.AnchorKinds != nil {
		got := make([]string, len(st.Anchors))
		for i, a := range st.Anchors {
			got[i] = string(a.Kind)
		}
		if strings.Join(got, ",") != strings.Join(exp.AnchorKinds, ",") {
			fail("anchors: kinds = [%s], want [%s]",
				strings.Join(got, ", "), strings.Join(exp.AnchorKinds, ", "))
		}
	}

	if exp.AnchorRefs != nil {
		got := make([]string, len(st.Anchors))
		for i, a := range st.Anchors {
			got[i] = a.Ref
		}
		if strings.Join(got, ",") != strings.Join(exp.AnchorRefs, ",") {
			fail("anchors: refs = [%s], want [%s]",
				strings.Join(got, ", "), strings.Join(exp.AnchorRefs, ", "))
		}
	}

	if len(st.Anchors) > derive.MaxAnchors {
		fail("anchors: %d entries exceeds cap %d", len(st.Anchors), derive.MaxAnchors)
	}

	if exp.OverdueCount != nil && st.OverdueCount != *exp.OverdueCount {
		fail("overdue_count = %d, want %d", st.OverdueCount, *exp.OverdueCount)
	}
}
