package derive

import (
	"time"

	"github.com/tendlog/tend/internal/event"
)

// RiskLevel is the watering urgency tier derived from time-to-due.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// GlucoseStatus classifies the most recent glucose reading.
type GlucoseStatus string

const (
	GlucoseUnknown GlucoseStatus = "unknown"
	GlucoseLow     GlucoseStatus = "low"
	GlucoseOptimal GlucoseStatus = "optimal"
	GlucoseHigh    GlucoseStatus = "high"
)

// AnchorKind categorizes a surfaced next action.
type AnchorKind string

const (
	AnchorGlucose    AnchorKind = "glucose"
	AnchorRitualStep AnchorKind = "ritual_step"
	AnchorPlant      AnchorKind = "plant"
	AnchorWork       AnchorKind = "work"
)

// MaxAnchors bounds the anchors list.
const MaxAnchors = 5

// Anchor is one "what needs attention now" entry.
type Anchor struct {
	Kind  AnchorKind `json:"kind"`
	Ref   string     `json:"ref"`
	Label string     `json:"label"`
}

// StepState is the per-step completion flag for one derivation pass.
type StepState struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Completed bool   `json:"completed"`
}

// RitualState is the per-ritual view: step flags plus the ritual-level
// completed flag, which is always the AND over all steps.
type RitualState struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Steps     []StepState `json:"steps"`
	Completed bool        `json:"completed"`
}

// step returns the step with the given id, or nil.
func (r *RitualState) step(id string) *StepState {
	for i := range r.Steps {
		if r.Steps[i].ID == id {
			return &r.Steps[i]
		}
	}
	return nil
}

// recompute refreshes the ritual-level completed flag.
func (r *RitualState) recompute() {
	for i := range r.Steps {
		if !r.Steps[i].Completed {
			r.Completed = false
			return
		}
	}
	r.Completed = true
}

// CompletedSteps counts completed steps.
func (r *RitualState) CompletedSteps() int {
	n := 0
	for i := range r.Steps {
		if r.Steps[i].Completed {
			n++
		}
	}
	return n
}

// PlantState is the per-plant view. NextDue stays zero until the plant has
// been watered at least once; such plants report low risk.
type PlantState struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Profile     event.PlantProfile `json:"profile"`
	LastWatered *time.Time         `json:"last_watered,omitempty"`
	NextDue     time.Time          `json:"next_due,omitzero"`
	Risk        RiskLevel          `json:"risk"`
	IsWinter    bool               `json:"is_winter"`
}

// Reading is a single glucose measurement.
type Reading struct {
	Value float64   `json:"value"`
	TS    time.Time `json:"ts"`
}

// GlucoseSummary carries the last-in-log reading and its classification.
type GlucoseSummary struct {
	Last   *Reading      `json:"last,omitempty"`
	Status GlucoseStatus `json:"status"`
}

// DerivedState is the engine's sole output, recomputed wholesale on every
// append. It is a deterministic pure function of (events, now); only the
// explicitly time-relative fields (Today, Date, risk levels, OverdueCount)
// depend on now.
type DerivedState struct {
	// Today is the localized human date label; Date is the ISO day.
	Today string `json:"today"`
	Date  string `json:"date"`

	Rituals map[string]*RitualState `json:"rituals"`
	Plants  map[string]*PlantState  `json:"plants"`
	Glucose GlucoseSummary          `json:"glucose"`
	Anchors []Anchor                `json:"anchors"`

	// OverdueCount is the number of plants at high risk.
	OverdueCount int `json:"overdue_count"`

	// DevActivity tallies events whose timestamp falls on today.
	DevActivity int `json:"dev_activity"`

	// WorkTasks tallies completed steps of the designated work ritual.
	WorkTasks int `json:"work_tasks"`

	// AsOf is the instant the fold was evaluated against.
	AsOf time.Time `json:"as_of"`

	// ritualOrder and plantOrder preserve catalog iteration order for
	// deterministic rendering and anchor tie-breaking.
	ritualOrder []string
	plantOrder  []string
}

// RitualOrder returns ritual ids in catalog iteration order.
func (s *DerivedState) RitualOrder() []string { return s.ritualOrder }

// PlantOrder returns plant ids in catalog iteration order.
func (s *DerivedState) PlantOrder() []string { return s.plantOrder }
