package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tendlog/tend/internal/event"
)

//go:embed default.yaml
var defaultYAML []byte

// Step is one checklist item inside a ritual.
//
// DependsOn ids resolve first against sibling step ids in the same ritual,
// then against ritual ids. An id matching neither is treated as satisfied
// (fail-open): unknown or legacy ids must never permanently block progress.
type Step struct {
	ID        string   `yaml:"id" json:"id"`
	Name      string   `yaml:"name" json:"name"`
	DependsOn []string `yaml:"depends_on,omitempty" json:"depends_on,omitempty"`
}

// Ritual is a named checklist of dependent steps.
type Ritual struct {
	ID        string   `yaml:"id" json:"id"`
	Name      string   `yaml:"name" json:"name"`
	DependsOn []string `yaml:"depends_on,omitempty" json:"depends_on,omitempty"`
	Steps     []Step   `yaml:"steps" json:"steps"`
}

// Plant seeds the plant map with a care profile. Profiles may later be
// overridden by plant_profile_updated events.
type Plant struct {
	ID      string             `yaml:"id" json:"id"`
	Name    string             `yaml:"name" json:"name"`
	Profile event.PlantProfile `yaml:"profile" json:"profile"`
}

// StepRef addresses a step within a ritual.
type StepRef struct {
	Ritual string `yaml:"ritual" json:"ritual"`
	Step   string `yaml:"step" json:"step"`
}

// Alias maps a physical action key to the ritual steps it completes as a
// same-action fan-out. Action keys are "eye_drop:<type>" and "med:<id>".
//
// Aliases are a direct multi-write, not a dependency edge: every alias
// target must be enumerated here explicitly, it is not derivable from the
// dependency graph.
type Alias struct {
	Action  string    `yaml:"action" json:"action"`
	Targets []StepRef `yaml:"targets" json:"targets"`
}

// AnchorPolicy designates the rituals the anchor selector triages and the
// weekdays on which the work anchor may surface.
type AnchorPolicy struct {
	PrimaryRitual  string   `yaml:"primary_ritual" json:"primary_ritual"`
	SelfCareRitual string   `yaml:"self_care_ritual" json:"self_care_ritual"`
	WorkRitual     string   `yaml:"work_ritual,omitempty" json:"work_ritual,omitempty"`
	WorkDays       []string `yaml:"work_days,omitempty" json:"work_days,omitempty"`
}

// Catalog is the full set of domain templates.
//
// Slice order is significant: it is the catalog iteration order used for
// deterministic tie-breaking in the anchor selector.
type Catalog struct {
	Rituals []Ritual     `yaml:"rituals" json:"rituals"`
	Plants  []Plant      `yaml:"plants" json:"plants"`
	Aliases []Alias      `yaml:"aliases,omitempty" json:"aliases,omitempty"`
	Anchors AnchorPolicy `yaml:"anchors" json:"anchors"`
}

// EyeDropAction builds the alias key for an eye drop kind.
func EyeDropAction(drop event.DropType) string {
	return "eye_drop:" + string(drop)
}

// MedAction builds the alias key for a medication id.
func MedAction(medID string) string {
	return "med:" + medID
}

// Ritual returns the ritual with the given id, or nil.
func (c *Catalog) Ritual(id string) *Ritual {
	for i := range c.Rituals {
		if c.Rituals[i].ID == id {
			return &c.Rituals[i]
		}
	}
	return nil
}

// AliasTargets returns the fan-out targets for an action key, or nil.
func (c *Catalog) AliasTargets(action string) []StepRef {
	for i := range c.Aliases {
		if c.Aliases[i].Action == action {
			return c.Aliases[i].Targets
		}
	}
	return nil
}

// WorkDayActive reports whether the work anchor may surface on the given
// weekday. An empty WorkDays list means every day is active.
func (c *Catalog) WorkDayActive(day time.Weekday) bool {
	if len(c.Anchors.WorkDays) == 0 {
		return true
	}
	for _, d := range c.Anchors.WorkDays {
		if d == day.String() {
			return true
		}
	}
	return false
}

// Default returns the embedded default catalog.
//
// The embedded catalog is validated by tests; a parse failure here is a
// build defect, hence the panic.
func Default() *Catalog {
	cat, err := parse(defaultYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded default catalog is invalid: %v", err))
	}
	return cat
}

// LoadFile reads, schema-validates, and parses a user-supplied catalog.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	if err := Validate(path, data); err != nil {
		return nil, err
	}
	return parse(data)
}

func parse(data []byte) (*Catalog, error) {
	var cat Catalog
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	return &cat, nil
}
