package harness

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tendlog/tend/internal/event"
)

// Scenario is one conformance case: an event log, a fixed evaluation
// instant, and expectations over the derived state.
type Scenario struct {
	// Name uniquely identifies this scenario; it is also the golden
	// file name.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description,omitempty"`

	// Now is the fixed instant the fold is evaluated against.
	Now time.Time `yaml:"now"`

	// Locale optionally overrides the Today label locale (BCP 47).
	Locale string `yaml:"locale,omitempty"`

	// Seasonal enables the winter/humidity multiplier extension.
	Seasonal bool `yaml:"seasonal,omitempty"`

	// Catalog optionally points at a catalog file, relative to the
	// scenario file. Empty means the embedded default catalog.
	Catalog string `yaml:"catalog,omitempty"`

	// Events is the log to fold, in append order.
	Events []event.Event `yaml:"events"`

	// Expect holds the assertions evaluated after the fold.
	Expect Expect `yaml:"expect"`

	// dir is the scenario file's directory, for resolving Catalog.
	dir string
}

// Expect declares assertions over a derived state. Empty maps and slices
// assert nothing.
type Expect struct {
	// Rituals maps ritual id to the expected ritual-level completed flag.
	Rituals map[string]bool `yaml:"rituals,omitempty"`

	// Steps maps "ritual.step" to the expected step completed flag.
	Steps map[string]bool `yaml:"steps,omitempty"`

	// Plants maps plant id to the expected risk level.
	Plants map[string]string `yaml:"plants,omitempty"`

	// Glucose is the expected classification (unknown/low/optimal/high).
	Glucose string `yaml:"glucose,omitempty"`

	// AnchorKinds is the expected anchors list, by kind, in order.
	AnchorKinds []string `yaml:"anchor_kinds,omitempty"`

	// AnchorRefs is the expected anchors list, by ref, in order.
	AnchorRefs []string `yaml:"anchor_refs,omitempty"`

	// OverdueCount, when non-nil, is the expected overdue plant count.
	OverdueCount *int `yaml:"overdue_count,omitempty"`
}

// LoadScenario reads and validates a scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load scenario: %w", err)
	}

	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	if sc.Name == "" {
		return nil, fmt.Errorf("scenario %s: name is required", path)
	}
	if sc.Now.IsZero() {
		return nil, fmt.Errorf("scenario %s: now is required", path)
	}
	for i, ev := range sc.Events {
		if err := ev.Validate(); err != nil {
			return nil, fmt.Errorf("scenario %s: events[%d]: %w", path, i, err)
		}
	}

	sc.dir = filepath.Dir(path)
	return &sc, nil
}

// LoadScenarioDir loads every *.yaml scenario under dir, sorted by name.
func LoadScenarioDir(dir string) ([]*Scenario, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("load scenarios: %w", err)
	}
	var out []*Scenario
	for _, path := range paths {
		sc, err := LoadScenario(path)
		if err != nil {
			return nil, err
		}
		out = append(out, sc)
	}
	return out, nil
}
