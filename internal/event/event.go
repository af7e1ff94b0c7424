package event

import (
	"time"
)

// Type identifies an event variant.
type Type string

const (
	// TypeAppInit marks the first launch of the app. Exactly one is
	// appended automatically when the log is empty at startup.
	TypeAppInit Type = "app_init"

	// TypeRitualStepCompleted records completion of a single ritual step.
	TypeRitualStepCompleted Type = "ritual_step_completed"

	// TypeMedTaken records a medication intake, with an optional dose.
	TypeMedTaken Type = "med_taken"

	// TypeEyeDropApplied records applying eye drops of a specific kind.
	TypeEyeDropApplied Type = "eye_drop_applied"

	// TypeWateringDone records watering a plant.
	TypeWateringDone Type = "watering_done"

	// TypeGlucoseMeasured records a blood glucose reading in mmol/L.
	TypeGlucoseMeasured Type = "glucose_measured"

	// TypePlantProfileUpdated overrides a plant's care profile for all
	// subsequent derivations.
	TypePlantProfileUpdated Type = "plant_profile_updated"

	// TypeFocusLost records the app losing focus. Fold no-op beyond the
	// activity tally.
	TypeFocusLost Type = "focus_lost"

	// TypeBackupCreated records that a backup copy of the state was written.
	TypeBackupCreated Type = "backup_created"
)

// KnownTypes lists every recognized event variant.
var KnownTypes = map[Type]bool{
	TypeAppInit:             true,
	TypeRitualStepCompleted: true,
	TypeMedTaken:            true,
	TypeEyeDropApplied:      true,
	TypeWateringDone:        true,
	TypeGlucoseMeasured:     true,
	TypePlantProfileUpdated: true,
	TypeFocusLost:           true,
	TypeBackupCreated:       true,
}

// DropType enumerates the supported eye drop kinds.
type DropType string

const (
	DropSystane  DropType = "systane"
	DropEmoxipin DropType = "emoxipin"
	DropMidramax DropType = "midramax"
)

// KnownDropTypes lists every recognized drop kind.
var KnownDropTypes = map[DropType]bool{
	DropSystane:  true,
	DropEmoxipin: true,
	DropMidramax: true,
}

// PlantProfile describes the care parameters for a plant.
//
// BaseInterval is expressed as an inclusive [MinDays, MaxDays] range. The
// scheduler folds only MinDays into next-due computation; the multipliers
// are an extension point applied only when seasonal adjustment is enabled.
type PlantProfile struct {
	MinDays            int     `json:"min_days" yaml:"min_days"`
	MaxDays            int     `json:"max_days" yaml:"max_days"`
	WinterMultiplier   float64 `json:"winter_multiplier" yaml:"winter_multiplier"`
	HumidityMultiplier float64 `json:"humidity_multiplier,omitempty" yaml:"humidity_multiplier,omitempty"`
	Criticality        int     `json:"criticality" yaml:"criticality"`
}

// Event is a tagged union: Type selects the variant, TS is the wall-clock
// timestamp, and the remaining fields are variant-specific. Unused fields
// stay zero and are omitted from serialization.
//
// Events are value types. Once appended to a log they are never mutated,
// removed, or reordered.
type Event struct {
	Type Type      `json:"type" yaml:"type"`
	TS   time.Time `json:"ts" yaml:"ts"`

	// ritual_step_completed
	RitualID string `json:"ritual_id,omitempty" yaml:"ritual_id,omitempty"`
	StepID   string `json:"step_id,omitempty" yaml:"step_id,omitempty"`

	// med_taken
	MedID string `json:"med_id,omitempty" yaml:"med_id,omitempty"`
	Dose  string `json:"dose,omitempty" yaml:"dose,omitempty"`

	// eye_drop_applied
	Drop DropType `json:"drop_type,omitempty" yaml:"drop_type,omitempty"`

	// watering_done, plant_profile_updated
	PlantID string        `json:"plant_id,omitempty" yaml:"plant_id,omitempty"`
	Profile *PlantProfile `json:"profile,omitempty" yaml:"profile,omitempty"`

	// glucose_measured
	Value float64 `json:"value,omitempty" yaml:"value,omitempty"`

	// backup_created
	Path string `json:"path,omitempty" yaml:"path,omitempty"`
}

// NewAppInit creates an app_init event.
func NewAppInit(ts time.Time) Event {
	return Event{Type: TypeAppInit, TS: ts}
}

// NewRitualStepCompleted creates a ritual_step_completed event.
func NewRitualStepCompleted(ts time.Time, ritualID, stepID string) Event {
	return Event{Type: TypeRitualStepCompleted, TS: ts, RitualID: ritualID, StepID: stepID}
}

// NewMedTaken creates a med_taken event. Dose may be empty.
func NewMedTaken(ts time.Time, medID, dose string) Event {
	return Event{Type: TypeMedTaken, TS: ts, MedID: medID, Dose: dose}
}

// NewEyeDropApplied creates an eye_drop_applied event.
func NewEyeDropApplied(ts time.Time, drop DropType) Event {
	return Event{Type: TypeEyeDropApplied, TS: ts, Drop: drop}
}

// NewWateringDone creates a watering_done event.
func NewWateringDone(ts time.Time, plantID string) Event {
	return Event{Type: TypeWateringDone, TS: ts, PlantID: plantID}
}

// NewGlucoseMeasured creates a glucose_measured event.
func NewGlucoseMeasured(ts time.Time, value float64) Event {
	return Event{Type: TypeGlucoseMeasured, TS: ts, Value: value}
}

// NewPlantProfileUpdated creates a plant_profile_updated event.
func NewPlantProfileUpdated(ts time.Time, plantID string, profile PlantProfile) Event {
	return Event{Type: TypePlantProfileUpdated, TS: ts, PlantID: plantID, Profile: &profile}
}

// NewFocusLost creates a focus_lost event.
func NewFocusLost(ts time.Time) Event {
	return Event{Type: TypeFocusLost, TS: ts}
}

// NewBackupCreated creates a backup_created event.
func NewBackupCreated(ts time.Time, path string) Event {
	return Event{Type: TypeBackupCreated, TS: ts, Path: path}
}
