package event

import (
	"errors"
	"fmt"
)

// ValidationError reports a malformed event rejected at the sink boundary.
// The log is never modified when validation fails.
type ValidationError struct {
	EventType Type
	Field     string
	Message   string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid event %q: %s: %s", e.EventType, e.Field, e.Message)
	}
	return fmt.Sprintf("invalid event %q: %s", e.EventType, e.Message)
}

// IsValidationError returns true if err is (or wraps) a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func invalid(t Type, field, message string) error {
	return &ValidationError{EventType: t, Field: field, Message: message}
}

// Validate checks that the event is a recognized variant with the required
// fields populated. It does not check ids against any catalog: unknown
// ritual, step, and plant ids are deliberately allowed and folded as no-ops.
func (e Event) Validate() error {
	if !KnownTypes[e.Type] {
		return invalid(e.Type, "type", "unrecognized event type")
	}
	if e.TS.IsZero() {
		return invalid(e.Type, "ts", "timestamp is required")
	}

	switch e.Type {
	case TypeRitualStepCompleted:
		if e.RitualID == "" {
			return invalid(e.Type, "ritual_id", "required")
		}
		if e.StepID == "" {
			return invalid(e.Type, "step_id", "required")
		}
	case TypeMedTaken:
		if e.MedID == "" {
			return invalid(e.Type, "med_id", "required")
		}
	case TypeEyeDropApplied:
		if !KnownDropTypes[e.Drop] {
			return invalid(e.Type, "drop_type", fmt.Sprintf("unknown drop type %q", e.Drop))
		}
	case TypeWateringDone:
		if e.PlantID == "" {
			return invalid(e.Type, "plant_id", "required")
		}
	case TypeGlucoseMeasured:
		if e.Value <= 0 {
			return invalid(e.Type, "value", "must be positive")
		}
	case TypePlantProfileUpdated:
		if e.PlantID == "" {
			return invalid(e.Type, "plant_id", "required")
		}
		if e.Profile == nil {
			return invalid(e.Type, "profile", "required")
		}
		if err := e.Profile.Validate(); err != nil {
			return err
		}
	case TypeBackupCreated:
		if e.Path == "" {
			return invalid(e.Type, "path", "required")
		}
	}

	return nil
}

// Validate checks the profile's internal consistency.
func (p PlantProfile) Validate() error {
	if p.MinDays <= 0 {
		return invalid(TypePlantProfileUpdated, "profile.min_days", "must be positive")
	}
	if p.MaxDays < p.MinDays {
		return invalid(TypePlantProfileUpdated, "profile.max_days", "must be >= min_days")
	}
	if p.WinterMultiplier <= 0 {
		return invalid(TypePlantProfileUpdated, "profile.winter_multiplier", "must be positive")
	}
	if p.HumidityMultiplier < 0 {
		return invalid(TypePlantProfileUpdated, "profile.humidity_multiplier", "must not be negative")
	}
	if p.Criticality < 1 || p.Criticality > 5 {
		return invalid(TypePlantProfileUpdated, "profile.criticality", "must be in 1..5")
	}
	return nil
}
