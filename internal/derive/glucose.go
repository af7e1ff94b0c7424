package derive

// Glucose classification bounds in mmol/L. The optimal band is inclusive
// on both ends: 4.2 and 6.0 classify as optimal.
const (
	glucoseLowBelow = 4.2
	glucoseHighOver = 6.0
)

// finishGlucose classifies the last-in-log reading. Earlier measurements
// remain in the immutable log but do not affect derived status.
func (d *Deriver) finishGlucose(st *DerivedState) {
	if st.Glucose.Last == nil {
		st.Glucose.Status = GlucoseUnknown
		return
	}
	st.Glucose.Status = classifyGlucose(st.Glucose.Last.Value)
}

func classifyGlucose(value float64) GlucoseStatus {
	switch {
	case value < glucoseLowBelow:
		return GlucoseLow
	case value > glucoseHighOver:
		return GlucoseHigh
	default:
		return GlucoseOptimal
	}
}
