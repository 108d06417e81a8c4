// Package fault defines the sticky fault flags that invalidate or annotate a
// benchmark result.
//
// Faults are sticky: once set during a run they remain set until the run is
// torn down. The first five flags are hard faults and disqualify a result
// from certification use; ThermalDrift is a warning only.
package fault

// Flags is a value-semantics fault set for one benchmark run.
type Flags struct {
	Overflow     bool `json:"overflow"`
	Underflow    bool `json:"underflow"`
	DivZero      bool `json:"div_zero"`
	TimerError   bool `json:"timer_error"`
	VerifyFail   bool `json:"verify_fail"`
	ThermalDrift bool `json:"thermal_drift"`
}

// HasHardFault reports whether any flag that invalidates the result is set.
func (f Flags) HasHardFault() bool {
	return f.Overflow || f.Underflow || f.DivZero || f.TimerError || f.VerifyFail
}

// HasWarning reports whether any advisory flag is set. A result with only
// warnings may still be valid.
func (f Flags) HasWarning() bool {
	return f.ThermalDrift
}

// Clear resets every flag.
func (f *Flags) Clear() {
	*f = Flags{}
}

// Merge ORs the flags from other into f. Used when folding the statistics
// kernel's fault accumulator into the run's fault set.
func (f *Flags) Merge(other Flags) {
	f.Overflow = f.Overflow || other.Overflow
	f.Underflow = f.Underflow || other.Underflow
	f.DivZero = f.DivZero || other.DivZero
	f.TimerError = f.TimerError || other.TimerError
	f.VerifyFail = f.VerifyFail || other.VerifyFail
	f.ThermalDrift = f.ThermalDrift || other.ThermalDrift
}
