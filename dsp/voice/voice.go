package voice

import "github.com/Ostrovsky42/GroovePuter-sub001/dsp/param"

// MaxVelocity is the upper bound of note velocities.
const MaxVelocity = 127

// Voice is the capability set shared by all synthesis engines.
//
// Control methods (StartNote, Release, parameter and mode setters) are called
// from the control context; Process is called once per output sample by the
// render context. Implementations do not lock: callers serialise control
// writes against rendering through an audio guard.
type Voice interface {
	// Type returns the engine tag.
	Type() EngineType
	// Name returns a human-readable engine name.
	Name() string

	// Reset silences the engine and zeroes all internal state.
	Reset()
	// SetSampleRate updates the render rate. Non-positive rates are ignored.
	SetSampleRate(hz float64)
	// StartNote triggers a note. Frequencies <= 0 are a silent no-op.
	StartNote(freqHz float64, accent, slide bool, velocity int)
	// Release begins the note-off decay; it does not silence immediately.
	Release()
	// Process renders exactly one sample.
	Process() float64

	// ParameterCount returns the number of parameters.
	ParameterCount() int
	// Parameter returns parameter i, or nil when i is out of range.
	Parameter(i int) *param.Parameter

	SetGrooveMode(mode GrooveMode)
	GrooveMode() GrooveMode
	// SetLoFiAmount sets the quantisation crunch in [0, 1] (clamped).
	SetLoFiAmount(amount float64)
	LoFiAmount() float64
}

// VelocityGain maps a 0..127 velocity to a linear gain clamped to [0.05, 1].
func VelocityGain(velocity int) float64 {
	g := float64(velocity) / MaxVelocity
	if g < 0.05 {
		return 0.05
	}
	if g > 1 {
		return 1
	}
	return g
}
