package voice

import "github.com/Ostrovsky42/GroovePuter-sub001/dsp/core"

// MaxStateParams bounds the number of parameters a State can carry.
const MaxStateParams = 16

// State is a flat, versionless snapshot of a voice: the engine tag plus the
// normalised value of each parameter.
type State struct {
	Engine EngineType
	Params [MaxStateParams]float64
	Count  int
}

// Capture snapshots v's parameters.
func Capture(v Voice) State {
	s := State{Engine: v.Type()}

	n := v.ParameterCount()
	if n > MaxStateParams {
		n = MaxStateParams
	}
	for i := 0; i < n; i++ {
		if p := v.Parameter(i); p != nil {
			s.Params[i] = p.Normalized()
		}
	}
	s.Count = n

	return s
}

// Restore applies s to v's parameters. Count is clamped to the range both
// sides support and every value is clamped by the parameter itself; the
// engine tag is not checked here (the orchestrator handles engine changes).
func Restore(v Voice, s State) {
	n := core.ClampInt(s.Count, 0, MaxStateParams)
	if pc := v.ParameterCount(); n > pc {
		n = pc
	}

	for i := 0; i < n; i++ {
		if p := v.Parameter(i); p != nil {
			p.SetNormalized(s.Params[i])
		}
	}
}

// Sanitized returns a copy of s with a known engine tag, Count in
// [0, MaxStateParams], and every value clamped into [0, 1].
func (s State) Sanitized() State {
	if !s.Engine.Valid() {
		s.Engine = EngineAcid
	}
	s.Count = core.ClampInt(s.Count, 0, MaxStateParams)
	for i := range s.Params {
		s.Params[i] = core.Clamp(s.Params[i], 0, 1)
	}
	return s
}
