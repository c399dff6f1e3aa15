package synth

import (
	"github.com/Ostrovsky42/GroovePuter-sub001/dsp/voice"
	"github.com/Ostrovsky42/GroovePuter-sub001/dsp/voice/acid"
	"github.com/Ostrovsky42/GroovePuter-sub001/dsp/voice/chip"
	"github.com/Ostrovsky42/GroovePuter-sub001/dsp/voice/fm"
	"github.com/Ostrovsky42/GroovePuter-sub001/dsp/voice/sid"
)

// DefaultRegistry returns a Registry with all built-in engines.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	r.MustRegister(voice.EngineAcid, func(sr float64) (voice.Voice, error) {
		e, err := acid.New(sr)
		if err != nil {
			return nil, err
		}
		return e, nil
	})
	r.MustRegister(voice.EngineChip, func(sr float64) (voice.Voice, error) {
		e, err := chip.New(sr)
		if err != nil {
			return nil, err
		}
		return e, nil
	})
	r.MustRegister(voice.EngineFM, func(sr float64) (voice.Voice, error) {
		e, err := fm.New(sr)
		if err != nil {
			return nil, err
		}
		return e, nil
	})
	r.MustRegister(voice.EngineSID, func(sr float64) (voice.Voice, error) {
		e, err := sid.New(sr)
		if err != nil {
			return nil, err
		}
		return e, nil
	})

	return r
}
