package fm

import (
	"fmt"
	"math"

	"github.com/Ostrovsky42/GroovePuter-sub001/dsp/core"
	"github.com/Ostrovsky42/GroovePuter-sub001/dsp/param"
	"github.com/Ostrovsky42/GroovePuter-sub001/dsp/voice"
)

// Parameter indices.
const (
	ParamRatio = iota
	ParamIndex
	ParamFeedback
	ParamDecay

	paramCount
)

const (
	outputGain    = 0.35
	accentGain    = 1.2
	feedbackScale = 6.0
	// Held notes decay this much slower than released ones.
	sustainStretch = 2.5
	// Modulation index tracks the envelope down to this floor.
	indexFloor   = 0.35
	silenceLevel = 1e-5

	loFiMaxLevels  = 256.0
	loFiLevelRange = 192.0
)

// Engine is the 2-operator FM voice.
type Engine struct {
	sampleRate float64
	params     [paramCount]param.Parameter
	groove     voice.GrooveMode
	loFi       float64

	glide voice.Glide

	carPhase float64
	modPhase float64
	modOut   [2]float64

	level   float64
	gated   bool
	velGain float64
	accent  bool

	heldCoeff    float64
	releaseCoeff float64
	lastDecay    float64
}

// New creates an FM engine at the given sample rate.
func New(sampleRate float64) (*Engine, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("fm: sample rate must be > 0: %f", sampleRate)
	}

	e := &Engine{
		sampleRate: sampleRate,
		params: [paramCount]param.Parameter{
			ParamRatio:    param.New("Ratio", "", 0.25, 8, 2, 0.25),
			ParamIndex:    param.New("Index", "", 0, 8, 2.5, 0.1),
			ParamFeedback: param.New("Feedback", "", 0, 1, 0.1, 0.01),
			ParamDecay:    param.New("Decay", "ms", 10, 3000, 400, 10),
		},
		velGain: 1,
	}
	e.glide.SetSampleRate(sampleRate)
	e.updateCoefficients()
	return e, nil
}

// Type returns voice.EngineFM.
func (e *Engine) Type() voice.EngineType { return voice.EngineFM }

// Name returns the display name.
func (e *Engine) Name() string { return "FM 2-Op" }

// Reset silences the engine and clears both operators.
func (e *Engine) Reset() {
	e.glide.Reset()
	e.carPhase = 0
	e.modPhase = 0
	e.modOut = [2]float64{}
	e.level = 0
	e.gated = false
	e.velGain = 1
	e.accent = false
}

// SetSampleRate recomputes the rate-dependent coefficients. Non-positive or
// non-finite rates are ignored.
func (e *Engine) SetSampleRate(hz float64) {
	if hz <= 0 || !core.IsFinite(hz) {
		return
	}
	e.sampleRate = hz
	e.glide.SetSampleRate(hz)
	e.updateCoefficients()
}

// StartNote gates a note. Without legato both operators restart from phase
// zero at full level; a slide over a sounding note only glides the pitch.
func (e *Engine) StartNote(freqHz float64, accent, slide bool, velocity int) {
	if freqHz <= 0 || !core.IsFinite(freqHz) {
		return
	}
	legato := slide && e.gated && e.level > 0
	e.glide.Set(freqHz, legato)
	e.accent = accent
	e.velGain = voice.VelocityGain(velocity)
	e.gated = true
	if !legato {
		e.carPhase = 0
		e.modPhase = 0
		e.modOut = [2]float64{}
		e.level = 1
	}
}

// Release closes the gate.
func (e *Engine) Release() { e.gated = false }

// Process renders one sample.
func (e *Engine) Process() float64 {
	if e.params[ParamDecay].Value() != e.lastDecay {
		e.updateCoefficients()
	}

	if e.gated {
		e.level *= e.heldCoeff
	} else {
		e.level *= e.releaseCoeff
	}
	if e.level < silenceLevel {
		e.level = 0
	}

	freq := e.glide.Next()
	ratio := e.params[ParamRatio].Value()
	index := e.params[ParamIndex].Value() * grooveIndexBias(e.groove)
	index *= indexFloor + (1-indexFloor)*e.level

	fb := 0.5 * (e.modOut[0] + e.modOut[1]) * e.params[ParamFeedback].Value() * feedbackScale
	mod := math.Sin(2*math.Pi*e.modPhase + fb)
	e.modOut[1] = e.modOut[0]
	e.modOut[0] = mod

	car := math.Sin(2*math.Pi*e.carPhase + index*mod)

	e.carPhase = wrap(e.carPhase + freq/e.sampleRate)
	e.modPhase = wrap(e.modPhase + freq*ratio/e.sampleRate)

	out := car * e.level * e.velGain * outputGain
	if e.accent {
		out *= accentGain
	}
	if e.loFi > 0 {
		out = core.Quantize(out, loFiMaxLevels-e.loFi*loFiLevelRange)
	}
	return out
}

// ParameterCount returns the number of exposed parameters.
func (e *Engine) ParameterCount() int { return paramCount }

// Parameter returns parameter i, or nil when i is out of range.
func (e *Engine) Parameter(i int) *param.Parameter {
	if i < 0 || i >= paramCount {
		return nil
	}
	return &e.params[i]
}

// SetGrooveMode stores the clamped groove mode.
func (e *Engine) SetGrooveMode(mode voice.GrooveMode) { e.groove = voice.ClampGrooveMode(mode) }

// GrooveMode returns the current groove mode.
func (e *Engine) GrooveMode() voice.GrooveMode { return e.groove }

// SetLoFiAmount sets the lo-fi amount in [0, 1].
func (e *Engine) SetLoFiAmount(amount float64) { e.loFi = core.Clamp(amount, 0, 1) }

// LoFiAmount returns the lo-fi amount.
func (e *Engine) LoFiAmount() float64 { return e.loFi }

func (e *Engine) updateCoefficients() {
	decay := e.params[ParamDecay].Value()
	e.lastDecay = decay
	e.heldCoeff = core.DecayCoeff(decay*sustainStretch, e.sampleRate)
	e.releaseCoeff = core.DecayCoeff(decay, e.sampleRate)
}

func grooveIndexBias(mode voice.GrooveMode) float64 {
	switch mode {
	case voice.GrooveMinimal:
		return 0.9
	case voice.GrooveBreaks:
		return 1.05
	case voice.GrooveDub:
		return 0.8
	case voice.GrooveElectro:
		return 1.15
	default:
		return 1
	}
}

func wrap(phase float64) float64 {
	if phase >= 1 {
		phase -= math.Floor(phase)
	}
	return phase
}

var _ voice.Voice = (*Engine)(nil)
