package acid

import (
	"fmt"
	"math"

	"github.com/Ostrovsky42/GroovePuter-sub001/dsp/core"
	"github.com/Ostrovsky42/GroovePuter-sub001/dsp/filter/ladder"
	"github.com/Ostrovsky42/GroovePuter-sub001/dsp/param"
	"github.com/Ostrovsky42/GroovePuter-sub001/dsp/voice"
)

// Parameter indices.
const (
	ParamCutoff = iota
	ParamResonance
	ParamEnvMod
	ParamDecay
	ParamWaveform

	paramCount
)

const (
	outputGain = 0.28
	accentGain = 1.25

	// Env Mod at 1 sweeps the cutoff up by this many times its base.
	envModDepth = 6.0
	// Accent adds this much extra sweep and shortens the filter decay.
	accentDepth = 2.0
	accentDecay = 0.6

	maxLadderResonance = 3.8
	// Accented notes push the ladder input harder.
	ladderDrive       = 1.5
	ladderAccentDrive = 2.5
	// Cutoff is recomputed every controlInterval samples.
	controlInterval = 8

	ampAttackMs  = 3.0
	ampReleaseMs = 12.0
	silenceLevel = 1e-5

	loFiMaxLevels  = 192.0
	loFiLevelRange = 160.0
)

// Engine is the filter/resonance bass voice.
type Engine struct {
	sampleRate float64
	params     [paramCount]param.Parameter
	groove     voice.GrooveMode
	loFi       float64

	glide  voice.Glide
	filter *ladder.Filter

	phase   float64
	fenv    float64
	amp     float64
	gated   bool
	velGain float64
	accent  bool
	ticks   int

	ampAttack   float64
	ampRelease  float64
	decayCoeff  float64
	accentCoeff float64
	lastDecay   float64
}

// New creates an acid engine at the given sample rate.
func New(sampleRate float64) (*Engine, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("acid: sample rate must be > 0: %f", sampleRate)
	}

	f, err := ladder.New(sampleRate,
		ladder.WithVariant(grooveVariant(voice.GrooveAcid)),
		ladder.WithDrive(ladderDrive),
	)
	if err != nil {
		return nil, fmt.Errorf("acid: %w", err)
	}

	e := &Engine{
		sampleRate: sampleRate,
		params: [paramCount]param.Parameter{
			ParamCutoff:    param.New("Cutoff", "Hz", 40, 8000, 800, 10),
			ParamResonance: param.New("Resonance", "", 0, 1, 0.6, 0.01),
			ParamEnvMod:    param.New("Env Mod", "", 0, 1, 0.5, 0.01),
			ParamDecay:     param.New("Decay", "ms", 30, 2000, 250, 10),
			ParamWaveform:  param.NewEnum("Wave", waveformLabels, int(WaveSaw)),
		},
		filter:  f,
		velGain: 1,
	}
	e.SetSampleRate(sampleRate)
	return e, nil
}

// Type returns voice.EngineAcid.
func (e *Engine) Type() voice.EngineType { return voice.EngineAcid }

// Name returns the display name.
func (e *Engine) Name() string { return "Acid Bass" }

// Reset silences the voice and clears the filter, envelopes and glide.
// Parameters, groove mode and lo-fi amount are kept.
func (e *Engine) Reset() {
	e.glide.Reset()
	e.filter.Reset()
	e.phase = 0
	e.fenv = 0
	e.amp = 0
	e.gated = false
	e.velGain = 1
	e.accent = false
	e.ticks = 0
	e.filter.SetDrive(ladderDrive)
}

// SetSampleRate retunes the oscillator, filter and envelopes. Non-positive or
// non-finite rates are ignored.
func (e *Engine) SetSampleRate(hz float64) {
	if hz <= 0 || !core.IsFinite(hz) {
		return
	}
	e.sampleRate = hz
	e.glide.SetSampleRate(hz)
	e.filter.SetSampleRate(hz)
	e.ampAttack = core.SmoothingCoeff(ampAttackMs, hz)
	e.ampRelease = core.DecayCoeff(ampReleaseMs, hz)
	e.updateDecay()
}

// StartNote gates a note. With slide set and a note still sounding the pitch
// glides and the filter envelope is not retriggered. Accent opens the filter
// further and drives the ladder harder.
func (e *Engine) StartNote(freqHz float64, accent, slide bool, velocity int) {
	if freqHz <= 0 || !core.IsFinite(freqHz) {
		return
	}
	legato := slide && e.gated && e.amp > 0
	e.glide.Set(freqHz, legato)
	e.accent = accent
	if accent {
		e.filter.SetDrive(ladderAccentDrive)
	} else {
		e.filter.SetDrive(ladderDrive)
	}
	e.velGain = voice.VelocityGain(velocity)
	e.gated = true
	if !legato {
		e.fenv = 1
		e.ticks = 0
	}
}

// Release closes the gate; the amplitude decays over a few milliseconds.
func (e *Engine) Release() { e.gated = false }

// Process renders one sample.
func (e *Engine) Process() float64 {
	if e.params[ParamDecay].Value() != e.lastDecay {
		e.updateDecay()
	}

	if e.gated {
		e.amp += e.ampAttack * (1 - e.amp)
	} else {
		e.amp *= e.ampRelease
		if e.amp < silenceLevel {
			e.amp = 0
		}
	}
	if e.accent {
		e.fenv *= e.accentCoeff
	} else {
		e.fenv *= e.decayCoeff
	}
	e.fenv = core.FlushDenormals(e.fenv)

	if e.ticks == 0 {
		e.updateFilter()
	}
	e.ticks++
	if e.ticks >= controlInterval {
		e.ticks = 0
	}

	freq := e.glide.Next()
	dt := freq / e.sampleRate
	osc := oscillate(Waveform(e.params[ParamWaveform].OptionIndex()), e.phase, dt)
	e.phase += dt
	if e.phase >= 1 {
		e.phase -= math.Floor(e.phase)
	}

	y := e.filter.ProcessSample(osc)
	out := y * e.amp * e.velGain * outputGain
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

// SetGrooveMode sets the envelope depth bias and the ladder update rule.
// Minimal and dub use the compensated Huovilainen ladder.
func (e *Engine) SetGrooveMode(mode voice.GrooveMode) {
	e.groove = voice.ClampGrooveMode(mode)
	e.filter.SetVariant(grooveVariant(e.groove))
}

// GrooveMode returns the current groove mode.
func (e *Engine) GrooveMode() voice.GrooveMode { return e.groove }

// SetLoFiAmount sets output quantisation in [0, 1].
func (e *Engine) SetLoFiAmount(amount float64) { e.loFi = core.Clamp(amount, 0, 1) }

// LoFiAmount returns the output quantisation amount.
func (e *Engine) LoFiAmount() float64 { return e.loFi }

// FilterVariant returns the ladder update rule in use.
func (e *Engine) FilterVariant() ladder.Variant { return e.filter.Variant() }

// CutoffHz returns the ladder cutoff currently in effect.
func (e *Engine) CutoffHz() float64 { return e.filter.CutoffHz() }

func (e *Engine) updateDecay() {
	decay := e.params[ParamDecay].Value()
	e.lastDecay = decay
	e.decayCoeff = core.DecayCoeff(decay, e.sampleRate)
	e.accentCoeff = core.DecayCoeff(decay*accentDecay, e.sampleRate)
}

func (e *Engine) updateFilter() {
	depth := e.params[ParamEnvMod].Value() * envModDepth * grooveDepthBias(e.groove)
	if e.accent {
		depth += accentDepth
	}
	cutoff := e.params[ParamCutoff].Value() * (1 + depth*e.fenv)
	e.filter.SetCutoffHz(cutoff)
	e.filter.SetResonance(e.params[ParamResonance].Value() * maxLadderResonance)
}

func grooveDepthBias(mode voice.GrooveMode) float64 {
	switch mode {
	case voice.GrooveMinimal:
		return 0.7
	case voice.GrooveBreaks:
		return 0.9
	case voice.GrooveDub:
		return 0.6
	case voice.GrooveElectro:
		return 1.2
	default:
		return 1
	}
}

func grooveVariant(mode voice.GrooveMode) ladder.Variant {
	switch mode {
	case voice.GrooveMinimal, voice.GrooveDub:
		return ladder.VariantHuovilainen
	default:
		return ladder.VariantClassic
	}
}

var _ voice.Voice = (*Engine)(nil)
