package chip

import (
	"fmt"
	"math"

	"github.com/Ostrovsky42/GroovePuter-sub001/dsp/core"
	"github.com/Ostrovsky42/GroovePuter-sub001/dsp/param"
	"github.com/Ostrovsky42/GroovePuter-sub001/dsp/voice"
)

// Parameter indices.
const (
	ParamDecay = iota
	ParamChorus
	ParamNoise
	ParamEnvelope

	paramCount
)

const (
	outputGain   = 0.30
	accentGain   = 1.2
	chorusDetune = 0.018
	upperWeight  = 0.65
	subWeight    = 0.45
	weightSum    = 1 + upperWeight + subWeight

	noiseBaseRate  = 350.0
	noiseRateRange = 4500.0

	loFiMaxLevels  = 128.0
	loFiLevelRange = 96.0
)

// Engine is the square/noise chip voice.
type Engine struct {
	sampleRate float64
	params     [paramCount]param.Parameter
	groove     voice.GrooveMode
	loFi       float64

	glide voice.Glide
	env   envelope
	noise LFSR

	phase       [3]float64
	noisePhase  float64
	noiseSample float64

	velGain float64
	accent  bool

	lastDecay float64
	lastShape Shape
}

// New creates a chip engine at the given sample rate.
func New(sampleRate float64) (*Engine, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("chip: sample rate must be > 0: %f", sampleRate)
	}

	e := &Engine{
		sampleRate: sampleRate,
		params: [paramCount]param.Parameter{
			ParamDecay:    param.New("Decay", "ms", 10, 2000, 300, 10),
			ParamChorus:   param.New("Chorus", "", 0, 1, 0.25, 0.01),
			ParamNoise:    param.New("Noise", "", 0, 1, 0, 0.01),
			ParamEnvelope: param.NewEnum("Envelope", shapeLabels, int(ShapeDecay)),
		},
		noise:   NewLFSR(),
		velGain: 1,
	}
	e.glide.SetSampleRate(sampleRate)
	e.syncParams(true)
	return e, nil
}

// Type returns voice.EngineChip.
func (e *Engine) Type() voice.EngineType { return voice.EngineChip }

// Name returns the display name.
func (e *Engine) Name() string { return "Chip Square" }

// Reset silences the engine and returns every oscillator to phase zero.
func (e *Engine) Reset() {
	e.glide.Reset()
	e.env.reset()
	e.noise.Reset()
	e.phase = [3]float64{}
	e.noisePhase = 0
	e.noiseSample = 0
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
	e.syncParams(true)
}

// StartNote sets the pitch and retriggers the envelope unless slide is set
// while a note is still sounding, in which case the pitch glides.
func (e *Engine) StartNote(freqHz float64, accent, slide bool, velocity int) {
	if freqHz <= 0 || !core.IsFinite(freqHz) {
		return
	}
	legato := slide && e.env.gated && e.env.level > 0
	e.glide.Set(freqHz, legato)
	e.accent = accent
	e.velGain = voice.VelocityGain(velocity)
	if !legato {
		e.env.trigger()
	}
}

// Release moves the envelope into its release stage.
func (e *Engine) Release() { e.env.release() }

// Process renders one sample.
func (e *Engine) Process() float64 {
	e.syncParams(false)

	freq := e.glide.Next()
	inc := freq / e.sampleRate
	detune := 1 + e.params[ParamChorus].Value()*chorusDetune

	osc := square(e.phase[0]) + upperWeight*square(e.phase[1]) + subWeight*square(e.phase[2])
	osc /= weightSum

	e.phase[0] = wrap(e.phase[0] + inc)
	e.phase[1] = wrap(e.phase[1] + inc*detune)
	e.phase[2] = wrap(e.phase[2] + inc*0.5)

	noiseAmt := e.params[ParamNoise].Value()
	e.noisePhase += (noiseBaseRate + noiseRateRange*noiseAmt) / e.sampleRate
	for e.noisePhase >= 1 {
		e.noisePhase--
		e.noise.Step()
		e.noiseSample = e.noise.Output()
	}
	mix := osc*(1-0.5*noiseAmt) + e.noiseSample*0.5*noiseAmt

	e.env.next()
	out := mix * e.env.quantized() * e.velGain * outputGain * grooveTrim(e.groove)
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

// syncParams refreshes cached envelope coefficients when the decay or shape
// parameter changed since the last sample.
func (e *Engine) syncParams(force bool) {
	decay := e.params[ParamDecay].Value()
	shape := Shape(e.params[ParamEnvelope].OptionIndex())
	if !force && decay == e.lastDecay && shape == e.lastShape {
		return
	}
	e.lastDecay = decay
	e.lastShape = shape
	e.env.shape = shape
	e.env.configure(e.sampleRate, decay)
}

func square(phase float64) float64 {
	if phase < 0.5 {
		return 1
	}
	return -1
}

func wrap(phase float64) float64 {
	if phase >= 1 {
		phase -= math.Floor(phase)
	}
	return phase
}

func grooveTrim(mode voice.GrooveMode) float64 {
	switch mode {
	case voice.GrooveMinimal:
		return 0.92
	case voice.GrooveBreaks:
		return 1.06
	case voice.GrooveDub:
		return 0.95
	case voice.GrooveElectro:
		return 1.08
	default:
		return 1
	}
}

var _ voice.Voice = (*Engine)(nil)
