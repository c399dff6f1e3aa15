package sid

import (
	"fmt"
	"math"

	"github.com/Ostrovsky42/GroovePuter-sub001/dsp/core"
	"github.com/Ostrovsky42/GroovePuter-sub001/dsp/filter/onepole"
	"github.com/Ostrovsky42/GroovePuter-sub001/dsp/param"
	"github.com/Ostrovsky42/GroovePuter-sub001/dsp/voice"
)

// Parameter indices.
const (
	ParamPulseWidth = iota
	ParamCutoff
	ParamResonance
	ParamFilterType

	paramCount
)

// FilterType selects the filter blend.
type FilterType int

const (
	// FilterLP is the low-pass output, with band emphasis at high resonance.
	FilterLP FilterType = iota
	// FilterBP is the band-pass output.
	FilterBP
	// FilterHP is the high-pass output, with band emphasis at high resonance.
	FilterHP
	// FilterOff bypasses the filter.
	FilterOff
)

var filterLabels = []string{"LP", "BP", "HP", "OFF"}

const (
	outputGain = 0.25
	accentGain = 1.2

	// Pulse width is held as a 12-bit register value.
	pulseWidthMax = 4095

	maxResonance = 255.0
	// Full resonance widens the pole this many times its nominal cutoff.
	resonanceWidening = 1.5
	// Full resonance adds this much band emphasis to LP and HP.
	resonanceEmphasis = 0.6

	attackMs     = 2.0
	decayMs      = 300.0
	sustainLevel = 0.7
	releaseMs    = 150.0
	silenceLevel = 1e-5

	peakReleaseMs = 300.0

	loFiMaxLevels  = 160.0
	loFiLevelRange = 128.0
)

// Engine is the filtered-pulse chip voice.
type Engine struct {
	sampleRate float64
	params     [paramCount]param.Parameter
	groove     voice.GrooveMode
	loFi       float64

	glide voice.Glide
	lp    onepole.LowPass

	phase   float64
	bpNorm  float64
	lastCut float64
	lastRes float64
	lastGrv voice.GrooveMode

	level     float64
	attacking bool
	gated     bool
	velGain   float64
	accent    bool

	attackCoeff  float64
	decayCoeff   float64
	releaseCoeff float64

	peak        float64
	peakRelease float64
}

// New creates a filtered-pulse engine at the given sample rate.
func New(sampleRate float64) (*Engine, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("sid: sample rate must be > 0: %f", sampleRate)
	}

	e := &Engine{
		sampleRate: sampleRate,
		params: [paramCount]param.Parameter{
			ParamPulseWidth: param.New("Pulse Width", "%", 2, 100, 50, 1),
			ParamCutoff:     param.New("Cutoff", "Hz", 20, 12000, 2400, 10),
			ParamResonance:  param.New("Resonance", "", 0, maxResonance, 64, 1),
			ParamFilterType: param.NewEnum("Filter", filterLabels, int(FilterLP)),
		},
		velGain: 1,
	}
	e.SetSampleRate(sampleRate)
	return e, nil
}

// Type returns voice.EngineSID.
func (e *Engine) Type() voice.EngineType { return voice.EngineSID }

// Name returns the display name.
func (e *Engine) Name() string { return "SID Pulse" }

// Reset silences the engine and clears the filter and peak meter.
func (e *Engine) Reset() {
	e.glide.Reset()
	e.lp.Reset()
	e.phase = 0
	e.level = 0
	e.attacking = false
	e.gated = false
	e.velGain = 1
	e.accent = false
	e.peak = 0
}

// SetSampleRate recomputes the rate-dependent coefficients. Non-positive or
// non-finite rates are ignored.
func (e *Engine) SetSampleRate(hz float64) {
	if hz <= 0 || !core.IsFinite(hz) {
		return
	}
	e.sampleRate = hz
	e.glide.SetSampleRate(hz)
	e.attackCoeff = core.SmoothingCoeff(attackMs, hz)
	e.decayCoeff = core.SmoothingCoeff(decayMs, hz)
	e.releaseCoeff = core.DecayCoeff(releaseMs, hz)
	e.peakRelease = core.DecayCoeff(peakReleaseMs, hz)
	e.updateFilter()
}

// StartNote gates a note and starts the attack unless slide is set while a
// note is still sounding, in which case the pitch glides.
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
		e.attacking = true
	}
}

// Release closes the gate and starts the release stage.
func (e *Engine) Release() {
	e.gated = false
	e.attacking = false
}

// Process renders one sample.
func (e *Engine) Process() float64 {
	if e.params[ParamCutoff].Value() != e.lastCut ||
		e.params[ParamResonance].Value() != e.lastRes ||
		e.groove != e.lastGrv {
		e.updateFilter()
	}

	e.advanceEnvelope()

	freq := e.glide.Next()
	duty := float64(e.pulseWidthRegister()) / (pulseWidthMax + 1)
	x := -1.0
	if e.phase < duty {
		x = 1
	}
	e.phase += freq / e.sampleRate
	if e.phase >= 1 {
		e.phase -= math.Floor(e.phase)
	}

	prev := e.lp.Last()
	low := e.lp.ProcessSample(x)
	band := (low - prev) * e.bpNorm
	emphasis := e.lastRes / maxResonance * resonanceEmphasis

	var y float64
	switch FilterType(e.params[ParamFilterType].OptionIndex()) {
	case FilterLP:
		y = low + emphasis*band
	case FilterBP:
		y = band
	case FilterHP:
		y = x - low + emphasis*band
	default:
		y = x
	}

	out := y * e.level * e.velGain * outputGain
	if e.accent {
		out *= accentGain
	}
	if e.loFi > 0 {
		out = core.Quantize(out, loFiMaxLevels-e.loFi*loFiLevelRange)
	}

	if a := math.Abs(out); a > e.peak {
		e.peak = a
	} else {
		e.peak *= e.peakRelease
	}
	return out
}

// Peak returns the output peak meter, a max-hold with a 300 ms release.
func (e *Engine) Peak() float64 { return e.peak }

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

// pulseWidthRegister maps the percentage to 0..4095. Lo-fi drops low bits.
func (e *Engine) pulseWidthRegister() int {
	pw := int(math.Round(e.params[ParamPulseWidth].Value() / 100 * pulseWidthMax))
	if e.loFi > 0 {
		shift := uint(e.loFi * 6)
		pw = pw >> shift << shift
	}
	return core.ClampInt(pw, 1, pulseWidthMax)
}

func (e *Engine) advanceEnvelope() {
	switch {
	case e.attacking:
		e.level += e.attackCoeff * (1.02 - e.level)
		if e.level >= 1 {
			e.level = 1
			e.attacking = false
		}
	case e.gated:
		e.level += e.decayCoeff * (sustainLevel - e.level)
	default:
		e.level *= e.releaseCoeff
		if e.level < silenceLevel {
			e.level = 0
		}
	}
}

func (e *Engine) updateFilter() {
	e.lastCut = e.params[ParamCutoff].Value()
	e.lastRes = e.params[ParamResonance].Value()
	e.lastGrv = e.groove

	fc := e.lastCut * grooveCutoffBias(e.groove) * (1 + resonanceWidening*e.lastRes/maxResonance)
	fc = core.Clamp(fc, 20, 0.45*e.sampleRate)
	e.lp.SetCutoff(fc, e.sampleRate)
	e.bpNorm = 1 / (2 * math.Sin(math.Pi*fc/e.sampleRate))
}

func grooveCutoffBias(mode voice.GrooveMode) float64 {
	switch mode {
	case voice.GrooveMinimal:
		return 0.85
	case voice.GrooveBreaks:
		return 1.1
	case voice.GrooveDub:
		return 0.7
	case voice.GrooveElectro:
		return 1.3
	default:
		return 1
	}
}

var _ voice.Voice = (*Engine)(nil)
