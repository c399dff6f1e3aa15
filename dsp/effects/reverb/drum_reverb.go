package reverb

import (
	"fmt"
	"math"

	"github.com/Ostrovsky42/GroovePuter-sub001/dsp/core"
	"github.com/Ostrovsky42/GroovePuter-sub001/dsp/delay"
	"github.com/Ostrovsky42/GroovePuter-sub001/dsp/filter/onepole"
)

const (
	drumReverbNumCombs     = 4
	drumReverbNumAllpasses = 2

	// Tuning in samples at drumReverbTuningRate.
	drumReverbTuningRate = 44100.0

	drumReverbCombTuningL1 = 326
	drumReverbCombTuningL2 = 392
	drumReverbCombTuningL3 = 465
	drumReverbCombTuningL4 = 529

	drumReverbAllpassTuningL1 = 52
	drumReverbAllpassTuningL2 = 79

	drumReverbPredelayMs = 4.0

	// DrumReverbMaxSampleRate is the highest rate the fixed arena can hold.
	DrumReverbMaxSampleRate = 96000.0
	drumReverbArenaSize     = 4608

	drumReverbInputHPHz = 3000.0
	drumReverbTailHPHz  = 2000.0
	drumReverbTailLPHz  = 12000.0
	drumReverbTailGain  = 2.0

	drumReverbDampOpenHz   = 12000.0
	drumReverbDampClosedHz = 5500.0

	drumReverbAllpassMinG = 0.65
	drumReverbAllpassMaxG = 0.75

	drumReverbMinRT60   = 0.12
	drumReverbRT60Range = 5.88
	drumReverbRT60Curve = 1.2

	// Mix at or below this is treated as fully dry.
	drumReverbMixEpsilon = 1e-4

	defaultDrumReverbDecay = 0.3
	defaultDrumReverbMix   = 0.25
)

var (
	drumReverbCombTuning    = [drumReverbNumCombs]int{drumReverbCombTuningL1, drumReverbCombTuningL2, drumReverbCombTuningL3, drumReverbCombTuningL4}
	drumReverbAllpassTuning = [drumReverbNumAllpasses]int{drumReverbAllpassTuningL1, drumReverbAllpassTuningL2}
)

// DrumRT60 returns the modelled reverb time in seconds for decay in [0, 1]:
// 0.12 + 5.88·decay^1.2.
func DrumRT60(decay float64) float64 {
	return drumReverbMinRT60 + drumReverbRT60Range*math.Pow(core.Clamp(decay, 0, 1), drumReverbRT60Curve)
}

// DrumReverbOption mutates constructor configuration.
type DrumReverbOption func(*drumReverbConfig) error

type drumReverbConfig struct {
	decay    float64
	mix      float64
	predelay bool
}

func defaultDrumReverbConfig() drumReverbConfig {
	return drumReverbConfig{
		decay:    defaultDrumReverbDecay,
		mix:      defaultDrumReverbMix,
		predelay: true,
	}
}

// WithDrumReverbDecay sets the initial decay in [0, 1].
func WithDrumReverbDecay(decay float64) DrumReverbOption {
	return func(cfg *drumReverbConfig) error {
		if decay < 0 || decay > 1 || !core.IsFinite(decay) {
			return fmt.Errorf("drum reverb decay must be in [0, 1]: %f", decay)
		}
		cfg.decay = decay
		return nil
	}
}

// WithDrumReverbMix sets the initial dry/wet mix in [0, 1].
func WithDrumReverbMix(mix float64) DrumReverbOption {
	return func(cfg *drumReverbConfig) error {
		if mix < 0 || mix > 1 || !core.IsFinite(mix) {
			return fmt.Errorf("drum reverb mix must be in [0, 1]: %f", mix)
		}
		cfg.mix = mix
		return nil
	}
}

// WithDrumReverbPredelay enables or disables the 4 ms pre-delay.
func WithDrumReverbPredelay(enabled bool) DrumReverbOption {
	return func(cfg *drumReverbConfig) error {
		cfg.predelay = enabled
		return nil
	}
}

type drumReverbComb struct {
	line     delay.Line
	damp     onepole.LowPass
	feedback float64
}

func (c *drumReverbComb) process(input float64) float64 {
	out := c.line.Tap()
	c.line.Write(input + c.damp.ProcessSample(out)*c.feedback)
	return out
}

type drumReverbAllpass struct {
	line delay.Line
	g    float64
}

func (a *drumReverbAllpass) process(input float64) float64 {
	delayed := a.line.Tap()
	w := input + a.g*delayed
	a.line.Write(w)
	return delayed - a.g*w
}

// DrumReverb is a short, bright Schroeder reverb for percussion: input
// high-pass, optional pre-delay, four damped combs in parallel, two allpass
// diffusers and a band-limited tail. All delay lines are int16 windows carved
// from one fixed store owned by the reverb.
type DrumReverb struct {
	sampleRate float64
	decay      float64
	mix        float64
	rt60       float64
	predelayOn bool

	dryGain float64
	wetGain float64

	store    [drumReverbArenaSize]int16
	arena    *delay.Arena
	predelay delay.Line
	combs    [drumReverbNumCombs]drumReverbComb
	allpass  [drumReverbNumAllpasses]drumReverbAllpass

	inputHP onepole.HighPass
	tailHP  onepole.HighPass
	tailLP  onepole.LowPass
}

// NewDrumReverb creates a drum reverb. sampleRate must not exceed
// DrumReverbMaxSampleRate.
func NewDrumReverb(sampleRate float64, opts ...DrumReverbOption) (*DrumReverb, error) {
	cfg := defaultDrumReverbConfig()
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	r := &DrumReverb{
		decay:      cfg.decay,
		mix:        cfg.mix,
		predelayOn: cfg.predelay,
	}

	arena, err := delay.NewArena(r.store[:])
	if err != nil {
		return nil, fmt.Errorf("drum reverb: %w", err)
	}
	r.arena = arena

	if err := r.SetSampleRate(sampleRate); err != nil {
		return nil, err
	}
	r.SetMix(cfg.mix)

	return r, nil
}

// SetSampleRate re-carves every delay line for the new rate and clears the
// tail.
func (r *DrumReverb) SetSampleRate(sampleRate float64) error {
	if sampleRate <= 0 || !core.IsFinite(sampleRate) {
		return fmt.Errorf("drum reverb sample rate must be positive and finite: %f", sampleRate)
	}
	if sampleRate > DrumReverbMaxSampleRate {
		return fmt.Errorf("drum reverb sample rate must be <= %g: %f", DrumReverbMaxSampleRate, sampleRate)
	}

	r.arena.Rewind()
	scale := sampleRate / drumReverbTuningRate

	for i := range r.combs {
		line, err := r.arena.Carve(scaledLength(drumReverbCombTuning[i], scale))
		if err != nil {
			return fmt.Errorf("drum reverb comb %d: %w", i, err)
		}
		r.combs[i].line = line
	}
	for i := range r.allpass {
		line, err := r.arena.Carve(scaledLength(drumReverbAllpassTuning[i], scale))
		if err != nil {
			return fmt.Errorf("drum reverb allpass %d: %w", i, err)
		}
		r.allpass[i].line = line
	}
	line, err := r.arena.Carve(int(math.Ceil(drumReverbPredelayMs / 1000 * sampleRate)))
	if err != nil {
		return fmt.Errorf("drum reverb predelay: %w", err)
	}
	r.predelay = line

	r.sampleRate = sampleRate
	r.inputHP = onepole.NewHighPass(drumReverbInputHPHz, sampleRate)
	r.tailHP = onepole.NewHighPass(drumReverbTailHPHz, sampleRate)
	r.tailLP = onepole.NewLowPass(drumReverbTailLPHz, sampleRate)
	r.updateCoefficients(r.decay, DrumRT60(r.decay))

	return nil
}

// SetDecay sets the decay knob, clamped to [0, 1].
func (r *DrumReverb) SetDecay(decay float64) {
	r.decay = core.Clamp(decay, 0, 1)
	r.updateCoefficients(r.decay, DrumRT60(r.decay))
}

// SetMix sets the dry/wet balance, clamped to [0, 1], using an equal-power
// sin/cos law.
func (r *DrumReverb) SetMix(mix float64) {
	r.mix = core.Clamp(mix, 0, 1)
	r.dryGain, r.wetGain = core.MixGains(r.mix)
}

// Decay returns the decay knob.
func (r *DrumReverb) Decay() float64 { return r.decay }

// Mix returns the dry/wet balance.
func (r *DrumReverb) Mix() float64 { return r.mix }

// RT60 returns the current modelled reverb time in seconds.
func (r *DrumReverb) RT60() float64 { return r.rt60 }

// SampleRate returns the sample rate in Hz.
func (r *DrumReverb) SampleRate() float64 { return r.sampleRate }

// ArenaUsed returns how many samples of the fixed store are carved.
func (r *DrumReverb) ArenaUsed() int { return r.arena.Used() }

// Reset clears all delay lines and filter state.
func (r *DrumReverb) Reset() {
	for i := range r.combs {
		r.combs[i].line.Reset()
		r.combs[i].damp.Reset()
	}
	for i := range r.allpass {
		r.allpass[i].line.Reset()
	}
	r.predelay.Reset()
	r.inputHP.Reset()
	r.tailHP.Reset()
	r.tailLP.Reset()
}

// ProcessSample processes one sample. At zero mix the input is returned
// unchanged and the network is not advanced.
func (r *DrumReverb) ProcessSample(input float64) float64 {
	if r.mix <= drumReverbMixEpsilon {
		return input
	}

	x := r.inputHP.ProcessSample(input)
	if r.predelayOn {
		delayed := r.predelay.Tap()
		r.predelay.Write(x)
		x = delayed
	}

	var sum float64
	for i := range r.combs {
		sum += r.combs[i].process(x)
	}
	wet := sum / drumReverbNumCombs

	for i := range r.allpass {
		wet = r.allpass[i].process(wet)
	}
	wet = r.tailLP.ProcessSample(r.tailHP.ProcessSample(wet)) * drumReverbTailGain

	return input*r.dryGain + wet*r.wetGain
}

// ProcessInPlace processes buf in place.
func (r *DrumReverb) ProcessInPlace(buf []float64) {
	for i := range buf {
		buf[i] = r.ProcessSample(buf[i])
	}
}

// updateCoefficients sets comb feedback for a target RT60 and interpolates
// damping and diffusion with decay.
func (r *DrumReverb) updateCoefficients(decay, rt60 float64) {
	r.rt60 = rt60
	dampHz := drumReverbDampOpenHz + (drumReverbDampClosedHz-drumReverbDampOpenHz)*decay

	for i := range r.combs {
		c := &r.combs[i]
		seconds := float64(c.line.Len()) / r.sampleRate
		c.feedback = math.Pow(10, -3*seconds/rt60)
		c.damp.SetCutoff(dampHz, r.sampleRate)
	}

	g := drumReverbAllpassMinG + (drumReverbAllpassMaxG-drumReverbAllpassMinG)*decay
	for i := range r.allpass {
		r.allpass[i].g = g
	}
}

func scaledLength(tuning int, scale float64) int {
	n := int(math.Round(float64(tuning) * scale))
	if n < 1 {
		return 1
	}
	return n
}
