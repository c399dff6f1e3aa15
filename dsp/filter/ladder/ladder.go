package ladder

import (
	"fmt"
	"math"

	"github.com/Ostrovsky42/GroovePuter-sub001/dsp/core"
)

const (
	defaultCutoffHz  = 1000.0
	defaultResonance = 0.5
	defaultDrive     = 1.0

	minCutoffHz  = 10.0
	maxResonance = 4.0
	minDrive     = 0.1
	maxDrive     = 24.0

	// Cutoff is kept below this fraction of the sample rate.
	maxCutoffRatio = 0.45

	stateLimit = 32.0
)

// Variant selects the ladder update rule.
type Variant int

const (
	// VariantClassic uses a rational tanh and direct last-stage feedback.
	VariantClassic Variant = iota
	// VariantHuovilainen uses exact tanh and compensates cutoff and feedback
	// for the stage delay.
	VariantHuovilainen
)

func (v Variant) String() string {
	switch v {
	case VariantClassic:
		return "classic"
	case VariantHuovilainen:
		return "huovilainen"
	default:
		return "unknown"
	}
}

// Option mutates constructor configuration.
type Option func(*config) error

type config struct {
	variant   Variant
	cutoffHz  float64
	resonance float64
	drive     float64
}

func defaultConfig() config {
	return config{
		variant:   VariantHuovilainen,
		cutoffHz:  defaultCutoffHz,
		resonance: defaultResonance,
		drive:     defaultDrive,
	}
}

// WithVariant selects the ladder update rule.
func WithVariant(variant Variant) Option {
	return func(cfg *config) error {
		if variant != VariantClassic && variant != VariantHuovilainen {
			return fmt.Errorf("ladder: invalid variant: %d", variant)
		}
		cfg.variant = variant
		return nil
	}
}

// WithCutoffHz sets the initial cutoff in Hz.
func WithCutoffHz(hz float64) Option {
	return func(cfg *config) error {
		if !core.IsFinite(hz) || hz < minCutoffHz {
			return fmt.Errorf("ladder: cutoff must be finite and >= %g: %f", minCutoffHz, hz)
		}
		cfg.cutoffHz = hz
		return nil
	}
}

// WithResonance sets the initial feedback amount in [0, 4].
func WithResonance(k float64) Option {
	return func(cfg *config) error {
		if !core.IsFinite(k) || k < 0 || k > maxResonance {
			return fmt.Errorf("ladder: resonance must be in [0, %g]: %f", maxResonance, k)
		}
		cfg.resonance = k
		return nil
	}
}

// WithDrive sets the initial input drive in [0.1, 24].
func WithDrive(drive float64) Option {
	return func(cfg *config) error {
		if !core.IsFinite(drive) || drive < minDrive || drive > maxDrive {
			return fmt.Errorf("ladder: drive must be in [%g, %g]: %f", minDrive, maxDrive, drive)
		}
		cfg.drive = drive
		return nil
	}
}

type state struct {
	stage      [4]float64
	tanhLast   [3]float64
	prevOutput float64
}

// Filter is a nonlinear four-stage ladder low-pass.
type Filter struct {
	sampleRate float64
	variant    Variant
	cutoffHz   float64
	resonance  float64
	drive      float64

	coefficient float64
	feedback    float64
	outputScale float64

	state state
}

// New constructs a ladder filter.
func New(sampleRate float64, opts ...Option) (*Filter, error) {
	if !core.IsFinite(sampleRate) || sampleRate <= 0 {
		return nil, fmt.Errorf("ladder: sample rate must be > 0 and finite: %f", sampleRate)
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	f := &Filter{
		sampleRate: sampleRate,
		variant:    cfg.variant,
		cutoffHz:   cfg.cutoffHz,
		resonance:  cfg.resonance,
		drive:      cfg.drive,
	}
	f.rebuild()

	return f, nil
}

// SampleRate returns the sample rate in Hz.
func (f *Filter) SampleRate() float64 { return f.sampleRate }

// Variant returns the update rule.
func (f *Filter) Variant() Variant { return f.variant }

// CutoffHz returns the cutoff in Hz (after clamping).
func (f *Filter) CutoffHz() float64 { return f.cutoffHz }

// Resonance returns the feedback amount.
func (f *Filter) Resonance() float64 { return f.resonance }

// Drive returns the input drive.
func (f *Filter) Drive() float64 { return f.drive }

// SetSampleRate updates the rate and coefficients. Invalid rates are ignored.
func (f *Filter) SetSampleRate(sampleRate float64) {
	if !core.IsFinite(sampleRate) || sampleRate <= 0 {
		return
	}
	f.sampleRate = sampleRate
	f.rebuild()
}

// SetCutoffHz clamps hz to [10, 0.45·fs] and updates coefficients.
func (f *Filter) SetCutoffHz(hz float64) {
	f.cutoffHz = hz
	f.rebuild()
}

// SetResonance clamps k to [0, 4].
func (f *Filter) SetResonance(k float64) {
	f.resonance = k
	f.rebuild()
}

// SetDrive clamps drive to [0.1, 24].
func (f *Filter) SetDrive(drive float64) {
	f.drive = core.Clamp(drive, minDrive, maxDrive)
}

// SetVariant switches the update rule, keeping the stage state. Unknown
// variants are ignored.
func (f *Filter) SetVariant(variant Variant) {
	if variant != VariantClassic && variant != VariantHuovilainen {
		return
	}
	f.variant = variant
	f.rebuild()
}

// Reset clears the ladder state.
func (f *Filter) Reset() { f.state = state{} }

// ProcessSample filters one sample. Non-finite input is treated as silence.
func (f *Filter) ProcessSample(input float64) float64 {
	if !core.IsFinite(input) {
		input = 0
	}

	var out float64
	if f.variant == VariantClassic {
		out = f.processClassic(input)
	} else {
		out = f.processHuovilainen(input)
	}

	if !core.IsFinite(out) {
		f.state = state{}
		return 0
	}
	return out
}

func (f *Filter) processClassic(input float64) float64 {
	s := &f.state
	g := f.coefficient

	in := fastTanh(f.drive * (input - f.feedback*s.stage[3]))
	s.stage[0] = clipState(s.stage[0] + g*(in-s.tanhLast[0]))
	s.tanhLast[0] = fastTanh(s.stage[0])
	s.stage[1] = clipState(s.stage[1] + g*(s.tanhLast[0]-s.tanhLast[1]))
	s.tanhLast[1] = fastTanh(s.stage[1])
	s.stage[2] = clipState(s.stage[2] + g*(s.tanhLast[1]-s.tanhLast[2]))
	s.tanhLast[2] = fastTanh(s.stage[2])
	s.stage[3] = clipState(s.stage[3] + g*(s.tanhLast[2]-fastTanh(s.stage[3])))
	s.prevOutput = s.stage[3]

	return f.outputScale * s.stage[3]
}

func (f *Filter) processHuovilainen(input float64) float64 {
	s := &f.state
	g := f.coefficient

	fb := 0.5 * (s.stage[3] + s.prevOutput)
	t0 := math.Tanh(f.drive * (input - f.feedback*fb))
	tS0 := math.Tanh(s.stage[0])
	tS1 := math.Tanh(s.stage[1])
	tS2 := math.Tanh(s.stage[2])
	tS3 := math.Tanh(s.stage[3])

	s.prevOutput = s.stage[3]
	s.stage[0] = clipState(s.stage[0] + g*(t0-tS0))
	s.tanhLast[0] = math.Tanh(s.stage[0])
	s.stage[1] = clipState(s.stage[1] + g*(s.tanhLast[0]-tS1))
	s.tanhLast[1] = math.Tanh(s.stage[1])
	s.stage[2] = clipState(s.stage[2] + g*(s.tanhLast[1]-tS2))
	s.tanhLast[2] = math.Tanh(s.stage[2])
	s.stage[3] = clipState(s.stage[3] + g*(s.tanhLast[2]-tS3))

	return f.outputScale * s.stage[3]
}

func (f *Filter) rebuild() {
	f.cutoffHz = core.Clamp(f.cutoffHz, minCutoffHz, f.sampleRate*maxCutoffRatio)
	f.resonance = core.Clamp(f.resonance, 0, maxResonance)

	fc := f.cutoffHz / f.sampleRate
	f.coefficient = 1 - math.Exp(-2*math.Pi*fc)
	f.feedback = f.resonance

	if f.variant == VariantHuovilainen {
		fcr := 1.8730*fc*fc*fc + 0.4955*fc*fc - 0.6490*fc + 0.9988
		if fcr < 0 {
			fcr = 0
		}
		f.coefficient = 1 - math.Exp(-2*math.Pi*fcr*fc)

		comp := -3.9364*fc*fc + 1.8409*fc + 0.9968
		if comp < 0 {
			comp = 0
		}
		f.feedback = f.resonance * comp
	}

	// Resonance eats passband level; give some of it back.
	f.outputScale = 1 + 0.5*f.resonance
}

func clipState(v float64) float64 {
	if v > stateLimit {
		return stateLimit
	}
	if v < -stateLimit {
		return -stateLimit
	}
	return v
}

func fastTanh(x float64) float64 {
	if x > 3 {
		return 1
	}
	if x < -3 {
		return -1
	}
	x2 := x * x
	return x * (27 + x2) / (27 + 9*x2)
}
