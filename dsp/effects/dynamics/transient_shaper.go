package dynamics

import (
	"fmt"
	"math"

	"github.com/Ostrovsky42/GroovePuter-sub001/dsp/core"
)

const (
	transientFastAttackMs  = 0.3
	transientFastReleaseMs = 10.0
	transientSlowAttackMs  = 35.0
	transientSlowReleaseMs = 200.0

	minTransientShaperAmount = -1.0
	maxTransientShaperAmount = 1.0
)

// follower is an asymmetric one-pole envelope follower.
type follower struct {
	attack  float64
	release float64
	level   float64
}

func (f *follower) configure(attackMs, releaseMs, sampleRate float64) {
	f.attack = timeMsToCoeff(attackMs, sampleRate)
	f.release = timeMsToCoeff(releaseMs, sampleRate)
}

func (f *follower) process(x float64) float64 {
	coeff := f.release
	if x > f.level {
		coeff = f.attack
	}
	f.level = core.FlushDenormals(f.level + coeff*(x-f.level))
	return f.level
}

// TransientShaper boosts or cuts attacks and sustain independently. A fast
// (0.3/10 ms) and a slow (35/200 ms) follower track the same input; their
// difference, clamped to [0, 1], weights the split between a transient part
// and a sustain part, each with its own gain.
type TransientShaper struct {
	attackAmount  float64
	sustainAmount float64
	sampleRate    float64

	fast follower
	slow follower

	transient float64
}

// NewTransientShaper creates a neutral transient shaper.
func NewTransientShaper(sampleRate float64) (*TransientShaper, error) {
	if err := validateSampleRate(sampleRate); err != nil {
		return nil, fmt.Errorf("transient shaper %w", err)
	}

	t := &TransientShaper{sampleRate: sampleRate}
	t.updateCoefficients()

	return t, nil
}

// SetAttackAmount sets transient shaping in [-1, 1] (clamped).
func (t *TransientShaper) SetAttackAmount(amount float64) {
	t.attackAmount = core.Clamp(amount, minTransientShaperAmount, maxTransientShaperAmount)
}

// SetSustainAmount sets sustain shaping in [-1, 1] (clamped).
func (t *TransientShaper) SetSustainAmount(amount float64) {
	t.sustainAmount = core.Clamp(amount, minTransientShaperAmount, maxTransientShaperAmount)
}

// SetSampleRate updates sample rate and follower coefficients.
func (t *TransientShaper) SetSampleRate(sampleRate float64) error {
	if err := validateSampleRate(sampleRate); err != nil {
		return fmt.Errorf("transient shaper %w", err)
	}

	t.sampleRate = sampleRate
	t.updateCoefficients()

	return nil
}

// AttackAmount returns attack shaping amount.
func (t *TransientShaper) AttackAmount() float64 { return t.attackAmount }

// SustainAmount returns sustain shaping amount.
func (t *TransientShaper) SustainAmount() float64 { return t.sustainAmount }

// SampleRate returns sample rate in Hz.
func (t *TransientShaper) SampleRate() float64 { return t.sampleRate }

// Transient returns the most recent transient strength in [0, 1].
func (t *TransientShaper) Transient() float64 { return t.transient }

// Reset clears detector state.
func (t *TransientShaper) Reset() {
	t.fast.level = 0
	t.slow.level = 0
	t.transient = 0
}

// ProcessSample processes one sample.
func (t *TransientShaper) ProcessSample(input float64) float64 {
	x := math.Abs(input)
	diff := t.fast.process(x) - t.slow.process(x)
	tr := core.Clamp(diff, 0, 1)
	t.transient = tr

	attackPart := input * tr
	sustainPart := input - attackPart

	return attackPart*(1+t.attackAmount*tr) + sustainPart*(1+t.sustainAmount*(1-tr))
}

// ProcessInPlace processes samples in place.
func (t *TransientShaper) ProcessInPlace(buf []float64) {
	for i := range buf {
		buf[i] = t.ProcessSample(buf[i])
	}
}

func (t *TransientShaper) updateCoefficients() {
	t.fast.configure(transientFastAttackMs, transientFastReleaseMs, t.sampleRate)
	t.slow.configure(transientSlowAttackMs, transientSlowReleaseMs, t.sampleRate)
}

func timeMsToCoeff(ms, sampleRate float64) float64 {
	seconds := ms / 1000.0
	if seconds <= 0 {
		return 1
	}

	coeff := 1.0 - math.Exp(-1.0/(seconds*sampleRate))
	if coeff < 0 {
		return 0
	}

	if coeff > 1 {
		return 1
	}

	return coeff
}
