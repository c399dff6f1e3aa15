package dynamics

import (
	"fmt"
	"math"

	"github.com/Ostrovsky42/GroovePuter-sub001/dsp/core"
)

const (
	defaultOneKnobAmount = 0.5
	defaultOneKnobMix    = 1.0

	oneKnobDriveRange     = 2.0
	oneKnobThresholdMax   = 0.45
	oneKnobThresholdRange = 0.40
	oneKnobRatioRange     = 19.0
	oneKnobMakeupRange    = 1.0

	// Per-sample smoothing steps of the envelope follower.
	oneKnobRise = 0.25
	oneKnobFall = 0.02

	oneKnobEpsilon = 1e-9
)

// OneKnobCompressor maps a single amount in [0, 1] onto drive, threshold,
// ratio and makeup gain at once. The detector is a plain asymmetric one-pole
// peak follower with fixed per-sample steps.
type OneKnobCompressor struct {
	sampleRate float64
	amount     float64
	mix        float64
	enabled    bool

	drive     float64
	threshold float64
	ratio     float64
	makeup    float64

	envelope float64
}

// NewOneKnobCompressor creates an enabled compressor at amount 0.5, fully wet.
func NewOneKnobCompressor(sampleRate float64) (*OneKnobCompressor, error) {
	if err := validateSampleRate(sampleRate); err != nil {
		return nil, fmt.Errorf("one-knob compressor %w", err)
	}

	c := &OneKnobCompressor{
		sampleRate: sampleRate,
		mix:        defaultOneKnobMix,
		enabled:    true,
	}
	c.SetAmount(defaultOneKnobAmount)

	return c, nil
}

// SetAmount sets the single control, clamped to [0, 1].
func (c *OneKnobCompressor) SetAmount(amount float64) {
	c.amount = core.Clamp(amount, 0, 1)
	c.updateCoefficients()
}

// SetMix sets the dry/wet blend, clamped to [0, 1].
func (c *OneKnobCompressor) SetMix(mix float64) {
	c.mix = core.Clamp(mix, 0, 1)
}

// SetEnabled toggles processing. Disabling clears the envelope so the next
// enable starts from rest.
func (c *OneKnobCompressor) SetEnabled(enabled bool) {
	if !enabled {
		c.envelope = 0
	}
	c.enabled = enabled
}

// SetSampleRate updates the sample rate. The detector steps are per sample
// and do not depend on it.
func (c *OneKnobCompressor) SetSampleRate(sampleRate float64) error {
	if err := validateSampleRate(sampleRate); err != nil {
		return fmt.Errorf("one-knob compressor %w", err)
	}
	c.sampleRate = sampleRate
	return nil
}

// Amount returns the control value.
func (c *OneKnobCompressor) Amount() float64 { return c.amount }

// Mix returns the dry/wet blend.
func (c *OneKnobCompressor) Mix() float64 { return c.mix }

// Enabled reports whether processing is active.
func (c *OneKnobCompressor) Enabled() bool { return c.enabled }

// SampleRate returns sample rate in Hz.
func (c *OneKnobCompressor) SampleRate() float64 { return c.sampleRate }

// Drive returns the derived pre-gain.
func (c *OneKnobCompressor) Drive() float64 { return c.drive }

// Threshold returns the derived linear threshold.
func (c *OneKnobCompressor) Threshold() float64 { return c.threshold }

// Ratio returns the derived compression ratio.
func (c *OneKnobCompressor) Ratio() float64 { return c.ratio }

// Makeup returns the derived makeup gain.
func (c *OneKnobCompressor) Makeup() float64 { return c.makeup }

// Envelope returns the detector level.
func (c *OneKnobCompressor) Envelope() float64 { return c.envelope }

// Reset clears detector state.
func (c *OneKnobCompressor) Reset() { c.envelope = 0 }

// ProcessSample processes one sample.
func (c *OneKnobCompressor) ProcessSample(input float64) float64 {
	if !c.enabled {
		return input
	}

	driven := input * c.drive
	level := math.Abs(driven)
	if level > c.envelope {
		c.envelope += oneKnobRise * (level - c.envelope)
	} else {
		c.envelope += oneKnobFall * (level - c.envelope)
	}
	c.envelope = core.FlushDenormals(c.envelope)

	gain := 1.0
	if c.envelope > c.threshold {
		compressed := c.threshold + (c.envelope-c.threshold)/c.ratio
		gain = compressed / (c.envelope + oneKnobEpsilon)
	}

	wet := driven * gain * c.makeup
	return input*(1-c.mix) + wet*c.mix
}

// ProcessInPlace processes samples in place.
func (c *OneKnobCompressor) ProcessInPlace(buf []float64) {
	for i := range buf {
		buf[i] = c.ProcessSample(buf[i])
	}
}

func (c *OneKnobCompressor) updateCoefficients() {
	a := c.amount
	c.drive = 1 + a*oneKnobDriveRange
	c.threshold = oneKnobThresholdMax - oneKnobThresholdRange*a
	c.ratio = 1 + a*oneKnobRatioRange
	c.makeup = 1 + a*oneKnobMakeupRange
}
