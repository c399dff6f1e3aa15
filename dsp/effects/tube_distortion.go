package effects

import (
	"fmt"
	"math"

	"github.com/Ostrovsky42/GroovePuter-sub001/dsp/core"
)

const (
	defaultTubeDrive = 2.0
	defaultTubeMix   = 1.0

	minTubeDrive = 1.0
	maxTubeDrive = 20.0

	// Loudness compensation is 1/(1 + tubeCompensation·drive).
	tubeCompensation = 0.06
	tubeSafetyKnee   = 0.35
)

// TubeDistortionOption mutates construction-time parameters.
type TubeDistortionOption func(*tubeDistortionConfig) error

type tubeDistortionConfig struct {
	drive   float64
	mix     float64
	enabled bool
}

func defaultTubeDistortionConfig() tubeDistortionConfig {
	return tubeDistortionConfig{
		drive:   defaultTubeDrive,
		mix:     defaultTubeMix,
		enabled: true,
	}
}

// WithTubeDrive sets the initial drive in [1, 20].
func WithTubeDrive(drive float64) TubeDistortionOption {
	return func(cfg *tubeDistortionConfig) error {
		if drive < minTubeDrive || drive > maxTubeDrive || !core.IsFinite(drive) {
			return fmt.Errorf("tube distortion drive must be in [%g, %g]: %f", minTubeDrive, maxTubeDrive, drive)
		}
		cfg.drive = drive
		return nil
	}
}

// WithTubeMix sets the initial dry/wet mix in [0, 1].
func WithTubeMix(mix float64) TubeDistortionOption {
	return func(cfg *tubeDistortionConfig) error {
		if mix < 0 || mix > 1 || !core.IsFinite(mix) {
			return fmt.Errorf("tube distortion mix must be in [0, 1]: %f", mix)
		}
		cfg.mix = mix
		return nil
	}
}

// WithTubeEnabled sets the initial bypass state.
func WithTubeEnabled(enabled bool) TubeDistortionOption {
	return func(cfg *tubeDistortionConfig) error {
		cfg.enabled = enabled
		return nil
	}
}

// TubeDistortion soft-clips input·drive through x/(1+|x|), compensates the
// loudness gain of higher drive, blends with the dry signal and finishes
// with a gentle y/(1+0.35|y|) safety clip.
type TubeDistortion struct {
	drive   float64
	mix     float64
	enabled bool

	compensation float64
}

// NewTubeDistortion creates a tube distortion. It has no sample-rate
// dependent state.
func NewTubeDistortion(opts ...TubeDistortionOption) (*TubeDistortion, error) {
	cfg := defaultTubeDistortionConfig()
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	d := &TubeDistortion{mix: cfg.mix, enabled: cfg.enabled}
	d.SetDrive(cfg.drive)

	return d, nil
}

// SetDrive sets the drive, clamped to [1, 20], and recomputes the loudness
// compensation.
func (d *TubeDistortion) SetDrive(drive float64) {
	d.drive = core.Clamp(drive, minTubeDrive, maxTubeDrive)
	d.compensation = 1 / (1 + tubeCompensation*d.drive)
}

// SetMix sets the dry/wet blend, clamped to [0, 1].
func (d *TubeDistortion) SetMix(mix float64) {
	d.mix = core.Clamp(mix, 0, 1)
}

// SetEnabled toggles processing.
func (d *TubeDistortion) SetEnabled(enabled bool) { d.enabled = enabled }

// Drive returns the drive.
func (d *TubeDistortion) Drive() float64 { return d.drive }

// Mix returns the dry/wet blend.
func (d *TubeDistortion) Mix() float64 { return d.mix }

// Enabled reports whether processing is active.
func (d *TubeDistortion) Enabled() bool { return d.enabled }

// Compensation returns the cached loudness compensation factor.
func (d *TubeDistortion) Compensation() float64 { return d.compensation }

// Reset is a no-op; the effect is memoryless.
func (d *TubeDistortion) Reset() {}

// ProcessSample processes one sample. Bypass and a fully dry mix return the
// input unchanged.
func (d *TubeDistortion) ProcessSample(input float64) float64 {
	if !d.enabled || d.mix == 0 {
		return input
	}

	x := input * d.drive
	shaped := x / (1 + math.Abs(x)) * d.compensation

	y := input*(1-d.mix) + shaped*d.mix
	return y / (1 + tubeSafetyKnee*math.Abs(y))
}

// ProcessInPlace processes buf in place.
func (d *TubeDistortion) ProcessInPlace(buf []float64) {
	for i := range buf {
		buf[i] = d.ProcessSample(buf[i])
	}
}
