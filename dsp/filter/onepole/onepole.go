// Package onepole provides first-order low-pass and high-pass sections.
package onepole

import (
	"math"

	"github.com/Ostrovsky42/GroovePuter-sub001/dsp/core"
)

// maxCutoffRatio keeps the cutoff safely below Nyquist.
const maxCutoffRatio = 0.45

// Coefficient returns the smoothing step 1-exp(-2π·fc/fs) for a cutoff of
// cutoffHz, clamped to (0, 0.45·sampleRate].
func Coefficient(cutoffHz, sampleRate float64) float64 {
	if sampleRate <= 0 || !core.IsFinite(sampleRate) {
		return 1
	}
	fc := core.Clamp(cutoffHz, 1e-3, sampleRate*maxCutoffRatio)
	return 1 - math.Exp(-2*math.Pi*fc/sampleRate)
}

// LowPass is a one-pole low-pass: y += a·(x - y).
type LowPass struct {
	a float64
	y float64
}

// NewLowPass returns a low-pass at cutoffHz.
func NewLowPass(cutoffHz, sampleRate float64) LowPass {
	return LowPass{a: Coefficient(cutoffHz, sampleRate)}
}

// SetCutoff updates the coefficient without touching state.
func (f *LowPass) SetCutoff(cutoffHz, sampleRate float64) {
	f.a = Coefficient(cutoffHz, sampleRate)
}

// SetCoefficient sets the smoothing step directly (clamped to [0, 1]).
func (f *LowPass) SetCoefficient(a float64) {
	f.a = core.Clamp(a, 0, 1)
}

// Coefficient returns the smoothing step.
func (f *LowPass) Coefficient() float64 { return f.a }

// ProcessSample filters one sample.
func (f *LowPass) ProcessSample(x float64) float64 {
	f.y += f.a * (x - f.y)
	f.y = core.FlushDenormals(f.y)
	return f.y
}

// Last returns the most recent output.
func (f *LowPass) Last() float64 { return f.y }

// Reset clears state.
func (f *LowPass) Reset() { f.y = 0 }

// HighPass is the complement of a one-pole low-pass: x - lowpass(x).
type HighPass struct {
	lp LowPass
}

// NewHighPass returns a high-pass at cutoffHz.
func NewHighPass(cutoffHz, sampleRate float64) HighPass {
	return HighPass{lp: NewLowPass(cutoffHz, sampleRate)}
}

// SetCutoff updates the coefficient without touching state.
func (f *HighPass) SetCutoff(cutoffHz, sampleRate float64) {
	f.lp.SetCutoff(cutoffHz, sampleRate)
}

// ProcessSample filters one sample.
func (f *HighPass) ProcessSample(x float64) float64 {
	return x - f.lp.ProcessSample(x)
}

// Reset clears state.
func (f *HighPass) Reset() { f.lp.Reset() }
