package voice

import "github.com/Ostrovsky42/GroovePuter-sub001/dsp/core"

// DefaultGlideMs is the slide time used by all engines.
const DefaultGlideMs = 60.0

// Glide tracks an oscillator frequency that either jumps or slides toward
// its target. The zero value is usable after SetSampleRate.
type Glide struct {
	current float64
	target  float64
	coeff   float64
}

// SetSampleRate recomputes the slide coefficient.
func (g *Glide) SetSampleRate(sampleRate float64) {
	g.coeff = core.SmoothingCoeff(DefaultGlideMs, sampleRate)
}

// Set moves to freq, sliding when slide is true and a previous frequency exists.
func (g *Glide) Set(freq float64, slide bool) {
	g.target = freq
	if !slide || g.current <= 0 {
		g.current = freq
	}
}

// Next advances one sample and returns the current frequency.
func (g *Glide) Next() float64 {
	g.current += g.coeff * (g.target - g.current)
	return g.current
}

// Target returns the frequency being approached.
func (g *Glide) Target() float64 { return g.target }

// Reset forgets the previous frequency.
func (g *Glide) Reset() {
	g.current = 0
	g.target = 0
}
