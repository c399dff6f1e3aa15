package tone

import (
	"errors"
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"

	"github.com/Ostrovsky42/GroovePuter-sub001/dsp/window"
)

const (
	minFFTSize = 64
	maxFFTSize = 1 << 16
)

// ErrTooShort is returned when a buffer holds fewer than 64 samples.
var ErrTooShort = errors.New("tone: buffer too short for analysis")

// Option configures Analyze.
type Option func(*config)

type config struct {
	window window.Type
}

// WithWindow selects the analysis window. The default is Hann.
func WithWindow(t window.Type) Option {
	return func(c *config) {
		c.window = t
	}
}

// Analysis summarises the magnitude spectrum of one buffer.
type Analysis struct {
	FFTSize int
	BinHz   float64
	Window  window.Type
	// Dominant is the strongest non-DC frequency, refined by parabolic
	// interpolation of the log power around the peak bin.
	Dominant float64
	// Centroid is the power-weighted mean frequency.
	Centroid  float64
	PeakPower float64
	// PeakAmplitude estimates the amplitude of the dominant sinusoid,
	// corrected for the window's coherent gain.
	PeakAmplitude float64
}

// Analyze transforms the first power-of-two span of samples (at most 65536)
// after removing the mean and applying the analysis window. A silent buffer
// yields a zero Analysis without error.
func Analyze(samples []float64, sampleRate float64, opts ...Option) (Analysis, error) {
	cfg := config{window: window.TypeHann}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return Analysis{}, fmt.Errorf("tone: sample rate must be positive and finite: %f", sampleRate)
	}
	n := fftSize(len(samples))
	if n < minFFTSize {
		return Analysis{}, ErrTooShort
	}

	frame := make([]float64, n)
	copy(frame, samples[:n])
	removeMean(frame)
	coeffs := window.Generate(cfg.window, n, window.WithPeriodic())
	vecmath.MulBlockInPlace(frame, coeffs)

	in := make([]complex128, n)
	for i, v := range frame {
		in[i] = complex(v, 0)
	}
	plan, err := algofft.NewPlan64(n)
	if err != nil {
		return Analysis{}, fmt.Errorf("tone: fft plan: %w", err)
	}
	out := make([]complex128, n)
	if err := plan.Forward(out, in); err != nil {
		return Analysis{}, fmt.Errorf("tone: fft: %w", err)
	}

	bins := n/2 + 1
	re := make([]float64, bins)
	im := make([]float64, bins)
	for k := range bins {
		re[k] = real(out[k])
		im[k] = imag(out[k])
	}
	power := make([]float64, bins)
	vecmath.Power(power, re, im)

	a := Analysis{FFTSize: n, BinHz: sampleRate / float64(n), Window: cfg.window}

	peak := 0
	var total, weighted float64
	for k := 1; k < bins; k++ {
		total += power[k]
		weighted += power[k] * float64(k)
		if power[k] > power[peak] || peak == 0 {
			peak = k
		}
	}
	if total <= 0 {
		return a, nil
	}

	a.PeakPower = power[peak]
	if cg := window.CoherentGain(coeffs); cg > 0 {
		a.PeakAmplitude = 2 * math.Sqrt(a.PeakPower) / (float64(n) * cg)
	}
	a.Centroid = weighted / total * a.BinHz
	a.Dominant = (float64(peak) + interpolate(power, peak)) * a.BinHz
	return a, nil
}

// DominantFrequency returns Analyze(samples, sampleRate).Dominant.
func DominantFrequency(samples []float64, sampleRate float64) (float64, error) {
	a, err := Analyze(samples, sampleRate)
	if err != nil {
		return 0, err
	}
	return a.Dominant, nil
}

func fftSize(length int) int {
	if length > maxFFTSize {
		length = maxFFTSize
	}
	n := 1
	for n*2 <= length {
		n *= 2
	}
	return n
}

func removeMean(x []float64) {
	var sum float64
	for _, v := range x {
		sum += v
	}
	mean := sum / float64(len(x))
	for i := range x {
		x[i] -= mean
	}
}

// interpolate returns the fractional bin offset of the spectral peak.
func interpolate(power []float64, k int) float64 {
	if k <= 0 || k >= len(power)-1 {
		return 0
	}
	const floor = 1e-300
	l := math.Log(power[k-1] + floor)
	c := math.Log(power[k] + floor)
	r := math.Log(power[k+1] + floor)
	den := l - 2*c + r
	if den == 0 {
		return 0
	}
	d := 0.5 * (l - r) / den
	if d > 0.5 || d < -0.5 {
		return 0
	}
	return d
}
