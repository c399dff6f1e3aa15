package core

import "math"

// halfPi is used by the equal-power gain laws.
const halfPi = math.Pi / 2

// Clamp limits value to the inclusive range [min, max].
// NaN inputs resolve to min so that callers never propagate NaN into state.
func Clamp(value, min, max float64) float64 {
	if min > max {
		min, max = max, min
	}

	if value < min || math.IsNaN(value) {
		return min
	}

	if value > max {
		return max
	}

	return value
}

// ClampInt limits value to the inclusive range [min, max].
func ClampInt(value, min, max int) int {
	if min > max {
		min, max = max, min
	}

	if value < min {
		return min
	}

	if value > max {
		return max
	}

	return value
}

// IsFinite reports whether x is neither NaN nor ±Inf.
func IsFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// FlushDenormals converts tiny denormal-like values to exact zero.
// This can reduce denormal-related CPU slowdowns in hot DSP loops.
func FlushDenormals(x float64) float64 {
	const epsilon = 1e-30
	if x > -epsilon && x < epsilon {
		return 0
	}

	return x
}

// DBToLinear converts dB to linear amplitude (20*log10 convention).
func DBToLinear(db float64) float64 {
	return math.Pow(10, db/20)
}

// LinearToDB converts linear amplitude to dB (20*log10 convention).
// Returns -Inf for zero and NaN for negative values.
func LinearToDB(linear float64) float64 {
	if linear < 0 {
		return math.NaN()
	}

	if linear == 0 {
		return math.Inf(-1)
	}

	return 20 * math.Log10(linear)
}

// DecayCoeff returns the per-sample multiplier of an exponential decay with a
// time constant of ms milliseconds: exp(-1/(sampleRate*ms/1000)).
// Non-positive times decay immediately.
func DecayCoeff(ms, sampleRate float64) float64 {
	samples := sampleRate * ms / 1000
	if samples <= 0 || !IsFinite(samples) {
		return 0
	}

	return math.Exp(-1 / samples)
}

// SmoothingCoeff returns the one-pole smoothing step 1-DecayCoeff(ms, sampleRate),
// i.e. the fraction of the remaining distance covered per sample.
func SmoothingCoeff(ms, sampleRate float64) float64 {
	return 1 - DecayCoeff(ms, sampleRate)
}

// Quantize snaps x to a grid of the given number of levels per unit amplitude.
// Levels below 1 leave x untouched.
func Quantize(x, levels float64) float64 {
	if levels < 1 {
		return x
	}

	return math.Round(x*levels) / levels
}

// EqualPowerGains returns the outgoing and incoming gains of an equal-power
// crossfade at position t in [0, 1]: cos(t·π/2) and cos((1-t)·π/2).
func EqualPowerGains(t float64) (out, in float64) {
	t = Clamp(t, 0, 1)
	return math.Cos(t * halfPi), math.Cos((1 - t) * halfPi)
}

// MixGains returns the dry and wet gains of an equal-power mix control.
func MixGains(mix float64) (dry, wet float64) {
	mix = Clamp(mix, 0, 1)
	return math.Cos(mix * halfPi), math.Sin(mix * halfPi)
}
