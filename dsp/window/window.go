package window

import (
	"math"
	"strings"

	"github.com/cwbudde/algo-vecmath"
)

// Type identifies a window function.
type Type int

const (
	// TypeRectangular applies no taper.
	TypeRectangular Type = iota
	// TypeHann is the raised cosine.
	TypeHann
	// TypeHamming is the raised cosine with non-zero endpoints.
	TypeHamming
	// TypeBlackman is the three-term cosine sum.
	TypeBlackman
)

var (
	hannCoeffs     = []float64{0.5, 0.5}
	hammingCoeffs  = []float64{0.54, 0.46}
	blackmanCoeffs = []float64{0.42, 0.5, 0.08}
)

func (t Type) String() string {
	switch t {
	case TypeRectangular:
		return "rectangular"
	case TypeHann:
		return "hann"
	case TypeHamming:
		return "hamming"
	case TypeBlackman:
		return "blackman"
	default:
		return "unknown"
	}
}

// ParseType maps a case-insensitive window name onto its Type.
func ParseType(name string) (Type, bool) {
	for _, t := range []Type{TypeRectangular, TypeHann, TypeHamming, TypeBlackman} {
		if strings.EqualFold(name, t.String()) {
			return t, true
		}
	}
	return TypeHann, false
}

// Option configures window generation.
type Option func(*config)

type config struct {
	periodic bool
}

// WithPeriodic selects the periodic form used for FFT framing instead of the
// symmetric form.
func WithPeriodic() Option {
	return func(c *config) {
		c.periodic = true
	}
}

// Generate returns length coefficients of window t. Unknown types yield a
// rectangular window.
func Generate(t Type, length int, opts ...Option) []float64 {
	if length <= 0 {
		return nil
	}

	var cfg config
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	span := float64(length - 1)
	if cfg.periodic {
		span = float64(length)
	}

	out := make([]float64, length)
	for i := range out {
		x := 0.0
		if span > 0 {
			x = float64(i) / span
		}
		out[i] = eval(t, x)
	}
	return out
}

// Apply multiplies buf in place by window t.
func Apply(t Type, buf []float64, opts ...Option) {
	if len(buf) == 0 || t == TypeRectangular {
		return
	}
	vecmath.MulBlockInPlace(buf, Generate(t, len(buf), opts...))
}

// CoherentGain returns sum(w)/N, the window's response to DC. It is 0 for an
// empty window.
func CoherentGain(coeffs []float64) float64 {
	if len(coeffs) == 0 {
		return 0
	}
	var sum float64
	for _, c := range coeffs {
		sum += c
	}
	return sum / float64(len(coeffs))
}

func eval(t Type, x float64) float64 {
	switch t {
	case TypeHann:
		return cosineSum(x, hannCoeffs)
	case TypeHamming:
		return cosineSum(x, hammingCoeffs)
	case TypeBlackman:
		return cosineSum(x, blackmanCoeffs)
	default:
		return 1
	}
}

// cosineSum evaluates a0 - a1·cos(2πx) + a2·cos(4πx) - ... at x in [0, 1].
func cosineSum(x float64, coeffs []float64) float64 {
	var sum float64
	sign := 1.0
	for k, a := range coeffs {
		sum += sign * a * math.Cos(2*math.Pi*float64(k)*x)
		sign = -sign
	}
	return sum
}
