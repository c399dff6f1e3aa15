package dynamics

import (
	"fmt"
	"math"

	"github.com/Ostrovsky42/GroovePuter-sub001/dsp/core"
)

const (
	defaultLimiterCeilingDB   = -1.0
	defaultLimiterReleaseMs   = 80.0
	defaultLimiterLookaheadMs = 2.0

	minLimiterCeilingDB   = -24.0
	maxLimiterCeilingDB   = 0.0
	minLimiterReleaseMs   = 1.0
	maxLimiterReleaseMs   = 2000.0
	minLimiterLookaheadMs = 0.0
	maxLimiterLookaheadMs = 20.0
)

// LimiterOption configures a LookaheadLimiter.
type LimiterOption func(*limiterConfig) error

type limiterConfig struct {
	ceilingDB   float64
	releaseMs   float64
	lookaheadMs float64
}

// WithLimiterCeiling sets the output ceiling in dBFS.
func WithLimiterCeiling(dB float64) LimiterOption {
	return func(cfg *limiterConfig) error {
		if dB < minLimiterCeilingDB || dB > maxLimiterCeilingDB || !core.IsFinite(dB) {
			return fmt.Errorf("lookahead limiter ceiling must be in [%g, %g] dB: %f",
				minLimiterCeilingDB, maxLimiterCeilingDB, dB)
		}
		cfg.ceilingDB = dB
		return nil
	}
}

// WithLimiterRelease sets the gain recovery time constant in milliseconds.
func WithLimiterRelease(ms float64) LimiterOption {
	return func(cfg *limiterConfig) error {
		if ms < minLimiterReleaseMs || ms > maxLimiterReleaseMs || !core.IsFinite(ms) {
			return fmt.Errorf("lookahead limiter release must be in [%g, %g] ms: %f",
				minLimiterReleaseMs, maxLimiterReleaseMs, ms)
		}
		cfg.releaseMs = ms
		return nil
	}
}

// WithLimiterLookahead sets the program delay in milliseconds.
func WithLimiterLookahead(ms float64) LimiterOption {
	return func(cfg *limiterConfig) error {
		if ms < minLimiterLookaheadMs || ms > maxLimiterLookaheadMs || !core.IsFinite(ms) {
			return fmt.Errorf("lookahead limiter lookahead must be in [%g, %g] ms: %f",
				minLimiterLookaheadMs, maxLimiterLookaheadMs, ms)
		}
		cfg.lookaheadMs = ms
		return nil
	}
}

// LookaheadLimiter is a master-bus peak limiter. The detector runs ahead of a
// delayed program path and holds each peak for the whole lookahead, so no
// finite output sample exceeds the ceiling.
type LookaheadLimiter struct {
	sampleRate  float64
	ceilingDB   float64
	ceiling     float64
	releaseMs   float64
	lookaheadMs float64

	releaseCoeff float64

	envelope float64
	hold     int
	gain     float64

	delayBuf []float64
	writePos int
}

// NewLookaheadLimiter creates a limiter with a -1 dBFS ceiling, 80 ms release
// and 2 ms lookahead unless overridden.
func NewLookaheadLimiter(sampleRate float64, opts ...LimiterOption) (*LookaheadLimiter, error) {
	if err := validateSampleRate(sampleRate); err != nil {
		return nil, fmt.Errorf("lookahead limiter %w", err)
	}

	cfg := limiterConfig{
		ceilingDB:   defaultLimiterCeilingDB,
		releaseMs:   defaultLimiterReleaseMs,
		lookaheadMs: defaultLimiterLookaheadMs,
	}
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	l := &LookaheadLimiter{
		sampleRate:  sampleRate,
		ceilingDB:   cfg.ceilingDB,
		ceiling:     core.DBToLinear(cfg.ceilingDB),
		releaseMs:   cfg.releaseMs,
		lookaheadMs: cfg.lookaheadMs,
		gain:        1,
	}
	l.rebuild()

	return l, nil
}

// SetSampleRate updates the release coefficient and resizes the delay. It
// clears the limiter state.
func (l *LookaheadLimiter) SetSampleRate(sampleRate float64) error {
	if err := validateSampleRate(sampleRate); err != nil {
		return fmt.Errorf("lookahead limiter %w", err)
	}
	l.sampleRate = sampleRate
	l.rebuild()
	return nil
}

// SetCeiling sets the output ceiling in dBFS, clamped to [-24, 0].
func (l *LookaheadLimiter) SetCeiling(dB float64) {
	if math.IsNaN(dB) {
		return
	}
	l.ceilingDB = core.Clamp(dB, minLimiterCeilingDB, maxLimiterCeilingDB)
	l.ceiling = core.DBToLinear(l.ceilingDB)
}

// SetRelease sets the release time, clamped to [1, 2000] ms.
func (l *LookaheadLimiter) SetRelease(ms float64) {
	if math.IsNaN(ms) {
		return
	}
	l.releaseMs = core.Clamp(ms, minLimiterReleaseMs, maxLimiterReleaseMs)
	l.releaseCoeff = core.DecayCoeff(l.releaseMs, l.sampleRate)
}

// Ceiling returns the ceiling in dBFS.
func (l *LookaheadLimiter) Ceiling() float64 { return l.ceilingDB }

// Release returns the release time in milliseconds.
func (l *LookaheadLimiter) Release() float64 { return l.releaseMs }

// Lookahead returns the program delay in milliseconds.
func (l *LookaheadLimiter) Lookahead() float64 { return l.lookaheadMs }

// LatencySamples returns the program delay in samples.
func (l *LookaheadLimiter) LatencySamples() int { return len(l.delayBuf) - 1 }

// SampleRate returns the sample rate in Hz.
func (l *LookaheadLimiter) SampleRate() float64 { return l.sampleRate }

// GainReductionDB returns the current gain reduction as a non-positive dB
// value.
func (l *LookaheadLimiter) GainReductionDB() float64 { return core.LinearToDB(l.gain) }

// Reset clears the detector and the delay line.
func (l *LookaheadLimiter) Reset() {
	l.envelope = 0
	l.hold = 0
	l.gain = 1
	l.writePos = 0
	core.Zero(l.delayBuf)
}

// ProcessSample processes one sample.
func (l *LookaheadLimiter) ProcessSample(input float64) float64 {
	a := math.Abs(input)
	switch {
	case a >= l.envelope:
		l.envelope = a
		l.hold = len(l.delayBuf) - 1
	case l.hold > 0:
		l.hold--
	default:
		l.envelope = core.FlushDenormals(l.envelope * l.releaseCoeff)
	}

	l.gain = 1
	if l.envelope > l.ceiling {
		l.gain = l.ceiling / l.envelope
	}

	l.delayBuf[l.writePos] = input
	l.writePos++
	if l.writePos == len(l.delayBuf) {
		l.writePos = 0
	}
	return l.delayBuf[l.writePos] * l.gain
}

// ProcessInPlace processes buf in place.
func (l *LookaheadLimiter) ProcessInPlace(buf []float64) {
	for i := range buf {
		buf[i] = l.ProcessSample(buf[i])
	}
}

func (l *LookaheadLimiter) rebuild() {
	delay := int(math.Round(l.lookaheadMs * l.sampleRate / 1000))
	l.delayBuf = core.EnsureLen(l.delayBuf, delay+1)
	l.releaseCoeff = core.DecayCoeff(l.releaseMs, l.sampleRate)
	l.Reset()
}
