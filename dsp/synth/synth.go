package synth

import (
	"fmt"
	"math"

	"github.com/Ostrovsky42/GroovePuter-sub001/dsp/core"
	"github.com/Ostrovsky42/GroovePuter-sub001/dsp/param"
	"github.com/Ostrovsky42/GroovePuter-sub001/dsp/voice"
)

const (
	// CrossfadeMs is the engine swap duration.
	CrossfadeMs = 10.0
	// MinCrossfadeSamples bounds the swap at very low sample rates.
	MinCrossfadeSamples = 16
)

// CrossfadeSamples returns the swap length at sampleRate.
func CrossfadeSamples(sampleRate float64) int {
	n := int(math.Ceil(CrossfadeMs / 1000 * sampleRate))
	if n < MinCrossfadeSamples {
		return MinCrossfadeSamples
	}
	return n
}

// Option mutates constructor configuration.
type Option func(*config) error

type config struct {
	registry *Registry
	engine   voice.EngineType
}

func defaultConfig() config {
	return config{engine: voice.EngineAcid}
}

// WithRegistry sets the engine factories. The default is DefaultRegistry().
func WithRegistry(r *Registry) Option {
	return func(cfg *config) error {
		if r == nil {
			return fmt.Errorf("synth registry must not be nil")
		}
		cfg.registry = r
		return nil
	}
}

// WithEngine selects the initial engine.
func WithEngine(t voice.EngineType) Option {
	return func(cfg *config) error {
		if !t.Valid() {
			return fmt.Errorf("synth engine type is invalid: %d", int(t))
		}
		cfg.engine = t
		return nil
	}
}

// noteContext is what an incoming engine needs to pick up a held note.
type noteContext struct {
	held     bool
	freq     float64
	accent   bool
	slide    bool
	velocity int
}

// Voice owns the current engine and, during a swap, the incoming one.
//
// In the stable state Process renders the current engine alone. SetEngine
// builds the incoming engine, starts it on the held note if any, and
// crossfades for CrossfadeSamples with equal-power gains; the outgoing
// engine is dropped when the fade completes. Control calls made during a
// fade reach the incoming engine only.
type Voice struct {
	registry   *Registry
	sampleRate float64
	groove     voice.GrooveMode
	loFi       float64

	current voice.Voice
	next    voice.Voice
	pos     int
	total   int

	note noteContext
}

// New creates a synth voice with its initial engine.
func New(sampleRate float64, opts ...Option) (*Voice, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("synth sample rate must be positive and finite: %f", sampleRate)
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}
	if cfg.registry == nil {
		cfg.registry = DefaultRegistry()
	}

	current, err := cfg.registry.Build(cfg.engine, sampleRate)
	if err != nil {
		return nil, err
	}

	return &Voice{
		registry:   cfg.registry,
		sampleRate: sampleRate,
		current:    current,
		total:      CrossfadeSamples(sampleRate),
	}, nil
}

// SetEngine swaps to engine type t. It reports false, leaving the current
// engine in place, when t is unknown or its factory fails. Requesting the
// engine that is already incoming (or current when stable) is a no-op.
// Requesting another engine mid-fade restarts the fade toward the new one.
func (v *Voice) SetEngine(t voice.EngineType) bool {
	if v.EngineType() == t {
		return true
	}

	incoming, err := v.registry.Build(t, v.sampleRate)
	if err != nil {
		return false
	}
	incoming.SetGrooveMode(v.groove)
	incoming.SetLoFiAmount(v.loFi)
	if v.note.held {
		incoming.StartNote(v.note.freq, v.note.accent, v.note.slide, v.note.velocity)
	}

	v.next = incoming
	v.pos = 0
	return true
}

// EngineType returns the incoming engine's tag during a fade, otherwise the
// current engine's.
func (v *Voice) EngineType() voice.EngineType { return v.target().Type() }

// Crossfading reports whether a swap is in flight.
func (v *Voice) Crossfading() bool { return v.next != nil }

// Engine returns the engine that receives control calls.
func (v *Voice) Engine() voice.Voice { return v.target() }

// Process renders one sample.
func (v *Voice) Process() float64 {
	if v.next == nil {
		return v.current.Process()
	}

	t := float64(v.pos) / float64(v.total)
	gOld, gNew := core.EqualPowerGains(t)
	out := gOld*v.current.Process() + gNew*v.next.Process()

	v.pos++
	if v.pos >= v.total {
		v.settle()
	}
	return out
}

// ProcessBlock renders len(dst) samples into dst.
func (v *Voice) ProcessBlock(dst []float64) {
	for i := range dst {
		dst[i] = v.Process()
	}
}

// State completes any fade and snapshots the current engine.
func (v *Voice) State() voice.State {
	v.settle()
	return voice.Capture(v.current)
}

// SetState completes any fade, switches engine immediately when s names a
// different one, and restores the clamped parameter values. It reports
// false, changing nothing, when the required engine cannot be built.
func (v *Voice) SetState(s voice.State) bool {
	s = s.Sanitized()
	v.settle()

	if s.Engine != v.current.Type() {
		e, err := v.registry.Build(s.Engine, v.sampleRate)
		if err != nil {
			return false
		}
		e.SetGrooveMode(v.groove)
		e.SetLoFiAmount(v.loFi)
		v.current = e
		v.note = noteContext{}
	}

	voice.Restore(v.current, s)
	return true
}

// Type returns the same tag as EngineType.
func (v *Voice) Type() voice.EngineType { return v.EngineType() }

// Name returns the display name of the engine receiving control calls.
func (v *Voice) Name() string { return v.target().Name() }

// Reset drops any fade and silences the current engine.
func (v *Voice) Reset() {
	v.settle()
	v.current.Reset()
	v.note = noteContext{}
}

// SetSampleRate completes any fade and updates the current engine.
func (v *Voice) SetSampleRate(hz float64) {
	if hz <= 0 || !core.IsFinite(hz) {
		return
	}
	v.settle()
	v.sampleRate = hz
	v.total = CrossfadeSamples(hz)
	v.current.SetSampleRate(hz)
}

// StartNote remembers the note so a later swap can restart it, then forwards
// it to the incoming engine during a fade or the current one otherwise.
func (v *Voice) StartNote(freqHz float64, accent, slide bool, velocity int) {
	if freqHz <= 0 || !core.IsFinite(freqHz) {
		return
	}
	v.note = noteContext{
		held:     true,
		freq:     freqHz,
		accent:   accent,
		slide:    slide,
		velocity: velocity,
	}
	v.target().StartNote(freqHz, accent, slide, velocity)
}

// Release forgets the held note and releases the engine receiving control
// calls. An outgoing engine keeps sounding until the fade ends.
func (v *Voice) Release() {
	v.note.held = false
	v.target().Release()
}

// ParameterCount returns the parameter count of the engine receiving control
// calls.
func (v *Voice) ParameterCount() int { return v.target().ParameterCount() }

// Parameter returns parameter i of the engine receiving control calls, or
// nil when i is out of range.
func (v *Voice) Parameter(i int) *param.Parameter { return v.target().Parameter(i) }

// SetGrooveMode applies to both engines during a fade and is inherited by
// future engines.
func (v *Voice) SetGrooveMode(mode voice.GrooveMode) {
	v.groove = voice.ClampGrooveMode(mode)
	v.current.SetGrooveMode(v.groove)
	if v.next != nil {
		v.next.SetGrooveMode(v.groove)
	}
}

// GrooveMode returns the groove mode shared by current and future engines.
func (v *Voice) GrooveMode() voice.GrooveMode { return v.groove }

// SetLoFiAmount applies to both engines during a fade and is inherited by
// future engines.
func (v *Voice) SetLoFiAmount(amount float64) {
	v.loFi = core.Clamp(amount, 0, 1)
	v.current.SetLoFiAmount(v.loFi)
	if v.next != nil {
		v.next.SetLoFiAmount(v.loFi)
	}
}

// LoFiAmount returns the lo-fi amount shared by current and future engines.
func (v *Voice) LoFiAmount() float64 { return v.loFi }

func (v *Voice) target() voice.Voice {
	if v.next != nil {
		return v.next
	}
	return v.current
}

func (v *Voice) settle() {
	if v.next == nil {
		return
	}
	v.current = v.next
	v.next = nil
	v.pos = 0
}

var _ voice.Voice = (*Voice)(nil)
