package groovebox

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/cwbudde/algo-vecmath"

	"github.com/Ostrovsky42/GroovePuter-sub001/dsp/core"
	"github.com/Ostrovsky42/GroovePuter-sub001/dsp/effects"
	"github.com/Ostrovsky42/GroovePuter-sub001/dsp/effects/dynamics"
	"github.com/Ostrovsky42/GroovePuter-sub001/dsp/effects/reverb"
	"github.com/Ostrovsky42/GroovePuter-sub001/dsp/synth"
	"github.com/Ostrovsky42/GroovePuter-sub001/dsp/voice"
	"github.com/Ostrovsky42/GroovePuter-sub001/measure/diag"
)

const (
	defaultTempoBPM   = 120.0
	defaultMasterGain = 0.9
	defaultReverbSend = 0.15
)

// Option configures an Engine.
type Option func(*config) error

type config struct {
	proc        core.ProcessorConfig
	logger      *slog.Logger
	diagnostics *diag.Diagnostics
	engine      voice.EngineType
	registry    *synth.Registry
	predelay    bool
	limiter     []dynamics.LimiterOption
}

// WithProcessor sets sample rate and block size.
func WithProcessor(opts ...core.ProcessorOption) Option {
	return func(cfg *config) error {
		for _, opt := range opts {
			if opt != nil {
				opt(&cfg.proc)
			}
		}
		return nil
	}
}

// WithLogger sets the logger used for control-side events.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *config) error {
		if logger == nil {
			return fmt.Errorf("groovebox logger must not be nil")
		}
		cfg.logger = logger
		return nil
	}
}

// WithDiagnostics attaches a diagnostics accumulator to the master bus.
func WithDiagnostics(d *diag.Diagnostics) Option {
	return func(cfg *config) error {
		cfg.diagnostics = d
		return nil
	}
}

// WithEngine selects the initial synth engine.
func WithEngine(t voice.EngineType) Option {
	return func(cfg *config) error {
		if !t.Valid() {
			return fmt.Errorf("groovebox engine type is invalid: %d", int(t))
		}
		cfg.engine = t
		return nil
	}
}

// WithReverbPredelay enables the send reverb's pre-delay. The default is on.
func WithReverbPredelay(enabled bool) Option {
	return func(cfg *config) error {
		cfg.predelay = enabled
		return nil
	}
}

// WithLimiter configures the master-bus limiter.
func WithLimiter(opts ...dynamics.LimiterOption) Option {
	return func(cfg *config) error {
		cfg.limiter = append(cfg.limiter, opts...)
		return nil
	}
}

// WithRegistry sets the synth engine factories.
func WithRegistry(r *synth.Registry) Option {
	return func(cfg *config) error {
		if r == nil {
			return fmt.Errorf("groovebox registry must not be nil")
		}
		cfg.registry = r
		return nil
	}
}

// Engine renders one sequenced synth track through its effect chain onto a
// master bus behind a lookahead limiter.
type Engine struct {
	mu     sync.Mutex
	logger *slog.Logger

	sampleRate float64
	blockSize  int
	tempoBPM   float64
	shuffle    float64
	running    bool

	steps                []Step
	currentStep          int
	samplesUntilNextStep float64
	gateRemaining        int

	synth      *synth.Voice
	distortion *effects.TubeDistortion
	compressor *dynamics.OneKnobCompressor
	transient  *dynamics.TransientShaper
	reverb     *reverb.DrumReverb
	limiter    *dynamics.LookaheadLimiter
	reverbSend float64
	masterGain float64

	diagnostics *diag.Diagnostics
	rendered    int64

	track []float64
	send  []float64
	pre   []float64
}

// NewEngine creates a stopped engine with a default one-step pattern.
func NewEngine(opts ...Option) (*Engine, error) {
	cfg := config{
		proc:     core.DefaultProcessorConfig(),
		logger:   slog.Default(),
		engine:   voice.EngineAcid,
		predelay: true,
	}
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}
	sr := cfg.proc.SampleRate

	synthOpts := []synth.Option{synth.WithEngine(cfg.engine)}
	if cfg.registry != nil {
		synthOpts = append(synthOpts, synth.WithRegistry(cfg.registry))
	}
	sv, err := synth.New(sr, synthOpts...)
	if err != nil {
		return nil, fmt.Errorf("groovebox synth: %w", err)
	}
	dist, err := effects.NewTubeDistortion(effects.WithTubeEnabled(false))
	if err != nil {
		return nil, fmt.Errorf("groovebox distortion: %w", err)
	}
	comp, err := dynamics.NewOneKnobCompressor(sr)
	if err != nil {
		return nil, fmt.Errorf("groovebox compressor: %w", err)
	}
	ts, err := dynamics.NewTransientShaper(sr)
	if err != nil {
		return nil, fmt.Errorf("groovebox transient shaper: %w", err)
	}
	// The reverb runs fully wet as a send.
	rv, err := reverb.NewDrumReverb(sr,
		reverb.WithDrumReverbMix(1),
		reverb.WithDrumReverbPredelay(cfg.predelay))
	if err != nil {
		return nil, fmt.Errorf("groovebox reverb: %w", err)
	}
	lim, err := dynamics.NewLookaheadLimiter(sr, cfg.limiter...)
	if err != nil {
		return nil, fmt.Errorf("groovebox limiter: %w", err)
	}

	e := &Engine{
		logger:      cfg.logger,
		sampleRate:  sr,
		blockSize:   cfg.proc.BlockSize,
		tempoBPM:    defaultTempoBPM,
		steps:       []Step{{Note: 36, Velocity: voice.MaxVelocity, Gate: 0.5}},
		synth:       sv,
		distortion:  dist,
		compressor:  comp,
		transient:   ts,
		reverb:      rv,
		limiter:     lim,
		reverbSend:  defaultReverbSend,
		masterGain:  defaultMasterGain,
		diagnostics: cfg.diagnostics,
	}
	e.track = core.EnsureLen(e.track, e.blockSize)
	e.send = core.EnsureLen(e.send, e.blockSize)
	e.pre = core.EnsureLen(e.pre, e.blockSize)
	return e, nil
}

// Apply runs fn with rendering excluded. All control changes made while the
// engine may be rendering go through Apply.
func (e *Engine) Apply(fn func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	fn()
}

// Guard returns Apply as a synth.Guard.
func (e *Engine) Guard() synth.Guard { return e.Apply }

// SampleRate returns the render rate.
func (e *Engine) SampleRate() float64 { return e.sampleRate }

// BlockSize returns the internal block length.
func (e *Engine) BlockSize() int { return e.blockSize }

// Synth returns the track voice. Mutate it inside Apply only.
func (e *Engine) Synth() *synth.Voice { return e.synth }

// Distortion returns the first effect of the track chain.
func (e *Engine) Distortion() *effects.TubeDistortion { return e.distortion }

// Compressor returns the second effect of the track chain.
func (e *Engine) Compressor() *dynamics.OneKnobCompressor { return e.compressor }

// TransientShaper returns the last effect of the track chain.
func (e *Engine) TransientShaper() *dynamics.TransientShaper { return e.transient }

// Reverb returns the send reverb.
func (e *Engine) Reverb() *reverb.DrumReverb { return e.reverb }

// Limiter returns the master-bus limiter.
func (e *Engine) Limiter() *dynamics.LookaheadLimiter { return e.limiter }

// SetReverbSend sets the send level, clamped to [0, 1].
func (e *Engine) SetReverbSend(send float64) { e.reverbSend = core.Clamp(send, 0, 1) }

// SetMasterGain sets the pre-limiter gain, clamped to [0, 2].
func (e *Engine) SetMasterGain(gain float64) { e.masterGain = core.Clamp(gain, 0, 2) }

// SwitchEngine hot-swaps the synth engine under the guard and logs the
// outcome.
func (e *Engine) SwitchEngine(t voice.EngineType) bool {
	var from voice.EngineType
	var ok bool
	e.Apply(func() {
		from = e.synth.EngineType()
		ok = e.synth.SetEngine(t)
	})
	if ok {
		e.logger.Info("synth engine switched", "from", from.String(), "to", t.String())
	} else {
		e.logger.Warn("synth engine switch failed", "from", from.String(), "to", t.String())
	}
	return ok
}

// SetParameter sets the synth parameter whose label matches name
// (case-insensitive) to value in its own units. It reports whether a
// parameter matched. Unlike SwitchEngine it does not take the guard: call it
// inside Apply while the engine may be rendering.
func (e *Engine) SetParameter(name string, value float64) bool {
	for i := range e.synth.ParameterCount() {
		p := e.synth.Parameter(i)
		if strings.EqualFold(p.Label(), name) {
			p.SetValue(value)
			return true
		}
	}
	return false
}

// Render fills dst with mono master-bus samples in [-1, 1]. The guard is
// taken once per internal block.
func (e *Engine) Render(dst []float64) {
	for len(dst) > 0 {
		n := min(len(dst), e.blockSize)
		e.mu.Lock()
		e.renderBlock(dst[:n])
		e.flushDiagnostics()
		e.mu.Unlock()
		dst = dst[n:]
	}
}

func (e *Engine) renderBlock(out []float64) {
	n := len(out)
	track := e.track[:n]
	send := e.send[:n]
	pre := e.pre[:n]

	for i := range track {
		e.advance()
		track[i] = e.synth.Process()
	}

	e.distortion.ProcessInPlace(track)
	e.compressor.ProcessInPlace(track)
	e.transient.ProcessInPlace(track)

	vecmath.ScaleBlock(send, track, e.reverbSend)
	e.reverb.ProcessInPlace(send)

	copy(pre, track)
	vecmath.AddBlockInPlace(pre, send)
	vecmath.ScaleBlock(pre, pre, e.masterGain)

	copy(out, pre)
	e.limiter.ProcessInPlace(out)

	if e.diagnostics != nil {
		e.diagnostics.ObserveSourceBlock(diag.SourceVoices, track)
		e.diagnostics.ObserveBlock(pre, out)
	}
	e.rendered += int64(n)
}

// flushDiagnostics advances the diagnostics clock by rendered audio time.
// Reports are published here, between blocks.
func (e *Engine) flushDiagnostics() {
	if e.diagnostics == nil {
		return
	}
	e.diagnostics.FlushIfReady(e.rendered * 1000 / int64(e.sampleRate))
}

// Reset silences the voice and effects and rewinds the sequencer.
func (e *Engine) Reset() {
	e.Apply(func() {
		e.synth.Reset()
		e.compressor.Reset()
		e.transient.Reset()
		e.reverb.Reset()
		e.limiter.Reset()
		e.currentStep = 0
		e.samplesUntilNextStep = 0
		e.gateRemaining = 0
	})
}
