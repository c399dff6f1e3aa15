// Package config loads the YAML configuration of the render tool.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Ostrovsky42/GroovePuter-sub001/dsp/effects/reverb"
	"github.com/Ostrovsky42/GroovePuter-sub001/dsp/voice"
	"github.com/Ostrovsky42/GroovePuter-sub001/dsp/window"
)

const (
	// MaxSteps is the longest pattern accepted.
	MaxSteps = 64

	minSampleRate = 8000
	// maxSampleRate is the highest rate every effect of the chain accepts.
	maxSampleRate = int(reverb.DrumReverbMaxSampleRate)

	maxLimiterLookaheadMs = 20
)

type AudioConfig struct {
	SampleRate int     `yaml:"sample_rate"`
	BlockSize  int     `yaml:"block_size"`
	Seconds    float64 `yaml:"seconds"`
	Output     string  `yaml:"output"`
}

type VoiceConfig struct {
	Engine     string  `yaml:"engine"`
	GrooveMode string  `yaml:"groove_mode"`
	LoFi       float64 `yaml:"lofi"`
	// Params maps parameter labels to values in their own units.
	Params map[string]float64 `yaml:"params"`
	// SwitchTo, when set, hot-swaps the engine after SwitchAtSeconds.
	SwitchTo        string  `yaml:"switch_to"`
	SwitchAtSeconds float64 `yaml:"switch_at_seconds"`
}

type StepConfig struct {
	Note     int     `yaml:"note"`
	Rest     bool    `yaml:"rest"`
	Accent   bool    `yaml:"accent"`
	Slide    bool    `yaml:"slide"`
	Velocity int     `yaml:"velocity"`
	Gate     float64 `yaml:"gate"`
}

type PatternConfig struct {
	TempoBPM float64 `yaml:"tempo_bpm"`
	// Shuffle in [0, 1] lengthens even steps and shortens odd ones.
	Shuffle float64      `yaml:"shuffle"`
	Steps   []StepConfig `yaml:"steps"`
}

type DistortionConfig struct {
	Enabled bool    `yaml:"enabled"`
	Drive   float64 `yaml:"drive"`
	Mix     float64 `yaml:"mix"`
}

type CompressorConfig struct {
	Enabled bool    `yaml:"enabled"`
	Amount  float64 `yaml:"amount"`
	Mix     float64 `yaml:"mix"`
}

type TransientConfig struct {
	Attack  float64 `yaml:"attack"`
	Sustain float64 `yaml:"sustain"`
}

type ReverbConfig struct {
	Send     float64 `yaml:"send"`
	Decay    float64 `yaml:"decay"`
	Predelay bool    `yaml:"predelay"`
}

// LimiterConfig shapes the master-bus limiter.
type LimiterConfig struct {
	CeilingDB   float64 `yaml:"ceiling_db"`
	ReleaseMs   float64 `yaml:"release_ms"`
	LookaheadMs float64 `yaml:"lookahead_ms"`
}

type EffectsConfig struct {
	Distortion DistortionConfig `yaml:"distortion"`
	Compressor CompressorConfig `yaml:"compressor"`
	Transient  TransientConfig  `yaml:"transient"`
	Reverb     ReverbConfig     `yaml:"reverb"`
	Limiter    LimiterConfig    `yaml:"limiter"`
}

// AnalysisConfig controls the spectrum summary logged after a render.
type AnalysisConfig struct {
	Window string `yaml:"window"`
}

type DiagnosticsConfig struct {
	Enabled         bool  `yaml:"enabled"`
	FlushIntervalMs int64 `yaml:"flush_interval_ms"`
}

type TelemetryConfig struct {
	LogLevel string `yaml:"log_level"`
	// PrometheusBind serves /metrics while rendering when non-empty.
	PrometheusBind string `yaml:"prometheus_bind"`
	OTLPEndpoint   string `yaml:"otlp_endpoint"`
	OTLPInsecure   bool   `yaml:"otlp_insecure"`
	// TraceStdout writes render spans to stderr when no OTLP endpoint is set.
	TraceStdout bool `yaml:"trace_stdout"`
}

type Config struct {
	Audio       AudioConfig       `yaml:"audio"`
	Voice       VoiceConfig       `yaml:"voice"`
	Pattern     PatternConfig     `yaml:"pattern"`
	Effects     EffectsConfig     `yaml:"effects"`
	Diagnostics DiagnosticsConfig `yaml:"diagnostics"`
	Analysis    AnalysisConfig    `yaml:"analysis"`
	Telemetry   TelemetryConfig   `yaml:"telemetry"`
}

// Default returns a complete configuration rendering eight seconds of a
// sixteen-step acid line.
func Default() Config {
	return Config{
		Audio: AudioConfig{
			SampleRate: 44100,
			BlockSize:  256,
			Seconds:    8,
			Output:     "groove.wav",
		},
		Voice: VoiceConfig{
			Engine:     "acid",
			GrooveMode: "acid",
		},
		Pattern: PatternConfig{
			TempoBPM: 124,
			Steps:    defaultSteps(),
		},
		Effects: EffectsConfig{
			Distortion: DistortionConfig{Enabled: true, Drive: 3, Mix: 0.5},
			Compressor: CompressorConfig{Enabled: true, Amount: 0.4, Mix: 1},
			Transient:  TransientConfig{Attack: 0.2, Sustain: 0},
			Reverb:     ReverbConfig{Send: 0.15, Decay: 0.3, Predelay: true},
			Limiter:    LimiterConfig{CeilingDB: -1, ReleaseMs: 80, LookaheadMs: 2},
		},
		Diagnostics: DiagnosticsConfig{
			Enabled:         true,
			FlushIntervalMs: 250,
		},
		Analysis: AnalysisConfig{Window: "hann"},
		Telemetry: TelemetryConfig{
			LogLevel:     "info",
			OTLPInsecure: true,
		},
	}
}

func defaultSteps() []StepConfig {
	notes := [16]int{36, 36, 48, 36, 39, 36, 43, 46, 36, 48, 36, 41, 39, 36, 51, 48}
	steps := make([]StepConfig, len(notes))
	for i, n := range notes {
		steps[i] = StepConfig{Note: n, Velocity: 100, Gate: 0.5}
	}
	steps[2].Accent = true
	steps[7].Slide = true
	steps[10].Accent = true
	steps[11].Slide = true
	steps[13].Rest = true
	steps[14].Accent = true
	steps[15].Slide = true
	return steps
}

// Load reads path (when non-empty) over Default, applies GROOVE_* environment
// overrides and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return cfg, fmt.Errorf("config file not found: %w", err)
			}
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyEnvOverrides(&cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	overrideInt(&cfg.Audio.SampleRate, "GROOVE_AUDIO_SAMPLE_RATE")
	overrideInt(&cfg.Audio.BlockSize, "GROOVE_AUDIO_BLOCK_SIZE")
	overrideFloat(&cfg.Audio.Seconds, "GROOVE_AUDIO_SECONDS")
	overrideString(&cfg.Audio.Output, "GROOVE_AUDIO_OUTPUT")
	overrideString(&cfg.Voice.Engine, "GROOVE_VOICE_ENGINE")
	overrideString(&cfg.Voice.GrooveMode, "GROOVE_VOICE_GROOVE_MODE")
	overrideFloat(&cfg.Voice.LoFi, "GROOVE_VOICE_LOFI")
	overrideString(&cfg.Voice.SwitchTo, "GROOVE_VOICE_SWITCH_TO")
	overrideFloat(&cfg.Voice.SwitchAtSeconds, "GROOVE_VOICE_SWITCH_AT_SECONDS")
	overrideFloat(&cfg.Pattern.TempoBPM, "GROOVE_PATTERN_TEMPO_BPM")
	overrideFloat(&cfg.Pattern.Shuffle, "GROOVE_PATTERN_SHUFFLE")
	overrideFloat(&cfg.Effects.Reverb.Send, "GROOVE_EFFECTS_REVERB_SEND")
	overrideFloat(&cfg.Effects.Limiter.CeilingDB, "GROOVE_EFFECTS_LIMITER_CEILING_DB")
	overrideString(&cfg.Analysis.Window, "GROOVE_ANALYSIS_WINDOW")
	overrideBool(&cfg.Diagnostics.Enabled, "GROOVE_DIAGNOSTICS_ENABLED")
	overrideInt64(&cfg.Diagnostics.FlushIntervalMs, "GROOVE_DIAGNOSTICS_FLUSH_INTERVAL_MS")
	overrideString(&cfg.Telemetry.LogLevel, "GROOVE_TELEMETRY_LOG_LEVEL")
	overrideString(&cfg.Telemetry.PrometheusBind, "GROOVE_TELEMETRY_PROMETHEUS_BIND")
	overrideString(&cfg.Telemetry.OTLPEndpoint, "GROOVE_TELEMETRY_OTLP_ENDPOINT")
	overrideBool(&cfg.Telemetry.OTLPInsecure, "GROOVE_TELEMETRY_OTLP_INSECURE")
	overrideBool(&cfg.Telemetry.TraceStdout, "GROOVE_TELEMETRY_TRACE_STDOUT")
}

func overrideString(target *string, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok && strings.TrimSpace(value) != "" {
		*target = value
	}
}

func overrideInt(target *int, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok {
		if parsed, err := strconv.Atoi(value); err == nil {
			*target = parsed
		}
	}
}

func overrideInt64(target *int64, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			*target = parsed
		}
	}
}

func overrideBool(target *bool, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok {
		if parsed, err := strconv.ParseBool(value); err == nil {
			*target = parsed
		}
	}
}

func overrideFloat(target *float64, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			*target = parsed
		}
	}
}

// Validate checks structural settings. Sound-shaping values outside their
// ranges are left to the components, which clamp them.
func (c Config) Validate() error {
	if c.Audio.SampleRate < minSampleRate || c.Audio.SampleRate > maxSampleRate {
		return fmt.Errorf("audio.sample_rate must be between %d and %d", minSampleRate, maxSampleRate)
	}
	if c.Audio.BlockSize <= 0 || c.Audio.BlockSize > 8192 {
		return errors.New("audio.block_size must be between 1 and 8192")
	}
	if c.Audio.Seconds <= 0 {
		return errors.New("audio.seconds must be positive")
	}
	if _, ok := voice.ParseEngineType(c.Voice.Engine); !ok {
		return fmt.Errorf("voice.engine %q is unknown", c.Voice.Engine)
	}
	if c.Voice.SwitchTo != "" {
		if _, ok := voice.ParseEngineType(c.Voice.SwitchTo); !ok {
			return fmt.Errorf("voice.switch_to %q is unknown", c.Voice.SwitchTo)
		}
		if c.Voice.SwitchAtSeconds < 0 {
			return errors.New("voice.switch_at_seconds must be >= 0")
		}
	}
	if _, ok := voice.ParseGrooveMode(c.Voice.GrooveMode); !ok {
		return fmt.Errorf("voice.groove_mode %q is unknown", c.Voice.GrooveMode)
	}
	if c.Pattern.TempoBPM < 20 || c.Pattern.TempoBPM > 300 {
		return errors.New("pattern.tempo_bpm must be between 20 and 300")
	}
	if len(c.Pattern.Steps) == 0 || len(c.Pattern.Steps) > MaxSteps {
		return fmt.Errorf("pattern.steps must hold 1 to %d steps", MaxSteps)
	}
	for i, s := range c.Pattern.Steps {
		if s.Rest {
			continue
		}
		if s.Note < 0 || s.Note > 127 {
			return fmt.Errorf("pattern.steps[%d].note must be a MIDI note 0..127", i)
		}
	}
	if c.Effects.Limiter.CeilingDB < -24 || c.Effects.Limiter.CeilingDB > 0 {
		return errors.New("effects.limiter.ceiling_db must be between -24 and 0")
	}
	if c.Effects.Limiter.ReleaseMs < 1 || c.Effects.Limiter.ReleaseMs > 2000 {
		return errors.New("effects.limiter.release_ms must be between 1 and 2000")
	}
	if c.Effects.Limiter.LookaheadMs < 0 || c.Effects.Limiter.LookaheadMs > maxLimiterLookaheadMs {
		return fmt.Errorf("effects.limiter.lookahead_ms must be between 0 and %d", maxLimiterLookaheadMs)
	}
	if _, ok := window.ParseType(c.Analysis.Window); !ok {
		return fmt.Errorf("analysis.window %q is unknown", c.Analysis.Window)
	}
	if c.Diagnostics.Enabled && c.Diagnostics.FlushIntervalMs <= 0 {
		return errors.New("diagnostics.flush_interval_ms must be positive when diagnostics are enabled")
	}
	switch strings.ToLower(c.Telemetry.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return errors.New("telemetry.log_level must be one of debug|info|warn|error")
	}
	return nil
}

// EngineType returns the parsed initial engine.
func (c Config) EngineType() voice.EngineType {
	t, _ := voice.ParseEngineType(c.Voice.Engine)
	return t
}

// SwitchEngineType returns the engine to swap to and whether a swap is set.
func (c Config) SwitchEngineType() (voice.EngineType, bool) {
	if c.Voice.SwitchTo == "" {
		return voice.EngineAcid, false
	}
	return voice.ParseEngineType(c.Voice.SwitchTo)
}

// WindowType returns the parsed analysis window.
func (c Config) WindowType() window.Type {
	t, _ := window.ParseType(c.Analysis.Window)
	return t
}

// GrooveMode returns the parsed groove mode.
func (c Config) GrooveMode() voice.GrooveMode {
	m, _ := voice.ParseGrooveMode(c.Voice.GrooveMode)
	return m
}
