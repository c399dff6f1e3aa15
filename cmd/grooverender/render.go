package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Ostrovsky42/GroovePuter-sub001/dsp/core"
	"github.com/Ostrovsky42/GroovePuter-sub001/dsp/effects/dynamics"
	"github.com/Ostrovsky42/GroovePuter-sub001/internal/config"
	"github.com/Ostrovsky42/GroovePuter-sub001/internal/groovebox"
	"github.com/Ostrovsky42/GroovePuter-sub001/measure/diag"
)

// buildEngine creates a running groovebox configured from cfg.
func buildEngine(cfg config.Config, logger *slog.Logger, d *diag.Diagnostics) (*groovebox.Engine, error) {
	opts := []groovebox.Option{
		groovebox.WithProcessor(
			core.WithSampleRate(float64(cfg.Audio.SampleRate)),
			core.WithBlockSize(cfg.Audio.BlockSize),
		),
		groovebox.WithLogger(logger),
		groovebox.WithEngine(cfg.EngineType()),
		groovebox.WithReverbPredelay(cfg.Effects.Reverb.Predelay),
		groovebox.WithLimiter(
			dynamics.WithLimiterCeiling(cfg.Effects.Limiter.CeilingDB),
			dynamics.WithLimiterRelease(cfg.Effects.Limiter.ReleaseMs),
			dynamics.WithLimiterLookahead(cfg.Effects.Limiter.LookaheadMs),
		),
	}
	if d != nil {
		opts = append(opts, groovebox.WithDiagnostics(d))
	}

	eng, err := groovebox.NewEngine(opts...)
	if err != nil {
		return nil, fmt.Errorf("build groovebox: %w", err)
	}

	steps := make([]groovebox.Step, len(cfg.Pattern.Steps))
	for i, s := range cfg.Pattern.Steps {
		steps[i] = groovebox.Step{
			Note:     s.Note,
			Rest:     s.Rest,
			Accent:   s.Accent,
			Slide:    s.Slide,
			Velocity: s.Velocity,
			Gate:     s.Gate,
		}
	}

	fx := cfg.Effects
	eng.Apply(func() {
		sv := eng.Synth()
		sv.SetGrooveMode(cfg.GrooveMode())
		sv.SetLoFiAmount(cfg.Voice.LoFi)
		for name, value := range cfg.Voice.Params {
			if !eng.SetParameter(name, value) {
				logger.Warn("unknown synth parameter", slog.String("name", name), slog.String("engine", sv.Name()))
			}
		}

		eng.Distortion().SetEnabled(fx.Distortion.Enabled)
		eng.Distortion().SetDrive(fx.Distortion.Drive)
		eng.Distortion().SetMix(fx.Distortion.Mix)
		eng.Compressor().SetEnabled(fx.Compressor.Enabled)
		eng.Compressor().SetAmount(fx.Compressor.Amount)
		eng.Compressor().SetMix(fx.Compressor.Mix)
		eng.TransientShaper().SetAttackAmount(fx.Transient.Attack)
		eng.TransientShaper().SetSustainAmount(fx.Transient.Sustain)
		eng.Reverb().SetDecay(fx.Reverb.Decay)
		eng.SetReverbSend(fx.Reverb.Send)

		eng.SetSteps(steps)
		eng.SetTransport(cfg.Pattern.TempoBPM, cfg.Pattern.Shuffle)
		eng.SetRunning(true)
	})

	logger.Info("groovebox ready",
		slog.String("engine", cfg.EngineType().String()),
		slog.String("groove_mode", cfg.GrooveMode().String()),
		slog.Int("steps", len(steps)),
		slog.Float64("tempo_bpm", cfg.Pattern.TempoBPM),
		slog.Float64("reverb_rt60_s", eng.Reverb().RT60()),
		slog.Int("limiter_latency_samples", eng.Limiter().LatencySamples()),
	)
	return eng, nil
}

// render runs eng for cfg.Audio.Seconds, applying the configured engine
// switch when its time comes. It stops early when ctx is cancelled.
func render(ctx context.Context, tracer trace.Tracer, eng *groovebox.Engine, cfg config.Config) ([]float64, error) {
	ctx, span := tracer.Start(ctx, "render",
		trace.WithAttributes(
			attribute.String("engine", cfg.EngineType().String()),
			attribute.Int("sample_rate", cfg.Audio.SampleRate),
			attribute.Float64("seconds", cfg.Audio.Seconds),
		))
	defer span.End()

	sr := float64(cfg.Audio.SampleRate)
	total := int(math.Round(cfg.Audio.Seconds * sr))
	out := make([]float64, total)

	switchAt := -1
	switchTo, hasSwitch := cfg.SwitchEngineType()
	if hasSwitch {
		switchAt = int(cfg.Voice.SwitchAtSeconds * sr)
	}

	block := eng.BlockSize()
	for pos := 0; pos < total; pos += block {
		if err := ctx.Err(); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("render interrupted: %w", err)
		}
		if hasSwitch && pos >= switchAt {
			ok := eng.SwitchEngine(switchTo)
			span.AddEvent("engine switch", trace.WithAttributes(
				attribute.String("to", switchTo.String()),
				attribute.Bool("ok", ok),
			))
			hasSwitch = false
		}
		eng.Render(out[pos:min(pos+block, total)])
	}
	return out, nil
}

func writeWAVFile(ctx context.Context, tracer trace.Tracer, path string, samples []float64, sampleRate int) error {
	_, span := tracer.Start(ctx, "write_wav", trace.WithAttributes(attribute.String("path", path)))
	defer span.End()

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := writeWAV(f, samples, sampleRate); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}
	return nil
}

// writeWAV encodes samples as 16-bit mono PCM. Samples are clamped to
// [-1, 1] and truncated toward zero.
func writeWAV(w io.WriteSeeker, samples []float64, sampleRate int) error {
	data := make([]int, len(samples))
	for i, x := range samples {
		data[i] = int(core.Clamp(x, -1, 1) * math.MaxInt16)
	}
	buffer := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}

	enc := wav.NewEncoder(w, sampleRate, 16, 1, 1)
	if err := enc.Write(buffer); err != nil {
		return fmt.Errorf("write wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("close wav encoder: %w", err)
	}
	return nil
}
