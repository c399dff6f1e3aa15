package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/wav"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/Ostrovsky42/GroovePuter-sub001/dsp/voice"
	"github.com/Ostrovsky42/GroovePuter-sub001/internal/config"
	"github.com/Ostrovsky42/GroovePuter-sub001/measure/diag"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRenderDefaultConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Audio.Seconds = 0.5

	d, err := diag.New(diag.WithEnabled(true))
	if err != nil {
		t.Fatalf("diag.New() error = %v", err)
	}
	eng, err := buildEngine(cfg, testLogger(), d)
	if err != nil {
		t.Fatalf("buildEngine() error = %v", err)
	}

	samples, err := render(context.Background(), noop.NewTracerProvider().Tracer("test"), eng, cfg)
	if err != nil {
		t.Fatalf("render() error = %v", err)
	}
	if len(samples) != cfg.Audio.SampleRate/2 {
		t.Fatalf("len = %d, want %d", len(samples), cfg.Audio.SampleRate/2)
	}
	if last := d.Last(); last.Samples == 0 || last.PostPeak == 0 {
		t.Fatalf("expected a diagnostics report with audio, got %+v", last)
	}
}

func TestBuildEngineAtHighestValidRate(t *testing.T) {
	cfg := config.Default()
	cfg.Audio.SampleRate = 96000
	cfg.Audio.Seconds = 0.25
	cfg.Effects.Limiter.CeilingDB = -6
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	eng, err := buildEngine(cfg, testLogger(), nil)
	if err != nil {
		t.Fatalf("buildEngine() error = %v", err)
	}
	if got := eng.Limiter().Ceiling(); got != -6 {
		t.Fatalf("limiter ceiling=%g want=-6", got)
	}

	samples, err := render(context.Background(), noop.NewTracerProvider().Tracer("test"), eng, cfg)
	if err != nil {
		t.Fatalf("render() error = %v", err)
	}
	limit := math.Pow(10, -6.0/20) + 1e-12
	for i, x := range samples {
		if math.Abs(x) > limit {
			t.Fatalf("sample %d = %g exceeds the -6 dB ceiling", i, x)
		}
	}
}

func TestRenderAppliesEngineSwitch(t *testing.T) {
	cfg := config.Default()
	cfg.Audio.Seconds = 0.25
	cfg.Voice.SwitchTo = "chip"
	cfg.Voice.SwitchAtSeconds = 0.1

	eng, err := buildEngine(cfg, testLogger(), nil)
	if err != nil {
		t.Fatalf("buildEngine() error = %v", err)
	}
	if _, err := render(context.Background(), noop.NewTracerProvider().Tracer("test"), eng, cfg); err != nil {
		t.Fatalf("render() error = %v", err)
	}
	if got := eng.Synth().EngineType(); got != voice.EngineChip {
		t.Fatalf("engine = %v, want chip", got)
	}
}

func TestRenderHonoursCancellation(t *testing.T) {
	cfg := config.Default()
	eng, err := buildEngine(cfg, testLogger(), nil)
	if err != nil {
		t.Fatalf("buildEngine() error = %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := render(ctx, noop.NewTracerProvider().Tracer("test"), eng, cfg); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}

func TestWriteWAVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.wav")
	samples := []float64{0, 0.5, -0.5, 1.5, -2}
	if err := writeWAVFile(context.Background(), noop.NewTracerProvider().Tracer("test"), path, samples, 22050); err != nil {
		t.Fatalf("writeWAVFile() error = %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		t.Fatal("output is not a valid wav file")
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		t.Fatalf("FullPCMBuffer() error = %v", err)
	}
	if dec.SampleRate != 22050 || dec.BitDepth != 16 || dec.NumChans != 1 {
		t.Fatalf("header = %d Hz %d bit %d ch", dec.SampleRate, dec.BitDepth, dec.NumChans)
	}
	want := []int{0, 16383, -16383, 32767, -32767}
	if len(buf.Data) != len(want) {
		t.Fatalf("len = %d, want %d", len(buf.Data), len(want))
	}
	for i := range want {
		if buf.Data[i] != want[i] {
			t.Fatalf("sample %d got=%d want=%d", i, buf.Data[i], want[i])
		}
	}
}

func TestApplyFlags(t *testing.T) {
	cfg := config.Default()
	if err := applyFlags(&cfg, "x.wav", 3, "SID"); err != nil {
		t.Fatalf("applyFlags() error = %v", err)
	}
	if cfg.Audio.Output != "x.wav" || cfg.Audio.Seconds != 3 || cfg.EngineType() != voice.EngineSID {
		t.Fatalf("flags not applied: %+v %+v", cfg.Audio, cfg.Voice)
	}
	if err := applyFlags(&cfg, "", 0, "banjo"); err == nil {
		t.Fatal("expected error for unknown engine")
	}
}

func TestSetupTelemetryWithoutExporters(t *testing.T) {
	var logs bytes.Buffer
	tel, err := setupTelemetry(context.Background(), config.Default(), slog.New(slog.NewTextHandler(&logs, nil)))
	if err != nil {
		t.Fatalf("setupTelemetry() error = %v", err)
	}
	if tel.MetricsHandler != nil {
		t.Fatal("no prometheus bind configured, handler must be nil")
	}
	if _, err := diag.NewOTelReporter(tel.Meter); err != nil {
		t.Fatalf("NewOTelReporter() error = %v", err)
	}
	if err := tel.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
}
