// Command grooverender renders a sequenced synth pattern offline to a 16-bit
// mono WAV file.
//
// Usage:
//
//	grooverender [flags]
//
// Examples:
//
//	grooverender -config groove.yaml
//	grooverender -engine fm -seconds 4 -out fm.wav
//	GROOVE_VOICE_SWITCH_TO=sid grooverender
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Ostrovsky42/GroovePuter-sub001/internal/config"
	"github.com/Ostrovsky42/GroovePuter-sub001/measure/diag"
	"github.com/Ostrovsky42/GroovePuter-sub001/measure/tone"
)

var version = "0.1.0-dev"

func main() {
	var (
		configPath  string
		outPath     string
		seconds     float64
		engineName  string
		showVersion bool
	)

	flag.StringVar(&configPath, "config", "", "Path to configuration file (defaults are used when empty)")
	flag.StringVar(&outPath, "out", "", "Output WAV path (overrides audio.output)")
	flag.Float64Var(&seconds, "seconds", 0, "Render length in seconds (overrides audio.seconds)")
	flag.StringVar(&engineName, "engine", "", "Initial synth engine: acid, chip, fm or sid (overrides voice.engine)")
	flag.BoolVar(&showVersion, "version", false, "Print version and exit")
	flag.Parse()

	if showVersion {
		fmt.Println(version)
		return
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := applyFlags(&cfg, outPath, seconds, engineName); err != nil {
		logger.Error("invalid flags", slog.String("error", err.Error()))
		os.Exit(2)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Telemetry.LogLevel)); err == nil {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("render failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func applyFlags(cfg *config.Config, outPath string, seconds float64, engineName string) error {
	if outPath != "" {
		cfg.Audio.Output = outPath
	}
	if seconds > 0 {
		cfg.Audio.Seconds = seconds
	}
	if engineName != "" {
		cfg.Voice.Engine = strings.ToLower(engineName)
	}
	return cfg.Validate()
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	tel, err := setupTelemetry(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tel.Shutdown(shutdownCtx); err != nil {
			logger.Warn("telemetry shutdown", slog.String("error", err.Error()))
		}
	}()

	if tel.MetricsHandler != nil {
		srv := serveMetrics(cfg.Telemetry.PrometheusBind, tel.MetricsHandler, logger)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	diagOpts := []diag.Option{
		diag.WithEnabled(cfg.Diagnostics.Enabled),
		diag.WithReporter(diag.NewSlogReporter(logger)),
	}
	if cfg.Diagnostics.FlushIntervalMs > 0 {
		diagOpts = append(diagOpts, diag.WithFlushInterval(cfg.Diagnostics.FlushIntervalMs))
	}
	otelReporter, err := diag.NewOTelReporter(tel.Meter)
	if err != nil {
		return fmt.Errorf("diagnostics metrics: %w", err)
	}
	defer otelReporter.Close()
	diagOpts = append(diagOpts, diag.WithReporter(otelReporter))

	d, err := diag.New(diagOpts...)
	if err != nil {
		return fmt.Errorf("diagnostics: %w", err)
	}

	eng, err := buildEngine(cfg, logger, d)
	if err != nil {
		return err
	}

	samples, err := render(ctx, tel.Tracer, eng, cfg)
	if err != nil {
		return err
	}

	if a, err := tone.Analyze(samples, float64(cfg.Audio.SampleRate), tone.WithWindow(cfg.WindowType())); err == nil {
		logger.Info("render analysed",
			slog.Float64("dominant_hz", a.Dominant),
			slog.Float64("dominant_amplitude", a.PeakAmplitude),
			slog.Float64("centroid_hz", a.Centroid),
			slog.Int("fft_size", a.FFTSize),
			slog.String("window", a.Window.String()),
		)
	} else {
		logger.Warn("render analysis skipped", slog.String("error", err.Error()))
	}

	if err := writeWAVFile(ctx, tel.Tracer, cfg.Audio.Output, samples, cfg.Audio.SampleRate); err != nil {
		return err
	}

	logger.Info("render complete",
		slog.String("output", cfg.Audio.Output),
		slog.Int("samples", len(samples)),
		slog.String("engine", eng.Synth().EngineType().String()),
	)
	return nil
}

func serveMetrics(bind string, handler http.Handler, logger *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)
	srv := &http.Server{Addr: bind, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		logger.Info("metrics endpoint listening", slog.String("bind", bind))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("metrics endpoint stopped", slog.String("error", err.Error()))
		}
	}()
	return srv
}
