package diag

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// SlogReporter logs each report. Unhealthy periods are logged at Warn.
type SlogReporter struct {
	logger *slog.Logger
}

// NewSlogReporter returns a reporter writing to logger, or slog.Default()
// when logger is nil.
func NewSlogReporter(logger *slog.Logger) *SlogReporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogReporter{logger: logger}
}

// Publish implements Reporter.
func (s *SlogReporter) Publish(r Report) {
	level := slog.LevelInfo
	if !r.Healthy() {
		level = slog.LevelWarn
	}

	peaks := make([]any, 0, NumSources)
	for src := range NumSources {
		peaks = append(peaks, slog.Float64(src.String(), r.SourcePeaks[src]))
	}

	s.logger.LogAttrs(context.Background(), level, "audio diagnostics",
		slog.Int64("period_ms", r.PeriodMs),
		slog.Int64("samples", r.Samples),
		slog.Float64("pre_peak", r.PrePeak),
		slog.Float64("post_peak", r.PostPeak),
		slog.Int64("clips", r.Clips),
		slog.Int64("clicks", r.Clicks),
		slog.Int64("non_finite", r.NonFinite),
		slog.Float64("dc_offset", r.DCOffset),
		slog.Group("source_peaks", peaks...),
	)
}

// OTelReporter exports reports as OpenTelemetry instruments: counters for
// clips, clicks and non-finite samples, and observable gauges for the peaks
// and DC offset of the latest report.
type OTelReporter struct {
	clips     metric.Int64Counter
	clicks    metric.Int64Counter
	nonFinite metric.Int64Counter
	peak      metric.Float64ObservableGauge
	dc        metric.Float64ObservableGauge
	reg       metric.Registration

	mu   sync.Mutex
	last Report
}

// NewOTelReporter creates the instruments on meter.
func NewOTelReporter(meter metric.Meter) (*OTelReporter, error) {
	if meter == nil {
		return nil, fmt.Errorf("diagnostics meter must not be nil")
	}

	r := &OTelReporter{}
	var err error

	if r.clips, err = meter.Int64Counter("groove.audio.clips",
		metric.WithDescription("Pre-limiter samples above full scale")); err != nil {
		return nil, err
	}
	if r.clicks, err = meter.Int64Counter("groove.audio.clicks",
		metric.WithDescription("Sample-to-sample jumps above the click threshold")); err != nil {
		return nil, err
	}
	if r.nonFinite, err = meter.Int64Counter("groove.audio.non_finite",
		metric.WithDescription("NaN or infinite samples")); err != nil {
		return nil, err
	}
	if r.peak, err = meter.Float64ObservableGauge("groove.audio.peak",
		metric.WithDescription("Peak magnitude of the latest diagnostics period")); err != nil {
		return nil, err
	}
	if r.dc, err = meter.Float64ObservableGauge("groove.audio.dc_offset",
		metric.WithDescription("Mean pre-limiter sample of the latest diagnostics period")); err != nil {
		return nil, err
	}

	r.reg, err = meter.RegisterCallback(func(_ context.Context, obs metric.Observer) error {
		r.mu.Lock()
		last := r.last
		r.mu.Unlock()

		obs.ObserveFloat64(r.peak, last.PrePeak, metric.WithAttributes(attribute.String("stage", "pre")))
		obs.ObserveFloat64(r.peak, last.PostPeak, metric.WithAttributes(attribute.String("stage", "post")))
		for src := range NumSources {
			obs.ObserveFloat64(r.peak, last.SourcePeaks[src],
				metric.WithAttributes(attribute.String("stage", "source"), attribute.String("source", src.String())))
		}
		obs.ObserveFloat64(r.dc, last.DCOffset)
		return nil
	}, r.peak, r.dc)
	if err != nil {
		return nil, err
	}

	return r, nil
}

// Publish implements Reporter.
func (r *OTelReporter) Publish(rep Report) {
	ctx := context.Background()
	r.clips.Add(ctx, rep.Clips)
	r.clicks.Add(ctx, rep.Clicks)
	r.nonFinite.Add(ctx, rep.NonFinite)

	r.mu.Lock()
	r.last = rep
	r.mu.Unlock()
}

// Close unregisters the gauge callback.
func (r *OTelReporter) Close() error {
	return r.reg.Unregister()
}
