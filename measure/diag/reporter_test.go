package diag

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestSlogReporterLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	r := NewSlogReporter(logger)

	r.Publish(Report{PeriodMs: 250, Samples: 100})
	r.Publish(Report{PeriodMs: 250, Clips: 3})

	out := buf.String()
	if !strings.Contains(out, "level=INFO") {
		t.Fatalf("missing info line: %s", out)
	}
	if !strings.Contains(out, "level=WARN") || !strings.Contains(out, "clips=3") {
		t.Fatalf("missing warn line: %s", out)
	}
	if !strings.Contains(out, "source_peaks.drums=0") {
		t.Fatalf("missing source peaks: %s", out)
	}
}

func TestOTelReporterExportsCountersAndGauges(t *testing.T) {
	ctx := context.Background()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(ctx) })

	rep, err := NewOTelReporter(provider.Meter("diag-test"))
	if err != nil {
		t.Fatalf("NewOTelReporter() error = %v", err)
	}
	t.Cleanup(func() { _ = rep.Close() })

	report := Report{Clips: 2, Clicks: 1, PrePeak: 1.3, PostPeak: 0.98, DCOffset: 0.01}
	report.SourcePeaks[SourceDrums] = 0.6
	rep.Publish(report)
	rep.Publish(Report{Clips: 1, PrePeak: 1.1})

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatalf("Collect() error = %v", err)
	}

	sums := map[string]int64{}
	var peakPoints int
	var lastPre float64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			switch data := m.Data.(type) {
			case metricdata.Sum[int64]:
				for _, dp := range data.DataPoints {
					sums[m.Name] += dp.Value
				}
			case metricdata.Gauge[float64]:
				if m.Name != "groove.audio.peak" {
					continue
				}
				for _, dp := range data.DataPoints {
					peakPoints++
					if v, ok := dp.Attributes.Value("stage"); ok && v.AsString() == "pre" {
						lastPre = dp.Value
					}
				}
			}
		}
	}

	if sums["groove.audio.clips"] != 3 || sums["groove.audio.clicks"] != 1 {
		t.Fatalf("counter sums = %v", sums)
	}
	if want := 2 + int(NumSources); peakPoints != want {
		t.Fatalf("peak points = %d, want %d", peakPoints, want)
	}
	if lastPre != 1.1 {
		t.Fatalf("pre peak gauge = %g, want latest report 1.1", lastPre)
	}
}

func TestOTelReporterRejectsNilMeter(t *testing.T) {
	if _, err := NewOTelReporter(nil); err == nil {
		t.Fatal("expected error for nil meter")
	}
}

func TestDiagnosticsPublishesToSlog(t *testing.T) {
	var buf bytes.Buffer
	d, err := New(WithEnabled(true), WithFlushInterval(10),
		WithReporter(NewSlogReporter(slog.New(slog.NewTextHandler(&buf, nil)))))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	d.FlushIfReady(0)
	d.ObservePreLimiter(0.2)
	d.FlushIfReady(10)
	if !strings.Contains(buf.String(), "audio diagnostics") {
		t.Fatalf("expected a logged report, got %q", buf.String())
	}
}
