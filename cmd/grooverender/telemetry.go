package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.30.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/Ostrovsky42/GroovePuter-sub001/internal/config"
)

const serviceName = "grooverender"

type telemetry struct {
	Meter          metric.Meter
	Tracer         trace.Tracer
	MetricsHandler http.Handler
	Shutdown       func(context.Context) error
}

func setupTelemetry(ctx context.Context, cfg config.Config, logger *slog.Logger) (*telemetry, error) {
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(version),
		),
	)
	if err != nil {
		return nil, err
	}

	tp, err := initTracer(ctx, cfg, res, logger)
	if err != nil {
		return nil, err
	}
	mp, handler := initMetrics(cfg, res, logger)
	otel.SetMeterProvider(mp)

	var tracer trace.Tracer
	if tp != nil {
		otel.SetTracerProvider(tp)
		tracer = tp.Tracer(serviceName)
	} else {
		tracer = otel.Tracer(serviceName)
	}

	shutdown := func(ctx context.Context) error {
		var errs []error
		if err := mp.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
		if tp != nil {
			if err := tp.Shutdown(ctx); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}

	return &telemetry{
		Meter:          mp.Meter(serviceName),
		Tracer:         tracer,
		MetricsHandler: handler,
		Shutdown:       shutdown,
	}, nil
}

// initTracer returns nil when tracing is off; spans then go to the global
// no-op provider.
func initTracer(ctx context.Context, cfg config.Config, res *resource.Resource, logger *slog.Logger) (*sdktrace.TracerProvider, error) {
	if endpoint := strings.TrimSpace(cfg.Telemetry.OTLPEndpoint); endpoint != "" {
		opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(endpoint)}
		if cfg.Telemetry.OTLPInsecure {
			opts = append(opts, otlptracegrpc.WithInsecure())
		}
		exporter, err := otlptracegrpc.New(ctx, opts...)
		if err != nil {
			return nil, err
		}
		logger.Info("tracing initialized", slog.String("exporter", "otlp"), slog.String("endpoint", endpoint))
		return sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter), sdktrace.WithResource(res)), nil
	}

	if cfg.Telemetry.TraceStdout {
		exporter, err := stdouttrace.New(stdouttrace.WithWriter(os.Stderr), stdouttrace.WithPrettyPrint())
		if err != nil {
			return nil, err
		}
		logger.Info("tracing initialized", slog.String("exporter", "stdout"))
		return sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter), sdktrace.WithResource(res)), nil
	}

	return nil, nil
}

// initMetrics always returns a meter provider. The Prometheus reader and
// handler are only set up when a bind address is configured.
func initMetrics(cfg config.Config, res *resource.Resource, logger *slog.Logger) (*sdkmetric.MeterProvider, http.Handler) {
	if strings.TrimSpace(cfg.Telemetry.PrometheusBind) == "" {
		return sdkmetric.NewMeterProvider(sdkmetric.WithResource(res)), nil
	}

	promExporter, err := prometheus.New()
	if err != nil {
		logger.Warn("failed to initialize prometheus exporter", slog.String("error", err.Error()))
		return sdkmetric.NewMeterProvider(sdkmetric.WithResource(res)), nil
	}
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(promExporter),
		sdkmetric.WithResource(res),
	)
	return mp, promhttp.Handler()
}
