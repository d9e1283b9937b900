// Package telemetry bootstraps OpenTelemetry and the process logger.
//
// Without an OTLP endpoint nothing is exported: the global providers stay
// no-op and logs go to a text handler. With an endpoint, traces, metrics
// and logs are shipped over gRPC and the logger is the otelslog bridge.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/propagation"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

type Options struct {
	ServiceName    string
	ServiceVersion string

	// Endpoint is the host:port of an OTLP gRPC collector.
	Endpoint string
	// Insecure disables TLS towards the collector.
	Insecure bool

	// LogOutput receives text logs when Endpoint is empty. Defaults to stderr.
	LogOutput io.Writer
	LogLevel  slog.Level
}

type Telemetry struct {
	Logger *slog.Logger

	shutdownFuncs []func(context.Context) error
}

func (o Options) Enabled() bool {
	return o.Endpoint != ""
}

// Setup configures the global providers. On error everything already
// started is shut down again.
func Setup(ctx context.Context, opts Options) (*Telemetry, error) {
	t := &Telemetry{}

	if !opts.Enabled() {
		out := opts.LogOutput
		if out == nil {
			out = os.Stderr
		}
		t.Logger = slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: opts.LogLevel}))
		return t, nil
	}

	res, err := resource.New(ctx,
		resource.WithTelemetrySDK(),
		resource.WithHost(),
		resource.WithAttributes(
			attribute.String("service.name", opts.ServiceName),
			attribute.String("service.version", opts.ServiceVersion),
		),
	)
	if err != nil && !errors.Is(err, resource.ErrPartialResource) {
		return nil, fmt.Errorf("telemetry: resource: %w", err)
	}

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	traceOpts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(opts.Endpoint)}
	metricOpts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(opts.Endpoint)}
	logOpts := []otlploggrpc.Option{otlploggrpc.WithEndpoint(opts.Endpoint)}
	if opts.Insecure {
		traceOpts = append(traceOpts, otlptracegrpc.WithInsecure())
		metricOpts = append(metricOpts, otlpmetricgrpc.WithInsecure())
		logOpts = append(logOpts, otlploggrpc.WithInsecure())
	}

	traceExporter, err := otlptracegrpc.New(ctx, traceOpts...)
	if err != nil {
		return nil, t.fail(ctx, fmt.Errorf("telemetry: trace exporter: %w", err))
	}
	tracerProvider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExporter),
		sdktrace.WithResource(res),
	)
	t.shutdownFuncs = append(t.shutdownFuncs, tracerProvider.Shutdown)
	otel.SetTracerProvider(tracerProvider)

	metricExporter, err := otlpmetricgrpc.New(ctx, metricOpts...)
	if err != nil {
		return nil, t.fail(ctx, fmt.Errorf("telemetry: metric exporter: %w", err))
	}
	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter)),
		sdkmetric.WithResource(res),
	)
	t.shutdownFuncs = append(t.shutdownFuncs, meterProvider.Shutdown)
	otel.SetMeterProvider(meterProvider)

	logExporter, err := otlploggrpc.New(ctx, logOpts...)
	if err != nil {
		return nil, t.fail(ctx, fmt.Errorf("telemetry: log exporter: %w", err))
	}
	loggerProvider := sdklog.NewLoggerProvider(
		sdklog.WithProcessor(sdklog.NewBatchProcessor(logExporter)),
		sdklog.WithResource(res),
	)
	t.shutdownFuncs = append(t.shutdownFuncs, loggerProvider.Shutdown)
	global.SetLoggerProvider(loggerProvider)

	t.Logger = otelslog.NewLogger(opts.ServiceName, otelslog.WithLoggerProvider(loggerProvider))
	return t, nil
}

func (t *Telemetry) fail(ctx context.Context, err error) error {
	return errors.Join(err, t.Shutdown(ctx))
}

// Shutdown flushes and stops the providers. Safe to call more than once.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	var err error
	for _, fn := range t.shutdownFuncs {
		err = errors.Join(err, fn(ctx))
	}
	t.shutdownFuncs = nil

	return err
}
