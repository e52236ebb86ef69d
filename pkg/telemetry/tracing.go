// Package telemetry traces skillhub operations with OpenTelemetry. Spans are
// exported over OTLP/HTTP; the endpoint and headers come from the standard
// OTEL_EXPORTER_OTLP_* environment variables.
package telemetry

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	pkgerrors "github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"

	"github.com/jingkaihe/skillhub/pkg/skillerr"
)

// Sampler kinds accepted in tracing.sampler
const (
	SamplerAlways = "always"
	SamplerNever  = "never"
	SamplerRatio  = "ratio"
)

// Config selects whether and how skillhub operations are traced
type Config struct {
	Enabled        bool
	ServiceName    string
	ServiceVersion string
	SamplerType    string
	SamplerRatio   float64

	// Exporter replaces the OTLP exporter when set
	Exporter sdktrace.SpanExporter
}

// NewSampler returns the sampler named by kind. An unknown kind or a ratio
// outside [0, 1] is a configuration error.
func NewSampler(kind string, ratio float64) (sdktrace.Sampler, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case SamplerAlways, "":
		return sdktrace.AlwaysSample(), nil
	case SamplerNever:
		return sdktrace.NeverSample(), nil
	case SamplerRatio:
		if ratio < 0 || ratio > 1 {
			return nil, skillerr.Configuration("tracing.ratio must be between 0 and 1, got "+strconv.FormatFloat(ratio, 'g', -1, 64), nil)
		}
		return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio)), nil
	default:
		return nil, skillerr.Configuration("unsupported tracing.sampler "+kind+", expected always, never or ratio", nil)
	}
}

// InitTracer installs a global tracer provider for skillhub and returns the
// function that flushes and stops it. When tracing is disabled nothing is
// installed and the shutdown function is a no-op.
func InitTracer(ctx context.Context, cfg Config) (func(context.Context) error, error) {
	noop := func(context.Context) error { return nil }
	if !cfg.Enabled {
		return noop, nil
	}

	sampler, err := NewSampler(cfg.SamplerType, cfg.SamplerRatio)
	if err != nil {
		return nil, err
	}

	name := cfg.ServiceName
	if name == "" {
		name = defaultServiceName
	}
	res, err := resource.New(ctx, resource.WithAttributes(
		semconv.ServiceName(name),
		semconv.ServiceVersion(cfg.ServiceVersion),
	))
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to create tracing resource")
	}

	exporter := cfg.Exporter
	if exporter == nil {
		exporter, err = otlptracehttp.New(ctx)
		if err != nil {
			return nil, pkgerrors.Wrap(err, "failed to create OTLP trace exporter")
		}
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler),
		sdktrace.WithBatcher(exporter, sdktrace.WithBatchTimeout(time.Second)),
	)
	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	// the provider shuts the exporter down with it
	return func(ctx context.Context) error {
		return errors.Join(provider.ForceFlush(ctx), provider.Shutdown(ctx))
	}, nil
}
