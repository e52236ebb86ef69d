package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/jingkaihe/skillhub/pkg/skillerr"
)

func restoreProvider(t *testing.T) {
	t.Helper()
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })
}

// retainingExporter keeps exported spans readable after the provider shuts down
type retainingExporter struct {
	*tracetest.InMemoryExporter
}

func (retainingExporter) Shutdown(context.Context) error { return nil }

func TestInitTracerDisabled(t *testing.T) {
	shutdown, err := InitTracer(context.Background(), Config{Enabled: false, SamplerType: "bogus"})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestInitTracerRejectsUnknownSampler(t *testing.T) {
	_, err := InitTracer(context.Background(), Config{Enabled: true, SamplerType: "sometimes"})
	require.Error(t, err)
	assert.True(t, skillerr.IsCode(err, skillerr.CodeInvalidConfig))
}

func TestInitTracerExportsSpans(t *testing.T) {
	restoreProvider(t)
	exporter := retainingExporter{tracetest.NewInMemoryExporter()}

	shutdown, err := InitTracer(context.Background(), Config{
		Enabled:        true,
		ServiceVersion: "1.2.3",
		SamplerType:    SamplerAlways,
		Exporter:       exporter,
	})
	require.NoError(t, err)

	require.NoError(t, WithSpan(context.Background(), "installer.install", func(ctx context.Context) error {
		AddEvent(ctx, "install.state", attribute.String("state", "done"))
		return nil
	}))
	require.NoError(t, shutdown(context.Background()))

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "installer.install", spans[0].Name)
	require.Len(t, spans[0].Events, 1)
	assert.Equal(t, "install.state", spans[0].Events[0].Name)

	attrs := spans[0].Resource.Attributes()
	assert.Contains(t, attrs, attribute.String("service.name", "skillhub"))
	assert.Contains(t, attrs, attribute.String("service.version", "1.2.3"))
}

func TestNewSampler(t *testing.T) {
	tests := []struct {
		kind     string
		ratio    float64
		contains string
		wantErr  bool
	}{
		{kind: "always", contains: "AlwaysOnSampler"},
		{kind: "", contains: "AlwaysOnSampler"},
		{kind: "NEVER", contains: "AlwaysOffSampler"},
		{kind: "ratio", ratio: 0.5, contains: "TraceIDRatioBased"},
		{kind: "ratio", ratio: 1.5, wantErr: true},
		{kind: "bogus", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			s, err := NewSampler(tt.kind, tt.ratio)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, skillerr.IsKind(err, skillerr.KindConfiguration))
				return
			}
			require.NoError(t, err)
			assert.Contains(t, s.Description(), tt.contains)
		})
	}
}

func TestWithSpan(t *testing.T) {
	restoreProvider(t)
	recorder := tracetest.NewSpanRecorder()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)))

	err := WithSpan(context.Background(), "ok", func(ctx context.Context) error {
		SetAttributes(ctx, attribute.String("skill.id", "foo"))
		return nil
	}, attribute.String("platform", "claude"))
	require.NoError(t, err)

	boom := errors.New("boom")
	err = WithSpan(context.Background(), "fails", func(context.Context) error { return boom })
	assert.ErrorIs(t, err, boom)

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "ok", spans[0].Name())
	assert.Equal(t, codes.Ok, spans[0].Status().Code)
	assert.Contains(t, spans[0].Attributes(), attribute.String("skill.id", "foo"))
	assert.Contains(t, spans[0].Attributes(), attribute.String("platform", "claude"))
	assert.Equal(t, "fails", spans[1].Name())
	assert.Equal(t, codes.Error, spans[1].Status().Code)
}
