// Package telemetry configura el TracerProvider global de OpenTelemetry.
// Los casos de uso crean sus spans con otel.Tracer; si la telemetría está desactivada
// el proveedor global sigue siendo el no-op por defecto.
package telemetry

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/Consignacion-api/pkg/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
)

const shutdownTimeout = 10 * time.Second

// Config parámetros del exportador OTLP.
type Config struct {
	Enabled       bool
	Endpoint      string
	Insecure      bool
	SamplingRatio float64
	ServiceName   string
	Version       string
}

// TracerProvider envuelve el proveedor del SDK (nil si está desactivado).
type TracerProvider struct {
	provider *sdktrace.TracerProvider
	log      *logger.Logger
}

// NewTracerProvider crea el exportador gRPC y registra el proveedor global.
func NewTracerProvider(ctx context.Context, cfg Config, log *logger.Logger) (*TracerProvider, error) {
	if log == nil {
		log = logger.Nop()
	}
	tp := &TracerProvider{log: log.Component("telemetry")}
	if !cfg.Enabled {
		tp.log.Info().Msg("telemetría desactivada")
		return tp, nil
	}

	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}
	exporter, err := otlptracegrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("crear exportador OTLP: %w", err)
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.Version),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("crear resource: %w", err)
	}

	tp.provider = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(Sampler(cfg.SamplingRatio)),
	)
	otel.SetTracerProvider(tp.provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	tp.log.Info().
		Str("endpoint", cfg.Endpoint).
		Float64("sampling_ratio", cfg.SamplingRatio).
		Msg("OpenTelemetry inicializado")
	return tp, nil
}

// Sampler traduce la proporción de muestreo. Se respeta la decisión del span padre.
func Sampler(ratio float64) sdktrace.Sampler {
	switch {
	case ratio >= 1:
		return sdktrace.ParentBased(sdktrace.AlwaysSample())
	case ratio <= 0:
		return sdktrace.ParentBased(sdktrace.NeverSample())
	default:
		return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))
	}
}

// Enabled indica si hay un exportador activo.
func (tp *TracerProvider) Enabled() bool {
	return tp.provider != nil
}

// Shutdown vacía los spans pendientes y cierra el exportador.
func (tp *TracerProvider) Shutdown(ctx context.Context) error {
	if tp.provider == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	if err := tp.provider.Shutdown(ctx); err != nil {
		return fmt.Errorf("cerrar tracer provider: %w", err)
	}
	return nil
}
