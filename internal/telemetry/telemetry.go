package telemetry

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
)

type Config struct {
	Endpoint       string
	ServiceName    string
	ServiceVersion string
	Interval       time.Duration
}

// Setup installs a global meter provider exporting over OTLP/gRPC. With no
// endpoint it leaves the default no-op provider in place.
func Setup(ctx context.Context, cfg Config) (func(context.Context) error, error) {
	if cfg.Endpoint == "" {
		log.Info().Str("module", "telemetry").Msg("no otlp endpoint, metrics disabled")
		return func(context.Context) error { return nil }, nil
	}

	endpoint := strings.TrimPrefix(cfg.Endpoint, "grpc://")
	endpoint = strings.TrimPrefix(endpoint, "http://")

	exp, err := otlpmetricgrpc.New(ctx,
		otlpmetricgrpc.WithEndpoint(endpoint),
		otlpmetricgrpc.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("create metric exporter: %w", err)
	}

	interval := cfg.Interval
	if interval <= 0 {
		interval = 15 * time.Second
	}

	res := resource.NewSchemaless(
		attribute.String("service.name", cfg.ServiceName),
		attribute.String("service.version", cfg.ServiceVersion),
	)
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp, sdkmetric.WithInterval(interval))),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(mp)

	log.Info().Str("module", "telemetry").Str("endpoint", endpoint).Dur("interval", interval).Msg("metrics exporter started")
	return mp.Shutdown, nil
}
