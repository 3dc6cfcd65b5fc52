package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Metrics exposes application-level instruments.
type Metrics struct {
	recordImports   metric.Int64Counter
	importRows      metric.Int64Counter
	bulkTransitions metric.Int64Counter
	recordExports   metric.Int64Counter
	rateLimitDenied metric.Int64Counter
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				if log != nil {
					log.Info("shutting down meter provider")
				}
				return provider.Shutdown(ctx)
			},
		})
	}

	return provider, nil
}

// New configures the domain metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "caseboard"
	}
	meter := provider.Meter(name)

	recordImports, err := meter.Int64Counter("caseboard_record_imports_total")
	if err != nil {
		return nil, err
	}
	importRows, err := meter.Int64Counter("caseboard_import_rows_total")
	if err != nil {
		return nil, err
	}
	bulkTransitions, err := meter.Int64Counter("caseboard_bulk_transitions_total")
	if err != nil {
		return nil, err
	}
	recordExports, err := meter.Int64Counter("caseboard_record_exports_total")
	if err != nil {
		return nil, err
	}
	rateLimitDenied, err := meter.Int64Counter("caseboard_rate_limit_denied_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		recordImports:   recordImports,
		importRows:      importRows,
		bulkTransitions: bulkTransitions,
		recordExports:   recordExports,
		rateLimitDenied: rateLimitDenied,
	}, nil
}

// RecordImport counts an accepted or rejected spreadsheet import.
func (m *Metrics) RecordImport(ctx context.Context, kind, outcome string, rows int) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("record_kind", strings.TrimSpace(kind)),
		attribute.String("outcome", strings.TrimSpace(outcome)),
	)
	m.recordImports.Add(ctx, 1, metric.WithAttributes(attrs...))
	if rows > 0 {
		m.importRows.Add(ctx, int64(rows), metric.WithAttributes(attrs...))
	}
}

// RecordBulkTransition counts a bulk status transition call.
func (m *Metrics) RecordBulkTransition(ctx context.Context, kind, action, outcome string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("record_kind", strings.TrimSpace(kind)),
		attribute.String("action", strings.TrimSpace(action)),
		attribute.String("outcome", strings.TrimSpace(outcome)),
	)
	m.bulkTransitions.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordExport counts a spreadsheet export.
func (m *Metrics) RecordExport(ctx context.Context, kind, format string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("record_kind", strings.TrimSpace(kind)),
		attribute.String("format", strings.TrimSpace(format)),
	)
	m.recordExports.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordRateLimitDenied counts rejected uploads.
func (m *Metrics) RecordRateLimitDenied(ctx context.Context, endpoint, reason string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("endpoint", strings.TrimSpace(endpoint)),
		attribute.String("reason", strings.TrimSpace(reason)),
	)
	m.rateLimitDenied.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	protocol = strings.ToLower(strings.TrimSpace(protocol))
	switch protocol {
	case "http", "http/protobuf":
		opts := []otlpmetrichttp.Option{}
		if endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		}
		return otlpmetrichttp.New(context.Background(), opts...)
	case "grpc", "grpc/protobuf", "":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(endpoint))
		}
		return otlpmetricgrpc.New(context.Background(), opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q", protocol)
	}
}

var allowedLabelKeys = map[attribute.Key]struct{}{
	"record_kind": {},
	"action":      {},
	"outcome":     {},
	"format":      {},
	"endpoint":    {},
	"reason":      {},
	"status_code": {},
}

// FilterAttributes strips disallowed labels to keep metrics low-cardinality.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedLabelKeys[attr.Key]; !ok {
			continue
		}
		filtered = append(filtered, attr)
	}
	return filtered
}
