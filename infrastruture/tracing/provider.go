// Package tracing builds the OpenTelemetry tracer provider used by the session server.
package tracing

import (
	"io"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

const serviceNameKey = attribute.Key("service.name")

// NewProvider returns a tracer provider tagged with serviceName. Finished spans are written
// to w as JSON lines in batches; with a nil w spans are recorded but not exported.
// Callers must Shutdown the provider to flush pending spans.
func NewProvider(serviceName string, w io.Writer) (*sdktrace.TracerProvider, error) {
	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(resource.NewSchemaless(serviceNameKey.String(serviceName))),
	}

	if w != nil {
		exporter, err := stdouttrace.New(stdouttrace.WithWriter(w))
		if err != nil {
			return nil, err
		}
		opts = append(opts, sdktrace.WithBatcher(exporter))
	}

	return sdktrace.NewTracerProvider(opts...), nil
}
