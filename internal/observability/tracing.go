package observability

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/yungbote/neurobridge-tutor"

// Tracer returns the service tracer. Before InitOTel runs it is the global
// no-op provider, so spans are free in tests.
func Tracer() trace.Tracer { return otel.Tracer(tracerName) }
