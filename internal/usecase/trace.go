package usecase

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("cagepulse/internal/usecase")

// startUsecaseSpan opens a child span for one sync operation when the
// caller already carries a trace; job triggers without one stay unspanned
// instead of minting orphan roots.
func startUsecaseSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	parent := trace.SpanFromContext(ctx)
	if name == "" || !parent.SpanContext().IsValid() {
		return ctx, parent
	}
	return tracer.Start(ctx, name)
}
