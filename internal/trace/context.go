package trace

import "context"

type (
	tracerKey struct{}
	spanKey   struct{}
)

// SpanContext identifies the span a context is running under.
type SpanContext struct {
	SpanID uint64
	GID    uint64
}

// WithTracer returns ctx carrying t; a nil t stores Nop.
func WithTracer(ctx context.Context, t Tracer) context.Context {
	if t == nil {
		t = Nop
	}
	return context.WithValue(ctx, tracerKey{}, t)
}

// FromContext returns the tracer stored in ctx, or Nop.
func FromContext(ctx context.Context) Tracer {
	if ctx != nil {
		if t, ok := ctx.Value(tracerKey{}).(Tracer); ok {
			return t
		}
	}
	return Nop
}

// WithSpanContext returns ctx carrying sc.
func WithSpanContext(ctx context.Context, sc SpanContext) context.Context {
	if ctx == nil {
		return nil
	}
	return context.WithValue(ctx, spanKey{}, sc)
}

// CurrentSpan returns the span stored in ctx; the zero value means none.
func CurrentSpan(ctx context.Context) SpanContext {
	if ctx != nil {
		if sc, ok := ctx.Value(spanKey{}).(SpanContext); ok {
			return sc
		}
	}
	return SpanContext{}
}

// StartSpan begins a span on the context's tracer, parented to the
// context's current span, and returns a context carrying the new span.
// A disabled span leaves ctx unchanged.
func StartSpan(ctx context.Context, scope Scope, name string) (*Span, context.Context) {
	sp := Begin(FromContext(ctx), scope, name, CurrentSpan(ctx).SpanID)
	if sp.ID() == 0 || ctx == nil {
		return sp, ctx
	}
	return sp, WithSpanContext(ctx, SpanContext{SpanID: sp.ID(), GID: sp.gid})
}
