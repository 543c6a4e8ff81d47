package observability

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/trace"
)

type logFieldsKey struct{}

// logFields are request-scoped values every log line made with the request
// context should carry.
type logFields struct {
	requestID string
	userID    int64
}

func fieldsFrom(ctx context.Context) logFields {
	f, _ := ctx.Value(logFieldsKey{}).(logFields)
	return f
}

// WithRequestID tags ctx so records logged with it carry request_id.
func WithRequestID(ctx context.Context, id string) context.Context {
	f := fieldsFrom(ctx)
	f.requestID = id
	return context.WithValue(ctx, logFieldsKey{}, f)
}

// WithUserID tags ctx with the authenticated journal user.
func WithUserID(ctx context.Context, id int64) context.Context {
	f := fieldsFrom(ctx)
	f.userID = id
	return context.WithValue(ctx, logFieldsKey{}, f)
}

func RequestIDFrom(ctx context.Context) string {
	return fieldsFrom(ctx).requestID
}

// ContextHandler adds trace, request and user ids found in the record's
// context before passing it on.
type ContextHandler struct {
	next slog.Handler
}

func NewContextHandler(next slog.Handler) *ContextHandler {
	return &ContextHandler{next: next}
}

func (h *ContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		r.AddAttrs(
			slog.String("trace_id", sc.TraceID().String()),
			slog.String("span_id", sc.SpanID().String()),
		)
	}

	f := fieldsFrom(ctx)
	if f.requestID != "" {
		r.AddAttrs(slog.String("request_id", f.requestID))
	}
	if f.userID > 0 {
		r.AddAttrs(slog.Int64("user_id", f.userID))
	}

	return h.next.Handle(ctx, r)
}

func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ContextHandler{next: h.next.WithAttrs(attrs)}
}

func (h *ContextHandler) WithGroup(name string) slog.Handler {
	return &ContextHandler{next: h.next.WithGroup(name)}
}
