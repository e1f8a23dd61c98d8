package reqctx

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

type key int

const (
	metaKey key = iota
	callerKey
)

// Meta is set on every HTTP request by the request id middleware.
type Meta struct {
	RequestID string
	ClientIP  string
	UserAgent string
	Received  time.Time
}

func WithMeta(ctx context.Context, m Meta) context.Context {
	return context.WithValue(ctx, metaKey, m)
}

func MetaFrom(ctx context.Context) (Meta, bool) {
	m, ok := ctx.Value(metaKey).(Meta)
	return m, ok
}

// RequestID is "" outside an HTTP request.
func RequestID(ctx context.Context) string {
	m, _ := MetaFrom(ctx)
	return m.RequestID
}

// Caller is the authenticated login behind a request. Session token claims
// satisfy it.
type Caller interface {
	GetUserID() uuid.UUID
	// GetRole is the login role: patient, staff or admin.
	GetRole() string
	GetSessionID() *uuid.UUID
}

func WithCaller(ctx context.Context, c Caller) context.Context {
	return context.WithValue(ctx, callerKey, c)
}

// CallerFrom returns nil on unauthenticated paths such as the public
// activation and share endpoints.
func CallerFrom(ctx context.Context) Caller {
	c, _ := ctx.Value(callerKey).(Caller)
	return c
}

// UserID is the caller's login id, or uuid.Nil when there is none.
func UserID(ctx context.Context) uuid.UUID {
	if c := CallerFrom(ctx); c != nil {
		return c.GetUserID()
	}
	return uuid.Nil
}

// LogAttrs returns correlation attributes for slog: request id, trace id
// and the acting login when known.
func LogAttrs(ctx context.Context) []any {
	var out []any
	if rid := RequestID(ctx); rid != "" {
		out = append(out, "request_id", rid)
	}
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		out = append(out, "trace_id", sc.TraceID().String())
	}
	if uid := UserID(ctx); uid != uuid.Nil {
		out = append(out, "actor_id", uid.String())
	}
	return out
}
