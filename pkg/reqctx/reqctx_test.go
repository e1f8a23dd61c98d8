package reqctx

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/trace"
)

type caller struct{ uid uuid.UUID }

func (c caller) GetUserID() uuid.UUID     { return c.uid }
func (c caller) GetRole() string          { return "staff" }
func (c caller) GetSessionID() *uuid.UUID { return nil }

func TestCaller(t *testing.T) {
	ctx := context.Background()
	assert.Nil(t, CallerFrom(ctx))
	assert.Equal(t, uuid.Nil, UserID(ctx))

	uid := uuid.New()
	ctx = WithCaller(ctx, caller{uid: uid})
	assert.Equal(t, uid, UserID(ctx))
	assert.Equal(t, "staff", CallerFrom(ctx).GetRole())
}

func TestLogAttrs(t *testing.T) {
	assert.Empty(t, LogAttrs(context.Background()))

	ctx := WithMeta(context.Background(), Meta{RequestID: "rid-1"})
	assert.Equal(t, []any{"request_id", "rid-1"}, LogAttrs(ctx))

	tid := trace.TraceID{1, 2, 3}
	ctx = trace.ContextWithSpanContext(ctx, trace.NewSpanContext(trace.SpanContextConfig{TraceID: tid, SpanID: trace.SpanID{1}}))
	uid := uuid.New()
	ctx = WithCaller(ctx, caller{uid: uid})

	assert.Equal(t, []any{"request_id", "rid-1", "trace_id", tid.String(), "actor_id", uid.String()}, LogAttrs(ctx))
}
