// Package reqctx carries per-request data through context.Context so
// services can log and authorize without importing fiber.
//
//	ctx = reqctx.WithMeta(ctx, reqctx.Meta{RequestID: rid})
//	ctx = reqctx.WithCaller(ctx, claims)
//	slog.WarnContext(ctx, "activation: lost link race", reqctx.LogAttrs(ctx)...)
package reqctx
