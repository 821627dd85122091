package llm

import (
	"context"
	"strings"
)

type ctxKeyStage struct{}
type ctxKeyModel struct{}

// WithStage tags the context with the pipeline stage issuing the call, so
// middlewares can log which part of the protocol a request belongs to.
func WithStage(ctx context.Context, stage string) context.Context {
	return context.WithValue(ctx, ctxKeyStage{}, stage)
}

// StageFrom returns the stage stored in the context.
func StageFrom(ctx context.Context) string {
	if v := ctx.Value(ctxKeyStage{}); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return "unknown"
}

// WithModel overrides the model id for a single call. Tier selection decides
// the model per prompt, so the override travels in the context rather than in
// client construction.
func WithModel(ctx context.Context, model string) context.Context {
	return context.WithValue(ctx, ctxKeyModel{}, strings.TrimSpace(model))
}

// ModelFrom returns the per-call model override, or "".
func ModelFrom(ctx context.Context) string {
	if v := ctx.Value(ctxKeyModel{}); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
