package llm

import "context"

// CallHook observes model calls for capture and debugging. Before runs with
// the full ordered turns; After sees the raw response text or the error.
type CallHook interface {
	Before(ctx context.Context, stage string, messages []Message)
	After(ctx context.Context, stage string, response string, err error)
}

// WithHook attaches a hook as a middleware, leaving the Client contract
// untouched.
func WithHook(hook CallHook) Middleware {
	return func(next Client) Client {
		return &hooked{next: next, hook: hook}
	}
}

type hooked struct {
	next Client
	hook CallHook
}

func (h *hooked) Name() string                { return h.next.Name() }
func (h *hooked) CountTokens(text string) int { return h.next.CountTokens(text) }
func (h *hooked) Close() error                { return h.next.Close() }

func (h *hooked) Generate(ctx context.Context, messages []Message) (string, error) {
	stage := StageFrom(ctx)
	if h.hook != nil {
		h.hook.Before(ctx, stage, messages)
	}
	out, err := h.next.Generate(ctx, messages)
	if h.hook != nil {
		h.hook.After(ctx, stage, out, err)
	}
	return out, err
}
