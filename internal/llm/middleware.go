package llm

import (
	"context"
	"log"
	"time"
)

// Middleware decorates a Client to inject cross-cutting concerns
// (rate limiting, retries, logging).
type Middleware func(Client) Client

// Wrap applies middlewares in left-to-right order.
// Example: Wrap(inner, A, B) => A(B(inner))
func Wrap(inner Client, mws ...Middleware) Client {
	out := inner
	for i := len(mws) - 1; i >= 0; i-- {
		out = mws[i](out)
	}
	return out
}

// -------- Rate limiting --------

// RateLimit throttles Generate calls with a token-bucket limiter.
// If rps <= 0, the limiter is disabled.
func RateLimit(rps float64, burst int) Middleware {
	return func(next Client) Client {
		return &rateLimited{next: next, rl: newRPSLimiter(rps, burst)}
	}
}

type rateLimited struct {
	next Client
	rl   *rpsLimiter
}

func (c *rateLimited) Name() string                { return c.next.Name() }
func (c *rateLimited) CountTokens(text string) int { return c.next.CountTokens(text) }
func (c *rateLimited) Close() error {
	c.rl.Stop()
	return c.next.Close()
}

func (c *rateLimited) Generate(ctx context.Context, messages []Message) (string, error) {
	if err := c.rl.Acquire(ctx); err != nil {
		return "", err
	}
	return c.next.Generate(ctx, messages)
}

// -------- Retry with exponential backoff --------

// Retry retries Generate up to maxAttempts with exponential backoff starting
// at baseDelay. Permanent errors and context cancellation stop immediately.
func Retry(maxAttempts int, baseDelay time.Duration) Middleware {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if baseDelay <= 0 {
		baseDelay = 300 * time.Millisecond
	}
	return func(next Client) Client {
		return &retrying{next: next, max: maxAttempts, base: baseDelay}
	}
}

type retrying struct {
	next Client
	max  int
	base time.Duration
}

func (r *retrying) Name() string                { return r.next.Name() }
func (r *retrying) CountTokens(text string) int { return r.next.CountTokens(text) }
func (r *retrying) Close() error                { return r.next.Close() }

func (r *retrying) Generate(ctx context.Context, messages []Message) (string, error) {
	var last error
	for i := 0; i < r.max; i++ {
		out, err := r.next.Generate(ctx, messages)
		if err == nil {
			return out, nil
		}
		if IsPermanent(err) {
			return "", err
		}
		last = err
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}
		if i < r.max-1 {
			time.Sleep(r.base * time.Duration(1<<i))
		}
	}
	return "", last
}

// -------- Logging --------

// WithLogging logs request size and errors. Provide a custom logger or nil
// to use log.Default().
func WithLogging(logger *log.Logger) Middleware {
	if logger == nil {
		logger = log.Default()
	}
	return func(next Client) Client {
		return &logging{next: next, log: logger}
	}
}

type logging struct {
	next Client
	log  *log.Logger
}

func (l *logging) Name() string                { return l.next.Name() }
func (l *logging) CountTokens(text string) int { return l.next.CountTokens(text) }
func (l *logging) Close() error                { return l.next.Close() }

func (l *logging) Generate(ctx context.Context, messages []Message) (string, error) {
	size := 0
	for _, m := range messages {
		size += len(m.Content)
	}
	l.log.Printf("LLM request (%s): %d turns, %d bytes", StageFrom(ctx), len(messages), size)
	out, err := l.next.Generate(ctx, messages)
	if err != nil {
		l.log.Printf("LLM error (%s): %v", StageFrom(ctx), err)
	}
	return out, err
}
