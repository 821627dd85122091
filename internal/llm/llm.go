// Package llm wraps the hosted language-model service behind a small client
// interface plus composable middlewares for retries, rate limiting and logging.
package llm

import (
	"context"
	"errors"
)

// Role tags one turn of a conversation.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one ordered turn sent to the model service.
type Message struct {
	Role    Role
	Content string
}

// Client is the contract to the model service. Callers treat every Generate
// call as a metered, latency-bearing external operation that may fail hard.
type Client interface {
	Name() string
	// CountTokens estimates the token count of rendered text.
	CountTokens(text string) int
	// Generate sends the ordered turns and returns the model's text.
	Generate(ctx context.Context, messages []Message) (string, error)
	Close() error
}

// PermanentError marks a failure that retrying cannot fix (bad request,
// exhausted quota with hard cutoff, unsupported model).
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return "llm: permanent: " + e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

// IsPermanent reports whether err carries a PermanentError.
func IsPermanent(err error) bool {
	var p *PermanentError
	return errors.As(err, &p)
}

// RenderMessages joins turns into one text block, mainly for token estimation.
func RenderMessages(messages []Message) string {
	total := 0
	for _, m := range messages {
		total += len(m.Content) + len(m.Role) + 4
	}
	buf := make([]byte, 0, total)
	for _, m := range messages {
		buf = append(buf, '[')
		buf = append(buf, m.Role...)
		buf = append(buf, "]\n"...)
		buf = append(buf, m.Content...)
		buf = append(buf, '\n')
	}
	return string(buf)
}
