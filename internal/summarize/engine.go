// Package summarize runs the multi-round verified summarization protocol
// for single files against a language model client.
package summarize

import (
	"context"
	"fmt"
	"log"
	"unicode/utf8"

	"github.com/michael-madume-trilogy/ai-repo-summarization/internal/index"
	"github.com/michael-madume-trilogy/ai-repo-summarization/internal/llm"
)

const (
	StageGenerate = "summarize.generate"
	StageQuestion = "summarize.question"
	StageAnswer   = "summarize.answer"
	StageRepair   = "summarize.repair"
)

type Options struct {
	// Rounds is the generation round budget R. Defaults to 3.
	Rounds int
	// Tiers maps rendered-prompt token counts to models, smallest first.
	Tiers []llm.Tier
	// TruncateChars bounds file content once a prompt outgrows the largest
	// tier. Defaults to 400000.
	TruncateChars int
}

// Engine is stateless across files; one instance serves a whole batch.
type Engine struct {
	client llm.Client
	opts   Options
}

func New(client llm.Client, opts Options) *Engine {
	if opts.Rounds <= 0 {
		opts.Rounds = 3
	}
	if len(opts.Tiers) == 0 {
		opts.Tiers = llm.DefaultTiers()
	}
	if opts.TruncateChars <= 0 {
		opts.TruncateChars = 400_000
	}
	return &Engine{client: client, opts: opts}
}

// Request carries everything the engine needs for one file. Dependencies is
// pre-rendered context about the file's resolved imports; it may be empty.
type Request struct {
	FilePath     string
	Content      string
	Dependencies string
}

// Summarize runs the full protocol for one file and returns the coerced
// summary. On any model or parse failure it returns a zero Summary and the
// error; callers treat absence, not the error value, as the retry signal.
func (e *Engine) Summarize(ctx context.Context, req Request) (index.Summary, error) {
	content := req.Content
	system := systemInstruction()

	// Oversized content is cut before the first call so every round sees
	// the same bytes.
	initial := []llm.Message{
		{Role: llm.RoleSystem, Content: system},
		{Role: llm.RoleUser, Content: filePrompt(req.FilePath, content, req.Dependencies)},
	}
	if _, ok := llm.SelectTier(e.opts.Tiers, e.client.CountTokens(llm.RenderMessages(initial))); !ok {
		log.Printf("summarize: %s: content exceeds largest tier, truncating to %d chars", req.FilePath, e.opts.TruncateChars)
		content = Truncate(content, e.opts.TruncateChars)
	}

	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: system},
		{Role: llm.RoleUser, Content: filePrompt(req.FilePath, content, req.Dependencies)},
	}

	var draft, questions, answers string
	round := 0
	state := StateDraft
	for state != StateAccepted {
		var err error
		switch state {
		case StateDraft:
			draft, err = e.call(ctx, StageGenerate, messages)
		case StateVerified:
			questions, answers, err = e.verify(ctx, draft, req.FilePath, content)
		case StateDensified:
			// The prior draft becomes the assistant's own turn; the
			// densify instruction closes the conversation.
			messages = []llm.Message{
				{Role: llm.RoleSystem, Content: system},
				{Role: llm.RoleUser, Content: filePrompt(req.FilePath, content, req.Dependencies)},
				{Role: llm.RoleAssistant, Content: EscapeBraces(draft)},
				{Role: llm.RoleUser, Content: densifyInstruction(questions, answers)},
			}
			round++
		}
		if err != nil {
			return index.Summary{}, fmt.Errorf("summarize %s (%s, round %d): %w", req.FilePath, state, round, err)
		}
		state = Transition(state, round, e.opts.Rounds)
	}

	summary, err := e.coerce(ctx, draft)
	if err != nil {
		return index.Summary{}, fmt.Errorf("summarize %s: %w", req.FilePath, err)
	}
	return summary, nil
}

// verify runs once per file: one call for probing questions, one independent
// call answering them from the original content.
func (e *Engine) verify(ctx context.Context, draft, path, content string) (questions, answers string, err error) {
	questions, err = e.call(ctx, StageQuestion, []llm.Message{
		{Role: llm.RoleUser, Content: questionPrompt(draft)},
	})
	if err != nil {
		return "", "", err
	}
	answers, err = e.call(ctx, StageAnswer, []llm.Message{
		{Role: llm.RoleUser, Content: answerPrompt(questions, path, content)},
	})
	if err != nil {
		return "", "", err
	}
	return questions, answers, nil
}

// coerce parses the candidate against the Summary schema, allowing one
// repair call when the model's framing breaks the parse.
func (e *Engine) coerce(ctx context.Context, candidate string) (index.Summary, error) {
	summary, err := ParseSummary(candidate)
	if err == nil {
		return summary, nil
	}
	log.Printf("summarize: candidate failed schema, attempting repair: %v", err)
	repaired, callErr := e.call(ctx, StageRepair, []llm.Message{
		{Role: llm.RoleUser, Content: repairPrompt(candidate)},
	})
	if callErr != nil {
		return index.Summary{}, callErr
	}
	summary, err = ParseSummary(repaired)
	if err != nil {
		return index.Summary{}, fmt.Errorf("repair failed: %w", err)
	}
	return summary, nil
}

// call tags the context with stage and tier-selected model, then delegates
// to the client. Prompts that outgrow every tier run on the largest one.
func (e *Engine) call(ctx context.Context, stage string, messages []llm.Message) (string, error) {
	tokens := e.client.CountTokens(llm.RenderMessages(messages))
	tier, ok := llm.SelectTier(e.opts.Tiers, tokens)
	if !ok {
		tier = e.opts.Tiers[len(e.opts.Tiers)-1]
		log.Printf("summarize: %s: %d tokens over largest tier %s, sending anyway", stage, tokens, tier.Name)
	}
	ctx = llm.WithStage(ctx, stage)
	ctx = llm.WithModel(ctx, tier.Model)
	return e.client.Generate(ctx, messages)
}

// Truncate cuts s to at most max bytes without splitting a UTF-8 sequence.
// Same input always yields the same output.
func Truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	cut := s[:max]
	for len(cut) > 0 {
		if r, size := utf8.DecodeLastRuneInString(cut); r == utf8.RuneError && size <= 1 {
			cut = cut[:len(cut)-1]
			continue
		}
		break
	}
	return cut
}
