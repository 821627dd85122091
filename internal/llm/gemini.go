package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	genai "google.golang.org/genai"
)

var ErrEmptyResponse = errors.New("llm: empty response from model")

// GeminiClient is a thin wrapper around the official genai client.
type GeminiClient struct {
	cli          *genai.Client
	defaultModel string
}

func NewGeminiClient(ctx context.Context, apiKey, defaultModel string) (*GeminiClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("llm: api key is required")
	}
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(defaultModel) == "" {
		defaultModel = "gemini-2.5-flash"
	}
	return &GeminiClient{cli: cli, defaultModel: defaultModel}, nil
}

func (g *GeminiClient) Name() string { return "Gemini:" + g.defaultModel }
func (g *GeminiClient) Close() error { return nil }

func (g *GeminiClient) CountTokens(text string) int { return CountTokens(text) }

// Generate renders the ordered turns into genai contents. System turns become
// the system instruction; assistant turns are replayed with the "model" role
// so the service treats prior drafts as its own output.
func (g *GeminiClient) Generate(ctx context.Context, messages []Message) (string, error) {
	model := ModelFrom(ctx)
	if model == "" {
		model = g.defaultModel
	}

	var system strings.Builder
	var contents []*genai.Content
	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			if system.Len() > 0 {
				system.WriteString("\n\n")
			}
			system.WriteString(m.Content)
		case RoleAssistant:
			contents = append(contents, &genai.Content{
				Role:  "model",
				Parts: []*genai.Part{{Text: m.Content}},
			})
		default:
			contents = append(contents, &genai.Content{
				Role:  "user",
				Parts: []*genai.Part{{Text: m.Content}},
			})
		}
	}
	if len(contents) == 0 {
		return "", fmt.Errorf("llm: no user content to send")
	}

	cfg := &genai.GenerateContentConfig{}
	if system.Len() > 0 {
		cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: system.String()}}}
	}

	resp, err := g.cli.Models.GenerateContent(ctx, model, contents, cfg)
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", ErrEmptyResponse
	}
	var out strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		out.WriteString(p.Text)
	}
	return out.String(), nil
}
