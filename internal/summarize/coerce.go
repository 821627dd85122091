package summarize

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/michael-madume-trilogy/ai-repo-summarization/internal/index"
)

var errNoJSON = errors.New("summarize: no JSON object in model output")

// ParseSummary coerces raw model output into a Summary. It tolerates code
// fences and prose around the object but rejects anything that does not
// validate against the schema.
func ParseSummary(raw string) (index.Summary, error) {
	body, err := extractObject(raw)
	if err != nil {
		return index.Summary{}, err
	}
	var s index.Summary
	if err := json.Unmarshal([]byte(body), &s); err != nil {
		return index.Summary{}, fmt.Errorf("summarize: decode summary: %w", err)
	}
	if s.FileDescription == "" {
		return index.Summary{}, errors.New("summarize: missing fileDescription")
	}
	if !s.Tag.Valid() {
		return index.Summary{}, fmt.Errorf("summarize: invalid tag %q", s.Tag)
	}
	return s, nil
}

// extractObject strips markdown fences and surrounding prose, keeping the
// outermost {...} span.
func extractObject(raw string) (string, error) {
	text := strings.TrimSpace(raw)
	if after, ok := strings.CutPrefix(text, "```json"); ok {
		text = after
	} else if after, ok := strings.CutPrefix(text, "```"); ok {
		text = after
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return "", errNoJSON
	}
	return text[start : end+1], nil
}
