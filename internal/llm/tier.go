package llm

import (
	"fmt"
	"sort"
	"strings"
)

// Tier is a named model configuration selected by estimated prompt size.
// Tier boundaries are configuration, not business logic: the token-to-tier
// mapping is a pure function over the table passed in.
type Tier struct {
	Name      string `yaml:"name"`
	Model     string `yaml:"model"`
	MaxTokens int    `yaml:"maxTokens"`
}

// DefaultTiers mirrors the usual three-step ladder: a cheap default plus two
// higher-context tiers.
func DefaultTiers() []Tier {
	return []Tier{
		{Name: "default", Model: "gemini-2.5-flash-lite", MaxTokens: 16000},
		{Name: "mid", Model: "gemini-2.5-flash", MaxTokens: 128000},
		{Name: "high", Model: "gemini-2.5-pro", MaxTokens: 1000000},
	}
}

// NormalizeTiers validates and sorts a tier table ascending by MaxTokens.
func NormalizeTiers(tiers []Tier) ([]Tier, error) {
	if len(tiers) == 0 {
		return nil, fmt.Errorf("llm: tier table is empty")
	}
	out := append([]Tier(nil), tiers...)
	for i, t := range out {
		if strings.TrimSpace(t.Model) == "" {
			return nil, fmt.Errorf("llm: tier %d has no model", i)
		}
		if t.MaxTokens <= 0 {
			return nil, fmt.Errorf("llm: tier %q has non-positive token budget", t.Name)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].MaxTokens < out[j].MaxTokens })
	return out, nil
}

// SelectTier maps a token count to the smallest tier whose budget covers it.
// Counts beyond every budget select the largest tier; the caller is expected
// to truncate such content before submission. The tier table must already be
// sorted ascending (NormalizeTiers).
func SelectTier(tiers []Tier, tokenCount int) (Tier, bool) {
	if len(tiers) == 0 {
		return Tier{}, false
	}
	for _, t := range tiers {
		if tokenCount <= t.MaxTokens {
			return t, true
		}
	}
	return tiers[len(tiers)-1], false
}
