package llm

import "strings"

// CountTokens provides a rough token count for text, used for tier selection
// and truncation decisions. It counts whitespace-delimited words and falls
// back to a character-based heuristic for unbroken text.
func CountTokens(text string) int {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0
	}
	n := len(strings.Fields(text))
	if byChars := len(text) / 4; byChars > n {
		// Long unbroken runs (minified or generated text) undercount badly
		// by word splitting alone.
		n = byChars
	}
	return n
}
