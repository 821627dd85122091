package resolver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// TSConfig carries the resolution-relevant subset of a tsconfig.json.
type TSConfig struct {
	BaseURL string
	Aliases []Alias
}

// LoadTSConfig reads <repoRoot>/tsconfig.json. BaseURL comes back resolved
// against the repo root; alias declaration order is preserved. A missing
// file yields a zero config and no error, since projects without aliases
// still resolve relatively.
func LoadTSConfig(repoRoot string) (TSConfig, error) {
	b, err := os.ReadFile(filepath.Join(repoRoot, "tsconfig.json"))
	if err != nil {
		if os.IsNotExist(err) {
			return TSConfig{BaseURL: repoRoot}, nil
		}
		return TSConfig{}, fmt.Errorf("resolver: read tsconfig: %w", err)
	}
	return parseTSConfig(repoRoot, b)
}

func parseTSConfig(repoRoot string, b []byte) (TSConfig, error) {
	b = stripJSONComments(b)
	var doc struct {
		CompilerOptions struct {
			BaseURL string          `json:"baseUrl"`
			Paths   json.RawMessage `json:"paths"`
		} `json:"compilerOptions"`
	}
	if err := json.Unmarshal(b, &doc); err != nil {
		return TSConfig{}, fmt.Errorf("resolver: parse tsconfig: %w", err)
	}

	cfg := TSConfig{BaseURL: repoRoot}
	if doc.CompilerOptions.BaseURL != "" {
		cfg.BaseURL = filepath.Join(repoRoot, doc.CompilerOptions.BaseURL)
	}
	if len(doc.CompilerOptions.Paths) > 0 {
		aliases, err := parseOrderedPaths(doc.CompilerOptions.Paths)
		if err != nil {
			return TSConfig{}, err
		}
		cfg.Aliases = aliases
	}
	return cfg, nil
}

// parseOrderedPaths walks the paths object with a token decoder because
// alias precedence follows declaration order, which a map would lose.
func parseOrderedPaths(raw json.RawMessage) ([]Alias, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("resolver: parse paths: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("resolver: paths is not an object")
	}
	var aliases []Alias
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("resolver: parse paths: %w", err)
		}
		key, _ := keyTok.(string)
		var targets []string
		if err := dec.Decode(&targets); err != nil {
			return nil, fmt.Errorf("resolver: parse paths[%s]: %w", key, err)
		}
		aliases = append(aliases, Alias{Pattern: key, Targets: targets})
	}
	return aliases, nil
}

// stripJSONComments removes // and /* */ comments so tsconfig's JSONC
// dialect survives encoding/json. String contents are left untouched.
func stripJSONComments(b []byte) []byte {
	out := make([]byte, 0, len(b))
	inString := false
	inLine := false
	inBlock := false
	for i := 0; i < len(b); i++ {
		c := b[i]
		switch {
		case inLine:
			if c == '\n' {
				inLine = false
				out = append(out, c)
			}
		case inBlock:
			if c == '*' && i+1 < len(b) && b[i+1] == '/' {
				inBlock = false
				i++
			}
		case inString:
			out = append(out, c)
			if c == '\\' && i+1 < len(b) {
				out = append(out, b[i+1])
				i++
			} else if c == '"' {
				inString = false
			}
		default:
			if c == '"' {
				inString = true
				out = append(out, c)
			} else if c == '/' && i+1 < len(b) && b[i+1] == '/' {
				inLine = true
				i++
			} else if c == '/' && i+1 < len(b) && b[i+1] == '*' {
				inBlock = true
				i++
			} else {
				out = append(out, c)
			}
		}
	}
	return out
}
