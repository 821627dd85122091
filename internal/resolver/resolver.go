// Package resolver replicates enough of the module system's file-resolution
// rules (relative paths, path aliases, extension and index-file probing) to
// build an import graph without a compiler. Resolution is best effort and
// never fails: anything unresolvable degrades to the literal specifier.
package resolver

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Alias is one configured path-alias pattern with its target patterns in
// declaration order. A single "*" wildcard segment is supported on both sides.
type Alias struct {
	Pattern string
	Targets []string
}

type compiledAlias struct {
	re      *regexp.Regexp
	targets []string
}

// Options configures a Resolver for one repository.
type Options struct {
	// BaseURL anchors non-relative resolution; typically the tsconfig baseUrl
	// resolved against the repo root.
	BaseURL string
	Aliases []Alias
	// SourceExt is the project's source extension, e.g. ".ts".
	SourceExt string
	// Stat overrides file probing; nil uses the filesystem. Tests inject this.
	Stat func(path string) bool
	// CacheSize bounds the probe cache; <=0 uses a default.
	CacheSize int
}

type Resolver struct {
	baseURL string
	aliases []compiledAlias
	ext     string
	stat    func(path string) bool
	cache   *lru.Cache[string, bool]
}

func New(opts Options) *Resolver {
	ext := opts.SourceExt
	if ext == "" {
		ext = ".ts"
	}
	size := opts.CacheSize
	if size <= 0 {
		size = 4096
	}
	cache, _ := lru.New[string, bool](size)

	r := &Resolver{
		baseURL: opts.BaseURL,
		ext:     ext,
		stat:    opts.Stat,
		cache:   cache,
	}
	if r.stat == nil {
		r.stat = func(path string) bool {
			info, err := os.Stat(path)
			return err == nil && !info.IsDir()
		}
	}
	for _, a := range opts.Aliases {
		re, err := compilePattern(a.Pattern)
		if err != nil {
			continue
		}
		r.aliases = append(r.aliases, compiledAlias{re: re, targets: a.Targets})
	}
	return r
}

// Resolve maps an import specifier found in fromFile to an absolute file
// path. Unresolvable specifiers come back unchanged; Resolve never errors.
func (r *Resolver) Resolve(specifier, fromFile string) string {
	if specifier == "" {
		return specifier
	}
	if strings.HasPrefix(specifier, "./") || strings.HasPrefix(specifier, "../") {
		joined := filepath.Join(filepath.Dir(fromFile), specifier)
		if p, ok := r.probe(joined); ok {
			return p
		}
		return joined
	}

	for _, a := range r.aliases {
		m := a.re.FindStringSubmatch(specifier)
		if m == nil {
			continue
		}
		wildcard := ""
		if len(m) > 1 {
			wildcard = m[1]
		}
		// Ties between targets break by declaration order.
		for _, target := range a.targets {
			candidate := strings.Replace(target, "*", wildcard, 1)
			if p, ok := r.probe(filepath.Join(r.baseURL, candidate)); ok {
				return p
			}
		}
	}

	if r.baseURL != "" {
		if p, ok := r.probe(filepath.Join(r.baseURL, specifier)); ok {
			return p
		}
	}
	return specifier
}

// probe tries, in order: the path as a file, <path>/index<ext>, <path><ext>.
func (r *Resolver) probe(path string) (string, bool) {
	if r.isFile(path) {
		return path, true
	}
	if p := filepath.Join(path, "index"+r.ext); r.isFile(p) {
		return p, true
	}
	if p := path + r.ext; r.isFile(p) {
		return p, true
	}
	return "", false
}

func (r *Resolver) isFile(path string) bool {
	if hit, ok := r.cache.Get(path); ok {
		return hit
	}
	ok := r.stat(path)
	r.cache.Add(path, ok)
	return ok
}

// compilePattern turns an alias pattern with at most one "*" into an
// anchored regexp capturing the wildcard segment.
func compilePattern(pattern string) (*regexp.Regexp, error) {
	escaped := regexp.QuoteMeta(pattern)
	escaped = strings.Replace(escaped, `\*`, `(.*)`, 1)
	return regexp.Compile("^" + escaped + "$")
}
