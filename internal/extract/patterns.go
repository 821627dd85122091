package extract

import (
	"regexp"
)

// PatternSet scans decorator argument text for file references. The matcher
// is purely textual so the extractor stays polymorphic over source dialects:
// any annotation syntax that mentions the configured keys is picked up.
type PatternSet struct {
	patterns []refPattern
}

type refPattern struct {
	re   *regexp.Regexp
	list bool
}

var listItemRe = regexp.MustCompile(`['"]([^'"]+)['"]`)

// NewPatternSet builds a matcher for keys holding a single quoted file
// reference (e.g. a template file) and keys holding a quoted list
// (e.g. style files).
func NewPatternSet(singleKeys, listKeys []string) PatternSet {
	var ps PatternSet
	for _, k := range singleKeys {
		ps.patterns = append(ps.patterns, refPattern{
			re: regexp.MustCompile(regexp.QuoteMeta(k) + `\s*:\s*['"]([^'"]+)['"]`),
		})
	}
	for _, k := range listKeys {
		ps.patterns = append(ps.patterns, refPattern{
			re:   regexp.MustCompile(regexp.QuoteMeta(k) + `\s*:\s*\[([^\]]*)\]`),
			list: true,
		})
	}
	return ps
}

// DefaultPatternSet covers the conventional component-metadata keys for
// template and style co-location.
func DefaultPatternSet() PatternSet {
	return NewPatternSet([]string{"templateUrl"}, []string{"styleUrls"})
}

// FileRefs returns every matched file reference in match order.
func (p PatternSet) FileRefs(text string) []string {
	var refs []string
	for _, pat := range p.patterns {
		for _, m := range pat.re.FindAllStringSubmatch(text, -1) {
			if len(m) < 2 {
				continue
			}
			if !pat.list {
				refs = append(refs, m[1])
				continue
			}
			for _, item := range listItemRe.FindAllStringSubmatch(m[1], -1) {
				refs = append(refs, item[1])
			}
		}
	}
	return refs
}
