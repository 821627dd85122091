// Package index defines the persisted AST index artifact: structural facts
// per source file plus the verified summaries merged in batch by batch.
package index

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Parameter is a declared parameter name/type pair.
type Parameter struct {
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
}

// Function is a top-level function declaration.
type Function struct {
	Name       string      `json:"name"`
	Parameters []Parameter `json:"parameters,omitempty"`
	ReturnType string      `json:"returnType,omitempty"`
}

// Decorator captures an annotation name and its raw argument text.
type Decorator struct {
	Name      string   `json:"name"`
	Arguments []string `json:"arguments,omitempty"`
}

type Method struct {
	Name       string      `json:"name"`
	Parameters []Parameter `json:"parameters,omitempty"`
	ReturnType string      `json:"returnType,omitempty"`
	Decorators []Decorator `json:"decorators,omitempty"`
}

type Class struct {
	Name       string      `json:"name"`
	Decorators []Decorator `json:"decorators,omitempty"`
	Methods    []Method    `json:"methods,omitempty"`
}

type Property struct {
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
}

type Interface struct {
	Name       string     `json:"name"`
	Properties []Property `json:"properties,omitempty"`
}

// SourceRecord holds the structural facts extracted from one source file.
// Records are written once by the indexer and never mutated afterwards.
type SourceRecord struct {
	Repository string `json:"repository"`
	FileName   string `json:"fileName"`
	// Imports keeps resolved absolute paths in declaration order.
	// Duplicates are allowed; unresolved specifiers stay literal.
	Imports    []string    `json:"imports,omitempty"`
	Functions  []Function  `json:"functions,omitempty"`
	Classes    []Class     `json:"classes,omitempty"`
	Interfaces []Interface `json:"interfaces,omitempty"`
	SourceCode string      `json:"sourceCode,omitempty"`
	// CompiledCode is a normalized rendering of the source used as advisory
	// context during summarization; the raw source stays authoritative.
	CompiledCode string `json:"compiledCode,omitempty"`
}

// Tag classifies a summarized file.
type Tag string

const (
	TagUI         Tag = "ui"
	TagDataAccess Tag = "dataAccess"
	TagUtility    Tag = "utility"
	TagFeature    Tag = "feature"
)

func (t Tag) Valid() bool {
	switch t {
	case TagUI, TagDataAccess, TagUtility, TagFeature:
		return true
	}
	return false
}

// UnmarshalJSON rejects tags outside the fixed enumeration.
func (t *Tag) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	v := Tag(strings.TrimSpace(s))
	if !v.Valid() {
		return fmt.Errorf("index: unknown tag %q", s)
	}
	*t = v
	return nil
}

// Narrative is an optional structured sub-record of a summary.
type Narrative struct {
	Overview string   `json:"overview,omitempty"`
	Steps    []string `json:"steps,omitempty"`
}

// Summary is the schema-validated description of one file. A summary is
// created once; re-running summarization replaces the value wholesale.
type Summary struct {
	FileDescription  string         `json:"fileDescription"`
	Tag              Tag            `json:"tag"`
	ElementsDetail   map[string]any `json:"elementsDetail,omitempty"`
	AlgorithmicLogic *Narrative     `json:"algorithmicLogic,omitempty"`
	BusinessLogic    *Narrative     `json:"businessLogic,omitempty"`
	FlowDescription  *Narrative     `json:"flowDescription,omitempty"`
}

// IsZero reports whether the summary carries no accepted content.
func (s Summary) IsZero() bool {
	return s.FileDescription == "" && s.Tag == ""
}

// ASTIndex is the persisted unit of work for one repository.
type ASTIndex struct {
	Repository    string             `json:"repository"`
	Files         []string           `json:"files"`
	CodebaseInfo  []SourceRecord     `json:"codebaseInfo,omitempty"`
	FileSummaries map[string]Summary `json:"fileSummaries"`
	RepoSummary   json.RawMessage    `json:"repoSummary,omitempty"`
}

func NewASTIndex(repository string) *ASTIndex {
	return &ASTIndex{
		Repository:    repository,
		FileSummaries: map[string]Summary{},
	}
}

// MergeSummaries adds non-empty summaries keyed by file path. Existing keys
// for other files are never touched; merging is append-only.
func (x *ASTIndex) MergeSummaries(results map[string]Summary) int {
	if x.FileSummaries == nil {
		x.FileSummaries = map[string]Summary{}
	}
	added := 0
	for path, s := range results {
		if s.IsZero() {
			continue
		}
		x.FileSummaries[path] = s
		added++
	}
	return added
}

// Unsummarized returns the files eligible for summarization: tracked files
// with a summarizable extension that are absent from FileSummaries. The
// result is sorted so batches are deterministic across runs.
func (x *ASTIndex) Unsummarized(exts []string) []string {
	var out []string
	for _, f := range x.Files {
		if !hasExt(f, exts) {
			continue
		}
		if _, done := x.FileSummaries[f]; done {
			continue
		}
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

func hasExt(path string, exts []string) bool {
	lower := strings.ToLower(path)
	for _, e := range exts {
		if strings.HasSuffix(lower, strings.ToLower(e)) {
			return true
		}
	}
	return false
}
