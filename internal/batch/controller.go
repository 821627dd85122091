// Package batch drives summarization over a whole AST index in fixed-size
// batches, persisting after each batch so interrupted runs resume where
// they stopped.
package batch

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/michael-madume-trilogy/ai-repo-summarization/internal/index"
	"github.com/michael-madume-trilogy/ai-repo-summarization/internal/summarize"
)

// Summarizer is what the controller needs from the summarization engine.
type Summarizer interface {
	Summarize(ctx context.Context, req summarize.Request) (index.Summary, error)
}

type Options struct {
	// BatchSize is how many files settle between persists. Defaults to 50.
	BatchSize int
	// SummarizableExts limits which tracked files get summaries.
	SummarizableExts []string
	// ReadFile loads content for files without a source record. Defaults
	// to os.ReadFile.
	ReadFile func(path string) ([]byte, error)
}

type Controller struct {
	store  index.Store
	engine Summarizer
	opts   Options
}

func NewController(store index.Store, engine Summarizer, opts Options) *Controller {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 50
	}
	if len(opts.SummarizableExts) == 0 {
		opts.SummarizableExts = []string{".ts", ".tsx", ".html", ".json", ".yml", ".yaml"}
	}
	if opts.ReadFile == nil {
		opts.ReadFile = os.ReadFile
	}
	return &Controller{store: store, engine: engine, opts: opts}
}

// Run summarizes every eligible file not yet present in the index's summary
// map. Files within a batch run concurrently; batches are strictly
// sequential, and the whole index is rewritten after each one. Per-file
// failures are logged and skipped; only persistence failures abort.
func (c *Controller) Run(ctx context.Context, idx *index.ASTIndex) error {
	pending := idx.Unsummarized(c.opts.SummarizableExts)
	if len(pending) == 0 {
		log.Printf("batch: %s: nothing to summarize", idx.Repository)
		return nil
	}
	total := (len(pending) + c.opts.BatchSize - 1) / c.opts.BatchSize
	log.Printf("batch: %s: %d files in %d batches", idx.Repository, len(pending), total)

	records := recordsByPath(idx)
	for num := 0; len(pending) > 0; num++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		n := min(c.opts.BatchSize, len(pending))
		results := c.runBatch(ctx, idx, records, pending[:n])
		merged := idx.MergeSummaries(results)
		if err := c.store.Save(ctx, idx); err != nil {
			return fmt.Errorf("batch: persist %s after batch %d: %w", idx.Repository, num+1, err)
		}
		log.Printf("batch: %s: batch %d/%d done, %d/%d summarized", idx.Repository, num+1, total, merged, n)
		pending = pending[n:]
	}
	return nil
}

// runBatch fans out over one batch and waits for every file to settle.
// The returned map holds only successful summaries.
func (c *Controller) runBatch(ctx context.Context, idx *index.ASTIndex, records map[string]index.SourceRecord, files []string) map[string]index.Summary {
	summaries := make([]index.Summary, len(files))
	g, gctx := errgroup.WithContext(ctx)
	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			content, err := c.content(records, path)
			if err != nil {
				log.Printf("batch: read %s: %v", path, err)
				return nil
			}
			s, err := c.engine.Summarize(gctx, summarize.Request{
				FilePath:     path,
				Content:      content,
				Dependencies: dependencyContext(idx, records, path),
			})
			if err != nil {
				log.Printf("batch: %v", err)
				return nil
			}
			summaries[i] = s
			return nil
		})
	}
	_ = g.Wait()

	results := make(map[string]index.Summary, len(files))
	for i, path := range files {
		if !summaries[i].IsZero() {
			results[path] = summaries[i]
		}
	}
	return results
}

// recordsByPath indexes the source records once per run; per-file lookups
// during a batch stay constant time on large repositories.
func recordsByPath(idx *index.ASTIndex) map[string]index.SourceRecord {
	records := make(map[string]index.SourceRecord, len(idx.CodebaseInfo))
	for _, r := range idx.CodebaseInfo {
		records[r.FileName] = r
	}
	return records
}

func (c *Controller) content(records map[string]index.SourceRecord, path string) (string, error) {
	if rec, ok := records[path]; ok && rec.SourceCode != "" {
		return rec.SourceCode, nil
	}
	b, err := c.opts.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// dependencyContext renders what is already known about a file's resolved
// imports. Imports summarized in an earlier batch contribute their
// descriptions; the rest contribute their paths.
func dependencyContext(idx *index.ASTIndex, records map[string]index.SourceRecord, path string) string {
	rec, ok := records[path]
	if !ok || len(rec.Imports) == 0 {
		return ""
	}
	var sb strings.Builder
	seen := make(map[string]bool, len(rec.Imports))
	for _, imp := range rec.Imports {
		if seen[imp] {
			continue
		}
		seen[imp] = true
		sb.WriteString("- ")
		sb.WriteString(imp)
		if s, ok := idx.FileSummaries[imp]; ok && !s.IsZero() {
			sb.WriteString(": ")
			sb.WriteString(s.FileDescription)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
