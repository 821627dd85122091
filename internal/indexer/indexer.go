// Package indexer assembles the AST index for one repository: tracked files,
// structural extraction per source file, and import resolution.
package indexer

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/michael-madume-trilogy/ai-repo-summarization/internal/extract"
	"github.com/michael-madume-trilogy/ai-repo-summarization/internal/index"
	"github.com/michael-madume-trilogy/ai-repo-summarization/internal/resolver"
	"github.com/michael-madume-trilogy/ai-repo-summarization/internal/safeio"
	"github.com/michael-madume-trilogy/ai-repo-summarization/internal/scan"
)

// fileWorkers caps per-file parallelism; extraction is cheap but file reads
// should not fan out unbounded on large repos.
const fileWorkers = 8

type Options struct {
	// SourceExt selects structurally parsed files, e.g. ".ts" (".tsx" is
	// always included alongside).
	SourceExt string
	// ExcludedProjects drops tracked paths by substring match.
	ExcludedProjects []string
	// Patterns extracts decorator file references; zero value disables it.
	Patterns extract.PatternSet
}

type Indexer struct {
	opts Options
}

func New(opts Options) *Indexer {
	if opts.SourceExt == "" {
		opts.SourceExt = ".ts"
	}
	return &Indexer{opts: opts}
}

// Index enumerates tracked files and builds one SourceRecord per source
// file. Per-file extraction failures degrade to partial records and never
// abort the run; only an unreadable repository is fatal.
func (ix *Indexer) Index(ctx context.Context, repoRoot, name string) (*index.ASTIndex, error) {
	fs, err := safeio.NewSafeFS(repoRoot)
	if err != nil {
		return nil, fmt.Errorf("indexer: open repository %s: %w", repoRoot, err)
	}
	root := fs.Root()

	tracked, err := scan.TrackedFiles(ctx, root)
	if err != nil {
		return nil, fmt.Errorf("indexer: enumerate %s: %w", root, err)
	}
	tracked = scan.FilterExcluded(tracked, ix.opts.ExcludedProjects)
	log.Printf("indexer: %s: %d tracked files", name, len(tracked))

	tsconfig, err := resolver.LoadTSConfig(root)
	if err != nil {
		log.Printf("indexer: %s: tsconfig ignored: %v", name, err)
		tsconfig = resolver.TSConfig{BaseURL: root}
	}
	res := resolver.New(resolver.Options{
		BaseURL:   tsconfig.BaseURL,
		Aliases:   tsconfig.Aliases,
		SourceExt: ix.opts.SourceExt,
	})

	idx := index.NewASTIndex(name)
	for _, rel := range tracked {
		idx.Files = append(idx.Files, filepath.Join(root, rel))
	}

	var (
		mu      sync.Mutex
		records []index.SourceRecord
	)
	unresolved := 0

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fileWorkers)
	for _, rel := range tracked {
		if !ix.isSource(rel) {
			continue
		}
		rel := rel
		g.Go(func() error {
			rec, missed := ix.indexFile(gctx, fs, res, root, name, rel)
			mu.Lock()
			records = append(records, rec)
			unresolved += missed
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(records, func(i, j int) bool { return records[i].FileName < records[j].FileName })
	idx.CodebaseInfo = records
	log.Printf("indexer: %s: %d source records, %d unresolved imports", name, len(records), unresolved)
	return idx, nil
}

func (ix *Indexer) isSource(path string) bool {
	lower := strings.ToLower(path)
	return strings.HasSuffix(lower, ix.opts.SourceExt) || strings.HasSuffix(lower, ".tsx")
}

// indexFile builds one record. The second return value counts imports that
// degraded to their literal specifier.
func (ix *Indexer) indexFile(ctx context.Context, fs *safeio.SafeFS, res *resolver.Resolver, root, repo, rel string) (index.SourceRecord, int) {
	abs := filepath.Join(root, rel)
	rec := index.SourceRecord{Repository: root, FileName: abs}

	src, err := fs.ReadFile(rel)
	if err != nil {
		log.Printf("indexer: read %s: %v", rel, err)
		return rec, 0
	}
	rec.SourceCode = string(src)

	structure, err := extract.Extract(ctx, src, rel, ix.opts.Patterns)
	if err != nil {
		// Partial structure still gets recorded; the summarizer works from
		// raw source regardless.
		log.Printf("indexer: extract %s: %v", rel, err)
	}
	rec.Functions = structure.Functions
	rec.Classes = structure.Classes
	rec.Interfaces = structure.Interfaces

	missed := 0
	for _, spec := range structure.ImportSpecifiers {
		resolved := res.Resolve(spec, abs)
		if resolved == spec && !strings.HasPrefix(spec, "/") {
			missed++
		}
		rec.Imports = append(rec.Imports, resolved)
	}
	for _, ref := range structure.DecoratorRefs {
		rec.Imports = append(rec.Imports, res.Resolve(ref, abs))
	}

	rec.CompiledCode = extract.Normalize(structure, rec.Imports)
	return rec, missed
}
