// astindex builds the AST index for each configured repository and runs the
// verified summarization protocol over it.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/michael-madume-trilogy/ai-repo-summarization/internal/batch"
	"github.com/michael-madume-trilogy/ai-repo-summarization/internal/config"
	"github.com/michael-madume-trilogy/ai-repo-summarization/internal/extract"
	"github.com/michael-madume-trilogy/ai-repo-summarization/internal/index"
	"github.com/michael-madume-trilogy/ai-repo-summarization/internal/indexer"
	"github.com/michael-madume-trilogy/ai-repo-summarization/internal/llm"
	"github.com/michael-madume-trilogy/ai-repo-summarization/internal/summarize"
)

func main() {
	cfgPath := flag.String("config", "astindex.yml", "path to the config file")
	repoName := flag.String("repo", "", "limit the run to one configured repository")
	phase := flag.String("phase", "all", "phase to run: index, summarize, all")
	fake := flag.Bool("fake", false, "use the offline fake model client")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatal(err)
	}
	if *phase != "index" && *phase != "summarize" && *phase != "all" {
		log.Fatalf("unknown phase %q", *phase)
	}

	ctx := context.Background()

	store, err := newStore(cfg)
	if err != nil {
		log.Fatal(err)
	}

	var client llm.Client
	if *phase != "index" {
		client, err = newClient(ctx, cfg, *fake)
		if err != nil {
			log.Fatal(err)
		}
		defer client.Close()
	}

	ran := false
	for _, repo := range cfg.Repositories {
		if *repoName != "" && repo.Name != *repoName {
			continue
		}
		ran = true
		if err := run(ctx, cfg, store, client, repo, *phase); err != nil {
			log.Fatalf("%s: %v", repo.Name, err)
		}
	}
	if !ran {
		log.Fatalf("no configured repository named %q", *repoName)
	}
}

func run(ctx context.Context, cfg *config.Config, store index.Store, client llm.Client, repo config.RepositoryConfig, phase string) error {
	var idx *index.ASTIndex
	var err error

	if phase == "summarize" {
		idx, err = store.Load(ctx, repo.Name)
		if err != nil {
			return fmt.Errorf("load index (run the index phase first?): %w", err)
		}
	} else {
		ix := indexer.New(indexer.Options{
			SourceExt:        cfg.SourceExt,
			ExcludedProjects: cfg.ExcludedProjects,
			Patterns:         extract.DefaultPatternSet(),
		})
		idx, err = ix.Index(ctx, repo.Path, repo.Name)
		if err != nil {
			return err
		}
		// Carry summaries forward so re-indexing never loses batch progress.
		if prev, err := store.Load(ctx, repo.Name); err == nil {
			idx.FileSummaries = prev.FileSummaries
			idx.RepoSummary = prev.RepoSummary
		}
		if err := store.Save(ctx, idx); err != nil {
			return err
		}
		log.Printf("%s: index written (%d files, %d source records)", repo.Name, len(idx.Files), len(idx.CodebaseInfo))
	}

	if phase == "index" {
		return nil
	}

	engine := summarize.New(client, summarize.Options{
		Rounds:        cfg.Rounds,
		Tiers:         cfg.Tiers,
		TruncateChars: cfg.TruncateChars,
	})
	ctrl := batch.NewController(store, engine, batch.Options{
		BatchSize:        cfg.BatchSize,
		SummarizableExts: cfg.SummarizableExts,
	})
	return ctrl.Run(ctx, idx)
}

func newStore(cfg *config.Config) (index.Store, error) {
	if cfg.Artifact.Backend == "s3" {
		return index.NewS3Store(index.S3Config{
			Endpoint:  cfg.Artifact.Endpoint,
			Region:    cfg.Artifact.Region,
			AccessKey: cfg.Artifact.AccessKey,
			SecretKey: cfg.Artifact.SecretKey,
			Bucket:    cfg.Artifact.Bucket,
			Prefix:    cfg.Artifact.Prefix,
			UseSSL:    cfg.Artifact.UseSSL,
		})
	}
	return index.NewFileStore(cfg.StorageDir)
}

func newClient(ctx context.Context, cfg *config.Config, fake bool) (llm.Client, error) {
	var inner llm.Client
	if fake {
		inner = llm.NewFakeClient()
	} else {
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY is not set")
		}
		cli, err := llm.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.Tiers[0].Model)
		if err != nil {
			return nil, err
		}
		inner = cli
	}
	mws := []llm.Middleware{
		llm.WithLogging(log.New(os.Stderr, "", log.LstdFlags)),
		llm.Retry(3, 500*time.Millisecond),
		llm.RateLimit(2, 4),
	}
	if os.Getenv("AST_DEBUG_PROMPTS") != "" {
		mws = append([]llm.Middleware{llm.WithHook(promptLogger{})}, mws...)
	}
	return llm.Wrap(inner, mws...), nil
}

// promptLogger dumps full prompts and responses, for debugging only.
type promptLogger struct{}

func (promptLogger) Before(_ context.Context, stage string, messages []llm.Message) {
	for _, m := range messages {
		log.Printf("[%s] >> %s: %s", stage, m.Role, m.Content)
	}
}

func (promptLogger) After(_ context.Context, stage string, response string, err error) {
	if err != nil {
		log.Printf("[%s] !! %v", stage, err)
		return
	}
	log.Printf("[%s] << %s", stage, response)
}
