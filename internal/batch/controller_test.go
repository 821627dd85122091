package batch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/michael-madume-trilogy/ai-repo-summarization/internal/index"
	"github.com/michael-madume-trilogy/ai-repo-summarization/internal/summarize"
)

// stubEngine summarizes by path and can fail selected files.
type stubEngine struct {
	mu    sync.Mutex
	calls []string
	fail  map[string]bool
}

func (s *stubEngine) Summarize(_ context.Context, req summarize.Request) (index.Summary, error) {
	s.mu.Lock()
	s.calls = append(s.calls, req.FilePath)
	s.mu.Unlock()
	if s.fail[req.FilePath] {
		return index.Summary{}, errors.New("model unavailable")
	}
	return index.Summary{FileDescription: "summary of " + req.FilePath, Tag: index.TagUtility}, nil
}

func (s *stubEngine) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

// recordingStore wraps a real FileStore and counts persists.
type recordingStore struct {
	index.Store
	saves int
}

func (r *recordingStore) Save(ctx context.Context, idx *index.ASTIndex) error {
	r.saves++
	return r.Store.Save(ctx, idx)
}

func newTestIndex(n int) *index.ASTIndex {
	idx := index.NewASTIndex("repo")
	for i := 0; i < n; i++ {
		idx.Files = append(idx.Files, fmt.Sprintf("/r/src/f%03d.ts", i))
	}
	return idx
}

func newTestController(t *testing.T, engine Summarizer, batchSize int) (*Controller, *recordingStore) {
	t.Helper()
	fs, err := index.NewFileStore(t.TempDir())
	require.NoError(t, err)
	store := &recordingStore{Store: fs}
	ctrl := NewController(store, engine, Options{
		BatchSize: batchSize,
		ReadFile:  func(path string) ([]byte, error) { return []byte("content of " + path), nil },
	})
	return ctrl, store
}

func TestRunSummarizesEverything(t *testing.T) {
	engine := &stubEngine{}
	ctrl, store := newTestController(t, engine, 2)
	idx := newTestIndex(5)

	require.NoError(t, ctrl.Run(context.Background(), idx))
	assert.Len(t, idx.FileSummaries, 5)
	assert.Equal(t, 5, engine.callCount())
	assert.Equal(t, 3, store.saves, "one persist per batch")

	// The persisted document carries the merged summaries.
	persisted, err := store.Load(context.Background(), "repo")
	require.NoError(t, err)
	assert.Len(t, persisted.FileSummaries, 5)
}

func TestRunIsIdempotent(t *testing.T) {
	engine := &stubEngine{}
	ctrl, _ := newTestController(t, engine, 50)
	idx := newTestIndex(10)

	require.NoError(t, ctrl.Run(context.Background(), idx))
	first := make(map[string]index.Summary, len(idx.FileSummaries))
	for k, v := range idx.FileSummaries {
		first[k] = v
	}

	require.NoError(t, ctrl.Run(context.Background(), idx))
	assert.Equal(t, 10, engine.callCount(), "no file is re-summarized once present")
	assert.Equal(t, first, idx.FileSummaries)
}

func TestRunIsolatesPerFileFailure(t *testing.T) {
	victim := "/r/src/f017.ts"
	engine := &stubEngine{fail: map[string]bool{victim: true}}
	ctrl, _ := newTestController(t, engine, 50)
	idx := newTestIndex(50)

	require.NoError(t, ctrl.Run(context.Background(), idx))
	assert.Len(t, idx.FileSummaries, 49)
	_, present := idx.FileSummaries[victim]
	assert.False(t, present, "failed file stays absent, eligible for retry")

	// A later run picks up only the failed file.
	engine.mu.Lock()
	engine.fail = nil
	engine.calls = nil
	engine.mu.Unlock()
	require.NoError(t, ctrl.Run(context.Background(), idx))
	assert.Equal(t, []string{victim}, engine.calls)
	assert.Len(t, idx.FileSummaries, 50)
}

func TestRunResumesFromPersistedProgress(t *testing.T) {
	engine := &stubEngine{}
	ctrl, store := newTestController(t, engine, 3)
	idx := newTestIndex(9)

	// Simulate a crash after the first batch persisted: reload that state
	// and run again.
	require.NoError(t, ctrl.Run(context.Background(), idx))
	require.Equal(t, 3, store.saves)

	resumed, err := store.Load(context.Background(), "repo")
	require.NoError(t, err)
	done := len(resumed.FileSummaries)
	require.Equal(t, 9, done)

	partial := index.NewASTIndex("repo")
	partial.Files = idx.Files
	for i, f := range idx.Files {
		if i < 3 {
			partial.FileSummaries[f] = resumed.FileSummaries[f]
		}
	}
	engine.mu.Lock()
	engine.calls = nil
	engine.mu.Unlock()

	require.NoError(t, ctrl.Run(context.Background(), partial))
	assert.Equal(t, 6, engine.callCount(), "only files beyond the persisted batch run")
	assert.Len(t, partial.FileSummaries, 9)
}

func TestRunReadsContentFromSourceRecord(t *testing.T) {
	var got string
	engine := &captureEngine{capture: &got}
	fs, err := index.NewFileStore(t.TempDir())
	require.NoError(t, err)
	ctrl := NewController(fs, engine, Options{
		ReadFile: func(path string) ([]byte, error) { return nil, errors.New("must not hit disk") },
	})

	idx := index.NewASTIndex("repo")
	idx.Files = []string{"/r/a.ts"}
	idx.CodebaseInfo = []index.SourceRecord{{FileName: "/r/a.ts", SourceCode: "export const x = 1;"}}

	require.NoError(t, ctrl.Run(context.Background(), idx))
	assert.Equal(t, "export const x = 1;", got)
}

type captureEngine struct{ capture *string }

func (c *captureEngine) Summarize(_ context.Context, req summarize.Request) (index.Summary, error) {
	*c.capture = req.Content
	return index.Summary{FileDescription: "ok", Tag: index.TagUI}, nil
}

func TestRunDependencyContextFromRecords(t *testing.T) {
	deps := make(map[string]string)
	var mu sync.Mutex
	engine := summarizerFunc(func(_ context.Context, req summarize.Request) (index.Summary, error) {
		mu.Lock()
		deps[req.FilePath] = req.Dependencies
		mu.Unlock()
		return index.Summary{FileDescription: "ok", Tag: index.TagFeature}, nil
	})
	fs, err := index.NewFileStore(t.TempDir())
	require.NoError(t, err)
	ctrl := NewController(fs, engine, Options{
		ReadFile: func(path string) ([]byte, error) { return []byte("x"), nil },
	})

	idx := index.NewASTIndex("repo")
	idx.Files = []string{"/r/app.ts"}
	idx.CodebaseInfo = []index.SourceRecord{
		{FileName: "/r/app.ts", SourceCode: "import './util';", Imports: []string{"/r/util.ts"}},
		{FileName: "/r/util.ts", SourceCode: "export {};"},
	}
	idx.FileSummaries["/r/util.ts"] = index.Summary{FileDescription: "shared helpers", Tag: index.TagUtility}

	require.NoError(t, ctrl.Run(context.Background(), idx))
	assert.Contains(t, deps["/r/app.ts"], "/r/util.ts: shared helpers")
}

type summarizerFunc func(ctx context.Context, req summarize.Request) (index.Summary, error)

func (f summarizerFunc) Summarize(ctx context.Context, req summarize.Request) (index.Summary, error) {
	return f(ctx, req)
}

func TestRunUnreadableFileIsSkipped(t *testing.T) {
	engine := &stubEngine{}
	fs, err := index.NewFileStore(t.TempDir())
	require.NoError(t, err)
	ctrl := NewController(fs, engine, Options{
		ReadFile: func(path string) ([]byte, error) { return nil, errors.New("gone") },
	})

	idx := index.NewASTIndex("repo")
	idx.Files = []string{"/r/a.yml"}
	require.NoError(t, ctrl.Run(context.Background(), idx))
	assert.Empty(t, idx.FileSummaries)
	assert.Equal(t, 0, engine.callCount())
}
