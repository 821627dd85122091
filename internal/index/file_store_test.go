package index

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	idx := NewASTIndex("shop-frontend")
	idx.Files = []string{"/r/src/a.ts"}
	idx.CodebaseInfo = []SourceRecord{{Repository: "/r", FileName: "/r/src/a.ts", Imports: []string{"/r/src/b.ts"}}}
	idx.FileSummaries["/r/src/a.ts"] = Summary{FileDescription: "entry point", Tag: TagFeature}

	require.NoError(t, store.Save(ctx, idx))

	got, err := store.Load(ctx, "shop-frontend")
	require.NoError(t, err)
	assert.Equal(t, idx.Repository, got.Repository)
	assert.Equal(t, idx.Files, got.Files)
	assert.Equal(t, idx.CodebaseInfo, got.CodebaseInfo)
	assert.Equal(t, idx.FileSummaries, got.FileSummaries)
}

func TestFileStoreLoadMissing(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Load(context.Background(), "never-indexed")
	assert.ErrorIs(t, err, ErrNotFound)

	ok, err := store.Exists(context.Background(), "never-indexed")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileStoreNamesArtifactByRepoBase(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)

	idx := NewASTIndex("/home/ci/checkouts/shop-frontend")
	require.NoError(t, store.Save(context.Background(), idx))

	b, err := os.ReadFile(filepath.Join(dir, "shop-frontend.json"))
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(b, &doc))
	assert.Equal(t, "/home/ci/checkouts/shop-frontend", doc["repository"])
}

func TestFileStoreSaveLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Save(context.Background(), NewASTIndex("r")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "r.json", entries[0].Name())
}
