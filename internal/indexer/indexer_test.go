package indexer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/michael-madume-trilogy/ai-repo-summarization/internal/extract"
)

func writeRepo(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		full := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
	resolved, err := filepath.EvalSymlinks(root)
	require.NoError(t, err)
	return resolved
}

func TestIndexBuildsSourceRecords(t *testing.T) {
	root := writeRepo(t, map[string]string{
		"tsconfig.json": `{
  "compilerOptions": {
    "baseUrl": "./",
    "paths": { "@app/*": ["src/app/*"] }
  }
}`,
		"src/app/cart.ts": `import { Item } from './item';
import { format } from '@app/util';
export class Cart {}
`,
		"src/app/item.ts":       "export interface Item { id: string; }\n",
		"src/app/util/index.ts": "export function format() {}\n",
		"src/app/view.html":     "<div></div>",
	})

	ix := New(Options{SourceExt: ".ts", Patterns: extract.DefaultPatternSet()})
	idx, err := ix.Index(context.Background(), root, "shop")
	require.NoError(t, err)

	assert.Equal(t, "shop", idx.Repository)
	assert.Len(t, idx.Files, 5)

	require.Len(t, idx.CodebaseInfo, 3)
	// Records come back sorted by absolute path.
	assert.Equal(t, filepath.Join(root, "src/app/cart.ts"), idx.CodebaseInfo[0].FileName)
	assert.Equal(t, filepath.Join(root, "src/app/item.ts"), idx.CodebaseInfo[1].FileName)

	cart := idx.CodebaseInfo[0]
	assert.Equal(t, []string{
		filepath.Join(root, "src/app/item.ts"),
		filepath.Join(root, "src/app/util/index.ts"),
	}, cart.Imports)
	require.Len(t, cart.Classes, 1)
	assert.Equal(t, "Cart", cart.Classes[0].Name)
	assert.Contains(t, cart.SourceCode, "export class Cart")
	assert.Contains(t, cart.CompiledCode, `"use strict";`)

	item := idx.CodebaseInfo[1]
	require.Len(t, item.Interfaces, 1)
	assert.Equal(t, "Item", item.Interfaces[0].Name)
}

func TestIndexExcludesProjects(t *testing.T) {
	root := writeRepo(t, map[string]string{
		"apps/web/main.ts":    "export {}\n",
		"apps/legacy/main.ts": "export {}\n",
	})

	ix := New(Options{SourceExt: ".ts", ExcludedProjects: []string{"apps/legacy"}})
	idx, err := ix.Index(context.Background(), root, "mono")
	require.NoError(t, err)

	require.Len(t, idx.CodebaseInfo, 1)
	assert.Equal(t, filepath.Join(root, "apps/web/main.ts"), idx.CodebaseInfo[0].FileName)
	for _, f := range idx.Files {
		assert.NotContains(t, f, "legacy")
	}
}

func TestIndexKeepsUnresolvableSpecifierLiteral(t *testing.T) {
	root := writeRepo(t, map[string]string{
		"src/a.ts": "import missing from 'missing-pkg';\nexport {}\n",
	})

	ix := New(Options{SourceExt: ".ts"})
	idx, err := ix.Index(context.Background(), root, "r")
	require.NoError(t, err)

	require.Len(t, idx.CodebaseInfo, 1)
	assert.Equal(t, []string{"missing-pkg"}, idx.CodebaseInfo[0].Imports)
}

func TestIndexUnreadableRepoIsFatal(t *testing.T) {
	ix := New(Options{})
	_, err := ix.Index(context.Background(), filepath.Join(t.TempDir(), "absent"), "r")
	assert.Error(t, err)
}
