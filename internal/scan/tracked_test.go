package scan

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, root string, paths ...string) {
	t.Helper()
	for _, p := range paths {
		full := filepath.Join(root, filepath.FromSlash(p))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte("x"), 0o644))
	}
}

func TestTrackedFilesWalkFallback(t *testing.T) {
	// No .git directory, so enumeration falls back to the walker.
	root := t.TempDir()
	writeFiles(t, root,
		"src/app.ts",
		"src/app.html",
		"node_modules/lib/index.ts",
		"dist/app.js",
		".hidden/secret.ts",
		"README.md",
	)

	got, err := TrackedFiles(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, []string{"README.md", "src/app.html", "src/app.ts"}, got)
}

func TestTrackedFilesHonorsGitignore(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "keep.ts", "generated/out.ts", "coverage.log")
	require.NoError(t, os.WriteFile(filepath.Join(root, ".gitignore"), []byte("generated/\n*.log\n"), 0o644))

	got, err := TrackedFiles(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, []string{".gitignore", "keep.ts"}, got)
}

func TestFilterExcluded(t *testing.T) {
	files := []string{
		"apps/storefront/main.ts",
		"apps/legacy-admin/main.ts",
		"libs/shared/util.ts",
	}
	got := FilterExcluded(files, []string{"legacy-admin"})
	assert.Equal(t, []string{"apps/storefront/main.ts", "libs/shared/util.ts"}, got)

	assert.Equal(t, files, FilterExcluded(files, nil))
	assert.Equal(t, files, FilterExcluded(files, []string{""}))
}
