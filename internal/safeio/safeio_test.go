package safeio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFS(t *testing.T) (*SafeFS, string) {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "src"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "src", "a.ts"), []byte("export {}"), 0o644))
	fs, err := NewSafeFS(root)
	require.NoError(t, err)
	return fs, fs.Root()
}

func TestReadFileRelativeAndAbsolute(t *testing.T) {
	fs, root := newTestFS(t)

	b, err := fs.ReadFile("src/a.ts")
	require.NoError(t, err)
	assert.Equal(t, "export {}", string(b))

	b, err = fs.ReadFile(filepath.Join(root, "src", "a.ts"))
	require.NoError(t, err)
	assert.Equal(t, "export {}", string(b))
}

func TestReadFileRejectsTraversal(t *testing.T) {
	fs, _ := newTestFS(t)
	_, err := fs.ReadFile("../outside.txt")
	assert.Error(t, err)
	_, err = fs.ReadFile("src/../../outside.txt")
	assert.Error(t, err)
}

func TestReadFileRejectsAbsoluteOutsideRoot(t *testing.T) {
	fs, _ := newTestFS(t)
	outside := filepath.Join(t.TempDir(), "other.txt")
	require.NoError(t, os.WriteFile(outside, []byte("x"), 0o644))
	_, err := fs.ReadFile(outside)
	assert.Error(t, err)
}

func TestReadFileRejectsSymlinkEscape(t *testing.T) {
	fs, root := newTestFS(t)
	target := filepath.Join(t.TempDir(), "secret.txt")
	require.NoError(t, os.WriteFile(target, []byte("s"), 0o644))
	link := filepath.Join(root, "src", "leak.ts")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}
	_, err := fs.ReadFile("src/leak.ts")
	assert.Error(t, err)
}

func TestStatAndRoot(t *testing.T) {
	fs, root := newTestFS(t)
	info, err := fs.Stat("src")
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.True(t, filepath.IsAbs(root))

	_, err = NewSafeFS(filepath.Join(root, "src", "a.ts"))
	assert.Error(t, err, "root must be a directory")
}
