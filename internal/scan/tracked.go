// Package scan enumerates the indexable files of a repository: the
// version-control-tracked list minus configured project exclusions.
package scan

import (
	"context"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
)

var skipDirs = map[string]bool{
	".git":         true,
	".hg":          true,
	".svn":         true,
	"node_modules": true,
	"vendor":       true,
	"dist":         true,
	"build":        true,
	"target":       true,
	".next":        true,
	".cache":       true,
}

// TrackedFiles returns the repo-relative tracked file list, forward-slashed
// and sorted. It asks git first; repositories without a usable git binary or
// .git directory fall back to a gitignore-aware walk.
func TrackedFiles(ctx context.Context, root string) ([]string, error) {
	if files, ok := gitLsFiles(ctx, root); ok {
		sort.Strings(files)
		return files, nil
	}
	return walkFiles(root)
}

func gitLsFiles(ctx context.Context, root string) ([]string, bool) {
	cmd := exec.CommandContext(ctx, "git", "-C", root, "ls-files", "-z")
	out, err := cmd.Output()
	if err != nil {
		return nil, false
	}
	var files []string
	for _, f := range strings.Split(string(out), "\x00") {
		if f = strings.TrimSpace(f); f != "" {
			files = append(files, filepath.ToSlash(f))
		}
	}
	return files, true
}

func walkFiles(root string) ([]string, error) {
	gi := loadGitignore(root)
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if path != root && (skipDirs[d.Name()] || strings.HasPrefix(d.Name(), ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type()&os.ModeSymlink != 0 {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if gi != nil && gi.MatchesPath(rel) {
			return nil
		}
		files = append(files, rel)
		return nil
	})
	sort.Strings(files)
	return files, err
}

func loadGitignore(root string) *ignore.GitIgnore {
	gi, err := ignore.CompileIgnoreFile(filepath.Join(root, ".gitignore"))
	if err != nil {
		return nil
	}
	return gi
}

// FilterExcluded drops paths containing any of the excluded-project
// substrings. Matching is plain substring, not glob.
func FilterExcluded(files []string, excluded []string) []string {
	if len(excluded) == 0 {
		return files
	}
	out := files[:0:0]
	for _, f := range files {
		if !isExcluded(f, excluded) {
			out = append(out, f)
		}
	}
	return out
}

func isExcluded(path string, excluded []string) bool {
	for _, e := range excluded {
		if e != "" && strings.Contains(path, e) {
			return true
		}
	}
	return false
}
