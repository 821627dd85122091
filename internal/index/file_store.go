package index

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileStore keeps one JSON document per repository under a base directory.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, fmt.Errorf("index: storage directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("index: create storage directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) pathFor(repository string) (string, error) {
	name := strings.TrimSpace(filepath.Base(repository))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return "", fmt.Errorf("index: invalid repository name %q", repository)
	}
	return filepath.Join(s.dir, name+".json"), nil
}

func (s *FileStore) Load(_ context.Context, repository string) (*ASTIndex, error) {
	path, err := s.pathFor(repository)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("index: read %s: %w", path, err)
	}
	var idx ASTIndex
	if err := json.Unmarshal(b, &idx); err != nil {
		return nil, fmt.Errorf("index: decode %s: %w", path, err)
	}
	if idx.FileSummaries == nil {
		idx.FileSummaries = map[string]Summary{}
	}
	return &idx, nil
}

// Save rewrites the whole document. The write goes through a temp file and
// rename so an interrupted run never leaves a truncated artifact behind.
func (s *FileStore) Save(_ context.Context, idx *ASTIndex) error {
	if idx == nil {
		return fmt.Errorf("index: nil index")
	}
	path, err := s.pathFor(idx.Repository)
	if err != nil {
		return err
	}
	b, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return fmt.Errorf("index: encode %s: %w", idx.Repository, err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("index: write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("index: replace %s: %w", path, err)
	}
	return nil
}

func (s *FileStore) Exists(_ context.Context, repository string) (bool, error) {
	path, err := s.pathFor(repository)
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
