package index

import (
	"context"
	"errors"
)

// ErrNotFound reports that no index artifact exists for a repository yet.
var ErrNotFound = errors.New("index: artifact not found")

// Store persists one AST index document per repository, keyed by the
// repository name. Save always rewrites the whole document; callers must
// serialize concurrent writers to the same repository themselves.
type Store interface {
	Load(ctx context.Context, repository string) (*ASTIndex, error)
	Save(ctx context.Context, idx *ASTIndex) error
	Exists(ctx context.Context, repository string) (bool, error)
}
