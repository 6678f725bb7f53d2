package source

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// LocalSource reads files below a directory of the local file system.
type LocalSource struct {
	root string
}

// NewLocalSource returns a source rooted at dir, which must exist.
func NewLocalSource(dir string) (*LocalSource, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve root %s: %w", dir, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("stat root %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root %s is not a directory", dir)
	}

	return &LocalSource{root: abs}, nil
}

func (s *LocalSource) Root() string {
	return s.root
}

func (s *LocalSource) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rel := filepath.FromSlash(path)
	if !filepath.IsLocal(rel) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPath, path)
	}

	f, err := os.Open(filepath.Join(s.root, rel))
	if err != nil {
		return nil, err
	}
	return f, nil
}

// Close is a no-op; local files are closed by their readers.
func (s *LocalSource) Close() error {
	return nil
}
