package source

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"path"
	"sort"
	"sync"
)

// MemorySource serves files from memory. It backs editor buffers that have
// not been saved and is convenient in tests.
type MemorySource struct {
	root  string
	mu    sync.RWMutex
	files map[string][]byte
}

// NewMemorySource returns an empty source reporting root as its root.
func NewMemorySource(root string) *MemorySource {
	return &MemorySource{
		root:  root,
		files: make(map[string][]byte),
	}
}

func (s *MemorySource) Root() string {
	return s.root
}

// Put stores a copy of content at name, replacing any previous content.
func (s *MemorySource) Put(name string, content []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[path.Clean(name)] = bytes.Clone(content)
}

// Delete removes name.
func (s *MemorySource) Delete(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.files, path.Clean(name))
}

// Paths returns the stored paths in lexical order.
func (s *MemorySource) Paths() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	paths := make([]string, 0, len(s.files))
	for p := range s.files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

func (s *MemorySource) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !fs.ValidPath(path.Clean(name)) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPath, name)
	}

	s.mu.RLock()
	content, ok := s.files[path.Clean(name)]
	s.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("open %s: %w", name, fs.ErrNotExist)
	}
	return io.NopCloser(bytes.NewReader(content)), nil
}

func (s *MemorySource) Close() error {
	return nil
}
