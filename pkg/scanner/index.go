package scanner

import (
	"context"
	"sort"
	"sync"

	"github.com/zeebo/xxh3"

	"github.com/specvital/jstree/pkg/domain"
	"github.com/specvital/jstree/pkg/source"
)

// Index keeps the latest extracted tree of each file. Rescanning replaces a
// tree as a whole; readers see either the previous or the new tree, never a
// partially built one.
type Index struct {
	scanner *Scanner
	src     source.Source

	mu      sync.RWMutex
	entries map[string]indexEntry
}

type indexEntry struct {
	tree *domain.TestTree
	hash uint64
}

// NewIndex creates an empty index over src. A nil scanner uses NewScanner().
func NewIndex(src source.Source, scanner *Scanner) *Index {
	if scanner == nil {
		scanner = NewScanner()
	}
	return &Index{
		scanner: scanner,
		src:     src,
		entries: make(map[string]indexEntry),
	}
}

// Update rescans path and publishes the new tree. Content identical to the
// indexed version is not parsed again and reports changed == false.
// On failure the previously published tree stays in place.
func (ix *Index) Update(ctx context.Context, path string) (tree *domain.TestTree, changed bool, err error) {
	if reason, ok := ix.scanner.accepts(path); !ok {
		return nil, false, &ScanError{Err: unsupported(reason), Path: path, Phase: PhaseRead}
	}

	content, err := ix.scanner.read(ctx, ix.src, path)
	if err != nil {
		return nil, false, &ScanError{Err: err, Path: path, Phase: PhaseRead}
	}

	hash := xxh3.Hash(content)

	ix.mu.RLock()
	current, ok := ix.entries[path]
	ix.mu.RUnlock()
	if ok && current.hash == hash {
		return current.tree, false, nil
	}

	tree, err = ix.scanner.parse(ctx, content, path)
	if err != nil {
		return nil, false, &ScanError{Err: err, Path: path, Phase: PhaseParsing}
	}

	ix.mu.Lock()
	ix.entries[path] = indexEntry{tree: tree, hash: hash}
	ix.mu.Unlock()

	return tree, true, nil
}

// Tree returns the published tree of path, or nil.
func (ix *Index) Tree(path string) *domain.TestTree {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.entries[path].tree
}

// Remove forgets path.
func (ix *Index) Remove(path string) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	delete(ix.entries, path)
}

// Paths returns the indexed paths in lexical order.
func (ix *Index) Paths() []string {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	paths := make([]string, 0, len(ix.entries))
	for p := range ix.entries {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Snapshot returns the published trees, sorted by path.
func (ix *Index) Snapshot() *domain.Inventory {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	inv := &domain.Inventory{
		RootPath: ix.src.Root(),
		Trees:    make([]*domain.TestTree, 0, len(ix.entries)),
	}
	for _, e := range ix.entries {
		inv.Trees = append(inv.Trees, e.tree)
	}
	sort.Slice(inv.Trees, func(i, j int) bool {
		return inv.Trees[i].Path < inv.Trees[j].Path
	})
	return inv
}
