// Package source abstracts where test file contents are read from.
package source

import (
	"context"
	"errors"
	"io"
)

// ErrInvalidPath is returned for paths that are not local to the source root.
var ErrInvalidPath = errors.New("source: path escapes root")

// Source provides read access to files addressed by root-relative paths.
// Implementations must be safe for concurrent use.
type Source interface {
	// Root returns the root the relative paths are resolved against.
	Root() string
	// Open opens the file at the slash- or OS-separated relative path.
	Open(ctx context.Context, path string) (io.ReadCloser, error)
	// Close releases resources held by the source.
	Close() error
}
