// Package scanner extracts test trees from many files in parallel and keeps
// the latest tree of each file for repeated rescans.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/specvital/jstree/pkg/domain"
	"github.com/specvital/jstree/pkg/parser/jstest"
	"github.com/specvital/jstree/pkg/source"
)

const (
	// DefaultWorkers indicates that the scanner should use GOMAXPROCS as the worker count.
	DefaultWorkers = 0
	// DefaultTimeout is the default scan timeout duration.
	DefaultTimeout = 5 * time.Minute
	// MaxWorkers is the maximum number of concurrent workers allowed.
	MaxWorkers = 1024
	// DefaultMaxFileSize is the default maximum file size for scanning (10MB).
	DefaultMaxFileSize = 10 * 1024 * 1024
)

// Scan phases reported in ScanError.
const (
	PhaseRead    = "read"
	PhaseParsing = "parsing"
)

// DefaultExcludePatterns contains paths that are skipped by default.
var DefaultExcludePatterns = []string{
	"**/node_modules/**",
	"**/.git/**",
	"**/dist/**",
	"**/coverage/**",
	"**/__fixtures__/**",
	"**/__mocks__/**",
}

var (
	// ErrScanCancelled is returned when scanning is cancelled via context.
	ErrScanCancelled = errors.New("scanner: scan cancelled")
	// ErrScanTimeout is returned when scanning exceeds the timeout duration.
	ErrScanTimeout = errors.New("scanner: scan timeout")
	// ErrFileTooLarge is returned by ScanFile for files above MaxFileSize.
	ErrFileTooLarge = errors.New("scanner: file too large")
	// ErrUnsupportedFile is returned by ScanFile for files it does not handle.
	ErrUnsupportedFile = errors.New("scanner: unsupported file")
)

// Scanner extracts test trees from files of a source.
// It is safe for concurrent use.
type Scanner struct {
	options *ScanOptions
}

// ScanResult contains the outcome of a scan operation.
type ScanResult struct {
	// Inventory contains one tree per extracted file, sorted by path.
	Inventory *domain.Inventory

	// Errors contains per-file failures. They never abort the batch.
	Errors []ScanError

	// Stats provides scan statistics.
	Stats ScanStats
}

// ScanError represents an error that occurred during a specific phase of scanning.
type ScanError struct {
	// Err is the underlying error.
	Err error

	// Path is the file path where the error occurred.
	Path string

	// Phase indicates which phase the error occurred in: PhaseRead or PhaseParsing.
	Phase string
}

// Error implements the error interface.
func (e ScanError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("[%s] %v", e.Phase, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %v", e.Phase, e.Path, e.Err)
}

func (e ScanError) Unwrap() error {
	return e.Err
}

// ScanStats provides statistics about the scan operation.
type ScanStats struct {
	// FilesScanned is the number of distinct paths requested.
	FilesScanned int

	// FilesMatched is the number of files that were successfully extracted.
	FilesMatched int

	// FilesFailed is the number of files that failed to read or parse.
	FilesFailed int

	// FilesSkipped is the number of files filtered out by extension, pattern or size.
	FilesSkipped int

	// CasesFound is the number of case nodes across all extracted trees.
	CasesFound int

	// Duration is the total scan duration.
	Duration time.Duration
}

// NewScanner creates a new scanner with the given options.
func NewScanner(opts ...ScanOption) *Scanner {
	options := &ScanOptions{}
	for _, opt := range opts {
		opt(options)
	}
	applyDefaults(options)

	return &Scanner{
		options: options,
	}
}

// ScanFiles extracts the given files in parallel. Discovering which files
// to scan is up to the caller.
//
// The caller is responsible for calling src.Close() when done.
func (s *Scanner) ScanFiles(ctx context.Context, src source.Source, files []string) (*ScanResult, error) {
	startTime := time.Now()

	ctx, cancel := context.WithTimeout(ctx, s.options.Timeout)
	defer cancel()

	files = dedupe(files)

	result := &ScanResult{
		Inventory: &domain.Inventory{
			RootPath: src.Root(),
			Trees:    []*domain.TestTree{},
		},
		Errors: []ScanError{},
		Stats: ScanStats{
			FilesScanned: len(files),
		},
	}

	var accepted []string
	for _, file := range files {
		if reason, ok := s.accepts(file); !ok {
			s.options.Logger.Debug("file skipped", "path", file, "reason", reason)
			continue
		}
		accepted = append(accepted, file)
	}

	if len(accepted) > 0 {
		trees, scanErrors, skipped := s.parseFilesParallel(ctx, src, accepted)
		result.Inventory.Trees = trees
		result.Errors = append(result.Errors, scanErrors...)
		result.Stats.FilesFailed = len(scanErrors)
		result.Stats.FilesMatched = len(trees)
		result.Stats.FilesSkipped = skipped
	}

	result.Stats.FilesSkipped += len(files) - len(accepted)
	result.Stats.CasesFound = result.Inventory.CountCases()
	result.Stats.Duration = time.Since(startTime)

	s.options.Logger.Info("scan finished",
		"root", src.Root(),
		"files", result.Stats.FilesScanned,
		"matched", result.Stats.FilesMatched,
		"failed", result.Stats.FilesFailed,
		"skipped", result.Stats.FilesSkipped,
		"cases", result.Stats.CasesFound,
		"duration", result.Stats.Duration,
	)

	if err := ctx.Err(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return result, ErrScanTimeout
		}
		if errors.Is(err, context.Canceled) {
			return result, ErrScanCancelled
		}
	}

	return result, nil
}

// ScanFile reads and extracts a single file.
func (s *Scanner) ScanFile(ctx context.Context, src source.Source, path string) (*domain.TestTree, error) {
	if reason, ok := s.accepts(path); !ok {
		return nil, fmt.Errorf("%s: %w", path, unsupported(reason))
	}

	content, err := s.read(ctx, src, path)
	if err != nil {
		return nil, err
	}
	return s.parse(ctx, content, path)
}

func (s *Scanner) parseFilesParallel(ctx context.Context, src source.Source, files []string) ([]*domain.TestTree, []ScanError, int) {
	workers := s.options.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > MaxWorkers {
		workers = MaxWorkers
	}

	sem := semaphore.NewWeighted(int64(workers))
	g, gCtx := errgroup.WithContext(ctx)

	var (
		mu         sync.Mutex
		trees      = make([]*domain.TestTree, 0, len(files))
		scanErrors = make([]ScanError, 0)
		skipped    int
	)

	for _, file := range files {
		g.Go(func() error {
			if err := sem.Acquire(gCtx, 1); err != nil {
				return nil
			}
			defer sem.Release(1)

			tree, scanErr := s.parseFile(gCtx, src, file)

			mu.Lock()
			defer mu.Unlock()

			switch {
			case scanErr != nil && errors.Is(scanErr.Err, ErrFileTooLarge):
				skipped++
				s.options.Logger.Debug("file skipped", "path", file, "reason", scanErr.Err)
			case scanErr != nil:
				scanErrors = append(scanErrors, *scanErr)
				s.options.Logger.Warn("file failed", "path", file, "phase", scanErr.Phase, "error", scanErr.Err)
			case tree != nil:
				trees = append(trees, tree)
			}

			return nil
		})
	}

	_ = g.Wait()

	// Goroutines finish in arbitrary order.
	sort.Slice(trees, func(i, j int) bool {
		return trees[i].Path < trees[j].Path
	})
	sort.Slice(scanErrors, func(i, j int) bool {
		return scanErrors[i].Path < scanErrors[j].Path
	})

	return trees, scanErrors, skipped
}

func (s *Scanner) parseFile(ctx context.Context, src source.Source, path string) (*domain.TestTree, *ScanError) {
	content, err := s.read(ctx, src, path)
	if err != nil {
		return nil, &ScanError{
			Err:   err,
			Path:  path,
			Phase: PhaseRead,
		}
	}

	tree, err := s.parse(ctx, content, path)
	if err != nil {
		return nil, &ScanError{
			Err:   err,
			Path:  path,
			Phase: PhaseParsing,
		}
	}
	return tree, nil
}

func (s *Scanner) parse(ctx context.Context, content []byte, path string) (*domain.TestTree, error) {
	return jstest.Parse(ctx, content, path, jstest.WithLogger(s.options.Logger))
}

// read reads path from src, refusing files above MaxFileSize.
func (s *Scanner) read(ctx context.Context, src source.Source, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	reader, err := src.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = reader.Close() }()

	content, err := io.ReadAll(io.LimitReader(reader, s.options.MaxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("read file %s: %w", path, err)
	}
	if int64(len(content)) > s.options.MaxFileSize {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrFileTooLarge, path, s.options.MaxFileSize)
	}

	return content, nil
}

// accepts applies the extension, include and exclude filters to path.
func (s *Scanner) accepts(path string) (string, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	if !jstest.SupportedExtensions[ext] {
		return "unsupported extension", false
	}

	slashPath := filepath.ToSlash(path)
	if matchesAnyPattern(slashPath, DefaultExcludePatterns) || matchesAnyPattern(slashPath, s.options.ExcludePatterns) {
		return "excluded", false
	}
	if len(s.options.Patterns) > 0 && !matchesAnyPattern(slashPath, s.options.Patterns) {
		return "no pattern matched", false
	}
	return "", true
}

func matchesAnyPattern(path string, patterns []string) bool {
	for _, pattern := range patterns {
		matched, err := doublestar.Match(pattern, path)
		if err != nil {
			continue
		}
		if matched {
			return true
		}
	}
	return false
}

func unsupported(reason string) error {
	return fmt.Errorf("%w: %s", ErrUnsupportedFile, reason)
}

func dedupe(files []string) []string {
	seen := make(map[string]bool, len(files))
	out := make([]string, 0, len(files))
	for _, f := range files {
		if seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	return out
}

// ScanFiles creates a scanner with opts and scans files.
func ScanFiles(ctx context.Context, src source.Source, files []string, opts ...ScanOption) (*ScanResult, error) {
	return NewScanner(opts...).ScanFiles(ctx, src, files)
}
