// Package jstest extracts the suite and case structure of JavaScript and
// TypeScript test files written against the describe/it/test API.
package jstest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/specvital/jstree/pkg/domain"
	"github.com/specvital/jstree/pkg/parser"
	"github.com/specvital/jstree/pkg/parser/tspool"
)

var (
	// ErrSyntax is wrapped by every *SyntaxError.
	ErrSyntax = errors.New("jstest: syntax error")
	// ErrNilTree is returned by ParseTree when no tree is given.
	ErrNilTree = errors.New("jstest: nil syntax tree")
)

// SyntaxError reports the first syntax error of a source file.
// Line and Column are 1-based.
type SyntaxError struct {
	Path   string
	Line   int
	Column int
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %v", e.Path, e.Line, e.Column, ErrSyntax)
}

func (e *SyntaxError) Unwrap() error {
	return ErrSyntax
}

// Option configures Parse and ParseTree.
type Option func(*options)

type options struct {
	language domain.Language
	logger   *slog.Logger
}

// WithLanguage overrides the dialect detected from the file name.
// ParseTree callers must pass the dialect the tree was parsed with.
func WithLanguage(lang domain.Language) Option {
	return func(o *options) {
		o.language = lang
	}
}

// WithLogger sets the logger receiving rejected call sites at debug level.
// Nil is ignored.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func newOptions(filename string, opts []Option) *options {
	o := &options{
		language: DetectLanguage(filename),
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}

// DetectLanguage determines the dialect based on file extension.
func DetectLanguage(filename string) domain.Language {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".js", ".jsx", ".mjs", ".cjs":
		return domain.LanguageJavaScript
	case ".tsx":
		return domain.LanguageTSX
	default:
		return domain.LanguageTypeScript
	}
}

// Parse extracts the test tree of one source file.
// A file with any syntax error yields a *SyntaxError and no tree.
func Parse(ctx context.Context, source []byte, filename string, opts ...Option) (*domain.TestTree, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filename, err)
	}

	o := newOptions(filename, opts)

	tree, err := tspool.Parse(ctx, o.language, source)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filename, err)
	}
	defer tree.Close()

	return extract(tree.RootNode(), source, filename, o)
}

// ParseTree extracts the test tree from a syntax tree the caller already
// built from source. The tree is not closed.
func ParseTree(tree *sitter.Tree, source []byte, filename string, opts ...Option) (*domain.TestTree, error) {
	if tree == nil {
		return nil, ErrNilTree
	}
	return extract(tree.RootNode(), source, filename, newOptions(filename, opts))
}

type extractor struct {
	evaluator
	filename string
	logger   *slog.Logger
}

func extract(root *sitter.Node, source []byte, filename string, o *options) (*domain.TestTree, error) {
	if bad := parser.FirstError(root); bad != nil {
		pos := bad.StartPoint()
		return nil, &SyntaxError{
			Path:   filename,
			Line:   int(pos.Row) + 1,
			Column: int(pos.Column) + 1,
		}
	}

	b, err := collectBindings(root, source, o.language)
	if err != nil {
		return nil, fmt.Errorf("failed to collect bindings of %s: %w", filename, err)
	}

	x := &extractor{
		evaluator: evaluator{
			source:   source,
			bindings: b,
		},
		filename: filename,
		logger:   o.logger,
	}

	sites := ScanCallSites(root, source, filename)
	decls := make([]*Declaration, len(sites))
	for i, site := range sites {
		decl, err := Resolve(site, source)
		if err != nil {
			x.logger.Debug("call site rejected",
				"path", filename,
				"line", site.Location.StartLine,
				"chain", site.String(),
				"reason", err,
			)
			continue
		}

		decl.Site = i
		if decl.IsEach() {
			rows, ok := x.readTable(decl.TableArgs)
			decl.DataTable = rows
			decl.DynamicTable = !ok
		}
		decls[i] = decl
	}

	tree := domain.NewTestTree(filename, o.language)
	x.build(tree, sites, decls)
	return tree, nil
}
