// Package parser holds tree-sitter helpers shared by the extractor packages.
package parser

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/specvital/jstree/pkg/domain"
	"github.com/specvital/jstree/pkg/parser/tspool"
)

// GetNodeText returns the source text for the given AST node.
// Returns empty string for a nil node or a byte range beyond the source length.
func GetNodeText(node *sitter.Node, source []byte) (result string) {
	if node == nil {
		return ""
	}

	start := node.StartByte()
	end := node.EndByte()
	sourceLen := uint32(len(source))

	// Validate bounds before calling tree-sitter C code
	if start > sourceLen || end > sourceLen || start > end {
		return ""
	}

	// tree-sitter can hand out ranges that do not fit the slice when the tree
	// was built from different bytes than the ones passed here.
	defer func() {
		if r := recover(); r != nil {
			result = ""
		}
	}()

	return node.Content(source)
}

// GetLocation converts a tree-sitter node position to a [domain.Location].
// Line numbers are converted to 1-based indexing.
func GetLocation(node *sitter.Node, filename string) domain.Location {
	start := node.StartPoint()
	end := node.EndPoint()

	return domain.Location{
		File:      filename,
		StartLine: int(start.Row) + 1, // Convert to 1-based
		EndLine:   int(end.Row) + 1,
		StartCol:  int(start.Column),
		EndCol:    int(end.Column),
	}
}

// NamedChildren returns the named children of node, skipping comments.
func NamedChildren(node *sitter.Node) []*sitter.Node {
	if node == nil {
		return nil
	}

	children := make([]*sitter.Node, 0, node.NamedChildCount())
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child.Type() == "comment" {
			continue
		}
		children = append(children, child)
	}
	return children
}

// Unwrap strips parentheses and TypeScript-only expression wrappers
// (`x as T`, `x satisfies T`, `x!`) that do not change the runtime value.
func Unwrap(node *sitter.Node) *sitter.Node {
	for node != nil {
		switch node.Type() {
		case "parenthesized_expression", "as_expression", "satisfies_expression", "non_null_expression":
			children := NamedChildren(node)
			if len(children) == 0 {
				return node
			}
			node = children[0]
		default:
			return node
		}
	}
	return node
}

// FirstError returns the first ERROR or MISSING node in document order,
// or nil when the tree is free of syntax errors.
func FirstError(root *sitter.Node) *sitter.Node {
	if root == nil || !root.HasError() {
		return nil
	}

	var found *sitter.Node
	WalkTree(root, func(node *sitter.Node) bool {
		if found != nil {
			return false
		}
		if node.IsError() || node.IsMissing() {
			found = node
			return false
		}
		return node.HasError()
	})

	if found == nil {
		return root
	}
	return found
}

func walkTreeWithDepth(node *sitter.Node, visitor func(*sitter.Node) bool, depth int) {
	if depth > tspool.MaxTreeDepth {
		return
	}

	if !visitor(node) {
		return
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		walkTreeWithDepth(node.Child(i), visitor, depth+1)
	}
}

// WalkTree recursively visits all nodes in the AST.
// The visitor function returns false to stop traversing into children.
func WalkTree(node *sitter.Node, visitor func(*sitter.Node) bool) {
	walkTreeWithDepth(node, visitor, 0)
}
