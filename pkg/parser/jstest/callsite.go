package jstest

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/specvital/jstree/pkg/domain"
	"github.com/specvital/jstree/pkg/parser"
	"github.com/specvital/jstree/pkg/parser/tspool"
)

// CallSite is a call expression whose callee chain starts at a recognized
// suite or case identifier. Matching is purely lexical: bindings are never
// consulted, so a local variable named `it` is still a candidate.
type CallSite struct {
	// Node is the outermost call expression, the one receiving (title, fn).
	Node *sitter.Node
	// Chain holds the callee segments, root identifier first.
	Chain []string
	// Args is the argument list of Node.
	Args *sitter.Node
	// TableArgs is the argument list of the inner call of a curried
	// `chain(table)(title, fn)` form, or the template literal of a tagged
	// `chain`table`(title, fn)` form. Nil for direct calls.
	TableArgs *sitter.Node
	Location  domain.Location
	// Parent is the index of the smallest enclosing call site, -1 at top level.
	Parent int
}

// Root returns the identifier the chain starts at.
func (c CallSite) Root() string {
	return c.Chain[0]
}

// Segments returns the property accesses after the root identifier.
func (c CallSite) Segments() []string {
	return c.Chain[1:]
}

func (c CallSite) String() string {
	return strings.Join(c.Chain, ".")
}

// ScanCallSites returns the candidate call sites below root in document order.
// Enclosing call sites always precede the call sites nested in their arguments.
func ScanCallSites(root *sitter.Node, source []byte, filename string) []CallSite {
	s := &callSiteScanner{
		source:   source,
		filename: filename,
	}
	s.walk(root, -1, 0)
	return s.sites
}

type callSiteScanner struct {
	source   []byte
	filename string
	sites    []CallSite
}

func (s *callSiteScanner) walk(node *sitter.Node, parent int, depth int) {
	if node == nil || depth > tspool.MaxTreeDepth {
		return
	}

	if node.Type() == "call_expression" {
		if site, inner, ok := s.match(node); ok {
			site.Parent = parent
			idx := len(s.sites)
			s.sites = append(s.sites, site)

			// The inner table call belongs to this site and is not a candidate
			// of its own, but calls nested in the table still are.
			if inner != nil {
				s.walk(inner.ChildByFieldName("arguments"), idx, depth+1)
			}
			s.walk(site.Args, idx, depth+1)
			return
		}
	}

	for i := 0; i < int(node.NamedChildCount()); i++ {
		s.walk(node.NamedChild(i), parent, depth+1)
	}
}

// match recognizes `chain(args)`, `chain(table)(args)` and `chain`table`(args)`.
// The second result is the inner table call of the curried forms.
func (s *callSiteScanner) match(call *sitter.Node) (CallSite, *sitter.Node, bool) {
	fn := parser.Unwrap(call.ChildByFieldName("function"))
	args := call.ChildByFieldName("arguments")
	if fn == nil || args == nil {
		return CallSite{}, nil, false
	}

	var inner, tableArgs *sitter.Node
	if fn.Type() == "call_expression" {
		inner = fn
		tableArgs = inner.ChildByFieldName("arguments")
		fn = parser.Unwrap(inner.ChildByFieldName("function"))
	}

	chain := s.calleeChain(fn)
	if len(chain) == 0 || !IsRecognizedRoot(chain[0]) {
		return CallSite{}, nil, false
	}

	return CallSite{
		Node:      call,
		Chain:     chain,
		Args:      args,
		TableArgs: tableArgs,
		Location:  parser.GetLocation(call, s.filename),
	}, inner, true
}

// calleeChain flattens `a.b.c` into [a b c]. Returns nil for anything that is
// not an identifier followed by plain property accesses, or a conditional
// choosing between such chains.
func (s *callSiteScanner) calleeChain(node *sitter.Node) []string {
	node = parser.Unwrap(node)
	if node == nil {
		return nil
	}

	switch node.Type() {
	case "identifier":
		return []string{parser.GetNodeText(node, s.source)}
	case "member_expression":
		obj := node.ChildByFieldName("object")
		prop := node.ChildByFieldName("property")
		if obj == nil || prop == nil || prop.Type() != "property_identifier" {
			return nil
		}
		chain := s.calleeChain(obj)
		if chain == nil {
			return nil
		}
		return append(chain, parser.GetNodeText(prop, s.source))
	case "ternary_expression":
		// `(cond ? it : it.skip)` takes the first branch that is a test chain.
		for _, field := range []string{"consequence", "alternative"} {
			chain := s.calleeChain(node.ChildByFieldName(field))
			if len(chain) > 0 && IsRecognizedRoot(chain[0]) {
				return chain
			}
		}
		return nil
	default:
		return nil
	}
}
