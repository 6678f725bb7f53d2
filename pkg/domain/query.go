package domain

import "strings"

// QualifiedNameSeparator joins display names in a fully qualified name.
const QualifiedNameSeparator = "/"

// Walk visits n and its descendants in document order.
// The visitor returns false to stop descending into a node's children.
func (n *TestNode) Walk(visit func(*TestNode) bool) {
	if n == nil || !visit(n) {
		return
	}
	for _, c := range n.Children {
		c.Walk(visit)
	}
}

// Depth returns the number of ancestors between n and the root.
func (n *TestNode) Depth() int {
	depth := 0
	for p := n.Parent; p != nil; p = p.Parent {
		depth++
	}
	return depth
}

// FullyQualifiedName joins the display names from the first level below
// the synthetic root down to n.
func (n *TestNode) FullyQualifiedName() string {
	var names []string
	for cur := n; cur != nil && !cur.IsRoot(); cur = cur.Parent {
		names = append(names, cur.Name)
	}
	for i, j := 0, len(names)-1; i < j; i, j = i+1, j-1 {
		names[i], names[j] = names[j], names[i]
	}
	return strings.Join(names, QualifiedNameSeparator)
}

// Cases returns every case node in n's subtree in document order.
func (n *TestNode) Cases() []*TestNode {
	var cases []*TestNode
	n.Walk(func(node *TestNode) bool {
		if node.Kind == KindCase {
			cases = append(cases, node)
		}
		return true
	})
	return cases
}

// Cases returns every case node in the tree in document order.
func (t *TestTree) Cases() []*TestNode {
	if t == nil || t.Root == nil {
		return nil
	}
	return t.Root.Cases()
}

// FindContaining returns the nodes whose span contains line, in document
// order. Enclosing suites therefore come before the nodes they contain.
func (t *TestTree) FindContaining(line int) []*TestNode {
	if t == nil || t.Root == nil {
		return nil
	}

	var found []*TestNode
	for _, c := range t.Root.Children {
		c.Walk(func(node *TestNode) bool {
			if !node.Location.ContainsLine(line) {
				return false
			}
			found = append(found, node)
			return true
		})
	}
	return found
}

// FindNearest returns the case to run for a cursor on line.
// A case whose span contains line wins. Otherwise, starting from the innermost
// enclosing suite and moving outwards, the last case that starts at or before
// line is chosen, falling back to the first case of that suite.
// Returns nil when the tree has no cases.
func (t *TestTree) FindNearest(line int) *TestNode {
	if t == nil || t.Root == nil {
		return nil
	}

	containing := t.FindContaining(line)
	for _, n := range containing {
		if n.Kind == KindCase {
			return n
		}
	}

	for _, suite := range innermostFirst(containing) {
		if c := nearestCaseWithin(suite, line); c != nil {
			return c
		}
	}

	return nearestCaseWithin(t.Root, line)
}

// innermostFirst orders suites by decreasing depth, keeping document order
// among suites at the same depth.
func innermostFirst(nodes []*TestNode) []*TestNode {
	maxDepth := 0
	depths := make([]int, len(nodes))
	for i, n := range nodes {
		depths[i] = n.Depth()
		if depths[i] > maxDepth {
			maxDepth = depths[i]
		}
	}

	ordered := make([]*TestNode, 0, len(nodes))
	for d := maxDepth; d >= 0; d-- {
		for i, n := range nodes {
			if depths[i] == d {
				ordered = append(ordered, n)
			}
		}
	}
	return ordered
}

func nearestCaseWithin(suite *TestNode, line int) *TestNode {
	cases := suite.Cases()
	if len(cases) == 0 {
		return nil
	}

	var preceding *TestNode
	for _, c := range cases {
		if c.Location.StartLine > line {
			continue
		}
		// Rows expanded from one .each call share a span; keep the first.
		if preceding == nil || c.Location.StartLine > preceding.Location.StartLine {
			preceding = c
		}
	}
	if preceding != nil {
		return preceding
	}
	return cases[0]
}
