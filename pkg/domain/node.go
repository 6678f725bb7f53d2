package domain

// Kind distinguishes suites from cases.
type Kind string

const (
	KindSuite Kind = "suite"
	KindCase  Kind = "case"
)

// TestNode is a suite or case in an extracted test tree.
type TestNode struct {
	// Name is the resolved display name.
	Name string `json:"name" yaml:"name"`
	// Kind is suite or case.
	Kind Kind `json:"kind" yaml:"kind"`
	// Modifiers holds the declared qualifiers in chain order.
	Modifiers Modifiers `json:"modifiers,omitempty" yaml:"modifiers,omitempty"`
	// Location is the span of the declaring call expression.
	Location Location `json:"location" yaml:"location"`
	// Title is the raw title template of a node generated by .each.
	Title string `json:"title,omitempty" yaml:"title,omitempty"`
	// Index is the 1-based data row of a node generated by .each.
	// It is for display only and is not part of the node's identity.
	Index int `json:"index,omitempty" yaml:"index,omitempty"`
	// Children holds nested suites and cases in source order. Always empty for cases.
	Children []*TestNode `json:"children,omitempty" yaml:"children,omitempty"`
	// Parent is the enclosing suite; nil for the synthetic root.
	Parent *TestNode `json:"-" yaml:"-"`
}

// IsSuite reports whether the node is a suite.
func (n *TestNode) IsSuite() bool {
	return n.Kind == KindSuite
}

// IsRoot reports whether the node is the synthetic file-level suite.
func (n *TestNode) IsRoot() bool {
	return n.Parent == nil
}

// Status returns the execution status implied by the node's modifiers.
func (n *TestNode) Status() TestStatus {
	return n.Modifiers.Status()
}

// AddChild appends child and sets its parent back-reference.
func (n *TestNode) AddChild(child *TestNode) {
	child.Parent = n
	n.Children = append(n.Children, child)
}

// CountCases returns the number of case nodes below n.
func (n *TestNode) CountCases() int {
	count := 0
	for _, c := range n.Children {
		if c.Kind == KindCase {
			count++
			continue
		}
		count += c.CountCases()
	}
	return count
}

// TestTree is the extraction result for one source file.
type TestTree struct {
	// Path is the file path the tree was extracted from.
	Path string `json:"path" yaml:"path"`
	// Language is the dialect the source was parsed as.
	Language Language `json:"language" yaml:"language"`
	// Root is the synthetic file-level suite.
	Root *TestNode `json:"root" yaml:"root"`
}

// NewTestTree creates an empty tree with a synthetic root suite.
func NewTestTree(path string, lang Language) *TestTree {
	return &TestTree{
		Path:     path,
		Language: lang,
		Root: &TestNode{
			Name: path,
			Kind: KindSuite,
			Location: Location{
				File: path,
			},
		},
	}
}

// CountCases returns the total number of case nodes in the tree.
func (t *TestTree) CountCases() int {
	if t == nil || t.Root == nil {
		return 0
	}
	return t.Root.CountCases()
}
