package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/specvital/jstree/pkg/domain"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

func checkFormat(format string) error {
	switch format {
	case formatText, formatJSON, formatYAML:
		return nil
	default:
		return fmt.Errorf("%w: %q", errUnknownFormat, format)
	}
}

// render writes v as JSON or YAML, or calls text for the text format.
func render(w io.Writer, format string, v any, text func(io.Writer) error) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case formatText:
		return text(w)
	default:
		return fmt.Errorf("%w: %q", errUnknownFormat, format)
	}
}

// caseEntry is the flat form of a case used by list and nearest.
type caseEntry struct {
	Name      string            `json:"name" yaml:"name"`
	Path      string            `json:"path" yaml:"path"`
	Line      int               `json:"line" yaml:"line"`
	Status    domain.TestStatus `json:"status" yaml:"status"`
	Modifiers domain.Modifiers  `json:"modifiers,omitempty" yaml:"modifiers,omitempty"`
	Index     int               `json:"index,omitempty" yaml:"index,omitempty"`
}

func newCaseEntry(tree *domain.TestTree, n *domain.TestNode) caseEntry {
	return caseEntry{
		Name:      n.FullyQualifiedName(),
		Path:      tree.Path,
		Line:      n.Location.StartLine,
		Status:    n.Status(),
		Modifiers: n.Modifiers,
		Index:     n.Index,
	}
}

func caseEntries(inv *domain.Inventory) []caseEntry {
	entries := []caseEntry{}
	for _, tree := range inv.Trees {
		for _, c := range tree.Cases() {
			entries = append(entries, newCaseEntry(tree, c))
		}
	}
	return entries
}

// namePattern builds a regular expression matching the full name a test
// runner reports for n: ancestor names joined by spaces.
func namePattern(n *domain.TestNode) string {
	var names []string
	for cur := n; cur != nil && !cur.IsRoot(); cur = cur.Parent {
		names = append(names, regexp.QuoteMeta(cur.Name))
	}
	for i, j := 0, len(names)-1; i < j; i, j = i+1, j-1 {
		names[i], names[j] = names[j], names[i]
	}
	return "^" + strings.Join(names, " ") + "$"
}
