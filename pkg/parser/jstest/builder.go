package jstest

import (
	"github.com/specvital/jstree/pkg/domain"
	"github.com/specvital/jstree/pkg/parser/eachtitle"
)

// nodeSpec is the part of a TestNode that does not depend on where it is
// attached. An each declaration has one spec per row.
type nodeSpec struct {
	name  string
	title string
	index int
}

// build attaches the declarations to tree. Each declaration is placed under
// the nearest enclosing accepted suite; rejected and case ancestors are
// transparent. A suite expanded from a data table receives a full copy of
// its nested declarations per row.
func (x *extractor) build(tree *domain.TestTree, sites []CallSite, decls []*Declaration) {
	instances := make([][]*domain.TestNode, len(decls))

	for i, decl := range decls {
		if decl == nil {
			continue
		}

		parents := []*domain.TestNode{tree.Root}
		if p := enclosingSuite(sites, decls, i); p >= 0 {
			parents = instances[p]
		}

		specs := x.nodeSpecs(decl)
		for _, parent := range parents {
			for _, spec := range specs {
				node := &domain.TestNode{
					Name:      spec.name,
					Kind:      decl.Kind,
					Modifiers: decl.Modifiers,
					Location:  decl.Location,
					Title:     spec.title,
					Index:     spec.index,
				}
				parent.AddChild(node)
				instances[i] = append(instances[i], node)
			}
		}
	}
}

func enclosingSuite(sites []CallSite, decls []*Declaration, i int) int {
	for p := sites[i].Parent; p >= 0; p = sites[p].Parent {
		if decls[p] != nil && decls[p].Kind == domain.KindSuite {
			return p
		}
	}
	return -1
}

func (x *extractor) nodeSpecs(decl *Declaration) []nodeSpec {
	if !decl.IsEach() {
		return []nodeSpec{{name: x.displayName(decl.Title)}}
	}

	template := x.titleTemplate(decl.Title)
	if decl.DynamicTable {
		return []nodeSpec{{name: template + DynamicCasesSuffix, title: template}}
	}

	names := eachtitle.Expand(template, decl.DataTable, decl.Params, DynamicNamePlaceholder)
	specs := make([]nodeSpec, len(names))
	for i, name := range names {
		specs[i] = nodeSpec{name: name, title: template, index: i + 1}
	}
	return specs
}
