package jstest

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/specvital/jstree/pkg/domain"
	"github.com/specvital/jstree/pkg/parser"
	"github.com/specvital/jstree/pkg/parser/tspool"
)

type bindingKind int

const (
	bindingClass bindingKind = iota
	bindingFunction
	bindingVariable
	bindingImport
)

// binding is a name declared somewhere in the file. Scopes are not tracked;
// the first declaration of a name wins.
type binding struct {
	kind bindingKind
	name string
	// value is the initializer of a variable binding.
	value *sitter.Node
}

// bindingsQuery captures the declarations the name resolver can follow.
// Class names are `type_identifier` in TypeScript, hence the wildcard.
const bindingsQuery = `
(class_declaration name: (_) @class.name)
(function_declaration name: (identifier) @function.name)
(generator_function_declaration name: (identifier) @function.name)
(variable_declarator name: (identifier) @variable.name value: (_) @variable.value)
(import_clause (identifier) @import.name)
(import_specifier) @import.specifier
(namespace_import (identifier) @import.name)
`

type bindings map[string]binding

func collectBindings(root *sitter.Node, source []byte, lang domain.Language) (bindings, error) {
	results, err := tspool.QueryWithCache(root, source, lang, bindingsQuery)
	if err != nil {
		return nil, err
	}

	b := make(bindings, len(results))
	for _, r := range results {
		switch {
		case r.Captures["class.name"] != nil:
			b.add(bindingClass, r.Captures["class.name"], nil, source)
		case r.Captures["function.name"] != nil:
			b.add(bindingFunction, r.Captures["function.name"], nil, source)
		case r.Captures["variable.name"] != nil:
			b.add(bindingVariable, r.Captures["variable.name"], r.Captures["variable.value"], source)
		case r.Captures["import.name"] != nil:
			b.add(bindingImport, r.Captures["import.name"], nil, source)
		case r.Captures["import.specifier"] != nil:
			spec := r.Captures["import.specifier"]
			local := spec.ChildByFieldName("alias")
			if local == nil {
				local = spec.ChildByFieldName("name")
			}
			b.add(bindingImport, local, nil, source)
		}
	}
	return b, nil
}

func (b bindings) add(kind bindingKind, nameNode, value *sitter.Node, source []byte) {
	name := parser.GetNodeText(nameNode, source)
	if name == "" {
		return
	}
	if _, exists := b[name]; exists {
		return
	}
	b[name] = binding{
		kind:  kind,
		name:  name,
		value: value,
	}
}

func (b bindings) lookup(name string) (binding, bool) {
	bd, ok := b[name]
	return bd, ok
}
