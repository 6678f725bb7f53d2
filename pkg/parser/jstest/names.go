package jstest

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/specvital/jstree/pkg/parser"
	"github.com/specvital/jstree/pkg/parser/eachtitle"
)

// displayName computes the name of a declaration from its title argument.
// A title that cannot be resolved yields DynamicNamePlaceholder; the
// declaration itself is always kept.
func (e *evaluator) displayName(title *sitter.Node) string {
	node := parser.Unwrap(title)
	if node == nil {
		return DynamicNamePlaceholder
	}

	switch node.Type() {
	case "identifier":
		if name, ok := e.identifierName(parser.GetNodeText(node, e.source)); ok {
			return name
		}
	case "member_expression":
		if name, ok := e.memberName(node); ok {
			return name
		}
	}

	if v := e.eval(node); v.IsPrimitive() {
		return eachtitle.ToString(v)
	}
	return DynamicNamePlaceholder
}

// titleTemplate returns the template an each declaration expands.
func (e *evaluator) titleTemplate(title *sitter.Node) string {
	if v := e.eval(title); v.Kind == eachtitle.KindString {
		return v.Text
	}
	return e.displayName(title)
}

// identifierName names a title that references a declaration directly.
// Variables initialized from literals are left to the evaluator.
func (e *evaluator) identifierName(name string) (string, bool) {
	bd, ok := e.bindings.lookup(name)
	if !ok {
		return "", false
	}

	switch bd.kind {
	case bindingClass, bindingFunction, bindingImport:
		return bd.name, true
	case bindingVariable:
		value := parser.Unwrap(bd.value)
		if value == nil {
			return "", false
		}
		switch value.Type() {
		case "new_expression":
			if ctor := value.ChildByFieldName("constructor"); ctor != nil {
				return parser.GetNodeText(ctor, e.source), true
			}
		case "arrow_function", "function_expression", "function", "generator_function", "class":
			return bd.name, true
		}
	}
	return "", false
}

// memberName names `instance.prop` after the access itself and `fn.name`
// after the referenced declaration.
func (e *evaluator) memberName(node *sitter.Node) (string, bool) {
	obj := parser.Unwrap(node.ChildByFieldName("object"))
	if obj == nil || obj.Type() != "identifier" {
		return "", false
	}

	bd, ok := e.bindings.lookup(parser.GetNodeText(obj, e.source))
	if !ok {
		return "", false
	}

	if bd.kind == bindingVariable {
		if value := parser.Unwrap(bd.value); value != nil && value.Type() == "new_expression" {
			return parser.GetNodeText(node, e.source), true
		}
	}

	if parser.GetNodeText(node.ChildByFieldName("property"), e.source) == "name" {
		switch bd.kind {
		case bindingClass, bindingFunction:
			return bd.name, true
		case bindingVariable:
			if name, ok := e.identifierName(bd.name); ok {
				return name, true
			}
		}
	}
	return "", false
}
