package jstest

import (
	"errors"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/specvital/jstree/pkg/domain"
	"github.com/specvital/jstree/pkg/parser"
	"github.com/specvital/jstree/pkg/parser/eachtitle"
)

// Rejection reasons. A rejected call site is not a test declaration; these
// never reach callers of Parse.
var (
	errUnrecognizedSegment  = errors.New("unrecognized chain segment")
	errDuplicateModifier    = errors.New("modifier declared twice")
	errConflictingModifiers = errors.New("only and skip in one chain")
	errSuiteModifier        = errors.New("modifier not valid on a suite")
	errMisplacedModifier    = errors.New("modifier must end the chain")
	errMissingTable         = errors.New("each without a data table")
	errUnexpectedTable      = errors.New("curried call without each")
	errMissingTitle         = errors.New("missing title argument")
)

// Declaration is the normalized form of an accepted call site.
type Declaration struct {
	Kind domain.Kind
	// BaseName is describe, it or test after alias folding.
	BaseName string
	// Alias is the fused identifier the chain started at, if any.
	Alias     string
	Modifiers domain.Modifiers
	// Title is the raw title argument.
	Title *sitter.Node
	// Body is the callback argument. Nil when absent and always nil for todo.
	Body *sitter.Node
	// TableArgs is the raw data table of an each declaration.
	TableArgs *sitter.Node
	// DataTable holds the statically read rows of an each declaration.
	DataTable []eachtitle.Row
	// DynamicTable is set when the data table could not be read statically.
	DynamicTable bool
	// Params are the callback parameter names by position, "" for patterns.
	Params   []string
	Location domain.Location
	// Site is the index of the originating call site.
	Site int
}

// BodyPresent reports whether the declaration carries an executable body.
func (d *Declaration) BodyPresent() bool {
	return d.Body != nil
}

// IsEach reports whether the declaration is data-driven.
func (d *Declaration) IsEach() bool {
	return d.Modifiers.Has(domain.ModifierEach)
}

// Resolve folds a call site's chain into a declaration, or returns the
// reason the call site is not a valid test declaration.
func Resolve(site CallSite, source []byte) (*Declaration, error) {
	base, implied := expandAlias(site.Root())

	decl := &Declaration{
		Kind:      kindOf(base),
		BaseName:  base,
		Location:  site.Location,
		TableArgs: site.TableArgs,
	}
	if implied != "" {
		decl.Alias = site.Root()
		decl.Modifiers = domain.Modifiers{implied}
	}

	segments := site.Segments()
	for i, seg := range segments {
		m, ok := domain.ParseModifier(seg)
		if !ok {
			return nil, fmt.Errorf("%w: %q", errUnrecognizedSegment, seg)
		}
		if (m == domain.ModifierEach || m == domain.ModifierTodo) && i != len(segments)-1 {
			return nil, fmt.Errorf("%w: %q", errMisplacedModifier, seg)
		}

		var added bool
		if decl.Modifiers, added = decl.Modifiers.With(m); !added {
			return nil, fmt.Errorf("%w: %q", errDuplicateModifier, seg)
		}
	}

	mods := decl.Modifiers
	if mods.Has(domain.ModifierOnly) && mods.Has(domain.ModifierSkip) {
		return nil, errConflictingModifiers
	}
	if decl.Kind == domain.KindSuite && mods.Has(domain.ModifierFailing) {
		return nil, fmt.Errorf("%w: %q", errSuiteModifier, domain.ModifierFailing)
	}

	switch each := mods.Has(domain.ModifierEach); {
	case each && site.TableArgs == nil:
		return nil, errMissingTable
	case !each && site.TableArgs != nil:
		return nil, errUnexpectedTable
	}

	if site.Args.Type() != "arguments" {
		return nil, errMissingTitle
	}
	args := parser.NamedChildren(site.Args)
	if len(args) == 0 {
		return nil, errMissingTitle
	}

	decl.Title = args[0]
	if len(args) > 1 && !mods.Has(domain.ModifierTodo) {
		decl.Body = args[1]
		decl.Params = callbackParams(args[1], source)
	}

	return decl, nil
}

// callbackParams lists the parameter names of a function argument.
// Destructuring patterns and rest parameters yield "".
func callbackParams(fn *sitter.Node, source []byte) []string {
	fn = parser.Unwrap(fn)
	switch fn.Type() {
	case "arrow_function", "function_expression", "function":
	default:
		return nil
	}

	if single := fn.ChildByFieldName("parameter"); single != nil {
		return []string{paramName(single, source)}
	}

	params := fn.ChildByFieldName("parameters")
	if params == nil {
		return nil
	}

	var names []string
	for _, p := range parser.NamedChildren(params) {
		names = append(names, paramName(p, source))
	}
	return names
}

func paramName(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	switch node.Type() {
	case "identifier":
		return parser.GetNodeText(node, source)
	case "assignment_pattern":
		return paramName(node.ChildByFieldName("left"), source)
	case "required_parameter", "optional_parameter":
		if pattern := node.ChildByFieldName("pattern"); pattern != nil {
			return paramName(pattern, source)
		}
	}
	return ""
}
