package jstest

import (
	"math"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf16"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/specvital/jstree/pkg/parser"
	"github.com/specvital/jstree/pkg/parser/eachtitle"
)

// maxBindingHops limits how many identifier initializers are followed.
const maxBindingHops = 1

// evaluator computes best-effort static values of expressions. It never
// runs code: anything it cannot model becomes an expression value holding
// the source text.
type evaluator struct {
	source   []byte
	bindings bindings
}

func (e *evaluator) eval(node *sitter.Node) eachtitle.Value {
	return e.evalHops(node, 0)
}

func (e *evaluator) evalHops(node *sitter.Node, hops int) eachtitle.Value {
	node = parser.Unwrap(node)
	if node == nil {
		return eachtitle.Undefined()
	}

	text := parser.GetNodeText(node, e.source)

	switch node.Type() {
	case "string":
		return eachtitle.String(UnquoteString(text))
	case "template_string":
		return e.evalTemplate(node, text, hops)
	case "number":
		if f, ok := eachtitle.ParseNumberLiteral(text); ok {
			return eachtitle.Number(f)
		}
	case "true":
		return eachtitle.Bool(true)
	case "false":
		return eachtitle.Bool(false)
	case "null":
		return eachtitle.Null()
	case "undefined":
		return eachtitle.Undefined()
	case "unary_expression":
		return e.evalUnary(node, text, hops)
	case "array":
		return e.evalArray(node, text, hops)
	case "object":
		return e.evalObject(node, text, hops)
	case "arrow_function", "function_expression", "function", "generator_function", "class":
		return eachtitle.Function(parser.GetNodeText(node.ChildByFieldName("name"), e.source))
	case "identifier":
		return e.evalIdentifier(text, hops)
	case "member_expression":
		obj := e.evalHops(node.ChildByFieldName("object"), hops)
		prop := parser.GetNodeText(node.ChildByFieldName("property"), e.source)
		if v, ok := lookupProperty(obj, prop); ok {
			return v
		}
	case "subscript_expression":
		obj := e.evalHops(node.ChildByFieldName("object"), hops)
		index := e.evalHops(node.ChildByFieldName("index"), hops)
		if index.IsPrimitive() {
			if v, ok := lookupProperty(obj, eachtitle.ToString(index)); ok {
				return v
			}
		}
	}

	return eachtitle.Expression(text)
}

func lookupProperty(obj eachtitle.Value, prop string) (eachtitle.Value, bool) {
	if obj.Kind == eachtitle.KindFunction && prop == "name" {
		return eachtitle.String(obj.Text), true
	}
	return obj.Lookup(prop)
}

func (e *evaluator) evalIdentifier(name string, hops int) eachtitle.Value {
	switch name {
	case "undefined":
		return eachtitle.Undefined()
	case "NaN":
		return eachtitle.Number(math.NaN())
	case "Infinity":
		return eachtitle.Number(math.Inf(1))
	}

	bd, ok := e.bindings.lookup(name)
	if !ok || hops >= maxBindingHops {
		return eachtitle.Expression(name)
	}

	switch bd.kind {
	case bindingClass, bindingFunction:
		return eachtitle.Function(bd.name)
	case bindingVariable:
		v := e.evalHops(bd.value, hops+1)
		// Anonymous functions and classes take the name of their variable.
		if v.Kind == eachtitle.KindFunction && v.Text == "" {
			return eachtitle.Function(bd.name)
		}
		return v
	default:
		return eachtitle.Expression(name)
	}
}

func (e *evaluator) evalUnary(node *sitter.Node, text string, hops int) eachtitle.Value {
	op := parser.GetNodeText(node.ChildByFieldName("operator"), e.source)
	arg := e.evalHops(node.ChildByFieldName("argument"), hops)

	switch op {
	case "-":
		if arg.IsPrimitive() {
			return eachtitle.Number(-eachtitle.ToNumber(arg))
		}
	case "+":
		if arg.IsPrimitive() {
			return eachtitle.Number(eachtitle.ToNumber(arg))
		}
	case "void":
		return eachtitle.Undefined()
	}
	return eachtitle.Expression(text)
}

// evalTemplate concatenates a template literal whose substitutions all
// evaluate to primitives.
func (e *evaluator) evalTemplate(node *sitter.Node, text string, hops int) eachtitle.Value {
	start, end := int(node.StartByte())+1, int(node.EndByte())-1
	if start > end || end > len(e.source) {
		return eachtitle.Expression(text)
	}

	var sb strings.Builder
	pos := start
	for i := 0; i < int(node.NamedChildCount()); i++ {
		sub := node.NamedChild(i)
		if sub.Type() != "template_substitution" {
			continue
		}

		sb.WriteString(templateText(e.source[pos:int(sub.StartByte())]))
		inner := parser.NamedChildren(sub)
		if len(inner) == 0 {
			return eachtitle.Expression(text)
		}
		v := e.evalHops(inner[0], hops)
		if !v.IsPrimitive() {
			return eachtitle.Expression(text)
		}
		sb.WriteString(eachtitle.ToString(v))
		pos = int(sub.EndByte())
	}
	sb.WriteString(templateText(e.source[pos:end]))

	return eachtitle.String(sb.String())
}

// templateText decodes the escapes of a raw template literal chunk.
func templateText(raw []byte) string {
	if s, ok := decodeEscapes(string(raw)); ok {
		return s
	}
	return string(raw)
}

func (e *evaluator) evalArray(node *sitter.Node, text string, hops int) eachtitle.Value {
	var items []eachtitle.Value
	for _, child := range parser.NamedChildren(node) {
		if child.Type() != "spread_element" {
			items = append(items, e.evalHops(child, hops))
			continue
		}

		spread := e.evalSpread(child, hops)
		if spread.Kind != eachtitle.KindArray {
			return eachtitle.Expression(text)
		}
		items = append(items, spread.Items...)
	}
	return eachtitle.Array(items...)
}

func (e *evaluator) evalObject(node *sitter.Node, text string, hops int) eachtitle.Value {
	var fields []eachtitle.Field
	for _, child := range parser.NamedChildren(node) {
		switch child.Type() {
		case "pair":
			key, ok := e.propertyKey(child.ChildByFieldName("key"), hops)
			if !ok {
				return eachtitle.Expression(text)
			}
			fields = append(fields, eachtitle.Field{Key: key, Value: e.evalHops(child.ChildByFieldName("value"), hops)})
		case "shorthand_property_identifier":
			name := parser.GetNodeText(child, e.source)
			fields = append(fields, eachtitle.Field{Key: name, Value: e.evalIdentifier(name, hops)})
		case "method_definition":
			name := parser.GetNodeText(child.ChildByFieldName("name"), e.source)
			fields = append(fields, eachtitle.Field{Key: name, Value: eachtitle.Function(name)})
		case "spread_element":
			spread := e.evalSpread(child, hops)
			if spread.Kind != eachtitle.KindObject {
				return eachtitle.Expression(text)
			}
			fields = append(fields, spread.Fields...)
		default:
			return eachtitle.Expression(text)
		}
	}
	return eachtitle.Object(fields...)
}

func (e *evaluator) evalSpread(node *sitter.Node, hops int) eachtitle.Value {
	inner := parser.NamedChildren(node)
	if len(inner) == 0 {
		return eachtitle.Undefined()
	}
	return e.evalHops(inner[0], hops)
}

func (e *evaluator) propertyKey(key *sitter.Node, hops int) (string, bool) {
	if key == nil {
		return "", false
	}

	switch key.Type() {
	case "property_identifier":
		return parser.GetNodeText(key, e.source), true
	case "string", "number":
		return eachtitle.ToString(e.evalHops(key, hops)), true
	case "computed_property_name":
		inner := parser.NamedChildren(key)
		if len(inner) == 0 {
			return "", false
		}
		v := e.evalHops(inner[0], hops)
		if !v.IsPrimitive() {
			return "", false
		}
		return eachtitle.ToString(v), true
	default:
		return "", false
	}
}

// UnquoteString returns the value of a JavaScript string or template
// literal, or text unchanged when it is not a well-formed literal.
func UnquoteString(text string) string {
	if len(text) < 2 {
		return text
	}

	quote := text[0]
	if text[len(text)-1] != quote {
		return text
	}

	switch quote {
	case '\'', '"', '`':
		inner := text[1 : len(text)-1]
		if s, ok := decodeEscapes(inner); ok {
			return s
		}
		return inner
	default:
		return text
	}
}

// decodeEscapes resolves the escape sequences of a literal body, including
// `\u{...}` code points, legacy octal escapes and line continuations.
func decodeEscapes(s string) (string, bool) {
	if !strings.ContainsRune(s, '\\') {
		return s, true
	}

	var sb strings.Builder
	for i := 0; i < len(s); {
		if s[i] != '\\' {
			sb.WriteByte(s[i])
			i++
			continue
		}
		if i+1 >= len(s) {
			return "", false
		}

		c := s[i+1]
		i += 2
		switch c {
		case 'n':
			sb.WriteByte('\n')
		case 't':
			sb.WriteByte('\t')
		case 'r':
			sb.WriteByte('\r')
		case 'b':
			sb.WriteByte('\b')
		case 'f':
			sb.WriteByte('\f')
		case 'v':
			sb.WriteByte('\v')
		case '\n':
		case '\r':
			if i < len(s) && s[i] == '\n' {
				i++
			}
		case '0', '1', '2', '3', '4', '5', '6', '7':
			limit := 3
			if c > '3' {
				limit = 2
			}
			end := i - 1
			for end < len(s) && end-(i-1) < limit && s[end] >= '0' && s[end] <= '7' {
				end++
			}
			v, err := strconv.ParseUint(s[i-1:end], 8, 32)
			if err != nil {
				return "", false
			}
			sb.WriteRune(rune(v))
			i = end
		case 'x':
			if i+2 > len(s) {
				return "", false
			}
			r, ok := parseHexRune(s[i : i+2])
			if !ok {
				return "", false
			}
			sb.WriteRune(r)
			i += 2
		case 'u':
			r, n, ok := unicodeEscape(s[i:])
			if !ok {
				return "", false
			}
			i += n
			if utf16.IsSurrogate(r) && strings.HasPrefix(s[i:], `\u`) {
				if low, m, ok := unicodeEscape(s[i+2:]); ok {
					if pair := utf16.DecodeRune(r, low); pair != utf8.RuneError {
						r = pair
						i += 2 + m
					}
				}
			}
			sb.WriteRune(r)
		default:
			r, size := utf8.DecodeRuneInString(s[i-1:])
			i += size - 1
			if r == '\u2028' || r == '\u2029' {
				continue
			}
			sb.WriteRune(r)
		}
	}
	return sb.String(), true
}

// unicodeEscape reads the part of a `\u` escape after the `u`: either four
// hex digits or a braced code point. It returns the bytes consumed.
func unicodeEscape(s string) (rune, int, bool) {
	if strings.HasPrefix(s, "{") {
		end := strings.IndexByte(s, '}')
		if end < 2 {
			return 0, 0, false
		}
		r, ok := parseHexRune(s[1:end])
		if !ok || r > unicode.MaxRune {
			return 0, 0, false
		}
		return r, end + 1, true
	}

	if len(s) < 4 {
		return 0, 0, false
	}
	r, ok := parseHexRune(s[:4])
	return r, 4, ok
}

func parseHexRune(s string) (rune, bool) {
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, false
	}
	return rune(v), true
}
