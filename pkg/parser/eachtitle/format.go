package eachtitle

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

const (
	// MissingValuePlaceholder replaces a printf token that has no row value left.
	MissingValuePlaceholder = "<missing>"
	// UndefinedPlaceholder replaces a `$name` token whose path cannot be resolved.
	UndefinedPlaceholder = "undefined"
)

// tokenPattern matches every interpolation token, printf and named styles alike,
// so a single left-to-right pass decides each occurrence.
var tokenPattern = regexp.MustCompile(`%[sdifjoOp#%]|\$#|\$[A-Za-z_][A-Za-z0-9_]*(?:\.[A-Za-z0-9_]+)*`)

// HasTokens reports whether template contains any interpolation token.
func HasTokens(template string) bool {
	return tokenPattern.MatchString(template)
}

// Format renders template for one row. index is the 1-based row number and
// params are the callback parameter names by position ("" when unnamed).
//
// `%%` collapses to `%` only when the template also has a value-consuming
// printf token; otherwise it is kept verbatim.
func Format(template string, row Row, index int, params []string) string {
	next := 0
	printf := consumesValues(template)

	return tokenPattern.ReplaceAllStringFunc(template, func(token string) string {
		switch token {
		case "%%":
			if printf {
				return "%"
			}
			return token
		case "%#", "$#":
			return strconv.Itoa(index)
		}

		if token[0] == '$' {
			return formatNamed(token[1:], row, params)
		}

		if next >= len(row) {
			return MissingValuePlaceholder
		}
		v := row[next]
		next++
		return formatPrintf(token[1], v)
	})
}

// consumesValues reports whether template has a printf token that takes a
// row value. `%%s` is an escaped percent followed by text, not a token.
func consumesValues(template string) bool {
	for _, token := range tokenPattern.FindAllString(template, -1) {
		if token[0] == '%' && strings.IndexByte("sdifjoOp", token[1]) >= 0 {
			return true
		}
	}
	return false
}

func formatPrintf(verb byte, v Value) string {
	switch verb {
	case 's':
		if v.IsPrimitive() || v.Kind == KindExpression {
			return ToString(v)
		}
		return Inspect(v)
	case 'd':
		return FormatNumber(truncate(ToNumber(v)))
	case 'i':
		return FormatNumber(truncate(parseIntPrefix(ToString(v))))
	case 'f':
		return FormatNumber(parseFloatPrefix(ToString(v)))
	case 'j':
		return JSON(v)
	case 'o', 'O':
		return Inspect(v)
	case 'p':
		return Pretty(v)
	default:
		return ToString(v)
	}
}

func truncate(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return f
	}
	return math.Trunc(f)
}

// formatNamed resolves `name.path...` against the row. The head resolves to a
// field of a single object row, then to the value at the position of the
// callback parameter with that name, then to the value of a single-value row.
func formatNamed(expr string, row Row, params []string) string {
	segments := strings.Split(expr, ".")
	head, path := segments[0], segments[1:]

	v, ok := resolveHead(head, row, params)
	if !ok {
		return UndefinedPlaceholder
	}
	v, ok = v.LookupPath(path)
	if !ok || v.Kind == KindUndefined {
		return UndefinedPlaceholder
	}
	if v.IsPrimitive() || v.Kind == KindExpression {
		return ToString(v)
	}
	return Pretty(v)
}

func resolveHead(name string, row Row, params []string) (Value, bool) {
	if len(row) == 1 && row[0].Kind == KindObject {
		if v, ok := row[0].Field(name); ok {
			return v, true
		}
	}
	for i, p := range params {
		if p == name && i < len(row) {
			return row[i], true
		}
	}
	if len(row) == 1 && row[0].Kind != KindObject {
		return row[0], true
	}
	return Value{}, false
}

// Expand renders template once per row. It always returns len(rows) names;
// rows rendering to the same name are kept. An empty rendering falls back
// to fallback so every generated test has a visible name.
func Expand(template string, rows []Row, params []string, fallback string) []string {
	names := make([]string, len(rows))
	if !HasTokens(template) {
		if template == "" {
			template = fallback
		}
		for i := range names {
			names[i] = template
		}
		return names
	}
	for i, row := range rows {
		name := Format(template, row, i+1, params)
		if name == "" {
			name = fallback
		}
		names[i] = name
	}
	return names
}
