package eachtitle

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

// FormatNumber renders f the way JavaScript's Number#toString does.
func FormatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}

	abs := math.Abs(f)
	if abs >= 1e21 || abs < 1e-6 {
		s := strconv.FormatFloat(f, 'e', -1, 64)
		mantissa, exp, _ := strings.Cut(s, "e")
		sign := exp[0]
		exp = strings.TrimLeft(exp[1:], "0")
		return mantissa + "e" + string(sign) + exp
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// ToString converts v the way JavaScript's String() does.
func ToString(v Value) string {
	switch v.Kind {
	case KindUndefined:
		return "undefined"
	case KindNull:
		return "null"
	case KindBool:
		return strconv.FormatBool(v.Bool)
	case KindNumber:
		return FormatNumber(v.Number)
	case KindString, KindExpression:
		return v.Text
	case KindArray:
		parts := make([]string, len(v.Items))
		for i, item := range v.Items {
			if item.Kind == KindUndefined || item.Kind == KindNull {
				continue
			}
			parts[i] = ToString(item)
		}
		return strings.Join(parts, ",")
	case KindObject:
		return "[object Object]"
	case KindFunction:
		return "function " + v.Text + "() {}"
	default:
		return ""
	}
}

// ToNumber converts v the way JavaScript's Number() does.
func ToNumber(v Value) float64 {
	switch v.Kind {
	case KindNull:
		return 0
	case KindBool:
		if v.Bool {
			return 1
		}
		return 0
	case KindNumber:
		return v.Number
	case KindString:
		return parseNumericString(v.Text)
	case KindArray:
		switch len(v.Items) {
		case 0:
			return 0
		case 1:
			return parseNumericString(ToString(v.Items[0]))
		}
	}
	return math.NaN()
}

func parseNumericString(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if f, ok := ParseNumberLiteral(s); ok {
		return f
	}
	return math.NaN()
}

// ParseNumberLiteral parses a JavaScript numeric literal: decimal with
// optional exponent and numeric separators, 0x/0o/0b integers, or Infinity.
func ParseNumberLiteral(s string) (float64, bool) {
	sign := 1.0
	switch {
	case strings.HasPrefix(s, "-"):
		sign, s = -1, s[1:]
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	}
	s = strings.ReplaceAll(s, "_", "")
	if s == "" || s[0] == '+' || s[0] == '-' {
		return 0, false
	}

	if s == "Infinity" {
		return sign * math.Inf(1), true
	}

	if len(s) > 2 && s[0] == '0' {
		base := 0
		switch s[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		if base != 0 {
			n, err := strconv.ParseUint(s[2:], base, 64)
			if err != nil {
				return 0, false
			}
			return sign * float64(n), true
		}
	}

	// strconv accepts forms JavaScript does not (hex floats, "inf", "nan").
	for _, r := range s {
		if !strings.ContainsRune("0123456789.eE+-", r) {
			return 0, false
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return sign * f, true
}

// parseIntPrefix mirrors JavaScript's parseInt(s, 10) with hex prefix support.
func parseIntPrefix(s string) float64 {
	s = strings.TrimLeft(s, " \t\n\r\v\f")
	sign := 1.0
	switch {
	case strings.HasPrefix(s, "-"):
		sign, s = -1, s[1:]
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	}

	base, digits := 10, "0123456789"
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		base, digits, s = 16, "0123456789abcdefABCDEF", s[2:]
	}

	end := 0
	for end < len(s) && strings.IndexByte(digits, s[end]) >= 0 {
		end++
	}
	if end == 0 {
		return math.NaN()
	}

	n, err := strconv.ParseInt(s[:end], base, 64)
	if err != nil {
		f, _ := strconv.ParseFloat(s[:end], 64)
		return sign * f
	}
	return sign * float64(n)
}

var floatPrefixPattern = regexp.MustCompile(`^[+-]?(Infinity|(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?)`)

// parseFloatPrefix mirrors JavaScript's parseFloat.
func parseFloatPrefix(s string) float64 {
	s = strings.TrimLeft(s, " \t\n\r\v\f")
	m := floatPrefixPattern.FindString(s)
	if m == "" {
		return math.NaN()
	}
	if f, ok := ParseNumberLiteral(m); ok {
		return f
	}
	return math.NaN()
}

// Inspect renders v like Node's util.inspect.
func Inspect(v Value) string {
	switch v.Kind {
	case KindString:
		return "'" + strings.ReplaceAll(strings.ReplaceAll(v.Text, `\`, `\\`), "'", `\'`) + "'"
	case KindFunction:
		if v.Text == "" {
			return "[Function (anonymous)]"
		}
		return "[Function: " + v.Text + "]"
	case KindArray:
		if len(v.Items) == 0 {
			return "[]"
		}
		parts := make([]string, len(v.Items))
		for i, item := range v.Items {
			parts[i] = Inspect(item)
		}
		return "[ " + strings.Join(parts, ", ") + " ]"
	case KindObject:
		if len(v.Fields) == 0 {
			return "{}"
		}
		parts := make([]string, len(v.Fields))
		for i, f := range v.Fields {
			key := f.Key
			if !identifierPattern.MatchString(key) {
				key = Inspect(String(key))
			}
			parts[i] = key + ": " + Inspect(f.Value)
		}
		return "{ " + strings.Join(parts, ", ") + " }"
	default:
		return ToString(v)
	}
}

// JSON renders v like JSON.stringify; undefined renders as "undefined".
func JSON(v Value) string {
	var sb strings.Builder
	if !writeJSON(&sb, v) {
		return "undefined"
	}
	return sb.String()
}

// writeJSON reports false for values JSON.stringify omits.
func writeJSON(sb *strings.Builder, v Value) bool {
	switch v.Kind {
	case KindUndefined, KindFunction:
		return false
	case KindNull:
		sb.WriteString("null")
	case KindBool:
		sb.WriteString(strconv.FormatBool(v.Bool))
	case KindNumber:
		if math.IsNaN(v.Number) || math.IsInf(v.Number, 0) {
			sb.WriteString("null")
		} else {
			sb.WriteString(FormatNumber(v.Number))
		}
	case KindString:
		sb.WriteString(quoteJSON(v.Text))
	case KindArray:
		sb.WriteByte('[')
		for i, item := range v.Items {
			if i > 0 {
				sb.WriteByte(',')
			}
			if !writeJSON(sb, item) {
				sb.WriteString("null")
			}
		}
		sb.WriteByte(']')
	case KindObject:
		sb.WriteByte('{')
		first := true
		for _, f := range v.Fields {
			var inner strings.Builder
			if !writeJSON(&inner, f.Value) {
				continue
			}
			if !first {
				sb.WriteByte(',')
			}
			first = false
			sb.WriteString(quoteJSON(f.Key))
			sb.WriteByte(':')
			sb.WriteString(inner.String())
		}
		sb.WriteByte('}')
	case KindExpression:
		sb.WriteString(v.Text)
	}
	return true
}

func quoteJSON(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		case '\b':
			sb.WriteString(`\b`)
		case '\f':
			sb.WriteString(`\f`)
		default:
			if r < 0x20 {
				sb.WriteString(`\u00`)
				sb.WriteByte("0123456789abcdef"[r>>4])
				sb.WriteByte("0123456789abcdef"[r&0xf])
				continue
			}
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}

// prettyMaxDepth matches the depth Jest uses when pretty-printing titles.
const prettyMaxDepth = 1

// Pretty renders v in the compact pretty-format style Jest uses for %p.
func Pretty(v Value) string {
	return pretty(v, 0)
}

func pretty(v Value, depth int) string {
	switch v.Kind {
	case KindString:
		return quoteJSON(v.Text)
	case KindFunction:
		if v.Text == "" {
			return "[Function anonymous]"
		}
		return "[Function " + v.Text + "]"
	case KindArray:
		if depth > prettyMaxDepth {
			return "[Array]"
		}
		parts := make([]string, len(v.Items))
		for i, item := range v.Items {
			parts[i] = pretty(item, depth+1)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case KindObject:
		if depth > prettyMaxDepth {
			return "[Object]"
		}
		fields := make([]Field, len(v.Fields))
		copy(fields, v.Fields)
		sort.SliceStable(fields, func(i, j int) bool { return fields[i].Key < fields[j].Key })
		parts := make([]string, len(fields))
		for i, f := range fields {
			parts[i] = quoteJSON(f.Key) + ": " + pretty(f.Value, depth+1)
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return ToString(v)
	}
}
