// Package eachtitle expands the title templates of data-driven
// (`.each`) suites and cases against statically known table rows.
package eachtitle

import (
	"strconv"
)

// ValueKind classifies a statically known JavaScript value.
type ValueKind uint8

const (
	KindUndefined ValueKind = iota
	KindNull
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
	KindFunction
	// KindExpression marks an expression that was not evaluated.
	// Its source text is kept in Value.Text.
	KindExpression
)

// Value is a best-effort static model of a JavaScript value.
type Value struct {
	Kind   ValueKind
	Bool   bool
	Number float64
	// Text holds the string value, the function name, or the source text
	// of an unevaluated expression depending on Kind.
	Text   string
	Items  []Value
	Fields []Field
}

// Field is a named object property. Fields keep their declaration order.
type Field struct {
	Key   string
	Value Value
}

// Row supplies the values for one generated test.
type Row []Value

func Undefined() Value { return Value{Kind: KindUndefined} }
func Null() Value { return Value{Kind: KindNull} }
func Bool(b bool) Value { return Value{Kind: KindBool, Bool: b} }
func Number(f float64) Value { return Value{Kind: KindNumber, Number: f} }
func String(s string) Value { return Value{Kind: KindString, Text: s} }
func Array(items ...Value) Value { return Value{Kind: KindArray, Items: items} }
func Object(fields ...Field) Value { return Value{Kind: KindObject, Fields: fields} }
func Function(name string) Value { return Value{Kind: KindFunction, Text: name} }
func Expression(src string) Value { return Value{Kind: KindExpression, Text: src} }

// IsPrimitive reports whether v is undefined, null, a boolean, a number or a string.
func (v Value) IsPrimitive() bool {
	return v.Kind <= KindString
}

// Field returns the property named key of an object value.
func (v Value) Field(key string) (Value, bool) {
	if v.Kind != KindObject {
		return Value{}, false
	}
	// Later duplicates win, as in an object literal.
	for i := len(v.Fields) - 1; i >= 0; i-- {
		if v.Fields[i].Key == key {
			return v.Fields[i].Value, true
		}
	}
	return Value{}, false
}

// Lookup performs one property access. Objects resolve fields, arrays and
// strings resolve numeric indexes and `length`.
func (v Value) Lookup(key string) (Value, bool) {
	switch v.Kind {
	case KindObject:
		return v.Field(key)
	case KindArray:
		if key == "length" {
			return Number(float64(len(v.Items))), true
		}
		if i, err := strconv.Atoi(key); err == nil && i >= 0 && i < len(v.Items) {
			return v.Items[i], true
		}
	case KindString:
		if key == "length" {
			return Number(float64(len([]rune(v.Text)))), true
		}
		runes := []rune(v.Text)
		if i, err := strconv.Atoi(key); err == nil && i >= 0 && i < len(runes) {
			return String(string(runes[i])), true
		}
	}
	return Value{}, false
}

// LookupPath performs successive property accesses.
func (v Value) LookupPath(path []string) (Value, bool) {
	cur := v
	for _, key := range path {
		next, ok := cur.Lookup(key)
		if !ok {
			return Value{}, false
		}
		cur = next
	}
	return cur, true
}

// RowFrom converts one table element into a row: an array literal supplies
// its items, any other value is a single-value row.
func RowFrom(element Value) Row {
	if element.Kind == KindArray {
		return Row(element.Items)
	}
	return Row{element}
}
