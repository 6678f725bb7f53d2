package domain

import "strings"

// Modifier is a declared execution qualifier attached to a suite or case.
type Modifier string

const (
	ModifierOnly       Modifier = "only"
	ModifierSkip       Modifier = "skip"
	ModifierFailing    Modifier = "failing"
	ModifierConcurrent Modifier = "concurrent"
	ModifierTodo       Modifier = "todo"
	ModifierEach       Modifier = "each"
)

// ParseModifier maps a chain segment to a Modifier.
func ParseModifier(s string) (Modifier, bool) {
	switch m := Modifier(s); m {
	case ModifierOnly, ModifierSkip, ModifierFailing, ModifierConcurrent, ModifierTodo, ModifierEach:
		return m, true
	default:
		return "", false
	}
}

// Modifiers is an ordered set of modifiers in the order they were declared.
type Modifiers []Modifier

// Has reports whether m is in the set.
func (ms Modifiers) Has(m Modifier) bool {
	for _, x := range ms {
		if x == m {
			return true
		}
	}
	return false
}

// With returns a copy of the set with m appended.
// The second result is false when m is already present.
func (ms Modifiers) With(m Modifier) (Modifiers, bool) {
	if ms.Has(m) {
		return ms, false
	}
	out := make(Modifiers, len(ms), len(ms)+1)
	copy(out, ms)
	return append(out, m), true
}

func (ms Modifiers) String() string {
	parts := make([]string, len(ms))
	for i, m := range ms {
		parts[i] = string(m)
	}
	return strings.Join(parts, ",")
}

// Status derives the execution status implied by the set.
func (ms Modifiers) Status() TestStatus {
	switch {
	case ms.Has(ModifierTodo):
		return TestStatusTodo
	case ms.Has(ModifierSkip):
		return TestStatusSkipped
	case ms.Has(ModifierOnly):
		return TestStatusFocused
	case ms.Has(ModifierFailing):
		return TestStatusXfail
	default:
		return TestStatusActive
	}
}
