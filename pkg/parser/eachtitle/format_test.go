package eachtitle

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormat_Printf(t *testing.T) {
	t.Parallel()

	obj := Object(Field{Key: "b", Value: Number(1)}, Field{Key: "a", Value: String("x")})

	tests := []struct {
		name     string
		template string
		row      Row
		index    int
		want     string
	}{
		{name: "should substitute %s", template: "greeting %s", row: Row{String("Alice")}, want: "greeting Alice"},
		{name: "should substitute values left to right", template: "%s + %s", row: Row{Number(1), Number(2)}, want: "1 + 2"},
		{name: "should truncate %d toward zero", template: "%d|%d", row: Row{Number(1.9), Number(-1.9)}, want: "1|-1"},
		{name: "should render NaN for non-numeric %d", template: "%d", row: Row{String("abc")}, want: "NaN"},
		{name: "should parse integer prefix for %i", template: "%i", row: Row{String("42px")}, want: "42"},
		{name: "should parse float prefix for %f", template: "%f", row: Row{String("3.14abc")}, want: "3.14"},
		{name: "should serialize %j", template: "%j", row: Row{obj}, want: `{"b":1,"a":"x"}`},
		{name: "should quote strings for %j", template: "%j", row: Row{String("s")}, want: `"s"`},
		{name: "should inspect %o", template: "%o", row: Row{Array(Number(1), String("a"))}, want: "[ 1, 'a' ]"},
		{name: "should pretty print %p with sorted keys", template: "%p", row: Row{obj}, want: `{"a": "x", "b": 1}`},
		{name: "should pretty print strings quoted", template: "%p", row: Row{String("string")}, want: `"string"`},
		{name: "should inspect objects for %s", template: "%s", row: Row{obj}, want: "{ b: 1, a: 'x' }"},
		{name: "should render 1-based index for %#", template: "case %#", row: Row{String("x")}, index: 3, want: "case 3"},
		{name: "should render %% without consuming", template: "%% %s %%", row: Row{String("x")}, want: "% x %"},
		{name: "should keep %% when no token consumes a value", template: "test with percent %%", row: Row{String("string")}, want: "test with percent %%"},
		{name: "should keep %% next to index tokens only", template: "%# at 100%%", row: Row{String("x")}, index: 2, want: "2 at 100%%"},
		{name: "should not treat %%s as a value token", template: "100%%s", row: Row{String("x")}, want: "100%%s"},
		{name: "should inspect %O", template: "%O", row: Row{Array(Number(1), String("a"))}, want: "[ 1, 'a' ]"},
		{name: "should render missing values as placeholder", template: "%s and %s", row: Row{String("one")}, want: "one and " + MissingValuePlaceholder},
		{name: "should keep unknown percent sequences", template: "100% sure %x", row: Row{String("x")}, want: "100% sure %x"},
		{name: "should keep template without tokens", template: "plain title", row: Row{Number(1)}, want: "plain title"},
		{name: "should render null and undefined", template: "%s %s", row: Row{Null(), Undefined()}, want: "null undefined"},
		{name: "should render unevaluated expressions as source", template: "%s", row: Row{Expression("makeUser()")}, want: "makeUser()"},
		{
			name:     "should fill every token of a long template",
			template: "all %p %s %d %i %f %j %o %# %%",
			row:      Row{String("string")},
			index:    1,
			want:     `all "string" <missing> <missing> <missing> <missing> <missing> <missing> 1 %`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := Format(tt.template, tt.row, tt.index, nil)

			if got != tt.want {
				t.Errorf("Format(%q) = %q, want %q", tt.template, got, tt.want)
			}
		})
	}
}

func TestFormat_Named(t *testing.T) {
	t.Parallel()

	user := Object(
		Field{Key: "name", Value: String("Ann")},
		Field{Key: "age", Value: Number(30)},
		Field{Key: "address", Value: Object(Field{Key: "city", Value: String("Oslo")})},
		Field{Key: "tags", Value: Array(String("a"), String("b"))},
	)

	tests := []struct {
		name     string
		template string
		row      Row
		params   []string
		want     string
	}{
		{name: "should resolve object row fields", template: "$name is $age", row: Row{user}, want: "Ann is 30"},
		{name: "should follow dotted paths", template: "lives in $address.city", row: Row{user}, want: "lives in Oslo"},
		{name: "should resolve array length", template: "$tags.length tags", row: Row{user}, want: "2 tags"},
		{name: "should render undefined for missing path", template: "$address.zip.code", row: Row{user}, want: UndefinedPlaceholder},
		{name: "should render undefined for unknown field", template: "$unknown", row: Row{user}, want: UndefinedPlaceholder},
		{name: "should resolve parameter positions", template: "hello $who", row: Row{String("Bob"), String("x")}, params: []string{"who", "other"}, want: "hello Bob"},
		{name: "should resolve second parameter", template: "with $other", row: Row{String("Bob"), String("x")}, params: []string{"who", "other"}, want: "with x"},
		{name: "should use single value rows directly", template: "test with $namedParameter", row: Row{String("string")}, want: "test with string"},
		{name: "should render undefined for path into string", template: "test with $variable.field.otherField", row: Row{String("string")}, want: "test with undefined"},
		{name: "should render undefined for multi-value rows without params", template: "$a", row: Row{Number(1), Number(2)}, want: UndefinedPlaceholder},
		{name: "should keep dollar not starting an identifier", template: "costs $5 and $", row: Row{String("x")}, want: "costs $5 and $"},
		{name: "should render $# as index", template: "row $#", row: Row{user}, want: "row 2"},
		{name: "should keep trailing punctuation", template: "$name.", row: Row{user}, want: "Ann."},
		{name: "should pretty print object values", template: "$address", row: Row{user}, want: `{"city": "Oslo"}`},
		{name: "should resolve object parameter through path", template: "$u.name", row: Row{user}, params: []string{"u"}, want: "Ann"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := Format(tt.template, tt.row, 2, tt.params)

			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormat_MixedStyles(t *testing.T) {
	t.Parallel()

	row := Row{Object(Field{Key: "price", Value: Number(3)})}

	got := Format("%s costs $price", row, 1, nil)

	assert.Equal(t, "{ price: 3 } costs 3", got)
}

func TestExpand(t *testing.T) {
	t.Parallel()

	t.Run("should produce one name per row", func(t *testing.T) {
		t.Parallel()

		rows := []Row{{String("Hello")}, {String("Hi")}}

		got := Expand("should greet using %s!", rows, nil, "(dynamic)")

		assert.Equal(t, []string{"should greet using Hello!", "should greet using Hi!"}, got)
	})

	t.Run("should keep duplicate names", func(t *testing.T) {
		t.Parallel()

		rows := []Row{{Number(1)}, {Number(2)}, {Number(3)}}

		got := Expand("no tokens", rows, nil, "(dynamic)")

		assert.Equal(t, []string{"no tokens", "no tokens", "no tokens"}, got)
	})

	t.Run("should fall back for empty names", func(t *testing.T) {
		t.Parallel()

		got := Expand("", []Row{{Number(1)}}, nil, "(dynamic)")

		assert.Equal(t, []string{"(dynamic)"}, got)
	})

	t.Run("should return empty slice for empty table", func(t *testing.T) {
		t.Parallel()

		assert.Empty(t, Expand("%s", nil, nil, "(dynamic)"))
	})
}

func TestHasTokens(t *testing.T) {
	t.Parallel()

	assert.True(t, HasTokens("a %s"))
	assert.True(t, HasTokens("a $b"))
	assert.True(t, HasTokens("100%%"))
	assert.False(t, HasTokens("plain 100% $5"))
}
