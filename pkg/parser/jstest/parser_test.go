package jstest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specvital/jstree/pkg/domain"
	"github.com/specvital/jstree/pkg/parser/eachtitle"
	"github.com/specvital/jstree/pkg/parser/tspool"
)

func parseSource(t *testing.T, source, filename string) *domain.TestTree {
	t.Helper()

	tree, err := Parse(context.Background(), []byte(source), filename)
	require.NoError(t, err)
	require.NotNil(t, tree)
	return tree
}

func parseFixture(t *testing.T, name string) *domain.TestTree {
	t.Helper()

	path := filepath.Join("testdata", name)
	source, err := os.ReadFile(path)
	require.NoError(t, err)

	tree, err := Parse(context.Background(), source, path)
	require.NoError(t, err)
	return tree
}

func nodeNames(nodes []*domain.TestNode) []string {
	names := make([]string, len(nodes))
	for i, n := range nodes {
		names[i] = n.Name
	}
	return names
}

func TestDetectLanguage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		filename string
		want     domain.Language
	}{
		{name: "should detect JavaScript for .js", filename: "test.js", want: domain.LanguageJavaScript},
		{name: "should detect JavaScript for .jsx", filename: "test.jsx", want: domain.LanguageJavaScript},
		{name: "should detect JavaScript for .mjs", filename: "test.mjs", want: domain.LanguageJavaScript},
		{name: "should detect TypeScript for .ts", filename: "test.ts", want: domain.LanguageTypeScript},
		{name: "should detect TypeScript for .mts", filename: "test.mts", want: domain.LanguageTypeScript},
		{name: "should detect TSX for .tsx", filename: "test.tsx", want: domain.LanguageTSX},
		{name: "should default to TypeScript for unknown extension", filename: "test", want: domain.LanguageTypeScript},
		{name: "should handle path with directory", filename: "src/components/Button.test.tsx", want: domain.LanguageTSX},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := DetectLanguage(tt.filename)

			if got != tt.want {
				t.Errorf("DetectLanguage(%q) = %q, want %q", tt.filename, got, tt.want)
			}
		})
	}
}

func TestParse_Aliases(t *testing.T) {
	t.Parallel()

	tree := parseFixture(t, "aliases.test.ts")

	require.Equal(t,
		[]string{"describe", "fdescribe", "xdescribe", "describe.only", "describe.skip"},
		nodeNames(tree.Root.Children),
	)
	assert.Equal(t, 49, tree.CountCases())

	byName := make(map[string]*domain.TestNode)
	tree.Root.Walk(func(n *domain.TestNode) bool {
		if _, seen := byName[n.Name]; !seen {
			byName[n.Name] = n
		}
		return true
	})

	only, skip, failing := domain.ModifierOnly, domain.ModifierSkip, domain.ModifierFailing
	concurrent, todo, each := domain.ModifierConcurrent, domain.ModifierTodo, domain.ModifierEach

	tests := []struct {
		name string
		want domain.Modifiers
	}{
		{name: "fdescribe", want: domain.Modifiers{only}},
		{name: "xdescribe", want: domain.Modifiers{skip}},
		{name: "describe.only", want: domain.Modifiers{only}},
		{name: "describe.skip", want: domain.Modifiers{skip}},
		{name: "it.only", want: domain.Modifiers{only}},
		{name: "it.failing", want: domain.Modifiers{failing}},
		{name: "it.concurrent", want: domain.Modifiers{concurrent}},
		{name: "it.only.failing", want: domain.Modifiers{only, failing}},
		{name: "it.skip.failing", want: domain.Modifiers{skip, failing}},
		{name: "fit.failing", want: domain.Modifiers{only, failing}},
		{name: "xit.failing", want: domain.Modifiers{skip, failing}},
		{name: "it.todo", want: domain.Modifiers{todo}},
		{name: "xtest.failing", want: domain.Modifiers{skip, failing}},
		{name: "test.todo", want: domain.Modifiers{todo}},
		{name: "it.each 1", want: domain.Modifiers{each}},
		{name: "it.failing.each 2", want: domain.Modifiers{failing, each}},
		{name: "it.concurrent.only.each 1", want: domain.Modifiers{concurrent, only, each}},
		{name: "fit.each 2", want: domain.Modifiers{only, each}},
		{name: "xit.each 1", want: domain.Modifiers{skip, each}},
		{name: "xtest.each 2", want: domain.Modifiers{skip, each}},
		{name: "test.concurrent.skip.each 2", want: domain.Modifiers{concurrent, skip, each}},
	}

	for _, tt := range tests {
		node, ok := byName[tt.name]
		if !assert.True(t, ok, "missing node %q", tt.name) {
			continue
		}
		assert.Equal(t, tt.want, node.Modifiers, "modifiers of %q", tt.name)
	}

	assert.Equal(t, domain.TestStatusTodo, byName["it.todo"].Status())
	assert.Equal(t, domain.TestStatusSkipped, byName["xit.failing"].Status())
	assert.Empty(t, byName["describe.only"].Children)
}

func TestParse_NonStringNames(t *testing.T) {
	t.Parallel()

	tree := parseFixture(t, "nonStringTestNames.test.ts")

	cases := tree.Cases()
	assert.Equal(t, []string{"Test", "test.name", "arrow", "func", "123"}, nodeNames(cases))
	for _, c := range cases {
		assert.Equal(t, "non-string test names", c.Parent.Name)
	}
}

func TestParse_ClassNamedSuite(t *testing.T) {
	t.Parallel()

	tree := parseFixture(t, "calc.test.ts")

	require.Len(t, tree.Root.Children, 1)
	suite := tree.Root.Children[0]
	assert.Equal(t, "Calculator", suite.Name)
	assert.Equal(t, 11, suite.Location.StartLine)

	cases := tree.Cases()
	require.Len(t, cases, 1)
	assert.Equal(t, "Calculator/sum a and b", cases[0].FullyQualifiedName())

	for _, line := range []int{11, 12, 13, 15} {
		nearest := tree.FindNearest(line)
		require.NotNil(t, nearest, "line %d", line)
		assert.Equal(t, "sum a and b", nearest.Name, "line %d", line)
	}
}

func TestParse_Parameterized(t *testing.T) {
	t.Parallel()

	tree := parseFixture(t, "parameterized.test.ts")

	want := []string{
		"test with percent %%",
		`test with all of the parameters "string" <missing> <missing> <missing> <missing> <missing> <missing> 1 % ` +
			`<missing> <missing> <missing> <missing> <missing> <missing> <missing> 1 %`,
		"test with string",
		"test with string and string",
		"test with undefined",
		"test with undefined and (parenthesis)",
	}

	cases := tree.Cases()
	assert.Equal(t, want, nodeNames(cases))

	require.NotEmpty(t, cases)
	assert.Equal(t, "test with percent %%", cases[0].Title)
	for _, c := range cases {
		assert.Equal(t, 1, c.Index)
	}
}

func TestParse_ParametricDescribeAndTest(t *testing.T) {
	t.Parallel()

	tree := parseFixture(t, "parametricDescribeAndTest.test.ts")

	suites := tree.Root.Children
	require.Equal(t, []string{"greeting Alice", "greeting Bob"}, nodeNames(suites))
	for _, s := range suites {
		assert.Equal(t, []string{"should greet using Hello!", "should greet using Hi!"}, nodeNames(s.Children))
	}

	cases := tree.Cases()
	require.Len(t, cases, 4)
	assert.Equal(t, "greeting Bob/should greet using Hi!", cases[3].FullyQualifiedName())
	assert.Equal(t, 2, cases[3].Index)
	assert.Equal(t, 2, cases[3].Parent.Index)
}

func TestParse_DataTables(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		source    string
		want      []string
		wantIndex []int
	}{
		{
			name: "should read tables bound to variables",
			source: `const cases = [[1, 2], [3, 4]];
it.each(cases)('%i + %i', (a, b) => {});`,
			want:      []string{"1 + 2", "3 + 4"},
			wantIndex: []int{1, 2},
		},
		{
			name:      "should resolve named fields of object rows",
			source:    `it.each([{ name: 'a', age: 1 }, { name: 'b', age: 2 }])('user $name is $age', (u) => {});`,
			want:      []string{"user a is 1", "user b is 2"},
			wantIndex: []int{1, 2},
		},
		{
			name:      "should resolve parameter names of array rows",
			source:    `test.each([['x', 1]])('$label has $count', (label, count) => {});`,
			want:      []string{"x has 1"},
			wantIndex: []int{1},
		},
		{
			name: "should read tagged template tables",
			source: "it.each`\n" +
				"  a    | b    | expected\n" +
				"  ${1} | ${1} | ${2}\n" +
				"  ${2} | ${3} | ${5}\n" +
				"`('returns $expected when $a is added to $b', ({ a, b, expected }) => {});",
			want:      []string{"returns 2 when 1 is added to 1", "returns 5 when 2 is added to 3"},
			wantIndex: []int{1, 2},
		},
		{
			name:      "should keep duplicate names",
			source:    `it.each([1, 1, 1])('same', () => {});`,
			want:      []string{"same", "same", "same"},
			wantIndex: []int{1, 2, 3},
		},
		{
			name:      "should collapse dynamic tables into one node",
			source:    `it.each(loadCases())('case %s', (c) => {});`,
			want:      []string{"case %s" + DynamicCasesSuffix},
			wantIndex: []int{0},
		},
		{
			name:      "should treat mismatched tagged tables as dynamic",
			source:    "it.each`\n  a | b\n  ${1}\n`('case $a', () => {});",
			want:      []string{"case $a" + DynamicCasesSuffix},
			wantIndex: []int{0},
		},
		{
			name:      "should render index tokens",
			source:    `it.each([['a'], ['b']])('%# is %s', (s) => {});`,
			want:      []string{"1 is a", "2 is b"},
			wantIndex: []int{1, 2},
		},
		{
			name:      "should spread constant arrays",
			source:    `const base = [1]; it.each([...base, 2])('n=%d', (n) => {});`,
			want:      []string{"n=1", "n=2"},
			wantIndex: []int{1, 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tree := parseSource(t, tt.source, "table.test.ts")

			cases := tree.Cases()
			assert.Equal(t, tt.want, nodeNames(cases))

			indexes := make([]int, len(cases))
			for i, c := range cases {
				indexes[i] = c.Index
				assert.True(t, c.Modifiers.Has(domain.ModifierEach))
			}
			assert.Equal(t, tt.wantIndex, indexes)
		})
	}
}

func TestParse_TableSizeProperty(t *testing.T) {
	t.Parallel()

	for rows := 1; rows <= 12; rows++ {
		source := "it.each(["
		for i := 0; i < rows; i++ {
			source += fmt.Sprintf("[%d, 'v%d'],", i, i)
		}
		source += "])('%s %s %s %% $missing.path', () => {});"

		tree := parseSource(t, source, "property.test.ts")

		cases := tree.Cases()
		require.Len(t, cases, rows)
		for _, c := range cases {
			assert.NotEmpty(t, c.Name)
			assert.Contains(t, c.Name, eachtitle.MissingValuePlaceholder)
		}
	}
}

func TestParse_Names(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		source string
		want   string
	}{
		{name: "should use string literals", source: `it("double", () => {})`, want: "double"},
		{name: "should unescape string literals", source: `it('it\'s "quoted"', () => {})`, want: `it's "quoted"`},
		{name: "should use plain template literals", source: "it(`plain`, () => {})", want: "plain"},
		{name: "should decode braced code points", source: `it('it\u{1F600}', () => {})`, want: "it\U0001F600"},
		{name: "should decode surrogate pairs", source: `it('\uD83D\uDE00 smile', () => {})`, want: "\U0001F600 smile"},
		{name: "should decode null escapes", source: `it('nul\0end', () => {})`, want: "nul\x00end"},
		{name: "should decode legacy octal escapes", source: `it('\101BC', () => {})`, want: "ABC"},
		{name: "should decode hex escapes", source: `it("\x41bc", () => {})`, want: "Abc"},
		{name: "should drop line continuations", source: "it('one \\\ntwo', () => {})", want: "one two"},
		{name: "should decode template literal escapes", source: "it(`tab\\there`, () => {})", want: "tab\there"},
		{name: "should decode escapes around substitutions", source: "const who = 'w';\nit(`a\\u0041 ${who}\\n`, () => {})", want: "aA w\n"},
		{name: "should use a placeholder for computed substitutions", source: "const who = 'world';\nit(`hello ${who} ${1 + 1}`, () => {})", want: DynamicNamePlaceholder},
		{name: "should substitute constant templates", source: "const who = 'world';\nit(`hello ${who}`, () => {})", want: "hello world"},
		{name: "should convert numbers", source: `it(1.50, () => {})`, want: "1.5"},
		{name: "should convert negative numbers", source: `it(-2, () => {})`, want: "-2"},
		{name: "should convert booleans", source: `it(false, () => {})`, want: "false"},
		{name: "should convert null", source: `it(null, () => {})`, want: "null"},
		{name: "should name function declarations", source: "function subject() {}\nit(subject, () => {})", want: "subject"},
		{name: "should name class instances by class", source: "class Foo {}\nconst foo = new Foo();\nit(foo, () => {})", want: "Foo"},
		{name: "should follow variables holding literals", source: "const title = 'from var';\nit(title, () => {})", want: "from var"},
		{name: "should name function variables", source: "const helper = function () {};\nit(helper, () => {})", want: "helper"},
		{name: "should name imports by local name", source: "import { Widget as W } from './w';\nit(W, () => {})", want: "W"},
		{name: "should read the name property of functions", source: "function subject() {}\nit(subject.name, () => {})", want: "subject"},
		{name: "should read primitive fields of object literals", source: "const cfg = { title: 'cfg title' };\nit(cfg.title, () => {})", want: "cfg title"},
		{name: "should use a placeholder for calls", source: `it(makeName(), () => {})`, want: DynamicNamePlaceholder},
		{name: "should use a placeholder for unknown identifiers", source: `it(unknownName, () => {})`, want: DynamicNamePlaceholder},
		{name: "should not follow two levels of variables", source: "const a = 'x';\nconst b = a;\nit(b, () => {})", want: DynamicNamePlaceholder},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tree := parseSource(t, tt.source, "names.test.ts")

			cases := tree.Cases()
			require.Len(t, cases, 1)
			assert.Equal(t, tt.want, cases[0].Name)
		})
	}
}

func TestParse_Nesting(t *testing.T) {
	t.Parallel()

	t.Run("should attach children of rejected suites to the enclosing suite", func(t *testing.T) {
		t.Parallel()

		tree := parseSource(t, `
describe('outer', () => {
  describe.foo('rejected', () => {
    it('kept', () => {});
  });
});`, "nesting.test.ts")

		require.Len(t, tree.Root.Children, 1)
		assert.Equal(t, []string{"kept"}, nodeNames(tree.Root.Children[0].Children))
	})

	t.Run("should never nest under cases", func(t *testing.T) {
		t.Parallel()

		tree := parseSource(t, `
describe('outer', () => {
  it('a', () => {
    it('b', () => {});
  });
});`, "nesting.test.ts")

		outer := tree.Root.Children[0]
		assert.Equal(t, []string{"a", "b"}, nodeNames(outer.Children))
		assert.Empty(t, outer.Children[0].Children)
	})

	t.Run("should keep empty suites", func(t *testing.T) {
		t.Parallel()

		tree := parseSource(t, `describe('empty', () => {}); describe('pending');`, "nesting.test.ts")

		assert.Equal(t, []string{"empty", "pending"}, nodeNames(tree.Root.Children))
		assert.Zero(t, tree.CountCases())
	})

	t.Run("should exclude invalid chains without hiding the rest", func(t *testing.T) {
		t.Parallel()

		tree := parseSource(t, `
it.only.skip('conflict', () => {});
it.unknown('unknown', () => {});
it('valid', () => {});`, "nesting.test.ts")

		assert.Equal(t, []string{"valid"}, nodeNames(tree.Cases()))
	})

	t.Run("should parse JavaScript with JSX", func(t *testing.T) {
		t.Parallel()

		tree := parseSource(t, `
describe('Button', () => {
  it('renders', () => {
    render(<Button label="ok" />);
  });
});`, "button.test.jsx")

		assert.Equal(t, domain.LanguageJavaScript, tree.Language)
		assert.Equal(t, []string{"renders"}, nodeNames(tree.Cases()))
	})
}

func TestParse_SyntaxError(t *testing.T) {
	t.Parallel()

	source := "describe('broken', () => {\n  it('a', () => {\n});\n"

	tree, err := Parse(context.Background(), []byte(source), "broken.test.ts")

	require.Error(t, err)
	assert.Nil(t, tree)
	assert.True(t, errors.Is(err, ErrSyntax))

	var syntaxErr *SyntaxError
	require.True(t, errors.As(err, &syntaxErr))
	assert.Equal(t, "broken.test.ts", syntaxErr.Path)
	assert.Positive(t, syntaxErr.Line)
}

func TestParse_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tree, err := Parse(ctx, []byte(`it('a', () => {})`), "a.test.ts")

	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, tree)
}

func TestParseTree(t *testing.T) {
	t.Parallel()

	source := []byte(`describe('s', () => { it('c', () => {}) })`)
	sitterTree, err := tspool.Parse(context.Background(), domain.LanguageTypeScript, source)
	require.NoError(t, err)
	defer sitterTree.Close()

	tree, err := ParseTree(sitterTree, source, "prebuilt.test.ts", WithLanguage(domain.LanguageTypeScript))

	require.NoError(t, err)
	assert.Equal(t, "s/c", tree.Cases()[0].FullyQualifiedName())

	_, err = ParseTree(nil, source, "prebuilt.test.ts")
	assert.ErrorIs(t, err, ErrNilTree)
}

func TestParse_WithLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	_, err := Parse(context.Background(), []byte(`it.only.skip('x', () => {})`), "log.test.ts", WithLogger(logger))

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "call site rejected")
	assert.Contains(t, buf.String(), "chain=it.only.skip")
}

func TestParse_Concurrent(t *testing.T) {
	t.Parallel()

	source, err := os.ReadFile(filepath.Join("testdata", "aliases.test.ts"))
	require.NoError(t, err)

	const workers = 8
	counts := make([]int, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tree, err := Parse(context.Background(), source, "aliases.test.ts")
			if err == nil {
				counts[i] = tree.CountCases()
			}
		}(i)
	}
	wg.Wait()

	for _, c := range counts {
		assert.Equal(t, 49, c)
	}
}
