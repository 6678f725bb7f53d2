package jstest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specvital/jstree/pkg/domain"
	"github.com/specvital/jstree/pkg/parser/tspool"
)

func scanSource(t *testing.T, source string) ([]CallSite, []byte) {
	t.Helper()

	src := []byte(source)
	tree, err := tspool.Parse(context.Background(), domain.LanguageTypeScript, src)
	require.NoError(t, err)
	t.Cleanup(tree.Close)

	return ScanCallSites(tree.RootNode(), src, "scan.test.ts"), src
}

func chains(sites []CallSite) []string {
	out := make([]string, len(sites))
	for i, s := range sites {
		out[i] = s.String()
	}
	return out
}

func TestScanCallSites(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		source string
		want   []string
	}{
		{
			name:   "should find direct calls",
			source: `describe('a', () => {}); it('b', () => {}); test('c', () => {});`,
			want:   []string{"describe", "it", "test"},
		},
		{
			name:   "should find fused aliases",
			source: `fdescribe('a', () => {}); xdescribe('b'); fit('c'); xit('d'); xtest('e');`,
			want:   []string{"fdescribe", "xdescribe", "fit", "xit", "xtest"},
		},
		{
			name:   "should keep full modifier chains",
			source: `test.concurrent.only.each([1])('a %d', () => {}); it.skip.failing('b', () => {});`,
			want:   []string{"test.concurrent.only.each", "it.skip.failing"},
		},
		{
			name:   "should keep unrecognized segments for the resolver",
			source: `it.foo('a', () => {});`,
			want:   []string{"it.foo"},
		},
		{
			name:   "should ignore unrelated calls",
			source: `foo('a'); expect(1).toBe(1); describer('x'); obj.it('y');`,
			want:   nil,
		},
		{
			name:   "should match lexically regardless of bindings",
			source: `const it = (name: string) => name; it('shadowed');`,
			want:   []string{"it"},
		},
		{
			name:   "should unwrap parenthesized callees",
			source: `(it.only)('a', () => {});`,
			want:   []string{"it.only"},
		},
		{
			name:   "should take the first test branch of a conditional callee",
			source: `(cond ? it : it.skip)('a', () => {}); (cond ? helper : test.only)('b', () => {});`,
			want:   []string{"it", "test.only"},
		},
		{
			name:   "should find calls nested in unrelated calls",
			source: `wrap(() => { it('inner', () => {}) });`,
			want:   []string{"it"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			sites, _ := scanSource(t, tt.source)

			if tt.want == nil {
				assert.Empty(t, sites)
				return
			}
			assert.Equal(t, tt.want, chains(sites))
		})
	}
}

func TestScanCallSites_Curried(t *testing.T) {
	t.Parallel()

	t.Run("should produce one site for the curried each form", func(t *testing.T) {
		t.Parallel()

		sites, _ := scanSource(t, `it.each([[1], [2]])('case %d', (n) => {});`)

		require.Len(t, sites, 1)
		assert.Equal(t, []string{"it", "each"}, sites[0].Chain)
		require.NotNil(t, sites[0].TableArgs)
		assert.Equal(t, "arguments", sites[0].TableArgs.Type())
		assert.Equal(t, "call_expression", sites[0].Node.Type())
	})

	t.Run("should take the template literal of a tagged table", func(t *testing.T) {
		t.Parallel()

		sites, _ := scanSource(t, "it.each`\n  a\n  ${1}\n`('case $a', () => {});")

		require.Len(t, sites, 1)
		require.NotNil(t, sites[0].TableArgs)
		assert.Equal(t, "template_string", sites[0].TableArgs.Type())
	})

	t.Run("should leave direct calls without a table", func(t *testing.T) {
		t.Parallel()

		sites, _ := scanSource(t, `it('plain', () => {});`)

		require.Len(t, sites, 1)
		assert.Nil(t, sites[0].TableArgs)
	})
}

func TestScanCallSites_Parent(t *testing.T) {
	t.Parallel()

	source := `
describe('outer', () => {
  it('first', () => {});
  describe.each([1, 2])('inner %d', () => {
    test('second', () => {});
  });
});
it('top', () => {});
`
	sites, _ := scanSource(t, source)

	require.Equal(t, []string{"describe", "it", "describe.each", "test", "it"}, chains(sites))

	parents := make([]int, len(sites))
	for i, s := range sites {
		parents[i] = s.Parent
	}
	assert.Equal(t, []int{-1, 0, 0, 2, -1}, parents)

	assert.Equal(t, 2, sites[0].Location.StartLine)
	assert.Equal(t, 7, sites[0].Location.EndLine)
	assert.Equal(t, 8, sites[4].Location.StartLine)
}
