package jstest

import "github.com/specvital/jstree/pkg/domain"

const (
	FuncDescribe = "describe"
	FuncIt       = "it"
	FuncTest     = "test"

	DynamicCasesSuffix     = " (dynamic cases)"
	DynamicNamePlaceholder = "(dynamic)"
)

// SkippedFunctionAliases maps fused skip aliases to their base function.
var SkippedFunctionAliases = map[string]string{
	"xdescribe": FuncDescribe,
	"xit":       FuncIt,
	"xtest":     FuncTest,
}

// FocusedFunctionAliases maps fused only aliases to their base function.
var FocusedFunctionAliases = map[string]string{
	"fdescribe": FuncDescribe,
	"fit":       FuncIt,
}

// SupportedExtensions defines valid JavaScript/TypeScript file extensions.
var SupportedExtensions = map[string]bool{
	".ts":  true,
	".tsx": true,
	".mts": true,
	".cts": true,
	".js":  true,
	".jsx": true,
	".mjs": true,
	".cjs": true,
}

// IsRecognizedRoot reports whether name starts a suite or case chain.
func IsRecognizedRoot(name string) bool {
	switch name {
	case FuncDescribe, FuncIt, FuncTest:
		return true
	}
	_, skipped := SkippedFunctionAliases[name]
	_, focused := FocusedFunctionAliases[name]
	return skipped || focused
}

// expandAlias folds a root identifier into its base function and the
// modifier it implies, if any.
func expandAlias(root string) (string, domain.Modifier) {
	if base, ok := SkippedFunctionAliases[root]; ok {
		return base, domain.ModifierSkip
	}
	if base, ok := FocusedFunctionAliases[root]; ok {
		return base, domain.ModifierOnly
	}
	return root, ""
}

func kindOf(base string) domain.Kind {
	if base == FuncDescribe {
		return domain.KindSuite
	}
	return domain.KindCase
}
