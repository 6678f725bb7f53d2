// Package domain defines the core types for test tree representation.
package domain

// Language represents a source dialect understood by the extractor.
type Language string

// Supported dialects. JSX is parsed with the JavaScript grammar.
const (
	LanguageJavaScript Language = "javascript"
	LanguageTypeScript Language = "typescript"
	LanguageTSX        Language = "tsx"
)
