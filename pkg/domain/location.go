package domain

// Location represents a span in source code.
// Lines are 1-based, columns are 0-based byte offsets within the line.
type Location struct {
	File      string `json:"file" yaml:"file"`
	StartLine int    `json:"startLine" yaml:"startLine"`
	EndLine   int    `json:"endLine" yaml:"endLine"`
	StartCol  int    `json:"startCol" yaml:"startCol"`
	EndCol    int    `json:"endCol" yaml:"endCol"`
}

// ContainsLine reports whether line falls within the span.
func (l Location) ContainsLine(line int) bool {
	return line >= l.StartLine && line <= l.EndLine
}
