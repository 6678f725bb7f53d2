package jstest

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/specvital/jstree/pkg/parser"
	"github.com/specvital/jstree/pkg/parser/eachtitle"
)

// readTable reads the data table of an each declaration. The second result
// is false when the table is not statically known.
func (e *evaluator) readTable(tableArgs *sitter.Node) ([]eachtitle.Row, bool) {
	if tableArgs == nil {
		return nil, false
	}
	if tableArgs.Type() == "template_string" {
		return e.readTaggedTable(tableArgs)
	}

	args := parser.NamedChildren(tableArgs)
	if len(args) == 0 {
		return nil, false
	}

	table := e.eval(args[0])
	if table.Kind != eachtitle.KindArray {
		return nil, false
	}

	rows := make([]eachtitle.Row, len(table.Items))
	for i, item := range table.Items {
		rows[i] = eachtitle.RowFrom(item)
	}
	return rows, true
}

// readTaggedTable reads a tagged template table:
//
//	a    | b    | expected
//	${1} | ${1} | ${2}
//
// The heading line names the columns; substitutions fill the rows in order.
// Each row becomes an object keyed by the column names.
func (e *evaluator) readTaggedTable(tpl *sitter.Node) ([]eachtitle.Row, bool) {
	var (
		values []eachtitle.Value
		header string
	)

	headerEnd := int(tpl.EndByte()) - 1
	for i := 0; i < int(tpl.NamedChildCount()); i++ {
		sub := tpl.NamedChild(i)
		if sub.Type() != "template_substitution" {
			continue
		}
		if values == nil {
			headerEnd = int(sub.StartByte())
		}

		inner := parser.NamedChildren(sub)
		if len(inner) == 0 {
			return nil, false
		}
		values = append(values, e.eval(inner[0]))
	}

	headerStart := int(tpl.StartByte()) + 1
	if headerStart > headerEnd || headerEnd > len(e.source) {
		return nil, false
	}
	header = string(e.source[headerStart:headerEnd])

	var columns []string
	for _, col := range strings.Split(header, "|") {
		if col = strings.TrimSpace(col); col != "" {
			columns = append(columns, col)
		}
	}
	if len(columns) == 0 || len(values)%len(columns) != 0 {
		return nil, false
	}

	rows := make([]eachtitle.Row, 0, len(values)/len(columns))
	for start := 0; start < len(values); start += len(columns) {
		fields := make([]eachtitle.Field, len(columns))
		for i, col := range columns {
			fields[i] = eachtitle.Field{Key: col, Value: values[start+i]}
		}
		rows = append(rows, eachtitle.Row{eachtitle.Object(fields...)})
	}
	return rows, true
}
