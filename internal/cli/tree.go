package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/specvital/jstree/pkg/domain"
)

var (
	pathColor  = color.New(color.Bold)
	suiteColor = color.New(color.FgCyan, color.Bold)
	lineColor  = color.New(color.Faint)
)

func statusColor(status domain.TestStatus) *color.Color {
	switch status {
	case domain.TestStatusSkipped:
		return color.New(color.FgYellow)
	case domain.TestStatusTodo:
		return color.New(color.FgMagenta)
	case domain.TestStatusFocused:
		return color.New(color.FgBlue)
	case domain.TestStatusXfail:
		return color.New(color.FgRed)
	default:
		return color.New(color.FgGreen)
	}
}

func newTreeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tree <file>...",
		Short: "Print the suites and cases declared in test files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := a.openSource()
			if err != nil {
				return err
			}
			defer src.Close()

			files, err := relativePaths(src.Root(), args)
			if err != nil {
				return err
			}

			result, err := a.newScanner().ScanFiles(cmd.Context(), src, files)
			if err != nil {
				return err
			}

			err = render(cmd.OutOrStdout(), a.format(), result.Inventory, func(w io.Writer) error {
				for _, tree := range result.Inventory.Trees {
					writeTree(w, tree)
				}
				return nil
			})
			if err != nil {
				return err
			}

			return checkFailed(result.Errors)
		},
	}
}

func writeTree(w io.Writer, tree *domain.TestTree) {
	fmt.Fprintln(w, pathColor.Sprint(tree.Path))
	for _, child := range tree.Root.Children {
		writeNode(w, child, 1)
	}
}

func writeNode(w io.Writer, n *domain.TestNode, depth int) {
	indent := strings.Repeat("  ", depth)

	var label string
	if n.IsSuite() {
		label = suiteColor.Sprint(n.Name)
	} else {
		label = statusColor(n.Status()).Sprint(n.Name)
	}

	var b strings.Builder
	b.WriteString(indent)
	b.WriteString(label)
	if len(n.Modifiers) > 0 {
		fmt.Fprintf(&b, " [%s]", n.Modifiers)
	}
	b.WriteString(lineColor.Sprintf(" :%d", n.Location.StartLine))
	fmt.Fprintln(w, b.String())

	for _, child := range n.Children {
		writeNode(w, child, depth+1)
	}
}
