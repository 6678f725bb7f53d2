package cli

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"
)

var errNoCases = errors.New("no cases found")

// nearestResult is a case entry plus the name pattern a runner can filter on.
type nearestResult struct {
	caseEntry `yaml:",inline"`
	Pattern   string `json:"pattern" yaml:"pattern"`
}

func newNearestCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "nearest <file> <line>",
		Short: "Print the case to run for a cursor on line",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			line, err := strconv.Atoi(args[1])
			if err != nil || line < 1 {
				return fmt.Errorf("invalid line %q", args[1])
			}

			src, err := a.openSource()
			if err != nil {
				return err
			}
			defer src.Close()

			files, err := relativePaths(src.Root(), args[:1])
			if err != nil {
				return err
			}

			tree, err := a.newScanner().ScanFile(cmd.Context(), src, files[0])
			if err != nil {
				return err
			}

			n := tree.FindNearest(line)
			if n == nil {
				return fmt.Errorf("%s: %w", tree.Path, errNoCases)
			}

			result := nearestResult{
				caseEntry: newCaseEntry(tree, n),
				Pattern:   namePattern(n),
			}
			return render(cmd.OutOrStdout(), a.format(), result, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "%s\n%s:%d\n%s\n", result.Name, result.Path, result.Line, result.Pattern)
				return err
			})
		},
	}
}
