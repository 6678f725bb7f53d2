package cli

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list <file>...",
		Short: "List every case with its fully qualified name and status",
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

			entries := caseEntries(result.Inventory)
			err = render(cmd.OutOrStdout(), a.format(), entries, func(w io.Writer) error {
				writeCaseTable(w, entries)
				return nil
			})
			if err != nil {
				return err
			}

			return checkFailed(result.Errors)
		},
	}
}

func writeCaseTable(w io.Writer, entries []caseEntry) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Name", "Status", "Location"})
	table.SetAutoWrapText(false)
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_LEFT,
	})

	for _, e := range entries {
		table.Append([]string{
			e.Name,
			string(e.Status),
			fmt.Sprintf("%s:%d", e.Path, e.Line),
		})
	}

	table.SetFooter([]string{"", "", fmt.Sprintf("%d cases", len(entries))})
	table.Render()
}
