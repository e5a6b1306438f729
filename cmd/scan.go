package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"squash/internal/processor"
	"squash/internal/theme"
	"squash/internal/tui"
	"squash/pkg/assetkind"
)

var scanFlags runFlags

var scanCmd = &cobra.Command{
	Use:   "scan [flags] <path>...",
	Short: "List the files optimize would process without modifying them",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := scanFlags.load(cmd)
		if err != nil {
			return err
		}

		plan := processor.Discover(args, cfg.Enabled())
		out := cmd.OutOrStdout()
		if plan.Total() == 0 {
			fmt.Fprintln(out, scanDimStyle.Render("no matching files"))
			return nil
		}

		rendered, mismatched := renderPlan(plan)
		fmt.Fprintln(out, rendered)
		fmt.Fprintf(out, "%s %s\n",
			scanCountStyle.Render(humanize.Comma(int64(plan.Total()))),
			scanDimStyle.Render("files would be optimized"),
		)
		if mismatched > 0 {
			fmt.Fprintf(out, "%s %s\n",
				scanCountStyle.Render(humanize.Comma(int64(mismatched))),
				scanDimStyle.Render("files do not match their extension and will likely fail"),
			)
		}
		return nil
	},
}

// renderPlan lists every planned file with its sniffed container format and
// returns the table plus the number of files whose magic number disagrees
// with their extension.
func renderPlan(plan processor.Plan) (string, int) {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Target", "Path", "Format", "Size"})

	mismatched := 0
	for _, c := range assetkind.All {
		var total int64
		for _, path := range plan[c] {
			size := "?"
			if info, err := os.Stat(path); err == nil {
				size = tui.HumanBytes(info.Size())
				total += info.Size()
			}
			format, _ := assetkind.SniffFile(path)
			label := format.String()
			if format != c.Expected() {
				mismatched++
				label = scanCountStyle.Render(label + " (expected " + c.Expected().String() + ")")
			}
			tw.AppendRow(table.Row{c.Title(), path, label, size})
		}
		if len(plan[c]) > 0 {
			tw.AppendSeparator()
			tw.AppendRow(table.Row{c.Title(), fmt.Sprintf("%d files", len(plan[c])), "", tui.HumanBytes(total)})
			tw.AppendSeparator()
		}
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft},
		{Number: 2, Align: text.AlignLeft},
		{Number: 3, Align: text.AlignLeft},
		{Number: 4, Align: text.AlignRight},
	})
	return tw.Render(), mismatched
}

var (
	scanCountStyle = lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWarn)
	scanDimStyle   = lipgloss.NewStyle().Foreground(theme.ColorDim)
)

func init() {
	scanFlags.register(scanCmd)
	rootCmd.AddCommand(scanCmd)
}
