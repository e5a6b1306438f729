package tui

import (
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"squash/internal/processor"
)

// RenderSummary formats the final per-category results and the wall time of
// the run.
func RenderSummary(summary processor.Summary) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Target", "Files", "Optimized", "Failed", "Saved", "Average", "Best", "Worst"})

	var total processor.Snapshot
	files := 0
	for _, cs := range summary.Categories {
		best, worst := "-", "-"
		if cs.Success > 0 {
			best, worst = HumanBytes(cs.Max), HumanBytes(cs.Min)
		}
		tw.AppendRow(table.Row{
			cs.Category.Title(),
			humanize.Comma(int64(cs.Discovered)),
			humanize.Comma(int64(cs.Success)),
			humanize.Comma(int64(cs.Failed)),
			HumanBytes(cs.Delta),
			HumanBytes(cs.Average()),
			best,
			worst,
		})
		files += cs.Discovered
		total.Success += cs.Success
		total.Failed += cs.Failed
		total.Delta += cs.Delta
	}

	tw.AppendFooter(table.Row{
		"Total",
		humanize.Comma(int64(files)),
		humanize.Comma(int64(total.Success)),
		humanize.Comma(int64(total.Failed)),
		HumanBytes(total.Delta),
		HumanBytes(total.Average()),
		"",
		summary.Elapsed.Round(time.Millisecond).String(),
	})

	configs := []table.ColumnConfig{{Number: 1, Align: text.AlignLeft}}
	for i := 2; i <= 8; i++ {
		configs = append(configs, table.ColumnConfig{Number: i, Align: text.AlignRight, AlignFooter: text.AlignRight})
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}
