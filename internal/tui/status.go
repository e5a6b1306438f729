package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"squash/internal/processor"
	"squash/internal/theme"
)

// HumanBytes formats a signed byte count with binary prefixes.
func HumanBytes(n int64) string {
	if n < 0 {
		if n == -n {
			// math.MinInt64 has no positive counterpart.
			return "-" + humanize.IBytes(uint64(1)<<63)
		}
		return "-" + humanize.IBytes(uint64(-n))
	}
	return humanize.IBytes(uint64(n))
}

// RenderStatus formats one category's counters as a four-line tree. A nil
// snapshot renders as all zeros.
func RenderStatus(snap *processor.Snapshot) string {
	var s processor.Snapshot
	if snap != nil {
		s = *snap
	}

	success := successStyle.Render(fmt.Sprintf("%7s", humanize.Comma(int64(s.Success))))
	failed := failedStyle.Render(fmt.Sprintf("%7s", humanize.Comma(int64(s.Failed))))

	lines := []string{
		"├─ Optimized: " + success,
		"├─ Failed:    " + failed,
		"├─ Saved:     " + goodOrBad(s.Delta),
		"└─ Average:   " + goodOrBad(s.Average()),
	}
	return strings.Join(lines, "\n")
}

// goodOrBad colors a delta: within 1 KiB either way is dim, growth is red
// and savings are green.
func goodOrBad(n int64) string {
	padded := fmt.Sprintf("%10s", HumanBytes(n))
	switch {
	case n < -1024:
		return lossStyle.Render(padded)
	case n > 1024:
		return gainStyle.Render(padded)
	default:
		return dimStyle.Render(padded)
	}
}

var (
	successStyle = lipgloss.NewStyle().Foreground(theme.ColorSuccess).Bold(true)
	failedStyle  = lipgloss.NewStyle().Foreground(theme.ColorDanger).Bold(true)
	gainStyle    = lipgloss.NewStyle().Foreground(theme.ColorSuccess)
	lossStyle    = lipgloss.NewStyle().Foreground(theme.ColorDanger)
)
