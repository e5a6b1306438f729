package tui

import (
	"math"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"squash/internal/processor"
	"squash/pkg/assetkind"
)

func TestHumanBytesIsSigned(t *testing.T) {
	assert.Equal(t, "100 B", HumanBytes(100))
	assert.Equal(t, "2.0 KiB", HumanBytes(2048))
	assert.Equal(t, "-2.0 KiB", HumanBytes(-2048))
	assert.Equal(t, "0 B", HumanBytes(0))
	assert.True(t, strings.HasPrefix(HumanBytes(math.MinInt64), "-"))
}

func TestRenderStatusDefaultsToZero(t *testing.T) {
	out := RenderStatus(nil)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "Optimized:")
	assert.Contains(t, lines[0], "0")
	assert.Contains(t, lines[2], "0 B")
}

func TestRenderStatusShowsAverage(t *testing.T) {
	snap := processor.Snapshot{Success: 4, Failed: 1, Delta: 8192}
	out := RenderStatus(&snap)
	assert.Contains(t, out, "8.0 KiB")
	assert.Contains(t, out, "2.0 KiB")
	assert.Contains(t, out, "Failed:")
}

func TestRenderSummary(t *testing.T) {
	summary := processor.Summary{
		Elapsed: 1500 * time.Millisecond,
		Categories: []processor.CategorySummary{
			{Category: assetkind.CategoryRaster, Discovered: 2, Snapshot: processor.Snapshot{Success: 1, Failed: 1, Delta: 100, Min: 100, Max: 100}},
			{Category: assetkind.CategoryAudio, Discovered: 1, Snapshot: processor.Snapshot{Success: 1, Delta: -50, Min: -50, Max: -50}},
		},
	}

	out := RenderSummary(summary)
	assert.Contains(t, out, "DMI/PNG")
	assert.Contains(t, out, "OGG")
	assert.Contains(t, out, "-50 B")
	assert.Contains(t, out, "1.5s")
	assert.Contains(t, strings.ToUpper(out), "TOTAL")
}

func TestModelQuitsWhenDone(t *testing.T) {
	stats := processor.NewStats()
	stats.For(assetkind.CategoryAudio).RecordSuccess(10)
	plan := processor.Plan{assetkind.CategoryAudio: {"/a.ogg", "/b.ogg"}}
	done := make(chan struct{})

	m := NewModel(stats, plan, done)
	view := m.View()
	assert.Contains(t, view, "OGG  1/2")
	assert.NotContains(t, view, "DMI/PNG")

	next, cmd := m.Update(tickMsg(time.Now()))
	assert.NotNil(t, cmd)

	close(done)
	msg := waitForDone(done)()
	next, cmd = next.Update(msg)
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
	assert.Empty(t, next.View())
}

func TestRenderBar(t *testing.T) {
	assert.Equal(t, "[==  ]", renderBar(4, 0.5))
	assert.Equal(t, "[====]", renderBar(4, 2))
	assert.Equal(t, "[    ]", renderBar(4, -1))
}
