package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"squash/internal/processor"
	"squash/internal/theme"
	"squash/pkg/assetkind"
)

const refreshInterval = 100 * time.Millisecond

// Model renders live progress by polling the run's Stats. It never writes
// to them, so the run does not depend on it.
type Model struct {
	stats    *processor.Stats
	plan     processor.Plan
	done     <-chan struct{}
	started  time.Time
	width    int
	quitting bool
}

type tickMsg time.Time

type doneMsg struct{}

// NewModel watches stats for the categories in plan until done is closed.
func NewModel(stats *processor.Stats, plan processor.Plan, done <-chan struct{}) Model {
	return Model{stats: stats, plan: plan, done: done, started: time.Now()}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(tick(), waitForDone(m.done))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		return m, tick()
	case doneMsg:
		m.quitting = true
		return m, tea.Quit
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	default:
		return m, nil
	}
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	barWidth := 40
	if m.width > 0 {
		barWidth = int(math.Min(60, float64(m.width-10)))
		if barWidth < 20 {
			barWidth = 20
		}
	}

	lines := []string{titleStyle.Render("squash")}
	for _, c := range assetkind.All {
		total := len(m.plan[c])
		if total == 0 {
			continue
		}
		snap := m.stats.Snapshot(c)
		done := int(snap.Done())
		ratio := float64(done) / float64(total)
		if ratio > 1 {
			ratio = 1
		}

		lines = append(lines,
			"",
			headingStyle.Render(fmt.Sprintf("%s  %d/%d", c.Title(), done, total)),
			barStyle.Render(renderBar(barWidth, ratio)),
			RenderStatus(&snap),
		)
	}
	elapsed := time.Since(m.started).Round(time.Millisecond)
	lines = append(lines, "", dimStyle.Render(fmt.Sprintf("Elapsed: %s", elapsed)))

	return strings.Join(lines, "\n")
}

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func waitForDone(done <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-done
		return doneMsg{}
	}
}

func renderBar(width int, ratio float64) string {
	filled := int(math.Round(ratio * float64(width)))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return "[" + strings.Repeat("=", filled) + strings.Repeat(" ", width-filled) + "]"
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(theme.ColorAccent)
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(theme.ColorAccentAlt)
	barStyle     = lipgloss.NewStyle().Foreground(theme.ColorInk)
	dimStyle     = lipgloss.NewStyle().Foreground(theme.ColorDim)
)
