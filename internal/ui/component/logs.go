package component

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap/zapcore"

	"github.com/rovshanmuradov/solana-dashboard/internal/logger"
	"github.com/rovshanmuradov/solana-dashboard/internal/ui/style"
)

// LogPane shows the tail of the in-memory log ring below the table.
type LogPane struct {
	ring    *logger.Ring
	lines   int
	width   int
	visible bool
	minLvl  zapcore.Level

	container lipgloss.Style
	title     lipgloss.Style
	timestamp lipgloss.Style
	levels    map[zapcore.Level]lipgloss.Style
	fallback  lipgloss.Style
}

// NewLogPane creates a pane over ring showing lines entries at a time.
func NewLogPane(ring *logger.Ring, lines int) *LogPane {
	palette := style.DefaultPalette()

	return &LogPane{
		ring:    ring,
		lines:   lines,
		visible: true,
		minLvl:  zapcore.InfoLevel,

		container: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(palette.Info).
			Padding(0, 1).
			MarginTop(1),

		title: lipgloss.NewStyle().
			Foreground(palette.Info).
			Bold(true),

		timestamp: lipgloss.NewStyle().
			Foreground(palette.TextMuted),

		levels: map[zapcore.Level]lipgloss.Style{
			zapcore.ErrorLevel: lipgloss.NewStyle().Foreground(palette.Error).Bold(true),
			zapcore.WarnLevel:  lipgloss.NewStyle().Foreground(palette.Warning).Bold(true),
			zapcore.InfoLevel:  lipgloss.NewStyle().Foreground(palette.Info),
			zapcore.DebugLevel: lipgloss.NewStyle().Foreground(palette.TextMuted),
		},
		fallback: lipgloss.NewStyle().Foreground(palette.Text),
	}
}

// SetWidth resizes the pane.
func (lp *LogPane) SetWidth(width int) {
	lp.width = width
	lp.container = lp.container.Width(width - 4)
}

// Toggle flips pane visibility and reports the new state.
func (lp *LogPane) Toggle() bool {
	lp.visible = !lp.visible
	return lp.visible
}

// Visible reports whether the pane renders.
func (lp *LogPane) Visible() bool {
	return lp.visible
}

// SetMinLevel hides entries below level.
func (lp *LogPane) SetMinLevel(level zapcore.Level) {
	lp.minLvl = level
}

// View renders the pane.
func (lp *LogPane) View() string {
	if !lp.visible {
		return ""
	}

	entries := lp.ring.Recent(lp.lines * 4)
	shown := make([]logger.Entry, 0, lp.lines)
	for _, e := range entries {
		if e.Level >= lp.minLvl {
			shown = append(shown, e)
		}
	}
	if len(shown) > lp.lines {
		shown = shown[len(shown)-lp.lines:]
	}

	var b strings.Builder
	b.WriteString(lp.title.Render("Logs"))
	if len(shown) == 0 {
		b.WriteString("\n")
		b.WriteString(lp.timestamp.Render("  (quiet)"))
	}
	for _, e := range shown {
		b.WriteString("\n")
		b.WriteString(lp.renderEntry(e))
	}
	return lp.container.Render(b.String())
}

func (lp *LogPane) renderEntry(e logger.Entry) string {
	levelStyle, ok := lp.levels[e.Level]
	if !ok {
		levelStyle = lp.fallback
	}

	ts := lp.timestamp.Render(e.Time.Format("15:04:05"))
	level := levelStyle.Render(fmt.Sprintf("%-5s", e.Level.CapitalString()))
	msg := e.Message
	if e.Component != "" {
		msg = "[" + e.Component + "] " + msg
	}
	return ts + " " + level + " " + lp.fallback.Render(msg)
}
