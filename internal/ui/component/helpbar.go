package component

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	"github.com/rovshanmuradov/solana-dashboard/internal/ui/style"
)

// HelpBar renders a single line of keyboard shortcuts.
type HelpBar struct {
	bindings []key.Binding
	width    int

	keyStyle  lipgloss.Style
	descStyle lipgloss.Style
	sepStyle  lipgloss.Style
	container lipgloss.Style
}

// NewHelpBar creates an empty help bar.
func NewHelpBar() *HelpBar {
	palette := style.DefaultPalette()

	return &HelpBar{
		width: 80,

		keyStyle: lipgloss.NewStyle().
			Foreground(palette.Primary).
			Bold(true),

		descStyle: lipgloss.NewStyle().
			Foreground(palette.TextMuted),

		sepStyle: lipgloss.NewStyle().
			Foreground(palette.TextMuted),

		container: lipgloss.NewStyle().
			Padding(0, 1).
			MarginTop(1),
	}
}

// SetBindings sets the shortcuts to display.
func (h *HelpBar) SetBindings(bindings []key.Binding) *HelpBar {
	h.bindings = bindings
	return h
}

// SetWidth sets the bar width.
func (h *HelpBar) SetWidth(width int) *HelpBar {
	h.width = width
	return h
}

// View renders the help bar, dropping shortcuts that don't fit.
func (h *HelpBar) View() string {
	if len(h.bindings) == 0 {
		return ""
	}

	sep := h.sepStyle.Render(" • ")
	var items []string
	used := 0
	for _, b := range h.bindings {
		help := b.Help()
		item := h.keyStyle.Render(help.Key) + " " + h.descStyle.Render(help.Desc)
		cost := len(help.Key) + len(help.Desc) + 4
		if used+cost > h.width-4 && len(items) > 0 {
			break
		}
		items = append(items, item)
		used += cost
	}

	return h.container.Render(strings.Join(items, sep))
}
