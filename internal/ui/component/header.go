package component

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/rovshanmuradov/solana-dashboard/internal/ui/style"
)

// FeedStatus describes the event feed connection for the header.
type FeedStatus struct {
	Connected bool
	LastEvent time.Time
}

// StatusHeader is the top bar: title, feed state, position count, total PnL.
type StatusHeader struct {
	feed       FeedStatus
	totalPnL   float64
	openCount  int
	totalCount int
	width      int
	style      statusHeaderStyle
}

type statusHeaderStyle struct {
	container   lipgloss.Style
	title       lipgloss.Style
	counts      lipgloss.Style
	feedGood    lipgloss.Style
	feedBad     lipgloss.Style
	pnlPositive lipgloss.Style
	pnlNegative lipgloss.Style
	pnlNeutral  lipgloss.Style
}

// NewStatusHeader creates the header component.
func NewStatusHeader() *StatusHeader {
	palette := style.DefaultPalette()

	return &StatusHeader{
		style: statusHeaderStyle{
			container: lipgloss.NewStyle().
				Background(palette.Background).
				Foreground(palette.Text).
				Border(lipgloss.RoundedBorder()).
				BorderForeground(palette.Primary).
				Padding(0, 2).
				MarginBottom(1),

			title: lipgloss.NewStyle().
				Foreground(palette.Primary).
				Bold(true),

			counts: lipgloss.NewStyle().
				Foreground(palette.TextSecondary),

			feedGood: lipgloss.NewStyle().
				Foreground(palette.Success).
				Bold(true),

			feedBad: lipgloss.NewStyle().
				Foreground(palette.Error).
				Bold(true),

			pnlPositive: lipgloss.NewStyle().
				Foreground(palette.Success).
				Bold(true),

			pnlNegative: lipgloss.NewStyle().
				Foreground(palette.Error).
				Bold(true),

			pnlNeutral: lipgloss.NewStyle().
				Foreground(palette.TextMuted),
		},
	}
}

// SetFeedStatus updates the feed connection display.
func (sh *StatusHeader) SetFeedStatus(status FeedStatus) {
	sh.feed = status
}

// SetTotals updates the PnL and position counters.
func (sh *StatusHeader) SetTotals(totalPnL float64, openCount, totalCount int) {
	sh.totalPnL = totalPnL
	sh.openCount = openCount
	sh.totalCount = totalCount
}

// SetWidth sets the component width for responsive layout.
func (sh *StatusHeader) SetWidth(width int) {
	sh.width = width
	sh.style.container = sh.style.container.Width(width - 4)
}

// View renders the status header.
func (sh *StatusHeader) View() string {
	title := sh.style.title.Render("Solana Dashboard")
	counts := sh.style.counts.Render(
		fmt.Sprintf("Positions: %d open / %d", sh.openCount, sh.totalCount))

	return sh.style.container.Render(lipgloss.JoinHorizontal(
		lipgloss.Left,
		title,
		" | ",
		sh.renderFeed(),
		" | ",
		counts,
		" | ",
		sh.renderPnL(),
	))
}

func (sh *StatusHeader) renderFeed() string {
	if sh.feed.Connected {
		status := "● feed: live"
		if !sh.feed.LastEvent.IsZero() {
			status = fmt.Sprintf("● feed: live (%s ago)",
				time.Since(sh.feed.LastEvent).Round(time.Second))
		}
		return sh.style.feedGood.Render(status)
	}
	return sh.style.feedBad.Render("● feed: down")
}

func (sh *StatusHeader) renderPnL() string {
	var renderer lipgloss.Style
	switch {
	case sh.totalPnL > 0:
		renderer = sh.style.pnlPositive
	case sh.totalPnL < 0:
		renderer = sh.style.pnlNegative
	default:
		renderer = sh.style.pnlNeutral
	}
	return renderer.Render(fmt.Sprintf("Total PnL: %+.4f SOL", sh.totalPnL))
}

// Height returns the rendered height for layout calculations.
func (sh *StatusHeader) Height() int {
	return 3
}
