package component

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rovshanmuradov/solana-dashboard/internal/logger"
)

func TestSparklineRendersBlocks(t *testing.T) {
	s := NewSparkline(8).SetData([]float64{1, 2, 3, 4, 5, 6, 7, 8})
	view := s.View()
	assert.Contains(t, view, "▁")
	assert.Contains(t, view, "█")
}

func TestSparklineFlatSeries(t *testing.T) {
	s := NewSparkline(4).SetData([]float64{2, 2, 2, 2})
	assert.Contains(t, s.View(), "▄▄▄▄")
}

func TestSparklineKeepsTail(t *testing.T) {
	s := NewSparkline(3).SetData([]float64{1, 2, 3, 4, 5})
	// only the last three points remain, so the change is 3 -> 5
	assert.InDelta(t, (5.0-3.0)/3.0*100, s.ChangePercent(), 1e-9)
}

func TestSparklineTrend(t *testing.T) {
	up := NewSparkline(4).SetData([]float64{1, 2})
	down := NewSparkline(4).SetData([]float64{2, 1})
	flat := NewSparkline(4).SetData([]float64{1, 1})

	assert.Equal(t, "↗", up.Trend())
	assert.Equal(t, "↘", down.Trend())
	assert.Equal(t, "→", flat.Trend())
}

func TestSparklineNegativeWidthClamps(t *testing.T) {
	s := NewSparkline(40).SetData([]float64{1, 2, 3})
	s.SetWidth(-10)
	assert.Equal(t, "", stripPlain(s.View()))
	s.SetData(nil)
	assert.NotPanics(t, func() { s.View() })
}

// stripPlain drops ANSI escapes so the assertion sees cell content only.
func stripPlain(s string) string {
	var b strings.Builder
	inEscape := false
	for _, r := range s {
		switch {
		case inEscape:
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
				inEscape = false
			}
		case r == '\x1b':
			inEscape = true
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func TestTableSelectionClampsToRows(t *testing.T) {
	tbl := NewTable().SetColumns([]TableColumn{
		{Header: "A", Width: 6, Align: lipgloss.Left},
	})
	tbl.SetRows([][]string{{"one"}, {"two"}, {"three"}})

	tbl.MoveDown()
	tbl.MoveDown()
	tbl.MoveDown() // already at last row
	assert.Equal(t, 2, tbl.SelectedRow())
	assert.Equal(t, []string{"three"}, tbl.SelectedRowData())

	// shrinking the row set pulls the selection back into range
	tbl.SetRows([][]string{{"one"}})
	assert.Equal(t, 0, tbl.SelectedRow())
}

func TestTableRendersHeadersAndCells(t *testing.T) {
	tbl := NewTable().
		SetColumns([]TableColumn{
			{Header: "Token", Width: 8, Align: lipgloss.Left},
			{Header: "PnL", Width: 8, Align: lipgloss.Right},
		}).
		SetShowBorder(false)
	tbl.SetRows([][]string{{"WSOL", "+1.0000"}})

	view := tbl.View()
	assert.Contains(t, view, "Token")
	assert.Contains(t, view, "WSOL")
	assert.Contains(t, view, "+1.0000")
	assert.Contains(t, view, "│")
}

func TestTableTruncatesLongCells(t *testing.T) {
	tbl := NewTable().
		SetColumns([]TableColumn{{Header: "A", Width: 8, Align: lipgloss.Left}}).
		SetShowBorder(false)
	tbl.SetRows([][]string{{"averylongvalue"}})

	view := tbl.View()
	assert.Contains(t, view, "avery...")
	assert.NotContains(t, view, "averylongvalue")
}

func TestTableFullWidthCellStaysOnOneLine(t *testing.T) {
	tbl := NewTable().
		SetColumns([]TableColumn{{Header: "Status", Width: 13, Align: lipgloss.Left}}).
		SetShowBorder(false)
	tbl.SetRows([][]string{{"partial_close"}})

	view := tbl.View()
	assert.Contains(t, view, "partial_close")
	// header, separator, one row — a cell filling its column must not wrap
	assert.Equal(t, 2, strings.Count(view, "\n"))
}

func TestTableTruncationIsRuneAware(t *testing.T) {
	tbl := NewTable().
		SetColumns([]TableColumn{{Header: "A", Width: 6, Align: lipgloss.Left}}).
		SetShowBorder(false)
	tbl.SetRows([][]string{{"événement-long"}})

	view := tbl.View()
	assert.Contains(t, view, "évé...")
	assert.True(t, utf8.ValidString(view))
}

func TestHelpBarRendersShortcuts(t *testing.T) {
	h := NewHelpBar().SetWidth(80)
	assert.Equal(t, "", h.View())
}

func TestStatusHeaderShowsFeedAndPnL(t *testing.T) {
	sh := NewStatusHeader()
	sh.SetWidth(100)
	sh.SetFeedStatus(FeedStatus{Connected: true, LastEvent: time.Now()})
	sh.SetTotals(1.25, 2, 5)

	view := sh.View()
	assert.Contains(t, view, "feed: live")
	assert.Contains(t, view, "2 open / 5")
	assert.Contains(t, view, "+1.2500 SOL")

	sh.SetFeedStatus(FeedStatus{Connected: false})
	assert.Contains(t, sh.View(), "feed: down")
}

func TestStatusHeaderHeight(t *testing.T) {
	require.Equal(t, 3, NewStatusHeader().Height())
}

func TestTableEmptyColumns(t *testing.T) {
	assert.Equal(t, "", NewTable().View())
}

func TestLogPaneToggleAndRender(t *testing.T) {
	ring := logger.NewRing(8)
	pane := NewLogPane(ring, 3)
	pane.SetWidth(80)

	require.True(t, pane.Visible())
	assert.Contains(t, pane.View(), "quiet")

	assert.False(t, pane.Toggle())
	assert.Equal(t, "", pane.View())
}

func TestSparklinePadsToWidth(t *testing.T) {
	s := NewSparkline(6).SetData([]float64{1, 2})
	plain := s.View()
	// two plotted cells plus four pad spaces
	assert.True(t, strings.HasSuffix(plain, "    "))
}
