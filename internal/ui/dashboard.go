// Package ui renders the terminal dashboard. All trading state is read
// from the reconcile stores; the UI never mutates it directly.
package ui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/solana-dashboard/internal/actions"
	"github.com/rovshanmuradov/solana-dashboard/internal/candles"
	"github.com/rovshanmuradov/solana-dashboard/internal/domain"
	"github.com/rovshanmuradov/solana-dashboard/internal/logger"
	"github.com/rovshanmuradov/solana-dashboard/internal/reconcile"
	"github.com/rovshanmuradov/solana-dashboard/internal/ui/component"
	"github.com/rovshanmuradov/solana-dashboard/internal/ui/style"
	"github.com/rovshanmuradov/solana-dashboard/pkg/pricefmt"
)

const redrawInterval = time.Second

// ChartLoader fetches and normalizes the candle series for one token.
type ChartLoader func(ctx context.Context, mint string) (*candles.Series, error)

// Dashboard is the bubbletea model for the whole screen.
type Dashboard struct {
	positions *reconcile.Store
	tokens    *reconcile.TokenStore
	trader    *actions.Client
	charts    ChartLoader
	bus       *Bus
	keys      KeyMap
	logger    *zap.Logger

	filter     reconcile.Filter
	sortKey    reconcile.SortKey
	showTokens bool

	header *component.StatusHeader
	table  *component.Table
	spark  *component.Sparkline
	logs   *component.LogPane
	help   *component.HelpBar

	width  int
	height int

	refresh func()

	feedUp    bool
	lastEvent time.Time
	chartMint string
	series    *candles.Series
	notice    string

	// current table rows keyed back to position IDs for actions
	rowIDs []string
}

// NewDashboard wires the model to its stores and services.
func NewDashboard(
	positions *reconcile.Store,
	tokens *reconcile.TokenStore,
	trader *actions.Client,
	charts ChartLoader,
	ring *logger.Ring,
	bus *Bus,
	log *zap.Logger,
) *Dashboard {
	return &Dashboard{
		positions: positions,
		tokens:    tokens,
		trader:    trader,
		charts:    charts,
		bus:       bus,
		keys:      DefaultKeyMap(),
		logger:    log,

		filter:  reconcile.FilterAll,
		sortKey: reconcile.SortTime,

		header: component.NewStatusHeader(),
		table:  component.NewTable(),
		spark:  component.NewSparkline(40),
		logs:   component.NewLogPane(ring, 5),
		help:   component.NewHelpBar(),

		width:  100,
		height: 30,
	}
}

// SetRefresh installs the callback the refresh key invokes. It runs on its
// own goroutine and reports completion through the bus.
func (d *Dashboard) SetRefresh(fn func()) {
	d.refresh = fn
}

// Init starts the redraw ticker and bus listener.
func (d *Dashboard) Init() tea.Cmd {
	return tea.Batch(tickCmd(), d.bus.Listen())
}

func tickCmd() tea.Cmd {
	return tea.Tick(redrawInterval, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

// Update handles messages.
func (d *Dashboard) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		d.width = msg.Width
		d.height = msg.Height
		d.header.SetWidth(msg.Width)
		d.table.SetWidth(msg.Width - 2)
		d.logs.SetWidth(msg.Width)
		d.help.SetWidth(msg.Width)
		d.spark.SetWidth(minInt(msg.Width-30, 60))
		return d, nil

	case tea.KeyMsg:
		return d.handleKey(msg)

	case tickMsg:
		return d, tickCmd()

	case EventAppliedMsg:
		d.lastEvent = msg.Event.Timestamp()
		if d.lastEvent.IsZero() {
			d.lastEvent = time.Now()
		}
		return d, d.bus.Listen()

	case FeedStateMsg:
		d.feedUp = msg.Connected
		return d, d.bus.Listen()

	case SnapshotLoadedMsg:
		d.notice = fmt.Sprintf("snapshot: %d positions, %d tokens", msg.Positions, msg.Tokens)
		return d, d.bus.Listen()

	case ChartLoadedMsg:
		if msg.Mint == d.chartMint {
			d.series = msg.Series
			if msg.Series != nil {
				closes := make([]float64, len(msg.Series.Candles))
				for i, c := range msg.Series.Candles {
					closes[i] = c.Close
				}
				d.spark.SetData(closes)
			}
		}
		return d, d.bus.Listen()

	case SellResultMsg:
		if msg.Err != nil {
			d.notice = "sell failed: " + msg.Err.Error()
		} else if msg.Accepted {
			d.notice = "sell accepted for " + msg.PositionID
		} else {
			d.notice = "sell rejected for " + msg.PositionID
		}
		return d, d.bus.Listen()

	case ErrorMsg:
		d.notice = msg.Title + ": " + msg.Err.Error()
		return d, d.bus.Listen()
	}

	return d, nil
}

func (d *Dashboard) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := d.keys
	switch {
	case key.Matches(msg, k.Quit):
		return d, tea.Quit

	case key.Matches(msg, k.Up):
		d.table.MoveUp()
		return d, d.loadChartForSelection()

	case key.Matches(msg, k.Down):
		d.table.MoveDown()
		return d, d.loadChartForSelection()

	case key.Matches(msg, k.CycleFilter):
		d.filter = nextFilter(d.filter)
		return d, nil

	case key.Matches(msg, k.CycleSort):
		d.sortKey = nextSort(d.sortKey)
		return d, nil

	case key.Matches(msg, k.ToggleTok):
		d.showTokens = !d.showTokens
		return d, nil

	case key.Matches(msg, k.ToggleLogs):
		d.logs.Toggle()
		return d, nil

	case key.Matches(msg, k.Refresh):
		if d.refresh != nil {
			d.notice = "refreshing..."
			go d.refresh()
		}
		return d, nil

	case key.Matches(msg, k.Sell):
		return d, d.sellSelected(50)

	case key.Matches(msg, k.SellAll):
		return d, d.sellSelected(100)
	}
	return d, nil
}

// sellSelected issues the sell command for the highlighted position. The
// resulting state change arrives later through the event feed.
func (d *Dashboard) sellSelected(percent float64) tea.Cmd {
	idx := d.table.SelectedRow()
	if idx < 0 || idx >= len(d.rowIDs) || d.showTokens {
		return nil
	}
	id := d.rowIDs[idx]

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		defer cancel()
		res, err := d.trader.Sell(ctx, id, percent)
		return SellResultMsg{PositionID: id, Accepted: res.Accepted, Err: err}
	}
}

// loadChartForSelection fetches candles for the newly highlighted token.
func (d *Dashboard) loadChartForSelection() tea.Cmd {
	if d.charts == nil {
		return nil
	}
	mint := d.selectedMint()
	if mint == "" || mint == d.chartMint {
		return nil
	}
	d.chartMint = mint
	d.series = nil

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		series, err := d.charts(ctx, mint)
		if err != nil {
			return ErrorMsg{Err: err, Title: "chart"}
		}
		return ChartLoadedMsg{Mint: mint, Series: series}
	}
}

func (d *Dashboard) selectedMint() string {
	idx := d.table.SelectedRow()
	if idx < 0 || idx >= len(d.rowIDs) {
		return ""
	}
	if p, ok := d.positions.Get(d.rowIDs[idx]); ok {
		return p.TokenMint
	}
	return ""
}

// View renders the whole screen.
func (d *Dashboard) View() string {
	agg := d.positions.Aggregate(d.filter, d.sortKey)

	open := 0
	for i := range agg.Items {
		if agg.Items[i].OpenLike() {
			open++
		}
	}
	d.header.SetFeedStatus(component.FeedStatus{Connected: d.feedUp, LastEvent: d.lastEvent})
	d.header.SetTotals(agg.Totals.TotalPnL, open, agg.Totals.Count)

	if d.showTokens {
		d.fillTokenTable()
	} else {
		d.fillPositionTable(agg)
	}

	d.help.SetBindings(d.keys.ShortHelp())

	sections := []string{
		d.header.View(),
		d.renderModeLine(),
		d.table.View(),
	}
	if chart := d.renderChart(); chart != "" {
		sections = append(sections, chart)
	}
	if d.logs.Visible() {
		sections = append(sections, d.logs.View())
	}
	sections = append(sections, d.help.View())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (d *Dashboard) renderModeLine() string {
	palette := style.DefaultPalette()
	mode := fmt.Sprintf("filter: %s  sort: %s", d.filter, d.sortKey)
	if d.showTokens {
		mode = "tracked tokens"
	}
	line := lipgloss.NewStyle().Foreground(palette.TextMuted).Render(mode)
	if d.notice != "" {
		line += "  " + lipgloss.NewStyle().Foreground(palette.Warning).Render(d.notice)
	}
	return line
}

func (d *Dashboard) fillPositionTable(agg reconcile.Aggregate) {
	d.table.SetColumns([]component.TableColumn{
		{Header: "Token", Width: 12, Align: lipgloss.Left},
		{Header: "Status", Width: 13, Align: lipgloss.Left},
		{Header: "Balance", Width: 14, Align: lipgloss.Right},
		{Header: "Price", Width: 16, Align: lipgloss.Right},
		{Header: "PnL (SOL)", Width: 14, Align: lipgloss.Right},
		{Header: "ROI", Width: 10, Align: lipgloss.Right},
	})

	rows := make([][]string, 0, len(agg.Items))
	d.rowIDs = d.rowIDs[:0]
	for i := range agg.Items {
		p := &agg.Items[i]
		rows = append(rows, []string{
			displaySymbol(p),
			string(p.Status),
			fmt.Sprintf("%.4f", p.Balance),
			pricefmt.Format(p.CurrentPrice),
			fmt.Sprintf("%+.4f", p.TotalPnL),
			roiCell(p),
		})
		d.rowIDs = append(d.rowIDs, p.ID)
	}
	d.table.SetRows(rows)

	palette := style.DefaultPalette()
	profit := lipgloss.NewStyle().Foreground(palette.Profit).Padding(0, 1)
	loss := lipgloss.NewStyle().Foreground(palette.Loss).Padding(0, 1)
	for i := range agg.Items {
		switch {
		case agg.Items[i].TotalPnL > 0:
			d.table.SetRowStyle(i, profit)
		case agg.Items[i].TotalPnL < 0:
			d.table.SetRowStyle(i, loss)
		}
	}
}

func (d *Dashboard) fillTokenTable() {
	d.table.SetColumns([]component.TableColumn{
		{Header: "Token", Width: 12, Align: lipgloss.Left},
		{Header: "Phase", Width: 11, Align: lipgloss.Left},
		{Header: "Source", Width: 14, Align: lipgloss.Left},
		{Header: "Price", Width: 16, Align: lipgloss.Right},
		{Header: "MCap (SOL)", Width: 13, Align: lipgloss.Right},
		{Header: "Bonding", Width: 9, Align: lipgloss.Right},
		{Header: "Gain", Width: 10, Align: lipgloss.Right},
	})

	tokens := d.tokens.List()
	rows := make([][]string, 0, len(tokens))
	d.rowIDs = d.rowIDs[:0]
	for i := range tokens {
		t := &tokens[i]
		gain := "—"
		if t.GainPercent != nil {
			gain = pricefmt.FormatPercent(*t.GainPercent)
		}
		source := t.SourceChat
		if source == "" {
			source = "—"
		}
		rows = append(rows, []string{
			tokenLabel(t.Symbol, t.Mint),
			string(t.Phase),
			source,
			pricefmt.Format(t.CurrentPrice),
			fmt.Sprintf("%.2f", t.MarketCapSOL),
			fmt.Sprintf("%.1f%%", t.BondingProgress),
			gain,
		})
		d.rowIDs = append(d.rowIDs, t.Mint)
	}
	d.table.SetRows(rows)
}

func (d *Dashboard) renderChart() string {
	if d.chartMint == "" || d.showTokens {
		return ""
	}
	palette := style.DefaultPalette()
	muted := lipgloss.NewStyle().Foreground(palette.TextMuted)

	if d.series == nil {
		return muted.Render("chart: loading " + domain.ShortMint(d.chartMint))
	}
	if d.series.NoValidData() {
		return muted.Render("chart: feed data invalid for " + domain.ShortMint(d.chartMint))
	}
	if d.series.Empty() {
		return muted.Render("chart: no candles yet for " + domain.ShortMint(d.chartMint))
	}

	stats := d.series.Stats
	label := fmt.Sprintf(" %s %s %s",
		domain.ShortMint(d.chartMint),
		pricefmt.Format(stats.LatestClose),
		pricefmt.FormatPercent(stats.ChangePercent))
	return d.spark.View() + muted.Render(label)
}

func displaySymbol(p *domain.Position) string {
	if p.Symbol != "" {
		return p.Symbol
	}
	return domain.ShortMint(p.TokenMint)
}

func tokenLabel(symbol, mint string) string {
	if symbol != "" {
		return symbol
	}
	return domain.ShortMint(mint)
}

func roiCell(p *domain.Position) string {
	if p.ROIPercent == nil {
		return "—"
	}
	return pricefmt.FormatPercent(*p.ROIPercent)
}

func nextFilter(f reconcile.Filter) reconcile.Filter {
	switch f {
	case reconcile.FilterAll:
		return reconcile.FilterOpen
	case reconcile.FilterOpen:
		return reconcile.FilterClosed
	default:
		return reconcile.FilterAll
	}
}

func nextSort(k reconcile.SortKey) reconcile.SortKey {
	switch k {
	case reconcile.SortTime:
		return reconcile.SortPnL
	case reconcile.SortPnL:
		return reconcile.SortROI
	default:
		return reconcile.SortTime
	}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
