package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rovshanmuradov/solana-dashboard/internal/candles"
	"github.com/rovshanmuradov/solana-dashboard/internal/domain"
)

// EventAppliedMsg tells the UI an event was merged into a store so it can
// redraw without waiting for the next tick.
type EventAppliedMsg struct {
	Event domain.Event
}

// FeedStateMsg reports event feed connectivity changes.
type FeedStateMsg struct {
	Connected bool
}

// SnapshotLoadedMsg reports a completed snapshot reload.
type SnapshotLoadedMsg struct {
	Positions int
	Tokens    int
}

// ChartLoadedMsg delivers a normalized candle series for one token.
type ChartLoadedMsg struct {
	Mint   string
	Series *candles.Series
}

// SellResultMsg reports the outcome of a manual sell command.
type SellResultMsg struct {
	PositionID string
	Accepted   bool
	Err        error
}

// ErrorMsg surfaces a background failure in the UI.
type ErrorMsg struct {
	Err   error
	Title string
}

// tickMsg drives the periodic redraw.
type tickMsg struct{}

// Bus carries messages from background goroutines into the tea program.
// Sends never block: under pressure the UI misses a nudge, not an event,
// because state lives in the stores.
type Bus struct {
	ch chan tea.Msg
}

// NewBus creates a bus with a bounded queue.
func NewBus() *Bus {
	return &Bus{ch: make(chan tea.Msg, 256)}
}

// Publish enqueues msg, dropping it when the queue is full.
func (b *Bus) Publish(msg tea.Msg) {
	select {
	case b.ch <- msg:
	default:
	}
}

// Listen returns a command delivering the next bus message.
func (b *Bus) Listen() tea.Cmd {
	return func() tea.Msg {
		return <-b.ch
	}
}
