package storage

import (
	"github.com/rovshanmuradov/solana-dashboard/internal/domain"
	"github.com/rovshanmuradov/solana-dashboard/internal/storage/models"
)

// TradeFromEvent builds a journal row from a settlement event and the
// position state after the event was applied.
func TradeFromEvent(ev domain.Event, p domain.Position) *models.TradeRecord {
	trade := &models.TradeRecord{
		PositionID:  p.ID,
		TokenMint:   p.TokenMint,
		Symbol:      p.Symbol,
		Wallet:      p.Wallet,
		EventKind:   string(ev.Kind),
		Status:      string(p.Status),
		Balance:     p.Balance,
		Price:       p.CurrentPrice,
		RealizedPnL: p.RealizedPnL,
	}
	if ts := ev.Timestamp(); !ts.IsZero() {
		t := ts
		trade.EventTime = &t
	}
	return trade
}

// ArchiveFromPosition captures the terminal state of a position.
func ArchiveFromPosition(p domain.Position) *models.PositionArchive {
	archive := &models.PositionArchive{
		PositionID:  p.ID,
		TokenMint:   p.TokenMint,
		Symbol:      p.Symbol,
		Wallet:      p.Wallet,
		Status:      string(p.Status),
		InvestedSOL: p.InvestedSOL,
		RealizedPnL: p.RealizedPnL,
		CloseReason: p.CloseReason,
	}
	if !p.DiscoveredAt.IsZero() {
		t := p.DiscoveredAt
		archive.OpenedAt = &t
	}
	if !p.ClosedAt.IsZero() {
		t := p.ClosedAt
		archive.ClosedAt = &t
	}
	return archive
}
