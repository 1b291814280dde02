// Package storage defines the trade journal the dashboard writes settled
// events to. The journal is an audit trail, not a source of truth: live
// state always comes from snapshots and the event feed.
package storage

import (
	"context"

	"github.com/rovshanmuradov/solana-dashboard/internal/storage/models"
)

// Journal persists settled trades and terminal position states.
type Journal interface {
	RecordTrade(ctx context.Context, trade *models.TradeRecord) error
	ArchivePosition(ctx context.Context, archive *models.PositionArchive) error
	ListTrades(ctx context.Context, tokenMint string, limit, offset int) ([]*models.TradeRecord, error)
	GetArchive(ctx context.Context, positionID string) (*models.PositionArchive, error)

	RunMigrations() error
	Close() error
}

// Noop is the journal used when no database is configured. Every call
// succeeds without doing anything.
type Noop struct{}

func (Noop) RecordTrade(context.Context, *models.TradeRecord) error         { return nil }
func (Noop) ArchivePosition(context.Context, *models.PositionArchive) error { return nil }
func (Noop) ListTrades(context.Context, string, int, int) ([]*models.TradeRecord, error) {
	return nil, nil
}
func (Noop) GetArchive(context.Context, string) (*models.PositionArchive, error) { return nil, nil }
func (Noop) RunMigrations() error                                                { return nil }
func (Noop) Close() error                                                        { return nil }
