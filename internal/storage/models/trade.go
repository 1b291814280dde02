package models

import "time"

// TradeRecord is one settled trade event as reported by the bot. The
// journal keeps them append-only; the live position state is never read
// back from here.
type TradeRecord struct {
	BaseModel
	PositionID  string     `gorm:"index;not null;type:varchar(64)"`
	TokenMint   string     `gorm:"index;not null;type:varchar(44)"`
	Symbol      string     `gorm:"type:varchar(32)"`
	Wallet      string     `gorm:"type:varchar(44)"`
	EventKind   string     `gorm:"not null;type:varchar(20)"`
	Status      string     `gorm:"type:varchar(20)"`
	Balance     float64    `gorm:"type:decimal(20,9)"`
	Price       float64    `gorm:"type:decimal(20,12)"`
	RealizedPnL float64    `gorm:"column:realized_pnl;type:decimal(20,9)"`
	EventTime   *time.Time `gorm:"index"`
}

// PositionArchive is the final state of a position after it reached a
// terminal status.
type PositionArchive struct {
	BaseModel
	PositionID  string     `gorm:"unique;not null;type:varchar(64)"`
	TokenMint   string     `gorm:"index;not null;type:varchar(44)"`
	Symbol      string     `gorm:"type:varchar(32)"`
	Wallet      string     `gorm:"type:varchar(44)"`
	Status      string     `gorm:"not null;type:varchar(20)"`
	InvestedSOL float64    `gorm:"type:decimal(20,9)"`
	RealizedPnL float64    `gorm:"column:realized_pnl;type:decimal(20,9)"`
	CloseReason string     `gorm:"type:varchar(50)"`
	OpenedAt    *time.Time `gorm:""`
	ClosedAt    *time.Time `gorm:"index"`
}
