package domain

import (
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
)

// PositionStatus is the lifecycle tag of a trading position.
type PositionStatus string

const (
	PositionPending      PositionStatus = "pending"
	PositionOpen         PositionStatus = "open"
	PositionPartialClose PositionStatus = "partial_close"
	PositionClosed       PositionStatus = "closed"
	PositionFailed       PositionStatus = "failed"
)

// statusRank orders the forward lifecycle. failed sits outside the chain:
// it is reachable from pending or open only.
var statusRank = map[PositionStatus]int{
	PositionPending:      0,
	PositionOpen:         1,
	PositionPartialClose: 2,
	PositionClosed:       3,
	PositionFailed:       3,
}

// Valid reports whether the tag is a known position status.
func (s PositionStatus) Valid() bool {
	_, ok := statusRank[s]
	return ok
}

// Terminal reports whether the position can no longer change price-derived
// state. Only settlement fields may still land after this.
func (s PositionStatus) Terminal() bool {
	return s == PositionClosed || s == PositionFailed
}

// Rank returns the position of the status in the forward lifecycle order.
func (s PositionStatus) Rank() int {
	return statusRank[s]
}

// Position is the canonical record for a single trade, owned exclusively by
// the reconciler store. UI consumers only ever see copies.
type Position struct {
	ID         string
	TokenMint  string
	Symbol     string
	Wallet     string
	SourceChat string

	Status PositionStatus

	Balance       float64
	AvgEntryPrice float64
	CurrentPrice  float64
	InvestedSOL   float64
	RealizedPnL   float64
	UnrealizedPnL float64
	TotalPnL      float64
	// ROIPercent is nil when InvestedSOL is zero: division by zero is an
	// absent value here, never Inf or NaN.
	ROIPercent *float64

	PeakPrice     float64
	StopLoss      float64
	TakeProfit    float64
	TrailingArmed bool

	DiscoveredAt time.Time
	FirstTradeAt time.Time
	ClosedAt     time.Time
	CloseReason  string
}

// ActiveSince returns the timestamp used for time ordering: first trade when
// known, discovery otherwise.
func (p *Position) ActiveSince() time.Time {
	if !p.FirstTradeAt.IsZero() {
		return p.FirstTradeAt
	}
	return p.DiscoveredAt
}

// OpenLike reports whether the position counts toward the open bucket
// (pending or open or partially closed).
func (p *Position) OpenLike() bool {
	return !p.Status.Terminal()
}

// TokenPhase is the implicit lifecycle of a tracked token on the bonding
// curve: unlaunched until first trade, bonding until graduation.
type TokenPhase string

const (
	TokenUnlaunched TokenPhase = "unlaunched"
	TokenBonding    TokenPhase = "bonding"
	TokenGraduated  TokenPhase = "graduated"
)

// phaseRank keeps token transitions monotonic the same way positions are.
var phaseRank = map[TokenPhase]int{
	TokenUnlaunched: 0,
	TokenBonding:    1,
	TokenGraduated:  2,
}

// Rank returns the lifecycle order of the phase.
func (p TokenPhase) Rank() int {
	return phaseRank[p]
}

// TrackedToken is a token the dashboard follows from chat discovery onward.
type TrackedToken struct {
	Mint       string
	Symbol     string
	Name       string
	SourceChat string

	Phase           TokenPhase
	BondingProgress float64 // percent of the curve filled

	DiscoveryPrice float64
	CurrentPrice   float64
	MarketCapSOL   float64
	// GainPercent is nil until a discovery price is known.
	GainPercent *float64

	DiscoveredAt time.Time
	UpdatedAt    time.Time
}

// ValidateMint checks that a mint address parses as a Solana public key.
func ValidateMint(mint string) error {
	if _, err := solana.PublicKeyFromBase58(mint); err != nil {
		return fmt.Errorf("invalid mint address %q: %w", mint, err)
	}
	return nil
}

// ShortMint renders a mint address in the abbreviated dashboard form.
func ShortMint(mint string) string {
	if len(mint) <= 8 {
		return mint
	}
	return mint[:4] + "…" + mint[len(mint)-4:]
}
