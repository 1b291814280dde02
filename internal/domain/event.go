package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"
)

// EventKind discriminates feed events. The feed delivers these unordered
// and possibly duplicated; every consumer has to treat them as such.
type EventKind string

const (
	EventCreated       EventKind = "created"
	EventTradeExecuted EventKind = "trade_executed"
	EventPriceUpdate   EventKind = "price_update"
	EventAlert         EventKind = "alert"
	EventClosed        EventKind = "closed"
)

var knownKinds = map[EventKind]bool{
	EventCreated:       true,
	EventTradeExecuted: true,
	EventPriceUpdate:   true,
	EventAlert:         true,
	EventClosed:        true,
}

// ErrMalformedEvent marks feed payloads that fail validation. Consumers drop
// and log these, they never propagate past the decode boundary.
var ErrMalformedEvent = errors.New("malformed feed event")

// FlexID tolerates feeds that serialize entity identifiers as either JSON
// strings or numbers.
type FlexID string

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = FlexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*f = FlexID(n.String())
		return nil
	}
	return fmt.Errorf("entity id is neither string nor number: %s", data)
}

// Event is one push update from the feed. Pointer fields form the partial
// patch: nil means "not present in this event", and absent fields must never
// reset entity state. Position and token updates share the wire shape; the
// token-specific fields are simply nil on position events and vice versa.
type Event struct {
	Kind EventKind `json:"kind"`
	ID   FlexID    `json:"id"`
	Mint string    `json:"mint,omitempty"`
	TS   int64     `json:"ts,omitempty"` // unix milliseconds

	Status        *PositionStatus `json:"status,omitempty"`
	Balance       *float64        `json:"balance,omitempty"`
	AvgEntryPrice *float64        `json:"avg_entry_price,omitempty"`
	CurrentPrice  *float64        `json:"current_price,omitempty"`
	InvestedSOL   *float64        `json:"invested_sol,omitempty"`
	RealizedPnL   *float64        `json:"realized_pnl,omitempty"`
	UnrealizedPnL *float64        `json:"unrealized_pnl,omitempty"`
	PeakPrice     *float64        `json:"peak_price,omitempty"`
	StopLoss      *float64        `json:"stop_loss,omitempty"`
	TakeProfit    *float64        `json:"take_profit,omitempty"`
	TrailingArmed *bool           `json:"trailing_armed,omitempty"`
	CloseReason   *string         `json:"close_reason,omitempty"`

	BondingProgress *float64 `json:"bonding_progress,omitempty"`
	Graduated       *bool    `json:"graduated,omitempty"`
	MarketCapSOL    *float64 `json:"market_cap_sol,omitempty"`

	Message string `json:"message,omitempty"`
}

// Timestamp converts the wire millisecond epoch into a time.Time, zero when
// the feed omitted it.
func (e *Event) Timestamp() time.Time {
	if e.TS == 0 {
		return time.Time{}
	}
	return time.UnixMilli(e.TS)
}

// DecodeEvent parses a raw feed message into an Event. Unrecognized kinds
// and missing identifiers are rejected rather than trusted: the caller drops
// the message and keeps consuming.
func DecodeEvent(data []byte) (Event, error) {
	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return Event{}, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if !knownKinds[ev.Kind] {
		return Event{}, fmt.Errorf("%w: unknown kind %q", ErrMalformedEvent, ev.Kind)
	}
	if ev.ID == "" {
		return Event{}, fmt.Errorf("%w: missing entity id", ErrMalformedEvent)
	}
	if ev.Status != nil && !ev.Status.Valid() {
		return Event{}, fmt.Errorf("%w: unknown status %q", ErrMalformedEvent, *ev.Status)
	}
	return ev, nil
}

// String renders a compact description for logs.
func (e *Event) String() string {
	return string(e.Kind) + "#" + string(e.ID) + "@" + strconv.FormatInt(e.TS, 10)
}
