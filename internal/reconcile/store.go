// Package reconcile merges authoritative snapshots with the live event feed
// into a single source of truth for dashboard state.
//
// The feed gives no ordering or dedup guarantees, so everything here is
// written to be idempotent: applying the same event twice leaves the same
// state as applying it once, and a stale price tick can never claw back a
// position that already closed.
package reconcile

import (
	"math"
	"sync"
	"time"

	"github.com/rovshanmuradov/solana-dashboard/internal/domain"
	"go.uber.org/zap"
)

// ApplyResult reports what an event did to the collection.
type ApplyResult int

const (
	// Applied means the entity existed and the patch landed.
	Applied ApplyResult = iota
	// Deferred means a created event referenced an unseen entity; the event
	// alone cannot materialize a full record, so a snapshot re-fetch was
	// requested instead.
	Deferred
	// Unknown means a non-created event referenced an unseen entity and was
	// ignored; the feed is eventually consistent and the snapshot will catch
	// up.
	Unknown
	// Dropped means the event was discarded by policy, e.g. a price tick for
	// a closed position.
	Dropped
)

func (r ApplyResult) String() string {
	switch r {
	case Applied:
		return "applied"
	case Deferred:
		return "deferred"
	case Unknown:
		return "unknown"
	case Dropped:
		return "dropped"
	}
	return "invalid"
}

// RefreshFunc requests a full snapshot re-fetch. The store calls it at most
// once per pending refresh; LoadSnapshot re-arms it.
type RefreshFunc func()

// Store owns the canonical position collection. All mutation goes through
// LoadSnapshot and ApplyEvent; readers get copies, never references.
type Store struct {
	mu             sync.RWMutex
	positions      map[string]*domain.Position
	refresh        RefreshFunc
	refreshPending bool
	logger         *zap.Logger
}

// NewStore creates an empty position store. refresh may be nil when the
// caller has no snapshot source (tests, replays).
func NewStore(refresh RefreshFunc, logger *zap.Logger) *Store {
	return &Store{
		positions: make(map[string]*domain.Position),
		refresh:   refresh,
		logger:    logger,
	}
}

// LoadSnapshot replaces the entire collection with an authoritative bulk
// read. Call it at session start or on explicit manual refresh only; on
// fetch failure simply don't call it and prior state survives.
//
// The snapshot's stated unrealized PnL is kept as-is, same rule as an event
// that carries the field: the server's number wins over the local price
// formula. Totals and ROI are still derived locally, the wire copies are
// untrusted.
func (s *Store) LoadSnapshot(entities []domain.Position) {
	next := make(map[string]*domain.Position, len(entities))
	for i := range entities {
		p := entities[i]
		derive(&p, true, false)
		next[p.ID] = &p
	}

	s.mu.Lock()
	s.positions = next
	s.refreshPending = false
	s.mu.Unlock()

	s.logger.Info("position snapshot loaded", zap.Int("count", len(entities)))
}

// ApplyEvent merges one feed event into the collection. Only fields present
// in the payload are written; absent fields are never reset.
func (s *Store) ApplyEvent(ev domain.Event) ApplyResult {
	id := string(ev.ID)

	s.mu.Lock()
	p, ok := s.positions[id]
	if !ok {
		res := Unknown
		if ev.Kind == domain.EventCreated {
			res = Deferred
			s.requestRefreshLocked()
		}
		s.mu.Unlock()
		return res
	}

	res := s.applyLocked(p, ev)
	status := p.Status
	s.mu.Unlock()

	if res == Dropped {
		s.logger.Debug("event dropped by policy",
			zap.String("event", ev.String()),
			zap.String("status", string(status)))
	}
	return res
}

// requestRefreshLocked fires the refresh hook once per pending window so a
// burst of created events does not stampede the snapshot endpoint.
func (s *Store) requestRefreshLocked() {
	if s.refreshPending || s.refresh == nil {
		return
	}
	s.refreshPending = true
	go s.refresh()
}

func (s *Store) applyLocked(p *domain.Position, ev domain.Event) ApplyResult {
	if p.Status.Terminal() {
		switch ev.Kind {
		case domain.EventTradeExecuted, domain.EventClosed:
			// Settlement tied to the close may still land; everything
			// price-derived is frozen.
			applySettlement(p, ev)
			derive(p, true, false)
			return Applied
		default:
			return Dropped
		}
	}

	priceTouched := false
	explicitUnrealized := ev.UnrealizedPnL != nil

	switch ev.Kind {
	case domain.EventPriceUpdate:
		priceTouched = patchFloat(&p.CurrentPrice, ev.CurrentPrice) || priceTouched
		priceTouched = patchFloat(&p.Balance, ev.Balance) || priceTouched
		patchFloat(&p.UnrealizedPnL, ev.UnrealizedPnL)
		// price_update never changes status

	case domain.EventCreated, domain.EventTradeExecuted:
		priceTouched = patchFloat(&p.Balance, ev.Balance) || priceTouched
		priceTouched = patchFloat(&p.AvgEntryPrice, ev.AvgEntryPrice) || priceTouched
		priceTouched = patchFloat(&p.CurrentPrice, ev.CurrentPrice) || priceTouched
		patchFloat(&p.InvestedSOL, ev.InvestedSOL)
		patchFloat(&p.RealizedPnL, ev.RealizedPnL)
		patchFloat(&p.UnrealizedPnL, ev.UnrealizedPnL)
		applyStatus(p, ev.Status)
		if ev.Kind == domain.EventTradeExecuted && p.FirstTradeAt.IsZero() {
			if t := ev.Timestamp(); !t.IsZero() {
				p.FirstTradeAt = t
			}
		}

	case domain.EventClosed:
		applySettlement(p, ev)
		status := domain.PositionClosed
		if ev.Status != nil && ev.Status.Terminal() {
			status = *ev.Status
		}
		p.Status = status
		if p.ClosedAt.IsZero() {
			if t := ev.Timestamp(); !t.IsZero() {
				p.ClosedAt = t
			}
		}

	case domain.EventAlert:
		patchFloat(&p.StopLoss, ev.StopLoss)
		patchFloat(&p.TakeProfit, ev.TakeProfit)
		patchFloat(&p.PeakPrice, ev.PeakPrice)
		if ev.TrailingArmed != nil {
			p.TrailingArmed = *ev.TrailingArmed
		}
	}

	derive(p, explicitUnrealized, priceTouched)
	return Applied
}

// applySettlement writes the fields a close is allowed to carry.
func applySettlement(p *domain.Position, ev domain.Event) {
	patchFloat(&p.RealizedPnL, ev.RealizedPnL)
	patchFloat(&p.Balance, ev.Balance)
	if ev.CloseReason != nil {
		p.CloseReason = *ev.CloseReason
	}
}

// applyStatus trusts the event's stated status for live positions. A stated
// terminal status is a real transition; a backward move is the feed's
// explicit out-of-order correction and is taken as stated.
func applyStatus(p *domain.Position, status *domain.PositionStatus) {
	if status == nil {
		return
	}
	p.Status = *status
	if status.Terminal() && p.ClosedAt.IsZero() {
		p.ClosedAt = time.Now()
	}
}

// derive recomputes the dependent fields after any successful merge.
//
// The price formula runs only when a price-bearing field changed and the
// event did not state unrealized PnL outright: a stated value is the
// server's number and wins over the local estimate.
func derive(p *domain.Position, explicitUnrealized, priceTouched bool) {
	if priceTouched && !explicitUnrealized && !p.Status.Terminal() {
		p.UnrealizedPnL = (p.CurrentPrice - p.AvgEntryPrice) * p.Balance
	}
	if !p.Status.Terminal() && p.CurrentPrice > p.PeakPrice {
		p.PeakPrice = p.CurrentPrice
	}

	p.TotalPnL = p.RealizedPnL + p.UnrealizedPnL

	if p.InvestedSOL > 0 {
		roi := p.TotalPnL / p.InvestedSOL * 100
		p.ROIPercent = &roi
	} else {
		p.ROIPercent = nil
	}
}

// patchFloat copies a patch field when it is present and finite. Returns
// whether the destination changed.
func patchFloat(dst *float64, src *float64) bool {
	if src == nil || math.IsNaN(*src) || math.IsInf(*src, 0) {
		return false
	}
	if *dst == *src {
		return false
	}
	*dst = *src
	return true
}

// Get returns a copy of one position.
func (s *Store) Get(id string) (domain.Position, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.positions[id]
	if !ok {
		return domain.Position{}, false
	}
	return *p, true
}

// Len returns the number of resident positions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.positions)
}
