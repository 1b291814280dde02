package reconcile

import (
	"math"
	"sort"

	"github.com/rovshanmuradov/solana-dashboard/internal/domain"
)

// Filter selects which lifecycle bucket an aggregate covers.
type Filter string

const (
	FilterAll Filter = "all"
	// FilterOpen covers pending, open and partially closed positions.
	FilterOpen Filter = "open"
	// FilterClosed covers closed and failed positions.
	FilterClosed Filter = "closed"
)

// SortKey orders aggregate items, always strictly descending.
type SortKey string

const (
	SortTime SortKey = "time"
	SortPnL  SortKey = "pnl"
	SortROI  SortKey = "roi"
)

// Totals is the fold over a filtered set. UnrealizedPnL only counts
// positions that are still open; settled positions contribute through
// RealizedPnL.
type Totals struct {
	InvestedSOL   float64
	RealizedPnL   float64
	UnrealizedPnL float64
	TotalPnL      float64
	Count         int
}

// Aggregate is a point-in-time read model for one dashboard view.
type Aggregate struct {
	Items  []domain.Position
	Totals Totals
}

// Aggregate builds the filtered, sorted view plus its totals. It is pure:
// two calls without an intervening mutation return identical output, and the
// returned positions are copies the caller may hold as long as it likes.
func (s *Store) Aggregate(filter Filter, key SortKey) Aggregate {
	s.mu.RLock()
	items := make([]domain.Position, 0, len(s.positions))
	for _, p := range s.positions {
		if !matches(filter, p) {
			continue
		}
		items = append(items, *p)
	}
	s.mu.RUnlock()

	sortItems(items, key)

	var t Totals
	for i := range items {
		p := &items[i]
		t.InvestedSOL += p.InvestedSOL
		t.RealizedPnL += p.RealizedPnL
		if p.OpenLike() {
			t.UnrealizedPnL += p.UnrealizedPnL
		}
		t.TotalPnL += p.TotalPnL
	}
	t.Count = len(items)

	return Aggregate{Items: items, Totals: t}
}

func matches(filter Filter, p *domain.Position) bool {
	switch filter {
	case FilterOpen:
		return p.OpenLike()
	case FilterClosed:
		return p.Status.Terminal()
	default:
		return true
	}
}

// sortItems orders strictly descending by the key, with the position ID as
// a deterministic tiebreak so map iteration order never leaks into output.
func sortItems(items []domain.Position, key SortKey) {
	sort.Slice(items, func(i, j int) bool {
		a, b := &items[i], &items[j]
		switch key {
		case SortPnL:
			if a.TotalPnL != b.TotalPnL {
				return a.TotalPnL > b.TotalPnL
			}
		case SortROI:
			ra, rb := roiValue(a), roiValue(b)
			if ra != rb {
				return ra > rb
			}
		default: // SortTime
			ta, tb := a.ActiveSince(), b.ActiveSince()
			if !ta.Equal(tb) {
				return ta.After(tb)
			}
		}
		return a.ID < b.ID
	})
}

// roiValue treats an absent ROI as minus infinity so undefined entries sink
// to the bottom of a descending sort.
func roiValue(p *domain.Position) float64 {
	if p.ROIPercent == nil {
		return math.Inf(-1)
	}
	return *p.ROIPercent
}
