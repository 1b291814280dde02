package reconcile

import (
	"testing"
	"time"

	"github.com/rovshanmuradov/solana-dashboard/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func aggFixture(t *testing.T) *Store {
	t.Helper()
	s := NewStore(nil, zap.NewNop())
	s.LoadSnapshot([]domain.Position{
		{
			ID: "a", Status: domain.PositionOpen,
			InvestedSOL: 1, RealizedPnL: 0, UnrealizedPnL: 0.5,
			FirstTradeAt: time.Unix(100, 0),
		},
		{
			ID: "b", Status: domain.PositionPending,
			InvestedSOL:  2,
			DiscoveredAt: time.Unix(400, 0), // no first trade yet
		},
		{
			ID: "c", Status: domain.PositionClosed,
			InvestedSOL: 3, RealizedPnL: 1.5,
			FirstTradeAt: time.Unix(200, 0),
		},
		{
			ID: "d", Status: domain.PositionFailed,
			InvestedSOL:  0,
			DiscoveredAt: time.Unix(300, 0),
		},
	})
	return s
}

func TestAggregateFilters(t *testing.T) {
	s := aggFixture(t)

	all := s.Aggregate(FilterAll, SortTime)
	assert.Len(t, all.Items, 4)

	open := s.Aggregate(FilterOpen, SortTime)
	require.Len(t, open.Items, 2)
	for _, p := range open.Items {
		assert.True(t, p.OpenLike())
	}

	closed := s.Aggregate(FilterClosed, SortTime)
	require.Len(t, closed.Items, 2)
	for _, p := range closed.Items {
		assert.True(t, p.Status.Terminal())
	}
}

func TestAggregateSortTimeWithFallback(t *testing.T) {
	s := aggFixture(t)

	got := s.Aggregate(FilterAll, SortTime)

	// Descending by first trade when present, discovery otherwise:
	// b(400 discovery) > d(300 discovery) > c(200 trade) > a(100 trade).
	ids := []string{got.Items[0].ID, got.Items[1].ID, got.Items[2].ID, got.Items[3].ID}
	assert.Equal(t, []string{"b", "d", "c", "a"}, ids)
}

func TestAggregateSortPnL(t *testing.T) {
	s := aggFixture(t)

	got := s.Aggregate(FilterAll, SortPnL)

	for i := 1; i < len(got.Items); i++ {
		assert.GreaterOrEqual(t, got.Items[i-1].TotalPnL, got.Items[i].TotalPnL)
	}
	assert.Equal(t, "c", got.Items[0].ID)
}

func TestAggregateSortROIAbsentLast(t *testing.T) {
	s := aggFixture(t)

	got := s.Aggregate(FilterAll, SortROI)

	// d has zero invested, so its ROI is undefined and it sorts last.
	assert.Equal(t, "d", got.Items[len(got.Items)-1].ID)
	assert.Nil(t, got.Items[len(got.Items)-1].ROIPercent)
}

func TestAggregateTotals(t *testing.T) {
	s := aggFixture(t)

	got := s.Aggregate(FilterAll, SortTime)

	assert.InDelta(t, 6, got.Totals.InvestedSOL, 1e-9)
	assert.InDelta(t, 1.5, got.Totals.RealizedPnL, 1e-9)
	// Unrealized folds open-like positions only.
	assert.InDelta(t, 0.5, got.Totals.UnrealizedPnL, 1e-9)
	assert.InDelta(t, 2.0, got.Totals.TotalPnL, 1e-9)
	assert.Equal(t, 4, got.Totals.Count)
}

func TestAggregatePureAndIdempotent(t *testing.T) {
	s := aggFixture(t)

	first := s.Aggregate(FilterOpen, SortPnL)
	second := s.Aggregate(FilterOpen, SortPnL)

	require.Equal(t, len(first.Items), len(second.Items))
	for i := range first.Items {
		assert.Equal(t, first.Items[i].ID, second.Items[i].ID)
		assert.Equal(t, first.Items[i].TotalPnL, second.Items[i].TotalPnL)
	}
	assert.Equal(t, first.Totals, second.Totals)

	// Mutating the returned copy must not leak into the store.
	first.Items[0].TotalPnL = 1e9
	p, _ := s.Get(first.Items[0].ID)
	assert.NotEqual(t, 1e9, p.TotalPnL)
}
