package candles

import (
	"math"
	"sort"

	"github.com/rovshanmuradov/solana-dashboard/pkg/pricefmt"
)

// Normalize converts a raw candle sequence into a clean ascending-time
// series with a magnitude-appropriate precision. Invalid entries are
// counted and skipped, never fatal; an empty input yields an empty series.
func Normalize(raw []RawCandle) *Series {
	s := &Series{Input: len(raw)}

	cleaned := make([]Candle, 0, len(raw))
	for _, rc := range raw {
		c, ok := validate(rc)
		if !ok {
			s.Dropped++
			continue
		}
		cleaned = append(cleaned, c)
	}

	// Stable sort: same-timestamp candles keep arrival order. The feed may
	// emit duplicates; collapsing them is the aggregator's call, not ours.
	sort.SliceStable(cleaned, func(i, j int) bool {
		return cleaned[i].Timestamp < cleaned[j].Timestamp
	})
	s.Candles = cleaned

	if len(cleaned) == 0 {
		s.Precision, s.MinMove = pricefmt.Precision(0)
		return s
	}

	s.Precision, s.MinMove = pricefmt.Precision(minClose(cleaned))
	s.Stats = computeStats(cleaned)
	return s
}

// validate applies the structural invariants. Volume is the one field that
// never rejects a candle: missing or non-finite volume becomes zero.
func validate(rc RawCandle) (Candle, bool) {
	if rc.Timestamp == nil {
		return Candle{}, false
	}
	if rc.Open == nil || rc.High == nil || rc.Low == nil || rc.Close == nil {
		return Candle{}, false
	}

	o, h, l, cl := *rc.Open, *rc.High, *rc.Low, *rc.Close
	for _, v := range [4]float64{o, h, l, cl} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
			return Candle{}, false
		}
	}
	if h < l {
		return Candle{}, false
	}
	if h < o || h < cl {
		return Candle{}, false
	}
	if l > o || l > cl {
		return Candle{}, false
	}

	vol := 0.0
	if rc.Volume != nil && !math.IsNaN(*rc.Volume) && !math.IsInf(*rc.Volume, 0) {
		vol = *rc.Volume
	}

	return Candle{
		Timestamp: *rc.Timestamp,
		Open:      o,
		High:      h,
		Low:       l,
		Close:     cl,
		Volume:    vol,
		Pool:      rc.Pool,
	}, true
}

// minClose returns the smallest close in the cleaned series. Validation
// already guarantees every close is positive.
func minClose(cleaned []Candle) float64 {
	min := cleaned[0].Close
	for _, c := range cleaned[1:] {
		if c.Close < min {
			min = c.Close
		}
	}
	return min
}

func computeStats(cleaned []Candle) Stats {
	st := Stats{
		High:  cleaned[0].High,
		Low:   cleaned[0].Low,
		Count: len(cleaned),
	}
	for _, c := range cleaned {
		if c.High > st.High {
			st.High = c.High
		}
		if c.Low < st.Low {
			st.Low = c.Low
		}
		st.TotalVolume += c.Volume
	}

	firstOpen := cleaned[0].Open
	st.LatestClose = cleaned[len(cleaned)-1].Close
	st.ChangePercent = (st.LatestClose - firstOpen) / firstOpen * 100
	return st
}
