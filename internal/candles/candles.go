// Package candles turns raw OHLCV feed data into series safe for charting.
//
// Upstream candle endpoints return whatever the aggregator happened to
// record: nulls, zero prices, inverted high/low pairs, shuffled order. The
// normalizer filters, coerces and sorts so the chart boundary only ever sees
// structurally valid ascending-time data, and computes the display precision
// the chart and tooltips should use for this particular token's magnitude.
package candles

import "time"

// RawCandle is one OHLCV sample exactly as the snapshot endpoint delivered
// it. Pointer fields capture nulls; nothing here is trusted yet.
type RawCandle struct {
	Timestamp *int64   `json:"timestamp"` // unix seconds
	Open      *float64 `json:"open"`
	High      *float64 `json:"high"`
	Low       *float64 `json:"low"`
	Close     *float64 `json:"close"`
	Volume    *float64 `json:"volume"`
	Pool      string   `json:"pool,omitempty"`
}

// Candle is a validated sample. All four prices are finite and positive and
// satisfy low <= open,close <= high.
type Candle struct {
	Timestamp int64
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
	Pool      string
}

// Time returns the candle timestamp as a time.Time.
func (c Candle) Time() time.Time {
	return time.Unix(c.Timestamp, 0)
}

// Stats summarizes a cleaned series for the header and tooltip widgets.
type Stats struct {
	LatestClose   float64
	ChangePercent float64 // first open to latest close
	High          float64
	Low           float64
	TotalVolume   float64
	Count         int
}

// Series is the normalizer output handed to the chart boundary.
//
// Input counts how many raw samples arrived, so a consumer can tell "no
// candles yet" (Input == 0) from "the feed sent only garbage" (Input > 0,
// Candles empty) and word the empty state accordingly.
type Series struct {
	Candles   []Candle
	Precision int     // decimals for price labels
	MinMove   float64 // smallest tick at that precision
	Stats     Stats
	Input     int
	Dropped   int
}

// Empty reports whether there is nothing to chart.
func (s *Series) Empty() bool {
	return len(s.Candles) == 0
}

// NoValidData reports whether input arrived but none of it survived
// validation, the state that warrants a "feed data invalid" notice instead
// of a blank chart.
func (s *Series) NoValidData() bool {
	return s.Input > 0 && len(s.Candles) == 0
}
