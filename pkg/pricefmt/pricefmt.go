// Package pricefmt maps price magnitudes to display precision.
//
// Memecoin prices span many orders of magnitude (a bonding-curve token can
// trade at 3e-8 SOL), so a fixed decimal count either truncates sub-cent
// tokens to zero or drowns normal prices in noise. The threshold table here
// is shared by the chart precision derivation and by all price labels, so
// both always agree on how many decimals a given magnitude gets.
package pricefmt

import (
	"fmt"
	"math"
	"strconv"
)

// scientificBelow is the magnitude under which fixed-point output stops
// being readable and scientific notation takes over.
const scientificBelow = 1e-12

// threshold maps an upper price bound to the decimal count used below it.
type threshold struct {
	upper    float64
	decimals int
}

// Ordered ascending; the first bucket whose upper bound exceeds the price
// wins. Prices >= 1 always land in the final two-decimal bucket.
var thresholds = []threshold{
	{1e-7, 12},
	{1e-6, 10},
	{1e-5, 8},
	{1e-4, 7},
	{1e-3, 6},
	{1e-2, 5},
	{1e-1, 4},
	{1, 3},
}

// Precision returns the decimal count and minimum tick for a price
// magnitude. The tick is 10^-decimals, the smallest distinguishable move at
// that precision. Non-finite or non-positive prices fall into the coarsest
// bucket.
func Precision(price float64) (decimals int, minMove float64) {
	decimals = 2
	if math.IsInf(price, 0) || math.IsNaN(price) || price <= 0 {
		return decimals, math.Pow(10, -float64(decimals))
	}
	for _, t := range thresholds {
		if price < t.upper {
			decimals = t.decimals
			break
		}
	}
	return decimals, math.Pow(10, -float64(decimals))
}

// Format renders a price with magnitude-appropriate precision. Prices below
// 1e-12 switch to scientific notation with 4 significant digits; zero and
// invalid values render as plain zero.
func Format(price float64) string {
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return "0"
	}
	abs := math.Abs(price)
	if abs > 0 && abs < scientificBelow {
		return fmt.Sprintf("%.3e", price)
	}
	decimals, _ := Precision(abs)
	return strconv.FormatFloat(price, 'f', decimals, 64)
}

// FormatPercent renders a signed percentage with two decimals, the register
// used for PnL and gain columns.
func FormatPercent(pct float64) string {
	if math.IsNaN(pct) || math.IsInf(pct, 0) {
		return "—"
	}
	return fmt.Sprintf("%+.2f%%", pct)
}
