package pricefmt

import (
	"math"
	"testing"
)

func TestPrecisionBuckets(t *testing.T) {
	cases := []struct {
		price    float64
		decimals int
	}{
		{5e-8, 12},
		{5e-7, 10},
		{5e-6, 8},
		{5e-5, 7},
		{5e-4, 6},
		{5e-3, 5},
		{5e-2, 4},
		{0.5, 3},
		{1, 2},
		{142.7, 2},
	}

	for _, c := range cases {
		decimals, minMove := Precision(c.price)
		if decimals != c.decimals {
			t.Errorf("Precision(%g): expected %d decimals, got %d", c.price, c.decimals, decimals)
		}
		want := math.Pow(10, -float64(c.decimals))
		if math.Abs(minMove-want) > 1e-15 {
			t.Errorf("Precision(%g): expected tick %g, got %g", c.price, want, minMove)
		}
	}
}

func TestPrecisionMonotone(t *testing.T) {
	// Smaller prices never get fewer decimals than larger ones.
	prices := []float64{5e-8, 5e-7, 5e-6, 5e-5, 5e-4, 5e-3, 5e-2, 0.5, 2}
	prev := math.MaxInt32
	for _, p := range prices {
		d, _ := Precision(p)
		if d > prev {
			t.Errorf("precision not monotone at %g: %d > %d", p, d, prev)
		}
		prev = d
	}
}

func TestPrecisionInvalidInput(t *testing.T) {
	for _, p := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		d, _ := Precision(p)
		if d != 2 {
			t.Errorf("Precision(%v): expected fallback bucket, got %d decimals", p, d)
		}
	}
}

func TestFormat(t *testing.T) {
	cases := []struct {
		price float64
		want  string
	}{
		{142.7, "142.70"},
		{0.5, "0.500"},
		{0.052, "0.0520"},
		{0.00003, "0.0000300"},
		{3.2e-8, "0.000000032000"},
		{0, "0.00"},
	}
	for _, c := range cases {
		if got := Format(c.price); got != c.want {
			t.Errorf("Format(%g): expected %q, got %q", c.price, c.want, got)
		}
	}
}

func TestFormatScientificBelowThreshold(t *testing.T) {
	got := Format(3.25e-13)
	if got != "3.250e-13" {
		t.Errorf("expected scientific notation with 4 significant digits, got %q", got)
	}
}

func TestFormatNonFinite(t *testing.T) {
	if got := Format(math.NaN()); got != "0" {
		t.Errorf("Format(NaN): expected \"0\", got %q", got)
	}
	if got := Format(math.Inf(-1)); got != "0" {
		t.Errorf("Format(-Inf): expected \"0\", got %q", got)
	}
}
