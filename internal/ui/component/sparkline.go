package component

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rovshanmuradov/solana-dashboard/internal/ui/style"
)

var sparkChars = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Sparkline renders a series of closes as a one-line block graph.
type Sparkline struct {
	data  []float64
	width int
	color lipgloss.Color
}

// NewSparkline creates a sparkline with the given width in cells.
func NewSparkline(width int) *Sparkline {
	return &Sparkline{
		width: width,
		color: style.DefaultPalette().Primary,
	}
}

// SetData replaces the plotted series. Only the last width points render.
func (s *Sparkline) SetData(data []float64) *Sparkline {
	if len(data) > s.width {
		data = data[len(data)-s.width:]
	}
	s.data = make([]float64, len(data))
	copy(s.data, data)
	return s
}

// SetWidth resizes the sparkline, trimming data from the left if needed.
// Narrow terminals can push the requested width below zero; it clamps to
// zero so View never repeats a negative count.
func (s *Sparkline) SetWidth(width int) *Sparkline {
	if width < 0 {
		width = 0
	}
	s.width = width
	if len(s.data) > width {
		s.data = s.data[len(s.data)-width:]
	}
	return s
}

// SetColor overrides the plot color.
func (s *Sparkline) SetColor(color lipgloss.Color) *Sparkline {
	s.color = color
	return s
}

// ChangePercent returns the percent move from the first plotted point to the
// last, zero when undefined.
func (s *Sparkline) ChangePercent() float64 {
	if len(s.data) < 2 || s.data[0] == 0 {
		return 0
	}
	return (s.data[len(s.data)-1] - s.data[0]) / s.data[0] * 100
}

// Trend returns an arrow describing the overall direction.
func (s *Sparkline) Trend() string {
	change := s.ChangePercent()
	switch {
	case change > 0.1:
		return "↗"
	case change < -0.1:
		return "↘"
	default:
		return "→"
	}
}

// View renders the sparkline.
func (s *Sparkline) View() string {
	render := lipgloss.NewStyle().Foreground(s.color).Render
	if len(s.data) == 0 {
		return render(strings.Repeat("▁", s.width))
	}

	min, max := s.data[0], s.data[0]
	for _, v := range s.data {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}

	var b strings.Builder
	if min == max {
		b.WriteString(strings.Repeat("▄", len(s.data)))
	} else {
		for _, v := range s.data {
			idx := int((v - min) / (max - min) * float64(len(sparkChars)-1))
			if idx < 0 {
				idx = 0
			}
			if idx >= len(sparkChars) {
				idx = len(sparkChars) - 1
			}
			b.WriteRune(sparkChars[idx])
		}
	}
	if pad := s.width - len(s.data); pad > 0 {
		b.WriteString(strings.Repeat(" ", pad))
	}
	return render(b.String())
}
