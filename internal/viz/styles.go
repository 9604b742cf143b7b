package viz

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/jellosim/internal/worldfile"
)

var (
	GlassPanel = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444466")).
			Padding(1, 2)

	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#00ffff"))

	Subtle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666688"))

	StatusRunning = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00ff88"))

	StatusPaused = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ffaa00"))

	StatusStopped = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ff4444"))

	MetricValue = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00ccff")).
			Bold(true)

	MetricLabel = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888899")).
			Width(14)

	KeyHint = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666688")).
		Italic(true)

	GraphStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("49")).
			Padding(1, 0)

	SparkHigh = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ff88"))
	SparkMid  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffcc00"))
	SparkLow  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff4444"))
)

// ProgressBar renders a bar filled to percent (0..1) of width cells.
func ProgressBar(percent float64, width int) string {
	filled := int(percent * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)

	if percent > 0.8 {
		return SparkHigh.Render(bar)
	} else if percent > 0.4 {
		return SparkMid.Render(bar)
	}
	return SparkLow.Render(bar)
}

// Row renders one label/value line.
func Row(label, value string) string {
	return MetricLabel.Render(label) + MetricValue.Render(value)
}

// Summary describes a world's parameters and lattice in a bordered panel.
func Summary(name string, w *worldfile.World) string {
	p := w.Params
	var s strings.Builder
	s.WriteString(Title.Render(name) + "\n\n")
	s.WriteString(Row("integrator", p.Integrator.String()) + "\n")
	s.WriteString(Row("dt", fmt.Sprintf("%g", p.Dt)) + "\n")
	s.WriteString(Row("substeps", fmt.Sprintf("%d", p.Substeps)) + "\n")
	s.WriteString(Row("lattice", fmt.Sprintf("%d³ points", w.Lattice.N)) + "\n")
	s.WriteString(Row("mass", fmt.Sprintf("%g", p.Mass)) + "\n")
	s.WriteString(Row("elastic", fmt.Sprintf("k=%g d=%g", p.KElastic, p.DElastic)) + "\n")
	s.WriteString(Row("collision", fmt.Sprintf("k=%g d=%g", p.KCollision, p.DCollision)) + "\n")
	if p.Plane != nil {
		s.WriteString(Row("plane", fmt.Sprintf("%g %g %g %g", p.Plane.A, p.Plane.B, p.Plane.C, p.Plane.D)) + "\n")
	} else {
		s.WriteString(Row("plane", "none") + "\n")
	}
	if p.Resolution > 0 {
		s.WriteString(Row("field", fmt.Sprintf("%d³ samples", p.Resolution)))
	} else {
		s.WriteString(Row("field", "none"))
	}
	return GlassPanel.Render(s.String())
}
