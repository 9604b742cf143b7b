package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/jellosim/internal/dynamo"
	"github.com/san-kum/jellosim/internal/physics"
	"github.com/san-kum/jellosim/internal/sim"
)

const (
	historyCapacity = 600
	tickRate        = time.Second / 30
)

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(tickRate, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Monitor advances a simulation on every tick and shows its progress.
type Monitor struct {
	title   string
	sim     *sim.Simulator
	lattice *dynamo.Lattice
	metrics []dynamo.Metric
	cfg     sim.Config
	perTick int
	step    int
	paused  bool
	err     error
	energy  []float64
}

// NewMonitor watches s advancing l. Every tick advances cfg.Every steps, or
// the world's Substeps when Every is zero.
func NewMonitor(title string, s *sim.Simulator, l *dynamo.Lattice, cfg sim.Config, metrics []dynamo.Metric) Monitor {
	perTick := cfg.Every
	if perTick == 0 {
		perTick = max(s.Params().Substeps, 1)
	}
	m := Monitor{
		title:   title,
		sim:     s,
		lattice: l,
		metrics: metrics,
		cfg:     cfg,
		perTick: perTick,
		energy:  make([]float64, 0, historyCapacity),
	}
	m.observe()
	return m
}

func (m Monitor) Init() tea.Cmd {
	return tick()
}

func (m Monitor) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "p", " ":
			m.paused = !m.paused
		case "n":
			if m.paused {
				m.advance(1)
			}
		}
	case TickMsg:
		if !m.paused {
			m.advance(m.perTick)
		}
		return m, tick()
	}
	return m, nil
}

// Done reports whether the run has used all its steps or stopped early.
func (m Monitor) Done() bool {
	return m.err != nil || m.step >= m.cfg.Steps
}

func (m Monitor) Step() int    { return m.step }
func (m Monitor) Err() error   { return m.err }
func (m Monitor) Paused() bool { return m.paused }

func (m *Monitor) advance(n int) {
	for i := 0; i < n && !m.Done(); i++ {
		m.sim.Step(m.lattice, 1)
		m.step++
		if err := sim.CheckState(m.lattice, m.cfg.Bound); err != nil {
			m.err = &dynamo.SimulationError{Step: m.step, Time: m.time(), Wrapped: err}
			return
		}
	}
	m.observe()
}

func (m *Monitor) observe() {
	t := m.time()
	for _, metric := range m.metrics {
		metric.Observe(m.lattice, t)
	}
	if len(m.energy) == historyCapacity {
		m.energy = m.energy[1:]
	}
	m.energy = append(m.energy, physics.TotalEnergy(m.lattice, m.sim.Params()))
}

func (m Monitor) time() float64 {
	return float64(m.step) * m.sim.Params().Dt
}

func (m Monitor) status() string {
	switch {
	case m.err != nil:
		return StatusStopped.Render("STOPPED")
	case m.step >= m.cfg.Steps:
		return StatusRunning.Render("DONE")
	case m.paused:
		return StatusPaused.Render("PAUSED")
	}
	return StatusRunning.Render("RUNNING")
}

func (m Monitor) View() string {
	var s strings.Builder
	s.WriteString(Title.Render(strings.ToUpper(m.title)) + "  " + m.status() + "\n")
	s.WriteString(Subtle.Render(fmt.Sprintf("%d³ points, %v, dt=%g", m.lattice.N, m.sim.Params().Integrator, m.sim.Params().Dt)) + "\n\n")

	progress := float64(m.step) / float64(m.cfg.Steps)
	s.WriteString(ProgressBar(progress, 30) + fmt.Sprintf(" %d/%d\n\n", m.step, m.cfg.Steps))

	s.WriteString(Row("time", fmt.Sprintf("%.4fs", m.time())) + "\n")
	for _, metric := range m.metrics {
		s.WriteString(Row(metric.Name(), fmt.Sprintf("%.6g", metric.Value())) + "\n")
	}
	if m.err != nil {
		s.WriteString("\n" + StatusStopped.Render(m.err.Error()) + "\n")
	}

	stats := GlassPanel.Render(s.String())

	graph := ""
	if len(m.energy) > 1 {
		graph = GraphStyle.Render(asciigraph.Plot(m.energy,
			asciigraph.Height(8),
			asciigraph.Width(50),
			asciigraph.Caption("total energy"),
		))
	}

	help := KeyHint.Render("p: pause  n: step  q: quit")
	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Top, stats, graph),
		help,
	)
}
