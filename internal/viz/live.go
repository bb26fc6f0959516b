package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/ccdsim/internal/dynamo"
	"github.com/san-kum/ccdsim/internal/engine"
	"github.com/san-kum/ccdsim/internal/metrics"
	"golang.org/x/exp/constraints"
)

const (
	width           = 60
	height          = 20
	historyCapacity = 600
	tickRate        = time.Second / 30
)

type TickMsg time.Time

// LiveModel steps a particle system once per tick and draws its first two
// or three axes. It registers itself as an event observer on the stepper.
type LiveModel[F constraints.Float] struct {
	name      string
	stepper   *engine.Stepper[F]
	initial   []dynamo.Particle[F]
	particles []dynamo.Particle[F]
	active    []int
	timestep  F
	maxFrames int

	frame        int
	clock        float64
	events       int
	anchorEvents int
	lastContact  *dynamo.Event[F]
	stats        engine.StepStats
	energy       []float64
	err          error

	canvas   *Canvas
	camera   *Camera
	scale    float64
	running  bool
	showHelp bool
}

// NewLiveModel animates particles with stepper. active nil means all
// particles; maxFrames 0 runs until quit.
func NewLiveModel[F constraints.Float](name string, stepper *engine.Stepper[F], particles []dynamo.Particle[F], active []int, timestep F, maxFrames int) *LiveModel[F] {
	if active == nil {
		active = dynamo.AllIndices(len(particles))
	}

	m := &LiveModel[F]{
		name:      name,
		stepper:   stepper,
		initial:   dynamo.Clone(particles),
		particles: dynamo.Clone(particles),
		active:    active,
		timestep:  timestep,
		maxFrames: maxFrames,
		canvas:    NewCanvas(width, height),
		camera:    NewCamera(),
		running:   true,
		energy:    make([]float64, 0, historyCapacity),
	}
	m.fit()
	m.energy = append(m.energy, metrics.TotalEnergy(m.particles))
	stepper.AddObserver(m)
	return m
}

func (m *LiveModel[F]) OnEvent(ev dynamo.Event[F]) {
	m.events++
	if ev.Anchor {
		m.anchorEvents++
	}
	m.lastContact = &ev
}

func (m *LiveModel[F]) fit() {
	points := make([][]float64, len(m.particles))
	for i, p := range m.particles {
		points[i] = p.Pos.Float64()
	}
	m.scale = m.camera.Fit(points, m.canvas.DotsWide(), m.canvas.DotsHigh())
}

func tick() tea.Cmd {
	return tea.Tick(tickRate, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m *LiveModel[F]) Init() tea.Cmd {
	return tick()
}

func (m *LiveModel[F]) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "n":
			if !m.running {
				m.step()
			}
		case "r":
			m.reset()
		case "t":
			NextTheme()
		case "x":
			m.camera.RotateX(0.1)
		case "X":
			m.camera.RotateX(-0.1)
		case "y":
			m.camera.RotateY(0.1)
		case "Y":
			m.camera.RotateY(-0.1)
		case "+", "=":
			m.camera.ZoomIn()
		case "-", "_":
			m.camera.ZoomOut()
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.running {
			m.step()
		}
		return m, tick()
	}
	return m, nil
}

func (m *LiveModel[F]) done() bool {
	return m.err != nil || (m.maxFrames > 0 && m.frame >= m.maxFrames)
}

func (m *LiveModel[F]) step() {
	if m.done() {
		m.running = false
		return
	}

	stats, err := m.stepper.Step(m.particles, m.active, m.timestep)
	if err != nil {
		m.err = &dynamo.SimulationError{Frame: m.frame + 1, Time: m.clock, Wrapped: err}
		m.running = false
		return
	}

	m.frame++
	m.clock = float64(m.frame) * float64(m.timestep)
	m.stats = stats

	if len(m.energy) == historyCapacity {
		copy(m.energy, m.energy[1:])
		m.energy = m.energy[:historyCapacity-1]
	}
	m.energy = append(m.energy, metrics.TotalEnergy(m.particles))
}

func (m *LiveModel[F]) reset() {
	m.particles = dynamo.Clone(m.initial)
	m.frame, m.clock = 0, 0
	m.events, m.anchorEvents = 0, 0
	m.lastContact = nil
	m.stats = engine.StepStats{}
	m.err = nil
	m.energy = append(m.energy[:0], metrics.TotalEnergy(m.particles))
	m.running = true
}

func (m *LiveModel[F]) draw() {
	m.canvas.Clear()
	w, h := m.canvas.DotsWide(), m.canvas.DotsHigh()

	for _, p := range m.particles {
		x, y, _ := m.camera.Project(Vec3From(p.Pos.Float64()), w, h, m.scale)
		m.canvas.Circle(x, y, float64(p.Radius)*m.scale*m.camera.Zoom)
	}
}

func (m *LiveModel[F]) View() string {
	m.draw()

	color := CurrentTheme.Particle
	if m.stepper.Options().Anchor {
		color = CurrentTheme.Anchor
	}
	canvasView := canvasStyle(color).Render(m.canvas.String())

	var s strings.Builder
	s.WriteString(titleStyle().Render(strings.ToUpper(m.name)))
	s.WriteString("\n")

	status := StatusRunning.Render("running")
	switch {
	case m.err != nil:
		status = StatusFailed.Render("failed")
	case m.done():
		status = StatusPaused.Render("finished")
	case !m.running:
		status = StatusPaused.Render("paused")
	}
	s.WriteString(status + "\n\n")

	row := func(label, value string) {
		s.WriteString(labelStyle().Render(label) + valueStyle().Render(value) + "\n")
	}
	row("frame", fmt.Sprintf("%d", m.frame))
	row("time", fmt.Sprintf("%.3f", m.clock))
	row("particles", fmt.Sprintf("%d (%d active)", len(m.particles), len(m.active)))
	row("dims", fmt.Sprintf("%d", len(m.particles[0].Pos)))
	row("contacts", fmt.Sprintf("%d", m.events))
	if m.stepper.Options().Anchor {
		row("anchor", fmt.Sprintf("%d", m.anchorEvents))
	}
	row("iterations", fmt.Sprintf("%d", m.stats.Iterations))
	row("tree nodes", fmt.Sprintf("%d (depth %d)", m.stats.Nodes, m.stats.Deepest))
	if m.lastContact != nil {
		row("last", fmt.Sprintf("%d-%d", m.lastContact.A, m.lastContact.B))
	}

	e0, e := m.energy[0], m.energy[len(m.energy)-1]
	row("energy", fmt.Sprintf("%.5g", e))
	if e0 != 0 {
		row("drift", fmt.Sprintf("%.2e", math.Abs(e-e0)/math.Abs(e0)))
	}
	if m.maxFrames > 0 {
		row("progress", ProgressBar(float64(m.frame)/float64(m.maxFrames), 20))
	}

	if len(m.energy) > 1 {
		s.WriteString("\n")
		s.WriteString(asciigraph.Plot(m.energy, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("kinetic energy")))
		s.WriteString("\n")
	}
	if m.err != nil {
		s.WriteString("\n" + StatusFailed.Render(m.err.Error()) + "\n")
	}

	if m.showHelp {
		s.WriteString("\n" + KeyHint.Render("space pause  n step  r reset  t theme\nx/y rotate  +/- zoom  q quit"))
	} else {
		s.WriteString("\n" + KeyHint.Render("? help"))
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsStyle.Render(s.String()))
}

// Frame returns the number of steps taken since the last reset.
func (m *LiveModel[F]) Frame() int { return m.frame }

// Err returns the error that stopped the animation, if any.
func (m *LiveModel[F]) Err() error { return m.err }

// RunLive runs m full screen until the user quits.
func RunLive[F constraints.Float](m *LiveModel[F]) error {
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return err
	}
	return m.Err()
}
