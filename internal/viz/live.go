package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/physim/internal/metrics"
	"github.com/san-kum/physim/internal/sim"
)

const (
	width           = 72
	height          = 22
	historyCapacity = 600
	groundHalfSize  = 10
)

var (
	canvasStyle = lipgloss.NewStyle().Padding(1, 2)
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(46)
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

type TickMsg time.Time

// Model steps a physics manager on a timer and draws it.
type Model struct {
	manager  *sim.Manager
	name     string
	dt       float64
	duration float64

	canvas *Canvas
	camera *Camera
	wire   *Wireframe

	running  bool
	showHelp bool
	err      error

	activeHistory []float64
	energyHistory []float64
}

// NewModel watches m, stepping dt per tick until duration is reached. A
// zero duration runs until the user quits.
func NewModel(name string, m *sim.Manager, dt, duration float64) Model {
	cam := NewCamera(mgl32.Vec3{0, 4, 0})
	if m.NumObjects() > 0 {
		cam.Frame(m.SceneBounds())
	}
	model := Model{
		manager:       m,
		name:          name,
		dt:            dt,
		duration:      duration,
		canvas:        NewCanvas(width, height),
		camera:        cam,
		wire:          NewWireframe(),
		running:       true,
		activeHistory: make([]float64, 0, historyCapacity),
		energyHistory: make([]float64, 0, historyCapacity),
	}
	model.record()
	return model
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "n":
			if !m.running {
				m.step()
			}
		case "r":
			m.manager.Reset()
			m.err = nil
			m.activeHistory = m.activeHistory[:0]
			m.energyHistory = m.energyHistory[:0]
			m.record()
		case "t":
			NextTheme()
		case "x":
			m.camera.Orbit(0.1, 0)
		case "X":
			m.camera.Orbit(-0.1, 0)
		case "y":
			m.camera.Orbit(0, 0.1)
		case "Y":
			m.camera.Orbit(0, -0.1)
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

func (m *Model) done() bool {
	return m.duration > 0 && m.manager.WorldTime() >= m.duration-1e-9
}

func (m *Model) step() {
	if m.err != nil || m.done() {
		m.running = false
		return
	}
	if err := m.manager.StepPhysics(m.dt); err != nil {
		m.err = err
		m.running = false
		return
	}
	m.record()
}

func (m *Model) record() {
	f := m.manager.Frame()
	m.activeHistory = appendCapped(m.activeHistory, float64(f.Active))
	m.energyHistory = appendCapped(m.energyHistory, metrics.KineticEnergy(f))
}

func appendCapped(s []float64, v float64) []float64 {
	if len(s) >= historyCapacity {
		copy(s, s[1:])
		s = s[:len(s)-1]
	}
	return append(s, v)
}

func (m *Model) draw() {
	m.canvas.Clear()
	m.wire.Clear()
	m.wire.AddGrid(groundHalfSize, 5)
	for _, id := range m.manager.ObjectIDs() {
		bb, err := m.manager.CollisionShapeBounds(id)
		if err != nil {
			continue
		}
		m.wire.AddBox(bb)
	}
	Render3D(m.canvas, m.wire, m.camera)
}

func (m Model) status() string {
	switch {
	case m.err != nil:
		return StatusFailed.Render("FAILED")
	case m.done():
		return StatusPaused.Render("DONE")
	case m.running:
		return StatusRunning.Render("RUNNING")
	}
	return StatusPaused.Render("PAUSED")
}

func (m Model) View() string {
	m.draw()
	wire := lipgloss.NewStyle().Foreground(CurrentTheme.Wire)
	left := canvasStyle.Render(wire.Render(m.canvas.String()))

	var b strings.Builder
	b.WriteString(headerStyle.Render(strings.ToUpper(m.name)) + "\n")
	b.WriteString(row("status", m.status()) + "\n")
	b.WriteString(row("library", m.manager.PhysicsSimulationLibrary().String()) + "\n")
	b.WriteString(row("time", fmt.Sprintf("%.2fs", m.manager.WorldTime())) + "\n")
	b.WriteString(row("steps", fmt.Sprintf("%d", m.manager.Steps())) + "\n")
	b.WriteString(row("objects", fmt.Sprintf("%d", m.manager.NumObjects())) + "\n")
	b.WriteString(row("active", fmt.Sprintf("%d", m.manager.CheckActiveObjects())) + "\n")
	b.WriteString(row("in contact", fmt.Sprintf("%d", m.contacts())) + "\n")
	if n := len(m.energyHistory); n > 0 {
		b.WriteString(row("kinetic", fmt.Sprintf("%.3f J", m.energyHistory[n-1])) + "\n")
	}
	if m.err != nil {
		b.WriteString("\n" + StatusFailed.Render(m.err.Error()) + "\n")
	}
	if len(m.activeHistory) > 1 {
		graph := asciigraph.Plot(m.activeHistory,
			asciigraph.Height(6),
			asciigraph.Width(36),
			asciigraph.Caption("active objects"),
		)
		b.WriteString(graphStyle.Render(graph) + "\n")
	}
	if m.showHelp {
		b.WriteString(helpStyle.Render("space pause  n step  r reset  t theme\nx/X y/Y orbit  +/- zoom  q quit"))
	} else {
		b.WriteString(helpStyle.Render("? help  q quit"))
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, left, statsStyle.Render(b.String()))
}

func (m Model) contacts() int {
	n := 0
	for _, id := range m.manager.ObjectIDs() {
		if touching, err := m.manager.ContactTest(id); err == nil && touching {
			n++
		}
	}
	return n
}

// Watch runs the live view until the user quits.
func Watch(name string, m *sim.Manager, dt, duration float64) error {
	_, err := tea.NewProgram(NewModel(name, m, dt, duration), tea.WithAltScreen()).Run()
	return err
}
