package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/Ryneqq/nbody/internal/gravity"
)

const (
	width           = 80
	height          = 24
	statsWidth      = 50
	historyCapacity = 600
	maxStepsPerTick = 64
	frameInterval   = time.Second / 30
)

// SceneBuilder creates a fresh scene; the viewer calls it again on reset.
type SceneBuilder func() (*gravity.Scene, error)

type TickMsg time.Time

// tracker follows committed ticks for the viewer. It lives behind a pointer
// so copies of Model share it.
type tracker struct {
	visible     map[int]bool
	last        gravity.TickReport
	removed     []int
	totalMerges int
}

func newTracker(bodies []gravity.Body) *tracker {
	t := &tracker{visible: make(map[int]bool, len(bodies))}
	for _, b := range bodies {
		t.visible[b.ID()] = true
	}
	t.last = gravity.TickReport{Bodies: bodies}
	return t
}

// OnTick drops the representations of absorbed bodies.
func (t *tracker) OnTick(r gravity.TickReport) {
	t.last = r
	t.removed = t.removed[:0]
	for _, m := range r.Merges {
		if t.visible[m.Absorbed] {
			delete(t.visible, m.Absorbed)
			t.removed = append(t.removed, m.Absorbed)
		}
	}
	t.totalMerges += len(r.Merges)
}

// Model is the live terminal viewer for one scene.
type Model struct {
	build         SceneBuilder
	scene         *gravity.Scene
	track         *tracker
	title         string
	width, height int
	canvas        *Canvas
	camera        *Camera
	running       bool
	stepsPerTick  int
	velocities    bool
	follow        bool
	showHelp      bool
	theme         Theme
	styles        panelStyles
	countHistory  []float64
	mergeHistory  []float64
	err           error
}

// NewModel builds the initial scene and frames it.
func NewModel(build SceneBuilder, title string) (Model, error) {
	m := Model{
		build:        build,
		title:        title,
		width:        width,
		height:       height,
		canvas:       NewCanvas(width, height),
		camera:       NewCamera(),
		running:      true,
		stepsPerTick: 1,
		theme:        Themes[0],
		styles:       stylesFor(Themes[0]),
	}
	if err := m.reset(); err != nil {
		return Model{}, err
	}
	return m, nil
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Update handles input events and advances the scene.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case ".":
			if !m.running {
				m.step(1)
			}
		case "r":
			if err := m.reset(); err != nil {
				m.err = err
				m.running = false
			}
		case "]":
			m.stepsPerTick = min(maxStepsPerTick, m.stepsPerTick*2)
		case "[":
			m.stepsPerTick = max(1, m.stepsPerTick/2)
		case "v":
			m.velocities = !m.velocities
		case "f":
			m.follow = !m.follow
		case "c":
			m.camera.Fit(m.scene.Bodies())
		case "0":
			m.camera.ResetView()
		case "?":
			m.showHelp = !m.showHelp
		case "t":
			m.theme = NextTheme(m.theme)
			m.styles = stylesFor(m.theme)
		case "x":
			m.camera.RotateX(0.1)
		case "X":
			m.camera.RotateX(-0.1)
		case "y":
			m.camera.RotateY(0.1)
		case "Y":
			m.camera.RotateY(-0.1)
		case "z":
			m.camera.RotateZ(0.1)
		case "Z":
			m.camera.RotateZ(-0.1)
		case "+", "=":
			m.camera.ZoomIn()
		case "-", "_":
			m.camera.ZoomOut()
		case "left", "h":
			m.camera.Pan(-1, 0)
		case "right", "l":
			m.camera.Pan(1, 0)
		case "up", "k":
			m.camera.Pan(0, 1)
		case "down", "j":
			m.camera.Pan(0, -1)
		}
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
	case TickMsg:
		if m.running {
			m.step(m.stepsPerTick)
		}
		return m, tick()
	}
	return m, nil
}

func (m *Model) resize(w, h int) {
	cw := max(20, w-statsWidth-4)
	ch := max(10, h-4)
	if cw == m.width && ch == m.height {
		return
	}
	m.width, m.height = cw, ch
	m.canvas = NewCanvas(cw, ch)
}

// step advances the scene n ticks and records history. A non-finite body
// pauses the viewer.
func (m *Model) step(n int) {
	for i := 0; i < n; i++ {
		m.scene.Update()
		r := m.track.last

		m.countHistory = appendCapped(m.countHistory, float64(len(r.Bodies)))
		m.mergeHistory = appendCapped(m.mergeHistory, float64(len(r.Merges)))

		for _, b := range r.Bodies {
			if !b.IsFinite() {
				m.err = fmt.Errorf("tick %d: body %d left the finite range", r.Tick, b.ID())
				m.running = false
				return
			}
		}
	}
}

func appendCapped(h []float64, v float64) []float64 {
	h = append(h, v)
	if len(h) > historyCapacity {
		h = h[1:]
	}
	return h
}

// reset rebuilds the scene from the builder and reframes the camera.
func (m *Model) reset() error {
	scene, err := m.build()
	if err != nil {
		return err
	}
	bodies := scene.Bodies()
	m.scene = scene
	m.track = newTracker(bodies)
	scene.AddObserver(m.track)

	m.countHistory = []float64{float64(len(bodies))}
	m.mergeHistory = m.mergeHistory[:0]
	m.err = nil
	m.camera.ResetView()
	m.camera.Fit(bodies)
	return nil
}

// draw renders the current bodies to the canvas.
func (m *Model) draw() int {
	bodies := m.track.last.Bodies
	if m.follow {
		if heaviest, ok := heaviestBody(bodies); ok {
			m.camera.Target = heaviest.Position()
		}
	}
	m.canvas.Clear()
	return RenderBodies(m.canvas, bodies, m.camera, RenderOptions{Velocities: m.velocities})
}

func heaviestBody(bodies []gravity.Body) (gravity.Body, bool) {
	if len(bodies) == 0 {
		return gravity.Body{}, false
	}
	best := bodies[0]
	for _, b := range bodies[1:] {
		if b.Mass() > best.Mass() {
			best = b
		}
	}
	return best, true
}

// View renders the TUI interface.
func (m Model) View() string {
	st := m.styles
	visible := m.draw()
	canvasView := st.canvas.Render(m.canvas.String())

	status := st.running.Render("RUNNING")
	switch {
	case m.err != nil:
		status = st.failed.Render("HALTED: " + m.err.Error())
	case !m.running:
		status = st.paused.Render("PAUSED")
	}

	var s strings.Builder
	s.WriteString(st.header.Render(strings.ToUpper(m.title)) + "\n")
	s.WriteString(status + "\n\n")
	if len(m.countHistory) > 1 {
		chart := asciigraph.Plot(m.countHistory, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Bodies"))
		s.WriteString(st.graph.Render(chart) + "\n\n")
	}

	r := m.track.last
	row := func(label, value string) {
		s.WriteString(st.label.Render(label) + st.value.Render(value) + "\n")
	}
	row("Tick", fmt.Sprintf("%d", r.Tick))
	row("Bodies", fmt.Sprintf("%d (%d on screen)", len(r.Bodies), visible))
	row("Merges", fmt.Sprintf("%d", m.track.totalMerges))
	row("Mass", fmt.Sprintf("%.4g", gravity.TotalMass(r.Bodies)))
	row("Momentum", fmt.Sprintf("%.4g", gravity.TotalMomentum(r.Bodies).Norm()))
	row("Speed", fmt.Sprintf("%d ticks/frame", m.stepsPerTick))
	row("Zoom", fmt.Sprintf("%.2fx", m.camera.Zoom))
	if len(m.track.removed) > 0 {
		row("Absorbed", fmt.Sprintf("%v", m.track.removed))
	}
	s.WriteString("\n" + st.label.Render("Merges/tick") + st.sparkline(m.mergeHistory, 30) + "\n")

	s.WriteString(st.help.Render("\n─────────────────────\nSP:Pause R:Reset Q:Quit\n[ ]:Speed  T:Theme ?:Help"))
	statsView := st.stats.Render(s.String())
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsView)
	if m.showHelp {
		return helpText + "\n\n" + mainView
	}
	return mainView
}

const helpText = `
╔══════════════════════════════════════╗
║           KEYBOARD SHORTCUTS         ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume             ║
║  .        - Single tick when paused  ║
║  R        - Rebuild the scene        ║
║  [ / ]    - Halve/double speed       ║
║  x/y/z    - Rotate (shift reverses)  ║
║  + / -    - Zoom                     ║
║  hjkl     - Pan                      ║
║  C        - Fit all bodies           ║
║  F        - Follow heaviest body     ║
║  0        - Reset rotation and zoom  ║
║  V        - Toggle velocity vectors  ║
║  T        - Cycle themes             ║
║  Q        - Quit                     ║
╚══════════════════════════════════════╝`

// Snapshot renders the scene's current bodies to a fresh canvas, framed to
// fit, without a terminal.
func Snapshot(bodies []gravity.Body, w, h int, cam *Camera) *Canvas {
	c := NewCanvas(w, h)
	if cam == nil {
		cam = NewCamera()
		cam.Fit(bodies)
	}
	RenderBodies(c, bodies, cam, RenderOptions{})
	return c
}

func Run(m Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
