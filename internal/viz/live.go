package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/pocketphys/internal/config"
	"github.com/san-kum/pocketphys/internal/metrics"
	"github.com/san-kum/pocketphys/internal/physics"
	"github.com/san-kum/pocketphys/internal/sim"
)

const (
	canvasWidth     = 60
	canvasHeight    = 20
	historyCapacity = 300

	// maxFrameStep bounds the wall-clock delta fed to the world after a stall.
	maxFrameStep = 0.1
)

type TickMsg time.Time

// SceneReloadMsg replaces the running scene, or reports why it could not be
// loaded.
type SceneReloadMsg struct {
	Scene *config.Scene
	Err   error
}

// Live is an interactive view of a scene advancing in real time.
type Live struct {
	scene      *config.Scene
	sim        *sim.Simulator
	engine     *sim.Engine
	renderer   *Renderer
	collisions *metrics.Collisions
	clock      func() time.Time
	interval   time.Duration
	reloads    <-chan SceneReloadMsg
	heights    []float64
	energies   []float64
	err        error
}

type LiveOption func(*Live)

// WithReloads makes the view restart with every scene received on ch.
func WithReloads(ch <-chan SceneReloadMsg) LiveOption {
	return func(l *Live) { l.reloads = ch }
}

// WithLiveClock injects the clock used by the engine.
func WithLiveClock(now func() time.Time) LiveOption {
	return func(l *Live) { l.clock = now }
}

func NewLive(sc *config.Scene, fps int, opts ...LiveOption) (*Live, error) {
	if fps <= 0 {
		return nil, fmt.Errorf("fps must be positive, got %d", fps)
	}
	l := &Live{
		scene:    sc.Clone(),
		clock:    time.Now,
		interval: time.Second / time.Duration(fps),
		renderer: NewRenderer(canvasWidth, canvasHeight),
	}
	for _, opt := range opts {
		opt(l)
	}
	if err := l.reset(); err != nil {
		return nil, err
	}
	return l, nil
}

// reset rebuilds the world from the scene and clears all history.
func (l *Live) reset() error {
	world, _, err := l.scene.Build()
	if err != nil {
		return err
	}
	pairing, err := sim.ParsePairing(l.scene.Pairing)
	if err != nil {
		return err
	}

	l.sim = sim.New(world, pairing)
	l.collisions = metrics.NewCollisions()
	l.sim.AddMetric(l.collisions)

	l.renderer.colors = make(map[int]Color)
	for i, hex := range l.scene.Colors() {
		c, err := ParseHex(hex)
		if err != nil {
			c = White
		}
		l.renderer.AddBody(i, c)
	}
	l.renderer.FitTo(world.Snapshot())

	paused := l.engine != nil && l.engine.Paused()
	l.engine = sim.NewEngine(sim.WithClock(l.clock))
	l.engine.Initialize()
	if paused {
		l.engine.Pause()
	}

	l.heights = l.heights[:0]
	l.energies = l.energies[:0]
	l.record()
	return nil
}

func (l *Live) tick() tea.Cmd {
	return tea.Tick(l.interval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (l *Live) waitReload() tea.Cmd {
	if l.reloads == nil {
		return nil
	}
	return func() tea.Msg {
		msg, ok := <-l.reloads
		if !ok {
			return nil
		}
		return msg
	}
}

func (l *Live) Init() tea.Cmd {
	l.engine.Initialize()
	return tea.Batch(l.tick(), l.waitReload())
}

func (l *Live) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			l.engine.Shutdown()
			return l, tea.Quit
		case " ":
			l.engine.TogglePause()
		case "r":
			if err := l.reset(); err != nil {
				l.err = err
			}
		case "+", "=":
			l.renderer.Zoom(1.25)
		case "-", "_":
			l.renderer.Zoom(0.8)
		case "left", "h":
			l.renderer.Pan(-0.1, 0)
		case "right", "l":
			l.renderer.Pan(0.1, 0)
		case "up", "k":
			l.renderer.Pan(0, 0.1)
		case "down", "j":
			l.renderer.Pan(0, -0.1)
		case "f":
			l.renderer.FitTo(l.sim.World().Snapshot())
		}
	case SceneReloadMsg:
		if msg.Err != nil {
			l.err = msg.Err
			return l, l.waitReload()
		}
		prev := l.scene
		l.scene = msg.Scene.Clone()
		if err := l.reset(); err != nil {
			l.err = err
			l.scene = prev
			_ = l.reset()
		} else {
			l.err = nil
		}
		return l, l.waitReload()
	case tea.WindowSizeMsg:
		w := msg.Width - 56
		h := msg.Height - 4
		if w > 10 && h > 5 {
			l.renderer.Resize(w, h)
		}
	case TickMsg:
		if !l.engine.Running() {
			return l, nil
		}
		dt := math.Min(l.engine.Update(), maxFrameStep)
		if dt > 0 {
			l.sim.Tick(dt)
			l.record()
		}
		return l, l.tick()
	}
	return l, nil
}

func (l *Live) record() {
	states := l.sim.World().Snapshot()
	if len(states) == 0 {
		return
	}
	l.heights = appendCapped(l.heights, states[0].Position.Y)
	l.energies = appendCapped(l.energies, metrics.TotalEnergy(states, l.sim.World().Gravity()))
}

func appendCapped(xs []float64, v float64) []float64 {
	xs = append(xs, v)
	if len(xs) > historyCapacity {
		xs = xs[1:]
	}
	return xs
}

func (l *Live) Simulator() *sim.Simulator { return l.sim }
func (l *Live) Engine() *sim.Engine       { return l.engine }
func (l *Live) Renderer() *Renderer       { return l.renderer }

// Heights is the recent height history of the first body.
func (l *Live) Heights() []float64 { return l.heights }

func (l *Live) View() string {
	states := l.sim.World().Snapshot()
	canvasView := canvasStyle.Render(l.renderer.Draw(states).Render())

	var s strings.Builder
	s.WriteString(headerStyle.Render(strings.ToUpper(l.scene.Name)) + "\n")
	if l.engine.Paused() {
		s.WriteString(StatusPaused.Render("PAUSED") + "\n\n")
	} else {
		s.WriteString(StatusRunning.Render("RUNNING") + "\n\n")
	}

	s.WriteString(labelStyle.Render("Time") + valueStyle.Render(fmt.Sprintf("%.2fs", l.sim.Time())) + "\n")
	s.WriteString(labelStyle.Render("Collisions") + valueStyle.Render(fmt.Sprintf("%d", int(l.collisions.Value()))) + "\n")
	if n := len(l.energies); n > 0 {
		s.WriteString(labelStyle.Render("Energy") + valueStyle.Render(fmt.Sprintf("%.2f", l.energies[n-1])) + "\n")
		s.WriteString(labelStyle.Render("") + SparklineChart(l.energies, 24) + "\n")
	}

	s.WriteString("\nBODIES\n")
	for i, b := range states {
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(l.renderer.ColorOf(i).Hex()))
		s.WriteString(style.Render(fmt.Sprintf("● %d", i)) + " " + valueStyle.Render(formatState(b)) + "\n")
	}

	if len(l.heights) > 1 {
		chart := asciigraph.Plot(l.heights, asciigraph.Height(5), asciigraph.Width(24), asciigraph.Caption("height of body 0"))
		s.WriteString("\n" + graphStyle.Render(chart) + "\n")
	}
	if l.err != nil {
		s.WriteString("\n" + StatusPaused.Render(l.err.Error()) + "\n")
	}

	s.WriteString(helpStyle.Render("SP:Pause R:Reset Q:Quit\n+/-:Zoom ←↑↓→:Pan F:Fit"))
	return lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsStyle.Render(s.String()))
}

func formatState(b physics.BodyState) string {
	return fmt.Sprintf("p=(%6.2f,%6.2f) v=(%6.2f,%6.2f)",
		b.Position.X, b.Position.Y, b.Velocity.X, b.Velocity.Y)
}

// RunLive opens the scene in the terminal and blocks until the user quits.
func RunLive(sc *config.Scene, fps int, opts ...LiveOption) error {
	l, err := NewLive(sc, fps, opts...)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(l, tea.WithAltScreen()).Run()
	return err
}
