package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/coilsim/internal/coil"
	"github.com/san-kum/coilsim/internal/dynamo"
)

const (
	width           = 80
	height          = 20
	historyCapacity = 600
	frameRate       = 60
)

type TickMsg time.Time

// Model steps a coil simulation a few samples per frame and draws the coil,
// the projectile and the recent history.
type Model struct {
	sim    *dynamo.Simulator
	params coil.Params
	name   string

	state   dynamo.State
	last    dynamo.Sample
	steps   int
	err     error
	done    bool
	running bool

	stepsPerTick int
	velocity     []float64
	current      []float64

	canvas   *Canvas
	theme    Theme
	styles   styles
	showHelp bool
}

func NewModel(sim *dynamo.Simulator, params coil.Params, name string) Model {
	m := Model{
		sim:          sim,
		params:       params,
		name:         name,
		running:      true,
		stepsPerTick: 1,
		canvas:       NewCanvas(width, height),
		theme:        Themes[0],
		styles:       newStyles(Themes[0]),
	}
	m.reset()
	return m
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/frameRate, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.reset()
		case "n", "right":
			m.advance(1)
		case "+", "=":
			m.stepsPerTick = min(m.stepsPerTick*2, 1024)
		case "-", "_":
			m.stepsPerTick = max(m.stepsPerTick/2, 1)
		case "t":
			m.theme = NextTheme(m.theme)
			m.styles = newStyles(m.theme)
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.running {
			m.advance(m.stepsPerTick)
		}
		return m, tick()
	}
	return m, nil
}

// advance runs up to n steps, stopping at the end of the run or on error.
func (m *Model) advance(n int) {
	total := m.sim.Config().ExpectedSteps()
	for i := 0; i < n && !m.done; i++ {
		if m.steps >= total {
			m.done = true
			return
		}

		sample, next, err := m.sim.Step(m.state)
		if err != nil {
			m.err = err
			m.done = true
			return
		}

		m.last, m.state = sample, next
		m.steps++
		m.velocity = appendCapped(m.velocity, sample.Velocity)
		m.current = appendCapped(m.current, sample.Current)
	}
}

func appendCapped(h []float64, v float64) []float64 {
	h = append(h, v)
	if len(h) > historyCapacity {
		h = h[1:]
	}
	return h
}

func (m *Model) reset() {
	m.state = m.sim.InitialState()
	m.last = dynamo.Sample{Position: m.state.Position}
	m.steps = 0
	m.err = nil
	m.done = false
	m.velocity = m.velocity[:0]
	m.current = m.current[:0]
}

// viewRange is the axial window drawn on the canvas: one coil length before
// the entry face to five past the exit face.
func (m Model) viewRange() (lo, hi float64) {
	l := m.params.Length
	return m.params.EntryPosition() - l, m.params.ExitPosition() + 5*l
}

// toX maps an axial position to a canvas column in dots.
func (m Model) toX(z float64) int {
	lo, hi := m.viewRange()
	cw, _ := m.canvas.Dots()
	return int(math.Round((z - lo) / (hi - lo) * float64(cw-1)))
}

func (m *Model) draw() {
	m.canvas.Clear()
	cw, ch := m.canvas.Dots()
	cy := ch / 2

	m.canvas.DrawLine(0, cy, cw-1, cy)

	x0, x1 := m.toX(m.params.EntryPosition()), m.toX(m.params.ExitPosition())
	halfH := ch / 4
	m.canvas.Rect(x0, cy-halfH, x1, cy+halfH)
	for x := x0 + 2; x < x1; x += 3 {
		m.canvas.DrawLine(x, cy-halfH, x, cy-halfH+2)
		m.canvas.DrawLine(x, cy+halfH-2, x, cy+halfH)
	}

	px := m.toX(m.last.Position)
	m.canvas.FillRect(px-2, cy-3, px+2, cy+3)
	if px >= cw {
		m.canvas.DrawLine(cw-4, cy-4, cw-1, cy)
		m.canvas.DrawLine(cw-4, cy+4, cw-1, cy)
	}
}

func (m Model) status() string {
	switch {
	case m.err != nil:
		return m.styles.failed.Render("FAILED")
	case m.done:
		return m.styles.paused.Render("DONE")
	case !m.running:
		return m.styles.paused.Render("PAUSED")
	}
	return m.styles.running.Render(fmt.Sprintf("RUNNING x%d", m.stepsPerTick))
}

func (m Model) View() string {
	m.draw()
	st := m.styles

	var s strings.Builder
	s.WriteString(st.header.Render(strings.ToUpper(m.name)) + "\n")
	s.WriteString(m.status() + "\n\n")

	row := func(label, value string) {
		s.WriteString(st.label.Render(label) + st.value.Render(value) + "\n")
	}
	row("Time", fmt.Sprintf("%.4f s", m.last.Time))
	row("Position", fmt.Sprintf("%+.5f m", m.last.Position))
	row("Velocity", fmt.Sprintf("%.4f m/s", m.last.Velocity))
	row("Accel", fmt.Sprintf("%.2f m/s²", m.last.Acceleration))
	row("Current", fmt.Sprintf("%.4f A", m.last.Current))
	row("Field", fmt.Sprintf("%.5f T", m.last.Field))
	row("Steps", fmt.Sprintf("%d", m.steps))

	stop := m.sim.Config().StopTime
	progress := 0.0
	if stop > 0 {
		progress = m.state.Time / stop
	}
	s.WriteString("\n" + st.ProgressBar(progress, 30) + "\n")
	s.WriteString(st.label.Render("I(t)") + Sparkline(m.current, 30) + "\n")

	if len(m.velocity) > 1 {
		chart := asciigraph.Plot(m.velocity, asciigraph.Height(5), asciigraph.Width(30), asciigraph.Caption("Velocity (m/s)"))
		s.WriteString(st.graph.Render(chart) + "\n")
	}

	if m.err != nil {
		s.WriteString(st.failed.Render(m.err.Error()) + "\n")
	}

	s.WriteString(st.help.Render("SP:Pause R:Reset N:Step Q:Quit\n+/-:Speed T:Theme ?:Help"))

	canvasView := st.canvas.Render(m.canvas.String())
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, st.stats.Render(s.String()))
	if m.showHelp {
		return helpText + "\n" + mainView
	}
	return mainView
}

const helpText = `
  Space  pause / resume
  R      restart from the entry face
  N      single step
  + / -  double / halve steps per frame
  T      cycle themes
  Q      quit
`

// Run starts the live view in the alternate screen.
func Run(sim *dynamo.Simulator, params coil.Params, name string) error {
	_, err := tea.NewProgram(NewModel(sim, params, name), tea.WithAltScreen()).Run()
	return err
}
