package viz

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/coilsim/internal/coil"
	"github.com/san-kum/coilsim/internal/dynamo"
	"github.com/san-kum/coilsim/internal/integrators"
)

func TestCanvasSetUnset(t *testing.T) {
	c := NewCanvas(2, 1)

	c.Set(0, 0)
	c.Set(3, 3)
	if c.Grid[0][0] != 0x2801 {
		t.Errorf("cell 0 = %U, want U+2801", c.Grid[0][0])
	}
	if c.Grid[0][1] != 0x2880 {
		t.Errorf("cell 1 = %U, want U+2880", c.Grid[0][1])
	}
	if !c.IsSet(3, 3) {
		t.Error("dot (3,3) should be set")
	}

	c.Unset(3, 3)
	if c.Grid[0][1] != brailleBlank {
		t.Errorf("cell 1 = %U after unset, want blank", c.Grid[0][1])
	}

	// out of range is ignored
	c.Set(-1, 0)
	c.Set(4, 0)
	c.Set(0, 4)

	c.Clear()
	if c.String() != "⠀⠀\n" {
		t.Errorf("unexpected canvas after clear: %q", c.String())
	}
}

func TestCanvasShapes(t *testing.T) {
	c := NewCanvas(10, 5)

	c.DrawLine(0, 0, 19, 0)
	for x := 0; x < 20; x++ {
		if !c.IsSet(x, 0) {
			t.Fatalf("line dot %d not set", x)
		}
	}

	c.Clear()
	c.FillRect(5, 5, 2, 2)
	for y := 2; y <= 5; y++ {
		for x := 2; x <= 5; x++ {
			if !c.IsSet(x, y) {
				t.Fatalf("fill dot (%d,%d) not set", x, y)
			}
		}
	}

	c.Clear()
	c.Rect(1, 1, 8, 6)
	if !c.IsSet(1, 6) || !c.IsSet(8, 1) || c.IsSet(4, 4) {
		t.Error("rect outline wrong")
	}
}

func TestSparkline(t *testing.T) {
	if got := Sparkline(nil, 4); got != "────" {
		t.Errorf("empty sparkline = %q", got)
	}
	if got := Sparkline([]float64{0, 1, 2, 3, 4, 5, 6, 7}, 8); got != "▁▂▃▄▅▆▇█" {
		t.Errorf("ramp sparkline = %q", got)
	}
	if got := Sparkline([]float64{9, 0, 7}, 2); got != "▁█" {
		t.Errorf("tail sparkline = %q", got)
	}
}

func TestThemes(t *testing.T) {
	if GetTheme("nope").Name != Themes[0].Name {
		t.Error("unknown theme should fall back to the first")
	}
	cur := Themes[0]
	for range Themes {
		cur = NextTheme(cur)
	}
	if cur.Name != Themes[0].Name {
		t.Errorf("cycling all themes should wrap, got %s", cur.Name)
	}
	if len(ThemeNames()) != len(Themes) {
		t.Error("theme names mismatch")
	}
}

func newTestModel(stop float64) Model {
	p := coil.Reference()
	cfg := dynamo.DefaultConfig()
	cfg.StopTime = stop
	return NewModel(dynamo.New(p, integrators.NewEuler(), cfg), p, "reference")
}

func TestModelAdvance(t *testing.T) {
	m := newTestModel(0.01)

	m.advance(1)
	if m.steps != 1 {
		t.Fatalf("expected 1 step, got %d", m.steps)
	}
	if m.last.Velocity != 2.182462723577861 {
		t.Errorf("first velocity = %v", m.last.Velocity)
	}

	m.advance(100)
	if m.steps != 10 {
		t.Errorf("expected the run to stop at 10 steps, got %d", m.steps)
	}
	if !m.done {
		t.Error("model should be done")
	}
	if len(m.velocity) != 10 || len(m.current) != 10 {
		t.Errorf("history lengths %d, %d", len(m.velocity), len(m.current))
	}

	m.reset()
	if m.steps != 0 || m.done || len(m.velocity) != 0 {
		t.Error("reset did not clear the run")
	}
	if m.state != m.sim.InitialState() {
		t.Errorf("reset state = %v", m.state)
	}
}

func TestModelKeys(t *testing.T) {
	m := newTestModel(1)

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{' '}})
	m = next.(Model)
	if m.running {
		t.Error("space should pause")
	}

	next, _ = m.Update(TickMsg(time.Now()))
	m = next.(Model)
	if m.steps != 0 {
		t.Error("paused model should not step on tick")
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'n'}})
	m = next.(Model)
	if m.steps != 1 {
		t.Errorf("n should single step, got %d steps", m.steps)
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'+'}})
	m = next.(Model)
	if m.stepsPerTick != 2 {
		t.Errorf("+ should double speed, got %d", m.stepsPerTick)
	}

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestModelView(t *testing.T) {
	m := newTestModel(0.05)
	m.advance(20)

	view := m.View()
	for _, want := range []string{"REFERENCE", "Velocity", "Current", "Steps"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestModelStopsOnError(t *testing.T) {
	p := coil.Reference()
	p.Radius = 0
	cfg := dynamo.DefaultConfig()
	cfg.StopTime = 0.01
	m := NewModel(dynamo.New(p, integrators.NewEuler(), cfg), p, "singular")

	m.advance(5)
	if !errors.Is(m.err, dynamo.ErrSingularField) {
		t.Fatalf("expected ErrSingularField, got %v", m.err)
	}
	if m.steps != 0 || !m.done {
		t.Errorf("steps %d done %v", m.steps, m.done)
	}
	if !strings.Contains(m.View(), "FAILED") {
		t.Error("view should show the failure")
	}
}
