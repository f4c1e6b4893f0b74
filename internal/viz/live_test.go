package viz

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/gassim/internal/config"
	"github.com/san-kum/gassim/internal/gas"
	"github.com/san-kum/gassim/internal/sim"
)

func newTestModel(t *testing.T, n int) (Model, *sim.Controller) {
	t.Helper()
	sys, err := gas.New(n, gas.WithSeed(11))
	if err != nil {
		t.Fatal(err)
	}
	cfg := sim.DefaultConfig()
	sys.Scatter(cfg.Width, cfg.Height)
	ctrl := sim.New(sys, cfg)
	return NewModel(ctrl, "test"), ctrl
}

func press(m Model, msg tea.KeyMsg) Model {
	next, _ := m.Update(msg)
	return next.(Model)
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModelPopulationKeys(t *testing.T) {
	m, ctrl := newTestModel(t, 20)

	m = press(m, runes("+"))
	if got := len(ctrl.Snapshot().Particles); got != 30 {
		t.Errorf("expected 30 particles after +, got %d", got)
	}

	for i := 0; i < 5; i++ {
		m = press(m, runes("-"))
	}
	if got := len(ctrl.Snapshot().Particles); got != 0 {
		t.Errorf("population should floor at 0, got %d", got)
	}
}

func TestModelPopulationCapped(t *testing.T) {
	m, ctrl := newTestModel(t, gas.DefaultMaxParticles-5)
	press(m, runes("+"))
	if got := len(ctrl.Snapshot().Particles); got != gas.DefaultMaxParticles {
		t.Errorf("expected population capped at %d, got %d", gas.DefaultMaxParticles, got)
	}
}

func TestModelPauseAndModel(t *testing.T) {
	m, ctrl := newTestModel(t, 5)

	m = press(m, tea.KeyMsg{Type: tea.KeySpace})
	if !ctrl.Paused() {
		t.Error("space should pause")
	}

	press(m, runes("m"))
	if got := ctrl.Snapshot().Model; got != "van_der_waals" {
		t.Errorf("expected van_der_waals after m, got %s", got)
	}
}

func TestModelResize(t *testing.T) {
	m, ctrl := newTestModel(t, 5)
	w0, h0 := ctrl.Bounds()

	m = press(m, tea.KeyMsg{Type: tea.KeyRight})
	m = press(m, tea.KeyMsg{Type: tea.KeyShiftDown})
	w, h := ctrl.Bounds()
	if w != w0+resizeStep || h != h0+resizeStep {
		t.Errorf("expected %vx%v, got %vx%v", w0+resizeStep, h0+resizeStep, w, h)
	}

	for i := 0; i < 100; i++ {
		m = press(m, tea.KeyMsg{Type: tea.KeyLeft})
	}
	if w, _ := ctrl.Bounds(); w != minExtent {
		t.Errorf("width should floor at %v, got %v", minExtent, w)
	}
}

func TestModelTuneGasState(t *testing.T) {
	m, ctrl := newTestModel(t, 5)

	m = press(m, tea.KeyMsg{Type: tea.KeyUp})
	if got := ctrl.Snapshot().Gas.Volume; got != 1.05 {
		t.Errorf("expected volume 1.05, got %v", got)
	}

	// moles starts at zero and is nudged off it
	for i := 0; i < 3; i++ {
		m = press(m, tea.KeyMsg{Type: tea.KeyTab})
	}
	press(m, tea.KeyMsg{Type: tea.KeyUp})
	if got := ctrl.Snapshot().Gas.Moles; got != 0.1 {
		t.Errorf("expected moles 0.1, got %v", got)
	}
}

func TestModelThemeCycle(t *testing.T) {
	defer SetTheme(ThemeCyberpunk.Name)
	m, _ := newTestModel(t, 1)

	before := CurrentTheme.Name
	press(m, runes("t"))
	if CurrentTheme.Name == before {
		t.Error("t should change the theme")
	}
}

func TestModelView(t *testing.T) {
	m, ctrl := newTestModel(t, 10)
	ctrl.Step()
	m = press(m, runes("?"))

	view := m.View()
	for _, want := range []string{"KEYBOARD SHORTCUTS", "GAS STATE", "temperature", "10/300"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestModelQuit(t *testing.T) {
	m, _ := newTestModel(t, 1)
	_, cmd := m.Update(runes("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestModelDrawsParticles(t *testing.T) {
	m, ctrl := newTestModel(t, 0)
	ctrl.Do(func(sys *gas.System) { sys.SetNumberOfParticles(1) })
	m = press(m, runes("r"))

	if m.canvas.String() == NewCanvas(width, height).String() {
		t.Error("expected the container and particle to be drawn")
	}
}

func TestRunInteractivePresetMenu(t *testing.T) {
	app := NewInteractiveApp(context.Background())
	next, _ := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m := next.(model)
	if m.state != stateConfig || m.cfg == nil {
		t.Fatalf("expected config screen, got state %d", m.state)
	}
	if m.selected != m.presets[0] {
		t.Errorf("expected %s, got %s", m.presets[0], m.selected)
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRight})
	m = next.(model)
	if m.cfg.Particles != config.GetPreset(m.selected).Particles+1 {
		t.Errorf("expected particles to increase by 1, got %d", m.cfg.Particles)
	}
}
