package viz

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"math"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/gassim/internal/gas"
	"github.com/san-kum/gassim/internal/physics"
	"github.com/san-kum/gassim/internal/sim"
)

const (
	width           = 80
	height          = 24
	historyCapacity = 300
	frameRate       = 30

	populationStep = 10
	resizeStep     = 20.0
	minExtent      = 40.0
)

var (
	canvasStyle = lipgloss.NewStyle().Padding(1, 2)
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(46)
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

// gasFields are the tunable gas-state fields, in tab order.
var gasFields = []string{"volume", "temperature", "pressure", "moles"}

type TickMsg time.Time

// Model renders a running controller. The controller ticks on its own
// goroutine; the model only samples snapshots and forwards key presses.
type Model struct {
	ctrl          *sim.Controller
	name          string
	width, height int
	canvas        *Canvas
	snap          sim.Snapshot
	energyHistory []float64
	speedHistory  []float64
	lastTick      int
	selected      int
	recording     bool
	frames        []*image.Paletted
	showHelp      bool
	gifPath       string
}

func NewModel(ctrl *sim.Controller, name string) Model {
	m := Model{
		ctrl:          ctrl,
		name:          name,
		width:         width,
		height:        height,
		canvas:        NewCanvas(width, height),
		energyHistory: make([]float64, 0, historyCapacity),
		speedHistory:  make([]float64, 0, historyCapacity),
		lastTick:      -1,
		gifPath:       "gassim.gif",
	}
	m.refresh()
	return m
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/frameRate, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ", "space":
			m.ctrl.SetPaused(!m.ctrl.Paused())
		case "r":
			w, h := m.ctrl.Bounds()
			m.ctrl.Do(func(sys *gas.System) { sys.Scatter(w, h) })
		case "+", "=":
			m.changePopulation(populationStep)
		case "-", "_":
			m.changePopulation(-populationStep)
		case "left":
			m.resize(-resizeStep, 0)
		case "right":
			m.resize(resizeStep, 0)
		case "shift+up":
			m.resize(0, -resizeStep)
		case "shift+down":
			m.resize(0, resizeStep)
		case "m":
			m.ctrl.Do(func(sys *gas.System) {
				if sys.GasModel() == physics.Ideal {
					sys.SetGasModel(physics.VanDerWaals)
				} else {
					sys.SetGasModel(physics.Ideal)
				}
			})
		case "tab":
			m.selected = (m.selected + 1) % len(gasFields)
		case "up", "k":
			m.adjustField(1.05)
		case "down", "j":
			m.adjustField(0.95)
		case "t":
			NextTheme()
		case "g":
			m.toggleRecording()
		case "?":
			m.showHelp = !m.showHelp
		}
		m.refresh()
	case TickMsg:
		m.refresh()
		if m.recording {
			m.captureFrame()
		}
		return m, tick()
	}
	return m, nil
}

func (m *Model) changePopulation(delta int) {
	m.ctrl.Do(func(sys *gas.System) {
		n := max(0, min(sys.Len()+delta, sys.MaxParticles()))
		sys.SetNumberOfParticles(n)
	})
}

func (m *Model) resize(dw, dh float64) {
	w, h := m.ctrl.Bounds()
	m.ctrl.SetBounds(math.Max(minExtent, w+dw), math.Max(minExtent, h+dh))
}

// adjustField scales the selected gas-state field. A zero field is nudged
// off zero so it can grow.
func (m *Model) adjustField(factor float64) {
	name := gasFields[m.selected]
	m.ctrl.Do(func(sys *gas.System) {
		v := sys.GetParams()[name]
		if v == 0 && factor > 1 {
			v = 0.1
		} else {
			v *= factor
		}
		_ = sys.SetParam(name, v)
	})
}

// refresh pulls a snapshot and extends the histories when the tick advanced.
func (m *Model) refresh() {
	m.snap = m.ctrl.Snapshot()
	if m.snap.Tick != m.lastTick {
		m.lastTick = m.snap.Tick
		m.energyHistory = appendCapped(m.energyHistory, m.snap.KineticEnergy())
		m.speedHistory = appendCapped(m.speedHistory, meanSpeed(m.snap))
	}
	m.draw()
}

func appendCapped(xs []float64, v float64) []float64 {
	xs = append(xs, v)
	if len(xs) > historyCapacity {
		xs = xs[1:]
	}
	return xs
}

func meanSpeed(s sim.Snapshot) float64 {
	if len(s.Particles) == 0 {
		return 0
	}
	sum := 0.0
	for _, p := range s.Particles {
		sum += math.Hypot(p.VX, p.VY)
	}
	return sum / float64(len(s.Particles))
}

// project returns the uniform scale and offset that fit the container into
// the canvas with its aspect ratio intact.
func (m *Model) project() (scale float64, ox, oy int) {
	cw, ch := m.canvas.PixelSize()
	if m.snap.Width <= 0 || m.snap.Height <= 0 {
		return 1, 0, 0
	}
	scale = math.Min(float64(cw-1)/m.snap.Width, float64(ch-1)/m.snap.Height)
	ox = (cw - 1 - int(m.snap.Width*scale)) / 2
	oy = (ch - 1 - int(m.snap.Height*scale)) / 2
	return scale, ox, oy
}

func (m *Model) draw() {
	m.canvas.Clear()
	scale, ox, oy := m.project()

	m.canvas.Rect(ox, oy, ox+int(m.snap.Width*scale), oy+int(m.snap.Height*scale))

	for _, p := range m.snap.Particles {
		x := ox + int(math.Round(p.X*scale))
		y := oy + int(math.Round(p.Y*scale))
		r := int(math.Round(p.Radius * scale))
		if r <= 1 {
			m.canvas.FillCircle(x, y, 1)
		} else {
			m.canvas.Circle(x, y, r)
		}
	}
}

func (m Model) status() string {
	switch {
	case m.recording:
		return StatusRecording.Render("● REC")
	case m.ctrl.Paused():
		return StatusPaused.Render("PAUSED")
	}
	return StatusRunning.Render("RUNNING")
}

func (m Model) View() string {
	theme := CurrentTheme
	canvasView := canvasStyle.Foreground(theme.Primary).Render(m.canvas.String())

	var s strings.Builder
	s.WriteString(GradientText(strings.ToUpper(m.name), theme.Secondary, theme.Accent) + "\n")
	s.WriteString(m.status() + "\n")

	if len(m.energyHistory) > 1 {
		chart := asciigraph.Plot(m.energyHistory, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Kinetic energy"))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}

	n := len(m.snap.Particles)
	capacity := gas.DefaultMaxParticles
	m.ctrl.Do(func(sys *gas.System) { capacity = sys.MaxParticles() })

	row := func(label, value string) {
		s.WriteString(MetricLabel.Render(label) + MetricValue.Render(value) + "\n")
	}
	row("Tick", fmt.Sprintf("%d", m.snap.Tick))
	row("Box", fmt.Sprintf("%.0f x %.0f", m.snap.Width, m.snap.Height))
	row("Model", m.snap.Model)
	row("Particles", fmt.Sprintf("%d/%d", n, capacity))
	s.WriteString(strings.Repeat(" ", 12) + ProgressBar(float64(n)/float64(capacity), 20) + "\n")
	row("Energy", fmt.Sprintf("%.2f", m.snap.KineticEnergy()))
	s.WriteString(MetricLabel.Render("Speed") + SparklineChart(m.speedHistory, 20) + "\n")

	s.WriteString("\nGAS STATE\n")
	values := map[string]float64{
		"volume":      m.snap.Gas.Volume,
		"temperature": m.snap.Gas.Temperature,
		"pressure":    m.snap.Gas.Pressure,
		"moles":       m.snap.Gas.Moles,
	}
	active := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true)
	for i, k := range gasFields {
		line := fmt.Sprintf("%-12s %8.3f", k, values[k])
		if i == m.selected {
			s.WriteString(active.Render("> "+line) + "\n")
		} else {
			s.WriteString("  " + KeyHint.Render(line) + "\n")
		}
	}

	s.WriteString(helpStyle.Render("─────────────────────\nSP:Pause R:Scatter Q:Quit\n+/-:Particles ←→⇧↑⇧↓:Box\nM:Model Tab ↑↓:Gas T:Theme ?:Help"))
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsStyle.Render(s.String()))

	if m.showHelp {
		return `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space      - Pause/Resume           ║
║  R          - Re-scatter particles   ║
║  Q          - Quit                   ║
║  + / -      - Add/remove 10          ║
║  ← / →      - Narrow/widen box       ║
║  Shift+↑/↓  - Shorten/heighten box   ║
║  M          - Toggle gas model       ║
║  Tab        - Cycle gas-state field  ║
║  Up/K       - Increase field (+5%)   ║
║  Down/J     - Decrease field (-5%)   ║
║  G          - Toggle GIF recording   ║
║  T          - Cycle themes           ║
║  ?          - Toggle this help       ║
╚══════════════════════════════════════╝
` + "\n\n" + mainView
	}
	return mainView
}

func (m *Model) toggleRecording() {
	if m.recording {
		m.saveGIF()
		m.recording = false
		m.frames = nil
		return
	}
	m.recording = true
	m.frames = make([]*image.Paletted, 0)
}

// captureFrame rasterizes the braille canvas into a two-color image.
func (m *Model) captureFrame() {
	const dot = 4
	cw, ch := m.canvas.PixelSize()
	img := image.NewPaletted(image.Rect(0, 0, cw*dot, ch*dot), color.Palette{color.Black, color.White})
	for y := 0; y < ch; y++ {
		for x := 0; x < cw; x++ {
			if !m.canvas.IsSet(x, y) {
				continue
			}
			for py := 0; py < dot; py++ {
				for px := 0; px < dot; px++ {
					img.SetColorIndex(x*dot+px, y*dot+py, 1)
				}
			}
		}
	}
	m.frames = append(m.frames, img)
}

func (m *Model) saveGIF() {
	if len(m.frames) == 0 {
		return
	}
	anim := gif.GIF{LoopCount: 0}
	for _, frame := range m.frames {
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, 100/frameRate)
	}
	f, err := os.Create(m.gifPath)
	if err != nil {
		return
	}
	defer f.Close()
	gif.EncodeAll(f, &anim)
}

// RunLive starts ctrl, runs the terminal UI until the user quits, then stops
// the controller.
func RunLive(ctx context.Context, ctrl *sim.Controller, name string) error {
	if err := ctrl.Start(ctx); err != nil {
		return err
	}
	defer ctrl.Stop()

	_, err := tea.NewProgram(NewModel(ctrl, name), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}
