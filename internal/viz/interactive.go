package viz

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/gassim/internal/config"
	"github.com/san-kum/gassim/internal/sim"
)

var presetInfo = map[string]string{
	"sparse": "few fast-moving disks",
	"dense":  "crowded box near capacity",
	"mixed":  "assorted radii and masses",
	"vdw":    "van der Waals attraction",
	"fast":   "hot, high-speed gas",
}

const (
	stateMenu = iota
	stateConfig
	stateSim
)

// configParams are the fields editable before a run starts.
var configParams = []string{"particles", "radius", "speed", "width", "height", "seed"}

type model struct {
	ctx         context.Context
	state       int
	cursor      int
	presets     []string
	selected    string
	cfg         *config.Config
	paramCursor int
	editing     bool
	editBuf     string
	err         error
	ctrl        *sim.Controller
	liveModel   Model
}

func NewInteractiveApp(ctx context.Context) *model {
	return &model{
		ctx:     ctx,
		state:   stateMenu,
		presets: config.ListPresets(),
	}
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	default:
		if m.state == stateSim {
			newLive, cmd := m.liveModel.Update(msg)
			m.liveModel = newLive.(Model)
			return m, cmd
		}
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch m.state {
	case stateMenu:
		return m.menuKey(msg)
	case stateConfig:
		return m.configKey(msg)
	case stateSim:
		newLive, cmd := m.liveModel.Update(msg)
		m.liveModel = newLive.(Model)
		return m, cmd
	}
	return m, nil
}

func (m model) menuKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.presets)-1 {
			m.cursor++
		}
	case "enter", " ":
		m.selected = m.presets[m.cursor]
		m.cfg = config.GetPreset(m.selected)
		m.state, m.paramCursor, m.err = stateConfig, 0, nil
	}
	return m, nil
}

func (m model) configKey(msg tea.KeyMsg) (model, tea.Cmd) {
	if m.editing {
		switch msg.String() {
		case "enter":
			var val float64
			if _, err := fmt.Sscanf(m.editBuf, "%f", &val); err == nil {
				m.setParam(configParams[m.paramCursor], val)
			}
			m.editing, m.editBuf = false, ""
		case "esc":
			m.editing, m.editBuf = false, ""
		case "backspace":
			if len(m.editBuf) > 0 {
				m.editBuf = m.editBuf[:len(m.editBuf)-1]
			}
		default:
			if len(msg.String()) == 1 {
				c := msg.String()[0]
				if (c >= '0' && c <= '9') || c == '.' || c == '-' {
					m.editBuf += string(c)
				}
			}
		}
		return m, nil
	}
	switch msg.String() {
	case "q", "esc":
		m.state = stateMenu
	case "up", "k":
		if m.paramCursor > 0 {
			m.paramCursor--
		}
	case "down", "j":
		if m.paramCursor < len(configParams)-1 {
			m.paramCursor++
		}
	case "enter", " ":
		m.editing, m.editBuf = true, fmt.Sprintf("%g", m.param(configParams[m.paramCursor]))
	case "s":
		return m.start()
	case "left", "h":
		name := configParams[m.paramCursor]
		m.setParam(name, m.param(name)-m.paramStep(name))
	case "right", "l":
		name := configParams[m.paramCursor]
		m.setParam(name, m.param(name)+m.paramStep(name))
	}
	return m, nil
}

func (m *model) param(name string) float64 {
	switch name {
	case "particles":
		return float64(m.cfg.Particles)
	case "radius":
		return m.cfg.Radius
	case "speed":
		return m.cfg.Speed
	case "width":
		return m.cfg.Width
	case "height":
		return m.cfg.Height
	case "seed":
		return float64(m.cfg.Seed)
	}
	return 0
}

func (m *model) setParam(name string, v float64) {
	switch name {
	case "particles":
		m.cfg.Particles = int(v)
	case "radius":
		m.cfg.Radius = v
	case "speed":
		m.cfg.Speed = v
	case "width":
		m.cfg.Width = v
	case "height":
		m.cfg.Height = v
	case "seed":
		m.cfg.Seed = int64(v)
	}
}

func (m *model) paramStep(name string) float64 {
	switch name {
	case "radius", "speed":
		return 0.5
	case "width", "height":
		return 20
	}
	return 1
}

func (m model) start() (model, tea.Cmd) {
	ctrl, err := m.cfg.NewController()
	if err != nil {
		m.err = err
		return m, nil
	}
	if err := ctrl.Start(m.ctx); err != nil {
		m.err = err
		return m, nil
	}
	m.ctrl = ctrl
	m.liveModel = NewModel(ctrl, m.selected)
	m.state = stateSim
	return m, m.liveModel.Init()
}

func (m model) View() string {
	switch m.state {
	case stateMenu:
		return m.viewMenu()
	case stateConfig:
		return m.viewConfig()
	case stateSim:
		return m.liveModel.View()
	}
	return ""
}

var (
	titleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#00cccc")).Bold(true)
	subStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#666688"))
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ffff")).Bold(true)
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Bold(true)
	descStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff88ff"))
	idleStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#555566"))
	idleDescStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#444455"))
	keyStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#00aaaa")).Bold(true)
	errStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff4444"))
)

func hints(pairs ...string) string {
	var b strings.Builder
	for i := 0; i+1 < len(pairs); i += 2 {
		b.WriteString(keyStyle.Render(pairs[i]) + idleStyle.Render(" "+pairs[i+1]+"  "))
	}
	return b.String()
}

func (m model) viewMenu() string {
	var b strings.Builder
	b.WriteString("\n\n    " + titleStyle.Render("GASSIM") + "\n    " + subStyle.Render("rigid-disk gas simulator") + "\n    " + subStyle.Render("─────────────────────────") + "\n\n")
	for i, name := range m.presets {
		desc := presetInfo[name]
		if i == m.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n", cursorStyle.Render("▸"), selectedStyle.Render(fmt.Sprintf("%-10s", name)), descStyle.Render(desc)))
		} else {
			b.WriteString(fmt.Sprintf("    %s  %s\n", idleStyle.Render(fmt.Sprintf("  %-10s", name)), idleDescStyle.Render(desc)))
		}
	}
	b.WriteString("\n    " + hints("j/k", "navigate", "enter", "select", "q", "quit") + "\n")
	return b.String()
}

func (m model) viewConfig() string {
	var b strings.Builder
	b.WriteString("\n\n    " + titleStyle.Render(strings.ToUpper(m.selected)) + "\n    " + subStyle.Render(presetInfo[m.selected]) + "\n    " + subStyle.Render("─────────────────────────") + "\n\n")
	for i, name := range configParams {
		valStr := fmt.Sprintf("%8g", m.param(name))
		if m.editing && i == m.paramCursor {
			valStr = fmt.Sprintf("%8s", m.editBuf+"_")
		}
		if i == m.paramCursor {
			b.WriteString(fmt.Sprintf("    %s %s %s\n", cursorStyle.Render("▸"), selectedStyle.Render(fmt.Sprintf("%-10s", name)), descStyle.Bold(true).Render(valStr)))
		} else {
			b.WriteString(fmt.Sprintf("    %s %s\n", idleStyle.Render(fmt.Sprintf("  %-10s", name)), idleDescStyle.Render(valStr)))
		}
	}
	if m.err != nil {
		b.WriteString("\n    " + errStyle.Render(m.err.Error()) + "\n")
	}
	b.WriteString("\n    " + hints("j/k", "select", "h/l", "adjust", "s", "start", "esc", "back") + "\n")
	return b.String()
}

// RunInteractive shows the preset picker and then the live view.
func RunInteractive(ctx context.Context) error {
	final, err := tea.NewProgram(NewInteractiveApp(ctx), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if m, ok := final.(model); ok && m.ctrl != nil {
		m.ctrl.Stop()
	}
	return err
}
