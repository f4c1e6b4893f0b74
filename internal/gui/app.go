package gui

import (
	"context"
	"fmt"
	"os"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/san-kum/gassim/internal/gas"
	"github.com/san-kum/gassim/internal/physics"
	"github.com/san-kum/gassim/internal/sim"
)

var (
	ColBg      = rl.NewColor(10, 10, 10, 255)
	ColAccent  = rl.NewColor(180, 180, 180, 255)
	ColSelect  = rl.NewColor(255, 255, 255, 255)
	ColText    = rl.NewColor(140, 140, 140, 255)
	ColTextDim = rl.NewColor(60, 60, 60, 255)
	ColWall    = rl.NewColor(70, 70, 70, 255)
)

const (
	windowWidth  = 1280
	windowHeight = 720

	marginX   = 30
	hudTop    = 80
	hudBottom = 110

	populationStep = 10
	maxTelemetry   = 300
	fontPath       = "/usr/share/fonts/liberation/LiberationMono-Regular.ttf"
)

var gasFields = []string{"volume", "temperature", "pressure", "moles"}

type App struct {
	Ctrl      *sim.Controller
	Name      string
	Snap      sim.Snapshot
	Font      rl.Font
	FieldSel  int
	Telemetry []float64
	lastTick  int
}

func initWindow() {
	rl.SetConfigFlags(rl.FlagWindowResizable)
	rl.InitWindow(windowWidth, windowHeight, "gassim")
	rl.SetTargetFPS(60)
	rl.SetExitKey(0)
}

// loadFont uses Liberation Mono when installed and raylib's built-in font otherwise.
func loadFont() rl.Font {
	if _, err := os.Stat(fontPath); err != nil {
		return rl.GetFontDefault()
	}
	font := rl.LoadFontEx(fontPath, 32, nil, 0)
	rl.SetTextureFilter(font.Texture, rl.FilterBilinear)
	return font
}

// containerSize is the part of a window the gas box occupies.
func containerSize(winW, winH int) (float64, float64) {
	w := float64(winW - 2*marginX)
	h := float64(winH - hudTop - hudBottom)
	return max(w, 40), max(h, 40)
}

func NewApp(ctrl *sim.Controller, name string) *App {
	return &App{
		Ctrl:      ctrl,
		Name:      name,
		Font:      loadFont(),
		Telemetry: make([]float64, 0, maxTelemetry),
		lastTick:  -1,
	}
}

// Run opens a window, fits the container to it and ticks ctrl until the
// window is closed or Q is pressed.
func Run(ctx context.Context, ctrl *sim.Controller, name string) error {
	initWindow()
	defer rl.CloseWindow()

	w, h := containerSize(rl.GetScreenWidth(), rl.GetScreenHeight())
	ctrl.SetBounds(w, h)
	ctrl.Do(func(sys *gas.System) { sys.Scatter(w, h) })

	if err := ctrl.Start(ctx); err != nil {
		return err
	}
	defer ctrl.Stop()

	app := NewApp(ctrl, name)
	app.RunLoop(ctx)
	return nil
}

func (a *App) RunLoop(ctx context.Context) {
	for !rl.WindowShouldClose() {
		select {
		case <-ctx.Done():
			return
		default:
		}
		if !a.Update() {
			return
		}
		a.Draw()
	}
}

// Update handles input and pulls the latest snapshot. It returns false when
// the user asked to quit.
func (a *App) Update() bool {
	if rl.IsKeyPressed(rl.KeyQ) {
		return false
	}

	if rl.IsWindowResized() {
		a.Ctrl.SetBounds(containerSize(rl.GetScreenWidth(), rl.GetScreenHeight()))
	}

	switch {
	case rl.IsKeyPressed(rl.KeySpace):
		a.Ctrl.SetPaused(!a.Ctrl.Paused())
	case rl.IsKeyPressed(rl.KeyR):
		w, h := a.Ctrl.Bounds()
		a.Ctrl.Do(func(sys *gas.System) { sys.Scatter(w, h) })
	case rl.IsKeyPressed(rl.KeyEqual), rl.IsKeyPressed(rl.KeyKpAdd):
		a.changePopulation(populationStep)
	case rl.IsKeyPressed(rl.KeyMinus), rl.IsKeyPressed(rl.KeyKpSubtract):
		a.changePopulation(-populationStep)
	case rl.IsKeyPressed(rl.KeyM):
		a.Ctrl.Do(func(sys *gas.System) {
			if sys.GasModel() == physics.Ideal {
				sys.SetGasModel(physics.VanDerWaals)
			} else {
				sys.SetGasModel(physics.Ideal)
			}
		})
	case rl.IsKeyPressed(rl.KeyTab):
		a.FieldSel = (a.FieldSel + 1) % len(gasFields)
	case rl.IsKeyPressed(rl.KeyUp):
		a.adjustField(1.05)
	case rl.IsKeyPressed(rl.KeyDown):
		a.adjustField(0.95)
	}

	a.Snap = a.Ctrl.Snapshot()
	if a.Snap.Tick != a.lastTick {
		a.lastTick = a.Snap.Tick
		a.Telemetry = append(a.Telemetry, a.Snap.KineticEnergy())
		if len(a.Telemetry) > maxTelemetry {
			a.Telemetry = a.Telemetry[1:]
		}
	}
	return true
}

func (a *App) changePopulation(delta int) {
	a.Ctrl.Do(func(sys *gas.System) {
		sys.SetNumberOfParticles(max(0, min(sys.Len()+delta, sys.MaxParticles())))
	})
}

func (a *App) adjustField(factor float64) {
	name := gasFields[a.FieldSel]
	a.Ctrl.Do(func(sys *gas.System) {
		v := sys.GetParams()[name]
		if v == 0 && factor > 1 {
			v = 0.1
		} else {
			v *= factor
		}
		_ = sys.SetParam(name, v)
	})
}

func (a *App) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(ColBg)

	a.drawContainer()
	a.DrawHUD()

	rl.EndDrawing()
}

func (a *App) drawText(text string, x, y int, size int, color rl.Color) {
	rl.DrawTextEx(a.Font, text, rl.NewVector2(float32(x), float32(y)), float32(size), 1, color)
}

func (a *App) DrawHUD() {
	a.drawText("gassim", marginX, 30, 24, ColSelect)
	a.drawText(fmt.Sprintf(":: %s  %s", a.Name, a.Snap.Model), marginX+110, 34, 16, ColText)

	status, col := "RUNNING", ColSelect
	if a.Ctrl.Paused() {
		status, col = "PAUSED", ColTextDim
	}
	sw, sh := rl.GetScreenWidth(), rl.GetScreenHeight()
	a.drawText(status, sw-130, 30, 16, col)

	a.drawText(fmt.Sprintf("tick %d   n=%d   %.0fx%.0f", a.Snap.Tick, len(a.Snap.Particles), a.Snap.Width, a.Snap.Height),
		sw/2-120, 34, 16, ColText)

	g := a.Snap.Gas
	values := []float64{g.Volume, g.Temperature, g.Pressure, g.Moles}
	x := sw - 520
	for i, name := range gasFields {
		c := ColTextDim
		if i == a.FieldSel {
			c = ColSelect
		}
		a.drawText(fmt.Sprintf("%s %.3f", name, values[i]), x, sh-hudBottom+20, 14, c)
		x += 130
	}

	a.DrawTelemetry(marginX, sh-hudBottom+15, 400, 60)
	a.drawText("[SPACE] PAUSE  [R] SCATTER  [+/-] PARTICLES  [M] MODEL  [TAB/UP/DOWN] GAS  [Q] QUIT", sw-760, sh-30, 14, ColTextDim)
	a.drawText(fmt.Sprintf("%d FPS", int32(rl.GetFPS())), marginX, sh-30, 14, ColTextDim)
}

func (a *App) DrawTelemetry(rectX, rectY, width, height int) {
	if len(a.Telemetry) < 2 {
		return
	}

	minVal, maxVal := a.Telemetry[0], a.Telemetry[0]
	for _, v := range a.Telemetry {
		minVal, maxVal = min(minVal, v), max(maxVal, v)
	}
	if maxVal == minVal {
		maxVal = minVal + 1
	}

	points := make([]rl.Vector2, len(a.Telemetry))
	for i, val := range a.Telemetry {
		px := float32(rectX) + (float32(i)/float32(len(a.Telemetry)))*float32(width)
		norm := (val - minVal) / (maxVal - minVal)
		py := float32(rectY+height) - float32(norm)*float32(height)
		points[i] = rl.NewVector2(px, py)
	}

	rl.DrawLineStrip(points, ColAccent)
	a.drawText(fmt.Sprintf("KE: %.2e", a.Telemetry[len(a.Telemetry)-1]), rectX+width+10, rectY+height-10, 14, ColText)
}

// drawContainer draws the box outline and maps every particle to a circle.
func (a *App) drawContainer() {
	rl.DrawRectangleLines(marginX, hudTop, int32(a.Snap.Width), int32(a.Snap.Height), ColWall)
	for _, p := range a.Snap.Particles {
		center := rl.NewVector2(float32(marginX+p.X), float32(hudTop+p.Y))
		rl.DrawCircleV(center, float32(p.Radius), hexColor(p.Color))
	}
}

// hexColor parses #rrggbb, falling back to red.
func hexColor(s string) rl.Color {
	var r, g, b uint8
	if _, err := fmt.Sscanf(s, "#%02x%02x%02x", &r, &g, &b); err != nil {
		return rl.Red
	}
	return rl.NewColor(r, g, b, 255)
}
