package analysis

import (
	"strings"

	"github.com/san-kum/gassim/internal/sim"
)

// Point is one sample in a 2D portrait.
type Point struct {
	X, Y float64
}

func (p Point) Sub(o Point) Point { return Point{p.X - o.X, p.Y - o.Y} }

// bounds returns the padded bounding box of points. Each side grows by 10%
// of the extent; a zero extent is treated as 1.
func bounds(points []Point) (lo, hi Point) {
	lo, hi = points[0], points[0]
	for _, p := range points[1:] {
		lo = Point{min(lo.X, p.X), min(lo.Y, p.Y)}
		hi = Point{max(hi.X, p.X), max(hi.Y, p.Y)}
	}
	pad := hi.Sub(lo)
	if pad.X == 0 {
		pad.X = 1
	}
	if pad.Y == 0 {
		pad.Y = 1
	}
	pad = Point{pad.X * 0.1, pad.Y * 0.1}
	return lo.Sub(pad), Point{hi.X + pad.X, hi.Y + pad.Y}
}

// VelocityPortrait plots every particle's (vx, vy) pair. A thermalized gas
// fills a round cloud around the origin.
func VelocityPortrait(ps []sim.ParticleState, width, height int) string {
	points := make([]Point, len(ps))
	for i, p := range ps {
		points[i] = Point{X: p.VX, Y: p.VY}
	}
	return PortraitToASCII(points, width, height)
}

// PortraitToASCII scatters points onto a width x height rune grid and draws
// the axes where they cross the visible area.
func PortraitToASCII(points []Point, width, height int) string {
	if len(points) == 0 || width < 2 || height < 2 {
		return ""
	}

	lo, hi := bounds(points)
	span := hi.Sub(lo)

	toCell := func(p Point) (row, col int) {
		col = int((p.X - lo.X) / span.X * float64(width-1))
		row = height - 1 - int((p.Y-lo.Y)/span.Y*float64(height-1))
		return row, col
	}

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	for _, p := range points {
		row, col := toCell(p)
		if row >= 0 && row < height && col >= 0 && col < width {
			canvas[row][col] = '•'
		}
	}

	originRow, originCol := toCell(Point{})
	if lo.X <= 0 && hi.X >= 0 {
		for row := range canvas {
			if canvas[row][originCol] == ' ' {
				canvas[row][originCol] = '│'
			}
		}
	}
	if lo.Y <= 0 && hi.Y >= 0 {
		for col, r := range canvas[originRow] {
			if r == ' ' {
				canvas[originRow][col] = '─'
			}
		}
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}
