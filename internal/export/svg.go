package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/gassim/internal/sim"
)

const background = "#0a0a0a"

// SnapshotToSVG draws the container outline and one filled circle per
// particle. Container coordinates map 1:1 to SVG user units times scale.
func SnapshotToSVG(snap sim.Snapshot, scale float64) string {
	if scale <= 0 {
		scale = 1
	}
	width := snap.Width * scale
	height := snap.Height * scale

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
<rect x="0" y="0" width="%.1f" height="%.1f" fill="none" stroke="#444444"/>
<g>
`, width, height, width, height, background, width, height))

	for _, p := range snap.Particles {
		fill := p.Color
		if fill == "" {
			fill = "#ff0000"
		}
		sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s"/>
`, p.X*scale, p.Y*scale, p.Radius*scale, fill))
	}

	sb.WriteString(fmt.Sprintf(`</g>
<text x="4" y="14" fill="#888888" font-family="monospace" font-size="12">tick %d  n=%d  %s</text>
</svg>`, snap.Tick, len(snap.Particles), snap.Model))
	return sb.String()
}

// SeriesToSVG plots values against ticks as a single polyline.
func SeriesToSVG(ticks []int, values []float64, width, height int, strokeColor string) string {
	n := len(values)
	if len(ticks) < n {
		n = len(ticks)
	}
	if n < 2 {
		return ""
	}

	minX, maxX := float64(ticks[0]), float64(ticks[0])
	minY, maxY := values[0], values[0]
	for i := 0; i < n; i++ {
		x := float64(ticks[i])
		minX, maxX = min(minX, x), max(maxX, x)
		minY, maxY = min(minY, values[i]), max(maxY, values[i])
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeY = maxY - minY

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, background, strokeColor))

	for i := 0; i < n; i++ {
		x := (float64(ticks[i]) - minX) / rangeX * float64(width)
		y := float64(height) - (values[i]-minY)/rangeY*float64(height)

		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}
