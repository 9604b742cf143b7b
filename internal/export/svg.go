package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/san-kum/jellosim/internal/dynamo"
	"github.com/san-kum/jellosim/internal/sim"
)

// SeriesToSVG draws one metric column of recorded frames against time as a
// single polyline.
func SeriesToSVG(frames []sim.Frame, column int, width, height int, strokeColor string) string {
	points := make([]struct{ X, Y float64 }, 0, len(frames))
	for _, f := range frames {
		if column < len(f.Values) {
			points = append(points, struct{ X, Y float64 }{f.Time, f.Values[column]})
		}
	}
	return TrajectoryToSVG(points, width, height, strokeColor)
}

// TrajectoryToSVG creates an SVG from trajectory data
func TrajectoryToSVG(points []struct{ X, Y float64 }, width, height int, strokeColor string) string {
	if len(points) < 2 {
		return ""
	}

	// Find bounds
	minX, maxX := points[0].X, points[0].X
	minY, maxY := points[0].Y, points[0].Y
	for _, p := range points {
		if p.X < minX {
			minX = p.X
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}

	// Add padding
	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, strokeColor))

	for i, p := range points {
		x := (p.X - minX) / rangeX * float64(width)
		y := float64(height) - (p.Y-minY)/rangeY*float64(height)

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

// LatticeToSVG draws the structural springs of a lattice projected onto
// the x-z plane, framed by the collision box.
func LatticeToSVG(w io.Writer, l *dynamo.Lattice, size int, strokeColor string) error {
	const half = 2.0
	scale := float64(size) / (2 * half)
	project := func(v dynamo.Vec) (float64, float64) {
		return (v.X + half) * scale, float64(size) - (v.Z+half)*scale
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a" stroke="#444466"/>
<g stroke="%s" stroke-width="0.8">
`, size, size, size, size, strokeColor))

	for _, link := range dynamo.Structural.Links(l) {
		x1, y1 := project(l.Pos[link.A])
		x2, y2 := project(l.Pos[link.B])
		sb.WriteString(fmt.Sprintf(`<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f"/>
`, x1, y1, x2, y2))
	}

	sb.WriteString("</g>\n</svg>")
	_, err := io.WriteString(w, sb.String())
	return err
}
