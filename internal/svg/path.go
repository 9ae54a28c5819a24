// Package svg synthesizes vector path data from stroke point sequences
// and assembles complete SVG documents around them.
package svg

import (
	"math"
	"strconv"
	"strings"

	"inkrelay-backend/internal/stroke"
)

// Options controls path synthesis and document encoding.
type Options struct {
	// BaseStrokeWidth is the line width at zero pressure.
	BaseStrokeWidth float64
	// PressureMultiplier scales how strongly pressure widens the line.
	PressureMultiplier float64
	// StrokeColor is used when a stroke carries no color of its own.
	StrokeColor string
	// Padding is added around the drawing's bounding box in the viewBox.
	Padding float64
	// Precision is the number of decimal digits emitted for coordinates.
	Precision int
}

// DefaultOptions returns the standard rendering settings.
func DefaultOptions() Options {
	return Options{
		BaseStrokeWidth:    2,
		PressureMultiplier: 4,
		StrokeColor:        "#2E2E2E",
		Padding:            10,
		Precision:          2,
	}
}

func round(v float64, precision int) float64 {
	factor := math.Pow(10, float64(precision))
	return math.Round(v*factor) / factor
}

func num(v float64, precision int) string {
	return strconv.FormatFloat(round(v, precision), 'f', -1, 64)
}

// StrokePath converts a point sequence into uniform-width path data.
// Three or more points become a chain of quadratic curves that uses
// each interior point as control point and the midpoint to its
// successor as segment end. Two points become a straight line; a
// single point becomes a near-zero segment so renderers still put down
// a visible mark.
func StrokePath(points []stroke.Point, opts Options) string {
	precision := opts.Precision

	switch len(points) {
	case 0:
		return ""
	case 1:
		x := num(points[0].X, precision)
		y := num(points[0].Y, precision)
		return "M " + x + " " + y +
			" L " + num(points[0].X+0.1, precision) + " " + num(points[0].Y+0.1, precision)
	}

	var b strings.Builder
	b.WriteString("M " + num(points[0].X, precision) + " " + num(points[0].Y, precision))

	if len(points) == 2 {
		b.WriteString(" L " + num(points[1].X, precision) + " " + num(points[1].Y, precision))
		return b.String()
	}

	for i := 1; i < len(points)-1; i++ {
		curr := points[i]
		next := points[i+1]
		midX := (curr.X + next.X) / 2
		midY := (curr.Y + next.Y) / 2
		b.WriteString(" Q " + num(curr.X, precision) + " " + num(curr.Y, precision) +
			", " + num(midX, precision) + " " + num(midY, precision))
	}

	last := points[len(points)-1]
	secondLast := points[len(points)-2]
	b.WriteString(" Q " + num(secondLast.X, precision) + " " + num(secondLast.Y, precision) +
		", " + num(last.X, precision) + " " + num(last.Y, precision))

	return b.String()
}

// RibbonPath converts a point sequence into a closed, filled outline
// whose local width follows pen pressure. Each point is offset along
// its unit normal to build an upper and a lower boundary; the result
// walks the upper boundary forward and the lower one back. Sequences
// with fewer than two points produce no path.
func RibbonPath(points []stroke.Point, opts Options) string {
	if len(points) < 2 {
		return ""
	}

	type xy struct{ x, y float64 }
	upper := make([]xy, 0, len(points))
	lower := make([]xy, 0, len(points))

	for i, p := range points {
		width := (opts.BaseStrokeWidth + p.Pressure*opts.PressureMultiplier) / 2

		// Tangent: forward difference at the start, backward at the
		// end, centered in between.
		var dx, dy float64
		switch i {
		case 0:
			dx = points[1].X - p.X
			dy = points[1].Y - p.Y
		case len(points) - 1:
			dx = p.X - points[i-1].X
			dy = p.Y - points[i-1].Y
		default:
			dx = points[i+1].X - points[i-1].X
			dy = points[i+1].Y - points[i-1].Y
		}

		length := math.Hypot(dx, dy)
		if length == 0 {
			upper = append(upper, xy{p.X, p.Y - width})
			lower = append(lower, xy{p.X, p.Y + width})
			continue
		}

		nx := -dy / length
		ny := dx / length
		upper = append(upper, xy{
			x: round(p.X+nx*width, opts.Precision),
			y: round(p.Y+ny*width, opts.Precision),
		})
		lower = append(lower, xy{
			x: round(p.X-nx*width, opts.Precision),
			y: round(p.Y-ny*width, opts.Precision),
		})
	}

	var b strings.Builder
	b.WriteString("M " + num(upper[0].x, opts.Precision) + " " + num(upper[0].y, opts.Precision))
	for i := 1; i < len(upper); i++ {
		b.WriteString(" L " + num(upper[i].x, opts.Precision) + " " + num(upper[i].y, opts.Precision))
	}
	for i := len(lower) - 1; i >= 0; i-- {
		b.WriteString(" L " + num(lower[i].x, opts.Precision) + " " + num(lower[i].y, opts.Precision))
	}
	b.WriteString(" Z")

	return b.String()
}
