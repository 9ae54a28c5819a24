package svg

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"inkrelay-backend/internal/stroke"
)

type boundingBox struct {
	minX, minY, maxX, maxY float64
}

func computeBoundingBox(strokes []stroke.Stroke) boundingBox {
	bbox := boundingBox{
		minX: math.Inf(1), minY: math.Inf(1),
		maxX: math.Inf(-1), maxY: math.Inf(-1),
	}

	for _, s := range strokes {
		for _, p := range s.Points {
			bbox.minX = math.Min(bbox.minX, p.X)
			bbox.maxX = math.Max(bbox.maxX, p.X)
			bbox.minY = math.Min(bbox.minY, p.Y)
			bbox.maxY = math.Max(bbox.maxY, p.Y)
		}
	}

	if math.IsInf(bbox.minX, 1) {
		return boundingBox{minX: 0, minY: 0, maxX: 100, maxY: 100}
	}
	return bbox
}

func dim(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Encode assembles a complete SVG document from a capture. The viewBox
// is the bounding box of all points plus padding, while the root
// width/height carry the canvas size, so the document scales
// independently of the coordinate space it was authored in. With
// variableWidth set, strokes are emitted as pressure-driven filled
// ribbons instead of uniform-width curves.
func Encode(doc stroke.Document, opts Options, variableWidth bool) string {
	if len(doc.Strokes) == 0 {
		return emptySVG(doc.Width, doc.Height)
	}

	bbox := computeBoundingBox(doc.Strokes)
	viewBoxX := int(math.Floor(bbox.minX - opts.Padding))
	viewBoxY := int(math.Floor(bbox.minY - opts.Padding))
	viewBoxW := int(math.Ceil(bbox.maxX - bbox.minX + opts.Padding*2))
	viewBoxH := int(math.Ceil(bbox.maxY - bbox.minY + opts.Padding*2))

	var paths []string
	for _, s := range doc.Strokes {
		if len(s.Points) == 0 {
			continue
		}

		color := s.Color
		if color == "" {
			color = opts.StrokeColor
		}

		if variableWidth {
			pathData := RibbonPath(s.Points, opts)
			if pathData == "" {
				continue
			}
			paths = append(paths, fmt.Sprintf(`    <path d="%s" fill="%s" stroke="none"/>`, pathData, color))
			continue
		}

		pathData := StrokePath(s.Points, opts)
		if pathData == "" {
			continue
		}

		// Uniform-width mode renders the stroke's average pressure
		// into a single stroke-width.
		avgPressure := 0.0
		for _, p := range s.Points {
			avgPressure += p.Pressure
		}
		avgPressure /= float64(len(s.Points))
		strokeWidth := opts.BaseStrokeWidth + avgPressure*opts.PressureMultiplier

		paths = append(paths, fmt.Sprintf(
			`    <path d="%s" fill="none" stroke="%s" stroke-width="%s" stroke-linecap="round" stroke-linejoin="round"/>`,
			pathData, color, strconv.FormatFloat(strokeWidth, 'f', 1, 64)))
	}

	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" viewBox="%d %d %d %d" width="%s" height="%s">
  <g id="strokes">
%s
  </g>
</svg>`, viewBoxX, viewBoxY, viewBoxW, viewBoxH, dim(doc.Width), dim(doc.Height), strings.Join(paths, "\n"))
}

// EncodeCompact is the server-side encoding path: it re-derives the
// authoritative document from the submitted, already-optimized points
// in ribbon mode. Strokes shorter than two points are skipped.
func EncodeCompact(strokes [][]stroke.CompactPoint, width, height float64, color string, baseStrokeWidth float64, opts Options) string {
	opts.BaseStrokeWidth = baseStrokeWidth
	if color != "" {
		opts.StrokeColor = color
	}

	doc := stroke.Document{Width: width, Height: height}
	for _, s := range strokes {
		if len(s) < 2 {
			continue
		}
		doc.Strokes = append(doc.Strokes, stroke.Stroke{Points: stroke.FromCompact(s)})
	}

	if len(doc.Strokes) == 0 {
		return emptySVG(width, height)
	}
	return Encode(doc, opts, true)
}

func emptySVG(width, height float64) string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %s %s" width="%s" height="%s">
  <g id="strokes"></g>
</svg>`, dim(width), dim(height), dim(width), dim(height))
}
