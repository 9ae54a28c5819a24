package stroke

import (
	"math"
)

const (
	// DefaultTargetReduction is the compression ratio the adaptive
	// epsilon aims for when the caller does not supply one.
	DefaultTargetReduction = 0.6

	// minEpsilon keeps tiny strokes from collapsing to a straight line.
	minEpsilon = 0.5
)

// perpendicularDistance returns the distance from p to the segment
// between lineStart and lineEnd. A zero-length segment falls back to
// plain point distance.
func perpendicularDistance(p, lineStart, lineEnd Point) float64 {
	dx := lineEnd.X - lineStart.X
	dy := lineEnd.Y - lineStart.Y

	lengthSquared := dx*dx + dy*dy
	if lengthSquared == 0 {
		return math.Hypot(p.X-lineStart.X, p.Y-lineStart.Y)
	}

	numerator := math.Abs(dy*p.X - dx*p.Y + lineEnd.X*lineStart.Y - lineEnd.Y*lineStart.X)
	return numerator / math.Sqrt(lengthSquared)
}

// Simplify reduces the point count of a sequence with the
// Ramer-Douglas-Peucker algorithm while preserving its visual shape.
// The first and last points are always kept. Sequences shorter than
// three points are returned unchanged.
func Simplify(points []Point, epsilon float64) []Point {
	if len(points) < 3 {
		return points
	}

	start := points[0]
	end := points[len(points)-1]

	maxDistance := 0.0
	maxIndex := 0
	for i := 1; i < len(points)-1; i++ {
		if d := perpendicularDistance(points[i], start, end); d > maxDistance {
			maxDistance = d
			maxIndex = i
		}
	}

	if maxDistance > epsilon {
		left := Simplify(points[:maxIndex+1], epsilon)
		right := Simplify(points[maxIndex:], epsilon)
		// maxIndex appears in both halves; drop the duplicate.
		return append(append([]Point{}, left[:len(left)-1]...), right...)
	}

	return []Point{start, end}
}

// AdaptiveEpsilon derives a simplification tolerance from the stroke's
// bounding-box diagonal, scaled by the target compression ratio and
// floored so small strokes are never over-simplified.
func AdaptiveEpsilon(points []Point, targetReduction float64) float64 {
	if len(points) < 3 {
		return 1
	}

	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, p := range points {
		minX = math.Min(minX, p.X)
		maxX = math.Max(maxX, p.X)
		minY = math.Min(minY, p.Y)
		maxY = math.Max(maxY, p.Y)
	}

	diagonal := math.Hypot(maxX-minX, maxY-minY)
	epsilon := diagonal * 0.01 * (targetReduction / 0.5)

	return math.Max(epsilon, minEpsilon)
}

// SimplifyStroke simplifies one stroke with an adaptive tolerance.
func SimplifyStroke(s Stroke) Stroke {
	epsilon := AdaptiveEpsilon(s.Points, DefaultTargetReduction)
	return SimplifyStrokeWithEpsilon(s, epsilon)
}

// SimplifyStrokeWithEpsilon simplifies one stroke with an explicit
// tolerance. Styling is carried through untouched.
func SimplifyStrokeWithEpsilon(s Stroke, epsilon float64) Stroke {
	return Stroke{
		Points: Simplify(s.Points, epsilon),
		Color:  s.Color,
		Width:  s.Width,
	}
}

// SimplifyAll simplifies every stroke of a capture, each with its own
// adaptive tolerance.
func SimplifyAll(strokes []Stroke) []Stroke {
	out := make([]Stroke, len(strokes))
	for i, s := range strokes {
		out[i] = SimplifyStroke(s)
	}
	return out
}

// CompressionStats reports how much a simplification pass reduced the
// point count.
type CompressionStats struct {
	OriginalPoints   int
	SimplifiedPoints int
	ReductionPercent float64
}

// Compression compares the point counts before and after a pass.
func Compression(before, after []Stroke) CompressionStats {
	stats := CompressionStats{}
	for _, s := range before {
		stats.OriginalPoints += len(s.Points)
	}
	for _, s := range after {
		stats.SimplifiedPoints += len(s.Points)
	}
	if stats.OriginalPoints > 0 {
		stats.ReductionPercent = float64(stats.OriginalPoints-stats.SimplifiedPoints) / float64(stats.OriginalPoints) * 100
	}
	return stats
}
