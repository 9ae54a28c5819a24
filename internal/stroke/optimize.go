package stroke

import (
	"encoding/json"
	"math"
	"math/rand"
	"time"
)

// OptimizerConfig tunes the transport optimization pass.
type OptimizerConfig struct {
	// MinDist is the minimum distance between kept points.
	MinDist float64
	// MinDistHigh replaces MinDist for strokes above HighPointCutover.
	MinDistHigh float64
	// HighPointCutover is the point count above which a stroke is
	// considered dense and sampled more aggressively.
	HighPointCutover int
	// MaxPointsPerStroke is a hard cap applied after sampling.
	MaxPointsPerStroke int
	// PressurePrecision is the number of decimal digits kept for
	// pressure values.
	PressurePrecision int
}

// DefaultOptimizerConfig returns the default optimization settings.
func DefaultOptimizerConfig() OptimizerConfig {
	return OptimizerConfig{
		MinDist:            2,
		MinDistHigh:        4,
		HighPointCutover:   500,
		MaxPointsPerStroke: 800,
		PressurePrecision:  2,
	}
}

// Optimizer shrinks stroke payloads for network transport: it
// re-samples by distance, caps the per-stroke point count and
// quantizes coordinates. The cap step thins interior points at random,
// so output sizes below the cap are an upper bound, not exact; pass a
// seeded rand for reproducible runs.
type Optimizer struct {
	cfg OptimizerConfig
	rng *rand.Rand
}

// NewOptimizer creates an optimizer. A nil rng gets a time-seeded one.
func NewOptimizer(cfg OptimizerConfig, rng *rand.Rand) *Optimizer {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Optimizer{cfg: cfg, rng: rng}
}

func pointDistance(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// sampleByDistance keeps the first point, then only points at least
// minDist away from the last kept one. The final point is always kept.
func sampleByDistance(points []Point, minDist float64) []Point {
	if len(points) <= 2 {
		return points
	}

	result := []Point{points[0]}
	lastKept := points[0]

	for i := 1; i < len(points)-1; i++ {
		if pointDistance(points[i], lastKept) >= minDist {
			result = append(result, points[i])
			lastKept = points[i]
		}
	}

	return append(result, points[len(points)-1])
}

// capPoints probabilistically thins interior points down to roughly
// the configured maximum, retaining the endpoints.
func (o *Optimizer) capPoints(points []Point) []Point {
	if len(points) <= o.cfg.MaxPointsPerStroke {
		return points
	}

	ratio := float64(o.cfg.MaxPointsPerStroke) / float64(len(points))
	thinned := []Point{points[0]}
	for i := 1; i < len(points)-1; i++ {
		if o.rng.Float64() < ratio {
			thinned = append(thinned, points[i])
		}
	}
	return append(thinned, points[len(points)-1])
}

func (o *Optimizer) quantize(points []Point) []CompactPoint {
	factor := math.Pow(10, float64(o.cfg.PressurePrecision))
	out := make([]CompactPoint, len(points))
	for i, p := range points {
		out[i] = CompactPoint{
			X: int(math.Round(p.X)),
			Y: int(math.Round(p.Y)),
			T: p.Time,
			P: math.Round(p.Pressure*factor) / factor,
		}
	}
	return out
}

func (o *Optimizer) optimizeStroke(points []Point) []CompactPoint {
	minDist := o.cfg.MinDist
	if len(points) > o.cfg.HighPointCutover {
		minDist = o.cfg.MinDistHigh
	}

	sampled := sampleByDistance(points, minDist)
	sampled = o.capPoints(sampled)
	return o.quantize(sampled)
}

// Optimize runs the full pass over every stroke. Empty strokes are
// dropped entirely.
func (o *Optimizer) Optimize(strokes [][]Point) [][]CompactPoint {
	out := make([][]CompactPoint, 0, len(strokes))
	for _, points := range strokes {
		if len(points) == 0 {
			continue
		}
		out = append(out, o.optimizeStroke(points))
	}
	return out
}

// OptimizeStats summarizes what an optimization pass achieved.
type OptimizeStats struct {
	OriginalStrokes  int
	OptimizedStrokes int
	OriginalPoints   int
	OptimizedPoints  int
	PayloadBytes     int
	ReductionPercent float64
}

// Stats compares input and output of an optimization pass. PayloadBytes
// is the serialized size of the optimized strokes.
func Stats(original [][]Point, optimized [][]CompactPoint) OptimizeStats {
	stats := OptimizeStats{
		OriginalStrokes:  len(original),
		OptimizedStrokes: len(optimized),
	}
	for _, s := range original {
		stats.OriginalPoints += len(s)
	}
	for _, s := range optimized {
		stats.OptimizedPoints += len(s)
	}
	if encoded, err := json.Marshal(optimized); err == nil {
		stats.PayloadBytes = len(encoded)
	}
	if stats.OriginalPoints > 0 {
		stats.ReductionPercent = float64(stats.OriginalPoints-stats.OptimizedPoints) / float64(stats.OriginalPoints) * 100
	}
	return stats
}
