package stroke

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimplify(t *testing.T) {
	t.Run("Should return short sequences unchanged", func(t *testing.T) {
		points := []Point{{X: 0, Y: 0}, {X: 10, Y: 10}}

		result := Simplify(points, 1)

		assert.Equal(t, points, result)
	})

	t.Run("Should preserve first and last points", func(t *testing.T) {
		points := []Point{
			{X: 0, Y: 0},
			{X: 5, Y: 30},
			{X: 10, Y: 2},
			{X: 15, Y: 40},
			{X: 20, Y: 0},
		}

		result := Simplify(points, 1)

		require.GreaterOrEqual(t, len(result), 2)
		assert.Equal(t, points[0], result[0])
		assert.Equal(t, points[len(points)-1], result[len(result)-1])
	})

	t.Run("Should keep significant deviations with small epsilon", func(t *testing.T) {
		points := []Point{
			{X: 0, Y: 0},
			{X: 5, Y: 20},
			{X: 10, Y: 0},
		}

		result := Simplify(points, 0)

		assert.Len(t, result, 3)
	})

	t.Run("Should collapse near-collinear points with large epsilon", func(t *testing.T) {
		points := []Point{
			{X: 0, Y: 0},
			{X: 3, Y: 0.2},
			{X: 6, Y: 0.1},
			{X: 10, Y: 0},
		}

		result := Simplify(points, 50)

		assert.Len(t, result, 2)
		assert.Equal(t, points[0], result[0])
		assert.Equal(t, points[3], result[1])
	})

	t.Run("Should reduce more with larger epsilon", func(t *testing.T) {
		points := make([]Point, 0, 100)
		for i := 0; i < 100; i++ {
			points = append(points, Point{
				X: float64(i),
				Y: float64(i%7) * 1.5,
			})
		}

		tight := Simplify(points, 0.1)
		loose := Simplify(points, 5)

		assert.LessOrEqual(t, len(loose), len(tight))
		assert.LessOrEqual(t, len(tight), len(points))
	})

	t.Run("Should handle identical start and end points", func(t *testing.T) {
		points := []Point{
			{X: 5, Y: 5},
			{X: 20, Y: 20},
			{X: 5, Y: 5},
		}

		result := Simplify(points, 1)

		assert.Len(t, result, 3)
	})
}

func TestAdaptiveEpsilon(t *testing.T) {
	t.Run("Should return unit epsilon for short sequences", func(t *testing.T) {
		points := []Point{{X: 0, Y: 0}, {X: 100, Y: 100}}

		assert.Equal(t, 1.0, AdaptiveEpsilon(points, DefaultTargetReduction))
	})

	t.Run("Should scale with bounding box diagonal", func(t *testing.T) {
		small := []Point{{X: 0, Y: 0}, {X: 50, Y: 50}, {X: 100, Y: 100}}
		large := []Point{{X: 0, Y: 0}, {X: 500, Y: 500}, {X: 1000, Y: 1000}}

		assert.Greater(t,
			AdaptiveEpsilon(large, DefaultTargetReduction),
			AdaptiveEpsilon(small, DefaultTargetReduction),
		)
	})

	t.Run("Should never go below the floor", func(t *testing.T) {
		points := []Point{{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 2, Y: 2}}

		assert.Equal(t, 0.5, AdaptiveEpsilon(points, DefaultTargetReduction))
	})

	t.Run("Should grow with target reduction", func(t *testing.T) {
		points := []Point{{X: 0, Y: 0}, {X: 500, Y: 0}, {X: 1000, Y: 800}}

		assert.Greater(t, AdaptiveEpsilon(points, 0.9), AdaptiveEpsilon(points, 0.3))
	})
}

func TestSimplifyStroke(t *testing.T) {
	t.Run("Should carry styling through", func(t *testing.T) {
		s := Stroke{
			Points: []Point{
				{X: 0, Y: 0},
				{X: 100, Y: 1},
				{X: 200, Y: 0},
			},
			Color: "#FF0000",
			Width: 3,
		}

		result := SimplifyStroke(s)

		assert.Equal(t, "#FF0000", result.Color)
		assert.Equal(t, 3.0, result.Width)
		assert.NotEmpty(t, result.Points)
	})
}

func TestCompression(t *testing.T) {
	t.Run("Should report reduction percentage", func(t *testing.T) {
		before := []Stroke{{Points: make([]Point, 100)}}
		after := []Stroke{{Points: make([]Point, 40)}}

		stats := Compression(before, after)

		assert.Equal(t, 100, stats.OriginalPoints)
		assert.Equal(t, 40, stats.SimplifiedPoints)
		assert.InDelta(t, 60.0, stats.ReductionPercent, 0.001)
	})

	t.Run("Should handle empty input", func(t *testing.T) {
		stats := Compression(nil, nil)

		assert.Zero(t, stats.ReductionPercent)
	})
}
