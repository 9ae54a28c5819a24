package svg

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"inkrelay-backend/internal/stroke"
)

func TestStrokePath(t *testing.T) {
	opts := DefaultOptions()

	t.Run("Should return empty for no points", func(t *testing.T) {
		assert.Empty(t, StrokePath(nil, opts))
	})

	t.Run("Should render a single point as a tiny segment", func(t *testing.T) {
		path := StrokePath([]stroke.Point{{X: 10, Y: 20}}, opts)

		assert.Equal(t, "M 10 20 L 10.1 20.1", path)
	})

	t.Run("Should render two points as a line", func(t *testing.T) {
		path := StrokePath([]stroke.Point{{X: 0, Y: 0}, {X: 30, Y: 40}}, opts)

		assert.Equal(t, "M 0 0 L 30 40", path)
	})

	t.Run("Should render three points as quadratic curves", func(t *testing.T) {
		path := StrokePath([]stroke.Point{
			{X: 0, Y: 0},
			{X: 10, Y: 10},
			{X: 20, Y: 0},
		}, opts)

		// Interior point is the control point, the midpoint to its
		// successor ends the segment, and a final curve lands on the
		// last point.
		assert.Equal(t, "M 0 0 Q 10 10, 15 5 Q 10 10, 20 0", path)
	})

	t.Run("Should respect coordinate precision", func(t *testing.T) {
		path := StrokePath([]stroke.Point{
			{X: 1.23456, Y: 2.34567},
			{X: 3.45678, Y: 4.56789},
		}, opts)

		assert.Equal(t, "M 1.23 2.35 L 3.46 4.57", path)
	})
}

func TestRibbonPath(t *testing.T) {
	opts := DefaultOptions()

	t.Run("Should return empty below two points", func(t *testing.T) {
		assert.Empty(t, RibbonPath(nil, opts))
		assert.Empty(t, RibbonPath([]stroke.Point{{X: 1, Y: 1}}, opts))
	})

	t.Run("Should produce a closed outline", func(t *testing.T) {
		path := RibbonPath([]stroke.Point{
			{X: 0, Y: 0, Pressure: 0.5},
			{X: 50, Y: 0, Pressure: 0.8},
			{X: 100, Y: 0, Pressure: 0.3},
		}, opts)

		assert.True(t, strings.HasPrefix(path, "M "))
		assert.True(t, strings.HasSuffix(path, " Z"))
		// Upper boundary forward plus lower boundary back: one M, the
		// rest straight segments.
		assert.Equal(t, 5, strings.Count(path, "L "))
	})

	t.Run("Should widen with pressure", func(t *testing.T) {
		light := RibbonPath([]stroke.Point{
			{X: 0, Y: 10, Pressure: 0},
			{X: 100, Y: 10, Pressure: 0},
		}, opts)
		heavy := RibbonPath([]stroke.Point{
			{X: 0, Y: 10, Pressure: 1},
			{X: 100, Y: 10, Pressure: 1},
		}, opts)

		// Horizontal line: the first boundary point is offset from
		// y = 10 by half the pressure-modulated width.
		assert.Contains(t, light, "M 0 11")
		assert.Contains(t, heavy, "M 0 13")
	})

	t.Run("Should handle coincident points", func(t *testing.T) {
		path := RibbonPath([]stroke.Point{
			{X: 5, Y: 5, Pressure: 0.5},
			{X: 5, Y: 5, Pressure: 0.5},
		}, opts)

		assert.True(t, strings.HasSuffix(path, " Z"))
	})
}
