package svg

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inkrelay-backend/internal/stroke"
)

func TestEncode(t *testing.T) {
	opts := DefaultOptions()

	t.Run("Should render empty document at canvas size", func(t *testing.T) {
		doc := stroke.Document{Width: 800, Height: 600}

		out := Encode(doc, opts, false)

		assert.Contains(t, out, `viewBox="0 0 800 600"`)
		assert.Contains(t, out, `width="800" height="600"`)
		assert.Contains(t, out, `<g id="strokes"></g>`)
	})

	t.Run("Should compute viewBox from bounding box plus padding", func(t *testing.T) {
		doc := stroke.Document{
			Width:  800,
			Height: 600,
			Strokes: []stroke.Stroke{{
				Points: []stroke.Point{
					{X: 100, Y: 50},
					{X: 300, Y: 250},
				},
			}},
		}

		out := Encode(doc, opts, false)

		// bbox 100..300 x 50..250, padding 10 on each side.
		assert.Contains(t, out, `viewBox="90 40 220 220"`)
		assert.Contains(t, out, `width="800" height="600"`)
	})

	t.Run("Should floor and ceil fractional viewBox values", func(t *testing.T) {
		doc := stroke.Document{
			Width:  400,
			Height: 300,
			Strokes: []stroke.Stroke{{
				Points: []stroke.Point{
					{X: 10.7, Y: 20.3},
					{X: 99.2, Y: 80.9},
				},
			}},
		}

		out := Encode(doc, opts, false)

		// minX-10=0.7 floors to 0, minY-10=10.3 floors to 10,
		// width 88.5+20 ceils to 109, height 60.6+20 ceils to 81.
		assert.Contains(t, out, `viewBox="0 10 109 81"`)
	})

	t.Run("Should render uniform strokes with average pressure width", func(t *testing.T) {
		doc := stroke.Document{
			Width:  400,
			Height: 300,
			Strokes: []stroke.Stroke{{
				Points: []stroke.Point{
					{X: 0, Y: 0, Pressure: 0.5},
					{X: 100, Y: 0, Pressure: 0.5},
				},
			}},
		}

		out := Encode(doc, opts, false)

		// 2 + 0.5*4 = 4.0
		assert.Contains(t, out, `stroke-width="4.0"`)
		assert.Contains(t, out, `stroke-linecap="round"`)
		assert.Contains(t, out, `fill="none"`)
		assert.Contains(t, out, `stroke="#2E2E2E"`)
	})

	t.Run("Should render ribbons as filled outlines", func(t *testing.T) {
		doc := stroke.Document{
			Width:  400,
			Height: 300,
			Strokes: []stroke.Stroke{{
				Points: []stroke.Point{
					{X: 0, Y: 0, Pressure: 0.5},
					{X: 100, Y: 20, Pressure: 0.7},
				},
				Color: "#112233",
			}},
		}

		out := Encode(doc, opts, true)

		assert.Contains(t, out, `fill="#112233"`)
		assert.Contains(t, out, `stroke="none"`)
		assert.NotContains(t, out, "stroke-width")
	})

	t.Run("Should skip empty strokes", func(t *testing.T) {
		doc := stroke.Document{
			Width:  400,
			Height: 300,
			Strokes: []stroke.Stroke{
				{Points: nil},
				{Points: []stroke.Point{{X: 0, Y: 0}, {X: 10, Y: 10}}},
			},
		}

		out := Encode(doc, opts, false)

		assert.Equal(t, 1, strings.Count(out, "<path"))
	})
}

func TestEncodeCompact(t *testing.T) {
	opts := DefaultOptions()

	t.Run("Should render submitted strokes in ribbon mode", func(t *testing.T) {
		strokes := [][]stroke.CompactPoint{{
			{X: 0, Y: 0, P: 0.5},
			{X: 50, Y: 10, P: 0.6},
			{X: 100, Y: 0, P: 0.4},
		}}

		out := EncodeCompact(strokes, 800, 600, "#445566", 12, opts)

		require.Contains(t, out, `<g id="strokes">`)
		assert.Contains(t, out, `fill="#445566"`)
		assert.Contains(t, out, `stroke="none"`)
		assert.Contains(t, out, `width="800" height="600"`)
	})

	t.Run("Should skip strokes below two points", func(t *testing.T) {
		strokes := [][]stroke.CompactPoint{
			{{X: 5, Y: 5}},
			{{X: 0, Y: 0}, {X: 10, Y: 10}},
		}

		out := EncodeCompact(strokes, 800, 600, "", 2, DefaultOptions())

		assert.Equal(t, 1, strings.Count(out, "<path"))
	})

	t.Run("Should fall back to empty document when nothing renders", func(t *testing.T) {
		strokes := [][]stroke.CompactPoint{
			{{X: 5, Y: 5}},
		}

		out := EncodeCompact(strokes, 800, 600, "", 2, DefaultOptions())

		assert.Contains(t, out, `viewBox="0 0 800 600"`)
		assert.Contains(t, out, `<g id="strokes"></g>`)
	})
}
