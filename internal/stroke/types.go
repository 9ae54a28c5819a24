// Package stroke holds the handwriting data model and the two
// size-reduction passes that run before a capture leaves the device:
// geometric simplification and transport optimization.
package stroke

// Point is a single sampled pen position. Coordinates are in canvas
// units, pressure is normalized to [0,1] and time is epoch milliseconds.
type Point struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Pressure float64 `json:"pressure"`
	Time     int64   `json:"time"`
}

// Stroke is one continuous pen-down-to-pen-up point sequence.
type Stroke struct {
	Points []Point `json:"points"`
	Color  string  `json:"color,omitempty"`
	Width  float64 `json:"width,omitempty"`
}

// Document is everything captured on one drawing surface at submission
// time.
type Document struct {
	Strokes   []Stroke `json:"strokes"`
	Width     float64  `json:"width"`
	Height    float64  `json:"height"`
	Timestamp int64    `json:"timestamp"`
}

// CompactPoint is the transport representation of a point. Coordinates
// and time are quantized to integers and pressure is kept at reduced
// precision to shrink the wire payload.
type CompactPoint struct {
	X int     `json:"x"`
	Y int     `json:"y"`
	T int64   `json:"t"`
	P float64 `json:"p"`
}

// TotalPoints returns the number of points across all strokes.
func (d Document) TotalPoints() int {
	total := 0
	for _, s := range d.Strokes {
		total += len(s.Points)
	}
	return total
}

// PointSequences extracts the bare point sequences of a document,
// dropping per-stroke styling.
func (d Document) PointSequences() [][]Point {
	out := make([][]Point, len(d.Strokes))
	for i, s := range d.Strokes {
		out[i] = s.Points
	}
	return out
}

// FromCompact widens a compact sequence back to points, used when the
// server re-derives the vector document from submitted data.
func FromCompact(points []CompactPoint) []Point {
	out := make([]Point, len(points))
	for i, p := range points {
		out[i] = Point{
			X:        float64(p.X),
			Y:        float64(p.Y),
			Pressure: p.P,
			Time:     p.T,
		}
	}
	return out
}
