package distort

import (
	"fmt"
	"log/slog"

	"github.com/inamate/vecdraw/internal/geom"
)

// NumCorners is the fixed number of distortion handles.
const NumCorners = 4

// Quad holds the four draggable corners, nominally the NW, NE, SE, SW
// corners of the source box, and the junction derived from them. Corner
// order never changes, even when the quad self-intersects.
type Quad struct {
	Corners  [NumCorners]geom.Point
	Junction geom.Point
}

// IdentityQuad returns the quad sitting on the corners of box.
func IdentityQuad(box geom.AxisBox) Quad {
	q := Quad{Corners: box.Corners()}
	q.RecomputeJunction(box)
	return q
}

// RecomputeJunction sets the junction to the intersection of the diagonals
// corner0–corner2 and corner1–corner3. When the diagonals are parallel the
// junction falls back to the midpoint of src, the source shape's box.
func (q *Quad) RecomputeJunction(src geom.AxisBox) {
	x0, y0 := q.Corners[0].X, q.Corners[0].Y
	x1, y1 := q.Corners[1].X, q.Corners[1].Y
	x2, y2 := q.Corners[2].X, q.Corners[2].Y
	x3, y3 := q.Corners[3].X, q.Corners[3].Y

	lambda := (y0-y2)*(x3-x1) - (x0-x2)*(y3-y1)
	if lambda == 0 {
		slog.Debug("distort: parallel diagonals, junction at source midpoint")
		q.Junction = src.Center()
		return
	}

	d02 := x0*y2 - y0*x2
	d13 := x1*y3 - y1*x3
	x := (d02*(x1-x3) - (x0-x2)*d13) / lambda

	var y float64
	if x0 != x2 {
		y = y0 + (x-x0)*(y2-y0)/(x2-x0)
	} else {
		// corner0–corner2 is vertical; lambda != 0 guarantees x1 != x3.
		y = y1 + (x-x1)*(y3-y1)/(x3-x1)
	}
	q.Junction = geom.Point{X: x, Y: y}
}

// SelectNear returns the first corner whose box of half extents rx, ry
// contains p.
func (q Quad) SelectNear(p geom.Point, rx, ry float64) (int, bool) {
	for i, c := range q.Corners {
		if geom.Around(c, rx, ry).Contains(p) {
			return i, true
		}
	}
	return -1, false
}

// Corner returns corner i. It panics if i is not in 0..3.
func (q Quad) Corner(i int) geom.Point {
	mustCorner(i)
	return q.Corners[i]
}

// Transform applies m to the four corners. The junction is left alone;
// callers re-derive it.
func (q *Quad) Transform(m geom.Matrix2D) {
	for i := range q.Corners {
		q.Corners[i] = m.Apply(q.Corners[i])
	}
}

// Bounds returns the box of the corners and the junction.
func (q Quad) Bounds() geom.AxisBox {
	b := geom.BoxOf(q.Corners[:]...)
	b.Extend(q.Junction)
	return b
}

func mustCorner(i int) {
	if i < 0 || i >= NumCorners {
		panic(fmt.Sprintf("distort: corner index %d out of range [0,%d)", i, NumCorners))
	}
}
