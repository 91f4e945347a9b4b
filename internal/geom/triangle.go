package geom

// Triangle is three points in order.
type Triangle [3]Point

// DoubleArea returns twice the signed area; positive when the vertices turn
// clockwise in the y-down document space.
func (t Triangle) DoubleArea() float64 {
	return Cross(t[1].Sub(t[0]), t[2].Sub(t[0]))
}

// Degenerate reports whether the three points are exactly collinear.
func (t Triangle) Degenerate() bool {
	return t.DoubleArea() == 0
}

// Contains reports whether p lies inside or on the triangle, for either
// winding.
func (t Triangle) Contains(p Point) bool {
	d0 := Cross(t[1].Sub(t[0]), p.Sub(t[0]))
	d1 := Cross(t[2].Sub(t[1]), p.Sub(t[1]))
	d2 := Cross(t[0].Sub(t[2]), p.Sub(t[2]))
	hasNeg := d0 < 0 || d1 < 0 || d2 < 0
	hasPos := d0 > 0 || d1 > 0 || d2 > 0
	return !(hasNeg && hasPos)
}

// Transform returns the triangle with m applied to each vertex.
func (t Triangle) Transform(m Matrix2D) Triangle {
	return Triangle{m.Apply(t[0]), m.Apply(t[1]), m.Apply(t[2])}
}

// Bounds returns the bounding box of the triangle.
func (t Triangle) Bounds() AxisBox {
	return BoxOf(t[0], t[1], t[2])
}
