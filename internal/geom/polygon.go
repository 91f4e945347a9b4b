package geom

// Polygon is a closed ring of points; the closing edge is implicit.
type Polygon []Point

// Bounds returns the bounding box of the polygon.
func (pg Polygon) Bounds() AxisBox {
	return BoxOf(pg...)
}

// Transform returns a copy of the polygon with m applied to every point.
func (pg Polygon) Transform(m Matrix2D) Polygon {
	out := make(Polygon, len(pg))
	for i, p := range pg {
		out[i] = m.Apply(p)
	}
	return out
}

// DoubleArea returns twice the signed shoelace area.
func (pg Polygon) DoubleArea() float64 {
	var sum float64
	for i := range pg {
		sum += Cross(pg[i], pg[(i+1)%len(pg)])
	}
	return sum
}

// ClipToTriangle clips the polygon against the triangle with the
// Sutherland–Hodgman algorithm. The triangle is convex so a single pass per
// edge is exact; a concave subject may come back with zero-width bridges
// along the triangle edges, which fill rules ignore. A degenerate triangle
// clips everything away.
func (pg Polygon) ClipToTriangle(t Triangle) Polygon {
	area := t.DoubleArea()
	if area == 0 || len(pg) < 3 {
		return nil
	}
	sign := 1.0
	if area < 0 {
		sign = -1
	}

	out := pg
	for i := 0; i < 3 && len(out) > 0; i++ {
		a, b := t[i], t[(i+1)%3]
		inside := func(p Point) bool { return sign*Cross(b.Sub(a), p.Sub(a)) >= 0 }

		in := out
		out = make(Polygon, 0, len(in)+2)
		prev := in[len(in)-1]
		for _, cur := range in {
			switch {
			case inside(cur):
				if !inside(prev) {
					out = append(out, intersect(prev, cur, a, b))
				}
				out = append(out, cur)
			case inside(prev):
				out = append(out, intersect(prev, cur, a, b))
			}
			prev = cur
		}
	}
	if len(out) < 3 {
		return nil
	}
	return out
}

// intersect returns where segment p→q crosses the line through a and b.
// Callers only ask when p and q lie on opposite sides, so the denominator
// is nonzero.
func intersect(p, q, a, b Point) Point {
	ab := b.Sub(a)
	dp := Cross(ab, p.Sub(a))
	dq := Cross(ab, q.Sub(a))
	return p.Lerp(q, dp/(dp-dq))
}
