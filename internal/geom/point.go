// Package geom provides the 2D primitives shared by the editor: points,
// axis-aligned boxes, triangles, polygons and affine matrices.
//
// All coordinates are document storage units, independent of the on-screen
// pixel scale.
package geom

import "math"

// Point is a 2D coordinate in document storage units.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point { return Point{X: x, Y: y} }

func (p Point) Add(q Point) Point           { return Point{p.X + q.X, p.Y + q.Y} }
func (p Point) Sub(q Point) Point           { return Point{p.X - q.X, p.Y - q.Y} }
func (p Point) Mul(s float64) Point         { return Point{p.X * s, p.Y * s} }
func (p Point) Offset(dx, dy float64) Point { return Point{p.X + dx, p.Y + dy} }

// Lerp returns the point at parameter t on the segment p→q.
func (p Point) Lerp(q Point, t float64) Point {
	return Point{p.X + (q.X-p.X)*t, p.Y + (q.Y-p.Y)*t}
}

// Cross returns the z component of the cross product of p and q as vectors.
func Cross(p, q Point) float64 { return p.X*q.Y - p.Y*q.X }

// Dist returns the euclidean distance between p and q.
func Dist(p, q Point) float64 { return math.Hypot(p.X-q.X, p.Y-q.Y) }

// IsFinite reports whether neither coordinate is NaN or infinite.
func (p Point) IsFinite() bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) && !math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}

// ApproxEqual compares two points with a tolerance relative to their magnitude.
func (p Point) ApproxEqual(q Point, eps float64) bool {
	return approx(p.X, q.X, eps) && approx(p.Y, q.Y, eps)
}

func approx(a, b, eps float64) bool {
	scale := math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
	return math.Abs(a-b) <= eps*scale
}
