// Package shape holds the distortable shape variants of a document: vector
// paths (rectangles and ellipses are built as paths) and placed bitmaps.
// Both implement distort.Shape.
package shape

import (
	"github.com/inamate/vecdraw/internal/distort"
	"github.com/inamate/vecdraw/internal/geom"
)

// Op is a path segment operator, using the Canvas2D letters.
type Op byte

const (
	MoveTo  Op = 'M'
	LineTo  Op = 'L'
	QuadTo  Op = 'Q'
	CubicTo Op = 'C'
	Close   Op = 'Z'
)

// NumPoints returns how many points a segment with this operator carries.
func (op Op) NumPoints() int {
	switch op {
	case MoveTo, LineTo:
		return 1
	case QuadTo:
		return 2
	case CubicTo:
		return 3
	}
	return 0
}

// Segment is one path command. Only the first Op.NumPoints() entries of P
// are used; the last used entry is the end point.
type Segment struct {
	Op Op
	P  [3]geom.Point
}

// End returns the segment's end point, or false for Close.
func (s Segment) End() (geom.Point, bool) {
	n := s.Op.NumPoints()
	if n == 0 {
		return geom.Point{}, false
	}
	return s.P[n-1], true
}

// curveSteps is the number of line steps a curve is flattened into.
const curveSteps = 16

// Path is a vector path in document coordinates.
type Path struct {
	Segments []Segment
}

func (p *Path) MoveTo(x, y float64) *Path {
	return p.add(Segment{Op: MoveTo, P: [3]geom.Point{{X: x, Y: y}}})
}

func (p *Path) LineTo(x, y float64) *Path {
	return p.add(Segment{Op: LineTo, P: [3]geom.Point{{X: x, Y: y}}})
}

func (p *Path) QuadTo(cx, cy, x, y float64) *Path {
	return p.add(Segment{Op: QuadTo, P: [3]geom.Point{{X: cx, Y: cy}, {X: x, Y: y}}})
}

func (p *Path) CubicTo(c1x, c1y, c2x, c2y, x, y float64) *Path {
	return p.add(Segment{Op: CubicTo, P: [3]geom.Point{{X: c1x, Y: c1y}, {X: c2x, Y: c2y}, {X: x, Y: y}}})
}

func (p *Path) Close() *Path {
	return p.add(Segment{Op: Close})
}

func (p *Path) add(s Segment) *Path {
	p.Segments = append(p.Segments, s)
	return p
}

// Rect returns a closed rectangular path.
func Rect(x, y, w, h float64) *Path {
	p := &Path{}
	return p.MoveTo(x, y).LineTo(x+w, y).LineTo(x+w, y+h).LineTo(x, y+h).Close()
}

// Ellipse returns a closed ellipse built from four cubic arcs.
func Ellipse(cx, cy, rx, ry float64) *Path {
	// k = 4 * (sqrt(2) - 1) / 3
	const k = 0.5522847498
	kx, ky := rx*k, ry*k

	p := &Path{}
	return p.MoveTo(cx+rx, cy).
		CubicTo(cx+rx, cy+ky, cx+kx, cy+ry, cx, cy+ry).
		CubicTo(cx-kx, cy+ry, cx-rx, cy+ky, cx-rx, cy).
		CubicTo(cx-rx, cy-ky, cx-kx, cy-ry, cx, cy-ry).
		CubicTo(cx+kx, cy-ry, cx+rx, cy-ky, cx+rx, cy).
		Close()
}

// BoundingBox returns the box of every point of the path, control points
// included.
func (p *Path) BoundingBox() geom.AxisBox {
	b := geom.EmptyBox
	for _, s := range p.Segments {
		for i := 0; i < s.Op.NumPoints(); i++ {
			b.Extend(s.P[i])
		}
	}
	if b.IsEmpty() {
		return geom.AxisBox{}
	}
	return b
}

func (p *Path) Translate(dx, dy float64) { p.ApplyMatrix(geom.Translate(dx, dy)) }

func (p *Path) Scale(pivot geom.Point, sx, sy float64) {
	p.ApplyMatrix(geom.About(pivot, geom.Scale(sx, sy)))
}

func (p *Path) Shear(pivot geom.Point, kx, ky float64) {
	p.ApplyMatrix(geom.About(pivot, geom.Shear(kx, ky)))
}

func (p *Path) Rotate(pivot geom.Point, angle float64) {
	p.ApplyMatrix(geom.About(pivot, geom.Rotate(angle)))
}

// ApplyMatrix transforms every point. Béziers are affine invariant so
// transforming control points is exact.
func (p *Path) ApplyMatrix(m geom.Matrix2D) {
	for i := range p.Segments {
		s := &p.Segments[i]
		for j := 0; j < s.Op.NumPoints(); j++ {
			s.P[j] = m.Apply(s.P[j])
		}
	}
}

func (p *Path) Clone() distort.Shape {
	return &Path{Segments: append([]Segment(nil), p.Segments...)}
}

// Flatten converts the path into one polygon per subpath. Open subpaths are
// closed implicitly, as a fill would. Subpaths with fewer than three points
// are dropped.
func (p *Path) Flatten() []geom.Polygon {
	var (
		polys []geom.Polygon
		cur   geom.Polygon
		pen   geom.Point
	)
	flush := func() {
		if len(cur) >= 3 {
			polys = append(polys, cur)
		}
		cur = nil
	}

	for _, s := range p.Segments {
		switch s.Op {
		case MoveTo:
			flush()
			pen = s.P[0]
			cur = geom.Polygon{pen}
		case LineTo:
			if cur == nil {
				cur = geom.Polygon{pen}
			}
			pen = s.P[0]
			cur = append(cur, pen)
		case QuadTo:
			if cur == nil {
				cur = geom.Polygon{pen}
			}
			for i := 1; i <= curveSteps; i++ {
				cur = append(cur, quadAt(pen, s.P[0], s.P[1], float64(i)/curveSteps))
			}
			pen = s.P[1]
		case CubicTo:
			if cur == nil {
				cur = geom.Polygon{pen}
			}
			for i := 1; i <= curveSteps; i++ {
				cur = append(cur, cubicAt(pen, s.P[0], s.P[1], s.P[2], float64(i)/curveSteps))
			}
			pen = s.P[2]
		case Close:
			if len(cur) > 0 {
				pen = cur[0]
			}
			flush()
		}
	}
	flush()
	return polys
}

// WarpedOutline clips the flattened path to every non-degenerate region and
// maps each piece through that region's matrix.
func (p *Path) WarpedOutline(regions [distort.NumRegions]distort.Region) distort.Geometry {
	return warp(p.Flatten(), regions)
}

func warp(polys []geom.Polygon, regions [distort.NumRegions]distort.Region) distort.Geometry {
	var g distort.Geometry
	for _, r := range regions {
		m, ok := r.Transform()
		if !ok {
			continue
		}
		for _, pg := range polys {
			if piece := pg.ClipToTriangle(r.Source); piece != nil {
				g = append(g, piece.Transform(m))
			}
		}
	}
	return g
}

func quadAt(p0, p1, p2 geom.Point, t float64) geom.Point {
	a := p0.Lerp(p1, t)
	b := p1.Lerp(p2, t)
	return a.Lerp(b, t)
}

func cubicAt(p0, p1, p2, p3 geom.Point, t float64) geom.Point {
	a := p0.Lerp(p1, t)
	b := p1.Lerp(p2, t)
	c := p2.Lerp(p3, t)
	return quadAt(a, b, c, t)
}

var (
	_ distort.Shape = (*Path)(nil)
	_ distort.Shape = (*Bitmap)(nil)
)
