package distort

import "github.com/inamate/vecdraw/internal/geom"

// RegionIndex identifies one of the four triangular regions.
type RegionIndex int

const (
	Upper RegionIndex = iota
	Right
	Lower
	Left
)

// NumRegions is the fixed number of regions.
const NumRegions = 4

func (r RegionIndex) String() string {
	switch r {
	case Upper:
		return "upper"
	case Right:
		return "right"
	case Lower:
		return "lower"
	case Left:
		return "left"
	}
	return "unknown"
}

// Region pairs a source triangle of the shape's box with its target triangle
// in the quad. Matrix maps Source onto Target and is only meaningful when
// Degenerate is false.
type Region struct {
	Source     geom.Triangle
	Target     geom.Triangle
	Matrix     geom.Matrix2D
	Degenerate bool
}

// Transform returns the region's map, or false for a degenerate region.
func (r Region) Transform() (geom.Matrix2D, bool) {
	return r.Matrix, !r.Degenerate
}

// Partition builds the four source/target triangle pairs. Source triangles
// fan from the box midpoint, target triangles from the quad junction, in the
// same cyclic order, so every region maps the midpoint to the junction.
// Matrices are left unset.
func Partition(box geom.AxisBox, q Quad) [NumRegions]Region {
	mid := box.Center()
	nw, ne := box.Corner(geom.NW), box.Corner(geom.NE)
	se, sw := box.Corner(geom.SE), box.Corner(geom.SW)
	c, j := q.Corners, q.Junction

	return [NumRegions]Region{
		Upper: {Source: geom.Triangle{nw, ne, mid}, Target: geom.Triangle{c[0], c[1], j}},
		Right: {Source: geom.Triangle{ne, se, mid}, Target: geom.Triangle{c[1], c[2], j}},
		Lower: {Source: geom.Triangle{se, sw, mid}, Target: geom.Triangle{c[2], c[3], j}},
		Left:  {Source: geom.Triangle{sw, nw, mid}, Target: geom.Triangle{c[3], c[0], j}},
	}
}

// fitRegions fits one affine map per region. A region is degenerate when
// either of its triangles is collinear.
func fitRegions(regions *[NumRegions]Region) {
	for i := range regions {
		r := &regions[i]
		m, ok := geom.FitTriangles(r.Source, r.Target)
		if !ok || r.Target.Degenerate() {
			r.Matrix = geom.Matrix2D{}
			r.Degenerate = true
			continue
		}
		r.Matrix = m
		r.Degenerate = false
	}
}
