package distort

import "github.com/inamate/vecdraw/internal/geom"

// Shape is the capability a distortable object exposes to the Engine.
// Geometry operations act on the shape's own coordinates, in the same space
// as the quad corners.
type Shape interface {
	BoundingBox() geom.AxisBox
	Translate(dx, dy float64)
	Scale(pivot geom.Point, sx, sy float64)
	Shear(pivot geom.Point, kx, ky float64)
	Rotate(pivot geom.Point, angle float64)
	ApplyMatrix(m geom.Matrix2D)
	Clone() Shape

	// WarpedOutline clips the shape to each region's source triangle,
	// applies that region's map and returns the union of the pieces.
	// Degenerate regions contribute nothing.
	WarpedOutline(regions [NumRegions]Region) Geometry
}

// Geometry is a set of closed polygons filled with the nonzero rule.
type Geometry []geom.Polygon

// Bounds returns the box of every polygon in g, or geom.EmptyBox.
func (g Geometry) Bounds() geom.AxisBox {
	b := geom.EmptyBox
	for _, pg := range g {
		b.Merge(pg.Bounds())
	}
	return b
}
