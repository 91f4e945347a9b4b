package distort

import (
	"log/slog"

	"github.com/inamate/vecdraw/internal/geom"
)

// Engine owns a distortion: the wrapped shape, the quad and the four region
// maps derived from them. While an Engine wraps a shape, mutations of that
// shape must go through the Engine or the quad drifts out of sync with the
// shape's bounding box.
type Engine struct {
	shape   Shape
	quad    Quad
	regions [NumRegions]Region

	// selected is the corner being dragged, or -1. Not persisted.
	selected int
}

// New wraps shape with an identity distortion.
func New(shape Shape) *Engine {
	e := &Engine{shape: shape, selected: -1}
	e.ResetToIdentity()
	return e
}

// NewWithQuad wraps shape with the given corners, in corner0..corner3 order.
func NewWithQuad(shape Shape, corners [NumCorners]geom.Point) *Engine {
	e := &Engine{shape: shape, selected: -1}
	e.quad.Corners = corners
	e.Recompute()
	return e
}

// Recompute re-derives the junction and the four region maps from the
// current corners and the shape's bounding box. It is idempotent.
func (e *Engine) Recompute() {
	box := e.shape.BoundingBox()
	e.quad.RecomputeJunction(box)
	e.regions = Partition(box, e.quad)
	fitRegions(&e.regions)

	for i, r := range e.regions {
		if r.Degenerate {
			slog.Debug("distort: degenerate region", "region", RegionIndex(i))
		}
	}
}

// ResetToIdentity puts the corners back on the shape's bounding box.
func (e *Engine) ResetToIdentity() {
	e.quad = IdentityQuad(e.shape.BoundingBox())
	e.Recompute()
}

// Translate moves the shape and the corners by the same delta.
func (e *Engine) Translate(dx, dy float64) {
	e.shape.Translate(dx, dy)
	e.quad.Transform(geom.Translate(dx, dy))
	e.Recompute()
}

// Scale scales the shape and the corners about pivot.
func (e *Engine) Scale(pivot geom.Point, sx, sy float64) {
	e.shape.Scale(pivot, sx, sy)
	e.quad.Transform(geom.About(pivot, geom.Scale(sx, sy)))
	e.Recompute()
}

// Shear shears the shape and the corners about pivot.
func (e *Engine) Shear(pivot geom.Point, kx, ky float64) {
	e.shape.Shear(pivot, kx, ky)
	e.quad.Transform(geom.About(pivot, geom.Shear(kx, ky)))
	e.Recompute()
}

// Rotate rotates the shape and the corners about pivot by angle radians.
func (e *Engine) Rotate(pivot geom.Point, angle float64) {
	e.shape.Rotate(pivot, angle)
	e.quad.Transform(geom.About(pivot, geom.Rotate(angle)))
	e.Recompute()
}

// ApplyMatrix applies m to the shape and the corners.
func (e *Engine) ApplyMatrix(m geom.Matrix2D) {
	e.shape.ApplyMatrix(m)
	e.quad.Transform(m)
	e.Recompute()
}

// SetCorner moves corner i to p. It panics if i is not in 0..3.
func (e *Engine) SetCorner(i int, p geom.Point) {
	mustCorner(i)
	e.quad.Corners[i] = p
	e.Recompute()
}

// SetCorners replaces all four corners at once.
func (e *Engine) SetCorners(corners [NumCorners]geom.Point) {
	e.quad.Corners = corners
	e.Recompute()
}

// Corner returns corner i. It panics if i is not in 0..3.
func (e *Engine) Corner(i int) geom.Point { return e.quad.Corner(i) }

func (e *Engine) Corners() [NumCorners]geom.Point { return e.quad.Corners }
func (e *Engine) Junction() geom.Point            { return e.quad.Junction }
func (e *Engine) Quad() Quad                      { return e.quad }
func (e *Engine) Shape() Shape                    { return e.shape }

// Regions returns the four (source triangle, map) pairs consumed by
// renderers and export writers.
func (e *Engine) Regions() [NumRegions]Region { return e.regions }

// Transform returns the map of region r, or false when it is degenerate.
func (e *Engine) Transform(r RegionIndex) (geom.Matrix2D, bool) {
	return e.regions[r].Transform()
}

// Outline returns the warped geometry of the wrapped shape.
func (e *Engine) Outline() Geometry {
	return e.shape.WarpedOutline(e.regions)
}

// Bounds returns the box enclosing everything the distortion can draw.
func (e *Engine) Bounds() geom.AxisBox { return e.quad.Bounds() }

// Map sends a point of the source box through the region containing it.
// ok is false when p is outside the box or only degenerate regions hold it.
func (e *Engine) Map(p geom.Point) (geom.Point, bool) {
	for _, r := range e.regions {
		if r.Degenerate || !r.Source.Contains(p) {
			continue
		}
		return r.Matrix.Apply(p), true
	}
	return geom.Point{}, false
}

// Clone duplicates the distortion. The shape is cloned by its own rules;
// quad and region maps are copied by value. Selection is not carried over.
func (e *Engine) Clone() *Engine {
	return &Engine{
		shape:    e.shape.Clone(),
		quad:     e.quad,
		regions:  e.regions,
		selected: -1,
	}
}

// SelectCorner hit-tests the corners and remembers the first match.
func (e *Engine) SelectCorner(p geom.Point, rx, ry float64) (int, bool) {
	i, ok := e.quad.SelectNear(p, rx, ry)
	e.selected = i
	return i, ok
}

// SelectedCorner returns the remembered corner, if any.
func (e *Engine) SelectedCorner() (int, bool) {
	return e.selected, e.selected >= 0
}

func (e *Engine) ClearSelection() { e.selected = -1 }

// DragSelected moves the selected corner to p. It reports false when no
// corner is selected.
func (e *Engine) DragSelected(p geom.Point) bool {
	if e.selected < 0 {
		return false
	}
	e.SetCorner(e.selected, p)
	return true
}
