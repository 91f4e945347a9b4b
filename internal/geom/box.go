package geom

import "math"

// BoxCorner names one of the four corners of an AxisBox.
// In the y-down document space NW is (MinX, MinY).
type BoxCorner int

const (
	NW BoxCorner = iota
	NE
	SE
	SW
)

// AxisBox is an axis-aligned bounding box. MinX <= MaxX and MinY <= MaxY; a
// box with zero width or height is valid and describes a segment or a point.
type AxisBox struct {
	MinX float64 `json:"minX"`
	MinY float64 `json:"minY"`
	MaxX float64 `json:"maxX"`
	MaxY float64 `json:"maxY"`
}

// EmptyBox is the identity for Merge and Extend: it contains nothing and
// merging anything into it yields that thing.
var EmptyBox = AxisBox{
	MinX: math.Inf(1), MinY: math.Inf(1),
	MaxX: math.Inf(-1), MaxY: math.Inf(-1),
}

// Box returns the box spanned by two opposite corners in any order.
func Box(x0, y0, x1, y1 float64) AxisBox {
	return AxisBox{
		MinX: math.Min(x0, x1), MinY: math.Min(y0, y1),
		MaxX: math.Max(x0, x1), MaxY: math.Max(y0, y1),
	}
}

// BoxOf returns the smallest box containing every point, or EmptyBox.
func BoxOf(points ...Point) AxisBox {
	b := EmptyBox
	for _, p := range points {
		b.Extend(p)
	}
	return b
}

// IsEmpty reports whether the box was never extended.
func (b AxisBox) IsEmpty() bool {
	return b.MinX > b.MaxX || b.MinY > b.MaxY
}

func (b AxisBox) Width() float64  { return b.MaxX - b.MinX }
func (b AxisBox) Height() float64 { return b.MaxY - b.MinY }

// Center returns the plain midpoint of the box.
func (b AxisBox) Center() Point {
	return Point{(b.MinX + b.MaxX) / 2, (b.MinY + b.MaxY) / 2}
}

// Corner returns the requested corner.
func (b AxisBox) Corner(which BoxCorner) Point {
	switch which {
	case NW:
		return Point{b.MinX, b.MinY}
	case NE:
		return Point{b.MaxX, b.MinY}
	case SE:
		return Point{b.MaxX, b.MaxY}
	case SW:
		return Point{b.MinX, b.MaxY}
	}
	panic("geom: invalid box corner")
}

// Corners returns the corners in NW, NE, SE, SW order.
func (b AxisBox) Corners() [4]Point {
	return [4]Point{b.Corner(NW), b.Corner(NE), b.Corner(SE), b.Corner(SW)}
}

// Contains reports whether p lies in the box, edges included.
func (b AxisBox) Contains(p Point) bool {
	return p.X >= b.MinX && p.X <= b.MaxX && p.Y >= b.MinY && p.Y <= b.MaxY
}

// Merge expands b in place to the union of b and other.
func (b *AxisBox) Merge(other AxisBox) {
	if other.IsEmpty() {
		return
	}
	b.MinX = math.Min(b.MinX, other.MinX)
	b.MinY = math.Min(b.MinY, other.MinY)
	b.MaxX = math.Max(b.MaxX, other.MaxX)
	b.MaxY = math.Max(b.MaxY, other.MaxY)
}

// Extend expands b in place to include p.
func (b *AxisBox) Extend(p Point) {
	b.MinX = math.Min(b.MinX, p.X)
	b.MinY = math.Min(b.MinY, p.Y)
	b.MaxX = math.Max(b.MaxX, p.X)
	b.MaxY = math.Max(b.MaxY, p.Y)
}

// Inflate returns the box grown by dx and dy on each side.
func (b AxisBox) Inflate(dx, dy float64) AxisBox {
	return AxisBox{b.MinX - dx, b.MinY - dy, b.MaxX + dx, b.MaxY + dy}
}

// Around returns the box of half extents rx, ry centered on p.
func Around(p Point, rx, ry float64) AxisBox {
	return AxisBox{p.X - rx, p.Y - ry, p.X + rx, p.Y + ry}
}
