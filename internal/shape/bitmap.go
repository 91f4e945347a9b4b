package shape

import (
	"github.com/inamate/vecdraw/internal/distort"
	"github.com/inamate/vecdraw/internal/geom"
)

// Bitmap is an image asset placed in the document. Placement maps image
// pixel space (0..Width, 0..Height) into document coordinates, so any affine
// edit keeps the placed image an exact parallelogram.
type Bitmap struct {
	AssetID   string
	Width     float64
	Height    float64
	Placement geom.Matrix2D
}

// NewBitmap places an image of the given pixel size with its top-left corner
// at (x, y), one storage unit per pixel.
func NewBitmap(assetID string, x, y, w, h float64) *Bitmap {
	return &Bitmap{AssetID: assetID, Width: w, Height: h, Placement: geom.Translate(x, y)}
}

// Outline returns the placed parallelogram.
func (b *Bitmap) Outline() geom.Polygon {
	c := geom.Box(0, 0, b.Width, b.Height).Corners()
	return geom.Polygon{c[0], c[1], c[2], c[3]}.Transform(b.Placement)
}

func (b *Bitmap) BoundingBox() geom.AxisBox {
	return b.Placement.TransformBox(geom.Box(0, 0, b.Width, b.Height))
}

func (b *Bitmap) Translate(dx, dy float64) { b.ApplyMatrix(geom.Translate(dx, dy)) }

func (b *Bitmap) Scale(pivot geom.Point, sx, sy float64) {
	b.ApplyMatrix(geom.About(pivot, geom.Scale(sx, sy)))
}

func (b *Bitmap) Shear(pivot geom.Point, kx, ky float64) {
	b.ApplyMatrix(geom.About(pivot, geom.Shear(kx, ky)))
}

func (b *Bitmap) Rotate(pivot geom.Point, angle float64) {
	b.ApplyMatrix(geom.About(pivot, geom.Rotate(angle)))
}

func (b *Bitmap) ApplyMatrix(m geom.Matrix2D) {
	b.Placement = m.Multiply(b.Placement)
}

func (b *Bitmap) Clone() distort.Shape {
	c := *b
	return &c
}

func (b *Bitmap) WarpedOutline(regions [distort.NumRegions]distort.Region) distort.Geometry {
	return warp([]geom.Polygon{b.Outline()}, regions)
}

// Piece is one region of a warped bitmap: draw the image with Transform
// (pixel space to document space) clipped to Clip.
type Piece struct {
	Clip      geom.Polygon
	Transform geom.Matrix2D
}

// Pieces returns the per-region image draws of the warped bitmap.
// Degenerate regions and regions the image does not reach are skipped.
func (b *Bitmap) Pieces(regions [distort.NumRegions]distort.Region) []Piece {
	outline := b.Outline()
	var out []Piece
	for _, r := range regions {
		m, ok := r.Transform()
		if !ok {
			continue
		}
		clip := outline.ClipToTriangle(r.Source)
		if clip == nil {
			continue
		}
		out = append(out, Piece{
			Clip:      clip.Transform(m),
			Transform: m.Multiply(b.Placement),
		})
	}
	return out
}
