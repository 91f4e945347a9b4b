package export

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"math"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/vector"

	"github.com/inamate/vecdraw/internal/geom"
	"github.com/inamate/vecdraw/internal/shape"
)

// maxRasterPixels bounds the PNG area. The RGBA canvas takes four bytes
// per pixel.
const maxRasterPixels = 1 << 26

// WritePNG rasterises the page at opts.RasterScale pixels per document unit.
// Strokes are drawn as one quad per flattened edge.
func WritePNG(w io.Writer, p *Page, opts Options) error {
	img, err := Rasterize(p, opts.RasterScale, opts.Images)
	if err != nil {
		return err
	}
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// Rasterize renders the page into an RGBA image. images may be nil.
func Rasterize(p *Page, scale float64, images ImageSource) (*image.RGBA, error) {
	if scale <= 0 {
		scale = 1
	}
	fw, fh := math.Ceil(p.Width*scale), math.Ceil(p.Height*scale)
	if !(fw >= 1 && fh >= 1 && fw*fh <= maxRasterPixels) {
		return nil, fmt.Errorf("%w: %vx%v pixels", ErrRasterSize, fw, fh)
	}
	width, height := int(fw), int(fh)

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	bg := nrgba(backgroundColor(p.Background), 1)
	xdraw.Draw(dst, dst.Bounds(), image.NewUniform(bg), image.Point{}, xdraw.Src)

	c := &canvas{dst: dst, to: geom.Scale(scale, scale), r: vector.NewRasterizer(0, 0)}
	for _, it := range p.Items {
		if it.Image != nil {
			c.drawImage(it, images)
			continue
		}

		box := it.Path.BoundingBox()
		if fill, ok := parsePaint(it.Fill); ok {
			if rect := c.area(box, 0); !rect.Empty() {
				rasterPath(c.r, it.Path, c.begin(rect))
				c.r.Draw(dst, rect, image.NewUniform(nrgba(fill, it.Opacity)), image.Point{})
			}
		}
		if stroke, ok := parsePaint(it.Stroke); ok && it.StrokeWidth > 0 {
			hw := it.StrokeWidth * scale / 2
			if rect := c.area(box, hw); !rect.Empty() {
				rasterStroke(c.r, it.Path.Flatten(), hw, c.begin(rect))
				c.r.Draw(dst, rect, image.NewUniform(nrgba(stroke, it.Opacity)), image.Point{})
			}
		}
	}
	return dst, nil
}

// canvas draws items one at a time with a single rasterizer that is resized
// to the pixels each item can touch.
type canvas struct {
	dst *image.RGBA
	to  geom.Matrix2D
	r   *vector.Rasterizer
}

// area returns the canvas pixels covered by b, given in document units and
// grown by pad pixels. The result is empty when b misses the canvas.
func (c *canvas) area(b geom.AxisBox, pad float64) image.Rectangle {
	if b.IsEmpty() {
		return image.Rectangle{}
	}
	d := c.to.TransformBox(b).Inflate(pad+1, pad+1)
	size := c.dst.Bounds().Size()
	x0, y0 := math.Max(math.Floor(d.MinX), 0), math.Max(math.Floor(d.MinY), 0)
	x1, y1 := math.Min(math.Ceil(d.MaxX), float64(size.X)), math.Min(math.Ceil(d.MaxY), float64(size.Y))
	if !(x0 < x1 && y0 < y1) {
		return image.Rectangle{}
	}
	return image.Rect(int(x0), int(y0), int(x1), int(y1))
}

// begin sizes the rasterizer to rect and returns the matrix from document
// units to rasterizer pixels, whose origin is rect.Min.
func (c *canvas) begin(rect image.Rectangle) geom.Matrix2D {
	c.r.Reset(rect.Dx(), rect.Dy())
	return geom.Translate(-float64(rect.Min.X), -float64(rect.Min.Y)).Multiply(c.to)
}

// drawImage paints each bitmap piece through a coverage mask of its clip.
func (c *canvas) drawImage(it Item, images ImageSource) {
	var src image.Image
	if images != nil {
		img, err := images.Image(it.Image.AssetID)
		if err != nil {
			slog.Warn("export: bitmap unavailable, drawing placeholder", "asset", it.Image.AssetID, "error", err)
		} else {
			src = img
		}
	}

	for _, piece := range it.Image.Pieces {
		rect := c.area(piece.Clip.Bounds(), 0)
		if rect.Empty() {
			continue
		}
		rasterPath(c.r, polygonPath(piece.Clip), c.begin(rect))

		if src == nil {
			fill, _ := parsePaint(placeholderFill)
			c.r.Draw(c.dst, rect, image.NewUniform(nrgba(fill, it.Opacity)), image.Point{})
			continue
		}

		// The mask is read in canvas coordinates, so it only spans rect.
		mask := image.NewAlpha(rect)
		alpha := color.Alpha{A: uint8(math.Round(clamp01(it.Opacity) * 255))}
		c.r.Draw(mask, rect, image.NewUniform(alpha), image.Point{})

		// Bitmap pixel space is Width x Height; the decoded image may differ.
		sb := src.Bounds()
		fit := geom.Scale(it.Image.Width/float64(sb.Dx()), it.Image.Height/float64(sb.Dy())).
			Multiply(geom.Translate(-float64(sb.Min.X), -float64(sb.Min.Y)))
		m := c.to.Multiply(piece.Transform).Multiply(fit)

		dst := c.dst.SubImage(rect).(*image.RGBA)
		xdraw.BiLinear.Transform(dst, aff3(m), src, sb, xdraw.Over, &xdraw.Options{DstMask: mask})
	}
}

// aff3 converts a column-vector affine [a b c d e f] to x/image's row-major form.
func aff3(m geom.Matrix2D) f64.Aff3 {
	return f64.Aff3{m[0], m[2], m[4], m[1], m[3], m[5]}
}

func rasterPath(r *vector.Rasterizer, path *shape.Path, m geom.Matrix2D) {
	open := false
	walkPath(path, func(seg shape.Segment, _ geom.Point) {
		var q [3]geom.Point
		for j := 0; j < seg.Op.NumPoints(); j++ {
			q[j] = m.Apply(seg.P[j])
		}
		switch seg.Op {
		case shape.MoveTo:
			if open {
				r.ClosePath()
			}
			r.MoveTo(float32(q[0].X), float32(q[0].Y))
			open = true
		case shape.LineTo:
			r.LineTo(float32(q[0].X), float32(q[0].Y))
		case shape.QuadTo:
			r.QuadTo(float32(q[0].X), float32(q[0].Y), float32(q[1].X), float32(q[1].Y))
		case shape.CubicTo:
			r.CubeTo(float32(q[0].X), float32(q[0].Y), float32(q[1].X), float32(q[1].Y), float32(q[2].X), float32(q[2].Y))
		case shape.Close:
			r.ClosePath()
			open = false
		}
	})
	if open {
		r.ClosePath()
	}
}

// rasterStroke adds a quad of half width hw around every polygon edge.
func rasterStroke(r *vector.Rasterizer, polys []geom.Polygon, hw float64, m geom.Matrix2D) {
	for _, pg := range polys {
		for i := range pg {
			a, b := m.Apply(pg[i]), m.Apply(pg[(i+1)%len(pg)])
			d := geom.Dist(a, b)
			if d == 0 {
				continue
			}
			n := geom.Pt(a.Y-b.Y, b.X-a.X).Mul(hw / d)
			quad := [4]geom.Point{a.Add(n), b.Add(n), b.Sub(n), a.Sub(n)}
			r.MoveTo(float32(quad[0].X), float32(quad[0].Y))
			for _, q := range quad[1:] {
				r.LineTo(float32(q.X), float32(q.Y))
			}
			r.ClosePath()
		}
	}
}
