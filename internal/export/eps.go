package export

import (
	"io"
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/inamate/vecdraw/internal/geom"
	"github.com/inamate/vecdraw/internal/shape"
)

// WriteEPS writes the page as Encapsulated PostScript in points. PostScript
// has no transparency, so opacity is blended against the page background
// and bitmaps are drawn as placeholders.
func WriteEPS(w io.Writer, p *Page) error {
	out := newPrinter(w)
	bg := backgroundColor(p.Background)

	out.printf("%%!PS-Adobe-3.0 EPSF-3.0\n")
	out.printf("%%%%BoundingBox: 0 0 %d %d\n", int(math.Ceil(p.Width)), int(math.Ceil(p.Height)))
	out.printf("%%%%HiResBoundingBox: 0 0 %s %s\n", num(p.Width), num(p.Height))
	if p.Title != "" {
		out.printf("%%%%Title: %s\n", psString(p.Title))
	}
	out.printf("%%%%Creator: vecdraw\n%%%%EndComments\n")
	out.printf("gsave\n")
	out.printf("%s setrgbcolor 0 0 %s %s rectfill\n", psColor(bg), num(p.Width), num(p.Height))

	// Document space is y-down.
	flip := func(q geom.Point) geom.Point { return geom.Pt(q.X, p.Height-q.Y) }

	for _, it := range p.Items {
		if it.Image != nil {
			fill, _ := parsePaint(placeholderFill)
			for _, piece := range it.Image.Pieces {
				epsPath(out, polygonPath(piece.Clip), flip)
				out.printf("%s setrgbcolor fill\n", psColor(flatten(bg, fill, it.Opacity)))
			}
			continue
		}

		fill, hasFill := parsePaint(it.Fill)
		stroke, hasStroke := parsePaint(it.Stroke)
		hasStroke = hasStroke && it.StrokeWidth > 0
		if !hasFill && !hasStroke {
			continue
		}

		epsPath(out, it.Path, flip)
		if hasFill {
			op := "fill"
			if hasStroke {
				op = "gsave fill grestore"
			}
			out.printf("%s setrgbcolor %s\n", psColor(flatten(bg, fill, it.Opacity)), op)
		}
		if hasStroke {
			out.printf("%s setlinewidth %s setrgbcolor stroke\n", num(it.StrokeWidth), psColor(flatten(bg, stroke, it.Opacity)))
		}
	}

	out.printf("grestore\nshowpage\n%%%%EOF\n")
	return out.flush()
}

func epsPath(out *printer, path *shape.Path, flip func(geom.Point) geom.Point) {
	out.printf("newpath")
	walkPath(path, func(seg shape.Segment, start geom.Point) {
		switch seg.Op {
		case shape.MoveTo:
			q := flip(seg.P[0])
			out.printf(" %s %s moveto", num(q.X), num(q.Y))
		case shape.LineTo:
			q := flip(seg.P[0])
			out.printf(" %s %s lineto", num(q.X), num(q.Y))
		case shape.QuadTo:
			c1, c2 := cubicControls(start, seg.P[0], seg.P[1])
			epsCurve(out, flip(c1), flip(c2), flip(seg.P[1]))
		case shape.CubicTo:
			epsCurve(out, flip(seg.P[0]), flip(seg.P[1]), flip(seg.P[2]))
		case shape.Close:
			out.printf(" closepath")
		}
	})
	out.printf("\n")
}

func epsCurve(out *printer, c1, c2, end geom.Point) {
	out.printf(" %s %s %s %s %s %s curveto", num(c1.X), num(c1.Y), num(c2.X), num(c2.Y), num(end.X), num(end.Y))
}

func psColor(c colorful.Color) string {
	return num(c.R) + " " + num(c.G) + " " + num(c.B)
}
