package export

import (
	"io"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/inamate/vecdraw/internal/geom"
	"github.com/inamate/vecdraw/internal/shape"
)

// WritePGF writes the page as a LaTeX pgfpicture in big points. The output
// needs \usepackage{pgf} and is meant to be \input into a document.
func WritePGF(w io.Writer, p *Page) error {
	out := newPrinter(w)
	flip := func(q geom.Point) geom.Point { return geom.Pt(q.X, p.Height-q.Y) }

	if p.Title != "" {
		out.printf("%% %s\n", texText(p.Title))
	}
	out.printf("\\begin{pgfpicture}\n")
	out.printf("\\pgfpathrectangle{\\pgfpointorigin}{\\pgfpoint{%sbp}{%sbp}}\n", num(p.Width), num(p.Height))
	out.printf("\\pgfusepath{use as bounding box}\n")

	bg := backgroundColor(p.Background)
	out.printf("\\begin{pgfscope}\n")
	pgfColor(out, "fill", bg)
	out.printf("\\pgfpathrectangle{\\pgfpointorigin}{\\pgfpoint{%sbp}{%sbp}}\n\\pgfusepath{fill}\n", num(p.Width), num(p.Height))
	out.printf("\\end{pgfscope}\n")

	for _, it := range p.Items {
		if it.Image != nil {
			fill, _ := parsePaint(placeholderFill)
			for _, piece := range it.Image.Pieces {
				out.printf("\\begin{pgfscope}\n")
				pgfColor(out, "fill", fill)
				pgfOpacity(out, "fill", it.Opacity)
				pgfPath(out, polygonPath(piece.Clip), flip)
				out.printf("\\pgfusepath{fill}\n\\end{pgfscope}\n")
			}
			continue
		}

		fill, hasFill := parsePaint(it.Fill)
		stroke, hasStroke := parsePaint(it.Stroke)
		hasStroke = hasStroke && it.StrokeWidth > 0
		if !hasFill && !hasStroke {
			continue
		}

		out.printf("\\begin{pgfscope}\n")
		var use string
		if hasFill {
			pgfColor(out, "fill", fill)
			pgfOpacity(out, "fill", it.Opacity)
			use = "fill"
		}
		if hasStroke {
			pgfColor(out, "stroke", stroke)
			pgfOpacity(out, "stroke", it.Opacity)
			out.printf("\\pgfsetlinewidth{%sbp}\n", num(it.StrokeWidth))
			if use != "" {
				use += ","
			}
			use += "stroke"
		}
		pgfPath(out, it.Path, flip)
		out.printf("\\pgfusepath{%s}\n\\end{pgfscope}\n", use)
	}

	out.printf("\\end{pgfpicture}\n")
	return out.flush()
}

// pgfColor defines and selects an rgb color for "fill" or "stroke".
func pgfColor(out *printer, which string, c colorful.Color) {
	out.printf("\\definecolor{vd%s}{rgb}{%s,%s,%s}\\pgfset%scolor{vd%s}\n",
		which, num(c.R), num(c.G), num(c.B), which, which)
}

func pgfOpacity(out *printer, which string, o float64) {
	if o < 1 {
		out.printf("\\pgfset%sopacity{%s}\n", which, num(clamp01(o)))
	}
}

func pgfPath(out *printer, path *shape.Path, flip func(geom.Point) geom.Point) {
	walkPath(path, func(seg shape.Segment, _ geom.Point) {
		switch seg.Op {
		case shape.MoveTo:
			out.printf("\\pgfpathmoveto{%s}\n", pgfPoint(flip(seg.P[0])))
		case shape.LineTo:
			out.printf("\\pgfpathlineto{%s}\n", pgfPoint(flip(seg.P[0])))
		case shape.QuadTo:
			out.printf("\\pgfpathquadraticcurveto{%s}{%s}\n", pgfPoint(flip(seg.P[0])), pgfPoint(flip(seg.P[1])))
		case shape.CubicTo:
			out.printf("\\pgfpathcurveto{%s}{%s}{%s}\n",
				pgfPoint(flip(seg.P[0])), pgfPoint(flip(seg.P[1])), pgfPoint(flip(seg.P[2])))
		case shape.Close:
			out.printf("\\pgfpathclose\n")
		}
	})
}

func pgfPoint(q geom.Point) string {
	return "\\pgfpoint{" + num(q.X) + "bp}{" + num(q.Y) + "bp}"
}
