package export

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/inamate/vecdraw/internal/geom"
	"github.com/inamate/vecdraw/internal/shape"
)

// printer is a buffered writer that keeps the first error.
type printer struct {
	w   *bufio.Writer
	err error
}

func newPrinter(w io.Writer) *printer {
	return &printer{w: bufio.NewWriter(w)}
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func (p *printer) flush() error {
	if p.err != nil {
		return p.err
	}
	return p.w.Flush()
}

// segmentFunc receives each segment with its start point. Quadratic
// segments are passed through; cubicControls converts them when needed.
type segmentFunc func(seg shape.Segment, start geom.Point)

// walkPath calls fn for every segment, tracking the current point.
func walkPath(path *shape.Path, fn segmentFunc) {
	var cur, subpath geom.Point
	for _, seg := range path.Segments {
		fn(seg, cur)
		if seg.Op == shape.MoveTo {
			subpath = seg.P[0]
		}
		if end, ok := seg.End(); ok {
			cur = end
		} else {
			cur = subpath
		}
	}
}

// cubicControls returns the cubic control points of a quadratic segment.
func cubicControls(start, ctrl, end geom.Point) (geom.Point, geom.Point) {
	return start.Lerp(ctrl, 2.0/3), end.Lerp(ctrl, 2.0/3)
}

// svgPathData renders a path as SVG path data in document coordinates.
func svgPathData(path *shape.Path) string {
	var sb strings.Builder
	walkPath(path, func(seg shape.Segment, _ geom.Point) {
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteByte(byte(seg.Op))
		for j := 0; j < seg.Op.NumPoints(); j++ {
			fmt.Fprintf(&sb, " %s %s", num(seg.P[j].X), num(seg.P[j].Y))
		}
	})
	return sb.String()
}

func polygonPath(pg geom.Polygon) *shape.Path {
	p := &shape.Path{}
	for i, q := range pg {
		if i == 0 {
			p.MoveTo(q.X, q.Y)
		} else {
			p.LineTo(q.X, q.Y)
		}
	}
	return p.Close()
}

// singleLine replaces control characters with spaces so a title cannot
// break out of the comment it is written into.
func singleLine(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, s)
}

var texEscaper = strings.NewReplacer(`\`, `\textbackslash{}`, `{`, `\{`, `}`, `\}`, `%`, `\%`)

// texText escapes s for a single line of TeX source.
func texText(s string) string {
	return texEscaper.Replace(singleLine(s))
}

var psEscaper = strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)

// psString returns s as a PostScript string literal.
func psString(s string) string {
	return "(" + psEscaper.Replace(singleLine(s)) + ")"
}
