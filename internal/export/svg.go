package export

import (
	"encoding/xml"
	"io"
	"strings"

	"github.com/inamate/vecdraw/internal/geom"
)

// WriteSVG writes the page as a standalone SVG 1.1 document. Bitmaps link
// their asset URL and are clipped per distortion region.
func WriteSVG(w io.Writer, p *Page) error {
	out := newPrinter(w)
	out.printf(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	out.printf(`<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" version="1.1" width="%s" height="%s" viewBox="0 0 %s %s">`+"\n",
		num(p.Width), num(p.Height), num(p.Width), num(p.Height))
	if p.Title != "" {
		out.printf("<title>%s</title>\n", escape(p.Title))
	}
	out.printf(`<rect width="100%%" height="100%%" fill="%s"/>`+"\n", backgroundColor(p.Background).Hex())

	clipID := 0
	for _, it := range p.Items {
		if it.Image != nil {
			href := ""
			if a, ok := p.Assets[it.Image.AssetID]; ok {
				href = a.URL
			}
			for _, piece := range it.Image.Pieces {
				clipID++
				out.printf(`<clipPath id="clip%d"><path d="%s"/></clipPath>`+"\n", clipID, svgPathData(polygonPath(piece.Clip)))
				out.printf(`<image id="%s-%d" xlink:href="%s" width="%s" height="%s" transform="%s" clip-path="url(#clip%d)"%s/>`+"\n",
					escape(it.ObjectID), clipID, escape(href), num(it.Image.Width), num(it.Image.Height),
					svgMatrix(piece.Transform), clipID, svgOpacity(it.Opacity))
			}
			continue
		}

		out.printf(`<path id="%s" d="%s" fill="%s" fill-rule="nonzero"`, escape(it.ObjectID), svgPathData(it.Path), svgPaint(it.Fill))
		if c, ok := parsePaint(it.Stroke); ok && it.StrokeWidth > 0 {
			out.printf(` stroke="%s" stroke-width="%s"`, c.Hex(), num(it.StrokeWidth))
		}
		out.printf("%s/>\n", svgOpacity(it.Opacity))
	}

	out.printf("</svg>\n")
	return out.flush()
}

func svgPaint(s string) string {
	if c, ok := parsePaint(s); ok {
		return c.Hex()
	}
	return "none"
}

func svgOpacity(o float64) string {
	if o >= 1 {
		return ""
	}
	return ` opacity="` + num(clamp01(o)) + `"`
}

func svgMatrix(m geom.Matrix2D) string {
	parts := make([]string, 6)
	for i, v := range m {
		parts[i] = num(v)
	}
	return "matrix(" + strings.Join(parts, " ") + ")"
}

func escape(s string) string {
	var sb strings.Builder
	_ = xml.EscapeText(&sb, []byte(s))
	return sb.String()
}
