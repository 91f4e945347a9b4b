// Package export writes a scene of a document to SVG, EPS, LaTeX/PGF and
// PNG. Every writer works from the same Page, so distortions are exported
// with exactly the geometry the editor renders.
package export

import (
	"errors"
	"fmt"
	"image"
	"io"
	"math"
	"strconv"

	"github.com/inamate/vecdraw/internal/document"
	"github.com/inamate/vecdraw/internal/engine"
	"github.com/inamate/vecdraw/internal/shape"
)

var (
	ErrUnknownFormat = errors.New("unknown export format")
	ErrNoScene       = errors.New("scene not found")
	ErrRasterSize    = errors.New("raster size out of range")
)

// Supported formats.
const (
	FormatSVG = "svg"
	FormatEPS = "eps"
	FormatPGF = "pgf"
	FormatPNG = "png"
)

// Page is one scene flattened into paint order.
type Page struct {
	Title      string
	Width      float64
	Height     float64
	Background string
	Items      []Item
	Assets     map[string]document.Asset
}

// Item is one painted object. Exactly one of Path and Image is set.
type Item struct {
	ObjectID    string
	Path        *shape.Path
	Fill        string
	Stroke      string
	StrokeWidth float64
	Opacity     float64
	Image       *Image
}

// Image is a bitmap drawn as clipped pieces.
type Image struct {
	AssetID string
	Width   float64
	Height  float64
	Pieces  []shape.Piece
}

// NewPage evaluates a scene of doc. An empty sceneID selects the first scene.
func NewPage(doc *document.InDocument, sceneID string) (*Page, error) {
	if sceneID == "" && len(doc.Project.Scenes) > 0 {
		sceneID = doc.Project.Scenes[0]
	}
	scene, ok := doc.Scenes[sceneID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNoScene, sceneID)
	}

	p := &Page{
		Title:      doc.Project.Name,
		Width:      float64(scene.Width),
		Height:     float64(scene.Height),
		Background: scene.Background,
		Assets:     doc.Assets,
	}
	sg := engine.BuildSceneGraph(doc, sceneID)
	p.collect(sg.Root)
	return p, nil
}

func (p *Page) collect(node *engine.SceneNode) {
	if node == nil || !node.Visible {
		return
	}

	switch {
	case len(node.ImagePieces) > 0:
		p.Items = append(p.Items, Item{
			ObjectID: node.ID,
			Opacity:  node.Opacity,
			Image: &Image{
				AssetID: node.ImageAssetID,
				Width:   node.ImageWidth,
				Height:  node.ImageHeight,
				Pieces:  node.ImagePieces,
			},
		})
	case node.Geometry != nil && len(node.Geometry.Segments) > 0:
		p.Items = append(p.Items, Item{
			ObjectID:    node.ID,
			Path:        node.Geometry,
			Fill:        node.Fill,
			Stroke:      node.Stroke,
			StrokeWidth: node.StrokeWidth,
			Opacity:     node.Opacity,
		})
	}

	for _, child := range node.Children {
		p.collect(child)
	}
}

// ImageSource loads bitmap pixels by asset ID.
type ImageSource interface {
	Image(assetID string) (image.Image, error)
}

// Options tune the writers.
type Options struct {
	// RasterScale is PNG pixels per document unit.
	RasterScale float64
	// Images supplies bitmap pixels to the PNG writer. Without it, or for
	// assets it cannot load, bitmaps are drawn as placeholders.
	Images ImageSource
}

// Write encodes the page in the given format.
func Write(w io.Writer, format string, p *Page, opts Options) error {
	switch format {
	case FormatSVG:
		return WriteSVG(w, p)
	case FormatEPS:
		return WriteEPS(w, p)
	case FormatPGF:
		return WritePGF(w, p)
	case FormatPNG:
		return WritePNG(w, p, opts)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// ContentType returns the MIME type of a format.
func ContentType(format string) string {
	switch format {
	case FormatSVG:
		return "image/svg+xml"
	case FormatEPS:
		return "application/postscript"
	case FormatPGF:
		return "application/x-tex"
	case FormatPNG:
		return "image/png"
	}
	return "application/octet-stream"
}

// FileExt returns the file extension of a format.
func FileExt(format string) string {
	if format == FormatPGF {
		return "tex"
	}
	return format
}

// num formats a coordinate with at most four decimals.
func num(v float64) string {
	r := math.Round(v*1e4) / 1e4
	if r == 0 {
		r = 0 // no "-0"
	}
	return strconv.FormatFloat(r, 'f', -1, 64)
}
