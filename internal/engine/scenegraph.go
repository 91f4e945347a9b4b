package engine

import (
	"github.com/inamate/vecdraw/internal/geom"
	"github.com/inamate/vecdraw/internal/shape"
)

// SceneGraph is the evaluated, render-ready state of one scene.
// It is rebuilt from the document whenever the document changes.
type SceneGraph struct {
	Root      *SceneNode
	NodesById map[string]*SceneNode
	Dirty     bool // needs re-evaluation
}

// SceneNode is a resolved node ready for rendering.
// All geometry is in document coordinates; distortions are already warped.
type SceneNode struct {
	ID   string
	Type string // "group", "shape", "image", "distortion"

	// Inherited/resolved properties
	Opacity float64 // inherited * local
	Visible bool

	// Hierarchy. Parents are referenced by ID to keep the graph acyclic.
	ParentID string
	Children []*SceneNode

	// Render data (resolved from document)
	Geometry    *shape.Path   // for shapes and warped outlines
	Path        []PathCommand // Geometry in command form
	Fill        string
	Stroke      string
	StrokeWidth float64

	// Image data (for RasterImage nodes and distorted bitmaps)
	ImageAssetID string
	ImageWidth   float64
	ImageHeight  float64
	ImagePieces  []shape.Piece

	// Distortion handles: corner0..corner3 then the junction.
	Handles      []geom.Point
	Guides       [][]geom.Point
	HandleBounds geom.AxisBox // box of the handles, set with Handles

	// Hit testing
	Bounds   geom.AxisBox // axis-aligned bounding box, EmptyBox for none
	fillMesh []geom.Triangle
}

// PathCommand represents a single path segment for rendering.
// Format matches Canvas2D: ["M", x, y], ["L", x, y], ["C", x1, y1, x2, y2, x, y], etc.
type PathCommand []any

// NewSceneGraph creates an empty scene graph.
func NewSceneGraph() *SceneGraph {
	return &SceneGraph{
		NodesById: make(map[string]*SceneNode),
		Dirty:     true,
	}
}

// polygonPath converts closed polygons into a path of line segments.
func polygonPath(polys []geom.Polygon) *shape.Path {
	p := &shape.Path{}
	for _, pg := range polys {
		if len(pg) == 0 {
			continue
		}
		p.MoveTo(pg[0].X, pg[0].Y)
		for _, q := range pg[1:] {
			p.LineTo(q.X, q.Y)
		}
		p.Close()
	}
	return p
}

func pathToCommands(p *shape.Path) []PathCommand {
	src := p.Commands()
	out := make([]PathCommand, len(src))
	for i, c := range src {
		out[i] = PathCommand(c)
	}
	return out
}
