package engine

import (
	"log/slog"

	"github.com/inamate/vecdraw/internal/distort"
	"github.com/inamate/vecdraw/internal/document"
	"github.com/inamate/vecdraw/internal/geom"
	"github.com/inamate/vecdraw/internal/shape"
)

// BuildSceneGraph builds a render-ready scene graph for a scene of the
// document. Objects whose data cannot be decoded are logged and skipped.
func BuildSceneGraph(doc *document.InDocument, sceneID string) *SceneGraph {
	sg := NewSceneGraph()

	scene, ok := doc.Scenes[sceneID]
	if !ok {
		return sg
	}

	rootObj, ok := doc.Objects[scene.Root]
	if !ok {
		return sg
	}

	sg.Root = buildNode(doc, &rootObj, "", 1.0, sg)
	sg.Dirty = false

	return sg
}

// buildNode recursively builds a SceneNode from a document ObjectNode.
func buildNode(
	doc *document.InDocument,
	obj *document.ObjectNode,
	parentID string,
	parentOpacity float64,
	sg *SceneGraph,
) *SceneNode {
	if !obj.Visible {
		return nil
	}

	style := obj.Style
	opacity := parentOpacity * style.Opacity

	node := &SceneNode{
		ID:          obj.ID,
		Type:        mapObjectType(obj.Type),
		Opacity:     opacity,
		Visible:     true,
		ParentID:    parentID,
		Fill:        style.Fill,
		Stroke:      style.Stroke,
		StrokeWidth: style.StrokeWidth,
		Bounds:      geom.EmptyBox,
	}

	switch {
	case obj.Type == document.ObjectTypeDistortion:
		e, err := document.DecodeDistortion(obj.Data)
		if err != nil {
			slog.Warn("skip distortion", "object", obj.ID, "error", err)
			return nil
		}
		buildDistortion(node, e)

	case document.IsGeometry(obj.Type):
		s, err := document.DecodeShape(obj.Type, obj.Data)
		if err != nil {
			slog.Warn("skip shape", "object", obj.ID, "error", err)
			return nil
		}
		buildShape(node, s)
	}

	// Register node in the lookup map
	sg.NodesById[obj.ID] = node

	// Build children
	for _, childID := range obj.Children {
		childObj, ok := doc.Objects[childID]
		if !ok {
			continue
		}

		childNode := buildNode(doc, &childObj, node.ID, opacity, sg)
		if childNode != nil {
			node.Children = append(node.Children, childNode)

			// Expand bounds to include children
			node.Bounds.Merge(childNode.Bounds)
		}
	}

	return node
}

func buildShape(node *SceneNode, s distort.Shape) {
	switch s := s.(type) {
	case *shape.Path:
		node.Geometry = s
		node.Path = pathToCommands(s)
		node.fillMesh = triangulate(s.Flatten())
	case *shape.Bitmap:
		node.ImageAssetID = s.AssetID
		node.ImageWidth = s.Width
		node.ImageHeight = s.Height
		node.ImagePieces = []shape.Piece{{Clip: s.Outline(), Transform: s.Placement}}
		node.fillMesh = triangulate([]geom.Polygon{s.Outline()})
	}
	node.Bounds = s.BoundingBox()
}

func buildDistortion(node *SceneNode, e *distort.Engine) {
	outline := e.Outline()

	if b, ok := e.Shape().(*shape.Bitmap); ok {
		node.ImageAssetID = b.AssetID
		node.ImageWidth = b.Width
		node.ImageHeight = b.Height
		node.ImagePieces = b.Pieces(e.Regions())
	} else {
		node.Geometry = polygonPath(outline)
		node.Path = pathToCommands(node.Geometry)
	}
	node.fillMesh = triangulate(outline)

	c := e.Corners()
	node.Handles = []geom.Point{c[0], c[1], c[2], c[3], e.Junction()}
	node.Guides = warpGuides(e)
	node.HandleBounds = e.Bounds()
	node.Bounds = outline.Bounds()
}

// warpGuides maps the horizontal and vertical centre lines of the source
// box through the distortion. Each comes back as edge, junction, edge.
// Lines crossing a degenerate region are left out.
func warpGuides(e *distort.Engine) [][]geom.Point {
	b := e.Shape().BoundingBox()
	mid := b.Center()
	lines := [][]geom.Point{
		{geom.Pt(b.MinX, mid.Y), mid, geom.Pt(b.MaxX, mid.Y)},
		{geom.Pt(mid.X, b.MinY), mid, geom.Pt(mid.X, b.MaxY)},
	}

	var guides [][]geom.Point
next:
	for _, line := range lines {
		warped := make([]geom.Point, len(line))
		for i, p := range line {
			q, ok := e.Map(p)
			if !ok {
				continue next
			}
			warped[i] = q
		}
		guides = append(guides, warped)
	}
	return guides
}

// mapObjectType converts document ObjectType to scene graph type string.
func mapObjectType(objType document.ObjectType) string {
	switch objType {
	case document.ObjectTypeGroup:
		return "group"
	case document.ObjectTypeShapeRect, document.ObjectTypeShapeEllipse, document.ObjectTypeVectorPath:
		return "shape"
	case document.ObjectTypeRasterImage:
		return "image"
	case document.ObjectTypeDistortion:
		return "distortion"
	default:
		return "unknown"
	}
}
