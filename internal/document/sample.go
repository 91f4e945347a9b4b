package document

import (
	"encoding/json"
	"time"

	"github.com/inamate/vecdraw/internal/geom"
	"github.com/inamate/vecdraw/internal/typeid"
)

// NewSampleDocument returns a page with a few shapes, one of them distorted.
func NewSampleDocument(projectID string) *InDocument {
	now := time.Now().UTC().Format(time.RFC3339)

	sceneID := typeid.NewSceneID()
	rootID := typeid.NewObjectID()
	rectID := typeid.NewObjectID()
	ellipseID := typeid.NewObjectID()
	triangleID := typeid.NewObjectID()
	warpedID := typeid.NewObjectID()

	doc := NewEmptyDocument(projectID, "Untitled", sceneID, rootID)
	doc.Project.CreatedAt = now
	doc.Project.UpdatedAt = now

	add := func(id string, t ObjectType, style Style, data any) {
		raw, _ := json.Marshal(data)
		parent := rootID
		doc.Objects[id] = ObjectNode{
			ID:       id,
			Type:     t,
			Parent:   &parent,
			Children: []string{},
			Style:    style,
			Visible:  true,
			Data:     raw,
		}
		doc.InsertChild(rootID, id, nil)
	}

	add(rectID, ObjectTypeShapeRect,
		Style{Fill: "#4a90d9", Stroke: "#2c5f8a", StrokeWidth: 2, Opacity: 1},
		RectData{X: 60, Y: 80, Width: 160, Height: 100})
	add(ellipseID, ObjectTypeShapeEllipse,
		Style{Fill: "#e94560", Stroke: "#a83245", StrokeWidth: 2, Opacity: 1},
		EllipseData{CX: 380, CY: 130, RX: 80, RY: 50})
	add(triangleID, ObjectTypeVectorPath,
		Style{Fill: "#0f3460", Stroke: "#16213e", StrokeWidth: 1, Opacity: 0.9},
		PathData{Commands: [][]any{{"M", 140.0, 260.0}, {"L", 220.0, 400.0}, {"L", 60.0, 400.0}, {"Z"}}})
	add(warpedID, ObjectTypeShapeRect,
		Style{Fill: "#53d769", Stroke: "#2e7d32", StrokeWidth: 1, Opacity: 1},
		RectData{X: 320, Y: 260, Width: 140, Height: 140})

	// A keystone warp: the top edge pulled in, the bottom-right corner dragged out.
	_ = doc.Distort(warpedID, &[4]geom.Point{
		{X: 350, Y: 270}, {X: 430, Y: 250}, {X: 500, Y: 430}, {X: 300, Y: 400},
	})

	return doc
}
