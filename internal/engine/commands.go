package engine

import (
	"encoding/json"

	"github.com/inamate/vecdraw/internal/geom"
)

// DrawCommand represents a single drawing operation for the frontend to execute.
// The frontend receives a list of these and executes them on a Canvas2D context.
type DrawCommand struct {
	Op           string         `json:"op"`                     // Operation: "path", "image", "save", "restore", "clip", "handles"
	ObjectID     string         `json:"objectId,omitempty"`     // For hit correlation
	Transform    []float64      `json:"transform,omitempty"`    // [a, b, c, d, e, f] affine matrix
	Path         []PathCommand  `json:"path,omitempty"`         // Path data for "path" and "clip" ops
	Fill         string         `json:"fill,omitempty"`         // Fill color
	Stroke       string         `json:"stroke,omitempty"`       // Stroke color
	StrokeWidth  float64        `json:"strokeWidth,omitempty"`  // Stroke width
	Opacity      float64        `json:"opacity,omitempty"`      // Global alpha
	ImageAssetID string         `json:"imageAssetId,omitempty"` // Asset ID for image lookup
	ImageWidth   float64        `json:"imageWidth,omitempty"`   // Image natural width
	ImageHeight  float64        `json:"imageHeight,omitempty"`  // Image natural height
	Handles      []geom.Point   `json:"handles,omitempty"`      // Corner handles then the junction
	Guides       [][]geom.Point `json:"guides,omitempty"`       // Warped centre lines of the source box
	Selected     int            `json:"selected,omitempty"`     // 1-based selected corner, 0 for none
}

// CompileDrawCommands generates a draw command buffer from a scene graph.
// Commands are in painter's order (back to front).
func CompileDrawCommands(sg *SceneGraph) []DrawCommand {
	if sg == nil || sg.Root == nil {
		return nil
	}

	var commands []DrawCommand
	compileNode(sg.Root, &commands)
	return commands
}

// compileNode recursively generates draw commands for a node and its children.
func compileNode(node *SceneNode, commands *[]DrawCommand) {
	if node == nil || !node.Visible {
		return
	}

	switch {
	case len(node.ImagePieces) > 0:
		// Each piece is drawn through its own clip so warped bitmaps
		// are painted region by region.
		for _, piece := range node.ImagePieces {
			*commands = append(*commands,
				DrawCommand{Op: "save"},
				DrawCommand{Op: "clip", Path: pathToCommands(polygonPath([]geom.Polygon{piece.Clip}))},
				DrawCommand{
					Op:           "image",
					ObjectID:     node.ID,
					Transform:    piece.Transform.ToSlice(),
					Opacity:      node.Opacity,
					ImageAssetID: node.ImageAssetID,
					ImageWidth:   node.ImageWidth,
					ImageHeight:  node.ImageHeight,
				},
				DrawCommand{Op: "restore"},
			)
		}
	case len(node.Path) > 0:
		*commands = append(*commands, DrawCommand{
			Op:          "path",
			ObjectID:    node.ID,
			Path:        node.Path,
			Opacity:     node.Opacity,
			Fill:        node.Fill,
			Stroke:      node.Stroke,
			StrokeWidth: node.StrokeWidth,
		})
	}

	// Recurse into children
	for _, child := range node.Children {
		compileNode(child, commands)
	}
}

// HandleCommand returns the overlay command for a distortion node's quad,
// or false when the node has no handles.
func HandleCommand(node *SceneNode, selected int, hasSelected bool) (DrawCommand, bool) {
	if node == nil || len(node.Handles) == 0 {
		return DrawCommand{}, false
	}
	cmd := DrawCommand{
		Op:       "handles",
		ObjectID: node.ID,
		Handles:  node.Handles,
		Guides:   node.Guides,
	}
	if hasSelected {
		cmd.Selected = selected + 1
	}
	return cmd, true
}

// DrawCommandsToJSON serializes draw commands to JSON.
func DrawCommandsToJSON(commands []DrawCommand) (string, error) {
	data, err := json.Marshal(commands)
	if err != nil {
		return "[]", err
	}
	return string(data), nil
}

// HitTest performs a hit test on the scene graph at the given point.
// Returns the ID of the topmost (frontmost) object containing the point, or empty string.
func HitTest(sg *SceneGraph, x, y float64) string {
	if sg == nil || sg.Root == nil {
		return ""
	}

	return hitTestNode(sg.Root, geom.Pt(x, y))
}

// hitTestNode recursively tests a node and its children.
// Children are tested first (they're on top in painter's order).
func hitTestNode(node *SceneNode, p geom.Point) string {
	if node == nil || !node.Visible {
		return ""
	}

	// Test children first (front to back = reverse order)
	for i := len(node.Children) - 1; i >= 0; i-- {
		if hit := hitTestNode(node.Children[i], p); hit != "" {
			return hit
		}
	}

	if node.Type == "group" || node.Bounds.IsEmpty() || !node.Bounds.Contains(p) {
		return ""
	}

	// Filled geometry is tested exactly; outlines earcut could not
	// triangulate fall back to their bounds.
	if len(node.fillMesh) == 0 || meshContains(node.fillMesh, p) {
		return node.ID
	}

	return ""
}

// GetSelectionBounds returns the combined bounding box of the given object IDs.
func GetSelectionBounds(sg *SceneGraph, objectIDs []string) geom.AxisBox {
	result := geom.EmptyBox
	if sg == nil {
		return result
	}

	for _, id := range objectIDs {
		node, ok := sg.NodesById[id]
		if !ok {
			continue
		}
		result.Merge(node.Bounds)
		// A distortion's corners can stick out past its outline.
		if len(node.Handles) > 0 {
			result.Merge(node.HandleBounds)
		}
	}

	return result
}

// BoxToJSON serializes a box as x/y/width/height. Empty boxes become zeros.
func BoxToJSON(b geom.AxisBox) string {
	if b.IsEmpty() {
		b = geom.AxisBox{}
	}
	data, _ := json.Marshal(map[string]float64{
		"x":      b.MinX,
		"y":      b.MinY,
		"width":  b.Width(),
		"height": b.Height(),
	})
	return string(data)
}
