package engine

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/inamate/vecdraw/internal/distort"
	"github.com/inamate/vecdraw/internal/document"
	"github.com/inamate/vecdraw/internal/geom"
)

// DefaultHandleRadius is the corner pick radius in document units.
const DefaultHandleRadius = 6.0

// ErrNoDocument is returned by edits made before a document is loaded.
var ErrNoDocument = errors.New("no document loaded")

// Engine is the editor session that owns the document and scene graph state.
// It processes commands from the frontend and returns query results.
type Engine struct {
	// Document state
	doc     *document.InDocument
	sceneID string

	// Retained scene graph
	sceneGraph *SceneGraph

	// Selection state (backend owns this)
	selection []string

	// Handle editing: the distortion whose corner is picked.
	handleObject string
	handleEngine *distort.Engine
	handleRadius float64

	// Dirty flag - scene graph needs rebuild
	dirty bool
}

// NewEngine creates a new engine instance.
func NewEngine() *Engine {
	return &Engine{
		sceneGraph:   NewSceneGraph(),
		handleRadius: DefaultHandleRadius,
		dirty:        true,
	}
}

// --- Commands (frontend → backend) ---

// LoadDocument loads a document from JSON and resets selection.
func (e *Engine) LoadDocument(jsonData string) error {
	if err := e.UpdateDocument(jsonData); err != nil {
		return err
	}
	e.selection = nil
	return nil
}

// UpdateDocument reloads a document from JSON while preserving selection.
// Used when a collaborator's edit arrives mid-session.
func (e *Engine) UpdateDocument(jsonData string) error {
	var doc document.InDocument
	if err := json.Unmarshal([]byte(jsonData), &doc); err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	e.SetDocument(&doc)
	return nil
}

// SetDocument replaces the document. The engine takes ownership of doc.
func (e *Engine) SetDocument(doc *document.InDocument) {
	e.doc = doc
	e.sceneID = ""
	if len(doc.Project.Scenes) > 0 {
		e.sceneID = doc.Project.Scenes[0]
	}
	e.ReleaseCorner()
	e.dirty = true
}

// LoadSampleDocument loads the built-in sample document.
func (e *Engine) LoadSampleDocument(projectID string) {
	e.SetDocument(document.NewSampleDocument(projectID))
	e.selection = nil
}

// SetScene switches the rendered scene.
func (e *Engine) SetScene(sceneID string) {
	if e.sceneID != sceneID {
		e.sceneID = sceneID
		e.dirty = true
	}
}

// SetSelection sets the selected object IDs.
func (e *Engine) SetSelection(ids []string) {
	e.selection = ids
}

// SetHandleRadius sets the corner pick radius. Non-positive values restore the default.
func (e *Engine) SetHandleRadius(r float64) {
	if r <= 0 {
		r = DefaultHandleRadius
	}
	e.handleRadius = r
}

// TransformObject applies a JSON-encoded document.TransformOp to an object.
func (e *Engine) TransformObject(objectID, opJSON string) error {
	if e.doc == nil {
		return ErrNoDocument
	}
	var op document.TransformOp
	if err := json.Unmarshal([]byte(opJSON), &op); err != nil {
		return fmt.Errorf("decode transform: %w", err)
	}
	if err := e.doc.TransformObject(objectID, op); err != nil {
		return err
	}
	e.touch(objectID)
	return nil
}

// Distort wraps an object in an identity distortion.
func (e *Engine) Distort(objectID string) error {
	if e.doc == nil {
		return ErrNoDocument
	}
	if err := e.doc.Distort(objectID, nil); err != nil {
		return err
	}
	e.touch(objectID)
	return nil
}

// ResetDistortion puts a distortion's corners back on its source box.
func (e *Engine) ResetDistortion(objectID string) error {
	if e.doc == nil {
		return ErrNoDocument
	}
	if err := e.doc.ResetDistortion(objectID); err != nil {
		return err
	}
	e.touch(objectID)
	return nil
}

// RemoveDistortion replaces a distortion by its undistorted source.
func (e *Engine) RemoveDistortion(objectID string) error {
	if e.doc == nil {
		return ErrNoDocument
	}
	if err := e.doc.RemoveDistortion(objectID); err != nil {
		return err
	}
	e.touch(objectID)
	return nil
}

// SelectCorner picks the corner of a distortion within the handle radius
// of (x, y). It returns the corner index, or -1 when none is near.
func (e *Engine) SelectCorner(objectID string, x, y float64) (int, error) {
	e.ReleaseCorner()
	if e.doc == nil {
		return -1, ErrNoDocument
	}
	de, err := e.doc.Distortion(objectID)
	if err != nil {
		return -1, err
	}
	i, ok := de.SelectCorner(geom.Pt(x, y), e.handleRadius, e.handleRadius)
	if !ok {
		return -1, nil
	}
	e.handleObject, e.handleEngine = objectID, de
	return i, nil
}

// DragCorner moves the picked corner to (x, y). It reports false when no
// corner is picked.
func (e *Engine) DragCorner(x, y float64) (bool, error) {
	if e.handleEngine == nil {
		return false, nil
	}
	i, _ := e.handleEngine.SelectedCorner()
	p := geom.Pt(x, y)
	if err := e.doc.SetDistortionCorner(e.handleObject, i, p); err != nil {
		return false, err
	}
	e.handleEngine.DragSelected(p)
	e.dirty = true
	return true, nil
}

// ReleaseCorner ends a corner drag.
func (e *Engine) ReleaseCorner() {
	e.handleObject, e.handleEngine = "", nil
}

// touch marks the scene dirty and drops a stale corner pick on objectID.
func (e *Engine) touch(objectID string) {
	if e.handleObject == objectID {
		e.ReleaseCorner()
	}
	e.dirty = true
}

// --- Queries (frontend ← backend) ---

// SceneGraph returns the evaluated scene graph, rebuilding it if dirty.
func (e *Engine) SceneGraph() *SceneGraph {
	if e.doc == nil {
		return NewSceneGraph()
	}
	if e.dirty {
		e.sceneGraph = BuildSceneGraph(e.doc, e.sceneID)
		e.dirty = false
	}
	return e.sceneGraph
}

// Render evaluates the scene graph and returns draw commands as JSON.
// Selected distortions get a handle overlay after the scene.
func (e *Engine) Render() string {
	if e.doc == nil {
		return "[]"
	}

	sg := e.SceneGraph()
	commands := CompileDrawCommands(sg)

	for _, id := range e.selection {
		selected, hasSelected := -1, false
		if id == e.handleObject && e.handleEngine != nil {
			selected, hasSelected = e.handleEngine.SelectedCorner()
		}
		if cmd, ok := HandleCommand(sg.NodesById[id], selected, hasSelected); ok {
			commands = append(commands, cmd)
		}
	}

	result, _ := DrawCommandsToJSON(commands)
	return result
}

// HitTest performs a hit test at the given coordinates.
// Returns the object ID of the topmost hit, or empty string.
func (e *Engine) HitTest(x, y float64) string {
	if e.doc == nil {
		return ""
	}
	return HitTest(e.SceneGraph(), x, y)
}

// GetSelectionBounds returns the bounding box of the current selection as JSON.
func (e *Engine) GetSelectionBounds() string {
	if e.doc == nil || len(e.selection) == 0 {
		return BoxToJSON(geom.AxisBox{})
	}
	return BoxToJSON(GetSelectionBounds(e.SceneGraph(), e.selection))
}

// DistortionInfo is the queryable state of a distortion object.
type DistortionInfo struct {
	ObjectID string       `json:"objectId"`
	Corners  []geom.Point `json:"corners"`
	Junction geom.Point   `json:"junction"`
	Regions  []RegionInfo `json:"regions"`
}

// RegionInfo describes one region map. Matrix is nil for degenerate regions.
type RegionInfo struct {
	Name   string        `json:"name"`
	Source geom.Triangle `json:"source"`
	Target geom.Triangle `json:"target"`
	Matrix []float64     `json:"matrix"`
}

// Distortion returns the corners, junction and region maps of a distortion.
func (e *Engine) Distortion(objectID string) (DistortionInfo, error) {
	if e.doc == nil {
		return DistortionInfo{}, ErrNoDocument
	}
	de, err := e.doc.Distortion(objectID)
	if err != nil {
		return DistortionInfo{}, err
	}

	c := de.Corners()
	info := DistortionInfo{
		ObjectID: objectID,
		Corners:  c[:],
		Junction: de.Junction(),
	}
	for i, r := range de.Regions() {
		ri := RegionInfo{
			Name:   distort.RegionIndex(i).String(),
			Source: r.Source,
			Target: r.Target,
		}
		if m, ok := r.Transform(); ok {
			ri.Matrix = m.ToSlice()
		}
		info.Regions = append(info.Regions, ri)
	}
	return info, nil
}

// GetDistortion returns Distortion as JSON, or "{}" on error.
func (e *Engine) GetDistortion(objectID string) string {
	info, err := e.Distortion(objectID)
	if err != nil {
		return "{}"
	}
	data, _ := json.Marshal(info)
	return string(data)
}

// GetScene returns the current scene metadata as JSON.
func (e *Engine) GetScene() string {
	if e.doc == nil || e.sceneID == "" {
		return "{}"
	}

	scene, ok := e.doc.Scenes[e.sceneID]
	if !ok {
		return "{}"
	}

	data, _ := json.Marshal(scene)
	return string(data)
}

// Document returns the live document, or nil.
func (e *Engine) Document() *document.InDocument {
	return e.doc
}

// GetDocument returns the full document as JSON (for debugging/sync).
func (e *Engine) GetDocument() string {
	if e.doc == nil {
		return "{}"
	}
	data, _ := json.Marshal(e.doc)
	return string(data)
}

// GetSelection returns the current selection as JSON.
func (e *Engine) GetSelection() string {
	data, _ := json.Marshal(e.selection)
	return string(data)
}
