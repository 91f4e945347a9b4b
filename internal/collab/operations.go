package collab

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/inamate/vecdraw/internal/document"
)

var (
	ErrUnknownOperation = errors.New("unknown operation type")
	ErrInvalidOperation = errors.New("invalid operation")
)

// DocumentState holds the authoritative document state for a room.
// Every geometry change goes through the document codec, so a distortion's
// corners and its source shape are always updated together.
type DocumentState struct {
	mu        sync.RWMutex
	doc       *document.InDocument
	serverSeq int64
	dirty     bool
}

// NewDocumentState creates a new document state from an initial document
func NewDocumentState(doc *document.InDocument) *DocumentState {
	return &DocumentState{doc: doc}
}

// Snapshot returns the document as JSON with the sequence it reflects.
func (ds *DocumentState) Snapshot() (json.RawMessage, int64, error) {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	data, err := json.Marshal(ds.doc)
	if err != nil {
		return nil, 0, fmt.Errorf("marshal document: %w", err)
	}
	return data, ds.serverSeq, nil
}

// TakeDirty returns a copy of the document if it changed since the last
// call, clearing the flag.
func (ds *DocumentState) TakeDirty() (*document.InDocument, bool, error) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	if !ds.dirty {
		return nil, false, nil
	}
	doc, err := ds.doc.Clone()
	if err != nil {
		return nil, false, err
	}
	ds.dirty = false
	return doc, true, nil
}

// HasObject reports whether the document holds an object with id.
func (ds *DocumentState) HasObject(id string) bool {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	_, ok := ds.doc.Objects[id]
	return ok
}

// MarkDirty flags the document for saving again, after a failed save.
func (ds *DocumentState) MarkDirty() {
	ds.mu.Lock()
	ds.dirty = true
	ds.mu.Unlock()
}

// ApplyOperation applies an operation to the document and returns the server sequence.
// A failed operation leaves the document unchanged.
func (ds *DocumentState) ApplyOperation(op Operation) (int64, error) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	// Apply to a copy so multi-object edits are all-or-nothing.
	work, err := ds.doc.Clone()
	if err != nil {
		return 0, err
	}
	if err := applyOperation(work, op); err != nil {
		return 0, err
	}

	ds.doc = work
	ds.serverSeq++
	ds.dirty = true
	return ds.serverSeq, nil
}

func applyOperation(doc *document.InDocument, op Operation) error {
	switch op.Type {
	case OpObjectTransform:
		var t document.TransformOp
		if err := json.Unmarshal(op.Transform, &t); err != nil {
			return fmt.Errorf("invalid transform: %w", ErrInvalidOperation)
		}
		return doc.TransformObject(op.ObjectID, t)
	case OpObjectStyle:
		return applyStyle(doc, op)
	case OpObjectDelete:
		return applyDelete(doc, op)
	case OpObjectCreate:
		return applyCreate(doc, op)
	case OpObjectReparent:
		return applyReparent(doc, op)
	case OpObjectVisibility:
		return updateObject(doc, op.ObjectID, func(obj *document.ObjectNode) {
			if op.Visible != nil {
				obj.Visible = *op.Visible
			}
		})
	case OpObjectLocked:
		return updateObject(doc, op.ObjectID, func(obj *document.ObjectNode) {
			if op.Locked != nil {
				obj.Locked = *op.Locked
			}
		})
	case OpSceneUpdate:
		return applySceneUpdate(doc, op)
	case OpProjectRename:
		doc.Project.Name = op.Name
		return nil
	case OpDistortCreate:
		return doc.Distort(op.ObjectID, op.Corners)
	case OpDistortCorner:
		if op.Corner == nil || op.Point == nil {
			return fmt.Errorf("distort.corner needs corner and point: %w", ErrInvalidOperation)
		}
		return doc.SetDistortionCorner(op.ObjectID, *op.Corner, *op.Point)
	case OpDistortReset:
		return doc.ResetDistortion(op.ObjectID)
	case OpDistortRemove:
		return doc.RemoveDistortion(op.ObjectID)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownOperation, op.Type)
	}
}

func updateObject(doc *document.InDocument, id string, fn func(*document.ObjectNode)) error {
	obj, ok := doc.Objects[id]
	if !ok {
		return fmt.Errorf("%w: %s", document.ErrObjectNotFound, id)
	}
	fn(&obj)
	doc.Objects[id] = obj
	return nil
}

func applyStyle(doc *document.InDocument, op Operation) error {
	// Parse style changes
	var changes map[string]any
	if err := json.Unmarshal(op.Style, &changes); err != nil {
		return fmt.Errorf("invalid style: %w", ErrInvalidOperation)
	}

	return updateObject(doc, op.ObjectID, func(obj *document.ObjectNode) {
		if v, ok := changes["fill"].(string); ok {
			obj.Style.Fill = v
		}
		if v, ok := changes["stroke"].(string); ok {
			obj.Style.Stroke = v
		}
		if v, ok := changes["strokeWidth"].(float64); ok && v >= 0 {
			obj.Style.StrokeWidth = v
		}
		if v, ok := changes["opacity"].(float64); ok && v >= 0 && v <= 1 {
			obj.Style.Opacity = v
		}
	})
}

// applyDelete removes an object and its whole subtree.
func applyDelete(doc *document.InDocument, op Operation) error {
	obj, ok := doc.Objects[op.ObjectID]
	if !ok {
		return fmt.Errorf("%w: %s", document.ErrObjectNotFound, op.ObjectID)
	}
	if obj.Parent == nil {
		return fmt.Errorf("cannot delete a scene root: %w", ErrInvalidOperation)
	}

	doc.RemoveChild(*obj.Parent, op.ObjectID)

	var drop func(id string)
	drop = func(id string) {
		o, ok := doc.Objects[id]
		if !ok {
			return
		}
		delete(doc.Objects, id)
		for _, c := range o.Children {
			drop(c)
		}
	}
	drop(op.ObjectID)
	return nil
}

// applyCreate inserts a new object. Geometry data is decoded up front so
// malformed shapes and distortions never enter the document.
func applyCreate(doc *document.InDocument, op Operation) error {
	var obj document.ObjectNode
	if err := json.Unmarshal(op.Object, &obj); err != nil {
		return fmt.Errorf("invalid object: %w", ErrInvalidOperation)
	}
	if obj.ID == "" {
		return fmt.Errorf("object without id: %w", ErrInvalidOperation)
	}
	if _, exists := doc.Objects[obj.ID]; exists {
		return fmt.Errorf("object %s already exists: %w", obj.ID, ErrInvalidOperation)
	}
	if _, ok := doc.Objects[op.ParentID]; !ok {
		return fmt.Errorf("parent %w: %s", document.ErrObjectNotFound, op.ParentID)
	}

	switch {
	case obj.Type == document.ObjectTypeDistortion:
		if _, err := document.DecodeDistortion(obj.Data); err != nil {
			return err
		}
	case document.IsGeometry(obj.Type):
		if _, err := document.DecodeShape(obj.Type, obj.Data); err != nil {
			return err
		}
	case obj.Type == document.ObjectTypeGroup:
	default:
		return fmt.Errorf("object type %q: %w", obj.Type, ErrInvalidOperation)
	}

	parentID := op.ParentID
	obj.Parent = &parentID
	if obj.Children == nil {
		obj.Children = []string{}
	}
	doc.Objects[obj.ID] = obj
	doc.InsertChild(op.ParentID, obj.ID, op.Index)
	return nil
}

func applyReparent(doc *document.InDocument, op Operation) error {
	obj, ok := doc.Objects[op.ObjectID]
	if !ok {
		return fmt.Errorf("%w: %s", document.ErrObjectNotFound, op.ObjectID)
	}
	if _, ok := doc.Objects[op.NewParentID]; !ok {
		return fmt.Errorf("new parent %w: %s", document.ErrObjectNotFound, op.NewParentID)
	}

	// Refuse cycles: the new parent may not be the object or inside it.
	for id := op.NewParentID; ; {
		if id == op.ObjectID {
			return fmt.Errorf("reparent into own subtree: %w", ErrInvalidOperation)
		}
		p := doc.Objects[id].Parent
		if p == nil {
			break
		}
		id = *p
	}

	// Remove from old parent
	if obj.Parent != nil {
		doc.RemoveChild(*obj.Parent, op.ObjectID)
	}

	index := op.NewIndex
	doc.InsertChild(op.NewParentID, op.ObjectID, &index)

	// Update object's parent reference
	newParent := op.NewParentID
	obj.Parent = &newParent
	doc.Objects[op.ObjectID] = obj
	return nil
}

func applySceneUpdate(doc *document.InDocument, op Operation) error {
	scene, ok := doc.Scenes[op.SceneID]
	if !ok {
		return fmt.Errorf("scene not found: %s", op.SceneID)
	}

	var changes map[string]any
	if err := json.Unmarshal(op.Changes, &changes); err != nil {
		return fmt.Errorf("invalid scene changes: %w", ErrInvalidOperation)
	}

	if v, ok := changes["name"].(string); ok {
		scene.Name = v
	}
	if v, ok := changes["width"].(float64); ok && v > 0 {
		scene.Width = int(v)
	}
	if v, ok := changes["height"].(float64); ok && v > 0 {
		scene.Height = int(v)
	}
	if v, ok := changes["background"].(string); ok {
		scene.Background = v
	}

	doc.Scenes[op.SceneID] = scene
	return nil
}

// GetServerTimestamp returns the current server timestamp
func GetServerTimestamp() int64 {
	return time.Now().UnixMilli()
}
