package document

import (
	"errors"
	"fmt"

	"github.com/inamate/vecdraw/internal/distort"
	"github.com/inamate/vecdraw/internal/geom"
)

var ErrObjectNotFound = errors.New("object not found")

// Transform kinds accepted by TransformOp.
const (
	TransformTranslate = "translate"
	TransformScale     = "scale"
	TransformShear     = "shear"
	TransformRotate    = "rotate"
	TransformMatrix    = "matrix"
)

// TransformOp is one whole-object edit. Only the fields of its Kind are read.
type TransformOp struct {
	Kind   string     `json:"kind"`
	DX     float64    `json:"dx,omitempty"`
	DY     float64    `json:"dy,omitempty"`
	Pivot  geom.Point `json:"pivot"`
	SX     float64    `json:"sx,omitempty"`
	SY     float64    `json:"sy,omitempty"`
	KX     float64    `json:"kx,omitempty"`
	KY     float64    `json:"ky,omitempty"`
	Angle  float64    `json:"angle,omitempty"` // radians
	Matrix []float64  `json:"matrix,omitempty"`
}

// Transformer is implemented by distort.Shape and *distort.Engine alike.
type Transformer interface {
	Translate(dx, dy float64)
	Scale(pivot geom.Point, sx, sy float64)
	Shear(pivot geom.Point, kx, ky float64)
	Rotate(pivot geom.Point, angle float64)
	ApplyMatrix(m geom.Matrix2D)
}

// Apply dispatches the edit to t.
func (op TransformOp) Apply(t Transformer) error {
	switch op.Kind {
	case TransformTranslate:
		t.Translate(op.DX, op.DY)
	case TransformScale:
		t.Scale(op.Pivot, op.SX, op.SY)
	case TransformShear:
		t.Shear(op.Pivot, op.KX, op.KY)
	case TransformRotate:
		t.Rotate(op.Pivot, op.Angle)
	case TransformMatrix:
		m, ok := geom.FromSlice(op.Matrix)
		if !ok {
			return fmt.Errorf("transform matrix needs 6 numbers: %w", ErrInvalidData)
		}
		t.ApplyMatrix(m)
	default:
		return fmt.Errorf("unknown transform kind %q: %w", op.Kind, ErrInvalidData)
	}
	return nil
}

// TransformObject applies op to an object. Groups pass it to every
// descendant; distortions propagate it to their source shape and corners.
func (d *InDocument) TransformObject(id string, op TransformOp) error {
	obj, ok := d.Objects[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrObjectNotFound, id)
	}

	switch {
	case obj.Type == ObjectTypeGroup:
		for _, childID := range obj.Children {
			if err := d.TransformObject(childID, op); err != nil {
				return err
			}
		}
		return nil

	case obj.Type == ObjectTypeDistortion:
		e, err := DecodeDistortion(obj.Data)
		if err != nil {
			return err
		}
		if err := op.Apply(e); err != nil {
			return err
		}
		return d.storeDistortion(obj, e)

	case IsGeometry(obj.Type):
		s, err := DecodeShape(obj.Type, obj.Data)
		if err != nil {
			return err
		}
		if err := op.Apply(s); err != nil {
			return err
		}
		t, data, err := EncodeShape(s)
		if err != nil {
			return err
		}
		obj.Type, obj.Data = t, data
		d.Objects[id] = obj
		return nil
	}
	return fmt.Errorf("transform %s: %w", obj.Type, ErrUnsupportedType)
}

// Distort turns a geometry object into a distortion of itself. corners nil
// means the identity quad.
func (d *InDocument) Distort(id string, corners *[distort.NumCorners]geom.Point) error {
	obj, ok := d.Objects[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrObjectNotFound, id)
	}
	if !IsGeometry(obj.Type) {
		return fmt.Errorf("distort %s: %w", obj.Type, ErrUnsupportedType)
	}

	s, err := DecodeShape(obj.Type, obj.Data)
	if err != nil {
		return err
	}
	e := distort.New(s)
	if corners != nil {
		e.SetCorners(*corners)
	}
	return d.storeDistortion(obj, e)
}

// Distortion decodes the engine of a distortion object.
func (d *InDocument) Distortion(id string) (*distort.Engine, error) {
	obj, ok := d.Objects[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, id)
	}
	if obj.Type != ObjectTypeDistortion {
		return nil, fmt.Errorf("object %s is a %s, not a distortion: %w", id, obj.Type, ErrInvalidData)
	}
	return DecodeDistortion(obj.Data)
}

// SetDistortionCorner moves one corner of a distortion object. An index
// outside 0..3 is ErrInvalidData.
func (d *InDocument) SetDistortionCorner(id string, index int, p geom.Point) error {
	if index < 0 || index >= distort.NumCorners {
		return fmt.Errorf("corner index %d: %w", index, ErrInvalidData)
	}
	e, err := d.Distortion(id)
	if err != nil {
		return err
	}
	e.SetCorner(index, p)
	return d.storeDistortion(d.Objects[id], e)
}

// ResetDistortion puts a distortion's corners back on its source box.
func (d *InDocument) ResetDistortion(id string) error {
	e, err := d.Distortion(id)
	if err != nil {
		return err
	}
	e.ResetToIdentity()
	return d.storeDistortion(d.Objects[id], e)
}

// RemoveDistortion replaces a distortion object by its undistorted source.
func (d *InDocument) RemoveDistortion(id string) error {
	e, err := d.Distortion(id)
	if err != nil {
		return err
	}
	obj := d.Objects[id]
	t, data, err := EncodeShape(e.Shape())
	if err != nil {
		return err
	}
	obj.Type, obj.Data = t, data
	d.Objects[id] = obj
	return nil
}

func (d *InDocument) storeDistortion(obj ObjectNode, e *distort.Engine) error {
	data, err := EncodeDistortion(e)
	if err != nil {
		return err
	}
	obj.Type, obj.Data = ObjectTypeDistortion, data
	d.Objects[obj.ID] = obj
	return nil
}
