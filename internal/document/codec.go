package document

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/inamate/vecdraw/internal/distort"
	"github.com/inamate/vecdraw/internal/geom"
	"github.com/inamate/vecdraw/internal/shape"
)

var (
	ErrUnsupportedType = errors.New("object type has no geometry")
	ErrInvalidData     = errors.New("invalid object data")
)

// Data schemas per object type.
type (
	RectData struct {
		X      float64 `json:"x"`
		Y      float64 `json:"y"`
		Width  float64 `json:"width"`
		Height float64 `json:"height"`
	}

	EllipseData struct {
		CX float64 `json:"cx"`
		CY float64 `json:"cy"`
		RX float64 `json:"rx"`
		RY float64 `json:"ry"`
	}

	PathData struct {
		Commands [][]any `json:"commands"`
	}

	ImageData struct {
		AssetID   string    `json:"assetId"`
		Width     float64   `json:"width"`
		Height    float64   `json:"height"`
		Placement []float64 `json:"placement,omitempty"`
	}

	// DistortionData is the persisted form of a distortion: the corners in
	// corner0..corner3 order and the embedded source object. The junction
	// and region maps are always re-derived after load.
	DistortionData struct {
		Corners [distort.NumCorners]geom.Point `json:"corners"`
		Source  SourceData                     `json:"source"`
	}

	SourceData struct {
		Type ObjectType      `json:"type"`
		Data json.RawMessage `json:"data"`
	}
)

// DecodeShape builds the distortable shape for a geometry object type.
func DecodeShape(t ObjectType, data json.RawMessage) (distort.Shape, error) {
	switch t {
	case ObjectTypeShapeRect:
		var d RectData
		if err := unmarshal(t, data, &d); err != nil {
			return nil, err
		}
		return shape.Rect(d.X, d.Y, d.Width, d.Height), nil

	case ObjectTypeShapeEllipse:
		var d EllipseData
		if err := unmarshal(t, data, &d); err != nil {
			return nil, err
		}
		return shape.Ellipse(d.CX, d.CY, d.RX, d.RY), nil

	case ObjectTypeVectorPath:
		var d PathData
		if err := unmarshal(t, data, &d); err != nil {
			return nil, err
		}
		p, err := shape.FromCommands(d.Commands)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", t, err)
		}
		return p, nil

	case ObjectTypeRasterImage:
		var d ImageData
		if err := unmarshal(t, data, &d); err != nil {
			return nil, err
		}
		b := shape.NewBitmap(d.AssetID, 0, 0, d.Width, d.Height)
		if d.Placement != nil {
			m, ok := geom.FromSlice(d.Placement)
			if !ok {
				return nil, fmt.Errorf("decode %s: placement needs 6 numbers: %w", t, ErrInvalidData)
			}
			b.Placement = m
		}
		return b, nil
	}
	return nil, fmt.Errorf("decode %s: %w", t, ErrUnsupportedType)
}

// EncodeShape returns the object type and data for a shape. Paths are always
// written as VectorPath, so a rectangle that has been rotated stays exact.
func EncodeShape(s distort.Shape) (ObjectType, json.RawMessage, error) {
	var (
		t ObjectType
		v any
	)
	switch s := s.(type) {
	case *shape.Path:
		t, v = ObjectTypeVectorPath, PathData{Commands: s.Commands()}
	case *shape.Bitmap:
		t, v = ObjectTypeRasterImage, ImageData{
			AssetID:   s.AssetID,
			Width:     s.Width,
			Height:    s.Height,
			Placement: s.Placement.ToSlice(),
		}
	default:
		return "", nil, fmt.Errorf("encode %T: %w", s, ErrUnsupportedType)
	}

	data, err := json.Marshal(v)
	if err != nil {
		return "", nil, fmt.Errorf("encode %s: %w", t, err)
	}
	return t, data, nil
}

// DecodeDistortion rebuilds a distortion engine from its persisted data.
func DecodeDistortion(data json.RawMessage) (*distort.Engine, error) {
	var d DistortionData
	if err := unmarshal(ObjectTypeDistortion, data, &d); err != nil {
		return nil, err
	}
	if d.Source.Type == ObjectTypeDistortion {
		return nil, fmt.Errorf("decode %s: nested distortion: %w", ObjectTypeDistortion, ErrInvalidData)
	}
	src, err := DecodeShape(d.Source.Type, d.Source.Data)
	if err != nil {
		return nil, fmt.Errorf("decode distortion source: %w", err)
	}
	return distort.NewWithQuad(src, d.Corners), nil
}

// EncodeDistortion writes the corners and the source shape of e.
func EncodeDistortion(e *distort.Engine) (json.RawMessage, error) {
	t, src, err := EncodeShape(e.Shape())
	if err != nil {
		return nil, fmt.Errorf("encode distortion source: %w", err)
	}
	data, err := json.Marshal(DistortionData{
		Corners: e.Corners(),
		Source:  SourceData{Type: t, Data: src},
	})
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", ObjectTypeDistortion, err)
	}
	return data, nil
}

// IsGeometry reports whether objects of type t carry a distortable shape.
func IsGeometry(t ObjectType) bool {
	switch t {
	case ObjectTypeShapeRect, ObjectTypeShapeEllipse, ObjectTypeVectorPath, ObjectTypeRasterImage:
		return true
	}
	return false
}

func unmarshal(t ObjectType, data json.RawMessage, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w: %v", t, ErrInvalidData, err)
	}
	return nil
}
