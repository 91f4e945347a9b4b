package document

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/inamate/vecdraw/internal/distort"
	"github.com/inamate/vecdraw/internal/geom"
	"github.com/inamate/vecdraw/internal/shape"
)

var approx = cmpopts.EquateApprox(1e-9, 1e-9)

func TestDecodeShape(t *testing.T) {
	tests := []struct {
		name    string
		typ     ObjectType
		data    string
		wantBox geom.AxisBox
	}{
		{"rect", ObjectTypeShapeRect, `{"x":1,"y":2,"width":3,"height":4}`, geom.Box(1, 2, 4, 6)},
		{"ellipse", ObjectTypeShapeEllipse, `{"cx":0,"cy":0,"rx":5,"ry":2}`, geom.Box(-5, -2, 5, 2)},
		{"path", ObjectTypeVectorPath, `{"commands":[["M",0,0],["L",8,1],["L",3,9],["Z"]]}`, geom.Box(0, 0, 8, 9)},
		{"image", ObjectTypeRasterImage, `{"assetId":"a","width":20,"height":10}`, geom.Box(0, 0, 20, 10)},
		{"placed image", ObjectTypeRasterImage, `{"assetId":"a","width":20,"height":10,"placement":[2,0,0,2,5,5]}`, geom.Box(5, 5, 45, 25)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := DecodeShape(tt.typ, json.RawMessage(tt.data))
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.wantBox, s.BoundingBox(), approx); diff != "" {
				t.Errorf("box mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecodeShapeErrors(t *testing.T) {
	tests := []struct {
		name string
		typ  ObjectType
		data string
		want error
	}{
		{"group", ObjectTypeGroup, `{}`, ErrUnsupportedType},
		{"bad json", ObjectTypeShapeRect, `{"x":`, ErrInvalidData},
		{"bad command", ObjectTypeVectorPath, `{"commands":[["X"]]}`, shape.ErrBadCommand},
		{"short placement", ObjectTypeRasterImage, `{"width":1,"height":1,"placement":[1,2]}`, ErrInvalidData},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeShape(tt.typ, json.RawMessage(tt.data))
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestDistortionRoundTrip(t *testing.T) {
	e := distort.NewWithQuad(shape.Ellipse(10, 10, 8, 5),
		[4]geom.Point{{X: 1, Y: 2}, {X: 25, Y: 0.5}, {X: 19, Y: 16}, {X: 0, Y: 22}})

	data, err := EncodeDistortion(e)
	if err != nil {
		t.Fatal(err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatal(err)
	}
	for _, derived := range []string{"junction", "regions", "transforms"} {
		if _, ok := raw[derived]; ok {
			t.Errorf("persisted form carries derived field %q", derived)
		}
	}

	back, err := DecodeDistortion(data)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(e.Regions(), back.Regions(), approx); diff != "" {
		t.Errorf("regions differ (-orig +loaded):\n%s", diff)
	}
	if diff := cmp.Diff(e.Junction(), back.Junction(), approx); diff != "" {
		t.Errorf("junction differs (-orig +loaded):\n%s", diff)
	}
}

func TestDecodeDistortionRejectsNesting(t *testing.T) {
	data := `{"corners":[{"x":0,"y":0},{"x":1,"y":0},{"x":1,"y":1},{"x":0,"y":1}],"source":{"type":"Distortion","data":{}}}`
	if _, err := DecodeDistortion(json.RawMessage(data)); !errors.Is(err, ErrInvalidData) {
		t.Errorf("err = %v, want ErrInvalidData", err)
	}
}

func TestTransformObjectPropagatesToDistortion(t *testing.T) {
	doc := NewSampleDocument("proj_test")
	var warpedID string
	for id, obj := range doc.Objects {
		if obj.Type == ObjectTypeDistortion {
			warpedID = id
		}
	}
	if warpedID == "" {
		t.Fatal("sample has no distortion")
	}

	before, err := doc.Distortion(warpedID)
	if err != nil {
		t.Fatal(err)
	}
	op := TransformOp{Kind: TransformRotate, Pivot: geom.Pt(400, 330), Angle: math.Pi / 4}
	if err := doc.TransformObject(warpedID, op); err != nil {
		t.Fatal(err)
	}
	after, err := doc.Distortion(warpedID)
	if err != nil {
		t.Fatal(err)
	}

	m := geom.About(op.Pivot, geom.Rotate(op.Angle))
	for i, c := range before.Corners() {
		if got := after.Corner(i); !got.ApproxEqual(m.Apply(c), 1e-9) {
			t.Errorf("corner %d = %+v, want %+v", i, got, m.Apply(c))
		}
	}
	if !after.Junction().IsFinite() {
		t.Errorf("junction %+v", after.Junction())
	}
}

func TestTransformGroup(t *testing.T) {
	doc := NewSampleDocument("proj_test")
	root := doc.Scenes[doc.Project.Scenes[0]].Root
	if err := doc.TransformObject(root, TransformOp{Kind: TransformTranslate, DX: 10}); err != nil {
		t.Fatal(err)
	}
	for _, id := range doc.Objects[root].Children {
		obj := doc.Objects[id]
		if obj.Type != ObjectTypeVectorPath && obj.Type != ObjectTypeDistortion {
			t.Errorf("object %s has type %s after a transform", id, obj.Type)
		}
	}
}

func TestDistortWithCorners(t *testing.T) {
	doc := NewEmptyDocument("p", "n", "s", "root")
	data, _ := json.Marshal(RectData{Width: 10, Height: 10})
	doc.Objects["r"] = ObjectNode{ID: "r", Type: ObjectTypeShapeRect, Visible: true, Data: data}

	corners := [4]geom.Point{{X: 0, Y: 0}, {X: 20, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}}
	if err := doc.Distort("r", &corners); err != nil {
		t.Fatal(err)
	}
	e, err := doc.Distortion("r")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(corners, e.Corners()); diff != "" {
		t.Errorf("corners (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(geom.Pt(20.0/3, 20.0/3), e.Junction(), approx); diff != "" {
		t.Errorf("junction mismatch (-want +got):\n%s", diff)
	}
	if got, ok := e.Map(geom.Pt(10, 0)); !ok || !got.ApproxEqual(geom.Pt(20, 0), 1e-9) {
		t.Errorf("Map(10, 0) = %v, %v; want (20, 0)", got, ok)
	}
}

func TestDistortionEdits(t *testing.T) {
	doc := NewEmptyDocument("p", "n", "s", "root")
	data, _ := json.Marshal(RectData{Width: 10, Height: 10})
	doc.Objects["r"] = ObjectNode{ID: "r", Type: ObjectTypeShapeRect, Visible: true, Data: data}

	if err := doc.Distort("r", nil); err != nil {
		t.Fatal(err)
	}
	if err := doc.SetDistortionCorner("r", 1, geom.Pt(20, 0)); err != nil {
		t.Fatal(err)
	}
	e, err := doc.Distortion("r")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(geom.Pt(20.0/3, 20.0/3), e.Junction(), approx); diff != "" {
		t.Errorf("junction mismatch (-want +got):\n%s", diff)
	}

	if err := doc.SetDistortionCorner("r", 4, geom.Pt(0, 0)); !errors.Is(err, ErrInvalidData) {
		t.Errorf("out of range corner: err = %v", err)
	}
	if err := doc.Distort("r", nil); !errors.Is(err, ErrUnsupportedType) {
		t.Errorf("distorting a distortion: err = %v", err)
	}

	if err := doc.ResetDistortion("r"); err != nil {
		t.Fatal(err)
	}
	e, _ = doc.Distortion("r")
	if e.Corner(1) != geom.Pt(10, 0) {
		t.Errorf("reset corner 1 = %+v", e.Corner(1))
	}

	if err := doc.RemoveDistortion("r"); err != nil {
		t.Fatal(err)
	}
	if got := doc.Objects["r"].Type; got != ObjectTypeVectorPath {
		t.Errorf("type after RemoveDistortion = %s", got)
	}
	if err := doc.TransformObject("missing", TransformOp{Kind: TransformTranslate}); !errors.Is(err, ErrObjectNotFound) {
		t.Errorf("missing object: err = %v", err)
	}
}
