package engine

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/inamate/vecdraw/internal/document"
	"github.com/inamate/vecdraw/internal/geom"
)

type testObject struct {
	id   string
	typ  document.ObjectType
	data any
}

func newTestEngine(t *testing.T, objects ...testObject) *Engine {
	t.Helper()
	doc := document.NewEmptyDocument("proj_test", "Test", "scene_test", "root")
	for _, o := range objects {
		raw, err := json.Marshal(o.data)
		if err != nil {
			t.Fatal(err)
		}
		parent := "root"
		doc.Objects[o.id] = document.ObjectNode{
			ID:       o.id,
			Type:     o.typ,
			Parent:   &parent,
			Children: []string{},
			Style:    document.Style{Fill: "#000000", Opacity: 1},
			Visible:  true,
			Data:     raw,
		}
		doc.InsertChild("root", o.id, nil)
	}
	e := NewEngine()
	e.SetDocument(doc)
	return e
}

func render(t *testing.T, e *Engine) []DrawCommand {
	t.Helper()
	var cmds []DrawCommand
	if err := json.Unmarshal([]byte(e.Render()), &cmds); err != nil {
		t.Fatal(err)
	}
	return cmds
}

var (
	square   = testObject{"sq", document.ObjectTypeShapeRect, document.RectData{Width: 10, Height: 10}}
	triangle = testObject{"tri", document.ObjectTypeVectorPath, document.PathData{
		Commands: [][]any{{"M", 0.0, 0.0}, {"L", 100.0, 0.0}, {"L", 0.0, 100.0}, {"Z"}},
	}}
	picture = testObject{"pic", document.ObjectTypeRasterImage, document.ImageData{
		AssetID: "asset_1", Width: 10, Height: 10,
	}}
)

func TestRenderPainterOrder(t *testing.T) {
	e := newTestEngine(t, triangle, square)

	var got []string
	for _, c := range render(t, e) {
		got = append(got, c.Op+":"+c.ObjectID)
	}
	want := []string{"path:tri", "path:sq"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("draw order (-want +got):\n%s", diff)
	}
}

func TestHitTestUsesGeometry(t *testing.T) {
	e := newTestEngine(t, triangle)

	tests := []struct {
		name string
		x, y float64
		want string
	}{
		{"inside", 10, 10, "tri"},
		{"inside bounds outside triangle", 90, 90, ""},
		{"outside", 200, 10, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := e.HitTest(tt.x, tt.y); got != tt.want {
				t.Errorf("HitTest(%v, %v) = %q, want %q", tt.x, tt.y, got, tt.want)
			}
		})
	}
}

func TestCornerDrag(t *testing.T) {
	e := newTestEngine(t, square)
	if err := e.Distort("sq"); err != nil {
		t.Fatal(err)
	}

	if got := e.HitTest(15, 1); got != "" {
		t.Fatalf("HitTest before drag = %q, want miss", got)
	}

	i, err := e.SelectCorner("sq", 100, 100)
	if err != nil || i != -1 {
		t.Fatalf("SelectCorner far away = %d, %v; want -1, nil", i, err)
	}

	i, err = e.SelectCorner("sq", 10.5, 0.5)
	if err != nil || i != 1 {
		t.Fatalf("SelectCorner = %d, %v; want 1, nil", i, err)
	}
	moved, err := e.DragCorner(20, 0)
	if err != nil || !moved {
		t.Fatalf("DragCorner = %v, %v", moved, err)
	}

	info, err := e.Distortion("sq")
	if err != nil {
		t.Fatal(err)
	}
	approx := cmpopts.EquateApprox(0, 1e-9)
	if diff := cmp.Diff(geom.Pt(20.0/3, 20.0/3), info.Junction, approx); diff != "" {
		t.Errorf("junction (-want +got):\n%s", diff)
	}
	if len(info.Regions) != 4 {
		t.Fatalf("got %d regions, want 4", len(info.Regions))
	}
	for _, r := range info.Regions {
		if len(r.Matrix) != 6 {
			t.Errorf("region %s has no matrix", r.Name)
		}
	}

	// The warped outline now reaches past the original square.
	if got := e.HitTest(15, 1); got != "sq" {
		t.Errorf("HitTest after drag = %q, want sq", got)
	}

	e.ReleaseCorner()
	if moved, _ := e.DragCorner(0, 0); moved {
		t.Error("DragCorner after release moved a corner")
	}
}

func TestHandleOverlay(t *testing.T) {
	e := newTestEngine(t, square)
	if err := e.Distort("sq"); err != nil {
		t.Fatal(err)
	}
	if _, err := e.SelectCorner("sq", 10, 10); err != nil {
		t.Fatal(err)
	}
	e.SetSelection([]string{"sq"})

	cmds := render(t, e)
	last := cmds[len(cmds)-1]
	if last.Op != "handles" {
		t.Fatalf("last op = %q, want handles", last.Op)
	}
	want := []geom.Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}, {X: 5, Y: 5}}
	if diff := cmp.Diff(want, last.Handles); diff != "" {
		t.Errorf("handles (-want +got):\n%s", diff)
	}
	if last.Selected != 3 {
		t.Errorf("selected = %d, want 3", last.Selected)
	}
	wantGuides := [][]geom.Point{
		{{X: 0, Y: 5}, {X: 5, Y: 5}, {X: 10, Y: 5}},
		{{X: 5, Y: 0}, {X: 5, Y: 5}, {X: 5, Y: 10}},
	}
	if diff := cmp.Diff(wantGuides, last.Guides, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("guides (-want +got):\n%s", diff)
	}
}

func TestSelectionBoundsCoverHandles(t *testing.T) {
	oval := testObject{"ov", document.ObjectTypeShapeEllipse, document.EllipseData{CX: 5, CY: 5, RX: 5, RY: 5}}
	e := newTestEngine(t, oval)
	if err := e.Distort("ov"); err != nil {
		t.Fatal(err)
	}
	if i, err := e.SelectCorner("ov", 10, 10); err != nil || i != 2 {
		t.Fatalf("SelectCorner = %d, %v", i, err)
	}
	if _, err := e.DragCorner(20, 20); err != nil {
		t.Fatal(err)
	}

	// The warped oval stops short of the dragged corner.
	if got := e.SceneGraph().NodesById["ov"].Bounds; got.MaxX >= 20 {
		t.Fatalf("outline reaches x=%v, want it inside the quad", got.MaxX)
	}

	e.SetSelection([]string{"ov"})
	var box map[string]float64
	if err := json.Unmarshal([]byte(e.GetSelectionBounds()), &box); err != nil {
		t.Fatal(err)
	}
	want := map[string]float64{"x": 0, "y": 0, "width": 20, "height": 20}
	if diff := cmp.Diff(want, box, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("selection bounds (-want +got):\n%s", diff)
	}
}

func TestDistortedBitmapPieces(t *testing.T) {
	e := newTestEngine(t, picture)
	if err := e.Distort("pic"); err != nil {
		t.Fatal(err)
	}

	var ops []string
	for _, c := range render(t, e) {
		ops = append(ops, c.Op)
		if c.Op == "image" && (c.ImageAssetID != "asset_1" || len(c.Transform) != 6) {
			t.Errorf("image command = %+v", c)
		}
	}
	var want []string
	for range 4 {
		want = append(want, "save", "clip", "image", "restore")
	}
	if diff := cmp.Diff(want, ops); diff != "" {
		t.Errorf("ops (-want +got):\n%s", diff)
	}
}

func TestTransformDistortion(t *testing.T) {
	e := newTestEngine(t, square)
	if err := e.Distort("sq"); err != nil {
		t.Fatal(err)
	}
	if err := e.TransformObject("sq", `{"kind":"translate","dx":5,"dy":-5}`); err != nil {
		t.Fatal(err)
	}

	info, err := e.Distortion("sq")
	if err != nil {
		t.Fatal(err)
	}
	want := []geom.Point{{X: 5, Y: -5}, {X: 15, Y: -5}, {X: 15, Y: 5}, {X: 5, Y: 5}}
	if diff := cmp.Diff(want, info.Corners); diff != "" {
		t.Errorf("corners (-want +got):\n%s", diff)
	}

	e.SetSelection([]string{"sq"})
	var box map[string]float64
	if err := json.Unmarshal([]byte(e.GetSelectionBounds()), &box); err != nil {
		t.Fatal(err)
	}
	wantBox := map[string]float64{"x": 5, "y": -5, "width": 10, "height": 10}
	if diff := cmp.Diff(wantBox, box, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("selection bounds (-want +got):\n%s", diff)
	}
}

func TestEditErrors(t *testing.T) {
	if err := NewEngine().Distort("sq"); !errors.Is(err, ErrNoDocument) {
		t.Errorf("Distort without document = %v", err)
	}

	e := newTestEngine(t, square)
	if err := e.Distort("root"); !errors.Is(err, document.ErrUnsupportedType) {
		t.Errorf("Distort group = %v", err)
	}
	if err := e.Distort("missing"); !errors.Is(err, document.ErrObjectNotFound) {
		t.Errorf("Distort missing = %v", err)
	}
	if _, err := e.SelectCorner("sq", 0, 0); !errors.Is(err, document.ErrInvalidData) {
		t.Errorf("SelectCorner on plain shape = %v", err)
	}
	if err := e.TransformObject("sq", `{"kind":"spin"}`); !errors.Is(err, document.ErrInvalidData) {
		t.Errorf("unknown transform = %v", err)
	}
	if got := e.GetDistortion("sq"); got != "{}" {
		t.Errorf("GetDistortion on plain shape = %s", got)
	}
}

func TestSampleDocumentRenders(t *testing.T) {
	e := NewEngine()
	e.LoadSampleDocument("proj_sample")
	cmds := render(t, e)
	if len(cmds) != 4 {
		t.Errorf("got %d commands, want 4", len(cmds))
	}
}
