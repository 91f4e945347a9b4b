package distort

import (
	"encoding/json"
	"math"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/inamate/vecdraw/internal/geom"
)

const eps = 1e-9

var approx = cmpopts.EquateApprox(eps, eps)

// polyShape is a minimal Shape: one polygon.
type polyShape struct {
	pts geom.Polygon
}

func newRect(x0, y0, x1, y1 float64) *polyShape {
	return &polyShape{pts: geom.Polygon{geom.Pt(x0, y0), geom.Pt(x1, y0), geom.Pt(x1, y1), geom.Pt(x0, y1)}}
}

func (s *polyShape) BoundingBox() geom.AxisBox { return s.pts.Bounds() }
func (s *polyShape) Translate(dx, dy float64)  { s.ApplyMatrix(geom.Translate(dx, dy)) }
func (s *polyShape) Scale(p geom.Point, sx, sy float64) {
	s.ApplyMatrix(geom.About(p, geom.Scale(sx, sy)))
}
func (s *polyShape) Shear(p geom.Point, kx, ky float64) {
	s.ApplyMatrix(geom.About(p, geom.Shear(kx, ky)))
}
func (s *polyShape) Rotate(p geom.Point, a float64) { s.ApplyMatrix(geom.About(p, geom.Rotate(a))) }
func (s *polyShape) ApplyMatrix(m geom.Matrix2D)    { s.pts = s.pts.Transform(m) }
func (s *polyShape) Clone() Shape {
	return &polyShape{pts: append(geom.Polygon(nil), s.pts...)}
}

func (s *polyShape) WarpedOutline(regions [NumRegions]Region) Geometry {
	var g Geometry
	for _, r := range regions {
		m, ok := r.Transform()
		if !ok {
			continue
		}
		if piece := s.pts.ClipToTriangle(r.Source); piece != nil {
			g = append(g, piece.Transform(m))
		}
	}
	return g
}

func TestConcreteScenario(t *testing.T) {
	e := New(newRect(0, 0, 10, 10))

	if diff := cmp.Diff(geom.Pt(5, 5), e.Junction(), approx); diff != "" {
		t.Errorf("identity junction mismatch (-want +got):\n%s", diff)
	}
	for r := Upper; r <= Left; r++ {
		m, ok := e.Transform(r)
		if !ok || !m.IsIdentity() {
			t.Errorf("region %v = %v (ok=%v), want identity", r, m, ok)
		}
	}

	e.SetCorner(1, geom.Pt(20, 0))

	// Diagonal (0,0)-(10,10) meets (20,0)-(0,10) at x = y = 20/3.
	if diff := cmp.Diff(geom.Pt(20.0/3, 20.0/3), e.Junction(), approx); diff != "" {
		t.Errorf("junction mismatch (-want +got):\n%s", diff)
	}
	for _, r := range e.Regions() {
		m, ok := r.Transform()
		if !ok {
			t.Fatalf("unexpected degenerate region")
		}
		if m.IsIdentity() {
			t.Errorf("region with source %v is still identity after the junction moved", r.Source)
		}
		for i := range r.Source {
			if got := m.Apply(r.Source[i]); !got.ApproxEqual(r.Target[i], eps) {
				t.Errorf("vertex %d: %+v, want %+v", i, got, r.Target[i])
			}
		}
	}
}

func TestIdentityProperty(t *testing.T) {
	boxes := []geom.AxisBox{
		geom.Box(0, 0, 10, 10),
		geom.Box(-3.5, 2, 120, 7.25),
		geom.Box(1e5, 1e5, 1e5+0.25, 1e5+3),
	}
	for _, b := range boxes {
		e := NewWithQuad(newRect(b.MinX, b.MinY, b.MaxX, b.MaxY), [4]geom.Point{geom.Pt(1, 2), geom.Pt(3, 2), geom.Pt(9, 9), geom.Pt(0, 4)})
		e.ResetToIdentity()
		e.Recompute()
		for _, r := range e.Regions() {
			m, ok := r.Transform()
			if !ok {
				t.Fatalf("box %+v: degenerate region", b)
			}
			for _, v := range r.Source {
				if got := m.Apply(v); !got.ApproxEqual(v, eps) {
					t.Errorf("box %+v: %+v mapped to %+v", b, v, got)
				}
			}
		}
	}
}

func randomQuads(n int) [][4]geom.Point {
	rng := rand.New(rand.NewSource(7))
	coord := func() float64 { return rng.Float64()*200 - 50 }
	quads := [][4]geom.Point{
		// concave
		{geom.Pt(0, 0), geom.Pt(10, 0), geom.Pt(4, 4), geom.Pt(0, 10)},
		// bow tie
		{geom.Pt(0, 0), geom.Pt(10, 10), geom.Pt(10, 0), geom.Pt(0, 10)},
		// mirrored
		{geom.Pt(10, 10), geom.Pt(0, 10), geom.Pt(0, 0), geom.Pt(10, 0)},
	}
	for i := 0; i < n; i++ {
		quads = append(quads, [4]geom.Point{
			geom.Pt(coord(), coord()), geom.Pt(coord(), coord()),
			geom.Pt(coord(), coord()), geom.Pt(coord(), coord()),
		})
	}
	return quads
}

func TestCornerExactness(t *testing.T) {
	for _, q := range randomQuads(50) {
		e := NewWithQuad(newRect(2, 3, 40, 25), q)
		for ri, r := range e.Regions() {
			m, ok := r.Transform()
			if !ok {
				continue
			}
			for i := range r.Source {
				if got := m.Apply(r.Source[i]); !got.ApproxEqual(r.Target[i], 1e-8) {
					t.Errorf("quad %v region %v vertex %d: got %+v, want %+v",
						q, RegionIndex(ri), i, got, r.Target[i])
				}
			}
		}
	}
}

func TestJunctionContinuity(t *testing.T) {
	quads := append(randomQuads(30),
		// corners 2 and 3 coincide; right, lower and left collapse
		[4]geom.Point{geom.Pt(0, 0), geom.Pt(10, 0), geom.Pt(10, 10), geom.Pt(10, 10)},
	)
	for _, q := range quads {
		e := NewWithQuad(newRect(0, 0, 10, 10), q)
		mid := e.Shape().BoundingBox().Center()
		regions := e.Regions()
		for i := range regions {
			for _, j := range []int{i, (i + 1) % NumRegions} {
				m, ok := regions[j].Transform()
				if !ok {
					continue
				}
				if got := m.Apply(mid); !got.ApproxEqual(e.Junction(), 1e-8) {
					t.Errorf("quad %v region %v sends the midpoint to %+v, junction is %+v",
						q, RegionIndex(j), got, e.Junction())
				}
			}
		}
	}
}

func TestTranslationEquivariance(t *testing.T) {
	const dx, dy = 17.5, -4.25
	for _, q := range randomQuads(20) {
		e := NewWithQuad(newRect(0, 0, 30, 20), q)
		before := e.Regions()
		junction := e.Junction()

		e.Translate(dx, dy)
		e.Recompute()

		if !e.Junction().ApproxEqual(junction.Offset(dx, dy), 1e-8) {
			t.Errorf("junction %+v, want %+v", e.Junction(), junction.Offset(dx, dy))
		}
		shift, back := geom.Translate(dx, dy), geom.Translate(-dx, -dy)
		for i, r := range e.Regions() {
			if r.Degenerate != before[i].Degenerate {
				t.Fatalf("region %v changed degeneracy", RegionIndex(i))
			}
			if r.Degenerate {
				continue
			}
			want := shift.Multiply(before[i].Matrix).Multiply(back)
			if !r.Matrix.ApproxEqual(want, 1e-7) {
				t.Errorf("region %v: %v, want %v", RegionIndex(i), r.Matrix, want)
			}
		}
	}
}

func finite(t *testing.T, e *Engine) {
	t.Helper()
	if !e.Junction().IsFinite() {
		t.Errorf("junction not finite: %+v", e.Junction())
	}
	for i, r := range e.Regions() {
		if !r.Matrix.IsFinite() {
			t.Errorf("region %v matrix not finite: %v", RegionIndex(i), r.Matrix)
		}
	}
}

func TestDegenerateStability(t *testing.T) {
	tests := []struct {
		name         string
		corners      [4]geom.Point
		wantJunction geom.Point
	}{
		{
			name:         "corner0 on corner2",
			corners:      [4]geom.Point{geom.Pt(0, 0), geom.Pt(10, 0), geom.Pt(0, 0), geom.Pt(0, 10)},
			wantJunction: geom.Pt(5, 5),
		},
		{
			name:         "collapsed to a point",
			corners:      [4]geom.Point{geom.Pt(3, 3), geom.Pt(3, 3), geom.Pt(3, 3), geom.Pt(3, 3)},
			wantJunction: geom.Pt(5, 5),
		},
		{
			name:         "parallel diagonals",
			corners:      [4]geom.Point{geom.Pt(0, 0), geom.Pt(0, 5), geom.Pt(10, 0), geom.Pt(10, 5)},
			wantJunction: geom.Pt(5, 5),
		},
		{
			name:         "corner2 on corner3",
			corners:      [4]geom.Point{geom.Pt(0, 0), geom.Pt(10, 0), geom.Pt(10, 10), geom.Pt(10, 10)},
			wantJunction: geom.Pt(10, 10),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewWithQuad(newRect(0, 0, 10, 10), tt.corners)
			finite(t, e)
			if diff := cmp.Diff(tt.wantJunction, e.Junction(), approx); diff != "" {
				t.Errorf("junction mismatch (-want +got):\n%s", diff)
			}

			first := e.Regions()
			e.Recompute()
			e.Recompute()
			if diff := cmp.Diff(first, e.Regions()); diff != "" {
				t.Errorf("Recompute not idempotent (-first +again):\n%s", diff)
			}
			for _, pg := range e.Outline() {
				for _, pt := range pg {
					if !pt.IsFinite() {
						t.Fatalf("outline point not finite: %+v", pt)
					}
				}
			}
		})
	}
}

func TestDegenerateShapeBox(t *testing.T) {
	e := New(newRect(0, 5, 10, 5))
	finite(t, e)
	for i, r := range e.Regions() {
		if !r.Degenerate {
			t.Errorf("region %v of a zero-height box should be degenerate", RegionIndex(i))
		}
	}
	if g := e.Outline(); len(g) != 0 {
		t.Errorf("degenerate regions produced geometry: %v", g)
	}
}

func TestRoundTrip(t *testing.T) {
	for _, q := range randomQuads(10) {
		e := NewWithQuad(newRect(1, 1, 9, 6), q)

		data, err := json.Marshal(e.Corners())
		if err != nil {
			t.Fatal(err)
		}
		var corners [NumCorners]geom.Point
		if err := json.Unmarshal(data, &corners); err != nil {
			t.Fatal(err)
		}

		loaded := NewWithQuad(e.Shape().Clone(), corners)
		if diff := cmp.Diff(e.Regions(), loaded.Regions(), approx); diff != "" {
			t.Errorf("regions differ after round trip (-orig +loaded):\n%s", diff)
		}
		if diff := cmp.Diff(e.Junction(), loaded.Junction(), approx); diff != "" {
			t.Errorf("junction differs after round trip (-orig +loaded):\n%s", diff)
		}
	}
}

func TestPropagation(t *testing.T) {
	pivot := geom.Pt(4, -2)
	tests := []struct {
		name  string
		apply func(e *Engine)
		m     geom.Matrix2D
	}{
		{"translate", func(e *Engine) { e.Translate(3, 4) }, geom.Translate(3, 4)},
		{"scale", func(e *Engine) { e.Scale(pivot, 2, 0.5) }, geom.About(pivot, geom.Scale(2, 0.5))},
		{"shear", func(e *Engine) { e.Shear(pivot, 0.3, 0) }, geom.About(pivot, geom.Shear(0.3, 0))},
		{"rotate", func(e *Engine) { e.Rotate(pivot, math.Pi/6) }, geom.About(pivot, geom.Rotate(math.Pi/6))},
		{"matrix", func(e *Engine) { e.ApplyMatrix(geom.Matrix2D{1, 0.2, -0.1, 1.5, 7, 8}) }, geom.Matrix2D{1, 0.2, -0.1, 1.5, 7, 8}},
	}
	start := [4]geom.Point{geom.Pt(-2, 1), geom.Pt(14, -3), geom.Pt(11, 12), geom.Pt(1, 9)}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shape := newRect(0, 0, 10, 10)
			e := NewWithQuad(shape, start)
			tt.apply(e)

			for i, c := range e.Corners() {
				if want := tt.m.Apply(start[i]); !c.ApproxEqual(want, eps) {
					t.Errorf("corner %d = %+v, want %+v", i, c, want)
				}
			}
			wantShape := newRect(0, 0, 10, 10).pts.Transform(tt.m)
			if diff := cmp.Diff(wantShape, shape.pts, approx); diff != "" {
				t.Errorf("shape not propagated (-want +got):\n%s", diff)
			}

			fresh := NewWithQuad(shape.Clone(), e.Corners())
			if diff := cmp.Diff(fresh.Regions(), e.Regions(), approx); diff != "" {
				t.Errorf("state out of sync with a fresh recompute (-fresh +got):\n%s", diff)
			}
		})
	}
}

func TestSelectNear(t *testing.T) {
	q := Quad{Corners: [4]geom.Point{geom.Pt(0, 0), geom.Pt(1, 0), geom.Pt(10, 10), geom.Pt(0, 10)}}
	tests := []struct {
		name   string
		p      geom.Point
		want   int
		wantOK bool
	}{
		{"first match wins", geom.Pt(0.5, 0), 0, true},
		{"exact corner", geom.Pt(10, 10), 2, true},
		{"on tolerance edge", geom.Pt(0.75, 10.75), 3, true},
		{"too far", geom.Pt(5, 5), -1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := q.SelectNear(tt.p, 0.75, 0.75)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("SelectNear(%+v) = %d, %v; want %d, %v", tt.p, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestDragSelected(t *testing.T) {
	e := New(newRect(0, 0, 10, 10))
	if e.DragSelected(geom.Pt(1, 1)) {
		t.Fatal("drag without selection succeeded")
	}
	if i, ok := e.SelectCorner(geom.Pt(10.2, 9.9), 0.5, 0.5); !ok || i != 2 {
		t.Fatalf("SelectCorner = %d, %v", i, ok)
	}
	if !e.DragSelected(geom.Pt(15, 12)) {
		t.Fatal("drag failed")
	}
	if e.Corner(2) != geom.Pt(15, 12) {
		t.Errorf("corner 2 = %+v", e.Corner(2))
	}
	e.ClearSelection()
	if _, ok := e.SelectedCorner(); ok {
		t.Error("selection survived ClearSelection")
	}
}

func TestInvalidCornerPanics(t *testing.T) {
	e := New(newRect(0, 0, 1, 1))
	for _, i := range []int{-1, 4, 100} {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("SetCorner(%d) did not panic", i)
				}
			}()
			e.SetCorner(i, geom.Pt(0, 0))
		}()
	}
}

func TestClone(t *testing.T) {
	e := NewWithQuad(newRect(0, 0, 10, 10), [4]geom.Point{geom.Pt(0, 0), geom.Pt(12, 1), geom.Pt(9, 9), geom.Pt(-1, 11)})
	c := e.Clone()
	if diff := cmp.Diff(e.Regions(), c.Regions()); diff != "" {
		t.Errorf("clone regions differ:\n%s", diff)
	}

	c.Translate(100, 0)
	if e.Corner(1) != geom.Pt(12, 1) {
		t.Errorf("original corner moved with the clone: %+v", e.Corner(1))
	}
	if e.Shape().BoundingBox() != geom.Box(0, 0, 10, 10) {
		t.Errorf("original shape moved with the clone: %+v", e.Shape().BoundingBox())
	}
}

func TestMap(t *testing.T) {
	e := NewWithQuad(newRect(0, 0, 10, 10), [4]geom.Point{geom.Pt(0, 0), geom.Pt(20, 0), geom.Pt(10, 10), geom.Pt(0, 10)})
	got, ok := e.Map(geom.Pt(10, 0))
	if !ok || !got.ApproxEqual(geom.Pt(20, 0), eps) {
		t.Errorf("Map(NE) = %+v, %v", got, ok)
	}
	if _, ok := e.Map(geom.Pt(11, 5)); ok {
		t.Error("point outside the box mapped")
	}
}
