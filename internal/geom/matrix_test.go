package geom

import (
	"math"
	"testing"
)

func TestAboutKeepsPivotFixed(t *testing.T) {
	pivot := Pt(3, -4)
	tests := []struct {
		name string
		m    Matrix2D
	}{
		{"scale", Scale(2, 0.5)},
		{"rotate", Rotate(math.Pi / 3)},
		{"shear", Shear(0.4, -0.2)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := About(pivot, tt.m).Apply(pivot)
			if !got.ApproxEqual(pivot, eps) {
				t.Errorf("pivot moved to %+v", got)
			}
		})
	}
}

func TestShear(t *testing.T) {
	got := Shear(0.5, 2).Apply(Pt(2, 4))
	if want := Pt(4, 8); !got.ApproxEqual(want, eps) {
		t.Errorf("Shear(0.5, 2)·(2,4) = %+v, want %+v", got, want)
	}
}

func TestInvert(t *testing.T) {
	m := Translate(5, 6).Multiply(Rotate(0.3)).Multiply(Scale(2, 3))
	inv, ok := m.Invert()
	if !ok {
		t.Fatal("invertible matrix reported singular")
	}
	if got := m.Multiply(inv); !got.ApproxEqual(Identity(), eps) {
		t.Errorf("m·m⁻¹ = %v", got)
	}
	if _, ok := Scale(0, 1).Invert(); ok {
		t.Error("singular matrix reported invertible")
	}
}

func TestFromSlice(t *testing.T) {
	m := Translate(1, 2).Multiply(Shear(0.1, 0.2))
	back, ok := FromSlice(m.ToSlice())
	if !ok || back != m {
		t.Errorf("FromSlice(ToSlice) = %v, %v", back, ok)
	}
	if _, ok := FromSlice([]float64{1, 2, 3}); ok {
		t.Error("short slice accepted")
	}
}
