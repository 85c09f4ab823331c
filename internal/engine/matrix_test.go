package engine

import "testing"

func TestCameraMatrixMatchesAffine(t *testing.T) {
	cam := Camera{PanX: 30, PanY: -20, Zoom: 2.5}
	p := Point{X: 4, Y: 8}
	got := cam.Matrix().TransformPoint(p)
	want := Point{X: 4*2.5 + 30, Y: 8*2.5 - 20}
	if got != want {
		t.Fatalf("unexpected projection: %+v, want %+v", got, want)
	}
}

func TestInvert(t *testing.T) {
	m := Camera{PanX: 10, PanY: 20, Zoom: 4}.Matrix()
	p := m.Invert().TransformPoint(m.TransformPoint(Point{3, -7}))
	if !almostEqual(p.X, 3) || !almostEqual(p.Y, -7) {
		t.Fatalf("unexpected round trip: %+v", p)
	}
	if Scale(0, 0).Invert() != Identity() {
		t.Fatalf("singular matrix should invert to identity")
	}
}

func TestTransformRect(t *testing.T) {
	m := Camera{PanX: 5, PanY: 5, Zoom: 2}.Matrix()
	got := m.TransformRect(Rect{X: 1, Y: 1, W: 2, H: 3})
	want := Rect{X: 7, Y: 7, W: 4, H: 6}
	if got != want {
		t.Fatalf("unexpected rect: %+v, want %+v", got, want)
	}
}

func TestCameraScreenToWorldUsesInverse(t *testing.T) {
	cam := Camera{PanX: -120, PanY: 64, Zoom: 0.4}
	if d := cam.Matrix().Determinant(); !almostEqual(d, 0.16) {
		t.Fatalf("unexpected determinant: %v", d)
	}
	got := cam.ScreenToWorld(Point{X: 80, Y: 264})
	if !almostEqual(got.X, 500) || !almostEqual(got.Y, 500) {
		t.Fatalf("unexpected world point: %+v", got)
	}
}
