package engine

import (
	"math"

	"github.com/EvegeniyNekrasov/Nexo/internal/document"
)

const (
	MinZoom = 0.15
	MaxZoom = 6.0

	// DefaultZoomSensitivity scales wheel deltas into the exponential zoom factor.
	DefaultZoomSensitivity = 0.0015
)

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect is an axis-aligned box. W and H may be negative while a shape is being drawn.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Camera maps world space to device pixels: screen = world*Zoom + Pan.
type Camera struct {
	PanX float64 `json:"panX"`
	PanY float64 `json:"panY"`
	Zoom float64 `json:"zoom"`
}

// DefaultCamera is the view a freshly opened document starts with.
func DefaultCamera() Camera {
	return Camera{PanX: 300, PanY: 200, Zoom: 1}
}

// Matrix returns the world-to-screen affine.
func (c Camera) Matrix() Matrix2D {
	return Translate(c.PanX, c.PanY).Multiply(Scale(c.Zoom, c.Zoom))
}

// WorldToScreen projects a world point to device pixels.
func (c Camera) WorldToScreen(p Point) Point {
	return c.Matrix().TransformPoint(p)
}

// ScreenToWorld inverts the camera for a point already in device pixels.
func (c Camera) ScreenToWorld(p Point) Point {
	return c.Matrix().Invert().TransformPoint(p)
}

// Origin is the canvas's top-left corner on the page, in CSS pixels.
type Origin struct {
	Left float64 `json:"left"`
	Top  float64 `json:"top"`
}

func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// ClientToDevice converts a page coordinate to device pixels on the canvas.
func ClientToDevice(clientX, clientY float64, origin Origin, dpr float64) Point {
	return Point{X: (clientX - origin.Left) * dpr, Y: (clientY - origin.Top) * dpr}
}

// ScreenToWorld converts a page pointer coordinate into world space.
func ScreenToWorld(clientX, clientY float64, origin Origin, cam Camera, dpr float64) Point {
	return cam.ScreenToWorld(ClientToDevice(clientX, clientY, origin, dpr))
}

// NormalizeRect builds a non-negative rectangle from two arbitrary corners.
func NormalizeRect(x0, y0, x1, y1 float64) Rect {
	return Rect{
		X: math.Min(x0, x1),
		Y: math.Min(y0, y1),
		W: math.Abs(x1 - x0),
		H: math.Abs(y1 - y0),
	}
}

// RectContainsPoint is an inclusive bounds test.
func RectContainsPoint(r Rect, p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.W && p.Y >= r.Y && p.Y <= r.Y+r.H
}

// ShapeBounds returns the world-space box used for hit testing and drawing.
func ShapeBounds(s document.Shape) Rect {
	switch s.Kind {
	case document.ShapeKindRect:
		return Rect{X: s.X, Y: s.Y, W: s.W, H: s.H}
	default:
		return Rect{}
	}
}

// ShapeContainsPoint reports whether p lies on the shape.
func ShapeContainsPoint(s document.Shape, p Point) bool {
	switch s.Kind {
	case document.ShapeKindRect:
		return RectContainsPoint(ShapeBounds(s), p)
	default:
		return false
	}
}

// HitTest returns the topmost shape containing p. Shapes are tested in
// reverse insertion order, so the last drawn wins.
func HitTest(shapes []document.Shape, p Point) (document.Shape, bool) {
	for i := len(shapes) - 1; i >= 0; i-- {
		if ShapeContainsPoint(shapes[i], p) {
			return shapes[i], true
		}
	}
	return document.Shape{}, false
}

// ZoomAt scales the camera by exp(-deltaY*sensitivity) around the device
// pixel anchor, clamping zoom to [MinZoom, MaxZoom]. The world point under
// anchor projects to the same pixel before and after.
func ZoomAt(cam Camera, anchor Point, deltaY, sensitivity float64) Camera {
	world := cam.ScreenToWorld(anchor)
	factor := math.Exp(-deltaY * sensitivity)
	zoom := Clamp(cam.Zoom*factor, MinZoom, MaxZoom)
	return Camera{
		PanX: anchor.X - world.X*zoom,
		PanY: anchor.Y - world.Y*zoom,
		Zoom: zoom,
	}
}

// SceneBounds returns the union of every shape's bounds. ok is false for an
// empty scene.
func SceneBounds(shapes []document.Shape) (r Rect, ok bool) {
	for _, s := range shapes {
		b := ShapeBounds(s)
		if !ok {
			r, ok = b, true
			continue
		}
		x0, y0 := math.Min(r.X, b.X), math.Min(r.Y, b.Y)
		x1, y1 := math.Max(r.X+r.W, b.X+b.W), math.Max(r.Y+r.H, b.Y+b.H)
		r = Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
	}
	return r, ok
}

// FitCamera centres bounds in a width x height surface, leaving padding
// pixels on every side. Zoom is clamped like any other camera.
func FitCamera(bounds Rect, width, height, padding float64) Camera {
	availW := math.Max(width-2*padding, 1)
	availH := math.Max(height-2*padding, 1)

	zoom := MaxZoom
	if bounds.W > 0 {
		zoom = math.Min(zoom, availW/bounds.W)
	}
	if bounds.H > 0 {
		zoom = math.Min(zoom, availH/bounds.H)
	}
	zoom = Clamp(zoom, MinZoom, MaxZoom)

	cx := bounds.X + bounds.W/2
	cy := bounds.Y + bounds.H/2
	return Camera{
		PanX: width/2 - cx*zoom,
		PanY: height/2 - cy*zoom,
		Zoom: zoom,
	}
}
