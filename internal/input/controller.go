// Package input turns raw pointer, wheel and keyboard events into editor
// actions. It never touches state directly; every change goes through the
// Dispatcher.
package input

import (
	"strings"

	"github.com/EvegeniyNekrasov/Nexo/internal/document"
	"github.com/EvegeniyNekrasov/Nexo/internal/editor"
	"github.com/EvegeniyNekrasov/Nexo/internal/engine"
	"github.com/EvegeniyNekrasov/Nexo/internal/typeid"
)

// MinCreateExtent is the smallest width and height a drawn rectangle needs
// to be kept. Anything smaller is treated as a click.
const MinCreateExtent = 1.0

type Button int

const (
	ButtonPrimary   Button = 0
	ButtonMiddle    Button = 1
	ButtonSecondary Button = 2
)

type PointerEvent struct {
	ClientX float64
	ClientY float64
	Button  Button
}

type WheelEvent struct {
	ClientX float64
	ClientY float64
	DeltaY  float64
}

type KeyEvent struct {
	Key   string // produced character, e.g. "z", "Z", " "
	Code  string // physical key, e.g. "Space", "KeyZ"
	Ctrl  bool
	Meta  bool
	Shift bool
}

// Viewport describes the canvas surface: its page origin in CSS pixels, the
// device pixel ratio, and its size in device pixels.
type Viewport struct {
	Origin engine.Origin
	DPR    float64
	Width  int
	Height int
}

func (v Viewport) dpr() float64 {
	if v.DPR <= 0 {
		return 1
	}
	return v.DPR
}

// Dispatcher is the state machine seen from the controller.
type Dispatcher interface {
	State() editor.State
	Dispatch(editor.Action)
}

type Options struct {
	// ZoomSensitivity is k in zoomFactor = exp(-deltaY * k).
	ZoomSensitivity float64
	// Mac selects Meta instead of Ctrl as the shortcut modifier.
	Mac bool
	// NewShapeID mints ids for created shapes.
	NewShapeID func(document.ShapeKind) string
}

type Controller struct {
	d    Dispatcher
	vp   Viewport
	opts Options
}

func NewController(d Dispatcher, opts Options) *Controller {
	if opts.ZoomSensitivity <= 0 {
		opts.ZoomSensitivity = engine.DefaultZoomSensitivity
	}
	if opts.NewShapeID == nil {
		opts.NewShapeID = typeid.NewShapeID
	}
	return &Controller{d: d, vp: Viewport{DPR: 1}, opts: opts}
}

func (c *Controller) SetViewport(vp Viewport) { c.vp = vp }

func (c *Controller) Viewport() Viewport { return c.vp }

func (c *Controller) toWorld(clientX, clientY float64) engine.Point {
	return engine.ScreenToWorld(clientX, clientY, c.vp.Origin, c.d.State().Camera, c.vp.dpr())
}

func (c *Controller) PointerDown(ev PointerEvent) {
	s := c.d.State()

	// Pan wins over every tool.
	if ev.Button == ButtonMiddle || s.SpaceHeld {
		c.d.Dispatch(editor.SetDrag{Drag: editor.DragPanning{
			StartClient: engine.Point{X: ev.ClientX, Y: ev.ClientY},
			StartPanX:   s.Camera.PanX,
			StartPanY:   s.Camera.PanY,
		}})
		return
	}
	if ev.Button == ButtonSecondary {
		return
	}

	p := c.toWorld(ev.ClientX, ev.ClientY)

	switch s.Tool {
	case editor.ToolSelect:
		hit, ok := engine.HitTest(s.Scene.Shapes, p)
		if !ok {
			c.d.Dispatch(editor.SetSelection{})
			c.d.Dispatch(editor.SetDrag{Drag: editor.DragNone{}})
			return
		}
		c.d.Dispatch(editor.SetSelection{ShapeID: hit.ID})
		c.d.Dispatch(editor.SetDrag{Drag: editor.DragMoving{
			ShapeID:    hit.ID,
			StartWorld: p,
			StartShape: engine.Point{X: hit.X, Y: hit.Y},
			Before:     s.Scene,
		}})

	case editor.ToolRect:
		id := c.opts.NewShapeID(document.ShapeKindRect)
		before := s.Scene
		c.d.Dispatch(editor.AddShape{Shape: document.Shape{
			ID: id, Kind: document.ShapeKindRect, X: p.X, Y: p.Y,
		}})
		c.d.Dispatch(editor.SetSelection{ShapeID: id})
		c.d.Dispatch(editor.SetDrag{Drag: editor.DragCreatingRect{
			ShapeID:    id,
			StartWorld: p,
			Before:     before,
		}})
	}
}

func (c *Controller) PointerMove(ev PointerEvent) {
	s := c.d.State()

	switch d := s.Drag.(type) {
	case editor.DragPanning:
		dpr := c.vp.dpr()
		c.d.Dispatch(editor.SetCamera{
			PanX: d.StartPanX + (ev.ClientX-d.StartClient.X)*dpr,
			PanY: d.StartPanY + (ev.ClientY-d.StartClient.Y)*dpr,
			Zoom: s.Camera.Zoom,
		})

	case editor.DragMoving:
		p := c.toWorld(ev.ClientX, ev.ClientY)
		c.d.Dispatch(editor.UpdateRectFields{
			ID: d.ShapeID,
			Patch: document.Position(
				d.StartShape.X+(p.X-d.StartWorld.X),
				d.StartShape.Y+(p.Y-d.StartWorld.Y),
			),
		})

	case editor.DragCreatingRect:
		p := c.toWorld(ev.ClientX, ev.ClientY)
		r := engine.NormalizeRect(d.StartWorld.X, d.StartWorld.Y, p.X, p.Y)
		c.d.Dispatch(editor.UpdateRectFields{
			ID:    d.ShapeID,
			Patch: document.Bounds(r.X, r.Y, r.W, r.H),
		})
	}
}

func (c *Controller) PointerUp(PointerEvent) {
	s := c.d.State()

	switch d := s.Drag.(type) {
	case editor.DragMoving:
		c.d.Dispatch(editor.CommitHistory{Before: d.Before})

	case editor.DragCreatingRect:
		created, ok := s.Scene.Find(d.ShapeID)
		if !ok || created.W < MinCreateExtent || created.H < MinCreateExtent {
			c.d.Dispatch(editor.RemoveShape{ID: d.ShapeID})
			if s.Selection.ShapeID == d.ShapeID {
				c.d.Dispatch(editor.SetSelection{})
			}
		} else {
			c.d.Dispatch(editor.CommitHistory{Before: d.Before})
		}
	}
	c.d.Dispatch(editor.SetDrag{Drag: editor.DragNone{}})
}

// Wheel zooms around the pointer so the world point under it stays put.
func (c *Controller) Wheel(ev WheelEvent) {
	anchor := engine.ClientToDevice(ev.ClientX, ev.ClientY, c.vp.Origin, c.vp.dpr())
	cam := engine.ZoomAt(c.d.State().Camera, anchor, ev.DeltaY, c.opts.ZoomSensitivity)
	c.d.Dispatch(editor.SetCamera{PanX: cam.PanX, PanY: cam.PanY, Zoom: cam.Zoom})
}

// ResetView restores the default camera.
func (c *Controller) ResetView() {
	cam := engine.DefaultCamera()
	c.d.Dispatch(editor.SetCamera{PanX: cam.PanX, PanY: cam.PanY, Zoom: cam.Zoom})
}

func (c *Controller) modifier(ev KeyEvent) bool {
	if c.opts.Mac {
		return ev.Meta
	}
	return ev.Ctrl
}

func (c *Controller) KeyDown(ev KeyEvent) {
	mod := c.modifier(ev)
	key := strings.ToLower(ev.Key)

	switch {
	case mod && key == "z" && !ev.Shift:
		c.d.Dispatch(editor.Undo{})
	case mod && key == "z" && ev.Shift, mod && key == "y":
		c.d.Dispatch(editor.Redo{})
	case ev.Code == "Space":
		if !c.d.State().SpaceHeld {
			c.d.Dispatch(editor.SetSpaceHeld{Held: true})
		}
	case mod || ev.Ctrl || ev.Meta:
		// other modified keys belong to the host
	case key == "v":
		c.d.Dispatch(editor.SetTool{Tool: editor.ToolSelect})
	case key == "r":
		c.d.Dispatch(editor.SetTool{Tool: editor.ToolRect})
	case key == "0":
		c.ResetView()
	}
}

func (c *Controller) KeyUp(ev KeyEvent) {
	if ev.Code == "Space" {
		c.d.Dispatch(editor.SetSpaceHeld{Held: false})
	}
}
