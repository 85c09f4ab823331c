package input

import (
	"fmt"
	"math"
	"testing"

	"github.com/EvegeniyNekrasov/Nexo/internal/document"
	"github.com/EvegeniyNekrasov/Nexo/internal/editor"
	"github.com/EvegeniyNekrasov/Nexo/internal/engine"
)

// The default camera puts world (0,0) at client (300,200) with dpr 1.
func worldToClient(x, y float64) (float64, float64) {
	return x + 300, y + 200
}

func newTestController(scene document.Scene) (*Controller, *editor.Store) {
	st := editor.NewStore(editor.NewState(scene))
	n := 0
	c := NewController(st, Options{NewShapeID: func(document.ShapeKind) string {
		n++
		return fmt.Sprintf("r%d", n)
	}})
	return c, st
}

func drag(c *Controller, x0, y0, x1, y1 float64) {
	cx0, cy0 := worldToClient(x0, y0)
	cx1, cy1 := worldToClient(x1, y1)
	c.PointerDown(PointerEvent{ClientX: cx0, ClientY: cy0})
	c.PointerMove(PointerEvent{ClientX: (cx0 + cx1) / 2, ClientY: (cy0 + cy1) / 2})
	c.PointerMove(PointerEvent{ClientX: cx1, ClientY: cy1})
	c.PointerUp(PointerEvent{ClientX: cx1, ClientY: cy1})
}

func TestCreateRectUndoRedo(t *testing.T) {
	c, st := newTestController(document.EmptyScene())
	st.Dispatch(editor.SetTool{Tool: editor.ToolRect})

	drag(c, 0, 0, 10, 10)

	s := st.State()
	if s.Scene.Len() != 1 {
		t.Fatalf("expected 1 shape, got %d", s.Scene.Len())
	}
	got := s.Scene.Shapes[0]
	if got.X != 0 || got.Y != 0 || got.W != 10 || got.H != 10 {
		t.Fatalf("unexpected rect: %+v", got)
	}
	if !editor.IsIdle(s.Drag) {
		t.Fatalf("expected drag reset, got %T", s.Drag)
	}
	if s.History.PastLen() != 1 {
		t.Fatalf("expected one commit, got %d", s.History.PastLen())
	}

	st.Dispatch(editor.Undo{})
	if st.State().Scene.Len() != 0 {
		t.Fatalf("expected empty scene after undo")
	}
	st.Dispatch(editor.Redo{})
	s = st.State()
	if s.Scene.Len() != 1 || s.Scene.Shapes[0] != got {
		t.Fatalf("redo did not restore the rect: %+v", s.Scene)
	}
}

func TestCreateRectAnyDirection(t *testing.T) {
	ends := [][4]float64{{0, 0, 10, 10}, {10, 10, 0, 0}, {10, 0, 0, 10}, {0, 10, 10, 0}}
	for _, e := range ends {
		c, st := newTestController(document.EmptyScene())
		st.Dispatch(editor.SetTool{Tool: editor.ToolRect})
		drag(c, e[0], e[1], e[2], e[3])

		shapes := st.State().Scene.Shapes
		if len(shapes) != 1 {
			t.Fatalf("%v: expected 1 shape, got %d", e, len(shapes))
		}
		r := shapes[0]
		if r.X != 0 || r.Y != 0 || r.W != 10 || r.H != 10 {
			t.Fatalf("%v: unexpected rect %+v", e, r)
		}
	}
}

func TestClickWithRectToolDiscardsShape(t *testing.T) {
	c, st := newTestController(document.EmptyScene())
	st.Dispatch(editor.SetTool{Tool: editor.ToolRect})

	cx, cy := worldToClient(5, 5)
	c.PointerDown(PointerEvent{ClientX: cx, ClientY: cy})
	if st.State().Scene.Len() != 1 {
		t.Fatalf("expected the zero-size rect during the gesture")
	}
	c.PointerUp(PointerEvent{ClientX: cx, ClientY: cy})

	s := st.State()
	if s.Scene.Len() != 0 {
		t.Fatalf("expected no shapes, got %d", s.Scene.Len())
	}
	if s.History.PastLen() != 0 {
		t.Fatalf("expected no commit, got %d", s.History.PastLen())
	}
	if !s.Selection.Empty() {
		t.Fatalf("selection should not point at the discarded shape")
	}
}

func TestThinRectIsDiscarded(t *testing.T) {
	c, st := newTestController(document.EmptyScene())
	st.Dispatch(editor.SetTool{Tool: editor.ToolRect})
	drag(c, 0, 0, 50, 0.5)
	if st.State().Scene.Len() != 0 {
		t.Fatalf("expected rect with h<1 to be discarded")
	}
}

func TestMoveShapeCommitsBeforeSnapshot(t *testing.T) {
	orig := document.Scene{Shapes: []document.Shape{
		{ID: "a", Kind: document.ShapeKindRect, X: 10, Y: 10, W: 20, H: 20},
	}}
	c, st := newTestController(document.EmptyScene())
	st.Dispatch(editor.LoadScene{Scene: orig})

	drag(c, 15, 15, 20, 20)

	s := st.State()
	if s.Selection.ShapeID != "a" {
		t.Fatalf("expected a selected, got %+v", s.Selection)
	}
	if s.History.PastLen() != 1 {
		t.Fatalf("expected 1 undo step, got %d", s.History.PastLen())
	}
	if !s.History.Past()[0].Equal(orig) {
		t.Fatalf("history entry should equal the pre-move scene")
	}
	got, _ := s.Scene.Find("a")
	if got.X != 15 || got.Y != 15 || got.W != 20 || got.H != 20 {
		t.Fatalf("unexpected moved shape: %+v", got)
	}
}

func TestSelectMissClearsSelection(t *testing.T) {
	c, st := newTestController(document.Scene{Shapes: []document.Shape{
		{ID: "a", Kind: document.ShapeKindRect, W: 5, H: 5},
	}})
	st.Dispatch(editor.SetSelection{ShapeID: "a"})

	cx, cy := worldToClient(100, 100)
	c.PointerDown(PointerEvent{ClientX: cx, ClientY: cy})
	s := st.State()
	if !s.Selection.Empty() || !editor.IsIdle(s.Drag) {
		t.Fatalf("expected cleared selection and idle drag")
	}
	c.PointerUp(PointerEvent{ClientX: cx, ClientY: cy})
	if st.State().History.PastLen() != 0 {
		t.Fatalf("a miss should not commit")
	}
}

func TestPanWithSpaceHeld(t *testing.T) {
	c, st := newTestController(document.Scene{Shapes: []document.Shape{
		{ID: "a", Kind: document.ShapeKindRect, W: 50, H: 50},
	}})
	c.SetViewport(Viewport{DPR: 2})
	c.KeyDown(KeyEvent{Key: " ", Code: "Space"})

	c.PointerDown(PointerEvent{ClientX: 100, ClientY: 100})
	if _, ok := st.State().Drag.(editor.DragPanning); !ok {
		t.Fatalf("expected panning, got %T", st.State().Drag)
	}
	c.PointerMove(PointerEvent{ClientX: 110, ClientY: 95})
	cam := st.State().Camera
	if cam.PanX != 320 || cam.PanY != 190 {
		t.Fatalf("unexpected pan: %+v", cam)
	}
	c.PointerUp(PointerEvent{})
	c.KeyUp(KeyEvent{Code: "Space"})

	s := st.State()
	if s.SpaceHeld || !editor.IsIdle(s.Drag) || s.History.PastLen() != 0 {
		t.Fatalf("unexpected state after pan: %+v", s)
	}
	if got, _ := s.Scene.Find("a"); got.X != 0 {
		t.Fatalf("pan should not move shapes")
	}
}

func TestMiddleButtonPansInRectTool(t *testing.T) {
	c, st := newTestController(document.EmptyScene())
	st.Dispatch(editor.SetTool{Tool: editor.ToolRect})
	c.PointerDown(PointerEvent{ClientX: 1, ClientY: 1, Button: ButtonMiddle})
	if _, ok := st.State().Drag.(editor.DragPanning); !ok {
		t.Fatalf("expected panning, got %T", st.State().Drag)
	}
	if st.State().Scene.Len() != 0 {
		t.Fatalf("middle button must not create shapes")
	}
}

func TestRightButtonIgnored(t *testing.T) {
	c, st := newTestController(document.EmptyScene())
	st.Dispatch(editor.SetTool{Tool: editor.ToolRect})
	c.PointerDown(PointerEvent{ClientX: 1, ClientY: 1, Button: ButtonSecondary})
	if st.State().Scene.Len() != 0 || !editor.IsIdle(st.State().Drag) {
		t.Fatalf("right button should be ignored")
	}
}

func TestWheelAnchorsPointer(t *testing.T) {
	c, st := newTestController(document.EmptyScene())
	c.SetViewport(Viewport{Origin: engine.Origin{Left: 20, Top: 40}, DPR: 1.5})

	before := engine.ScreenToWorld(420, 300, c.Viewport().Origin, st.State().Camera, 1.5)
	c.Wheel(WheelEvent{ClientX: 420, ClientY: 300, DeltaY: -240})
	after := engine.ScreenToWorld(420, 300, c.Viewport().Origin, st.State().Camera, 1.5)

	if st.State().Camera.Zoom <= 1 {
		t.Fatalf("expected zoom in, got %v", st.State().Camera.Zoom)
	}
	if math.Abs(before.X-after.X) > 1e-9 || math.Abs(before.Y-after.Y) > 1e-9 {
		t.Fatalf("anchor drifted: %+v -> %+v", before, after)
	}
}

func TestWheelClampsZoom(t *testing.T) {
	c, st := newTestController(document.EmptyScene())
	c.Wheel(WheelEvent{DeltaY: -100000})
	if z := st.State().Camera.Zoom; z != engine.MaxZoom {
		t.Fatalf("expected max zoom, got %v", z)
	}
	c.Wheel(WheelEvent{DeltaY: 100000})
	if z := st.State().Camera.Zoom; z != engine.MinZoom {
		t.Fatalf("expected min zoom, got %v", z)
	}
}

func TestKeyboardShortcuts(t *testing.T) {
	tests := []struct {
		name string
		mac  bool
		ev   KeyEvent
		want string
	}{
		{"ctrl+z undo", false, KeyEvent{Key: "z", Ctrl: true}, "undo"},
		{"ctrl+shift+z redo", false, KeyEvent{Key: "Z", Ctrl: true, Shift: true}, "redo"},
		{"ctrl+y redo", false, KeyEvent{Key: "y", Ctrl: true}, "redo"},
		{"cmd+z undo on mac", true, KeyEvent{Key: "z", Meta: true}, "undo"},
		{"ctrl+z ignored on mac", true, KeyEvent{Key: "z", Ctrl: true}, "none"},
		{"plain z ignored", false, KeyEvent{Key: "z"}, "none"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := editor.NewStore(editor.NewState(document.EmptyScene()))
			c := NewController(st, Options{Mac: tt.mac})
			before := document.EmptyScene()
			st.Dispatch(editor.AddShape{Shape: document.Shape{ID: "a", Kind: document.ShapeKindRect, W: 2, H: 2}})
			st.Dispatch(editor.CommitHistory{Before: before})
			if tt.want == "redo" {
				st.Dispatch(editor.Undo{})
			}

			c.KeyDown(tt.ev)

			n := st.State().Scene.Len()
			switch tt.want {
			case "undo":
				if n != 0 {
					t.Fatalf("expected undo, scene has %d shapes", n)
				}
			case "redo":
				if n != 1 {
					t.Fatalf("expected redo, scene has %d shapes", n)
				}
			case "none":
				if n != 1 || st.State().History.CanRedo() {
					t.Fatalf("expected no history change")
				}
			}
		})
	}
}

func TestToolShortcuts(t *testing.T) {
	c, st := newTestController(document.EmptyScene())
	c.KeyDown(KeyEvent{Key: "r"})
	if st.State().Tool != editor.ToolRect {
		t.Fatalf("expected rect tool")
	}
	c.KeyDown(KeyEvent{Key: "V"})
	if st.State().Tool != editor.ToolSelect {
		t.Fatalf("expected select tool")
	}
	c.KeyDown(KeyEvent{Key: "r", Ctrl: true})
	if st.State().Tool != editor.ToolSelect {
		t.Fatalf("modified keys should not switch tools")
	}
}

func TestHandleRoutesWireEvents(t *testing.T) {
	c, st := newTestController(document.EmptyScene())
	events := []Event{
		{Type: EventResize, Width: 800, Height: 600, DPR: 1},
		{Type: EventTool, Tool: "rect"},
		{Type: EventPointerDown, ClientX: 300, ClientY: 200},
		{Type: EventPointerMove, ClientX: 340, ClientY: 230},
		{Type: EventPointerUp, ClientX: 340, ClientY: 230},
	}
	for _, ev := range events {
		if err := c.Handle(ev); err != nil {
			t.Fatalf("handle %s: %v", ev.Type, err)
		}
	}
	if c.Viewport().Width != 800 {
		t.Fatalf("viewport not applied")
	}
	if st.State().Scene.Len() != 1 {
		t.Fatalf("expected one rect from wire events")
	}
	if err := c.Handle(Event{Type: "bogus"}); err == nil {
		t.Fatalf("expected error for unknown event")
	}
	if err := c.Handle(Event{Type: EventTool, Tool: "ellipse"}); err == nil {
		t.Fatalf("expected error for unknown tool")
	}
}
