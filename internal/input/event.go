package input

import (
	"errors"
	"fmt"

	"github.com/EvegeniyNekrasov/Nexo/internal/editor"
	"github.com/EvegeniyNekrasov/Nexo/internal/engine"
)

var ErrUnknownEvent = errors.New("unknown event")

type EventType string

const (
	EventPointerDown EventType = "pointerdown"
	EventPointerMove EventType = "pointermove"
	EventPointerUp   EventType = "pointerup"
	EventWheel       EventType = "wheel"
	EventKeyDown     EventType = "keydown"
	EventKeyUp       EventType = "keyup"
	EventResize      EventType = "resize"
	EventTool        EventType = "tool"
	EventUndo        EventType = "undo"
	EventRedo        EventType = "redo"
	EventResetView   EventType = "resetview"
	EventClear       EventType = "clear"
)

// Event is the wire form of an input event sent by a remote canvas.
type Event struct {
	Type EventType `json:"type"`

	ClientX float64 `json:"clientX,omitempty"`
	ClientY float64 `json:"clientY,omitempty"`
	Button  int     `json:"button,omitempty"`
	DeltaY  float64 `json:"deltaY,omitempty"`

	Key   string `json:"key,omitempty"`
	Code  string `json:"code,omitempty"`
	Ctrl  bool   `json:"ctrl,omitempty"`
	Meta  bool   `json:"meta,omitempty"`
	Shift bool   `json:"shift,omitempty"`

	Tool string `json:"tool,omitempty"`

	// resize
	Left   float64 `json:"left,omitempty"`
	Top    float64 `json:"top,omitempty"`
	DPR    float64 `json:"dpr,omitempty"`
	Width  int     `json:"width,omitempty"`
	Height int     `json:"height,omitempty"`
}

func (ev Event) pointer() PointerEvent {
	return PointerEvent{ClientX: ev.ClientX, ClientY: ev.ClientY, Button: Button(ev.Button)}
}

func (ev Event) key() KeyEvent {
	return KeyEvent{Key: ev.Key, Code: ev.Code, Ctrl: ev.Ctrl, Meta: ev.Meta, Shift: ev.Shift}
}

// Handle routes a wire event to the matching controller method.
// EventClear needs the persistence layer and is left to the caller.
func (c *Controller) Handle(ev Event) error {
	switch ev.Type {
	case EventPointerDown:
		c.PointerDown(ev.pointer())
	case EventPointerMove:
		c.PointerMove(ev.pointer())
	case EventPointerUp:
		c.PointerUp(ev.pointer())
	case EventWheel:
		c.Wheel(WheelEvent{ClientX: ev.ClientX, ClientY: ev.ClientY, DeltaY: ev.DeltaY})
	case EventKeyDown:
		c.KeyDown(ev.key())
	case EventKeyUp:
		c.KeyUp(ev.key())
	case EventResize:
		c.SetViewport(Viewport{
			Origin: engine.Origin{Left: ev.Left, Top: ev.Top},
			DPR:    ev.DPR,
			Width:  ev.Width,
			Height: ev.Height,
		})
	case EventTool:
		switch t := editor.Tool(ev.Tool); t {
		case editor.ToolSelect, editor.ToolRect:
			c.d.Dispatch(editor.SetTool{Tool: t})
		default:
			return fmt.Errorf("tool %q: %w", ev.Tool, ErrUnknownEvent)
		}
	case EventUndo:
		c.d.Dispatch(editor.Undo{})
	case EventRedo:
		c.d.Dispatch(editor.Redo{})
	case EventResetView:
		c.ResetView()
	default:
		return fmt.Errorf("event %q: %w", ev.Type, ErrUnknownEvent)
	}
	return nil
}
