package editor

import (
	"fmt"

	"github.com/EvegeniyNekrasov/Nexo/internal/engine"
)

// Apply returns the state that follows s under a. It never modifies s.
func Apply(s State, a Action) State {
	switch a := a.(type) {
	case SetTool:
		s.Tool = a.Tool
		s.Drag = DragNone{}
		return s

	case SetSpaceHeld:
		s.SpaceHeld = a.Held
		return s

	case SetCamera:
		s.Camera = engine.Camera{PanX: a.PanX, PanY: a.PanY, Zoom: a.Zoom}
		return s

	case SetSelection:
		s.Selection = Selection{ShapeID: a.ShapeID}
		return s

	case SetDrag:
		if a.Drag == nil {
			s.Drag = DragNone{}
		} else {
			s.Drag = a.Drag
		}
		return s

	case AddShape:
		s.Scene = s.Scene.WithShape(a.Shape)
		return s

	case RemoveShape:
		s.Scene = s.Scene.Without(a.ID)
		return s

	case UpdateRectFields:
		if _, ok := s.Scene.Find(a.ID); !ok {
			return s
		}
		s.Scene = s.Scene.Patch(a.ID, a.Patch)
		return s

	case LoadScene:
		s.Scene = a.Scene
		s.Selection = Selection{}
		s.Drag = DragNone{}
		s.History = s.History.Reset()
		return s

	case CommitHistory:
		s.History = s.History.Commit(a.Before)
		return s

	case Undo:
		h, scene, ok := s.History.Undo(s.Scene)
		if !ok {
			return s
		}
		s.History = h
		s.Scene = scene
		s.Selection = Selection{}
		s.Drag = DragNone{}
		return s

	case Redo:
		h, scene, ok := s.History.Redo(s.Scene)
		if !ok {
			return s
		}
		s.History = h
		s.Scene = scene
		s.Selection = Selection{}
		s.Drag = DragNone{}
		return s

	default:
		panic(fmt.Sprintf("editor: unknown action %T", a))
	}
}

// ApplyAll folds actions over s in order.
func ApplyAll(s State, actions ...Action) State {
	for _, a := range actions {
		s = Apply(s, a)
	}
	return s
}
