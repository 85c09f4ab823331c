package editor

import "github.com/EvegeniyNekrasov/Nexo/internal/document"

// Action is a discrete state transition request. The set is closed; Apply
// panics on any other implementation.
type Action interface {
	action()
}

type SetTool struct{ Tool Tool }

type SetSpaceHeld struct{ Held bool }

// SetCamera replaces the camera. Callers clamp Zoom to [engine.MinZoom, engine.MaxZoom].
type SetCamera struct{ PanX, PanY, Zoom float64 }

// SetSelection replaces the selection; an empty ShapeID clears it.
type SetSelection struct{ ShapeID string }

type SetDrag struct{ Drag DragMode }

type AddShape struct{ Shape document.Shape }

type RemoveShape struct{ ID string }

type UpdateRectFields struct {
	ID    string
	Patch document.RectPatch
}

// LoadScene replaces the scene and starts over with empty history.
type LoadScene struct{ Scene document.Scene }

type CommitHistory struct{ Before document.Scene }

type Undo struct{}

type Redo struct{}

func (SetTool) action()          {}
func (SetSpaceHeld) action()     {}
func (SetCamera) action()        {}
func (SetSelection) action()     {}
func (SetDrag) action()          {}
func (AddShape) action()         {}
func (RemoveShape) action()      {}
func (UpdateRectFields) action() {}
func (LoadScene) action()        {}
func (CommitHistory) action()    {}
func (Undo) action()             {}
func (Redo) action()             {}
