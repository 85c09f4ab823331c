// Package editor holds the editor state machine: one immutable State value
// replaced on every Action by the pure Apply reducer.
package editor

import (
	"github.com/EvegeniyNekrasov/Nexo/internal/document"
	"github.com/EvegeniyNekrasov/Nexo/internal/engine"
	"github.com/EvegeniyNekrasov/Nexo/internal/history"
)

type Tool string

const (
	ToolSelect Tool = "select"
	ToolRect   Tool = "rect"
)

// Selection refers to a shape by id. The id may no longer exist in the scene;
// lookups simply miss in that case.
type Selection struct {
	ShapeID string `json:"shapeId,omitempty"`
}

func (s Selection) Empty() bool { return s.ShapeID == "" }

// State is the single unit of truth for an open document.
type State struct {
	Tool      Tool
	Camera    engine.Camera
	Scene     document.Scene
	Selection Selection
	Drag      DragMode
	SpaceHeld bool
	History   history.History
}

// NewState returns the state a document opens with.
func NewState(scene document.Scene) State {
	return NewStateWithHistory(scene, history.New())
}

// NewStateWithHistory is NewState with a caller-configured history limit.
func NewStateWithHistory(scene document.Scene, h history.History) State {
	return State{
		Tool:    ToolSelect,
		Camera:  engine.DefaultCamera(),
		Scene:   scene,
		Drag:    DragNone{},
		History: h.Reset(),
	}
}

// SelectedShape looks up the selected shape in the current scene.
func (s State) SelectedShape() (document.Shape, bool) {
	if s.Selection.Empty() {
		return document.Shape{}, false
	}
	return s.Scene.Find(s.Selection.ShapeID)
}
