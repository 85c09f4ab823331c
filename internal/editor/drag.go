package editor

import (
	"github.com/EvegeniyNekrasov/Nexo/internal/document"
	"github.com/EvegeniyNekrasov/Nexo/internal/engine"
)

// DragMode is the in-progress gesture. The set of implementations is closed:
// DragNone, DragPanning, DragMoving and DragCreatingRect.
type DragMode interface {
	dragMode()
}

type DragNone struct{}

// DragPanning moves the camera with the pointer.
type DragPanning struct {
	StartClient engine.Point
	StartPanX   float64
	StartPanY   float64
}

// DragMoving translates one shape. Before is the scene at gesture start.
type DragMoving struct {
	ShapeID    string
	StartWorld engine.Point
	StartShape engine.Point
	Before     document.Scene
}

// DragCreatingRect sizes a newly added rectangle. Before is the scene
// captured before the rectangle was added.
type DragCreatingRect struct {
	ShapeID    string
	StartWorld engine.Point
	Before     document.Scene
}

func (DragNone) dragMode()         {}
func (DragPanning) dragMode()      {}
func (DragMoving) dragMode()       {}
func (DragCreatingRect) dragMode() {}

// IsIdle reports whether no gesture is active. A nil DragMode counts as idle.
func IsIdle(d DragMode) bool {
	switch d.(type) {
	case nil, DragNone:
		return true
	default:
		return false
	}
}
