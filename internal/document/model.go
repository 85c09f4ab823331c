package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrInvalidScene     = errors.New("invalid scene")
	ErrDuplicateShapeID = errors.New("duplicate shape id")
	ErrUnknownShapeKind = errors.New("unknown shape kind")
)

type ShapeKind string

const (
	ShapeKindRect ShapeKind = "rect"
)

// Shape is a single drawable in world units. Only rectangles exist today;
// new kinds add a ShapeKind and their own geometry in the engine package.
type Shape struct {
	ID   string    `json:"id"`
	Kind ShapeKind `json:"kind"`
	X    float64   `json:"x"`
	Y    float64   `json:"y"`
	W    float64   `json:"w"`
	H    float64   `json:"h"`
}

// UnmarshalJSON accepts the legacy "type" key as an alias for "kind".
func (s *Shape) UnmarshalJSON(data []byte) error {
	type plain Shape
	var raw struct {
		plain
		Type ShapeKind `json:"type"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = Shape(raw.plain)
	if s.Kind == "" {
		s.Kind = raw.Type
	}
	return nil
}

// RectPatch carries the fields to overwrite on a shape. Nil fields are left alone.
type RectPatch struct {
	X *float64 `json:"x,omitempty"`
	Y *float64 `json:"y,omitempty"`
	W *float64 `json:"w,omitempty"`
	H *float64 `json:"h,omitempty"`
}

// Position builds a patch that only moves the shape.
func Position(x, y float64) RectPatch {
	return RectPatch{X: &x, Y: &y}
}

// Bounds builds a patch that replaces all four fields.
func Bounds(x, y, w, h float64) RectPatch {
	return RectPatch{X: &x, Y: &y, W: &w, H: &h}
}

func (p RectPatch) apply(s Shape) Shape {
	if p.X != nil {
		s.X = *p.X
	}
	if p.Y != nil {
		s.Y = *p.Y
	}
	if p.W != nil {
		s.W = *p.W
	}
	if p.H != nil {
		s.H = *p.H
	}
	return s
}

// Scene is the document: shapes in z-order, last drawn on top.
//
// A Scene is a value. Every method that changes it returns a new Scene backed
// by a fresh slice, so any previously returned Scene stays valid as a snapshot.
type Scene struct {
	Shapes []Shape `json:"shapes"`
}

func EmptyScene() Scene {
	return Scene{Shapes: []Shape{}}
}

func (sc Scene) Len() int {
	return len(sc.Shapes)
}

// Find returns the shape with the given id.
func (sc Scene) Find(id string) (Shape, bool) {
	for _, s := range sc.Shapes {
		if s.ID == id {
			return s, true
		}
	}
	return Shape{}, false
}

// WithShape appends a shape on top.
func (sc Scene) WithShape(s Shape) Scene {
	shapes := make([]Shape, 0, len(sc.Shapes)+1)
	shapes = append(shapes, sc.Shapes...)
	shapes = append(shapes, s)
	return Scene{Shapes: shapes}
}

// Without drops the shape with the given id.
func (sc Scene) Without(id string) Scene {
	shapes := make([]Shape, 0, len(sc.Shapes))
	for _, s := range sc.Shapes {
		if s.ID != id {
			shapes = append(shapes, s)
		}
	}
	return Scene{Shapes: shapes}
}

// Patch overwrites the patched fields of the matching shape. A missing id
// yields an equal scene.
func (sc Scene) Patch(id string, p RectPatch) Scene {
	shapes := make([]Shape, len(sc.Shapes))
	for i, s := range sc.Shapes {
		if s.ID == id {
			s = p.apply(s)
		}
		shapes[i] = s
	}
	return Scene{Shapes: shapes}
}

// Equal reports whether both scenes hold the same shapes in the same order.
func (sc Scene) Equal(other Scene) bool {
	if len(sc.Shapes) != len(other.Shapes) {
		return false
	}
	for i := range sc.Shapes {
		if sc.Shapes[i] != other.Shapes[i] {
			return false
		}
	}
	return true
}

// Validate checks the scene-wide invariants: known kinds and unique ids.
func (sc Scene) Validate() error {
	seen := make(map[string]struct{}, len(sc.Shapes))
	for _, s := range sc.Shapes {
		if s.Kind != ShapeKindRect {
			return fmt.Errorf("shape %q: %w: %q", s.ID, ErrUnknownShapeKind, s.Kind)
		}
		if _, dup := seen[s.ID]; dup {
			return fmt.Errorf("shape %q: %w", s.ID, ErrDuplicateShapeID)
		}
		seen[s.ID] = struct{}{}
	}
	return nil
}

func (sc Scene) MarshalJSON() ([]byte, error) {
	shapes := sc.Shapes
	if shapes == nil {
		shapes = []Shape{}
	}
	return json.Marshal(struct {
		Shapes []Shape `json:"shapes"`
	}{shapes})
}

// ParseScene decodes a serialized scene. A payload whose "shapes" member is
// missing or not a list is rejected with ErrInvalidScene.
func ParseScene(data []byte) (Scene, error) {
	var raw struct {
		Shapes json.RawMessage `json:"shapes"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return Scene{}, fmt.Errorf("%w: %v", ErrInvalidScene, err)
	}
	trimmed := bytes.TrimSpace(raw.Shapes)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return Scene{}, fmt.Errorf("%w: shapes is not a list", ErrInvalidScene)
	}

	var shapes []Shape
	if err := json.Unmarshal(trimmed, &shapes); err != nil {
		return Scene{}, fmt.Errorf("%w: %v", ErrInvalidScene, err)
	}
	sc := Scene{Shapes: shapes}
	if err := sc.Validate(); err != nil {
		return Scene{}, err
	}
	return sc, nil
}
