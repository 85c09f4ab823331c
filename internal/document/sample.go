package document

// PlaygroundID is the document served to anonymous sessions.
const PlaygroundID = "playground"

// NewSampleScene returns the starter scene shown in the playground document.
// newID is called once per shape so callers control the id scheme.
func NewSampleScene(newID func(ShapeKind) string) Scene {
	return Scene{Shapes: []Shape{
		{ID: newID(ShapeKindRect), Kind: ShapeKindRect, X: 0, Y: 0, W: 240, H: 160},
		{ID: newID(ShapeKindRect), Kind: ShapeKindRect, X: 120, Y: 80, W: 200, H: 120},
		{ID: newID(ShapeKindRect), Kind: ShapeKindRect, X: 400, Y: -60, W: 80, H: 280},
	}}
}
