package render

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/EvegeniyNekrasov/Nexo/internal/editor"
	"github.com/EvegeniyNekrasov/Nexo/internal/engine"
)

const (
	OpClear      = "clear"
	OpFillRect   = "fillRect"
	OpStrokeRect = "strokeRect"
	OpLine       = "line"
	OpText       = "text"
)

// DrawCommand represents a single drawing operation in device pixels.
// A frame is a list of these in painter's order (back to front); canvas
// clients replay them on a 2D context and Rasterize turns them into pixels.
type DrawCommand struct {
	Op          string  `json:"op"`
	ObjectID    string  `json:"objectId,omitempty"` // For hit correlation
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	W           float64 `json:"w,omitempty"`
	H           float64 `json:"h,omitempty"`
	X2          float64 `json:"x2,omitempty"` // line end
	Y2          float64 `json:"y2,omitempty"`
	Fill        string  `json:"fill,omitempty"`
	Stroke      string  `json:"stroke,omitempty"`
	StrokeWidth float64 `json:"strokeWidth,omitempty"`
	Opacity     float64 `json:"opacity"`
	Text        string  `json:"text,omitempty"`
	FontSize    float64 `json:"fontSize,omitempty"`
}

// Compile produces the frame for s on a width x height device-pixel surface.
// It only reads s and may be called at any rate.
func Compile(s editor.State, width, height int, style Style) []DrawCommand {
	w, h := float64(width), float64(height)

	cmds := []DrawCommand{{
		Op: OpClear, W: w, H: h, Fill: style.Background, Opacity: 1,
	}}
	cmds = appendGrid(cmds, s.Camera, w, h, style)

	m := s.Camera.Matrix()
	k := strokeScale(s.Camera.Zoom)
	for _, shape := range s.Scene.Shapes {
		r := m.TransformRect(engine.ShapeBounds(shape))
		selected := s.Selection.ShapeID == shape.ID

		stroke := style.ShapeStroke
		if selected {
			stroke = style.SelectedStroke
		}
		cmds = append(cmds,
			DrawCommand{Op: OpFillRect, ObjectID: shape.ID, X: r.X, Y: r.Y, W: r.W, H: r.H,
				Fill: style.ShapeFill, Opacity: style.ShapeAlpha},
			DrawCommand{Op: OpStrokeRect, ObjectID: shape.ID, X: r.X, Y: r.Y, W: r.W, H: r.H,
				Stroke: stroke, StrokeWidth: math.Max(1, 1.5*k), Opacity: style.ShapeAlpha},
		)
		if selected {
			in := style.SelectionInset
			cmds = append(cmds, DrawCommand{
				Op: OpStrokeRect, ObjectID: shape.ID,
				X: r.X - in, Y: r.Y - in, W: r.W + 2*in, H: r.H + 2*in,
				Stroke: style.SelectedStroke, StrokeWidth: math.Max(2, 2.5*k), Opacity: 1,
			})
		}
	}

	if style.HUD {
		cmds = append(cmds, DrawCommand{
			Op: OpText, X: 12, Y: h - 12,
			Text:     fmt.Sprintf("Tool: %s   Zoom: %.2f", s.Tool, s.Camera.Zoom),
			Fill:     style.HUDColor,
			Opacity:  style.HUDAlpha,
			FontSize: style.HUDSize,
		})
	}
	return cmds
}

// strokeScale thickens outlines when zoomed out so they stay visible.
func strokeScale(zoom float64) float64 {
	if zoom >= 1 || zoom <= 0 {
		return 1
	}
	return 1 / zoom
}

func appendGrid(cmds []DrawCommand, cam engine.Camera, w, h float64, style Style) []DrawCommand {
	step := style.GridSpacing * cam.Zoom
	if step < style.GridMinStep || step <= 0 {
		return cmds
	}
	for x := positiveMod(cam.PanX, step); x < w; x += step {
		cmds = append(cmds, DrawCommand{Op: OpLine, X: x, Y: 0, X2: x, Y2: h,
			Stroke: style.GridColor, StrokeWidth: 1, Opacity: style.GridAlpha})
	}
	for y := positiveMod(cam.PanY, step); y < h; y += step {
		cmds = append(cmds, DrawCommand{Op: OpLine, X: 0, Y: y, X2: w, Y2: y,
			Stroke: style.GridColor, StrokeWidth: 1, Opacity: style.GridAlpha})
	}
	return cmds
}

func positiveMod(v, m float64) float64 {
	return math.Mod(math.Mod(v, m)+m, m)
}

// DrawCommandsToJSON serializes draw commands to JSON.
func DrawCommandsToJSON(commands []DrawCommand) (string, error) {
	if commands == nil {
		return "[]", nil
	}
	data, err := json.Marshal(commands)
	if err != nil {
		return "[]", err
	}
	return string(data), nil
}
