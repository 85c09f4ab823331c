package render

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"sync"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
	"golang.org/x/image/font/gofont/goregular"
)

// Rasterizer turns compiled frames into pixels. The zero value is not usable;
// call NewRasterizer.
type Rasterizer struct {
	font *text.FontSource

	mu    sync.Mutex
	faces map[float64]text.Face
}

func NewRasterizer() (*Rasterizer, error) {
	src, err := text.NewFontSource(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("load hud font: %w", err)
	}
	return &Rasterizer{font: src, faces: make(map[float64]text.Face)}, nil
}

func (r *Rasterizer) Close() error {
	return r.font.Close()
}

func (r *Rasterizer) face(size float64) text.Face {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.faces[size]
	if !ok {
		f = r.font.Face(size)
		r.faces[size] = f
	}
	return f
}

// Rasterize replays cmds onto a fresh width x height surface.
func (r *Rasterizer) Rasterize(cmds []DrawCommand, width, height int) (image.Image, error) {
	dc := gg.NewContext(width, height)
	defer dc.Close()

	if err := r.draw(dc, cmds); err != nil {
		return nil, err
	}
	return dc.Image(), nil
}

// WritePNG rasterizes cmds and encodes the result as PNG.
func (r *Rasterizer) WritePNG(w io.Writer, cmds []DrawCommand, width, height int) error {
	dc := gg.NewContext(width, height)
	defer dc.Close()

	if err := r.draw(dc, cmds); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	_, err := buf.WriteTo(w)
	return err
}

func (r *Rasterizer) draw(dc *gg.Context, cmds []DrawCommand) error {
	for i, cmd := range cmds {
		var err error
		switch cmd.Op {
		case OpClear:
			dc.ClearWithColor(gg.Hex(cmd.Fill))
		case OpFillRect:
			setColor(dc, cmd.Fill, cmd.Opacity)
			dc.DrawRectangle(cmd.X, cmd.Y, cmd.W, cmd.H)
			err = dc.Fill()
		case OpStrokeRect:
			setColor(dc, cmd.Stroke, cmd.Opacity)
			dc.SetLineWidth(cmd.StrokeWidth)
			dc.DrawRectangle(cmd.X, cmd.Y, cmd.W, cmd.H)
			err = dc.Stroke()
		case OpLine:
			setColor(dc, cmd.Stroke, cmd.Opacity)
			dc.SetLineWidth(cmd.StrokeWidth)
			dc.DrawLine(cmd.X, cmd.Y, cmd.X2, cmd.Y2)
			err = dc.Stroke()
		case OpText:
			setColor(dc, cmd.Fill, cmd.Opacity)
			dc.SetFont(r.face(cmd.FontSize))
			dc.DrawString(cmd.Text, cmd.X, cmd.Y)
		default:
			return fmt.Errorf("draw command %d: unknown op %q", i, cmd.Op)
		}
		if err != nil {
			return fmt.Errorf("draw command %d (%s): %w", i, cmd.Op, err)
		}
	}
	return nil
}

// setColor applies a hex colour scaled by a command-level opacity.
func setColor(dc *gg.Context, hex string, opacity float64) {
	c := gg.Hex(hex)
	dc.SetRGBA(c.R, c.G, c.B, c.A*opacity)
}
