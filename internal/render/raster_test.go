package render

import (
	"bytes"
	"strings"
	"testing"
)

func near(a uint32, b uint8) bool {
	d := int(a>>8) - int(b)
	return d >= -2 && d <= 2
}

func TestRasterizeFill(t *testing.T) {
	r, err := NewRasterizer()
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	cmds := []DrawCommand{
		{Op: OpClear, W: 64, H: 64, Fill: "#0b0c10", Opacity: 1},
		{Op: OpFillRect, X: 16, Y: 16, W: 32, H: 32, Fill: "#ff0000", Opacity: 1},
	}
	img, err := r.Rasterize(cmds, 64, 64)
	if err != nil {
		t.Fatalf("Rasterize: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 64 || b.Dy() != 64 {
		t.Fatalf("unexpected bounds %v", b)
	}

	cr, cg, cb, _ := img.At(2, 2).RGBA()
	if !near(cr, 0x0b) || !near(cg, 0x0c) || !near(cb, 0x10) {
		t.Fatalf("background pixel = %d,%d,%d", cr>>8, cg>>8, cb>>8)
	}
	cr, cg, cb, _ = img.At(32, 32).RGBA()
	if !near(cr, 0xff) || !near(cg, 0) || !near(cb, 0) {
		t.Fatalf("shape pixel = %d,%d,%d", cr>>8, cg>>8, cb>>8)
	}
}

func TestRasterizeFullFrame(t *testing.T) {
	r, err := NewRasterizer()
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	s := testState()
	s.Selection.ShapeID = "a"
	var buf bytes.Buffer
	if err := r.WritePNG(&buf, Compile(s, 320, 240, DefaultStyle()), 320, 240); err != nil {
		t.Fatalf("WritePNG: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG\r\n\x1a\n")) {
		t.Fatal("output is not a PNG")
	}
}

func TestRasterizeUnknownOp(t *testing.T) {
	r, err := NewRasterizer()
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	_, err = r.Rasterize([]DrawCommand{{Op: "arc"}}, 8, 8)
	if err == nil || !strings.Contains(err.Error(), "arc") {
		t.Fatalf("expected unknown op error, got %v", err)
	}
}
