package render

import (
	"strings"
	"testing"
)

func TestWriteSVG(t *testing.T) {
	s := testState()
	s.Selection.ShapeID = "b"

	var b strings.Builder
	if err := WriteSVG(&b, Compile(s, 800, 600, DefaultStyle()), 800, 600); err != nil {
		t.Fatalf("WriteSVG: %v", err)
	}
	out := b.String()

	for _, want := range []string{
		`<svg xmlns="http://www.w3.org/2000/svg" width="800" height="600"`,
		`fill="#0b0c10"`,
		`data-id="a"`,
		`stroke="#8ab4ff"`,
		`<text x="12" y="588"`,
		"Tool: select   Zoom: 1.00",
		"</svg>",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("svg missing %q", want)
		}
	}
}

func TestPaintFoldsAlpha(t *testing.T) {
	if got := paint("fill", "#ffffff", 1); got != `fill="#ffffff"` {
		t.Fatalf("opaque paint = %s", got)
	}
	if got := paint("stroke", "#ff000080", 0.5); !strings.Contains(got, `stroke-opacity="0.25`) {
		t.Fatalf("translucent paint = %s", got)
	}
}

func TestWriteSVGEscapesText(t *testing.T) {
	var b strings.Builder
	cmds := []DrawCommand{{Op: OpText, Text: "<a&b>", Fill: "#fff", Opacity: 1, FontSize: 12}}
	if err := WriteSVG(&b, cmds, 10, 10); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(b.String(), "&lt;a&amp;b&gt;") {
		t.Fatalf("text not escaped: %s", b.String())
	}
}
