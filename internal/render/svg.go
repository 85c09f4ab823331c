package render

import (
	"fmt"
	"html"
	"io"
	"strconv"
	"strings"

	"github.com/gogpu/gg"
)

// WriteSVG serializes a compiled frame as a standalone SVG document.
func WriteSVG(w io.Writer, cmds []DrawCommand, width, height int) error {
	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`+"\n",
		width, height, width, height)

	for i, cmd := range cmds {
		switch cmd.Op {
		case OpClear:
			fmt.Fprintf(&b, `<rect x="0" y="0" width="%s" height="%s" %s/>`+"\n",
				num(cmd.W), num(cmd.H), paint("fill", cmd.Fill, 1))
		case OpFillRect:
			fmt.Fprintf(&b, `<rect%s x="%s" y="%s" width="%s" height="%s" %s/>`+"\n",
				idAttr(cmd.ObjectID), num(cmd.X), num(cmd.Y), num(cmd.W), num(cmd.H),
				paint("fill", cmd.Fill, cmd.Opacity))
		case OpStrokeRect:
			fmt.Fprintf(&b, `<rect x="%s" y="%s" width="%s" height="%s" fill="none" %s stroke-width="%s"/>`+"\n",
				num(cmd.X), num(cmd.Y), num(cmd.W), num(cmd.H),
				paint("stroke", cmd.Stroke, cmd.Opacity), num(cmd.StrokeWidth))
		case OpLine:
			fmt.Fprintf(&b, `<line x1="%s" y1="%s" x2="%s" y2="%s" %s stroke-width="%s"/>`+"\n",
				num(cmd.X), num(cmd.Y), num(cmd.X2), num(cmd.Y2),
				paint("stroke", cmd.Stroke, cmd.Opacity), num(cmd.StrokeWidth))
		case OpText:
			fmt.Fprintf(&b, `<text x="%s" y="%s" font-family="sans-serif" font-size="%s" %s>%s</text>`+"\n",
				num(cmd.X), num(cmd.Y), num(cmd.FontSize),
				paint("fill", cmd.Fill, cmd.Opacity), html.EscapeString(cmd.Text))
		default:
			return fmt.Errorf("draw command %d: unknown op %q", i, cmd.Op)
		}
	}
	b.WriteString("</svg>\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// paint renders a colour attribute plus its opacity. SVG has no 8-digit hex,
// so the alpha channel is folded into the opacity attribute.
func paint(attr, hex string, opacity float64) string {
	c := gg.Hex(hex)
	rgb := fmt.Sprintf("#%02x%02x%02x", to8(c.R), to8(c.G), to8(c.B))
	a := c.A * opacity
	if a >= 1 {
		return fmt.Sprintf(`%s="%s"`, attr, rgb)
	}
	return fmt.Sprintf(`%s="%s" %s-opacity="%s"`, attr, rgb, attr, num(a))
}

func idAttr(id string) string {
	if id == "" {
		return ""
	}
	return ` data-id="` + html.EscapeString(id) + `"`
}

func to8(v float64) int {
	n := int(v*255 + 0.5)
	if n < 0 {
		return 0
	}
	if n > 255 {
		return 255
	}
	return n
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
