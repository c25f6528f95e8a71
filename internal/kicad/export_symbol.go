package kicad

import (
	"fmt"
	"strings"

	"github.com/starford/lcsc2kicad/internal/geometry"
)

const symbolFont = "(effects (font (size 1.27 1.27)))"

// mm converts symbol canvas units.
func mm(v float64) string { return fnum(v * geometry.MMPerUnit) }

func xy(p geometry.Point) string { return mm(p.X) + " " + mm(p.Y) }

// ExportSymbol renders s as one top-level entry of a .kicad_sym library,
// indented for insertion under the library root and ending in a newline.
func ExportSymbol(s *Symbol) string {
	var b strings.Builder
	fmt.Fprintf(&b, "  (symbol %s (in_bom yes) (on_board yes)\n", quote(s.Name))

	props := []struct {
		key, value string
		hidden     bool
	}{
		{"Reference", s.Reference, false},
		{"Value", s.Value, false},
		{"Footprint", s.Footprint, true},
		{"Datasheet", s.Datasheet, true},
		{"Manufacturer", s.Manufacturer, true},
		{"LCSC Part", s.LCSCPart, true},
		{"JLC Part Class", s.PartClass, true},
	}
	for i, p := range props {
		effects := symbolFont
		if p.hidden {
			effects = "(effects (font (size 1.27 1.27)) hide)"
		}
		fmt.Fprintf(&b, "    (property %s %s (id %d) (at 0 0 0)\n      %s\n    )\n",
			quote(p.key), quote(p.value), i, effects)
	}

	fmt.Fprintf(&b, "    (symbol %s\n", quote(s.Name+"_0_1"))
	for _, r := range s.Rectangles {
		fmt.Fprintf(&b, "      (rectangle (start %s) (end %s)\n        %s\n        %s\n      )\n",
			xy(r.Start), xy(r.End), symbolStroke(r.StrokeWidth), symbolFill(r.Fill))
	}
	for _, c := range s.Circles {
		fmt.Fprintf(&b, "      (circle (center %s) (radius %s)\n        %s\n        %s\n      )\n",
			xy(c.Center), mm(c.Radius), symbolStroke(c.StrokeWidth), symbolFill(c.Fill))
	}
	for _, a := range s.Arcs {
		fmt.Fprintf(&b, "      (arc (start %s) (mid %s) (end %s)\n        %s\n        %s\n      )\n",
			xy(a.Start), xy(a.Mid), xy(a.End), symbolStroke(a.StrokeWidth), symbolFill(a.Fill))
	}
	for _, pl := range s.Polylines {
		b.WriteString("      (polyline\n        (pts")
		for _, p := range pl.Points {
			fmt.Fprintf(&b, " (xy %s)", xy(p))
		}
		fmt.Fprintf(&b, ")\n        %s\n        %s\n      )\n", symbolStroke(pl.StrokeWidth), symbolFill(pl.Fill))
	}
	b.WriteString("    )\n")

	fmt.Fprintf(&b, "    (symbol %s\n", quote(s.Name+"_1_1"))
	for _, p := range s.Pins {
		fmt.Fprintf(&b, "      (pin %s %s (at %s %s) (length %s)\n", p.Type, p.Style, xy(p.Pos), fnum(p.Orientation), mm(p.Length))
		fmt.Fprintf(&b, "        (name %s %s)\n", quote(p.Name), symbolFont)
		fmt.Fprintf(&b, "        (number %s %s)\n", quote(p.Number), symbolFont)
		b.WriteString("      )\n")
	}
	b.WriteString("    )\n")
	b.WriteString("  )\n")
	return b.String()
}

func symbolStroke(w float64) string {
	return fmt.Sprintf("(stroke (width %s) (type default) (color 0 0 0 0))", mm(w))
}

func symbolFill(fill bool) string {
	if fill {
		return "(fill (type background))"
	}
	return "(fill (type none))"
}
